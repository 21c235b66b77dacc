// Package cache backs the sentiment annotation cache: a memory layer over a
// disk layer. Entries are a derived artifact; deleting the cache directory
// loses nothing that a re-annotation run cannot regenerate.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Cache is the minimal store the annotator needs.
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// AnnotationKey builds the cache key for one scoring call. The model version
// is part of the key, so swapping the underlying scorer invalidates every
// stale entry instead of serving scores from a different model.
func AnnotationKey(modelVersion, identity, contextText string) string {
	h := sha256.New()
	h.Write([]byte(modelVersion))
	h.Write([]byte{0})
	h.Write([]byte(identity))
	h.Write([]byte{0})
	h.Write([]byte(contextText))
	return "sentiment-" + hex.EncodeToString(h.Sum(nil))
}
