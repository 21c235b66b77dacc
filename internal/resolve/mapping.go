package resolve

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/asher407/hotwave/internal/model"
)

// Params records the merge policy a mapping was computed with.
type Params struct {
	MaxEditDistance int `json:"max_edit_distance"`
	MaxLengthDelta  int `json:"max_length_delta"`
}

// Mapping is the versioned identity mapping: a derived, rebuildable artifact.
// It is recomputed in full whenever snapshots are ingested, never patched
// incrementally.
type Mapping struct {
	Version    string                  `json:"version"`
	Params     Params                  `json:"params"`
	Identities []model.KeywordIdentity `json:"identities"`

	byVariant   map[string]string
	byCanonical map[string]int
}

// index builds the lookup maps from the identity list.
func (m *Mapping) index() {
	m.byVariant = make(map[string]string)
	m.byCanonical = make(map[string]int, len(m.Identities))
	for i, id := range m.Identities {
		m.byCanonical[id.Canonical] = i
		for _, v := range id.Variants {
			m.byVariant[v] = id.Canonical
		}
	}
}

// Lookup resolves a raw keyword to its identity. The second result is false
// when the raw form was never observed.
func (m *Mapping) Lookup(raw string) (model.KeywordIdentity, bool) {
	canonical, ok := m.byVariant[raw]
	if !ok {
		return model.KeywordIdentity{}, false
	}
	return m.Identity(canonical)
}

// Identity returns the identity with the given canonical label.
func (m *Mapping) Identity(canonical string) (model.KeywordIdentity, bool) {
	i, ok := m.byCanonical[canonical]
	if !ok {
		return model.KeywordIdentity{}, false
	}
	return m.Identities[i], true
}

// Canonical returns the canonical label for a raw keyword, falling back to
// the raw form itself when unmapped.
func (m *Mapping) Canonical(raw string) string {
	if c, ok := m.byVariant[raw]; ok {
		return c
	}
	return raw
}

// Save writes the mapping artifact. It is safely deletable: a fresh Resolve
// over the store regenerates it.
func (m *Mapping) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create mapping dir: %w", err)
	}
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal mapping: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write mapping: %w", err)
	}
	return nil
}

// LoadMapping reads a previously saved mapping artifact.
func LoadMapping(path string) (*Mapping, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read mapping: %w", err)
	}
	var m Mapping
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse mapping: %w", err)
	}
	m.index()
	return &m, nil
}
