package resolve

import (
	"path/filepath"
	"testing"

	"github.com/asher407/hotwave/internal/model"
)

func TestNormalize_Variants(t *testing.T) {
	cases := []struct {
		raw  string
		want string
	}{
		{"某明星官宣", "某明星官宣"},
		{"  某明星官宣 ", "某明星官宣"},
		{"#某明星官宣#", "某明星官宣"},
		{"【爆】某明星官宣", "某明星官宣"},
		{"[热]某明星官宣", "某明星官宣"},
		{"ＡＩ大模型", "AI大模型"}, // full-width latin folds to half-width
		{"a   b\tc", "a b c"},
		{"【】", ""},
	}
	for _, tc := range cases {
		if got := Normalize(tc.raw); got != tc.want {
			t.Errorf("Normalize(%q) = %q, want %q", tc.raw, got, tc.want)
		}
	}
}

func TestResolver_Resolve_ExactMerge(t *testing.T) {
	r := NewResolver(model.ResolverConfig{MaxEditDistance: 1, MaxLengthDelta: 2})
	m := r.Resolve([]Observation{
		{Raw: "某明星官宣", Count: 5, FirstSeen: "2025-03-01"},
		{Raw: "#某明星官宣#", Count: 2, FirstSeen: "2025-03-02"},
		{Raw: "某明星官宣 ", Count: 1, FirstSeen: "2025-02-28"},
	})

	if len(m.Identities) != 1 {
		t.Fatalf("expected one identity, got %d", len(m.Identities))
	}
	id := m.Identities[0]
	if id.Canonical != "某明星官宣" {
		t.Errorf("expected the most frequent raw form as canonical, got %q", id.Canonical)
	}
	if id.Confidence != model.ConfidenceHigh {
		t.Errorf("exact merges must be high confidence, got %s", id.Confidence)
	}
	if id.FirstSeen != "2025-02-28" {
		t.Errorf("expected earliest first-seen date, got %s", id.FirstSeen)
	}
	if len(id.Variants) != 3 {
		t.Errorf("expected all raw variants kept, got %v", id.Variants)
	}
}

func TestResolver_Resolve_FuzzyMergeLowConfidence(t *testing.T) {
	r := NewResolver(model.ResolverConfig{MaxEditDistance: 1, MaxLengthDelta: 2})
	m := r.Resolve([]Observation{
		{Raw: "spring gala", Count: 4, FirstSeen: "2025-01-01"},
		{Raw: "spring galaa", Count: 1, FirstSeen: "2025-01-02"},
	})

	if len(m.Identities) != 1 {
		t.Fatalf("expected fuzzy merge into one identity, got %d", len(m.Identities))
	}
	if m.Identities[0].Confidence != model.ConfidenceLow {
		t.Errorf("fuzzy merges must be low confidence, got %s", m.Identities[0].Confidence)
	}
	if m.Identities[0].Canonical != "spring gala" {
		t.Errorf("expected the frequent form as canonical, got %q", m.Identities[0].Canonical)
	}
}

func TestResolver_Resolve_DistantStaysSeparate(t *testing.T) {
	r := NewResolver(model.ResolverConfig{MaxEditDistance: 1, MaxLengthDelta: 2})
	m := r.Resolve([]Observation{
		{Raw: "alpha", Count: 1, FirstSeen: "2025-01-01"},
		{Raw: "omega", Count: 1, FirstSeen: "2025-01-01"},
	})
	if len(m.Identities) != 2 {
		t.Errorf("expected unrelated keywords to stay separate, got %d identities", len(m.Identities))
	}
}

func TestResolver_Resolve_DisabledFuzzy(t *testing.T) {
	r := NewResolver(model.ResolverConfig{MaxEditDistance: 0, MaxLengthDelta: 2})
	m := r.Resolve([]Observation{
		{Raw: "spring gala", Count: 4, FirstSeen: "2025-01-01"},
		{Raw: "spring galaa", Count: 1, FirstSeen: "2025-01-02"},
	})
	if len(m.Identities) != 2 {
		t.Errorf("expected no fuzzy merging with distance 0, got %d identities", len(m.Identities))
	}
}

func TestResolver_Resolve_DeterministicUnderPermutation(t *testing.T) {
	obs := []Observation{
		{Raw: "aaa", Count: 2, FirstSeen: "2025-01-01"},
		{Raw: "aab", Count: 1, FirstSeen: "2025-01-02"},
		{Raw: "bbb", Count: 3, FirstSeen: "2025-01-03"},
		{Raw: "#aaa#", Count: 1, FirstSeen: "2025-01-04"},
	}
	reversed := make([]Observation, len(obs))
	for i, o := range obs {
		reversed[len(obs)-1-i] = o
	}

	r := NewResolver(model.ResolverConfig{MaxEditDistance: 1, MaxLengthDelta: 2})
	m1 := r.Resolve(obs)
	m2 := r.Resolve(reversed)

	if m1.Version != m2.Version {
		t.Errorf("expected identical mapping versions, got %s vs %s", m1.Version, m2.Version)
	}
	if len(m1.Identities) != len(m2.Identities) {
		t.Fatalf("identity counts differ: %d vs %d", len(m1.Identities), len(m2.Identities))
	}
	for i := range m1.Identities {
		if m1.Identities[i].Canonical != m2.Identities[i].Canonical {
			t.Errorf("identity %d differs: %q vs %q", i, m1.Identities[i].Canonical, m2.Identities[i].Canonical)
		}
	}
}

func TestMapping_Lookup(t *testing.T) {
	r := NewResolver(model.ResolverConfig{MaxEditDistance: 1, MaxLengthDelta: 2})
	m := r.Resolve([]Observation{
		{Raw: "某明星官宣", Count: 5, FirstSeen: "2025-03-01"},
		{Raw: "#某明星官宣#", Count: 2, FirstSeen: "2025-03-02"},
	})

	id, ok := m.Lookup("#某明星官宣#")
	if !ok || id.Canonical != "某明星官宣" {
		t.Errorf("expected variant to resolve to canonical, got %+v ok=%v", id, ok)
	}
	if got := m.Canonical("never seen"); got != "never seen" {
		t.Errorf("unknown raw must fall back to itself, got %q", got)
	}
}

func TestMapping_SaveLoadRoundTrip(t *testing.T) {
	r := NewResolver(model.ResolverConfig{MaxEditDistance: 1, MaxLengthDelta: 2})
	m := r.Resolve([]Observation{
		{Raw: "aaa", Count: 2, FirstSeen: "2025-01-01"},
		{Raw: "aab", Count: 1, FirstSeen: "2025-01-02"},
	})

	path := filepath.Join(t.TempDir(), "mapping.json")
	if err := m.Save(path); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	loaded, err := LoadMapping(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if loaded.Version != m.Version {
		t.Errorf("version changed across save/load: %s vs %s", loaded.Version, m.Version)
	}
	if got := loaded.Canonical("aab"); got != m.Canonical("aab") {
		t.Errorf("lookup differs after reload: %q vs %q", got, m.Canonical("aab"))
	}
}
