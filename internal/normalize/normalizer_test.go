package normalize

import (
	"strings"
	"testing"
)

func TestRegister_CollapsesVariants(t *testing.T) {
	n := New()

	variants := []string{"Python", "python ", "PYTHON."}
	var keys []string
	for _, v := range variants {
		key, ok := n.Register(v, 0.9, "")
		if !ok {
			t.Fatalf("expected %q to register", v)
		}
		keys = append(keys, key)
	}

	if keys[0] != keys[1] || keys[1] != keys[2] {
		t.Fatalf("expected one canonical key, got %v", keys)
	}
	if n.Len() != 1 {
		t.Fatalf("expected 1 canonical skill, got %d", n.Len())
	}

	entry, _ := n.Entry(keys[0])
	aliases := entry.SortedAliases()
	// Aliases hold the distinct trimmed raw forms
	if len(aliases) != 3 {
		t.Fatalf("expected 3 aliases, got %v", aliases)
	}
	if entry.OccurrenceCount != 3 {
		t.Fatalf("expected 3 occurrences, got %d", entry.OccurrenceCount)
	}
}

func TestRegister_Aggregates(t *testing.T) {
	n := New()

	n.Register("SQL", 0.6, "core")
	n.Register("sql", 0.9, "advanced")
	n.Register("SQL", 0.3, "")

	key, ok := n.Lookup("sql")
	if !ok {
		t.Fatal("lookup failed")
	}
	entry, _ := n.Entry(key)

	if entry.MaxSimilarity != 0.9 {
		t.Errorf("max similarity: expected 0.9, got %v", entry.MaxSimilarity)
	}
	if got := entry.AvgSimilarity(); got < 0.599 || got > 0.601 {
		t.Errorf("avg similarity: expected 0.6, got %v", got)
	}
	if len(entry.Buckets) != 2 {
		t.Errorf("expected 2 buckets (empty skipped), got %v", entry.SortedBuckets())
	}
}

func TestRegister_Rejections(t *testing.T) {
	n := New()

	cases := []struct {
		name string
		raw  string
	}{
		{"empty", ""},
		{"whitespace", "   "},
		{"too short", "a"},
		{"too long", strings.Repeat("x", 101)},
		{"numeric only", "123.45"},
		{"numeric with separators", "1, 2, 3"},
	}

	for _, tc := range cases {
		if _, ok := n.Register(tc.raw, 0.5, ""); ok {
			t.Errorf("%s: expected rejection for %q", tc.name, tc.raw)
		}
	}
	if n.Len() != 0 {
		t.Fatalf("expected empty dictionary, got %d entries", n.Len())
	}
}

func TestRegister_DisplayLabel(t *testing.T) {
	n := New()

	key, _ := n.Register("machine learning", 0.8, "")
	entry, _ := n.Entry(key)
	if entry.CanonicalLabel != "Machine Learning" {
		t.Errorf("expected title case, got %q", entry.CanonicalLabel)
	}

	key, _ = n.Register("SQL server", 0.8, "")
	entry, _ = n.Entry(key)
	// Short all-caps words are acronyms and keep their case
	if entry.CanonicalLabel != "SQL Server" {
		t.Errorf("expected acronym preserved, got %q", entry.CanonicalLabel)
	}

	// Label is fixed by the first registration for a key
	key2, _ := n.Register("sql Server", 0.8, "")
	if key2 != key {
		t.Fatalf("expected same key, got %q vs %q", key2, key)
	}
	entry, _ = n.Entry(key)
	if entry.CanonicalLabel != "SQL Server" {
		t.Errorf("label changed on re-registration: %q", entry.CanonicalLabel)
	}
}

func TestLookup_OnTheFly(t *testing.T) {
	n := New()
	n.Register("Data Analysis", 0.7, "")

	before := n.Len()

	// Never-seen raw form normalizing to a known key resolves
	key, ok := n.Lookup("  data   analysis!! ")
	if !ok {
		t.Fatal("expected on-the-fly lookup to resolve")
	}
	if key != "data-analysis" {
		t.Errorf("unexpected key %q", key)
	}

	// Lookup never mutates the dictionary
	if n.Len() != before {
		t.Errorf("lookup mutated dictionary: %d -> %d", before, n.Len())
	}
	if _, ok := n.Lookup("completely unknown skill"); ok {
		t.Error("expected miss for unknown skill")
	}
	if n.Len() != before {
		t.Errorf("failed lookup mutated dictionary: %d -> %d", before, n.Len())
	}
}

func TestDedupRatio_Monotonic(t *testing.T) {
	n := New()

	n.Register("Go", 0.9, "")
	n.Register("Rust", 0.9, "")
	first := n.DedupRatio()
	if first < 0 {
		t.Fatalf("ratio must be non-negative, got %v", first)
	}

	// More duplicates push the ratio up
	n.Register("go", 0.8, "")
	n.Register("GO.", 0.7, "")
	second := n.DedupRatio()
	if second <= first {
		t.Errorf("expected ratio to increase: %v -> %v", first, second)
	}
}

func TestStats(t *testing.T) {
	n := New()
	n.Register("Python", 0.9, "")
	n.Register("python", 0.8, "")
	n.Register("Java", 0.7, "")

	s := n.Stats()
	if s.RawSkillStrings != 3 {
		t.Errorf("raw count: expected 3, got %d", s.RawSkillStrings)
	}
	if s.CanonicalSkills != 2 {
		t.Errorf("canonical count: expected 2, got %d", s.CanonicalSkills)
	}
	if s.DedupRatio <= 0 {
		t.Errorf("expected positive dedup ratio, got %v", s.DedupRatio)
	}
}

func TestKeysByOccurrence(t *testing.T) {
	n := New()
	n.Register("rare skill", 0.5, "")
	n.Register("common skill", 0.5, "")
	n.Register("common skill", 0.5, "")

	keys := n.KeysByOccurrence()
	if len(keys) != 2 {
		t.Fatalf("expected 2 keys, got %d", len(keys))
	}
	if keys[0] != "common-skill" {
		t.Errorf("expected most frequent first, got %v", keys)
	}
}
