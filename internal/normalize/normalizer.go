// Package normalize canonicalizes noisy skill text into a stable
// dictionary of canonical skills.
package normalize

import (
	"sort"
)

// Entry is one canonical skill in the dictionary, keyed by its slug.
type Entry struct {
	CanonicalKey    string
	CanonicalLabel  string
	Aliases         map[string]struct{}
	OccurrenceCount int
	MaxSimilarity   float64
	SumSimilarity   float64
	Buckets         map[string]struct{}
}

// AvgSimilarity returns the mean similarity over all registrations.
func (e *Entry) AvgSimilarity() float64 {
	if e.OccurrenceCount == 0 {
		return 0
	}
	return e.SumSimilarity / float64(e.OccurrenceCount)
}

// SortedAliases returns the alias set in lexical order.
func (e *Entry) SortedAliases() []string {
	out := make([]string, 0, len(e.Aliases))
	for a := range e.Aliases {
		out = append(out, a)
	}
	sort.Strings(out)
	return out
}

// SortedBuckets returns the bucket set in lexical order.
func (e *Entry) SortedBuckets() []string {
	out := make([]string, 0, len(e.Buckets))
	for b := range e.Buckets {
		out = append(out, b)
	}
	sort.Strings(out)
	return out
}

// Normalizer owns the canonical-skill dictionary. Two raw strings map
// to the same entry iff their normalized, slugified forms are identical.
type Normalizer struct {
	dict       map[string]*Entry
	aliasCache map[string]string // trimmed raw text -> canonical key
	rawCount   int
}

// New returns an empty normalizer.
func New() *Normalizer {
	return &Normalizer{
		dict:       make(map[string]*Entry),
		aliasCache: make(map[string]string),
	}
}

// Register adds one raw skill mention to the dictionary. It returns the
// canonical key and true, or "" and false when the text is rejected
// (empty, too short, too long, or numeric-only).
func (n *Normalizer) Register(raw string, similarity float64, bucket string) (string, bool) {
	trimmed := trimRaw(raw)
	if trimmed == "" {
		return "", false
	}

	n.rawCount++

	normalized := normalizeLabel(trimmed)
	if normalized == "" {
		return "", false
	}
	if len(normalized) < 2 {
		return "", false
	}
	// Overlong labels are description text, not skills
	if len(normalized) > 100 {
		return "", false
	}
	if numericOnlyRe.MatchString(normalized) {
		return "", false
	}

	key := Slugify(normalized)
	if key == "" {
		return "", false
	}

	entry, ok := n.dict[key]
	if !ok {
		entry = &Entry{
			CanonicalKey:   key,
			CanonicalLabel: titleCase(trimmed),
			Aliases:        make(map[string]struct{}),
			Buckets:        make(map[string]struct{}),
		}
		n.dict[key] = entry
	}

	entry.Aliases[trimmed] = struct{}{}
	entry.OccurrenceCount++
	if similarity > entry.MaxSimilarity {
		entry.MaxSimilarity = similarity
	}
	entry.SumSimilarity += similarity
	if bucket != "" {
		entry.Buckets[bucket] = struct{}{}
	}

	n.aliasCache[trimmed] = key

	return key, true
}

// Lookup resolves raw text to a canonical key without mutating the
// dictionary. It first checks the exact-alias cache, then recomputes the
// canonicalization on the fly, so text never literally seen before can
// still resolve to a known key.
func (n *Normalizer) Lookup(raw string) (string, bool) {
	trimmed := trimRaw(raw)
	if trimmed == "" {
		return "", false
	}

	if key, ok := n.aliasCache[trimmed]; ok {
		return key, true
	}

	key := Slugify(normalizeLabel(trimmed))
	if key == "" {
		return "", false
	}
	if _, ok := n.dict[key]; ok {
		return key, true
	}
	return "", false
}

// Entry returns the dictionary entry for a canonical key.
func (n *Normalizer) Entry(key string) (*Entry, bool) {
	e, ok := n.dict[key]
	return e, ok
}

// Keys returns all canonical keys in lexical order.
func (n *Normalizer) Keys() []string {
	keys := make([]string, 0, len(n.dict))
	for k := range n.dict {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// KeysByOccurrence returns canonical keys ordered by occurrence count
// descending, ties broken lexically. Used for dictionary export.
func (n *Normalizer) KeysByOccurrence() []string {
	keys := n.Keys()
	sort.SliceStable(keys, func(i, j int) bool {
		return n.dict[keys[i]].OccurrenceCount > n.dict[keys[j]].OccurrenceCount
	})
	return keys
}

// Len returns the number of canonical skills.
func (n *Normalizer) Len() int { return len(n.dict) }

// RawCount returns the number of raw registrations attempted after
// trimming, including rejected ones.
func (n *Normalizer) RawCount() int { return n.rawCount }

// DedupRatio returns 1 - canonical/raw, the fraction of raw strings
// collapsed away by canonicalization.
func (n *Normalizer) DedupRatio() float64 {
	if n.rawCount == 0 {
		return 0
	}
	return 1 - float64(len(n.dict))/float64(n.rawCount)
}

// Stats summarizes the dictionary for reporting.
type Stats struct {
	RawSkillStrings    int     `json:"raw_skill_strings"`
	CanonicalSkills    int     `json:"canonical_skills"`
	DedupRatio         float64 `json:"dedup_ratio"`
	AvgAliasesPerSkill float64 `json:"avg_aliases_per_skill"`
}

// Stats returns normalization statistics.
func (n *Normalizer) Stats() Stats {
	aliases := 0
	for _, e := range n.dict {
		aliases += len(e.Aliases)
	}
	denom := len(n.dict)
	if denom == 0 {
		denom = 1
	}
	return Stats{
		RawSkillStrings:    n.rawCount,
		CanonicalSkills:    len(n.dict),
		DedupRatio:         round4(n.DedupRatio()),
		AvgAliasesPerSkill: round2(float64(aliases) / float64(denom)),
	}
}
