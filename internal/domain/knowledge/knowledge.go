// Package knowledge holds the immutable tables the heuristic scorer reads:
// advice rules, contact profiles, successful patterns, mistake corrections
// and note keywords.
package knowledge

import (
	"slices"
	"strings"
)

// Mistake kinds referenced by the scorer.
const (
	MistakeOverpower       = "overpower"
	MistakeExcessiveSpin   = "excessive_spin"
	MistakeIgnoredPosition = "ignored_position"
)

// Rule attaches advice to a registered predicate key.
type Rule struct {
	Predicate string   `yaml:"predicate" json:"predicate"`
	Advice    string   `yaml:"advice" json:"advice"`
	Tips      []string `yaml:"tips" json:"tips"`
}

// ContactProfile is the historical record of a named contact point.
type ContactProfile struct {
	SuccessRate float64 `yaml:"success_rate" json:"success_rate"`
	Difficulty  float64 `yaml:"difficulty" json:"difficulty"`
	Description string  `yaml:"description" json:"description"`
}

// SuccessfulPattern is a known good combination of contact, cue and rails.
type SuccessfulPattern struct {
	Contact     string  `yaml:"contact" json:"contact"`
	Target      string  `yaml:"target" json:"target"`
	Cue         float64 `yaml:"cue" json:"cue"`
	Rails       int     `yaml:"rails" json:"rails"`
	SuccessRate float64 `yaml:"success_rate" json:"success_rate"`
}

// MistakePattern pairs a common execution mistake with its correction.
type MistakePattern struct {
	Kind                string `yaml:"kind" json:"kind"`
	Trigger             string `yaml:"trigger" json:"trigger"`
	Correction          string `yaml:"correction" json:"correction"`
	ExpectedImprovement string `yaml:"expected_improvement" json:"expected_improvement"`
}

// Keywords are the note scan tables. Matching is case-insensitive substring.
type Keywords struct {
	Spin  []string `yaml:"spin" json:"spin"`
	Power []string `yaml:"power" json:"power"`
	Hard  []string `yaml:"hard" json:"hard"`
	// Weights feed the notes feature; every contained keyword adds its weight.
	Weights map[string]float64 `yaml:"weights" json:"weights"`
}

// document is the serialized form shared by Default and Parse.
type document struct {
	Rules    []Rule                    `yaml:"rules"`
	Contacts map[string]ContactProfile `yaml:"contacts"`
	Patterns []SuccessfulPattern       `yaml:"patterns"`
	Mistakes []MistakePattern          `yaml:"mistakes"`
	Keywords Keywords                  `yaml:"keywords"`
}

// Base is a loaded knowledge base. It is never mutated after construction;
// accessors hand out copies.
type Base struct {
	doc document
}

// Rules returns the advice rules in evaluation order.
func (b *Base) Rules() []Rule {
	out := make([]Rule, len(b.doc.Rules))
	for i, r := range b.doc.Rules {
		r.Tips = slices.Clone(r.Tips)
		out[i] = r
	}
	return out
}

// Contact looks up a contact profile by label.
func (b *Base) Contact(label string) (ContactProfile, bool) {
	p, ok := b.doc.Contacts[label]
	return p, ok
}

// ContactLabels returns the known contact labels, sorted.
func (b *Base) ContactLabels() []string {
	out := make([]string, 0, len(b.doc.Contacts))
	for k := range b.doc.Contacts {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}

// Patterns returns the successful patterns in their stored order.
func (b *Base) Patterns() []SuccessfulPattern {
	return slices.Clone(b.doc.Patterns)
}

// Mistake looks up a mistake pattern by kind.
func (b *Base) Mistake(kind string) (MistakePattern, bool) {
	for _, m := range b.doc.Mistakes {
		if m.Kind == kind {
			return m, true
		}
	}
	return MistakePattern{}, false
}

// Mistakes returns every mistake pattern.
func (b *Base) Mistakes() []MistakePattern {
	return slices.Clone(b.doc.Mistakes)
}

// MentionsSpin reports whether notes ask for english.
func (b *Base) MentionsSpin(notes string) bool {
	return containsAny(notes, b.doc.Keywords.Spin)
}

// MentionsPower reports whether notes talk about power.
func (b *Base) MentionsPower(notes string) bool {
	return containsAny(notes, b.doc.Keywords.Power)
}

// MentionsHard reports whether notes flag the shot as hard or complex.
func (b *Base) MentionsHard(notes string) bool {
	return containsAny(notes, b.doc.Keywords.Hard)
}

// NoteScore sums the weights of every keyword contained in notes.
func (b *Base) NoteScore(notes string) float64 {
	if notes == "" {
		return 0
	}
	lower := strings.ToLower(notes)
	keys := make([]string, 0, len(b.doc.Keywords.Weights))
	for kw := range b.doc.Keywords.Weights {
		keys = append(keys, kw)
	}
	// fixed summation order keeps the feature bit-for-bit reproducible
	slices.Sort(keys)
	var score float64
	for _, kw := range keys {
		if strings.Contains(lower, strings.ToLower(kw)) {
			score += b.doc.Keywords.Weights[kw]
		}
	}
	return score
}

func containsAny(notes string, keywords []string) bool {
	if notes == "" {
		return false
	}
	lower := strings.ToLower(notes)
	for _, kw := range keywords {
		if kw != "" && strings.Contains(lower, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}
