package knowledge

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadFile reads a YAML knowledge base from path. Sections missing from the
// file keep their built-in values.
func LoadFile(path string) (*Base, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read knowledge base %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes a YAML knowledge base. Sections missing from data keep their
// built-in values.
func Parse(data []byte) (*Base, error) {
	var in document
	if err := yaml.Unmarshal(data, &in); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalid, err)
	}

	doc := defaultDocument()
	if len(in.Rules) > 0 {
		doc.Rules = in.Rules
	}
	if len(in.Contacts) > 0 {
		doc.Contacts = in.Contacts
	}
	if len(in.Patterns) > 0 {
		doc.Patterns = in.Patterns
	}
	if len(in.Mistakes) > 0 {
		doc.Mistakes = in.Mistakes
	}
	if len(in.Keywords.Spin) > 0 {
		doc.Keywords.Spin = in.Keywords.Spin
	}
	if len(in.Keywords.Power) > 0 {
		doc.Keywords.Power = in.Keywords.Power
	}
	if len(in.Keywords.Hard) > 0 {
		doc.Keywords.Hard = in.Keywords.Hard
	}
	if len(in.Keywords.Weights) > 0 {
		doc.Keywords.Weights = in.Keywords.Weights
	}

	if err := validate(doc); err != nil {
		return nil, err
	}
	return &Base{doc: doc}, nil
}

func validate(doc document) error {
	for i, r := range doc.Rules {
		if r.Predicate == "" {
			return fmt.Errorf("%w: rule %d has no predicate", ErrInvalid, i)
		}
	}
	for label, c := range doc.Contacts {
		if c.SuccessRate < 0 || c.SuccessRate > 100 {
			return fmt.Errorf("%w: contact %s success rate %g outside [0,100]", ErrInvalid, label, c.SuccessRate)
		}
		if c.Difficulty < 0 || c.Difficulty > 10 {
			return fmt.Errorf("%w: contact %s difficulty %g outside [0,10]", ErrInvalid, label, c.Difficulty)
		}
	}
	for i, p := range doc.Patterns {
		if p.Rails < 1 || p.Rails > 4 {
			return fmt.Errorf("%w: pattern %d rails %d outside [1,4]", ErrInvalid, i, p.Rails)
		}
	}
	for i, m := range doc.Mistakes {
		if m.Kind == "" {
			return fmt.Errorf("%w: mistake %d has no kind", ErrInvalid, i)
		}
	}
	for kw, w := range doc.Keywords.Weights {
		if w < 0 {
			return fmt.Errorf("%w: keyword %q has negative weight", ErrInvalid, kw)
		}
	}
	return nil
}
