package knowledge_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/okian/railshot/internal/domain/knowledge"
	. "github.com/smartystreets/goconvey/convey"
)

func TestDefault(t *testing.T) {
	Convey("Given the built-in knowledge base", t, func() {
		kb := knowledge.Default()

		Convey("Then it carries the six advice rules in order", func() {
			rules := kb.Rules()
			So(len(rules), ShouldEqual, 6)
			So(rules[0].Predicate, ShouldEqual, "rails == 1")
			So(rules[5].Predicate, ShouldEqual, "cueValue > 3")
		})

		Convey("Then contact profiles are keyed by label", func() {
			p, ok := kb.Contact("long_3")
			So(ok, ShouldBeTrue)
			So(p.SuccessRate, ShouldEqual, 85.0)
			So(p.Difficulty, ShouldEqual, 4.0)

			_, ok = kb.Contact("long_9")
			So(ok, ShouldBeFalse)
			So(kb.ContactLabels(), ShouldResemble, []string{"long_3", "long_4", "long_5", "short_2"})
		})

		Convey("Then accessors hand out copies", func() {
			rules := kb.Rules()
			rules[0].Tips[0] = "changed"
			patterns := kb.Patterns()
			patterns[0].Cue = 9

			So(kb.Rules()[0].Tips[0], ShouldNotEqual, "changed")
			So(kb.Patterns()[0].Cue, ShouldEqual, 2.5)
		})

		Convey("Then mistakes are found by kind", func() {
			m, ok := kb.Mistake(knowledge.MistakeOverpower)
			So(ok, ShouldBeTrue)
			So(m.Correction, ShouldContainSubstring, "50-60%")
			So(len(kb.Mistakes()), ShouldEqual, 3)
		})
	})
}

func TestKeywords(t *testing.T) {
	Convey("Given note keyword scans", t, func() {
		kb := knowledge.Default()

		Convey("Then matching is case-insensitive in both languages", func() {
			So(kb.MentionsSpin("Needs English on the second rail"), ShouldBeTrue)
			So(kb.MentionsSpin("ضربة مع إنجليزية"), ShouldBeTrue)
			So(kb.MentionsPower("more POWER"), ShouldBeTrue)
			So(kb.MentionsHard("ضربة صعب"), ShouldBeTrue)
			So(kb.MentionsHard(""), ShouldBeFalse)
			So(kb.MentionsSpin("plain shot"), ShouldBeFalse)
		})

		Convey("Then the note score is additive", func() {
			So(kb.NoteScore(""), ShouldEqual, 0.0)
			So(kb.NoteScore("english"), ShouldAlmostEqual, 0.3)
			So(kb.NoteScore("hard shot with english and power"), ShouldAlmostEqual, 0.9)
		})
	})
}

func TestParse(t *testing.T) {
	Convey("Given a YAML knowledge base", t, func() {
		Convey("When only contacts are overridden", func() {
			kb, err := knowledge.Parse([]byte(`
contacts:
  long_2:
    success_rate: 90
    difficulty: 3
    description: close to the corner
`))
			So(err, ShouldBeNil)

			Convey("Then the other sections keep their defaults", func() {
				_, ok := kb.Contact("long_3")
				So(ok, ShouldBeFalse)
				p, ok := kb.Contact("long_2")
				So(ok, ShouldBeTrue)
				So(p.SuccessRate, ShouldEqual, 90.0)
				So(len(kb.Rules()), ShouldEqual, 6)
			})
		})

		Convey("When a contact rate is out of range", func() {
			_, err := knowledge.Parse([]byte("contacts:\n  long_2: {success_rate: 120, difficulty: 3}\n"))
			So(errors.Is(err, knowledge.ErrInvalid), ShouldBeTrue)
		})

		Convey("When a rule has no predicate", func() {
			_, err := knowledge.Parse([]byte("rules:\n  - advice: nothing\n"))
			So(errors.Is(err, knowledge.ErrInvalid), ShouldBeTrue)
		})

		Convey("When the YAML is malformed", func() {
			_, err := knowledge.Parse([]byte("rules: [unterminated"))
			So(errors.Is(err, knowledge.ErrInvalid), ShouldBeTrue)
		})

		Convey("When loading from a file", func() {
			path := filepath.Join(t.TempDir(), "kb.yaml")
			So(os.WriteFile(path, []byte("patterns:\n  - {contact: long_5, target: pocket_tl, cue: 3.5, rails: 4, success_rate: 61}\n"), 0o600), ShouldBeNil)

			kb, err := knowledge.LoadFile(path)
			So(err, ShouldBeNil)
			So(kb.Patterns(), ShouldHaveLength, 1)
			So(kb.Patterns()[0].Rails, ShouldEqual, 4)

			_, err = knowledge.LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
			So(err, ShouldNotBeNil)
		})
	})
}
