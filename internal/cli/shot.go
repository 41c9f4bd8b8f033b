package cli

import (
	"strconv"

	"github.com/okian/railshot/internal/domain/model"
	"github.com/spf13/cobra"
)

// shotFlags binds the shot descriptor to command flags.
type shotFlags struct {
	rails     int
	whiteBall float64
	aim       string
	cue       float64
	path      float64
	notes     string
	contact   string
}

func (f *shotFlags) bind(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.IntVarP(&f.rails, "rails", "r", 3, "number of cushions (1-4)")
	fs.Float64VarP(&f.whiteBall, "white-ball", "w", 0, "white ball position on the diamond scale (0-8)")
	fs.StringVarP(&f.aim, "aim", "a", "0", "aim diamond (0-12) or corner_pocket")
	fs.Float64Var(&f.cue, "cue", 0, "cue position (0-15)")
	fs.Float64Var(&f.path, "path", 0, "path distance (0-12)")
	fs.StringVar(&f.notes, "notes", "", "free-form notes")
	fs.StringVar(&f.contact, "contact", "", "contact label, e.g. short_2")
}

func (f *shotFlags) shot() (model.Shot, error) {
	var aim model.Aim
	if err := aim.UnmarshalJSON([]byte(strconv.Quote(f.aim))); err != nil {
		return model.Shot{}, err
	}
	s := model.Shot{
		Rails:     f.rails,
		WhiteBall: f.whiteBall,
		Aim:       aim,
		Cue:       f.cue,
		Path:      f.path,
		Notes:     f.notes,
		Contact:   f.contact,
	}
	return s, s.Validate()
}
