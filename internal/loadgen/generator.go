package loadgen

import (
	"math"
	"math/rand/v2"

	"github.com/okian/railshot/internal/domain/model"
)

// One shot in cornerEvery aims at the corner pocket.
const cornerEvery = 12

var notes = []string{
	"",
	"",
	"needs heavy spin",
	"hit it with power",
	"tricky kiss risk",
	"soft touch",
}

// GenerateShots returns n valid shots drawn from a seeded source. The same
// seed yields the same shots.
func GenerateShots(n int, seed uint64) []model.Shot {
	r := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	shots := make([]model.Shot, n)
	for i := range shots {
		s := model.Shot{
			Rails:     1 + r.IntN(model.MaxRails),
			WhiteBall: tenth(r.Float64() * model.MaxWhiteBall),
			Aim:       model.AimAt(tenth(r.Float64() * model.MaxAim)),
			Cue:       tenth(r.Float64() * model.MaxCue),
			Path:      tenth(r.Float64() * model.MaxPath),
			Notes:     notes[r.IntN(len(notes))],
		}
		if r.IntN(cornerEvery) == 0 {
			s.Aim = model.CornerPocket()
		}
		shots[i] = s
	}
	return shots
}

func tenth(v float64) float64 { return math.Round(v*10) / 10 }
