package knowledge

// Default returns the built-in knowledge base.
func Default() *Base {
	return &Base{doc: defaultDocument()}
}

func defaultDocument() document {
	return document{
		Rules: []Rule{
			{
				Predicate: "rails == 1",
				Advice:    "Direct shot: favour accuracy over power",
				Tips:      []string{"Make sure the contact point is clean", "Medium power works best"},
			},
			{
				Predicate: "rails == 2",
				Advice:    "The second rail decides the shot: work out the exit angle first",
				Tips:      []string{"Use light english", "Focus on the second contact point"},
			},
			{
				Predicate: "rails >= 3",
				Advice:    "Timing matters more than power on multiple reflections",
				Tips:      []string{"The turning point is the second rail", "Long follow-through with the cue"},
			},
			{
				Predicate: "cueValue < 1.5",
				Advice:    "Light power, ideal for short distances",
				Tips:      []string{"High precision", "Light follow-through"},
			},
			{
				Predicate: "cueValue >= 1.5 && cueValue <= 3",
				Advice:    "Medium power, suits most shots",
				Tips:      []string{"Balance power and precision", "Medium english"},
			},
			{
				Predicate: "cueValue > 3",
				Advice:    "High power, for long distances or reflections",
				Tips:      []string{"Keep good control of the cue", "Strong english"},
			},
		},
		Contacts: map[string]ContactProfile{
			"long_3":  {SuccessRate: 85, Difficulty: 4, Description: "Mid point, ideal for reflections"},
			"long_4":  {SuccessRate: 80, Difficulty: 5, Description: "Good balance between power and angle"},
			"long_5":  {SuccessRate: 75, Difficulty: 6, Description: "Suited to long distances"},
			"short_2": {SuccessRate: 82, Difficulty: 5, Description: "Good point for side shots"},
		},
		Patterns: []SuccessfulPattern{
			{Contact: "long_3", Target: "pocket_tr", Cue: 2.5, Rails: 2, SuccessRate: 88},
			{Contact: "long_4", Target: "pocket_bl", Cue: 3.0, Rails: 3, SuccessRate: 76},
			{Contact: "short_2", Target: "pocket_br", Cue: 2.0, Rails: 1, SuccessRate: 92},
		},
		Mistakes: []MistakePattern{
			{
				Kind:                MistakeOverpower,
				Trigger:             "Too much power over short distances",
				Correction:          "Use only 50-60% power",
				ExpectedImprovement: "Accuracy improves by about 30%",
			},
			{
				Kind:                MistakeExcessiveSpin,
				Trigger:             "Excessive english on direct shots",
				Correction:          "Reduce the english or drop it",
				ExpectedImprovement: "A straighter path",
			},
			{
				Kind:                MistakeIgnoredPosition,
				Trigger:             "Ignoring where the white ball ends up",
				Correction:          "Plan the white ball position in advance",
				ExpectedImprovement: "Better position for the next shot",
			},
		},
		Keywords: Keywords{
			Spin:  []string{"english", "spin", "إنجليزية"},
			Power: []string{"power", "قوة"},
			Hard:  []string{"hard", "complex", "difficult", "صعب", "معقد"},
			Weights: map[string]float64{
				"english":   0.3,
				"power":     0.2,
				"precision": 0.1,
				"hard":      0.4,
				"إنجليزية":  0.3,
				"قوة":       0.2,
				"دقة":       0.1,
				"صعب":       0.4,
			},
		},
	}
}
