package progression

import (
	"strings"

	"github.com/chordforge/chordforge-api/internal/models"
)

// TemplateStep is one (scale degree, quality) pair of a progression template.
// Degrees are 1-based and wrap modulo 7.
type TemplateStep struct {
	Degree  int
	Quality models.ChordQuality
}

// Template is the generative seed for a progression.
type Template []TemplateStep

// templateBank is static reference data keyed by "Genre_Mood". Lookup falls
// back to every entry for the genre, then to defaultTemplates.
var templateBank = map[models.Genre]map[models.Mood][]Template{
	models.GenrePop: {
		models.MoodHappy: {
			{{1, models.QualMaj}, {5, models.QualMaj}, {6, models.QualMin}, {4, models.QualMaj}},
			{{1, models.QualMaj}, {4, models.QualMaj}, {5, models.QualMaj}, {4, models.QualMaj}},
			{{1, models.QualMaj}, {6, models.QualMin}, {4, models.QualMaj}, {5, models.QualMaj}},
		},
		models.MoodSad: {
			{{6, models.QualMin}, {4, models.QualMaj}, {1, models.QualMaj}, {5, models.QualMaj}},
			{{1, models.QualMaj}, {3, models.QualMin}, {6, models.QualMin}, {4, models.QualMaj}},
		},
		models.MoodEnergetic: {
			{{1, models.QualMaj}, {5, models.QualMaj}, {4, models.QualMaj}, {5, models.QualMaj}},
			{{4, models.QualMaj}, {5, models.QualMaj}, {1, models.QualMaj}, {1, models.QualMaj}},
		},
	},
	models.GenreRock: {
		models.MoodEnergetic: {
			{{1, models.QualMaj}, {4, models.QualMaj}, {5, models.QualMaj}, {4, models.QualMaj}},
			{{1, models.QualMaj}, {7, models.QualMaj}, {4, models.QualMaj}, {1, models.QualMaj}},
			{{1, models.QualMaj}, {5, models.QualMaj}, {6, models.QualMin}, {4, models.QualMaj}},
		},
		models.MoodDark: {
			{{6, models.QualMin}, {4, models.QualMaj}, {5, models.QualMaj}, {6, models.QualMin}},
			{{1, models.QualMin}, {6, models.QualMaj}, {7, models.QualMaj}, {1, models.QualMin}},
		},
	},
	models.GenreJazz: {
		models.MoodChill: {
			{{2, models.QualMin7}, {5, models.QualDom7}, {1, models.QualMaj7}, {1, models.QualMaj7}},
			{{1, models.QualMaj7}, {6, models.QualMin7}, {2, models.QualMin7}, {5, models.QualDom7}},
			{{3, models.QualMin7}, {6, models.QualDom7}, {2, models.QualMin7}, {5, models.QualDom7}},
		},
		models.MoodDreamy: {
			{{1, models.QualMaj7}, {4, models.QualMaj7}, {3, models.QualMin7}, {6, models.QualMin7}},
			{{2, models.QualMin7}, {5, models.QualDom7}, {3, models.QualMin7}, {6, models.QualDom7}},
		},
		models.MoodSad: {
			{{2, models.QualM7b5}, {5, models.QualDom7}, {1, models.QualMin7}, {1, models.QualMin7}},
			{{6, models.QualMin7}, {2, models.QualMin7}, {5, models.QualDom7}, {1, models.QualMaj7}},
		},
	},
	models.GenreBlues: {
		models.MoodChill: {
			{{1, models.QualDom7}, {4, models.QualDom7}, {1, models.QualDom7}, {5, models.QualDom7}},
			{{1, models.QualDom7}, {4, models.QualDom7}, {5, models.QualDom7}, {1, models.QualDom7}},
		},
	},
	models.GenreNeoSoul: {
		models.MoodChill: {
			{{2, models.QualMin7}, {3, models.QualMin7}, {4, models.QualMaj7}, {3, models.QualMin7}},
			{{1, models.QualMaj7}, {4, models.QualMaj7}, {6, models.QualMin7}, {5, models.QualDom7}},
		},
		models.MoodDreamy: {
			{{4, models.QualMaj7}, {3, models.QualMin7}, {6, models.QualMin7}, {2, models.QualMin7}},
		},
	},
	models.GenreLoFi: {
		models.MoodChill: {
			{{1, models.QualMaj7}, {6, models.QualMin7}, {4, models.QualMaj7}, {5, models.QualDom7}},
			{{2, models.QualMin7}, {5, models.QualDom7}, {1, models.QualMaj7}, {6, models.QualMin7}},
		},
		models.MoodSad: {
			{{6, models.QualMin7}, {4, models.QualMaj7}, {2, models.QualMin7}, {5, models.QualDom7}},
		},
	},
	models.GenreRnB: {
		models.MoodChill: {
			{{1, models.QualMaj7}, {3, models.QualMin7}, {6, models.QualMin7}, {4, models.QualMaj7}},
			{{4, models.QualMaj7}, {5, models.QualDom7}, {3, models.QualMin7}, {6, models.QualMin7}},
		},
	},
	models.GenreSoul: {
		models.MoodHappy: {
			{{1, models.QualMaj7}, {4, models.QualMaj7}, {5, models.QualDom7}, {4, models.QualMaj7}},
		},
	},
	models.GenreGospel: {
		models.MoodHappy: {
			{{1, models.QualMaj7}, {4, models.QualMaj7}, {1, models.QualMaj7}, {5, models.QualDom7}},
			{{1, models.QualMaj}, {3, models.QualDom7}, {6, models.QualMin7}, {5, models.QualDom7}},
		},
	},
	models.GenreFunk: {
		models.MoodEnergetic: {
			{{1, models.QualDom7}, {4, models.QualDom7}, {1, models.QualDom7}, {4, models.QualDom7}},
			{{2, models.QualMin7}, {5, models.QualDom7}, {2, models.QualMin7}, {5, models.QualDom7}},
		},
	},
	models.GenreHipHop: {
		models.MoodDark: {
			{{6, models.QualMin}, {4, models.QualMaj}, {6, models.QualMin}, {5, models.QualMaj}},
			{{1, models.QualMin7}, {6, models.QualMaj7}, {1, models.QualMin7}, {7, models.QualDom7}},
		},
		models.MoodChill: {
			{{2, models.QualMin7}, {6, models.QualMin7}, {4, models.QualMaj7}, {5, models.QualDom7}},
		},
	},
	models.GenreEDM: {
		models.MoodEnergetic: {
			{{6, models.QualMin}, {4, models.QualMaj}, {1, models.QualMaj}, {5, models.QualMaj}},
			{{1, models.QualMaj}, {5, models.QualMaj}, {6, models.QualMin}, {4, models.QualMaj}},
		},
	},
	models.GenreHouse: {
		models.MoodEnergetic: {
			{{6, models.QualMin7}, {1, models.QualMaj7}, {2, models.QualMin7}, {4, models.QualMaj7}},
		},
	},
	models.GenreTrance: {
		models.MoodDreamy: {
			{{6, models.QualMin}, {4, models.QualMaj}, {1, models.QualMaj}, {5, models.QualMaj}},
		},
	},
	models.GenreAmbient: {
		models.MoodDreamy: {
			{{1, models.QualMaj7}, {4, models.QualMaj7}, {1, models.QualMaj7}, {4, models.QualMaj7}},
			{{1, models.QualSus2}, {5, models.QualSus4}, {6, models.QualMin7}, {4, models.QualMaj7}},
		},
	},
	models.GenreClassical: {
		models.MoodHappy: {
			{{1, models.QualMaj}, {4, models.QualMaj}, {5, models.QualDom7}, {1, models.QualMaj}},
			{{1, models.QualMaj}, {6, models.QualMin}, {2, models.QualMin}, {5, models.QualDom7}},
		},
		models.MoodSad: {
			{{1, models.QualMin}, {4, models.QualMin}, {5, models.QualDom7}, {1, models.QualMin}},
		},
	},
	models.GenreCinematic: {
		models.MoodDark: {
			{{1, models.QualMin}, {6, models.QualMaj}, {3, models.QualMaj}, {7, models.QualMaj}},
			{{1, models.QualMin}, {4, models.QualMin}, {6, models.QualMaj}, {5, models.QualMaj}},
		},
	},
	models.GenreLatin: {
		models.MoodEnergetic: {
			{{1, models.QualMin}, {4, models.QualMin7}, {5, models.QualDom7}, {1, models.QualMin}},
		},
	},
	models.GenreReggae: {
		models.MoodChill: {
			{{1, models.QualMaj}, {4, models.QualMaj}, {1, models.QualMaj}, {5, models.QualMaj}},
		},
	},
	models.GenreMetal: {
		models.MoodDark: {
			{{1, models.QualMin}, {6, models.QualMaj}, {7, models.QualMaj}, {1, models.QualMin}},
			{{1, models.QualMin}, {3, models.QualMaj}, {7, models.QualMaj}, {6, models.QualMaj}},
		},
	},
	models.GenreIndie: {
		models.MoodDreamy: {
			{{1, models.QualMaj}, {3, models.QualMin}, {4, models.QualMaj}, {6, models.QualMin}},
			{{1, models.QualMaj7}, {2, models.QualMin7}, {4, models.QualMaj7}, {1, models.QualMaj7}},
		},
	},
	models.GenreCountry: {
		models.MoodHappy: {
			{{1, models.QualMaj}, {4, models.QualMaj}, {5, models.QualMaj}, {1, models.QualMaj}},
		},
	},
	models.GenreFolk: {
		models.MoodChill: {
			{{1, models.QualMaj}, {5, models.QualMaj}, {4, models.QualMaj}, {1, models.QualMaj}},
			{{1, models.QualMaj}, {2, models.QualMin}, {4, models.QualMaj}, {5, models.QualMaj}},
		},
	},
	models.GenreTechno: {
		models.MoodDark: {
			{{1, models.QualMin}, {1, models.QualMin}, {6, models.QualMaj}, {7, models.QualMaj}},
		},
	},
}

// defaultTemplates is the generic bank every lookup can fall back to.
// Guaranteed non-empty, so template selection has no failure path.
var defaultTemplates = []Template{
	{{1, models.QualMaj}, {5, models.QualMaj}, {6, models.QualMin}, {4, models.QualMaj}},
	{{2, models.QualMin7}, {5, models.QualDom7}, {1, models.QualMaj7}, {1, models.QualMaj7}},
	{{1, models.QualMaj}, {6, models.QualMin}, {4, models.QualMaj}, {5, models.QualMaj}},
}

// extensionTemplates seed progression extensions when the genre/mood bank has
// no entry. Kept short so extensions stay within the 8-chord cap.
var extensionTemplates = []Template{
	{{4, models.QualMaj7}, {5, models.QualDom7}},
	{{2, models.QualMin7}, {5, models.QualDom7}, {1, models.QualMaj7}},
	{{6, models.QualMin7}, {4, models.QualMaj7}},
	{{1, models.QualMaj7}, {4, models.QualMaj7}},
	{{2, models.QualMin7}, {5, models.QualDom7}},
}

var moodOrder = []models.Mood{
	models.MoodHappy, models.MoodSad, models.MoodDreamy,
	models.MoodEnergetic, models.MoodDark, models.MoodChill,
}

// TemplatesFor looks up templates for an exact genre/mood pair, falling back
// to all templates of the genre, then to the default bank. Always returns at
// least one template.
func TemplatesFor(genre models.Genre, mood models.Mood) []Template {
	if byMood, ok := templateBank[genre]; ok {
		if templates, ok := byMood[mood]; ok && len(templates) > 0 {
			return templates
		}
		// Union across moods in a fixed order so seeded draws stay
		// reproducible.
		var all []Template
		for _, m := range moodOrder {
			all = append(all, byMood[m]...)
		}
		if len(all) > 0 {
			return all
		}
	}
	return defaultTemplates
}

// DefaultTemplates exposes the generic fallback bank.
func DefaultTemplates() []Template {
	return defaultTemplates
}

// bankKey is retained for logging: "Jazz_Chill" style identifiers.
func bankKey(genre models.Genre, mood models.Mood) string {
	return strings.ReplaceAll(string(genre), " ", "") + "_" + string(mood)
}
