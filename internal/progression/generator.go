package progression

import (
	"log"
	"math/rand"

	"github.com/chordforge/chordforge-api/internal/models"
	"github.com/chordforge/chordforge-api/internal/theory"
	"github.com/chordforge/chordforge-api/internal/voicing"
	"github.com/google/uuid"
)

const (
	// DefaultChordBeats is the duration assigned at realization; duration
	// edits later clamp to [0.5, 8].
	DefaultChordBeats = 4.0

	// MaxProgressionChords caps progression length; extensions add at most
	// MaxExtensionChords per call.
	MaxProgressionChords = 8
	MaxExtensionChords   = 4

	progressionsPerGeneration = 3
)

// openVoicingGenres lists the genres voiced open (bass + drop-2 upper
// structure) instead of closed.
var openVoicingGenres = map[models.Genre]bool{
	models.GenreJazz:    true,
	models.GenreNeoSoul: true,
	models.GenreLoFi:    true,
}

// OpenVoicingGenre reports whether chords for the genre are voiced open.
func OpenVoicingGenre(genre models.Genre) bool {
	return openVoicingGenres[genre]
}

// Generator realizes templates into chord progressions. Every probabilistic
// decision (template pick, enrichment, borrowed-chord pick) draws from the
// injected random source, so a seeded source makes generation reproducible.
type Generator struct {
	rng *rand.Rand
}

// NewGenerator creates a generator around an injected random source.
func NewGenerator(rng *rand.Rand) *Generator {
	return &Generator{rng: rng}
}

// minorKeyAdjustments remaps degree/quality pairs into natural-minor harmony.
// Applied only when the key scale is minor; pairs not in the table pass
// through unchanged.
var minorKeyAdjustments = map[TemplateStep]TemplateStep{
	{1, models.QualMaj}:  {1, models.QualMin},
	{1, models.QualMaj7}: {1, models.QualMin7},
	{2, models.QualMin}:  {2, models.QualDim},
	{2, models.QualMin7}: {2, models.QualM7b5},
	{3, models.QualMin}:  {3, models.QualMaj},
	{3, models.QualMin7}: {3, models.QualMaj7},
	{4, models.QualMaj}:  {4, models.QualMin},
	{4, models.QualMaj7}: {4, models.QualMin7},
	{5, models.QualMaj}:  {5, models.QualMin},
	{5, models.QualDom7}: {5, models.QualMin7},
	{6, models.QualMin}:  {6, models.QualMaj},
	{6, models.QualMin7}: {6, models.QualMaj7},
	{7, models.QualDim}:  {7, models.QualMaj},
	{7, models.QualM7b5}: {7, models.QualDom7},
}

// adjustForMinorKey remaps a template step for natural-minor context.
func adjustForMinorKey(degree int, quality models.ChordQuality, key models.Key) (int, models.ChordQuality) {
	if key.Scale != models.ScaleMinor {
		return degree, quality
	}
	if adj, ok := minorKeyAdjustments[TemplateStep{degree, quality}]; ok {
		return adj.Degree, adj.Quality
	}
	return degree, quality
}

// enrichmentUpgrades maps a quality to the richer qualities it may be
// upgraded to. The upgrade is drawn uniformly when the genre's enrichment
// probability fires.
var enrichmentUpgrades = map[models.ChordQuality][]models.ChordQuality{
	models.QualMaj:  {models.QualMaj7, models.QualAdd9},
	models.QualMin:  {models.QualMin7, models.QualMin9},
	models.QualMaj7: {models.QualMaj9, models.QualMaj13},
	models.QualMin7: {models.QualMin9, models.QualMin11},
	models.QualDom7: {models.QualDom9, models.QualDom13},
}

// enrichmentChance is the per-genre probability that a chord quality gets
// upgraded. Genres without an entry use enrichmentChanceDefault.
var enrichmentChance = map[models.Genre]float64{
	models.GenreJazz:    0.5,
	models.GenreNeoSoul: 0.6,
	models.GenreGospel:  0.5,
	models.GenreLoFi:    0.4,
	models.GenreRnB:     0.4,
	models.GenreSoul:    0.35,
	models.GenreBlues:   0.3,
	models.GenreFunk:    0.25,
	models.GenreHipHop:  0.25,
	models.GenrePop:     0.15,
	models.GenreEDM:     0.1,
	models.GenreRock:    0.0,
	models.GenreMetal:   0.0,
}

const enrichmentChanceDefault = 0.1

// EnrichChord probabilistically upgrades a quality to a richer one. This is
// the sole stochastic coloring mechanism; everything else about realization
// is deterministic given the template.
func (g *Generator) EnrichChord(quality models.ChordQuality, genre models.Genre) models.ChordQuality {
	upgrades, ok := enrichmentUpgrades[quality]
	if !ok {
		return quality
	}
	chance, ok := enrichmentChance[genre]
	if !ok {
		chance = enrichmentChanceDefault
	}
	if g.rng.Float64() >= chance {
		return quality
	}
	return upgrades[g.rng.Intn(len(upgrades))]
}

// CreateChordFromDegree realizes one template step: minor-key adjustment,
// enrichment, root resolution, then voicing threaded from the previous
// chord's notes.
func (g *Generator) CreateChordFromDegree(key models.Key, degree int, quality models.ChordQuality, previous []int, genre models.Genre) models.Chord {
	degree, quality = adjustForMinorKey(degree, quality, key)
	quality = g.EnrichChord(quality, genre)
	root := theory.ScaleDegreeNote(key, degree)
	notes := voicing.Voice(root, quality, previous, voicing.DefaultRange, openVoicingGenres[genre])

	return models.Chord{
		ID:            uuid.New().String(),
		Root:          root,
		Quality:       quality,
		Notes:         notes,
		DisplayName:   theory.DisplayName(root, quality),
		DurationBeats: DefaultChordBeats,
	}
}

// GenerateFromTemplate folds CreateChordFromDegree over a template, threading
// voicing context chord-to-chord. The first chord has no previous context and
// therefore gets a closed (or open) voicing from scratch.
func (g *Generator) GenerateFromTemplate(key models.Key, template Template, label string, genre models.Genre) models.ChordProgression {
	chords := make([]models.Chord, 0, len(template))
	var previous []int
	for _, step := range template {
		chord := g.CreateChordFromDegree(key, step.Degree, step.Quality, previous, genre)
		previous = chord.Notes
		chords = append(chords, chord)
	}
	return models.ChordProgression{
		ID:     uuid.New().String(),
		Label:  label,
		Chords: chords,
	}
}

// GenerateProgressions draws three distinct templates for the genre/mood and
// realizes one "Main" and two "Bridge N" progressions. When fewer than three
// templates exist the default bank supplements the pool; duplicates are a
// last resort only.
func (g *Generator) GenerateProgressions(key models.Key, genre models.Genre, mood models.Mood) []models.ChordProgression {
	templates := g.pickDistinctTemplates(TemplatesFor(genre, mood), progressionsPerGeneration)

	log.Printf("🎼 Generating %d progressions (bank: %s)", len(templates), bankKey(genre, mood))

	labels := []string{"Main", "Bridge 1", "Bridge 2"}
	progressions := make([]models.ChordProgression, 0, len(templates))
	for i, tmpl := range templates {
		progressions = append(progressions, g.GenerateFromTemplate(key, tmpl, labels[i], genre))
	}
	return progressions
}

// RegenerateProgression draws a single fresh template, independent of any
// existing progression content.
func (g *Generator) RegenerateProgression(key models.Key, genre models.Genre, mood models.Mood, label string) models.ChordProgression {
	templates := TemplatesFor(genre, mood)
	tmpl := templates[g.rng.Intn(len(templates))]
	return g.GenerateFromTemplate(key, tmpl, label, genre)
}

// pickDistinctTemplates draws n templates without replacement, topping the
// pool up from the default bank when the genre/mood bank is short. If even
// the combined pool is short, remaining picks repeat from the pool.
func (g *Generator) pickDistinctTemplates(pool []Template, n int) []Template {
	combined := make([]Template, len(pool))
	copy(combined, pool)
	if len(combined) < n {
		combined = append(combined, defaultTemplates...)
	}

	picked := make([]Template, 0, n)
	remaining := make([]Template, len(combined))
	copy(remaining, combined)
	for len(picked) < n {
		if len(remaining) == 0 {
			// Last resort: allow duplicates.
			picked = append(picked, combined[g.rng.Intn(len(combined))])
			continue
		}
		idx := g.rng.Intn(len(remaining))
		picked = append(picked, remaining[idx])
		remaining = append(remaining[:idx], remaining[idx+1:]...)
	}
	return picked
}

// GenerateExtensionChords adds up to four chords to an existing progression,
// hard-capped at eight total. Returns only the added chords; an empty slice
// once the cap is reached.
func (g *Generator) GenerateExtensionChords(existing []models.Chord, key models.Key, genre models.Genre, mood models.Mood) []models.Chord {
	room := MaxProgressionChords - len(existing)
	if room <= 0 {
		return nil
	}
	if room > MaxExtensionChords {
		room = MaxExtensionChords
	}

	// Genre/mood templates when the bank has them, otherwise the fixed
	// extension bank (not the generic defaults, which are full-length).
	pool := extensionTemplates
	if _, ok := templateBank[genre]; ok {
		pool = TemplatesFor(genre, mood)
	}
	tmpl := pool[g.rng.Intn(len(pool))]
	if len(tmpl) > room {
		tmpl = tmpl[:room]
	}

	var previous []int
	if len(existing) > 0 {
		previous = existing[len(existing)-1].Notes
	}

	added := make([]models.Chord, 0, len(tmpl))
	for _, step := range tmpl {
		chord := g.CreateChordFromDegree(key, step.Degree, step.Quality, previous, genre)
		previous = chord.Notes
		added = append(added, chord)
	}
	return added
}
