package progression

import (
	"math/rand"
	"testing"

	"github.com/chordforge/chordforge-api/internal/models"
	"github.com/chordforge/chordforge-api/internal/theory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cMajor() models.Key {
	return models.Key{Root: 0, Scale: models.ScaleMajor}
}

func aMinor() models.Key {
	return models.Key{Root: 9, Scale: models.ScaleMinor}
}

func seeded(seed int64) *Generator {
	return NewGenerator(rand.New(rand.NewSource(seed)))
}

// Two generators with the same seed must realize a template into identical
// note sets.
func TestGenerateFromTemplate_DeterministicUnderFixedSeed(t *testing.T) {
	tmpl := Template{
		{2, models.QualMin7}, {5, models.QualDom7}, {1, models.QualMaj7}, {6, models.QualMin7},
	}

	a := seeded(42).GenerateFromTemplate(cMajor(), tmpl, "Main", models.GenreJazz)
	b := seeded(42).GenerateFromTemplate(cMajor(), tmpl, "Main", models.GenreJazz)

	require.Len(t, a.Chords, len(tmpl))
	require.Len(t, b.Chords, len(tmpl))
	for i := range a.Chords {
		assert.Equal(t, a.Chords[i].Quality, b.Chords[i].Quality, "chord %d quality", i)
		assert.Equal(t, a.Chords[i].Notes, b.Chords[i].Notes, "chord %d notes", i)
		assert.Equal(t, a.Chords[i].Root, b.Chords[i].Root, "chord %d root", i)
	}
}

func TestGenerateFromTemplate_RealizesDegrees(t *testing.T) {
	g := seeded(1)
	tmpl := Template{{1, models.QualMaj}, {4, models.QualMaj}, {5, models.QualMaj}}

	// Rock has zero enrichment probability, so qualities survive untouched.
	prog := g.GenerateFromTemplate(cMajor(), tmpl, "Main", models.GenreRock)

	require.Len(t, prog.Chords, 3)
	assert.Equal(t, 0, prog.Chords[0].Root) // C
	assert.Equal(t, 5, prog.Chords[1].Root) // F
	assert.Equal(t, 7, prog.Chords[2].Root) // G
	for i, c := range prog.Chords {
		assert.Equal(t, models.QualMaj, c.Quality, "chord %d", i)
		assert.Equal(t, DefaultChordBeats, c.DurationBeats, "chord %d", i)
		assert.NotEmpty(t, c.ID, "chord %d", i)
		assert.Len(t, c.Notes, len(theory.ChordIntervals(c.Quality)), "chord %d", i)
	}
}

func TestGenerateProgressions_MainPlusTwoBridges(t *testing.T) {
	progs := seeded(7).GenerateProgressions(cMajor(), models.GenrePop, models.MoodHappy)

	require.Len(t, progs, 3)
	assert.Equal(t, "Main", progs[0].Label)
	assert.Equal(t, "Bridge 1", progs[1].Label)
	assert.Equal(t, "Bridge 2", progs[2].Label)
	for _, p := range progs {
		assert.NotEmpty(t, p.ID)
		assert.NotEmpty(t, p.Chords)
	}
}

// A genre with entries but no exact mood match returns the union of the
// genre's templates, not the global defaults.
func TestTemplatesFor_GenreFallbackUnion(t *testing.T) {
	got := TemplatesFor(models.GenreRock, models.MoodDreamy)

	var want int
	for _, templates := range templateBank[models.GenreRock] {
		want += len(templates)
	}
	require.NotZero(t, want)
	assert.Len(t, got, want)
}

func TestTemplatesFor_UnknownGenreUsesDefaults(t *testing.T) {
	got := TemplatesFor(models.Genre("Polka"), models.MoodHappy)
	assert.Equal(t, DefaultTemplates(), got)
}

func TestTemplatesFor_ExactMatch(t *testing.T) {
	got := TemplatesFor(models.GenreJazz, models.MoodChill)
	assert.Equal(t, templateBank[models.GenreJazz][models.MoodChill], got)
}

func TestAdjustForMinorKey(t *testing.T) {
	tests := []struct {
		degree      int
		quality     models.ChordQuality
		wantDegree  int
		wantQuality models.ChordQuality
	}{
		{1, models.QualMaj, 1, models.QualMin},
		{6, models.QualMin, 6, models.QualMaj},
		{5, models.QualDom7, 5, models.QualMin7},
		{2, models.QualMin7, 2, models.QualM7b5},
		// Pairs outside the table pass through.
		{1, models.QualSus2, 1, models.QualSus2},
	}

	for _, tt := range tests {
		d, q := adjustForMinorKey(tt.degree, tt.quality, aMinor())
		assert.Equal(t, tt.wantDegree, d, "%d/%s", tt.degree, tt.quality)
		assert.Equal(t, tt.wantQuality, q, "%d/%s", tt.degree, tt.quality)
	}

	// No remapping in major keys.
	d, q := adjustForMinorKey(1, models.QualMaj, cMajor())
	assert.Equal(t, 1, d)
	assert.Equal(t, models.QualMaj, q)
}

func TestEnrichChord(t *testing.T) {
	// Rock enrichment probability is zero: always a pass-through.
	g := seeded(3)
	for i := 0; i < 50; i++ {
		assert.Equal(t, models.QualMaj7, g.EnrichChord(models.QualMaj7, models.GenreRock))
	}

	// Jazz upgrades roughly half the time, and only within the upgrade map.
	g = seeded(3)
	upgraded := 0
	for i := 0; i < 200; i++ {
		q := g.EnrichChord(models.QualMaj7, models.GenreJazz)
		switch q {
		case models.QualMaj7:
		case models.QualMaj9, models.QualMaj13:
			upgraded++
		default:
			t.Fatalf("unexpected upgrade target: %s", q)
		}
	}
	assert.Greater(t, upgraded, 50)
	assert.Less(t, upgraded, 150)

	// Qualities without an upgrade entry never change.
	assert.Equal(t, models.QualDim7, g.EnrichChord(models.QualDim7, models.GenreJazz))
}

// Inserting between C major and G major in C major key: roots C(60) and
// G(67) have midpoint 63.5 -> 64 (E), an in-scale tone.
func TestGeneratePassingChord_Scenario(t *testing.T) {
	g := seeded(9)
	prev := g.CreateChordFromDegree(cMajor(), 1, models.QualMaj, nil, models.GenreRock)
	next := g.CreateChordFromDegree(cMajor(), 5, models.QualMaj, prev.Notes, models.GenreRock)

	passing := g.GeneratePassingChord(prev, next, cMajor(), models.GenreRock)

	assert.Equal(t, 4, passing.Root, "expected E root")
	assert.Equal(t, PassingChordBeats, passing.DurationBeats)
	assert.Equal(t, models.QualMaj7, passing.Quality, "both neighbors major -> maj7 default")
}

func TestGeneratePassingChord_QualityRules(t *testing.T) {
	g := seeded(9)
	minor := models.Chord{Root: 9, Quality: models.QualMin7, Notes: []int{57, 60, 64, 67}, DurationBeats: 4}
	major := models.Chord{Root: 0, Quality: models.QualMaj, Notes: []int{60, 64, 67}, DurationBeats: 4}
	dominant := models.Chord{Root: 7, Quality: models.QualDom7, Notes: []int{55, 59, 62, 65}, DurationBeats: 4}

	p := g.GeneratePassingChord(minor, major, cMajor(), models.GenreRock)
	assert.Equal(t, models.QualMin7, p.Quality, "minor neighbor forces min7")

	// A dominant neighbor wins over the minor rule.
	p = g.GeneratePassingChord(minor, dominant, cMajor(), models.GenreRock)
	assert.Equal(t, models.QualDom7, p.Quality)
}

func TestGenerateSingleChord_PreservesRootAndDuration(t *testing.T) {
	g := seeded(11)
	old := models.Chord{
		Root: 7, Quality: models.QualMaj, Notes: []int{55, 59, 62}, DurationBeats: 3,
	}

	for i := 0; i < 25; i++ {
		replacement := g.GenerateSingleChord(old, []int{60, 64, 67}, cMajor(), models.GenreRock)
		assert.Equal(t, old.Root, replacement.Root)
		assert.Equal(t, old.DurationBeats, replacement.DurationBeats)
		assert.NotEqual(t, old.Quality, replacement.Quality, "replacement must draw a different quality")
	}
}

func TestGenerateModalInterchangeChord_Tagging(t *testing.T) {
	g := seeded(13)
	old := models.Chord{Root: 0, Quality: models.QualMaj, Notes: []int{60, 64, 67}, DurationBeats: 4}

	majorOffsets := map[int]bool{}
	for _, off := range BorrowedRootOffsets(models.ScaleMajor) {
		majorOffsets[off] = true
	}

	for i := 0; i < 40; i++ {
		borrowed := g.GenerateModalInterchangeChord(old, old.Notes, cMajor(), models.GenreRock)
		assert.Equal(t, models.BorrowedFromParallelMinor, borrowed.BorrowedFrom)
		assert.NotEmpty(t, borrowed.BorrowedDegree)
		assert.Equal(t, old.DurationBeats, borrowed.DurationBeats)
		assert.True(t, majorOffsets[borrowed.Root], "root %d not a legal borrowed offset", borrowed.Root)
	}

	// Minor keys borrow from the parallel major.
	borrowed := g.GenerateModalInterchangeChord(old, old.Notes, aMinor(), models.GenreRock)
	assert.Equal(t, models.BorrowedFromParallelMajor, borrowed.BorrowedFrom)
}

// In C major, the borrowed roots are exactly {Eb, Ab, Bb, F, D}.
func TestBorrowedRootOffsets_CMajor(t *testing.T) {
	offsets := BorrowedRootOffsets(models.ScaleMajor)
	assert.ElementsMatch(t, []int{3, 8, 10, 5, 2}, offsets)
}

func TestShiftedDegreeChord(t *testing.T) {
	// G (degree 5 in C major) shifted up lands on A with the vi quality.
	root, degree, quality := ShiftedDegreeChord(cMajor(), 7, +1)
	assert.Equal(t, 9, root)
	assert.Equal(t, 6, degree)
	assert.Equal(t, models.QualMin7, quality)

	// C shifted down wraps to the leading tone.
	root, degree, quality = ShiftedDegreeChord(cMajor(), 0, -1)
	assert.Equal(t, 11, root)
	assert.Equal(t, 7, degree)
	assert.Equal(t, models.QualM7b5, quality)

	// A non-diatonic root snaps to the nearest scale tone first.
	root, _, _ = ShiftedDegreeChord(cMajor(), 1, +1) // C# -> D -> up to E
	assert.Equal(t, 4, root)

	// Minor keys use the minor diatonic table.
	_, _, quality = ShiftedDegreeChord(aMinor(), 9, +1) // A -> B
	assert.Equal(t, models.QualM7b5, quality)
}

func TestGenerateExtensionChords_CapsAtEight(t *testing.T) {
	g := seeded(17)
	key := cMajor()

	prog := g.GenerateFromTemplate(key, defaultTemplates[0], "Main", models.GenrePop)
	chords := prog.Chords

	for i := 0; i < 10; i++ {
		added := g.GenerateExtensionChords(chords, key, models.GenrePop, models.MoodHappy)
		chords = append(chords, added...)
		assert.LessOrEqual(t, len(chords), MaxProgressionChords)
	}
	assert.Len(t, chords, MaxProgressionChords)

	// Once at the cap, extension returns nothing.
	assert.Empty(t, g.GenerateExtensionChords(chords, key, models.GenrePop, models.MoodHappy))
}

func TestGenerateExtensionChords_AddsAtMostFour(t *testing.T) {
	g := seeded(19)
	added := g.GenerateExtensionChords(nil, cMajor(), models.GenrePop, models.MoodHappy)
	assert.LessOrEqual(t, len(added), MaxExtensionChords)
	assert.NotEmpty(t, added)
}

func TestPickDistinctTemplates_SupplementsShortPools(t *testing.T) {
	g := seeded(23)

	// One-template pool still yields three picks without panicking.
	pool := []Template{{{1, models.QualMaj}}}
	picked := g.pickDistinctTemplates(pool, 3)
	assert.Len(t, picked, 3)
}
