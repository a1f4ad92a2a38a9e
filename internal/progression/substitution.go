package progression

import (
	"math"
	"strings"

	"github.com/chordforge/chordforge-api/internal/models"
	"github.com/chordforge/chordforge-api/internal/theory"
	"github.com/chordforge/chordforge-api/internal/voicing"
	"github.com/google/uuid"
)

// PassingChordBeats is the fixed duration of an inserted passing chord.
const PassingChordBeats = 2.0

// passing-chord root resolution works in the middle register (C4 = 60).
const middleRegisterBase = 60

// GeneratePassingChord builds a transitional chord between two neighbors.
// The root is the scale tone nearest the numeric midpoint of the neighbors'
// roots; the quality defaults to maj7, forced to min7 next to minor-family
// harmony and to 7 next to a dominant 7.
func (g *Generator) GeneratePassingChord(prev, next models.Chord, key models.Key, genre models.Genre) models.Chord {
	prevPitch := middleRegisterBase + prev.Root
	nextPitch := middleRegisterBase + next.Root
	midpoint := int(math.Round(float64(prevPitch+nextPitch) / 2))

	pitch := midpoint
	if !theory.IsNoteInScale(pitch, key) {
		pitch = theory.SnapToScale(pitch, key)
	}
	root := ((pitch % 12) + 12) % 12

	quality := models.QualMaj7
	if isMinorFamily(prev.Quality) || isMinorFamily(next.Quality) {
		quality = models.QualMin7
	}
	if prev.Quality == models.QualDom7 || next.Quality == models.QualDom7 {
		quality = models.QualDom7
	}
	quality = g.EnrichChord(quality, genre)

	notes := voicing.Voice(root, quality, prev.Notes, voicing.DefaultRange, openVoicingGenres[genre])

	return models.Chord{
		ID:            uuid.New().String(),
		Root:          root,
		Quality:       quality,
		Notes:         notes,
		DisplayName:   theory.DisplayName(root, quality),
		DurationBeats: PassingChordBeats,
	}
}

// Replacement-quality pools for single-chord regeneration, per key scale.
var (
	majorKeyQualities = []models.ChordQuality{
		models.QualMaj, models.QualMin, models.QualMaj7, models.QualMin7,
		models.QualDom7, models.QualSus2, models.QualSus4, models.QualAdd9,
	}
	minorKeyQualities = []models.ChordQuality{
		models.QualMin, models.QualMaj, models.QualMin7, models.QualMaj7,
		models.QualDom7, models.QualSus4, models.QualM7b5,
	}
)

// GenerateSingleChord replaces one chord in place: a fresh quality drawn from
// the scale-appropriate pool (never the current one), enriched and revoiced
// from the preceding chord. Root and duration are preserved.
func (g *Generator) GenerateSingleChord(old models.Chord, previous []int, key models.Key, genre models.Genre) models.Chord {
	pool := majorKeyQualities
	if key.Scale == models.ScaleMinor {
		pool = minorKeyQualities
	}

	candidates := make([]models.ChordQuality, 0, len(pool))
	for _, q := range pool {
		if q != old.Quality {
			candidates = append(candidates, q)
		}
	}
	quality := g.EnrichChord(candidates[g.rng.Intn(len(candidates))], genre)

	notes := voicing.Voice(old.Root, quality, previous, voicing.DefaultRange, openVoicingGenres[genre])

	return models.Chord{
		ID:            uuid.New().String(),
		Root:          old.Root,
		Quality:       quality,
		Notes:         notes,
		DisplayName:   theory.DisplayName(old.Root, quality),
		DurationBeats: old.DurationBeats,
	}
}

// borrowedChordEntry is one modal-interchange option: a semitone offset from
// the key root, the quality, and the display degree label.
type borrowedChordEntry struct {
	offset  int
	quality models.ChordQuality
	degree  string
}

// Fixed substitution tables: major keys borrow from the parallel minor,
// minor keys from the parallel major.
var (
	borrowedFromParallelMinor = []borrowedChordEntry{
		{3, models.QualMaj7, "♭III"},
		{8, models.QualMaj7, "♭VI"},
		{10, models.QualDom7, "♭VII"},
		{5, models.QualMin7, "iv"},
		{2, models.QualM7b5, "ii°"},
	}
	borrowedFromParallelMajor = []borrowedChordEntry{
		{5, models.QualMaj7, "IV"},
		{7, models.QualDom7, "V"},
		{2, models.QualMin7, "II"},
	}
)

// GenerateModalInterchangeChord substitutes a chord borrowed from the
// parallel mode, drawn uniformly from the table for the key's scale. The old
// chord's duration is preserved and the result is tagged with its provenance.
func (g *Generator) GenerateModalInterchangeChord(old models.Chord, previous []int, key models.Key, genre models.Genre) models.Chord {
	table := borrowedFromParallelMinor
	borrowedFrom := models.BorrowedFromParallelMinor
	if key.Scale == models.ScaleMinor {
		table = borrowedFromParallelMajor
		borrowedFrom = models.BorrowedFromParallelMajor
	}

	entry := table[g.rng.Intn(len(table))]
	root := (key.Root + entry.offset) % 12
	notes := voicing.Voice(root, entry.quality, previous, voicing.DefaultRange, openVoicingGenres[genre])

	return models.Chord{
		ID:             uuid.New().String(),
		Root:           root,
		Quality:        entry.quality,
		Notes:          notes,
		DisplayName:    theory.DisplayName(root, entry.quality),
		DurationBeats:  old.DurationBeats,
		BorrowedFrom:   borrowedFrom,
		BorrowedDegree: entry.degree,
	}
}

// BorrowedRootOffsets exposes the legal semitone offsets for a scale type,
// used by callers validating borrowed-chord roots.
func BorrowedRootOffsets(scale models.Scale) []int {
	table := borrowedFromParallelMinor
	if scale == models.ScaleMinor {
		table = borrowedFromParallelMajor
	}
	offsets := make([]int, len(table))
	for i, e := range table {
		offsets[i] = e.offset
	}
	return offsets
}

// Diatonic 7th-chord quality per scale degree, used by degree shifting.
var (
	majorDiatonicSevenths = [7]models.ChordQuality{
		models.QualMaj7, models.QualMin7, models.QualMin7, models.QualMaj7,
		models.QualDom7, models.QualMin7, models.QualM7b5,
	}
	minorDiatonicSevenths = [7]models.ChordQuality{
		models.QualMin7, models.QualM7b5, models.QualMaj7, models.QualMin7,
		models.QualMin7, models.QualMaj7, models.QualDom7,
	}
)

// ShiftedDegreeChord locates the current root's scale degree (snapping a
// non-diatonic root to the nearest scale tone first), shifts it by direction
// (±1, wrapping mod 7), and returns the new root, 1-based degree, and the
// diatonic 7th quality for that degree.
func ShiftedDegreeChord(key models.Key, currentRoot int, direction int) (root, degree int, quality models.ChordQuality) {
	scaleNotes := theory.ScaleNotes(key)

	idx := -1
	for i, n := range scaleNotes {
		if n == ((currentRoot%12)+12)%12 {
			idx = i
			break
		}
	}
	if idx < 0 {
		snapped := theory.SnapToScale(middleRegisterBase+currentRoot, key)
		for i, n := range scaleNotes {
			if n == ((snapped%12)+12)%12 {
				idx = i
				break
			}
		}
	}

	idx = ((idx+direction)%7 + 7) % 7

	qualities := majorDiatonicSevenths
	if key.Scale == models.ScaleMinor {
		qualities = minorDiatonicSevenths
	}
	return scaleNotes[idx], idx + 1, qualities[idx]
}

// isMinorFamily classifies a quality as minor-flavored for passing-chord and
// bassline interval decisions: anything spelled minor, plus the diminished
// and half-diminished families.
func isMinorFamily(q models.ChordQuality) bool {
	s := string(q)
	return strings.Contains(s, "min") || q == models.QualM7b5 || strings.HasPrefix(s, "dim")
}
