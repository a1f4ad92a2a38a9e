package patterns

import (
	"math/rand"
	"testing"

	"github.com/chordforge/chordforge-api/internal/models"
	"github.com/chordforge/chordforge-api/internal/theory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testChord(root int, quality models.ChordQuality, notes []int, dur float64) models.Chord {
	return models.Chord{
		ID: "test", Root: root, Quality: quality, Notes: notes, DurationBeats: dur,
	}
}

func testRng() *rand.Rand {
	return rand.New(rand.NewSource(99))
}

func TestGenerateBassline_Root(t *testing.T) {
	chord := testChord(0, models.QualMaj, []int{60, 64, 67}, 4)
	events := GenerateBassline(chord, BassRoot, 8)

	require.Len(t, events, 1)
	assert.Equal(t, 36, events[0].MidiNoteNumber, "C in the bass register")
	assert.Equal(t, 8.0, events[0].StartBeats)
	assert.Equal(t, 4.0, events[0].DurationBeats)
}

func TestGenerateBassline_RootFifth(t *testing.T) {
	chord := testChord(9, models.QualMin7, []int{57, 60, 64, 67}, 4)
	events := GenerateBassline(chord, BassRootFifth, 0)

	require.Len(t, events, 2)
	assert.Equal(t, 45, events[0].MidiNoteNumber) // A2
	assert.Equal(t, 52, events[1].MidiNoteNumber) // E3, perfect fifth
	assert.Equal(t, 2.0, events[0].DurationBeats)
	assert.Equal(t, 2.0, events[1].StartBeats)
}

func TestGenerateBassline_RootFifth_DiminishedFlattensFifth(t *testing.T) {
	chord := testChord(11, models.QualM7b5, []int{59, 62, 65, 69}, 4)
	events := GenerateBassline(chord, BassRootFifth, 0)

	require.Len(t, events, 2)
	assert.Equal(t, 47+6, events[1].MidiNoteNumber, "half-diminished gets a flat fifth")
}

func TestGenerateBassline_Walking(t *testing.T) {
	chord := testChord(0, models.QualMaj7, []int{60, 64, 67, 71}, 4)
	events := GenerateBassline(chord, BassWalking, 0)

	require.Len(t, events, 4)
	// root -> major 3rd -> 5th -> approach tone above the 5th
	assert.Equal(t, 36, events[0].MidiNoteNumber)
	assert.Equal(t, 40, events[1].MidiNoteNumber)
	assert.Equal(t, 43, events[2].MidiNoteNumber)
	assert.Equal(t, 44, events[3].MidiNoteNumber)
	for i, e := range events {
		assert.Equal(t, float64(i), e.StartBeats, "quarter subdivisions")
		assert.Equal(t, 1.0, e.DurationBeats)
	}
}

func TestGenerateBassline_WalkingMinorThird(t *testing.T) {
	chord := testChord(2, models.QualMin7, []int{50, 53, 57, 60}, 4)
	events := GenerateBassline(chord, BassWalking, 0)

	require.Len(t, events, 4)
	assert.Equal(t, 38+3, events[1].MidiNoteNumber, "minor family walks a minor third")
}

// Walking needs 4 beats; shorter chords degrade to root-fifth.
func TestGenerateBassline_WalkingShortChordFallsBack(t *testing.T) {
	chord := testChord(0, models.QualMaj, []int{60, 64, 67}, 2)
	events := GenerateBassline(chord, BassWalking, 0)
	assert.Len(t, events, 2)
}

func TestGenerateBassline_Octave(t *testing.T) {
	chord := testChord(0, models.QualMaj, []int{60, 64, 67}, 2)
	events := GenerateBassline(chord, BassOctave, 0)

	require.Len(t, events, 4)
	assert.Equal(t, 36, events[0].MidiNoteNumber)
	assert.Equal(t, 48, events[1].MidiNoteNumber)
	assert.Equal(t, 36, events[2].MidiNoteNumber)
	assert.Equal(t, 48, events[3].MidiNoteNumber)
}

func TestGenerateBassline_NoneAndUnknown(t *testing.T) {
	chord := testChord(0, models.QualMaj, []int{60, 64, 67}, 4)

	assert.Empty(t, GenerateBassline(chord, BassNone, 0))

	// Unknown pattern values fall back to root-only, never error.
	events := GenerateBassline(chord, BassPattern("wobble"), 0)
	require.Len(t, events, 1)
	assert.Equal(t, 36, events[0].MidiNoteNumber)
}

func TestGenerateBasslineForProgression_AccumulatesBeats(t *testing.T) {
	chords := []models.Chord{
		testChord(0, models.QualMaj, []int{60, 64, 67}, 4),
		testChord(7, models.QualMaj, []int{55, 59, 62}, 2),
		testChord(9, models.QualMin, []int{57, 60, 64}, 4),
	}
	events := GenerateBasslineForProgression(chords, BassRoot)

	require.Len(t, events, 3)
	assert.Equal(t, 0.0, events[0].StartBeats)
	assert.Equal(t, 4.0, events[1].StartBeats)
	assert.Equal(t, 6.0, events[2].StartBeats)
}

func TestGenerateChordPattern_Sustain(t *testing.T) {
	chord := testChord(0, models.QualMaj7, []int{60, 64, 67, 71}, 4)
	events := GenerateChordPattern(chord, ChordSustain, 2, 0, testRng())

	require.Len(t, events, 4)
	for _, e := range events {
		assert.Equal(t, 2.0, e.StartBeats)
		assert.Equal(t, 4.0, e.DurationBeats)
	}
}

func TestGenerateChordPattern_ArpeggioUp(t *testing.T) {
	chord := testChord(0, models.QualMaj7, []int{60, 64, 67, 71}, 4)
	events := GenerateChordPattern(chord, ChordArpeggioUp, 0, 0, testRng())

	require.Len(t, events, 4)
	for i, e := range events {
		assert.Equal(t, float64(i), e.StartBeats)
		assert.Equal(t, chord.Notes[i], e.MidiNoteNumber, "ascending order")
	}
	// Velocity ramps with the voice index.
	assert.Greater(t, events[3].Velocity, events[0].Velocity)
	// The last segment absorbs the remainder exactly.
	last := events[len(events)-1]
	assert.InDelta(t, 4.0, last.StartBeats+last.DurationBeats, 1e-9)
}

func TestGenerateChordPattern_ArpeggioDown(t *testing.T) {
	chord := testChord(0, models.QualMaj, []int{60, 64, 67}, 3)
	events := GenerateChordPattern(chord, ChordArpeggioDown, 0, 0, testRng())

	require.Len(t, events, 3)
	assert.Equal(t, 67, events[0].MidiNoteNumber)
	assert.Equal(t, 60, events[2].MidiNoteNumber)
}

// Subdivision never goes below a sixteenth: a short chord with many voices
// drops the voices that would start past its end.
func TestGenerateChordPattern_ArpeggioSixteenthFloor(t *testing.T) {
	chord := testChord(0, models.QualMaj13, []int{48, 52, 55, 59, 62, 69}, 0.5)
	events := GenerateChordPattern(chord, ChordArpeggioUp, 0, 0, testRng())

	require.NotEmpty(t, events)
	assert.Len(t, events, 2, "0.5 beats at a 0.25 floor fits two voices")
	for _, e := range events {
		assert.LessOrEqual(t, e.StartBeats+e.DurationBeats, 0.5+1e-9)
	}
}

func TestGenerateChordPattern_Staccato(t *testing.T) {
	chord := testChord(0, models.QualMaj, []int{60, 64, 67}, 2)
	events := GenerateChordPattern(chord, ChordStaccato, 0, 0, testRng())

	// Four eighth-note hits of three notes each.
	require.Len(t, events, 12)
	for _, e := range events {
		assert.Equal(t, 0.15, e.DurationBeats, "fixed short length")
	}
	// Alternating strong/weak accents.
	assert.Equal(t, 90, events[0].Velocity)
	assert.Equal(t, 70, events[3].Velocity)
}

func TestGenerateChordPattern_Strum(t *testing.T) {
	chord := testChord(0, models.QualMaj7, []int{60, 64, 67, 71}, 4)

	up := GenerateChordPattern(chord, ChordStrum, 0, 100, testRng())
	require.Len(t, up, 4)
	assert.Equal(t, 60, up[0].MidiNoteNumber, "positive amount strums low-to-high")
	for i := 1; i < len(up); i++ {
		assert.Greater(t, up[i].StartBeats, up[i-1].StartBeats)
		assert.Less(t, up[i].DurationBeats, up[i-1].DurationBeats, "later voices are shortened")
	}
	// Max spread per voice is 0.06 beats.
	assert.InDelta(t, 0.06*3, up[3].StartBeats, 1e-9)

	down := GenerateChordPattern(chord, ChordStrum, 0, -100, testRng())
	require.Len(t, down, 4)
	assert.Equal(t, 71, down[0].MidiNoteNumber, "negative amount strums high-to-low")

	// Velocity jitter stays within ±10 of the base.
	for _, e := range up {
		assert.GreaterOrEqual(t, e.Velocity, 70)
		assert.LessOrEqual(t, e.Velocity, 90)
	}
}

func TestGenerateChordPattern_UnknownFallsBackToSustain(t *testing.T) {
	chord := testChord(0, models.QualMaj, []int{60, 64, 67}, 4)
	events := GenerateChordPattern(chord, ChordPattern("shimmer"), 0, 0, testRng())

	require.Len(t, events, 3)
	for _, e := range events {
		assert.Equal(t, 4.0, e.DurationBeats)
	}
}

func TestGenerateMelody_None(t *testing.T) {
	chord := testChord(0, models.QualMaj, []int{60, 64, 67}, 4)
	key := models.Key{Root: 0, Scale: models.ScaleMajor}

	events, _ := GenerateMelody(chord, key, MelodyNone, 0, 0, testRng())
	assert.Empty(t, events)

	// Unknown patterns behave like none rather than erroring.
	events, _ = GenerateMelody(chord, key, MelodyPattern("bebop"), 0, 0, testRng())
	assert.Empty(t, events)
}

func TestGenerateMelody_SimpleStaysInRegisterAndScale(t *testing.T) {
	chord := testChord(0, models.QualMaj7, []int{60, 64, 67, 71}, 8)
	key := models.Key{Root: 0, Scale: models.ScaleMajor}
	rng := testRng()

	for trial := 0; trial < 20; trial++ {
		events, _ := GenerateMelody(chord, key, MelodySimple, 0, 0, rng)
		require.NotEmpty(t, events)
		for _, e := range events {
			assert.GreaterOrEqual(t, e.MidiNoteNumber, 60)
			assert.LessOrEqual(t, e.MidiNoteNumber, 84)
			assert.True(t, theory.IsNoteInScale(e.MidiNoteNumber, key),
				"pitch %d out of scale", e.MidiNoteNumber)
			assert.LessOrEqual(t, e.StartBeats+e.DurationBeats, chord.DurationBeats+1e-9)
		}
	}
}

func TestGenerateMelody_SmoothWalksFromPrevious(t *testing.T) {
	chord := testChord(0, models.QualMaj, []int{60, 64, 67}, 8)
	key := models.Key{Root: 0, Scale: models.ScaleMajor}
	rng := testRng()

	events, last := GenerateMelody(chord, key, MelodySmooth, 0, 72, rng)
	require.NotEmpty(t, events)

	prev := 72
	for _, e := range events {
		step := e.MidiNoteNumber - prev
		if step < 0 {
			step = -step
		}
		// Scale-step walks move at most 6 semitones; an octave correction
		// at the register edge can add up to another 6.
		assert.Less(t, step, 12, "smooth melody never leaps a full octave")
		prev = e.MidiNoteNumber
	}
	assert.Equal(t, prev, last, "threading pitch matches last event")
}

func TestGenerateMelody_RhythmicBoundedByChord(t *testing.T) {
	chord := testChord(9, models.QualMin7, []int{57, 60, 64, 67}, 4)
	key := models.Key{Root: 9, Scale: models.ScaleMinor}
	rng := testRng()

	for trial := 0; trial < 20; trial++ {
		events, _ := GenerateMelody(chord, key, MelodyRhythmic, 4, 0, rng)
		for _, e := range events {
			assert.GreaterOrEqual(t, e.StartBeats, 4.0)
			assert.LessOrEqual(t, e.StartBeats+e.DurationBeats, 8.0+1e-9)
			assert.True(t, theory.IsNoteInScale(e.MidiNoteNumber, key))
		}
	}
}

func TestGenerateMelodyForProgression_CoversAllChords(t *testing.T) {
	chords := []models.Chord{
		testChord(0, models.QualMaj, []int{60, 64, 67}, 4),
		testChord(5, models.QualMaj, []int{53, 57, 60}, 4),
	}
	key := models.Key{Root: 0, Scale: models.ScaleMajor}

	events := GenerateMelodyForProgression(chords, key, MelodySimple, testRng())
	require.NotEmpty(t, events)

	var sawSecondChord bool
	for _, e := range events {
		assert.LessOrEqual(t, e.StartBeats+e.DurationBeats, 8.0+1e-9)
		if e.StartBeats >= 4.0 {
			sawSecondChord = true
		}
	}
	assert.True(t, sawSecondChord, "melody must continue into the second chord")
}
