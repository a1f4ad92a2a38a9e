package patterns

import (
	"math/rand"

	"github.com/chordforge/chordforge-api/internal/models"
	"github.com/chordforge/chordforge-api/internal/theory"
)

// MelodyPattern selects the stochastic beat-filling strategy.
type MelodyPattern string

const (
	MelodyNone     MelodyPattern = "none"
	MelodySimple   MelodyPattern = "simple"
	MelodySmooth   MelodyPattern = "smooth"
	MelodyRhythmic MelodyPattern = "rhythmic"
)

// Melody register: two octaves above middle C.
const (
	melodyLow  = 60 // C4
	melodyHigh = 84 // C6
)

const (
	melodyBaseVelocity  = 70
	melodyVelocitySpan  = 20
	chordToneChance     = 0.8
	rhythmicRestChance  = 0.1
	smoothMaxScaleSteps = 2
)

// rhythmicLengths is the fixed note-length set the rhythmic pattern draws
// from, weighted toward eighths.
var rhythmicLengths = []float64{0.25, 0.5, 0.5, 1}

// GenerateMelody fills one chord's duration with melody events. The previous
// melody pitch threads between chords so the smooth pattern can walk from it;
// the returned pitch is the last note emitted (or prevPitch unchanged if the
// chord produced none). Unknown patterns behave like none.
func GenerateMelody(chord models.Chord, key models.Key, pattern MelodyPattern, startBeat float64, prevPitch int, rng *rand.Rand) ([]models.NoteEvent, int) {
	switch pattern {
	case MelodySimple:
		return simpleMelody(chord, key, startBeat, rng)
	case MelodySmooth:
		return smoothMelody(chord, key, startBeat, prevPitch, rng)
	case MelodyRhythmic:
		return rhythmicMelody(chord, key, startBeat, rng)
	default:
		return nil, prevPitch
	}
}

// GenerateMelodyForProgression folds GenerateMelody over the chords,
// advancing the beat cursor and threading the previous pitch.
func GenerateMelodyForProgression(chords []models.Chord, key models.Key, pattern MelodyPattern, rng *rand.Rand) []models.NoteEvent {
	var events []models.NoteEvent
	currentBeat := 0.0
	prevPitch := 0
	for _, chord := range chords {
		chordEvents, last := GenerateMelody(chord, key, pattern, currentBeat, prevPitch, rng)
		events = append(events, chordEvents...)
		prevPitch = last
		currentBeat += chord.DurationBeats
	}
	return events
}

// simpleMelody mixes 1-2 beat notes, 80% chord tones / 20% scale tones.
func simpleMelody(chord models.Chord, key models.Key, startBeat float64, rng *rand.Rand) ([]models.NoteEvent, int) {
	var events []models.NoteEvent
	beat := 0.0
	last := 0
	for beat < chord.DurationBeats {
		length := float64(1 + rng.Intn(2))
		if beat+length > chord.DurationBeats {
			length = chord.DurationBeats - beat
		}

		var pitch int
		if rng.Float64() < chordToneChance && len(chord.Notes) > 0 {
			pitch = intoRegister(chord.Notes[rng.Intn(len(chord.Notes))])
		} else {
			pitch = randomScaleTone(key, rng)
		}
		pitch = snapIntoScale(pitch, key)

		events = append(events, models.NoteEvent{
			MidiNoteNumber: pitch,
			Velocity:       melodyBaseVelocity + rng.Intn(melodyVelocitySpan),
			StartBeats:     startBeat + beat,
			DurationBeats:  length,
		})
		last = pitch
		beat += length
	}
	return events, last
}

// smoothMelody walks ±1..2 scale steps from the previous pitch, correcting
// back into register by octave shifts.
func smoothMelody(chord models.Chord, key models.Key, startBeat float64, prevPitch int, rng *rand.Rand) ([]models.NoteEvent, int) {
	current := prevPitch
	if current < melodyLow || current > melodyHigh {
		// Seed from the chord's highest voice placed into the register.
		if len(chord.Notes) > 0 {
			current = intoRegister(chord.Notes[len(chord.Notes)-1])
		} else {
			current = snapIntoScale(melodyLow+key.Root, key)
		}
		current = snapIntoScale(current, key)
	}

	var events []models.NoteEvent
	beat := 0.0
	for beat < chord.DurationBeats {
		length := float64(1 + rng.Intn(2))
		if beat+length > chord.DurationBeats {
			length = chord.DurationBeats - beat
		}

		steps := 1 + rng.Intn(smoothMaxScaleSteps)
		if rng.Intn(2) == 0 {
			steps = -steps
		}
		current = walkScaleSteps(current, steps, key)
		for current > melodyHigh {
			current -= 12
		}
		for current < melodyLow {
			current += 12
		}
		current = snapIntoScale(current, key)

		events = append(events, models.NoteEvent{
			MidiNoteNumber: current,
			Velocity:       melodyBaseVelocity + rng.Intn(melodyVelocitySpan),
			StartBeats:     startBeat + beat,
			DurationBeats:  length,
		})
		beat += length
	}
	return events, current
}

// rhythmicMelody draws short lengths from a fixed set with a rest chance.
func rhythmicMelody(chord models.Chord, key models.Key, startBeat float64, rng *rand.Rand) ([]models.NoteEvent, int) {
	var events []models.NoteEvent
	beat := 0.0
	last := 0
	for beat < chord.DurationBeats {
		length := rhythmicLengths[rng.Intn(len(rhythmicLengths))]
		if beat+length > chord.DurationBeats {
			length = chord.DurationBeats - beat
		}

		if rng.Float64() < rhythmicRestChance {
			beat += length
			continue
		}

		var pitch int
		if len(chord.Notes) > 0 {
			pitch = intoRegister(chord.Notes[rng.Intn(len(chord.Notes))])
		} else {
			pitch = randomScaleTone(key, rng)
		}
		pitch = snapIntoScale(pitch, key)

		events = append(events, models.NoteEvent{
			MidiNoteNumber: pitch,
			Velocity:       melodyBaseVelocity + rng.Intn(melodyVelocitySpan),
			StartBeats:     startBeat + beat,
			DurationBeats:  length,
		})
		last = pitch
		beat += length
	}
	return events, last
}

// walkScaleSteps moves a pitch by whole scale steps, approximated as two
// semitones per step then snapped back into the scale.
func walkScaleSteps(pitch, steps int, key models.Key) int {
	return theory.SnapToScale(pitch+steps*2, key)
}

// intoRegister shifts a pitch by octaves until it sits in the melody range.
func intoRegister(pitch int) int {
	for pitch < melodyLow {
		pitch += 12
	}
	for pitch > melodyHigh {
		pitch -= 12
	}
	return pitch
}

// snapIntoScale snaps to the scale and re-checks the register bound, since a
// snap at the edge can step outside it.
func snapIntoScale(pitch int, key models.Key) int {
	snapped := theory.SnapToScale(pitch, key)
	return intoRegister(snapped)
}

func randomScaleTone(key models.Key, rng *rand.Rand) int {
	notes := theory.ScaleNotes(key)
	pc := notes[rng.Intn(len(notes))]
	octave := 4 + rng.Intn(2) // C4 or C5 octave
	return intoRegister((octave+1)*12 + pc)
}
