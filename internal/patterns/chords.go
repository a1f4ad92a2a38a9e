package patterns

import (
	"math/rand"
	"sort"

	"github.com/chordforge/chordforge-api/internal/models"
)

// ChordPattern selects how a chord's voicing is spread over time.
type ChordPattern string

const (
	ChordSustain      ChordPattern = "sustain"
	ChordArpeggioUp   ChordPattern = "arpeggioUp"
	ChordArpeggioDown ChordPattern = "arpeggioDown"
	ChordStaccato     ChordPattern = "staccato"
	ChordStrum        ChordPattern = "strum"
)

const (
	chordBaseVelocity = 80
	arpVelocityRamp   = 3
	sixteenthBeats    = 0.25

	staccatoGridBeats = 0.5
	staccatoNoteBeats = 0.15
	staccatoStrongVel = 90
	staccatoWeakVel   = 70

	// Strum: per-voice offset scales with |amount|/100 up to this spread.
	strumMaxSpreadBeats = 0.06
	strumVelocityJitter = 10
)

// GenerateChordPattern expands one chord's voicing into timed events.
// strumAmount is only read by the strum pattern (signed, −100..100: negative
// strums high-to-low); rng only feeds strum velocity jitter. Unknown patterns
// fall back to sustain.
func GenerateChordPattern(chord models.Chord, pattern ChordPattern, startBeat float64, strumAmount int, rng *rand.Rand) []models.NoteEvent {
	notes := append([]int(nil), chord.Notes...)
	sort.Ints(notes)
	dur := chord.DurationBeats
	if len(notes) == 0 || dur <= 0 {
		return nil
	}

	switch pattern {
	case ChordArpeggioUp:
		return arpeggiate(notes, startBeat, dur)

	case ChordArpeggioDown:
		reversed := make([]int, len(notes))
		for i, n := range notes {
			reversed[len(notes)-1-i] = n
		}
		return arpeggiate(reversed, startBeat, dur)

	case ChordStaccato:
		var events []models.NoteEvent
		for i := 0; float64(i)*staccatoGridBeats < dur; i++ {
			vel := staccatoStrongVel
			if i%2 == 1 {
				vel = staccatoWeakVel
			}
			offset := float64(i) * staccatoGridBeats
			for _, note := range notes {
				events = append(events, models.NoteEvent{
					MidiNoteNumber: note,
					Velocity:       vel,
					StartBeats:     startBeat + offset,
					DurationBeats:  staccatoNoteBeats,
				})
			}
		}
		return events

	case ChordStrum:
		ordered := notes
		if strumAmount < 0 {
			ordered = make([]int, len(notes))
			for i, n := range notes {
				ordered[len(notes)-1-i] = n
			}
		}
		magnitude := strumAmount
		if magnitude < 0 {
			magnitude = -magnitude
		}
		if magnitude > 100 {
			magnitude = 100
		}
		perVoice := float64(magnitude) / 100 * strumMaxSpreadBeats

		events := make([]models.NoteEvent, 0, len(ordered))
		for i, note := range ordered {
			offset := float64(i) * perVoice
			if offset >= dur {
				break
			}
			vel := chordBaseVelocity + rng.Intn(2*strumVelocityJitter+1) - strumVelocityJitter
			events = append(events, models.NoteEvent{
				MidiNoteNumber: note,
				Velocity:       vel,
				StartBeats:     startBeat + offset,
				DurationBeats:  dur - offset,
			})
		}
		return events

	default: // ChordSustain and anything unknown
		events := make([]models.NoteEvent, 0, len(notes))
		for _, note := range notes {
			events = append(events, models.NoteEvent{
				MidiNoteNumber: note,
				Velocity:       chordBaseVelocity,
				StartBeats:     startBeat,
				DurationBeats:  dur,
			})
		}
		return events
	}
}

// arpeggiate subdivides the duration evenly per voice with a sixteenth-note
// floor; the final segment absorbs whatever remains, and velocity ramps with
// the voice index.
func arpeggiate(notes []int, startBeat, dur float64) []models.NoteEvent {
	step := dur / float64(len(notes))
	if step < sixteenthBeats {
		step = sixteenthBeats
	}

	var events []models.NoteEvent
	for i, note := range notes {
		offset := float64(i) * step
		if offset >= dur {
			break
		}
		length := step
		if i == len(notes)-1 || offset+step > dur {
			length = dur - offset
		}
		events = append(events, models.NoteEvent{
			MidiNoteNumber: note,
			Velocity:       chordBaseVelocity + i*arpVelocityRamp,
			StartBeats:     startBeat + offset,
			DurationBeats:  length,
		})
	}
	return events
}

// GenerateChordPatternForProgression folds GenerateChordPattern over the
// chords, advancing the beat cursor by each chord's duration.
func GenerateChordPatternForProgression(chords []models.Chord, pattern ChordPattern, strumAmount int, rng *rand.Rand) []models.NoteEvent {
	var events []models.NoteEvent
	currentBeat := 0.0
	for _, chord := range chords {
		events = append(events, GenerateChordPattern(chord, pattern, currentBeat, strumAmount, rng)...)
		currentBeat += chord.DurationBeats
	}
	return events
}
