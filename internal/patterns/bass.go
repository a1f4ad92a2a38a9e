package patterns

import (
	"strings"

	"github.com/chordforge/chordforge-api/internal/models"
)

// BassPattern selects the bassline sub-division rule.
type BassPattern string

const (
	BassNone       BassPattern = "none"
	BassRoot       BassPattern = "root"
	BassRootFifth  BassPattern = "rootFifth"
	BassWalking    BassPattern = "walking"
	BassSyncopated BassPattern = "syncopated"
	BassOctave     BassPattern = "octave"
)

// Bass register: roots live an octave table rooted at C2 (MIDI 36).
const bassRegisterBase = 36

const (
	bassVelocity       = 90
	bassOffbeatVel     = 75
	walkingMinBeats    = 4.0
	octaveStepBeats    = 0.5
	syncopatedHoldBeat = 1.5
)

// GenerateBassline expands one chord into timed bass events for the given
// pattern. Unknown patterns fall back to the root-only pattern so generation
// is total over the enum.
func GenerateBassline(chord models.Chord, pattern BassPattern, startBeat float64) []models.NoteEvent {
	root := bassNote(chord.Root)
	dur := chord.DurationBeats

	switch pattern {
	case BassNone:
		return nil

	case BassRootFifth:
		half := dur / 2
		return []models.NoteEvent{
			{MidiNoteNumber: root, Velocity: bassVelocity, StartBeats: startBeat, DurationBeats: half},
			{MidiNoteNumber: root + fifthInterval(chord.Quality), Velocity: bassOffbeatVel, StartBeats: startBeat + half, DurationBeats: half},
		}

	case BassWalking:
		if dur < walkingMinBeats {
			return GenerateBassline(chord, BassRootFifth, startBeat)
		}
		quarter := dur / 4
		fifth := root + fifthInterval(chord.Quality)
		steps := []int{root, root + thirdInterval(chord.Quality), fifth, fifth + 1}
		events := make([]models.NoteEvent, 0, len(steps))
		for i, note := range steps {
			vel := bassVelocity
			if i%2 == 1 {
				vel = bassOffbeatVel
			}
			events = append(events, models.NoteEvent{
				MidiNoteNumber: note,
				Velocity:       vel,
				StartBeats:     startBeat + float64(i)*quarter,
				DurationBeats:  quarter,
			})
		}
		return events

	case BassSyncopated:
		fifth := root + fifthInterval(chord.Quality)
		// Push pattern: long root, offbeat root, then the fifth.
		hits := []struct {
			offset, length float64
			note           int
			vel            int
		}{
			{0, syncopatedHoldBeat, root, bassVelocity},
			{syncopatedHoldBeat, 0.5, root, bassOffbeatVel},
			{syncopatedHoldBeat + 1, 1, fifth, bassOffbeatVel},
		}
		var events []models.NoteEvent
		for _, h := range hits {
			if h.offset >= dur {
				break
			}
			length := h.length
			if h.offset+length > dur {
				length = dur - h.offset
			}
			events = append(events, models.NoteEvent{
				MidiNoteNumber: h.note,
				Velocity:       h.vel,
				StartBeats:     startBeat + h.offset,
				DurationBeats:  length,
			})
		}
		return events

	case BassOctave:
		var events []models.NoteEvent
		for i := 0; float64(i)*octaveStepBeats < dur; i++ {
			note := root
			vel := bassVelocity
			if i%2 == 1 {
				note = root + 12
				vel = bassOffbeatVel
			}
			length := octaveStepBeats
			if remaining := dur - float64(i)*octaveStepBeats; remaining < length {
				length = remaining
			}
			events = append(events, models.NoteEvent{
				MidiNoteNumber: note,
				Velocity:       vel,
				StartBeats:     startBeat + float64(i)*octaveStepBeats,
				DurationBeats:  length,
			})
		}
		return events

	default: // BassRoot and anything unknown
		return []models.NoteEvent{
			{MidiNoteNumber: root, Velocity: bassVelocity, StartBeats: startBeat, DurationBeats: dur},
		}
	}
}

// GenerateBasslineForProgression folds GenerateBassline over the chords,
// advancing the beat cursor by each chord's duration.
func GenerateBasslineForProgression(chords []models.Chord, pattern BassPattern) []models.NoteEvent {
	var events []models.NoteEvent
	currentBeat := 0.0
	for _, chord := range chords {
		events = append(events, GenerateBassline(chord, pattern, currentBeat)...)
		currentBeat += chord.DurationBeats
	}
	return events
}

// bassNote places a pitch class into the bass register.
func bassNote(pitchClass int) int {
	return bassRegisterBase + ((pitchClass%12)+12)%12
}

// thirdInterval uses a simplified major/minor-family classifier over the
// quality spelling: anything minor-spelled, half-diminished, or diminished
// gets a minor third.
func thirdInterval(q models.ChordQuality) int {
	if isMinorFamilyQuality(q) {
		return 3
	}
	return 4
}

// fifthInterval flattens the fifth for the diminished and half-diminished
// families.
func fifthInterval(q models.ChordQuality) int {
	if q == models.QualM7b5 || strings.HasPrefix(string(q), "dim") {
		return 6
	}
	return 7
}

func isMinorFamilyQuality(q models.ChordQuality) bool {
	s := string(q)
	return strings.Contains(s, "min") || q == models.QualM7b5 || strings.HasPrefix(s, "dim")
}
