package theory

import (
	"fmt"

	"github.com/chordforge/chordforge-api/internal/models"
)

// noteNames maps pitch class 0-11 to its sharp spelling.
var noteNames = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

// Scale interval tables in semitones from the root.
var (
	majorScaleIntervals = [7]int{0, 2, 4, 5, 7, 9, 11}
	minorScaleIntervals = [7]int{0, 2, 3, 5, 7, 8, 10} // natural minor
)

// chordIntervals defines the semitone offsets for every supported quality.
// Extended chords select omissions: "11" drops the 3rd and 5th (root/b7/9/11),
// min11 drops the 5th, and the 13th chords drop the 11th. These sets are part
// of the engine contract and are exercised verbatim by round-trip tests.
var chordIntervals = map[models.ChordQuality][]int{
	models.QualMaj:   {0, 4, 7},
	models.QualMin:   {0, 3, 7},
	models.QualDim:   {0, 3, 6},
	models.QualAug:   {0, 4, 8},
	models.QualSus2:  {0, 2, 7},
	models.QualSus4:  {0, 5, 7},
	models.QualMaj7:  {0, 4, 7, 11},
	models.QualMin7:  {0, 3, 7, 10},
	models.QualDom7:  {0, 4, 7, 10},
	models.QualDim7:  {0, 3, 6, 9},
	models.QualM7b5:  {0, 3, 6, 10},
	models.QualMaj9:  {0, 4, 7, 11, 14},
	models.QualMin9:  {0, 3, 7, 10, 14},
	models.QualDom9:  {0, 4, 7, 10, 14},
	models.QualAdd9:  {0, 4, 7, 14},
	models.QualDom11: {0, 10, 14, 17},
	models.QualMin11: {0, 3, 10, 14, 17},
	models.QualMaj13: {0, 4, 7, 11, 14, 21},
	models.QualDom13: {0, 4, 7, 10, 14, 21},
}

// displaySuffixes maps each quality to the suffix appended to the root symbol.
var displaySuffixes = map[models.ChordQuality]string{
	models.QualMaj:   "",
	models.QualMin:   "m",
	models.QualDim:   "dim",
	models.QualAug:   "aug",
	models.QualSus2:  "sus2",
	models.QualSus4:  "sus4",
	models.QualMaj7:  "maj7",
	models.QualMin7:  "m7",
	models.QualDom7:  "7",
	models.QualDim7:  "dim7",
	models.QualM7b5:  "m7♭5",
	models.QualMaj9:  "maj9",
	models.QualMin9:  "m9",
	models.QualDom9:  "9",
	models.QualAdd9:  "add9",
	models.QualDom11: "11",
	models.QualMin11: "m11",
	models.QualMaj13: "maj13",
	models.QualDom13: "13",
}

// Qualities returns every supported chord quality. Order is stable.
func Qualities() []models.ChordQuality {
	return []models.ChordQuality{
		models.QualMaj, models.QualMin, models.QualDim, models.QualAug,
		models.QualSus2, models.QualSus4,
		models.QualMaj7, models.QualMin7, models.QualDom7, models.QualDim7, models.QualM7b5,
		models.QualMaj9, models.QualMin9, models.QualDom9, models.QualAdd9,
		models.QualDom11, models.QualMin11,
		models.QualMaj13, models.QualDom13,
	}
}

// ChordIntervals returns the semitone offsets for a quality. An unknown
// quality is a programming error: templates and substitution tables only
// reference qualities in the fixed table, so this panics rather than coerce.
func ChordIntervals(quality models.ChordQuality) []int {
	intervals, ok := chordIntervals[quality]
	if !ok {
		panic(fmt.Sprintf("theory: unknown chord quality %q", quality))
	}
	out := make([]int, len(intervals))
	copy(out, intervals)
	return out
}

// ScaleNotes returns the 7 pitch classes of the key, root first.
func ScaleNotes(key models.Key) []int {
	intervals := majorScaleIntervals
	if key.Scale == models.ScaleMinor {
		intervals = minorScaleIntervals
	}
	notes := make([]int, 7)
	for i, iv := range intervals {
		notes[i] = (key.Root + iv) % 12
	}
	return notes
}

// ScaleDegreeNote resolves a 1-based scale degree to a pitch class.
// Degrees wrap modulo 7, so degree 8 is the root again.
func ScaleDegreeNote(key models.Key, degree int) int {
	idx := (degree - 1) % 7
	if idx < 0 {
		idx += 7
	}
	return ScaleNotes(key)[idx]
}

// IsNoteInScale reports whether a pitch (any octave) belongs to the key.
func IsNoteInScale(pitch int, key models.Key) bool {
	pc := pitchClass(pitch)
	for _, n := range ScaleNotes(key) {
		if n == pc {
			return true
		}
	}
	return false
}

// SnapToScale returns the nearest in-scale pitch, searching ±1 then ±2
// semitones. In a 7-note scale the search always terminates within ±2.
func SnapToScale(pitch int, key models.Key) int {
	if IsNoteInScale(pitch, key) {
		return pitch
	}
	for _, offset := range []int{1, -1, 2, -2} {
		if IsNoteInScale(pitch+offset, key) {
			return pitch + offset
		}
	}
	return pitch
}

// DisplayName builds the chord symbol: root name plus the quality suffix.
func DisplayName(root int, quality models.ChordQuality) string {
	suffix, ok := displaySuffixes[quality]
	if !ok {
		panic(fmt.Sprintf("theory: unknown chord quality %q", quality))
	}
	return NoteName(root) + suffix
}

// NoteName returns the sharp spelling of a pitch class.
func NoteName(pitchClass int) string {
	return noteNames[((pitchClass%12)+12)%12]
}

// NoteIndex resolves a note name ("C", "F#", "Bb") to its pitch class.
func NoteIndex(name string) (int, error) {
	for i, n := range noteNames {
		if n == name {
			return i, nil
		}
	}
	// Flat spellings map onto their sharp equivalents.
	flats := map[string]int{
		"Db": 1, "Eb": 3, "Gb": 6, "Ab": 8, "Bb": 10, "Cb": 11, "Fb": 4,
	}
	if i, ok := flats[name]; ok {
		return i, nil
	}
	return 0, fmt.Errorf("invalid note name: %s", name)
}

// MIDIToNoteName returns the pitch-class name of a MIDI note (mod 12).
func MIDIToNoteName(pitch int) string {
	return NoteName(pitch)
}

// MIDIToOctave returns the octave of a MIDI note (C4 = 60 = middle C).
// Floor division, so pitches below 0 keep descending octaves.
func MIDIToOctave(pitch int) int {
	return (pitch-pitchClass(pitch))/12 - 1
}

func pitchClass(pitch int) int {
	return ((pitch % 12) + 12) % 12
}
