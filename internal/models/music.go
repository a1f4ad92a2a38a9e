package models

// Scale is the scale type of a key. Only major and natural minor are supported.
type Scale string

const (
	ScaleMajor Scale = "major"
	ScaleMinor Scale = "minor"
)

// Key is an immutable (root, scale) pair selected by the caller.
// Root is a pitch class index 0-11 (C=0).
type Key struct {
	Root  int   `json:"root"`
	Scale Scale `json:"scale"`
}

// ChordQuality identifies one of the supported harmonic qualities.
type ChordQuality string

const (
	QualMaj   ChordQuality = "maj"
	QualMin   ChordQuality = "min"
	QualDim   ChordQuality = "dim"
	QualAug   ChordQuality = "aug"
	QualSus2  ChordQuality = "sus2"
	QualSus4  ChordQuality = "sus4"
	QualMaj7  ChordQuality = "maj7"
	QualMin7  ChordQuality = "min7"
	QualDom7  ChordQuality = "7"
	QualDim7  ChordQuality = "dim7"
	QualM7b5  ChordQuality = "m7b5"
	QualMaj9  ChordQuality = "maj9"
	QualMin9  ChordQuality = "min9"
	QualDom9  ChordQuality = "9"
	QualAdd9  ChordQuality = "add9"
	QualDom11 ChordQuality = "11"
	QualMin11 ChordQuality = "min11"
	QualMaj13 ChordQuality = "maj13"
	QualDom13 ChordQuality = "13"
)

// Borrowed-chord provenance values for Chord.BorrowedFrom.
const (
	BorrowedFromParallelMinor = "parallel-minor"
	BorrowedFromParallelMajor = "parallel-major"
)

// Chord duration bounds in beats. Edits outside this range are clamped.
const (
	MinChordDurationBeats = 0.5
	MaxChordDurationBeats = 8.0
)

// Chord is one realized chord in a progression. Notes are absolute MIDI
// pitches, ascending by convention.
type Chord struct {
	ID             string       `json:"id"`
	Root           int          `json:"root"` // pitch class 0-11
	Quality        ChordQuality `json:"quality"`
	Notes          []int        `json:"notes"`
	DisplayName    string       `json:"displayName"`
	DurationBeats  float64      `json:"durationBeats"`
	BorrowedFrom   string       `json:"borrowedFrom,omitempty"`
	BorrowedDegree string       `json:"borrowedDegree,omitempty"`
}

// ChordProgression is an ordered, independently addressable chord sequence.
// Label is "Main" or "Bridge N".
type ChordProgression struct {
	ID     string  `json:"id"`
	Label  string  `json:"label"`
	Chords []Chord `json:"chords"`
}

// TotalBeats is the progression length every pattern expander works against.
func (p ChordProgression) TotalBeats() float64 {
	total := 0.0
	for _, c := range p.Chords {
		total += c.DurationBeats
	}
	return total
}

// NoteEvent represents a single musical note with timing and pitch information
type NoteEvent struct {
	MidiNoteNumber int     `json:"midiNoteNumber"`
	Velocity       int     `json:"velocity"`
	StartBeats     float64 `json:"startBeats"`
	DurationBeats  float64 `json:"durationBeats"`
}

// Genre labels. The template bank is keyed by "Genre_Mood"; genres without an
// exact entry fall back through the chain in progression.TemplatesFor.
type Genre string

const (
	GenrePop       Genre = "Pop"
	GenreRock      Genre = "Rock"
	GenreJazz      Genre = "Jazz"
	GenreBlues     Genre = "Blues"
	GenreCountry   Genre = "Country"
	GenreFolk      Genre = "Folk"
	GenreRnB       Genre = "RnB"
	GenreSoul      Genre = "Soul"
	GenreNeoSoul   Genre = "Neo Soul"
	GenreFunk      Genre = "Funk"
	GenreGospel    Genre = "Gospel"
	GenreHipHop    Genre = "Hip Hop"
	GenreLoFi      Genre = "Lo-Fi"
	GenreEDM       Genre = "EDM"
	GenreHouse     Genre = "House"
	GenreTechno    Genre = "Techno"
	GenreTrance    Genre = "Trance"
	GenreAmbient   Genre = "Ambient"
	GenreClassical Genre = "Classical"
	GenreCinematic Genre = "Cinematic"
	GenreLatin     Genre = "Latin"
	GenreReggae    Genre = "Reggae"
	GenreMetal     Genre = "Metal"
	GenreIndie     Genre = "Indie"
)

// Mood labels.
type Mood string

const (
	MoodHappy     Mood = "Happy"
	MoodSad       Mood = "Sad"
	MoodDreamy    Mood = "Dreamy"
	MoodEnergetic Mood = "Energetic"
	MoodDark      Mood = "Dark"
	MoodChill     Mood = "Chill"
)

// Settings is the caller-supplied session state. SoundType is passed through
// to the audio adapter untouched; the engine never reads it.
type Settings struct {
	Key       Key     `json:"key"`
	TempoBPM  float64 `json:"tempoBPM"`
	Genre     Genre   `json:"genre"`
	Mood      Mood    `json:"mood"`
	SoundType string  `json:"soundType"`
}
