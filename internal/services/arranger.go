package services

import (
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"sync"

	"github.com/chordforge/chordforge-api/internal/models"
	"github.com/chordforge/chordforge-api/internal/patterns"
	"github.com/chordforge/chordforge-api/internal/progression"
	"github.com/chordforge/chordforge-api/internal/theory"
	"github.com/chordforge/chordforge-api/internal/voicing"
	"github.com/google/uuid"
)

// Tempo bounds for settings updates. Out-of-range tempos are clamped, never
// rejected.
const (
	MinTempoBPM = 40.0
	MaxTempoBPM = 240.0
)

var (
	ErrProgressionNotFound   = errors.New("progression not found")
	ErrChordIndexOutOfRange  = errors.New("chord index out of range")
	ErrInvalidShiftDirection = errors.New("shift direction must be +1 or -1")
	ErrPassingChordPosition  = errors.New("passing chord needs a preceding chord")
)

// ArrangerService owns the session's settings and progression set. All
// mutations replace whole progressions under the write lock so readers never
// observe a partially-updated chord list; reads hand out deep copies.
//
// The random source is shared with the generator and is not safe for
// concurrent use, so render paths that draw from it also take the write lock.
type ArrangerService struct {
	mu           sync.RWMutex
	gen          *progression.Generator
	rng          *rand.Rand
	settings     models.Settings
	progressions []models.ChordProgression
}

// NewArrangerService wires the generator and every probabilistic decision to
// the single injected random source.
func NewArrangerService(rng *rand.Rand, defaults models.Settings) *ArrangerService {
	defaults.TempoBPM = clampTempo(defaults.TempoBPM)
	return &ArrangerService{
		gen:      progression.NewGenerator(rng),
		rng:      rng,
		settings: defaults,
	}
}

// Settings returns the current session settings.
func (s *ArrangerService) Settings() models.Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings
}

// UpdateSettings replaces the session settings. Tempo is clamped to
// [MinTempoBPM, MaxTempoBPM]; a zero tempo keeps the current one.
func (s *ArrangerService) UpdateSettings(next models.Settings) models.Settings {
	s.mu.Lock()
	defer s.mu.Unlock()

	if next.TempoBPM == 0 {
		next.TempoBPM = s.settings.TempoBPM
	}
	next.TempoBPM = clampTempo(next.TempoBPM)
	s.settings = next
	return s.settings
}

// GenerateAll replaces the whole progression set with a fresh Main plus two
// bridges for the current settings.
func (s *ArrangerService) GenerateAll() []models.ChordProgression {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.progressions = s.gen.GenerateProgressions(s.settings.Key, s.settings.Genre, s.settings.Mood)
	return cloneProgressions(s.progressions)
}

// Progressions returns a deep copy of the current progression set.
func (s *ArrangerService) Progressions() []models.ChordProgression {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneProgressions(s.progressions)
}

// Progression returns a deep copy of one progression by id.
func (s *ArrangerService) Progression(id string) (models.ChordProgression, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return models.ChordProgression{}, fmt.Errorf("%w: %s", ErrProgressionNotFound, id)
	}
	return cloneProgression(s.progressions[idx]), nil
}

// Regenerate redraws one progression from a fresh template, keeping its
// label and id stable so clients can hold on to the reference.
func (s *ArrangerService) Regenerate(id string) (models.ChordProgression, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return models.ChordProgression{}, fmt.Errorf("%w: %s", ErrProgressionNotFound, id)
	}

	next := s.gen.RegenerateProgression(s.settings.Key, s.settings.Genre, s.settings.Mood, s.progressions[idx].Label)
	next.ID = s.progressions[idx].ID
	s.replace(idx, next)
	return cloneProgression(next), nil
}

// RegenerateChord replaces a single chord with a different quality on the
// same root, revoiced from its predecessor. Duration is preserved.
func (s *ArrangerService) RegenerateChord(id string, index int) (models.Chord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prog, idx, err := s.locate(id, index)
	if err != nil {
		return models.Chord{}, err
	}

	next := cloneProgression(prog)
	next.Chords[index] = s.gen.GenerateSingleChord(
		next.Chords[index], precedingNotes(next.Chords, index), s.settings.Key, s.settings.Genre)
	s.replace(idx, next)
	return cloneChord(next.Chords[index]), nil
}

// InsertPassingChord inserts a 2-beat transitional chord before the chord at
// index and halves the predecessor's duration (floored at 1 beat). Index 0
// has no predecessor and is rejected.
func (s *ArrangerService) InsertPassingChord(id string, index int) (models.Chord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prog, idx, err := s.locate(id, index)
	if err != nil {
		return models.Chord{}, err
	}
	if index == 0 {
		return models.Chord{}, ErrPassingChordPosition
	}

	next := cloneProgression(prog)
	prev := &next.Chords[index-1]
	passing := s.gen.GeneratePassingChord(*prev, next.Chords[index], s.settings.Key, s.settings.Genre)

	prev.DurationBeats = prev.DurationBeats / 2
	if prev.DurationBeats < 1 {
		prev.DurationBeats = 1
	}

	chords := make([]models.Chord, 0, len(next.Chords)+1)
	chords = append(chords, next.Chords[:index]...)
	chords = append(chords, passing)
	chords = append(chords, next.Chords[index:]...)
	next.Chords = chords

	s.replace(idx, next)
	return cloneChord(passing), nil
}

// UpdateChordDuration sets a chord's duration, silently clamped to the legal
// range.
func (s *ArrangerService) UpdateChordDuration(id string, index int, raw float64) (models.Chord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prog, idx, err := s.locate(id, index)
	if err != nil {
		return models.Chord{}, err
	}

	dur := raw
	if dur < models.MinChordDurationBeats {
		dur = models.MinChordDurationBeats
	}
	if dur > models.MaxChordDurationBeats {
		dur = models.MaxChordDurationBeats
	}

	next := cloneProgression(prog)
	next.Chords[index].DurationBeats = dur
	s.replace(idx, next)
	return cloneChord(next.Chords[index]), nil
}

// ApplyBorrowedChord substitutes the chord at index with a modal-interchange
// chord drawn from the fixed table for the key's mode.
func (s *ArrangerService) ApplyBorrowedChord(id string, index int) (models.Chord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prog, idx, err := s.locate(id, index)
	if err != nil {
		return models.Chord{}, err
	}

	next := cloneProgression(prog)
	next.Chords[index] = s.gen.GenerateModalInterchangeChord(
		next.Chords[index], precedingNotes(next.Chords, index), s.settings.Key, s.settings.Genre)
	s.replace(idx, next)
	return cloneChord(next.Chords[index]), nil
}

// ShiftChordDegree moves the chord at index one diatonic degree up or down,
// revoicing from its predecessor and preserving its duration.
func (s *ArrangerService) ShiftChordDegree(id string, index, direction int) (models.Chord, error) {
	if direction != 1 && direction != -1 {
		return models.Chord{}, ErrInvalidShiftDirection
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	prog, idx, err := s.locate(id, index)
	if err != nil {
		return models.Chord{}, err
	}

	next := cloneProgression(prog)
	old := next.Chords[index]
	root, _, quality := progression.ShiftedDegreeChord(s.settings.Key, old.Root, direction)
	open := progression.OpenVoicingGenre(s.settings.Genre)
	notes := voicing.Voice(root, quality, precedingNotes(next.Chords, index), voicing.DefaultRange, open)

	next.Chords[index] = models.Chord{
		ID:            uuid.New().String(),
		Root:          root,
		Quality:       quality,
		Notes:         notes,
		DisplayName:   theory.DisplayName(root, quality),
		DurationBeats: old.DurationBeats,
	}
	s.replace(idx, next)
	return cloneChord(next.Chords[index]), nil
}

// Extend appends up to four chords drawn from the genre/mood templates,
// never growing the progression past the chord cap. At the cap it returns an
// empty slice and leaves the progression untouched.
func (s *ArrangerService) Extend(id string) ([]models.Chord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return nil, fmt.Errorf("%w: %s", ErrProgressionNotFound, id)
	}

	added := s.gen.GenerateExtensionChords(
		s.progressions[idx].Chords, s.settings.Key, s.settings.Genre, s.settings.Mood)
	if len(added) == 0 {
		return nil, nil
	}

	next := cloneProgression(s.progressions[idx])
	next.Chords = append(next.Chords, added...)
	s.replace(idx, next)
	return cloneChords(added), nil
}

// Swap reorders chords. Within one progression it exchanges the two
// elements; across progressions it moves the source chord and inserts it at
// the target index.
func (s *ArrangerService) Swap(fromID string, fromIndex int, toID string, toIndex int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	fromProg, fromIdx, err := s.locate(fromID, fromIndex)
	if err != nil {
		return err
	}

	if fromID == toID {
		if toIndex < 0 || toIndex >= len(fromProg.Chords) {
			return fmt.Errorf("%w: %d", ErrChordIndexOutOfRange, toIndex)
		}
		next := cloneProgression(fromProg)
		next.Chords[fromIndex], next.Chords[toIndex] = next.Chords[toIndex], next.Chords[fromIndex]
		s.replace(fromIdx, next)
		return nil
	}

	toIdx := s.indexOf(toID)
	if toIdx < 0 {
		return fmt.Errorf("%w: %s", ErrProgressionNotFound, toID)
	}

	source := cloneProgression(fromProg)
	target := cloneProgression(s.progressions[toIdx])

	moved := source.Chords[fromIndex]
	source.Chords = append(source.Chords[:fromIndex], source.Chords[fromIndex+1:]...)

	if toIndex < 0 {
		toIndex = 0
	}
	if toIndex > len(target.Chords) {
		toIndex = len(target.Chords)
	}
	chords := make([]models.Chord, 0, len(target.Chords)+1)
	chords = append(chords, target.Chords[:toIndex]...)
	chords = append(chords, moved)
	chords = append(chords, target.Chords[toIndex:]...)
	target.Chords = chords

	s.replace(fromIdx, source)
	s.replace(toIdx, target)
	return nil
}

// RenderEvents expands one progression into a flat, start-ordered note-event
// sequence for the requested bass, chord, and melody patterns. Events are
// generated fresh on every call.
func (s *ArrangerService) RenderEvents(id string, bass patterns.BassPattern, chord patterns.ChordPattern, melody patterns.MelodyPattern, strumAmount int) ([]models.NoteEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return nil, fmt.Errorf("%w: %s", ErrProgressionNotFound, id)
	}
	chords := s.progressions[idx].Chords

	var events []models.NoteEvent
	events = append(events, patterns.GenerateChordPatternForProgression(chords, chord, strumAmount, s.rng)...)
	events = append(events, patterns.GenerateBasslineForProgression(chords, bass)...)
	events = append(events, patterns.GenerateMelodyForProgression(chords, s.settings.Key, melody, s.rng)...)

	sort.SliceStable(events, func(i, j int) bool {
		if events[i].StartBeats != events[j].StartBeats {
			return events[i].StartBeats < events[j].StartBeats
		}
		return events[i].MidiNoteNumber < events[j].MidiNoteNumber
	})
	return events, nil
}

// RenderTrackEvents is RenderEvents split per instrument, for serializers
// that want one track per part.
func (s *ArrangerService) RenderTrackEvents(id string, bass patterns.BassPattern, chord patterns.ChordPattern, melody patterns.MelodyPattern, strumAmount int) (chordEvents, bassEvents, melodyEvents []models.NoteEvent, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return nil, nil, nil, fmt.Errorf("%w: %s", ErrProgressionNotFound, id)
	}
	chords := s.progressions[idx].Chords

	chordEvents = patterns.GenerateChordPatternForProgression(chords, chord, strumAmount, s.rng)
	bassEvents = patterns.GenerateBasslineForProgression(chords, bass)
	melodyEvents = patterns.GenerateMelodyForProgression(chords, s.settings.Key, melody, s.rng)
	return chordEvents, bassEvents, melodyEvents, nil
}

// locate resolves a progression id and validates a chord index against it.
// Callers must hold the lock.
func (s *ArrangerService) locate(id string, index int) (models.ChordProgression, int, error) {
	idx := s.indexOf(id)
	if idx < 0 {
		return models.ChordProgression{}, -1, fmt.Errorf("%w: %s", ErrProgressionNotFound, id)
	}
	if index < 0 || index >= len(s.progressions[idx].Chords) {
		return models.ChordProgression{}, -1, fmt.Errorf("%w: %d", ErrChordIndexOutOfRange, index)
	}
	return s.progressions[idx], idx, nil
}

func (s *ArrangerService) indexOf(id string) int {
	for i, p := range s.progressions {
		if p.ID == id {
			return i
		}
	}
	return -1
}

// replace swaps in a progression at idx via a copied top-level slice, so a
// reader holding the previous slice never sees the update in place.
func (s *ArrangerService) replace(idx int, next models.ChordProgression) {
	updated := make([]models.ChordProgression, len(s.progressions))
	copy(updated, s.progressions)
	updated[idx] = next
	s.progressions = updated
}

func precedingNotes(chords []models.Chord, index int) []int {
	if index == 0 {
		return nil
	}
	return chords[index-1].Notes
}

func clampTempo(bpm float64) float64 {
	if bpm < MinTempoBPM {
		return MinTempoBPM
	}
	if bpm > MaxTempoBPM {
		return MaxTempoBPM
	}
	return bpm
}

func cloneChord(c models.Chord) models.Chord {
	c.Notes = append([]int(nil), c.Notes...)
	return c
}

func cloneChords(chords []models.Chord) []models.Chord {
	out := make([]models.Chord, len(chords))
	for i, c := range chords {
		out[i] = cloneChord(c)
	}
	return out
}

func cloneProgression(p models.ChordProgression) models.ChordProgression {
	p.Chords = cloneChords(p.Chords)
	return p
}

func cloneProgressions(ps []models.ChordProgression) []models.ChordProgression {
	out := make([]models.ChordProgression, len(ps))
	for i, p := range ps {
		out[i] = cloneProgression(p)
	}
	return out
}
