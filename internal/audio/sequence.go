package audio

import (
	"math"
	"sort"

	"github.com/chordforge/chordforge-api/internal/models"
)

const (
	// Per-voice envelope, in seconds. The release tail keeps note-off clicks
	// out of the mix.
	attackSeconds  = 0.005
	releaseSeconds = 0.04

	voiceGain  = 0.18
	masterGain = 0.8
)

// BeatsToSeconds converts a beat offset at the given tempo.
func BeatsToSeconds(beats, tempoBPM float64) float64 {
	return beats * 60 / tempoBPM
}

// voice is one scheduled note, pinned to absolute sample positions.
type voice struct {
	startSample int
	endSample   int // end of the sustained portion; release follows
	freq        float64
	amp         float64
}

// SequenceSource renders a note-event sequence as summed sine voices. It is a
// preview renderer: the engine's beat offsets are mapped onto the sample
// clock once, up front, and Process walks the sample cursor forward.
type SequenceSource struct {
	sampleRate int
	voices     []voice
	cursor     int
	endSample  int
}

// NewSequenceSource schedules the events at the given tempo. The source is
// not safe for concurrent use; the stream reader serializes access.
func NewSequenceSource(events []models.NoteEvent, tempoBPM float64, sampleRate int) *SequenceSource {
	release := int(releaseSeconds * float64(sampleRate))

	s := &SequenceSource{sampleRate: sampleRate}
	for _, e := range events {
		start := int(BeatsToSeconds(e.StartBeats, tempoBPM) * float64(sampleRate))
		end := int(BeatsToSeconds(e.StartBeats+e.DurationBeats, tempoBPM) * float64(sampleRate))
		if end <= start {
			continue
		}
		v := voice{
			startSample: start,
			endSample:   end,
			freq:        midiToFrequency(e.MidiNoteNumber),
			amp:         float64(e.Velocity) / 127 * voiceGain,
		}
		s.voices = append(s.voices, v)
		if tail := end + release; tail > s.endSample {
			s.endSample = tail
		}
	}
	sort.Slice(s.voices, func(i, j int) bool {
		return s.voices[i].startSample < s.voices[j].startSample
	})
	return s
}

// Duration returns the total rendered length in samples, release included.
func (s *SequenceSource) Duration() int {
	return s.endSample
}

// Process fills dst with interleaved stereo frames and advances the cursor.
func (s *SequenceSource) Process(dst []float32) {
	frames := len(dst) / 2
	attack := int(attackSeconds * float64(s.sampleRate))
	release := int(releaseSeconds * float64(s.sampleRate))

	for f := 0; f < frames; f++ {
		pos := s.cursor + f
		var sum float64
		for _, v := range s.voices {
			if pos < v.startSample {
				break // voices are start-ordered
			}
			if pos >= v.endSample+release {
				continue
			}
			env := envelope(pos, v.startSample, v.endSample, attack, release)
			if env == 0 {
				continue
			}
			phase := float64(pos-v.startSample) * v.freq / float64(s.sampleRate)
			sum += v.amp * env * math.Sin(2*math.Pi*phase)
		}
		sample := float32(sum * masterGain)
		dst[2*f] = sample
		dst[2*f+1] = sample
	}
	s.cursor += frames
}

// Finished reports whether the cursor has passed the last release tail.
func (s *SequenceSource) Finished() bool {
	return s.cursor >= s.endSample
}

func envelope(pos, start, end, attack, release int) float64 {
	if pos < start {
		return 0
	}
	e := 1.0
	if attack > 0 && pos < start+attack {
		e = float64(pos-start) / float64(attack)
	}
	if pos >= end {
		if release <= 0 || pos >= end+release {
			return 0
		}
		e *= 1 - float64(pos-end)/float64(release)
	}
	return e
}

func midiToFrequency(note int) float64 {
	return 440 * math.Pow(2, float64(note-69)/12)
}
