package midiexport

import (
	"bytes"
	"fmt"
	"math"
	"sort"

	"github.com/chordforge/chordforge-api/internal/models"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

// TicksPerBeat is the SMF resolution. Beat offsets from the engine are
// rational, so rounding error per event is bounded by half a tick.
const TicksPerBeat = 128

// Track groups the note events destined for one SMF track/channel.
type Track struct {
	Name    string
	Channel uint8
	Events  []models.NoteEvent
}

// BeatsToTicks converts a beat offset to absolute ticks at the fixed
// resolution.
func BeatsToTicks(beats float64) uint32 {
	if beats < 0 {
		return 0
	}
	return uint32(math.Round(beats * TicksPerBeat))
}

// Serialize renders the tracks into a standard MIDI file: track 0 carries the
// tempo, each Track becomes one note track with delta-encoded on/off pairs.
func Serialize(tempoBPM float64, tracks []Track) ([]byte, error) {
	sm := smf.New()
	sm.TimeFormat = smf.MetricTicks(TicksPerBeat)

	var tempo smf.Track
	tempo.Add(0, smf.MetaTempo(tempoBPM))
	tempo.Close(0)
	if err := sm.Add(tempo); err != nil {
		return nil, fmt.Errorf("adding tempo track: %w", err)
	}

	for _, t := range tracks {
		track, err := noteTrack(t)
		if err != nil {
			return nil, err
		}
		if err := sm.Add(track); err != nil {
			return nil, fmt.Errorf("adding track %q: %w", t.Name, err)
		}
	}

	var buf bytes.Buffer
	if _, err := sm.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("serializing midi: %w", err)
	}
	return buf.Bytes(), nil
}

// timedMessage is a note on/off pinned to an absolute tick, used to order
// events before delta encoding.
type timedMessage struct {
	tick uint32
	off  bool
	msg  midi.Message
}

func noteTrack(t Track) (smf.Track, error) {
	var track smf.Track
	if t.Name != "" {
		track.Add(0, smf.MetaTrackSequenceName(t.Name))
	}

	msgs := make([]timedMessage, 0, 2*len(t.Events))
	for _, e := range t.Events {
		if e.MidiNoteNumber < 0 || e.MidiNoteNumber > 127 {
			return nil, fmt.Errorf("midi note %d out of range on track %q", e.MidiNoteNumber, t.Name)
		}
		key := uint8(e.MidiNoteNumber)
		vel := uint8(e.Velocity)
		if e.Velocity > 127 {
			vel = 127
		}
		on := BeatsToTicks(e.StartBeats)
		off := BeatsToTicks(e.StartBeats + e.DurationBeats)
		if off <= on {
			off = on + 1
		}
		msgs = append(msgs,
			timedMessage{tick: on, msg: midi.NoteOn(t.Channel, key, vel)},
			timedMessage{tick: off, off: true, msg: midi.NoteOff(t.Channel, key)},
		)
	}

	// Offs sort before ons at the same tick so re-struck pitches never hang.
	sort.SliceStable(msgs, func(i, j int) bool {
		if msgs[i].tick != msgs[j].tick {
			return msgs[i].tick < msgs[j].tick
		}
		return msgs[i].off && !msgs[j].off
	})

	var cursor uint32
	for _, m := range msgs {
		track.Add(m.tick-cursor, m.msg)
		cursor = m.tick
	}
	track.Close(0)
	return track, nil
}
