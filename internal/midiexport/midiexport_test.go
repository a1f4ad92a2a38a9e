package midiexport

import (
	"bytes"
	"testing"

	"github.com/chordforge/chordforge-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/gomidi/midi/v2/smf"
)

func TestBeatsToTicks(t *testing.T) {
	assert.Equal(t, uint32(0), BeatsToTicks(0))
	assert.Equal(t, uint32(128), BeatsToTicks(1))
	assert.Equal(t, uint32(64), BeatsToTicks(0.5))
	assert.Equal(t, uint32(32), BeatsToTicks(0.25))
	assert.Equal(t, uint32(512), BeatsToTicks(4))
	assert.Equal(t, uint32(0), BeatsToTicks(-1), "negative offsets clamp to zero")
}

func TestSerialize_ProducesStandardMidiFile(t *testing.T) {
	tracks := []Track{
		{
			Name:    "chords",
			Channel: 0,
			Events: []models.NoteEvent{
				{MidiNoteNumber: 60, Velocity: 80, StartBeats: 0, DurationBeats: 4},
				{MidiNoteNumber: 64, Velocity: 80, StartBeats: 0, DurationBeats: 4},
			},
		},
		{
			Name:    "bass",
			Channel: 1,
			Events: []models.NoteEvent{
				{MidiNoteNumber: 36, Velocity: 90, StartBeats: 0, DurationBeats: 2},
				{MidiNoteNumber: 43, Velocity: 75, StartBeats: 2, DurationBeats: 2},
			},
		},
	}

	data, err := Serialize(120, tracks)
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(data, []byte("MThd")), "SMF header chunk first")

	parsed, err := smf.ReadFrom(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Len(t, parsed.Tracks, 3, "tempo track plus one per input track")
}

func TestSerialize_NoteOffNeverPrecedesItsOn(t *testing.T) {
	tracks := []Track{
		{
			Name:    "melody",
			Channel: 2,
			Events: []models.NoteEvent{
				// Zero-length event still needs a strictly later off.
				{MidiNoteNumber: 72, Velocity: 70, StartBeats: 1, DurationBeats: 0},
			},
		},
	}

	data, err := Serialize(100, tracks)
	require.NoError(t, err)

	parsed, err := smf.ReadFrom(bytes.NewReader(data))
	require.NoError(t, err)
	require.Len(t, parsed.Tracks, 2)

	var sawOn, sawOff bool
	var tick uint32
	var onTick, offTick uint32
	for _, ev := range parsed.Tracks[1] {
		tick += ev.Delta
		var ch, key, vel uint8
		if ev.Message.GetNoteOn(&ch, &key, &vel) && vel > 0 {
			sawOn, onTick = true, tick
		}
		if ev.Message.GetNoteOff(&ch, &key, &vel) {
			sawOff, offTick = true, tick
		}
	}
	require.True(t, sawOn)
	require.True(t, sawOff)
	assert.Greater(t, offTick, onTick)
}

func TestSerialize_RejectsOutOfRangePitch(t *testing.T) {
	_, err := Serialize(120, []Track{
		{Name: "bad", Events: []models.NoteEvent{{MidiNoteNumber: 200, Velocity: 80, DurationBeats: 1}}},
	})
	assert.Error(t, err)
}
