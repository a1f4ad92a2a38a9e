package main

import (
	"flag"
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/chordforge/chordforge-api/internal/audio"
	"github.com/chordforge/chordforge-api/internal/models"
	"github.com/chordforge/chordforge-api/internal/patterns"
	"github.com/chordforge/chordforge-api/internal/services"
	"github.com/chordforge/chordforge-api/internal/theory"
)

// preview generates a progression and plays it through the default audio
// device. Useful for auditioning genre/mood/pattern combinations without
// spinning up the API.
func main() {
	var (
		keyName    = flag.String("key", "C", "key root note name (C, F#, Bb, ...)")
		scaleName  = flag.String("scale", "major", "scale: major|minor")
		genreName  = flag.String("genre", "Pop", "genre label (Pop, Jazz, Lo-Fi, ...)")
		moodName   = flag.String("mood", "Happy", "mood label (Happy, Sad, Dreamy, Energetic, Dark, Chill)")
		tempoBPM   = flag.Float64("tempo", 120, "tempo in BPM")
		seed       = flag.Int64("seed", 0, "random seed (0 = time-based)")
		label      = flag.String("progression", "Main", "which generated progression to play")
		bassName   = flag.String("bass", "root", "bass pattern: none|root|rootFifth|walking|syncopated")
		chordName  = flag.String("chord", "sustain", "chord pattern: sustain|arpeggioUp|arpeggioDown|staccato|strum")
		melodyName = flag.String("melody", "none", "melody pattern: none|simple|smooth|rhythmic")
		strum      = flag.Int("strum", 0, "strum amount, -100..100 (chord=strum only)")
		sampleRate = flag.Int("sample-rate", 48000, "output sample rate")
	)
	flag.Parse()

	root, err := theory.NoteIndex(*keyName)
	if err != nil {
		log.Fatal(err)
	}
	scale := models.Scale(*scaleName)
	if scale != models.ScaleMajor && scale != models.ScaleMinor {
		log.Fatalf("unknown scale %q", *scaleName)
	}

	if *seed == 0 {
		*seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(*seed))
	log.Printf("🎲 Seed: %d", *seed)

	arranger := services.NewArrangerService(rng, models.Settings{
		Key:      models.Key{Root: root, Scale: scale},
		TempoBPM: *tempoBPM,
		Genre:    models.Genre(*genreName),
		Mood:     models.Mood(*moodName),
	})

	progressions := arranger.GenerateAll()
	var target *models.ChordProgression
	for i := range progressions {
		if progressions[i].Label == *label {
			target = &progressions[i]
			break
		}
	}
	if target == nil {
		log.Fatalf("no progression labelled %q was generated", *label)
	}

	fmt.Printf("%s (%s %s, %s %s):\n", target.Label, *keyName, scale, *genreName, *moodName)
	for _, chord := range target.Chords {
		fmt.Printf("  %-8s %g beats\n", chord.DisplayName, chord.DurationBeats)
	}

	tempo := arranger.Settings().TempoBPM
	events, err := arranger.RenderEvents(
		target.ID,
		patterns.BassPattern(*bassName),
		patterns.ChordPattern(*chordName),
		patterns.MelodyPattern(*melodyName),
		*strum,
	)
	if err != nil {
		log.Fatal(err)
	}

	source := audio.NewSequenceSource(events, tempo, *sampleRate)
	player, err := audio.NewPlayer(*sampleRate, source)
	if err != nil {
		log.Fatal(err)
	}

	seconds := float64(source.Duration()) / float64(*sampleRate)
	log.Printf("🔊 Playing %d events (%.1fs at %.0f BPM)", len(events), seconds, tempo)
	player.Play()

	// The stream signals EOF once the release tail of the last voice has
	// drained, at which point the player reports not-playing.
	for player.IsPlaying() {
		time.Sleep(100 * time.Millisecond)
	}
	if err := player.Stop(); err != nil {
		log.Fatal(err)
	}
	log.Println("✅ Playback complete")
}
