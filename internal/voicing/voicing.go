package voicing

import (
	"sort"

	"github.com/chordforge/chordforge-api/internal/models"
	"github.com/chordforge/chordforge-api/internal/theory"
)

// Range bounds the absolute pitches a voicing may use.
type Range struct {
	Low  int
	High int
}

// DefaultRange is the keyboard-comfortable register voicings target.
var DefaultRange = Range{Low: 48, High: 72}

// Candidate octaves for voice placement. Closed/smoothed voicings roam
// octaves 2-6; the open-voicing upper structure is restricted to 3-6.
const (
	closedLowOctave = 2
	openLowOctave   = 3
	highOctave      = 6
)

// Voice realizes (root, quality) as absolute pitches. With a previous voicing
// it smooths voice-leading against it; without one it builds a tight closed
// voicing around the range center. Open voicing separates a low bass note
// from a drop-2 upper structure. The result is sorted ascending and contains
// exactly one pitch per chord tone.
func Voice(root int, quality models.ChordQuality, previous []int, rng Range, open bool) []int {
	intervals := theory.ChordIntervals(quality)

	if open {
		return openVoicing(root, intervals, previous, rng)
	}

	notes := placeVoices(root, intervals, previous, rng, closedLowOctave)
	sort.Ints(notes)
	return notes
}

// placeVoices assigns one absolute pitch per interval, in interval order.
func placeVoices(root int, intervals []int, previous []int, rng Range, lowOctave int) []int {
	prev := make([]int, len(previous))
	copy(prev, previous)
	sort.Ints(prev)
	used := make([]bool, len(prev))

	chosen := make([]int, 0, len(intervals))
	for _, interval := range intervals {
		pc := ((root+interval)%12 + 12) % 12
		candidates := candidatePitches(pc, rng, lowOctave)

		var pick int
		if len(prev) > 0 {
			var anchored bool
			pick, anchored = nearestToUnusedPrev(candidates, prev, used)
			if !anchored {
				pick = nearestToTarget(candidates, runningTarget(chosen, rng))
			}
		} else {
			pick = nearestToTarget(candidates, runningTarget(chosen, rng))
		}
		chosen = append(chosen, pick)
	}
	return chosen
}

// openVoicing builds bass + upper structure: the bass sits one octave below
// the default root placement, the upper voices carry only non-root tones and
// get a drop-2 spread.
func openVoicing(root int, intervals []int, previous []int, rng Range) []int {
	pc := ((root % 12) + 12) % 12
	bass := 48 + pc - 12 // one octave below the default register root

	upperRange := Range{Low: 48, High: 95}
	upper := placeVoices(root, intervals[1:], previous, upperRange, openLowOctave)
	sort.Ints(upper)

	// Drop-2: lower the second-highest upper voice by an octave.
	if len(upper) >= 3 {
		upper[len(upper)-2] -= 12
	}

	notes := append([]int{bass}, upper...)
	sort.Ints(notes)
	return notes
}

// candidatePitches enumerates absolute pitches for a pitch class across the
// candidate octaves, intersected with the target range. If the range excludes
// every octave the range bound is ignored so a voice is never dropped.
func candidatePitches(pc int, rng Range, lowOctave int) []int {
	candidates := make([]int, 0, highOctave-lowOctave+1)
	for oct := lowOctave; oct <= highOctave; oct++ {
		pitch := (oct+1)*12 + pc
		if pitch >= rng.Low && pitch <= rng.High {
			candidates = append(candidates, pitch)
		}
	}
	if len(candidates) == 0 {
		for oct := lowOctave; oct <= highOctave; oct++ {
			candidates = append(candidates, (oct+1)*12+pc)
		}
	}
	return candidates
}

// runningTarget is the average of the already-chosen pitches, or the range
// center for the first voice.
func runningTarget(chosen []int, rng Range) float64 {
	if len(chosen) == 0 {
		return float64(rng.Low+rng.High) / 2
	}
	sum := 0
	for _, p := range chosen {
		sum += p
	}
	return float64(sum) / float64(len(chosen))
}

func nearestToTarget(candidates []int, target float64) int {
	best := candidates[0]
	bestDist := absf(float64(candidates[0]) - target)
	for _, c := range candidates[1:] {
		if d := absf(float64(c) - target); d < bestDist {
			best = c
			bestDist = d
		}
	}
	return best
}

// nearestToUnusedPrev picks the candidate closest to any not-yet-consumed
// pitch of the previous voicing, consuming that pitch so no previous note
// anchors two voices. Candidates and previous pitches are scanned ascending;
// the first minimal pair wins ties.
func nearestToUnusedPrev(candidates, prev []int, used []bool) (int, bool) {
	best, bestPrev := -1, -1
	bestDist := 1 << 30
	for _, c := range candidates {
		for j, p := range prev {
			if used[j] {
				continue
			}
			d := c - p
			if d < 0 {
				d = -d
			}
			if d < bestDist {
				bestDist = d
				best = c
				bestPrev = j
			}
		}
	}
	if bestPrev < 0 {
		return 0, false // every previous pitch already consumed
	}
	used[bestPrev] = true
	return best, true
}

func absf(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}
