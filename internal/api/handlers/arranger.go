package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/chordforge/chordforge-api/internal/logger"
	"github.com/chordforge/chordforge-api/internal/metrics"
	"github.com/chordforge/chordforge-api/internal/midiexport"
	"github.com/chordforge/chordforge-api/internal/models"
	"github.com/chordforge/chordforge-api/internal/patterns"
	"github.com/chordforge/chordforge-api/internal/services"
	"github.com/gin-gonic/gin"
)

type ArrangerHandler struct {
	arranger *services.ArrangerService
	metrics  *metrics.Client
}

func NewArrangerHandler(arranger *services.ArrangerService, metricsClient *metrics.Client) *ArrangerHandler {
	return &ArrangerHandler{
		arranger: arranger,
		metrics:  metricsClient,
	}
}

// GetSettings returns the current arranger settings
func (h *ArrangerHandler) GetSettings(c *gin.Context) {
	c.JSON(http.StatusOK, h.arranger.Settings())
}

// UpdateSettings replaces the arranger settings (tempo clamped server-side)
func (h *ArrangerHandler) UpdateSettings(c *gin.Context) {
	var req models.Settings
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updated := h.arranger.UpdateSettings(req)
	log.Printf("🎛️  Settings updated: %s/%s at %.0f bpm", updated.Genre, updated.Mood, updated.TempoBPM)
	c.JSON(http.StatusOK, updated)
}

// Generate creates a fresh Main + Bridge progression set
func (h *ArrangerHandler) Generate(c *gin.Context) {
	start := time.Now()
	progs := h.arranger.GenerateAll()
	duration := time.Since(start)

	chordCount := 0
	for _, p := range progs {
		chordCount += len(p.Chords)
	}
	settings := h.arranger.Settings()
	logger.LogGeneration(string(settings.Genre), string(settings.Mood), duration, len(progs), chordCount, logger.WithContext(c))
	h.metrics.RecordGenerationDuration(duration, true)
	h.metrics.RecordProgressionSize(string(settings.Genre), chordCount)

	c.JSON(http.StatusOK, gin.H{"progressions": progs})
}

// ListProgressions returns the current progression set
func (h *ArrangerHandler) ListProgressions(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"progressions": h.arranger.Progressions()})
}

// GetProgression returns one progression by id
func (h *ArrangerHandler) GetProgression(c *gin.Context) {
	prog, err := h.arranger.Progression(c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, prog)
}

// Regenerate redraws one progression from a fresh template
func (h *ArrangerHandler) Regenerate(c *gin.Context) {
	start := time.Now()
	prog, err := h.arranger.Regenerate(c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	h.metrics.RecordGenerationDuration(time.Since(start), true)
	c.JSON(http.StatusOK, prog)
}

// Extend appends chords up to the progression cap
func (h *ArrangerHandler) Extend(c *gin.Context) {
	added, err := h.arranger.Extend(c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"added": added})
}

type passingChordRequest struct {
	Index int `json:"index" binding:"required"`
}

// InsertPassingChord inserts a transitional chord before the given index
func (h *ArrangerHandler) InsertPassingChord(c *gin.Context) {
	var req passingChordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	chord, err := h.arranger.InsertPassingChord(c.Param("id"), req.Index)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	log.Printf("🎵 Passing chord %s inserted at index %d", chord.DisplayName, req.Index)
	c.JSON(http.StatusOK, chord)
}

// RegenerateChord replaces one chord with a new quality on the same root
func (h *ArrangerHandler) RegenerateChord(c *gin.Context) {
	index, ok := chordIndex(c)
	if !ok {
		return
	}

	chord, err := h.arranger.RegenerateChord(c.Param("id"), index)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, chord)
}

// durationRequest deliberately has no required binding: a zero (or missing)
// duration is an out-of-range edit and clamps to the minimum rather than
// being rejected.
type durationRequest struct {
	Duration float64 `json:"duration"`
}

// UpdateChordDuration sets a chord's duration, clamped to the legal range
func (h *ArrangerHandler) UpdateChordDuration(c *gin.Context) {
	index, ok := chordIndex(c)
	if !ok {
		return
	}

	var req durationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	chord, err := h.arranger.UpdateChordDuration(c.Param("id"), index, req.Duration)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, chord)
}

// BorrowChord substitutes a chord from the parallel mode
func (h *ArrangerHandler) BorrowChord(c *gin.Context) {
	index, ok := chordIndex(c)
	if !ok {
		return
	}

	chord, err := h.arranger.ApplyBorrowedChord(c.Param("id"), index)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	log.Printf("🎵 Borrowed %s (%s) at index %d", chord.DisplayName, chord.BorrowedDegree, index)
	c.JSON(http.StatusOK, chord)
}

type shiftRequest struct {
	Direction int `json:"direction" binding:"required"`
}

// ShiftChord moves a chord one diatonic degree up or down
func (h *ArrangerHandler) ShiftChord(c *gin.Context) {
	index, ok := chordIndex(c)
	if !ok {
		return
	}

	var req shiftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	chord, err := h.arranger.ShiftChordDegree(c.Param("id"), index, req.Direction)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, chord)
}

type swapRequest struct {
	FromID    string `json:"from_id" binding:"required"`
	FromIndex int    `json:"from_index"`
	ToID      string `json:"to_id" binding:"required"`
	ToIndex   int    `json:"to_index"`
}

// Swap reorders chords within or across progressions
func (h *ArrangerHandler) Swap(c *gin.Context) {
	var req swapRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.arranger.Swap(req.FromID, req.FromIndex, req.ToID, req.ToIndex); err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"progressions": h.arranger.Progressions()})
}

// RenderEvents returns the flat note-event render of one progression
func (h *ArrangerHandler) RenderEvents(c *gin.Context) {
	bass, chord, melody, strum := renderParams(c)

	events, err := h.arranger.RenderEvents(c.Param("id"), bass, chord, melody, strum)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"events": events})
}

// RenderMIDI returns the progression as a standard MIDI file
func (h *ArrangerHandler) RenderMIDI(c *gin.Context) {
	bass, chord, melody, strum := renderParams(c)

	chordEvents, bassEvents, melodyEvents, err := h.arranger.RenderTrackEvents(c.Param("id"), bass, chord, melody, strum)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	data, err := midiexport.Serialize(h.arranger.Settings().TempoBPM, []midiexport.Track{
		{Name: "chords", Channel: 0, Events: chordEvents},
		{Name: "bass", Channel: 1, Events: bassEvents},
		{Name: "melody", Channel: 2, Events: melodyEvents},
	})
	if err != nil {
		logger.Error("MIDI serialization failed", err, logger.WithContext(c))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to serialize midi"})
		return
	}

	c.Header("Content-Disposition", `attachment; filename="progression.mid"`)
	c.Data(http.StatusOK, "audio/midi", data)
}

// renderParams reads the pattern query parameters, defaulting to the plainest
// render. Unknown pattern names pass through; the expanders treat them as
// their fallback pattern.
func renderParams(c *gin.Context) (patterns.BassPattern, patterns.ChordPattern, patterns.MelodyPattern, int) {
	bass := patterns.BassPattern(c.DefaultQuery("bass", string(patterns.BassRoot)))
	chord := patterns.ChordPattern(c.DefaultQuery("chord", string(patterns.ChordSustain)))
	melody := patterns.MelodyPattern(c.DefaultQuery("melody", string(patterns.MelodyNone)))
	strum, _ := strconv.Atoi(c.DefaultQuery("strum_amount", "0"))
	return bass, chord, melody, strum
}

func chordIndex(c *gin.Context) (int, bool) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "index must be an integer"})
		return 0, false
	}
	return index, true
}

func respondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrProgressionNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrChordIndexOutOfRange),
		errors.Is(err, services.ErrInvalidShiftDirection),
		errors.Is(err, services.ErrPassingChordPosition):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		logger.Error("Arranger operation failed", err, logger.WithContext(c))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
