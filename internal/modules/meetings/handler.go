package meetings

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/echomeet/core/internal/pkg/response"
	"github.com/gin-gonic/gin"
)

const maxAudioUploadBytes = 512 << 20

type CreateMeetingDTO struct {
	Title      string    `json:"title"      binding:"required"`
	Date       time.Time `json:"date"`
	Duration   int       `json:"duration"`
	Transcript string    `json:"transcript"`
	Speakers   []Speaker `json:"speakers"`
	Tags       []string  `json:"tags"`
	Category   string    `json:"category"`
}

type meetingResponse struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Date       time.Time `json:"date"`
	Duration   int       `json:"duration"`
	Transcript string    `json:"transcript"`
	Summary    *Summary  `json:"summary"`
	Speakers   []Speaker `json:"speakers"`
	Tags       []string  `json:"tags"`
	Category   string    `json:"category"`
	Archived   bool      `json:"archived"`
	HasAudio   bool      `json:"has_audio"`
	AudioSize  int       `json:"audio_size"`
	Created    time.Time `json:"created"`
	Modified   time.Time `json:"modified"`
}

func toResponse(m *Meeting) meetingResponse {
	return meetingResponse{
		ID:         m.ID,
		Title:      m.Title,
		Date:       m.Date,
		Duration:   m.Duration,
		Transcript: m.Transcript,
		Summary:    m.Summary,
		Speakers:   m.Speakers,
		Tags:       m.Tags,
		Category:   m.Category,
		Archived:   m.Archived,
		HasAudio:   len(m.Audio) > 0,
		AudioSize:  len(m.Audio),
		Created:    m.CreatedAt,
		Modified:   m.UpdatedAt,
	}
}

type Handler struct{ svc *Service }

func NewHandler(svc *Service) *Handler { return &Handler{svc: svc} }

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	g := rg.Group("/meetings")
	g.GET("", h.list)
	g.GET("/search", h.search)
	g.GET("/stats", h.stats)
	g.GET("/:id", h.get)
	g.GET("/:id/audio", h.audio)

	a := g.Group("", authMW)
	a.POST("", h.create)
	a.PUT("/:id/audio", h.uploadAudio)
	a.PATCH("/:id", h.update)
	a.POST("/:id/archive", h.archive)
	a.DELETE("/:id", h.delete)
	a.DELETE("", h.clearAll)
}

func (h *Handler) list(c *gin.Context) {
	var (
		items []*Meeting
		err   error
	)
	if category := c.Query("category"); category != "" {
		items, err = h.svc.GetByCategory(category)
	} else {
		items, err = h.svc.GetAll()
	}
	if err != nil {
		response.InternalError(c, err)
		return
	}
	out := make([]meetingResponse, len(items))
	for i, m := range items {
		out[i] = toResponse(m)
	}
	response.OK(c, out)
}

func (h *Handler) search(c *gin.Context) {
	items, err := h.svc.Search(c.Query("q"))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	out := make([]meetingResponse, len(items))
	for i, m := range items {
		out[i] = toResponse(m)
	}
	response.OK(c, out)
}

func (h *Handler) stats(c *gin.Context) {
	stats, err := h.svc.Stats()
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, stats)
}

func (h *Handler) get(c *gin.Context) {
	m, err := h.svc.Get(c.Param("id"))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if m == nil {
		response.NotFound(c)
		return
	}
	response.OK(c, toResponse(m))
}

func (h *Handler) audio(c *gin.Context) {
	m, err := h.svc.Get(c.Param("id"))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if m == nil {
		response.NotFound(c)
		return
	}
	if len(m.Audio) == 0 {
		response.NotFoundMsg(c, "meeting has no audio")
		return
	}
	c.Data(http.StatusOK, "audio/webm", m.Audio)
}

func (h *Handler) create(c *gin.Context) {
	var dto CreateMeetingDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	if dto.Duration < 0 {
		response.UnprocessableEntity(c, "duration must be non-negative")
		return
	}

	m := &Meeting{
		Title:      dto.Title,
		Date:       dto.Date,
		Duration:   dto.Duration,
		Transcript: dto.Transcript,
		Speakers:   dto.Speakers,
		Tags:       dto.Tags,
		Category:   dto.Category,
	}
	if err := h.svc.Save(m); err != nil {
		response.InternalError(c, err)
		return
	}
	response.Created(c, toResponse(m))
}

func (h *Handler) uploadAudio(c *gin.Context) {
	m, err := h.svc.Get(c.Param("id"))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if m == nil {
		response.NotFound(c)
		return
	}
	if m.Archived {
		response.UnprocessableEntity(c, "cannot attach audio to an archived meeting")
		return
	}

	file, _, err := c.Request.FormFile("audio")
	if err != nil {
		response.BadRequest(c, "audio file is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxAudioUploadBytes))
	if err != nil {
		response.InternalError(c, err)
		return
	}

	m.Audio = data
	if err := h.svc.Save(m); err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, toResponse(m))
}

func (h *Handler) update(c *gin.Context) {
	var dto UpdateMeetingDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	m, err := h.svc.Update(c.Param("id"), &dto)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			response.NotFound(c)
			return
		}
		response.InternalError(c, err)
		return
	}
	response.OK(c, toResponse(m))
}

func (h *Handler) archive(c *gin.Context) {
	m, err := h.svc.Archive(c.Param("id"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			response.NotFound(c)
			return
		}
		response.InternalError(c, err)
		return
	}
	response.OK(c, toResponse(m))
}

func (h *Handler) delete(c *gin.Context) {
	if err := h.svc.Delete(c.Param("id")); err != nil {
		response.InternalError(c, err)
		return
	}
	response.NoContent(c)
}

func (h *Handler) clearAll(c *gin.Context) {
	if err := h.svc.ClearAll(); err != nil {
		response.InternalError(c, err)
		return
	}
	response.NoContent(c)
}
