package ai

import (
	"errors"
	"strconv"

	appcfg "github.com/echomeet/core/internal/config"
	"github.com/echomeet/core/internal/modules/meetings"
	"github.com/echomeet/core/internal/pkg/pagination"
	"github.com/echomeet/core/internal/pkg/response"
	"github.com/echomeet/core/internal/pkg/taskqueue"
	"github.com/gin-gonic/gin"
)

type Handler struct{ svc *Service }

func NewHandler(svc *Service) *Handler { return &Handler{svc: svc} }

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	g := rg.Group("/ai", authMW)

	g.POST("/summaries/meetings/:id/generate", h.generateSummary)
	g.POST("/summaries/task", h.createSummaryTask)
	g.POST("/transcriptions/meetings/:id", h.transcribe)
	g.POST("/test", h.testConnection)

	tasks := g.Group("/tasks")
	tasks.GET("", h.listTasks)
	tasks.GET("/:id", h.getTask)
	tasks.POST("/:id/cancel", h.cancelTask)
	tasks.DELETE("/:id", h.deleteTask)
	tasks.DELETE("", h.deleteCompletedTasks)
}

// POST /ai/summaries/meetings/:id/generate
func (h *Handler) generateSummary(c *gin.Context) {
	summary, err := h.svc.GenerateSummary(c.Request.Context(), c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, meetings.ErrNotFound):
			response.NotFound(c)
		case errors.Is(err, ErrEmptyTranscript):
			response.UnprocessableEntity(c, err.Error())
		case errors.Is(err, ErrInvalidSummary):
			response.UnprocessableEntity(c, err.Error())
		default:
			response.InternalError(c, err)
		}
		return
	}
	response.OK(c, summary)
}

type createSummaryTaskDTO struct {
	MeetingID string `json:"meeting_id" binding:"required"`
}

// POST /ai/summaries/task
func (h *Handler) createSummaryTask(c *gin.Context) {
	var dto createSummaryTaskDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	task, err := h.svc.EnqueueSummary(c.Request.Context(), dto.MeetingID)
	if err != nil {
		if errors.Is(err, meetings.ErrNotFound) {
			response.NotFound(c)
			return
		}
		response.InternalError(c, err)
		return
	}
	response.OK(c, task)
}

// POST /ai/transcriptions/meetings/:id
func (h *Handler) transcribe(c *gin.Context) {
	result, err := h.svc.TranscribeMeeting(c.Request.Context(), c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, meetings.ErrNotFound):
			response.NotFound(c)
		case errors.Is(err, ErrAudioTooLarge):
			response.UnprocessableEntity(c, err.Error())
		default:
			response.InternalError(c, err)
		}
		return
	}
	response.OK(c, result)
}

type testConnectionDTO struct {
	Type     string `json:"type"`
	APIKey   string `json:"api_key"`
	Endpoint string `json:"endpoint"`
	Model    string `json:"model"`
}

// POST /ai/test
func (h *Handler) testConnection(c *gin.Context) {
	var dto testConnectionDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	provider := &appcfg.AIProvider{
		Type:     dto.Type,
		APIKey:   dto.APIKey,
		Endpoint: dto.Endpoint,
		Enabled:  true,
	}
	if err := h.svc.TestConnection(c.Request.Context(), provider, dto.Model); err != nil {
		response.UnprocessableEntity(c, err.Error())
		return
	}
	response.OK(c, gin.H{"ok": true})
}

// GET /ai/tasks?type=...&status=...
func (h *Handler) listTasks(c *gin.Context) {
	q := pagination.FromContext(c)

	var taskType *string
	if t := c.Query("type"); t != "" {
		taskType = &t
	}
	var status *taskqueue.TaskStatus
	if st := c.Query("status"); st != "" {
		s := taskqueue.TaskStatus(st)
		status = &s
	}

	tasks, total, err := h.svc.tasks.List(c.Request.Context(), q.Page, q.Size, taskType, status)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	totalPage := int((total + int64(q.Size) - 1) / int64(q.Size))
	response.Paged(c, tasks, response.Pagination{
		Total:       total,
		CurrentPage: q.Page,
		TotalPage:   totalPage,
		Size:        q.Size,
		HasNextPage: q.Page < totalPage,
	})
}

func (h *Handler) getTask(c *gin.Context) {
	task, err := h.svc.tasks.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if task == nil {
		response.NotFound(c)
		return
	}
	response.OK(c, task)
}

func (h *Handler) cancelTask(c *gin.Context) {
	if err := h.svc.tasks.Cancel(c.Request.Context(), c.Param("id")); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	response.NoContent(c)
}

func (h *Handler) deleteTask(c *gin.Context) {
	if err := h.svc.tasks.DeleteByID(c.Request.Context(), c.Param("id")); err != nil {
		response.NotFoundMsg(c, err.Error())
		return
	}
	response.NoContent(c)
}

// DELETE /ai/tasks?before_ms=...
func (h *Handler) deleteCompletedTasks(c *gin.Context) {
	beforeMS, _ := strconv.ParseInt(c.Query("before_ms"), 10, 64)
	if err := h.svc.tasks.DeleteCompleted(c.Request.Context(), beforeMS); err != nil {
		response.InternalError(c, err)
		return
	}
	response.NoContent(c)
}
