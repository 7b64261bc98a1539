package costs

import (
	"time"

	"github.com/echomeet/core/internal/pkg/response"
	"github.com/gin-gonic/gin"
)

type Handler struct{ svc *Service }

func NewHandler(svc *Service) *Handler { return &Handler{svc: svc} }

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	g := rg.Group("/costs")
	g.GET("", h.list)
	g.GET("/current", h.current)
	g.GET("/:month", h.month)
}

func (h *Handler) list(c *gin.Context) {
	recs, err := h.svc.ListAll()
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, recs)
}

func (h *Handler) current(c *gin.Context) {
	rec, err := h.svc.GetMonth(monthKey(time.Now()))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if rec == nil {
		response.NotFoundMsg(c, "no costs recorded this month")
		return
	}
	response.OK(c, rec)
}

func (h *Handler) month(c *gin.Context) {
	rec, err := h.svc.GetMonth(c.Param("month"))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if rec == nil {
		response.NotFound(c)
		return
	}
	response.OK(c, rec)
}
