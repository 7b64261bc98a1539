package auth

import (
	"crypto/subtle"
	"strings"
	"time"

	"github.com/echomeet/core/internal/middleware"
	"github.com/echomeet/core/internal/pkg/jwt"
	"github.com/echomeet/core/internal/pkg/response"
	"github.com/gin-gonic/gin"
)

const tokenTTL = 7 * 24 * time.Hour

// Handler exposes the access-key login flow for the local dashboard.
type Handler struct {
	accessKey string
}

func NewHandler(accessKey string) *Handler {
	return &Handler{accessKey: strings.TrimSpace(accessKey)}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	g := rg.Group("/auth")
	g.POST("/login", h.login)
	g.GET("/check_logged", h.checkLogged)
	g.POST("/refresh", authMW, h.refresh)
}

type loginDTO struct {
	AccessKey string `json:"access_key" binding:"required"`
}

// POST /auth/login
func (h *Handler) login(c *gin.Context) {
	var dto loginDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	if h.accessKey == "" {
		response.Forbidden(c)
		return
	}
	if subtle.ConstantTimeCompare([]byte(strings.TrimSpace(dto.AccessKey)), []byte(h.accessKey)) != 1 {
		response.Unauthorized(c)
		return
	}

	token, err := jwt.Sign("owner", tokenTTL)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, gin.H{"token": token, "expires_in": int64(tokenTTL.Seconds())})
}

// GET /auth/check_logged
func (h *Handler) checkLogged(c *gin.Context) {
	response.OK(c, gin.H{"logged": middleware.IsAuthenticated(c)})
}

// POST /auth/refresh
func (h *Handler) refresh(c *gin.Context) {
	v, _ := c.Get(middleware.ContextKeySubject)
	subject, _ := v.(string)
	if subject == "" {
		response.Unauthorized(c)
		return
	}
	token, err := jwt.Sign(subject, tokenTTL)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, gin.H{"token": token, "expires_in": int64(tokenTTL.Seconds())})
}
