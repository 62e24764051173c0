// Package api is the HTTP surface of fittrack: gin handlers translating
// JSON requests into account and training operations.
package api

import (
	"github.com/gin-gonic/gin"

	"github.com/kbukum/fittrack/auth/session"
	apperrors "github.com/kbukum/fittrack/errors"
	"github.com/kbukum/fittrack/internal/account"
	"github.com/kbukum/fittrack/internal/training"
	"github.com/kbukum/fittrack/server"
	"github.com/kbukum/fittrack/server/middleware"
)

// Handler serves the fittrack routes.
type Handler struct {
	accounts *account.Service
	training *training.Service
	sessions middleware.Verifier
}

// NewHandler creates a Handler.
func NewHandler(accounts *account.Service, training *training.Service, sessions middleware.Verifier) *Handler {
	return &Handler{accounts: accounts, training: training, sessions: sessions}
}

// Register mounts every route on r. Everything except registration and
// login sits behind the session middleware.
func (h *Handler) Register(r gin.IRouter) {
	auth := r.Group("/auth")
	auth.POST("/register", h.register)
	auth.POST("/login", h.login)

	protected := r.Group("/", middleware.Session(h.sessions))
	protected.POST("/auth/logout", h.logout)
	protected.GET("/auth/me", h.me)

	protected.GET("/user/profile", h.getProfile)
	protected.POST("/user/profile", h.saveProfile)

	protected.GET("/plan", h.getPlan)
	protected.POST("/plan", h.savePlan)

	protected.POST("/workout", h.recordWorkout)
	protected.GET("/workout", h.listWorkouts)

	protected.GET("/analytics/summary", h.summary)
	protected.GET("/analytics/weekly", h.weekly)
}

// bind decodes the JSON body into dst. Field rules are checked by the
// services.
func bind(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		server.RespondWithError(c, apperrors.InvalidInput("body", "malformed JSON body").WithCause(err))
		return false
	}
	return true
}

// identity returns the caller verified by the session middleware.
func identity(c *gin.Context) (session.Identity, bool) {
	id, ok := middleware.CurrentIdentity(c)
	if !ok {
		server.RespondWithError(c, apperrors.NoToken())
	}
	return id, ok
}

// respond writes data, or err when it is set.
func respond(c *gin.Context, data any, err error) {
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	server.RespondOK(c, data)
}
