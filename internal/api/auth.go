package api

import (
	"github.com/gin-gonic/gin"

	"github.com/kbukum/fittrack/internal/account"
	"github.com/kbukum/fittrack/server"
)

type userResponse struct {
	User account.PublicUser `json:"user"`
}

type meResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

func (h *Handler) register(c *gin.Context) {
	var in account.RegisterInput
	if !bind(c, &in) {
		return
	}
	u, err := h.accounts.Register(c.Request.Context(), in)
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	server.RespondOK(c, userResponse{User: u.Public()})
}

func (h *Handler) login(c *gin.Context) {
	var in account.LoginInput
	if !bind(c, &in) {
		return
	}
	s, err := h.accounts.Login(c.Request.Context(), in)
	respond(c, s, err)
}

func (h *Handler) logout(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	if err := h.accounts.Logout(c.Request.Context(), id); err != nil {
		server.RespondWithError(c, err)
		return
	}
	server.RespondMessage(c, "Logged out successfully.")
}

func (h *Handler) me(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	server.RespondOK(c, meResponse{ID: id.SubjectID, Email: id.SubjectEmail})
}
