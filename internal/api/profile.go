package api

import (
	"github.com/gin-gonic/gin"

	"github.com/kbukum/fittrack/internal/account"
)

func (h *Handler) getProfile(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	p, err := h.accounts.Profile(c.Request.Context(), id.SubjectID)
	respond(c, p, err)
}

func (h *Handler) saveProfile(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	var in account.ProfileInput
	if !bind(c, &in) {
		return
	}
	p, err := h.accounts.SaveProfile(c.Request.Context(), id.SubjectID, in)
	respond(c, p, err)
}
