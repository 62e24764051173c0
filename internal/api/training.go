package api

import (
	"github.com/gin-gonic/gin"

	"github.com/kbukum/fittrack/internal/training"
)

func (h *Handler) getPlan(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	p, err := h.training.Plan(c.Request.Context(), id.SubjectID)
	respond(c, p, err)
}

func (h *Handler) savePlan(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	var in training.PlanInput
	if !bind(c, &in) {
		return
	}
	p, err := h.training.SavePlan(c.Request.Context(), id.SubjectID, in)
	respond(c, p, err)
}

func (h *Handler) recordWorkout(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	var in training.WorkoutInput
	if !bind(c, &in) {
		return
	}
	w, err := h.training.RecordWorkout(c.Request.Context(), id.SubjectID, in)
	respond(c, w, err)
}

func (h *Handler) listWorkouts(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	ws, err := h.training.Workouts(c.Request.Context(), id.SubjectID)
	respond(c, ws, err)
}

func (h *Handler) summary(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	s, err := h.training.Summary(c.Request.Context(), id.SubjectID)
	respond(c, s, err)
}

func (h *Handler) weekly(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	days, err := h.training.Weekly(c.Request.Context(), id.SubjectID)
	respond(c, days, err)
}
