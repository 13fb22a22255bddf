package rest

import (
	"net/http"

	"github.com/dmitrijs2005/devconnector/internal/server/models"
	"github.com/dmitrijs2005/devconnector/internal/server/services"
	"github.com/gin-gonic/gin"
)

func (h *Handler) respondProfile(c *gin.Context, p *models.Profile, err error) {
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *Handler) getProfile(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	p, err := h.profiles.Get(c.Request.Context(), id.ID)
	h.respondProfile(c, p, err)
}

func (h *Handler) getProfileByHandle(c *gin.Context) {
	p, err := h.profiles.GetByHandle(c.Request.Context(), c.Param("handle"))
	h.respondProfile(c, p, err)
}

func (h *Handler) getProfileByUser(c *gin.Context) {
	p, err := h.profiles.GetByUser(c.Request.Context(), c.Param("user_id"))
	h.respondProfile(c, p, err)
}

func (h *Handler) submitProfile(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	var in services.ProfileInput
	if !bind(c, &in) {
		return
	}
	p, err := h.profiles.Submit(c.Request.Context(), id.ID, in)
	h.respondProfile(c, p, err)
}

func (h *Handler) addExperience(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	var in services.ExperienceInput
	if !bind(c, &in) {
		return
	}
	p, err := h.profiles.AddExperience(c.Request.Context(), id.ID, in)
	h.respondProfile(c, p, err)
}

func (h *Handler) addEducation(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	var in services.EducationInput
	if !bind(c, &in) {
		return
	}
	p, err := h.profiles.AddEducation(c.Request.Context(), id.ID, in)
	h.respondProfile(c, p, err)
}

func (h *Handler) removeExperience(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	p, err := h.profiles.RemoveExperience(c.Request.Context(), id.ID, c.Param("exp_id"))
	h.respondProfile(c, p, err)
}

func (h *Handler) removeEducation(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	p, err := h.profiles.RemoveEducation(c.Request.Context(), id.ID, c.Param("edu_id"))
	h.respondProfile(c, p, err)
}
