package rest

import (
	"net/http"

	"github.com/dmitrijs2005/devconnector/internal/server/services"
	"github.com/gin-gonic/gin"
)

func (h *Handler) register(c *gin.Context) {
	var in services.RegisterInput
	if !bind(c, &in) {
		return
	}

	user, err := h.users.Register(c.Request.Context(), in)
	if err != nil {
		h.fail(c, err)
		return
	}

	h.logger.Info(c.Request.Context(), "Registered", "user_id", user.ID)
	c.JSON(http.StatusOK, user)
}

func (h *Handler) login(c *gin.Context) {
	var in services.LoginInput
	if !bind(c, &in) {
		return
	}

	token, err := h.users.Login(c.Request.Context(), in)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "token": "Bearer " + token})
}

func (h *Handler) current(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}

	user, err := h.users.Current(c.Request.Context(), id.ID)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"id": user.ID, "name": user.Name, "email": user.Email})
}

// deleteAccount removes the caller's profile and account.
func (h *Handler) deleteAccount(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}

	if err := h.users.DeleteAccount(c.Request.Context(), id.ID); err != nil {
		h.fail(c, err)
		return
	}

	h.logger.Info(c.Request.Context(), "Account deleted", "user_id", id.ID)
	c.JSON(http.StatusOK, gin.H{"success": true})
}
