package rest

import (
	"errors"
	"net/http"

	"github.com/dmitrijs2005/devconnector/internal/common"
	"github.com/dmitrijs2005/devconnector/internal/server/models"
	"github.com/dmitrijs2005/devconnector/internal/server/services"
	"github.com/gin-gonic/gin"
)

func (h *Handler) respondPost(c *gin.Context, p *models.Post, err error) {
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *Handler) createPost(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	var in services.PostInput
	if !bind(c, &in) {
		return
	}
	p, err := h.posts.Create(c.Request.Context(), *id, in)
	h.respondPost(c, p, err)
}

func (h *Handler) getPost(c *gin.Context) {
	p, err := h.posts.Get(c.Request.Context(), c.Param("id"))
	h.respondPost(c, p, err)
}

func (h *Handler) deletePost(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	if err := h.posts.Delete(c.Request.Context(), id.ID, c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *Handler) toggleLike(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	p, err := h.posts.ToggleLike(c.Request.Context(), id.ID, c.Param("id"))
	h.respondPost(c, p, err)
}

func (h *Handler) addComment(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	var in services.PostInput
	if !bind(c, &in) {
		return
	}
	p, err := h.posts.AddComment(c.Request.Context(), *id, c.Param("id"), in)
	h.respondPost(c, p, err)
}

func (h *Handler) deleteComment(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	p, err := h.posts.DeleteComment(c.Request.Context(), id.ID, c.Param("id"), c.Param("comment_id"))
	if errors.Is(err, common.ErrForbidden) {
		c.JSON(http.StatusUnauthorized, gin.H{"cannotdelete": "You don't have permission to delete this comment"})
		return
	}
	h.respondPost(c, p, err)
}
