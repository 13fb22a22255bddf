package rest

import (
	"errors"
	"io"
	"net/http"

	"github.com/dmitrijs2005/devconnector/internal/common"
	"github.com/gin-gonic/gin"
)

var (
	unauthorizedBody = gin.H{"error": "Unauthorized"}
	internalBody     = gin.H{"error": "internal error"}
)

const invalidCredentials = "Invalid email or password"

// fail writes the response for a service error. Unexpected errors are
// logged and reported as 500 without details.
func (h *Handler) fail(c *gin.Context, err error) {
	var verr *common.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, verr.Fields)
	case errors.Is(err, common.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, common.ErrDuplicateEmail):
		c.JSON(http.StatusBadRequest, gin.H{"email": "Email already exists"})
	case errors.Is(err, common.ErrInvalidCredentials):
		c.JSON(http.StatusBadRequest, gin.H{"email": invalidCredentials, "password": invalidCredentials})
	case errors.Is(err, common.ErrHandleTaken):
		c.JSON(http.StatusBadRequest, gin.H{"handle": "That handle is already in use"})
	case errors.Is(err, common.ErrProfileNotFound):
		c.JSON(http.StatusNotFound, gin.H{"noprofile": "There is no profile for this user"})
	case errors.Is(err, common.ErrPostNotFound):
		c.JSON(http.StatusNotFound, gin.H{"nopostfound": "No post found"})
	case errors.Is(err, common.ErrCommentNotFound):
		c.JSON(http.StatusNotFound, gin.H{"commentnotexists": "Comment does not exist"})
	case errors.Is(err, common.ErrForbidden):
		c.JSON(http.StatusUnauthorized, gin.H{"notauthorized": "User not authorized"})
	case errors.Is(err, common.ErrorUnauthorized):
		c.JSON(http.StatusUnauthorized, unauthorizedBody)
	default:
		h.logger.Error(c.Request.Context(), "request failed", "path", c.FullPath(), "error", err)
		c.JSON(http.StatusInternalServerError, internalBody)
	}
}

// bind decodes the JSON body, answering 400 on malformed input. An empty
// body leaves dst zeroed so that field validation reports what is missing.
func bind(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed request body"})
		return false
	}
	return true
}
