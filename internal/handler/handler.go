package handler

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/petfans/petfans-api/internal/repository"
	apperrors "github.com/petfans/petfans-api/pkg/errors"
	"github.com/petfans/petfans-api/pkg/httputil"
)

// ContextUserIDKey is where the auth middleware stores the caller's id.
const ContextUserIDKey = "user_id"

// CurrentUserID returns the authenticated caller's id. The auth
// middleware guarantees it is set on protected routes.
func CurrentUserID(c *gin.Context) (uuid.UUID, bool) {
	v, ok := c.Get(ContextUserIDKey)
	if !ok {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}

// RespondError translates service and repository errors into API
// responses.
func RespondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		httputil.RespondWithError(c, apperrors.NotFound("resource", err))
	case errors.Is(err, repository.ErrDuplicateReminder):
		httputil.RespondWithError(c, apperrors.Conflict("reminder already exists", err))
	case errors.Is(err, repository.ErrAlreadySent):
		httputil.RespondWithError(c, apperrors.Conflict("reminder already sent", err))
	default:
		httputil.RespondWithError(c, err)
	}
}

// ParseIDParam parses a uuid path parameter and writes a 400 on failure.
func ParseIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid "+name, err))
		return uuid.Nil, false
	}
	return id, true
}
