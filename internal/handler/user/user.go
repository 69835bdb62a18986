package user

import (
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/petfans/petfans-api/internal/handler"
	"github.com/petfans/petfans-api/internal/model"
	userService "github.com/petfans/petfans-api/internal/service/user"
	apperrors "github.com/petfans/petfans-api/pkg/errors"
	"github.com/petfans/petfans-api/pkg/httputil"
)

type Handler struct {
	service *userService.Service
}

func NewHandler(service *userService.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	users := r.Group("/users")
	{
		users.GET("/me", h.Me)
		users.GET("/me/profile", h.GetProfile)
		users.PUT("/me/profile", h.UpdateProfile)
	}
}

func (h *Handler) Me(c *gin.Context) {
	userID, ok := handler.CurrentUserID(c)
	if !ok {
		httputil.RespondWithError(c, apperrors.Unauthorized(fmt.Errorf("missing identity")))
		return
	}

	u, err := h.service.Get(c.Request.Context(), userID)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, u)
}

func (h *Handler) GetProfile(c *gin.Context) {
	userID, ok := handler.CurrentUserID(c)
	if !ok {
		httputil.RespondWithError(c, apperrors.Unauthorized(fmt.Errorf("missing identity")))
		return
	}

	profile, err := h.service.GetProfile(c.Request.Context(), userID)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, profile)
}

func (h *Handler) UpdateProfile(c *gin.Context) {
	userID, ok := handler.CurrentUserID(c)
	if !ok {
		httputil.RespondWithError(c, apperrors.Unauthorized(fmt.Errorf("missing identity")))
		return
	}

	var req model.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid request", err))
		return
	}

	profile, err := h.service.UpdateProfile(c.Request.Context(), userID, &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, profile)
}
