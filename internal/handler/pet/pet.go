package pet

import (
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/petfans/petfans-api/internal/handler"
	"github.com/petfans/petfans-api/internal/model"
	petService "github.com/petfans/petfans-api/internal/service/pet"
	apperrors "github.com/petfans/petfans-api/pkg/errors"
	"github.com/petfans/petfans-api/pkg/httputil"
)

type Handler struct {
	service *petService.Service
}

func NewHandler(service *petService.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	pets := r.Group("/pets")
	{
		pets.POST("", h.CreatePet)
		pets.GET("", h.ListPets)
		pets.GET("/:id", h.GetPet)
		pets.PUT("/:id", h.UpdatePet)
		pets.DELETE("/:id", h.DeletePet)
		pets.POST("/:id/owners", h.SharePet)
		pets.DELETE("/:id/owners/:userId", h.UnsharePet)
	}
}

func (h *Handler) CreatePet(c *gin.Context) {
	userID, ok := handler.CurrentUserID(c)
	if !ok {
		httputil.RespondWithError(c, apperrors.Unauthorized(fmt.Errorf("missing identity")))
		return
	}

	var req model.CreatePetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid request", err))
		return
	}

	pet, err := h.service.CreatePet(c.Request.Context(), userID, &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	httputil.RespondWithCreated(c, pet)
}

func (h *Handler) GetPet(c *gin.Context) {
	userID, ok := handler.CurrentUserID(c)
	if !ok {
		httputil.RespondWithError(c, apperrors.Unauthorized(fmt.Errorf("missing identity")))
		return
	}
	id, ok := handler.ParseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.service.AuthorizeOwner(c.Request.Context(), id, userID); err != nil {
		handler.RespondError(c, err)
		return
	}

	pet, err := h.service.GetPet(c.Request.Context(), id)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, pet)
}

func (h *Handler) UpdatePet(c *gin.Context) {
	userID, ok := handler.CurrentUserID(c)
	if !ok {
		httputil.RespondWithError(c, apperrors.Unauthorized(fmt.Errorf("missing identity")))
		return
	}
	id, ok := handler.ParseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.service.AuthorizeOwner(c.Request.Context(), id, userID); err != nil {
		handler.RespondError(c, err)
		return
	}

	var req model.UpdatePetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid request", err))
		return
	}

	pet, err := h.service.UpdatePet(c.Request.Context(), id, &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, pet)
}

func (h *Handler) DeletePet(c *gin.Context) {
	userID, ok := handler.CurrentUserID(c)
	if !ok {
		httputil.RespondWithError(c, apperrors.Unauthorized(fmt.Errorf("missing identity")))
		return
	}
	id, ok := handler.ParseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.service.AuthorizeOwner(c.Request.Context(), id, userID); err != nil {
		handler.RespondError(c, err)
		return
	}

	if err := h.service.DeletePet(c.Request.Context(), id); err != nil {
		handler.RespondError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, gin.H{"deleted": true})
}

func (h *Handler) ListPets(c *gin.Context) {
	userID, ok := handler.CurrentUserID(c)
	if !ok {
		httputil.RespondWithError(c, apperrors.Unauthorized(fmt.Errorf("missing identity")))
		return
	}

	pets, err := h.service.ListPets(c.Request.Context(), userID)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, pets)
}

type sharePetRequest struct {
	Email string `json:"email" binding:"required,email"`
}

func (h *Handler) SharePet(c *gin.Context) {
	userID, ok := handler.CurrentUserID(c)
	if !ok {
		httputil.RespondWithError(c, apperrors.Unauthorized(fmt.Errorf("missing identity")))
		return
	}
	id, ok := handler.ParseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.service.AuthorizeOwner(c.Request.Context(), id, userID); err != nil {
		handler.RespondError(c, err)
		return
	}

	var req sharePetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid request", err))
		return
	}

	if err := h.service.SharePet(c.Request.Context(), id, req.Email); err != nil {
		handler.RespondError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, gin.H{"shared": true})
}

func (h *Handler) UnsharePet(c *gin.Context) {
	callerID, ok := handler.CurrentUserID(c)
	if !ok {
		httputil.RespondWithError(c, apperrors.Unauthorized(fmt.Errorf("missing identity")))
		return
	}
	id, ok := handler.ParseIDParam(c, "id")
	if !ok {
		return
	}
	targetID, ok := handler.ParseIDParam(c, "userId")
	if !ok {
		return
	}

	if err := h.service.AuthorizeOwner(c.Request.Context(), id, callerID); err != nil {
		handler.RespondError(c, err)
		return
	}

	if err := h.service.UnsharePet(c.Request.Context(), id, targetID); err != nil {
		handler.RespondError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, gin.H{"removed": true})
}
