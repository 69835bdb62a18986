package species

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/petfans/petfans-api/internal/handler"
	"github.com/petfans/petfans-api/internal/model"
	speciesService "github.com/petfans/petfans-api/internal/service/species"
	apperrors "github.com/petfans/petfans-api/pkg/errors"
	"github.com/petfans/petfans-api/pkg/httputil"
)

type Handler struct {
	service *speciesService.Service
}

func NewHandler(service *speciesService.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	species := r.Group("/species")
	{
		species.POST("", h.CreateSpecies)
		species.GET("", h.ListSpecies)
		species.GET("/:id", h.GetSpecies)
		species.DELETE("/:id", h.DeleteSpecies)
	}
	breeds := r.Group("/breeds")
	{
		breeds.POST("", h.CreateBreed)
		breeds.GET("", h.ListBreeds)
		breeds.GET("/:id", h.GetBreed)
		breeds.PUT("/:id", h.UpdateBreed)
		breeds.DELETE("/:id", h.DeleteBreed)
	}
}

func (h *Handler) CreateSpecies(c *gin.Context) {
	var req model.CreateSpeciesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid request", err))
		return
	}

	sp, err := h.service.CreateSpecies(c.Request.Context(), &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	httputil.RespondWithCreated(c, sp)
}

func (h *Handler) GetSpecies(c *gin.Context) {
	id, ok := handler.ParseIDParam(c, "id")
	if !ok {
		return
	}

	sp, err := h.service.GetSpecies(c.Request.Context(), id)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, sp)
}

func (h *Handler) DeleteSpecies(c *gin.Context) {
	id, ok := handler.ParseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.service.DeleteSpecies(c.Request.Context(), id); err != nil {
		handler.RespondError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, gin.H{"deleted": true})
}

func (h *Handler) ListSpecies(c *gin.Context) {
	list, err := h.service.ListSpecies(c.Request.Context())
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, list)
}

func (h *Handler) CreateBreed(c *gin.Context) {
	var req model.CreateBreedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid request", err))
		return
	}

	b, err := h.service.CreateBreed(c.Request.Context(), &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	httputil.RespondWithCreated(c, b)
}

func (h *Handler) GetBreed(c *gin.Context) {
	id, ok := handler.ParseIDParam(c, "id")
	if !ok {
		return
	}

	b, err := h.service.GetBreed(c.Request.Context(), id)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, b)
}

func (h *Handler) UpdateBreed(c *gin.Context) {
	id, ok := handler.ParseIDParam(c, "id")
	if !ok {
		return
	}

	var req model.UpdateBreedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid request", err))
		return
	}

	b, err := h.service.UpdateBreed(c.Request.Context(), id, &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, b)
}

func (h *Handler) DeleteBreed(c *gin.Context) {
	id, ok := handler.ParseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.service.DeleteBreed(c.Request.Context(), id); err != nil {
		handler.RespondError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, gin.H{"deleted": true})
}

// ListBreeds optionally filters by ?species_id=.
func (h *Handler) ListBreeds(c *gin.Context) {
	var speciesID *uuid.UUID
	if raw := c.Query("species_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			httputil.RespondWithError(c, apperrors.BadRequest("invalid species_id", err))
			return
		}
		speciesID = &id
	}

	list, err := h.service.ListBreeds(c.Request.Context(), speciesID)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, list)
}
