package vaccination

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/petfans/petfans-api/internal/handler"
	"github.com/petfans/petfans-api/internal/model"
	petService "github.com/petfans/petfans-api/internal/service/pet"
	vaccinationService "github.com/petfans/petfans-api/internal/service/vaccination"
	apperrors "github.com/petfans/petfans-api/pkg/errors"
	"github.com/petfans/petfans-api/pkg/httputil"
)

type Handler struct {
	service *vaccinationService.Service
	pets    *petService.Service
}

func NewHandler(service *vaccinationService.Service, pets *petService.Service) *Handler {
	return &Handler{service: service, pets: pets}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	vaccinations := r.Group("/vaccinations")
	{
		vaccinations.POST("", h.CreateVaccination)
		vaccinations.GET("", h.ListVaccinations)
		vaccinations.GET("/:id", h.GetVaccination)
		vaccinations.PUT("/:id", h.UpdateVaccination)
		vaccinations.DELETE("/:id", h.DeleteVaccination)
		vaccinations.POST("/:id/apply", h.MarkApplied)
	}
}

func (h *Handler) CreateVaccination(c *gin.Context) {
	userID, ok := handler.CurrentUserID(c)
	if !ok {
		httputil.RespondWithError(c, apperrors.Unauthorized(fmt.Errorf("missing identity")))
		return
	}

	var req model.CreateVaccinationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid request", err))
		return
	}

	petID, err := uuid.Parse(req.PetID)
	if err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid pet_id", err))
		return
	}
	if err := h.pets.AuthorizeOwner(c.Request.Context(), petID, userID); err != nil {
		handler.RespondError(c, err)
		return
	}

	record, err := h.service.CreateVaccination(c.Request.Context(), &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	httputil.RespondWithCreated(c, record)
}

func (h *Handler) GetVaccination(c *gin.Context) {
	record, ok := h.authorizedRecord(c)
	if !ok {
		return
	}
	httputil.RespondWithSuccess(c, record)
}

func (h *Handler) UpdateVaccination(c *gin.Context) {
	record, ok := h.authorizedRecord(c)
	if !ok {
		return
	}

	var req model.UpdateVaccinationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid request", err))
		return
	}

	updated, err := h.service.UpdateVaccination(c.Request.Context(), record.ID, &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, updated)
}

func (h *Handler) DeleteVaccination(c *gin.Context) {
	record, ok := h.authorizedRecord(c)
	if !ok {
		return
	}

	if err := h.service.DeleteVaccination(c.Request.Context(), record.ID); err != nil {
		handler.RespondError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, gin.H{"deleted": true})
}

type markAppliedRequest struct {
	AppliedDate *time.Time `json:"applied_date"`
}

func (h *Handler) MarkApplied(c *gin.Context) {
	record, ok := h.authorizedRecord(c)
	if !ok {
		return
	}

	var req markAppliedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid request", err))
		return
	}
	appliedOn := time.Now()
	if req.AppliedDate != nil {
		appliedOn = *req.AppliedDate
	}

	updated, err := h.service.MarkApplied(c.Request.Context(), record.ID, appliedOn)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, updated)
}

// ListVaccinations returns the caller's records, optionally narrowed by
// ?pet_id= and ?status=.
func (h *Handler) ListVaccinations(c *gin.Context) {
	userID, ok := handler.CurrentUserID(c)
	if !ok {
		httputil.RespondWithError(c, apperrors.Unauthorized(fmt.Errorf("missing identity")))
		return
	}

	filter := &model.VaccinationFilter{OwnerID: &userID}
	if raw := c.Query("pet_id"); raw != "" {
		petID, err := uuid.Parse(raw)
		if err != nil {
			httputil.RespondWithError(c, apperrors.BadRequest("invalid pet_id", err))
			return
		}
		if err := h.pets.AuthorizeOwner(c.Request.Context(), petID, userID); err != nil {
			handler.RespondError(c, err)
			return
		}
		filter = &model.VaccinationFilter{PetID: &petID}
	}
	if raw := c.Query("status"); raw != "" {
		status := model.VaccinationStatus(raw)
		filter.Status = &status
	}

	records, err := h.service.ListVaccinations(c.Request.Context(), filter)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, records)
}

// authorizedRecord loads the record from the :id param and checks the
// caller owns the pet it belongs to.
func (h *Handler) authorizedRecord(c *gin.Context) (*model.VaccinationRecord, bool) {
	userID, ok := handler.CurrentUserID(c)
	if !ok {
		httputil.RespondWithError(c, apperrors.Unauthorized(fmt.Errorf("missing identity")))
		return nil, false
	}
	id, ok := handler.ParseIDParam(c, "id")
	if !ok {
		return nil, false
	}

	record, err := h.service.GetVaccination(c.Request.Context(), id)
	if err != nil {
		handler.RespondError(c, err)
		return nil, false
	}
	if err := h.pets.AuthorizeOwner(c.Request.Context(), record.PetID, userID); err != nil {
		handler.RespondError(c, err)
		return nil, false
	}
	return record, true
}
