package reminder

import (
	"fmt"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/petfans/petfans-api/internal/handler"
	"github.com/petfans/petfans-api/internal/model"
	reminderService "github.com/petfans/petfans-api/internal/service/reminder"
	apperrors "github.com/petfans/petfans-api/pkg/errors"
	"github.com/petfans/petfans-api/pkg/httputil"
)

type Handler struct {
	service *reminderService.Service
}

func NewHandler(service *reminderService.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	reminders := r.Group("/reminders")
	{
		reminders.POST("", h.CreateReminder)
		reminders.GET("", h.ListReminders)
		reminders.GET("/:id", h.GetReminder)
		reminders.PATCH("/:id", h.UpdateReminder)
	}
}

func (h *Handler) CreateReminder(c *gin.Context) {
	userID, ok := handler.CurrentUserID(c)
	if !ok {
		httputil.RespondWithError(c, apperrors.Unauthorized(fmt.Errorf("missing identity")))
		return
	}

	var req model.CreateReminderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid request", err))
		return
	}

	r, err := h.service.CreateReminder(c.Request.Context(), userID, &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	httputil.RespondWithCreated(c, r)
}

func (h *Handler) GetReminder(c *gin.Context) {
	r, ok := h.ownReminder(c)
	if !ok {
		return
	}
	httputil.RespondWithSuccess(c, r)
}

// UpdateReminder toggles the active flag or replaces the message.
func (h *Handler) UpdateReminder(c *gin.Context) {
	r, ok := h.ownReminder(c)
	if !ok {
		return
	}

	var req model.UpdateReminderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid request", err))
		return
	}

	updated, err := h.service.UpdateReminder(c.Request.Context(), r.ID, &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, updated)
}

// ListReminders returns the caller's reminders, narrowed by ?pet_id=,
// ?method=, ?active= and ?due=. due=true selects reminders whose
// trigger has passed and that are still unsent and active.
func (h *Handler) ListReminders(c *gin.Context) {
	userID, ok := handler.CurrentUserID(c)
	if !ok {
		httputil.RespondWithError(c, apperrors.Unauthorized(fmt.Errorf("missing identity")))
		return
	}

	filter := &model.ReminderFilter{UserID: &userID}
	if raw := c.Query("pet_id"); raw != "" {
		petID, err := uuid.Parse(raw)
		if err != nil {
			httputil.RespondWithError(c, apperrors.BadRequest("invalid pet_id", err))
			return
		}
		filter.PetID = &petID
	}
	if raw := c.Query("method"); raw != "" {
		method := model.NotificationMethod(raw)
		filter.Method = &method
	}
	if raw := c.Query("active"); raw != "" {
		active, err := strconv.ParseBool(raw)
		if err != nil {
			httputil.RespondWithError(c, apperrors.BadRequest("invalid active flag", err))
			return
		}
		filter.Active = &active
	}
	if raw := c.Query("due"); raw != "" {
		due, err := strconv.ParseBool(raw)
		if err != nil {
			httputil.RespondWithError(c, apperrors.BadRequest("invalid due flag", err))
			return
		}
		if due {
			now := time.Now()
			filter.DueAt = &now
		}
	}

	reminders, err := h.service.ListReminders(c.Request.Context(), filter)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, reminders)
}

// ownReminder loads the :id reminder and checks it belongs to the
// caller. Reminders are strictly personal; co-owners each get their own
// rows.
func (h *Handler) ownReminder(c *gin.Context) (*model.Reminder, bool) {
	userID, ok := handler.CurrentUserID(c)
	if !ok {
		httputil.RespondWithError(c, apperrors.Unauthorized(fmt.Errorf("missing identity")))
		return nil, false
	}
	id, ok := handler.ParseIDParam(c, "id")
	if !ok {
		return nil, false
	}

	r, err := h.service.GetReminder(c.Request.Context(), id)
	if err != nil {
		handler.RespondError(c, err)
		return nil, false
	}
	if r.UserID != userID {
		httputil.RespondWithError(c, apperrors.Forbidden("not your reminder", nil))
		return nil, false
	}
	return r, true
}
