package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/carematch/carematch/internal/domain"
	"github.com/carematch/carematch/internal/usecase"
	"github.com/gin-gonic/gin"
)

type ConfirmationHandler struct {
	confirmationUsecase *usecase.ConfirmationUsecase
	logger              *slog.Logger
}

func NewConfirmationHandler(confirmationUsecase *usecase.ConfirmationUsecase, logger *slog.Logger) *ConfirmationHandler {
	return &ConfirmationHandler{
		confirmationUsecase: confirmationUsecase,
		logger:              logger.With("component", "confirmation_handler"),
	}
}

// Confirm records the caller's availability while the window is open.
func (h *ConfirmationHandler) Confirm(ctx *gin.Context) {
	err := h.confirmationUsecase.Confirm(ctx.Request.Context(), ctx.Param("id"), ctx.GetString("userID"))
	if err != nil {
		respondError(ctx, h.logger, "confirm availability", err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"ok": true})
}

type acceptOpenJobRequest struct {
	Note string `json:"note" binding:"required,min=1,max=500"`
}

// AcceptOpenJob is the post-window confirmation path; the note is part
// of the contract, not decoration.
func (h *ConfirmationHandler) AcceptOpenJob(ctx *gin.Context) {
	var req acceptOpenJobRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := h.confirmationUsecase.AcceptOpenJob(ctx.Request.Context(),
		ctx.Param("id"), ctx.GetString("userID"), req.Note)
	if err != nil {
		respondError(ctx, h.logger, "accept open job", err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"ok": true})
}

type declineRequest struct {
	FreelancerID string `json:"freelancer_id" binding:"required"`
}

// Decline flips one confirmation to declined. Declining a freelancer
// who never confirmed matches zero rows and still succeeds.
func (h *ConfirmationHandler) Decline(ctx *gin.Context) {
	var req declineRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := h.confirmationUsecase.Decline(ctx.Request.Context(),
		ctx.Param("id"), ctx.GetString("userID"), req.FreelancerID)
	if err != nil {
		respondError(ctx, h.logger, "decline freelancer", err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"ok": true})
}

type confirmedFreelancerResponse struct {
	FreelancerID      string    `json:"freelancer_id"`
	FullName          string    `json:"full_name"`
	City              string    `json:"city"`
	RateMin           *float64  `json:"rate_min,omitempty"`
	RateMax           *float64  `json:"rate_max,omitempty"`
	Languages         []string  `json:"languages,omitempty"`
	Note              *string   `json:"note,omitempty"`
	IsOpenJobAccepted bool      `json:"is_open_job_accepted"`
	ConfirmedAt       time.Time `json:"confirmed_at"`
}

func (h *ConfirmationHandler) ListConfirmed(ctx *gin.Context) {
	result, err := h.confirmationUsecase.ListConfirmed(ctx.Request.Context(),
		ctx.Param("id"), ctx.GetString("userID"))
	if err != nil {
		respondError(ctx, h.logger, "list confirmed", err)
		return
	}

	freelancers := make([]confirmedFreelancerResponse, 0, len(result.Freelancers))
	for _, f := range result.Freelancers {
		freelancers = append(freelancers, confirmedFreelancerResponse{
			FreelancerID:      f.FreelancerID,
			FullName:          f.FullName,
			City:              f.City,
			RateMin:           f.RateMin,
			RateMax:           f.RateMax,
			Languages:         f.Languages,
			Note:              f.Note,
			IsOpenJobAccepted: f.IsOpenJobAccepted,
			ConfirmedAt:       f.ConfirmedAt,
		})
	}

	ctx.JSON(http.StatusOK, gin.H{
		"freelancers":     freelancers,
		"confirm_ends_at": result.ConfirmEndsAt,
	})
}

func (h *ConfirmationHandler) OpenNotification(ctx *gin.Context) {
	err := h.confirmationUsecase.OpenNotification(ctx.Request.Context(),
		ctx.Param("nid"), ctx.GetString("userID"))
	if err != nil {
		respondError(ctx, h.logger, "open notification", err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"ok": true})
}

type notificationResponse struct {
	ID            string                    `json:"id"`
	JobID         string                    `json:"job_id"`
	Status        domain.NotificationStatus `json:"status"`
	OpenedAt      *time.Time                `json:"opened_at,omitempty"`
	City          string                    `json:"city"`
	ChildrenCount int                       `json:"children_count"`
	AgeGroup      string                    `json:"age_group,omitempty"`
	ConfirmEndsAt *time.Time                `json:"confirm_ends_at,omitempty"`
	CreatedAt     time.Time                 `json:"created_at"`
}

// ListNotifications is the freelancer's opportunity inbox.
func (h *ConfirmationHandler) ListNotifications(ctx *gin.Context) {
	items, err := h.confirmationUsecase.ListNotifications(ctx.Request.Context(), ctx.GetString("userID"))
	if err != nil {
		respondError(ctx, h.logger, "list notifications", err)
		return
	}

	notifications := make([]notificationResponse, 0, len(items))
	for _, n := range items {
		notifications = append(notifications, notificationResponse{
			ID:            n.ID,
			JobID:         n.JobID,
			Status:        n.Status,
			OpenedAt:      n.OpenedAt,
			City:          n.JobCity,
			ChildrenCount: n.ChildrenCount,
			AgeGroup:      n.AgeGroup,
			ConfirmEndsAt: n.JobConfirmEndsAt,
			CreatedAt:     n.CreatedAt,
		})
	}

	ctx.JSON(http.StatusOK, gin.H{"notifications": notifications})
}
