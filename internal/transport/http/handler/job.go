package handler

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/carematch/carematch/internal/domain"
	"github.com/carematch/carematch/internal/usecase"
	"github.com/gin-gonic/gin"
)

type JobHandler struct {
	jobUsecase *usecase.JobUsecase
	logger     *slog.Logger
}

func NewJobHandler(jobUsecase *usecase.JobUsecase, logger *slog.Logger) *JobHandler {
	return &JobHandler{jobUsecase: jobUsecase, logger: logger.With("component", "job_handler")}
}

type createJobRequest struct {
	City                 string   `json:"city"                   binding:"required"`
	ChildrenCount        int      `json:"children_count"         binding:"required,min=1"`
	AgeGroup             string   `json:"age_group"`
	FirstAid             bool     `json:"first_aid"`
	NewbornCare          bool     `json:"newborn_care"`
	SpecialNeeds         bool     `json:"special_needs"`
	BudgetMin            *float64 `json:"budget_min"             binding:"omitempty,min=0"`
	BudgetMax            *float64 `json:"budget_max"             binding:"omitempty,min=0"`
	Languages            []string `json:"languages"`
	ConfirmWindowSeconds int      `json:"confirm_window_seconds" binding:"omitempty,min=30,max=180"`
}

type createJobResponse struct {
	JobID         string     `json:"job_id"`
	ConfirmEndsAt *time.Time `json:"confirm_ends_at"`
}

type restartJobResponse struct {
	JobID             string     `json:"job_id"`
	ConfirmEndsAt     *time.Time `json:"confirm_ends_at"`
	NotificationsSent int        `json:"notifications_sent"`
}

type jobResponse struct {
	ID                   string     `json:"id"`
	City                 string     `json:"city"`
	ChildrenCount        int        `json:"children_count"`
	AgeGroup             string     `json:"age_group,omitempty"`
	FirstAid             bool       `json:"first_aid"`
	NewbornCare          bool       `json:"newborn_care"`
	SpecialNeeds         bool       `json:"special_needs"`
	BudgetMin            *float64   `json:"budget_min,omitempty"`
	BudgetMax            *float64   `json:"budget_max,omitempty"`
	Languages            []string   `json:"languages,omitempty"`
	Status               string     `json:"status"`
	Stage                string     `json:"stage"`
	ConfirmStartsAt      *time.Time `json:"confirm_starts_at,omitempty"`
	ConfirmEndsAt        *time.Time `json:"confirm_ends_at,omitempty"`
	SelectedFreelancerID *string    `json:"selected_freelancer_id,omitempty"`
	LockedAt             *time.Time `json:"locked_at,omitempty"`
	CreatedAt            time.Time  `json:"created_at"`
}

func toJobResponse(j *domain.Job) jobResponse {
	return jobResponse{
		ID:                   j.ID,
		City:                 j.City,
		ChildrenCount:        j.ChildrenCount,
		AgeGroup:             j.AgeGroup,
		FirstAid:             j.Requirements.FirstAid,
		NewbornCare:          j.Requirements.NewbornCare,
		SpecialNeeds:         j.Requirements.SpecialNeeds,
		BudgetMin:            j.BudgetMin,
		BudgetMax:            j.BudgetMax,
		Languages:            j.Languages,
		Status:               string(j.Status),
		Stage:                string(j.Stage),
		ConfirmStartsAt:      j.ConfirmStartsAt,
		ConfirmEndsAt:        j.ConfirmEndsAt,
		SelectedFreelancerID: j.SelectedFreelancerID,
		LockedAt:             j.LockedAt,
		CreatedAt:            j.CreatedAt,
	}
}

// Create posts a job request and synchronously notifies the eligible
// candidates, so the response already carries the window end.
func (h *JobHandler) Create(ctx *gin.Context) {
	var req createJobRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.jobUsecase.CreateJob(ctx.Request.Context(), usecase.CreateJobInput{
		ClientID:      ctx.GetString("userID"),
		City:          req.City,
		ChildrenCount: req.ChildrenCount,
		AgeGroup:      req.AgeGroup,
		Requirements: domain.Requirements{
			FirstAid:     req.FirstAid,
			NewbornCare:  req.NewbornCare,
			SpecialNeeds: req.SpecialNeeds,
		},
		BudgetMin:            req.BudgetMin,
		BudgetMax:            req.BudgetMax,
		Languages:            req.Languages,
		ConfirmWindowSeconds: req.ConfirmWindowSeconds,
	})
	if err != nil {
		respondError(ctx, h.logger, "create job", err)
		return
	}

	ctx.JSON(http.StatusCreated, createJobResponse{
		JobID:         result.Job.ID,
		ConfirmEndsAt: result.Job.ConfirmEndsAt,
	})
}

func (h *JobHandler) GetByID(ctx *gin.Context) {
	job, err := h.jobUsecase.GetJob(ctx.Request.Context(), ctx.Param("id"), ctx.GetString("userID"))
	if err != nil {
		respondError(ctx, h.logger, "get job", err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"job": toJobResponse(job)})
}

func (h *JobHandler) List(ctx *gin.Context) {
	limit := 0
	if raw := ctx.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		limit = n
	}

	result, err := h.jobUsecase.ListJobs(ctx.Request.Context(), usecase.ListJobsInput{
		ClientID: ctx.GetString("userID"),
		Status:   ctx.Query("status"),
		Cursor:   ctx.Query("cursor"),
		Limit:    limit,
	})
	if err != nil {
		respondError(ctx, h.logger, "list jobs", err)
		return
	}

	jobs := make([]jobResponse, 0, len(result.Jobs))
	for _, j := range result.Jobs {
		jobs = append(jobs, toJobResponse(j))
	}
	ctx.JSON(http.StatusOK, gin.H{"jobs": jobs, "next_cursor": result.NextCursor})
}

type selectRequest struct {
	FreelancerID string `json:"freelancer_id" binding:"required"`
}

// Select locks the job to one confirmed freelancer. Exactly one caller
// can win; later selects get a 400.
func (h *JobHandler) Select(ctx *gin.Context) {
	var req selectRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	conversationID, err := h.jobUsecase.Select(ctx.Request.Context(),
		ctx.Param("id"), ctx.GetString("userID"), req.FreelancerID)
	if err != nil {
		respondError(ctx, h.logger, "select freelancer", err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"conversation_id": conversationID})
}

func (h *JobHandler) Restart(ctx *gin.Context) {
	result, err := h.jobUsecase.Restart(ctx.Request.Context(), ctx.Param("id"), ctx.GetString("userID"))
	if err != nil {
		respondError(ctx, h.logger, "restart job", err)
		return
	}

	ctx.JSON(http.StatusOK, restartJobResponse{
		JobID:             result.Job.ID,
		ConfirmEndsAt:     result.Job.ConfirmEndsAt,
		NotificationsSent: result.NotificationsSent,
	})
}

type conversationResponse struct {
	ID           string    `json:"id"`
	JobID        string    `json:"job_id"`
	ClientID     string    `json:"client_id"`
	FreelancerID string    `json:"freelancer_id"`
	CreatedAt    time.Time `json:"created_at"`
}

func (h *JobHandler) GetConversation(ctx *gin.Context) {
	conv, err := h.jobUsecase.GetConversation(ctx.Request.Context(), ctx.Param("id"), ctx.GetString("userID"))
	if err != nil {
		respondError(ctx, h.logger, "get conversation", err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"conversation": conversationResponse{
		ID:           conv.ID,
		JobID:        conv.JobID,
		ClientID:     conv.ClientID,
		FreelancerID: conv.FreelancerID,
		CreatedAt:    conv.CreatedAt,
	}})
}
