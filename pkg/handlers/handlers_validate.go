package handlers

import (
	"errors"
	"net/http"

	"github.com/arnavshah/trip-roster-api/pkg/ledger"
	"github.com/arnavshah/trip-roster-api/pkg/models"
	"github.com/arnavshah/trip-roster-api/pkg/roster"
	"github.com/arnavshah/trip-roster-api/pkg/service"
	"github.com/arnavshah/trip-roster-api/pkg/store"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// FieldError is one failed binding rule
type FieldError struct {
	Field string `json:"field"`
	Rule  string `json:"rule"`
}

// bindJSON decodes and validates the body, writing a 400 on failure
func bindJSON(c *gin.Context, obj any) bool {
	err := c.ShouldBindJSON(obj)
	if err == nil {
		return true
	}

	var details any = err.Error()
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make([]FieldError, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, FieldError{Field: fe.Field(), Rule: fe.Tag()})
		}
		details = fields
	}
	c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body", Details: details})
	return false
}

// respondError maps a service error to a status code and error body
func (h *Handler) respondError(c *gin.Context, fallback string, err error) {
	var (
		rerr *roster.RuleError
		aerr *service.ApprovalError
		uerr *store.UpstreamError
	)
	switch {
	case errors.As(err, &rerr):
		status := http.StatusBadRequest
		if errors.Is(err, roster.ErrParticipantNotFound) {
			status = http.StatusNotFound
		}
		resp := models.ErrorResponse{Error: rerr.Message}
		if rerr.Details != "" {
			resp.Details = rerr.Details
		}
		c.JSON(status, resp)

	case errors.Is(err, ledger.ErrNoPendingProposal):
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "No pending randomization found",
			Details: "Please randomize the roster first, or your proposal has expired",
		})

	case errors.Is(err, ledger.ErrProposalMismatch):
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "Approval data does not match randomization",
			Details: "The roster/waitlist assignment does not match what was randomized. Please randomize again.",
		})

	case errors.As(err, &aerr):
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error: "Roster approval partially applied",
			Details: gin.H{
				"updated":  aerr.Updated,
				"failures": aerr.Failures,
				"missing":  aerr.Missing,
			},
		})

	case errors.As(err, &uerr):
		h.logger().Error(fallback, zap.Error(err), zap.Int("upstream_status", uerr.StatusCode))
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: uerr.Error()})

	default:
		h.logger().Error(fallback, zap.Error(err))
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: fallback})
	}
}
