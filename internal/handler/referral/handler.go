package referral

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/walterreed/referral-api/internal/model"
	"github.com/walterreed/referral-api/internal/registry"
	apperrors "github.com/walterreed/referral-api/pkg/errors"
)

// AdjudicationService is the single entry point into the decision pipeline.
type AdjudicationService interface {
	Adjudicate(ctx context.Context, req *model.ReferralRequest) (*model.Decision, error)
}

type Handler struct {
	service AdjudicationService
}

func NewHandler(service AdjudicationService) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/referrals", h.SubmitReferral)
}

// SubmitReferral adjudicates one referral request and returns the decision.
// Approved referrals respond 201 with the booked appointment; every other
// outcome responds 200 with its reasons. Only a broken upstream contract
// escapes as an error.
func (h *Handler) SubmitReferral(c *gin.Context) {
	var req model.ReferralRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]gin.H, 0, len(verrs))
			for _, e := range verrs {
				fields = append(fields, gin.H{"field": e.Field(), "rule": e.Tag()})
			}
			c.JSON(http.StatusBadRequest, gin.H{"status": "error", "errors": fields})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": err.Error()})
		return
	}

	decision, err := h.service.Adjudicate(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, registry.ErrMalformedResponse) {
			_ = c.Error(apperrors.NewContractViolation("provider registry returned a malformed response", err))
		} else {
			_ = c.Error(apperrors.NewInternal(err))
		}
		c.Abort()
		return
	}

	status := http.StatusOK
	if decision.Outcome == model.OutcomeApproved {
		status = http.StatusCreated
	}
	c.JSON(status, gin.H{"status": "success", "data": decision})
}
