package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/prestiqx/ticket-ledger/internal/domain"
	"github.com/prestiqx/ticket-ledger/pkg/response"
)

// handleError maps domain errors to HTTP responses. Specific sentinels
// get their own codes so clients can branch without parsing messages.
func handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrSoldOut):
		response.Conflict(c, "SOLD_OUT", err.Error())

	case errors.Is(err, domain.ErrWrongPayment):
		response.Error(c, http.StatusPaymentRequired, "WRONG_PAYMENT", err.Error(), "")
	case errors.Is(err, domain.ErrPaymentFailed):
		response.PaymentRequired(c, err.Error())

	case errors.Is(err, domain.ErrEventAlreadyPublished):
		response.Conflict(c, "ALREADY_PUBLISHED", err.Error())
	case errors.Is(err, domain.ErrEventEnded):
		response.Conflict(c, "EVENT_ENDED", err.Error())
	case errors.Is(err, domain.ErrEventNotDraft):
		response.Conflict(c, "NOT_DRAFT", err.Error())
	case errors.Is(err, domain.ErrEventNotPublished):
		response.Conflict(c, "NOT_PUBLISHED", err.Error())
	case errors.Is(err, domain.ErrNoTiers):
		response.Conflict(c, "NO_TIERS", err.Error())

	case domain.IsAuthorizationError(err):
		response.Forbidden(c, err.Error())

	case domain.IsNotFoundError(err):
		response.NotFound(c, err.Error())

	case domain.IsValidationError(err):
		response.BadRequest(c, err.Error())

	default:
		response.InternalError(c, err)
	}
}
