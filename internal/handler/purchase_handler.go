package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/prestiqx/ticket-ledger/internal/dto"
	"github.com/prestiqx/ticket-ledger/internal/service"
	"github.com/prestiqx/ticket-ledger/pkg/middleware"
	"github.com/prestiqx/ticket-ledger/pkg/response"
	"github.com/prestiqx/ticket-ledger/pkg/telemetry"
)

// PurchaseHandler handles ticket purchase HTTP requests
type PurchaseHandler struct {
	purchaseService service.PurchaseService
}

// NewPurchaseHandler creates a new purchase handler
func NewPurchaseHandler(purchaseService service.PurchaseService) *PurchaseHandler {
	return &PurchaseHandler{purchaseService: purchaseService}
}

// BuyTicket handles POST /tickets/buy. The buyer is the authenticated
// wallet; retries with the same nonce return the original ticket.
func (h *PurchaseHandler) BuyTicket(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.purchase.buy")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	buyer, ok := middleware.GetCallerAddress(c)
	if !ok {
		span.SetStatus(codes.Error, "unauthorized")
		response.Unauthorized(c, "authentication required")
		return
	}

	var req dto.BuyTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid request")
		response.BadRequest(c, err.Error())
		return
	}

	span.SetAttributes(
		attribute.String("buyer", buyer),
		attribute.Int64("event_id", req.EventID),
		attribute.String("tier_id", req.TierID),
	)

	result, err := h.purchaseService.BuyTicket(ctx, buyer, &req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetAttributes(attribute.String("ticket_id", result.ID))
	span.SetStatus(codes.Ok, "")
	response.Created(c, result)
}

// GetTicketsByOwner handles GET /tickets/owner/:address
func (h *PurchaseHandler) GetTicketsByOwner(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.purchase.tickets_by_owner")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	address := c.Param("address")
	span.SetAttributes(attribute.String("owner", address))

	result, err := h.purchaseService.GetTicketsByOwner(ctx, address)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetAttributes(attribute.Int("count", len(result)))
	span.SetStatus(codes.Ok, "")
	response.Success(c, result)
}

// GetTicketsByEvent handles GET /events/:id/tickets
func (h *PurchaseHandler) GetTicketsByEvent(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.purchase.tickets_by_event")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	eventID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || eventID <= 0 {
		span.SetStatus(codes.Error, "invalid event id")
		response.BadRequest(c, "event id must be a positive integer")
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	span.SetAttributes(attribute.Int64("event_id", eventID))

	result, err := h.purchaseService.GetTicketsByEvent(ctx, eventID, limit, offset)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetAttributes(attribute.Int("count", len(result.Tickets)))
	span.SetStatus(codes.Ok, "")
	response.Success(c, result)
}
