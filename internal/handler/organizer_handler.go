package handler

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/prestiqx/ticket-ledger/internal/dto"
	"github.com/prestiqx/ticket-ledger/internal/service"
	"github.com/prestiqx/ticket-ledger/pkg/middleware"
	"github.com/prestiqx/ticket-ledger/pkg/response"
	"github.com/prestiqx/ticket-ledger/pkg/telemetry"
)

// OrganizerHandler handles organizer authorization HTTP requests
type OrganizerHandler struct {
	organizerService service.OrganizerService
}

// NewOrganizerHandler creates a new organizer handler
func NewOrganizerHandler(organizerService service.OrganizerService) *OrganizerHandler {
	return &OrganizerHandler{organizerService: organizerService}
}

// Authorize handles POST /organizers/authorize. Admin only; the role
// check runs in middleware before this handler.
func (h *OrganizerHandler) Authorize(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.organizer.authorize")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	admin, ok := middleware.GetCallerAddress(c)
	if !ok {
		span.SetStatus(codes.Error, "unauthorized")
		response.Unauthorized(c, "authentication required")
		return
	}

	var req dto.AuthorizeOrganizerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid request")
		response.BadRequest(c, err.Error())
		return
	}

	span.SetAttributes(
		attribute.String("admin", admin),
		attribute.String("address", req.Address),
	)

	result, err := h.organizerService.Authorize(ctx, admin, &req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetStatus(codes.Ok, "")
	response.Created(c, result)
}

// GetOrganizer handles GET /organizers/:address
func (h *OrganizerHandler) GetOrganizer(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.organizer.get")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	address := c.Param("address")
	span.SetAttributes(attribute.String("address", address))

	result, err := h.organizerService.GetOrganizer(ctx, address)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetStatus(codes.Ok, "")
	response.Success(c, result)
}
