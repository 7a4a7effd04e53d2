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

// EventHandler handles event catalog HTTP requests
type EventHandler struct {
	registryService service.RegistryService
}

// NewEventHandler creates a new event handler
func NewEventHandler(registryService service.RegistryService) *EventHandler {
	return &EventHandler{registryService: registryService}
}

// CreateEvent handles POST /events
func (h *EventHandler) CreateEvent(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.event.create")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	caller, ok := middleware.GetCallerAddress(c)
	if !ok {
		span.SetStatus(codes.Error, "unauthorized")
		response.Unauthorized(c, "authentication required")
		return
	}

	var req dto.CreateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid request")
		response.BadRequest(c, err.Error())
		return
	}

	span.SetAttributes(
		attribute.String("caller", caller),
		attribute.String("name", req.Name),
	)

	result, err := h.registryService.CreateEvent(ctx, caller, &req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetAttributes(attribute.Int64("event_id", result.ID))
	span.SetStatus(codes.Ok, "")
	response.Created(c, result)
}

// AddTier handles POST /events/:id/tiers
func (h *EventHandler) AddTier(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.event.add_tier")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	caller, ok := middleware.GetCallerAddress(c)
	if !ok {
		span.SetStatus(codes.Error, "unauthorized")
		response.Unauthorized(c, "authentication required")
		return
	}

	eventID, ok := h.eventIDParam(c)
	if !ok {
		span.SetStatus(codes.Error, "invalid event id")
		return
	}

	var req dto.AddTierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid request")
		response.BadRequest(c, err.Error())
		return
	}

	span.SetAttributes(
		attribute.Int64("event_id", eventID),
		attribute.String("tier_name", req.Name),
	)

	result, err := h.registryService.AddTier(ctx, caller, eventID, &req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetStatus(codes.Ok, "")
	response.Created(c, result)
}

// PublishEvent handles POST /events/:id/publish
func (h *EventHandler) PublishEvent(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.event.publish")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	caller, ok := middleware.GetCallerAddress(c)
	if !ok {
		span.SetStatus(codes.Error, "unauthorized")
		response.Unauthorized(c, "authentication required")
		return
	}

	eventID, ok := h.eventIDParam(c)
	if !ok {
		span.SetStatus(codes.Error, "invalid event id")
		return
	}

	span.SetAttributes(attribute.Int64("event_id", eventID))

	result, err := h.registryService.PublishEvent(ctx, caller, eventID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetStatus(codes.Ok, "")
	response.Success(c, result)
}

// EndEvent handles POST /events/:id/end
func (h *EventHandler) EndEvent(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.event.end")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	caller, ok := middleware.GetCallerAddress(c)
	if !ok {
		span.SetStatus(codes.Error, "unauthorized")
		response.Unauthorized(c, "authentication required")
		return
	}

	eventID, ok := h.eventIDParam(c)
	if !ok {
		span.SetStatus(codes.Error, "invalid event id")
		return
	}

	span.SetAttributes(attribute.Int64("event_id", eventID))

	result, err := h.registryService.EndEvent(ctx, caller, eventID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetStatus(codes.Ok, "")
	response.Success(c, result)
}

// GetEvent handles GET /events/:id
func (h *EventHandler) GetEvent(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.event.get")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	eventID, ok := h.eventIDParam(c)
	if !ok {
		span.SetStatus(codes.Error, "invalid event id")
		return
	}

	span.SetAttributes(attribute.Int64("event_id", eventID))

	result, err := h.registryService.GetEvent(ctx, eventID)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetStatus(codes.Ok, "")
	response.Success(c, result)
}

// ListEvents handles GET /events
func (h *EventHandler) ListEvents(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.event.list")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	organizer := c.Query("organizer")
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	result, err := h.registryService.ListEvents(ctx, organizer, limit, offset)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetAttributes(attribute.Int("count", len(result.Events)))
	span.SetStatus(codes.Ok, "")
	response.Success(c, result)
}

// eventIDParam parses the :id path parameter, writing the error
// response itself on failure
func (h *EventHandler) eventIDParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.BadRequest(c, "event id must be a positive integer")
		return 0, false
	}
	return id, true
}
