package controllers

import (
	"log/slog"
	"net/http"
	"time"

	h "eventbooking/internal/delivery/http/helpers"
	"eventbooking/internal/delivery/http/middleware"
	"eventbooking/internal/domain"
)

// CreateEventRequest is the request body for POST /api/events.
type CreateEventRequest struct {
	Title       string    `json:"title" validate:"required,notblank,max=200"`
	Date        time.Time `json:"date" validate:"required"`
	Location    string    `json:"location" validate:"required,notblank,max=200"`
	Capacity    *int      `json:"capacity" validate:"required,min=0"`
	Image       *string   `json:"image" validate:"omitempty,url"`
	IsPublished bool      `json:"is_published"`
}

// Validate implements Validator.
func (req *CreateEventRequest) Validate() []string {
	return h.ValidateStruct(req)
}

// UpdateEventRequest is the request body for PUT /api/events/{eventID}. All fields optional; omitted fields are unchanged.
type UpdateEventRequest struct {
	Title       *string    `json:"title" validate:"omitempty,max=200"`
	Date        *time.Time `json:"date"`
	Location    *string    `json:"location" validate:"omitempty,max=200"`
	Capacity    *int       `json:"capacity" validate:"omitempty,min=0"`
	Image       *string    `json:"image" validate:"omitempty,url"`
	IsPublished *bool      `json:"is_published"`
}

// Validate implements Validator.
func (req *UpdateEventRequest) Validate() []string {
	errs := h.ValidateStruct(req)
	if req.Date != nil && req.Date.IsZero() {
		errs = append(errs, "date cannot be empty")
	}
	return errs
}

// EventSuccessResponse is the success response envelope for a single event.
type EventSuccessResponse struct {
	Data  *domain.Event `json:"data"`
	Error *h.APIError   `json:"error"`
}

// ListEventsResponse is the data payload of GET /api/events.
type ListEventsResponse struct {
	Items      []*domain.Event  `json:"items"`
	Pagination h.PaginationMeta `json:"pagination"`
}

// AvailabilitySuccessResponse is the success response envelope for GET /api/events/{eventID}/availability.
type AvailabilitySuccessResponse struct {
	Data  *domain.Availability `json:"data"`
	Error *h.APIError          `json:"error"`
}

type EventController struct {
	Logger       *slog.Logger
	Service      domain.EventService
	Availability domain.AvailabilityCalculator
}

func NewEventController(logger *slog.Logger, svc domain.EventService, availability domain.AvailabilityCalculator) *EventController {
	return &EventController{
		Logger:       logger,
		Service:      svc,
		Availability: availability,
	}
}

// eventIDParam reads the eventID path value and answers 400 when it is not a UUID.
func eventIDParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := r.PathValue("eventID")
	if !h.ValidID(id) {
		h.WriteJSONError(w, http.StatusBadRequest, h.ErrCodeBadRequest, "invalid event id")
		return "", false
	}
	return id, true
}

// ListPublished godoc
// @Summary List published events
// @Description Published events sorted by date ascending. Paginated with page and page_size.
// @Tags events
// @Produce json
// @Param page query int false "Page number (default 1)"
// @Param page_size query int false "Page size (default 20, max 100)"
// @Success 200 {object} helpers.APIResponse "data contains items and pagination"
// @Failure 503 {object} helpers.APIResponse "error.code: unavailable"
// @Router /api/events [get]
func (c *EventController) ListPublished(w http.ResponseWriter, r *http.Request) {
	p := h.ParsePagination(r)
	events, total, err := c.Service.ListPublishedEvents(r.Context(), p)
	if err != nil {
		h.WriteServiceError(w, r, c.Logger, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, ListEventsResponse{
		Items:      events,
		Pagination: h.NewPaginationMeta(p.Page, p.PageSize, total),
	})
}

// ListAll godoc
// @Summary List all events
// @Description Every event, published or not, sorted by date ascending. Admin only.
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} helpers.APIResponse "data contains the events"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Router /api/admin/events [get]
func (c *EventController) ListAll(w http.ResponseWriter, r *http.Request) {
	events, err := c.Service.ListAllEvents(r.Context())
	if err != nil {
		h.WriteServiceError(w, r, c.Logger, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, events)
}

// Get godoc
// @Summary Get an event by ID
// @Description Returns the event. With includeAvailability=1 the response also carries total_booked, seats_left and sold_out.
// @Tags events
// @Produce json
// @Param eventID path string true "Event ID (UUID)"
// @Param includeAvailability query string false "Set to 1 to merge availability"
// @Success 200 {object} controllers.EventSuccessResponse "data contains the event"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /api/events/{eventID} [get]
func (c *EventController) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := eventIDParam(w, r)
	if !ok {
		return
	}
	if r.URL.Query().Get("includeAvailability") == "1" {
		ev, err := c.Service.GetEventWithAvailability(r.Context(), id)
		if err != nil {
			h.WriteServiceError(w, r, c.Logger, err)
			return
		}
		h.WriteJSONSuccess(w, http.StatusOK, ev)
		return
	}
	event, err := c.Service.GetEvent(r.Context(), id)
	if err != nil {
		h.WriteServiceError(w, r, c.Logger, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, event)
}

// GetAvailability godoc
// @Summary Get event availability
// @Description Current capacity, total booked seats, seats left and sold-out flag. Always computed from stored bookings.
// @Tags events
// @Produce json
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} controllers.AvailabilitySuccessResponse "data contains the availability"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 503 {object} helpers.APIResponse "error.code: unavailable"
// @Router /api/events/{eventID}/availability [get]
func (c *EventController) GetAvailability(w http.ResponseWriter, r *http.Request) {
	id, ok := eventIDParam(w, r)
	if !ok {
		return
	}
	a, err := c.Availability.Compute(r.Context(), id)
	if err != nil {
		h.WriteServiceError(w, r, c.Logger, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, a)
}

// Create godoc
// @Summary Create an event
// @Description Admin only. The caller becomes the event owner; slug and timestamps are server-generated.
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param event body CreateEventRequest true "Event data"
// @Success 201 {object} controllers.EventSuccessResponse "data contains the created event"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Router /api/events [post]
func (c *EventController) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateEventRequest
	if !h.DecodeAndValidate(w, r, &req) {
		return
	}
	ownerID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "unauthorized")
		return
	}
	now := time.Now().UTC()
	event := domain.NewEvent(req.Title, req.Location, req.Date.UTC(), *req.Capacity, req.Image, ownerID, now, now)
	event.IsPublished = req.IsPublished
	if err := c.Service.CreateEvent(r.Context(), event); err != nil {
		h.WriteServiceError(w, r, c.Logger, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusCreated, event)
}

// Update godoc
// @Summary Update an event
// @Description Admin only. Partial update; omitted fields are unchanged. Capacity may be lowered below the booked total, in which case availability reports 0 seats left.
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param body body UpdateEventRequest true "Fields to update (all optional)"
// @Success 200 {object} controllers.EventSuccessResponse "data contains the updated event"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /api/events/{eventID} [put]
func (c *EventController) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := eventIDParam(w, r)
	if !ok {
		return
	}
	var req UpdateEventRequest
	if !h.DecodeAndValidate(w, r, &req) {
		return
	}
	u := domain.EventUpdate{
		Title:       req.Title,
		Location:    req.Location,
		Capacity:    req.Capacity,
		Image:       req.Image,
		IsPublished: req.IsPublished,
	}
	if req.Date != nil {
		d := req.Date.UTC()
		u.Date = &d
	}
	event, err := c.Service.UpdateEvent(r.Context(), id, u)
	if err != nil {
		h.WriteServiceError(w, r, c.Logger, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, event)
}

// DeleteEventResponse is the data payload of DELETE /api/events/{eventID}.
type DeleteEventResponse struct {
	Deleted bool   `json:"deleted"`
	ID      string `json:"id"`
}

// Delete godoc
// @Summary Delete an event
// @Description Admin only. Refused with 409 while the event has bookings.
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} helpers.APIResponse "data contains deleted and id"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Router /api/events/{eventID} [delete]
func (c *EventController) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := eventIDParam(w, r)
	if !ok {
		return
	}
	if err := c.Service.DeleteEvent(r.Context(), id); err != nil {
		h.WriteServiceError(w, r, c.Logger, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, DeleteEventResponse{Deleted: true, ID: id})
}
