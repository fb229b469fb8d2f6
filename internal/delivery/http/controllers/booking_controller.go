package controllers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	h "eventbooking/internal/delivery/http/helpers"
	"eventbooking/internal/delivery/http/middleware"
	"eventbooking/internal/domain"
)

// CreateBookingRequest is the request body for POST /api/bookings. Seats defaults to 1 when omitted.
type CreateBookingRequest struct {
	EventID string      `json:"event_id"`
	Seats   json.Number `json:"seats" swaggertype:"integer"`
}

// Validate implements Validator. The seat range is enforced by the booking service.
func (req *CreateBookingRequest) Validate() []string {
	var errs []string
	if req.EventID == "" {
		errs = append(errs, "event_id is required")
	} else if !h.ValidID(req.EventID) {
		errs = append(errs, "event_id is not a valid id")
	}
	if _, err := req.seatCount(); err != nil {
		errs = append(errs, "seats must be a whole number")
	}
	return errs
}

func (req *CreateBookingRequest) seatCount() (int, error) {
	if req.Seats == "" {
		return 1, nil
	}
	return strconv.Atoi(req.Seats.String())
}

// BookingSuccessResponse is the success response envelope for POST /api/bookings (201).
type BookingSuccessResponse struct {
	Data  *domain.Booking `json:"data"`
	Error *h.APIError     `json:"error"`
}

type BookingController struct {
	Logger  *slog.Logger
	Service domain.BookingService
}

func NewBookingController(logger *slog.Logger, svc domain.BookingService) *BookingController {
	return &BookingController{
		Logger:  logger,
		Service: svc,
	}
}

// Create godoc
// @Summary Book seats for an event
// @Description Admits the booking only if the requested seats fit the seats left; concurrent requests for the same event are serialized. On capacity_exceeded, error.details.seats_left carries the seats still available.
// @Tags bookings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body CreateBookingRequest true "Event id and seat count"
// @Success 201 {object} controllers.BookingSuccessResponse "data contains the booking"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: capacity_exceeded"
// @Failure 429 {object} helpers.APIResponse "error.code: too_many_requests"
// @Failure 503 {object} helpers.APIResponse "error.code: unavailable"
// @Router /api/bookings [post]
func (c *BookingController) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateBookingRequest
	if !h.DecodeAndValidate(w, r, &req) {
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "unauthorized")
		return
	}
	seats, _ := req.seatCount()
	booking, err := c.Service.Admit(r.Context(), req.EventID, userID, seats)
	if err != nil {
		h.WriteServiceError(w, r, c.Logger, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusCreated, booking)
}

// ListMine godoc
// @Summary List my bookings
// @Description The caller's bookings, newest first, each with its event.
// @Tags bookings
// @Produce json
// @Security BearerAuth
// @Success 200 {object} helpers.APIResponse "data contains the bookings"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Router /api/bookings/me [get]
func (c *BookingController) ListMine(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "unauthorized")
		return
	}
	bookings, err := c.Service.ListMine(r.Context(), userID)
	if err != nil {
		h.WriteServiceError(w, r, c.Logger, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, bookings)
}

// ListForEvent godoc
// @Summary List bookings for an event
// @Description Admin only. Bookings in admission order, each with the booking user (no credentials).
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} helpers.APIResponse "data contains the bookings"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Router /api/bookings/event/{eventID} [get]
func (c *BookingController) ListForEvent(w http.ResponseWriter, r *http.Request) {
	id, ok := eventIDParam(w, r)
	if !ok {
		return
	}
	bookings, err := c.Service.ListForEvent(r.Context(), id)
	if err != nil {
		h.WriteServiceError(w, r, c.Logger, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, bookings)
}
