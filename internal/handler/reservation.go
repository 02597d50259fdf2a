package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/hotel-reservation/internal/middleware"
	"github.com/iliyamo/hotel-reservation/internal/model"
	"github.com/iliyamo/hotel-reservation/internal/service"
)

// ReservationService is what the HTTP layer needs from the orchestrator.
type ReservationService interface {
	Create(ctx context.Context, in service.CreateInput) (*model.Reservation, error)
	FindAll(ctx context.Context) ([]model.Reservation, error)
	FindOne(ctx context.Context, id string) (*model.Reservation, error)
	FindOneEnriched(ctx context.Context, id string) (*model.EnrichedReservation, error)
	FindByHotelID(ctx context.Context, hotelID string) ([]model.EnrichedReservation, error)
	CheckReservationConflicts(ctx context.Context, roomID string, checkIn, checkOut time.Time) ([]model.Reservation, error)
	MarkAsPaid(ctx context.Context, id string) (*model.Reservation, error)
	UpdateStatus(ctx context.Context, id string, status model.Status) (*model.Reservation, error)
}

// ReservationHandler serves /v1 reservation routes.  Route-level role checks
// are done by middleware; handlers additionally restrict clients to their
// own reservations.
type ReservationHandler struct {
	svc ReservationService
	log *zap.Logger
}

// NewReservationHandler panics on a nil service; a nil log discards output.
func NewReservationHandler(svc ReservationService, log *zap.Logger) *ReservationHandler {
	if svc == nil {
		panic("nil service passed to NewReservationHandler")
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &ReservationHandler{svc: svc, log: log}
}

type createReservationRequest struct {
	UserID          string              `json:"userId"`
	HotelID         string              `json:"hotelId"`
	RoomID          string              `json:"roomId"`
	RoomNumber      string              `json:"roomNumber"`
	CheckInDate     string              `json:"checkInDate"`
	CheckOutDate    string              `json:"checkOutDate"`
	TotalPrice      float64             `json:"totalPrice"`
	Status          model.Status        `json:"status"`
	PaymentStatus   model.PaymentStatus `json:"paymentStatus"`
	SpecialRequests *string             `json:"specialRequests"`
}

// Create handles POST /v1/reservations.  Clients always book for
// themselves and get the default pending statuses; admins must name the
// guest in userId and may set the initial statuses.
func (h *ReservationHandler) Create(c echo.Context) error {
	var req createReservationRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	in := service.CreateInput{
		UserID:          req.UserID,
		HotelID:         req.HotelID,
		RoomID:          req.RoomID,
		RoomNumber:      req.RoomNumber,
		TotalPrice:      req.TotalPrice,
		Status:          req.Status,
		PaymentStatus:   req.PaymentStatus,
		SpecialRequests: req.SpecialRequests,
	}
	if middleware.Role(c) == middleware.RoleClient {
		in.UserID = middleware.UserID(c)
		in.Status = ""
		in.PaymentStatus = ""
	}

	var err error
	if in.CheckInDate, err = parseOptionalDate(req.CheckInDate); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid checkInDate"})
	}
	if in.CheckOutDate, err = parseOptionalDate(req.CheckOutDate); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid checkOutDate"})
	}

	res, err := h.svc.Create(c.Request().Context(), in)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusCreated, res)
}

// List handles GET /v1/reservations.
func (h *ReservationHandler) List(c echo.Context) error {
	list, err := h.svc.FindAll(c.Request().Context())
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, list)
}

// Get handles GET /v1/reservations/:id; ?enriched=true adds user and room
// snapshots.
func (h *ReservationHandler) Get(c echo.Context) error {
	ctx := c.Request().Context()
	id := c.Param("id")
	enriched, _ := strconv.ParseBool(c.QueryParam("enriched"))

	if enriched {
		res, err := h.svc.FindOneEnriched(ctx, id)
		if err != nil {
			return h.fail(c, err)
		}
		if !canAccess(c, &res.Reservation) {
			return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
		}
		return c.JSON(http.StatusOK, res)
	}

	res, err := h.svc.FindOne(ctx, id)
	if err != nil {
		return h.fail(c, err)
	}
	if !canAccess(c, res) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}
	return c.JSON(http.StatusOK, res)
}

// ListByHotel handles GET /v1/hotels/:hotelId/reservations.
func (h *ReservationHandler) ListByHotel(c echo.Context) error {
	list, err := h.svc.FindByHotelID(c.Request().Context(), c.Param("hotelId"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, list)
}

// Conflicts handles GET /v1/rooms/:roomId/conflicts?checkIn=&checkOut=.
func (h *ReservationHandler) Conflicts(c echo.Context) error {
	checkIn, err := parseDate(c.QueryParam("checkIn"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid or missing checkIn"})
	}
	checkOut, err := parseDate(c.QueryParam("checkOut"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid or missing checkOut"})
	}
	list, err := h.svc.CheckReservationConflicts(c.Request().Context(), c.Param("roomId"), checkIn, checkOut)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"available": len(list) == 0, "conflicts": visibleConflicts(c, list)})
}

// UpdateStatus handles PATCH /v1/reservations/:id/status with {"status": "..."}.
func (h *ReservationHandler) UpdateStatus(c echo.Context) error {
	var body struct {
		Status model.Status `json:"status"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.Status == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "status is required"})
	}
	res, err := h.svc.UpdateStatus(c.Request().Context(), c.Param("id"), body.Status)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

// Pay handles POST /v1/reservations/:id/pay.  It records a payment taken
// at the front desk, so the route is limited to hotel staff.
func (h *ReservationHandler) Pay(c echo.Context) error {
	res, err := h.svc.MarkAsPaid(c.Request().Context(), c.Param("id"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

// canAccess lets clients see only their own reservations.
func canAccess(c echo.Context, res *model.Reservation) bool {
	if middleware.Role(c) != middleware.RoleClient {
		return true
	}
	return res.UserID == middleware.UserID(c)
}

// stayWindow is the part of another guest's reservation a client may see.
type stayWindow struct {
	CheckInDate  time.Time `json:"checkInDate"`
	CheckOutDate time.Time `json:"checkOutDate"`
}

// visibleConflicts strips conflicting reservations down to their dates for
// clients; staff get the full records.
func visibleConflicts(c echo.Context, list []model.Reservation) any {
	if middleware.Role(c) != middleware.RoleClient {
		return list
	}
	out := make([]stayWindow, 0, len(list))
	for _, r := range list {
		out = append(out, stayWindow{CheckInDate: r.CheckInDate, CheckOutDate: r.CheckOutDate})
	}
	return out
}

// fail writes a service error as {"error": message} with the kind's status.
func (h *ReservationHandler) fail(c echo.Context, err error) error {
	var se *service.Error
	if !errors.As(err, &se) {
		h.log.Error("unclassified error", zap.String("path", c.Path()), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
	if se.Kind == service.KindInternal {
		h.log.Error("request failed", zap.String("path", c.Path()), zap.Error(err))
	}
	body := echo.Map{"error": se.Message}
	if se.Kind == service.KindConflict {
		body["conflicts"] = visibleConflicts(c, se.Conflicts)
	}
	return c.JSON(se.Kind.HTTPStatus(), body)
}

// parseDate accepts RFC 3339 timestamps or plain YYYY-MM-DD dates (UTC midnight).
func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	return time.Parse(time.DateOnly, s)
}

func parseOptionalDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := parseDate(s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
