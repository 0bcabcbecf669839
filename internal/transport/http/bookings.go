package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"reservio/backend/internal/domain"
	"reservio/backend/internal/service/scheduling"
	"reservio/backend/internal/store"
)

func (s *BookingServer) respondError(c *gin.Context, log *slog.Logger, err error) {
	switch {
	case errors.Is(err, store.ErrConflict):
		log.Info("booking conflict", slog.Any("err", err))
		c.JSON(http.StatusConflict, gin.H{"error": "That time is no longer available. Pick a different slot."})
	case errors.Is(err, store.ErrIdempotencyConflict):
		log.Info("idempotency conflict", slog.Any("err", err))
		c.JSON(http.StatusConflict, gin.H{"error": "This request key was already used for a different booking. Try again."})
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	default:
		var vErr *scheduling.ValidationError
		var tErr *domain.InvalidTransitionError
		if errors.As(err, &vErr) {
			log.Warn("invalid request", slog.Any("err", err))
			c.JSON(http.StatusBadRequest, gin.H{"error": vErr.Error()})
			return
		}
		if errors.As(err, &tErr) {
			log.Warn("invalid transition", slog.Any("err", err))
			c.JSON(http.StatusBadRequest, gin.H{"error": tErr.Error()})
			return
		}
		log.Error("request failed", slog.Any("err", err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func (s *BookingServer) CreateBooking(c *gin.Context) {
	log := s.log.With(slog.String("handler", "CreateBooking"))

	var req createBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("invalid request body", slog.Any("err", err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	providerID, err := uuid.Parse(req.ProviderID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "provider_id must be a UUID"})
		return
	}
	serviceID, err := uuid.Parse(req.ServiceID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "service_id must be a UUID"})
		return
	}

	booking, err := s.svc.CreateBooking(c.Request.Context(), scheduling.CreateBookingInput{
		ProviderID:     providerID,
		ServiceID:      serviceID,
		CustomerUserID: req.CustomerUserID,
		GuestName:      req.GuestName,
		GuestPhone:     req.GuestPhone,
		GuestEmail:     req.GuestEmail,
		StartTime:      req.StartTime,
		EndTime:        req.EndTime,
		Price:          req.Price,
		Currency:       req.Currency,
		CustomerNotes:  req.CustomerNotes,
		IdempotencyKey: idempotencyKey(c),
	})
	if err != nil {
		s.respondError(c, log, err)
		return
	}

	log.Info(
		"booking created",
		slog.String("booking_id", booking.ID.String()),
		slog.String("provider_id", booking.ProviderID.String()),
		slog.Time("start_time", booking.StartTime),
		slog.Time("end_time", booking.EndTime),
	)
	s.invalidateAvailability(c.Request.Context(), booking)
	c.JSON(http.StatusCreated, toBookingResponse(booking))
}

func (s *BookingServer) GetBooking(c *gin.Context) {
	log := s.log.With(slog.String("handler", "GetBooking"))

	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "booking id must be a UUID"})
		return
	}

	booking, err := s.svc.GetBooking(c.Request.Context(), bookingID)
	if err != nil {
		s.respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, toBookingResponse(booking))
}

func (s *BookingServer) ChangeStatus(c *gin.Context) {
	log := s.log.With(slog.String("handler", "ChangeStatus"))

	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "booking id must be a UUID"})
		return
	}
	var req changeStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("invalid request body", slog.Any("err", err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	booking, err := s.svc.ChangeStatus(c.Request.Context(), scheduling.ChangeStatusInput{
		BookingID: bookingID,
		NewStatus: domain.BookingStatus(req.Status),
		Notes:     req.Notes,
		Reason:    req.Reason,
	})
	if err != nil {
		s.respondError(c, log, err)
		return
	}

	log.Info(
		"booking status changed",
		slog.String("booking_id", booking.ID.String()),
		slog.String("status", string(booking.Status)),
	)
	s.invalidateAvailability(c.Request.Context(), booking)
	c.JSON(http.StatusOK, toBookingResponse(booking))
}

func (s *BookingServer) Reschedule(c *gin.Context) {
	log := s.log.With(slog.String("handler", "Reschedule"))

	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "booking id must be a UUID"})
		return
	}
	var req rescheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("invalid request body", slog.Any("err", err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	// The freed range also needs cache invalidation, so remember the
	// booking's times before the move.
	prev, prevErr := s.svc.GetBooking(c.Request.Context(), bookingID)

	booking, err := s.svc.Reschedule(c.Request.Context(), scheduling.RescheduleInput{
		BookingID: bookingID,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Reason:    req.Reason,
	})
	if err != nil {
		s.respondError(c, log, err)
		return
	}

	log.Info(
		"booking rescheduled",
		slog.String("booking_id", booking.ID.String()),
		slog.Time("start_time", booking.StartTime),
		slog.Time("end_time", booking.EndTime),
	)
	if prevErr == nil {
		s.invalidateAvailability(c.Request.Context(), prev)
	}
	s.invalidateAvailability(c.Request.Context(), booking)
	c.JSON(http.StatusOK, toBookingResponse(booking))
}

// idempotencyKey reads the create-request key from either of the
// header spellings clients use.
func idempotencyKey(c *gin.Context) string {
	if key := c.GetHeader("Idempotency-Key"); key != "" {
		return key
	}
	return c.GetHeader("X-Idempotency-Key")
}
