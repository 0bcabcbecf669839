package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func (s *BookingServer) GetAvailability(c *gin.Context) {
	log := s.log.With(slog.String("handler", "GetAvailability"))

	providerID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "provider id must be a UUID"})
		return
	}
	date, err := time.Parse("2006-01-02", c.Query("date"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date is required in YYYY-MM-DD form"})
		return
	}

	serviceID := uuid.Nil
	if raw := c.Query("service_id"); raw != "" {
		serviceID, err = uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "service_id must be a UUID"})
			return
		}
	}

	res, err := s.availability.QueryAvailability(c.Request.Context(), providerID, date, serviceID)
	if err != nil {
		s.respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, toAvailabilityResponse(providerID.String(), date, res))
}

func (s *BookingServer) GetStats(c *gin.Context) {
	log := s.log.With(slog.String("handler", "GetStats"))

	providerID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "provider id must be a UUID"})
		return
	}

	var windowStart, windowEnd *time.Time
	if raw := c.Query("from"); raw != "" {
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "from must be in YYYY-MM-DD form"})
			return
		}
		windowStart = &t
	}
	if raw := c.Query("to"); raw != "" {
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "to must be in YYYY-MM-DD form"})
			return
		}
		// Make "to" inclusive of the named day.
		end := t.Add(24 * time.Hour)
		windowEnd = &end
	}

	stats, err := s.svc.GetStats(c.Request.Context(), providerID, windowStart, windowEnd)
	if err != nil {
		s.respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, toStatsResponse(providerID.String(), stats))
}
