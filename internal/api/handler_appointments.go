package api

import (
	"bytes"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"clinic-logistics-backend/internal/schedule"
)

type createAppointmentRequest struct {
	RequesterID string `json:"requester_id"`
	ResourceID  string `json:"resource_id"`
	StartTime   string `json:"start_time"`
	Notes       string `json:"notes"`
	PickupTime  string `json:"pickup_time"`
}

// PostAppointment handles POST /api/appointments. Field validation lives in
// the engine so its error taxonomy is the single source of truth.
func (h *Handler) PostAppointment(c *gin.Context) {
	var req createAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	appt, err := h.engine.Create(c.Request.Context(), schedule.CreateParams{
		RequesterID: req.RequesterID,
		ResourceID:  req.ResourceID,
		StartTime:   req.StartTime,
		Notes:       req.Notes,
		PickupTime:  req.PickupTime,
	})
	if err != nil {
		abortBookingError(c, err)
		return
	}
	c.JSON(http.StatusCreated, appt)
}

// GetAppointments handles GET /api/appointments with optional filters.
func (h *Handler) GetAppointments(c *gin.Context) {
	appts, err := h.engine.List(c.Request.Context(), schedule.ListParams{
		StartFrom:   c.Query("start_from"),
		StartTo:     c.Query("start_to"),
		RequesterID: c.Query("requester_id"),
		ResourceID:  c.Query("resource_id"),
		Status:      c.Query("status"),
	})
	if err != nil {
		abortBookingError(c, err)
		return
	}
	c.JSON(http.StatusOK, appts)
}

// GetAppointment handles GET /api/appointments/:id.
func (h *Handler) GetAppointment(c *gin.Context) {
	appt, err := h.store.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		abortBookingError(c, err)
		return
	}
	c.JSON(http.StatusOK, appt)
}

type updateAppointmentRequest struct {
	StartTime  *string `json:"start_time"`
	ResourceID *string `json:"resource_id"`
	Status     *string `json:"status"`
	Notes      *string `json:"notes"`
	// absent = leave unchanged, null = clear, value = set
	PickupTime json.RawMessage `json:"pickup_time"`
}

// PatchAppointment handles PATCH /api/appointments/:id.
func (h *Handler) PatchAppointment(c *gin.Context) {
	var req updateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	params := schedule.UpdateParams{
		StartTime:  req.StartTime,
		ResourceID: req.ResourceID,
		Status:     req.Status,
		Notes:      req.Notes,
	}
	if len(req.PickupTime) > 0 {
		params.PickupTime.Set = true
		if !bytes.Equal(req.PickupTime, []byte("null")) {
			var v string
			if err := json.Unmarshal(req.PickupTime, &v); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "pickup_time must be a string or null"})
				return
			}
			params.PickupTime.Value = &v
		}
	}

	appt, err := h.engine.Update(c.Request.Context(), c.Param("id"), params)
	if err != nil {
		abortBookingError(c, err)
		return
	}
	c.JSON(http.StatusOK, appt)
}

// CancelAppointment handles POST /api/appointments/:id/cancel.
func (h *Handler) CancelAppointment(c *gin.Context) {
	appt, err := h.engine.Cancel(c.Request.Context(), c.Param("id"))
	if err != nil {
		abortBookingError(c, err)
		return
	}
	c.JSON(http.StatusOK, appt)
}
