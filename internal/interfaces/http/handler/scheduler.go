package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gasflow/backend/internal/infrastructure/scheduler"
)

// SchedulerHandler exposes the arrival scheduler's manual controls
type SchedulerHandler struct {
	BaseHandler
	arrivalScheduler *scheduler.ArrivalScheduler
}

// NewSchedulerHandler creates a new SchedulerHandler
func NewSchedulerHandler(arrivalScheduler *scheduler.ArrivalScheduler) *SchedulerHandler {
	return &SchedulerHandler{arrivalScheduler: arrivalScheduler}
}

// RunArrivalsResponse carries the scheduler state after a manual trigger,
// with the summary of the scan it just ran.
type RunArrivalsResponse struct {
	scheduler.SchedulerStatus
	Scan *scheduler.ScanResult `json:"scan"`
}

// RunArrivals triggers an immediate arrival scan, outside the regular interval.
func (h *SchedulerHandler) RunArrivals(c *gin.Context) {
	result, err := h.arrivalScheduler.RunNow(c.Request.Context())
	if err != nil {
		if errors.Is(err, scheduler.ErrScanAlreadyInProgress) {
			h.Error(c, http.StatusConflict, "SCAN_IN_PROGRESS", "An arrival scan is already in progress")
			return
		}
		h.HandleError(c, err)
		return
	}

	h.Success(c, RunArrivalsResponse{
		SchedulerStatus: h.arrivalScheduler.Status(),
		Scan:            result,
	})
}

// Status reports whether the scheduler is running and when the next scan is due.
func (h *SchedulerHandler) Status(c *gin.Context) {
	h.Success(c, h.arrivalScheduler.Status())
}
