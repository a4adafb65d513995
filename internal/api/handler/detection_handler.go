package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/sonbm-itealvn/smart-parking-api/internal/domain"
	"github.com/sonbm-itealvn/smart-parking-api/internal/repository"
	"github.com/sonbm-itealvn/smart-parking-api/internal/service"
)

// DetectionHandler nhận webhook từ detector: sự kiện biển số vào/ra và
// kết quả quét toàn cảnh để đối soát occupancy.
type DetectionHandler struct {
	detectionService *service.DetectionService
	occupancyService *service.OccupancyService
}

func NewDetectionHandler(ds *service.DetectionService, os *service.OccupancyService) *DetectionHandler {
	return &DetectionHandler{
		detectionService: ds,
		occupancyService: os,
	}
}

// POST /detections
func (h *DetectionHandler) HandleDetection(c *gin.Context) {
	var dto domain.VehicleDetectionDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	entryResult, exitResult, err := h.detectionService.HandleDetection(c.Request.Context(), dto)
	if err != nil {
		respondDetectionError(c, err)
		return
	}
	if entryResult != nil {
		c.JSON(http.StatusCreated, entryResult)
		return
	}
	c.JSON(http.StatusOK, exitResult)
}

// POST /parking-lots/:id/reconcile
func (h *DetectionHandler) ReconcileOccupancy(c *gin.Context) {
	lotID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID bãi đỗ không hợp lệ"})
		return
	}

	var dto domain.ReconcileDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.occupancyService.Reconcile(c.Request.Context(), lotID, dto.Vehicles)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Lỗi đối soát trạng thái bãi đỗ", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}

func respondDetectionError(c *gin.Context, err error) {
	var dupErr *service.DuplicateActiveSessionError
	var slotErr *service.SlotUnavailableError

	switch {
	case errors.Is(err, service.ErrInvalidFlag), errors.Is(err, service.ErrMissingParkingLot):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.As(err, &dupErr):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "session_id": dupErr.SessionID})
	case errors.As(err, &slotErr):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "slot_id": slotErr.SlotID})
	case errors.Is(err, service.ErrNoSlotAvailable):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, repository.ErrNoActiveSession):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, repository.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Lỗi xử lý sự kiện detection", "details": err.Error()})
	}
}
