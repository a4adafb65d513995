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

type ParkingSlotHandler struct {
	parkingService *service.ParkingService
}

func NewParkingSlotHandler(ps *service.ParkingService) *ParkingSlotHandler {
	return &ParkingSlotHandler{parkingService: ps}
}

// POST /parking-lots/:id/slots
func (h *ParkingSlotHandler) CreateParkingSlot(c *gin.Context) {
	lotID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID bãi đỗ không hợp lệ"})
		return
	}

	var dto domain.ParkingSlotDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	slot, err := h.parkingService.CreateParkingSlot(c.Request.Context(), lotID, dto)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateEntry) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể tạo chỗ đỗ", "details": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, slot)
}

// GET /parking-lots/:id/slots
func (h *ParkingSlotHandler) GetSlotsByLotID(c *gin.Context) {
	lotID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID bãi đỗ không hợp lệ"})
		return
	}

	slots, err := h.parkingService.GetParkingSlotsByLotID(c.Request.Context(), lotID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Lỗi khi lấy danh sách chỗ đỗ"})
		return
	}
	c.JSON(http.StatusOK, slots)
}

// GET /parking-slots/:slot_id
func (h *ParkingSlotHandler) GetParkingSlotByID(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("slot_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID chỗ đỗ không hợp lệ"})
		return
	}

	slot, err := h.parkingService.GetParkingSlotByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Không tìm thấy chỗ đỗ"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Lỗi khi lấy thông tin chỗ đỗ"})
		return
	}
	c.JSON(http.StatusOK, slot)
}

// PUT /parking-slots/:slot_id
func (h *ParkingSlotHandler) UpdateParkingSlot(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("slot_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID chỗ đỗ không hợp lệ"})
		return
	}

	var dto domain.ParkingSlotDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	slot, err := h.parkingService.UpdateParkingSlot(c.Request.Context(), id, dto)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Không tìm thấy chỗ đỗ để cập nhật"})
			return
		}
		if errors.Is(err, repository.ErrDuplicateEntry) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể cập nhật chỗ đỗ", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, slot)
}

// DELETE /parking-slots/:slot_id
func (h *ParkingSlotHandler) DeleteParkingSlot(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("slot_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID chỗ đỗ không hợp lệ"})
		return
	}

	if err := h.parkingService.DeleteParkingSlot(c.Request.Context(), id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Không tìm thấy chỗ đỗ để xóa"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể xóa chỗ đỗ", "details": err.Error()})
		return
	}
	c.JSON(http.StatusNoContent, nil)
}
