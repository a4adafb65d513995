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

type ParkingSessionHandler struct {
	parkingService *service.ParkingService
}

func NewParkingSessionHandler(ps *service.ParkingService) *ParkingSessionHandler {
	return &ParkingSessionHandler{parkingService: ps}
}

// GET /parking-sessions?lotId=&status=&licensePlate=
func (h *ParkingSessionHandler) FindParkingSessions(c *gin.Context) {
	var filter domain.ParkingSessionFilterDTO
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sessions, err := h.parkingService.FindParkingSessions(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Lỗi khi tìm phiên đỗ xe", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, sessions)
}

// GET /parking-sessions/:id
func (h *ParkingSessionHandler) GetParkingSessionByID(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID phiên đỗ xe không hợp lệ"})
		return
	}

	session, err := h.parkingService.GetParkingSessionByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Không tìm thấy phiên đỗ xe"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Lỗi khi lấy thông tin phiên đỗ xe"})
		return
	}
	c.JSON(http.StatusOK, session)
}

// POST /parking-sessions/:id/cancel
func (h *ParkingSessionHandler) CancelParkingSession(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID phiên đỗ xe không hợp lệ"})
		return
	}

	session, err := h.parkingService.CancelParkingSession(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNoActiveSession) {
			c.JSON(http.StatusConflict, gin.H{"error": "Phiên không còn ở trạng thái active để hủy"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể hủy phiên đỗ xe", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, session)
}

// GET /parking-sessions/:id/payments
func (h *ParkingSessionHandler) GetPaymentsBySessionID(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID phiên đỗ xe không hợp lệ"})
		return
	}

	payments, err := h.parkingService.GetPaymentsBySessionID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Lỗi khi lấy danh sách thanh toán"})
		return
	}
	c.JSON(http.StatusOK, payments)
}

// POST /payments
func (h *ParkingSessionHandler) RecordPayment(c *gin.Context) {
	var dto domain.PaymentDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	payment, err := h.parkingService.RecordPayment(c.Request.Context(), dto)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Không thể ghi nhận thanh toán", "details": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, payment)
}
