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

type VehicleHandler struct {
	vehicleService *service.VehicleService
}

func NewVehicleHandler(vs *service.VehicleService) *VehicleHandler {
	return &VehicleHandler{vehicleService: vs}
}

// POST /vehicles
func (h *VehicleHandler) RegisterVehicle(c *gin.Context) {
	var dto domain.VehicleDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	vehicle, err := h.vehicleService.RegisterVehicle(c.Request.Context(), dto)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateEntry) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể đăng ký xe", "details": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, vehicle)
}

// GET /vehicles/:id
func (h *VehicleHandler) GetVehicleByID(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID xe không hợp lệ"})
		return
	}

	vehicle, err := h.vehicleService.GetVehicleByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Không tìm thấy xe"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Lỗi khi lấy thông tin xe"})
		return
	}
	c.JSON(http.StatusOK, vehicle)
}

// GET /vehicles?licensePlate=...  hoặc  /vehicles?userId=...
func (h *VehicleHandler) FindVehicles(c *gin.Context) {
	if plate := c.Query("licensePlate"); plate != "" {
		vehicle, err := h.vehicleService.GetVehicleByLicensePlate(c.Request.Context(), plate)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Không tìm thấy xe với biển số này"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Lỗi khi tra cứu xe"})
			return
		}
		c.JSON(http.StatusOK, vehicle)
		return
	}

	userIDStr := c.Query("userId")
	if userIDStr == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cần tham số licensePlate hoặc userId"})
		return
	}
	userID, err := strconv.Atoi(userIDStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "userId không hợp lệ"})
		return
	}

	vehicles, err := h.vehicleService.GetVehiclesByUserID(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Lỗi khi lấy danh sách xe"})
		return
	}
	c.JSON(http.StatusOK, vehicles)
}

// PUT /vehicles/:id
func (h *VehicleHandler) UpdateVehicle(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID xe không hợp lệ"})
		return
	}

	var dto domain.VehicleDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	vehicle, err := h.vehicleService.UpdateVehicle(c.Request.Context(), id, dto)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Không tìm thấy xe để cập nhật"})
			return
		}
		if errors.Is(err, repository.ErrDuplicateEntry) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể cập nhật xe", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, vehicle)
}

// DELETE /vehicles/:id
func (h *VehicleHandler) DeleteVehicle(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID xe không hợp lệ"})
		return
	}

	if err := h.vehicleService.DeleteVehicle(c.Request.Context(), id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Không tìm thấy xe để xóa"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể xóa xe", "details": err.Error()})
		return
	}
	c.JSON(http.StatusNoContent, nil)
}
