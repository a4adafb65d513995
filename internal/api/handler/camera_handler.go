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

type CameraHandler struct {
	cameraService *service.CameraService
}

func NewCameraHandler(cs *service.CameraService) *CameraHandler {
	return &CameraHandler{cameraService: cs}
}

// POST /cameras
func (h *CameraHandler) CreateCamera(c *gin.Context) {
	var dto domain.CameraDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	camera, err := h.cameraService.CreateCamera(c.Request.Context(), dto)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể tạo camera", "details": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, camera)
}

// GET /cameras
func (h *CameraHandler) GetAllCameras(c *gin.Context) {
	cameras, err := h.cameraService.GetAllCameras(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Lỗi khi lấy danh sách camera"})
		return
	}
	c.JSON(http.StatusOK, cameras)
}

// GET /cameras/:id
func (h *CameraHandler) GetCameraByID(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID camera không hợp lệ"})
		return
	}

	camera, err := h.cameraService.GetCameraByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Không tìm thấy camera"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Lỗi khi lấy thông tin camera"})
		return
	}
	c.JSON(http.StatusOK, camera)
}

// PUT /cameras/:id
func (h *CameraHandler) UpdateCamera(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID camera không hợp lệ"})
		return
	}

	var dto domain.CameraDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	camera, err := h.cameraService.UpdateCamera(c.Request.Context(), id, dto)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Không tìm thấy camera để cập nhật"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể cập nhật camera", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, camera)
}

// DELETE /cameras/:id
func (h *CameraHandler) DeleteCamera(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID camera không hợp lệ"})
		return
	}

	if err := h.cameraService.DeleteCamera(c.Request.Context(), id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Không tìm thấy camera để xóa"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể xóa camera", "details": err.Error()})
		return
	}
	c.JSON(http.StatusNoContent, nil)
}

// POST /cameras/:id/process-vehicle
// Nhận ảnh cổng, đọc biển số và tự quyết định chiều vào/ra
func (h *CameraHandler) ProcessVehicleImage(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID camera không hợp lệ"})
		return
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Thiếu file ảnh trong form (field 'image')"})
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Không đọc được file ảnh", "details": err.Error()})
		return
	}
	defer file.Close()

	entryResult, exitResult, err := h.cameraService.ProcessVehicleImage(c.Request.Context(), id, fileHeader.Filename, file)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPlateNotDetected), errors.Is(err, service.ErrCameraNotBoundToLot):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		case errors.Is(err, repository.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		default:
			respondDetectionError(c, err)
		}
		return
	}
	if entryResult != nil {
		c.JSON(http.StatusCreated, entryResult)
		return
	}
	c.JSON(http.StatusOK, exitResult)
}

// POST /cameras/:id/annotate-image
// Trả về ảnh đã vẽ khung nhận diện từ detector
func (h *CameraHandler) AnnotateImage(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID camera không hợp lệ"})
		return
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Thiếu file ảnh trong form (field 'image')"})
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Không đọc được file ảnh", "details": err.Error()})
		return
	}
	defer file.Close()

	annotated, err := h.cameraService.AnnotateImage(c.Request.Context(), id, fileHeader.Filename, file)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Không tìm thấy camera"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Lỗi annotate ảnh", "details": err.Error()})
		return
	}
	c.Data(http.StatusOK, "image/jpeg", annotated)
}

// POST /cameras/:id/detect-parking-space
// Nhận ảnh toàn cảnh bãi và đối soát trạng thái các chỗ đỗ
func (h *CameraHandler) DetectParkingSpace(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID camera không hợp lệ"})
		return
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Thiếu file ảnh trong form (field 'image')"})
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Không đọc được file ảnh", "details": err.Error()})
		return
	}
	defer file.Close()

	result, err := h.cameraService.DetectParkingSpace(c.Request.Context(), id, fileHeader.Filename, file)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCameraNotBoundToLot):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		case errors.Is(err, repository.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Lỗi quét bãi đỗ", "details": err.Error()})
		}
		return
	}
	c.JSON(http.StatusOK, result)
}
