package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/sonbm-itealvn/smart-parking-api/internal/repository"
	"github.com/sonbm-itealvn/smart-parking-api/internal/service"
)

type UploadHandler struct {
	imageService *service.ImageService
}

func NewUploadHandler(is *service.ImageService) *UploadHandler {
	return &UploadHandler{imageService: is}
}

// POST /images
func (h *UploadHandler) UploadImage(c *gin.Context) {
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

	var uploadedBy *int
	if userID, ok := currentUserID(c); ok {
		uploadedBy = &userID
	}

	contentType := fileHeader.Header.Get("Content-Type")
	image, err := h.imageService.Upload(c.Request.Context(), fileHeader.Filename, fileHeader.Size, contentType, file, uploadedBy)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể upload ảnh", "details": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, image)
}

// GET /images
func (h *UploadHandler) ListImages(c *gin.Context) {
	images, err := h.imageService.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Lỗi khi lấy danh sách ảnh"})
		return
	}
	c.JSON(http.StatusOK, images)
}

// DELETE /images/:id
func (h *UploadHandler) DeleteImage(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID ảnh không hợp lệ"})
		return
	}

	if err := h.imageService.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Không tìm thấy ảnh để xóa"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể xóa ảnh", "details": err.Error()})
		return
	}
	c.JSON(http.StatusNoContent, nil)
}
