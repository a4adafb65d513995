package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/sonbm-itealvn/smart-parking-api/internal/api/middleware"
	"github.com/sonbm-itealvn/smart-parking-api/internal/repository"
	"github.com/sonbm-itealvn/smart-parking-api/internal/service"
)

type NotificationHandler struct {
	notificationService *service.NotificationService
}

func NewNotificationHandler(ns *service.NotificationService) *NotificationHandler {
	return &NotificationHandler{notificationService: ns}
}

func currentUserID(c *gin.Context) (int, bool) {
	userIDVal, exists := c.Get(middleware.UserIDKey)
	if !exists {
		return 0, false
	}
	userIDStr, ok := userIDVal.(string)
	if !ok {
		return 0, false
	}
	userID, err := strconv.Atoi(userIDStr)
	if err != nil {
		return 0, false
	}
	return userID, true
}

// GET /notifications
func (h *NotificationHandler) GetMyNotifications(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Không xác định được người dùng"})
		return
	}

	notifications, err := h.notificationService.GetByUserID(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Lỗi khi lấy danh sách thông báo"})
		return
	}
	c.JSON(http.StatusOK, notifications)
}

// PUT /notifications/:id/read
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Không xác định được người dùng"})
		return
	}
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID thông báo không hợp lệ"})
		return
	}

	if err := h.notificationService.MarkRead(c.Request.Context(), id, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Không tìm thấy thông báo"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể đánh dấu đã đọc", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Đã đánh dấu đã đọc"})
}
