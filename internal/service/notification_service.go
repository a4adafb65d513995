package service

import (
	"context"
	"log"

	"github.com/sonbm-itealvn/smart-parking-api/internal/domain"
	"github.com/sonbm-itealvn/smart-parking-api/internal/repository"
)

// Broadcaster đẩy sự kiện real-time cho các client WebSocket đang theo dõi
type Broadcaster interface {
	BroadcastJSON(v interface{})
}

// NotificationService tạo thông báo trong DB và đẩy sự kiện qua WebSocket.
// Mọi thao tác đều best-effort: thất bại chỉ ghi log, không làm hỏng luồng
// check-in/check-out đang gọi.
type NotificationService struct {
	notificationRepo repository.NotificationRepository
	broadcaster      Broadcaster
}

func NewNotificationService(notificationRepo repository.NotificationRepository, broadcaster Broadcaster) *NotificationService {
	return &NotificationService{
		notificationRepo: notificationRepo,
		broadcaster:      broadcaster,
	}
}

// NotifyUser trả về true nếu thông báo đã được lưu thành công
func (s *NotificationService) NotifyUser(ctx context.Context, userID int, message string) bool {
	notification := &domain.Notification{
		UserID:  userID,
		Message: message,
	}
	if _, err := s.notificationRepo.Create(ctx, notification); err != nil {
		log.Printf("Lỗi tạo thông báo cho user %d: %v", userID, err)
		return false
	}
	return true
}

func (s *NotificationService) BroadcastSlotStatus(event domain.SlotStatusEvent) {
	if s.broadcaster == nil {
		return
	}
	s.broadcaster.BroadcastJSON(event)
}

func (s *NotificationService) GetByUserID(ctx context.Context, userID int) ([]domain.Notification, error) {
	return s.notificationRepo.FindByUserID(ctx, userID)
}

func (s *NotificationService) MarkRead(ctx context.Context, id int, userID int) error {
	return s.notificationRepo.MarkRead(ctx, id, userID)
}
