package repository

import (
	"context"
	"errors"
	"time"

	"github.com/sonbm-itealvn/smart-parking-api/internal/domain"
)

var ErrNotFound = errors.New("không tìm thấy bản ghi")
var ErrDuplicateEntry = errors.New("bản ghi đã tồn tại")
var ErrNoActiveSession = errors.New("không tìm thấy phiên đỗ xe đang hoạt động cho thông tin cung cấp")
var ErrSlotNotAvailable = errors.New("chỗ đỗ không còn trống")

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	FindByID(ctx context.Context, id int) (*domain.User, error)
	FindAll(ctx context.Context) ([]domain.User, error)
}

type RefreshTokenRepository interface {
	Create(ctx context.Context, token *domain.RefreshToken) (*domain.RefreshToken, error)
	FindByToken(ctx context.Context, token string) (*domain.RefreshToken, error)
	Delete(ctx context.Context, token string) error
	DeleteExpired(ctx context.Context) (int64, error)
}

type VehicleRepository interface {
	Create(ctx context.Context, vehicle *domain.Vehicle) (*domain.Vehicle, error)
	FindByID(ctx context.Context, id int) (*domain.Vehicle, error)
	FindByLicensePlate(ctx context.Context, plate string) (*domain.Vehicle, error)
	FindByUserID(ctx context.Context, userID int) ([]domain.Vehicle, error)
	Update(ctx context.Context, vehicle *domain.Vehicle) (*domain.Vehicle, error)
	Delete(ctx context.Context, id int) error
}

type ParkingLotRepository interface {
	Create(ctx context.Context, lot *domain.ParkingLot) (*domain.ParkingLot, error)
	FindByID(ctx context.Context, id int) (*domain.ParkingLot, error)
	FindAll(ctx context.Context) ([]domain.ParkingLot, error)
	Update(ctx context.Context, lot *domain.ParkingLot) (*domain.ParkingLot, error)
	Delete(ctx context.Context, id int) error
}

type ParkingSlotRepository interface {
	Create(ctx context.Context, slot *domain.ParkingSlot) (*domain.ParkingSlot, error)
	FindByID(ctx context.Context, id int) (*domain.ParkingSlot, error)
	FindByLotID(ctx context.Context, lotID int) ([]domain.ParkingSlot, error)
	// FindFirstAvailableByLotID trả về slot trống có id nhỏ nhất trong bãi
	// (thứ tự xác định để phân bổ nhất quán)
	FindFirstAvailableByLotID(ctx context.Context, lotID int) (*domain.ParkingSlot, error)
	Update(ctx context.Context, slot *domain.ParkingSlot) (*domain.ParkingSlot, error)
	UpdateStatus(ctx context.Context, id int, status domain.SlotStatus, source string) error
	// ClaimAvailable chuyển available -> occupied theo kiểu compare-and-swap:
	// UPDATE ... WHERE id = $1 AND status = 'available'. Trả về
	// ErrSlotNotAvailable nếu không còn trống (thua race hoặc đã bị chiếm).
	ClaimAvailable(ctx context.Context, id int, source string) error
	Delete(ctx context.Context, id int) error
}

type ParkingSessionRepository interface {
	Create(ctx context.Context, session *domain.ParkingSession) (*domain.ParkingSession, error)
	FindByID(ctx context.Context, id int) (*domain.ParkingSession, error)
	// FindActiveByVehicleID tìm phiên active của xe đã đăng ký
	FindActiveByVehicleID(ctx context.Context, vehicleID int) (*domain.ParkingSession, error)
	// FindActiveByPlate tìm phiên active của xe vãng lai (vehicle_id IS NULL)
	FindActiveByPlate(ctx context.Context, plate string) (*domain.ParkingSession, error)
	// Complete set exit_time + fee + status = completed trong một UPDATE duy nhất,
	// chỉ khi phiên còn active; trả về ErrNoActiveSession nếu 0 rows affected.
	Complete(ctx context.Context, id int, exitTime time.Time, fee int64) (*domain.ParkingSession, error)
	Cancel(ctx context.Context, id int) (*domain.ParkingSession, error)
	// ActiveSlotIDsByLot trả về id các slot đang có phiên active trong bãi,
	// dùng để bảo vệ khi đối soát occupancy từ camera.
	ActiveSlotIDsByLot(ctx context.Context, lotID int) (map[int]bool, error)
	Find(ctx context.Context, filter domain.ParkingSessionFilterDTO) ([]domain.ParkingSession, error)
}

type PaymentRepository interface {
	Create(ctx context.Context, payment *domain.Payment) (*domain.Payment, error)
	FindByID(ctx context.Context, id int) (*domain.Payment, error)
	FindBySessionID(ctx context.Context, sessionID int) ([]domain.Payment, error)
}

type NotificationRepository interface {
	Create(ctx context.Context, notification *domain.Notification) (*domain.Notification, error)
	FindByUserID(ctx context.Context, userID int) ([]domain.Notification, error)
	MarkRead(ctx context.Context, id int, userID int) error
}

type CameraRepository interface {
	Create(ctx context.Context, camera *domain.Camera) (*domain.Camera, error)
	FindByID(ctx context.Context, id int) (*domain.Camera, error)
	FindAll(ctx context.Context) ([]domain.Camera, error)
	Update(ctx context.Context, camera *domain.Camera) (*domain.Camera, error)
	Delete(ctx context.Context, id int) error
}

type DetectionEventLogRepository interface {
	Create(ctx context.Context, event *domain.DetectionEventLog) error
}

type UploadedImageRepository interface {
	Create(ctx context.Context, image *domain.UploadedImage) (*domain.UploadedImage, error)
	FindAll(ctx context.Context) ([]domain.UploadedImage, error)
	Delete(ctx context.Context, id int) (*domain.UploadedImage, error)
}
