package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"gopkg.in/guregu/null.v4"

	"github.com/sonbm-itealvn/smart-parking-api/internal/domain"
	"github.com/sonbm-itealvn/smart-parking-api/internal/repository"
)

var ErrInvalidFlag = errors.New("flag không hợp lệ, chỉ chấp nhận 'entry' hoặc 'exit'")
var ErrMissingParkingLot = errors.New("thiếu parking_lot_id cho xe vào bãi")
var ErrNoSlotAvailable = errors.New("bãi đỗ đã hết chỗ trống")

// DuplicateActiveSessionError báo xe đã có phiên đỗ đang hoạt động
type DuplicateActiveSessionError struct {
	SessionID    int
	LicensePlate string
}

func (e *DuplicateActiveSessionError) Error() string {
	return fmt.Sprintf("xe '%s' đã có phiên đỗ đang hoạt động (phiên %d)", e.LicensePlate, e.SessionID)
}

// SlotUnavailableError báo slot do detector gợi ý không dùng được
type SlotUnavailableError struct {
	SlotID int
	Reason string
}

func (e *SlotUnavailableError) Error() string {
	return fmt.Sprintf("chỗ đỗ %d không dùng được: %s", e.SlotID, e.Reason)
}

const sourceDetection = "detection"

// DetectionService xử lý webhook nhận diện biển số: máy trạng thái vào/ra,
// phân bổ chỗ đỗ và tính phí khi xe ra.
type DetectionService struct {
	vehicleRepo  repository.VehicleRepository
	lotRepo      repository.ParkingLotRepository
	slotRepo     repository.ParkingSlotRepository
	sessionRepo  repository.ParkingSessionRepository
	eventLogRepo repository.DetectionEventLogRepository
	feeService   *FeeService
	notifier     *NotificationService

	now func() time.Time
}

func NewDetectionService(
	vehicleRepo repository.VehicleRepository,
	lotRepo repository.ParkingLotRepository,
	slotRepo repository.ParkingSlotRepository,
	sessionRepo repository.ParkingSessionRepository,
	eventLogRepo repository.DetectionEventLogRepository,
	feeService *FeeService,
	notifier *NotificationService,
) *DetectionService {
	return &DetectionService{
		vehicleRepo:  vehicleRepo,
		lotRepo:      lotRepo,
		slotRepo:     slotRepo,
		sessionRepo:  sessionRepo,
		eventLogRepo: eventLogRepo,
		feeService:   feeService,
		notifier:     notifier,
		now:          time.Now,
	}
}

// HandleDetection là entrypoint của webhook: định tuyến theo flag và ghi
// log sự kiện để tra soát, kể cả khi xử lý thất bại.
func (s *DetectionService) HandleDetection(ctx context.Context, dto domain.VehicleDetectionDTO) (*domain.EntryResult, *domain.ExitResult, error) {
	switch dto.Flag {
	case domain.FlagEntry:
		result, err := s.HandleEntry(ctx, dto)
		s.logEvent(ctx, dto, err)
		return result, nil, err
	case domain.FlagExit:
		result, err := s.HandleExit(ctx, dto)
		s.logEvent(ctx, dto, err)
		return nil, result, err
	default:
		err := fmt.Errorf("%w: '%s'", ErrInvalidFlag, dto.Flag)
		s.logEvent(ctx, dto, err)
		return nil, nil, err
	}
}

func (s *DetectionService) logEvent(ctx context.Context, dto domain.VehicleDetectionDTO, procErr error) {
	payload, _ := json.Marshal(dto)
	event := &domain.DetectionEventLog{
		ReceivedAt:      s.now().UTC(),
		LicensePlate:    dto.LicensePlate,
		Flag:            string(dto.Flag),
		Payload:         payload,
		ProcessedStatus: "processed",
	}
	if procErr != nil {
		event.ProcessedStatus = "error"
		event.ProcessingNotes = procErr.Error()
	}
	if err := s.eventLogRepo.Create(ctx, event); err != nil {
		log.Printf("Lỗi ghi log sự kiện detection cho biển số %s: %v", dto.LicensePlate, err)
	}
}

// resolveVehicle tra xe theo biển số. Xe chưa đăng ký (vãng lai) không phải
// lỗi: phiên sẽ chỉ lưu biển số, không bao giờ tự tạo user/vehicle.
func (s *DetectionService) resolveVehicle(ctx context.Context, plate string) (*domain.Vehicle, error) {
	vehicle, err := s.vehicleRepo.FindByLicensePlate(ctx, plate)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("lỗi tra cứu xe theo biển số: %w", err)
	}
	return vehicle, nil
}

// findActiveSession tìm phiên active: xe đã đăng ký theo vehicle_id, xe vãng
// lai theo biển số trên các phiên không gắn vehicle_id.
func (s *DetectionService) findActiveSession(ctx context.Context, vehicle *domain.Vehicle, plate string) (*domain.ParkingSession, error) {
	if vehicle != nil {
		return s.sessionRepo.FindActiveByVehicleID(ctx, vehicle.ID)
	}
	return s.sessionRepo.FindActiveByPlate(ctx, plate)
}

// allocateSlot chọn chỗ đỗ: ưu tiên slot do detector gợi ý (phải thuộc đúng
// bãi và còn trống), nếu không có gợi ý thì lấy slot trống có id nhỏ nhất.
func (s *DetectionService) allocateSlot(ctx context.Context, lotID int, suggestedSlotID *int) (*domain.ParkingSlot, error) {
	if suggestedSlotID != nil {
		slot, err := s.slotRepo.FindByID(ctx, *suggestedSlotID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, &SlotUnavailableError{SlotID: *suggestedSlotID, Reason: "không tồn tại"}
			}
			return nil, fmt.Errorf("lỗi tra cứu chỗ đỗ %d: %w", *suggestedSlotID, err)
		}
		if slot.LotID != lotID {
			return nil, &SlotUnavailableError{SlotID: slot.ID, Reason: fmt.Sprintf("thuộc bãi %d, không phải bãi %d", slot.LotID, lotID)}
		}
		if slot.Status != domain.SlotAvailable {
			return nil, &SlotUnavailableError{SlotID: slot.ID, Reason: fmt.Sprintf("đang ở trạng thái '%s'", slot.Status)}
		}
		return slot, nil
	}

	slot, err := s.slotRepo.FindFirstAvailableByLotID(ctx, lotID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNoSlotAvailable
		}
		return nil, fmt.Errorf("lỗi tìm chỗ đỗ trống trong bãi %d: %w", lotID, err)
	}
	return slot, nil
}

func (s *DetectionService) HandleEntry(ctx context.Context, dto domain.VehicleDetectionDTO) (*domain.EntryResult, error) {
	vehicle, err := s.resolveVehicle(ctx, dto.LicensePlate)
	if err != nil {
		return nil, err
	}

	// Chặn double check-in trước mọi kiểm tra khác: xe đang trong bãi thì
	// request vào lần nữa luôn bị từ chối, kể cả khi payload thiếu lot
	existing, err := s.findActiveSession(ctx, vehicle, dto.LicensePlate)
	if err != nil && !errors.Is(err, repository.ErrNoActiveSession) {
		return nil, fmt.Errorf("lỗi kiểm tra phiên đang hoạt động: %w", err)
	}
	if existing != nil {
		return nil, &DuplicateActiveSessionError{SessionID: existing.ID, LicensePlate: dto.LicensePlate}
	}

	if dto.LotID == nil {
		return nil, ErrMissingParkingLot
	}
	lot, err := s.lotRepo.FindByID(ctx, *dto.LotID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: bãi đỗ xe với ID %d không tồn tại", repository.ErrNotFound, *dto.LotID)
		}
		return nil, fmt.Errorf("lỗi tra cứu bãi đỗ: %w", err)
	}

	slot, err := s.allocateSlot(ctx, lot.ID, dto.SlotID)
	if err != nil {
		return nil, err
	}

	// Chiếm slot trước khi tạo phiên: nếu thua race thì không có phiên mồ côi
	if err := s.slotRepo.ClaimAvailable(ctx, slot.ID, sourceDetection); err != nil {
		if errors.Is(err, repository.ErrSlotNotAvailable) {
			return nil, &SlotUnavailableError{SlotID: slot.ID, Reason: "đã bị chiếm bởi xe khác"}
		}
		return nil, fmt.Errorf("lỗi chiếm chỗ đỗ %d: %w", slot.ID, err)
	}
	slot.Status = domain.SlotOccupied

	session := &domain.ParkingSession{
		LicensePlate: dto.LicensePlate,
		SlotID:       slot.ID,
		EntryTime:    s.now().UTC(),
		Status:       domain.SessionActive,
	}
	if vehicle != nil {
		session.VehicleID = null.IntFrom(int64(vehicle.ID))
	}
	createdSession, err := s.sessionRepo.Create(ctx, session)
	if err != nil {
		// Trả slot về trạng thái trống để không kẹt chỗ
		if releaseErr := s.slotRepo.UpdateStatus(ctx, slot.ID, domain.SlotAvailable, sourceDetection); releaseErr != nil {
			log.Printf("Lỗi trả lại chỗ đỗ %d sau khi tạo phiên thất bại: %v", slot.ID, releaseErr)
		}
		return nil, fmt.Errorf("lỗi tạo phiên đỗ xe: %w", err)
	}

	notified := false
	if vehicle != nil {
		msg := fmt.Sprintf("Xe %s đã vào bãi %s, chỗ đỗ %s lúc %s",
			dto.LicensePlate, lot.Name, slot.SlotCode, createdSession.EntryTime.Format(time.RFC3339))
		notified = s.notifier.NotifyUser(ctx, vehicle.UserID, msg)
	}
	s.notifier.BroadcastSlotStatus(domain.SlotStatusEvent{
		Type:         "slot_status",
		LotID:        lot.ID,
		SlotID:       slot.ID,
		SlotCode:     slot.SlotCode,
		Status:       domain.SlotOccupied,
		LicensePlate: dto.LicensePlate,
		SessionID:    createdSession.ID,
		Timestamp:    s.now().UTC(),
	})

	message := fmt.Sprintf("Xe %s vào bãi thành công, chỗ đỗ %s", dto.LicensePlate, slot.SlotCode)
	return &domain.EntryResult{
		Message:          message,
		IsRegistered:     vehicle != nil,
		LicensePlate:     dto.LicensePlate,
		Vehicle:          vehicle,
		ParkingSession:   createdSession,
		Slot:             slot,
		NotificationSent: notified,
	}, nil
}

func (s *DetectionService) HandleExit(ctx context.Context, dto domain.VehicleDetectionDTO) (*domain.ExitResult, error) {
	vehicle, err := s.resolveVehicle(ctx, dto.LicensePlate)
	if err != nil {
		return nil, err
	}

	session, err := s.findActiveSession(ctx, vehicle, dto.LicensePlate)
	if err != nil {
		if errors.Is(err, repository.ErrNoActiveSession) {
			return nil, fmt.Errorf("%w: biển số %s", repository.ErrNoActiveSession, dto.LicensePlate)
		}
		return nil, fmt.Errorf("lỗi tìm phiên đang hoạt động: %w", err)
	}

	slot, err := s.slotRepo.FindByID(ctx, session.SlotID)
	if err != nil {
		return nil, fmt.Errorf("lỗi tra cứu chỗ đỗ %d của phiên %d: %w", session.SlotID, session.ID, err)
	}
	lot, err := s.lotRepo.FindByID(ctx, slot.LotID)
	if err != nil {
		return nil, fmt.Errorf("lỗi tra cứu bãi đỗ %d: %w", slot.LotID, err)
	}

	exitTime := s.now().UTC()
	feeDetails, err := s.feeService.Calculate(session.EntryTime, exitTime, lot.PricePerHour)
	if err != nil {
		return nil, fmt.Errorf("lỗi tính phí cho phiên %d: %w", session.ID, err)
	}

	completedSession, err := s.sessionRepo.Complete(ctx, session.ID, exitTime, feeDetails.TotalFee)
	if err != nil {
		if errors.Is(err, repository.ErrNoActiveSession) {
			// Phiên đã bị đóng bởi request khác trong lúc xử lý
			return nil, fmt.Errorf("%w: phiên %d đã được đóng", repository.ErrNoActiveSession, session.ID)
		}
		return nil, fmt.Errorf("lỗi đóng phiên %d: %w", session.ID, err)
	}

	slotReleased := true
	if err := s.slotRepo.UpdateStatus(ctx, slot.ID, domain.SlotAvailable, sourceDetection); err != nil {
		log.Printf("Lỗi trả lại chỗ đỗ %d sau khi xe %s ra, thử lại: %v", slot.ID, dto.LicensePlate, err)
		if retryErr := s.slotRepo.UpdateStatus(ctx, slot.ID, domain.SlotAvailable, sourceDetection); retryErr != nil {
			// Phiên đã đóng và đã thu phí nên không rollback, chỉ báo cho
			// caller biết slot còn kẹt occupied
			log.Printf("Chỗ đỗ %d vẫn kẹt occupied sau khi thử lại: %v", slot.ID, retryErr)
			slotReleased = false
		}
	}

	notified := false
	if vehicle != nil {
		msg := fmt.Sprintf("Xe %s đã ra khỏi bãi %s. Thời gian đỗ %d giờ, phí %d VNĐ",
			dto.LicensePlate, lot.Name, feeDetails.DurationHours, feeDetails.TotalFee)
		notified = s.notifier.NotifyUser(ctx, vehicle.UserID, msg)
	}
	if slotReleased {
		s.notifier.BroadcastSlotStatus(domain.SlotStatusEvent{
			Type:         "slot_status",
			LotID:        lot.ID,
			SlotID:       slot.ID,
			SlotCode:     slot.SlotCode,
			Status:       domain.SlotAvailable,
			LicensePlate: dto.LicensePlate,
			SessionID:    completedSession.ID,
			Timestamp:    exitTime,
		})
	}

	message := fmt.Sprintf("Xe %s ra bãi thành công, phí %d VNĐ", dto.LicensePlate, feeDetails.TotalFee)
	if !slotReleased {
		message += fmt.Sprintf(". Cảnh báo: chỗ đỗ %s chưa được trả về trạng thái trống", slot.SlotCode)
	}
	return &domain.ExitResult{
		Message:          message,
		IsRegistered:     vehicle != nil,
		LicensePlate:     dto.LicensePlate,
		Vehicle:          vehicle,
		ParkingSession:   completedSession,
		FeeDetails:       feeDetails,
		NotificationSent: notified,
		SlotReleased:     slotReleased,
	}, nil
}
