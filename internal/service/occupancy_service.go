package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/sonbm-itealvn/smart-parking-api/internal/domain"
	"github.com/sonbm-itealvn/smart-parking-api/internal/geometry"
	"github.com/sonbm-itealvn/smart-parking-api/internal/repository"
)

const sourceCamera = "camera"

// Slot được coi là có xe khi phần giao của polygon xe với polygon slot
// chiếm quá một nửa diện tích slot
const occupiedOverlapRatio = 0.5

// OccupancyService đối soát trạng thái chỗ đỗ từ khung hình camera: khớp
// polygon các xe phát hiện được với polygon từng slot của bãi.
type OccupancyService struct {
	lotRepo     repository.ParkingLotRepository
	slotRepo    repository.ParkingSlotRepository
	sessionRepo repository.ParkingSessionRepository
	engine      geometry.Engine
	notifier    *NotificationService

	now func() time.Time
}

func NewOccupancyService(
	lotRepo repository.ParkingLotRepository,
	slotRepo repository.ParkingSlotRepository,
	sessionRepo repository.ParkingSessionRepository,
	engine geometry.Engine,
	notifier *NotificationService,
) *OccupancyService {
	return &OccupancyService{
		lotRepo:     lotRepo,
		slotRepo:    slotRepo,
		sessionRepo: sessionRepo,
		engine:      engine,
		notifier:    notifier,
		now:         time.Now,
	}
}

// Reconcile cập nhật trạng thái các slot của bãi theo danh sách xe camera
// phát hiện được. Slot không có polygon bị bỏ qua. Slot occupied nhưng còn
// phiên đỗ đang hoạt động không bao giờ bị trả về available, kể cả khi camera
// không thấy xe (xe có thể bị che khuất).
func (s *OccupancyService) Reconcile(ctx context.Context, lotID int, vehicles []domain.DetectedVehicle) (*domain.ReconcileResult, error) {
	if _, err := s.lotRepo.FindByID(ctx, lotID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: bãi đỗ xe với ID %d không tồn tại", repository.ErrNotFound, lotID)
		}
		return nil, fmt.Errorf("lỗi tra cứu bãi đỗ: %w", err)
	}

	slots, err := s.slotRepo.FindByLotID(ctx, lotID)
	if err != nil {
		return nil, fmt.Errorf("lỗi lấy danh sách chỗ đỗ của bãi %d: %w", lotID, err)
	}
	activeSlotIDs, err := s.sessionRepo.ActiveSlotIDsByLot(ctx, lotID)
	if err != nil {
		return nil, fmt.Errorf("lỗi lấy danh sách phiên đang hoạt động của bãi %d: %w", lotID, err)
	}

	result := &domain.ReconcileResult{
		LotID:            lotID,
		VehiclesDetected: len(vehicles),
	}

	for i := range slots {
		slot := &slots[i]
		if !slot.HasCoordinates() {
			result.SlotsSkipped++
			continue
		}
		result.SlotsChecked++

		slotArea, err := s.engine.Area(slot.Coordinates)
		if err != nil || slotArea <= 0 {
			log.Printf("Bỏ qua chỗ đỗ %d (%s): polygon không hợp lệ: %v", slot.ID, slot.SlotCode, err)
			result.SlotsChecked--
			result.SlotsSkipped++
			continue
		}

		occupied := s.hasVehicleOverlap(slot, slotArea, vehicles)

		switch {
		// Có xe đè lên thì mọi trạng thái khác occupied đều chuyển sang
		// occupied, kể cả out_of_service
		case occupied && slot.Status != domain.SlotOccupied:
			if err := s.updateAndBroadcast(ctx, slot, domain.SlotOccupied); err != nil {
				log.Printf("Lỗi cập nhật chỗ đỗ %d sang occupied: %v", slot.ID, err)
				continue
			}
			result.MarkedOccupied = append(result.MarkedOccupied, slot.ID)
		case !occupied && slot.Status == domain.SlotOccupied:
			// Còn phiên active thì không động vào, camera có thể bị che khuất
			if activeSlotIDs[slot.ID] {
				continue
			}
			if err := s.updateAndBroadcast(ctx, slot, domain.SlotAvailable); err != nil {
				log.Printf("Lỗi cập nhật chỗ đỗ %d sang available: %v", slot.ID, err)
				continue
			}
			result.MarkedAvailable = append(result.MarkedAvailable, slot.ID)
		}
	}

	return result, nil
}

func (s *OccupancyService) hasVehicleOverlap(slot *domain.ParkingSlot, slotArea float64, vehicles []domain.DetectedVehicle) bool {
	for _, vehicle := range vehicles {
		interArea, err := s.engine.IntersectionArea(slot.Coordinates, vehicle.Coordinates)
		if err != nil {
			log.Printf("Lỗi tính phần giao giữa chỗ đỗ %d và xe phát hiện: %v", slot.ID, err)
			continue
		}
		if interArea/slotArea > occupiedOverlapRatio {
			return true
		}
	}
	return false
}

func (s *OccupancyService) updateAndBroadcast(ctx context.Context, slot *domain.ParkingSlot, status domain.SlotStatus) error {
	if err := s.slotRepo.UpdateStatus(ctx, slot.ID, status, sourceCamera); err != nil {
		return err
	}
	slot.Status = status
	s.notifier.BroadcastSlotStatus(domain.SlotStatusEvent{
		Type:      "slot_status",
		LotID:     slot.LotID,
		SlotID:    slot.ID,
		SlotCode:  slot.SlotCode,
		Status:    status,
		Timestamp: s.now().UTC(),
	})
	return nil
}
