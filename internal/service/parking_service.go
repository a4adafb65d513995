package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sonbm-itealvn/smart-parking-api/internal/domain"
	"github.com/sonbm-itealvn/smart-parking-api/internal/repository"
)

// ParkingService quản lý CRUD bãi đỗ, chỗ đỗ và tra cứu phiên đỗ xe
type ParkingService struct {
	lotRepo     repository.ParkingLotRepository
	slotRepo    repository.ParkingSlotRepository
	sessionRepo repository.ParkingSessionRepository
	paymentRepo repository.PaymentRepository
}

func NewParkingService(
	lotRepo repository.ParkingLotRepository,
	slotRepo repository.ParkingSlotRepository,
	sessionRepo repository.ParkingSessionRepository,
	paymentRepo repository.PaymentRepository,
) *ParkingService {
	return &ParkingService{
		lotRepo:     lotRepo,
		slotRepo:    slotRepo,
		sessionRepo: sessionRepo,
		paymentRepo: paymentRepo,
	}
}

// --- ParkingLot ---

func (s *ParkingService) CreateParkingLot(ctx context.Context, dto domain.ParkingLotDTO) (*domain.ParkingLot, error) {
	lot := &domain.ParkingLot{
		Name:         dto.Name,
		Location:     dto.Location,
		TotalSlots:   dto.TotalSlots,
		PricePerHour: dto.PricePerHour,
	}
	return s.lotRepo.Create(ctx, lot)
}

func (s *ParkingService) GetParkingLotByID(ctx context.Context, id int) (*domain.ParkingLot, error) {
	return s.lotRepo.FindByID(ctx, id)
}

func (s *ParkingService) GetAllParkingLots(ctx context.Context) ([]domain.ParkingLot, error) {
	return s.lotRepo.FindAll(ctx)
}

func (s *ParkingService) UpdateParkingLot(ctx context.Context, id int, dto domain.ParkingLotDTO) (*domain.ParkingLot, error) {
	lot, err := s.lotRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	lot.Name = dto.Name
	lot.Location = dto.Location
	lot.TotalSlots = dto.TotalSlots
	lot.PricePerHour = dto.PricePerHour
	return s.lotRepo.Update(ctx, lot)
}

func (s *ParkingService) DeleteParkingLot(ctx context.Context, id int) error {
	// Ràng buộc khóa ngoại: phải xóa hết slot trước khi xóa bãi
	slots, err := s.slotRepo.FindByLotID(ctx, id)
	if err != nil {
		return fmt.Errorf("lỗi khi kiểm tra các chỗ đỗ của bãi %d: %w", id, err)
	}
	if len(slots) > 0 {
		return fmt.Errorf("không thể xóa bãi đỗ %d vì vẫn còn các chỗ đỗ liên kết", id)
	}
	return s.lotRepo.Delete(ctx, id)
}

// --- ParkingSlot ---

func (s *ParkingService) CreateParkingSlot(ctx context.Context, lotID int, dto domain.ParkingSlotDTO) (*domain.ParkingSlot, error) {
	lot, err := s.lotRepo.FindByID(ctx, lotID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("bãi đỗ xe với ID %d không tồn tại", lotID)
		}
		return nil, fmt.Errorf("lỗi khi kiểm tra bãi đỗ xe: %w", err)
	}

	if lot.TotalSlots > 0 {
		currentSlots, err := s.slotRepo.FindByLotID(ctx, lotID)
		if err != nil {
			return nil, fmt.Errorf("lỗi khi lấy số lượng chỗ đỗ hiện tại: %w", err)
		}
		if len(currentSlots) >= lot.TotalSlots {
			return nil, fmt.Errorf("số lượng chỗ đỗ đã đạt tối đa (%d) cho bãi xe này", lot.TotalSlots)
		}
	}

	status := domain.SlotAvailable
	if dto.Status != "" {
		status = domain.SlotStatus(dto.Status)
	}
	slot := &domain.ParkingSlot{
		LotID:       lotID,
		SlotCode:    dto.SlotCode,
		Status:      status,
		Coordinates: dto.Coordinates,
	}
	return s.slotRepo.Create(ctx, slot)
}

func (s *ParkingService) GetParkingSlotByID(ctx context.Context, id int) (*domain.ParkingSlot, error) {
	return s.slotRepo.FindByID(ctx, id)
}

func (s *ParkingService) GetParkingSlotsByLotID(ctx context.Context, lotID int) ([]domain.ParkingSlot, error) {
	return s.slotRepo.FindByLotID(ctx, lotID)
}

func (s *ParkingService) UpdateParkingSlot(ctx context.Context, id int, dto domain.ParkingSlotDTO) (*domain.ParkingSlot, error) {
	slot, err := s.slotRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	slot.SlotCode = dto.SlotCode
	if dto.Status != "" {
		slot.Status = domain.SlotStatus(dto.Status)
		slot.LastStatusUpdateSource = "manual"
	}
	if dto.Coordinates != nil {
		slot.Coordinates = dto.Coordinates
	}
	return s.slotRepo.Update(ctx, slot)
}

func (s *ParkingService) DeleteParkingSlot(ctx context.Context, id int) error {
	return s.slotRepo.Delete(ctx, id)
}

// --- ParkingSession ---

func (s *ParkingService) GetParkingSessionByID(ctx context.Context, id int) (*domain.ParkingSession, error) {
	session, err := s.sessionRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.attachRelations(ctx, session)
	return session, nil
}

func (s *ParkingService) FindParkingSessions(ctx context.Context, filter domain.ParkingSessionFilterDTO) ([]domain.ParkingSession, error) {
	return s.sessionRepo.Find(ctx, filter)
}

// CancelParkingSession hủy phiên active (thao tác admin) và trả lại chỗ đỗ
func (s *ParkingService) CancelParkingSession(ctx context.Context, id int) (*domain.ParkingSession, error) {
	session, err := s.sessionRepo.Cancel(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.slotRepo.UpdateStatus(ctx, session.SlotID, domain.SlotAvailable, "manual"); err != nil {
		return nil, fmt.Errorf("phiên %d đã hủy nhưng lỗi trả lại chỗ đỗ %d: %w", session.ID, session.SlotID, err)
	}
	return session, nil
}

func (s *ParkingService) attachRelations(ctx context.Context, session *domain.ParkingSession) {
	slot, err := s.slotRepo.FindByID(ctx, session.SlotID)
	if err != nil {
		return
	}
	session.ParkingSlot = slot
	if lot, err := s.lotRepo.FindByID(ctx, slot.LotID); err == nil {
		session.ParkingLot = lot
	}
}

// --- Payment ---

func (s *ParkingService) RecordPayment(ctx context.Context, dto domain.PaymentDTO) (*domain.Payment, error) {
	session, err := s.sessionRepo.FindByID(ctx, dto.ParkingSessionID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("phiên đỗ xe với ID %d không tồn tại", dto.ParkingSessionID)
		}
		return nil, fmt.Errorf("lỗi tra cứu phiên đỗ xe: %w", err)
	}
	if session.Status != domain.SessionCompleted {
		return nil, fmt.Errorf("chỉ ghi nhận thanh toán cho phiên đã hoàn tất, phiên %d đang ở trạng thái '%s'", session.ID, session.Status)
	}

	payment := &domain.Payment{
		ParkingSessionID: session.ID,
		Amount:           dto.Amount,
		PaymentMethod:    domain.PaymentMethod(dto.PaymentMethod),
		PaymentTime:      time.Now().UTC(),
		Status:           domain.PaymentSuccessful,
	}
	return s.paymentRepo.Create(ctx, payment)
}

func (s *ParkingService) GetPaymentsBySessionID(ctx context.Context, sessionID int) ([]domain.Payment, error) {
	return s.paymentRepo.FindBySessionID(ctx, sessionID)
}
