package service

import (
	"context"
	"testing"

	"gopkg.in/guregu/null.v4"

	"github.com/sonbm-itealvn/smart-parking-api/internal/domain"
	"github.com/sonbm-itealvn/smart-parking-api/internal/geometry"
)

func slotPolygon(x1, y1, x2, y2 float64) domain.PolygonCoordinates {
	return domain.PolygonCoordinates{{
		{x1, y1}, {x2, y1}, {x2, y2}, {x1, y2}, {x1, y1},
	}}
}

type occupancyTestEnv struct {
	lots     *fakeLotRepo
	slots    *fakeSlotRepo
	sessions *fakeSessionRepo
	svc      *OccupancyService
	lotID    int
}

func newOccupancyTestEnv(t *testing.T) *occupancyTestEnv {
	t.Helper()
	env := &occupancyTestEnv{
		lots:  newFakeLotRepo(),
		slots: newFakeSlotRepo(),
	}
	env.sessions = newFakeSessionRepo(env.slots)

	lot, err := env.lots.Create(context.Background(), &domain.ParkingLot{Name: "Bãi A", PricePerHour: 30000})
	if err != nil {
		t.Fatalf("lỗi tạo bãi đỗ cho test: %v", err)
	}
	env.lotID = lot.ID

	notifier := NewNotificationService(newFakeNotificationRepo(), &fakeBroadcaster{})
	env.svc = NewOccupancyService(env.lots, env.slots, env.sessions, geometry.NewEngine(), notifier)
	return env
}

func (env *occupancyTestEnv) addSlot(t *testing.T, code string, status domain.SlotStatus, coords domain.PolygonCoordinates) *domain.ParkingSlot {
	t.Helper()
	slot, err := env.slots.Create(context.Background(), &domain.ParkingSlot{
		LotID:       env.lotID,
		SlotCode:    code,
		Status:      status,
		Coordinates: coords,
	})
	if err != nil {
		t.Fatalf("lỗi tạo chỗ đỗ cho test: %v", err)
	}
	return slot
}

func TestReconcileMarksOccupied(t *testing.T) {
	env := newOccupancyTestEnv(t)
	ctx := context.Background()
	slot := env.addSlot(t, "A1", domain.SlotAvailable, slotPolygon(0, 0, 100, 100))

	// Xe phủ 60% diện tích slot
	vehicles := []domain.DetectedVehicle{{Coordinates: slotPolygon(0, 0, 60, 100)}}
	result, err := env.svc.Reconcile(ctx, env.lotID, vehicles)
	if err != nil {
		t.Fatalf("Reconcile() trả về lỗi: %v", err)
	}
	if len(result.MarkedOccupied) != 1 || result.MarkedOccupied[0] != slot.ID {
		t.Errorf("MarkedOccupied = %v, muốn [%d]", result.MarkedOccupied, slot.ID)
	}
	updated, _ := env.slots.FindByID(ctx, slot.ID)
	if updated.Status != domain.SlotOccupied {
		t.Errorf("trạng thái slot = %s, muốn occupied", updated.Status)
	}
	if updated.LastStatusUpdateSource != "camera" {
		t.Errorf("nguồn cập nhật = %q, muốn camera", updated.LastStatusUpdateSource)
	}
}

func TestReconcileExactHalfOverlapDoesNotFlip(t *testing.T) {
	env := newOccupancyTestEnv(t)
	ctx := context.Background()
	slot := env.addSlot(t, "A1", domain.SlotAvailable, slotPolygon(0, 0, 100, 100))

	// Đúng 50%: ngưỡng là lớn hơn một nửa, không phải bằng
	vehicles := []domain.DetectedVehicle{{Coordinates: slotPolygon(0, 0, 50, 100)}}
	result, err := env.svc.Reconcile(ctx, env.lotID, vehicles)
	if err != nil {
		t.Fatalf("Reconcile() trả về lỗi: %v", err)
	}
	if len(result.MarkedOccupied) != 0 {
		t.Errorf("chồng lấn đúng 50%% không được đánh dấu occupied, MarkedOccupied = %v", result.MarkedOccupied)
	}
	updated, _ := env.slots.FindByID(ctx, slot.ID)
	if updated.Status != domain.SlotAvailable {
		t.Errorf("trạng thái slot = %s, muốn available", updated.Status)
	}
}

func TestReconcileJustOverHalfFlips(t *testing.T) {
	env := newOccupancyTestEnv(t)
	ctx := context.Background()
	env.addSlot(t, "A1", domain.SlotAvailable, slotPolygon(0, 0, 100, 100))

	vehicles := []domain.DetectedVehicle{{Coordinates: slotPolygon(0, 0, 50.001, 100)}}
	result, err := env.svc.Reconcile(ctx, env.lotID, vehicles)
	if err != nil {
		t.Fatalf("Reconcile() trả về lỗi: %v", err)
	}
	if len(result.MarkedOccupied) != 1 {
		t.Errorf("chồng lấn trên 50%% phải được đánh dấu occupied, MarkedOccupied = %v", result.MarkedOccupied)
	}
}

func TestReconcileMarksOutOfServiceSlotOccupied(t *testing.T) {
	env := newOccupancyTestEnv(t)
	ctx := context.Background()
	slot := env.addSlot(t, "A1", domain.SlotOutOfService, slotPolygon(0, 0, 100, 100))

	// Xe phủ 100% slot: có xe thật đang đỗ thì trạng thái phải phản ánh
	// thực tế, kể cả khi slot đang out_of_service
	vehicles := []domain.DetectedVehicle{{Coordinates: slotPolygon(0, 0, 100, 100)}}
	result, err := env.svc.Reconcile(ctx, env.lotID, vehicles)
	if err != nil {
		t.Fatalf("Reconcile() trả về lỗi: %v", err)
	}
	if len(result.MarkedOccupied) != 1 || result.MarkedOccupied[0] != slot.ID {
		t.Errorf("MarkedOccupied = %v, muốn [%d]", result.MarkedOccupied, slot.ID)
	}
	updated, _ := env.slots.FindByID(ctx, slot.ID)
	if updated.Status != domain.SlotOccupied {
		t.Errorf("slot out_of_service có xe phủ kín phải chuyển sang occupied, đang là %s", updated.Status)
	}
}

func TestReconcileResetsVacatedSlot(t *testing.T) {
	env := newOccupancyTestEnv(t)
	ctx := context.Background()
	slot := env.addSlot(t, "A1", domain.SlotOccupied, slotPolygon(0, 0, 100, 100))

	// Không xe nào trong khung hình và không còn phiên active
	result, err := env.svc.Reconcile(ctx, env.lotID, nil)
	if err != nil {
		t.Fatalf("Reconcile() trả về lỗi: %v", err)
	}
	if len(result.MarkedAvailable) != 1 || result.MarkedAvailable[0] != slot.ID {
		t.Errorf("MarkedAvailable = %v, muốn [%d]", result.MarkedAvailable, slot.ID)
	}
	updated, _ := env.slots.FindByID(ctx, slot.ID)
	if updated.Status != domain.SlotAvailable {
		t.Errorf("trạng thái slot = %s, muốn available", updated.Status)
	}
}

func TestReconcileProtectsActiveSession(t *testing.T) {
	env := newOccupancyTestEnv(t)
	ctx := context.Background()
	slot := env.addSlot(t, "A1", domain.SlotOccupied, slotPolygon(0, 0, 100, 100))
	env.sessions.Create(ctx, &domain.ParkingSession{
		VehicleID:    null.IntFrom(1),
		LicensePlate: "51K-123.45",
		SlotID:       slot.ID,
		Status:       domain.SessionActive,
	})

	// Camera không thấy xe nhưng phiên vẫn active: không được reset
	result, err := env.svc.Reconcile(ctx, env.lotID, nil)
	if err != nil {
		t.Fatalf("Reconcile() trả về lỗi: %v", err)
	}
	if len(result.MarkedAvailable) != 0 {
		t.Errorf("slot còn phiên active không được trả về available, MarkedAvailable = %v", result.MarkedAvailable)
	}
	updated, _ := env.slots.FindByID(ctx, slot.ID)
	if updated.Status != domain.SlotOccupied {
		t.Errorf("trạng thái slot = %s, muốn occupied", updated.Status)
	}
}

func TestReconcileSkipsSlotsWithoutCoordinates(t *testing.T) {
	env := newOccupancyTestEnv(t)
	ctx := context.Background()
	env.addSlot(t, "A1", domain.SlotAvailable, nil)
	env.addSlot(t, "A2", domain.SlotAvailable, slotPolygon(0, 0, 100, 100))

	vehicles := []domain.DetectedVehicle{{Coordinates: slotPolygon(0, 0, 100, 100)}}
	result, err := env.svc.Reconcile(ctx, env.lotID, vehicles)
	if err != nil {
		t.Fatalf("Reconcile() trả về lỗi: %v", err)
	}
	if result.SlotsSkipped != 1 {
		t.Errorf("SlotsSkipped = %d, muốn 1", result.SlotsSkipped)
	}
	if result.SlotsChecked != 1 {
		t.Errorf("SlotsChecked = %d, muốn 1", result.SlotsChecked)
	}
	if len(result.MarkedOccupied) != 1 {
		t.Errorf("MarkedOccupied = %v, muốn 1 slot", result.MarkedOccupied)
	}
}

func TestReconcileSkipsBrokenVehiclePolygon(t *testing.T) {
	env := newOccupancyTestEnv(t)
	ctx := context.Background()
	slot := env.addSlot(t, "A1", domain.SlotAvailable, slotPolygon(0, 0, 100, 100))

	// Polygon xe hỏng bị bỏ qua, xe hợp lệ vẫn được khớp
	vehicles := []domain.DetectedVehicle{
		{Coordinates: domain.PolygonCoordinates{{{0, 0}, {1, 1}}}},
		{Coordinates: slotPolygon(0, 0, 80, 100)},
	}
	result, err := env.svc.Reconcile(ctx, env.lotID, vehicles)
	if err != nil {
		t.Fatalf("Reconcile() trả về lỗi: %v", err)
	}
	if len(result.MarkedOccupied) != 1 || result.MarkedOccupied[0] != slot.ID {
		t.Errorf("MarkedOccupied = %v, muốn [%d]", result.MarkedOccupied, slot.ID)
	}
}

func TestReconcileUnknownLot(t *testing.T) {
	env := newOccupancyTestEnv(t)
	if _, err := env.svc.Reconcile(context.Background(), 999, nil); err == nil {
		t.Error("Reconcile() với bãi không tồn tại phải trả về lỗi")
	}
}
