package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/sonbm-itealvn/smart-parking-api/internal/domain"
	"github.com/sonbm-itealvn/smart-parking-api/internal/repository"
)

// Các repository giả trong bộ nhớ, giữ đúng ngữ nghĩa CAS và điều kiện
// status của bản postgresql để test được các race trong service.

type fakeVehicleRepo struct {
	mu       sync.Mutex
	vehicles map[int]*domain.Vehicle
	nextID   int
}

func newFakeVehicleRepo() *fakeVehicleRepo {
	return &fakeVehicleRepo{vehicles: make(map[int]*domain.Vehicle), nextID: 1}
}

func (r *fakeVehicleRepo) Create(ctx context.Context, vehicle *domain.Vehicle) (*domain.Vehicle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	vehicle.ID = r.nextID
	r.nextID++
	copied := *vehicle
	r.vehicles[vehicle.ID] = &copied
	return vehicle, nil
}

func (r *fakeVehicleRepo) FindByID(ctx context.Context, id int) (*domain.Vehicle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if v, ok := r.vehicles[id]; ok {
		copied := *v
		return &copied, nil
	}
	return nil, repository.ErrNotFound
}

func (r *fakeVehicleRepo) FindByLicensePlate(ctx context.Context, plate string) (*domain.Vehicle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, v := range r.vehicles {
		if v.LicensePlate == plate {
			copied := *v
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeVehicleRepo) FindByUserID(ctx context.Context, userID int) ([]domain.Vehicle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.Vehicle
	for _, v := range r.vehicles {
		if v.UserID == userID {
			result = append(result, *v)
		}
	}
	return result, nil
}

func (r *fakeVehicleRepo) Update(ctx context.Context, vehicle *domain.Vehicle) (*domain.Vehicle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.vehicles[vehicle.ID]; !ok {
		return nil, repository.ErrNotFound
	}
	copied := *vehicle
	r.vehicles[vehicle.ID] = &copied
	return vehicle, nil
}

func (r *fakeVehicleRepo) Delete(ctx context.Context, id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.vehicles[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.vehicles, id)
	return nil
}

type fakeLotRepo struct {
	mu     sync.Mutex
	lots   map[int]*domain.ParkingLot
	nextID int
}

func newFakeLotRepo() *fakeLotRepo {
	return &fakeLotRepo{lots: make(map[int]*domain.ParkingLot), nextID: 1}
}

func (r *fakeLotRepo) Create(ctx context.Context, lot *domain.ParkingLot) (*domain.ParkingLot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	lot.ID = r.nextID
	r.nextID++
	copied := *lot
	r.lots[lot.ID] = &copied
	return lot, nil
}

func (r *fakeLotRepo) FindByID(ctx context.Context, id int) (*domain.ParkingLot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if l, ok := r.lots[id]; ok {
		copied := *l
		return &copied, nil
	}
	return nil, repository.ErrNotFound
}

func (r *fakeLotRepo) FindAll(ctx context.Context) ([]domain.ParkingLot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.ParkingLot
	for _, l := range r.lots {
		result = append(result, *l)
	}
	return result, nil
}

func (r *fakeLotRepo) Update(ctx context.Context, lot *domain.ParkingLot) (*domain.ParkingLot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.lots[lot.ID]; !ok {
		return nil, repository.ErrNotFound
	}
	copied := *lot
	r.lots[lot.ID] = &copied
	return lot, nil
}

func (r *fakeLotRepo) Delete(ctx context.Context, id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.lots[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.lots, id)
	return nil
}

type fakeSlotRepo struct {
	mu     sync.Mutex
	slots  map[int]*domain.ParkingSlot
	nextID int

	failUpdateStatus bool
}

func newFakeSlotRepo() *fakeSlotRepo {
	return &fakeSlotRepo{slots: make(map[int]*domain.ParkingSlot), nextID: 1}
}

func (r *fakeSlotRepo) Create(ctx context.Context, slot *domain.ParkingSlot) (*domain.ParkingSlot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	slot.ID = r.nextID
	r.nextID++
	copied := *slot
	r.slots[slot.ID] = &copied
	return slot, nil
}

func (r *fakeSlotRepo) FindByID(ctx context.Context, id int) (*domain.ParkingSlot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.slots[id]; ok {
		copied := *s
		return &copied, nil
	}
	return nil, repository.ErrNotFound
}

func (r *fakeSlotRepo) FindByLotID(ctx context.Context, lotID int) ([]domain.ParkingSlot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.ParkingSlot
	for _, s := range r.slots {
		if s.LotID == lotID {
			result = append(result, *s)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (r *fakeSlotRepo) FindFirstAvailableByLotID(ctx context.Context, lotID int) (*domain.ParkingSlot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var ids []int
	for id, s := range r.slots {
		if s.LotID == lotID && s.Status == domain.SlotAvailable {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return nil, repository.ErrNotFound
	}
	sort.Ints(ids)
	copied := *r.slots[ids[0]]
	return &copied, nil
}

func (r *fakeSlotRepo) Update(ctx context.Context, slot *domain.ParkingSlot) (*domain.ParkingSlot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.slots[slot.ID]; !ok {
		return nil, repository.ErrNotFound
	}
	copied := *slot
	r.slots[slot.ID] = &copied
	return slot, nil
}

func (r *fakeSlotRepo) UpdateStatus(ctx context.Context, id int, status domain.SlotStatus, source string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failUpdateStatus {
		return context.DeadlineExceeded
	}
	s, ok := r.slots[id]
	if !ok {
		return repository.ErrNotFound
	}
	s.Status = status
	s.LastStatusUpdateSource = source
	return nil
}

func (r *fakeSlotRepo) ClaimAvailable(ctx context.Context, id int, source string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.slots[id]
	if !ok || s.Status != domain.SlotAvailable {
		return repository.ErrSlotNotAvailable
	}
	s.Status = domain.SlotOccupied
	s.LastStatusUpdateSource = source
	return nil
}

func (r *fakeSlotRepo) Delete(ctx context.Context, id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.slots[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.slots, id)
	return nil
}

type fakeSessionRepo struct {
	mu       sync.Mutex
	sessions map[int]*domain.ParkingSession
	slots    *fakeSlotRepo
	nextID   int

	failCreate bool
}

func newFakeSessionRepo(slots *fakeSlotRepo) *fakeSessionRepo {
	return &fakeSessionRepo{sessions: make(map[int]*domain.ParkingSession), slots: slots, nextID: 1}
}

func (r *fakeSessionRepo) Create(ctx context.Context, session *domain.ParkingSession) (*domain.ParkingSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failCreate {
		return nil, context.DeadlineExceeded
	}
	session.ID = r.nextID
	r.nextID++
	copied := *session
	r.sessions[session.ID] = &copied
	return session, nil
}

func (r *fakeSessionRepo) FindByID(ctx context.Context, id int) (*domain.ParkingSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.sessions[id]; ok {
		copied := *s
		return &copied, nil
	}
	return nil, repository.ErrNotFound
}

func (r *fakeSessionRepo) FindActiveByVehicleID(ctx context.Context, vehicleID int) (*domain.ParkingSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.sessions {
		if s.Status == domain.SessionActive && s.VehicleID.Valid && int(s.VehicleID.Int64) == vehicleID {
			copied := *s
			return &copied, nil
		}
	}
	return nil, repository.ErrNoActiveSession
}

func (r *fakeSessionRepo) FindActiveByPlate(ctx context.Context, plate string) (*domain.ParkingSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.sessions {
		if s.Status == domain.SessionActive && !s.VehicleID.Valid && s.LicensePlate == plate {
			copied := *s
			return &copied, nil
		}
	}
	return nil, repository.ErrNoActiveSession
}

func (r *fakeSessionRepo) Complete(ctx context.Context, id int, exitTime time.Time, fee int64) (*domain.ParkingSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok || s.Status != domain.SessionActive {
		return nil, repository.ErrNoActiveSession
	}
	s.Status = domain.SessionCompleted
	s.ExitTime.SetValid(exitTime)
	s.Fee.SetValid(fee)
	copied := *s
	return &copied, nil
}

func (r *fakeSessionRepo) Cancel(ctx context.Context, id int) (*domain.ParkingSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok || s.Status != domain.SessionActive {
		return nil, repository.ErrNoActiveSession
	}
	s.Status = domain.SessionCancelled
	copied := *s
	return &copied, nil
}

func (r *fakeSessionRepo) ActiveSlotIDsByLot(ctx context.Context, lotID int) (map[int]bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := make(map[int]bool)
	for _, s := range r.sessions {
		if s.Status != domain.SessionActive {
			continue
		}
		slot, err := r.slots.FindByID(ctx, s.SlotID)
		if err != nil {
			continue
		}
		if slot.LotID == lotID {
			result[s.SlotID] = true
		}
	}
	return result, nil
}

func (r *fakeSessionRepo) Find(ctx context.Context, filter domain.ParkingSessionFilterDTO) ([]domain.ParkingSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.ParkingSession
	for _, s := range r.sessions {
		if filter.Status != nil && string(s.Status) != *filter.Status {
			continue
		}
		if filter.LicensePlate != nil && s.LicensePlate != *filter.LicensePlate {
			continue
		}
		result = append(result, *s)
	}
	return result, nil
}

type fakeNotificationRepo struct {
	mu            sync.Mutex
	notifications []domain.Notification
	nextID        int
}

func newFakeNotificationRepo() *fakeNotificationRepo {
	return &fakeNotificationRepo{nextID: 1}
}

func (r *fakeNotificationRepo) Create(ctx context.Context, notification *domain.Notification) (*domain.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	notification.ID = r.nextID
	r.nextID++
	r.notifications = append(r.notifications, *notification)
	return notification, nil
}

func (r *fakeNotificationRepo) FindByUserID(ctx context.Context, userID int) ([]domain.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.Notification
	for _, n := range r.notifications {
		if n.UserID == userID {
			result = append(result, n)
		}
	}
	return result, nil
}

func (r *fakeNotificationRepo) MarkRead(ctx context.Context, id int, userID int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.notifications {
		if r.notifications[i].ID == id && r.notifications[i].UserID == userID {
			r.notifications[i].IsRead = true
			return nil
		}
	}
	return repository.ErrNotFound
}

type fakeEventLogRepo struct {
	mu     sync.Mutex
	events []domain.DetectionEventLog
}

func (r *fakeEventLogRepo) Create(ctx context.Context, event *domain.DetectionEventLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	event.ID = int64(len(r.events) + 1)
	r.events = append(r.events, *event)
	return nil
}

type fakeBroadcaster struct {
	mu     sync.Mutex
	events []interface{}
}

func (b *fakeBroadcaster) BroadcastJSON(v interface{}) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, v)
}
