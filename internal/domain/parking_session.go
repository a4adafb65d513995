package domain

import (
	"time"

	"gopkg.in/guregu/null.v4"
)

type ParkingSessionStatus string

const (
	SessionActive    ParkingSessionStatus = "active"
	SessionCompleted ParkingSessionStatus = "completed"
	SessionCancelled ParkingSessionStatus = "cancelled" // chỉ admin hủy, state machine không tạo ra
)

type ParkingSession struct {
	ID           int                  `json:"id"`
	VehicleID    null.Int             `json:"vehicle_id"` // NULL = xe vãng lai, chỉ theo biển số
	LicensePlate string               `json:"license_plate"`
	SlotID       int                  `json:"slot_id"`
	EntryTime    time.Time            `json:"entry_time"`
	ExitTime     null.Time            `json:"exit_time"`
	Fee          null.Int             `json:"fee"` // VNĐ, set cùng lúc với exit_time khi completed
	Status       ParkingSessionStatus `json:"status"`
	CreatedAt    time.Time            `json:"created_at"`
	UpdatedAt    time.Time            `json:"updated_at"`

	ParkingSlot *ParkingSlot `json:"parking_slot,omitempty"`
	ParkingLot  *ParkingLot  `json:"parking_lot,omitempty"`
}

type ParkingSessionFilterDTO struct {
	LotID        *int    `form:"lotId"`
	Status       *string `form:"status"`
	LicensePlate *string `form:"licensePlate"`
}
