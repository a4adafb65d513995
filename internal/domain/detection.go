package domain

import (
	"encoding/json"
	"time"
)

type DetectionFlag string

const (
	FlagEntry DetectionFlag = "entry"
	FlagExit  DetectionFlag = "exit"
)

// VehicleDetectionDTO là payload webhook do detector (hoặc camera flow) gửi lên
// sau khi nhận diện biển số.
type VehicleDetectionDTO struct {
	LicensePlate string        `json:"license_plate" binding:"required"`
	Flag         DetectionFlag `json:"flag" binding:"required"`
	LotID        *int          `json:"parking_lot_id"`
	SlotID       *int          `json:"slot_id"` // slot do detector gợi ý (nếu có)
}

// DetectedVehicle là một xe trong một frame, chỉ tồn tại trong request
type DetectedVehicle struct {
	Coordinates PolygonCoordinates `json:"coordinates"`
}

type ReconcileDTO struct {
	Vehicles []DetectedVehicle `json:"vehicles" binding:"required"`
}

// ReconcileResult tổng kết một lần đối soát occupancy từ camera
type ReconcileResult struct {
	LotID            int   `json:"lot_id"`
	VehiclesDetected int   `json:"vehicles_detected"`
	SlotsChecked     int   `json:"slots_checked"`
	SlotsSkipped     int   `json:"slots_skipped"`
	MarkedOccupied   []int `json:"marked_occupied"`
	MarkedAvailable  []int `json:"marked_available"`
}

type FeeBreakdownItem struct {
	Hour int   `json:"hour"`
	Fee  int64 `json:"fee"`
}

type FeeDetails struct {
	EntryTime     time.Time          `json:"entry_time"`
	ExitTime      time.Time          `json:"exit_time"`
	DurationHours int                `json:"duration_hours"`
	PricePerHour  int64              `json:"price_per_hour"`
	FeeBreakdown  []FeeBreakdownItem `json:"fee_breakdown"`
	TotalFee      int64              `json:"total_fee"`
}

type EntryResult struct {
	Message          string          `json:"message"`
	IsRegistered     bool            `json:"is_registered"`
	LicensePlate     string          `json:"license_plate"`
	Vehicle          *Vehicle        `json:"vehicle,omitempty"`
	ParkingSession   *ParkingSession `json:"parking_session"`
	Slot             *ParkingSlot    `json:"slot"`
	NotificationSent bool            `json:"notification_sent"`
}

type ExitResult struct {
	Message          string          `json:"message"`
	IsRegistered     bool            `json:"is_registered"`
	LicensePlate     string          `json:"license_plate"`
	Vehicle          *Vehicle        `json:"vehicle,omitempty"`
	ParkingSession   *ParkingSession `json:"parking_session"`
	FeeDetails       *FeeDetails     `json:"fee_details"`
	NotificationSent bool            `json:"notification_sent"`
	// SlotReleased = false khi phiên đã đóng nhưng trả slot thất bại,
	// slot sẽ kẹt occupied cho tới lần đối soát camera kế tiếp
	SlotReleased bool `json:"slot_released"`
}

// DetectionEventLog ghi lại mọi webhook detection đã nhận để tra soát
type DetectionEventLog struct {
	ID              int64           `json:"id"`
	ReceivedAt      time.Time       `json:"received_at"`
	LicensePlate    string          `json:"license_plate"`
	Flag            string          `json:"flag"`
	Payload         json.RawMessage `json:"payload"`
	ProcessedStatus string          `json:"processed_status"` // "processed", "error"
	ProcessingNotes string          `json:"processing_notes,omitempty"`
}

// SlotStatusEvent đẩy qua WebSocket cho dashboard theo dõi real-time
type SlotStatusEvent struct {
	Type         string     `json:"type"` // "slot_status" hoặc "session_event"
	LotID        int        `json:"lot_id"`
	SlotID       int        `json:"slot_id"`
	SlotCode     string     `json:"slot_code,omitempty"`
	Status       SlotStatus `json:"status,omitempty"`
	LicensePlate string     `json:"license_plate,omitempty"`
	SessionID    int        `json:"session_id,omitempty"`
	Timestamp    time.Time  `json:"timestamp"`
}
