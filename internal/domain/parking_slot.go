package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

type SlotStatus string

const (
	SlotAvailable    SlotStatus = "available"
	SlotOccupied     SlotStatus = "occupied"
	SlotOutOfService SlotStatus = "out_of_service"
)

// PolygonCoordinates là danh sách ring, mỗi ring là danh sách điểm [x, y]
// trong cùng hệ tọa độ pixel với kết quả detector. Điểm đầu lặp lại ở cuối
// để đóng ring. Lưu trong DB dạng JSONB.
type PolygonCoordinates [][][]float64

func (p PolygonCoordinates) Value() (driver.Value, error) {
	if p == nil {
		return nil, nil
	}
	return json.Marshal(p)
}

func (p *PolygonCoordinates) Scan(src interface{}) error {
	if src == nil {
		*p = nil
		return nil
	}
	var data []byte
	switch v := src.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("PolygonCoordinates.Scan: kiểu không hỗ trợ %T", src)
	}
	return json.Unmarshal(data, p)
}

type ParkingSlot struct {
	ID                     int                `json:"id"`
	LotID                  int                `json:"lot_id"`
	SlotCode               string             `json:"slot_code"`
	Status                 SlotStatus         `json:"status"`
	Coordinates            PolygonCoordinates `json:"coordinates,omitempty"`
	LastStatusUpdateSource string             `json:"last_status_update_source,omitempty"`
	CreatedAt              time.Time          `json:"created_at"`
	UpdatedAt              time.Time          `json:"updated_at"`
}

// HasCoordinates cho biết slot có polygon để đối soát camera hay không
func (s *ParkingSlot) HasCoordinates() bool {
	return len(s.Coordinates) > 0 && len(s.Coordinates[0]) > 0
}

type ParkingSlotDTO struct {
	SlotCode    string             `json:"slot_code" binding:"required"`
	Status      string             `json:"status,omitempty"`
	Coordinates PolygonCoordinates `json:"coordinates,omitempty"`
}
