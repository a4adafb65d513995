package domain

import "time"

type ParkingLot struct {
	ID           int       `json:"id"`
	Name         string    `json:"name"`
	Location     string    `json:"location,omitempty"`
	TotalSlots   int       `json:"total_slots,omitempty"`
	PricePerHour int64     `json:"price_per_hour"` // VNĐ/giờ, đơn vị nguyên
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type ParkingLotDTO struct {
	Name         string `json:"name" binding:"required"`
	Location     string `json:"location"`
	TotalSlots   int    `json:"total_slots"`
	PricePerHour int64  `json:"price_per_hour" binding:"required,gt=0"`
}
