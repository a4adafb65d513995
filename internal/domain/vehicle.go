package domain

import "time"

type VehicleType string

const (
	VehicleTypeCar        VehicleType = "car"
	VehicleTypeMotorcycle VehicleType = "motorcycle"
	VehicleTypeTruck      VehicleType = "truck"
)

type Vehicle struct {
	ID           int         `json:"id"`
	UserID       int         `json:"user_id"`
	LicensePlate string      `json:"license_plate"`
	Type         VehicleType `json:"type"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

type VehicleDTO struct {
	UserID       int    `json:"user_id" binding:"required"`
	LicensePlate string `json:"license_plate" binding:"required"`
	Type         string `json:"type" binding:"required,oneof=car motorcycle truck"`
}
