package domain

import "time"

type PaymentMethod string

const (
	PaymentCreditCard PaymentMethod = "credit_card"
	PaymentCash       PaymentMethod = "cash"
	PaymentMobilePay  PaymentMethod = "mobile_pay"
)

type PaymentStatus string

const (
	PaymentSuccessful PaymentStatus = "successful"
	PaymentFailed     PaymentStatus = "failed"
	PaymentPending    PaymentStatus = "pending"
)

type Payment struct {
	ID               int           `json:"id"`
	ParkingSessionID int           `json:"parking_session_id"`
	Amount           int64         `json:"amount"`
	PaymentMethod    PaymentMethod `json:"payment_method"`
	PaymentTime      time.Time     `json:"payment_time"`
	Status           PaymentStatus `json:"status"`
	CreatedAt        time.Time     `json:"created_at"`
}

type PaymentDTO struct {
	ParkingSessionID int    `json:"parking_session_id" binding:"required"`
	Amount           int64  `json:"amount" binding:"required,gt=0"`
	PaymentMethod    string `json:"payment_method" binding:"required,oneof=credit_card cash mobile_pay"`
}
