package domain

import (
	"time"

	"gopkg.in/guregu/null.v4"
)

type CameraType string

const (
	CameraRTSP   CameraType = "rtsp"
	CameraHTTP   CameraType = "http"
	CameraWebcam CameraType = "webcam"
)

type CameraStatus string

const (
	CameraActive      CameraStatus = "active"
	CameraInactive    CameraStatus = "inactive"
	CameraMaintenance CameraStatus = "maintenance"
)

type Camera struct {
	ID          int          `json:"id"`
	Name        string       `json:"name"`
	StreamURL   string       `json:"stream_url"`
	CameraType  CameraType   `json:"camera_type"`
	Status      CameraStatus `json:"status"`
	LotID       null.Int     `json:"lot_id"`
	Description string       `json:"description,omitempty"`
	Location    string       `json:"location,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

type CameraDTO struct {
	Name        string `json:"name" binding:"required"`
	StreamURL   string `json:"stream_url" binding:"required"`
	CameraType  string `json:"camera_type" binding:"required,oneof=rtsp http webcam"`
	Status      string `json:"status,omitempty"`
	LotID       *int   `json:"lot_id"`
	Description string `json:"description"`
	Location    string `json:"location"`
}
