package geometry

import (
	"math"
	"testing"

	"github.com/sonbm-itealvn/smart-parking-api/internal/domain"
)

func rect(x1, y1, x2, y2 float64) domain.PolygonCoordinates {
	return domain.PolygonCoordinates{{
		{x1, y1}, {x2, y1}, {x2, y2}, {x1, y2}, {x1, y1},
	}}
}

func TestArea(t *testing.T) {
	e := NewEngine()

	tests := []struct {
		name   string
		coords domain.PolygonCoordinates
		want   float64
	}{
		{"hình vuông 10x10", rect(0, 0, 10, 10), 100},
		{"hình chữ nhật 4x25", rect(0, 0, 4, 25), 100},
		{"tọa độ pixel thực tế", rect(120, 340, 220, 540), 20000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := e.Area(tt.coords)
			if err != nil {
				t.Fatalf("Area() trả về lỗi: %v", err)
			}
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Area() = %v, muốn %v", got, tt.want)
			}
		})
	}
}

func TestAreaInvalidPolygon(t *testing.T) {
	e := NewEngine()

	tests := []struct {
		name   string
		coords domain.PolygonCoordinates
	}{
		{"rỗng", nil},
		{"thiếu điểm", domain.PolygonCoordinates{{{0, 0}, {1, 1}, {0, 0}}}},
		{"điểm thiếu tọa độ", domain.PolygonCoordinates{{{0, 0}, {1}, {1, 1}, {0, 0}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := e.Area(tt.coords); err == nil {
				t.Error("Area() phải trả về lỗi cho polygon không hợp lệ")
			}
		})
	}
}

func TestIntersectionArea(t *testing.T) {
	e := NewEngine()

	tests := []struct {
		name string
		a, b domain.PolygonCoordinates
		want float64
	}{
		{"chồng lấn một nửa", rect(0, 0, 10, 10), rect(5, 0, 15, 10), 50},
		{"không chồng lấn", rect(0, 0, 10, 10), rect(20, 20, 30, 30), 0},
		{"chứa hoàn toàn", rect(0, 0, 10, 10), rect(2, 2, 8, 8), 36},
		{"chạm cạnh", rect(0, 0, 10, 10), rect(10, 0, 20, 10), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := e.IntersectionArea(tt.a, tt.b)
			if err != nil {
				t.Fatalf("IntersectionArea() trả về lỗi: %v", err)
			}
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("IntersectionArea() = %v, muốn %v", got, tt.want)
			}
		})
	}
}
