// Package geometry tính diện tích và phần giao của các polygon trong hệ tọa
// độ pixel của khung hình camera, phục vụ đối soát trạng thái chỗ đỗ.
package geometry

import (
	"fmt"

	"github.com/peterstace/simplefeatures/geom"

	"github.com/sonbm-itealvn/smart-parking-api/internal/domain"
)

// Engine trừu tượng hóa phép toán hình học để service test được với engine giả
type Engine interface {
	Area(coords domain.PolygonCoordinates) (float64, error)
	IntersectionArea(a, b domain.PolygonCoordinates) (float64, error)
}

type sfEngine struct{}

func NewEngine() Engine {
	return &sfEngine{}
}

func buildPolygon(coords domain.PolygonCoordinates) (geom.Polygon, error) {
	if len(coords) == 0 || len(coords[0]) < 4 {
		return geom.Polygon{}, fmt.Errorf("polygon cần ít nhất 4 điểm (điểm đầu lặp lại ở cuối), nhận được %d", ringLen(coords))
	}
	rings := make([]geom.LineString, 0, len(coords))
	for _, ring := range coords {
		flat := make([]float64, 0, len(ring)*2)
		for _, pt := range ring {
			if len(pt) < 2 {
				return geom.Polygon{}, fmt.Errorf("điểm polygon phải có 2 tọa độ [x, y], nhận được %d", len(pt))
			}
			flat = append(flat, pt[0], pt[1])
		}
		seq := geom.NewSequence(flat, geom.DimXY)
		rings = append(rings, geom.NewLineString(seq))
	}
	poly := geom.NewPolygon(rings)
	if err := poly.Validate(); err != nil {
		return geom.Polygon{}, fmt.Errorf("polygon không hợp lệ: %w", err)
	}
	return poly, nil
}

func ringLen(coords domain.PolygonCoordinates) int {
	if len(coords) == 0 {
		return 0
	}
	return len(coords[0])
}

func (e *sfEngine) Area(coords domain.PolygonCoordinates) (float64, error) {
	poly, err := buildPolygon(coords)
	if err != nil {
		return 0, err
	}
	return poly.Area(), nil
}

func (e *sfEngine) IntersectionArea(a, b domain.PolygonCoordinates) (float64, error) {
	polyA, err := buildPolygon(a)
	if err != nil {
		return 0, err
	}
	polyB, err := buildPolygon(b)
	if err != nil {
		return 0, err
	}
	inter, err := geom.Intersection(polyA.AsGeometry(), polyB.AsGeometry())
	if err != nil {
		return 0, fmt.Errorf("lỗi tính phần giao: %w", err)
	}
	if inter.IsEmpty() {
		return 0, nil
	}
	return inter.Area(), nil
}
