package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/sonbm-itealvn/smart-parking-api/internal/domain"
)

var ErrInvalidRate = errors.New("đơn giá của bãi đỗ phải lớn hơn 0")
var ErrInvalidTimeRange = errors.New("thời gian ra phải sau thời gian vào")

// FeeService tính phí đỗ xe lũy tiến: giờ đầu tính theo đơn giá của bãi,
// mỗi giờ tiếp theo tăng increasePercent % so với giờ trước đó (làm tròn
// half-up về VNĐ nguyên). Thời gian đỗ làm tròn lên theo giờ, tối thiểu
// minimumHours giờ.
type FeeService struct {
	increasePercent int
	minimumHours    int
}

func NewFeeService(increasePercent int, minimumHours int) *FeeService {
	if minimumHours < 1 {
		minimumHours = 1
	}
	return &FeeService{
		increasePercent: increasePercent,
		minimumHours:    minimumHours,
	}
}

// DurationHours làm tròn lên theo giờ: 1 phút cũng tính 1 giờ, 61 phút tính 2 giờ
func (s *FeeService) DurationHours(entryTime, exitTime time.Time) (int, error) {
	if exitTime.Before(entryTime) {
		return 0, ErrInvalidTimeRange
	}
	ms := exitTime.Sub(entryTime).Milliseconds()
	hours := int((ms + 3599999) / 3600000)
	if hours < s.minimumHours {
		hours = s.minimumHours
	}
	return hours, nil
}

func (s *FeeService) Calculate(entryTime, exitTime time.Time, pricePerHour int64) (*domain.FeeDetails, error) {
	if pricePerHour <= 0 {
		return nil, fmt.Errorf("%w: nhận được %d", ErrInvalidRate, pricePerHour)
	}
	hours, err := s.DurationHours(entryTime, exitTime)
	if err != nil {
		return nil, err
	}

	breakdown := make([]domain.FeeBreakdownItem, 0, hours)
	var total int64
	hourlyFee := pricePerHour
	for h := 1; h <= hours; h++ {
		if h > 1 {
			// Làm tròn half-up: floor((fee * (100 + p) + 50) / 100)
			hourlyFee = (hourlyFee*int64(100+s.increasePercent) + 50) / 100
		}
		breakdown = append(breakdown, domain.FeeBreakdownItem{Hour: h, Fee: hourlyFee})
		total += hourlyFee
	}

	return &domain.FeeDetails{
		EntryTime:     entryTime,
		ExitTime:      exitTime,
		DurationHours: hours,
		PricePerHour:  pricePerHour,
		FeeBreakdown:  breakdown,
		TotalFee:      total,
	}, nil
}
