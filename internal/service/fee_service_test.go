package service

import (
	"errors"
	"testing"
	"time"
)

func TestFeeServiceCalculate(t *testing.T) {
	s := NewFeeService(10, 1)
	entry := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)

	tests := []struct {
		name         string
		exit         time.Time
		pricePerHour int64
		wantHours    int
		wantFees     []int64
		wantTotal    int64
	}{
		{
			name:         "đúng 3 giờ, giá 30000",
			exit:         entry.Add(3 * time.Hour),
			pricePerHour: 30000,
			wantHours:    3,
			wantFees:     []int64{30000, 33000, 36300},
			wantTotal:    99300,
		},
		{
			name:         "1 phút vẫn tính 1 giờ",
			exit:         entry.Add(1 * time.Minute),
			pricePerHour: 30000,
			wantHours:    1,
			wantFees:     []int64{30000},
			wantTotal:    30000,
		},
		{
			name:         "61 phút tính 2 giờ",
			exit:         entry.Add(61 * time.Minute),
			pricePerHour: 30000,
			wantHours:    2,
			wantFees:     []int64{30000, 33000},
			wantTotal:    63000,
		},
		{
			name:         "vào ra cùng thời điểm vẫn tính tối thiểu 1 giờ",
			exit:         entry,
			pricePerHour: 20000,
			wantHours:    1,
			wantFees:     []int64{20000},
			wantTotal:    20000,
		},
		{
			name:         "làm tròn half-up với giá lẻ",
			exit:         entry.Add(2 * time.Hour),
			pricePerHour: 25555,
			wantHours:    2,
			// 25555 * 1.1 = 28110.5 -> 28111
			wantFees:  []int64{25555, 28111},
			wantTotal: 53666,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			details, err := s.Calculate(entry, tt.exit, tt.pricePerHour)
			if err != nil {
				t.Fatalf("Calculate() trả về lỗi: %v", err)
			}
			if details.DurationHours != tt.wantHours {
				t.Errorf("DurationHours = %d, muốn %d", details.DurationHours, tt.wantHours)
			}
			if len(details.FeeBreakdown) != len(tt.wantFees) {
				t.Fatalf("FeeBreakdown có %d mục, muốn %d", len(details.FeeBreakdown), len(tt.wantFees))
			}
			for i, item := range details.FeeBreakdown {
				if item.Hour != i+1 {
					t.Errorf("FeeBreakdown[%d].Hour = %d, muốn %d", i, item.Hour, i+1)
				}
				if item.Fee != tt.wantFees[i] {
					t.Errorf("FeeBreakdown[%d].Fee = %d, muốn %d", i, item.Fee, tt.wantFees[i])
				}
			}
			if details.TotalFee != tt.wantTotal {
				t.Errorf("TotalFee = %d, muốn %d", details.TotalFee, tt.wantTotal)
			}
		})
	}
}

func TestFeeServiceInvalidRate(t *testing.T) {
	s := NewFeeService(10, 1)
	entry := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)

	for _, rate := range []int64{0, -5000} {
		if _, err := s.Calculate(entry, entry.Add(time.Hour), rate); !errors.Is(err, ErrInvalidRate) {
			t.Errorf("Calculate() với giá %d phải trả về ErrInvalidRate, nhận được %v", rate, err)
		}
	}
}

func TestFeeServiceInvalidTimeRange(t *testing.T) {
	s := NewFeeService(10, 1)
	entry := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)

	_, err := s.Calculate(entry, entry.Add(-time.Minute), 30000)
	if !errors.Is(err, ErrInvalidTimeRange) {
		t.Errorf("Calculate() với exit trước entry phải trả về ErrInvalidTimeRange, nhận được %v", err)
	}
}
