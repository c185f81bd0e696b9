package jalali_test

import (
	"testing"
	"time"

	"github.com/sandoghapp/sandogh/internal/app/system/jalali"
)

func TestFromTime(t *testing.T) {
	tests := []struct {
		name      string
		gregorian time.Time
		want      jalali.YearMonth
	}{
		{
			name:      "nowruz 1403",
			gregorian: time.Date(2024, time.March, 20, 12, 0, 0, 0, time.UTC),
			want:      jalali.YearMonth{Year: 1403, Month: 1},
		},
		{
			name:      "mid year",
			gregorian: time.Date(2024, time.October, 1, 0, 0, 0, 0, time.UTC),
			want:      jalali.YearMonth{Year: 1403, Month: 7},
		},
		{
			name:      "day before nowruz",
			gregorian: time.Date(2024, time.March, 19, 12, 0, 0, 0, time.UTC),
			want:      jalali.YearMonth{Year: 1402, Month: 12},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := jalali.FromTime(tt.gregorian)
			if got != tt.want {
				t.Errorf("FromTime(%v) = %v, want %v", tt.gregorian, got, tt.want)
			}
		})
	}
}

func TestValid(t *testing.T) {
	tests := []struct {
		ym   jalali.YearMonth
		want bool
	}{
		{jalali.YearMonth{Year: 1403, Month: 7}, true},
		{jalali.YearMonth{Year: 1403, Month: 0}, false},
		{jalali.YearMonth{Year: 1403, Month: 13}, false},
		{jalali.YearMonth{Year: 999, Month: 6}, false},
	}
	for _, tt := range tests {
		if got := tt.ym.Valid(); got != tt.want {
			t.Errorf("Valid(%v) = %v, want %v", tt.ym, got, tt.want)
		}
	}
}
