// internal/app/system/jalali/jalali.go

// Package jalali maps wall-clock time onto the fund's accounting calendar.
// The fund runs on Jalali (Solar Hijri) months; everything outside this
// package treats the (year, month) pair as an opaque period key.
package jalali

import (
	"fmt"
	"time"

	ptime "github.com/yaa110/go-persian-calendar"
)

// YearMonth is one Jalali accounting period.
type YearMonth struct {
	Year  int `json:"year"`
	Month int `json:"month"` // 1..12
}

func (ym YearMonth) String() string { return fmt.Sprintf("%d/%d", ym.Year, ym.Month) }

// Current returns the Jalali period containing now.
func Current() YearMonth {
	return FromTime(time.Now())
}

// FromTime converts a Gregorian instant to its Jalali period.
func FromTime(t time.Time) YearMonth {
	pt := ptime.New(t)
	return YearMonth{Year: pt.Year(), Month: int(pt.Month())}
}

// Valid reports whether the pair denotes a plausible Jalali period.
func (ym YearMonth) Valid() bool {
	return ym.Year >= 1300 && ym.Year <= 1500 && ym.Month >= 1 && ym.Month <= 12
}
