// Package report builds the owner's financial summary for a period and its
// spreadsheet export.
package report

import (
	"errors"
	"time"
)

var ErrInvalidPeriod = errors.New("period must be one of today, week, month, year")

type Period string

const (
	Today Period = "today"
	Week  Period = "week"
	Month Period = "month"
	Year  Period = "year"
)

// ParsePeriod accepts the query value; an empty value means today.
func ParsePeriod(s string) (Period, error) {
	switch p := Period(s); p {
	case "":
		return Today, nil
	case Today, Week, Month, Year:
		return p, nil
	}
	return "", ErrInvalidPeriod
}

// Label is the human wording used in the export header and file name.
func (p Period) Label() string {
	switch p {
	case Week:
		return "7 Hari Terakhir"
	case Month:
		return "30 Hari Terakhir"
	case Year:
		return "1 Tahun Terakhir"
	default:
		return "Hari Ini"
	}
}

// Range runs from local midnight, moved back by the period, up to now.
func (p Period) Range(now time.Time) (time.Time, time.Time) {
	y, m, d := now.Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	switch p {
	case Week:
		return today.AddDate(0, 0, -7), now
	case Month:
		return today.AddDate(0, 0, -30), now
	case Year:
		return today.AddDate(-1, 0, 0), now
	default:
		return today, now
	}
}
