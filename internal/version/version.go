package version

import (
	"fmt"
	"time"
)

// BuildDate заполняется линкером:
// -ldflags "-X livium-server/internal/version.BuildDate=2026-08-30"
var BuildDate string // YYYY-MM-DD (UTC)

// buildEpoch - точка отсчета номеров сборок.
var buildEpoch = time.Date(
	2024, time.June, 1,
	0, 0, 0, 0,
	time.UTC,
)

// BuildInfo - структурированный ответ эндпоинта /version.
type BuildInfo struct {
	BuildID    int    `json:"buildId"`
	BuildDate  string `json:"buildDate"`
	Calculated bool   `json:"calculated"`
	Error      string `json:"error,omitempty"`
}

// CalculateBuildID - порядковый номер сборки: полные дни от buildEpoch.
func CalculateBuildID() (int, error) {
	if BuildDate == "" {
		return 0, fmt.Errorf("BuildDate is empty")
	}

	t, err := time.ParseInLocation("2006-01-02", BuildDate, time.UTC)
	if err != nil {
		return 0, fmt.Errorf("invalid BuildDate %q: %w", BuildDate, err)
	}

	if t.Before(buildEpoch) {
		return 0, fmt.Errorf("BuildDate %s is before epoch", BuildDate)
	}

	// Считаем в часах: эпоха и дата сборки обе в UTC, DST не мешает.
	days := int(t.Sub(buildEpoch).Hours() / 24)
	return days, nil
}

// Info безопасен в любой момент: при не проставленной дате сборки
// возвращает Calculated=false с текстом ошибки.
func Info() BuildInfo {
	id, err := CalculateBuildID()

	info := BuildInfo{BuildDate: BuildDate}
	if err != nil {
		info.Error = err.Error()
		return info
	}

	info.BuildID = id
	info.Calculated = true
	return info
}

func String() string {
	info := Info()
	if !info.Calculated {
		return fmt.Sprintf("Livium build unknown (%s)", info.Error)
	}
	return fmt.Sprintf("Livium build %d (%s)", info.BuildID, info.BuildDate)
}
