package models

import (
	"strings"
	"time"
	_ "time/tzdata"

	dErrors "familyhub/pkg/domain-errors"
)

// Settings holds family-wide preferences used by the calendar views.
type Settings struct {
	Timezone     string `json:"timezone"`
	WeekStartsOn string `json:"week_starts_on"`
}

func DefaultSettings() Settings {
	return Settings{Timezone: "UTC", WeekStartsOn: "monday"}
}

// Validate checks the timezone against the tz database and the week start
// against the two supported values.
func (s Settings) Validate() error {
	if _, err := time.LoadLocation(s.Timezone); err != nil || s.Timezone == "" {
		return dErrors.New(dErrors.CodeValidation, "timezone is invalid")
	}
	switch s.WeekStartsOn {
	case "monday", "sunday":
	default:
		return dErrors.New(dErrors.CodeValidation, "week_starts_on must be monday or sunday")
	}
	return nil
}

// Merge overlays the provided fields onto s.
func (s Settings) Merge(timezone, weekStartsOn *string) Settings {
	if timezone != nil {
		s.Timezone = strings.TrimSpace(*timezone)
	}
	if weekStartsOn != nil {
		s.WeekStartsOn = strings.ToLower(strings.TrimSpace(*weekStartsOn))
	}
	return s
}
