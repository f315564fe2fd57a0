package model

import (
	"fmt"
	"strconv"
	"time"
)

type Status string

const (
	StatusOK    Status = "OK"
	StatusHumid Status = "HUMID"
	StatusWet   Status = "WET"
	StatusAlarm Status = "ALARM"
)

// Severity levels used when averaging recent history. WET and ALARM share
// the top level.
const (
	SeverityOK    = 0
	SeverityHumid = 1
	SeverityWet   = 2
)

func (s Status) Severity() int {
	switch s {
	case StatusHumid:
		return SeverityHumid
	case StatusWet, StatusAlarm:
		return SeverityWet
	default:
		return SeverityOK
	}
}

func (s Status) Valid() bool {
	switch s {
	case StatusOK, StatusHumid, StatusWet, StatusAlarm:
		return true
	}
	return false
}

func ParseStatus(v string) (Status, error) {
	s := Status(v)
	if !s.Valid() {
		return "", fmt.Errorf("unknown status %q", v)
	}
	return s, nil
}

// Reading is one logged sensor sample.
type Reading struct {
	Time             time.Time `json:"time"`
	TemperatureF     float64   `json:"temperature_f"`
	Humidity         float64   `json:"humidity"`
	AbsoluteHumidity float64   `json:"absolute_humidity"`
	Status           Status    `json:"status"`
}

// NewReading rounds the measured values to the precision the daily log keeps,
// so a reading read back from disk compares equal to the one written.
func NewReading(ts time.Time, tempF, humidity, absHumidity float64, status Status) Reading {
	return Reading{
		Time:             ts.Truncate(time.Second),
		TemperatureF:     round(tempF, 1),
		Humidity:         round(humidity, 1),
		AbsoluteHumidity: round(absHumidity, 2),
		Status:           status,
	}
}

func CelsiusToFahrenheit(c float64) float64 {
	return 32 + 9.0/5.0*c
}

// round goes through the same decimal formatting the log uses.
func round(v float64, places int) float64 {
	out, err := strconv.ParseFloat(strconv.FormatFloat(v, 'f', places, 64), 64)
	if err != nil {
		return v
	}
	return out
}
