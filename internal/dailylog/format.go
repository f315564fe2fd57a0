package dailylog

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"humidmon/internal/model"
)

const (
	commentMarker = "#"
	fieldCount    = 6
	dateLayout    = "2006-01-02"
	timeLayout    = "15:04:05 MST"
	fileLayout    = "20060102"
	fileSuffix    = "_log.txt"
)

// Header is written once as the first line of a new daily log.
const Header = "# date,time,temperature (F),humidity (%),absolute humidity (g/m^3),status"

var (
	ErrMalformedLine  = errors.New("malformed history line")
	ErrLogUnwritable  = errors.New("daily log unwritable")
	ErrInvalidReading = errors.New("invalid reading")
)

// LineError describes a history line that could not be parsed.
type LineError struct {
	Path string
	Line int
	Text string
	Err  error
}

func (e *LineError) Error() string {
	return fmt.Sprintf("%s:%d: %v: %q", e.Path, e.Line, e.Err, e.Text)
}

func (e *LineError) Unwrap() []error {
	return []error{ErrMalformedLine, e.Err}
}

// FileName returns the log file name for the calendar day of t.
func FileName(t time.Time) string {
	return t.Format(fileLayout) + fileSuffix
}

// FormatLine renders r as a log line without the trailing newline.
func FormatLine(r model.Reading) (string, error) {
	for _, v := range []float64{r.TemperatureF, r.Humidity, r.AbsoluteHumidity} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return "", fmt.Errorf("%w: non-finite value", ErrInvalidReading)
		}
	}
	if !r.Status.Valid() {
		return "", fmt.Errorf("%w: status %q", ErrInvalidReading, r.Status)
	}
	if r.Time.IsZero() {
		return "", fmt.Errorf("%w: zero timestamp", ErrInvalidReading)
	}
	return fmt.Sprintf("%s,%s,%.1f,%.1f,%.2f,%s",
		r.Time.Format(dateLayout),
		r.Time.Format(timeLayout),
		r.TemperatureF,
		r.Humidity,
		r.AbsoluteHumidity,
		r.Status,
	), nil
}

// ParseLine parses one data line. Timestamps are resolved in loc; a zone
// abbreviation loc does not know is kept with a zero offset.
func ParseLine(line string, loc *time.Location) (model.Reading, error) {
	parts := strings.Split(line, ",")
	if len(parts) != fieldCount {
		return model.Reading{}, fmt.Errorf("expected %d fields, got %d", fieldCount, len(parts))
	}
	if loc == nil {
		loc = time.Local
	}
	ts, err := time.ParseInLocation(dateLayout+" "+timeLayout, parts[0]+" "+parts[1], loc)
	if err != nil {
		return model.Reading{}, fmt.Errorf("timestamp: %w", err)
	}
	var vals [3]float64
	for i := range vals {
		v, err := strconv.ParseFloat(parts[2+i], 64)
		if err != nil {
			return model.Reading{}, fmt.Errorf("field %d: %w", 3+i, err)
		}
		vals[i] = v
	}
	status, err := model.ParseStatus(parts[5])
	if err != nil {
		return model.Reading{}, err
	}
	return model.Reading{
		Time:             ts,
		TemperatureF:     vals[0],
		Humidity:         vals[1],
		AbsoluteHumidity: vals[2],
		Status:           status,
	}, nil
}

// Statuses projects readings onto their statuses, preserving order.
func Statuses(readings []model.Reading) []model.Status {
	out := make([]model.Status, len(readings))
	for i, r := range readings {
		out[i] = r.Status
	}
	return out
}
