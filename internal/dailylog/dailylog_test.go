package dailylog

import (
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"humidmon/internal/model"
)

var hst = time.FixedZone("HST", -10*60*60)

func sampleReadings(day time.Time, n int) []model.Reading {
	statuses := []model.Status{model.StatusOK, model.StatusHumid, model.StatusWet, model.StatusAlarm}
	out := make([]model.Reading, 0, n)
	for i := 0; i < n; i++ {
		ts := day.Add(time.Duration(i) * 5 * time.Minute)
		out = append(out, model.NewReading(ts, 78.25+float64(i)*0.3, 50+float64(i)*1.7, 14.127+float64(i)*0.05, statuses[i%len(statuses)]))
	}
	return out
}

func TestFileName(t *testing.T) {
	day := time.Date(2026, 10, 19, 23, 59, 0, 0, hst)
	if got := FileName(day); got != "20261019_log.txt" {
		t.Fatalf("FileName = %q", got)
	}
}

func TestOpenWritesHeaderOnce(t *testing.T) {
	dir := t.TempDir()
	day := time.Date(2026, 10, 19, 7, 0, 0, 0, hst)

	l, err := Open(dir, day)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if !l.Created() {
		t.Fatalf("first open should create the file")
	}
	if err := l.Append(sampleReadings(day, 1)[0]); err != nil {
		t.Fatalf("Append: %v", err)
	}
	l.Close()

	l, err = Open(dir, day)
	if err != nil {
		t.Fatalf("second Open: %v", err)
	}
	defer l.Close()
	if l.Created() {
		t.Fatalf("second open must not recreate the file")
	}
	data, err := os.ReadFile(l.Path())
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if n := strings.Count(string(data), Header); n != 1 {
		t.Fatalf("header written %d times:\n%s", n, data)
	}
	hist, err := l.ReadHistory()
	if err != nil {
		t.Fatalf("ReadHistory: %v", err)
	}
	if len(hist) != 1 {
		t.Fatalf("expected 1 record, got %d", len(hist))
	}
}

func TestRoundTrip(t *testing.T) {
	dir := t.TempDir()
	day := time.Date(2026, 10, 19, 0, 5, 0, 0, hst)
	l, err := Open(dir, day)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer l.Close()

	want := sampleReadings(day, 30)
	for _, r := range want {
		if err := l.Append(r); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}
	got, err := l.ReadHistory()
	if err != nil {
		t.Fatalf("ReadHistory: %v", err)
	}
	if len(got) != len(want) {
		t.Fatalf("got %d records, want %d", len(got), len(want))
	}
	for i := range want {
		g, w := got[i], want[i]
		if !g.Time.Equal(w.Time) || g.TemperatureF != w.TemperatureF || g.Humidity != w.Humidity ||
			g.AbsoluteHumidity != w.AbsoluteHumidity || g.Status != w.Status {
			t.Fatalf("record %d: got %+v, want %+v", i, g, w)
		}
	}

	snapshot, err := LoadDay(dir, day)
	if err != nil {
		t.Fatalf("LoadDay: %v", err)
	}
	if len(snapshot) != len(want) {
		t.Fatalf("snapshot has %d records", len(snapshot))
	}
}

func TestAppendLineFormat(t *testing.T) {
	r := model.NewReading(time.Date(2026, 10, 19, 7, 15, 0, 0, hst), 78.44, 61.04, 15.516, model.StatusHumid)
	line, err := FormatLine(r)
	if err != nil {
		t.Fatalf("FormatLine: %v", err)
	}
	if want := "2026-10-19,07:15:00 HST,78.4,61.0,15.52,HUMID"; line != want {
		t.Fatalf("line = %q, want %q", line, want)
	}
}

func TestAppendRejectsInvalidReading(t *testing.T) {
	l, err := Open(t.TempDir(), time.Date(2026, 10, 19, 7, 0, 0, 0, hst))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer l.Close()
	err = l.Append(model.Reading{Time: time.Now(), Status: "DAMP"})
	if !errors.Is(err, ErrInvalidReading) {
		t.Fatalf("expected ErrInvalidReading, got %v", err)
	}
}

func TestMalformedLineFailsRead(t *testing.T) {
	dir := t.TempDir()
	day := time.Date(2026, 10, 19, 7, 0, 0, 0, hst)
	content := Header + "\n" +
		"2026-10-19,07:00:00 HST,78.4,61.0,15.52,HUMID\n" +
		"2026-10-19,07:05:00 HST,78.4,sixty,15.52,HUMID\n"
	if err := os.WriteFile(Path(dir, day), []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	l, err := Open(dir, day)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer l.Close()
	hist, err := l.ReadHistory()
	if err == nil {
		t.Fatalf("expected parse error, got %d records", len(hist))
	}
	if !IsMalformed(err) {
		t.Fatalf("expected ErrMalformedLine, got %v", err)
	}
	var lineErr *LineError
	if !errors.As(err, &lineErr) || lineErr.Line != 3 {
		t.Fatalf("expected LineError on line 3, got %v", err)
	}
}

func TestParseLineErrors(t *testing.T) {
	bad := []string{
		"2026-10-19,07:00:00 HST,78.4,61.0,15.52",
		"2026-10-19,07:00:00 HST,78.4,61.0,15.52,HUMID,extra",
		"2026/10/19,07:00:00 HST,78.4,61.0,15.52,HUMID",
		"2026-10-19,07:00:00 HST,78.4,61.0,15.52,humid",
		"2026-10-19,07:00:00 HST,78.4,61.0,,OK",
	}
	for _, line := range bad {
		if _, err := ParseLine(line, hst); err == nil {
			t.Errorf("ParseLine(%q) should fail", line)
		}
	}
}

func TestReadSkipsCommentsWithoutHeader(t *testing.T) {
	dir := t.TempDir()
	day := time.Date(2026, 10, 19, 7, 0, 0, 0, hst)
	content := "2026-10-19,07:00:00 HST,78.4,61.0,15.52,HUMID\n" +
		"# sensor replaced\n" +
		"2026-10-19,07:05:00 HST,78.0,52.5,13.11,OK\n"
	if err := os.WriteFile(Path(dir, day), []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	hist, err := LoadDay(dir, day)
	if err != nil {
		t.Fatalf("LoadDay: %v", err)
	}
	if len(hist) != 2 || hist[1].Status != model.StatusOK {
		t.Fatalf("unexpected history: %+v", hist)
	}
	if got := Statuses(hist); len(got) != 2 || got[0] != model.StatusHumid {
		t.Fatalf("Statuses = %v", got)
	}
}

func TestLoadFileIgnoresPartialTrailingLine(t *testing.T) {
	dir := t.TempDir()
	day := time.Date(2026, 10, 19, 7, 0, 0, 0, hst)
	content := Header + "\n" +
		"2026-10-19,07:00:00 HST,78.4,61.0,15.52,HUMID\n" +
		"2026-10-19,07:05:00 H"
	if err := os.WriteFile(Path(dir, day), []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	hist, err := LoadDay(dir, day)
	if err != nil {
		t.Fatalf("LoadDay: %v", err)
	}
	if len(hist) != 1 {
		t.Fatalf("expected 1 complete record, got %d", len(hist))
	}
}

func TestRolloverStartsNewFile(t *testing.T) {
	dir := t.TempDir()
	late := time.Date(2026, 10, 19, 23, 55, 0, 0, hst)
	early := late.Add(10 * time.Minute)

	l, err := Open(dir, late)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	for _, r := range sampleReadings(late, 3) {
		if err := l.Append(r); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}
	l.Close()

	next, err := Open(dir, early)
	if err != nil {
		t.Fatalf("Open next day: %v", err)
	}
	defer next.Close()
	if !next.Created() || next.Path() == l.Path() {
		t.Fatalf("next day should start a new file, got %s", next.Path())
	}
	hist, err := next.ReadHistory()
	if err != nil {
		t.Fatalf("ReadHistory: %v", err)
	}
	if len(hist) != 0 {
		t.Fatalf("new day history should be empty, got %d", len(hist))
	}
}

func TestOpenUnwritableDir(t *testing.T) {
	dir := t.TempDir()
	blocker := dir + "/file"
	if err := os.WriteFile(blocker, nil, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	_, err := Open(blocker+"/logs", time.Now())
	if !errors.Is(err, ErrLogUnwritable) {
		t.Fatalf("expected ErrLogUnwritable, got %v", err)
	}
}
