// Package dailylog stores readings in one append-only text file per calendar
// day. Lines look like
//
//	2026-10-19,07:15:00 HST,78.4,61.0,15.52,HUMID
//
// and any line starting with '#' is a comment.
package dailylog

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"humidmon/internal/model"
)

// Log is the open log file for one day. It has a single writer.
type Log struct {
	path    string
	loc     *time.Location
	f       *os.File
	created bool
}

// Path returns the log file path for day inside dir.
func Path(dir string, day time.Time) string {
	return filepath.Join(dir, FileName(day))
}

// Open opens the log for the calendar day of day, creating it with a header
// line if it does not exist or is empty.
func Open(dir string, day time.Time) (*Log, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLogUnwritable, err)
	}
	path := Path(dir, day)
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLogUnwritable, err)
	}
	l := &Log{path: path, loc: day.Location(), f: f}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("%w: stat %s: %w", ErrLogUnwritable, path, err)
	}
	if info.Size() == 0 {
		if err := l.writeLine(Header); err != nil {
			f.Close()
			return nil, err
		}
		l.created = true
	}
	return l, nil
}

func (l *Log) Path() string {
	return l.path
}

// Created reports whether Open started a new file.
func (l *Log) Created() bool {
	return l.created
}

// ReadHistory returns every reading in the file, oldest first. A malformed
// line fails the whole call.
func (l *Log) ReadHistory() ([]model.Reading, error) {
	if _, err := l.f.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("seek %s: %w", l.path, err)
	}
	return parseAll(l.f, l.path, l.loc)
}

// Append writes r as one line and syncs the file before returning.
func (l *Log) Append(r model.Reading) error {
	line, err := FormatLine(r)
	if err != nil {
		return err
	}
	return l.writeLine(line)
}

func (l *Log) writeLine(line string) error {
	if _, err := l.f.WriteString(line + "\n"); err != nil {
		return fmt.Errorf("%w: write %s: %w", ErrLogUnwritable, l.path, err)
	}
	if err := l.f.Sync(); err != nil {
		return fmt.Errorf("%w: sync %s: %w", ErrLogUnwritable, l.path, err)
	}
	return nil
}

func (l *Log) Close() error {
	if l.f == nil {
		return nil
	}
	err := l.f.Close()
	l.f = nil
	return err
}

// LoadDay reads a snapshot of the log for day without creating it.
func LoadDay(dir string, day time.Time) ([]model.Reading, error) {
	return LoadFile(Path(dir, day), day.Location())
}

// LoadFile reads the file up to the size it had when opened, so a writer
// appending concurrently does not affect the result. An unterminated last
// line is treated as an append in progress and left out.
func LoadFile(path string, loc *time.Location) ([]model.Reading, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return nil, err
	}
	data, err := io.ReadAll(io.LimitReader(f, info.Size()))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	data = data[:bytes.LastIndexByte(data, '\n')+1]
	return parseAll(bytes.NewReader(data), path, loc)
}

func parseAll(r io.Reader, path string, loc *time.Location) ([]model.Reading, error) {
	var readings []model.Reading
	scanner := bufio.NewScanner(r)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimRight(scanner.Text(), "\r")
		if line == "" || strings.HasPrefix(line, commentMarker) {
			continue
		}
		rd, err := ParseLine(line, loc)
		if err != nil {
			return nil, &LineError{Path: path, Line: lineNum, Text: line, Err: err}
		}
		readings = append(readings, rd)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return readings, nil
}

// IsMalformed reports whether err came from an unparseable history line.
func IsMalformed(err error) bool {
	return errors.Is(err, ErrMalformedLine)
}
