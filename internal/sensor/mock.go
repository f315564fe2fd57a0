package sensor

import (
	"context"
	"math"
	"time"
)

type mockSource struct {
	now func() time.Time
}

// NewMockSource returns a source that produces a slow daily humidity cycle,
// for hosts without a sensor attached.
func NewMockSource() Source {
	return &mockSource{now: time.Now}
}

func (m *mockSource) Read(ctx context.Context) (Sample, error) {
	t := m.now()
	hour := float64(t.Hour()) + float64(t.Minute())/60
	phase := 2 * math.Pi * hour / 24
	return Sample{
		Humidity:     60 - 15*math.Cos(phase),
		TemperatureC: 25 + 4*math.Sin(phase-math.Pi/2),
	}, nil
}

func (m *mockSource) Close() error {
	return nil
}

// Func adapts a function to a Source.
type Func func(ctx context.Context) (Sample, error)

func (f Func) Read(ctx context.Context) (Sample, error) {
	return f(ctx)
}

func (f Func) Close() error {
	return nil
}
