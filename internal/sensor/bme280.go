package sensor

import (
	"context"
	"fmt"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/devices/v3/bmxx80"
	"periph.io/x/host/v3"
)

type bme280Source struct {
	bus i2c.BusCloser
	dev *bmxx80.Dev
}

// NewBME280 opens a BME280 on the named I2C bus ("" selects the first bus).
func NewBME280(busName string, addr uint16) (Source, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("periph host init: %w", err)
	}
	bus, err := i2creg.Open(busName)
	if err != nil {
		return nil, fmt.Errorf("i2c open %q: %w", busName, err)
	}
	dev, err := bmxx80.NewI2C(bus, addr, &bmxx80.DefaultOpts)
	if err != nil {
		bus.Close()
		return nil, fmt.Errorf("bme280 init at %#x: %w", addr, err)
	}
	return &bme280Source{bus: bus, dev: dev}, nil
}

func (b *bme280Source) Read(ctx context.Context) (Sample, error) {
	var e physic.Env
	if err := b.dev.Sense(&e); err != nil {
		return Sample{}, fmt.Errorf("bme280 sense: %w", err)
	}
	return Sample{
		Humidity:     float64(e.Humidity) / float64(physic.PercentRH),
		TemperatureC: e.Temperature.Celsius(),
	}, nil
}

func (b *bme280Source) Close() error {
	err := b.dev.Halt()
	if cerr := b.bus.Close(); err == nil {
		err = cerr
	}
	return err
}
