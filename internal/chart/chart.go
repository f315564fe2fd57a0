// Package chart renders a day of readings as a PNG time-series chart or as a
// terminal sparkline.
package chart

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"path/filepath"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"humidmon/internal/model"
)

var ErrNoData = errors.New("no readings to plot")

type Options struct {
	Width          int
	Height         int
	HumidThreshold float64
	WetThreshold   float64
}

var (
	colBackground = color.RGBA{0xff, 0xff, 0xff, 0xff}
	colFrame      = color.RGBA{0x44, 0x44, 0x44, 0xff}
	colGrid       = color.RGBA{0xdd, 0xdd, 0xdd, 0xff}
	colText       = color.RGBA{0x00, 0x00, 0x00, 0xff}
	colHumidity   = color.RGBA{0x00, 0x00, 0x00, 0xff}
	colAbsolute   = color.RGBA{0x1f, 0x3f, 0xd0, 0xff}
	colTemp       = color.RGBA{0x1f, 0x9f, 0x3f, 0xff}
	colHumidLine  = color.NRGBA{0xe6, 0xc8, 0x00, 0xcc}
	colWetLine    = color.NRGBA{0xd6, 0x27, 0x28, 0xcc}
)

// panel maps hours (x) and one value range (y) onto a pixel rectangle.
type panel struct {
	rect       image.Rectangle
	ymin, ymax float64
}

func (p panel) x(hours float64) int {
	return p.rect.Min.X + int(hours/24*float64(p.rect.Dx()))
}

func (p panel) y(v float64) int {
	frac := (v - p.ymin) / (p.ymax - p.ymin)
	return p.rect.Max.Y - int(frac*float64(p.rect.Dy()))
}

func (p panel) withRange(ymin, ymax float64) panel {
	p.ymin, p.ymax = ymin, ymax
	return p
}

func hoursOf(r model.Reading) float64 {
	t := r.Time
	return float64(t.Hour()) + float64(t.Minute())/60 + float64(t.Second())/3600
}

// Render draws the chart: relative humidity with threshold lines and
// absolute humidity on the upper panel, temperature on the lower one.
func Render(readings []model.Reading, opts Options) (*image.RGBA, error) {
	if len(readings) == 0 {
		return nil, ErrNoData
	}
	if opts.Width <= 0 {
		opts.Width = 1152
	}
	if opts.Height <= 0 {
		opts.Height = 720
	}
	w, h := opts.Width, opts.Height
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	fill(img, img.Bounds(), colBackground)

	left, right := 70, w-80
	hum := panel{rect: image.Rect(left, h*12/100, right, h*55/100), ymin: 25, ymax: 95}
	abs := hum.withRange(7.5, 22.5)
	tmp := panel{rect: image.Rect(left, h*63/100, right, h*92/100), ymin: 70, ymax: 100}

	last := readings[len(readings)-1]
	drawText(img, left, 20, colText, fmt.Sprintf("%s at %s:",
		last.Time.Format("2006-01-02"), last.Time.Format("15:04:05 MST")))
	drawText(img, left, 36, colText, fmt.Sprintf("Temperature = %.1f F, Humidity = %.0f %%",
		last.TemperatureF, last.Humidity))

	drawGrid(img, hum, 10)
	drawGrid(img, tmp, 5)
	for v := 30.0; v <= 90; v += 10 {
		drawText(img, left-28, hum.y(v)+4, colText, fmt.Sprintf("%.0f", v))
	}
	for v := 10.0; v <= 20; v += 5 {
		drawText(img, right+6, abs.y(v)+4, colAbsolute, fmt.Sprintf("%.0f", v))
	}
	for v := 70.0; v <= 100; v += 5 {
		drawText(img, left-28, tmp.y(v)+4, colText, fmt.Sprintf("%.0f", v))
	}
	for hr := 0; hr <= 24; hr++ {
		drawText(img, tmp.x(float64(hr))-6, tmp.rect.Max.Y+16, colText, fmt.Sprintf("%d", hr))
	}
	zone, _ := last.Time.Zone()
	drawText(img, left+tmp.rect.Dx()/2-40, tmp.rect.Max.Y+34, colText, fmt.Sprintf("Hours (%s)", zone))
	drawText(img, 4, hum.rect.Min.Y-6, colText, "Humidity (%)")
	drawText(img, right-60, hum.rect.Min.Y-6, colAbsolute, "Abs. Hum. (g/m^3)")
	drawText(img, 4, tmp.rect.Min.Y-6, colText, "Temperature (F)")

	if opts.HumidThreshold > 0 {
		thickLine(img, hum, opts.HumidThreshold, colHumidLine)
	}
	if opts.WetThreshold > 0 {
		thickLine(img, hum, opts.WetThreshold, colWetLine)
	}

	for _, r := range readings {
		x := hum.x(hoursOf(r))
		dot(img, hum.rect, x, hum.y(r.Humidity), colHumidity)
		dot(img, abs.rect, x, abs.y(r.AbsoluteHumidity), colAbsolute)
		dot(img, tmp.rect, x, tmp.y(r.TemperatureF), colTemp)
	}
	frame(img, hum.rect, colFrame)
	frame(img, tmp.rect, colFrame)
	return img, nil
}

func RenderPNG(w io.Writer, readings []model.Reading, opts Options) error {
	img, err := Render(readings, opts)
	if err != nil {
		return err
	}
	return png.Encode(w, img)
}

// WriteFile renders to path through a temporary file and rename, so a reader
// never sees a half-written image.
func WriteFile(path string, readings []model.Reading, opts Options) error {
	img, err := Render(readings, opts)
	if err != nil {
		return err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".chart-*.png")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if err := png.Encode(tmp, img); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// UpdateLink points dir/name at target (a file in the same directory).
func UpdateLink(dir, name, target string) error {
	if name == "" || name == filepath.Base(target) {
		return nil
	}
	link := filepath.Join(dir, name)
	tmp := link + ".tmp"
	_ = os.Remove(tmp)
	if err := os.Symlink(filepath.Base(target), tmp); err != nil {
		return err
	}
	return os.Rename(tmp, link)
}

func fill(img draw.Image, r image.Rectangle, c color.Color) {
	draw.Draw(img, r, &image.Uniform{C: c}, image.Point{}, draw.Src)
}

func drawGrid(img *image.RGBA, p panel, step float64) {
	for v := p.ymin - mod(p.ymin, step) + step; v < p.ymax; v += step {
		fill(img, image.Rect(p.rect.Min.X, p.y(v), p.rect.Max.X, p.y(v)+1), colGrid)
	}
	for hr := 1; hr < 24; hr++ {
		x := p.x(float64(hr))
		fill(img, image.Rect(x, p.rect.Min.Y, x+1, p.rect.Max.Y), colGrid)
	}
}

func mod(v, step float64) float64 {
	return v - step*float64(int(v/step))
}

func thickLine(img *image.RGBA, p panel, v float64, c color.Color) {
	y := p.y(v)
	r := image.Rect(p.rect.Min.X, y-1, p.rect.Max.X, y+2).Intersect(p.rect)
	draw.Draw(img, r, &image.Uniform{C: c}, image.Point{}, draw.Over)
}

func dot(img *image.RGBA, clip image.Rectangle, x, y int, c color.Color) {
	r := image.Rect(x-1, y-1, x+2, y+2).Intersect(clip)
	if r.Empty() {
		return
	}
	fill(img, r, c)
}

func frame(img *image.RGBA, r image.Rectangle, c color.Color) {
	fill(img, image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+1), c)
	fill(img, image.Rect(r.Min.X, r.Max.Y-1, r.Max.X, r.Max.Y), c)
	fill(img, image.Rect(r.Min.X, r.Min.Y, r.Min.X+1, r.Max.Y), c)
	fill(img, image.Rect(r.Max.X-1, r.Min.Y, r.Max.X, r.Max.Y), c)
}

func drawText(img *image.RGBA, x, y int, c color.Color, s string) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(c),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(s)
}
