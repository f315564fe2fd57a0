package chart

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"humidmon/internal/model"
)

var sparkBlocks = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// StatusColor returns the terminal color used for a status.
func StatusColor(s model.Status) lipgloss.Color {
	switch s {
	case model.StatusAlarm:
		return lipgloss.Color("196") // red
	case model.StatusWet:
		return lipgloss.Color("208") // orange
	case model.StatusHumid:
		return lipgloss.Color("220") // yellow
	default:
		return lipgloss.Color("78") // soft green
	}
}

// Sparkline renders a day of readings as one row of width cells spanning
// 00:00 to 24:00. Each cell shows the highest humidity in its slot, colored
// by the worst status seen there. A timeline row with hour labels follows.
func Sparkline(readings []model.Reading, width int) (string, error) {
	if len(readings) == 0 {
		return "", ErrNoData
	}
	if width < 24 {
		width = 24
	}
	type cell struct {
		set    bool
		maxHum float64
		worst  model.Status
	}
	cells := make([]cell, width)
	for _, r := range readings {
		i := int(hoursOf(r) / 24 * float64(width))
		if i >= width {
			i = width - 1
		}
		c := &cells[i]
		if !c.set || r.Humidity > c.maxHum {
			c.maxHum = r.Humidity
		}
		if !c.set || rank(r.Status) > rank(c.worst) {
			c.worst = r.Status
		}
		c.set = true
	}

	dim := lipgloss.NewStyle().Foreground(lipgloss.Color("236"))
	var b strings.Builder
	last := readings[len(readings)-1]
	header := lipgloss.NewStyle().Bold(true).Foreground(StatusColor(last.Status))
	b.WriteString(header.Render(fmt.Sprintf("%s %s  %.1f F  %.1f %%  %s",
		last.Time.Format("2006-01-02"), last.Time.Format("15:04:05 MST"),
		last.TemperatureF, last.Humidity, last.Status)))
	b.WriteByte('\n')
	for _, c := range cells {
		if !c.set {
			b.WriteString(dim.Render("╌"))
			continue
		}
		style := lipgloss.NewStyle().Foreground(StatusColor(c.worst))
		b.WriteString(style.Render(string(block(c.maxHum))))
	}
	b.WriteByte('\n')
	b.WriteString(timeline(width))
	return b.String(), nil
}

// block maps humidity in the 25..95 % display range onto a block height.
func block(h float64) rune {
	frac := (h - 25) / 70
	idx := int(frac * float64(len(sparkBlocks)-1))
	if idx < 0 {
		idx = 0
	}
	if idx >= len(sparkBlocks) {
		idx = len(sparkBlocks) - 1
	}
	return sparkBlocks[idx]
}

func rank(s model.Status) int {
	switch s {
	case model.StatusAlarm:
		return 3
	case model.StatusWet:
		return 2
	case model.StatusHumid:
		return 1
	}
	return 0
}

func timeline(width int) string {
	line := []rune(strings.Repeat(" ", width))
	for hr := 0; hr < 24; hr += 6 {
		label := fmt.Sprintf("%02d", hr)
		pos := hr * width / 24
		for i, ch := range label {
			if pos+i < width {
				line[pos+i] = ch
			}
		}
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color("244")).Render(string(line))
}
