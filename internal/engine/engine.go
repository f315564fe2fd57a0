package engine

import (
	"log/slog"

	"humidmon/internal/config"
	"humidmon/internal/model"
)

// Engine derives a reading's status from its relative humidity and the
// statuses already logged for the day.
type Engine struct {
	logger *slog.Logger
	cfg    config.DetectionConfig
}

// Decision records how a status was reached.
type Decision struct {
	Humidity    float64
	Instant     model.Status
	Final       model.Status
	History     int
	RecentMean  float64
	RecentAlarm bool
	// Evaluated is set once the history is longer than the long window and
	// the escalation rule actually ran.
	Evaluated bool
}

func (d Decision) Escalated() bool {
	return d.Final == model.StatusAlarm && d.Instant != model.StatusAlarm
}

func NewEngine(cfg config.DetectionConfig, logger *slog.Logger) *Engine {
	return &Engine{cfg: cfg, logger: logger}
}

// Classify maps relative humidity to OK, HUMID or WET. The humid threshold
// itself is HUMID.
func (e *Engine) Classify(humidity float64) model.Status {
	switch {
	case humidity < e.cfg.HumidThreshold:
		return model.StatusOK
	case humidity < e.cfg.WetThreshold:
		return model.StatusHumid
	default:
		return model.StatusWet
	}
}

// Escalate promotes status to ALARM when the short window has been elevated,
// the status itself is not OK, and nothing at WET level was logged within the
// long window. Both window guards compare the number of prior records with
// strict greater-than.
func (e *Engine) Escalate(status model.Status, history []model.Status) Decision {
	d := Decision{Instant: status, Final: status, History: len(history)}
	w := NewSeverityWindow(history)
	if w.Len() > e.cfg.ShortWindow {
		d.RecentMean = w.TailMean(e.cfg.ShortWindow)
	}
	if w.Len() <= e.cfg.LongWindow {
		return d
	}
	d.Evaluated = true
	d.RecentAlarm = w.TailContains(e.cfg.LongWindow, model.SeverityWet)
	if d.RecentMean > e.cfg.EscalationMean && status != model.StatusOK && !d.RecentAlarm {
		d.Final = model.StatusAlarm
	}
	return d
}

// Evaluate classifies humidity and applies escalation against history.
func (e *Engine) Evaluate(humidity float64, history []model.Status) Decision {
	status := e.Classify(humidity)
	d := e.Escalate(status, history)
	d.Humidity = humidity
	if e.logger != nil {
		e.logger.Debug("status evaluated",
			"humidity", humidity,
			"instant", d.Instant,
			"history", d.History,
			"recent_mean", d.RecentMean,
			"recent_alarm", d.RecentAlarm,
			"evaluated", d.Evaluated,
		)
		if d.Escalated() {
			e.logger.Warn("alarm triggered",
				"humidity", humidity,
				"instant", d.Instant,
				"recent_mean", d.RecentMean,
			)
		}
	}
	return d
}
