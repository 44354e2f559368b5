package notify

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Kind is the phase of a load attempt.
type Kind string

const (
	KindLoading Kind = "loading"
	KindSuccess Kind = "success"
	KindError   Kind = "error"
)

// Status is one notification about a load attempt.
type Status struct {
	LoadID     uuid.UUID `json:"load_id"`
	Kind       Kind      `json:"kind"`
	Mode       string    `json:"mode"` // "remote", "predict" or "file"
	Message    string    `json:"message"`
	Fallback   bool      `json:"fallback"`             // true when estimated fallback data is displayed
	Superseded bool      `json:"superseded,omitempty"` // closes a load overtaken by a newer one
	Time       time.Time `json:"time"`
}

// Notifier receives statuses. Implementations must not block for long.
type Notifier interface {
	Notify(Status)
}

// NotifierFunc is a function adapter for Notifier.
type NotifierFunc func(Status)

func (f NotifierFunc) Notify(s Status) {
	f(s)
}

// Multi fans a status out to each notifier in order.
type Multi []Notifier

func (m Multi) Notify(s Status) {
	for _, n := range m {
		if n != nil {
			n.Notify(s)
		}
	}
}

// LogNotifier logs statuses.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier creates a LogNotifier; nil uses slog.Default().
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogNotifier{logger: logger}
}

func (l *LogNotifier) Notify(s Status) {
	level := slog.LevelInfo
	if s.Kind == KindError {
		level = slog.LevelWarn
	}
	l.logger.Log(context.Background(), level, "load status",
		"load_id", s.LoadID,
		"kind", s.Kind,
		"mode", s.Mode,
		"fallback", s.Fallback,
		"superseded", s.Superseded,
		"message", s.Message,
	)
}
