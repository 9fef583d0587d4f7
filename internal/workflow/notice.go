package workflow

import (
	"log/slog"

	"github.com/joseph-ayodele/invoice-intake/internal/common"
)

type (
	Level  = common.Level
	Notice = common.Notice
)

const (
	LevelInfo    = common.LevelInfo
	LevelSuccess = common.LevelSuccess
	LevelWarning = common.LevelWarning
	LevelError   = common.LevelError
)

// Notifier surfaces notices. Implementations are called on the owner goroutine.
type Notifier interface {
	Notify(n Notice)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(n Notice)

func (f NotifierFunc) Notify(n Notice) { f(n) }

// Navigator receives the navigation effect after a successful extraction.
type Navigator interface {
	Navigate(recordID string)
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(recordID string)

func (f NavigatorFunc) Navigate(recordID string) { f(recordID) }

// LogNotifier writes notices to a logger; used when no notifier is configured.
type LogNotifier struct {
	Logger *slog.Logger
}

func (l LogNotifier) Notify(n Notice) {
	logger := l.Logger
	if logger == nil {
		logger = slog.Default()
	}
	switch n.Level {
	case LevelError:
		logger.Error("workflow.notice", "message", n.Message)
	case LevelWarning:
		logger.Warn("workflow.notice", "message", n.Message)
	default:
		logger.Info("workflow.notice", "level", string(n.Level), "message", n.Message)
	}
}

// Recorder collects notices and navigations in order. It is not safe for
// concurrent use, which matches how the workflow calls it.
type Recorder struct {
	Notices     []Notice
	Navigations []string
}

func (r *Recorder) Notify(n Notice) { r.Notices = append(r.Notices, n) }

func (r *Recorder) Navigate(recordID string) { r.Navigations = append(r.Navigations, recordID) }

// Last returns the most recent notice, or a zero Notice.
func (r *Recorder) Last() Notice {
	if len(r.Notices) == 0 {
		return Notice{}
	}
	return r.Notices[len(r.Notices)-1]
}
