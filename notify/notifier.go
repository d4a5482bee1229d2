package notify

import (
	"time"

	"github.com/approvd/approvd/logger"
	"go.uber.org/zap"
)

// Notifier delivers a role-targeted message. Delivery is best effort with no
// ordering guarantee; failures stay inside the notifier and never reach the
// engine.
type Notifier interface {
	Notify(recipients []string, message string) error
}

type Notification struct {
	Recipients []string  `json:"recipients"`
	Message    string    `json:"message"`
	At         time.Time `json:"at"`
}

type LogNotifier struct{}

var _ Notifier = new(LogNotifier)

func NewLogNotifier() *LogNotifier {
	return &LogNotifier{}
}

func (n *LogNotifier) Notify(recipients []string, message string) error {
	logger.Info("notification", zap.Strings("recipients", recipients), zap.String("message", message))
	return nil
}
