package notify

import (
	"sync"
	"time"

	"github.com/approvd/approvd/logger"
	"go.uber.org/zap"
)

// Dispatcher decouples engine transitions from notification delivery. Sends
// are buffered and handed to the underlying notifier on a worker goroutine;
// a full buffer drops the notification rather than blocking the engine.
type Dispatcher struct {
	notifier Notifier
	ch       chan Notification
	stop     chan struct{}
	wg       *sync.WaitGroup
}

var _ Notifier = new(Dispatcher)

func NewDispatcher(notifier Notifier, capacity int, wg *sync.WaitGroup) *Dispatcher {
	return &Dispatcher{
		notifier: notifier,
		ch:       make(chan Notification, capacity),
		stop:     make(chan struct{}),
		wg:       wg,
	}
}

func (d *Dispatcher) Start() {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		for {
			select {
			case n := <-d.ch:
				if err := d.notifier.Notify(n.Recipients, n.Message); err != nil {
					logger.Error("error delivering notification", zap.Strings("recipients", n.Recipients), zap.Error(err))
				}
			case <-d.stop:
				logger.Info("stopping notification dispatcher")
				return
			}
		}
	}()
}

func (d *Dispatcher) Stop() {
	d.stop <- struct{}{}
}

func (d *Dispatcher) Notify(recipients []string, message string) error {
	n := Notification{Recipients: recipients, Message: message, At: time.Now()}
	select {
	case d.ch <- n:
	default:
		logger.Error("notification buffer full, dropping", zap.Strings("recipients", recipients))
	}
	return nil
}
