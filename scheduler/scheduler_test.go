package scheduler

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type firedTimeout struct {
	requestId string
	stepIndex int
}

type recorder struct {
	mu    sync.Mutex
	fired []firedTimeout
}

func (r *recorder) onTimeout(requestId string, stepIndex int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fired = append(r.fired, firedTimeout{requestId: requestId, stepIndex: stepIndex})
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.fired)
}

func newTestScheduler(t *testing.T) (*WheelScheduler, *recorder) {
	t.Helper()
	rec := &recorder{}
	s := NewWheelScheduler(time.Millisecond, 64, rec.onTimeout)
	s.Start()
	t.Cleanup(s.Stop)
	return s, rec
}

func TestSchedulerFires(t *testing.T) {
	s, rec := newTestScheduler(t)

	s.Arm("r1", 0, 20*time.Millisecond)
	require.Eventually(t, func() bool { return rec.count() == 1 }, time.Second, 5*time.Millisecond)

	rec.mu.Lock()
	defer rec.mu.Unlock()
	require.Equal(t, firedTimeout{requestId: "r1", stepIndex: 0}, rec.fired[0])
}

func TestSchedulerCancel(t *testing.T) {
	s, rec := newTestScheduler(t)

	s.Arm("r1", 0, 30*time.Millisecond)
	s.Cancel("r1")

	time.Sleep(100 * time.Millisecond)
	require.Equal(t, 0, rec.count())

	// cancelling again, or with nothing armed, is a no-op
	s.Cancel("r1")
	s.Cancel("never-armed")
}

func TestSchedulerRearmReplaces(t *testing.T) {
	s, rec := newTestScheduler(t)

	s.Arm("r1", 0, 30*time.Millisecond)
	s.Arm("r1", 1, 30*time.Millisecond)

	time.Sleep(150 * time.Millisecond)
	require.Equal(t, 1, rec.count())

	rec.mu.Lock()
	defer rec.mu.Unlock()
	require.Equal(t, 1, rec.fired[0].stepIndex)
}

func TestSchedulerZeroSla(t *testing.T) {
	s, rec := newTestScheduler(t)

	s.Arm("r1", 0, 0)
	time.Sleep(50 * time.Millisecond)
	require.Equal(t, 0, rec.count())
}
