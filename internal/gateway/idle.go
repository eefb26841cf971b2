package gateway

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"
)

type IdleState int

const (
	Idle IdleState = iota
	Booting
	Online
)

func (s IdleState) String() string {
	switch s {
	case Booting:
		return "Booting"
	case Online:
		return "Online"
	}
	return "Idle"
}

// IdleStatus is the state of the bot host as seen by the gateway. Since is
// zero while Online.
type IdleStatus struct {
	State IdleState
	Since time.Time
}

func (s IdleStatus) MarshalJSON() ([]byte, error) {
	out := struct {
		Status string `json:"status"`
		Since  *int64 `json:"since,omitempty"`
	}{Status: s.State.String()}
	if s.State != Online {
		ms := s.Since.UnixMilli()
		out.Since = &ms
	}
	return json.Marshal(out)
}

// IdleMonitor owns the idle status. Only its Run goroutine changes the
// state; everything else talks to it over channels.
type IdleMonitor struct {
	log      *zap.SugaredLogger
	now      func() time.Time
	activity chan struct{}
	boot     chan struct{}
	requests chan chan IdleStatus
	shutdown chan struct{}
}

func NewIdleMonitor(log *zap.SugaredLogger) *IdleMonitor {
	return &IdleMonitor{
		log:      log,
		now:      time.Now,
		activity: make(chan struct{}, 1),
		boot:     make(chan struct{}, 1),
		requests: make(chan chan IdleStatus),
		shutdown: make(chan struct{}, 1),
	}
}

// Run processes inputs until ctx is done. The monitor starts Idle.
func (m *IdleMonitor) Run(ctx context.Context) {
	status := IdleStatus{State: Idle, Since: m.now()}
	set := func(next IdleStatus) {
		if next.State != status.State {
			m.log.Infow("idle status changed", "from", status.State.String(), "to", next.State.String())
		}
		status = next
	}
	onActivity := func() { set(IdleStatus{State: Online}) }
	onBoot := func() {
		if status.State == Idle {
			set(IdleStatus{State: Booting, Since: m.now()})
		}
	}
	onShutdown := func() { set(IdleStatus{State: Idle, Since: m.now()}) }

	for {
		select {
		case <-ctx.Done():
			return
		case <-m.activity:
			onActivity()
		case <-m.boot:
			onBoot()
		case <-m.shutdown:
			onShutdown()
		case reply := <-m.requests:
			// inputs sent before the request must be reflected in the answer
			for pending := true; pending; {
				select {
				case <-m.activity:
					onActivity()
				case <-m.boot:
					onBoot()
				case <-m.shutdown:
					onShutdown()
				default:
					pending = false
				}
			}
			reply <- status
		}
	}
}

// Observe records bus activity. It never blocks.
func (m *IdleMonitor) Observe() {
	select {
	case m.activity <- struct{}{}:
	default:
	}
}

// Boot marks the bot host as starting if it is idle.
func (m *IdleMonitor) Boot() {
	select {
	case m.boot <- struct{}{}:
	default:
	}
}

func (m *IdleMonitor) Shutdown() {
	select {
	case m.shutdown <- struct{}{}:
	default:
	}
}

// Status asks the monitor for the current status.
func (m *IdleMonitor) Status(ctx context.Context) (IdleStatus, error) {
	reply := make(chan IdleStatus, 1)
	select {
	case m.requests <- reply:
	case <-ctx.Done():
		return IdleStatus{}, ctx.Err()
	}
	select {
	case s := <-reply:
		return s, nil
	case <-ctx.Done():
		return IdleStatus{}, ctx.Err()
	}
}
