package workers

import (
	"context"
	"log/slog"
	"time"

	"telechat/domain"
	"telechat/runtime"
)

// LivenessMonitor detects dead connections the transport has not reported
// closed. On a fixed interval it sweeps the registry: connections silent for
// longer than the timeout are marked closing, their transport closed, and
// the shared cleanup path run with the connection's own generation so the
// stale-close guard applies uniformly. Everything else gets a ping whose
// pong refreshes the heartbeat timestamp.
type LivenessMonitor struct {
	log      *slog.Logger
	registry *runtime.Registry
	router   *runtime.Router
	interval time.Duration
	timeout  time.Duration
	clock    func() time.Time
}

func NewLivenessMonitor(log *slog.Logger, registry *runtime.Registry,
	router *runtime.Router, interval, timeout time.Duration) *LivenessMonitor {
	return &LivenessMonitor{
		log:      log,
		registry: registry,
		router:   router,
		interval: interval,
		timeout:  timeout,
		clock:    time.Now,
	}
}

// WithClock injects the time source, for tests.
func (w *LivenessMonitor) WithClock(clock func() time.Time) *LivenessMonitor {
	w.clock = clock
	return w
}

func (w *LivenessMonitor) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Context done, stopping liveness sweep")
			return nil
		case <-ticker.C:
			w.Sweep()
		}
	}
}

// Sweep runs one probe/evict pass over every active connection.
func (w *LivenessMonitor) Sweep() {
	now := w.clock()
	for _, info := range w.registry.Snapshot() {
		if info.State != domain.StateActive {
			continue
		}

		if now.Sub(info.LastHeartbeatAt) > w.timeout {
			w.log.Warn("Connection timed out, evicting",
				"user_id", info.UserID,
				"generation", info.Generation,
				"silent_for", now.Sub(info.LastHeartbeatAt))
			w.registry.MarkClosing(info.UserID, info.Generation)
			_ = info.Transport.Close()
			w.router.Disconnect(info.UserID, info.Generation)
			continue
		}

		if err := info.Transport.Ping(); err != nil {
			w.log.Debug("Liveness probe failed",
				"user_id", info.UserID, "error", err)
		}
	}
}
