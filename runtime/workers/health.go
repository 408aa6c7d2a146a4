package workers

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/shirou/gopsutil/process"

	"telechat/runtime"
)

// HealthMonitor periodically logs process-level metrics (CPU, RSS, status)
// together with the hub gauges: live connections, live rooms, and open rate
// windows.
type HealthMonitor struct {
	log        *slog.Logger
	registry   *runtime.Registry
	membership *runtime.Membership
	limiter    *runtime.RateLimiter
	interval   time.Duration
}

func NewHealthMonitor(log *slog.Logger, registry *runtime.Registry,
	membership *runtime.Membership, limiter *runtime.RateLimiter,
	interval time.Duration) *HealthMonitor {
	return &HealthMonitor{
		log:        log,
		registry:   registry,
		membership: membership,
		limiter:    limiter,
		interval:   interval,
	}
}

func (w *HealthMonitor) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			rss, cpu, status, err := selfStats(p)
			if err != nil {
				w.log.Error("Failed to collect self stats", "error", err)
				continue
			}
			w.log.Info("Health report",
				"pid_status", status,
				"cpu_percent", cpu,
				"ram_bytes", rss,
				"connections", w.registry.Len(),
				"rooms", w.membership.Len(),
				"rate_windows", w.limiter.Len())
		}
	}
}

// selfStats retrieves memory, CPU, and OS status for the given process.
func selfStats(p *process.Process) (uint64, float64, string, error) {
	memInfo, err := p.MemoryInfo()
	if err != nil {
		return 0, 0, "", err
	}
	cpuPercent, err := p.CPUPercent()
	if err != nil {
		return 0, 0, "", err
	}
	status, err := p.Status()
	if err != nil {
		return 0, 0, "", err
	}
	return memInfo.RSS, cpuPercent, status, nil
}
