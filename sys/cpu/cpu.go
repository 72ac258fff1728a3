package cpu

import (
	"context"
	"os"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/pkg/errors"
	"github.com/shirou/gopsutil/v4/process"
	"go.uber.org/atomic"
	"go.uber.org/zap"

	"perfoverlay/rolling"
)

const (
	interval = time.Millisecond * 500
	// smoothing horizon for the reported usage, ms
	smoothing = 2000.0
)

type CPU interface {
	// Usage is the percentage of one core used since the previous call.
	Usage() (float64, error)
}

type processCPU struct {
	proc *process.Process
}

func NewProcessCPU(pid int32) (CPU, error) {
	p, err := process.NewProcess(pid)
	if err != nil {
		return nil, errors.Wrapf(err, "open process %d", pid)
	}
	return &processCPU{proc: p}, nil
}

func Self() (CPU, error) {
	return NewProcessCPU(int32(os.Getpid()))
}

func (c *processCPU) Usage() (float64, error) {
	// 0 interval compares against the previous call
	return c.proc.Percent(0)
}

// Monitor polls a CPU every interval and keeps a smoothed reading.
type Monitor struct {
	cpu   CPU
	clock clockwork.Clock
	log   *zap.Logger

	counter rolling.RollingCounter
	usage   atomic.Float64
}

func NewMonitor(cpu CPU, clock clockwork.Clock, log *zap.Logger) *Monitor {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Monitor{
		cpu:     cpu,
		clock:   clock,
		log:     log,
		counter: rolling.MustEWMA(smoothing),
	}
}

func (m *Monitor) Run(ctx context.Context) {
	ticker := m.clock.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			m.sample()
		}
	}
}

func (m *Monitor) sample() {
	u, err := m.cpu.Usage()
	if err != nil {
		m.log.Debug("cpu usage unavailable", zap.Error(err))
		return
	}
	m.counter.Update(u, float64(interval/time.Millisecond))
	m.usage.Store(m.counter.Current())
}

func (m *Monitor) Usage() float64 {
	return m.usage.Load()
}
