package driver

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/oshokin/sim-notifier/internal/clock"
	"github.com/oshokin/sim-notifier/internal/config"
	"github.com/oshokin/sim-notifier/internal/logger"
	"github.com/oshokin/sim-notifier/internal/notifier"
)

// Report summarizes one finished simulation run.
type Report struct {
	// SimTime is the final simulated timestamp.
	SimTime clock.Micros
	// Firings holds the number of alarm firings per control loop.
	Firings []uint64
}

// Simulation owns the hub, the simulated clock and the control loops for
// one run.
type Simulation struct {
	// cfg holds the validated driver settings.
	cfg *config.Config
	// src is the simulated time source the driver steps.
	src *clock.Simulated
	// hub is the alarm registry and coordinator this run drives.
	hub *notifier.Hub
}

// NewSimulation builds a simulation over a fresh hub and simulated clock.
// The configuration must already be validated.
func NewSimulation(cfg *config.Config) *Simulation {
	src := clock.NewSimulated()

	return &Simulation{
		cfg: cfg,
		src: src,
		hub: notifier.NewHub(src, cfg.Capacity),
	}
}

// Run executes the simulation until the configured duration of simulated
// time has elapsed or the context is canceled, then tears the hub down and
// waits for every loop to exit.
func (s *Simulation) Run(ctx context.Context) (*Report, error) {
	var (
		wg      sync.WaitGroup
		counts  = make([]atomic.Uint64, s.cfg.Loops)
		loopErr = make(chan error, s.cfg.Loops)
	)

	for i := 0; i < s.cfg.Loops; i++ {
		i := i

		wg.Add(1)

		go func() {
			defer wg.Done()

			if err := s.runLoop(ctx, i, &counts[i]); err != nil {
				loopErr <- err
			}
		}()
	}

	err := s.driveTime(ctx)

	// Teardown releases every blocked loop; they observe the terminal state
	// and return.
	s.hub.Close()
	wg.Wait()

	if err == nil {
		select {
		case err = <-loopErr:
		default:
		}
	}

	if err != nil {
		return nil, err
	}

	simTime, err := s.src.Now()
	if err != nil {
		return nil, fmt.Errorf("read simulated time: %w", err)
	}

	report := &Report{
		SimTime: simTime,
		Firings: make([]uint64, s.cfg.Loops),
	}
	for i := range counts {
		report.Firings[i] = counts[i].Load()
	}

	return report, nil
}

// runLoop is one periodic control loop: arm the alarm one period ahead,
// block until it fires, repeat. A Stopped result means the hub is tearing
// down.
func (s *Simulation) runLoop(ctx context.Context, index int, fired *atomic.Uint64) error {
	hd, err := s.hub.Initialize()
	if err != nil {
		return fmt.Errorf("allocate alarm for loop %d: %w", index, err)
	}
	defer s.hub.Clean(hd)

	s.hub.SetName(hd, fmt.Sprintf("loop-%d", index))

	now, err := s.src.Now()
	if err != nil {
		return fmt.Errorf("read simulated time: %w", err)
	}

	next := now.Add(s.cfg.LoopPeriod)

	for {
		s.hub.UpdateAlarm(hd, next)

		v := s.hub.Wait(hd)
		if v == notifier.Stopped {
			return nil
		}

		fired.Add(1)
		logger.DebugKV(ctx, "Loop fired", "loop", index, "at_us", uint64(v))

		// Skip periods lost to overshoot so the next trigger is in the future.
		for next <= v {
			next = next.Add(s.cfg.LoopPeriod)
		}
	}
}

// driveTime steps the simulated clock through the configured duration. The
// hub is paused for the whole run so waiters never sleep toward deadlines on
// the real clock; the barrier after each step is the only wakeup source.
func (s *Simulation) driveTime(ctx context.Context) error {
	if err := s.awaitLoopsArmed(ctx); err != nil {
		return err
	}

	s.hub.Pause()
	defer s.hub.Resume()

	var ticker *time.Ticker
	if s.cfg.TickInterval > 0 {
		ticker = time.NewTicker(s.cfg.TickInterval)
		defer ticker.Stop()
	}

	ticks := int(s.cfg.Duration / s.cfg.TickSize)

	for tick := 1; tick <= ticks; tick++ {
		if ticker != nil {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-ticker.C:
			}
		} else if ctx.Err() != nil {
			return ctx.Err()
		}

		s.src.Step(s.cfg.TickSize)
		s.hub.WakeupWait()

		if tick%100 == 0 {
			s.logSnapshot(ctx)
		}
	}

	return nil
}

// awaitLoopsArmed blocks until every control loop has allocated its handle
// and armed its first alarm, so the first tick cannot slip past a loop that
// has not come up yet.
func (s *Simulation) awaitLoopsArmed(ctx context.Context) error {
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		infos, total := s.hub.Info(s.cfg.Loops)
		if total == s.cfg.Loops {
			armed := 0

			for _, info := range infos {
				if info.Running {
					armed++
				}
			}

			if armed == s.cfg.Loops {
				return nil
			}
		}

		time.Sleep(time.Millisecond)
	}
}

// logSnapshot emits a periodic introspection sample.
func (s *Simulation) logSnapshot(ctx context.Context) {
	now, err := s.src.Now()
	if err != nil {
		return
	}

	logger.InfoKV(ctx, "Simulation progress",
		"sim_time_us", uint64(now),
		"live_alarms", s.hub.Count(),
		"next_timeout_us", uint64(s.hub.NextTimeout()),
	)
}
