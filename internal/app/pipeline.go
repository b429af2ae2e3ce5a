package app

import (
	"errors"
	"time"

	"gocv.io/x/gocv"

	"github.com/ayusman/handfusion/internal/fusion"
	"github.com/ayusman/handfusion/internal/sensor"
	"github.com/ayusman/handfusion/internal/skeleton"
)

// fpsSetter is implemented by sources whose rate can be changed.
type fpsSetter interface {
	SetFPS(fps int)
}

// runLoop is the tick loop. It starts in idle mode, switches to the active
// rate once a target skeleton is tracked and falls back to idle after the
// target has been missing for IdleTimeout.
func (a *App) runLoop(stopCh <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	activeMode := false
	lastTarget := time.Now()

	a.setRate(a.config.IdleFPS)
	ticker := time.NewTicker(interval(a.config.IdleFPS))
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
		}

		if !a.IsEnabled() {
			continue
		}

		summary, err := a.step()
		if errors.Is(err, sensor.ErrNoMoreTicks) {
			a.logger.Info("sensor stream ended")
			return
		}
		if err != nil {
			continue
		}

		if summary.SkeletonID >= 0 {
			lastTarget = time.Now()
			if !activeMode {
				activeMode = true
				a.setActive(true)
				a.setRate(a.config.FPS)
				ticker.Reset(interval(a.config.FPS))
				a.logger.Info("switched to active mode", "skeleton", summary.SkeletonID)
			}
		} else if activeMode && time.Since(lastTarget) > a.config.IdleTimeout {
			activeMode = false
			a.setActive(false)
			a.setRate(a.config.IdleFPS)
			ticker.Reset(interval(a.config.IdleFPS))
			a.logger.Info("switched to idle mode")
		}
	}
}

// step reads and processes one tick and publishes its results.
func (a *App) step() (fusion.Summary, error) {
	tick, err := a.config.Source.ReadTick()
	if err != nil {
		if !errors.Is(err, sensor.ErrNoMoreTicks) {
			a.tickFailed("read", err)
		}
		return fusion.Summary{}, err
	}

	start := time.Now()
	res, err := a.config.Orchestrator.Process(tick)
	if err != nil {
		a.tickFailed("process", err)
		return fusion.Summary{}, err
	}
	summary := res.Summary()

	if m := a.config.Metrics; m != nil {
		m.ObserveTick(time.Since(start))
		for _, h := range summary.Hands {
			m.SetHand(h.Side, h.Present, h.SkinArea, h.ObjectFound)
		}
	}

	if p := a.config.Publisher; p != nil {
		p.Publish(a.encode(res, p.WatchedViews()), summary)
	}
	if o := a.config.Observer; o != nil {
		o.Observe(summary)
	}

	a.mu.Lock()
	a.ticks++
	a.last = summary
	ticks := a.ticks
	a.mu.Unlock()

	if a.config.Store != nil && ticks%a.config.CheckpointEvery == 0 {
		if err := a.config.Store.Sessions().UpdateTicks(a.sessionID, ticks); err != nil {
			a.logger.Warn("failed to checkpoint session", "error", err)
		}
	}

	for _, side := range skeleton.Sides {
		h := res.Hand(side)
		if h.Present && !h.SkinConfident && !summary.Degraded {
			a.logger.Debug("low skin area", "side", side.String(), "area", h.SkinArea, "tick", tick.Number)
		}
	}

	return summary, nil
}

// encode JPEG-encodes the requested views. Views that are unavailable this
// tick, such as those of an absent hand, are left out.
func (a *App) encode(res *fusion.Result, views []string) map[string][]byte {
	frames := make(map[string][]byte, len(views))
	params := []int{int(gocv.IMWriteJpegQuality), a.config.JPEGQuality}

	for _, name := range views {
		m, ok := res.View(name)
		if !ok || m.Empty() {
			continue
		}
		buf, err := gocv.IMEncodeWithParams(gocv.JPEGFileExt, *m, params)
		if err != nil {
			a.tickFailed("encode", err)
			continue
		}
		frames[name] = buf.GetBytes()
		buf.Close()
	}
	return frames
}

func (a *App) tickFailed(stage string, err error) {
	a.mu.Lock()
	a.errs++
	a.mu.Unlock()

	if a.config.Metrics != nil {
		a.config.Metrics.IncTickErrors(stage)
	}
	a.logger.Warn("tick failed", "stage", stage, "error", err)
}

func (a *App) setActive(active bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.active = active
}

func (a *App) setRate(fps int) {
	if s, ok := a.config.Source.(fpsSetter); ok {
		s.SetFPS(fps)
	}
}

func interval(fps int) time.Duration {
	return time.Second / time.Duration(fps)
}
