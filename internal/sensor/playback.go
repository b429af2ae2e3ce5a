package sensor

import (
	"sync"
)

// Playback replays a fixed sequence of ticks.
type Playback struct {
	ticks   []*Tick
	index   int
	loop    bool
	fps     int
	mu      sync.Mutex
	running bool
}

// NewPlayback creates a source over ticks. With loop set, playback restarts at
// the first tick once exhausted.
func NewPlayback(ticks []*Tick, loop bool) *Playback {
	return &Playback{
		ticks: ticks,
		loop:  loop,
		fps:   DefaultFPS,
	}
}

func (p *Playback) Open() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.running = true
	p.index = 0
	return nil
}

func (p *Playback) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.running = false
	return nil
}

func (p *Playback) ReadTick() (*Tick, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.running {
		return nil, ErrSourceNotOpen
	}
	if len(p.ticks) == 0 {
		return nil, ErrNoMoreTicks
	}

	if p.index >= len(p.ticks) {
		if !p.loop {
			return nil, ErrNoMoreTicks
		}
		p.index = 0
	}

	t := p.ticks[p.index]
	p.index++
	return t, nil
}

// SetFPS overrides the reported frame rate. Values <= 0 are ignored.
func (p *Playback) SetFPS(fps int) {
	if fps <= 0 {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.fps = fps
}

func (p *Playback) FPS() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.fps
}

func (p *Playback) IsOpen() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

// SetTicks replaces the tick sequence and rewinds.
func (p *Playback) SetTicks(ticks []*Tick) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.ticks = ticks
	p.index = 0
}

// Reset restarts playback from the beginning.
func (p *Playback) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.index = 0
}
