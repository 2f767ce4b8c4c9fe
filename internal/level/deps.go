package level

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/tui-skybattle/internal/clock"
	"github.com/vovakirdan/tui-skybattle/internal/collision"
	"github.com/vovakirdan/tui-skybattle/internal/entity"
	"github.com/vovakirdan/tui-skybattle/internal/world"
)

// Cue names an audio notification.
type Cue string

const (
	CueFire    Cue = "fire"
	CueShield  Cue = "shield"
	CueVictory Cue = "victory"
	CueDefeat  Cue = "defeat"
)

// AudioCue plays fire-and-forget sound notifications.
type AudioCue interface {
	Play(cue Cue)
}

// BestTimeStore keeps the fastest winning time per level.
// A missing record is reported with ok == false.
type BestTimeStore interface {
	BestTime(levelID string) (seconds float64, ok bool, err error)
	SetBestTime(levelID string, seconds float64) error
}

// TickStats describes one completed tick.
type TickStats struct {
	Collisions collision.Report
	Spawned    int
	Swept      int
	Duration   time.Duration
}

// Observer receives display updates after every tick and the outcome of
// the attempt.
type Observer interface {
	OnTick(s Snapshot, stats TickStats)
	OnFinish(r Result)
}

// CloseObserver is implemented by observers that must know when an
// attempt is torn down, finished or not.
type CloseObserver interface {
	OnClose(level string)
}

// Deps are the collaborators of a Controller. Nil fields fall back to
// no-op implementations.
type Deps struct {
	Renderer  world.Renderer
	Audio     AudioCue
	BestTimes BestTimeStore
	Observer  Observer
	Logger    *log.Logger
	Time      clock.TimeSource
}

func (d Deps) withDefaults() Deps {
	if d.Renderer == nil {
		d.Renderer = nopRenderer{}
	}
	if d.Audio == nil {
		d.Audio = nopAudio{}
	}
	if d.BestTimes == nil {
		d.BestTimes = nopBestTimes{}
	}
	if d.Observer == nil {
		d.Observer = nopObserver{}
	}
	if d.Logger == nil {
		d.Logger = log.New(io.Discard)
	}
	if d.Time == nil {
		d.Time = clock.SystemTime{}
	}
	return d
}

type nopRenderer struct{}

func (nopRenderer) Place(*entity.Entity) {}
func (nopRenderer) Evict(*entity.Entity) {}

type nopAudio struct{}

func (nopAudio) Play(Cue) {}

type nopBestTimes struct{}

func (nopBestTimes) BestTime(string) (float64, bool, error) { return 0, false, nil }
func (nopBestTimes) SetBestTime(string, float64) error      { return nil }

type nopObserver struct{}

func (nopObserver) OnTick(Snapshot, TickStats) {}
func (nopObserver) OnFinish(Result)            {}

// Observers fans notifications out to several observers in order.
type Observers []Observer

// OnTick implements Observer.
func (os Observers) OnTick(s Snapshot, stats TickStats) {
	for _, o := range os {
		if o != nil {
			o.OnTick(s, stats)
		}
	}
}

// OnFinish implements Observer.
func (os Observers) OnFinish(r Result) {
	for _, o := range os {
		if o != nil {
			o.OnFinish(r)
		}
	}
}

// OnClose implements CloseObserver for the members that support it.
func (os Observers) OnClose(level string) {
	for _, o := range os {
		if co, ok := o.(CloseObserver); ok {
			co.OnClose(level)
		}
	}
}
