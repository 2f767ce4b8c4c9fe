package tui

import (
	"io"

	"github.com/vovakirdan/tui-skybattle/internal/level"
)

// Bell is a level.AudioCue that rings the terminal bell. Frequent cues
// (fire) stay silent.
type Bell struct {
	out     io.Writer
	enabled bool
}

// NewBell creates a bell writing to out. A disabled bell ignores every cue.
func NewBell(out io.Writer, enabled bool) *Bell {
	return &Bell{out: out, enabled: enabled}
}

// Play implements level.AudioCue.
func (b *Bell) Play(cue level.Cue) {
	if b == nil || !b.enabled || b.out == nil {
		return
	}
	switch cue {
	case level.CueShield, level.CueVictory, level.CueDefeat:
		//nolint:errcheck // Best-effort notification
		b.out.Write([]byte{'\a'})
	}
}
