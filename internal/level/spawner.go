package level

import "math/rand"

// WaveSpawner is the stateful spawn policy. It walks through the waves as
// the player's kill count grows and never lets the live enemy count exceed
// the cap of the current wave.
type WaveSpawner struct {
	waves   []Wave
	index   int
	base    int // kills when the current wave began
	spawned int // spawns in the current wave
}

// NewWaveSpawner creates a spawner starting at the first wave.
func NewWaveSpawner(waves []Wave) *WaveSpawner {
	return &WaveSpawner{waves: waves}
}

// Index returns the current wave index. Equal to Len once complete.
func (s *WaveSpawner) Index() int { return s.index }

// Len returns the number of waves.
func (s *WaveSpawner) Len() int { return len(s.waves) }

// Current returns the active wave.
func (s *WaveSpawner) Current() (Wave, bool) {
	if s.Complete() {
		return Wave{}, false
	}
	return s.waves[s.index], true
}

// Complete reports whether every wave has been cleared.
func (s *WaveSpawner) Complete() bool {
	return s.index >= len(s.waves)
}

// Exhausted reports whether the current wave has spawned its whole total.
func (s *WaveSpawner) Exhausted() bool {
	w, ok := s.Current()
	return ok && w.Total > 0 && s.spawned >= w.Total
}

// Spawned returns the spawns of the current wave so far.
func (s *WaveSpawner) Spawned() int { return s.spawned }

// Advance moves past every wave whose kill requirement is met. Returns
// true if the wave changed.
func (s *WaveSpawner) Advance(kills int) bool {
	changed := false
	for !s.Complete() {
		w := s.waves[s.index]
		if w.KillsToAdvance <= 0 || kills-s.base < w.KillsToAdvance {
			break
		}
		s.index++
		s.base = kills
		s.spawned = 0
		changed = true
	}
	return changed
}

// Plan rolls one spawn per free slot of the current wave and returns the
// archetype and number of enemies to create this tick.
func (s *WaveSpawner) Plan(alive int, rng *rand.Rand) (archetype string, n int) {
	w, ok := s.Current()
	if !ok {
		return "", 0
	}
	for slot := alive; slot < w.Cap; slot++ {
		if w.Total > 0 && s.spawned+n >= w.Total {
			break
		}
		if rng.Float64() < w.SpawnProbability {
			n++
		}
	}
	s.spawned += n
	return w.Archetype, n
}
