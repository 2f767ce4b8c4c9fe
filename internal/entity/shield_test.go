package entity

import "testing"

func TestShieldCharges(t *testing.T) {
	s := NewPlayerShield(0, 1)
	if s.Max != DefaultShieldMax {
		t.Errorf("Max = %d, expected default %d", s.Max, DefaultShieldMax)
	}
	if s.Absorb(1) {
		t.Error("inactive shield should not absorb")
	}
	if !s.Activate() {
		t.Fatal("first activation should succeed")
	}
	if s.Activate() {
		t.Error("activation while active should fail")
	}

	for i := 0; i < DefaultShieldMax; i++ {
		s.Absorb(1)
	}
	if s.Active {
		t.Fatal("shield should collapse at max")
	}
	if s.Activate() {
		t.Error("activation without charges should fail")
	}
}

func TestTimedShield(t *testing.T) {
	s := NewTimedShield(3)
	s.Activate()

	for i := 0; i < 10; i++ {
		if !s.Absorb(4) {
			t.Fatal("timed shield absorbs any amount while up")
		}
	}
	s.Tick()
	s.Tick()
	if !s.Active {
		t.Fatal("shield dropped before MaxFrames")
	}
	s.Tick()
	if s.Active {
		t.Error("shield should drop after MaxFrames ticks")
	}
	if !s.Activate() {
		t.Error("timed shield should be reusable")
	}
}
