package hotkey

import (
	"testing"

	"github.com/dshills/keyloop/internal/input/key"
)

const (
	start Trigger = "start"
	stop  Trigger = "stop"
)

var (
	ctrlL = key.Of(key.CtrlL)
	ctrlR = key.Of(key.CtrlR)
	altL  = key.Of(key.AltL)
	keyB  = key.Code(0x42)
	keyH  = key.Code(0x48)
	keyX  = key.Code(0x58)
)

func newListener(t *testing.T) *Listener {
	t.Helper()
	l := NewListener()
	for trig, spec := range map[Trigger]string{start: "<ctrl>+<alt>+b", stop: "<ctrl>+<alt>+h"} {
		h, err := Parse(spec)
		if err != nil {
			t.Fatalf("Parse(%q) error = %v", spec, err)
		}
		l.Bind(trig, h)
	}
	return l
}

type step struct {
	k       key.Key
	pressed bool
}

func run(l *Listener, steps ...step) []Trigger {
	var fired []Trigger
	for _, s := range steps {
		fired = append(fired, l.Handle(s.k, s.pressed)...)
	}
	return fired
}

func TestPressThenReleaseFires(t *testing.T) {
	l := newListener(t)
	fired := run(l,
		step{ctrlL, true}, step{altL, true}, step{keyB, true},
		step{keyB, false}, step{altL, false}, step{ctrlL, false},
	)
	if len(fired) != 1 || fired[0] != start {
		t.Errorf("fired = %v, want [start]", fired)
	}
}

func TestAnyPhysicalOrder(t *testing.T) {
	l := newListener(t)
	fired := run(l,
		step{keyB, true}, step{altL, true}, step{ctrlR, true},
		step{ctrlR, false}, step{keyB, false}, step{altL, false},
	)
	if len(fired) != 1 || fired[0] != start {
		t.Errorf("fired = %v, want [start]", fired)
	}
}

func TestPressAloneDoesNotFire(t *testing.T) {
	l := newListener(t)
	fired := run(l, step{ctrlL, true}, step{altL, true}, step{keyH, true})
	if len(fired) != 0 {
		t.Errorf("fired before release: %v", fired)
	}
	if !l.Hotkey(stop).Armed() {
		t.Error("stop chord should be armed while fully held")
	}
	fired = run(l, step{keyH, false})
	if len(fired) != 1 || fired[0] != stop {
		t.Errorf("fired = %v, want [stop]", fired)
	}
}

func TestPartialChordDoesNotFire(t *testing.T) {
	l := newListener(t)
	fired := run(l,
		step{ctrlL, true}, step{keyB, true},
		step{keyB, false}, step{ctrlL, false},
	)
	if len(fired) != 0 {
		t.Errorf("partial chord fired: %v", fired)
	}
}

func TestUnrelatedKeysIgnored(t *testing.T) {
	l := newListener(t)
	fired := run(l,
		step{ctrlL, true}, step{keyX, true}, step{altL, true}, step{keyB, true},
		step{keyX, false}, step{keyB, false},
	)
	if len(fired) != 1 || fired[0] != start {
		t.Errorf("fired = %v, want [start]", fired)
	}
}

func TestFiresOncePerChord(t *testing.T) {
	l := newListener(t)
	fired := run(l,
		step{ctrlL, true}, step{altL, true}, step{keyB, true},
		step{keyB, false}, step{altL, false}, step{ctrlL, false},
		step{ctrlL, true}, step{altL, true}, step{keyB, true},
		step{ctrlL, false}, step{altL, false}, step{keyB, false},
	)
	if len(fired) != 2 {
		t.Errorf("fired = %v, want two starts", fired)
	}
}

func TestSharedModifiersRetrigger(t *testing.T) {
	// Holding ctrl+alt, tapping b then h fires start then stop.
	l := newListener(t)
	fired := run(l,
		step{ctrlL, true}, step{altL, true},
		step{keyB, true}, step{keyB, false},
		step{keyH, true}, step{keyH, false},
	)
	if len(fired) != 2 || fired[0] != start || fired[1] != stop {
		t.Errorf("fired = %v, want [start stop]", fired)
	}
}

func TestReset(t *testing.T) {
	l := newListener(t)
	run(l, step{ctrlL, true}, step{altL, true}, step{keyB, true})
	l.Reset()
	if fired := run(l, step{keyB, false}); len(fired) != 0 {
		t.Errorf("fired after reset: %v", fired)
	}
}

func TestNewRejectsEmpty(t *testing.T) {
	if _, err := New(nil); err == nil {
		t.Error("New(nil) should fail")
	}
	if _, err := New([]key.Key{{}}); err == nil {
		t.Error("New with zero key should fail")
	}
}

func TestHotkeyString(t *testing.T) {
	h, err := Parse("<ctrl_l>+<alt>+b")
	if err != nil {
		t.Fatal(err)
	}
	if got := h.String(); got != "<ctrl>+<alt>+b" {
		t.Errorf("String() = %q", got)
	}
}
