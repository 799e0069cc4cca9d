package vmmtrap_test

import (
	"testing"

	"github.com/MROS/hypercraft/vmmtrap"
)

// TestSetTimerSurfaces covers the trap value a SetTimer exit surfaces:
// the trap constructor shape both back-ends rely on.
func TestSetTimerSurfaces(t *testing.T) {
	t.Parallel()

	trap := vmmtrap.NewSetTimer(0xDEADBEEF)

	if trap.Kind != vmmtrap.SetTimer {
		t.Fatalf("Kind: got %v, want SetTimer", trap.Kind)
	}

	if trap.Deadline != 0xDEADBEEF {
		t.Fatalf("Deadline: got %#x, want %#x", trap.Deadline, 0xDEADBEEF)
	}

	if got, want := trap.String(), "SetTimer(0xdeadbeef)"; got != want {
		t.Fatalf("String: got %q, want %q", got, want)
	}
}

func TestUnhandledTrap(t *testing.T) {
	t.Parallel()

	trap := vmmtrap.NewUnhandled(0x20, 0x1)

	if trap.Kind != vmmtrap.Unhandled {
		t.Fatalf("Kind: got %v, want Unhandled", trap.Kind)
	}

	if trap.ExitReason != 0x20 || trap.Qualification != 0x1 {
		t.Fatalf("got reason=%#x qual=%#x, want reason=0x20 qual=0x1", trap.ExitReason, trap.Qualification)
	}
}

func TestTimerInterruptEmulation(t *testing.T) {
	t.Parallel()

	trap := vmmtrap.NewTimerInterruptEmulation()

	if trap.Kind != vmmtrap.TimerInterruptEmulation {
		t.Fatalf("Kind: got %v, want TimerInterruptEmulation", trap.Kind)
	}
}

func TestKindString(t *testing.T) {
	t.Parallel()

	cases := map[vmmtrap.Kind]string{
		vmmtrap.SetTimer:                "SetTimer",
		vmmtrap.TimerInterruptEmulation: "TimerInterruptEmulation",
		vmmtrap.Unhandled:               "Unhandled",
	}

	for kind, want := range cases {
		if got := kind.String(); got != want {
			t.Fatalf("Kind(%d).String(): got %q, want %q", kind, got, want)
		}
	}
}
