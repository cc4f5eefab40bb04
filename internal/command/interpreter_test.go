package command

import (
	"errors"
	"testing"
	"time"
)

func TestInterpret(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantVerb string
		wantArgs []string
	}{
		{"turn left", "turn left", VerbTurnLeft, nil},
		{"bare left", "Left!", VerbTurnLeft, nil},
		{"turn right", "turn right", VerbTurnRight, nil},
		{"throttle", "faster", VerbThrottle, nil},
		{"speed up is throttle", "speed up", VerbThrottle, nil},
		{"brake", "slow down", VerbBrake, nil},
		{"climb", "go up", VerbClimb, nil},
		{"descend", "Descend.", VerbDescend, nil},
		{"strafe", "strafe right", VerbStrafeRight, nil},
		{"explicit speed", "speed 80", VerbSpeed, []string{"80"}},
		{"fly to place", "fly to the old lighthouse", VerbFlyTo, []string{"the", "old", "lighthouse"}},
		{"go to alias", "go to Harbor Tower", VerbFlyTo, []string{"harbor", "tower"}},
		{"orbit place", "orbit around the tower", VerbOrbit, []string{"the", "tower"}},
		{"bare orbit", "orbit harbor", VerbOrbit, []string{"harbor"}},
		{"stop orbiting", "stop orbiting", VerbStopOrbit, nil},
		{"stop is clear", "stop", VerbClear, nil},
		{"cancel is clear", "Cancel", VerbClear, nil},
		{"reset", "reset", VerbReset, nil},
	}

	heard := time.Now()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, err := Interpret(tt.input, heard)
			if err != nil {
				t.Fatalf("Interpret(%q) error: %v", tt.input, err)
			}
			if e.Verb != tt.wantVerb {
				t.Errorf("Interpret(%q) verb = %q, want %q", tt.input, e.Verb, tt.wantVerb)
			}
			if len(e.Args) != len(tt.wantArgs) {
				t.Fatalf("Interpret(%q) args = %v, want %v", tt.input, e.Args, tt.wantArgs)
			}
			for i := range e.Args {
				if e.Args[i] != tt.wantArgs[i] {
					t.Errorf("Interpret(%q) args = %v, want %v", tt.input, e.Args, tt.wantArgs)
					break
				}
			}
			if !e.Heard.Equal(heard) {
				t.Error("event should carry the recognition time")
			}
		})
	}
}

func TestInterpret_Unknown(t *testing.T) {
	for _, input := range []string{"", "   ", "do a barrel roll", "fly to", "orbit"} {
		if _, err := Interpret(input, time.Now()); !errors.Is(err, ErrUnknownUtterance) {
			t.Errorf("Interpret(%q) should fail with ErrUnknownUtterance, got %v", input, err)
		}
	}
}

func TestSpeedArg(t *testing.T) {
	if v, err := SpeedArg(Event{Verb: VerbSpeed, Args: []string{"42.5"}}); err != nil || v != 42.5 {
		t.Errorf("SpeedArg = %v, %v", v, err)
	}
	if _, err := SpeedArg(Event{Verb: VerbSpeed}); err == nil {
		t.Error("expected error for missing value")
	}
	if _, err := SpeedArg(Event{Verb: VerbSpeed, Args: []string{"fast"}}); err == nil {
		t.Error("expected error for non-numeric value")
	}
	if _, err := SpeedArg(Event{Verb: VerbSpeed, Args: []string{"-5"}}); err == nil {
		t.Error("expected error for negative value")
	}
}

func TestPlaceArg(t *testing.T) {
	e := Event{Verb: VerbFlyTo, Args: []string{"the", "old", "lighthouse"}}
	if got := PlaceArg(e); got != "the old lighthouse" {
		t.Errorf("PlaceArg = %q", got)
	}
}
