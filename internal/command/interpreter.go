package command

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/skyward/flightcore/internal/util"
)

// Verbs the dispatcher routes on. Handlers are registered per verb by the
// engine wiring at startup.
const (
	VerbThrottle    = "throttle"
	VerbBrake       = "brake"
	VerbTurnLeft    = "turn-left"
	VerbTurnRight   = "turn-right"
	VerbClimb       = "climb"
	VerbDescend     = "descend"
	VerbStrafeLeft  = "strafe-left"
	VerbStrafeRight = "strafe-right"
	VerbSpeed       = "speed"
	VerbFlyTo       = "fly-to"
	VerbOrbit       = "orbit"
	VerbStopOrbit   = "stop-orbit"
	VerbClear       = "clear"
	VerbReset       = "reset"
	VerbStatus      = "status"
)

// ErrUnknownUtterance is returned when no grammar rule matches.
var ErrUnknownUtterance = errors.New("command: unrecognized utterance")

// phrase rules are matched against the normalized utterance, longest prefix
// first. A rule either consumes the whole utterance (rest must be empty) or
// passes the remainder on as arguments.
type rule struct {
	prefix   string
	verb     string
	wantRest bool // remainder becomes Args; otherwise remainder must be empty
}

var rules = []rule{
	{prefix: "orbit around", verb: VerbOrbit, wantRest: true},
	{prefix: "circle around", verb: VerbOrbit, wantRest: true},
	{prefix: "orbit", verb: VerbOrbit, wantRest: true},
	{prefix: "stop orbiting", verb: VerbStopOrbit},
	{prefix: "stop orbit", verb: VerbStopOrbit},
	{prefix: "fly to", verb: VerbFlyTo, wantRest: true},
	{prefix: "go to", verb: VerbFlyTo, wantRest: true},
	{prefix: "head to", verb: VerbFlyTo, wantRest: true},
	{prefix: "speed up", verb: VerbThrottle},
	{prefix: "speed", verb: VerbSpeed, wantRest: true},
	{prefix: "turn left", verb: VerbTurnLeft},
	{prefix: "turn right", verb: VerbTurnRight},
	{prefix: "left", verb: VerbTurnLeft},
	{prefix: "right", verb: VerbTurnRight},
	{prefix: "strafe left", verb: VerbStrafeLeft},
	{prefix: "strafe right", verb: VerbStrafeRight},
	{prefix: "slide left", verb: VerbStrafeLeft},
	{prefix: "slide right", verb: VerbStrafeRight},
	{prefix: "faster", verb: VerbThrottle},
	{prefix: "throttle", verb: VerbThrottle},
	{prefix: "slow down", verb: VerbBrake},
	{prefix: "slower", verb: VerbBrake},
	{prefix: "brake", verb: VerbBrake},
	{prefix: "go up", verb: VerbClimb},
	{prefix: "climb", verb: VerbClimb},
	{prefix: "up", verb: VerbClimb},
	{prefix: "go down", verb: VerbDescend},
	{prefix: "descend", verb: VerbDescend},
	{prefix: "down", verb: VerbDescend},
	{prefix: "stop", verb: VerbClear},
	{prefix: "cancel", verb: VerbClear},
	{prefix: "clear", verb: VerbClear},
	{prefix: "reset", verb: VerbReset},
	{prefix: "status", verb: VerbStatus},
}

// Interpret matches an utterance against the command grammar and returns
// the event to dispatch. The utterance is normalized first, so casing,
// punctuation, and spacing do not matter.
func Interpret(utterance string, heard time.Time) (Event, error) {
	text := util.Normalize(utterance)
	if text == "" {
		return Event{}, ErrUnknownUtterance
	}

	for _, r := range rules {
		rest, ok := matchPrefix(text, r.prefix)
		if !ok {
			continue
		}
		if r.wantRest {
			if rest == "" {
				continue
			}
			return Event{Verb: r.verb, Args: strings.Fields(rest), Heard: heard}, nil
		}
		if rest != "" {
			continue
		}
		return Event{Verb: r.verb, Heard: heard}, nil
	}

	return Event{}, ErrUnknownUtterance
}

// matchPrefix matches a whole-word prefix and returns the remainder.
func matchPrefix(text, prefix string) (string, bool) {
	if text == prefix {
		return "", true
	}
	if strings.HasPrefix(text, prefix+" ") {
		return strings.TrimSpace(text[len(prefix):]), true
	}
	return "", false
}

// SpeedArg parses the numeric argument of a speed event in m/s.
func SpeedArg(e Event) (float64, error) {
	if len(e.Args) == 0 {
		return 0, errors.New("command: speed requires a value")
	}
	v, err := strconv.ParseFloat(e.Args[0], 64)
	if err != nil {
		return 0, errors.New("command: speed value is not a number")
	}
	if v < 0 {
		return 0, errors.New("command: speed must not be negative")
	}
	return v, nil
}

// PlaceArg joins the free-text arguments of a fly-to or orbit event back
// into the spoken place name.
func PlaceArg(e Event) string {
	return strings.Join(e.Args, " ")
}
