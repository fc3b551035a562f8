// Package gesture interprets a continuous horizontal drag over the current
// photo card as one of three committed outcomes: keep, discard, or cancel.
// It is a pure state machine; the TUI feeds it pointer events and frame
// ticks and reads offsets back for rendering.
package gesture

import (
	"math"

	"github.com/charmbracelet/harmonica"
)

// Outcome of a completed gesture.
type Outcome int

const (
	OutcomeKeep Outcome = iota
	OutcomeDiscard
)

func (o Outcome) String() string {
	if o == OutcomeKeep {
		return "keep"
	}
	return "discard"
}

// Decision is delivered on the interpreter's channel once a keep/discard
// settle animation finishes. Cancelled gestures deliver nothing.
type Decision struct {
	Outcome Outcome
}

// Config tunes the interpreter. Zero values fall back to the defaults below.
type Config struct {
	// ReferenceWidth is the card's horizontal travel reference, sampled once
	// at mount. It must not change for the life of the interpreter.
	ReferenceWidth float64
	// ThresholdRatio is the fraction of ReferenceWidth the drag must exceed
	// to commit. Default 0.25.
	ThresholdRatio float64
	// VerticalDrag attenuates vertical movement. Default 0.3.
	VerticalDrag float64
	// MaxRotation is the rotation in degrees at full horizontal travel,
	// for visual feedback only. Default 15.
	MaxRotation float64
	// FPS is the frame rate Step is driven at. Default 60.
	FPS int
}

func (c Config) withDefaults() Config {
	if c.ThresholdRatio == 0 {
		c.ThresholdRatio = 0.25
	}
	if c.VerticalDrag == 0 {
		c.VerticalDrag = 0.3
	}
	if c.MaxRotation == 0 {
		c.MaxRotation = 15
	}
	if c.FPS == 0 {
		c.FPS = 60
	}
	return c
}

type phase int

const (
	phaseIdle phase = iota
	phaseDragging
	phaseSettling
)

// Interpreter tracks one card's gesture. Create a fresh interpreter per
// card; a settled interpreter never fires again.
type Interpreter struct {
	cfg Config

	phase            phase
	startX, startY   float64
	offsetX, offsetY float64
	velX, velY       float64
	targetX          float64

	committed bool
	outcome   Outcome
	delivered bool

	spring    harmonica.Spring
	decisions chan Decision
}

// New builds an interpreter. The decision channel is buffered so delivery
// never blocks the frame loop.
func New(cfg Config) *Interpreter {
	cfg = cfg.withDefaults()
	return &Interpreter{
		cfg: cfg,
		// Slightly underdamped, matching the springy card settle of the
		// touch interaction this mimics.
		spring:    harmonica.NewSpring(harmonica.FPS(cfg.FPS), 8.0, 0.8),
		decisions: make(chan Decision, 1),
	}
}

// Decisions delivers at most one committed decision, after settle.
func (in *Interpreter) Decisions() <-chan Decision { return in.decisions }

// Begin starts tracking a drag at the given pointer position.
func (in *Interpreter) Begin(x, y float64) {
	if in.phase != phaseIdle {
		return
	}
	in.phase = phaseDragging
	in.startX, in.startY = x, y
	in.offsetX, in.offsetY = 0, 0
	in.velX, in.velY = 0, 0
}

// Move updates the tracked offsets. Vertical movement is attenuated to keep
// the interaction horizontal.
func (in *Interpreter) Move(x, y float64) {
	if in.phase != phaseDragging {
		return
	}
	in.offsetX = x - in.startX
	in.offsetY = (y - in.startY) * in.cfg.VerticalDrag
}

// End finishes the drag and commits an outcome: beyond +threshold keeps,
// beyond -threshold discards, anything else cancels back to rest.
func (in *Interpreter) End() {
	if in.phase != phaseDragging {
		return
	}
	threshold := in.cfg.ReferenceWidth * in.cfg.ThresholdRatio
	switch {
	case in.offsetX > threshold:
		in.commit(OutcomeKeep)
	case in.offsetX < -threshold:
		in.commit(OutcomeDiscard)
	default:
		in.phase = phaseSettling
		in.committed = false
		in.targetX = 0
	}
}

// Fling synthesizes a full committed gesture, used for keyboard control.
// It follows the same settle path as a real drag.
func (in *Interpreter) Fling(o Outcome) {
	if in.phase == phaseSettling && in.committed {
		return
	}
	in.commit(o)
}

func (in *Interpreter) commit(o Outcome) {
	in.phase = phaseSettling
	in.committed = true
	in.outcome = o
	if o == OutcomeKeep {
		in.targetX = in.cfg.ReferenceWidth
	} else {
		in.targetX = -in.cfg.ReferenceWidth
	}
}

// Step advances the settle animation by one frame. It reports whether the
// interpreter still needs frames. The committed decision is delivered
// exactly once, only after the spring has settled.
func (in *Interpreter) Step() bool {
	switch in.phase {
	case phaseDragging:
		return true
	case phaseSettling:
	default:
		return false
	}

	in.offsetX, in.velX = in.spring.Update(in.offsetX, in.velX, in.targetX)
	in.offsetY, in.velY = in.spring.Update(in.offsetY, in.velY, 0)

	if !settled(in.offsetX, in.velX, in.targetX) || !settled(in.offsetY, in.velY, 0) {
		return true
	}

	in.offsetX, in.velX = in.targetX, 0
	in.offsetY, in.velY = 0, 0
	in.phase = phaseIdle
	if in.committed && !in.delivered {
		in.delivered = true
		in.decisions <- Decision{Outcome: in.outcome}
	}
	return false
}

const settleEpsilon = 0.05

func settled(pos, vel, target float64) bool {
	return math.Abs(pos-target) < settleEpsilon && math.Abs(vel) < settleEpsilon
}

// Offset returns the current card offsets.
func (in *Interpreter) Offset() (x, y float64) { return in.offsetX, in.offsetY }

// Rotation returns the current visual rotation in degrees, proportional to
// horizontal travel. It carries no decision semantics.
func (in *Interpreter) Rotation() float64 {
	if in.cfg.ReferenceWidth == 0 {
		return 0
	}
	return in.offsetX / in.cfg.ReferenceWidth * in.cfg.MaxRotation
}

// Dragging reports whether a drag is in progress.
func (in *Interpreter) Dragging() bool { return in.phase == phaseDragging }

// Animating reports whether Step still needs to be driven.
func (in *Interpreter) Animating() bool { return in.phase != phaseIdle }
