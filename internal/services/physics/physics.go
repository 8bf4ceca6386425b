// Package physics implements the authoritative ball and paddle simulation.
// Everything here is pure: a State is advanced one tick at a time by Step.
package physics

import (
	"math"

	"github.com/mcoot/netpong/internal/model"
)

const (
	// BounceFactor multiplies horizontal velocity on a paddle hit
	BounceFactor = -1.1
	// DeflectionDivisor scales the hit offset into added vertical velocity
	DeflectionDivisor = 20.0
)

// Horizontal band occupied by each paddle's face
const (
	leftPaddleMinX  = model.PaddleInset
	leftPaddleMaxX  = model.PaddleInset + model.PaddleWidth
	rightPaddleMinX = model.BoardWidth - model.PaddleInset - model.PaddleWidth
	rightPaddleMaxX = model.BoardWidth - model.PaddleInset
)

// State is the simulated portion of a match
type State struct {
	Ball     model.Vec
	Velocity model.Vec
	PaddleY  [2]float64
	Score    [2]int
}

// Outcome reports what happened during one Step
type Outcome struct {
	WallBounce bool
	PaddleHit  bool
	HitSlot    model.Slot
	Scored     bool
	Scorer     model.Slot
}

// NewState returns the kickoff state: ball centered moving down-right, paddles centered
func NewState() State {
	start := model.BoardHeight/2 - model.PaddleHeight/2
	return State{
		Ball:     center(),
		Velocity: model.Vec{model.ServeSpeed, model.ServeSpeed},
		PaddleY:  [2]float64{start, start},
	}
}

func center() model.Vec {
	return model.Vec{model.BoardWidth / 2, model.BoardHeight / 2}
}

// Step advances s by one tick
func Step(s *State) Outcome {
	var out Outcome

	s.Ball[0] += s.Velocity[0]
	s.Ball[1] += s.Velocity[1]

	if s.Ball[1]-model.BallRadius <= 0 || s.Ball[1]+model.BallRadius >= model.BoardHeight {
		s.Velocity[1] = -s.Velocity[1]
		out.WallBounce = true
	}

	if s.Velocity[0] < 0 {
		edge := s.Ball[0] - model.BallRadius
		if edge >= leftPaddleMinX && edge <= leftPaddleMaxX && onPaddle(s.Ball[1], s.PaddleY[model.SlotLeft]) {
			bounce(s, model.SlotLeft)
			out.PaddleHit, out.HitSlot = true, model.SlotLeft
		}
	}

	if s.Velocity[0] > 0 {
		edge := s.Ball[0] + model.BallRadius
		if edge >= rightPaddleMinX && edge <= rightPaddleMaxX && onPaddle(s.Ball[1], s.PaddleY[model.SlotRight]) {
			bounce(s, model.SlotRight)
			out.PaddleHit, out.HitSlot = true, model.SlotRight
		}
	}

	switch {
	case s.Ball[0] < 0:
		s.Score[model.SlotRight]++
		serve(s, 1)
		out.Scored, out.Scorer = true, model.SlotRight
	case s.Ball[0] > model.BoardWidth:
		s.Score[model.SlotLeft]++
		serve(s, -1)
		out.Scored, out.Scorer = true, model.SlotLeft
	}

	return out
}

func onPaddle(ballY, paddleY float64) bool {
	return ballY >= paddleY && ballY <= paddleY+model.PaddleHeight
}

func bounce(s *State, slot model.Slot) {
	paddleCenter := s.PaddleY[slot] + model.PaddleHeight/2
	s.Velocity[0] *= BounceFactor
	s.Velocity[1] += (s.Ball[1] - paddleCenter) / DeflectionDivisor
}

// serve recenters the ball; direction is +1 (rightward) or -1 (leftward)
func serve(s *State, direction float64) {
	s.Ball = center()
	s.Velocity = model.Vec{model.ServeSpeed * direction, model.ServeSpeed}
}

// Winner returns the slot that reached the winning score, if any
func Winner(score [2]int) (model.Slot, bool) {
	switch {
	case score[model.SlotLeft] >= model.WinningScore:
		return model.SlotLeft, true
	case score[model.SlotRight] >= model.WinningScore:
		return model.SlotRight, true
	default:
		return 0, false
	}
}

// ClampPaddle restricts y to [0, BoardHeight-PaddleHeight]
func ClampPaddle(y float64) float64 {
	if math.IsNaN(y) || y < 0 {
		return 0
	}
	if y > model.MaxPaddleY {
		return model.MaxPaddleY
	}
	return y
}
