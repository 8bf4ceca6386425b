package model

import "time"

// Board geometry shared by the simulation and clients
const (
	BoardWidth  = 800.0
	BoardHeight = 600.0

	PaddleWidth  = 15.0
	PaddleHeight = 100.0
	PaddleInset  = 10.0 // Gap between each wall and its paddle

	BallRadius = 7.0
	ServeSpeed = 5.0

	// MaxPaddleY is the largest legal paddle top coordinate
	MaxPaddleY = BoardHeight - PaddleHeight

	WinningScore = 5
	TickRate     = 60
)

// TickInterval is the sleep between simulation ticks
const TickInterval = time.Second / TickRate

// Vec is a 2D float vector, encoded as [x, y] on the wire
type Vec [2]float64

// Y returns the vertical component
func (v Vec) Y() float64 { return v[1] }
