package app

import (
	"time"

	"github.com/relabs-tech/gesture_companion/internal/expression"
)

// commandMsg mirrors one command frame on the MQTT side, so observers
// can watch the serial traffic without tapping the link.
type commandMsg struct {
	Code string    `json:"code"`
	Seq  uint16    `json:"seq"`
	Time time.Time `json:"time"`
}

// expressionMsg is the current face, published retained so observers
// pick it up on connect.
type expressionMsg struct {
	State expression.State `json:"state"`
	Time  time.Time        `json:"time"`
}
