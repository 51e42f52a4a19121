package core

import (
	"errors"
	"strings"
)

// StreamPhase is the state of an incremental response
type StreamPhase int

const (
	// AwaitingAnswer means no answer fragment has arrived yet
	AwaitingAnswer StreamPhase = iota
	// Accumulating means answer fragments are being collected
	Accumulating
)

func (p StreamPhase) String() string {
	switch p {
	case AwaitingAnswer:
		return "awaiting_answer"
	case Accumulating:
		return "accumulating"
	default:
		return "unknown"
	}
}

// ErrEmptyAnswer is returned when a stream ends without any answer content
var ErrEmptyAnswer = errors.New("stream ended without answer content")

// StreamAccumulator separates reasoning fragments from answer fragments.
// The answer is only available once the stream has been drained.
type StreamAccumulator struct {
	phase     StreamPhase
	reasoning strings.Builder
	answer    strings.Builder
	fragments int
}

// NewStreamAccumulator creates an accumulator in the AwaitingAnswer phase
func NewStreamAccumulator() *StreamAccumulator {
	return &StreamAccumulator{phase: AwaitingAnswer}
}

// AddReasoning records a reasoning-phase fragment
func (a *StreamAccumulator) AddReasoning(fragment string) {
	a.reasoning.WriteString(fragment)
}

// AddAnswer records an answer-phase fragment and reports whether it moved
// the accumulator from AwaitingAnswer to Accumulating
func (a *StreamAccumulator) AddAnswer(fragment string) bool {
	if fragment == "" {
		return false
	}
	a.answer.WriteString(fragment)
	a.fragments++
	if a.phase == AwaitingAnswer {
		a.phase = Accumulating
		return true
	}
	return false
}

// Phase returns the current phase
func (a *StreamAccumulator) Phase() StreamPhase {
	return a.phase
}

// Reasoning returns all reasoning text seen so far
func (a *StreamAccumulator) Reasoning() string {
	return a.reasoning.String()
}

// Fragments returns the number of non-empty answer fragments
func (a *StreamAccumulator) Fragments() int {
	return a.fragments
}

// Finish returns the joined answer after the stream is exhausted
func (a *StreamAccumulator) Finish() (string, error) {
	if a.phase != Accumulating {
		return "", ErrEmptyAnswer
	}
	return a.answer.String(), nil
}
