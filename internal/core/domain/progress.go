package domain

import "fmt"

// ProgressEvent is an observation emitted while a document is processed.
type ProgressEvent struct {
	// Fraction is the completed share in [0,1]; nil for status-only events.
	Fraction *float64

	// Message describes the current step.
	Message string
}

// Progressf creates an event carrying a completion fraction.
func Progressf(fraction float64, msg string) ProgressEvent {
	return ProgressEvent{Fraction: &fraction, Message: msg}
}

// Status creates a status-only event.
func Status(msg string) ProgressEvent {
	return ProgressEvent{Message: msg}
}

// String renders the event the way progress lines are logged.
func (e ProgressEvent) String() string {
	if e.Fraction != nil {
		return fmt.Sprintf("Progress: %.1f%% - %s", *e.Fraction*100, e.Message)
	}
	return "Status: " + e.Message
}

// ProgressSink receives progress events. It never affects control flow.
type ProgressSink interface {
	Report(event ProgressEvent)
}

// ProgressFunc adapts a function to ProgressSink.
type ProgressFunc func(event ProgressEvent)

// Report calls f(event).
func (f ProgressFunc) Report(event ProgressEvent) {
	f(event)
}

// DiscardProgress is a sink that drops every event.
var DiscardProgress ProgressSink = ProgressFunc(func(ProgressEvent) {})
