package pubsub

import (
	"context"
	"encoding/json"
)

// Topics published by the analysis runner.
const (
	TopicAnalysisStatus = "analysis_status" // AnalysisStatus events
	TopicGraphs         = "graphs"          // GraphsUpdated events
)

// Event represents a pub/sub event
type Event struct {
	Topic   string          `json:"topic"`   // Subscription topic, e.g. "analysis_status"
	Type    string          `json:"type"`    // Event type, e.g. "analyzing", "ready"
	Data    json.RawMessage `json:"data"`    // Event payload
	Version int             `json:"version"` // Per-topic sequence number, starting at 1
}

// Subscription represents a client subscription to a topic
type Subscription interface {
	Topic() string
	Events() <-chan Event
	Close() error
}

// Publisher manages pub/sub subscriptions and event publishing
type Publisher interface {
	// Subscribe creates a new subscription to a topic.
	// Context cancellation will close the subscription.
	Subscribe(ctx context.Context, topic string) (Subscription, error)

	// Publish sends an event to all subscribers of a topic
	Publish(topic string, eventType string, data interface{}) error

	Close() error
}

// AnalysisStatus reports the progress of one analysis run.
type AnalysisStatus struct {
	State   string `json:"state"`   // analyzing, comparing, ready, error
	Message string `json:"message"` // Human-readable status message
	Step    int    `json:"step"`    // Current step number (1-based)
	Total   int    `json:"total"`
}

// GraphsUpdated announces a completed run.
type GraphsUpdated struct {
	Graphs        []string `json:"graphs"`         // Names of the graphs analyzed successfully
	Failed        []string `json:"failed"`         // Names whose pipeline failed
	HasComparison bool     `json:"has_comparison"` // A comparison is available
	Reason        string   `json:"reason"`         // What triggered the run
}
