package pubsub

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/collaborativebioinformatics/Pangenome-and-Genomic-Cluster-Modeling/pkg/logging"
)

// ErrClosed is returned by a publisher after Close.
var ErrClosed = errors.New("publisher is closed")

// subscriberBuffer bounds the events queued per subscriber; a slow reader
// loses events rather than blocking the publisher.
const subscriberBuffer = 100

// TopicConfig configures buffering behavior for a topic
type TopicConfig struct {
	BufferSize int  // Number of events to keep for late subscribers (0 = none)
	ReplayAll  bool // Replay the whole buffer instead of only its last event
}

type topicState struct {
	config  TopicConfig
	subs    map[*sseSubscription]struct{}
	version int
	buffer  []Event
}

// replay returns the events a new subscriber should see first.
func (t *topicState) replay() []Event {
	if len(t.buffer) == 0 {
		return nil
	}
	if t.config.ReplayAll {
		return append([]Event(nil), t.buffer...)
	}
	return []Event{t.buffer[len(t.buffer)-1]}
}

// SSEPublisher implements Publisher for Server-Sent Events handlers
type SSEPublisher struct {
	mu     sync.Mutex
	topics map[string]*topicState
	closed bool
}

// NewSSEPublisher creates a new SSE-based publisher
func NewSSEPublisher() *SSEPublisher {
	return &SSEPublisher{topics: make(map[string]*topicState)}
}

// topic returns the state of name, creating it. Caller holds p.mu.
func (p *SSEPublisher) topic(name string) *topicState {
	t, ok := p.topics[name]
	if !ok {
		t = &topicState{subs: make(map[*sseSubscription]struct{})}
		p.topics[name] = t
	}
	return t
}

// ConfigureTopic sets buffering configuration for a topic
func (p *SSEPublisher) ConfigureTopic(topic string, config TopicConfig) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.topic(topic).config = config
}

// Subscribe creates a new subscription to a topic. Buffered events are
// queued on the subscription before it is returned.
func (p *SSEPublisher) Subscribe(ctx context.Context, topic string) (Subscription, error) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil, ErrClosed
	}

	sub := &sseSubscription{
		topic:     topic,
		events:    make(chan Event, subscriberBuffer),
		publisher: p,
	}
	t := p.topic(topic)
	t.subs[sub] = struct{}{}

	// Replay while holding the lock so no live event overtakes the backlog.
	replayed := t.replay()
	if len(replayed) > subscriberBuffer {
		replayed = replayed[len(replayed)-subscriberBuffer:]
	}
	for _, event := range replayed {
		sub.events <- event
	}
	p.mu.Unlock()

	if len(replayed) > 0 {
		logging.Debug("replayed events to new subscriber", "topic", topic, "count", len(replayed))
	}

	go func() {
		<-ctx.Done()
		sub.Close()
	}()

	return sub, nil
}

// Publish sends an event to all subscribers of a topic
func (p *SSEPublisher) Publish(topic string, eventType string, data interface{}) error {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal event data: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return ErrClosed
	}

	t := p.topic(topic)
	t.version++
	event := Event{
		Topic:   topic,
		Type:    eventType,
		Data:    jsonData,
		Version: t.version,
	}

	if size := t.config.BufferSize; size > 0 {
		t.buffer = append(t.buffer, event)
		if len(t.buffer) > size {
			t.buffer = t.buffer[len(t.buffer)-size:]
		}
	}

	for sub := range t.subs {
		select {
		case sub.events <- event:
		default:
			logging.Warn("subscription channel full, dropping event", "topic", topic, "version", event.Version)
		}
	}

	return nil
}

// Close shuts down the publisher. Every open subscription's channel is closed.
func (p *SSEPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}
	p.closed = true

	for _, t := range p.topics {
		for sub := range t.subs {
			close(sub.events)
		}
		t.subs = make(map[*sseSubscription]struct{})
	}
	return nil
}

func (p *SSEPublisher) unsubscribe(sub *sseSubscription) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if t, ok := p.topics[sub.topic]; ok {
		delete(t.subs, sub)
	}
}

// Subscribers returns the number of open subscriptions to topic.
func (p *SSEPublisher) Subscribers(topic string) int {
	p.mu.Lock()
	defer p.mu.Unlock()

	if t, ok := p.topics[topic]; ok {
		return len(t.subs)
	}
	return 0
}

type sseSubscription struct {
	topic     string
	events    chan Event
	publisher *SSEPublisher
	once      sync.Once
}

func (s *sseSubscription) Topic() string {
	return s.topic
}

func (s *sseSubscription) Events() <-chan Event {
	return s.events
}

// Close detaches the subscription. Its channel stays open; readers should
// stop on their own context.
func (s *sseSubscription) Close() error {
	s.once.Do(func() { s.publisher.unsubscribe(s) })
	return nil
}

// WriteSSE writes an event to an SSE response writer
// Format: "data: {json}\n\n"
func WriteSSE(w io.Writer, event Event) error {
	jsonData, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	_, err = fmt.Fprintf(w, "data: %s\n\n", jsonData)
	return err
}
