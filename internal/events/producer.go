package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
)

var (
	ErrClosed    = errors.New("producer closed")
	ErrQueueFull = errors.New("producer queue full")
)

// Publisher sends an event keyed by correlationID
type Publisher interface {
	Publish(ctx context.Context, eventType, correlationID string, payload any) error
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer queues events and writes them to Kafka from one goroutine
type Producer struct {
	name    string
	w       messageWriter
	inbox   chan kafka.Message
	closeCh chan struct{}

	mu     sync.RWMutex
	closed bool
}

func NewProducer(brokers []string, topic, name string, buf int) *Producer {
	return newProducer(&kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
	}, name, buf)
}

func newProducer(w messageWriter, name string, buf int) *Producer {
	return &Producer{
		name:    name,
		w:       w,
		inbox:   make(chan kafka.Message, buf),
		closeCh: make(chan struct{}),
	}
}

// Start runs the write loop until ctx is done or Close is called; queued
// messages are flushed before the writer closes.
func (p *Producer) Start(ctx context.Context) {
	go func() {
		defer close(p.closeCh)
		for {
			select {
			case <-ctx.Done():
				p.Close()
				for m := range p.inbox {
					p.write(m)
				}
				p.closeWriter()
				return
			case m, ok := <-p.inbox:
				if !ok {
					p.closeWriter()
					return
				}
				p.write(m)
			}
		}
	}()
}

func (p *Producer) write(m kafka.Message) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := p.w.WriteMessages(ctx, m); err != nil {
		log.Printf("events: failed to write %s: %v", m.Key, err)
	}
}

func (p *Producer) closeWriter() {
	if err := p.w.Close(); err != nil {
		log.Printf("events: failed to close writer: %v", err)
	}
}

// Publish wraps payload in an Envelope and queues it without blocking
func (p *Producer) Publish(ctx context.Context, eventType, correlationID string, payload any) error {
	env, err := NewEnvelope(p.name, eventType, correlationID, payload)
	if err != nil {
		return err
	}
	value, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("failed to encode envelope: %w", err)
	}
	msg := kafka.Message{
		Key:     []byte(correlationID),
		Value:   value,
		Time:    env.OccurredAt,
		Headers: []kafka.Header{{Key: "event_type", Value: []byte(eventType)}},
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	select {
	case p.inbox <- msg:
		return nil
	default:
		return fmt.Errorf("%w: dropping %s for %s", ErrQueueFull, eventType, correlationID)
	}
}

// Close stops accepting events; the loop flushes what is queued
func (p *Producer) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.closed {
		p.closed = true
		close(p.inbox)
	}
}

// WaitClosed blocks until the write loop has exited
func (p *Producer) WaitClosed() { <-p.closeCh }

// Discard drops events. Used when no brokers are configured.
type Discard struct{}

func (Discard) Publish(ctx context.Context, eventType, correlationID string, payload any) error {
	log.Printf("events: no broker configured, dropping %s for %s", eventType, correlationID)
	return nil
}
