// Package events provides event handling functionality
package events

import (
	"context"
	"sync"

	"github.com/dmautz1/ai-agent-platform-sub002/internal/logger"
)

// EventType represents the type of job lifecycle event
type EventType string

const (
	// EventJobCompleted is emitted when a job finishes successfully
	EventJobCompleted EventType = "job_completed"
	// EventJobFailed is emitted when a job reaches the failed status
	EventJobFailed EventType = "job_failed"
	// EventJobResubmitted is emitted when recovery hands a stuck job back to the pipeline
	EventJobResubmitted EventType = "job_resubmitted"
	// EventChannelSize is the buffer size for the event channel
	EventChannelSize = 100
)

// Event represents a job lifecycle event
type Event struct {
	Type    EventType // The type of event
	JobID   string    // The job ID
	UserID  string    // The owning user
	AgentID string    // The agent that ran or will run the job
	Detail  string    // Result excerpt, error message or repair reason
}

// Handler is a function that handles an event
type Handler func(context.Context, Event) error

var (
	// handlers is a map of event types to their handlers
	handlers = make(map[EventType][]Handler)
	// handlersMu is a mutex for the handlers map
	handlersMu sync.RWMutex
	// eventChan is a channel for events
	eventChan = make(chan Event, EventChannelSize)
)

// Subscribe registers a handler for a specific event type
func Subscribe(eventType EventType, handler Handler) {
	handlersMu.Lock()
	defer handlersMu.Unlock()
	handlers[eventType] = append(handlers[eventType], handler)
	logger.Debugf("Registered handler for event type: %s", eventType)
}

// Publish sends an event to be processed. Publishing never blocks the caller;
// an event is dropped when the buffer is full.
func Publish(event Event) {
	select {
	case eventChan <- event:
		logger.Debugf("Published event: %s (Job: %s)", event.Type, event.JobID)
	default:
		logger.Warnf("Event buffer full, dropping event %s for job %s", event.Type, event.JobID)
	}
}

// Start starts the event processing loop
func Start(ctx context.Context) {
	go processEvents(ctx)
	logger.Info("Started event processing loop")
}

// processEvents handles events in the background
func processEvents(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			logger.Info("Stopping event processing loop")
			return
		case event := <-eventChan:
			handlersMu.RLock()
			eventHandlers := handlers[event.Type]
			handlersMu.RUnlock()

			// Process event with all registered handlers
			for _, handler := range eventHandlers {
				go func(h Handler, e Event) {
					if err := h(ctx, e); err != nil {
						logger.Errorf("Failed to handle event %s: %v", e.Type, err)
					}
				}(handler, event)
			}
		}
	}
}
