package lifecycle

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/go-logr/logr"
)

// Observer receives progress output and structured events during a run.
type Observer interface {
	// Printf emits free-form progress output.
	Printf(format string, v ...interface{})

	// Event emits a structured lifecycle event.
	Event(event Event)
}

// Event is a structured lifecycle event.
type Event struct {
	Type      EventType
	State     State
	Message   string
	Resource  string
	Timestamp time.Time
	Fields    map[string]string
}

// EventType classifies lifecycle events.
type EventType string

const (
	// EventStateEntered indicates the orchestrator entered a new state.
	EventStateEntered EventType = "state.entered"
	// EventActionApproved indicates a mutating action was authorized.
	EventActionApproved EventType = "action.approved"
	// EventActionDenied indicates a mutating action was refused.
	EventActionDenied EventType = "action.denied"
	// EventMutationIssued indicates a mutating call was sent to the
	// provisioning system.
	EventMutationIssued EventType = "mutation.issued"
	// EventRunFinished indicates the run reached its terminal
	// classification.
	EventRunFinished EventType = "run.finished"
)

// ConsoleObserver implements Observer using the standard log package.
type ConsoleObserver struct{}

// NewConsoleObserver creates a console-based observer.
func NewConsoleObserver() *ConsoleObserver {
	return &ConsoleObserver{}
}

// Printf implements Observer.
func (o *ConsoleObserver) Printf(format string, v ...interface{}) {
	log.Printf(format, v...)
}

// Event implements Observer.
func (o *ConsoleObserver) Event(event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	var parts []string
	if event.State != "" {
		parts = append(parts, fmt.Sprintf("state=%s", event.State))
	}
	if event.Resource != "" {
		parts = append(parts, fmt.Sprintf("resource=%s", event.Resource))
	}
	for k, v := range event.Fields {
		parts = append(parts, fmt.Sprintf("%s=%s", k, v))
	}

	suffix := ""
	if len(parts) > 0 {
		suffix = " [" + strings.Join(parts, " ") + "]"
	}
	log.Printf("[%s] %s%s", event.Type, event.Message, suffix)
}

// LogrObserver implements Observer on a logr.Logger for structured output
// under --verbose.
type LogrObserver struct {
	logger logr.Logger
}

// NewLogrObserver wraps a logr.Logger as an Observer.
func NewLogrObserver(logger logr.Logger) *LogrObserver {
	return &LogrObserver{logger: logger}
}

// Printf implements Observer.
func (o *LogrObserver) Printf(format string, v ...interface{}) {
	o.logger.Info(fmt.Sprintf(format, v...))
}

// Event implements Observer.
func (o *LogrObserver) Event(event Event) {
	kv := []interface{}{"type", string(event.Type)}
	if event.State != "" {
		kv = append(kv, "state", string(event.State))
	}
	if event.Resource != "" {
		kv = append(kv, "resource", event.Resource)
	}
	for k, v := range event.Fields {
		kv = append(kv, k, v)
	}
	o.logger.Info(event.Message, kv...)
}
