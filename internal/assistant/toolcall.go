package assistant

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/emotitask/emotitask/internal/core"
	"github.com/emotitask/emotitask/internal/logging"
)

var (
	// ErrMalformedToolCall is returned when a tool-call fragment is
	// missing required keys or carries the wrong shapes.
	ErrMalformedToolCall = errors.New("malformed tool call")

	// ErrInvalidField is returned for a field the assistant may not
	// mutate.
	ErrInvalidField = errors.New("field not mutable")

	// ErrTypeMismatch is returned when a tool-call value does not fit
	// the field's type.
	ErrTypeMismatch = errors.New("value type mismatch")
)

// ToolCall is one task mutation requested by the model.
type ToolCall struct {
	TaskID int64       `json:"task_id"`
	Field  string      `json:"field"`
	Value  interface{} `json:"value"`
}

// ParseToolCall decodes a JSON fragment into a ToolCall. All three
// keys are required.
func ParseToolCall(fragment string) (*ToolCall, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal([]byte(fragment), &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedToolCall, err)
	}

	for _, key := range []string{"task_id", "field", "value"} {
		if _, ok := raw[key]; !ok {
			return nil, fmt.Errorf("%w: missing %q", ErrMalformedToolCall, key)
		}
	}

	var tc ToolCall
	if err := json.Unmarshal([]byte(fragment), &tc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedToolCall, err)
	}
	if tc.TaskID <= 0 {
		return nil, fmt.Errorf("%w: task_id must be positive", ErrMalformedToolCall)
	}
	if tc.Field == "" {
		return nil, fmt.Errorf("%w: empty field", ErrMalformedToolCall)
	}
	return &tc, nil
}

// ExtractToolCall scans a model reply for JSON object fragments and
// returns the first well-formed tool call. Extra fragments beyond the
// first are counted but never applied.
func ExtractToolCall(reply string) (*ToolCall, int) {
	var first *ToolCall
	extras := 0

	for _, fragment := range jsonFragments(reply) {
		tc, err := ParseToolCall(fragment)
		if err != nil {
			continue
		}
		if first == nil {
			first = tc
		} else {
			extras++
		}
	}
	return first, extras
}

// jsonFragments returns the balanced top-level {...} substrings of s,
// respecting string literals.
func jsonFragments(s string) []string {
	var fragments []string
	depth := 0
	start := -1
	inString := false
	escaped := false

	for i := 0; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			if depth > 0 {
				inString = true
			}
		case '{':
			if depth == 0 {
				start = i
			}
			depth++
		case '}':
			if depth > 0 {
				depth--
				if depth == 0 {
					fragments = append(fragments, s[start:i+1])
				}
			}
		}
	}
	return fragments
}

// TaskUpdater applies a single-field task mutation. Satisfied by
// storage.TaskStore.
type TaskUpdater interface {
	UpdateField(id int64, field string, value interface{}) (*core.Task, error)
}

// Dispatcher validates and applies tool calls.
type Dispatcher struct {
	tasks TaskUpdater
	log   *logging.Logger
}

// NewDispatcher creates a tool-call dispatcher.
func NewDispatcher(tasks TaskUpdater) *Dispatcher {
	return &Dispatcher{
		tasks: tasks,
		log:   logging.WithField("component", "dispatcher"),
	}
}

// startTimeLayouts accepted for start_time values. Models frequently
// omit the zone.
var startTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
}

// Dispatch validates the tool call and applies it as a single-column
// update, returning the task snapshot after the write. Field and value
// validation runs before the store is touched, so an immutable field
// or ill-typed value is reported even when the task id does not
// exist; ErrRecordNotFound only surfaces for calls that would
// otherwise have been applied.
func (d *Dispatcher) Dispatch(tc *ToolCall) (*core.Task, error) {
	value, err := coerceValue(tc.Field, tc.Value)
	if err != nil {
		return nil, err
	}

	task, err := d.tasks.UpdateField(tc.TaskID, tc.Field, value)
	if err != nil {
		return nil, err
	}

	d.log.WithFields(map[string]interface{}{
		"task_id": tc.TaskID,
		"field":   tc.Field,
	}).Info("applied tool call")
	return task, nil
}

// coerceValue checks the field is mutable and converts the JSON value
// to the column's native type. Strict: no silent truncation.
func coerceValue(field string, value interface{}) (interface{}, error) {
	switch field {
	case "name", "description":
		s, ok := value.(string)
		if !ok {
			return nil, fmt.Errorf("%w: %s wants a string", ErrTypeMismatch, field)
		}
		return s, nil

	case "priority":
		f, ok := value.(float64)
		if !ok || f != math.Trunc(f) {
			return nil, fmt.Errorf("%w: priority wants an integer", ErrTypeMismatch)
		}
		p := int64(f)
		if p < core.PriorityLow || p > core.PriorityHigh {
			return nil, fmt.Errorf("%w: priority must be 1-3", ErrTypeMismatch)
		}
		return p, nil

	case "is_completed":
		b, ok := value.(bool)
		if !ok {
			return nil, fmt.Errorf("%w: is_completed wants a bool", ErrTypeMismatch)
		}
		return b, nil

	case "start_time":
		s, ok := value.(string)
		if !ok {
			return nil, fmt.Errorf("%w: start_time wants a timestamp string", ErrTypeMismatch)
		}
		for _, layout := range startTimeLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t, nil
			}
		}
		return nil, fmt.Errorf("%w: start_time %q is not a valid timestamp", ErrTypeMismatch, s)

	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidField, field)
	}
}

// StripToolCalls removes tool-call JSON fragments from a reply so the
// user never sees raw wire payloads.
func StripToolCalls(reply string) string {
	for _, fragment := range jsonFragments(reply) {
		if _, err := ParseToolCall(fragment); err == nil {
			reply = strings.Replace(reply, fragment, "", 1)
		}
	}
	return strings.TrimSpace(reply)
}
