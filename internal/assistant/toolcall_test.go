package assistant

import (
	"errors"
	"testing"
	"time"

	"github.com/emotitask/emotitask/internal/core"
)

func TestParseToolCall(t *testing.T) {
	tc, err := ParseToolCall(`{"task_id":123,"field":"start_time","value":"2025-06-21T15:00:00"}`)
	if err != nil {
		t.Fatalf("ParseToolCall() error = %v", err)
	}
	if tc.TaskID != 123 || tc.Field != "start_time" {
		t.Errorf("tool call = %+v", tc)
	}
}

func TestParseToolCall_Malformed(t *testing.T) {
	cases := []struct {
		name     string
		fragment string
	}{
		{"not json", `hello`},
		{"missing task_id", `{"field":"name","value":"x"}`},
		{"missing field", `{"task_id":1,"value":"x"}`},
		{"missing value", `{"task_id":1,"field":"name"}`},
		{"zero task_id", `{"task_id":0,"field":"name","value":"x"}`},
		{"empty field", `{"task_id":1,"field":"","value":"x"}`},
	}

	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseToolCall(tt.fragment)
			if !errors.Is(err, ErrMalformedToolCall) {
				t.Errorf("error = %v, want ErrMalformedToolCall", err)
			}
		})
	}
}

func TestExtractToolCall(t *testing.T) {
	reply := `Sure, I moved it. {"task_id":7,"field":"priority","value":3} Anything else?`

	tc, extras := ExtractToolCall(reply)
	if tc == nil {
		t.Fatal("ExtractToolCall() returned nil")
	}
	if tc.TaskID != 7 || tc.Field != "priority" {
		t.Errorf("tool call = %+v", tc)
	}
	if extras != 0 {
		t.Errorf("extras = %d, want 0", extras)
	}
}

func TestExtractToolCall_OnlyFirstApplies(t *testing.T) {
	reply := `{"task_id":1,"field":"name","value":"a"} and {"task_id":2,"field":"name","value":"b"}`

	tc, extras := ExtractToolCall(reply)
	if tc == nil || tc.TaskID != 1 {
		t.Fatalf("tool call = %+v, want task 1", tc)
	}
	if extras != 1 {
		t.Errorf("extras = %d, want 1", extras)
	}
}

func TestExtractToolCall_IgnoresNonToolJSON(t *testing.T) {
	reply := `Here is some data: {"weather":"sunny"} and a brace } for fun.`

	tc, _ := ExtractToolCall(reply)
	if tc != nil {
		t.Errorf("tool call = %+v, want nil", tc)
	}
}

func TestExtractToolCall_BracesInsideStrings(t *testing.T) {
	reply := `{"task_id":5,"field":"description","value":"use {curly} braces"}`

	tc, _ := ExtractToolCall(reply)
	if tc == nil {
		t.Fatal("ExtractToolCall() returned nil")
	}
	if tc.Value != "use {curly} braces" {
		t.Errorf("value = %v", tc.Value)
	}
}

func TestStripToolCalls(t *testing.T) {
	reply := `Done! {"task_id":7,"field":"is_completed","value":true}`

	got := StripToolCalls(reply)
	if got != "Done!" {
		t.Errorf("StripToolCalls() = %q, want %q", got, "Done!")
	}
}

type fakeUpdater struct {
	lastField string
	lastValue interface{}
	err       error
}

func (f *fakeUpdater) UpdateField(id int64, field string, value interface{}) (*core.Task, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.lastField = field
	f.lastValue = value
	return &core.Task{ID: id}, nil
}

func TestDispatcher_CoercesValues(t *testing.T) {
	updater := &fakeUpdater{}
	d := NewDispatcher(updater)

	// priority arrives as a JSON float64, lands as int64
	task, err := d.Dispatch(&ToolCall{TaskID: 1, Field: "priority", Value: float64(3)})
	if err != nil {
		t.Fatalf("Dispatch() error = %v", err)
	}
	if task.ID != 1 {
		t.Errorf("task ID = %d", task.ID)
	}
	if v, ok := updater.lastValue.(int64); !ok || v != 3 {
		t.Errorf("priority landed as %T(%v), want int64(3)", updater.lastValue, updater.lastValue)
	}

	// start_time without a zone still parses
	if _, err := d.Dispatch(&ToolCall{TaskID: 1, Field: "start_time", Value: "2025-06-21T15:00:00"}); err != nil {
		t.Fatalf("Dispatch(start_time) error = %v", err)
	}
	if _, ok := updater.lastValue.(time.Time); !ok {
		t.Errorf("start_time landed as %T, want time.Time", updater.lastValue)
	}
}

func TestDispatcher_RejectsBadValues(t *testing.T) {
	d := NewDispatcher(&fakeUpdater{})

	cases := []struct {
		name string
		tc   ToolCall
		want error
	}{
		{"unknown field", ToolCall{TaskID: 1, Field: "user_id", Value: float64(9)}, ErrInvalidField},
		{"priority out of range", ToolCall{TaskID: 1, Field: "priority", Value: float64(4)}, ErrTypeMismatch},
		{"priority fractional", ToolCall{TaskID: 1, Field: "priority", Value: 2.5}, ErrTypeMismatch},
		{"is_completed string", ToolCall{TaskID: 1, Field: "is_completed", Value: "yes"}, ErrTypeMismatch},
		{"start_time garbage", ToolCall{TaskID: 1, Field: "start_time", Value: "tomorrow"}, ErrTypeMismatch},
		{"name not a string", ToolCall{TaskID: 1, Field: "name", Value: float64(1)}, ErrTypeMismatch},
	}

	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			_, err := d.Dispatch(&tt.tc)
			if !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestDispatcher_PropagatesNotFound(t *testing.T) {
	d := NewDispatcher(&fakeUpdater{err: core.ErrRecordNotFound})

	_, err := d.Dispatch(&ToolCall{TaskID: 99, Field: "name", Value: "x"})
	if !errors.Is(err, core.ErrRecordNotFound) {
		t.Errorf("error = %v, want ErrRecordNotFound", err)
	}
}

func TestDispatcher_ValidationPrecedesLookup(t *testing.T) {
	updater := &fakeUpdater{err: core.ErrRecordNotFound}
	d := NewDispatcher(updater)

	// an immutable field wins over a missing task: the store is never
	// consulted for a call that could not be applied anyway
	_, err := d.Dispatch(&ToolCall{TaskID: 99, Field: "user_id", Value: float64(2)})
	if !errors.Is(err, ErrInvalidField) {
		t.Errorf("error = %v, want ErrInvalidField", err)
	}

	_, err = d.Dispatch(&ToolCall{TaskID: 99, Field: "priority", Value: "high"})
	if !errors.Is(err, ErrTypeMismatch) {
		t.Errorf("error = %v, want ErrTypeMismatch", err)
	}
}
