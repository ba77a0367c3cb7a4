package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"regexp"
	"strings"
	"testing"
)

var tsPattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}$`)

// parseEvents splits buf into event lines and decodes each one.
func parseEvents(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var events []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		if !strings.HasPrefix(line, LinePrefix) {
			t.Fatalf("line missing prefix: %q", line)
		}
		var ev map[string]any
		if err := json.Unmarshal([]byte(strings.TrimPrefix(line, LinePrefix)), &ev); err != nil {
			t.Fatalf("line is not JSON: %q: %v", line, err)
		}
		events = append(events, ev)
	}
	return events
}

func TestEventLogLineFormat(t *testing.T) {
	var buf bytes.Buffer
	log := NewEventLog(&buf, true)
	ctx := context.Background()

	log.RecordStart(ctx, "mouse_move", Mapping(Field{Key: "x", Value: Int(10)}))
	log.RecordEnd(ctx, "mouse_move", 12.3, Mapping(Field{Key: "success", Value: Bool(true)}))
	log.RecordError(ctx, "mouse_move", 0.4, "fail-safe triggered")

	events := parseEvents(t, &buf)
	if len(events) != 3 {
		t.Fatalf("got %d events, want 3", len(events))
	}
	for i, want := range []string{"start", "end", "error"} {
		ev := events[i]
		if ev[KeyEvent] != want {
			t.Errorf("event %d = %v, want %s", i, ev[KeyEvent], want)
		}
		if ev[KeyTool] != "mouse_move" {
			t.Errorf("event %d tool = %v", i, ev[KeyTool])
		}
		ts, _ := ev[KeyTimestamp].(string)
		if !tsPattern.MatchString(ts) {
			t.Errorf("event %d ts = %q", i, ts)
		}
		for _, key := range []string{"level", "msg", "time"} {
			if _, ok := ev[key]; ok {
				t.Errorf("event %d has slog key %q", i, key)
			}
		}
	}

	args, _ := events[0][KeyArgs].(map[string]any)
	if args["x"] != float64(10) {
		t.Errorf("start args = %v", events[0][KeyArgs])
	}
	if _, ok := events[0][KeyElapsedMs]; ok {
		t.Error("start event should not carry elapsedMs")
	}
	if events[1][KeyElapsedMs] != 12.3 {
		t.Errorf("end elapsedMs = %v", events[1][KeyElapsedMs])
	}
	if events[2][KeyError] != "fail-safe triggered" {
		t.Errorf("error = %v", events[2][KeyError])
	}
}

func TestEventLogKeyOrder(t *testing.T) {
	var buf bytes.Buffer
	NewEventLog(&buf, true).RecordEnd(context.Background(), "t", 1, Null())
	line := buf.String()
	order := []string{`"ts"`, `"event"`, `"tool"`, `"result"`, `"elapsedMs"`}
	last := -1
	for _, key := range order {
		idx := strings.Index(line, key)
		if idx <= last {
			t.Fatalf("key %s out of order in %q", key, line)
		}
		last = idx
	}
}

func TestEventLogMarkersStayReadable(t *testing.T) {
	var buf bytes.Buffer
	NewEventLog(&buf, true).RecordEnd(context.Background(), "t", 1, String(MaxDepthMarker))
	if !strings.Contains(buf.String(), `"<max-depth>"`) {
		t.Errorf("marker should not be HTML escaped: %q", buf.String())
	}
}

func TestEventLogDisabled(t *testing.T) {
	var buf bytes.Buffer
	log := NewEventLog(&buf, false)
	log.RecordStart(context.Background(), "t", Null())
	log.RecordEnd(context.Background(), "t", 1, Null())
	log.RecordError(context.Background(), "t", 1, "x")
	if buf.Len() != 0 {
		t.Errorf("disabled log wrote %q", buf.String())
	}

	var nilLog *EventLog
	if nilLog.Enabled() {
		t.Error("nil log should report disabled")
	}
	nilLog.RecordStart(context.Background(), "t", Null())
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errWrite }

var errWrite = &writeError{}

type writeError struct{}

func (*writeError) Error() string { return "sink closed" }

func TestEventLogSwallowsWriteErrors(t *testing.T) {
	log := NewEventLog(failingWriter{}, true)
	log.RecordStart(context.Background(), "t", Null())
	log.RecordEnd(context.Background(), "t", 1, Null())
}
