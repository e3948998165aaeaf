package paritycheck

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"
)

// Sink receives the harness's progress output.
type Sink interface {
	Log(ctx context.Context, msg string, args ...any)
}

// SlogSink writes to a slog.Logger, or the default logger when nil.
type SlogSink struct {
	Logger *slog.Logger
}

func (s SlogSink) Log(ctx context.Context, msg string, args ...any) {
	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.InfoContext(ctx, msg, args...)
}

// Collector keeps output as display lines, for callers that show a run's
// output to a person. It is safe for concurrent use.
type Collector struct {
	mu    sync.Mutex
	lines []string
}

var _ Sink = (*Collector)(nil)

func (c *Collector) Log(_ context.Context, msg string, args ...any) {
	var b strings.Builder
	b.WriteString(msg)
	for i := 0; i < len(args); i += 2 {
		key := fmt.Sprint(args[i])
		var value any = "!MISSING"
		if i+1 < len(args) {
			value = args[i+1]
		}
		b.WriteString(" ")
		b.WriteString(key)
		b.WriteString("=")
		b.WriteString(render(value))
	}

	c.mu.Lock()
	c.lines = append(c.lines, b.String())
	c.mu.Unlock()
}

// Lines returns a copy of everything collected so far.
func (c *Collector) Lines() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.lines))
	copy(out, c.lines)
	return out
}

func (c *Collector) String() string {
	return strings.Join(c.Lines(), "\n")
}

func render(v any) string {
	switch v := v.(type) {
	case string:
		return v
	case error:
		return v.Error()
	case fmt.Stringer:
		return v.String()
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(raw)
}
