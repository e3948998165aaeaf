package logsink

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/appendblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"
)

const flushEvery = 2 * time.Second

type appendFunc func(ctx context.Context, body []byte) error

// BlobHandler buffers JSON lines and appends them to a blob every couple of
// seconds. Records are dropped, never blocked on, when the buffer is full.
type BlobHandler struct {
	level  slog.Leveler
	attrs  []slog.Attr
	shared *blobWriter
}

type blobWriter struct {
	append  appendFunc
	ch      chan []byte
	done    chan struct{}
	dropped atomic.Int64
	once    sync.Once
}

func NewBlobHandler(ctx context.Context, cfg BlobConfig, level slog.Leveler) (*BlobHandler, error) {
	cred, err := azblob.NewSharedKeyCredential(cfg.AccountName, cfg.AccountKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create shared key credential: %w", err)
	}
	host, _ := os.Hostname()
	// blob names keep their slashes
	blobURL := "https://" + cfg.AccountName + ".blob.core.windows.net/" + url.PathEscape(cfg.Container) + "/" + DailyBlobName(time.Now(), host)
	ab, err := appendblob.NewClientWithSharedKeyCredential(blobURL, cred, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create append blob client: %w", err)
	}
	if _, err := ab.Create(ctx, nil); err != nil && !bloberror.HasCode(err, bloberror.BlobAlreadyExists) {
		return nil, fmt.Errorf("failed to create log blob: %w", err)
	}

	return newBlobHandler(func(ctx context.Context, body []byte) error {
		_, err := ab.AppendBlock(ctx, readSeekNopCloser{bytes.NewReader(body)}, nil)
		return err
	}, level, flushEvery), nil
}

func newBlobHandler(fn appendFunc, level slog.Leveler, every time.Duration) *BlobHandler {
	w := &blobWriter{
		append: fn,
		ch:     make(chan []byte, 1024),
		done:   make(chan struct{}),
	}
	go w.loop(every)
	return &BlobHandler{level: level, shared: w}
}

// Close flushes what is buffered and stops the writer.
func (h *BlobHandler) Close() error {
	h.shared.once.Do(func() { close(h.shared.ch) })
	<-h.shared.done
	return nil
}

// Dropped counts records lost to a full buffer.
func (h *BlobHandler) Dropped() int64 {
	return h.shared.dropped.Load()
}

func (h *BlobHandler) Enabled(_ context.Context, l slog.Level) bool {
	return l >= h.level.Level()
}

func (h *BlobHandler) Handle(_ context.Context, r slog.Record) error {
	line, err := encodeRecord(r, h.attrs)
	if err != nil {
		return err
	}
	select {
	case h.shared.ch <- line:
	default:
		h.shared.dropped.Add(1)
	}
	return nil
}

func (h *BlobHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &BlobHandler{level: h.level, attrs: append(append([]slog.Attr{}, h.attrs...), attrs...), shared: h.shared}
}

// groups are flattened away
func (h *BlobHandler) WithGroup(string) slog.Handler { return h }

func encodeRecord(r slog.Record, attrs []slog.Attr) ([]byte, error) {
	ts := r.Time
	if ts.IsZero() {
		ts = time.Now()
	}
	ev := map[string]any{
		"ts":    ts.UTC().Format(time.RFC3339Nano),
		"level": r.Level.String(),
		"msg":   r.Message,
	}
	add := func(a slog.Attr) bool {
		v := a.Value.Resolve()
		if v.Kind() == slog.KindGroup {
			m := map[string]any{}
			for _, ga := range v.Group() {
				m[ga.Key] = attrValue(ga.Value.Resolve())
			}
			ev[a.Key] = m
			return true
		}
		ev[a.Key] = attrValue(v)
		return true
	}
	for _, a := range attrs {
		add(a)
	}
	r.Attrs(add)

	var b bytes.Buffer
	enc := json.NewEncoder(&b)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(ev); err != nil {
		return nil, err
	}
	return b.Bytes(), nil
}

func attrValue(v slog.Value) any {
	if err, ok := v.Any().(error); ok {
		return err.Error()
	}
	return v.Any()
}

func (w *blobWriter) loop(every time.Duration) {
	defer close(w.done)
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	var buf []byte
	flush := func() {
		if len(buf) == 0 {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := w.append(ctx, buf); err != nil {
			fmt.Fprintf(os.Stderr, "logsink: append failed, dropping %d bytes: %v\n", len(buf), err)
		}
		cancel()
		buf = buf[:0]
	}

	for {
		select {
		case line, ok := <-w.ch:
			if !ok {
				flush()
				return
			}
			buf = append(buf, line...)
		case <-ticker.C:
			flush()
		}
	}
}

type readSeekNopCloser struct{ io.ReadSeeker }

func (r readSeekNopCloser) Close() error { return nil }
