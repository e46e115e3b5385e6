package async_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/suistat/pkg/domain/model"
	"github.com/secmon-lab/suistat/pkg/repository"
	"github.com/secmon-lab/suistat/pkg/service/dataset"
	"github.com/secmon-lab/suistat/pkg/utils/async"
)

// syncBuffer is a log sink safe for use from the background goroutine
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) entries(t *testing.T) []map[string]any {
	t.Helper()
	b.mu.Lock()
	defer b.mu.Unlock()

	var result []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(b.buf.String()), "\n") {
		if line == "" {
			continue
		}
		var entry map[string]any
		gt.NoError(t, json.Unmarshal([]byte(line), &entry))
		result = append(result, entry)
	}
	return result
}

func loggerContext(out *syncBuffer) context.Context {
	logger := slog.New(slog.NewJSONHandler(out, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return ctxlog.With(context.Background(), logger.With("request_id", "req-1"))
}

func wait(t *testing.T, done <-chan struct{}) {
	t.Helper()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("background task did not finish")
	}
}

func TestDispatch(t *testing.T) {
	t.Run("warm-up load survives cancellation of the caller", func(t *testing.T) {
		source := repository.NewMemory([]model.Row{
			{"country": "Albania", "year": "1987", "sex": "male", "age": "15-24 years", "suicides_no": "21"},
		})
		cache := dataset.NewCache(source)

		ctx, cancel := context.WithCancel(context.Background())
		release := make(chan struct{})
		var loadErr error
		done := async.Dispatch(ctx, "warm-up", func(ctx context.Context) error {
			<-release
			_, loadErr = cache.Load(ctx)
			return loadErr
		})
		cancel()
		close(release)
		wait(t, done)

		gt.NoError(t, loadErr)
		records, ok := cache.Cached()
		gt.True(t, ok)
		gt.Equal(t, "Albania", records[0].Country)
	})

	t.Run("failed task is logged with its name and caller attributes", func(t *testing.T) {
		var out syncBuffer
		source := repository.NewMemory(nil)
		source.SetError(goerr.New("bucket not found"))
		cache := dataset.NewCache(source)

		done := async.Dispatch(loggerContext(&out), "warm-up", func(ctx context.Context) error {
			_, err := cache.Load(ctx)
			return err
		})
		wait(t, done)

		entries := out.entries(t)
		last := entries[len(entries)-1]
		gt.Equal(t, "ERROR", last["level"])
		gt.Equal(t, "Background task failed", last["msg"])
		gt.Equal(t, "warm-up", last["task"])
		gt.Equal(t, "req-1", last["request_id"])
		gt.V(t, last["error"]).NotNil()
	})

	t.Run("handler logger carries the task name", func(t *testing.T) {
		var out syncBuffer
		done := async.Dispatch(loggerContext(&out), "warm-up", func(ctx context.Context) error {
			ctxlog.From(ctx).Info("Selecting first country")
			return nil
		})
		wait(t, done)

		entries := out.entries(t)
		gt.Equal(t, 1, len(entries))
		gt.Equal(t, "warm-up", entries[0]["task"])
	})

	t.Run("panic is recovered and logged", func(t *testing.T) {
		var out syncBuffer
		done := async.Dispatch(loggerContext(&out), "warm-up", func(ctx context.Context) error {
			panic("nil selection widget")
		})
		wait(t, done)

		entries := out.entries(t)
		gt.Equal(t, 1, len(entries))
		gt.Equal(t, "Panic in background task", entries[0]["msg"])
		gt.Equal(t, "nil selection widget", entries[0]["recover"])
	})
}
