package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// captureOutput redirects logger output to a buffer, text format, no color.
func captureOutput(t *testing.T) *bytes.Buffer {
	t.Helper()
	buf := new(bytes.Buffer)

	mu.Lock()
	originalOutput, originalColor := output, useColor
	output, useColor = buf, false
	mu.Unlock()
	originalLevel := GetLevel()
	originalFormat, _ := currentFormat.Load().(string)
	currentFormat.Store("text")
	reconfigure()

	t.Cleanup(func() {
		mu.Lock()
		output, useColor = originalOutput, originalColor
		mu.Unlock()
		currentLevel.Store(int32(originalLevel))
		currentFormat.Store(originalFormat)
		reconfigure()
	})
	return buf
}

// syncBuffer is a bytes.Buffer safe for concurrent writers.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestLevelFiltering(t *testing.T) {
	tests := []struct {
		level string
		shown []string
		hide  []string
	}{
		{"DEBUG", []string{"debug msg", "info msg", "warn msg", "error msg"}, nil},
		{"INFO", []string{"info msg", "warn msg", "error msg"}, []string{"debug msg"}},
		{"WARN", []string{"warn msg", "error msg"}, []string{"debug msg", "info msg"}},
		{"ERROR", []string{"error msg"}, []string{"debug msg", "info msg", "warn msg"}},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			buf := captureOutput(t)
			SetLevel(tt.level)

			Debug("debug msg")
			Info("info msg")
			Warn("warn msg")
			Error("error msg")

			out := buf.String()
			for _, s := range tt.shown {
				assert.Contains(t, out, s)
			}
			for _, s := range tt.hide {
				assert.NotContains(t, out, s)
			}
		})
	}
}

func TestSetLevel(t *testing.T) {
	t.Run("CaseInsensitive", func(t *testing.T) {
		buf := captureOutput(t)
		SetLevel("dEbUg")
		Debug("visible")
		assert.Contains(t, buf.String(), "visible")
		assert.Equal(t, LevelDebug, GetLevel())
	})

	t.Run("IgnoresInvalidValues", func(t *testing.T) {
		buf := captureOutput(t)
		SetLevel("INFO")
		SetLevel("LOUD")
		Debug("hidden")
		Info("shown")
		assert.NotContains(t, buf.String(), "hidden")
		assert.Contains(t, buf.String(), "shown")
	})
}

func TestParseLevel(t *testing.T) {
	l, err := ParseLevel("warning")
	require.NoError(t, err)
	assert.Equal(t, LevelWarn, l)

	_, err = ParseLevel("verbose")
	assert.Error(t, err)

	assert.Equal(t, "UNKNOWN", Level(42).String())
	assert.Equal(t, "ERROR", LevelError.String())
}

func TestTextFormat(t *testing.T) {
	t.Run("TimestampAndLevel", func(t *testing.T) {
		buf := captureOutput(t)
		SetLevel("INFO")
		Warn("careful")
		assert.Regexp(t, `^\[\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}\] \[WARN\] careful\n$`, buf.String())
	})

	t.Run("StructuredFields", func(t *testing.T) {
		buf := captureOutput(t)
		SetLevel("INFO")
		Info("shape loaded", "dataset", "web_data", ShapeID(42), DurationMs(1.5))

		out := buf.String()
		assert.Contains(t, out, "dataset=web_data")
		assert.Contains(t, out, "shape_id=42")
		assert.Contains(t, out, "duration_ms=1.500")
	})

	t.Run("QuotesStringsWithSpaces", func(t *testing.T) {
		buf := captureOutput(t)
		SetLevel("INFO")
		Info("fetch failed", Err(assert.AnError))
		assert.Contains(t, buf.String(), `error="assert.AnError general error for testing"`)
	})

	t.Run("GroupsPrefixKeys", func(t *testing.T) {
		buf := captureOutput(t)
		SetLevel("INFO")
		With("service", "shapeview").WithGroup("scan").Info("done", "lines", 3)

		out := buf.String()
		assert.Contains(t, out, "service=shapeview")
		assert.Contains(t, out, "scan.lines=3")
	})

	t.Run("NilErrorIsDropped", func(t *testing.T) {
		buf := captureOutput(t)
		SetLevel("INFO")
		Info("ok", Err(nil))
		assert.NotContains(t, buf.String(), "error=")
	})
}

func TestColorOutput(t *testing.T) {
	buf := new(bytes.Buffer)
	h := NewColorTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}, true)
	slog.New(h).Error("boom", "k", "v")

	out := buf.String()
	assert.Contains(t, out, colorRed+"ERROR"+colorReset)
	assert.Contains(t, out, colorCyan+"k"+colorReset+"=v")
}

func TestJSONFormat(t *testing.T) {
	buf := captureOutput(t)
	SetLevel("INFO")
	SetFormat("json")

	Info("metadata loaded", Dataset("web_data"), TotalShapes(1000))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "metadata loaded", entry["msg"])
	assert.Equal(t, "web_data", entry["dataset"])
	assert.Equal(t, float64(1000), entry["total_shapes"])

	SetFormat("yaml")
	buf.Reset()
	Info("still json")
	assert.True(t, json.Valid(bytes.TrimSpace(buf.Bytes())))
}

func TestContextLogging(t *testing.T) {
	buf := captureOutput(t)
	SetLevel("DEBUG")

	lc := NewLogContext("req-1", "10.0.0.1").WithDataset("web_data").WithShape(150001, 2)
	ctx := WithContext(context.Background(), lc.WithTrace("abc", "def"))

	InfoCtx(ctx, "lookup", Outcome("found"))
	out := buf.String()
	for _, want := range []string{"trace_id=abc", "span_id=def", "request_id=req-1", "client_ip=10.0.0.1",
		"dataset=web_data", "shape_id=150001", "chunk=2", "outcome=found"} {
		assert.Contains(t, out, want)
	}
	assert.Less(t, strings.Index(out, "trace_id"), strings.Index(out, "outcome"))

	buf.Reset()
	DebugCtx(context.Background(), "plain")
	ErrorCtx(ctx, "bad")
	out = buf.String()
	assert.Contains(t, out, "plain")
	assert.Contains(t, out, "bad")
}

func TestLogContext(t *testing.T) {
	var nilLC *LogContext
	assert.Nil(t, nilLC.Clone())
	assert.Nil(t, nilLC.WithDataset("x"))
	assert.Zero(t, nilLC.DurationMs())

	base := NewLogContext("r", "ip")
	derived := base.WithDataset("a")
	assert.Empty(t, base.Dataset)
	assert.Equal(t, "a", derived.Dataset)
	assert.GreaterOrEqual(t, base.DurationMs(), 0.0)

	ctx := Enrich(context.Background(), func(lc *LogContext) { lc.Dataset = "b" })
	assert.Equal(t, "b", FromContext(ctx).Dataset)

	ctx2 := Enrich(ctx, func(lc *LogContext) { lc.ShapeID = 7 })
	assert.Equal(t, "b", FromContext(ctx2).Dataset)
	assert.Equal(t, 7, FromContext(ctx2).ShapeID)
	assert.Zero(t, FromContext(ctx).ShapeID)
}

func TestConcurrentLogging(t *testing.T) {
	buf := &syncBuffer{}
	InitWithWriter(buf, "INFO", "text", false)
	t.Cleanup(func() { InitWithWriter(os.Stderr, "INFO", "text", false) })

	var wg sync.WaitGroup
	for i := range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 50 {
				Info("concurrent", "worker", i)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1000, strings.Count(buf.String(), "concurrent"))
}

func TestInit(t *testing.T) {
	t.Run("File", func(t *testing.T) {
		captureOutput(t)
		path := filepath.Join(t.TempDir(), "shapeview.log")

		require.NoError(t, Init(Config{Level: "INFO", Format: "text", Output: path}))
		Info("to file")
		require.NoError(t, Init(Config{Output: "stderr"}))

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(data), "to file")
	})

	t.Run("BadLevel", func(t *testing.T) {
		captureOutput(t)
		assert.Error(t, Init(Config{Level: "chatty"}))
	})

	t.Run("UnwritableFile", func(t *testing.T) {
		captureOutput(t)
		assert.Error(t, Init(Config{Output: filepath.Join(t.TempDir(), "missing", "x.log")}))
	})
}
