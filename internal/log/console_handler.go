package log

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"
)

const (
	colorReset  = "\033[0m"
	colorDim    = "\033[2m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorBlue   = "\033[34m"
)

// consoleHandler writes one human-readable line per record:
//
//	15:04:05.000 INF transcript stored id=7 summary_len=412
//
// Attributes added through WithAttrs are rendered once and reused.
type consoleHandler struct {
	out    io.Writer
	mu     *sync.Mutex
	level  slog.Leveler
	prefix string
	suffix []byte
}

func newConsoleHandler(w io.Writer, opts *slog.HandlerOptions) *consoleHandler {
	var level slog.Leveler = slog.LevelInfo
	if opts != nil && opts.Level != nil {
		level = opts.Level
	}
	return &consoleHandler{out: w, mu: &sync.Mutex{}, level: level}
}

func (h *consoleHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *consoleHandler) Handle(_ context.Context, r slog.Record) error {
	ts := r.Time
	if ts.IsZero() {
		ts = time.Now()
	}

	buf := bytes.NewBuffer(make([]byte, 0, 256))
	buf.WriteString(colorDim + ts.Format("15:04:05.000") + colorReset + " ")
	buf.WriteString(levelTag(r.Level) + " ")
	buf.WriteString(r.Message)
	buf.Write(h.suffix)
	r.Attrs(func(a slog.Attr) bool {
		writeAttr(buf, h.prefix, a)
		return true
	})
	buf.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := h.out.Write(buf.Bytes())
	return err
}

func (h *consoleHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	buf := bytes.NewBuffer(append([]byte(nil), h.suffix...))
	for _, a := range attrs {
		writeAttr(buf, h.prefix, a)
	}
	clone := *h
	clone.suffix = buf.Bytes()
	return &clone
}

func (h *consoleHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := *h
	clone.prefix = h.prefix + name + "."
	return &clone
}

func levelTag(level slog.Level) string {
	switch {
	case level < slog.LevelInfo:
		return colorBlue + "DBG" + colorReset
	case level < slog.LevelWarn:
		return colorGreen + "INF" + colorReset
	case level < slog.LevelError:
		return colorYellow + "WRN" + colorReset
	default:
		return colorRed + "ERR" + colorReset
	}
}

func writeAttr(buf *bytes.Buffer, prefix string, a slog.Attr) {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}
	if a.Value.Kind() == slog.KindGroup {
		if a.Key != "" {
			prefix += a.Key + "."
		}
		for _, ga := range a.Value.Group() {
			writeAttr(buf, prefix, ga)
		}
		return
	}

	buf.WriteString(" " + colorDim + prefix + a.Key + "=" + colorReset)
	buf.WriteString(formatValue(a.Value))
}

func formatValue(v slog.Value) string {
	switch v.Kind() {
	case slog.KindString:
		s := v.String()
		if s == "" || strings.ContainsAny(s, " \t\n\"=\\") {
			return strconv.Quote(s)
		}
		return s
	case slog.KindTime:
		return v.Time().Format(time.RFC3339)
	default:
		return v.String()
	}
}
