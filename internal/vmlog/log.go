// Package vmlog provides the structured, leveled logging used for
// interpreter diagnostics (the interpreter's debug-build dispatch line and
// GC-scope baseline warnings; the parser does not log). The shape follows
// ethereum-go-ethereum's "log" package: a Logger that carries a chain of
// key/value context and a Handler that decides where records go. Levels
// are recorded on each Record but not filtered: every call reaches the
// Handler, and the default discarding Handler drops them.
package vmlog

import (
	"fmt"
	"io"
	"os"
	"sync/atomic"
	"time"
)

// Lvl is the level of a log record, ordered from most to least severe.
type Lvl int

const (
	LvlCrit Lvl = iota
	LvlError
	LvlWarn
	LvlInfo
	LvlDebug
)

func (l Lvl) String() string {
	switch l {
	case LvlCrit:
		return "crit"
	case LvlError:
		return "error"
	case LvlWarn:
		return "warn"
	case LvlInfo:
		return "info"
	case LvlDebug:
		return "debug"
	default:
		return "unknown"
	}
}

// Record is a single log line: a message plus an even-length slice of
// alternating key/value context.
type Record struct {
	Time time.Time
	Lvl  Lvl
	Msg  string
	Ctx  []interface{}
}

// Handler writes a Record somewhere.
type Handler interface {
	Log(r *Record) error
}

// Logger emits every Record to its Handler; it has no level threshold.
type Logger struct {
	ctx     []interface{}
	handler atomic.Value // Handler
}

// Root is the default logger, matching the teacher package's top-level
// convenience functions (log.Info, log.Warn, ...).
var Root = New()

// New creates a Logger with no context, writing to a discarding handler
// until SetHandler is called. Embedders that want output call
// Root.SetHandler(StreamHandler(os.Stderr)).
func New(ctx ...interface{}) *Logger {
	l := &Logger{ctx: ctx}
	l.handler.Store(DiscardHandler())
	return l
}

// New returns a new Logger with additional context appended.
func (l *Logger) New(ctx ...interface{}) *Logger {
	child := &Logger{ctx: append(append([]interface{}{}, l.ctx...), ctx...)}
	child.handler.Store(l.handler.Load())
	return child
}

// SetHandler replaces the Logger's handler.
func (l *Logger) SetHandler(h Handler) {
	l.handler.Store(h)
}

func (l *Logger) write(lvl Lvl, msg string, ctx []interface{}) {
	h, _ := l.handler.Load().(Handler)
	if h == nil {
		return
	}
	_ = h.Log(&Record{
		Time: time.Now(),
		Lvl:  lvl,
		Msg:  msg,
		Ctx:  append(append([]interface{}{}, l.ctx...), ctx...),
	})
}

func (l *Logger) Debug(msg string, ctx ...interface{}) { l.write(LvlDebug, msg, ctx) }
func (l *Logger) Info(msg string, ctx ...interface{})  { l.write(LvlInfo, msg, ctx) }
func (l *Logger) Warn(msg string, ctx ...interface{})  { l.write(LvlWarn, msg, ctx) }
func (l *Logger) Error(msg string, ctx ...interface{}) { l.write(LvlError, msg, ctx) }
func (l *Logger) Crit(msg string, ctx ...interface{})  { l.write(LvlCrit, msg, ctx) }

// discard is a Handler that drops every record; it is the zero-cost default.
type discard struct{}

func (discard) Log(*Record) error { return nil }

// DiscardHandler returns a Handler that drops all records.
func DiscardHandler() Handler { return discard{} }

// streamHandler writes terse "lvl msg key=value ..." lines to a writer.
type streamHandler struct {
	w io.Writer
}

// StreamHandler returns a Handler writing human-readable lines to w.
func StreamHandler(w io.Writer) Handler {
	return &streamHandler{w: w}
}

func (h *streamHandler) Log(r *Record) error {
	line := fmt.Sprintf("%s %-5s %s", r.Time.Format("15:04:05.000"), r.Lvl, r.Msg)
	for i := 0; i+1 < len(r.Ctx); i += 2 {
		line += fmt.Sprintf(" %v=%v", r.Ctx[i], r.Ctx[i+1])
	}
	_, err := fmt.Fprintln(h.w, line)
	return err
}

// StderrHandler is a convenience StreamHandler writing to os.Stderr.
var StderrHandler = StreamHandler(os.Stderr)
