package logger

import (
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap/buffer"
	"go.uber.org/zap/zapcore"
)

var bufferpool = buffer.NewPool()

const (
	ansiReset   = "\x1b[0m"
	ansiRed     = "\x1b[31m"
	ansiYellow  = "\x1b[33m"
	ansiBlue    = "\x1b[34m"
	ansiMagenta = "\x1b[35m"
)

// kvEncoder renders entries as
//
//	[2006-01-02 15:04:05] [INFO] caller.go:12 message key=value key=value
//
// Context fields added through With are kept in the embedded map encoder and
// printed in key order before the entry's own fields.
type kvEncoder struct {
	*zapcore.MapObjectEncoder
	color bool
}

func newKVEncoder(color bool) zapcore.Encoder {
	return &kvEncoder{MapObjectEncoder: zapcore.NewMapObjectEncoder(), color: color}
}

func (e *kvEncoder) Clone() zapcore.Encoder {
	clone := zapcore.NewMapObjectEncoder()
	for k, v := range e.Fields {
		clone.Fields[k] = v
	}
	return &kvEncoder{MapObjectEncoder: clone, color: e.color}
}

func (e *kvEncoder) EncodeEntry(entry zapcore.Entry, fields []zapcore.Field) (*buffer.Buffer, error) {
	buf := bufferpool.Get()

	buf.AppendString("[" + entry.Time.Format("2006-01-02 15:04:05") + "] ")
	buf.AppendString(e.levelString(entry.Level))
	buf.AppendByte(' ')
	if entry.Caller.Defined {
		buf.AppendString(entry.Caller.TrimmedPath())
		buf.AppendByte(' ')
	}
	buf.AppendString(entry.Message)

	appendSorted(buf, e.Fields)
	for _, f := range fields {
		m := zapcore.NewMapObjectEncoder()
		f.AddTo(m)
		appendSorted(buf, m.Fields)
	}

	if entry.Stack != "" {
		buf.AppendByte('\n')
		buf.AppendString(entry.Stack)
	}
	buf.AppendString(zapcore.DefaultLineEnding)
	return buf, nil
}

func (e *kvEncoder) levelString(level zapcore.Level) string {
	s := "[" + level.CapitalString() + "]"
	if !e.color {
		return s
	}
	color := ansiReset
	switch level {
	case zapcore.DebugLevel:
		color = ansiMagenta
	case zapcore.InfoLevel:
		color = ansiBlue
	case zapcore.WarnLevel:
		color = ansiYellow
	case zapcore.ErrorLevel, zapcore.DPanicLevel, zapcore.PanicLevel, zapcore.FatalLevel:
		color = ansiRed
	}
	return color + s + ansiReset
}

func appendSorted(buf *buffer.Buffer, values map[string]any) {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		buf.AppendByte(' ')
		buf.AppendString(k)
		buf.AppendByte('=')
		appendValue(buf, values[k])
	}
}

func appendValue(buf *buffer.Buffer, v any) {
	switch val := v.(type) {
	case string:
		buf.AppendString(val)
	case time.Duration:
		buf.AppendString(val.String())
	case time.Time:
		buf.AppendString(val.Format(time.RFC3339))
	case []byte:
		buf.AppendString(string(val))
	default:
		buf.AppendString(fmt.Sprint(val))
	}
}
