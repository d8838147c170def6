package logger

import (
	"strings"

	"go.uber.org/zap/zapcore"
)

// secretKeys lists field keys whose string values are never written verbatim.
var secretKeys = map[string]struct{}{
	"token":         {},
	"access_token":  {},
	"password":      {},
	"authorization": {},
	"secret":        {},
}

// MaskSecret shortens a credential for logs: "(empty)", "****" for short
// values, otherwise the first and last four characters.
func MaskSecret(s string) string {
	if s == "" {
		return "(empty)"
	}
	if len(s) <= 8 {
		return "****"
	}
	return s[:4] + "..." + s[len(s)-4:]
}

type redactCore struct {
	zapcore.Core
}

func newRedactCore(core zapcore.Core) zapcore.Core {
	return &redactCore{Core: core}
}

func (c *redactCore) With(fields []zapcore.Field) zapcore.Core {
	return &redactCore{Core: c.Core.With(redactFields(fields))}
}

func (c *redactCore) Check(ent zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.Enabled(ent.Level) {
		return ce.AddCore(ent, c)
	}
	return ce
}

func (c *redactCore) Write(ent zapcore.Entry, fields []zapcore.Field) error {
	return c.Core.Write(ent, redactFields(fields))
}

func redactFields(fields []zapcore.Field) []zapcore.Field {
	var out []zapcore.Field
	for i, f := range fields {
		if f.Type != zapcore.StringType {
			continue
		}
		if _, ok := secretKeys[strings.ToLower(f.Key)]; !ok {
			continue
		}
		if out == nil {
			out = make([]zapcore.Field, len(fields))
			copy(out, fields)
		}
		out[i].String = MaskSecret(f.String)
	}
	if out == nil {
		return fields
	}
	return out
}
