package observability

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/upb/web-core/internal/masking"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// maskingCore wraps a zapcore.Core and desensitizes field values before they
// reach the wrapped core's encoder.
type maskingCore struct {
	zapcore.Core
	masker *masking.Masker
}

// NewMaskingCore wraps core so that string, byte string, reflected and
// Stringer fields are passed through masker. A nil masker or an empty field
// set returns core unchanged.
func NewMaskingCore(core zapcore.Core, masker *masking.Masker) zapcore.Core {
	if masker == nil || masker.Fields().Len() == 0 {
		return core
	}
	return &maskingCore{Core: core, masker: masker}
}

func (c *maskingCore) With(fields []zapcore.Field) zapcore.Core {
	return &maskingCore{Core: c.Core.With(c.maskFields(fields)), masker: c.masker}
}

func (c *maskingCore) Check(entry zapcore.Entry, checked *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.Enabled(entry.Level) {
		return checked.AddCore(entry, c)
	}
	return checked
}

func (c *maskingCore) Write(entry zapcore.Entry, fields []zapcore.Field) error {
	return c.Core.Write(entry, c.maskFields(fields))
}

// maskFields copies fields only when at least one of them changes.
func (c *maskingCore) maskFields(fields []zapcore.Field) []zapcore.Field {
	var out []zapcore.Field
	for i, f := range fields {
		masked, changed := c.maskField(f)
		if !changed {
			continue
		}
		if out == nil {
			out = make([]zapcore.Field, len(fields))
			copy(out, fields)
		}
		out[i] = masked
	}
	if out == nil {
		return fields
	}
	return out
}

func (c *maskingCore) maskField(f zapcore.Field) (masked zapcore.Field, changed bool) {
	defer func() {
		if recover() != nil {
			masked, changed = f, false
		}
	}()

	switch f.Type {
	case zapcore.StringType:
		if s := c.masker.MaskString(f.String); s != f.String {
			return zap.String(f.Key, s), true
		}
	case zapcore.ByteStringType:
		b, _ := f.Interface.([]byte)
		if s := c.masker.MaskString(string(b)); s != string(b) {
			return zap.ByteString(f.Key, []byte(s)), true
		}
	case zapcore.StringerType:
		stringer, ok := f.Interface.(fmt.Stringer)
		if !ok {
			return f, false
		}
		text := stringer.String()
		if s := c.masker.MaskString(text); s != text {
			return zap.String(f.Key, s), true
		}
	case zapcore.ReflectType:
		switch v := c.masker.Mask(f.Interface).(type) {
		case masking.Node:
			return zap.Reflect(f.Key, v), true
		case string:
			if orig, _ := f.Interface.(string); orig != v {
				return zap.String(f.Key, v), true
			}
		case json.RawMessage:
			if orig, _ := f.Interface.(json.RawMessage); !bytes.Equal(orig, v) {
				return zap.Reflect(f.Key, v), true
			}
		}
	}
	return f, false
}
