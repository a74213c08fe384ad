package actions

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap/zapcore"
)

// commandCore is a zapcore.Core that renders log entries as workflow
// commands so warnings and errors surface as annotations in the job summary.
type commandCore struct {
	zapcore.LevelEnabler
	mu     *sync.Mutex
	out    io.Writer
	fields []zapcore.Field
}

// NewCore returns a zap core writing workflow commands to out.
//
// Debug entries become ::debug:: (shown only when step debugging is on),
// warnings ::warning::, errors and above ::error::. Info entries are written
// as plain lines.
func NewCore(out io.Writer, enab zapcore.LevelEnabler) zapcore.Core {
	return &commandCore{
		LevelEnabler: enab,
		mu:           &sync.Mutex{},
		out:          out,
	}
}

func (c *commandCore) With(fields []zapcore.Field) zapcore.Core {
	clone := *c
	clone.fields = make([]zapcore.Field, 0, len(c.fields)+len(fields))
	clone.fields = append(clone.fields, c.fields...)
	clone.fields = append(clone.fields, fields...)
	return &clone
}

func (c *commandCore) Check(ent zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.Enabled(ent.Level) {
		return ce.AddCore(ent, c)
	}
	return ce
}

func (c *commandCore) Write(ent zapcore.Entry, fields []zapcore.Field) error {
	enc := zapcore.NewMapObjectEncoder()
	for _, f := range c.fields {
		f.AddTo(enc)
	}
	for _, f := range fields {
		f.AddTo(enc)
	}

	msg := ent.Message + formatFields(enc.Fields)

	var line string
	switch {
	case ent.Level <= zapcore.DebugLevel:
		line = FormatCommand(CommandDebug, nil, msg)
	case ent.Level == zapcore.InfoLevel:
		line = msg
	case ent.Level == zapcore.WarnLevel:
		line = FormatCommand(CommandWarning, nil, msg)
	default:
		line = FormatCommand(CommandError, nil, msg)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	_, err := io.WriteString(c.out, line+"\n")
	return err
}

func (c *commandCore) Sync() error {
	return nil
}

// formatFields renders structured fields as " key=value" pairs in key order.
func formatFields(fields map[string]interface{}) string {
	if len(fields) == 0 {
		return ""
	}

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&b, " %s=%v", k, fields[k])
	}
	return b.String()
}
