package actions

import (
	"fmt"
	"io"
	"sort"
	"strings"
)

// Workflow command names understood by the runner.
const (
	CommandDebug     = "debug"
	CommandNotice    = "notice"
	CommandWarning   = "warning"
	CommandError     = "error"
	CommandSetOutput = "set-output"
	CommandAddPath   = "add-path"
)

// IssueCommand writes a single workflow command line to w.
//
//	::name key=value,key=value::message
func IssueCommand(w io.Writer, name string, props map[string]string, message string) error {
	_, err := io.WriteString(w, FormatCommand(name, props, message)+"\n")
	return err
}

// FormatCommand renders a workflow command without the trailing newline.
// Properties are sorted so output is deterministic.
func FormatCommand(name string, props map[string]string, message string) string {
	var b strings.Builder
	b.WriteString("::")
	b.WriteString(name)

	if len(props) > 0 {
		keys := make([]string, 0, len(props))
		for k, v := range props {
			if v != "" {
				keys = append(keys, k)
			}
		}
		sort.Strings(keys)

		for i, k := range keys {
			if i == 0 {
				b.WriteByte(' ')
			} else {
				b.WriteByte(',')
			}
			fmt.Fprintf(&b, "%s=%s", k, escapeProperty(props[k]))
		}
	}

	b.WriteString("::")
	b.WriteString(escapeData(message))
	return b.String()
}

var (
	dataEscaper = strings.NewReplacer(
		"%", "%25",
		"\r", "%0D",
		"\n", "%0A",
	)
	propertyEscaper = strings.NewReplacer(
		"%", "%25",
		"\r", "%0D",
		"\n", "%0A",
		":", "%3A",
		",", "%2C",
	)
)

func escapeData(s string) string {
	return dataEscaper.Replace(s)
}

func escapeProperty(s string) string {
	return propertyEscaper.Replace(s)
}
