package actions

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// ErrInputRequired is returned when a required input is missing or blank.
var ErrInputRequired = errors.New("input required and not supplied")

// Runner gives access to the environment of the current workflow step.
type Runner struct {
	getenv func(string) string
	setenv func(string, string) error
	out    io.Writer
}

// NewRunner creates a Runner backed by the process environment that writes
// workflow commands to out.
func NewRunner(out io.Writer) *Runner {
	return &Runner{
		getenv: os.Getenv,
		setenv: os.Setenv,
		out:    out,
	}
}

// InputOptions controls how an input is read.
type InputOptions struct {
	Required bool
	// KeepWhitespace disables trimming of the value
	KeepWhitespace bool
}

// Input returns the value of the named input.
func (r *Runner) Input(name string, opts InputOptions) (string, error) {
	val := r.getenv(inputEnvName(name))
	if !opts.KeepWhitespace {
		val = strings.TrimSpace(val)
	}

	if opts.Required && val == "" {
		return "", fmt.Errorf("%w: %s", ErrInputRequired, name)
	}

	return val, nil
}

// BoolInput reads a YAML 1.2 core-schema boolean input. An absent optional
// input yields def.
func (r *Runner) BoolInput(name string, required, def bool) (bool, error) {
	val, err := r.Input(name, InputOptions{Required: required})
	if err != nil {
		return false, err
	}

	switch val {
	case "":
		return def, nil
	case "true", "True", "TRUE":
		return true, nil
	case "false", "False", "FALSE":
		return false, nil
	default:
		return false, fmt.Errorf("input %s does not meet YAML 1.2 core schema: %q (use true or false)", name, val)
	}
}

// inputEnvName maps an input name to the variable the runner sets for it.
func inputEnvName(name string) string {
	return "INPUT_" + strings.ToUpper(strings.ReplaceAll(name, " ", "_"))
}

// SetOutput publishes a step output.
func (r *Runner) SetOutput(name, value string) error {
	if path := r.getenv("GITHUB_OUTPUT"); path != "" {
		msg, err := keyValueMessage(name, value)
		if err != nil {
			return err
		}
		if err := appendFile(path, msg); err != nil {
			return fmt.Errorf("set output %s: %w", name, err)
		}
		return nil
	}

	// Legacy runners without output files
	if _, err := io.WriteString(r.out, "\n"); err != nil {
		return err
	}
	return IssueCommand(r.out, CommandSetOutput, map[string]string{"name": name}, value)
}

// keyValueMessage renders the heredoc form used by GITHUB_OUTPUT and GITHUB_ENV.
func keyValueMessage(key, value string) (string, error) {
	delimiter := "ghadelimiter_" + uuid.NewString()
	if strings.Contains(key, delimiter) {
		return "", fmt.Errorf("unexpected input: name should not contain the delimiter %q", delimiter)
	}
	if strings.Contains(value, delimiter) {
		return "", fmt.Errorf("unexpected input: value should not contain the delimiter %q", delimiter)
	}
	return fmt.Sprintf("%s<<%s\n%s\n%s\n", key, delimiter, value, delimiter), nil
}

// PathUpdate reports the outcome of AddPath. A skipped update is not a
// failure of the step: the installed location is also published as an output.
type PathUpdate struct {
	Dir     string
	Applied bool
	Err     error
}

// Skipped reports whether the directory was not added.
func (p PathUpdate) Skipped() bool {
	return !p.Applied
}

// AddPath prepends dir to PATH for this process and all later steps.
func (r *Runner) AddPath(dir string) PathUpdate {
	update := PathUpdate{Dir: dir}

	if file := r.getenv("GITHUB_PATH"); file != "" {
		if err := appendFile(file, dir+"\n"); err != nil {
			update.Err = fmt.Errorf("append to GITHUB_PATH: %w", err)
			return update
		}
	} else if err := IssueCommand(r.out, CommandAddPath, nil, dir); err != nil {
		update.Err = fmt.Errorf("issue add-path: %w", err)
		return update
	}

	current := r.getenv("PATH")
	if current != dir && !strings.HasPrefix(current, dir+string(os.PathListSeparator)) {
		newPath := dir
		if current != "" {
			newPath = dir + string(os.PathListSeparator) + current
		}
		if err := r.setenv("PATH", newPath); err != nil {
			update.Err = fmt.Errorf("set PATH: %w", err)
			return update
		}
	}

	update.Applied = true
	return update
}

// SetFailed reports a step failure. The caller is responsible for exiting
// with a non-zero status.
func (r *Runner) SetFailed(message string) error {
	return IssueCommand(r.out, CommandError, nil, message)
}

// IsDebug reports whether step debug logging is enabled.
func (r *Runner) IsDebug() bool {
	return r.getenv("RUNNER_DEBUG") == "1"
}

// IsActions reports whether the process runs inside a GitHub Actions job.
func (r *Runner) IsActions() bool {
	return r.getenv("GITHUB_ACTIONS") == "true"
}

// Getenv exposes the runner environment to collaborators that need it.
func (r *Runner) Getenv(key string) string {
	return r.getenv(key)
}

func appendFile(path, content string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create dir: %w", err)
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}

	if _, err := f.WriteString(content); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}

	return f.Close()
}
