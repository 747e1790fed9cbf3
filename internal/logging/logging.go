package logging

import (
	"io"
	"os"
	"sort"
	"strings"

	"github.com/charmbracelet/log"
)

// New builds a logger writing to w. Unknown levels fall back to info and any
// format other than "json" is rendered as text.
func New(level, format string, w io.Writer) *log.Logger {
	if w == nil {
		w = os.Stderr
	}
	lvl, err := log.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil {
		lvl = log.InfoLevel
	}
	opts := log.Options{Level: lvl, ReportTimestamp: true, Formatter: log.TextFormatter}
	if strings.EqualFold(format, "json") {
		opts.Formatter = log.JSONFormatter
	}
	return log.NewWithOptions(w, opts)
}

// SetDefault installs l as the logger behind Info, Warn and Error.
func SetDefault(l *log.Logger) { log.SetDefault(l) }

func Default() *log.Logger { return log.Default() }

func Info(msg string, fields map[string]any)  { log.Default().Info(msg, keyvals(fields)...) }
func Warn(msg string, fields map[string]any)  { log.Default().Warn(msg, keyvals(fields)...) }
func Error(msg string, fields map[string]any) { log.Default().Error(msg, keyvals(fields)...) }

// keyvals flattens fields in key order so output is stable.
func keyvals(fields map[string]any) []any {
	if len(fields) == 0 {
		return nil
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]any, 0, 2*len(keys))
	for _, k := range keys {
		out = append(out, k, fields[k])
	}
	return out
}

