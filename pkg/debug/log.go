package debug

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
)

// Log is the shared structured logger; it writes text records to stderr
// without timestamps.
var Log = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
	Level: slog.LevelDebug,
	ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
		if a.Key == slog.TimeKey {
			return slog.Attr{}
		}
		return a
	},
}))

// Logf emits a debug trace line through Log.
func Logf(msg string, args ...any) {
	Log.Debug(strings.TrimSuffix(fmt.Sprintf(msg, args...), "\n"))
}
