package logger

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Logger is a zerolog logger tagged with the part of the watcher it serves
type Logger struct {
	zerolog.Logger
}

var (
	mu   sync.Mutex
	root *Logger
)

// Init sends console logs to stdout
func Init() {
	Setup(os.Stdout)
}

// Setup sends console formatted logs to out. The level comes from LOG_LEVEL,
// or from LISTING_ENVIRONMENT when LOG_LEVEL is unset.
func Setup(out io.Writer) {
	l := newConsole(out)

	mu.Lock()
	root = l
	mu.Unlock()
}

func newConsole(out io.Writer) *Logger {
	zerolog.TimeFieldFormat = time.RFC3339
	zerolog.SetGlobalLevel(levelFromEnv())

	console := zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	return &Logger{zerolog.New(console).With().Timestamp().Logger()}
}

// Root returns the process logger, writing to stdout until Setup is called
func Root() *Logger {
	mu.Lock()
	defer mu.Unlock()
	if root == nil {
		root = newConsole(os.Stdout)
	}
	return root
}

func levelFromEnv() zerolog.Level {
	if name := os.Getenv("LOG_LEVEL"); name != "" {
		level, err := zerolog.ParseLevel(name)
		if err != nil {
			return zerolog.InfoLevel
		}
		return level
	}
	if os.Getenv("LISTING_ENVIRONMENT") == "production" {
		return zerolog.InfoLevel
	}
	return zerolog.DebugLevel
}

// ForCrawler tags logs with the site and the watched page
func ForCrawler(provider, page string) *Logger {
	return &Logger{Root().With().
		Str("component", "crawler").
		Str("provider", provider).
		Str("page", page).
		Logger()}
}

// ForRun tags worker logs with the number of the run, counted from 1
func ForRun(run int) *Logger {
	return &Logger{Root().With().Str("component", "worker").Int("run", run).Logger()}
}

// ForPublisher tags logs with the notification channel, e.g. "telegram"
func ForPublisher(sink string) *Logger {
	return &Logger{Root().With().Str("component", "publisher").Str("sink", sink).Logger()}
}

// ForCache tags logs with the cache backend, "seen" or "memcache"
func ForCache(backend string) *Logger {
	return &Logger{Root().With().Str("component", "cache").Str("backend", backend).Logger()}
}
