package logconfig

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strings"
	"sync"

	"fjacquet/ar-clearing/internal/logging"

	"github.com/natefinch/lumberjack"
	"github.com/sirupsen/logrus"
)

const mebibyte = 1 << 20

// Options adjust how a configuration is turned into loggers
type Options struct {
	// LogFile replaces the filename of the FileHandlers the Logger writes
	// to, directly or through the root. Rotating handlers keep their own
	// file since lumberjack renames it on rotation.
	LogFile string
	// Logger names the application logger LogFile applies to. Empty means
	// every FileHandler.
	Logger string
	// Truncate empties LogFile before the first write
	Truncate bool
	// Debug lowers every logger to at least DEBUG
	Debug bool
	// Stdout and Stderr back the stream handlers; nil means os.Stdout/os.Stderr
	Stdout io.Writer
	Stderr io.Writer
}

// HeaderLine is one "key: value" line of a run header
type HeaderLine struct {
	Key   string
	Value string
}

// Registry holds the loggers built from a configuration
type Registry struct {
	root    *logrus.Logger
	loggers map[string]*logrus.Logger
	closers []io.Closer
}

// handlerHook writes entries at or above its level through its own formatter
type handlerHook struct {
	levels    []logrus.Level
	formatter logrus.Formatter
	out       io.Writer
	mu        sync.Mutex
}

func (h *handlerHook) Levels() []logrus.Level {
	return h.levels
}

func (h *handlerHook) Fire(entry *logrus.Entry) error {
	b, err := h.formatter.Format(entry)
	if err != nil {
		return err
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	_, err = h.out.Write(b)
	return err
}

// discardFormatter keeps logrus from rendering entries nobody reads; all
// output goes through the handler hooks.
type discardFormatter struct{}

func (discardFormatter) Format(*logrus.Entry) ([]byte, error) {
	return nil, nil
}

// Build creates the handlers and loggers of cfg. Files are opened
// immediately; Close releases them.
func Build(cfg *Config, opts Options) (*Registry, error) {
	if cfg.formatters == nil {
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}

	r := &Registry{loggers: make(map[string]*logrus.Logger, len(cfg.Loggers))}
	redirected := logFileHandlers(cfg, opts)
	files := make(map[string]io.Writer)
	hooks := make(map[string]*handlerHook, len(cfg.Handlers))
	for _, name := range sortedKeys(cfg.Handlers) {
		h := cfg.Handlers[name]
		target := fileTarget{name: h.Filename, truncate: h.Mode == "w"}
		if redirected[name] {
			target = fileTarget{name: opts.LogFile, truncate: opts.Truncate}
		}
		hook, err := r.newHook(cfg, h, target, files, opts)
		if err != nil {
			_ = r.Close()
			return nil, fmt.Errorf("failed to create handler '%s': %w", name, err)
		}
		hooks[name] = hook
	}

	root := cfg.Root
	if root == nil {
		root = &Logger{Level: "WARNING"}
	}
	rootLevel, _ := parseLevel(root.Level)
	rootHooks := selectHooks(hooks, root.Handlers)
	r.root = newLogrusLogger(effectiveLevel(rootLevel, opts.Debug), rootHooks)

	for _, name := range sortedKeys(cfg.Loggers) {
		l := cfg.Loggers[name]
		if l == nil {
			l = &Logger{}
		}
		level := rootLevel
		if !isNotSet(l.Level) {
			level, _ = parseLevel(l.Level)
		}
		own := selectHooks(hooks, l.Handlers)
		if l.Propagates() {
			own = appendUnique(own, rootHooks)
		}
		r.loggers[name] = newLogrusLogger(effectiveLevel(level, opts.Debug), own)
	}
	return r, nil
}

// fileTarget is the file a handler writes to
type fileTarget struct {
	name     string
	truncate bool
}

// logFileHandlers returns the FileHandlers whose output goes to
// Options.LogFile
func logFileHandlers(cfg *Config, opts Options) map[string]bool {
	if opts.LogFile == "" {
		return nil
	}

	var names []string
	if opts.Logger == "" {
		names = sortedKeys(cfg.Handlers)
	} else {
		propagate := true
		if l := cfg.findLogger(opts.Logger); l != nil {
			names = append(names, l.Handlers...)
			propagate = l.Propagates()
		}
		if propagate && cfg.Root != nil {
			names = append(names, cfg.Root.Handlers...)
		}
	}

	out := make(map[string]bool, len(names))
	for _, name := range names {
		if h, ok := cfg.Handlers[name]; ok && h != nil && h.Kind() == ClassFile {
			out[name] = true
		}
	}
	return out
}

// findLogger returns the configuration of name or of its closest dotted
// parent
func (c *Config) findLogger(name string) *Logger {
	for candidate := name; candidate != ""; {
		if l, ok := c.Loggers[candidate]; ok {
			if l == nil {
				return &Logger{}
			}
			return l
		}
		i := strings.LastIndex(candidate, ".")
		if i < 0 {
			break
		}
		candidate = candidate[:i]
	}
	return nil
}

func (r *Registry) newHook(cfg *Config, h *Handler, target fileTarget, files map[string]io.Writer, opts Options) (*handlerHook, error) {
	level, _ := parseLevel(h.Level)
	hook := &handlerHook{levels: levelsUpTo(level)}

	if h.Formatter != "" {
		hook.formatter = cfg.formatters[h.Formatter]
	} else {
		pf, err := NewPatternFormatter(DefaultFormat, "")
		if err != nil {
			return nil, err
		}
		hook.formatter = pf
	}

	switch h.Kind() {
	case ClassStream:
		hook.out = opts.Stderr
		if h.Stream == StreamStdout {
			hook.out = opts.Stdout
		}
		return hook, nil
	case ClassFile, ClassRotatingFile:
	default:
		return nil, fmt.Errorf("unsupported handler class '%s'", h.Class)
	}

	filename := target.name
	if out, ok := files[filename]; ok {
		hook.out = out
		return hook, nil
	}
	if target.truncate {
		if err := os.WriteFile(filename, nil, 0o644); err != nil {
			return nil, err
		}
	}

	if h.Kind() == ClassRotatingFile {
		lj := &lumberjack.Logger{
			Filename:   filename,
			MaxSize:    maxSizeMiB(h.MaxBytes),
			MaxBackups: h.BackupCount,
		}
		r.closers = append(r.closers, lj)
		files[filename] = lj
		hook.out = lj
		return hook, nil
	}

	f, err := os.OpenFile(filename, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, err
	}
	r.closers = append(r.closers, f)
	files[filename] = f
	hook.out = f
	return hook, nil
}

// maxSizeMiB converts a byte limit to lumberjack's megabyte unit, rounding
// up. Zero keeps lumberjack's default size.
func maxSizeMiB(maxBytes int64) int {
	if maxBytes <= 0 {
		return 0
	}
	return int(math.Ceil(float64(maxBytes) / mebibyte))
}

func effectiveLevel(level logrus.Level, debug bool) logrus.Level {
	if debug && level < logrus.DebugLevel {
		return logrus.DebugLevel
	}
	return level
}

func selectHooks(hooks map[string]*handlerHook, names []string) []*handlerHook {
	var out []*handlerHook
	for _, name := range names {
		if h, ok := hooks[name]; ok {
			out = appendUnique(out, []*handlerHook{h})
		}
	}
	return out
}

func appendUnique(dst, src []*handlerHook) []*handlerHook {
	for _, h := range src {
		found := false
		for _, d := range dst {
			if d == h {
				found = true
				break
			}
		}
		if !found {
			dst = append(dst, h)
		}
	}
	return dst
}

func newLogrusLogger(level logrus.Level, hooks []*handlerHook) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	l.SetFormatter(discardFormatter{})
	l.SetLevel(level)
	levelHooks := make(logrus.LevelHooks)
	for _, h := range hooks {
		levelHooks.Add(h)
	}
	l.ReplaceHooks(levelHooks)
	return l
}

// Logger returns the logger configured for name. Dotted names fall back to
// their closest configured parent, then to the root logger.
func (r *Registry) Logger(name string) logging.Logger {
	if name == "" {
		name = RootLogger
	}
	return logging.NewLogrusAdapterFromLogger(r.lookup(name)).WithField(logging.FieldLogger, name)
}

func (r *Registry) lookup(name string) *logrus.Logger {
	for candidate := name; candidate != ""; {
		if l, ok := r.loggers[candidate]; ok {
			return l
		}
		i := strings.LastIndex(candidate, ".")
		if i < 0 {
			break
		}
		candidate = candidate[:i]
	}
	return r.root
}

// Names returns the configured logger names
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.loggers))
	for name := range r.loggers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// WriteHeader logs a run header on the named logger, one "key: value"
// line per entry followed by a blank line.
func (r *Registry) WriteHeader(name string, lines []HeaderLine) {
	log := r.Logger(name)
	for i, line := range lines {
		msg := line.Key + ": " + line.Value
		if i == len(lines)-1 {
			msg += "\n"
		}
		log.Info(msg)
	}
}

// Close flushes and closes the file handlers
func (r *Registry) Close() error {
	var errs []error
	for _, c := range r.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	r.closers = nil
	return errors.Join(errs...)
}
