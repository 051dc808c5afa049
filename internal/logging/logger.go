// Package logging provides config-driven categorized logging for bridge.
// Every category is a named child of a single zap core. Until Initialize is
// called (or when a category is disabled) loggers are no-ops.
package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Category represents a log category/system
type Category string

const (
	CategoryBoot      Category = "boot"      // Startup, configuration
	CategorySource    Category = "source"    // Catalogue source fetches
	CategoryCache     Category = "cache"     // Fetch cache hits, misses, evictions
	CategoryLoader    Category = "loader"    // Catalogue assembly
	CategoryLists     Category = "lists"     // List expansion and choice state
	CategoryUnits     Category = "units"     // Unit synthesis, epoch dispatch
	CategoryTree      Category = "tree"      // Tree projection
	CategoryBranch    Category = "branch"    // Translation overlay, branch rewrite
	CategorySelection Category = "selection" // Selection resolution
	CategoryRedcap    Category = "redcap"    // Data dictionary emission
	CategoryPaper     Category = "paper"     // Paper-form layout
	CategorySession   Category = "session"   // Session state, save/upload
	CategoryBundle    Category = "bundle"    // Configuration bundle
)

// Config mirrors config.LoggingConfig to avoid an import cycle.
type Config struct {
	DebugMode  bool
	Level      string
	Format     string // json, console
	File       string
	Categories map[string]bool
}

// Logger is a category-scoped sugared zap logger.
type Logger struct {
	category Category
	sugar    *zap.SugaredLogger
}

var (
	mu      sync.RWMutex
	base    = zap.NewNop()
	config  Config
	loggers = make(map[Category]*Logger)
	nop     = zap.NewNop().Sugar()
)

// Initialize builds the shared zap core from cfg.
// Safe to call more than once; the previous core is synced and replaced.
func Initialize(cfg Config) error {
	level, err := parseLevel(cfg.Level)
	if err != nil {
		return err
	}
	if cfg.DebugMode {
		level = zapcore.DebugLevel
	}

	var zc zap.Config
	if cfg.Format == "console" {
		zc = zap.NewDevelopmentConfig()
	} else {
		zc = zap.NewProductionConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	zc.OutputPaths = []string{"stderr"}
	if cfg.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.File), 0755); err != nil {
			return fmt.Errorf("failed to create log directory: %w", err)
		}
		zc.OutputPaths = []string{cfg.File}
	}

	l, err := zc.Build()
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	Use(l, cfg)

	Get(CategoryBoot).Debug("logging initialized: level=%s format=%s file=%q", level, zc.Encoding, cfg.File)
	return nil
}

// Use installs an already-built zap logger. Tests use it with an observer core.
func Use(l *zap.Logger, cfg Config) {
	mu.Lock()
	defer mu.Unlock()
	_ = base.Sync()
	base = l
	config = cfg
	loggers = make(map[Category]*Logger)
}

// Sync flushes buffered entries.
func Sync() {
	mu.RLock()
	defer mu.RUnlock()
	_ = base.Sync()
}

// Reset restores the no-op state.
func Reset() {
	Use(zap.NewNop(), Config{})
}

func parseLevel(s string) (zapcore.Level, error) {
	switch strings.ToLower(s) {
	case "", "info":
		return zapcore.InfoLevel, nil
	case "debug":
		return zapcore.DebugLevel, nil
	case "warn", "warning":
		return zapcore.WarnLevel, nil
	case "error":
		return zapcore.ErrorLevel, nil
	default:
		return zapcore.InfoLevel, fmt.Errorf("unknown log level %q", s)
	}
}

// IsCategoryEnabled returns whether a specific category is enabled.
// Categories absent from the map are enabled.
func IsCategoryEnabled(category Category) bool {
	mu.RLock()
	defer mu.RUnlock()
	if config.Categories == nil {
		return true
	}
	enabled, exists := config.Categories[string(category)]
	return !exists || enabled
}

// Get returns (or creates) a logger for the given category.
func Get(category Category) *Logger {
	if !IsCategoryEnabled(category) {
		return &Logger{category: category, sugar: nop}
	}

	mu.RLock()
	if l, ok := loggers[category]; ok {
		mu.RUnlock()
		return l
	}
	mu.RUnlock()

	mu.Lock()
	defer mu.Unlock()
	if l, ok := loggers[category]; ok {
		return l
	}
	l := &Logger{category: category, sugar: base.Named(string(category)).Sugar()}
	loggers[category] = l
	return l
}

// With returns a child logger carrying structured key/value pairs.
func (l *Logger) With(keysAndValues ...interface{}) *Logger {
	return &Logger{category: l.category, sugar: l.sugar.With(keysAndValues...)}
}

func (l *Logger) Debug(format string, args ...interface{}) { l.sugar.Debugf(format, args...) }
func (l *Logger) Info(format string, args ...interface{})  { l.sugar.Infof(format, args...) }
func (l *Logger) Warn(format string, args ...interface{})  { l.sugar.Warnf(format, args...) }
func (l *Logger) Error(format string, args ...interface{}) { l.sugar.Errorf(format, args...) }

// =============================================================================
// CONVENIENCE FUNCTIONS - Quick logging without getting a logger first
// =============================================================================

func Boot(format string, args ...interface{})      { Get(CategoryBoot).Info(format, args...) }
func BootDebug(format string, args ...interface{}) { Get(CategoryBoot).Debug(format, args...) }
func BootWarn(format string, args ...interface{})  { Get(CategoryBoot).Warn(format, args...) }

func Source(format string, args ...interface{})      { Get(CategorySource).Info(format, args...) }
func SourceDebug(format string, args ...interface{}) { Get(CategorySource).Debug(format, args...) }
func SourceWarn(format string, args ...interface{})  { Get(CategorySource).Warn(format, args...) }
func SourceError(format string, args ...interface{}) { Get(CategorySource).Error(format, args...) }

func Cache(format string, args ...interface{})      { Get(CategoryCache).Info(format, args...) }
func CacheDebug(format string, args ...interface{}) { Get(CategoryCache).Debug(format, args...) }
func CacheWarn(format string, args ...interface{})  { Get(CategoryCache).Warn(format, args...) }

func Loader(format string, args ...interface{})      { Get(CategoryLoader).Info(format, args...) }
func LoaderDebug(format string, args ...interface{}) { Get(CategoryLoader).Debug(format, args...) }
func LoaderError(format string, args ...interface{}) { Get(CategoryLoader).Error(format, args...) }

func Lists(format string, args ...interface{})      { Get(CategoryLists).Info(format, args...) }
func ListsDebug(format string, args ...interface{}) { Get(CategoryLists).Debug(format, args...) }
func ListsWarn(format string, args ...interface{})  { Get(CategoryLists).Warn(format, args...) }

func Units(format string, args ...interface{})      { Get(CategoryUnits).Info(format, args...) }
func UnitsDebug(format string, args ...interface{}) { Get(CategoryUnits).Debug(format, args...) }
func UnitsWarn(format string, args ...interface{})  { Get(CategoryUnits).Warn(format, args...) }

func TreeDebug(format string, args ...interface{}) { Get(CategoryTree).Debug(format, args...) }

func Branch(format string, args ...interface{})      { Get(CategoryBranch).Info(format, args...) }
func BranchDebug(format string, args ...interface{}) { Get(CategoryBranch).Debug(format, args...) }
func BranchWarn(format string, args ...interface{})  { Get(CategoryBranch).Warn(format, args...) }

// Selection logs to the selection category
func Selection(format string, args ...interface{}) {
	Get(CategorySelection).Info(format, args...)
}

// SelectionDebug logs debug to the selection category
func SelectionDebug(format string, args ...interface{}) {
	Get(CategorySelection).Debug(format, args...)
}

// SelectionError logs errors to the selection category
func SelectionError(format string, args ...interface{}) {
	Get(CategorySelection).Error(format, args...)
}

func RedcapDebug(format string, args ...interface{}) { Get(CategoryRedcap).Debug(format, args...) }

func PaperDebug(format string, args ...interface{}) { Get(CategoryPaper).Debug(format, args...) }
func PaperWarn(format string, args ...interface{})  { Get(CategoryPaper).Warn(format, args...) }

func Session(format string, args ...interface{})      { Get(CategorySession).Info(format, args...) }
func SessionDebug(format string, args ...interface{}) { Get(CategorySession).Debug(format, args...) }
func SessionError(format string, args ...interface{}) { Get(CategorySession).Error(format, args...) }

func Bundle(format string, args ...interface{}) { Get(CategoryBundle).Info(format, args...) }

// =============================================================================
// TIMING HELPERS
// =============================================================================

// Timer helps measure operation duration
type Timer struct {
	category Category
	op       string
	start    time.Time
}

// StartTimer begins timing an operation
func StartTimer(category Category, operation string) *Timer {
	return &Timer{category: category, op: operation, start: time.Now()}
}

// Stop ends the timer and logs the duration at debug level
func (t *Timer) Stop() time.Duration {
	elapsed := time.Since(t.start)
	Get(t.category).Debug("%s completed in %v", t.op, elapsed)
	return elapsed
}

// StopWithThreshold logs a warning if duration exceeds threshold
func (t *Timer) StopWithThreshold(threshold time.Duration) time.Duration {
	elapsed := time.Since(t.start)
	if elapsed > threshold {
		Get(t.category).Warn("%s took %v (threshold: %v)", t.op, elapsed, threshold)
	} else {
		Get(t.category).Debug("%s completed in %v", t.op, elapsed)
	}
	return elapsed
}
