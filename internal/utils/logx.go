package utils

import (
	"log"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LogxManager hands out one zap logger per pipeline component, each with
// leveled sinks under basePath/<component>/. Config fallbacks log at
// Warn; per-request recoveries log at Debug so they stay out of the hot
// sinks by default.
type LogxManager struct {
	basePath string
	nop      bool
	loggers  map[string]*zap.Logger
	mu       sync.RWMutex
}

// NewManager creates a manager writing under base.
func NewManager(base string) *LogxManager {
	m := &LogxManager{basePath: base, loggers: make(map[string]*zap.Logger)}

	if err := os.MkdirAll(m.basePath, 0744); err != nil {
		log.Printf("failed to create base log dir %s: %v", m.basePath, err)
	}
	return m
}

// NewNopManager creates a manager that discards everything. Library
// hosts that own their own logging use this.
func NewNopManager() *LogxManager {
	return &LogxManager{nop: true, loggers: make(map[string]*zap.Logger)}
}

func (m *LogxManager) getLogger(component string) *zap.Logger {
	m.mu.RLock()
	if lg, ok := m.loggers[component]; ok {
		m.mu.RUnlock()
		return lg
	}
	m.mu.RUnlock()
	m.mu.Lock()
	defer m.mu.Unlock()
	if lg, ok := m.loggers[component]; ok {
		return lg
	}
	if m.nop {
		lg := zap.NewNop()
		m.loggers[component] = lg
		return lg
	}

	dir := filepath.Join(m.basePath, component)
	if err := os.MkdirAll(dir, 0744); err != nil {
		log.Printf("failed to create log dir %s: %v", dir, err)
	}

	encCfg := zapcore.EncoderConfig{MessageKey: "msg", LineEnding: zapcore.DefaultLineEnding}
	encoder := zapcore.NewConsoleEncoder(encCfg)

	warnOut := zapcore.AddSync(m.openLogFile(filepath.Join(dir, "warn.log")))
	dbgOut := zapcore.AddSync(m.openLogFile(filepath.Join(dir, "debug.log")))

	warnLv := zap.LevelEnablerFunc(func(l zapcore.Level) bool { return l >= zapcore.WarnLevel })
	dbgLv := zap.LevelEnablerFunc(func(l zapcore.Level) bool { return l == zapcore.DebugLevel })

	tee := zapcore.NewTee(
		zapcore.NewCore(encoder, warnOut, warnLv),
		zapcore.NewCore(encoder, dbgOut, dbgLv),
	)
	lg := zap.New(tee)
	m.loggers[component] = lg
	return lg
}

func (m *LogxManager) openLogFile(path string) *os.File {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		log.Printf("failed to open log file %s: %v", path, err)
		return os.Stdout
	}
	return f
}

// LogWarn records a configuration-time fallback for a component.
func (m *LogxManager) LogWarn(component, msg, detail string) {
	m.getLogger(component).Warn(msg + " " + detail)
}

// LogDebug records a per-request recovery for a component.
func (m *LogxManager) LogDebug(component, msg, detail string) {
	m.getLogger(component).Debug(msg + " " + detail)
}
