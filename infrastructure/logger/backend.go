package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime/debug"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/jrick/logrotate/rotator"
	"github.com/pkg/errors"
)

// defaultFlags specifies changes to the default logger behavior. It is set
// from the LOGFLAGS environment variable. Backends can override these flags
// using NewBackendWithFlags.
var defaultFlags = getDefaultFlags()

// Flags to modify Backend's behavior.
const (
	// LogFlagLongFile modifies the logger output to include full path and line number
	// of the logging callsite, e.g. /a/b/c/main.go:123.
	LogFlagLongFile uint32 = 1 << iota

	// LogFlagShortFile modifies the logger output to include filename and line number
	// of the logging callsite, e.g. main.go:123. Takes precedence over LogFlagLongFile.
	LogFlagShortFile
)

// getDefaultFlags reads logger flags from the LOGFLAGS environment variable.
// Multiple flags can be set at once, separated by commas.
func getDefaultFlags() (flags uint32) {
	for _, f := range strings.Split(os.Getenv("LOGFLAGS"), ",") {
		switch f {
		case "longfile":
			flags |= LogFlagLongFile
		case "shortfile":
			flags |= LogFlagShortFile
		}
	}
	return
}

const (
	defaultThresholdKB = 100 * 1000 // 100 MB logs by default.
	defaultMaxRolls    = 8          // keep 8 last logs by default.

	writeChanBuffer = 100
)

type logEntry struct {
	log   []byte
	level Level
}

type logWriter interface {
	io.WriteCloser
	LogLevel() Level
}

type levelFilteredWriter struct {
	io.WriteCloser
	logLevel Level
}

func (w levelFilteredWriter) LogLevel() Level {
	return w.logLevel
}

// Backend is a logging backend. Subsystem loggers created from the backend
// send their entries to a single goroutine which writes them to every
// attached writer whose level permits it.
type Backend struct {
	flag      uint32
	isRunning uint32
	writers   []logWriter
	writeChan chan logEntry
	closeLock sync.Mutex // held by the writing goroutine until writeChan is drained
}

// NewBackend creates a new logger backend using the flags found in LOGFLAGS.
func NewBackend() *Backend {
	return NewBackendWithFlags(defaultFlags)
}

// NewBackendWithFlags configures a Backend to use the specified flags rather than
// the package's defaults.
func NewBackendWithFlags(flags uint32) *Backend {
	return &Backend{flag: flags, writeChan: make(chan logEntry, writeChanBuffer)}
}

// AddLogFile adds a rotated file which the log will write into on the given
// log level and above. The file and its directory are created if needed.
func (b *Backend) AddLogFile(logFile string, logLevel Level) error {
	return b.AddLogFileWithCustomRotator(logFile, logLevel, defaultThresholdKB, defaultMaxRolls)
}

// AddLogFileWithCustomRotator adds a file which the log will write into on
// the given log level and above, rotating it with the given settings.
func (b *Backend) AddLogFileWithCustomRotator(logFile string, logLevel Level, thresholdKB int64, maxRolls int) error {
	logDir, _ := filepath.Split(logFile)
	if logDir != "" {
		err := os.MkdirAll(logDir, 0700)
		if err != nil {
			return errors.Wrapf(err, "failed to create log directory %s", logDir)
		}
	}
	r, err := rotator.New(logFile, thresholdKB, false, maxRolls)
	if err != nil {
		return errors.Wrapf(err, "failed to create file rotator for %s", logFile)
	}
	return b.AddLogWriter(r, logLevel)
}

// AddLogWriter adds an io.WriteCloser which the log will write into on the
// given log level and above.
func (b *Backend) AddLogWriter(writer io.WriteCloser, logLevel Level) error {
	if b.IsRunning() {
		return errors.New("the logger is already running")
	}
	b.writers = append(b.writers, levelFilteredWriter{
		WriteCloser: writer,
		logLevel:    logLevel,
	})
	return nil
}

// Run launches the writing goroutine of the backend. It must be called once,
// after all the writers have been added.
func (b *Backend) Run() error {
	if !atomic.CompareAndSwapUint32(&b.isRunning, 0, 1) {
		return errors.New("the logger is already running")
	}
	b.closeLock.Lock()
	go func() {
		defer func() {
			if err := recover(); err != nil {
				_, _ = fmt.Fprintf(os.Stderr, "Fatal error in logger.Backend goroutine: %+v\n", err)
				_, _ = fmt.Fprintf(os.Stderr, "Goroutine stacktrace: %s\n", debug.Stack())
			}
		}()
		b.runBlocking()
	}()
	return nil
}

func (b *Backend) runBlocking() {
	defer b.closeLock.Unlock()

	for entry := range b.writeChan {
		for _, writer := range b.writers {
			if entry.level >= writer.LogLevel() {
				_, _ = writer.Write(entry.log)
			}
		}
	}
}

// IsRunning returns true if Run has been called and the backend was not closed.
func (b *Backend) IsRunning() bool {
	return atomic.LoadUint32(&b.isRunning) != 0
}

// Close flushes every pending entry and closes all the writers.
func (b *Backend) Close() {
	if !atomic.CompareAndSwapUint32(&b.isRunning, 1, 0) {
		return
	}
	close(b.writeChan)
	b.closeLock.Lock()
	defer b.closeLock.Unlock()
	for _, writer := range b.writers {
		_ = writer.Close()
	}
}

// Logger returns a new logger for a particular subsystem that writes to the
// Backend b. A tag describes the subsystem and is included in all log
// messages. The logger uses the info verbosity level by default.
func (b *Backend) Logger(subsystemTag string) *Logger {
	return &Logger{level: uint32(LevelInfo), tag: subsystemTag, backend: b}
}

func (b *Backend) write(level Level, line []byte) {
	if !b.IsRunning() {
		return
	}
	b.writeChan <- logEntry{log: line, level: level}
}
