package logger

import (
	"fmt"
	"runtime"
	"strings"
	"sync/atomic"
	"time"
)

// Logger is a subsystem logger for a Backend.
type Logger struct {
	level   uint32 // atomic
	tag     string
	backend *Backend
}

// callsite returns the file name and line number of the caller of the
// logging function, depending on the backend flags.
func callsite(flag uint32) (string, int) {
	_, file, line, ok := runtime.Caller(4)
	if !ok {
		return "???", 0
	}
	if flag&LogFlagShortFile != 0 {
		short := file
		for i := len(file) - 1; i > 0; i-- {
			if file[i] == '/' {
				short = file[i+1:]
				break
			}
		}
		file = short
	}
	return file, line
}

// formatHeader writes a header in the format "YYYY-MM-DD hh:mm:ss.sss [LVL] TAG: ".
func formatHeader(builder *strings.Builder, t time.Time, level, tag string, file string, line int) {
	builder.WriteString(t.Format("2006-01-02 15:04:05.000"))
	builder.WriteString(" [")
	builder.WriteString(level)
	builder.WriteString("] ")
	builder.WriteString(tag)
	if file != "" {
		builder.WriteByte(' ')
		builder.WriteString(file)
		builder.WriteByte(':')
		builder.WriteString(fmt.Sprintf("%d", line))
	}
	builder.WriteString(": ")
}

func (l *Logger) print(level Level, message string) {
	if l.Level() > level {
		return
	}
	var file string
	var line int
	if l.backend.flag&(LogFlagShortFile|LogFlagLongFile) != 0 {
		file, line = callsite(l.backend.flag)
	}

	builder := strings.Builder{}
	formatHeader(&builder, time.Now(), level.String(), l.tag, file, line)
	builder.WriteString(message)
	if !strings.HasSuffix(message, "\n") {
		builder.WriteByte('\n')
	}
	l.backend.write(level, []byte(builder.String()))
}

// Trace formats message using the default formats for its operands, prepends
// the prefix as necessary, and writes to log with LevelTrace.
func (l *Logger) Trace(args ...interface{}) {
	l.print(LevelTrace, fmt.Sprint(args...))
}

// Tracef formats message according to format specifier and writes to log
// with LevelTrace.
func (l *Logger) Tracef(format string, args ...interface{}) {
	l.print(LevelTrace, fmt.Sprintf(format, args...))
}

// Debug writes to log with LevelDebug.
func (l *Logger) Debug(args ...interface{}) {
	l.print(LevelDebug, fmt.Sprint(args...))
}

// Debugf writes a formatted message to log with LevelDebug.
func (l *Logger) Debugf(format string, args ...interface{}) {
	l.print(LevelDebug, fmt.Sprintf(format, args...))
}

// Info writes to log with LevelInfo.
func (l *Logger) Info(args ...interface{}) {
	l.print(LevelInfo, fmt.Sprint(args...))
}

// Infof writes a formatted message to log with LevelInfo.
func (l *Logger) Infof(format string, args ...interface{}) {
	l.print(LevelInfo, fmt.Sprintf(format, args...))
}

// Warn writes to log with LevelWarn.
func (l *Logger) Warn(args ...interface{}) {
	l.print(LevelWarn, fmt.Sprint(args...))
}

// Warnf writes a formatted message to log with LevelWarn.
func (l *Logger) Warnf(format string, args ...interface{}) {
	l.print(LevelWarn, fmt.Sprintf(format, args...))
}

// Error writes to log with LevelError.
func (l *Logger) Error(args ...interface{}) {
	l.print(LevelError, fmt.Sprint(args...))
}

// Errorf writes a formatted message to log with LevelError.
func (l *Logger) Errorf(format string, args ...interface{}) {
	l.print(LevelError, fmt.Sprintf(format, args...))
}

// Critical writes to log with LevelCritical.
func (l *Logger) Critical(args ...interface{}) {
	l.print(LevelCritical, fmt.Sprint(args...))
}

// Criticalf writes a formatted message to log with LevelCritical.
func (l *Logger) Criticalf(format string, args ...interface{}) {
	l.print(LevelCritical, fmt.Sprintf(format, args...))
}

// Level returns the current logging level.
func (l *Logger) Level() Level {
	return Level(atomic.LoadUint32(&l.level))
}

// SetLevel changes the logging level to the passed level.
func (l *Logger) SetLevel(level Level) {
	atomic.StoreUint32(&l.level, uint32(level))
}

// Backend returns the log backend.
func (l *Logger) Backend() *Backend {
	return l.backend
}
