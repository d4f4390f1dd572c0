package logger

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/pkg/errors"
)

// BackendLog is the logging backend used to create all subsystem loggers.
var BackendLog = NewBackend()

var (
	subsystemLoggers     = make(map[string]*Logger)
	subsystemLoggersLock sync.Mutex
)

// RegisterSubSystem returns the logger of the given subsystem, creating it
// on first use. Packages call it once from their log.go.
func RegisterSubSystem(subsystem string) *Logger {
	subsystemLoggersLock.Lock()
	defer subsystemLoggersLock.Unlock()

	logger, exists := subsystemLoggers[subsystem]
	if !exists {
		logger = BackendLog.Logger(subsystem)
		subsystemLoggers[subsystem] = logger
	}
	return logger
}

// InitLog attaches a log file and an error log file to the backend log and
// starts it.
func InitLog(logFile, errLogFile string) {
	err := BackendLog.AddLogFile(logFile, LevelTrace)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error adding log file %s as log rotator for level %s: %+v\n", logFile, LevelTrace, err)
		os.Exit(1)
	}
	err = BackendLog.AddLogFile(errLogFile, LevelWarn)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error adding log file %s as log rotator for level %s: %+v\n", errLogFile, LevelWarn, err)
		os.Exit(1)
	}
	err = BackendLog.AddLogWriter(os.Stdout, LevelInfo)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error adding stdout to the logger for level %s: %+v\n", LevelInfo, err)
		os.Exit(1)
	}
	err = BackendLog.Run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error starting the logger: %+v\n", err)
		os.Exit(1)
	}
}

// SetLogLevel sets the logging level for the provided subsystem. Invalid
// subsystems are ignored.
func SetLogLevel(subsystemID string, logLevel string) {
	subsystemLoggersLock.Lock()
	defer subsystemLoggersLock.Unlock()

	logger, ok := subsystemLoggers[subsystemID]
	if !ok {
		return
	}
	level, _ := LevelFromString(logLevel)
	logger.SetLevel(level)
}

// SetLogLevels sets the log level for all subsystem loggers to the passed
// level.
func SetLogLevels(logLevel string) {
	for _, subsystemID := range SupportedSubsystems() {
		SetLogLevel(subsystemID, logLevel)
	}
}

// SupportedSubsystems returns a sorted slice of the supported subsystems for
// logging purposes.
func SupportedSubsystems() []string {
	subsystemLoggersLock.Lock()
	defer subsystemLoggersLock.Unlock()

	subsystems := make([]string, 0, len(subsystemLoggers))
	for subsystemID := range subsystemLoggers {
		subsystems = append(subsystems, subsystemID)
	}
	sort.Strings(subsystems)
	return subsystems
}

func validLogLevel(logLevel string) bool {
	_, ok := LevelFromString(logLevel)
	return ok
}

// ParseAndSetLogLevels attempts to parse the specified log level and set
// the levels accordingly. An appropriate error is returned if anything is
// invalid. The accepted forms are "level" and
// "level,SUBSYSTEM=level,SUBSYSTEM2=level".
func ParseAndSetLogLevels(logLevel string) error {
	if !strings.Contains(logLevel, ",") && !strings.Contains(logLevel, "=") {
		if !validLogLevel(logLevel) {
			return errors.Errorf("the specified log level [%s] is invalid", logLevel)
		}
		SetLogLevels(logLevel)
		return nil
	}

	supported := SupportedSubsystems()
	for _, pair := range strings.Split(logLevel, ",") {
		if !strings.Contains(pair, "=") {
			if !validLogLevel(pair) {
				return errors.Errorf("the specified log level [%s] is invalid", pair)
			}
			SetLogLevels(pair)
			continue
		}

		fields := strings.Split(pair, "=")
		subsysID, level := fields[0], fields[1]
		index := sort.SearchStrings(supported, subsysID)
		if index == len(supported) || supported[index] != subsysID {
			return errors.Errorf("the specified subsystem [%s] is invalid -- "+
				"supported subsystems %v", subsysID, supported)
		}
		if !validLogLevel(level) {
			return errors.Errorf("the specified log level [%s] is invalid", level)
		}
		SetLogLevel(subsysID, level)
	}
	return nil
}
