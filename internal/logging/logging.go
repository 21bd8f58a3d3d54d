// Package logging centralizes structured logging for the core.
package logging

import (
	"sync"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/arbor/models"
)

var (
	global      arbor.ILogger
	globalMutex sync.RWMutex
)

// Get returns the process-wide logger, falling back to a console-only
// logger if Init has not been called yet.
func Get() arbor.ILogger {
	globalMutex.RLock()
	if global != nil {
		defer globalMutex.RUnlock()
		return global
	}
	globalMutex.RUnlock()

	globalMutex.Lock()
	defer globalMutex.Unlock()
	if global == nil {
		global = arbor.NewLogger().WithConsoleWriter(consoleConfig("info"))
	}
	return global
}

// Init builds the global logger from a level and an optional file path.
// When logFile is empty, messages go to stderr only, matching the LSP
// requirement that stdout stays reserved for the framed protocol stream.
func Init(level, logFile string) arbor.ILogger {
	logger := arbor.NewLogger()
	if logFile != "" {
		logger = logger.WithFileWriter(models.WriterConfiguration{
			Type:       models.LogWriterTypeFile,
			FileName:   logFile,
			TimeFormat: "15:04:05.000",
			OutputType: models.OutputFormatJSON,
			MaxSize:    50 * 1024 * 1024,
			MaxBackups: 3,
		})
	} else {
		logger = logger.WithConsoleWriter(consoleConfig(level))
	}
	logger = logger.WithLevelFromString(level)

	globalMutex.Lock()
	global = logger
	globalMutex.Unlock()
	return logger
}

func consoleConfig(level string) models.WriterConfiguration {
	return models.WriterConfiguration{
		Type:       models.LogWriterTypeConsole,
		TimeFormat: "15:04:05.000",
		OutputType: models.OutputFormatLogfmt,
	}
}
