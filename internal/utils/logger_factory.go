package utils

import (
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	unsupportedLogLevelTemplateConstant  = "unsupported log level %q (expected one of %s)"
	unsupportedLogFormatTemplateConstant = "unsupported log format %q (expected one of %s)"
	supportedValuesSeparatorConstant     = ", "
	structuredTimeKeyConstant            = "ts"
	structuredMessageKeyConstant         = "msg"
	structuredLevelKeyConstant           = "level"
	structuredLoggerNameKeyConstant      = "logger"
)

// LogLevel enumerates supported logging granularities.
type LogLevel string

// Exported log level constants for reuse across packages.
const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

// LogFormat enumerates supported logger output encodings.
type LogFormat string

// Exported log format constants for reuse across packages.
const (
	LogFormatStructured LogFormat = "structured"
	LogFormatConsole    LogFormat = "console"
)

var supportedLogLevels = []LogLevel{LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError}

var supportedLogFormats = []LogFormat{LogFormatStructured, LogFormatConsole}

var logLevelMapping = map[LogLevel]zapcore.Level{
	LogLevelDebug: zapcore.DebugLevel,
	LogLevelInfo:  zapcore.InfoLevel,
	LogLevelWarn:  zapcore.WarnLevel,
	LogLevelError: zapcore.ErrorLevel,
}

// ParseLogLevel normalizes a configured or flag-supplied level, accepting any letter case and surrounding spaces.
func ParseLogLevel(rawLogLevel string) (LogLevel, error) {
	candidate := LogLevel(strings.ToLower(strings.TrimSpace(rawLogLevel)))
	if _, supported := logLevelMapping[candidate]; supported {
		return candidate, nil
	}
	supportedNames := make([]string, 0, len(supportedLogLevels))
	for _, supportedLevel := range supportedLogLevels {
		supportedNames = append(supportedNames, string(supportedLevel))
	}
	return "", fmt.Errorf(unsupportedLogLevelTemplateConstant, rawLogLevel, strings.Join(supportedNames, supportedValuesSeparatorConstant))
}

// ParseLogFormat normalizes a configured or flag-supplied format, accepting any letter case and surrounding spaces.
func ParseLogFormat(rawLogFormat string) (LogFormat, error) {
	candidate := LogFormat(strings.ToLower(strings.TrimSpace(rawLogFormat)))
	for _, supportedFormat := range supportedLogFormats {
		if candidate == supportedFormat {
			return candidate, nil
		}
	}
	supportedNames := make([]string, 0, len(supportedLogFormats))
	for _, supportedFormat := range supportedLogFormats {
		supportedNames = append(supportedNames, string(supportedFormat))
	}
	return "", fmt.Errorf(unsupportedLogFormatTemplateConstant, rawLogFormat, strings.Join(supportedNames, supportedValuesSeparatorConstant))
}

// LoggerFactory builds zap.Logger instances that write diagnostics to a single destination.
type LoggerFactory struct {
	output io.Writer
}

// NewLoggerFactory constructs a factory writing to standard error. Standard output stays reserved for the
// delegated test command.
func NewLoggerFactory() *LoggerFactory {
	return NewLoggerFactoryForWriter(os.Stderr)
}

// NewLoggerFactoryForWriter constructs a factory writing to the provided destination.
func NewLoggerFactoryForWriter(output io.Writer) *LoggerFactory {
	return &LoggerFactory{output: output}
}

// CreateLogger produces a zap.Logger honoring the requested level and format. Console output omits
// timestamps and callers so that it reads like the rest of the jetrun terminal output.
func (factory *LoggerFactory) CreateLogger(requestedLogLevel LogLevel, requestedLogFormat LogFormat) (*zap.Logger, error) {
	logLevel, levelError := ParseLogLevel(string(requestedLogLevel))
	if levelError != nil {
		return nil, levelError
	}
	logFormat, formatError := ParseLogFormat(string(requestedLogFormat))
	if formatError != nil {
		return nil, formatError
	}

	var encoder zapcore.Encoder
	switch logFormat {
	case LogFormatConsole:
		encoderConfiguration := zap.NewDevelopmentEncoderConfig()
		encoderConfiguration.TimeKey = zapcore.OmitKey
		encoderConfiguration.CallerKey = zapcore.OmitKey
		encoderConfiguration.StacktraceKey = zapcore.OmitKey
		encoderConfiguration.EncodeLevel = zapcore.CapitalLevelEncoder
		encoder = zapcore.NewConsoleEncoder(encoderConfiguration)
	default:
		encoderConfiguration := zap.NewProductionEncoderConfig()
		encoderConfiguration.TimeKey = structuredTimeKeyConstant
		encoderConfiguration.MessageKey = structuredMessageKeyConstant
		encoderConfiguration.LevelKey = structuredLevelKeyConstant
		encoderConfiguration.NameKey = structuredLoggerNameKeyConstant
		encoderConfiguration.EncodeTime = zapcore.ISO8601TimeEncoder
		encoder = zapcore.NewJSONEncoder(encoderConfiguration)
	}

	output := factory.output
	if output == nil {
		output = os.Stderr
	}
	core := zapcore.NewCore(encoder, zapcore.AddSync(NewSynchronizedWriter(output)), logLevelMapping[logLevel])
	return zap.New(core), nil
}
