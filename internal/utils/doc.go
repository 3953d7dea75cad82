// Package utils exposes reusable helpers consumed by every jetrun command.
//
// It houses the ConfigurationLoader and LoggerFactory abstractions that
// integrate Viper, environment variables, and zap logging, together with the
// ExitError type used to carry delegated process exit codes back to main.
package utils
