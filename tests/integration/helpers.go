package integration

import (
	"drover/internal/logger"
)

const (
	containerStartupTimeout = 60
)

func createTestLogger() logger.Logger {
	return logger.NopLogger()
}
