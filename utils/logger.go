//
// Copyright (c) 2020-2026 Markku Rossi
//
// All rights reserved.
//

package utils

import (
	"io"

	"github.com/sirupsen/logrus"
)

// NewLogger creates a new logger outputting to the argument
// io.Writer.
func NewLogger(out io.Writer, debug bool) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(out)
	logger.SetFormatter(&logrus.TextFormatter{
		DisableTimestamp: true,
	})
	if debug {
		logger.SetLevel(logrus.DebugLevel)
	}
	return logger
}
