package logger

import (
	"fmt"

	"go.uber.org/zap"
)

// Init replaces zap's global logger. Production environments log JSON at info
// level; everything else uses the development console encoder.
func Init(env string) error {
	var (
		l   *zap.Logger
		err error
	)

	if env == "production" {
		l, err = zap.NewProduction()
	} else {
		l, err = zap.NewDevelopment()
	}
	if err != nil {
		return fmt.Errorf("failed to build zap logger -> %w", err)
	}

	zap.ReplaceGlobals(l)

	return nil
}
