package logger

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/mylearnapp/quiz-platform/internal/config"
)

// New returns a JSON production logger in production and a console
// development logger everywhere else. cfg.Log.Level overrides the default level.
func New(cfg *config.Config) (*zap.Logger, error) {
	zcfg := zap.NewDevelopmentConfig()
	if cfg.IsProduction() {
		zcfg = zap.NewProductionConfig()
	}

	if cfg.Log.Level != "" {
		level, err := zap.ParseAtomicLevel(cfg.Log.Level)
		if err != nil {
			return nil, fmt.Errorf("log.level: %w", err)
		}
		zcfg.Level = level
	}

	return zcfg.Build(zap.Fields(zap.String("service", "quiz-platform")))
}
