// pkg/logger/logger.go
package logger

import (
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
)

type Sugared = *zap.SugaredLogger

// New builds the process logger. When logDir is set, entries are also
// appended to <logDir>/spupload_<date>.log.
func New(env, logDir string) Sugared {
	var zc zap.Config
	if env == "prod" {
		zc = zap.NewProductionConfig()
	} else {
		zc = zap.NewDevelopmentConfig()
	}
	if logDir != "" {
		if err := os.MkdirAll(logDir, 0o755); err == nil {
			zc.OutputPaths = append(zc.OutputPaths, DailyFile(logDir, time.Now()))
		}
	}
	z, err := zc.Build()
	if err != nil {
		z, _ = zap.NewProduction()
	}
	return z.Sugar()
}

// DailyFile names the log file for day t inside dir.
func DailyFile(dir string, t time.Time) string {
	return filepath.Join(dir, "spupload_"+t.Format("2006-01-02")+".log")
}
