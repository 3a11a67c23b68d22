package logging

import (
	"io"
	"os"
	"path/filepath"
	"runtime"

	"github.com/natefinch/lumberjack"
	"github.com/sirupsen/logrus"
)

func Component(name string) *logrus.Entry {
	return logrus.WithField("component", name)
}

// SetupLogging configures the global logger. Logs go to stderr and, when
// logPath is set, to a rotated file as well.
func SetupLogging(verbose bool, logPath string) {
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})
	logrus.SetLevel(logrus.WarnLevel)
	if verbose {
		logrus.SetLevel(logrus.DebugLevel)
	}

	if logPath == "" {
		logrus.SetOutput(os.Stderr)
		return
	}
	if err := os.MkdirAll(filepath.Dir(logPath), 0755); err != nil {
		logrus.SetOutput(os.Stderr)
		logrus.Warnf("Cannot create log directory for %s: %v", logPath, err)
		return
	}
	logrus.SetOutput(io.MultiWriter(os.Stderr, &lumberjack.Logger{
		Filename:   logPath,
		MaxSize:    10,
		MaxBackups: 3,
		MaxAge:     28,
		Compress:   true,
	}))
	if !verbose {
		logrus.SetLevel(logrus.InfoLevel)
	}
}

func GetDefaultLogDir() string {
	if runtime.GOOS == "windows" {
		return filepath.Join(os.Getenv("LOCALAPPDATA"), "sortjson", "logs")
	}
	if os.Getuid() == 0 {
		return "/var/log/sortjson"
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local/state/sortjson/logs")
}
