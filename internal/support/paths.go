package support

import (
	"os"
	"path/filepath"
	"runtime"
)

const (
	DefaultConfigDirLinux = ".config/sortjson"
	DefaultStateDirLinux  = ".local/state/sortjson"
	SystemConfigDirLinux  = "/etc/sortjson"
	SystemStateDirLinux   = "/var/lib/sortjson"
)

func GetPaths(customConfigDir, customStateDir string) (string, string) {
	configDir := customConfigDir
	if configDir == "" {
		configDir = GetDefaultConfigDir()
	}
	stateDir := customStateDir
	if stateDir == "" {
		stateDir = GetDefaultStateDir()
	}
	return configDir, stateDir
}

func GetDefaultConfigDir() string {
	if runtime.GOOS == "windows" {
		return filepath.Join(os.Getenv("APPDATA"), "sortjson")
	}
	if os.Getuid() == 0 {
		return SystemConfigDirLinux
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, DefaultConfigDirLinux)
}

func GetDefaultStateDir() string {
	if runtime.GOOS == "windows" {
		return filepath.Join(os.Getenv("LOCALAPPDATA"), "sortjson")
	}
	if os.Getuid() == 0 {
		return SystemStateDirLinux
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, DefaultStateDirLinux)
}
