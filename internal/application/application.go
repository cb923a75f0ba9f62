package application

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"
)

const (
	// AppName is the application name used for directories, the User-Agent
	// header and the config file name
	AppName = "git-backup"

	// Version is reported by --version
	Version = "1.0.0"

	// ConfigFileName is the per-user config file kept in the home directory
	ConfigFileName = "." + AppName + ".json"

	// HistoryFileName is the bbolt database holding backup run history
	HistoryFileName = "history.bolt"
)

var (
	once   sync.Once
	appDir string
	errDir error
)

// GetApplicationDirectory returns the git-backup state directory path.
// Linux: ~/.config/git-backup (via os.UserConfigDir)
// Windows: C:\Users\{username}\AppData\Local\git-backup (via os.UserCacheDir)
func GetApplicationDirectory() (string, error) {
	once.Do(lazyLoad)

	if errDir != nil {
		return "", errDir
	}

	return appDir, nil
}

// ConfigFilePath returns ~/.git-backup.json
func ConfigFilePath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	return filepath.Join(home, ConfigFileName), nil
}

// HistoryFilePath returns the location of the run history database
func HistoryFilePath() (string, error) {
	dir, err := GetApplicationDirectory()
	if err != nil {
		return "", err
	}

	return filepath.Join(dir, HistoryFileName), nil
}

func lazyLoad() {
	var (
		baseDir string
		err     error
	)

	switch runtime.GOOS {
	case "windows":
		baseDir, err = os.UserCacheDir()
	default:
		baseDir, err = os.UserConfigDir()
	}

	if err != nil {
		errDir = fmt.Errorf("failed to get config directory: %w", err)
		return
	}

	appDir = filepath.Join(baseDir, AppName)
}
