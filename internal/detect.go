package internal

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

// StatePaths holds the locations the client keeps its local state in
type StatePaths struct {
	StateDir string // identity record, sqlite db, config.yaml
	CacheDir string // last-known-good results
	LogPath  string // log sink for the interactive client
}

// DetectStatePaths picks the platform default state directory
func DetectStatePaths() (StatePaths, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return StatePaths{}, fmt.Errorf("failed to get home directory: %w", err)
	}

	var base string
	switch runtime.GOOS {
	case "darwin":
		base = filepath.Join(home, "Library/Application Support/OpenUp")
	case "linux":
		// Respect XDG_CONFIG_HOME when set
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			base = filepath.Join(xdg, "openup")
		} else {
			base = filepath.Join(home, ".config/openup")
		}
	case "windows":
		if appData := os.Getenv("AppData"); appData != "" {
			base = filepath.Join(appData, "OpenUp")
		} else {
			base = filepath.Join(home, "AppData", "Roaming", "OpenUp")
		}
	default:
		base = filepath.Join(home, ".openup")
	}

	return StatePathsFor(base), nil
}

// StatePathsFor derives the layout for an explicit state directory
func StatePathsFor(stateDir string) StatePaths {
	return StatePaths{
		StateDir: stateDir,
		CacheDir: filepath.Join(stateDir, "cache"),
		LogPath:  filepath.Join(stateDir, "openup.log"),
	}
}

// StateDirExists checks if the state directory has been created
func (sp StatePaths) StateDirExists() bool {
	info, err := os.Stat(sp.StateDir)
	if err != nil {
		return false
	}
	return info.IsDir()
}
