package platform

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// defaultAppName names the config and data directories when no app name is given.
const defaultAppName = "achiever"

// Paths holds the resolved per-user locations for config, storage and logs.
type Paths struct {
	ConfigPath string
	DataDir    string
	// DBPath is the sqlite backend file.
	DBPath string
	// DocumentsDir holds one JSON file per namespace for the jsonfile backend.
	DocumentsDir string
	LogDir       string
}

// Options selects the app directory name.
type Options struct {
	AppName string
	DevMode bool
}

// dirName returns the directory stem for opts, suffixed with -dev in dev mode.
func (o Options) dirName() string {
	name := strings.TrimSpace(o.AppName)
	if name == "" {
		name = defaultAppName
	}
	if o.DevMode {
		name += "-dev"
	}
	return name
}

// baseOverrides lists, per GOOS, the env vars that replace the config and data base dirs.
var baseOverrides = map[string]struct{ config, data string }{
	"linux":   {config: "XDG_CONFIG_HOME", data: "XDG_DATA_HOME"},
	"windows": {config: "APPDATA", data: "LOCALAPPDATA"},
}

// DefaultPaths resolves paths for the default app name.
func DefaultPaths() (Paths, error) {
	return DefaultPathsWithOptions(Options{})
}

// DefaultPathsWithOptions resolves paths for the host OS and environment.
func DefaultPathsWithOptions(opts Options) (Paths, error) {
	configBase, err := os.UserConfigDir()
	if err != nil {
		return Paths{}, fmt.Errorf("user config dir: %w", err)
	}
	dataBase := configBase
	if runtime.GOOS == "linux" {
		home, err := os.UserHomeDir()
		if err != nil {
			return Paths{}, fmt.Errorf("user home dir: %w", err)
		}
		dataBase = filepath.Join(home, ".local", "share")
	}
	return PathsFor(runtime.GOOS, os.Getenv, configBase, dataBase, opts.dirName())
}

// PathsFor resolves paths for goos. getenv supplies the per-OS base dir overrides.
func PathsFor(goos string, getenv func(string) string, configBase, dataBase, appName string) (Paths, error) {
	if configBase == "" || dataBase == "" {
		return Paths{}, errors.New("empty base dirs")
	}
	appName = strings.TrimSpace(appName)
	if appName == "" {
		return Paths{}, errors.New("empty app name")
	}
	if vars, ok := baseOverrides[goos]; ok && getenv != nil {
		if v := strings.TrimSpace(getenv(vars.config)); v != "" {
			configBase = v
		}
		if v := strings.TrimSpace(getenv(vars.data)); v != "" {
			dataBase = v
		}
	}

	dataDir := filepath.Join(dataBase, appName)
	return Paths{
		ConfigPath:   filepath.Join(configBase, appName, "config.toml"),
		DataDir:      dataDir,
		DBPath:       filepath.Join(dataDir, appName+".db"),
		DocumentsDir: filepath.Join(dataDir, "documents"),
		LogDir:       filepath.Join(dataDir, "log"),
	}, nil
}
