package conventions

import (
	"path/filepath"

	"k8s.io/client-go/util/homedir"
)

const (
	// DefaultDataDir is the default crxsync data directory name (relative to home).
	DefaultDataDir = ".crxsync"
	// DBFile is the local task store filename.
	DBFile = "crxsync.db"
	// ConfigFile is the configuration filename.
	ConfigFile = "config.yaml"
)

// DataDir returns the default data directory.
func DataDir() string {
	return filepath.Join(homedir.HomeDir(), DefaultDataDir)
}

// DBPath returns the path of the local task store inside a data directory.
func DBPath(dataDir string) string {
	return filepath.Join(dataDir, DBFile)
}

// ConfigPath returns the path of the configuration file inside a data directory.
func ConfigPath(dataDir string) string {
	return filepath.Join(dataDir, ConfigFile)
}
