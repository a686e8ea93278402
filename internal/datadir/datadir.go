// Package datadir provides names and paths for the .curriculum directory.
package datadir

import "path/filepath"

const (
	// Dir is the name of the curriculum state directory, both per project
	// and under the user's home directory.
	Dir = ".curriculum"

	// AppName names the directory used inside OS config directories.
	AppName = "curriculum"

	// ConfigFile is the config file name.
	ConfigFile = "curriculum.toml"

	// HiddenConfigFile is the alternative project config file name.
	HiddenConfigFile = ".curriculum.toml"

	// LogsDir is the log directory name inside the state directory.
	LogsDir = "logs"
)

// DirPath returns the path of the state directory within a work directory.
func DirPath(workDir string) string {
	if workDir == "." || workDir == "" {
		return Dir
	}
	return filepath.Join(workDir, Dir)
}

// ConfigPath returns the path of the config file inside the state directory
// of baseDir, for example ~/.curriculum/curriculum.toml.
func ConfigPath(baseDir string) string {
	return joinPath(baseDir, ConfigFile)
}

// LogsPath returns the path of the log directory within a work directory.
func LogsPath(workDir string) string {
	return joinPath(workDir, LogsDir)
}

// ProjectConfigNames lists project config file names in lookup order.
func ProjectConfigNames() []string {
	return []string{ConfigFile, HiddenConfigFile}
}

func joinPath(workDir, name string) string {
	return filepath.Join(DirPath(workDir), name)
}
