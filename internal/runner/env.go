package runner

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gantryci/gantry/internal/constants"
)

// SourceEnv derives the environment exported to every child process
// that locates project source: GANTRY_SOURCE_DIR itself and PYTHONPATH
// extended with the source tree's python directory. Returns nil when
// GANTRY_SOURCE_DIR is not set, leaving the inherited environment
// untouched.
func SourceEnv() []string {
	srcDir := os.Getenv(constants.EnvSourceDir)
	if srcDir == "" {
		return nil
	}

	pythonDir := filepath.Join(srcDir, "python")
	pythonPath := pythonDir
	if existing := os.Getenv(constants.EnvPythonPath); existing != "" {
		pythonPath = pythonDir + string(os.PathListSeparator) + existing
	}

	return []string{
		fmt.Sprintf("%s=%s", constants.EnvPythonPath, pythonPath),
		fmt.Sprintf("%s=%s", constants.EnvSourceDir, srcDir),
	}
}
