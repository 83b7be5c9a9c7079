//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common

import (
	"fmt"
	"os"

	"github.com/mitchellh/go-ps"
)

// IsProcessRunning reports whether another process with the given executable
// name is running. The current process is excluded, so a binary can check
// for a second instance of itself.
func IsProcessRunning(executable string) (bool, error) {
	processList, err := ps.Processes()
	if err != nil {
		return false, fmt.Errorf("list processes: %w", err)
	}

	thisProcessID := os.Getpid()

	for _, process := range processList {
		if process.Pid() == thisProcessID {
			continue
		}

		if process.Executable() == executable {
			return true, nil
		}
	}

	return false, nil
}
