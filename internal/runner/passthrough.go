package runner

import (
	"context"
	"errors"
	"os"
	"os/exec"

	gantryerrors "github.com/gantryci/gantry/internal/errors"
)

// Passthrough executes an arbitrary command directly, without a shell, with
// stdio inherited from the current process. The entrypoint dispatcher uses
// it as its fallback variant: argv[0] is looked up on PATH and the child's
// own exit code is surfaced unchanged via ExitCodeError.
//
// This is a deliberate, narrow escape hatch for "run anything inside the
// container", not a generic eval: no shell interpretation happens and the
// argument vector is passed through verbatim.
func Passthrough(ctx context.Context, env []string, argv ...string) error {
	if len(argv) == 0 {
		return gantryerrors.ErrEmptyValue
	}

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...) //nolint:gosec // intentional passthrough of user command
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if len(env) > 0 {
		cmd.Env = append(cmd.Environ(), env...)
	}

	err := cmd.Run()
	if err == nil {
		return nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return gantryerrors.NewExitCodeError(exitErr.ExitCode(), err)
	}
	// Lookup or start failure: conventional shell "command not found" code.
	return gantryerrors.NewExitCodeError(127, err)
}
