package app

import (
	"errors"
	"fmt"
	"os"
	"os/exec"

	"github.com/iyow2233/capstone/internal/core/domain"
)

// Process exit codes.
const (
	ExitOK          = 0
	ExitPrivilege   = 1
	ExitToolMissing = 2
	ExitNoInterface = 3
)

// RequiredTools must be on PATH before anything is touched.
var RequiredTools = []string{"airmon-ng", "airodump-ng", "aireplay-ng", "iwconfig"}

var (
	geteuid  = os.Geteuid
	lookPath = exec.LookPath
)

// Preflight checks for root and the external toolchain.
func Preflight() error {
	if geteuid() != 0 {
		return fmt.Errorf("%w: run with sudo", domain.ErrPrivilege)
	}
	for _, tool := range RequiredTools {
		if _, err := lookPath(tool); err != nil {
			return fmt.Errorf("%w: %s (install aircrack-ng and wireless-tools)", domain.ErrToolNotFound, tool)
		}
	}
	return nil
}

// ExitCode maps a fatal error to the process exit status.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, domain.ErrPrivilege):
		return ExitPrivilege
	case errors.Is(err, domain.ErrToolNotFound):
		return ExitToolMissing
	case errors.Is(err, domain.ErrInterfaceSetup):
		return ExitNoInterface
	}
	return ExitOK
}
