//go:build unix

package launcher

import (
	"os"
	"syscall"
)

var forwardedSignals = []os.Signal{syscall.SIGTERM, syscall.SIGHUP}

func exitCode(state *os.ProcessState) int {
	if ws, ok := state.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
		return 128 + int(ws.Signal())
	}
	return state.ExitCode()
}
