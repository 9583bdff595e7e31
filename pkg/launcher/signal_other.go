//go:build !unix

package launcher

import "os"

var forwardedSignals []os.Signal

func exitCode(state *os.ProcessState) int {
	return state.ExitCode()
}
