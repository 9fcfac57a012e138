//go:build !windows

package mpv

// isPipeReady always fails on Unix, where IPC is a socket file
func isPipeReady(string) bool {
	return false
}
