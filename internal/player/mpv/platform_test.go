package mpv

import (
	"os"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectPlatform(t *testing.T) {
	platform := DetectPlatform()

	switch runtime.GOOS {
	case "windows":
		assert.Equal(t, PlatformWindows, platform)
	case "darwin":
		assert.Equal(t, PlatformMac, platform)
	case "linux":
		if isWSL() {
			assert.Equal(t, PlatformWSL, platform)
		} else {
			assert.Equal(t, PlatformLinux, platform)
		}
	}
}

func TestGetMPVExecutable(t *testing.T) {
	tests := []struct {
		platform Platform
		expected string
	}{
		{PlatformLinux, "mpv"},
		{PlatformMac, "mpv"},
		{PlatformWindows, "mpv.exe"},
		{PlatformWSL, "mpv"}, // WSL uses Linux mpv
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, GetMPVExecutable(tt.platform))
	}
}

func TestGetIPCConfig(t *testing.T) {
	tests := []struct {
		platform     Platform
		expectedType IPCType
		isSocket     bool
	}{
		{PlatformLinux, IPCUnixSocket, true},
		{PlatformMac, IPCUnixSocket, true},
		{PlatformWSL, IPCUnixSocket, true},
		{PlatformWindows, IPCNamedPipe, false},
	}

	for _, tt := range tests {
		cfg, err := GetIPCConfig(tt.platform)
		require.NoError(t, err)
		assert.Equal(t, tt.expectedType, cfg.Type)
		assert.Equal(t, tt.isSocket, cfg.IsSocket)
		assert.NotEmpty(t, cfg.Address)
	}
}

func TestGopvConnectionString(t *testing.T) {
	assert.Equal(t, "/tmp/a.sock", GetGopvConnectionString(&IPCConfig{Type: IPCUnixSocket, Address: "/tmp/a.sock"}))
	assert.Equal(t, "tcp://127.0.0.1:9000", GetGopvConnectionString(&IPCConfig{Type: IPCTCP, Address: "127.0.0.1:9000"}))
	assert.Equal(t, `\\.\pipe\x`, GetGopvConnectionString(&IPCConfig{Type: IPCNamedPipe, Address: `\\.\pipe\x`}))
}

func TestIsWSL(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("WSL detection only applies on Linux")
	}

	data, err := os.ReadFile("/proc/version")
	if err != nil {
		t.Skip("Cannot read /proc/version")
	}

	version := strings.ToLower(string(data))
	expected := strings.Contains(version, "microsoft") || strings.Contains(version, "wsl")
	assert.Equal(t, expected, isWSL())
}
