package plot

import (
	"runtime"
	"testing"
)

func TestOpenBrowser_SupportedPlatform(t *testing.T) {
	switch runtime.GOOS {
	case "linux", "darwin", "windows":
		// Supported; launching a real browser is not exercised in tests.
	default:
		t.Skipf("skipping on unsupported platform: %s", runtime.GOOS)
	}
}
