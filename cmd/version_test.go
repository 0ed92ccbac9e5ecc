package cmd

import (
	"bytes"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
)

// saveBuildInfo restores the build variables when the test ends.
func saveBuildInfo(t *testing.T) {
	t.Helper()
	oldVersion, oldBuildTime, oldGitCommit := Version, BuildTime, GitCommit
	oldBuildOS, oldBuildArch := BuildOS, BuildArch
	t.Cleanup(func() {
		Version, BuildTime, GitCommit = oldVersion, oldBuildTime, oldGitCommit
		BuildOS, BuildArch = oldBuildOS, oldBuildArch
	})
}

// TestPrintVersionOutput tests the behavior of printVersionOutput.
//
// It verifies:
//   - Basic version output includes version, Go version, and build info
//   - Build time and git commit are shown when set
//   - A cross-compiled build shows the runtime platform
func TestPrintVersionOutput(t *testing.T) {
	saveBuildInfo(t)

	t.Run("basic version output", func(t *testing.T) {
		Version, BuildTime, GitCommit, BuildOS, BuildArch = "v1.0.0", "", "", "", ""

		var buf bytes.Buffer
		printVersionOutput(&buf)

		out := buf.String()
		assert.Contains(t, out, "Version: v1.0.0")
		assert.Contains(t, out, "Go:")
		assert.Contains(t, out, "Build:   "+runtime.GOOS+"/"+runtime.GOARCH)
		assert.NotContains(t, out, "Runtime:")
		assert.NotContains(t, out, "Date:")
		assert.NotContains(t, out, "Development build")
	})

	t.Run("version with all info", func(t *testing.T) {
		Version, BuildTime, GitCommit = "v2.0.0", "2025-06-15T12:00:00Z", "def456"

		var buf bytes.Buffer
		printVersionOutput(&buf)

		out := buf.String()
		assert.Contains(t, out, "Date:    2025-06-15T12:00:00Z")
		assert.Contains(t, out, "Git:     def456")
		assert.Contains(t, out, "Version: v2.0.0")
	})

	t.Run("cross-compiled build", func(t *testing.T) {
		Version, BuildOS, BuildArch = "v1.0.0", "plan9", "mips"

		var buf bytes.Buffer
		printVersionOutput(&buf)

		out := buf.String()
		assert.Contains(t, out, "Build:   plan9/mips")
		assert.Contains(t, out, "Runtime: "+runtime.GOOS+"/"+runtime.GOARCH)
		assert.Contains(t, out, "Architecture mismatch")
	})
}

// TestVersionCommand tests that the version subcommand and the -v flag print build info.
func TestVersionCommand(t *testing.T) {
	saveBuildInfo(t)
	Version = "v1.4.2"

	out, err := runCLI(t, "version")
	assert.NoError(t, err)
	assert.Contains(t, out, "Version: v1.4.2")

	out, err = runCLI(t, "-v")
	assert.NoError(t, err)
	assert.Contains(t, out, "Version: v1.4.2")
}

// TestBuildClassification tests dev and prerelease detection.
func TestBuildClassification(t *testing.T) {
	saveBuildInfo(t)

	tests := []struct {
		version    string
		dev        bool
		prerelease bool
	}{
		{"dev", true, false},
		{"abc1234", true, false},
		{"v1.2.3", false, false},
		{"1.2.3", false, false},
		{"v1.3.0-rc.1", false, true},
		{"1.3.0-beta", false, true},
	}

	for _, tt := range tests {
		t.Run(tt.version, func(t *testing.T) {
			Version = tt.version
			assert.Equal(t, tt.dev, IsDevBuild())
			assert.Equal(t, tt.prerelease, IsPrerelease())
			assert.Equal(t, tt.version, GetVersion())
		})
	}
}

// TestBuildWarnings tests the combined build warnings.
func TestBuildWarnings(t *testing.T) {
	saveBuildInfo(t)
	BuildOS, BuildArch = "", ""

	Version = "dev"
	assert.Contains(t, GetBuildWarnings(), "Development build")
	assert.Empty(t, GetPrereleaseWarning())

	Version = "v1.3.0-rc.1"
	assert.Contains(t, GetBuildWarnings(), "Prerelease build: v1.3.0-rc.1")
	assert.Empty(t, GetDevBuildWarning())

	Version = "v1.3.0"
	assert.Empty(t, GetBuildWarnings())
	assert.False(t, HasArchMismatch())
	assert.Empty(t, GetArchMismatchWarning())
}

// TestUserAgent tests the registry user agent.
func TestUserAgent(t *testing.T) {
	saveBuildInfo(t)

	Version = "v1.2.3"
	assert.Equal(t, "updatecheck/1.2.3", userAgent())

	Version = "dev"
	assert.Equal(t, "updatecheck/dev", userAgent())
}
