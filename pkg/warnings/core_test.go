package warnings

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestWarnfWritesToConfiguredWriter tests that warnings reach the swapped writer.
//
// It verifies:
//   - Output is formatted verbatim
//   - The restore function puts the previous writer back
func TestWarnfWritesToConfiguredWriter(t *testing.T) {
	var buf bytes.Buffer
	restore := SetWarningWriter(&buf)

	Warnf("changelog for %s ignored\n", "craftcms/cms")
	assert.Equal(t, "changelog for craftcms/cms ignored\n", buf.String())

	restore()
	mu.RLock()
	defer mu.RUnlock()
	assert.Equal(t, os.Stderr, warnWriter)
}

// TestSetWarningWriterNil tests that a nil writer falls back to stderr.
func TestSetWarningWriterNil(t *testing.T) {
	restore := SetWarningWriter(nil)
	defer restore()

	mu.RLock()
	defer mu.RUnlock()
	assert.Equal(t, os.Stderr, warnWriter)
}

// TestSetQuiet tests that quiet mode drops warnings until restored.
func TestSetQuiet(t *testing.T) {
	var buf bytes.Buffer
	defer SetWarningWriter(&buf)()

	restore := SetQuiet(true)
	Warnf("dropped\n")
	assert.Empty(t, buf.String())

	restore()
	Warnf("kept\n")
	assert.Equal(t, "kept\n", buf.String())
}
