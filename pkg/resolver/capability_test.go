package resolver

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ajxudir/updatecheck/pkg/version"
)

// TestIncludePackageName tests the capability boundaries directly.
func TestIncludePackageName(t *testing.T) {
	since := version.MustParse("3.1.21")
	exclude := []version.Version{version.MustParse("3.2.0-alpha.1")}

	assert.False(t, IncludePackageName(version.MustParse("3.1.20"), since, exclude))
	assert.True(t, IncludePackageName(version.MustParse("3.1.21"), since, exclude))
	assert.True(t, IncludePackageName(version.MustParse("3.1.21.0"), since, exclude))
	assert.False(t, IncludePackageName(version.MustParse("3.2.0-alpha1"), since, exclude))
	assert.True(t, IncludePackageName(version.MustParse("4.0.0"), since, nil))

	c := DefaultCapability()
	assert.True(t, c.Allows(version.MustParse("3.1.22")))
	assert.False(t, c.Allows(version.MustParse("3.2.0-alpha.1")))
}
