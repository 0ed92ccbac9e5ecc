package registry

import (
	"context"
	"time"

	"github.com/ajxudir/updatecheck/pkg/version"
)

// timeoutRegistry bounds every call of the wrapped registry.
type timeoutRegistry struct {
	next    Registry
	timeout time.Duration
}

// WithTimeout returns a Registry that gives each call its own deadline.
// A non-positive timeout returns next unchanged.
//
// Parameters:
//   - next: The registry to wrap
//   - timeout: Per-call deadline
//
// Returns:
//   - Registry: The bounded registry
func WithTimeout(next Registry, timeout time.Duration) Registry {
	if timeout <= 0 {
		return next
	}
	return &timeoutRegistry{next: next, timeout: timeout}
}

func (t *timeoutRegistry) VersionsBetween(ctx context.Context, pkg string, from, to version.Version, min version.Stability) ([]version.Version, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	return t.next.VersionsBetween(ctx, pkg, from, to, min)
}

func (t *timeoutRegistry) VersionsAfter(ctx context.Context, pkg string, from version.Version, min version.Stability) ([]version.Version, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	return t.next.VersionsAfter(ctx, pkg, from, min)
}

func (t *timeoutRegistry) LatestCompatible(ctx context.Context, pkg string, host, installed version.Version) (version.Version, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	return t.next.LatestCompatible(ctx, pkg, host, installed)
}

func (t *timeoutRegistry) Changelog(ctx context.Context, pkg string, v version.Version) (string, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	return t.next.Changelog(ctx, pkg, v)
}
