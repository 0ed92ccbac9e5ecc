// Package license provides license state for installed components.
package license

import (
	"context"
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/ajxudir/updatecheck/pkg/errors"
)

// State is the license standing of one component.
//
// Fields:
//   - Key: License key, used to match keys reported by an installation
//   - Expired: Whether updates are blocked until renewal
//   - RenewalURL: Where the license can be renewed
//   - RenewalPrice: Renewal price in RenewalCurrency
//   - RenewalCurrency: ISO currency code; empty means the configured default
type State struct {
	Key             string  `yaml:"key,omitempty"`
	Expired         bool    `yaml:"expired"`
	RenewalURL      string  `yaml:"renewal_url,omitempty"`
	RenewalPrice    float64 `yaml:"renewal_price,omitempty"`
	RenewalCurrency string  `yaml:"renewal_currency,omitempty"`
}

// Validate checks that an expired state can be renewed.
//
// Returns:
//   - error: Wraps errors.ErrIncompleteRenewal when an expired state has no
//     renewal URL or no positive renewal price; nil otherwise
func (s State) Validate() error {
	if s.RenewalPrice < 0 {
		return fmt.Errorf("renewal_price must not be negative")
	}
	if !s.Expired {
		return nil
	}
	switch {
	case s.RenewalURL == "":
		return fmt.Errorf("%w: missing renewal_url", errors.ErrIncompleteRenewal)
	case s.RenewalPrice == 0:
		return fmt.Errorf("%w: missing renewal_price", errors.ErrIncompleteRenewal)
	}
	return nil
}

// Store looks up license state by component handle. A nil state with a
// nil error means the component has no license on record.
type Store interface {
	Lookup(ctx context.Context, handle string) (*State, error)
}

// maxFileSize bounds license files read by LoadFile.
const maxFileSize = 1024 * 1024

// FileStore is a Store backed by a YAML document:
//
//	licenses:
//	  craft:
//	    key: ABCD-1234
//	    expired: true
//	    renewal_url: https://example.com/renew/craft
//	    renewal_price: 59
//	  commerce:
//	    expired: false
type FileStore struct {
	mu       sync.RWMutex
	licenses map[string]State
}

type fileDocument struct {
	Licenses map[string]State `yaml:"licenses"`
}

// NewFileStore returns a store holding the given states.
func NewFileStore(states map[string]State) *FileStore {
	copied := make(map[string]State, len(states))
	for handle, s := range states {
		copied[handle] = s
	}
	return &FileStore{licenses: copied}
}

// LoadFile reads a YAML license document.
//
// Parameters:
//   - path: Path to the YAML file
//
// Returns:
//   - *FileStore: The loaded store
//   - error: When the file cannot be read, is too large, or is not valid YAML
func LoadFile(path string) (*FileStore, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read license file %s: %w", path, err)
	}
	if info.Size() > maxFileSize {
		return nil, fmt.Errorf("license file %s too large: %d bytes (max %d)", path, info.Size(), maxFileSize)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read license file %s: %w", path, err)
	}

	return Parse(data)
}

// Parse decodes a YAML license document.
func Parse(data []byte) (*FileStore, error) {
	var doc fileDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse license file: %w", err)
	}
	for handle, s := range doc.Licenses {
		if err := s.Validate(); err != nil {
			return nil, fmt.Errorf("license %s: %w", handle, err)
		}
	}
	return NewFileStore(doc.Licenses), nil
}

// Lookup implements Store.
func (f *FileStore) Lookup(ctx context.Context, handle string) (*State, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	s, ok := f.licenses[handle]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

// Len returns the number of licenses on record.
func (f *FileStore) Len() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.licenses)
}

// keyedStore filters a Store by the keys an installation reported.
type keyedStore struct {
	next Store
	keys map[string]string
}

// ForKeys returns a Store that only reports a license when the
// installation presented its key. Records without a key always match.
// Handles without a reported key never match a keyed record.
//
// Parameters:
//   - next: The underlying store
//   - keys: Handle to license key, as reported by the installation
func ForKeys(next Store, keys map[string]string) Store {
	return &keyedStore{next: next, keys: keys}
}

func (k *keyedStore) Lookup(ctx context.Context, handle string) (*State, error) {
	s, err := k.next.Lookup(ctx, handle)
	if err != nil || s == nil {
		return s, err
	}
	if s.Key == "" || k.keys[handle] == s.Key {
		return s, nil
	}
	return nil, nil
}

// None is a Store with no licenses.
type None struct{}

// Lookup implements Store.
func (None) Lookup(context.Context, string) (*State, error) { return nil, nil }
