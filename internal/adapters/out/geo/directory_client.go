// Package geo resolves street names to grid locations.
package geo

import (
	"context"
	"strings"
	"sync"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
)

// DirectoryClient looks streets up in an in-memory directory. Street names are
// matched case-insensitively with surrounding whitespace ignored.
type DirectoryClient struct {
	mu      sync.RWMutex
	streets map[string]kernel.Location
}

func NewDirectoryClient(streets map[string]kernel.Location) *DirectoryClient {
	client := &DirectoryClient{streets: make(map[string]kernel.Location, len(streets))}
	for street, location := range streets {
		client.streets[normalize(street)] = location
	}
	return client
}

// NewDefaultDirectoryClient serves the city's known streets.
func NewDefaultDirectoryClient() (*DirectoryClient, error) {
	defaults := []struct {
		street string
		x, y   kernel.Coordinate
	}{
		{"Тестировочная", 1, 1},
		{"Айтишная", 2, 3},
		{"Эйприл", 3, 5},
		{"Шавеллы", 4, 7},
		{"Колотушкина", 5, 2},
		{"Бажова", 6, 9},
		{"Мобильная", 7, 4},
		{"Нагорная", 8, 6},
		{"Ленина", 9, 8},
		{"Садовая", 10, 10},
	}

	streets := make(map[string]kernel.Location, len(defaults))
	for _, d := range defaults {
		location, err := kernel.NewLocation(d.x, d.y)
		if err != nil {
			return nil, err
		}
		streets[d.street] = location
	}
	return NewDirectoryClient(streets), nil
}

func (c *DirectoryClient) GetLocation(ctx context.Context, street string) (kernel.Location, error) {
	if err := ctx.Err(); err != nil {
		return kernel.Location{}, err
	}
	if strings.TrimSpace(street) == "" {
		return kernel.Location{}, errs.NewValueIsRequiredError("street")
	}

	c.mu.RLock()
	location, ok := c.streets[normalize(street)]
	c.mu.RUnlock()
	if !ok {
		return kernel.Location{}, errs.NewObjectNotFoundError("street", street)
	}
	return location, nil
}

// Put adds or replaces a street.
func (c *DirectoryClient) Put(street string, location kernel.Location) error {
	if strings.TrimSpace(street) == "" {
		return errs.NewValueIsRequiredError("street")
	}
	if err := location.Validate(); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.streets[normalize(street)] = location
	return nil
}

func normalize(street string) string {
	return strings.ToLower(strings.TrimSpace(street))
}
