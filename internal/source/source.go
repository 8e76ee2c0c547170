// Package source provides the fetch-more side of the asset list: providers
// that page assets out of a backing store, and a Pager that turns a provider
// into the list's fetch function.
package source

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"assetgrip/internal/domain"
)

// ErrInvalidPage is returned for negative offsets or non-positive limits
var ErrInvalidPage = errors.New("invalid page request")

// Provider pages assets out of a backing store. An empty page means the
// store has nothing past offset.
type Provider interface {
	FetchPage(ctx context.Context, offset, limit int) ([]domain.Asset, error)
	Close() error
}

func checkPage(offset, limit int) error {
	if offset < 0 || limit <= 0 {
		return fmt.Errorf("%w: offset=%d limit=%d", ErrInvalidPage, offset, limit)
	}
	return nil
}

// Pager walks a provider one page at a time
type Pager struct {
	mu       sync.Mutex
	provider Provider
	pageSize int
	offset   int
	gen      uint64
}

// NewPager creates a pager starting at offset 0
func NewPager(p Provider, pageSize int) *Pager {
	if pageSize <= 0 {
		pageSize = 50
	}
	return &Pager{provider: p, pageSize: pageSize}
}

// Next fetches the page after the last one returned.
// The offset only advances on success.
func (p *Pager) Next(ctx context.Context) ([]domain.Asset, error) {
	p.mu.Lock()
	offset, gen := p.offset, p.gen
	p.mu.Unlock()

	page, err := p.provider.FetchPage(ctx, offset, p.pageSize)
	if err != nil {
		return nil, fmt.Errorf("fetch page at offset %d: %w", offset, err)
	}

	p.mu.Lock()
	// A Reset during the fetch wins
	if p.gen == gen {
		p.offset += len(page)
	}
	p.mu.Unlock()
	return page, nil
}

// Offset returns the number of assets handed out so far
func (p *Pager) Offset() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.offset
}

// Reset rewinds the pager to the first page
func (p *Pager) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.offset = 0
	p.gen++
}
