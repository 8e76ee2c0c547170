package source

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"assetgrip/internal/domain"
)

// catalogNamespace keeps generated asset ids stable across runs
var catalogNamespace = uuid.MustParse("6f1c2a4e-9b1d-4c55-8d4e-2b7f0e3a9c11")

var vendors = []string{"Microsoft", "Adobe", "Dell", "LG", "Atlassian", "Oracle", "Cisco", "Lenovo", "JetBrains", "Autodesk"}

var products = map[domain.Kind][]string{
	domain.KindLicense:    {"Windows 11 Pro", "Office 365 E3", "Creative Cloud", "Jira Software", "AutoCAD"},
	domain.KindSoftware:   {"Visual Studio", "Acrobat Pro", "IntelliJ IDEA", "Confluence", "Webex"},
	domain.KindPayment:    {"Annual renewal", "Support contract", "Maintenance fee", "Cloud credits", "Training"},
	domain.KindPurchase:   {"Notebook", "Monitor", "Docking station", "Switch", "Headset"},
	domain.KindThirdParty: {"Loaned notebook", "Contractor monitor", "Partner license", "Rented printer", "Vendor laptop"},
}

// GenerateCatalog builds n deterministic assets. The same n always yields
// the same assets, ids included.
func GenerateCatalog(n int) []domain.Asset {
	base := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	assets := make([]domain.Asset, 0, n)
	for i := range n {
		kind := domain.Kinds[i%len(domain.Kinds)]
		names := products[kind]
		vendor := vendors[(i/len(domain.Kinds))%len(vendors)]
		name := fmt.Sprintf("%s %s", names[(i/len(domain.Kinds))%len(names)], vendor)

		a := domain.Asset{
			ID:     uuid.NewSHA1(catalogNamespace, fmt.Appendf(nil, "asset-%d", i)).String(),
			Kind:   kind,
			Name:   name,
			Vendor: vendor,
		}
		switch kind {
		case domain.KindLicense, domain.KindSoftware:
			a.Seats = 5 + (i*7)%95
			expiry := base.AddDate(0, i%24, 0)
			a.Expiry = &expiry
		case domain.KindPayment, domain.KindPurchase:
			a.Cost = float64(100 + (i*37)%4900)
		case domain.KindThirdParty:
			a.Notes = fmt.Sprintf("On loan to team %d", 1+i%9)
		}
		assets = append(assets, a)
	}
	return assets
}

// MemoryProvider serves assets from memory with an artificial delay,
// standing in for a remote inventory API
type MemoryProvider struct {
	mu      sync.RWMutex
	assets  []domain.Asset
	latency time.Duration
	failAt  map[int]error
}

// NewMemoryProvider creates a provider over a copy of assets
func NewMemoryProvider(assets []domain.Asset, latency time.Duration) *MemoryProvider {
	return &MemoryProvider{
		assets:  slices.Clone(assets),
		latency: latency,
		failAt:  make(map[int]error),
	}
}

// FailAt makes the next fetch at offset return err once
func (p *MemoryProvider) FailAt(offset int, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.failAt[offset] = err
}

// Len returns the catalog size
func (p *MemoryProvider) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.assets)
}

// Add appends assets to the catalog
func (p *MemoryProvider) Add(assets ...domain.Asset) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.assets = append(p.assets, assets...)
}

// FetchPage implements Provider
func (p *MemoryProvider) FetchPage(ctx context.Context, offset, limit int) ([]domain.Asset, error) {
	if err := checkPage(offset, limit); err != nil {
		return nil, err
	}

	if p.latency > 0 {
		timer := time.NewTimer(p.latency)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timer.C:
		}
	} else if err := ctx.Err(); err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if err, ok := p.failAt[offset]; ok {
		delete(p.failAt, offset)
		return nil, err
	}
	if offset >= len(p.assets) {
		return []domain.Asset{}, nil
	}
	end := min(offset+limit, len(p.assets))
	return slices.Clone(p.assets[offset:end]), nil
}

// Close implements Provider
func (p *MemoryProvider) Close() error {
	return nil
}
