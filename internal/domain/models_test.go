package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKind(t *testing.T) {
	for _, k := range Kinds {
		got, err := ParseKind(string(k))
		require.NoError(t, err)
		assert.Equal(t, k, got)
		assert.NotEqual(t, "?", k.Label())
	}

	_, err := ParseKind("spaceship")
	assert.ErrorContains(t, err, "unknown asset kind")
	assert.Equal(t, "?", Kind("spaceship").Label())
}

func TestAssetSearchText(t *testing.T) {
	expiry := time.Date(2026, time.June, 30, 0, 0, 0, 0, time.UTC)
	a := Asset{ID: "a1", Kind: KindLicense, Name: "Office 365 E3", Vendor: "Microsoft", Seats: 40, Expiry: &expiry}

	assert.Equal(t, "a1 license Office 365 E3 Microsoft 40 2026-06-30", a.SearchText())

	p := Asset{ID: "p1", Kind: KindPurchase, Name: "Notebook Dell", Cost: 1200}
	assert.Equal(t, "p1 purchase Notebook Dell  1200.00", p.SearchText())
}

func TestAssetExpired(t *testing.T) {
	now := time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)
	past := now.AddDate(0, -1, 0)
	future := now.AddDate(0, 1, 0)

	assert.True(t, Asset{Expiry: &past}.Expired(now))
	assert.False(t, Asset{Expiry: &future}.Expired(now))
	assert.False(t, Asset{}.Expired(now))
}

func TestAssetDetails(t *testing.T) {
	a := Asset{ID: "t1", Kind: KindThirdParty, Name: "Loaned notebook", Vendor: "Dell", Notes: "On loan to team 3"}
	details := a.Details()

	assert.Contains(t, details, "Loaned notebook\n===============\n")
	assert.Contains(t, details, "Vendor:  Dell\n")
	assert.Contains(t, details, "Expiry:  never\n")
	assert.Contains(t, details, "\nOn loan to team 3\n")
	assert.NotContains(t, details, "Seats:")
}
