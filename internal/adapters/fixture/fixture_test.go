package fixture_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/alejandrodnm/arbscout/internal/adapters/fixture"
	"github.com/alejandrodnm/arbscout/internal/domain"
	"github.com/alejandrodnm/arbscout/internal/ports"
	"github.com/alejandrodnm/arbscout/internal/scanner"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fixturesDir = "../../../testdata/fixtures"

var _ ports.PlatformAdapter = (*fixture.Adapter)(nil)

func TestLoad_RepoFixtures(t *testing.T) {
	adapters, err := fixture.Load(fixturesDir)
	require.NoError(t, err)

	assert.Len(t, adapters, 5)
	for p, a := range adapters {
		assert.Equal(t, p, a.Platform())
	}
}

func TestLoadFile_UnknownPlatform(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"platform": "myspace", "listings": []}`), 0o644))

	_, err := fixture.LoadFile(path)
	assert.Error(t, err)
}

func TestLoadFile_InvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte(`{`), 0o644))

	_, err := fixture.LoadFile(path)
	assert.Error(t, err)
}

func TestSearch_QueryAndFilters(t *testing.T) {
	adapters, err := fixture.Load(fixturesDir)
	require.NoError(t, err)
	ebay := adapters[domain.PlatformEBay]
	ctx := context.Background()

	all, err := ebay.Search(ctx, domain.SearchQuery{Query: "trending"})
	require.NoError(t, err)
	assert.Len(t, all, 4)

	lego, err := ebay.Search(ctx, domain.SearchQuery{Query: "lego falcon"})
	require.NoError(t, err)
	require.Len(t, lego, 1)
	assert.Equal(t, "673419319041", lego[0].UPC)
	assert.Equal(t, domain.PlatformEBay, lego[0].Platform)

	games, err := ebay.Search(ctx, domain.SearchQuery{Query: "trending", Category: "Video-Games"})
	require.NoError(t, err)
	require.Len(t, games, 1)

	cheap, err := ebay.Search(ctx, domain.SearchQuery{Query: "trending", MaxPrice: 80})
	require.NoError(t, err)
	assert.Len(t, cheap, 2)

	limited, err := ebay.Search(ctx, domain.SearchQuery{MaxResults: 1})
	require.NoError(t, err)
	assert.Len(t, limited, 1)

	none, err := ebay.Search(ctx, domain.SearchQuery{Query: "typewriter"})
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestGetProductAndStock(t *testing.T) {
	a := fixture.New(domain.PlatformTarget, []domain.ProductSearchResult{
		{PlatformID: "t-1", Title: "Stanley Quencher 40oz", Price: 45, InStock: true},
		{PlatformID: "t-2", Title: "Owala FreeSip", Price: 27.99, InStock: false},
	})
	ctx := context.Background()

	p, err := a.GetProduct(ctx, "t-1")
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, domain.PlatformTarget, p.Platform)

	missing, err := a.GetProduct(ctx, "t-9")
	require.NoError(t, err)
	assert.Nil(t, missing)

	st, err := a.CheckStock(ctx, "t-2")
	require.NoError(t, err)
	assert.False(t, st.InStock)

	st, err = a.CheckStock(ctx, "t-9")
	require.NoError(t, err)
	assert.False(t, st.InStock)
}

func TestSearch_CancelledContext(t *testing.T) {
	a := fixture.New(domain.PlatformTarget, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := a.Search(ctx, domain.SearchQuery{})
	assert.ErrorIs(t, err, context.Canceled)
}

// Los fixtures del repo producen oportunidades en un scan con opciones por defecto.
func TestFixtures_ProduceOpportunities(t *testing.T) {
	loaded, err := fixture.Load(fixturesDir)
	require.NoError(t, err)

	adapters := make(map[domain.Platform]ports.PlatformAdapter, len(loaded))
	for p, a := range loaded {
		adapters[p] = a
	}

	opps, err := scanner.New(scanner.DefaultConfig(), nil, nil, nil).
		Scan(context.Background(), adapters, scanner.DefaultScanOptions())
	require.NoError(t, err)
	require.NotEmpty(t, opps)

	for _, o := range opps {
		assert.NotEqual(t, o.BuyPlatform, o.SellPlatform)
		assert.GreaterOrEqual(t, o.MarginPct, 15.0)
		assert.Greater(t, o.EstimatedProfit, 0.0)
	}
}
