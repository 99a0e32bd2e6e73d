package seed_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"scango/internal/repositories"
	"scango/internal/seed"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLoad_BuiltIn(t *testing.T) {
	c, err := seed.Load("")
	require.NoError(t, err)
	products, err := c.Build()
	require.NoError(t, err)
	require.Len(t, products, 8)

	byName := map[string]int{}
	for i, p := range products {
		byName[p.Name] = i
	}
	whiskey := products[byName["Whiskey"]]
	assert.Equal(t, 21, whiskey.RequiredAge())
	assert.True(t, whiskey.Price.Equal(decimal.RequireFromString("24.99")))
	assert.True(t, products[byName["Water"]].Unlimited())
}

func TestApply_IsIdempotent(t *testing.T) {
	ctx := context.Background()
	repo := repositories.NewMockProductRepository()
	c, err := seed.Load("")
	require.NoError(t, err)

	added, err := seed.Apply(ctx, repo, c, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, 8, added)

	added, err = seed.Apply(ctx, repo, c, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, 0, added)

	beer, err := repo.GetByScanCode(ctx, "5410228881476")
	require.NoError(t, err)
	assert.Equal(t, "Beer", beer.Name)
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
products:
  - name: Apples
    price: "0.45"
    scan_code: APL-1
    stock: 3
`), 0o600))

	c, err := seed.Load(path)
	require.NoError(t, err)
	products, err := c.Build()
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, 3, *products[0].Stock)

	_, err = seed.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestBuild_BadPrice(t *testing.T) {
	c, err := seed.Parse([]byte("products:\n  - name: X\n    price: lots\n    scan_code: X1\n"))
	require.NoError(t, err)
	_, err = c.Build()
	assert.Error(t, err)
}
