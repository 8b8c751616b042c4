package repositories_test

import (
	"context"
	"testing"
	"time"

	"catalogsearch/internal/models"
	"catalogsearch/internal/repositories"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

func sampleSnapshot() *models.CatalogSnapshot {
	products := []models.CachedProduct{
		{
			ID:               101,
			Name:             "Zapatilla World Londres Azul",
			Slug:             "zapatilla-world-londres-azul",
			Price:            "259900",
			RegularPrice:     "289900",
			SalePrice:        "259900",
			Image:            "https://cdn.example.com/londres.jpg",
			Categories:       []models.Category{{ID: 1, Name: "Zapatillas", Slug: "zapatillas"}, {ID: 2, Name: "Futsal", Slug: "futsal"}},
			ShortDescription: "Suela de caucho",
			Description:      "Zapatilla para futsal",
			InStock:          true,
			StockQuantity:    intPtr(12),
		},
		{
			ID:         102,
			Name:       "Balón Futsal Profesional",
			Slug:       "balon-futsal-profesional",
			Price:      "89000",
			Image:      "/placeholder.png",
			Categories: []models.Category{{ID: 2, Name: "Futsal", Slug: "futsal"}},
			InStock:    false,
		},
	}
	for i := range products {
		products[i].RefreshSearchText()
	}
	return models.NewCatalogSnapshot(products, time.Date(2026, 10, 1, 12, 30, 0, 0, time.UTC))
}

type repoFactory func(t *testing.T) repositories.SnapshotRepository

func factories() map[string]repoFactory {
	return map[string]repoFactory{
		"memory": func(t *testing.T) repositories.SnapshotRepository {
			return repositories.NewMemorySnapshotRepository()
		},
		"file": func(t *testing.T) repositories.SnapshotRepository {
			return repositories.NewFileSnapshotRepository(afero.NewMemMapFs(), "data/products-cache.json")
		},
		"redis": func(t *testing.T) repositories.SnapshotRepository {
			mr := miniredis.RunT(t)
			client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
			t.Cleanup(func() { client.Close() })
			return repositories.NewRedisSnapshotRepository(client, "")
		},
	}
}

func TestSnapshotRepository_ReadAbsent(t *testing.T) {
	for name, newRepo := range factories() {
		t.Run(name, func(t *testing.T) {
			repo := newRepo(t)

			snapshot, ok, err := repo.Read(context.Background())

			assert.NoError(t, err)
			assert.False(t, ok)
			assert.Nil(t, snapshot)
		})
	}
}

func TestSnapshotRepository_RoundTrip(t *testing.T) {
	for name, newRepo := range factories() {
		t.Run(name, func(t *testing.T) {
			repo := newRepo(t)
			want := sampleSnapshot()

			require.NoError(t, repo.Write(context.Background(), want))
			got, ok, err := repo.Read(context.Background())

			require.NoError(t, err)
			require.True(t, ok)
			assert.Equal(t, want.Products, got.Products)
			assert.True(t, want.LastSyncedAt.Equal(got.LastSyncedAt))
			assert.Equal(t, len(got.Products), got.TotalProducts)
			assert.Equal(t, want.TotalProducts, got.TotalProducts)
		})
	}
}

func TestSnapshotRepository_WriteReplaces(t *testing.T) {
	for name, newRepo := range factories() {
		t.Run(name, func(t *testing.T) {
			repo := newRepo(t)
			require.NoError(t, repo.Write(context.Background(), sampleSnapshot()))

			next := models.NewCatalogSnapshot(sampleSnapshot().Products[:1], time.Now())
			require.NoError(t, repo.Write(context.Background(), next))

			got, ok, err := repo.Read(context.Background())
			require.NoError(t, err)
			require.True(t, ok)
			assert.Equal(t, 1, got.TotalProducts)
			assert.Len(t, got.Products, 1)
		})
	}
}

func TestSnapshotRepository_RejectsInvalidSnapshot(t *testing.T) {
	for name, newRepo := range factories() {
		t.Run(name, func(t *testing.T) {
			repo := newRepo(t)
			good := sampleSnapshot()
			require.NoError(t, repo.Write(context.Background(), good))

			dup := sampleSnapshot()
			dup.Products[1].ID = dup.Products[0].ID
			assert.Error(t, repo.Write(context.Background(), dup))

			miscounted := sampleSnapshot()
			miscounted.TotalProducts = 7
			assert.Error(t, repo.Write(context.Background(), miscounted))

			// previous snapshot still readable
			got, ok, err := repo.Read(context.Background())
			require.NoError(t, err)
			require.True(t, ok)
			assert.Equal(t, good.Products, got.Products)
		})
	}
}

func TestFileSnapshotRepository_CorruptFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	repo := repositories.NewFileSnapshotRepository(fs, "data/products-cache.json")
	require.NoError(t, afero.WriteFile(fs, "data/products-cache.json", []byte(`{"products": [`), 0o644))

	_, ok, err := repo.Read(context.Background())

	assert.False(t, ok)
	assert.ErrorIs(t, err, repositories.ErrSnapshotCorrupt)
}

func TestFileSnapshotRepository_CountMismatchIsCorrupt(t *testing.T) {
	fs := afero.NewMemMapFs()
	repo := repositories.NewFileSnapshotRepository(fs, "data/products-cache.json")
	body := `{"products":[{"id":1,"name":"a"}],"lastSync":"2026-10-01T00:00:00Z","totalProducts":3}`
	require.NoError(t, afero.WriteFile(fs, "data/products-cache.json", []byte(body), 0o644))

	_, _, err := repo.Read(context.Background())

	assert.ErrorIs(t, err, repositories.ErrSnapshotCorrupt)
}

func TestFileSnapshotRepository_SearchTextRecomputedOnRead(t *testing.T) {
	fs := afero.NewMemMapFs()
	repo := repositories.NewFileSnapshotRepository(fs, "data/products-cache.json")
	body := `{"products":[{"id":1,"name":"Balón Azul","categories":[{"id":4,"name":"Fútbol","slug":"futbol"}],"searchText":"tampered"}],"lastSync":"2026-10-01T00:00:00Z","totalProducts":1}`
	require.NoError(t, afero.WriteFile(fs, "data/products-cache.json", []byte(body), 0o644))

	got, ok, err := repo.Read(context.Background())

	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "balon azul futbol", got.Products[0].SearchText)
}

func TestFileSnapshotRepository_LeavesNoTempFiles(t *testing.T) {
	fs := afero.NewMemMapFs()
	repo := repositories.NewFileSnapshotRepository(fs, "data/products-cache.json")

	require.NoError(t, repo.Write(context.Background(), sampleSnapshot()))
	require.NoError(t, repo.Write(context.Background(), sampleSnapshot()))

	entries, err := afero.ReadDir(fs, "data")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "products-cache.json", entries[0].Name())
	assert.Equal(t, "data/products-cache.json", repo.Path())
}

func TestRedisSnapshotRepository_UsesKey(t *testing.T) {
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	repo := repositories.NewRedisSnapshotRepository(client, "store:search")

	require.NoError(t, repo.Write(context.Background(), sampleSnapshot()))

	assert.True(t, mr.Exists("store:search"))
	assert.False(t, mr.Exists(repositories.DefaultSnapshotKey))
}
