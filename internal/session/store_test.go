package session

import (
	"context"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flavourheaven/costonomy/internal/db"
	"github.com/flavourheaven/costonomy/internal/migrations"
	"github.com/flavourheaven/costonomy/internal/scaling"
)

func newSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	ctx := context.Background()
	conn, err := db.Open(ctx, "")
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	require.NoError(t, migrations.Up(ctx, conn))
	return NewSQLiteStore(conn)
}

func sampleSession() *Session {
	created := time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC)
	lines := []scaling.IngredientLine{
		{ItemID: 12, BaseItemID: 12, Name: "Gravy", BaseItemName: "Gravy", Unit: "KG", UnitQuantity: 1, UnitPrice: 70, Quantity: 1, Price: 70},
		{ItemID: 1, BaseItemID: 12, Name: "Onion", Unit: "GM", UnitQuantity: 1000, UnitPrice: 40, Quantity: 500, Price: 20},
		{ItemID: 3, Name: "Egg", Unit: "PCS", UnitPrice: 6, Quantity: 0, Price: 0},
	}
	return &Session{
		ID:                "f3b0c442-98fc-4c14-9afb-4c8996fb9242",
		Kind:              KindRecipe,
		SubjectID:         5,
		Name:              "Paneer Masala",
		BaseReference:     1,
		ReferenceQuantity: 2,
		Multiplier:        2,
		Original:          lines,
		Current:           scaling.Clone(lines),
		Guarded:           []int64{3},
		CreatedAt:         created,
		UpdatedAt:         created.Add(time.Minute),
	}
}

func TestStores(t *testing.T) {
	stores := map[string]func(t *testing.T) Store{
		"memory": func(*testing.T) Store { return NewMemoryStore() },
		"sqlite": func(t *testing.T) Store { return newSQLiteStore(t) },
	}

	for name, newStore := range stores {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			store := newStore(t)
			want := sampleSession()

			require.NoError(t, store.Create(ctx, want))

			got, err := store.Get(ctx, want.ID)
			require.NoError(t, err)
			if diff := cmp.Diff(want, got); diff != "" {
				t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
			}

			got.Current[1].Quantity = 250
			got.Current[1].Price = 10
			got.UpdatedAt = got.UpdatedAt.Add(time.Hour)
			require.NoError(t, store.Update(ctx, got))

			again, err := store.Get(ctx, want.ID)
			require.NoError(t, err)
			assert.Equal(t, 250.0, again.Current[1].Quantity)
			assert.Equal(t, 500.0, again.Original[1].Quantity)
			assert.True(t, again.UpdatedAt.Equal(got.UpdatedAt))

			require.NoError(t, store.Delete(ctx, want.ID))
			_, err = store.Get(ctx, want.ID)
			assert.ErrorIs(t, err, ErrNotFound)
			assert.ErrorIs(t, store.Update(ctx, got), ErrNotFound)
			assert.ErrorIs(t, store.Delete(ctx, want.ID), ErrNotFound)
		})
	}
}

func TestMemoryStoreReturnsCopies(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	s := sampleSession()
	require.NoError(t, store.Create(ctx, s))

	s.Current[0].Quantity = 99
	got, err := store.Get(ctx, s.ID)
	require.NoError(t, err)
	got.Original[0].Quantity = 42

	again, err := store.Get(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, 1.0, again.Current[0].Quantity)
	assert.Equal(t, 1.0, again.Original[0].Quantity)
}

func TestStoresPrune(t *testing.T) {
	stores := map[string]func(t *testing.T) Store{
		"memory": func(*testing.T) Store { return NewMemoryStore() },
		"sqlite": func(t *testing.T) Store { return newSQLiteStore(t) },
	}

	for name, newStore := range stores {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			store := newStore(t)

			stale := sampleSession()
			fresh := sampleSession()
			fresh.ID = "0b0e8a8c-3c1b-4d1e-8b7a-0c7f1f0b5c11"
			fresh.UpdatedAt = stale.UpdatedAt.Add(2 * time.Hour)
			require.NoError(t, store.Create(ctx, stale))
			require.NoError(t, store.Create(ctx, fresh))

			count, err := store.Count(ctx)
			require.NoError(t, err)
			assert.Equal(t, 2, count)

			n, err := store.Prune(ctx, stale.UpdatedAt.Add(time.Hour))
			require.NoError(t, err)
			assert.Equal(t, 1, n)

			count, err = store.Count(ctx)
			require.NoError(t, err)
			assert.Equal(t, 1, count)

			_, err = store.Get(ctx, stale.ID)
			assert.ErrorIs(t, err, ErrNotFound)
			_, err = store.Get(ctx, fresh.ID)
			assert.NoError(t, err)
		})
	}
}
