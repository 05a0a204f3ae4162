package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"bodega/internal/tank"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(DriverSQLite, filepath.Join(t.TempDir(), "tanks.db"), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestEnsureSchema_SeedsOnce(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.EnsureSchema(ctx))
	tanks, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, tanks, 8)
	assert.Equal(t, "T-001", tanks[0].ID)
	assert.Equal(t, tank.StatusFermenting, tanks[0].Status)
	assert.Equal(t, "T-008", tanks[7].ID)

	// Once any row exists, re-running the bootstrap never re-inserts.
	require.NoError(t, s.EnsureSchema(ctx))
	tanks, err = s.List(ctx)
	require.NoError(t, err)
	assert.Len(t, tanks, 8)

	_, err = s.Delete(ctx, "T-001")
	require.NoError(t, err)
	require.NoError(t, s.EnsureSchema(ctx))
	tanks, err = s.List(ctx)
	require.NoError(t, err)
	assert.Len(t, tanks, 7, "seeding must not re-apply while records remain")
}

func TestCreateListRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.EnsureSchema(ctx))

	porter := tank.Tank{
		ID:             "T-009",
		BeerType:       "Porter",
		VolumeLiters:   500,
		CapacityLiters: 1000,
		Status:         tank.StatusEmpty,
	}
	require.NoError(t, s.Create(ctx, porter))

	tanks, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, tanks, 9)

	var found []tank.Tank
	for _, got := range tanks {
		if got.ID == "T-009" {
			found = append(found, got)
		}
	}
	require.Len(t, found, 1)
	assert.Equal(t, porter, found[0])
}

func TestCreate_DuplicateID(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.EnsureSchema(ctx))

	err := s.Create(ctx, tank.Tank{ID: "T-001", BeerType: "IPA", VolumeLiters: 1, CapacityLiters: 2, Status: tank.StatusEmpty})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDuplicateID)
}

func TestUpdate(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.EnsureSchema(ctx))

	rows, err := s.Update(ctx, tank.Tank{
		ID: "T-004", BeerType: "Pilsner", VolumeLiters: 750, CapacityLiters: 1500, Status: tank.StatusFermenting,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), rows)

	tanks, err := s.List(ctx)
	require.NoError(t, err)
	for _, got := range tanks {
		if got.ID == "T-004" {
			assert.Equal(t, float64(750), got.VolumeLiters)
			assert.Equal(t, tank.StatusFermenting, got.Status)
		}
	}

	// Absent id matches zero rows, which is not an error.
	rows, err = s.Update(ctx, tank.Tank{ID: "T-999", BeerType: "x", VolumeLiters: 1, CapacityLiters: 2, Status: tank.StatusEmpty})
	require.NoError(t, err)
	assert.Zero(t, rows)
}

func TestDelete_Idempotent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.EnsureSchema(ctx))

	rows, err := s.Delete(ctx, "T-008")
	require.NoError(t, err)
	assert.Equal(t, int64(1), rows)

	rows, err = s.Delete(ctx, "T-008")
	require.NoError(t, err)
	assert.Zero(t, rows, "deleting a missing id succeeds with no state change")

	tanks, err := s.List(ctx)
	require.NoError(t, err)
	assert.Len(t, tanks, 7)
}

func TestRebind(t *testing.T) {
	sqlite := &Store{driver: DriverSQLite}
	pg := &Store{driver: DriverPostgres}

	q := "INSERT INTO tanks (id, status) VALUES (?, ?)"
	assert.Equal(t, q, sqlite.rebind(q))
	assert.Equal(t, "INSERT INTO tanks (id, status) VALUES ($1, $2)", pg.rebind(q))
}
