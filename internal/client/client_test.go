package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"bodega/internal/api"
	"bodega/internal/store"
	"bodega/internal/tank"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	st, err := store.Open(store.DriverSQLite, filepath.Join(t.TempDir(), "tanks.db"), zap.NewNop())
	require.NoError(t, err)
	srv := httptest.NewServer(api.New(st, nil, zap.NewNop()).Routes())
	t.Cleanup(func() {
		srv.Close()
		st.Close()
	})
	return srv
}

func TestClientRoundTrip(t *testing.T) {
	srv := newTestServer(t)
	c := New(srv.URL, zap.NewNop())
	ctx := context.Background()

	tanks, err := c.ListTanks(ctx)
	require.NoError(t, err)
	require.Len(t, tanks, 8)

	porter := tank.Tank{ID: "T-009", BeerType: "Porter", VolumeLiters: 500, CapacityLiters: 1000, Status: tank.StatusEmpty}
	require.NoError(t, c.CreateTank(ctx, porter))

	tanks, err = c.ListTanks(ctx)
	require.NoError(t, err)
	require.Len(t, tanks, 9)

	porter.VolumeLiters = 900
	porter.Status = tank.StatusFermenting
	require.NoError(t, c.UpdateTank(ctx, porter))

	tanks, err = c.ListTanks(ctx)
	require.NoError(t, err)
	var got tank.Tank
	for _, tk := range tanks {
		if tk.ID == "T-009" {
			got = tk
		}
	}
	assert.Equal(t, porter, got)

	require.NoError(t, c.DeleteTank(ctx, "T-009"))
	tanks, err = c.ListTanks(ctx)
	require.NoError(t, err)
	assert.Len(t, tanks, 8)
}

func TestClient_InvalidTankRejected(t *testing.T) {
	srv := newTestServer(t)
	c := New(srv.URL, zap.NewNop())

	err := c.CreateTank(context.Background(), tank.Tank{
		ID: "T-009", BeerType: "Porter", VolumeLiters: 1200, CapacityLiters: 1000, Status: tank.StatusEmpty,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status 400")
}

func TestClient_SurfacesServerErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer srv.Close()

	c := New(srv.URL, zap.NewNop())
	_, err := c.ListTanks(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status 502")
}

func TestClient_DeleteEscapesID(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := New(srv.URL, zap.NewNop())
	require.NoError(t, c.DeleteTank(context.Background(), "T 009&x=1"))
	assert.Equal(t, "id=T+009%26x%3D1", gotQuery)
}
