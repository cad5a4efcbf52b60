package local

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inkhub/internal/core/apperror"
	"inkhub/internal/core/types"
	"inkhub/internal/domain/entity"
)

func openTempStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data.json")
	s, err := Open(path)
	require.NoError(t, err)
	return s, path
}

func TestRoundTrip(t *testing.T) {
	ctx := context.Background()
	s, path := openTempStore(t)

	sales := Collection[entity.Sale](s, entity.TableSales)
	require.NoError(t, sales.Insert(ctx, entity.Sale{
		ID:            1700000000001,
		Date:          "2024-01-15",
		Client:        "Acme",
		Amount:        types.MustMoney("5000"),
		PaymentStatus: entity.SalePending,
	}))
	require.NoError(t, sales.Update(ctx, int64(1700000000001), entity.Row{
		"payment_status": entity.SalePaid,
	}))

	// Reopen from disk: numbers come back as float64 and must still
	// decode and match by key.
	s2, err := Open(path)
	require.NoError(t, err)

	items, err := Collection[entity.Sale](s2, entity.TableSales).SelectAll(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, int64(1700000000001), items[0].ID)
	assert.Equal(t, entity.SalePaid, items[0].PaymentStatus)
	assert.True(t, items[0].Amount.Equal(types.MustMoney("5000")))

	require.NoError(t, Collection[entity.Sale](s2, entity.TableSales).Delete(ctx, int64(1700000000001)))
	items, err = Collection[entity.Sale](s2, entity.TableSales).SelectAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestInsertDuplicateKey(t *testing.T) {
	ctx := context.Background()
	s, _ := openTempStore(t)

	clients := Collection[entity.Client](s, entity.TableClients)
	require.NoError(t, clients.Insert(ctx, entity.Client{ID: 1, Name: "Jane"}))

	err := clients.Insert(ctx, entity.Client{ID: 1, Name: "Janet"})
	assert.True(t, apperror.IsDuplicate(err))
}

func TestUpdateMissingRecord(t *testing.T) {
	ctx := context.Background()
	s, _ := openTempStore(t)

	err := Collection[entity.Client](s, entity.TableClients).
		Update(ctx, int64(404), entity.Row{"name": "x"})
	assert.True(t, apperror.IsNotFound(err))
}

func TestOpenMalformedBlob(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := Open(path)
	assert.Error(t, err)
}

func TestOpenBackfillsUsernames(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.json")
	blob := `{"users": [{"email": "Jane.Doe@example.com", "role": "admin"}]}`
	require.NoError(t, os.WriteFile(path, []byte(blob), 0o644))

	s, err := Open(path)
	require.NoError(t, err)

	users, err := KeyedCollection[entity.User](s, entity.TableUsers, "username").SelectAll(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "jane.doe", users[0].Username)
}
