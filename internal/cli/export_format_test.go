package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inkhub/internal/core/types"
	"inkhub/internal/domain/entity"
)

func sampleExport() *Export {
	return &Export{
		Sales: []entity.Sale{
			{ID: 1, Date: "2024-03-01", Client: "Acme Corp", Amount: types.NewMoney(2500)},
		},
		Clients: []entity.Client{
			{ID: 7, Name: "Acme Corp", Phone: "0700000000"},
		},
	}
}

func TestExportRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "export.json")
	require.NoError(t, WriteExport(path, sampleExport()))

	got, err := ReadExport(path)
	require.NoError(t, err)
	require.Len(t, got.Sales, 1)
	assert.Equal(t, "Acme Corp", got.Sales[0].Client)
	assert.True(t, got.Sales[0].Amount.Equal(types.NewMoney(2500)))
	require.Len(t, got.Clients, 1)
	assert.EqualValues(t, 7, got.Clients[0].ID)
}

func TestExportRoundTripGzip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "export.json.gz")
	require.NoError(t, WriteExport(path, sampleExport()))

	// The file on disk is compressed, not plain JSON.
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Greater(t, len(raw), 2)
	assert.Equal(t, []byte{0x1f, 0x8b}, raw[:2])

	got, err := ReadExport(path)
	require.NoError(t, err)
	assert.Len(t, got.Sales, 1)
}

func TestReadExportMissingFile(t *testing.T) {
	_, err := ReadExport(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}
