package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inkhub/internal/core/types"
)

func TestRowOf_Sale(t *testing.T) {
	designID := int64(1700000000001)
	s := Sale{
		ID:            1700000000002,
		Date:          "2024-01-15",
		Client:        "Acme",
		Dept:          "Printing",
		Amount:        types.MustMoney("5000"),
		DesignID:      &designID,
		Source:        SourceDesignProject,
		PaymentStatus: SalePaid,
	}

	row := RowOf(s)
	require.NotNil(t, row)
	assert.Equal(t, int64(1700000000002), row["id"])
	assert.Equal(t, "Acme", row["client"])
	assert.Equal(t, "2024-01-15", row["date"])
	assert.Equal(t, &designID, row["design_id"])
	// Untagged / json-only representation must not leak through.
	_, hasDesc := row["description"]
	assert.True(t, hasDesc)
	_, hasJSONKey := row["designId"]
	assert.False(t, hasJSONKey)
}

func TestColumns(t *testing.T) {
	cols := Columns[Client]()
	assert.Equal(t, []string{"id", "name", "phone", "address", "location"}, cols)
}

func TestApplyPatch_Coercions(t *testing.T) {
	s := Sale{ID: 1, Client: "Acme", PaymentStatus: SalePending}

	// Values as they arrive from a decoded JSON payload.
	ApplyPatch(&s, Row{
		"payment_status": "Paid",
		"amount":         float64(2500),
		"design_id":      float64(1700000000001),
		"handed_over":    true,
	})

	assert.Equal(t, SalePaid, s.PaymentStatus)
	assert.True(t, s.Amount.Equal(types.MustMoney("2500")))
	require.NotNil(t, s.DesignID)
	assert.Equal(t, int64(1700000000001), *s.DesignID)
	assert.True(t, s.HandedOver)
	// Untouched fields survive the merge.
	assert.Equal(t, "Acme", s.Client)
}

func TestApplyPatch_NilResetsPointer(t *testing.T) {
	designID := int64(42)
	s := Sale{DesignID: &designID}

	ApplyPatch(&s, Row{"design_id": nil})

	assert.Nil(t, s.DesignID)
}

func TestApplyPatch_SkipsUnknownAndMismatched(t *testing.T) {
	c := Client{ID: 7, Name: "Jane"}

	ApplyPatch(&c, Row{
		"no_such_column": "x",
		"name":           12345, // wrong type, must be skipped
		"phone":          "0712345678",
	})

	assert.Equal(t, "Jane", c.Name)
	assert.Equal(t, "0712345678", c.Phone)
}

func TestFromRow_AuditEntry(t *testing.T) {
	ts := time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)

	e := FromRow[AuditEntry](Row{
		"id":        float64(1700000000003),
		"timestamp": ts.Format(time.RFC3339),
		"username":  "jane",
		"action":    ActionCreate,
		"module":    "Sales",
		"details":   "Created sale for Acme (KSh 5000)",
	})

	assert.Equal(t, int64(1700000000003), e.ID)
	assert.True(t, ts.Equal(e.Timestamp))
	assert.Equal(t, "jane", e.User)
	assert.Equal(t, ActionCreate, e.Action)
}

func TestSameKey_NumericAcrossJSONBoundary(t *testing.T) {
	// Unix-millisecond ids come back from a JSON decode as float64; the
	// printed form of a float that size is scientific notation, so the
	// comparison has to be numeric.
	assert.True(t, SameKey(int64(1700000000001), float64(1700000000001)))
	assert.True(t, SameKey(float64(1700000000001), int64(1700000000001)))
	assert.True(t, SameKey(int64(42), int64(42)))
	assert.False(t, SameKey(int64(1700000000001), float64(1700000000002)))

	// Non-numeric keys still compare by value.
	assert.True(t, SameKey("jane", "jane"))
	assert.False(t, SameKey("jane", "john"))
}

func TestNormalizeRow_MapsJSONNamesToColumns(t *testing.T) {
	row := NormalizeRow[Sale](Row{
		"paymentStatus": "Paid",
		"designId":      float64(42),
		"client":        "Acme Corp", // same name in both representations
		"no_such_key":   true,
	})

	assert.Equal(t, "Paid", row["payment_status"])
	assert.Equal(t, float64(42), row["design_id"])
	assert.Equal(t, "Acme Corp", row["client"])
	assert.Equal(t, true, row["no_such_key"])
	assert.NotContains(t, row, "paymentStatus")
}

func TestNormalizeRow_ColumnNameWins(t *testing.T) {
	// When a body carries both spellings the column name takes
	// precedence.
	row := NormalizeRow[Sale](Row{
		"paymentStatus":  "Pending",
		"payment_status": "Paid",
	})

	assert.Equal(t, "Paid", row["payment_status"])
}
