package cli

import (
	"encoding/json"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"

	"inkhub/internal/domain/entity"
)

// Export is the interchange file format. Table keys match the blob store,
// so a browser-era localStorage dump loads unchanged.
type Export struct {
	Sales            []entity.Sale             `json:"sales,omitempty"`
	Clients          []entity.Client           `json:"clients,omitempty"`
	Designs          []entity.Design           `json:"designs,omitempty"`
	Expenses         []entity.Expense          `json:"expenses,omitempty"`
	Suppliers        []entity.Supplier         `json:"suppliers,omitempty"`
	SupplierExpenses []entity.SupplierExpense  `json:"supplier_expenses,omitempty"`
	Inventory        []entity.InventoryItem    `json:"inventory,omitempty"`
	StockTx          []entity.StockTransaction `json:"stock_transactions,omitempty"`
	DesignMaterials  []entity.DesignMaterial   `json:"design_materials,omitempty"`
	Users            []entity.User             `json:"users,omitempty"`
	Audit            []entity.AuditEntry       `json:"audit,omitempty"`
}

// ReadExport reads an export file, transparently decompressing .gz files.
func ReadExport(path string) (*Export, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, err
		}
		defer gz.Close()
		r = gz
	}

	var export Export
	if err := json.NewDecoder(r).Decode(&export); err != nil {
		return nil, err
	}
	return &export, nil
}

// WriteExport writes an export file, compressing when the path ends in .gz.
func WriteExport(path string, export *Export) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	var w io.Writer = f
	if strings.HasSuffix(path, ".gz") {
		gz := gzip.NewWriter(f)
		defer gz.Close()
		w = gz
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(export)
}
