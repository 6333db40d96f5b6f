package catalog_test

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tradepost-shop/tradepost/internal/catalog"
	_ "github.com/tradepost-shop/tradepost/testing"
)

func TestExporterAppend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "exports", "product_list.csv")
	exporter := catalog.NewExporter(testLogger(), path)

	categoryID := int64(3)
	exporter.Append(catalog.Product{
		ID:         1,
		CategoryID: &categoryID,
		Name:       "widget",
		Title:      "A widget",
		Price:      100,
		CreatedAt:  time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC),
	})
	exporter.Append(catalog.Product{
		ID:    2,
		Name:  "gadget",
		Title: "A gadget",
		Price: 250,
	})

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, []string{"Product ID", "Name", "Title", "Price", "Category ID", "Created At"}, rows[0])
	assert.Equal(t, []string{"1", "widget", "A widget", "100", "3", "2025-01-02T03:04:05Z"}, rows[1])
	assert.Equal(t, "gadget", rows[2][1])
	assert.Empty(t, rows[2][4])
}

func TestWriteSheet(t *testing.T) {
	var sb strings.Builder
	err := catalog.WriteSheet(&sb, []catalog.Product{
		{ID: 1, Name: "widget", Title: "A widget", Price: 100},
	})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(sb.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "Product ID")
	assert.Contains(t, lines[1], "widget")
}
