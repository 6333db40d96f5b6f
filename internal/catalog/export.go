package catalog

import (
	"encoding/csv"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"
)

var exportHeader = []string{"Product ID", "Name", "Title", "Price", "Category ID", "Created At"}

// Exporter appends created products to a local CSV sheet. It is a
// fire-and-forget sink: failures are logged and never propagated to the
// request that triggered the write.
type Exporter struct {
	logger *slog.Logger
	path   string

	mu sync.Mutex
}

// NewExporter constructs an Exporter writing to the given file path.
func NewExporter(logger *slog.Logger, path string) *Exporter {
	return &Exporter{logger: logger, path: path}
}

// Append adds one product row to the sheet, creating it with a header row on
// first use.
func (e *Exporter) Append(product Product) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.append(product); err != nil && e.logger != nil {
		e.logger.Warn("product export append", slog.String("path", e.path), slog.Any("error", err))
	}
}

func (e *Exporter) append(product Product) error {
	if err := os.MkdirAll(filepath.Dir(e.path), 0o755); err != nil {
		return err
	}

	info, statErr := os.Stat(e.path)
	fresh := statErr != nil || info.Size() == 0

	f, err := os.OpenFile(e.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		_ = f.Close()
	}()

	w := csv.NewWriter(f)
	if fresh {
		if err := w.Write(exportHeader); err != nil {
			return err
		}
	}
	if err := w.Write(productRow(product)); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}

// WriteSheet streams the given products as a CSV sheet with a header row.
func WriteSheet(w io.Writer, products []Product) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(exportHeader); err != nil {
		return err
	}
	for _, p := range products {
		if err := cw.Write(productRow(p)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func productRow(p Product) []string {
	categoryID := ""
	if p.CategoryID != nil {
		categoryID = strconv.FormatInt(*p.CategoryID, 10)
	}
	return []string{
		strconv.FormatInt(p.ID, 10),
		p.Name,
		p.Title,
		strconv.FormatInt(p.Price, 10),
		categoryID,
		p.CreatedAt.UTC().Format(time.RFC3339),
	}
}
