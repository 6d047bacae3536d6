package export

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"os"

	"github.com/rshade/reviewlens/internal/table"
)

// CSVExporter writes the table as CSV. Nulls are written as empty fields.
type CSVExporter struct {
	Path string
}

// Export implements Exporter.
func (e *CSVExporter) Export(ctx context.Context, t *table.Table) (err error) {
	f, err := os.Create(e.Path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", e.Path, err)
	}
	defer func() {
		err = errors.Join(err, f.Close())
	}()

	w := csv.NewWriter(f)
	if err := w.Write(t.Columns); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	record := make([]string, len(t.Columns))
	for i, row := range t.Rows {
		if i%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		for j := range record {
			record[j] = row.Get(j).Value
		}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("writing row %d: %w", i, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flushing %s: %w", e.Path, err)
	}
	return nil
}
