// Package exports renders the product catalog as an xlsx workbook.
package exports

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/ultranet/catalog/app/models"
	"github.com/ultranet/catalog/pkg/metrics"
	"github.com/ultranet/catalog/pkg/storage"
)

// Sheet is the worksheet name.
const Sheet = "Products"

// ContentType is the xlsx MIME type.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Headings is the header row.
var Headings = []string{"ID", "Name", "Category", "Description", "Price", "Stock", "Status", "Created At"}

// Filename is products_YYYYMMDD_HHMMSS.xlsx for t.
func Filename(t time.Time) string {
	return "products_" + t.Format("20060102_150405") + ".xlsx"
}

// Row maps one product to its cells.
func Row(p models.Product) []any {
	price, _ := p.Price.Round(2).Float64()
	return []any{
		p.ID,
		p.Name,
		p.CategoryName(),
		p.DescriptionText(),
		price,
		p.Stock,
		p.StatusLabel(),
		p.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}

// Write renders products, in the given order, under a bold header row.
func Write(w io.Writer, products []models.Product) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", Sheet); err != nil {
		return fmt.Errorf("exports: rename sheet: %w", err)
	}

	sw, err := f.NewStreamWriter(Sheet)
	if err != nil {
		return fmt.Errorf("exports: stream writer: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("exports: header style: %w", err)
	}

	header := make([]any, len(Headings))
	for i, h := range Headings {
		header[i] = excelize.Cell{StyleID: bold, Value: h}
	}
	if err := sw.SetRow("A1", header); err != nil {
		return fmt.Errorf("exports: header row: %w", err)
	}

	for i, p := range products {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := sw.SetRow(cell, Row(p)); err != nil {
			return fmt.Errorf("exports: row %d: %w", i+2, err)
		}
	}
	if err := sw.Flush(); err != nil {
		return fmt.Errorf("exports: flush: %w", err)
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("exports: write: %w", err)
	}
	return nil
}

// Bytes is Write into memory.
func Bytes(products []models.Product) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(&buf, products); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Store writes the workbook to disk under dir, named for now, and returns
// the stored path.
func Store(ctx context.Context, disk storage.Disk, dir string, now time.Time, products []models.Product) (string, error) {
	data, err := Bytes(products)
	if err != nil {
		return "", err
	}
	p := path.Join(dir, Filename(now))
	if err := disk.Put(ctx, p, bytes.NewReader(data)); err != nil {
		return "", fmt.Errorf("exports: store on %s: %w", disk.Name(), err)
	}
	metrics.ExportsTotal.WithLabelValues(disk.Name()).Inc()
	return p, nil
}
