// Package export turns record sets into xlsx workbooks.
package export

import (
	"bytes"
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Sheet is one worksheet. Headers may be nil for free-form key/value sheets
// such as a summary.
type Sheet struct {
	Name    string
	Headers []string
	Rows    [][]any
}

// Build writes the sheets in order into a new workbook.
func Build(sheets ...Sheet) (*bytes.Buffer, error) {
	if len(sheets) == 0 {
		return nil, errors.New("export: no sheets")
	}

	f := excelize.NewFile()
	defer f.Close()

	for i, sh := range sheets {
		if i == 0 {
			if err := f.SetSheetName(f.GetSheetName(0), sh.Name); err != nil {
				return nil, fmt.Errorf("rename sheet: %w", err)
			}
		} else if _, err := f.NewSheet(sh.Name); err != nil {
			return nil, fmt.Errorf("new sheet %q: %w", sh.Name, err)
		}

		row := 1
		if sh.Headers != nil {
			if err := writeRow(f, sh.Name, row, toAny(sh.Headers)); err != nil {
				return nil, err
			}
			row++
		}
		for _, r := range sh.Rows {
			if err := writeRow(f, sh.Name, row, r); err != nil {
				return nil, err
			}
			row++
		}
	}
	f.SetActiveSheet(0)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf, nil
}

func writeRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	converted := make([]any, len(values))
	for i, v := range values {
		converted[i] = cellValue(v)
	}
	return f.SetSheetRow(sheet, cell, &converted)
}

// excelize has no idea about decimal; numbers should stay numbers in the sheet.
func cellValue(v any) any {
	switch x := v.(type) {
	case decimal.Decimal:
		return x.InexactFloat64()
	case *decimal.Decimal:
		if x == nil {
			return nil
		}
		return x.InexactFloat64()
	}
	return v
}

func toAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}

// RangeFileName gives e.g. buyer-transactions-2025-01-01-to-2025-01-31.xlsx.
func RangeFileName(prefix, start, end string) string {
	return fmt.Sprintf("%s-%s-to-%s.xlsx", prefix, start, end)
}

func DatedFileName(prefix string, day time.Time) string {
	return fmt.Sprintf("%s-%s.xlsx", prefix, day.Format("2006-01-02"))
}

// Send streams the workbook as a download.
func Send(c *fiber.Ctx, filename string, buf *bytes.Buffer) error {
	c.Set(fiber.HeaderContentType, ContentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, filename))
	return c.Send(buf.Bytes())
}
