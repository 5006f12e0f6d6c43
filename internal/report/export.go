package report

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const exportSheet = "Rekap"

var exportHeader = []any{"NIS", "Nama", "Hadir", "Sakit", "Izin", "Alpa", "Total"}

var exportColWidths = []float64{14, 28, 10, 10, 10, 10, 10}

// buildWorkbook renders rollup rows as the fixed seven-column sheet with a
// bold, autofiltered header row.
func buildWorkbook(rows []RollupRow) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return nil, err
	}

	if err := f.SetSheetRow(exportSheet, "A1", &exportHeader); err != nil {
		return nil, err
	}
	for i, r := range rows {
		cell := fmt.Sprintf("A%d", i+2)
		row := []any{r.NIS, r.Name, r.Hadir, r.Sakit, r.Izin, r.Alpa, r.Total}
		if err := f.SetSheetRow(exportSheet, cell, &row); err != nil {
			return nil, err
		}
	}

	for i, w := range exportColWidths {
		col := string(rune('A' + i))
		if err := f.SetColWidth(exportSheet, col, col, w); err != nil {
			return nil, err
		}
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(exportSheet, "A1", "G1", bold); err != nil {
		return nil, err
	}
	if err := f.AutoFilter(exportSheet, "A1:G1", nil); err != nil {
		return nil, err
	}

	return f, nil
}

// exportFilename builds "rekap_<class>_<start|ALL>_<end|ALL>.xlsx" with the
// class name reduced to filesystem-safe ASCII.
func exportFilename(className, start, end string) string {
	if start == "" {
		start = "ALL"
	}
	if end == "" {
		end = "ALL"
	}
	return fmt.Sprintf("rekap_%s_%s_%s.xlsx", sanitizeFilename(className), start, end)
}

var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

func sanitizeFilename(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		name = "kelas"
	}
	// decompose accented letters and drop the combining marks
	if out, _, err := transform.String(stripMarks, name); err == nil {
		name = out
	}

	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		case r == ' ':
			b.WriteRune('_')
		}
	}
	out := b.String()
	if out == "" {
		return "kelas"
	}
	return out
}
