package tabular

import (
	"strings"

	"gopherai-insight/internal/model"
)

// parseCSV reads the header and up to MaxSampleRows data lines with a plain
// comma split. Quoted commas are not honoured and every double quote is
// dropped. Any input produces a preview.
func parseCSV(content string) Preview {
	lines := strings.Split(content, "\n")

	columns := splitCSVLine(lines[0])
	end := 1 + MaxSampleRows
	if end > len(lines) {
		end = len(lines)
	}

	rows := make([]*model.Row, 0, end-1)
	for _, line := range lines[1:end] {
		values := splitCSVLine(line)
		row := model.NewRow()
		for i, col := range columns {
			value := ""
			if i < len(values) {
				value = values[i]
			}
			row.Set(col, value)
		}
		if !allEmpty(row) {
			rows = append(rows, row)
		}
	}

	return Preview{
		Columns:    columns,
		SampleRows: rows,
		// A trailing newline counts as a row, as the dashboard always reported it.
		RowCount: len(lines) - 1,
	}
}

func splitCSVLine(line string) []string {
	fields := strings.Split(line, ",")
	for i, field := range fields {
		fields[i] = strings.ReplaceAll(strings.TrimSpace(field), `"`, "")
	}
	return fields
}

func allEmpty(row *model.Row) bool {
	for pair := row.Oldest(); pair != nil; pair = pair.Next() {
		if s, ok := pair.Value.(string); !ok || s != "" {
			return false
		}
	}
	return true
}
