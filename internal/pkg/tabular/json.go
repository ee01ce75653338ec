package tabular

import (
	"bytes"
	"encoding/json"
	"errors"

	"gopherai-insight/internal/model"
)

var errJSONShape = errors.New("expected a JSON object or array")

func parseJSON(content []byte) (Preview, error) {
	trimmed := bytes.TrimSpace(content)
	if !json.Valid(trimmed) {
		return Preview{}, &ParseError{MediaType: MediaTypeJSON, Err: errors.New("invalid JSON document")}
	}

	switch trimmed[0] {
	case '[':
		var elements []json.RawMessage
		if err := json.Unmarshal(trimmed, &elements); err != nil {
			return Preview{}, &ParseError{MediaType: MediaTypeJSON, Err: err}
		}
		preview := Preview{
			Columns:    []string{},
			SampleRows: []*model.Row{},
			RowCount:   len(elements),
		}
		for i, raw := range elements {
			if i == MaxSampleRows {
				break
			}
			row, err := decodeRow(raw)
			if err != nil {
				return Preview{}, &ParseError{MediaType: MediaTypeJSON, Err: err}
			}
			if i == 0 {
				preview.Columns = model.RowKeys(row)
			}
			preview.SampleRows = append(preview.SampleRows, row)
		}
		return preview, nil
	case '{':
		row, err := decodeRow(trimmed)
		if err != nil {
			return Preview{}, &ParseError{MediaType: MediaTypeJSON, Err: err}
		}
		return Preview{
			Columns:    model.RowKeys(row),
			SampleRows: []*model.Row{row},
			RowCount:   1,
		}, nil
	default:
		return Preview{}, &ParseError{MediaType: MediaTypeJSON, Err: errJSONShape}
	}
}

// decodeRow keeps object keys in document order. Elements that are not
// objects have no columns and become empty rows.
func decodeRow(raw json.RawMessage) (*model.Row, error) {
	row := model.NewRow()
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '{' {
		return row, nil
	}
	if err := json.Unmarshal(raw, row); err != nil {
		return nil, err
	}
	return row, nil
}
