package model

import (
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Row is one sample record of a dataset. Keys keep the order in which they
// were read from the source file, so JSON renderings follow the header.
type Row = orderedmap.OrderedMap[string, any]

func NewRow() *Row {
	return orderedmap.New[string, any]()
}

// RowKeys returns the keys of r in insertion order.
func RowKeys(r *Row) []string {
	if r == nil {
		return nil
	}
	keys := make([]string, 0, r.Len())
	for pair := r.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}
	return keys
}
