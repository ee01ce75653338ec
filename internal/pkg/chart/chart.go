// Package chart projects dataset sample rows onto (name, value) points for
// bar, line and pie charts.
package chart

import (
	"encoding/json"
	"errors"
	"math"
	"regexp"
	"strconv"
	"strings"

	"gopherai-insight/internal/model"
)

// UnknownName labels points whose x cell is missing or blank.
const UnknownName = "Unknown"

type Type string

const (
	TypeBar  Type = "bar"
	TypeLine Type = "line"
	TypePie  Type = "pie"
)

var ErrUnknownType = errors.New("unknown chart type")

// ParseType defaults to a bar chart.
func ParseType(raw string) (Type, error) {
	switch t := Type(strings.ToLower(strings.TrimSpace(raw))); t {
	case "":
		return TypeBar, nil
	case TypeBar, TypeLine, TypePie:
		return t, nil
	default:
		return "", ErrUnknownType
	}
}

type Point struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

// Map returns exactly one point per row. Unparsable y cells become 0, so a
// zero point does not tell a real zero from missing data.
func Map(rows []*model.Row, xKey, yKey string) []Point {
	points := make([]Point, 0, len(rows))
	for _, row := range rows {
		var x, y any
		if row != nil {
			x, _ = row.Get(xKey)
			y, _ = row.Get(yKey)
		}
		points = append(points, Point{
			Name:  nameOf(x),
			Value: valueOf(y),
		})
	}
	return points
}

func nameOf(cell any) string {
	switch v := cell.(type) {
	case nil:
		return UnknownName
	case string:
		if v == "" {
			return UnknownName
		}
		return v
	case bool:
		if !v {
			return UnknownName
		}
		return "true"
	case float64:
		if v == 0 || math.IsNaN(v) {
			return UnknownName
		}
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		encoded, err := json.Marshal(v)
		if err != nil {
			return UnknownName
		}
		return string(encoded)
	}
}

var leadingNumber = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?`)

func valueOf(cell any) float64 {
	switch v := cell.(type) {
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0
		}
		return v
	case bool:
		return 0
	case string:
		return parseLeadingFloat(v)
	default:
		return 0
	}
}

// parseLeadingFloat reads the longest numeric prefix, so "42 kg" is 42.
func parseLeadingFloat(s string) float64 {
	match := leadingNumber.FindString(strings.TrimSpace(s))
	if match == "" {
		return 0
	}
	f, err := strconv.ParseFloat(match, 64)
	if err != nil || math.IsInf(f, 0) {
		return 0
	}
	return f
}
