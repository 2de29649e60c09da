package venue

import (
	"strconv"

	"github.com/vault-analytics/internal/logging"
)

// Document is a loosely-structured venue response. Every accessor is total:
// an absent or malformed field yields the zero value and a log entry, never
// an error. Accessors never mutate the document.
type Document map[string]interface{}

// Point is one entry of a time series: milliseconds since epoch and a value.
type Point struct {
	Time  int64
	Value float64
}

// Fill is one executed trade leg.
type Fill struct {
	Coin      string
	Dir       string
	Px        float64
	Sz        float64
	Time      int64
	ClosedPnl *float64
}

// Str returns the string under key, or "" when absent or not a string.
func (d Document) Str(key string) string {
	if s, ok := d[key].(string); ok {
		return s
	}
	return ""
}

// Float returns the numeric value under key via total coercion.
func (d Document) Float(key string) float64 {
	return toFloat(d[key])
}

// List returns the slice under key, or nil.
func (d Document) List(key string) []interface{} {
	if l, ok := d[key].([]interface{}); ok {
		return l
	}
	return nil
}

// Bucket returns the named portfolio period from the document's "portfolio"
// list of [name, data] pairs. A missing period is not an error: the empty
// Document is returned.
func (d Document) Bucket(period string) Document {
	for _, entry := range d.List("portfolio") {
		pair, ok := entry.([]interface{})
		if !ok || len(pair) < 2 {
			continue
		}
		name, ok := pair[0].(string)
		if !ok || name != period {
			continue
		}
		if data, ok := pair[1].(map[string]interface{}); ok {
			return Document(data)
		}
		return Document{}
	}
	return Document{}
}

// Series returns the named [timestamp, value] series from a bucket in input
// order. Timestamps are coerced to integer milliseconds, values through the
// total float coercion.
func (d Document) Series(field string) []Point {
	raw := d.List(field)
	if raw == nil {
		return nil
	}
	points := make([]Point, 0, len(raw))
	for _, entry := range raw {
		pair, ok := entry.([]interface{})
		if !ok || len(pair) < 2 {
			logging.GetGlobalLogger().Debugf("series %s: skipping malformed entry %v", field, entry)
			continue
		}
		points = append(points, Point{Time: toInt64(pair[0]), Value: toFloat(pair[1])})
	}
	return points
}

// ParseFills converts a raw userFills response body into fills. Entries that
// are not objects are skipped with a warning.
func ParseFills(items []interface{}) []Fill {
	fills := make([]Fill, 0, len(items))
	for _, item := range items {
		m, ok := item.(map[string]interface{})
		if !ok {
			logging.GetGlobalLogger().Warnf("skipping malformed fill entry: %v", item)
			continue
		}
		doc := Document(m)
		fill := Fill{
			Coin: doc.Str("coin"),
			Dir:  doc.Str("dir"),
			Px:   doc.Float("px"),
			Sz:   doc.Float("sz"),
			Time: toInt64(m["time"]),
		}
		if raw, ok := m["closedPnl"]; ok && raw != nil {
			pnl := toFloat(raw)
			fill.ClosedPnl = &pnl
		}
		fills = append(fills, fill)
	}
	return fills
}

// toFloat coerces an arbitrary JSON value to float64. Absent, empty, and
// non-numeric values become 0.0 and are logged; the coercion never fails.
func toFloat(value interface{}) float64 {
	switch v := value.(type) {
	case nil:
		return 0.0
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case string:
		if v == "" {
			logging.GetGlobalLogger().Debug("toFloat: empty string -> 0.0")
			return 0.0
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			logging.GetGlobalLogger().Warnf("toFloat: cannot cast string %q to float", v)
			return 0.0
		}
		return f
	default:
		logging.GetGlobalLogger().Warnf("toFloat: unexpected type %T: %v", value, value)
		return 0.0
	}
}

// toInt64 coerces an arbitrary JSON value to an integer timestamp.
func toInt64(value interface{}) int64 {
	switch v := value.(type) {
	case float64:
		return int64(v)
	case int:
		return int64(v)
	case int64:
		return v
	case string:
		i, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return int64(toFloat(v))
		}
		return i
	default:
		return 0
	}
}
