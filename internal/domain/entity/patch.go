package entity

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"inkhub/internal/core/types"
)

// Row is the wire representation of a record: db column name to value.
// Partial updates, change-notification payloads, and policy evaluation all
// operate on rows.
type Row = map[string]any

// fieldInfo contains pre-computed metadata about a struct field.
type fieldInfo struct {
	index   int
	dbTag   string
	jsonTag string
}

// typeMetadata contains cached reflection metadata for a type.
type typeMetadata struct {
	fields          []fieldInfo
	embeddedIndices []int
}

// Global cache for type metadata (thread-safe).
var typeCache sync.Map // map[reflect.Type]*typeMetadata

func getOrCreateTypeMetadata(t reflect.Type) *typeMetadata {
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	if cached, ok := typeCache.Load(t); ok {
		return cached.(*typeMetadata)
	}

	meta := &typeMetadata{}
	if t.Kind() != reflect.Struct {
		typeCache.Store(t, meta)
		return meta
	}

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if field.Anonymous {
			meta.embeddedIndices = append(meta.embeddedIndices, i)
			continue
		}
		tag := field.Tag.Get("db")
		if tag == "" || tag == "-" {
			continue
		}
		jsonTag, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		meta.fields = append(meta.fields, fieldInfo{index: i, dbTag: tag, jsonTag: jsonTag})
	}

	typeCache.Store(t, meta)
	return meta
}

// RowOf converts a record to a Row using "db" tags. Only fields with a
// "db" tag are included; embedded structs are flattened.
func RowOf(v any) Row {
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Ptr {
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil
	}

	meta := getOrCreateTypeMetadata(rv.Type())
	res := make(Row, len(meta.fields))

	for _, fi := range meta.fields {
		res[fi.dbTag] = rv.Field(fi.index).Interface()
	}
	for _, embIdx := range meta.embeddedIndices {
		for k, v := range RowOf(rv.Field(embIdx).Interface()) {
			res[k] = v
		}
	}

	return res
}

// Columns returns the db column names of T, in declaration order.
func Columns[T any]() []string {
	var zero T
	meta := getOrCreateTypeMetadata(reflect.TypeOf(zero))
	cols := make([]string, 0, len(meta.fields))
	for _, fi := range meta.fields {
		cols = append(cols, fi.dbTag)
	}
	return cols
}

// SameKey reports whether two key values identify the same record. Numeric
// keys that crossed a JSON boundary arrive as float64, and unix-millisecond
// ids are large enough that their printed form goes scientific, so numeric
// values are compared as integers before falling back to printed form.
func SameKey(a, b any) bool {
	if a == b {
		return true
	}
	ai, aok := coerceInt(a)
	bi, bok := coerceInt(b)
	if aok && bok {
		return ai == bi
	}
	return fmt.Sprintf("%v", a) == fmt.Sprintf("%v", b)
}

// NormalizeRow rewrites row keys given as JSON field names into the db
// column names of T. Keys that already name a column pass through; keys
// matching neither are kept as is and left for ApplyPatch to skip.
func NormalizeRow[T any](row Row) Row {
	var zero T
	meta := getOrCreateTypeMetadata(reflect.TypeOf(zero))

	jsonToDB := make(map[string]string, len(meta.fields))
	for _, fi := range meta.fields {
		if fi.jsonTag != "" && fi.jsonTag != fi.dbTag {
			jsonToDB[fi.jsonTag] = fi.dbTag
		}
	}

	res := make(Row, len(row))
	for k, v := range row {
		if col, ok := jsonToDB[k]; ok {
			if _, taken := row[col]; !taken {
				res[col] = v
				continue
			}
		}
		res[k] = v
	}
	return res
}

// ApplyPatch merges a partial row into an existing record, matching keys
// against "db" tags. Values arriving from JSON payloads (float64 numbers,
// RFC 3339 strings) are coerced to the field's type; keys that do not match
// any field, and values that cannot be coerced, are skipped. Mirrors the
// source system's object-spread update semantics, but typed.
func ApplyPatch(dst any, patch Row) {
	rv := reflect.ValueOf(dst)
	if rv.Kind() != reflect.Ptr || rv.IsNil() {
		return
	}
	rv = rv.Elem()
	if rv.Kind() != reflect.Struct {
		return
	}

	meta := getOrCreateTypeMetadata(rv.Type())
	for _, fi := range meta.fields {
		val, ok := patch[fi.dbTag]
		if !ok {
			continue
		}
		setField(rv.Field(fi.index), val)
	}
	for _, embIdx := range meta.embeddedIndices {
		ApplyPatch(rv.Field(embIdx).Addr().Interface(), patch)
	}
}

// FromRow builds a fresh record of type T from a full row.
func FromRow[T any](row Row) T {
	var rec T
	ApplyPatch(&rec, row)
	return rec
}

var (
	decimalType = reflect.TypeOf(decimal.Decimal{})
	timeType    = reflect.TypeOf(time.Time{})
)

func setField(field reflect.Value, val any) {
	if !field.CanSet() {
		return
	}

	// nil resets the field (pointer fields go back to nil).
	if val == nil {
		field.Set(reflect.Zero(field.Type()))
		return
	}

	switch field.Type() {
	case decimalType:
		field.Set(reflect.ValueOf(types.CoerceMoney(val)))
		return
	case timeType:
		if t, ok := coerceTime(val); ok {
			field.Set(reflect.ValueOf(t))
		}
		return
	}

	switch field.Kind() {
	case reflect.Ptr:
		elem := reflect.New(field.Type().Elem())
		setField(elem.Elem(), val)
		field.Set(elem)
	case reflect.String:
		if s, ok := val.(string); ok {
			field.SetString(s)
		}
	case reflect.Bool:
		if b, ok := val.(bool); ok {
			field.SetBool(b)
		}
	case reflect.Int, reflect.Int32, reflect.Int64:
		if n, ok := coerceInt(val); ok {
			field.SetInt(n)
		}
	case reflect.Float32, reflect.Float64:
		field.SetFloat(types.CoerceFloat(val))
	}
}

func coerceInt(val any) (int64, bool) {
	switch x := val.(type) {
	case int64:
		return x, true
	case int:
		return int64(x), true
	case int32:
		return int64(x), true
	case float64:
		return int64(x), true
	case json.Number:
		n, err := x.Int64()
		if err != nil {
			f, ferr := x.Float64()
			if ferr != nil {
				return 0, false
			}
			return int64(f), true
		}
		return n, true
	case string:
		n, err := strconv.ParseInt(x, 10, 64)
		if err != nil {
			return 0, false
		}
		return n, true
	case decimal.Decimal:
		return x.IntPart(), true
	default:
		return 0, false
	}
}

func coerceTime(val any) (time.Time, bool) {
	switch x := val.(type) {
	case time.Time:
		return x, true
	case string:
		if t, err := time.Parse(time.RFC3339, x); err == nil {
			return t, true
		}
		if t, err := time.Parse(types.DateLayout, x); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
