package schema

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/oakwood-commons/kvfilter/pkg/typeinfo"
)

// ErrNotRecords is returned when data is not an object or a list of objects.
var ErrNotRecords = errors.New("data is not a collection of objects")

// Dataset is a list of untyped records together with their materialized
// typed values. Items[i] is the typed view of Sources[i].
type Dataset struct {
	Type    reflect.Type
	Items   []any
	Sources []any
}

// Records extracts the records of data: a list of objects, or a single
// object treated as a list of one.
func Records(data any) ([]map[string]any, []any, error) {
	if m, ok := toStringKeyMap(data); ok {
		return []map[string]any{m}, []any{data}, nil
	}
	rv := reflect.ValueOf(data)
	if !rv.IsValid() || (rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array) {
		return nil, nil, fmt.Errorf("%T: %w", data, ErrNotRecords)
	}
	records := make([]map[string]any, 0, rv.Len())
	sources := make([]any, 0, rv.Len())
	for i := range rv.Len() {
		item := rv.Index(i).Interface()
		m, ok := toStringKeyMap(item)
		if !ok {
			return nil, nil, fmt.Errorf("item %d is %T: %w", i, item, ErrNotRecords)
		}
		records = append(records, m)
		sources = append(sources, item)
	}
	return records, sources, nil
}

// Build infers a type for data and materializes every record.
func Build(data any, hint *Hint) (*Dataset, error) {
	records, sources, err := Records(data)
	if err != nil {
		return nil, err
	}
	t := Infer(records, hint)
	ds := &Dataset{Type: t, Items: make([]any, 0, len(records)), Sources: sources}
	for i, r := range records {
		v, err := Materialize(t, r)
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
		ds.Items = append(ds.Items, v.Interface())
	}
	return ds, nil
}

// Root returns the descriptor expressions over the dataset compile against.
func (ds *Dataset) Root(opts ...typeinfo.Option) typeinfo.Descriptor {
	return typeinfo.Descriptor{Type: ds.Type, Inspector: typeinfo.NewReflectInspector(opts...)}
}

// Len returns the number of records.
func (ds *Dataset) Len() int { return len(ds.Items) }

// Indices returns the positions of the items match accepts.
func (ds *Dataset) Indices(match func(any) bool) []int {
	var out []int
	for i, it := range ds.Items {
		if match(it) {
			out = append(out, i)
		}
	}
	return out
}

// Select returns the original records whose typed values match accepts.
func (ds *Dataset) Select(match func(any) bool) []any {
	out := make([]any, 0, len(ds.Items))
	for _, i := range ds.Indices(match) {
		out = append(out, ds.Sources[i])
	}
	return out
}
