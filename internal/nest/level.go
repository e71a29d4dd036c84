package nest

import (
	"fmt"
	"iter"
	"reflect"
	"sort"
)

// ValuesFunc produces a level's items from the namespace accumulated by
// the levels before it. It is called once per visit of the level.
type ValuesFunc func(ns *Namespace) ([]any, error)

// LabelFunc turns a level value into its path segment.
type LabelFunc func(value any, ns *Namespace) (string, error)

// Level is one registered dimension of the combination space.
type Level struct {
	Name string
	// Values is an owned copy of the items, walked once per visit.
	Values []any
	// Func, when set, replaces Values.
	Func ValuesFunc

	CreateDir    bool
	Update       bool
	TemplateSubs bool
	Label        LabelFunc
}

// LevelOption configures a level at registration.
type LevelOption func(*Level)

// NoDir keeps the level out of the output path; it only feeds the namespace.
func NoDir() LevelOption {
	return func(l *Level) { l.CreateDir = false }
}

// Update merges each item, which must be a mapping, into the namespace.
func Update() LevelOption {
	return func(l *Level) { l.Update = true }
}

// TemplateSubs renders each item as a {key} template before use.
func TemplateSubs() LevelOption {
	return func(l *Level) { l.TemplateSubs = true }
}

// WithLabel sets the path segment formatter.
func WithLabel(fn LabelFunc) LevelOption {
	return func(l *Level) { l.Label = fn }
}

func (l *Level) items(ns *Namespace) ([]any, error) {
	if l.Func == nil {
		return l.Values, nil
	}
	items, err := l.Func(ns.Clone())
	if err != nil {
		return nil, fmt.Errorf("values func: %w", err)
	}
	return items, nil
}

func (l *Level) label(value any, ns *Namespace) (string, error) {
	if l.Label == nil {
		return fmt.Sprint(value), nil
	}
	return l.Label(value, ns)
}

// materialize copies values into an owned slice so the level can be walked
// any number of times. isString reports a bare string, which iterates
// as characters.
func materialize(values any) (items []any, fn ValuesFunc, isString bool, err error) {
	switch v := values.(type) {
	case nil:
		return nil, nil, false, fmt.Errorf("%w: nil", ErrNotIterable)
	case ValuesFunc:
		return nil, v, false, nil
	case func(*Namespace) ([]any, error):
		return nil, v, false, nil
	case string:
		for _, r := range v {
			items = append(items, string(r))
		}
		return items, nil, true, nil
	case []any:
		return append([]any(nil), v...), nil, false, nil
	case iter.Seq[any]:
		for item := range v {
			items = append(items, item)
		}
		return items, nil, false, nil
	}

	rv := reflect.ValueOf(values)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		items = make([]any, rv.Len())
		for i := range items {
			items[i] = rv.Index(i).Interface()
		}
		return items, nil, false, nil
	default:
		return nil, nil, false, fmt.Errorf("%w: %T", ErrNotIterable, values)
	}
}

type pair struct {
	key   string
	value any
}

// mappingPairs flattens an update item into key/value pairs. Plain Go maps
// have no order, so their keys are sorted.
func mappingPairs(value any) ([]pair, error) {
	switch m := value.(type) {
	case *Namespace:
		pairs := make([]pair, 0, m.Len())
		m.Range(func(k string, v any) bool {
			pairs = append(pairs, pair{k, v})
			return true
		})
		return pairs, nil
	case map[string]any:
		pairs := make([]pair, 0, len(m))
		for k, v := range m {
			pairs = append(pairs, pair{k, v})
		}
		sort.Slice(pairs, func(i, j int) bool { return pairs[i].key < pairs[j].key })
		return pairs, nil
	}

	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
		return nil, fmt.Errorf("%w: %T", ErrNotMapping, value)
	}
	pairs := make([]pair, 0, rv.Len())
	it := rv.MapRange()
	for it.Next() {
		pairs = append(pairs, pair{it.Key().String(), it.Value().Interface()})
	}
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].key < pairs[j].key })
	return pairs, nil
}
