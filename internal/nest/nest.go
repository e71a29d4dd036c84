// Package nest expands an ordered sequence of named parameter sets into
// the nested combination space of a parameter sweep.
//
// Levels are appended with Add; the first level added is the outermost
// loop. Iter walks the space lazily and yields one Combination per leaf:
// the path built from every directory-creating level and the namespace
// of values accumulated on the way down.
package nest

import (
	"errors"
	"slices"
	"sort"

	"go.uber.org/zap"
)

// OutdirKey is the namespace key holding a combination's path when
// WithIncludeOutdir is enabled.
const OutdirKey = "OUTDIR"

// Nest is the append-only sequence of levels.
type Nest struct {
	levels []Level

	failOnClash   bool
	warnOnClash   bool
	includeOutdir bool
	base          map[string]any
	logger        *zap.Logger
}

// Option configures a Nest.
type Option func(*Nest)

// WithFailOnClash makes iteration fail with ErrKeyClash whenever a level
// would overwrite a key already in the namespace.
func WithFailOnClash(fail bool) Option {
	return func(n *Nest) { n.failOnClash = fail }
}

// WithWarnOnClash logs a warning for every permitted overwrite.
func WithWarnOnClash(warn bool) Option {
	return func(n *Nest) { n.warnOnClash = warn }
}

// WithIncludeOutdir adds OutdirKey to every leaf namespace.
func WithIncludeOutdir(include bool) Option {
	return func(n *Nest) { n.includeOutdir = include }
}

// WithBase seeds every namespace with the given entries, in key order.
func WithBase(base map[string]any) Option {
	return func(n *Nest) {
		n.base = make(map[string]any, len(base))
		for k, v := range base {
			n.base[k] = v
		}
	}
}

// WithLogger sets the diagnostics logger.
func WithLogger(logger *zap.Logger) Option {
	return func(n *Nest) {
		if logger != nil {
			n.logger = logger
		}
	}
}

// New returns an empty Nest. Clashes are permitted and warned about
// unless configured otherwise.
func New(opts ...Option) *Nest {
	n := &Nest{
		warnOnClash: true,
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Add appends a level. values may be any slice or array, an iter.Seq[any]
// (drained immediately), or a ValuesFunc. A bare string is accepted but
// iterates as single characters, which is almost never intended, so it
// is logged as a warning.
//
// Names are not checked for duplicates here; clashes surface during
// iteration.
func (n *Nest) Add(name string, values any, opts ...LevelOption) error {
	if name == "" {
		return errors.New("level name is empty")
	}
	items, fn, isString, err := materialize(values)
	if err != nil {
		return &LevelError{Level: name, Index: -1, Err: err}
	}
	if isString {
		n.logger.Warn("values is a string; iterating characters",
			zap.String("level", name),
			zap.String("values", values.(string)))
	}

	l := Level{
		Name:      name,
		Values:    items,
		Func:      fn,
		CreateDir: true,
	}
	for _, opt := range opts {
		opt(&l)
	}
	n.levels = append(n.levels, l)
	return nil
}

// Len returns the number of registered levels.
func (n *Nest) Len() int {
	return len(n.levels)
}

// Levels returns a copy of the registered levels. Changing the returned
// values does not affect the Nest.
func (n *Nest) Levels() []Level {
	out := make([]Level, len(n.levels))
	for i, l := range n.levels {
		l.Values = slices.Clone(l.Values)
		out[i] = l
	}
	return out
}

func (n *Nest) baseNamespace() *Namespace {
	ns := NewNamespace()
	keys := make([]string, 0, len(n.base))
	for k := range n.base {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		ns.Set(k, n.base[k])
	}
	return ns
}
