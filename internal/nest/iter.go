package nest

import (
	"fmt"
	"iter"
	"strings"

	"go.uber.org/zap"
)

// Combination is one leaf of the expansion.
type Combination struct {
	Path      string
	Namespace *Namespace
}

// Iter returns the combinations in nested-loop order: the first level
// added varies slowest. Every call re-walks the levels from scratch, so
// the sequence can be ranged over any number of times.
//
// A non-empty prefix is joined in front of every path with "/".
//
// Failures are yielded with a zero Combination at the point the offending
// combination would have been produced, after which the walk stops.
func (n *Nest) Iter(prefix string) iter.Seq2[Combination, error] {
	levels := n.levels[:len(n.levels):len(n.levels)]
	return func(yield func(Combination, error) bool) {
		w := &walker{nest: n, levels: levels, prefix: prefix, yield: yield}
		w.descend(0, n.baseNamespace(), nil)
	}
}

// Combinations collects Iter into a slice, stopping at the first error.
func (n *Nest) Combinations(prefix string) ([]Combination, error) {
	var out []Combination
	for c, err := range n.Iter(prefix) {
		if err != nil {
			return out, err
		}
		out = append(out, c)
	}
	return out, nil
}

// Count walks the space and returns the number of combinations.
func (n *Nest) Count() (int, error) {
	count := 0
	for _, err := range n.Iter("") {
		if err != nil {
			return count, err
		}
		count++
	}
	return count, nil
}

type walker struct {
	nest   *Nest
	levels []Level
	prefix string
	yield  func(Combination, error) bool
}

// descend expands levels[depth:] below ns. It reports false once the
// consumer stopped or an error was yielded.
func (w *walker) descend(depth int, ns *Namespace, segments []string) bool {
	if depth == len(w.levels) {
		c, err := w.leaf(ns, segments)
		if err != nil {
			w.yield(Combination{}, err)
			return false
		}
		return w.yield(c, nil)
	}

	lvl := &w.levels[depth]
	items, err := lvl.items(ns)
	if err != nil {
		w.yield(Combination{}, &LevelError{Level: lvl.Name, Index: -1, Err: err})
		return false
	}

	for i, item := range items {
		next, segment, err := w.nest.expand(lvl, item, ns)
		if err != nil {
			w.yield(Combination{}, &LevelError{Level: lvl.Name, Index: i, Err: err})
			return false
		}
		path := segments
		if lvl.CreateDir {
			path = append(segments[:len(segments):len(segments)], segment)
		}
		if !w.descend(depth+1, next, path) {
			return false
		}
	}
	return true
}

func (w *walker) leaf(ns *Namespace, segments []string) (Combination, error) {
	p := strings.Join(segments, "/")
	switch {
	case w.prefix == "":
	case p == "":
		p = w.prefix
	default:
		p = w.prefix + "/" + p
	}
	if w.nest.includeOutdir {
		if err := w.nest.put(ns, "", OutdirKey, p); err != nil {
			return Combination{}, fmt.Errorf("%s at %q: %w", OutdirKey, p, err)
		}
	}
	return Combination{Path: p, Namespace: ns}, nil
}

// expand applies one item of lvl to a copy of ns and returns the extended
// namespace with the item's path segment.
func (n *Nest) expand(lvl *Level, item any, ns *Namespace) (*Namespace, string, error) {
	value := item
	if lvl.TemplateSubs {
		s, ok := item.(string)
		if !ok {
			return nil, "", fmt.Errorf("%w: item %v is %T, not a string", ErrTemplate, item, item)
		}
		rendered, err := Render(s, ns)
		if err != nil {
			return nil, "", err
		}
		value = rendered
	}

	next := ns.Clone()
	labelled := value
	if lvl.Update {
		pairs, err := mappingPairs(value)
		if err != nil {
			return nil, "", err
		}
		found := false
		for _, p := range pairs {
			if p.key == lvl.Name {
				found = true
				labelled = p.value
				break
			}
		}
		if !found {
			return nil, "", fmt.Errorf("%w: update item has no %q entry", ErrMissingKey, lvl.Name)
		}
		for _, p := range pairs {
			if err := n.put(next, lvl.Name, p.key, p.value); err != nil {
				return nil, "", err
			}
		}
	} else if err := n.put(next, lvl.Name, lvl.Name, value); err != nil {
		return nil, "", err
	}

	if !lvl.CreateDir {
		return next, "", nil
	}
	segment, err := lvl.label(labelled, next)
	if err != nil {
		return nil, "", fmt.Errorf("label: %w", err)
	}
	return next, segment, nil
}

func (n *Nest) put(ns *Namespace, level, key string, value any) error {
	if origin, exists := ns.Origin(key); exists {
		if n.failOnClash {
			return fmt.Errorf("%w: %q already set by %s", ErrKeyClash, key, describeOrigin(origin))
		}
		if n.warnOnClash {
			n.logger.Warn("namespace key overwritten",
				zap.String("key", key),
				zap.String("level", level),
				zap.String("previous", describeOrigin(origin)))
		}
	}
	ns.set(key, value, level)
	return nil
}

func describeOrigin(origin string) string {
	if origin == "" {
		return "the base namespace"
	}
	return fmt.Sprintf("level %q", origin)
}
