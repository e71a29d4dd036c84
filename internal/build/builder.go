// Package build materializes a nest as a directory tree with one control
// record per combination.
package build

import (
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"strings"

	billy "github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
	"go.uber.org/zap"

	"github.com/agentic-research/nestly/internal/nest"
)

// DefaultControlName is the file written into every combination directory.
const DefaultControlName = "control.json"

// ErrDuplicatePath means two combinations resolved to the same directory.
var ErrDuplicatePath = errors.New("duplicate combination path")

// Recorder receives every combination after its directory is written.
type Recorder interface {
	Record(seq int, c nest.Combination) error
}

// Builder writes a nest's combinations to a filesystem.
type Builder struct {
	nest        *nest.Nest
	fs          billy.Filesystem
	controlName string
	indent      int
	recorder    Recorder
	logger      *zap.Logger
}

// Option configures a Builder.
type Option func(*Builder)

// WithControlName sets the control file name.
func WithControlName(name string) Option {
	return func(b *Builder) { b.controlName = name }
}

// WithIndent sets the JSON indent width; 0 writes compact JSON.
func WithIndent(n int) Option {
	return func(b *Builder) { b.indent = n }
}

// WithRecorder sets a Recorder that sees every written combination.
func WithRecorder(r Recorder) Option {
	return func(b *Builder) { b.recorder = r }
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(b *Builder) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// New returns a Builder writing n to fsys.
func New(n *nest.Nest, fsys billy.Filesystem, opts ...Option) *Builder {
	b := &Builder{
		nest:        n,
		fs:          fsys,
		controlName: DefaultControlName,
		indent:      2,
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Result summarizes a build.
type Result struct {
	Combinations int
	Paths        []string
}

// Build creates root/<path> for every combination, in iteration order, and
// writes the combination's namespace into it as JSON. Existing directories
// are reused. A combination whose directory was already produced by an
// earlier combination of the same build fails with ErrDuplicatePath
// before anything is overwritten.
//
// On error, the returned Result describes what was written so far.
func (b *Builder) Build(root string) (*Result, error) {
	res := &Result{}
	seen := make(map[string]struct{})

	b.logger.Info("building combination tree", zap.String("root", root))
	for c, err := range b.nest.Iter(root) {
		if err != nil {
			return res, fmt.Errorf("expand nest: %w", err)
		}

		key := path.Clean(c.Path)
		if _, dup := seen[key]; dup {
			return res, fmt.Errorf("%w: %s", ErrDuplicatePath, c.Path)
		}
		seen[key] = struct{}{}

		if err := b.write(c); err != nil {
			return res, err
		}
		if b.recorder != nil {
			if err := b.recorder.Record(res.Combinations, c); err != nil {
				return res, fmt.Errorf("record %s: %w", c.Path, err)
			}
		}
		res.Combinations++
		res.Paths = append(res.Paths, c.Path)
	}
	b.logger.Info("built combination tree",
		zap.String("root", root),
		zap.Int("combinations", res.Combinations))
	return res, nil
}

func (b *Builder) write(c nest.Combination) error {
	if c.Path != "" {
		if err := b.fs.MkdirAll(c.Path, 0o755); err != nil {
			return fmt.Errorf("mkdir %s: %w", c.Path, err)
		}
	}

	data, err := Marshal(c.Namespace, b.indent)
	if err != nil {
		return fmt.Errorf("encode %s: %w", c.Path, err)
	}

	name := b.fs.Join(c.Path, b.controlName)
	if err := util.WriteFile(b.fs, name, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	b.logger.Debug("wrote control", zap.String("path", name))
	return nil
}

// Marshal encodes a namespace the way it is written to control files,
// with a trailing newline.
func Marshal(ns *nest.Namespace, indent int) ([]byte, error) {
	var (
		data []byte
		err  error
	)
	if indent > 0 {
		data, err = json.MarshalIndent(ns, "", strings.Repeat(" ", indent))
	} else {
		data, err = json.Marshal(ns)
	}
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}
