package config

import (
	"errors"
	"fmt"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
	"go.uber.org/zap"

	"github.com/agentic-research/nestly/api"
	"github.com/agentic-research/nestly/internal/nest"
)

// sweepDelim keeps dotted keys in base mappings intact.
const sweepDelim = "::"

// LoadSweep reads a sweep file. YAML and JSON are both accepted.
func LoadSweep(path string) (*api.Sweep, error) {
	content, err := readLimited(path)
	if err != nil {
		return nil, err
	}
	return ParseSweep(content)
}

// ParseSweep decodes a sweep from YAML or JSON bytes.
func ParseSweep(content []byte) (*api.Sweep, error) {
	k := koanf.New(sweepDelim)
	if err := k.Load(rawbytes.Provider(content), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("failed to parse sweep: %w", err)
	}
	var s api.Sweep
	if err := k.Unmarshal("", &s); err != nil {
		return nil, fmt.Errorf("failed to unmarshal sweep: %w", err)
	}
	if len(s.Levels) == 0 {
		return nil, errors.New("sweep has no levels")
	}
	return &s, nil
}

// NewNest registers every level of s on a new Nest.
func NewNest(s *api.Sweep, logger *zap.Logger) (*nest.Nest, error) {
	opts := []nest.Option{
		nest.WithFailOnClash(s.FailOnClash),
		nest.WithIncludeOutdir(s.IncludeOutdir),
		nest.WithLogger(logger),
	}
	if s.WarnOnClash != nil {
		opts = append(opts, nest.WithWarnOnClash(*s.WarnOnClash))
	}
	if len(s.Base) > 0 {
		opts = append(opts, nest.WithBase(s.Base))
	}
	n := nest.New(opts...)

	for i, l := range s.Levels {
		var lopts []nest.LevelOption
		if l.CreateDir != nil && !*l.CreateDir {
			lopts = append(lopts, nest.NoDir())
		}
		if l.Update {
			lopts = append(lopts, nest.Update())
		}
		if l.Template {
			lopts = append(lopts, nest.TemplateSubs())
		}
		if l.Label != "" {
			label, err := nest.TextLabel(l.Label)
			if err != nil {
				return nil, fmt.Errorf("level %d (%s): %w", i, l.Name, err)
			}
			lopts = append(lopts, nest.WithLabel(label))
		}
		if l.Values == nil {
			return nil, fmt.Errorf("level %d (%s): values missing", i, l.Name)
		}
		if err := n.Add(l.Name, l.Values, lopts...); err != nil {
			return nil, fmt.Errorf("level %d: %w", i, err)
		}
	}
	return n, nil
}
