// Package pipeline connects item resolution, line synthesis and secret
// reads into the two flows the CLI needs: lines for a dotenv file and
// values for a child environment.
package pipeline

import (
	"context"
	"fmt"

	"github.com/systmms/opz/internal/dotenv"
	"github.com/systmms/opz/internal/envlines"
	"github.com/systmms/opz/internal/logging"
	"github.com/systmms/opz/internal/resolve"
	"github.com/systmms/opz/internal/secure"
)

// Reader dereferences a secret reference.
type Reader interface {
	Read(ctx context.Context, reference string) (string, error)
}

// Pipeline holds the collaborators of a single opz invocation.
type Pipeline struct {
	Resolver *resolve.Resolver
	Backend  Reader
	Logger   *logging.Logger
	// Scheme of generated references; envlines.DefaultScheme when empty.
	Scheme string
}

// Lines resolves every title in order and merges their lines. With values
// set the lines carry quoted field values instead of references.
func (p *Pipeline) Lines(ctx context.Context, vault string, titles []string, values bool) ([]dotenv.Line, error) {
	sections := make([]envlines.Section, 0, len(titles))
	for _, title := range titles {
		res, err := p.Resolver.Resolve(ctx, vault, title)
		if err != nil {
			return nil, err
		}

		warn := func(label string) {
			p.Logger.Warn("Skipping field %q of %q: not a valid environment variable name", label, res.Title)
		}
		var lines []dotenv.Line
		if values {
			lines = envlines.FromItemValues(res.Detail, warn)
		} else {
			lines = envlines.FromItem(res.Detail, res.VaultID, res.ItemID, p.scheme(), warn)
		}
		p.Logger.Debug("Item %q contributed %d variables", res.Title, len(lines))
		sections = append(sections, envlines.Section{Title: res.Title, Lines: lines})
	}

	return envlines.Merge(sections, func(key, from, to string) {
		p.Logger.Debug("%s from %q overridden by %q", key, from, to)
	}), nil
}

// Values turns lines into literal secret values. Reference lines are read
// from the backend one by one; any other value is taken as a dotenv value.
// On failure everything collected so far is destroyed.
func (p *Pipeline) Values(ctx context.Context, lines []dotenv.Line) (*secure.EnvMap, error) {
	env := secure.NewEnvMap()
	for _, l := range lines {
		if !envlines.IsReference(l.Value, p.scheme()) {
			env.Set(l.Key, decodeValue(l.Value))
			continue
		}

		p.Logger.Debug("Reading %s", l.Value)
		value, err := p.Backend.Read(ctx, l.Value)
		if err != nil {
			env.Destroy()
			return nil, fmt.Errorf("read %s: %w", l.Key, err)
		}
		env.Set(l.Key, value)
	}
	return env, nil
}

func (p *Pipeline) scheme() string {
	if p.Scheme == "" {
		return envlines.DefaultScheme
	}
	return p.Scheme
}

// decodeValue strips one pair of matching outer quotes; double-quoted
// values also have their escapes undone.
func decodeValue(v string) string {
	if len(v) < 2 {
		return v
	}
	switch {
	case v[0] == '"' && v[len(v)-1] == '"':
		return dotenv.Unquote(v[1 : len(v)-1])
	case v[0] == '\'' && v[len(v)-1] == '\'':
		return v[1 : len(v)-1]
	}
	return v
}
