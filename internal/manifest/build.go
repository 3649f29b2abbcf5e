package manifest

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pictomat/pictomat/internal/canvas"
	"github.com/pictomat/pictomat/internal/rule"
)

// Rejected records a rule image pair that failed compilation. A malformed
// rule is fatal to that rule only; the rest of the program still runs.
type Rejected struct {
	Name string
	Err  error
}

// Build loads the manifest's world image and compiles its rules, resolving
// paths relative to dir. Rules that fail with MalformedRuleError land in
// the rejected list; any other failure aborts.
func (m *Manifest) Build(dir string, cache *rule.Cache) (*canvas.Pixmap, []*rule.Rule, []Rejected, error) {
	world, err := loadImage(filepath.Join(dir, m.World))
	if err != nil {
		return nil, nil, nil, fmt.Errorf("world image: %w", err)
	}

	var rules []*rule.Rule
	var rejected []Rejected
	for _, ref := range m.Rules {
		before, err := loadImage(filepath.Join(dir, ref.Before))
		if err != nil {
			return nil, nil, nil, fmt.Errorf("rule %q before image: %w", ref.Name, err)
		}
		after, err := loadImage(filepath.Join(dir, ref.After))
		if err != nil {
			return nil, nil, nil, fmt.Errorf("rule %q after image: %w", ref.Name, err)
		}

		r, err := cache.Compile(ref.Name, before, after)
		if err != nil {
			if rule.IsMalformedRule(err) {
				rejected = append(rejected, Rejected{Name: ref.Name, Err: err})
				continue
			}
			return nil, nil, nil, err
		}
		rules = append(rules, r)
	}
	return world, rules, rejected, nil
}

// loadImage reads a pixmap from disk. PNG is the production format; .txt
// files hold ASCII art in the default palette, which keeps fixtures and
// small programs reviewable in a diff.
func loadImage(path string) (*canvas.Pixmap, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return canvas.DecodePNG(f)
	case ".txt":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		return canvas.Parse(nil, string(data))
	default:
		return nil, fmt.Errorf("unsupported image format %q", filepath.Ext(path))
	}
}
