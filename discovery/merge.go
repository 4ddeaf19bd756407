// Package discovery - merge definition files and the frame catalog into one tree.
package discovery

import (
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/aallbrig/swarmui/catalog"
	"github.com/aallbrig/swarmui/models"
)

// DefaultCatalogBranch groups the built-in frame commands.
const DefaultCatalogBranch = "ROBOT"

// Options controls how the tree is assembled.
type Options struct {
	CatalogBranch string
	Catalog       []catalog.Descriptor
}

// DefaultOptions merges the full frame catalog under the ROBOT branch.
func DefaultOptions() Options {
	return Options{
		CatalogBranch: DefaultCatalogBranch,
		Catalog:       catalog.Frames,
	}
}

// Builder merges command sources into a single root.
type Builder struct {
	root *models.Node
	opts Options
}

// NewBuilder returns a builder with an empty root.
func NewBuilder(opts Options) *Builder {
	if opts.CatalogBranch == "" {
		opts.CatalogBranch = DefaultCatalogBranch
	}
	return &Builder{root: models.NewRoot(), opts: opts}
}

// Root returns the tree assembled so far.
func (b *Builder) Root() *models.Node { return b.root }

// AddDefinition threads def.Path into the tree, creating missing branches,
// then creates or overwrites the target leaf under the last branch.
// A keyword used as target or path segment aborts with a ReservedNameError
// before the tree is touched.
func (b *Builder) AddDefinition(def Definition) error {
	target := models.Normalize(def.Target)
	if models.IsReserved(target) {
		return &models.ReservedNameError{Name: target}
	}
	segments := strings.Fields(models.Normalize(def.Path))
	for _, seg := range segments {
		if models.IsReserved(seg) {
			return &models.ReservedNameError{Name: seg}
		}
	}

	cur := b.root
	for _, seg := range segments {
		next, ok := cur.Child(seg)
		if !ok {
			var err error
			next, err = models.New(seg, models.KindBranch, cur, nil, "")
			if err != nil {
				return err
			}
		}
		cur = next
	}
	return putLeaf(cur, target, def.Parameters, def.Info)
}

// AddCatalog merges every described frame type under the catalog branch.
// Repeated calls reuse the branch and overwrite its leaves.
func (b *Builder) AddCatalog() error {
	name := models.Normalize(b.opts.CatalogBranch)
	branch, ok := b.root.Child(name)
	if !ok {
		var err error
		branch, err = models.New(name, models.KindBranch, b.root, nil, "Built-in robot commands")
		if err != nil {
			return fmt.Errorf("catalog branch: %w", err)
		}
	}
	for _, d := range catalog.Commands(b.opts.Catalog) {
		if err := putLeaf(branch, catalog.CommandName(d), catalog.Schema(d), d.Description); err != nil {
			return fmt.Errorf("catalog %s: %w", d.Type, err)
		}
	}
	return nil
}

// LoadFile merges one definitions file, then the frame catalog.
// Malformed entries are logged and skipped; reserved names are fatal.
func (b *Builder) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read definitions: %w", err)
	}
	defs, skipped, err := ParseDefinitions(data, path)
	if err != nil {
		return err
	}
	for _, s := range skipped {
		log.Warn().Err(s).Str("file", path).Msg("skipping definition")
	}
	for _, def := range defs {
		if err := b.AddDefinition(def); err != nil {
			return fmt.Errorf("%s: target %q: %w", path, def.Target, err)
		}
	}
	log.Debug().Str("file", path).Int("commands", len(defs)).Int("skipped", len(skipped)).Msg("definitions loaded")
	return b.AddCatalog()
}

// Build assembles the tree from the given files in order. Without files the
// catalog is merged once on its own.
func Build(files []string, opts Options) (*models.Node, error) {
	b := NewBuilder(opts)
	if len(files) == 0 {
		if err := b.AddCatalog(); err != nil {
			return nil, err
		}
		return b.Root(), nil
	}
	for _, f := range files {
		if err := b.LoadFile(f); err != nil {
			return nil, err
		}
	}
	return b.Root(), nil
}

// putLeaf creates name under parent, or overwrites the schema and info of an
// existing child in place so that its own children survive.
func putLeaf(parent *models.Node, name string, params []models.Param, info string) error {
	if existing, ok := parent.Child(name); ok {
		existing.Kind = models.KindLeaf
		existing.Params = slices.Clone(params)
		existing.Info = info
		return nil
	}
	_, err := models.New(name, models.KindLeaf, parent, params, info)
	return err
}
