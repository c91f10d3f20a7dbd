// Package catalog locates template descriptors in a local directory tree laid
// out by coordinates:
//
//	<root>/<group>/<artifact>/<version>/stencil-template.toml
//
// Any extension understood by the descriptor package may be used in place of
// .toml.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/charmbracelet/log"
	"github.com/hashicorp/go-version"
	"golang.org/x/sync/errgroup"

	"github.com/AbdelazizMoustafa10m/stencil/internal/descriptor"
)

// ErrTemplateNotFound is returned when no descriptor exists for the requested
// coordinates.
var ErrTemplateNotFound = errors.New("template not found")

// loadConcurrency caps the number of descriptor files parsed at once by List.
const loadConcurrency = 8

// Coordinates identify one template version.
type Coordinates struct {
	Group    string
	Artifact string
	// Version may be empty, meaning the highest available version.
	Version string
}

// ParseCoordinates parses "group:artifact" or "group:artifact:version".
func ParseCoordinates(s string) (Coordinates, error) {
	parts := strings.Split(s, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return Coordinates{}, fmt.Errorf("invalid template coordinates %q: want group:artifact[:version]", s)
	}
	c := Coordinates{Group: parts[0], Artifact: parts[1]}
	if len(parts) == 3 {
		c.Version = parts[2]
	}
	for _, p := range parts {
		if p == "" || p == "." || p == ".." || strings.ContainsAny(p, `/\`) {
			return Coordinates{}, fmt.Errorf("invalid template coordinates %q: empty or path-like component", s)
		}
	}
	return c, nil
}

// String formats the coordinates as group:artifact[:version].
func (c Coordinates) String() string {
	if c.Version == "" {
		return c.Group + ":" + c.Artifact
	}
	return c.Group + ":" + c.Artifact + ":" + c.Version
}

// Entry is one template found in the catalog.
type Entry struct {
	Coordinates Coordinates
	Path        string
	Descriptor  *descriptor.Set
}

// Catalog is a directory-backed template catalog.
type Catalog struct {
	root   string
	fsys   fs.FS
	logger *log.Logger
}

// Option configures a Catalog.
type Option func(*Catalog)

// WithLogger attaches a logger.
func WithLogger(logger *log.Logger) Option {
	return func(c *Catalog) { c.logger = logger }
}

// New returns a catalog rooted at dir.
func New(dir string, opts ...Option) *Catalog {
	c := &Catalog{root: dir, fsys: os.DirFS(dir)}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Root returns the catalog directory.
func (c *Catalog) Root() string { return c.root }

// descriptorGlob matches every descriptor file three directories deep.
func descriptorGlob() string {
	exts := make([]string, len(descriptor.Extensions))
	for i, ext := range descriptor.Extensions {
		exts[i] = strings.TrimPrefix(ext, ".")
	}
	return "*/*/*/" + descriptor.FileBaseName + ".{" + strings.Join(exts, ",") + "}"
}

// Find loads the descriptor set for coords. An empty version selects the
// highest version available.
func (c *Catalog) Find(ctx context.Context, coords Coordinates) (*descriptor.Set, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	version := coords.Version
	if version == "" {
		versions, err := c.versions(coords)
		if err != nil {
			return nil, err
		}
		version = versions[len(versions)-1]
		c.debug("selected latest version", "template", coords.String(), "version", version)
	}

	dir := path.Join(coords.Group, coords.Artifact, version)
	for _, ext := range descriptor.Extensions {
		rel := path.Join(dir, descriptor.FileBaseName+ext)
		if _, err := fs.Stat(c.fsys, rel); err != nil {
			continue
		}
		full := filepath.Join(c.root, filepath.FromSlash(rel))
		c.debug("loading descriptor", "path", full)
		return descriptor.Load(full)
	}
	return nil, fmt.Errorf("%w: %s in %s", ErrTemplateNotFound, Coordinates{Group: coords.Group, Artifact: coords.Artifact, Version: version}, c.root)
}

// versions returns the available versions of group:artifact in ascending
// order.
func (c *Catalog) versions(coords Coordinates) ([]string, error) {
	pattern := path.Join(coords.Group, coords.Artifact, "*", descriptor.FileBaseName+".*")
	matches, err := doublestar.Glob(c.fsys, pattern)
	if err != nil {
		return nil, fmt.Errorf("scanning catalog %s: %w", c.root, err)
	}

	seen := make(map[string]bool)
	var versions []string
	for _, m := range matches {
		v := path.Base(path.Dir(m))
		if !seen[v] && isDescriptorFile(m) {
			seen[v] = true
			versions = append(versions, v)
		}
	}
	if len(versions) == 0 {
		return nil, fmt.Errorf("%w: %s in %s", ErrTemplateNotFound, coords, c.root)
	}
	// Glob returns lexical order, so equal versions ("1" and "01") keep a
	// deterministic order.
	sort.SliceStable(versions, func(i, j int) bool {
		return compareVersions(versions[i], versions[j]) < 0
	})
	return versions, nil
}

// List returns every template in the catalog, sorted by coordinates.
// Descriptors are parsed concurrently; the first failure aborts the listing.
func (c *Catalog) List(ctx context.Context) ([]Entry, error) {
	matches, err := doublestar.Glob(c.fsys, descriptorGlob())
	if err != nil {
		return nil, fmt.Errorf("scanning catalog %s: %w", c.root, err)
	}

	// One descriptor per version directory, in extension preference order.
	chosen := make(map[string]string)
	for _, m := range matches {
		dir := path.Dir(m)
		if prev, ok := chosen[dir]; !ok || extRank(m) < extRank(prev) {
			chosen[dir] = m
		}
	}

	entries := make([]Entry, 0, len(chosen))
	for dir, rel := range chosen {
		parts := strings.Split(dir, "/")
		entries = append(entries, Entry{
			Coordinates: Coordinates{Group: parts[0], Artifact: parts[1], Version: parts[2]},
			Path:        filepath.Join(c.root, filepath.FromSlash(rel)),
		})
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(loadConcurrency)
	for i := range entries {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			set, err := descriptor.Load(entries[i].Path)
			if err != nil {
				return err
			}
			entries[i].Descriptor = set
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i].Coordinates, entries[j].Coordinates
		if a.Group != b.Group {
			return a.Group < b.Group
		}
		if a.Artifact != b.Artifact {
			return a.Artifact < b.Artifact
		}
		if c := compareVersions(a.Version, b.Version); c != 0 {
			return c < 0
		}
		return a.Version < b.Version
	})
	c.debug("listed catalog", "root", c.root, "templates", len(entries))
	return entries, nil
}

func isDescriptorFile(p string) bool {
	return extRank(p) < len(descriptor.Extensions)
}

func extRank(p string) int {
	ext := path.Ext(p)
	for i, e := range descriptor.Extensions {
		if e == ext {
			return i
		}
	}
	return len(descriptor.Extensions)
}

// compareVersions orders version directory names. Names that parse as
// versions compare by numeric segment, so "1.10" > "1.9", "01" == "1" and a
// release sorts after its pre-release ("1.0" > "1.0-SNAPSHOT"). Names that
// do not parse sort before every parsed version, lexically among themselves.
func compareVersions(a, b string) int {
	va, aerr := version.NewVersion(a)
	vb, berr := version.NewVersion(b)
	switch {
	case aerr == nil && berr == nil:
		return va.Compare(vb)
	case aerr == nil:
		return 1
	case berr == nil:
		return -1
	default:
		return strings.Compare(a, b)
	}
}

func (c *Catalog) debug(msg string, kvs ...any) {
	if c.logger != nil {
		c.logger.Debug(msg, kvs...)
	}
}
