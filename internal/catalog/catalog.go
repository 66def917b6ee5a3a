// Package catalog loads the prompt template library: the built-in templates
// embedded in the binary plus any YAML files in the user's templates directory.
package catalog

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"
)

//go:embed library/*.yaml
var library embed.FS

const builtinPrefix = "embedded:"

// Catalog manages all available templates.
type Catalog struct {
	mu        sync.RWMutex
	templates map[string]*Template
	order     []string
	userDir   string
	skipped   []error
}

// New loads the built-in library and the YAML templates in userDir. An empty
// userDir loads only the built-in library. The directory is created if missing.
func New(userDir string) (*Catalog, error) {
	c := &Catalog{userDir: userDir}
	if userDir != "" {
		if err := os.MkdirAll(userDir, 0755); err != nil {
			return nil, fmt.Errorf("create templates dir: %w", err)
		}
	}
	if err := c.Reload(); err != nil {
		return nil, err
	}
	return c, nil
}

// Reload rereads every template. Built-in templates must all be valid; a
// broken user file is skipped and reported by Skipped.
func (c *Catalog) Reload() error {
	templates := make(map[string]*Template)
	var order []string

	add := func(t *Template) {
		if _, exists := templates[t.ID]; !exists {
			order = append(order, t.ID)
		}
		templates[t.ID] = t
	}

	builtin, err := loadBuiltin()
	if err != nil {
		return err
	}
	for _, t := range builtin {
		add(t)
	}

	user, skipped := loadDir(c.userDir)
	for _, t := range user {
		add(t)
	}
	for _, err := range skipped {
		log.Warn().Err(err).Str("dir", c.userDir).Msg("skipping user template")
	}

	c.mu.Lock()
	c.templates = templates
	c.order = order
	c.skipped = skipped
	c.mu.Unlock()

	log.Debug().Int("builtin", len(builtin)).Int("user", len(user)).Msg("catalog loaded")
	return nil
}

func loadBuiltin() ([]*Template, error) {
	entries, err := fs.ReadDir(library, "library")
	if err != nil {
		return nil, err
	}

	var out []*Template
	seen := make(map[string]string)
	for _, entry := range entries {
		name := path.Join("library", entry.Name())
		data, err := library.ReadFile(name)
		if err != nil {
			return nil, err
		}
		t, err := Parse(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		if prev, dup := seen[t.ID]; dup {
			return nil, fmt.Errorf("%s: duplicate template id %q (also in %s)", name, t.ID, prev)
		}
		seen[t.ID] = name
		t.Source = builtinPrefix + name
		out = append(out, t)
	}
	return out, nil
}

// loadDir reads *.yaml and *.yml files from dir in name order. Later files
// win when two share an id.
func loadDir(dir string) ([]*Template, []error) {
	if dir == "" {
		return nil, nil
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, nil // Treat an unreadable dir as empty
	}

	var out []*Template
	var skipped []error
	for _, entry := range entries {
		if entry.IsDir() || !isTemplateFile(entry.Name()) {
			continue
		}
		p := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(p)
		if err != nil {
			skipped = append(skipped, fmt.Errorf("%s: %w", p, err))
			continue
		}
		t, err := Parse(data)
		if err != nil {
			skipped = append(skipped, fmt.Errorf("%s: %w", p, err))
			continue
		}
		t.Source = p
		if keys := UnboundPlaceholders(t); len(keys) > 0 {
			log.Warn().Str("file", p).Strs("placeholders", keys).Msg("template placeholders without a variable")
		}
		out = append(out, t)
	}
	return out, skipped
}

func isTemplateFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".yaml" || ext == ".yml"
}

// Get returns a template by id.
func (c *Catalog) Get(id string) *Template {
	if c == nil {
		return nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.templates[id]
}

// All returns every template in library order.
func (c *Catalog) All() []*Template {
	if c == nil {
		return nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	result := make([]*Template, 0, len(c.order))
	for _, id := range c.order {
		result = append(result, c.templates[id])
	}
	return result
}

// ByCategory returns the templates of one category in library order.
func (c *Catalog) ByCategory(cat Category) []*Template {
	var result []*Template
	for _, t := range c.All() {
		if t.Category == cat {
			result = append(result, t)
		}
	}
	return result
}

// Search matches query case-insensitively against both titles and both
// descriptions, across all categories.
func (c *Catalog) Search(query string) []*Template {
	q := strings.ToLower(query)
	var result []*Template
	for _, t := range c.All() {
		if matches(t, q) {
			result = append(result, t)
		}
	}
	return result
}

func matches(t *Template, lowerQuery string) bool {
	for _, field := range []string{t.Title, t.TitleEn, t.Description, t.DescriptionEn} {
		if strings.Contains(strings.ToLower(field), lowerQuery) {
			return true
		}
	}
	return false
}

// Filter is what the library view shows: a non-blank query searches every
// category, otherwise the category's templates are listed.
func (c *Catalog) Filter(cat Category, query string) []*Template {
	if strings.TrimSpace(query) != "" {
		return c.Search(query)
	}
	return c.ByCategory(cat)
}

// Categories returns every category in tab order.
func Categories() []Category {
	out := make([]Category, len(categoryOrder))
	copy(out, categoryOrder)
	return out
}

// SortFavoritesFirst returns a copy of list with favourites moved to the
// front. Relative order within each group is kept.
func SortFavoritesFirst(list []*Template, isFavorite func(id string) bool) []*Template {
	out := make([]*Template, len(list))
	copy(out, list)
	sort.SliceStable(out, func(i, j int) bool {
		return isFavorite(out[i].ID) && !isFavorite(out[j].ID)
	})
	return out
}

// Count returns the number of loaded templates.
func (c *Catalog) Count() int {
	if c == nil {
		return 0
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.templates)
}

// Skipped returns the errors of user files ignored by the last load.
func (c *Catalog) Skipped() []error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]error(nil), c.skipped...)
}

// UserDir returns the user templates directory.
func (c *Catalog) UserDir() string {
	return c.userDir
}
