package catalog

import (
	_ "embed"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"avalia/internal/domain"
)

//go:embed catalog.yaml
var defaultCatalog []byte

// Catalog is the process-wide, read-only questionnaire definition: groups,
// their type, and their ordered items. It is built once at startup and
// injected into everything that needs it, so tests can substitute a smaller
// catalog.
type Catalog struct {
	groups     []domain.Group
	byID       map[int]domain.Group
	itemGroup  map[string]int
	totalItems int
}

type fileGroup struct {
	ID    int        `yaml:"id"`
	Name  string     `yaml:"name"`
	Type  string     `yaml:"type"`
	Items []fileItem `yaml:"items"`
}

type fileItem struct {
	ID             string `yaml:"id"`
	Number         int    `yaml:"number"`
	Text           string `yaml:"text"`
	ManagementText string `yaml:"management_text"`
}

type file struct {
	Groups []fileGroup `yaml:"groups"`
}

// Load builds the catalog from path, or from the embedded default when path
// is empty.
func Load(path string) (*Catalog, error) {
	data := defaultCatalog
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read catalog %s: %w", path, err)
		}
		data = b
	}
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	groups := make([]domain.Group, 0, len(f.Groups))
	for _, g := range f.Groups {
		items := make([]domain.Item, 0, len(g.Items))
		for _, it := range g.Items {
			items = append(items, domain.Item{
				ID:             it.ID,
				Number:         it.Number,
				Text:           it.Text,
				ManagementText: it.ManagementText,
			})
		}
		groups = append(groups, domain.Group{
			ID:    g.ID,
			Name:  g.Name,
			Type:  domain.GroupType(g.Type),
			Items: items,
		})
	}
	return New(groups)
}

// New validates the group list and builds the lookup indexes. Group ids must
// be unique, types must be valid, and each item belongs to exactly one group.
func New(groups []domain.Group) (*Catalog, error) {
	c := &Catalog{
		byID:      make(map[int]domain.Group, len(groups)),
		itemGroup: make(map[string]int),
	}
	for _, g := range groups {
		if _, dup := c.byID[g.ID]; dup {
			return nil, fmt.Errorf("catalog: duplicate group id %d", g.ID)
		}
		if !g.Type.Valid() {
			return nil, fmt.Errorf("catalog: group %d has invalid type %q", g.ID, g.Type)
		}
		for _, it := range g.Items {
			if owner, dup := c.itemGroup[it.ID]; dup {
				return nil, fmt.Errorf("catalog: item %s in groups %d and %d", it.ID, owner, g.ID)
			}
			c.itemGroup[it.ID] = g.ID
		}
		c.byID[g.ID] = g
		c.totalItems += len(g.Items)
	}
	c.groups = append(c.groups, groups...)
	sort.Slice(c.groups, func(i, j int) bool { return c.groups[i].ID < c.groups[j].ID })
	return c, nil
}

// Groups returns all groups ordered by id.
func (c *Catalog) Groups() []domain.Group { return c.groups }

// Group returns the group with the given id.
func (c *Catalog) Group(id int) (domain.Group, bool) {
	g, ok := c.byID[id]
	return g, ok
}

// Meta returns the name/type metadata keyed by group id, the shape the
// results pipeline consumes.
func (c *Catalog) Meta() map[int]domain.GroupMeta {
	m := make(map[int]domain.GroupMeta, len(c.groups))
	for _, g := range c.groups {
		m[g.ID] = domain.GroupMeta{Name: g.Name, Type: g.Type}
	}
	return m
}

// ItemGroup returns the owning group id for an item id.
func (c *Catalog) ItemGroup(itemID string) (int, bool) {
	id, ok := c.itemGroup[itemID]
	return id, ok
}

// TotalItems is the full questionnaire length across all groups. Finalization
// requires this many answers regardless of cascade visibility.
func (c *Catalog) TotalItems() int { return c.totalItems }
