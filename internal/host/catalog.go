package host

import (
	_ "embed"
	"errors"
	"fmt"
	"maps"
	"os"
	"slices"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/udisondev/unitbalance/internal/model"
)

//go:embed catalog/default.yaml
var defaultCatalog []byte

// ErrInvalidCatalog is returned for a catalog document that cannot be turned into templates.
var ErrInvalidCatalog = errors.New("invalid catalog")

// Catalog is the parsed content of a catalog document.
type Catalog struct {
	Templates []*model.Template
	Assets    []*model.Asset
	Teams     []Team
}

// Config returns a host config seeded with the catalog.
func (c *Catalog) Config() Config {
	return Config{Templates: c.Templates, Assets: c.Assets, Teams: c.Teams}
}

type catalogDoc struct {
	Assets    []assetDoc    `yaml:"assets"`
	Templates []templateDoc `yaml:"templates"`
	Teams     []teamDoc     `yaml:"teams"`
}

type assetDoc struct {
	Name  string    `yaml:"name"`
	Kind  string    `yaml:"kind"`
	Attrs yaml.Node `yaml:"attrs"`
}

type templateDoc struct {
	Internal      string         `yaml:"internal"`
	Display       string         `yaml:"display"`
	Faction       string         `yaml:"faction"`
	Construction  string         `yaml:"construction"`
	DamageManager string         `yaml:"damage_manager"`
	Components    []componentDoc `yaml:"components"`
}

type componentDoc struct {
	Field     string            `yaml:"field"`
	Kind      string            `yaml:"kind"`
	Attrs     yaml.Node         `yaml:"attrs"`
	Inherited yaml.Node         `yaml:"inherited"`
	Refs      map[string]string `yaml:"refs"`
	Links     map[string]string `yaml:"links"`
	Subs      []componentDoc    `yaml:"subs"`
}

type teamDoc struct {
	Name string `yaml:"name"`
	Tier int    `yaml:"tier"`
}

type pendingLink struct {
	comp   *model.Component
	field  string
	target string
}

// DefaultCatalog parses the embedded catalog.
func DefaultCatalog() (*Catalog, error) {
	return LoadCatalog(defaultCatalog)
}

// LoadCatalogFile parses a catalog from path.
func LoadCatalogFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog: %w", err)
	}
	return LoadCatalog(data)
}

// LoadCatalog parses a catalog document.
// Attribute kinds follow the YAML scalar: 30 is an Int, 30.0 a Float, true a Bool.
func LoadCatalog(data []byte) (*Catalog, error) {
	var doc catalogDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing catalog: %w", err)
	}

	c := &Catalog{}
	assets := make(map[string]*model.Asset, len(doc.Assets))
	for _, ad := range doc.Assets {
		if ad.Name == "" {
			return nil, fmt.Errorf("asset without name: %w", ErrInvalidCatalog)
		}
		if _, dup := assets[ad.Name]; dup {
			return nil, fmt.Errorf("duplicate asset %q: %w", ad.Name, ErrInvalidCatalog)
		}
		rec := model.NewRecord()
		if err := decodeAttrs(&ad.Attrs, rec, true); err != nil {
			return nil, fmt.Errorf("asset %q: %w", ad.Name, err)
		}
		a := model.NewAsset(ad.Name, model.AssetKind(ad.Kind), rec)
		assets[ad.Name] = a
		c.Assets = append(c.Assets, a)
	}

	templates := make(map[string]*model.Template, len(doc.Templates))
	var links []pendingLink
	for _, td := range doc.Templates {
		if td.Internal == "" || td.Display == "" {
			return nil, fmt.Errorf("template needs internal and display names: %w", ErrInvalidCatalog)
		}
		t := model.NewTemplate(td.Internal, td.Display).WithFaction(td.Faction)
		if td.Construction != "" {
			a, ok := assets[td.Construction]
			if !ok {
				return nil, fmt.Errorf("template %q: unknown construction %q: %w", td.Internal, td.Construction, ErrInvalidCatalog)
			}
			t.WithConstruction(a)
		}
		if td.DamageManager != "" {
			a, ok := assets[td.DamageManager]
			if !ok {
				return nil, fmt.Errorf("template %q: unknown damage manager %q: %w", td.Internal, td.DamageManager, ErrInvalidCatalog)
			}
			t.WithDamageManager(a)
		}
		for _, cd := range td.Components {
			comp, err := buildComponent(cd, assets, &links)
			if err != nil {
				return nil, fmt.Errorf("template %q: %w", td.Internal, err)
			}
			t.AddComponent(comp)
		}
		templates[td.Internal] = t
		c.Templates = append(c.Templates, t)
	}

	for _, l := range links {
		t, ok := templates[l.target]
		if !ok {
			return nil, fmt.Errorf("link %s to unknown template %q: %w", l.field, l.target, ErrInvalidCatalog)
		}
		l.comp.WithLink(l.field, t)
	}

	for _, td := range doc.Teams {
		c.Teams = append(c.Teams, Team{Name: td.Name, Tier: td.Tier})
	}
	return c, nil
}

func buildComponent(cd componentDoc, assets map[string]*model.Asset, links *[]pendingLink) (*model.Component, error) {
	if cd.Kind == "" {
		return nil, fmt.Errorf("component without kind: %w", ErrInvalidCatalog)
	}
	rec := model.NewRecord()
	if err := decodeAttrs(&cd.Attrs, rec, true); err != nil {
		return nil, fmt.Errorf("component %s: %w", cd.Kind, err)
	}
	if err := decodeAttrs(&cd.Inherited, rec, false); err != nil {
		return nil, fmt.Errorf("component %s: %w", cd.Kind, err)
	}
	comp := model.NewComponent(model.ComponentKind(cd.Kind), rec)
	for _, field := range slices.Sorted(maps.Keys(cd.Refs)) {
		name := cd.Refs[field]
		a, ok := assets[name]
		if !ok {
			return nil, fmt.Errorf("component %s: unknown asset %q: %w", cd.Kind, name, ErrInvalidCatalog)
		}
		comp.WithRef(field, a)
	}
	for _, field := range slices.Sorted(maps.Keys(cd.Links)) {
		*links = append(*links, pendingLink{comp: comp, field: field, target: cd.Links[field]})
	}
	for _, sd := range cd.Subs {
		if sd.Field == "" {
			return nil, fmt.Errorf("component %s: sub-object without field: %w", cd.Kind, ErrInvalidCatalog)
		}
		sub, err := buildComponent(sd, assets, links)
		if err != nil {
			return nil, err
		}
		comp.WithSub(sd.Field, sub)
	}
	return comp, nil
}

// decodeAttrs walks a mapping node in document order.
func decodeAttrs(n *yaml.Node, rec *model.Record, declared bool) error {
	if n.Kind == 0 {
		return nil
	}
	if n.Kind != yaml.MappingNode {
		return fmt.Errorf("attributes must be a mapping (line %d): %w", n.Line, ErrInvalidCatalog)
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		key, val := n.Content[i], n.Content[i+1]
		v, err := scalarValue(val)
		if err != nil {
			return fmt.Errorf("attribute %q: %w", key.Value, err)
		}
		if declared {
			rec.Declare(key.Value, v)
		} else {
			rec.Inherit(key.Value, v)
		}
	}
	return nil
}

func scalarValue(n *yaml.Node) (model.Value, error) {
	if n.Kind != yaml.ScalarNode {
		return model.Value{}, fmt.Errorf("line %d: not a scalar: %w", n.Line, ErrInvalidCatalog)
	}
	switch n.ShortTag() {
	case "!!float":
		f, err := strconv.ParseFloat(n.Value, 64)
		if err != nil {
			return model.Value{}, fmt.Errorf("line %d: %w", n.Line, err)
		}
		return model.Float(f), nil
	case "!!int":
		i, err := strconv.ParseInt(n.Value, 0, 64)
		if err != nil {
			return model.Value{}, fmt.Errorf("line %d: %w", n.Line, err)
		}
		return model.Int(i), nil
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err != nil {
			return model.Value{}, fmt.Errorf("line %d: %w", n.Line, err)
		}
		return model.Bool(b), nil
	default:
		return model.Value{}, fmt.Errorf("line %d: unsupported scalar %s: %w", n.Line, n.ShortTag(), ErrInvalidCatalog)
	}
}
