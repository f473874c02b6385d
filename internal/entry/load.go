package entry

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"os"
	"path"
	"slices"

	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

//go:embed data/*.json
var bundledFS embed.FS

// ErrMissingCollection is returned when a dataset directory lacks one of the
// three collections.
var ErrMissingCollection = errors.New("collection missing")

// Collection file stems, in catalog concatenation order.
const (
	CollectionBestiary = "bestiary"
	CollectionSpells   = "spells"
	CollectionItems    = "items"
)

var collectionExts = []string{".json", ".yaml", ".yml"}

// DroppedField describes a record field that could not be decoded and was
// left absent. Field is empty when the whole record was not an object; the
// record is still kept, with no fields set.
type DroppedField struct {
	Collection string `json:"collection"`
	Index      int    `json:"index"`
	Field      string `json:"field,omitempty"`
	Reason     string `json:"reason"`
}

// LoadReport summarizes what a load produced, for logging.
type LoadReport struct {
	Origin     string         `json:"origin"`
	Bestiary   int            `json:"bestiary"`
	Spells     int            `json:"spells"`
	Items      int            `json:"items"`
	Dropped    []DroppedField `json:"dropped,omitempty"`
	Nameless   int            `json:"nameless"`
	Duplicates []string       `json:"duplicates,omitempty"`
}

func (r *LoadReport) drop(collection string, index int, field, reason string) {
	r.Dropped = append(r.Dropped, DroppedField{Collection: collection, Index: index, Field: field, Reason: reason})
}

// LoadBundled builds the catalog from the datasets compiled into the binary.
func LoadBundled() (*Catalog, *LoadReport, error) {
	return LoadFS(bundledFS, "data", "bundled")
}

// LoadDir builds the catalog from a directory holding bestiary, spells and
// items files (.json, .yaml or .yml).
func LoadDir(dir string) (*Catalog, *LoadReport, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, nil, fmt.Errorf("data dir: %w", err)
	}
	if !info.IsDir() {
		return nil, nil, fmt.Errorf("data dir %s is not a directory", dir)
	}
	return LoadFS(os.DirFS(dir), ".", dir)
}

// LoadFS builds the catalog from the three collection files under dir in fsys.
// Each collection must be present and be a list. Records are never rejected:
// a field that fails to decode is left absent and reported.
func LoadFS(fsys fs.FS, dir, origin string) (*Catalog, *LoadReport, error) {
	report := &LoadReport{Origin: origin}

	bestiary, err := loadCollection[CreatureRecord](fsys, dir, CollectionBestiary, report)
	if err != nil {
		return nil, nil, err
	}
	spells, err := loadCollection[SpellRecord](fsys, dir, CollectionSpells, report)
	if err != nil {
		return nil, nil, err
	}
	items, err := loadCollection[ItemRecord](fsys, dir, CollectionItems, report)
	if err != nil {
		return nil, nil, err
	}

	cat := NewCatalog(bestiary, spells, items)
	report.Bestiary = len(bestiary)
	report.Spells = len(spells)
	report.Items = len(items)
	report.Nameless = cat.Nameless()
	report.Duplicates = cat.Duplicates()
	return cat, report, nil
}

// loadCollection finds stem.{json,yaml,yml} under dir and decodes it field by field.
func loadCollection[T any](fsys fs.FS, dir, stem string, report *LoadReport) ([]T, error) {
	for _, ext := range collectionExts {
		name := path.Join(dir, stem+ext)
		data, err := fs.ReadFile(fsys, name)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		if ext == ".json" {
			return decodeJSONCollection[T](data, stem, report)
		}
		return decodeYAMLCollection[T](data, stem, report)
	}
	return nil, fmt.Errorf("%w: %s (looked for %s.json, %s.yaml, %s.yml)", ErrMissingCollection, stem, stem, stem, stem)
}

func decodeJSONCollection[T any](data []byte, stem string, report *LoadReport) ([]T, error) {
	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return nil, fmt.Errorf("%s: collection must be a JSON array: %w", stem, err)
	}
	records := make([]T, len(raws))
	for i, raw := range raws {
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(raw, &fields); err != nil {
			report.drop(stem, i, "", "record is not an object")
			continue
		}
		for _, key := range slices.Sorted(maps.Keys(fields)) {
			if err := decodeJSONField(&records[i], key, fields[key]); err != nil {
				report.drop(stem, i, key, err.Error())
			}
		}
	}
	return records, nil
}

// decodeJSONField decodes one top-level field into rec, leaving rec untouched
// on failure. A lone string where a list is expected becomes a one-element list.
func decodeJSONField[T any](rec *T, key string, raw json.RawMessage) error {
	name, err := json.Marshal(key)
	if err != nil {
		return err
	}
	object := func(value []byte) []byte {
		buf := make([]byte, 0, len(name)+len(value)+3)
		buf = append(buf, '{')
		buf = append(buf, name...)
		buf = append(buf, ':')
		buf = append(buf, value...)
		return append(buf, '}')
	}

	tmp := *rec
	err = json.Unmarshal(object(raw), &tmp)
	if err != nil && isJSONString(raw) {
		tmp = *rec
		list := append(append([]byte{'['}, raw...), ']')
		if json.Unmarshal(object(list), &tmp) == nil {
			err = nil
		}
	}
	if err != nil {
		return err
	}
	*rec = tmp
	return nil
}

func isJSONString(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) > 0 && raw[0] == '"'
}

func decodeYAMLCollection[T any](data []byte, stem string, report *LoadReport) ([]T, error) {
	var nodes []yaml.Node
	if err := yaml.Unmarshal(data, &nodes); err != nil {
		return nil, fmt.Errorf("%s: collection must be a YAML sequence: %w", stem, err)
	}
	records := make([]T, len(nodes))
	for i := range nodes {
		node := &nodes[i]
		if node.Kind == yaml.AliasNode && node.Alias != nil {
			node = node.Alias
		}
		if node.Kind != yaml.MappingNode {
			report.drop(stem, i, "", "record is not a mapping")
			continue
		}
		for j := 0; j+1 < len(node.Content); j += 2 {
			key, value := node.Content[j], node.Content[j+1]
			if err := decodeYAMLField(&records[i], key, value); err != nil {
				report.drop(stem, i, key.Value, err.Error())
			}
		}
	}
	return records, nil
}

// decodeYAMLField is the YAML counterpart of decodeJSONField.
func decodeYAMLField[T any](rec *T, key, value *yaml.Node) error {
	pair := func(v *yaml.Node) *yaml.Node {
		return &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map", Content: []*yaml.Node{key, v}}
	}

	tmp := *rec
	err := pair(value).Decode(&tmp)
	if err != nil && value.Kind == yaml.ScalarNode && value.Tag == "!!str" {
		tmp = *rec
		list := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq", Content: []*yaml.Node{value}}
		if pair(list).Decode(&tmp) == nil {
			err = nil
		}
	}
	if err != nil {
		return err
	}
	*rec = tmp
	return nil
}
