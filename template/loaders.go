package template

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"
	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"
)

//go:embed schema.json
var librarySchemaJSON []byte

var (
	schemaOnce     sync.Once
	compiledSchema *gojsonschema.Schema
	schemaErr      error

	ErrUnknownFormat = errors.New("unknown library format; use .json, .yaml or .yml")
)

// rawVariation is either a bare list of "code,size" strings or an object
// carrying its own id and name.
type rawVariation struct {
	ID    string   `json:"id" yaml:"id"`
	Name  string   `json:"name" yaml:"name"`
	Tiles []string `json:"tiles" yaml:"tiles"`
}

func (rv *rawVariation) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '[' {
		return json.Unmarshal(b, &rv.Tiles)
	}
	type plain rawVariation
	return json.Unmarshal(b, (*plain)(rv))
}

func (rv *rawVariation) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.SequenceNode {
		return value.Decode(&rv.Tiles)
	}
	type plain rawVariation
	return value.Decode((*plain)(rv))
}

type rawTemplate struct {
	ID          string         `json:"id" yaml:"id"`
	Name        string         `json:"name" yaml:"name"`
	Description string         `json:"description" yaml:"description"`
	Category    string         `json:"category" yaml:"category"`
	CatID       string         `json:"catid" yaml:"catid"`
	Image       string         `json:"image" yaml:"image"`
	Variations  []rawVariation `json:"variations" yaml:"variations"`
}

type rawLibrary struct {
	Version   string        `json:"version" yaml:"version"`
	Templates []rawTemplate `json:"templates" yaml:"templates"`
}

func librarySchema() (*gojsonschema.Schema, error) {
	schemaOnce.Do(func() {
		compiledSchema, schemaErr = gojsonschema.NewSchema(
			gojsonschema.NewBytesLoader(librarySchemaJSON))
	})
	return compiledSchema, schemaErr
}

// ValidateJSON checks a JSON library document against the library schema.
// All violations are reported in a single error.
func ValidateJSON(data []byte) error {
	schema, err := librarySchema()
	if err != nil {
		return fmt.Errorf("compiling library schema: %w", err)
	}
	res, err := schema.Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return fmt.Errorf("validating library: %w", err)
	}
	if res.Valid() {
		return nil
	}
	msgs := make([]string, 0, len(res.Errors()))
	for _, e := range res.Errors() {
		msgs = append(msgs, e.String())
	}
	return fmt.Errorf("library does not match schema: %s", strings.Join(msgs, "; "))
}

// ReadJSON reads and validates a JSON library.
func ReadJSON(r io.Reader) (*Library, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if err := ValidateJSON(data); err != nil {
		return nil, err
	}
	raw := &rawLibrary{}
	if err := json.Unmarshal(data, raw); err != nil {
		return nil, err
	}
	return raw.toLibrary()
}

// ReadYAML reads a YAML library. The document has the same shape as the
// JSON one.
func ReadYAML(r io.Reader) (*Library, error) {
	raw := &rawLibrary{}
	dec := yaml.NewDecoder(r)
	if err := dec.Decode(raw); err != nil {
		if errors.Is(err, io.EOF) {
			return &Library{}, nil
		}
		return nil, err
	}
	return raw.toLibrary()
}

// LoadLibrary reads a library file, choosing the decoder by extension.
func LoadLibrary(path string) (*Library, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var lib *Library
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		lib, err = ReadJSON(f)
	case ".yaml", ".yml":
		lib, err = ReadYAML(f)
	default:
		return nil, fmt.Errorf("%s: %w", path, ErrUnknownFormat)
	}
	if err != nil {
		return nil, fmt.Errorf("loading library %s: %w", path, err)
	}
	log.Debug().Str("path", path).
		Int("templates", len(lib.Templates)).
		Int("variations", lib.NumVariations()).
		Msg("loaded-library")
	return lib, nil
}

func (raw *rawLibrary) toLibrary() (*Library, error) {
	lib := &Library{
		Version:   raw.Version,
		Templates: make([]HandTemplate, 0, len(raw.Templates)),
	}
	for _, rt := range raw.Templates {
		t := HandTemplate{
			ID:          rt.ID,
			Name:        rt.Name,
			Description: rt.Description,
			Category:    rt.Category,
			CatID:       rt.CatID,
			Image:       rt.Image,
			Variations:  make([]Variant, 0, len(rt.Variations)),
		}
		for i, rv := range rt.Variations {
			id := rv.ID
			if id == "" {
				id = fmt.Sprintf("%s-v%d", rt.ID, i+1)
			}
			name := rv.Name
			if name == "" {
				name = fmt.Sprintf("Variation %d", i+1)
			}
			v, err := NewVariant(id, name, rv.Tiles)
			if err != nil {
				return nil, fmt.Errorf("template %s: %w", rt.ID, err)
			}
			t.Variations = append(t.Variations, v)
		}
		lib.Templates = append(lib.Templates, t)
	}
	return lib, nil
}
