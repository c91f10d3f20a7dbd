package descriptor

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

// Format identifies the encoding of a descriptor document.
type Format string

const (
	FormatTOML Format = "toml"
	FormatYAML Format = "yaml"
	// FormatJSON also accepts JSONC (comments and trailing commas).
	FormatJSON Format = "json"
)

// FileBaseName is the base name (without extension) of a template descriptor
// file inside a template directory.
const FileBaseName = "stencil-template"

// Extensions lists the descriptor file extensions understood by Load, in
// lookup preference order.
var Extensions = []string{".toml", ".yaml", ".yml", ".json", ".jsonc"}

// FormatFromPath infers the descriptor format from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json", ".jsonc":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unsupported descriptor extension %q", filepath.Ext(path))
	}
}

// document is the on-disk shape of a descriptor file.
//
// TOML uses [[property]] tables; YAML and JSON use a "properties" list.
type document struct {
	Name        string        `toml:"name" yaml:"name" json:"name"`
	Description string        `toml:"description" yaml:"description" json:"description"`
	Properties  []propertyDoc `toml:"property" yaml:"properties" json:"properties" validate:"dive"`
}

type propertyDoc struct {
	Key         string  `toml:"key" yaml:"key" json:"key" validate:"required,excludesall=${}"`
	Default     *string `toml:"default" yaml:"default" json:"default"`
	Description string  `toml:"description" yaml:"description" json:"description"`
	Pattern     string  `toml:"pattern" yaml:"pattern" json:"pattern"`
}

var validate = validator.New()

// Load reads and parses the descriptor file at path. The format is inferred
// from the extension.
func Load(path string) (*Set, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading descriptor %s: %w", path, err)
	}
	set, err := Parse(data, format)
	if err != nil {
		return nil, fmt.Errorf("loading descriptor %s: %w", path, err)
	}
	return set, nil
}

// Parse decodes a descriptor document and builds a Set from it. Decoding and
// validation failures wrap ErrMalformedDescriptor.
func Parse(data []byte, format Format) (*Set, error) {
	var doc document
	var err error
	switch format {
	case FormatTOML:
		_, err = toml.Decode(string(data), &doc)
	case FormatYAML:
		err = yaml.Unmarshal(data, &doc)
	case FormatJSON:
		err = json.Unmarshal(jsonc.ToJSON(data), &doc)
	default:
		return nil, fmt.Errorf("unsupported descriptor format %q", format)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: decoding %s: %v", ErrMalformedDescriptor, format, err)
	}

	if err := validate.Struct(doc); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrMalformedDescriptor, describeValidation(err))
	}

	props := make([]Property, len(doc.Properties))
	for i, p := range doc.Properties {
		props[i] = Property{
			Key:          p.Key,
			DefaultValue: p.Default,
			Description:  p.Description,
			Pattern:      p.Pattern,
		}
	}

	set, err := New(props...)
	if err != nil {
		return nil, err
	}
	set.name = doc.Name
	set.description = doc.Description
	return set, nil
}

// describeValidation flattens validator errors into one readable line.
func describeValidation(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s is required", fe.Namespace()))
		case "excludesall":
			msgs = append(msgs, fmt.Sprintf("%s %q must not contain any of %q", fe.Namespace(), fe.Value(), fe.Param()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
		}
	}
	return strings.Join(msgs, "; ")
}
