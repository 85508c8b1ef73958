// Package schema reads and writes key schemas: YAML documents that declare the
// ordered fields of a key type.
//
// A schema looks like this:
//
//	name: SampleKey
//	fields:
//	  - name: id
//	    display: ID
//	    type: u64
//	    default: 0x123456789ABCDEF0
//	  - name: delta
//	    type: i32
//	    min: -1000
//	    max: 1000
//	  - name: tag
//	    type: "[u8; 3]"
//	    default: "[0xA5; 3]"
//
// Types use the names accepted by keycodec.ParseFieldType and values use the
// literal syntax of keycodec.ParseLiteral. Numeric YAML scalars are read as
// their source text, so hexadecimal literals keep their meaning.
package schema

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/ssargent/dbkey/pkg/keycodec"
)

// File is the document form of a key schema.
type File struct {
	Name   string     `yaml:"name"`
	Fields []FieldDef `yaml:"fields"`
}

// FieldDef declares one field. Empty Default, Min and Max keep the type's own.
type FieldDef struct {
	Name    string `yaml:"name"`
	Display string `yaml:"display,omitempty"`
	Type    string `yaml:"type"`
	Default string `yaml:"default,omitempty"`
	Min     string `yaml:"min,omitempty"`
	Max     string `yaml:"max,omitempty"`
}

// Parse decodes a schema document and builds its descriptor.
func Parse(data []byte) (*keycodec.Descriptor, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse schema: %w", err)
	}
	return f.Descriptor()
}

// Load reads and parses the schema file at path.
func Load(path string) (*keycodec.Descriptor, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("failed to read schema file: %w", err)
	}
	d, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return d, nil
}

// Descriptor builds the descriptor declared by f. Every invalid field is
// reported, not just the first.
func (f *File) Descriptor() (*keycodec.Descriptor, error) {
	if f.Name == "" {
		return nil, errors.New("schema has no name")
	}

	decls := make([]keycodec.FieldDecl, 0, len(f.Fields))
	var errs []error
	for i, def := range f.Fields {
		decl, err := def.decl()
		if err != nil {
			errs = append(errs, fmt.Errorf("field %d (%s): %w", i, def.Name, err))
			continue
		}
		decls = append(decls, decl)
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("schema %s: %w", f.Name, errors.Join(errs...))
	}
	return keycodec.NewDescriptor(f.Name, decls...)
}

func (def FieldDef) decl() (keycodec.FieldDecl, error) {
	t, err := keycodec.ParseFieldType(def.Type)
	if err != nil {
		return keycodec.FieldDecl{}, err
	}

	var opts []keycodec.FieldOption
	if def.Display != "" {
		opts = append(opts, keycodec.WithDisplayName(def.Display))
	}
	for _, lit := range []struct {
		attr string
		text string
		opt  func(keycodec.Value) keycodec.FieldOption
	}{
		{"default", def.Default, keycodec.WithDefault},
		{"min", def.Min, keycodec.WithMin},
		{"max", def.Max, keycodec.WithMax},
	} {
		if lit.text == "" {
			continue
		}
		v, err := keycodec.ParseLiteral(t, lit.text)
		if err != nil {
			return keycodec.FieldDecl{}, fmt.Errorf("%s: %w", lit.attr, err)
		}
		opts = append(opts, lit.opt(v))
	}
	return keycodec.Field(def.Name, t, opts...), nil
}

// FromDescriptor returns the document form of d. Attributes equal to the type
// defaults are omitted.
func FromDescriptor(d *keycodec.Descriptor) *File {
	f := &File{Name: d.Name(), Fields: make([]FieldDef, 0, d.NumFields())}
	for _, field := range d.Fields() {
		def := FieldDef{Name: field.Name, Type: field.Type.String()}
		if field.DisplayName != field.Name {
			def.Display = field.DisplayName
		}
		if !field.Default.Equal(keycodec.ZeroValue(field.Type)) {
			def.Default = field.Default.String()
		}
		if !field.Min.Equal(keycodec.MinValue(field.Type)) {
			def.Min = field.Min.String()
		}
		if !field.Max.Equal(keycodec.MaxValue(field.Type)) {
			def.Max = field.Max.String()
		}
		f.Fields = append(f.Fields, def)
	}
	return f
}

// Marshal encodes d as a schema document.
func Marshal(d *keycodec.Descriptor) ([]byte, error) {
	data, err := yaml.Marshal(FromDescriptor(d))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal schema: %w", err)
	}
	return data, nil
}

// Save writes the schema of d to path, creating parent directories.
func Save(d *keycodec.Descriptor, path string) error {
	data, err := Marshal(d)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return fmt.Errorf("failed to create schema directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write schema file: %w", err)
	}
	return nil
}

// Sample is the schema written by "dbkey init": an event stream key with a
// signed sequence delta and a KSUID-sized tag.
const Sample = `name: EventKey
fields:
  - name: stream
    display: Stream
    type: u32
  - name: seq
    display: Sequence
    type: i64
  - name: id
    display: ID
    type: "[u8; 20]"
`
