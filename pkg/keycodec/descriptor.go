package keycodec

import (
	"errors"
	"fmt"
)

// FieldDecl is the declaration of one key field, produced by Field.
type FieldDecl struct {
	Name        string
	DisplayName string
	Type        FieldType
	Default     Value
	Min         Value
	Max         Value

	errs []error
}

// FieldOption sets an optional attribute of a field declaration.
type FieldOption func(*FieldDecl)

// Field declares a field of type t. The field name is its storage identifier;
// WithDisplayName gives it a cosmetic name.
func Field(name string, t FieldType, opts ...FieldOption) FieldDecl {
	d := FieldDecl{Name: name, Type: t}
	for _, opt := range opts {
		opt(&d)
	}
	return d
}

// WithDisplayName sets the human readable name of the field.
func WithDisplayName(name string) FieldOption {
	return func(d *FieldDecl) {
		if d.DisplayName != "" {
			d.errs = append(d.errs, fmt.Errorf("%w: %s name", ErrConflictingOverride, d.Name))
		}
		d.DisplayName = name
	}
}

// WithDefault overrides the type default of the field.
func WithDefault(v Value) FieldOption {
	return func(d *FieldDecl) { d.override("default", &d.Default, v) }
}

// WithMin narrows the lower bound of the field.
func WithMin(v Value) FieldOption {
	return func(d *FieldDecl) { d.override("min", &d.Min, v) }
}

// WithMax narrows the upper bound of the field.
func WithMax(v Value) FieldOption {
	return func(d *FieldDecl) { d.override("max", &d.Max, v) }
}

func (d *FieldDecl) override(attr string, dst *Value, v Value) {
	if dst.IsValid() {
		d.errs = append(d.errs, fmt.Errorf("%w: %s %s", ErrConflictingOverride, d.Name, attr))
		return
	}
	*dst = v
}

// FieldSpec is one entry of a descriptor table. Descriptors hand out copies,
// so changing a FieldSpec never changes the key layout.
type FieldSpec struct {
	Index       int
	Name        string
	DisplayName string
	Type        FieldType
	Offset      int
	Default     Value
	Min         Value
	Max         Value

	customMin bool
	customMax bool
}

// Size returns the width of the field in bytes.
func (f FieldSpec) Size() int { return f.Type.Size() }

// End returns the exclusive end offset of the field.
func (f FieldSpec) End() int { return f.Offset + f.Type.Size() }

// Range returns the start and exclusive end of the field's bytes.
func (f FieldSpec) Range() (start, end int) { return f.Offset, f.End() }

// DefaultBytes returns the encoded default of the field.
func (f FieldSpec) DefaultBytes() []byte { return f.Default.Encoded() }

// MinBytes returns the encoded minimum of the field.
func (f FieldSpec) MinBytes() []byte { return f.Min.Encoded() }

// MaxBytes returns the encoded maximum of the field.
func (f FieldSpec) MaxBytes() []byte { return f.Max.Encoded() }

// HasCustomBounds reports whether the field narrows its type's range.
func (f FieldSpec) HasCustomBounds() bool { return f.customMin || f.customMax }

// Descriptor is the immutable field table of a key type. It is safe for
// concurrent use.
type Descriptor struct {
	name   string
	fields []FieldSpec
	index  map[string]int
	width  int
	sizes  []int

	customBounds bool
	defaults     []byte
	minimum      []byte
	maximum      []byte
}

// NewDescriptor builds the field table for a key type from its ordered field
// declarations. Field 0 is the most significant for ordering.
func NewDescriptor(name string, decls ...FieldDecl) (*Descriptor, error) {
	if len(decls) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoFields, name)
	}

	d := &Descriptor{
		name:   name,
		fields: make([]FieldSpec, 0, len(decls)),
		index:  make(map[string]int, len(decls)),
		sizes:  make([]int, 0, len(decls)),
	}
	var errs []error
	offset := 0
	for i, decl := range decls {
		spec, err := newFieldSpec(i, offset, decl)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if _, dup := d.index[decl.Name]; dup {
			errs = append(errs, fmt.Errorf("%w: %q", ErrDuplicateField, decl.Name))
			continue
		}
		d.index[decl.Name] = i
		d.fields = append(d.fields, spec)
		d.sizes = append(d.sizes, spec.Size())
		d.customBounds = d.customBounds || spec.HasCustomBounds()
		offset += spec.Size()
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("key %s: %w", name, errors.Join(errs...))
	}
	d.width = offset

	d.defaults = d.walk(func(f *FieldSpec) Value { return f.Default })
	if d.customBounds {
		d.minimum = d.walk(func(f *FieldSpec) Value { return f.Min })
		d.maximum = d.walk(func(f *FieldSpec) Value { return f.Max })
	} else {
		d.minimum = d.fill(0x00)
		d.maximum = d.fill(0xFF)
	}
	return d, nil
}

// MustDescriptor is like NewDescriptor but panics on error. It is meant for
// package level key declarations.
func MustDescriptor(name string, decls ...FieldDecl) *Descriptor {
	d, err := NewDescriptor(name, decls...)
	if err != nil {
		panic(err)
	}
	return d
}

func newFieldSpec(index, offset int, decl FieldDecl) (FieldSpec, error) {
	if decl.Name == "" {
		return FieldSpec{}, fmt.Errorf("field %d: %w", index, ErrInvalidFieldName)
	}
	if err := decl.Type.Validate(); err != nil {
		return FieldSpec{}, fmt.Errorf("field %s: %w", decl.Name, err)
	}
	if len(decl.errs) > 0 {
		return FieldSpec{}, fmt.Errorf("field %s: %w", decl.Name, errors.Join(decl.errs...))
	}

	spec := FieldSpec{
		Index:       index,
		Name:        decl.Name,
		DisplayName: decl.DisplayName,
		Type:        decl.Type,
		Offset:      offset,
		Default:     ZeroValue(decl.Type),
		Min:         MinValue(decl.Type),
		Max:         MaxValue(decl.Type),
	}
	if spec.DisplayName == "" {
		spec.DisplayName = decl.Name
	}

	for _, o := range []struct {
		attr   string
		v      Value
		dst    *Value
		custom *bool
	}{
		{"default", decl.Default, &spec.Default, nil},
		{"min", decl.Min, &spec.Min, &spec.customMin},
		{"max", decl.Max, &spec.Max, &spec.customMax},
	} {
		if !o.v.IsValid() {
			continue
		}
		if err := o.v.expect(decl.Type); err != nil {
			return FieldSpec{}, fmt.Errorf("field %s %s: %w", decl.Name, o.attr, err)
		}
		*o.dst = o.v
		if o.custom != nil {
			*o.custom = true
		}
	}

	if spec.Min.Compare(spec.Max) > 0 {
		return FieldSpec{}, fmt.Errorf("field %s: %w: %s > %s", decl.Name, ErrInvalidBounds, spec.Min, spec.Max)
	}
	return spec, nil
}

// walk builds a buffer by writing the value chosen by pick for every field at
// the field's own offset.
func (d *Descriptor) walk(pick func(*FieldSpec) Value) []byte {
	buf := make([]byte, d.width)
	for i := range d.fields {
		f := &d.fields[i]
		copy(buf[f.Offset:f.End()], pick(f).raw)
	}
	return buf
}

func (d *Descriptor) fill(b byte) []byte {
	buf := make([]byte, d.width)
	for i := range buf {
		buf[i] = b
	}
	return buf
}

// Name returns the key type name.
func (d *Descriptor) Name() string { return d.name }

// Width returns the total size of an encoded key in bytes.
func (d *Descriptor) Width() int { return d.width }

// NumFields returns the number of fields.
func (d *Descriptor) NumFields() int { return len(d.fields) }

// Field returns the i'th field. It panics if i is out of range.
func (d *Descriptor) Field(i int) FieldSpec { return d.fields[i] }

// Fields returns a copy of the field table in declaration order.
func (d *Descriptor) Fields() []FieldSpec {
	return append([]FieldSpec(nil), d.fields...)
}

// Lookup returns the field with the given storage name.
func (d *Descriptor) Lookup(name string) (FieldSpec, bool) {
	i, ok := d.index[name]
	if !ok {
		return FieldSpec{}, false
	}
	return d.fields[i], true
}

// FieldSizes returns the widths of the fields in declaration order.
func (d *Descriptor) FieldSizes() []int {
	return append([]int(nil), d.sizes...)
}

// HasCustomBounds reports whether any field declares its own minimum or
// maximum. When none does, MinKey and MaxKey are plain zero and 0xFF fills.
func (d *Descriptor) HasCustomBounds() bool { return d.customBounds }
