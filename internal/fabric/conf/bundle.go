package conf

import (
	"fmt"
	"time"

	"github.com/yndnr/fabmesh-go/internal/core/domain"
)

// Bundle is one parsed configuration: the field table it was parsed with, a
// copy of the configuration-section prefix, and the typed values. A bundle
// is released as one unit; its layout is fully determined by its table.
type Bundle struct {
	table    []Field
	prefix   string
	values   map[string]any
	released bool
}

// Read parses a field table into a Bundle.
//
// Every field is initialized from its default literal, then overridden by
// the sources in order (last match wins). When envPrefix is non-empty an
// environment source over ENVPREFIX+CFGPREFIX+NAME variables is consulted
// first. On any failure no bundle escapes: the error is propagated and the
// partial bundle is discarded.
func Read(table []Field, envPrefix, cfgPrefix string, sources ...Source) (*Bundle, error) {
	all := make([]Source, 0, len(sources)+1)
	if envPrefix != "" {
		es, err := NewEnvSource(envPrefix)
		if err != nil {
			return nil, err
		}
		all = append(all, es)
	}
	all = append(all, sources...)

	b := &Bundle{
		table:  table,
		prefix: cfgPrefix,
		values: make(map[string]any, len(table)),
	}

	for _, f := range table {
		raw := f.Default
		for _, src := range all {
			if v, ok := src.Lookup(cfgPrefix, f.Name); ok {
				raw = v
			}
		}

		v, err := f.parseValue(raw)
		if err != nil {
			b.Release()
			return nil, parseErr(cfgPrefix, f.Name, err)
		}
		b.values[f.Name] = v
	}

	return b, nil
}

// Prefix returns the configuration-section prefix the bundle was parsed with.
func (b *Bundle) Prefix() string {
	return b.prefix
}

// Fields returns the bundle's field table. The table is shared, not copied;
// callers must not modify it.
func (b *Bundle) Fields() []Field {
	return b.table
}

// Get returns the named option's value in its canonical string form.
// An unknown name fails with a lookup error, distinct from parse failures.
func (b *Bundle) Get(name string) (string, error) {
	if b.released {
		return "", domain.ErrBundleReleased
	}

	f, ok := findField(b.table, name)
	if !ok {
		return "", domain.ErrOptionNotFound.WithDetails(b.prefix + name)
	}
	return f.formatValue(b.values[name]), nil
}

// Set parses value per the named field's type tag and stores it.
func (b *Bundle) Set(name, value string) error {
	if b.released {
		return domain.ErrBundleReleased
	}

	f, ok := findField(b.table, name)
	if !ok {
		return domain.ErrOptionNotFound.WithDetails(b.prefix + name)
	}

	v, err := f.parseValue(value)
	if err != nil {
		return parseErr(b.prefix, name, err)
	}
	b.values[name] = v
	return nil
}

// Release invalidates the bundle. Any later access fails with
// ErrBundleReleased.
func (b *Bundle) Release() {
	b.values = nil
	b.released = true
}

// typed returns the parsed value for name, checking the field's type tag.
func (b *Bundle) typed(name string, want Type) (any, error) {
	if b.released {
		return nil, domain.ErrBundleReleased
	}

	f, ok := findField(b.table, name)
	if !ok {
		return nil, domain.ErrOptionNotFound.WithDetails(b.prefix + name)
	}
	if f.Type != want {
		return nil, domain.ErrInvalidParam.WithDetails(
			fmt.Sprintf("option %s%s is %s, not %s", b.prefix, name, f.Type, want))
	}
	return b.values[name], nil
}

// Uint returns a TypeUint option's value.
func (b *Bundle) Uint(name string) (uint64, error) {
	v, err := b.typed(name, TypeUint)
	if err != nil {
		return 0, err
	}
	return v.(uint64), nil
}

// Bool returns a TypeBool option's value.
func (b *Bundle) Bool(name string) (bool, error) {
	v, err := b.typed(name, TypeBool)
	if err != nil {
		return false, err
	}
	return v.(bool), nil
}

// Duration returns a TypeTime option's value.
func (b *Bundle) Duration(name string) (time.Duration, error) {
	v, err := b.typed(name, TypeTime)
	if err != nil {
		return 0, err
	}
	return v.(time.Duration), nil
}

// Str returns a TypeString option's value.
func (b *Bundle) Str(name string) (string, error) {
	v, err := b.typed(name, TypeString)
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

// Bits returns a TypeBits option's mask.
func (b *Bundle) Bits(name string) (uint64, error) {
	v, err := b.typed(name, TypeBits)
	if err != nil {
		return 0, err
	}
	return v.(uint64), nil
}
