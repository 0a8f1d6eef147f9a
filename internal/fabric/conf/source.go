package conf

import (
	"fmt"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Source resolves raw option strings. Precedence between sources is the
// caller's concern: Read consults sources in order and the last match wins.
type Source interface {
	// Lookup returns the raw value for an option, given the table's
	// configuration-section prefix and the option name.
	Lookup(cfgPrefix, name string) (string, bool)
}

// EnvSource resolves options from environment variables named
// ENVPREFIX + CFGPREFIX + NAME (e.g. FABMESH_LOOP_RCACHE_OVERHEAD).
type EnvSource struct {
	k *koanf.Koanf
}

// NewEnvSource snapshots the environment under the given variable prefix.
func NewEnvSource(prefix string) (*EnvSource, error) {
	k := koanf.New(".")

	// Keep variable names verbatim after stripping the prefix; option names
	// never contain the koanf path delimiter.
	trim := func(s string) string {
		return strings.TrimPrefix(s, prefix)
	}

	if err := k.Load(env.Provider(prefix, ".", trim), nil); err != nil {
		return nil, fmt.Errorf("load env %s*: %w", prefix, err)
	}
	return &EnvSource{k: k}, nil
}

// Lookup implements Source.
func (s *EnvSource) Lookup(cfgPrefix, name string) (string, bool) {
	key := cfgPrefix + name
	if !s.k.Exists(key) {
		return "", false
	}
	return s.k.String(key), true
}

// FileSource resolves options from a YAML file. An option PREFIX_NAME maps
// to the path "prefix.name" (lowercased, prefix trailing underscore
// dropped), so a table with prefix "LOOP_" reads from:
//
//	loop:
//	  rcache_overhead: 120ns
type FileSource struct {
	k *koanf.Koanf
}

// NewFileSource loads a YAML configuration file.
func NewFileSource(path string) (*FileSource, error) {
	k := koanf.New(".")
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("load file %s: %w", path, err)
	}
	return &FileSource{k: k}, nil
}

// Lookup implements Source.
func (s *FileSource) Lookup(cfgPrefix, name string) (string, bool) {
	section := strings.ToLower(strings.TrimSuffix(cfgPrefix, "_"))
	path := strings.ToLower(name)
	if section != "" {
		path = section + "." + path
	}

	if !s.k.Exists(path) {
		return "", false
	}
	return s.k.String(path), true
}

// MapSource resolves options from a literal map, keyed by CFGPREFIX + NAME.
// Useful for tests and programmatic overrides.
type MapSource map[string]string

// Lookup implements Source.
func (s MapSource) Lookup(cfgPrefix, name string) (string, bool) {
	v, ok := s[cfgPrefix+name]
	return v, ok
}
