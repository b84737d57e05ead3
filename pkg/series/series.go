package series

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mikesmitty/covid-charts/pkg/parse"
	"github.com/spf13/viper"
)

var ErrMissingField = errors.New("missing series field")

// Source looks up the comma separated content of a named field such as
// "daily-cases".
type Source interface {
	Lookup(key string) (string, bool)
}

// Fields is an in-memory Source.
type Fields map[string]string

func (f Fields) Lookup(key string) (string, bool) {
	v, ok := f[key]
	return v, ok
}

// File is a Source backed by a YAML, JSON or TOML document mapping field
// names to comma separated values.
type File struct {
	v *viper.Viper
}

func LoadFile(path string) (*File, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading series file %s: %w", path, err)
	}
	return &File{v: v}, nil
}

func (f *File) Lookup(key string) (string, bool) {
	if !f.v.IsSet(key) {
		return "", false
	}
	raw := f.v.Get(key)
	if list, ok := raw.([]any); ok {
		values := make([]string, len(list))
		for i := range list {
			values[i] = fmt.Sprint(list[i])
		}
		return strings.Join(values, ","), true
	}
	return f.v.GetString(key), true
}

// Values returns the raw values of a field.
func Values(src Source, key string) ([]string, error) {
	field, ok := src.Lookup(key)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingField, key)
	}
	return parse.Split(field), nil
}

// Set holds the three fields that make up one chart type.
type Set struct {
	Cases  []string
	Deaths []string
	Labels []string
}

// Load reads "<kind>-cases", "<kind>-deaths" and "<kind>-labels".
func Load(src Source, kind string) (Set, error) {
	var s Set
	var err error
	if s.Cases, err = Values(src, kind+"-cases"); err != nil {
		return Set{}, err
	}
	if s.Deaths, err = Values(src, kind+"-deaths"); err != nil {
		return Set{}, err
	}
	if s.Labels, err = Values(src, kind+"-labels"); err != nil {
		return Set{}, err
	}
	return s, nil
}
