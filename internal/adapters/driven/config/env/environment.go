// Package env provides the process environment, with values from a .env file
// beneath it.
package env

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"

	"github.com/custodia-labs/paperqa/internal/core/domain"
	"github.com/custodia-labs/paperqa/internal/core/ports/driven"
)

// DefaultDotEnv is the file read from the working directory.
const DefaultDotEnv = ".env"

// Ensure Environment implements the interface.
var _ driven.Environment = (*Environment)(nil)

// Environment looks keys up in the process environment first and then in
// the parsed .env values. The process environment is never modified.
type Environment struct {
	dotenv map[string]string
	lookup func(string) (string, bool)
}

// New reads the given .env files. Missing files are skipped; a file that
// exists but cannot be parsed is an error. Earlier files win over later ones.
func New(paths ...string) (*Environment, error) {
	values := make(map[string]string)
	for _, path := range paths {
		parsed, err := godotenv.Read(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("%w: read %s: %v", domain.ErrConfig, path, err)
		}
		for k, v := range parsed {
			if _, ok := values[k]; !ok {
				values[k] = v
			}
		}
	}

	return &Environment{dotenv: values, lookup: os.LookupEnv}, nil
}

// FromMap returns an Environment backed only by values.
func FromMap(values map[string]string) *Environment {
	return &Environment{
		dotenv: values,
		lookup: func(string) (string, bool) { return "", false },
	}
}

// Lookup returns the value of key and whether it is set.
// An empty process variable counts as set.
func (e *Environment) Lookup(key string) (string, bool) {
	if v, ok := e.lookup(key); ok {
		return v, true
	}
	v, ok := e.dotenv[key]
	return v, ok
}
