package config

import (
	"embed"
	"os"
	"path"
	"path/filepath"

	"github.com/YuminosukeSato/preflearn/pkg/errors"
)

// BasePath is the fixed location of the shipped default resources.
const BasePath = "resources/default"

//go:embed resources/default/*.json
var defaultResources embed.FS

// ResourceLoader returns the raw bytes of a named default resource.
type ResourceLoader interface {
	Load(name string) ([]byte, error)
}

// EmbeddedLoader reads the resources compiled into the binary.
type EmbeddedLoader struct{}

// Load implements ResourceLoader.
func (EmbeddedLoader) Load(name string) ([]byte, error) {
	data, err := defaultResources.ReadFile(path.Join(BasePath, name))
	if err != nil {
		return nil, errors.Wrapf(err, "config: embedded resource %s", name)
	}
	return data, nil
}

// DirLoader reads resources of the same names from a directory on disk.
type DirLoader struct {
	Dir string
}

// Load implements ResourceLoader.
func (l DirLoader) Load(name string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(l.Dir, filepath.Base(name)))
	if err != nil {
		return nil, errors.Wrapf(err, "config: resource %s in %s", name, l.Dir)
	}
	return data, nil
}

// MapLoader serves resources from memory. Useful for tests.
type MapLoader map[string][]byte

// Load implements ResourceLoader.
func (m MapLoader) Load(name string) ([]byte, error) {
	data, ok := m[name]
	if !ok {
		return nil, errors.Newf("config: no resource named %s", name)
	}
	return data, nil
}

// LoaderFor returns a DirLoader when dir is set and the embedded loader otherwise.
func LoaderFor(dir string) ResourceLoader {
	if dir == "" {
		return EmbeddedLoader{}
	}
	return DirLoader{Dir: dir}
}
