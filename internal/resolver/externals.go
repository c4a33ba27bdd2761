package resolver

import (
	"os"

	"github.com/pelletier/go-toml/v2"
)

// Declarations is the parsed form of a project's fastdeps.toml. It
// lets a project name third-party dependencies up front (so they are
// classified external even when a same-named directory exists) and
// extend the bundled standard-library set.
type Declarations struct {
	Modules struct {
		External []string `toml:"external"`
		Stdlib   []string `toml:"stdlib"`
	} `toml:"modules"`
}

// LoadDeclarations reads a fastdeps.toml declarations file. A missing
// file yields empty declarations, not an error.
func LoadDeclarations(path string) (*Declarations, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Declarations{}, nil
		}
		return nil, err
	}

	var decls Declarations
	if err := toml.Unmarshal(data, &decls); err != nil {
		return nil, err
	}
	return &decls, nil
}
