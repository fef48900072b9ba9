// Package manifest loads fetcher sources from declarative YAML
// documents. Producers are either referenced by name out of a
// host-supplied registry, or written inline as expr/CEL expressions:
//
//	keys:
//	  profile:
//	    - producer: load_profile
//	  accountId:
//	    - deps: [account]
//	      expr: account.id
//	    - deps: [profile]
//	      cel: profile.accountId
package manifest

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	fetcher "github.com/fetcher-fn/fetcher-go"
	"github.com/fetcher-fn/fetcher-go/celfn"
	"github.com/fetcher-fn/fetcher-go/exprfn"
)

// Registry maps producer names referenced by a manifest to
// implementations supplied by the host program.
type Registry map[string]fetcher.Producer

// File is the document shape.
type File struct {
	Keys map[string][]PathDecl `yaml:"keys"`
}

// PathDecl declares one derivation path. Exactly one of Producer, Expr
// or CEL must be set.
type PathDecl struct {
	Deps     []string `yaml:"deps"`
	Producer string   `yaml:"producer"`
	Expr     string   `yaml:"expr"`
	CEL      string   `yaml:"cel"`
}

// Parse decodes YAML bytes and binds named producers from reg into a
// fetcher.Source, ready for fetcher.New.
func Parse(data []byte, reg Registry) (fetcher.Source, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("manifest: document is empty")
	}
	var file File
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("manifest: decode: %w", err)
	}
	if len(file.Keys) == 0 {
		return nil, fmt.Errorf("manifest: no keys declared")
	}

	src := make(fetcher.Source, len(file.Keys))
	for name, decls := range file.Keys {
		if len(decls) == 0 {
			return nil, fmt.Errorf("manifest: %s: needs at least one path", name)
		}
		paths := make([]fetcher.Path, 0, len(decls))
		for i, decl := range decls {
			p, err := decl.bind(reg)
			if err != nil {
				return nil, fmt.Errorf("manifest: %s[%d]: %w", name, i, err)
			}
			paths = append(paths, p)
		}
		src[fetcher.Key(name)] = paths
	}
	return src, nil
}

// Load reads a manifest from r.
func Load(r io.Reader, reg Registry) (fetcher.Source, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("manifest: read: %w", err)
	}
	return Parse(data, reg)
}

// LoadFile loads a manifest from an explicit file path.
func LoadFile(path string, reg Registry) (fetcher.Source, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("manifest: read %s: %w", path, err)
	}
	src, err := Parse(data, reg)
	if err != nil {
		return nil, fmt.Errorf("manifest: %s: %w", path, err)
	}
	return src, nil
}

func (d PathDecl) bind(reg Registry) (fetcher.Path, error) {
	deps := make([]fetcher.Key, len(d.Deps))
	for i, dep := range d.Deps {
		deps[i] = fetcher.Key(dep)
	}

	declared := 0
	for _, set := range []bool{d.Producer != "", d.Expr != "", d.CEL != ""} {
		if set {
			declared++
		}
	}
	if declared != 1 {
		return fetcher.Path{}, fmt.Errorf("exactly one of producer, expr or cel must be set")
	}

	switch {
	case d.Producer != "":
		producer, ok := reg[d.Producer]
		if !ok {
			return fetcher.Path{}, fmt.Errorf("producer %q is not registered", d.Producer)
		}
		return fetcher.Path{Deps: deps, Producer: producer}, nil
	case d.Expr != "":
		return exprfn.Path(d.Expr, deps...)
	default:
		return celfn.Path(d.CEL, deps...)
	}
}
