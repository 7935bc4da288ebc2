// Package assemble turns command-line package specifiers, or the wildcard,
// into the ordered package set of a run
package assemble

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/cratesweep/cratesweep/pkg/types"
)

// specPattern is name[=version] with optional surrounding whitespace.
// Neither token may contain '=' or whitespace.
var specPattern = regexp.MustCompile(`^\s*([^=\s]+)\s*(?:=\s*([^=\s]+))?\s*$`)

// metadataSuffix marks index files that describe the index, not a package
const metadataSuffix = ".json"

// Result is an assembled package set plus the specifiers that were rejected
type Result struct {
	Packages types.PackageSet
	Rejected []*types.ParseError
}

// Assembler builds package sets against one index root
type Assembler struct {
	indexRoot string
}

// New creates an assembler that enumerates indexRoot for the wildcard
func New(indexRoot string) *Assembler {
	return &Assembler{indexRoot: indexRoot}
}

// Assemble parses specs in order. If any spec is the wildcard, the other
// specs are ignored and the whole index is enumerated instead. Malformed
// specs are reported in Result.Rejected; the only error returned is a
// *types.SetupError when the index cannot be read.
func (a *Assembler) Assemble(specs []string) (Result, error) {
	for _, s := range specs {
		if strings.TrimSpace(s) == types.WildcardSpec {
			pkgs, err := a.enumerate()
			if err != nil {
				return Result{}, types.NewSetupError("enumerate index", err)
			}
			return Result{Packages: pkgs}, nil
		}
	}

	var res Result
	res.Packages = make(types.PackageSet, 0, len(specs))
	for _, s := range specs {
		id, err := ParseSpec(s)
		if err != nil {
			res.Rejected = append(res.Rejected, err)
			continue
		}
		res.Packages = append(res.Packages, id)
	}
	return res, nil
}

// ParseSpec parses a single name[=version] specifier
func ParseSpec(spec string) (types.PackageID, *types.ParseError) {
	m := specPattern.FindStringSubmatch(spec)
	if m == nil {
		return types.PackageID{}, &types.ParseError{Spec: spec}
	}
	return types.PackageID{Name: m[1], Version: m[2]}, nil
}

// enumerate walks the index in lexical order. Hidden and metadata entries
// are skipped, and skipping a directory prunes its whole subtree.
func (a *Assembler) enumerate() (types.PackageSet, error) {
	info, err := os.Stat(a.indexRoot)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("index root %s is not a directory", a.indexRoot)
	}

	var pkgs types.PackageSet
	err = filepath.WalkDir(a.indexRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path != a.indexRoot && excluded(d.Name()) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.Type().IsRegular() {
			pkgs = append(pkgs, types.PackageID{Name: d.Name()})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return pkgs, nil
}

func excluded(name string) bool {
	return strings.HasPrefix(name, ".") || strings.HasSuffix(name, metadataSuffix)
}
