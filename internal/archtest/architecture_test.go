// Package archtest holds whole-module architecture guards: tests that
// load every package's import graph and assert on it, rather than on
// any single package's behavior.
package archtest

import (
	"sort"
	"strings"
	"testing"

	"golang.org/x/tools/go/packages"
)

// TestCoreStoreHasNoOutwardDependencies ensures pkg/store, the pure
// record algebra, never imports the observer harness or any snapshot
// adapter. Those layers depend on the core; the core must never
// depend back on them, or a circular or load-bearing dependency on
// infrastructure would creep into the one package every other package
// in this module relies on.
func TestCoreStoreHasNoOutwardDependencies(t *testing.T) {
	corePkg := "dohmane/pkg/store"
	forbiddenPrefixes := []string{
		"dohmane/internal/harness",
		"dohmane/internal/adapters",
	}

	cfg := &packages.Config{Mode: packages.NeedName | packages.NeedImports, Tests: true}
	pkgs, err := packages.Load(cfg, "dohmane/...")
	if err != nil {
		t.Fatalf("load packages: %v", err)
	}

	var violations []string
	for _, pkg := range pkgs {
		if pkg.PkgPath != corePkg && !strings.HasPrefix(pkg.PkgPath, corePkg+"_test") {
			continue
		}
		for importPath := range pkg.Imports {
			if isForbidden(importPath, forbiddenPrefixes) {
				violations = append(violations, pkg.PkgPath+": "+importPath)
			}
		}
	}

	if len(violations) > 0 {
		sort.Strings(violations)
		for _, v := range violations {
			t.Errorf("forbidden outward import from core store: %s", v)
		}
	}
}

// TestAdaptersDoNotImportEachOther ensures the three snapshot adapters
// stay independent: nothing in sqlite imports postgres or blob, and so
// on. Each adapter is a standalone binding of the wire format to one
// backend; cross-adapter imports would mean a dependency leaked from
// one storage technology into another for no reason pkg/store needs.
func TestAdaptersDoNotImportEachOther(t *testing.T) {
	adapterPkgs := []string{
		"dohmane/internal/adapters/snapshot/sqlite",
		"dohmane/internal/adapters/snapshot/postgres",
		"dohmane/internal/adapters/snapshot/blob",
	}

	cfg := &packages.Config{Mode: packages.NeedName | packages.NeedImports, Tests: true}
	pkgs, err := packages.Load(cfg, "dohmane/...")
	if err != nil {
		t.Fatalf("load packages: %v", err)
	}
	byPath := make(map[string]*packages.Package, len(pkgs))
	for _, pkg := range pkgs {
		byPath[pkg.PkgPath] = pkg
	}

	var violations []string
	for _, self := range adapterPkgs {
		pkg, ok := byPath[self]
		if !ok {
			continue
		}
		for importPath := range pkg.Imports {
			for _, other := range adapterPkgs {
				if other != self && importPath == other {
					violations = append(violations, self+" -> "+other)
				}
			}
		}
	}

	if len(violations) > 0 {
		sort.Strings(violations)
		for _, v := range violations {
			t.Errorf("unexpected cross-adapter import: %s", v)
		}
	}
}

func isForbidden(importPath string, prefixes []string) bool {
	for _, prefix := range prefixes {
		if importPath == prefix || strings.HasPrefix(importPath, prefix+"/") {
			return true
		}
	}
	return false
}
