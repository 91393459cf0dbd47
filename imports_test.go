package surface

import (
	"testing"

	"github.com/jward/surface/internal/sem"
	"github.com/stretchr/testify/assert"
)

func TestMakeImportStatement_Forms(t *testing.T) {
	t.Parallel()
	snap := sem.NewSnapshot()
	clientSym := snap.AddSymbol(&sem.Symbol{Name: "Client"})
	e := New(snap)

	tests := []struct {
		name string
		rec  ExportRecord
		want string
	}{
		{
			name: "named value",
			rec:  ExportRecord{File: "src/foo/bar.ts", Name: "Thing", Kind: ImportNamed, IsValue: true},
			want: `import { Thing } from "./foo/bar";`,
		},
		{
			name: "named type-only",
			rec:  ExportRecord{File: "src/foo/bar.ts", Name: "Config", Kind: ImportNamed, IsValue: false},
			want: `import type { Config } from "./foo/bar";`,
		},
		{
			name: "default binds the symbol name",
			rec:  ExportRecord{File: "src/index.ts", Name: "default", Kind: ImportDefault, IsValue: true, SymbolID: clientSym},
			want: `import Client from ".";`,
		},
		{
			name: "namespace re-export",
			rec:  ExportRecord{File: "src/index.ts", Name: "utils", Kind: ImportNamespace, IsValue: true},
			want: `import { utils } from ".";`,
		},
		{
			name: "export equals",
			rec:  ExportRecord{File: "src/legacy.ts", Name: "legacy", Kind: ImportEquals, IsValue: true},
			want: `import legacy = require("./legacy");`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, e.MakeImportStatement(tt.rec, ""))
		})
	}
}

func TestMakeImportStatement_PackageRelative(t *testing.T) {
	t.Parallel()
	e := New(sem.NewSnapshot(), WithPackageName("@acme/sdk"))

	rec := ExportRecord{File: "src/index.ts", Name: "Client", Kind: ImportNamed, IsValue: true}
	assert.Equal(t, `import { Client } from "@acme/sdk";`, e.MakeImportStatement(rec, "@acme/sdk"))

	rec.File = "src/foo/bar.ts"
	assert.Equal(t, `import { Client } from "@acme/sdk/foo/bar";`, e.MakeImportStatement(rec, "@acme/sdk"))
}

func TestMakeImportStatement_DefaultNameFallsBackToPackage(t *testing.T) {
	t.Parallel()
	e := New(sem.NewSnapshot(), WithPackageName("@acme/sdk"))
	rec := ExportRecord{File: "src/index.ts", Name: "default", Kind: ImportDefault, IsValue: true}
	assert.Equal(t, `import sdk from "@acme/sdk";`, e.MakeImportStatement(rec, "@acme/sdk"))
}

func TestImportSpecifier(t *testing.T) {
	t.Parallel()
	e := New(sem.NewSnapshot())

	// Extension and trailing index segment stripped, "src" treated as root.
	assert.Equal(t, ".", e.importSpecifier("src/index.ts", ""))
	assert.Equal(t, "./foo", e.importSpecifier("src/foo/index.ts", ""))
	assert.Equal(t, "./foo/bar", e.importSpecifier("src/foo/bar.d.ts", ""))
	assert.Equal(t, "./util", e.importSpecifier("util.mjs", ""))

	// Files outside the source root keep their path.
	assert.Equal(t, "./scripts/gen", e.importSpecifier("scripts/gen.ts", ""))
}

func TestImportSpecifier_RootDirWins(t *testing.T) {
	t.Parallel()
	e := New(sem.NewSnapshot(), WithRootDir("lib"))
	assert.Equal(t, "./x", e.importSpecifier("lib/x.ts", ""))
	assert.Equal(t, ".", e.importSpecifier("lib/index.ts", ""))
}

func TestSanitizeIdent(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "mypkg", sanitizeIdent("my-pkg"))
	assert.Equal(t, "_123abc", sanitizeIdent("123abc"))
	assert.Equal(t, "mod", sanitizeIdent("@#!"))
}
