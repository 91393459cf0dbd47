package surface

import (
	"fmt"
	"path"
	"strings"
)

// sourceExtensions are stripped from module specifiers, longest first so
// declaration-file suffixes win over their plain counterparts.
var sourceExtensions = []string{
	".d.mts", ".d.cts", ".d.ts",
	".mts", ".cts", ".tsx", ".ts",
	".mjs", ".cjs", ".jsx", ".js",
}

// MakeImportStatement renders a valid import statement for an export record.
// With a package name the specifier is package-relative; otherwise it is a
// relative specifier from the package root. The syntax follows the record's
// import kind, with a type-only variant for named type exports.
func (e *Engine) MakeImportStatement(rec ExportRecord, packageName string) string {
	spec := e.importSpecifier(rec.File, packageName)
	name := e.localName(rec)

	switch rec.Kind {
	case ImportDefault:
		return fmt.Sprintf("import %s from %q;", name, spec)
	case ImportNamespace:
		// Wildcard re-exports surface as a named binding of the namespace.
		return fmt.Sprintf("import { %s } from %q;", rec.Name, spec)
	case ImportEquals:
		return fmt.Sprintf("import %s = require(%q);", name, spec)
	default:
		if !rec.IsValue {
			return fmt.Sprintf("import type { %s } from %q;", rec.Name, spec)
		}
		return fmt.Sprintf("import { %s } from %q;", rec.Name, spec)
	}
}

// importSpecifier computes the module specifier for a file: extensions and a
// trailing index segment stripped, made relative to the most specific
// applicable root among the configured root directory, the conventional
// source directory, and the package root.
func (e *Engine) importSpecifier(file, packageName string) string {
	p := stripSourceExtension(path.Clean(file))
	if path.Base(p) == "index" {
		p = path.Dir(p)
		if p == "." {
			p = ""
		}
	}

	for _, root := range []string{e.rootDir, "src"} {
		if root == "" {
			continue
		}
		root = strings.Trim(path.Clean(root), "/")
		if p == root {
			p = ""
			break
		}
		if strings.HasPrefix(p, root+"/") {
			p = strings.TrimPrefix(p, root+"/")
			break
		}
	}

	if packageName != "" {
		if p == "" {
			return packageName
		}
		return packageName + "/" + p
	}
	if p == "" {
		return "."
	}
	return "./" + p
}

func stripSourceExtension(p string) string {
	for _, ext := range sourceExtensions {
		if strings.HasSuffix(p, ext) {
			return strings.TrimSuffix(p, ext)
		}
	}
	return p
}

// localName picks the binding name for import forms that need one. Default
// and export= records bind the underlying symbol's name when it has one,
// falling back to the package or file base name.
func (e *Engine) localName(rec ExportRecord) string {
	if rec.Name != "" && rec.Name != "default" {
		return rec.Name
	}
	if sym := e.snap.Symbol(rec.SymbolID); sym != nil && sym.Name != "" && sym.Name != "default" {
		return sym.Name
	}
	if e.packageName != "" {
		return sanitizeIdent(path.Base(e.packageName))
	}
	return sanitizeIdent(path.Base(stripSourceExtension(rec.File)))
}

// sanitizeIdent folds a file or package name into a plausible identifier.
func sanitizeIdent(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '$':
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return "mod"
	}
	s := b.String()
	if s[0] >= '0' && s[0] <= '9' {
		s = "_" + s
	}
	return s
}
