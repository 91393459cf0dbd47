package surface

import (
	"sort"

	"github.com/jward/surface/internal/sem"
)

// ImportKind classifies how an export is consumed by an importer.
type ImportKind string

const (
	ImportDefault   ImportKind = "default"
	ImportNamed     ImportKind = "named"
	ImportNamespace ImportKind = "namespace"
	ImportEquals    ImportKind = "export-equals" // legacy single-value modules
)

// ExportRecord is one reachable export of one module, alias chains resolved.
type ExportRecord struct {
	FileID   int64      `json:"-"`
	File     string     `json:"file"`
	Name     string     `json:"name"`
	Kind     ImportKind `json:"kind"`
	IsValue  bool       `json:"isValue"` // false ⇒ type-only
	SymbolID int64      `json:"-"`
	ViaFile  string     `json:"viaFile,omitempty"` // re-export provenance
}

// valueDeclKinds are the declaration kinds that exist at runtime.
var valueDeclKinds = map[sem.DeclKind]bool{
	sem.DeclFunction:   true,
	sem.DeclClass:      true,
	sem.DeclEnum:       true,
	sem.DeclEnumMember: true,
	sem.DeclVariable:   true,
	sem.DeclMethod:     true,
	sem.DeclAccessor:   true,
	sem.DeclProperty:   true,
}

// ListExports enumerates every export of every in-project module, resolved
// through alias chains, classified by import kind and runtime-value-ness, and
// deduplicated by (module, name, kind, value-ness). Results are ordered by
// file path then export name.
func (e *Engine) ListExports() []ExportRecord {
	type dedupKey struct {
		fileID  int64
		name    string
		kind    ImportKind
		isValue bool
	}
	seen := make(map[dedupKey]bool)
	var out []ExportRecord

	for _, f := range e.snap.Files() {
		if f.External {
			continue
		}
		for _, exp := range e.snap.Exports(f.ID) {
			sym := e.resolveAlias(e.snap.Symbol(exp.SymbolID))
			if sym == nil {
				e.log.Debug("export with unresolved symbol", "file", f.Path, "name", exp.Name)
				continue
			}

			rec := ExportRecord{
				FileID:   f.ID,
				File:     f.Path,
				Name:     exp.Name,
				Kind:     classifyImportKind(exp),
				IsValue:  exp.Wildcard || e.symbolIsValue(sym),
				SymbolID: sym.ID,
			}
			if exp.FromFileID != 0 {
				if via := e.snap.File(exp.FromFileID); via != nil {
					rec.ViaFile = via.Path
				}
			}

			key := dedupKey{rec.FileID, rec.Name, rec.Kind, rec.IsValue}
			if seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, rec)
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].File != out[j].File {
			return out[i].File < out[j].File
		}
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].Kind < out[j].Kind
	})
	return out
}

func classifyImportKind(exp sem.Export) ImportKind {
	switch {
	case exp.Equals:
		return ImportEquals
	case exp.Name == "default":
		return ImportDefault
	case exp.Wildcard:
		return ImportNamespace
	default:
		return ImportNamed
	}
}

// symbolIsValue reports whether a symbol exists at runtime, by inspecting its
// declaration kinds. Pure type constructs (interfaces, type aliases, type-only
// namespaces) are not values; a namespace counts as a value when it encloses
// at least one value declaration.
func (e *Engine) symbolIsValue(sym *sem.Symbol) bool {
	for _, d := range e.snap.DeclarationsOf(sym) {
		if valueDeclKinds[d.Kind] {
			return true
		}
		if d.Kind == sem.DeclModule && e.moduleHasValues(d, 0) {
			return true
		}
	}
	return false
}

func (e *Engine) moduleHasValues(mod *sem.Declaration, depth int) bool {
	if depth > e.maxDepth {
		return false
	}
	for _, child := range e.snap.Children(mod) {
		if valueDeclKinds[child.Kind] {
			return true
		}
		if child.Kind == sem.DeclModule && e.moduleHasValues(child, depth+1) {
			return true
		}
	}
	return false
}
