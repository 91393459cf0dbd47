package surface

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"

	"github.com/jward/surface/internal/sem"
)

// ContainerLink is one hop of a declaration's enclosing container chain.
type ContainerLink struct {
	Kind sem.DeclKind `json:"kind"`
	Name string       `json:"name"`
}

// ExportHint records one module export that resolves to the identified
// declaration, letting consumers find a usable import without re-running the
// export catalog.
type ExportHint struct {
	Module     string `json:"module"`
	ExportName string `json:"exportName"`
}

// StableID is a content-derived identity for a declaration. It survives
// formatting changes, body edits, and unrelated sibling edits: every field is
// computed from the declaration's own normalized header and its container
// chain. Two declarations are the same identity iff all fields match.
type StableID struct {
	File          string          `json:"file"` // project-relative
	Kind          sem.DeclKind    `json:"kind"`
	Name          string          `json:"name"`
	Containers    []ContainerLink `json:"containers,omitempty"` // outer → inner
	HeaderHash    string          `json:"headerHash"`
	OverloadIndex int             `json:"overloadIndex"`
	ExportHints   []ExportHint    `json:"exportHints,omitempty"`
}

// Hash returns the ID's derived content hash. Identical fields produce an
// identical hash. ExportHints are advisory and excluded.
func (id *StableID) Hash() string {
	h := sha256.New()
	fmt.Fprintf(h, "file:%s\n", id.File)
	fmt.Fprintf(h, "kind:%s\n", id.Kind)
	fmt.Fprintf(h, "name:%s\n", id.Name)
	for _, c := range id.Containers {
		fmt.Fprintf(h, "container:%s:%s\n", c.Kind, c.Name)
	}
	fmt.Fprintf(h, "header:%s\n", id.HeaderHash)
	fmt.Fprintf(h, "overload:%d\n", id.OverloadIndex)
	return hex.EncodeToString(h.Sum(nil))
}

// containerKinds are the declaration kinds that contribute to a container
// chain. Function bodies and blocks do not: identities are only built for
// declarations reachable from a module's surface.
var containerKinds = map[sem.DeclKind]bool{
	sem.DeclClass:     true,
	sem.DeclInterface: true,
	sem.DeclModule:    true,
	sem.DeclEnum:      true,
}

// idName returns the name a declaration contributes to identity fields.
// Constructors and call/construct/index signatures have no name node and use
// synthetic names so same-kind siblings can still be counted and ordered.
func idName(d *sem.Declaration) string {
	if d.Name != "" {
		return d.Name
	}
	switch d.Kind {
	case sem.DeclConstructor:
		return "constructor"
	case sem.DeclCallSignature:
		return "__call"
	case sem.DeclConstructSignature:
		return "__new"
	case sem.DeclIndexSignature:
		return "__index"
	}
	return ""
}

// BuildStableID computes the stable identity of a declaration. It returns
// (nil, nil) only when no symbol or declaration can be derived from the input
// at all — callers treat that as a loggable skip, not an error.
func (e *Engine) BuildStableID(d *sem.Declaration) (*StableID, error) {
	if d == nil {
		return nil, nil
	}
	f := e.snap.File(d.FileID)
	sym := e.snap.SymbolOf(d)
	if f == nil || sym == nil {
		e.log.Debug("stable id: no symbol for declaration", "decl", d.ID)
		return nil, nil
	}

	id := &StableID{
		File:       f.Path,
		Kind:       d.Kind,
		Name:       idName(d),
		Containers: e.containerChain(d),
		HeaderHash: hashHeader(e.normalizedHeader(d)),
	}
	id.OverloadIndex = e.overloadIndex(d)
	id.ExportHints = e.exportHints(sym, d)
	return id, nil
}

// containerChain walks the enclosing named containers outer→inner.
func (e *Engine) containerChain(d *sem.Declaration) []ContainerLink {
	var chain []ContainerLink
	for p := e.snap.Declaration(d.ParentID); p != nil; p = e.snap.Declaration(p.ParentID) {
		if containerKinds[p.Kind] && p.Name != "" {
			chain = append(chain, ContainerLink{Kind: p.Kind, Name: p.Name})
		}
	}
	// Reverse: collected inner→outer.
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain
}

// siblings returns the same-named, same-kind declarations sharing d's
// container, d included, in source order.
func (e *Engine) siblings(d *sem.Declaration) []*sem.Declaration {
	var pool []*sem.Declaration
	if d.ParentID != 0 {
		pool = e.snap.Children(e.snap.Declaration(d.ParentID))
	} else {
		for _, cand := range e.snap.DeclarationsInFile(d.FileID) {
			if cand.ParentID == 0 {
				pool = append(pool, cand)
			}
		}
	}
	name := idName(d)
	var out []*sem.Declaration
	for _, cand := range pool {
		if cand.Kind == d.Kind && idName(cand) == name {
			out = append(out, cand)
		}
	}
	return out
}

// overloadIndex disambiguates same-named, same-kind, same-container siblings:
// sort their normalized headers and take this declaration's position. 0 when
// the declaration has no such siblings.
func (e *Engine) overloadIndex(d *sem.Declaration) int {
	sibs := e.siblings(d)
	if len(sibs) < 2 {
		return 0
	}
	type entry struct {
		header string
		declID int64
	}
	entries := make([]entry, len(sibs))
	for i, s := range sibs {
		entries[i] = entry{header: e.normalizedHeader(s), declID: s.ID}
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].header != entries[j].header {
			return entries[i].header < entries[j].header
		}
		return entries[i].declID < entries[j].declID
	})
	for i, en := range entries {
		if en.declID == d.ID {
			return i
		}
	}
	return 0
}

// exportHints scans the export catalog for entries whose resolved symbol
// matches the declaration's symbol.
func (e *Engine) exportHints(sym *sem.Symbol, d *sem.Declaration) []ExportHint {
	target := e.resolveAlias(sym)
	var hints []ExportHint
	for _, rec := range e.ListExports() {
		if e.sameTarget(e.snap.Symbol(rec.SymbolID), target, d) {
			hints = append(hints, ExportHint{Module: rec.File, ExportName: rec.Name})
		}
	}
	return hints
}

// ResolveStableID finds the declaration an ID was built from. It first
// searches the named file; when that yields nothing (the file moved or was
// renamed) it falls back to a whole-project scan with the same predicate.
// Multiple surviving candidates are disambiguated by overload index. Returns
// (nil, nil, nil) when nothing matches.
func (e *Engine) ResolveStableID(id *StableID) (*sem.Declaration, *sem.Symbol, error) {
	if id == nil {
		return nil, nil, nil
	}

	var pool []*sem.Declaration
	if f := e.snap.FileByPath(id.File); f != nil {
		pool = e.snap.DeclarationsInFile(f.ID)
	}
	match := e.matchCandidates(pool, id)
	if len(match) == 0 {
		// Fall back to a whole-project scan — handles moved/renamed files.
		match = e.matchCandidates(e.snap.AllDeclarations(), id)
	}
	if len(match) == 0 {
		e.log.Debug("stable id: no candidate", "file", id.File, "name", id.Name, "kind", id.Kind)
		return nil, nil, nil
	}

	d := match[0]
	if len(match) > 1 {
		sort.Slice(match, func(i, j int) bool {
			hi, hj := e.normalizedHeader(match[i]), e.normalizedHeader(match[j])
			if hi != hj {
				return hi < hj
			}
			return match[i].ID < match[j].ID
		})
		idx := id.OverloadIndex
		if idx < 0 || idx >= len(match) {
			idx = 0
		}
		d = match[idx]
	}
	return d, e.snap.SymbolOf(d), nil
}

// matchCandidates filters a declaration pool by the ID's kind, name,
// container chain, and header hash.
func (e *Engine) matchCandidates(pool []*sem.Declaration, id *StableID) []*sem.Declaration {
	var out []*sem.Declaration
	for _, d := range pool {
		if d.Kind != id.Kind || idName(d) != id.Name {
			continue
		}
		if !chainsEqual(e.containerChain(d), id.Containers) {
			continue
		}
		if hashHeader(e.normalizedHeader(d)) != id.HeaderHash {
			continue
		}
		out = append(out, d)
	}
	return out
}

func chainsEqual(a, b []ContainerLink) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// --- Header normalization ---

// normalizedHeader slices a declaration's source text up to (but excluding)
// its body or initializer, strips comments, and collapses whitespace. The
// per-kind slice points:
//
//   - class/interface/enum/module: before the member-list brace
//   - type alias: before a structural RHS, otherwise just past the "="
//   - block-bodied function-likes: before the block; arrows: before "=>"
//   - variable with an object-literal initializer: before the literal's brace
//   - everything without a body (signatures, ambient, overload heads): full text
func (e *Engine) normalizedHeader(d *sem.Declaration) string {
	text := e.snap.Text(d)
	cut := len(text)

	switch d.Kind {
	case sem.DeclClass, sem.DeclInterface, sem.DeclEnum, sem.DeclModule,
		sem.DeclFunction, sem.DeclMethod, sem.DeclConstructor, sem.DeclAccessor,
		sem.DeclVariable, sem.DeclProperty:
		if d.BodyStart >= d.Start && d.BodyStart-d.Start < cut {
			cut = d.BodyStart - d.Start
		}
	case sem.DeclTypeAlias:
		if d.BodyStart >= d.Start && d.BodyStart-d.Start < cut {
			cut = d.BodyStart - d.Start
		} else if eq := topLevelIndex(text, '='); eq >= 0 {
			cut = eq + 1
		}
	}
	return collapseWhitespace(stripComments(text[:cut]))
}

func hashHeader(header string) string {
	sum := sha256.Sum256([]byte(header))
	return hex.EncodeToString(sum[:])
}

// topLevelIndex finds the first occurrence of ch outside brackets, strings,
// and comments. Returns -1 when absent.
func topLevelIndex(text string, ch byte) int {
	depth := 0
	for i := 0; i < len(text); i++ {
		c := text[i]
		switch c {
		case '(', '[', '{', '<':
			depth++
		case ')', ']', '}', '>':
			depth--
		case '"', '\'', '`':
			i = skipString(text, i)
		case '/':
			if i+1 < len(text) && (text[i+1] == '/' || text[i+1] == '*') {
				i = skipComment(text, i) - 1
			}
		default:
			if c == ch && depth == 0 {
				return i
			}
		}
	}
	return -1
}

func skipString(text string, i int) int {
	quote := text[i]
	for j := i + 1; j < len(text); j++ {
		switch text[j] {
		case '\\':
			j++
		case quote:
			return j
		}
	}
	return len(text) - 1
}

// skipComment returns the index just past a // or /* */ comment starting at i.
func skipComment(text string, i int) int {
	if text[i+1] == '/' {
		for j := i + 2; j < len(text); j++ {
			if text[j] == '\n' {
				return j
			}
		}
		return len(text)
	}
	for j := i + 2; j+1 < len(text); j++ {
		if text[j] == '*' && text[j+1] == '/' {
			return j + 2
		}
	}
	return len(text)
}

// stripComments removes // and /* */ comments, leaving string contents intact.
func stripComments(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for i := 0; i < len(text); i++ {
		c := text[i]
		switch c {
		case '"', '\'', '`':
			end := skipString(text, i)
			b.WriteString(text[i : end+1])
			i = end
		case '/':
			if i+1 < len(text) && (text[i+1] == '/' || text[i+1] == '*') {
				b.WriteByte(' ')
				i = skipComment(text, i) - 1
				continue
			}
			b.WriteByte(c)
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

// collapseWhitespace folds every whitespace run into a single space and trims.
func collapseWhitespace(text string) string {
	return strings.Join(strings.Fields(text), " ")
}
