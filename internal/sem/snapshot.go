package sem

import (
	"fmt"
	"sort"
	"strings"
)

// Snapshot is an immutable semantic view of one checked project. It is built
// once (via the Add* methods or the SQLite loader), then frozen and shared;
// no query mutates it, so concurrent readers need no locking.
type Snapshot struct {
	files       map[int64]*File
	filesByPath map[string]*File
	decls       map[int64]*Declaration
	symbols     map[int64]*Symbol
	types       map[int64]*Type
	typeNodes   map[int64]*TypeNode
	exprs       map[int64]*Expr
	exports     map[int64][]Export

	declsByFile   map[int64][]*Declaration
	declsByParent map[int64][]*Declaration

	nextID int64
	frozen bool
}

// NewSnapshot returns an empty, unfrozen snapshot ready for Add* calls.
func NewSnapshot() *Snapshot {
	return &Snapshot{
		files:         make(map[int64]*File),
		filesByPath:   make(map[string]*File),
		decls:         make(map[int64]*Declaration),
		symbols:       make(map[int64]*Symbol),
		types:         make(map[int64]*Type),
		typeNodes:     make(map[int64]*TypeNode),
		exprs:         make(map[int64]*Expr),
		exports:       make(map[int64][]Export),
		declsByFile:   make(map[int64][]*Declaration),
		declsByParent: make(map[int64][]*Declaration),
		nextID:        1,
	}
}

func (s *Snapshot) assign(id int64) int64 {
	if id == 0 {
		id = s.nextID
	}
	if id >= s.nextID {
		s.nextID = id + 1
	}
	return id
}

func (s *Snapshot) mustMutable(op string) {
	if s.frozen {
		panic(fmt.Sprintf("sem: %s on frozen snapshot", op))
	}
}

// AddFile registers a source file and returns its ID.
func (s *Snapshot) AddFile(f *File) int64 {
	s.mustMutable("AddFile")
	f.ID = s.assign(f.ID)
	f.Path = strings.TrimPrefix(strings.ReplaceAll(f.Path, "\\", "/"), "./")
	s.files[f.ID] = f
	s.filesByPath[f.Path] = f
	return f.ID
}

// AddDeclaration registers a declaration and returns its ID.
func (s *Snapshot) AddDeclaration(d *Declaration) int64 {
	s.mustMutable("AddDeclaration")
	d.ID = s.assign(d.ID)
	s.decls[d.ID] = d
	return d.ID
}

// AddSymbol registers a symbol and returns its ID.
func (s *Snapshot) AddSymbol(sym *Symbol) int64 {
	s.mustMutable("AddSymbol")
	sym.ID = s.assign(sym.ID)
	s.symbols[sym.ID] = sym
	return sym.ID
}

// AddType registers a checker type and returns its ID.
func (s *Snapshot) AddType(t *Type) int64 {
	s.mustMutable("AddType")
	t.ID = s.assign(t.ID)
	s.types[t.ID] = t
	return t.ID
}

// AddTypeNode registers a syntactic type expression node and returns its ID.
func (s *Snapshot) AddTypeNode(n *TypeNode) int64 {
	s.mustMutable("AddTypeNode")
	n.ID = s.assign(n.ID)
	s.typeNodes[n.ID] = n
	return n.ID
}

// AddExpr registers a value expression and returns its ID.
func (s *Snapshot) AddExpr(x *Expr) int64 {
	s.mustMutable("AddExpr")
	x.ID = s.assign(x.ID)
	s.exprs[x.ID] = x
	return x.ID
}

// AddExport appends an entry to a module's export table.
func (s *Snapshot) AddExport(e Export) {
	s.mustMutable("AddExport")
	s.exports[e.FileID] = append(s.exports[e.FileID], e)
}

// Bind attaches a declaration to a symbol, maintaining both directions.
func (s *Snapshot) Bind(declID, symbolID int64) {
	s.mustMutable("Bind")
	d := s.decls[declID]
	sym := s.symbols[symbolID]
	if d == nil || sym == nil {
		panic(fmt.Sprintf("sem: Bind(%d, %d): unknown declaration or symbol", declID, symbolID))
	}
	d.SymbolID = symbolID
	sym.DeclIDs = append(sym.DeclIDs, declID)
}

// Freeze finalizes the snapshot: builds the per-file and per-parent
// declaration indexes and the line-offset tables. Idempotent.
func (s *Snapshot) Freeze() {
	if s.frozen {
		return
	}
	for _, d := range s.decls {
		s.declsByFile[d.FileID] = append(s.declsByFile[d.FileID], d)
		if d.ParentID != 0 {
			s.declsByParent[d.ParentID] = append(s.declsByParent[d.ParentID], d)
		}
	}
	for _, list := range s.declsByFile {
		sort.Slice(list, func(i, j int) bool {
			if list[i].Start != list[j].Start {
				return list[i].Start < list[j].Start
			}
			return list[i].ID < list[j].ID
		})
	}
	for _, list := range s.declsByParent {
		sort.Slice(list, func(i, j int) bool { return list[i].Start < list[j].Start })
	}
	for _, f := range s.files {
		f.lineStarts = computeLineStarts(f.Content)
	}
	s.frozen = true
}

// Frozen reports whether Freeze has been called.
func (s *Snapshot) Frozen() bool { return s.frozen }

// --- Lookup ---

// File returns the file with the given ID, or nil.
func (s *Snapshot) File(id int64) *File { return s.files[id] }

// FileByPath returns the file with the given project-relative path, or nil.
func (s *Snapshot) FileByPath(path string) *File {
	return s.filesByPath[strings.TrimPrefix(strings.ReplaceAll(path, "\\", "/"), "./")]
}

// Files returns all files sorted by path.
func (s *Snapshot) Files() []*File {
	out := make([]*File, 0, len(s.files))
	for _, f := range s.files {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

// Declaration returns the declaration with the given ID, or nil.
func (s *Snapshot) Declaration(id int64) *Declaration { return s.decls[id] }

// Symbol returns the symbol with the given ID, or nil.
func (s *Snapshot) Symbol(id int64) *Symbol { return s.symbols[id] }

// Type returns the checker type with the given ID, or nil.
func (s *Snapshot) Type(id int64) *Type { return s.types[id] }

// TypeNode returns the type expression node with the given ID, or nil.
func (s *Snapshot) TypeNode(id int64) *TypeNode { return s.typeNodes[id] }

// Expr returns the value expression with the given ID, or nil.
func (s *Snapshot) Expr(id int64) *Expr { return s.exprs[id] }

// SymbolOf returns the symbol bound to a declaration, or nil.
func (s *Snapshot) SymbolOf(d *Declaration) *Symbol {
	if d == nil {
		return nil
	}
	return s.symbols[d.SymbolID]
}

// DeclarationsOf returns a symbol's declarations in source order.
func (s *Snapshot) DeclarationsOf(sym *Symbol) []*Declaration {
	if sym == nil {
		return nil
	}
	out := make([]*Declaration, 0, len(sym.DeclIDs))
	for _, id := range sym.DeclIDs {
		if d := s.decls[id]; d != nil {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].FileID != out[j].FileID {
			return out[i].FileID < out[j].FileID
		}
		return out[i].Start < out[j].Start
	})
	return out
}

// AliasTarget returns the symbol one alias hop away, or nil when sym is not
// an alias. Chains are resolved by the caller, one hop at a time.
func (s *Snapshot) AliasTarget(sym *Symbol) *Symbol {
	if sym == nil || sym.AliasTargetID == 0 {
		return nil
	}
	return s.symbols[sym.AliasTargetID]
}

// TypeOfSymbol returns the type of a symbol used as a value, or nil.
func (s *Snapshot) TypeOfSymbol(sym *Symbol) *Type {
	if sym == nil {
		return nil
	}
	return s.types[sym.ValueTypeID]
}

// DeclaredType returns the type of a symbol used in type position (the
// instance side for classes), or nil.
func (s *Snapshot) DeclaredType(sym *Symbol) *Type {
	if sym == nil {
		return nil
	}
	return s.types[sym.DeclaredTypeID]
}

// Exports returns a file's export table in declaration order.
func (s *Snapshot) Exports(fileID int64) []Export { return s.exports[fileID] }

// DeclarationsInFile returns a file's declarations sorted by start offset.
func (s *Snapshot) DeclarationsInFile(fileID int64) []*Declaration {
	return s.declsByFile[fileID]
}

// Children returns the declarations directly enclosed by parent, in source order.
func (s *Snapshot) Children(parent *Declaration) []*Declaration {
	if parent == nil {
		return nil
	}
	return s.declsByParent[parent.ID]
}

// AllDeclarations returns every declaration, ordered by file path then start
// offset, for whole-project scans.
func (s *Snapshot) AllDeclarations() []*Declaration {
	var out []*Declaration
	for _, f := range s.Files() {
		out = append(out, s.declsByFile[f.ID]...)
	}
	return out
}

// Text returns a declaration's raw source span.
func (s *Snapshot) Text(d *Declaration) string {
	f := s.files[d.FileID]
	if f == nil || d.Start < 0 || d.End > len(f.Content) || d.Start > d.End {
		return ""
	}
	return f.Content[d.Start:d.End]
}

// --- Positions ---

func computeLineStarts(content string) []int {
	starts := []int{0}
	for i := 0; i < len(content); i++ {
		if content[i] == '\n' {
			starts = append(starts, i+1)
		}
	}
	return starts
}

// Position converts a byte offset in a file to a 1-indexed line and column.
func (s *Snapshot) Position(fileID int64, offset int) (line, col int) {
	f := s.files[fileID]
	if f == nil {
		return 0, 0
	}
	starts := f.lineStarts
	if starts == nil {
		starts = computeLineStarts(f.Content)
	}
	i := sort.Search(len(starts), func(i int) bool { return starts[i] > offset }) - 1
	if i < 0 {
		i = 0
	}
	return i + 1, offset - starts[i] + 1
}

// Offset converts a 1-indexed line and column to a byte offset, or -1 when
// out of range.
func (s *Snapshot) Offset(fileID int64, line, col int) int {
	f := s.files[fileID]
	if f == nil || line < 1 {
		return -1
	}
	starts := f.lineStarts
	if starts == nil {
		starts = computeLineStarts(f.Content)
	}
	if line > len(starts) {
		return -1
	}
	off := starts[line-1] + col - 1
	if off < 0 || off > len(f.Content) {
		return -1
	}
	return off
}

// DeclarationAt returns the narrowest declaration enclosing the given
// 1-indexed position, or nil when none does.
func (s *Snapshot) DeclarationAt(path string, line, col int) *Declaration {
	f := s.FileByPath(path)
	if f == nil {
		return nil
	}
	off := s.Offset(f.ID, line, col)
	if off < 0 {
		return nil
	}
	var best *Declaration
	for _, d := range s.declsByFile[f.ID] {
		if d.Start <= off && off < d.End {
			if best == nil || d.End-d.Start < best.End-best.Start {
				best = d
			}
		}
	}
	return best
}

// HasModifier reports whether the declaration carries the given modifier.
func (d *Declaration) HasModifier(mod string) bool {
	for _, m := range d.Modifiers {
		if m == mod {
			return true
		}
	}
	return false
}
