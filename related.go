package surface

import (
	"sort"

	"github.com/jward/surface/internal/sem"
)

// RelatedItem is a project-local type referenced by a target declaration's
// public surface.
type RelatedItem struct {
	Symbol *sem.Symbol `json:"-"`
	Name   string      `json:"name"`
	File   string      `json:"file"`
	Line   int         `json:"line"`
	Column int         `json:"column"`
}

// wellKnownContainers are generic standard-library containers whose presence
// in a signature says nothing about the project's own types.
var wellKnownContainers = map[string]bool{
	"Array": true, "ReadonlyArray": true, "Promise": true, "Map": true,
	"Set": true, "WeakMap": true, "WeakSet": true, "Record": true,
	"Partial": true, "Required": true, "Readonly": true, "Pick": true,
	"Omit": true, "Exclude": true, "Extract": true, "NonNullable": true,
	"ReturnType": true, "Parameters": true, "InstanceType": true,
	"Awaited": true, "Iterable": true, "Iterator": true, "AsyncIterable": true,
	"AsyncIterator": true, "IterableIterator": true, "Error": true,
	"Date": true, "RegExp": true, "Function": true, "Object": true,
	"Symbol": true, "Boolean": true, "Number": true, "String": true,
	"ArrayBuffer": true, "Uint8Array": true, "Buffer": true,
}

// relatedWalk holds the traversal state of one Related call: memo sets for
// type nodes, checker types, and value expressions, plus the collected
// symbols keyed by their primary declaration so overloads and re-exports
// deduplicate. Constructed fresh per call, never shared across calls.
type relatedWalk struct {
	e         *Engine
	seenNodes map[int64]bool
	seenTypes map[int64]bool
	seenExprs map[int64]bool
	found     map[int64]*sem.Symbol // primary declaration ID -> symbol
}

// Related collects the project-local types a declaration's public signature
// depends on. Primitives, globals, well-known generic containers, generic
// type parameters, and anonymous shapes are filtered out; results are
// deduplicated by underlying declaration and ordered by source position.
// Returns an empty slice when the target has no related types.
func (e *Engine) Related(target *sem.Declaration) ([]RelatedItem, error) {
	if target == nil {
		return nil, nil
	}
	w := &relatedWalk{
		e:         e,
		seenNodes: make(map[int64]bool),
		seenTypes: make(map[int64]bool),
		seenExprs: make(map[int64]bool),
		found:     make(map[int64]*sem.Symbol),
	}
	if err := w.walkDeclaration(target, 0); err != nil {
		return nil, err
	}

	// The target itself is not related to itself.
	if sym := e.resolveAlias(e.snap.SymbolOf(target)); sym != nil {
		for _, d := range e.snap.DeclarationsOf(sym) {
			delete(w.found, d.ID)
		}
	}

	items := make([]RelatedItem, 0, len(w.found))
	for declID, sym := range w.found {
		d := e.snap.Declaration(declID)
		f := e.snap.File(d.FileID)
		line, col := e.snap.Position(d.FileID, d.Start)
		items = append(items, RelatedItem{
			Symbol: sym,
			Name:   sym.Name,
			File:   f.Path,
			Line:   line,
			Column: col,
		})
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].File != items[j].File {
			return items[i].File < items[j].File
		}
		if items[i].Line != items[j].Line {
			return items[i].Line < items[j].Line
		}
		return items[i].Name < items[j].Name
	})
	return items, nil
}

// walkDeclaration dispatches on the target's kind per its public surface.
func (w *relatedWalk) walkDeclaration(d *sem.Declaration, depth int) error {
	if depth > w.e.maxDepth {
		return ErrDepthExceeded
	}

	switch d.Kind {
	case sem.DeclTypeAlias:
		return w.walkTypeNode(d.TypeNodeID, depth+1)

	case sem.DeclInterface:
		for _, h := range d.HeritageNodeIDs {
			if err := w.walkTypeNode(h, depth+1); err != nil {
				return err
			}
		}
		for _, m := range w.e.snap.Children(d) {
			if err := w.walkMemberSignature(m, depth+1); err != nil {
				return err
			}
		}
		return nil

	case sem.DeclClass:
		for _, h := range d.HeritageNodeIDs {
			if err := w.walkTypeNode(h, depth+1); err != nil {
				return err
			}
		}
		for _, m := range w.e.snap.Children(d) {
			// Only the public surface contributes.
			if m.HasModifier("private") || m.HasModifier("protected") || privacyMarked(m.Name) {
				continue
			}
			if err := w.walkMemberSignature(m, depth+1); err != nil {
				return err
			}
		}
		return nil

	case sem.DeclFunction, sem.DeclMethod, sem.DeclConstructor, sem.DeclAccessor:
		if err := w.walkEnclosing(d); err != nil {
			return err
		}
		return w.walkCallable(d, depth)

	case sem.DeclVariable, sem.DeclProperty:
		if err := w.walkEnclosing(d); err != nil {
			return err
		}
		if d.InitExprID != 0 {
			if err := w.walkExpr(d.InitExprID, depth+1); err != nil {
				return err
			}
		}
		return w.walkAnnotatedOrInferred(d, depth)

	default:
		return w.walkAnnotatedOrInferred(d, depth)
	}
}

// walkEnclosing adds the container of a member declaration.
func (w *relatedWalk) walkEnclosing(d *sem.Declaration) error {
	if parent := w.e.snap.Declaration(d.ParentID); parent != nil {
		w.add(w.e.snap.SymbolOf(parent))
	}
	return nil
}

// walkMemberSignature covers one interface/class member's public signature:
// parameter types, return or property type, index signature key and value.
func (w *relatedWalk) walkMemberSignature(m *sem.Declaration, depth int) error {
	switch m.Kind {
	case sem.DeclMethod, sem.DeclConstructor, sem.DeclAccessor,
		sem.DeclCallSignature, sem.DeclConstructSignature, sem.DeclIndexSignature:
		return w.walkCallable(m, depth)
	default:
		return w.walkAnnotatedOrInferred(m, depth)
	}
}

// walkCallable covers a function-like's parameters and return. The syntactic
// annotation is preferred over the inferred type so alias names survive;
// each unannotated element falls back to the checker's signature on its own.
func (w *relatedWalk) walkCallable(d *sem.Declaration, depth int) error {
	var sigs []sem.Signature
	if t := w.e.snap.TypeOfSymbol(w.e.snap.SymbolOf(d)); t != nil {
		sigs = append(append(sigs, t.CallSigs...), t.ConstructSigs...)
	}

	for _, p := range d.Params {
		if p.TypeNodeID != 0 {
			if err := w.walkTypeNode(p.TypeNodeID, depth+1); err != nil {
				return err
			}
			continue
		}
		for _, sig := range sigs {
			if p.Ordinal < len(sig.ParamTypeIDs) {
				if err := w.walkType(sig.ParamTypeIDs[p.Ordinal], depth+1); err != nil {
					return err
				}
			}
		}
	}

	if d.ReturnTypeNodeID != 0 {
		return w.walkTypeNode(d.ReturnTypeNodeID, depth+1)
	}
	for _, sig := range sigs {
		if err := w.walkType(sig.ReturnTypeID, depth+1); err != nil {
			return err
		}
	}
	return nil
}

// walkAnnotatedOrInferred covers a typed declaration: the declared annotation
// when present, the inferred type otherwise, and both for variables (an
// initializer can reference more than the declared type names).
func (w *relatedWalk) walkAnnotatedOrInferred(d *sem.Declaration, depth int) error {
	if d.TypeNodeID != 0 {
		return w.walkTypeNode(d.TypeNodeID, depth+1)
	}
	sym := w.e.snap.SymbolOf(d)
	if t := w.e.snap.TypeOfSymbol(sym); t != nil {
		return w.walkType(t.ID, depth+1)
	}
	return nil
}

// walkTypeNode deep-walks a syntactic type expression: references with their
// generic arguments, arrays, tuples, unions/intersections, parenthesized and
// inline structural types, function/constructor shapes, mapped, indexed,
// operator, conditional, predicate, and typeof-query nodes.
func (w *relatedWalk) walkTypeNode(id int64, depth int) error {
	if id == 0 || w.seenNodes[id] {
		return nil
	}
	if depth > w.e.maxDepth {
		return ErrDepthExceeded
	}
	w.seenNodes[id] = true

	n := w.e.snap.TypeNode(id)
	if n == nil {
		return nil
	}
	switch n.Kind {
	case sem.NodeRef, sem.NodeQuery:
		w.add(w.e.snap.Symbol(n.RefSymbolID))
	}
	for _, child := range n.Children {
		if err := w.walkTypeNode(child, depth+1); err != nil {
			return err
		}
	}
	return nil
}

// walkType deep-walks a checker type: its nominal or alias symbol, generic
// arguments, union/intersection constituents, call and construct signatures,
// and, for anonymous object types only, property types.
func (w *relatedWalk) walkType(id int64, depth int) error {
	if id == 0 || w.seenTypes[id] {
		return nil
	}
	if depth > w.e.maxDepth {
		return ErrDepthExceeded
	}
	w.seenTypes[id] = true

	t := w.e.snap.Type(id)
	if t == nil {
		return nil
	}
	if t.AliasSymbolID != 0 {
		w.add(w.e.snap.Symbol(t.AliasSymbolID))
	}
	w.add(w.e.snap.Symbol(t.SymbolID))

	for _, arg := range t.TypeArgs {
		if err := w.walkType(arg, depth+1); err != nil {
			return err
		}
	}
	for _, m := range t.Members {
		if err := w.walkType(m, depth+1); err != nil {
			return err
		}
	}
	for _, sig := range append(append([]sem.Signature{}, t.CallSigs...), t.ConstructSigs...) {
		for _, pt := range sig.ParamTypeIDs {
			if err := w.walkType(pt, depth+1); err != nil {
				return err
			}
		}
		if err := w.walkType(sig.ReturnTypeID, depth+1); err != nil {
			return err
		}
	}
	if t.SymbolID == 0 && t.AliasSymbolID == 0 {
		for _, prop := range t.Properties {
			propSym := w.e.snap.Symbol(prop.SymbolID)
			if pt := w.e.snap.TypeOfSymbol(propSym); pt != nil {
				if err := w.walkType(pt.ID, depth+1); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// walkExpr walks a variable initializer's value expression: identifiers with
// one-hop initializer follow-through, property and element accesses, call and
// new expressions resolved through signature lookup with an expression-type
// fallback, and short-circuit operators recursing into both branches.
func (w *relatedWalk) walkExpr(id int64, depth int) error {
	if id == 0 || w.seenExprs[id] {
		return nil
	}
	if depth > w.e.maxDepth {
		return ErrDepthExceeded
	}
	w.seenExprs[id] = true

	x := w.e.snap.Expr(id)
	if x == nil {
		return nil
	}
	switch x.Kind {
	case sem.ExprIdent:
		sym := w.e.resolveAlias(w.e.snap.Symbol(x.RefSymbolID))
		w.add(sym)
		// One-hop follow-through into the identifier's own initializer.
		for _, d := range w.e.snap.DeclarationsOf(sym) {
			if d.Kind == sem.DeclVariable && d.InitExprID != 0 {
				if err := w.walkExpr(d.InitExprID, depth+1); err != nil {
					return err
				}
			}
		}
	case sem.ExprPropertyAccess, sem.ExprElementAccess:
		w.add(w.e.snap.Symbol(x.RefSymbolID))
		if err := w.walkExpr(x.ObjectID, depth+1); err != nil {
			return err
		}
		if x.KeyExprID != 0 {
			if err := w.walkExpr(x.KeyExprID, depth+1); err != nil {
				return err
			}
		}
	case sem.ExprCall, sem.ExprNew:
		if err := w.walkExpr(x.ObjectID, depth+1); err != nil {
			return err
		}
		if err := w.walkCallResult(x, depth); err != nil {
			return err
		}
	case sem.ExprLogical:
		for _, op := range x.Operands {
			if err := w.walkExpr(op, depth+1); err != nil {
				return err
			}
		}
	case sem.ExprClass, sem.ExprFunc:
		if d := w.e.snap.Declaration(x.DeclID); d != nil {
			return w.walkDeclaration(d, depth+1)
		}
	}
	return nil
}

// walkCallResult resolves a call/new result through the callee's signatures,
// falling back to the checker's type of the whole expression.
func (w *relatedWalk) walkCallResult(x *sem.Expr, depth int) error {
	callee := w.e.snap.Expr(x.ObjectID)
	if callee != nil && callee.TypeID != 0 {
		if ct := w.e.snap.Type(callee.TypeID); ct != nil {
			sigs := ct.CallSigs
			if x.Kind == sem.ExprNew {
				sigs = ct.ConstructSigs
			}
			if len(sigs) > 0 {
				for _, sig := range sigs {
					if err := w.walkType(sig.ReturnTypeID, depth+1); err != nil {
						return err
					}
				}
				return nil
			}
		}
	}
	return w.walkType(x.TypeID, depth+1)
}

// add applies the keep/drop filters and records a symbol by its primary
// declaration. Dropped: alias hops (resolved first), generic type parameters,
// symbols from external files (primitives, globals, vendored code), the
// well-known generic containers, and symbols whose only declarations are
// anonymous shapes.
func (w *relatedWalk) add(sym *sem.Symbol) {
	sym = w.e.resolveAlias(sym)
	if sym == nil || wellKnownContainers[sym.Name] {
		return
	}
	decls := w.e.snap.DeclarationsOf(sym)
	if len(decls) == 0 {
		return
	}
	var primary *sem.Declaration
	for _, d := range decls {
		if d.Kind == sem.DeclTypeParam {
			return
		}
		if d.Name == "" {
			continue // anonymous/inline shape
		}
		f := w.e.snap.File(d.FileID)
		if f == nil || f.External {
			return // global, standard-library, or vendored
		}
		if primary == nil {
			primary = d
		}
	}
	if primary == nil {
		return
	}
	w.found[primary.ID] = sym
}
