package surface

import (
	"sort"
	"strings"

	"github.com/jward/surface/internal/sem"
)

// StepKind tags one hop of an access path.
type StepKind string

const (
	StepStatic   StepKind = "static"   // static-side member access
	StepInstance StepKind = "instance" // instance-side member access
	StepCall     StepKind = "call"     // invoking the reached callable
)

// AccessStep is one hop from an export root toward the target.
type AccessStep struct {
	Kind   StepKind `json:"kind"`
	Member string   `json:"member,omitempty"` // empty for call steps
}

// AccessPath is a member-access chain from an export root to the target
// declaration. RequiresNew marks paths that pass through a constructor.
type AccessPath struct {
	Root        ExportRecord `json:"root"`
	Steps       []AccessStep `json:"steps"`
	RequiresNew bool         `json:"requiresNew"`
	Pretty      string       `json:"pretty"`
	Score       float64      `json:"score"` // assigned by PathsToRanked; 0 otherwise
}

// pathSearch holds the traversal state of one PathsTo call. Constructed fresh
// per call: the member/type graph is self-referential, and a shared visited
// set would let concurrent calls corrupt each other's cycle detection.
type pathSearch struct {
	e          *Engine
	target     *sem.Symbol
	targetDecl *sem.Declaration
	paths      []AccessPath
	dedup      map[string]bool
}

type visitKey struct {
	requiresNew bool
	typeID      int64
}

type queueEntry struct {
	typeID      int64
	steps       []AccessStep
	requiresNew bool
}

// PathsTo finds every access path from the export catalog's roots to the
// target declaration. Runtime-valued targets are searched from value roots
// only; type-only targets match against all roots but are never traversed
// into via member BFS. Returns an empty slice when the target is unreachable
// from any export — a valid terminal state, not an error.
func (e *Engine) PathsTo(target *sem.Declaration) ([]AccessPath, error) {
	if target == nil {
		return nil, nil
	}
	targetSym := e.resolveAlias(e.snap.SymbolOf(target))
	if targetSym == nil {
		e.log.Debug("paths: no symbol for target", "decl", target.ID)
		return nil, nil
	}

	isValue := e.symbolIsValue(targetSym)
	roots := e.pathRoots(target, targetSym, isValue)

	s := &pathSearch{
		e:          e,
		target:     targetSym,
		targetDecl: target,
		dedup:      make(map[string]bool),
	}
	for _, root := range roots {
		if err := s.searchRoot(root, isValue); err != nil {
			return nil, err
		}
	}

	sort.Slice(s.paths, func(i, j int) bool {
		pi, pj := s.paths[i], s.paths[j]
		if len(pi.Steps) != len(pj.Steps) {
			return len(pi.Steps) < len(pj.Steps)
		}
		if pi.Root.File != pj.Root.File {
			return pi.Root.File < pj.Root.File
		}
		return pi.Pretty < pj.Pretty
	})
	return s.paths, nil
}

// pathRoots assembles the BFS root set: the catalog's value roots for
// runtime-valued targets, all roots otherwise, plus a synthesized root when
// the target is exported directly from its own declaring file but missing
// from the deduplicated catalog.
func (e *Engine) pathRoots(target *sem.Declaration, targetSym *sem.Symbol, isValue bool) []ExportRecord {
	all := e.ListExports()
	var roots []ExportRecord
	for _, rec := range all {
		if isValue && !rec.IsValue {
			continue
		}
		roots = append(roots, rec)
	}

	covered := false
	for _, rec := range roots {
		if rec.FileID == target.FileID && e.sameTarget(e.snap.Symbol(rec.SymbolID), targetSym, target) {
			covered = true
			break
		}
	}
	if !covered {
		f := e.snap.File(target.FileID)
		for _, exp := range e.snap.Exports(target.FileID) {
			if f != nil && e.sameTarget(e.snap.Symbol(exp.SymbolID), targetSym, target) {
				roots = append(roots, ExportRecord{
					FileID:   target.FileID,
					File:     f.Path,
					Name:     exp.Name,
					Kind:     classifyImportKind(exp),
					IsValue:  isValue,
					SymbolID: targetSym.ID,
				})
				break
			}
		}
	}
	return roots
}

// searchRoot emits paths for one export root: a zero-step direct hit, a
// zero-step variable-alias shortcut, or BFS through the root's member graph.
func (s *pathSearch) searchRoot(root ExportRecord, targetIsValue bool) error {
	e := s.e
	rootSym := e.resolveAlias(e.snap.Symbol(root.SymbolID))
	if rootSym == nil {
		return nil
	}

	// Direct hit: the root's resolved export is the target.
	if e.sameTarget(rootSym, s.target, s.targetDecl) {
		s.emit(root, nil, false)
		return nil
	}

	// Alias shortcut: a variable whose initializer is an identifier, a
	// property access, or an element access with a literal key that resolves
	// to the target.
	for _, d := range e.snap.DeclarationsOf(rootSym) {
		if d.Kind != sem.DeclVariable || d.InitExprID == 0 {
			continue
		}
		if init := e.snap.Expr(d.InitExprID); init != nil && s.exprResolvesToTarget(init) {
			s.emit(root, nil, false)
			return nil
		}
	}

	// Type-only targets are matched at roots but never traversed into.
	if !targetIsValue {
		return nil
	}
	return s.bfs(root, rootSym)
}

func (s *pathSearch) exprResolvesToTarget(x *sem.Expr) bool {
	switch x.Kind {
	case sem.ExprIdent, sem.ExprPropertyAccess:
	case sem.ExprElementAccess:
		if x.Key == "" {
			return false
		}
	default:
		return false
	}
	return s.e.sameTarget(s.e.snap.Symbol(x.RefSymbolID), s.target, s.targetDecl)
}

// bfs walks the member graph of a root's type. The visited set is keyed by
// (requiresNew, type identity) — member/type graphs are self-referential, and
// without that key the search does not terminate.
func (s *pathSearch) bfs(root ExportRecord, rootSym *sem.Symbol) error {
	e := s.e
	visited := make(map[visitKey]bool)
	var queue []queueEntry

	enqueue := func(typeID int64, steps []AccessStep, requiresNew bool) {
		if typeID == 0 {
			return
		}
		key := visitKey{requiresNew, typeID}
		if visited[key] {
			return
		}
		visited[key] = true
		queue = append(queue, queueEntry{typeID, steps, requiresNew})
	}

	isClassRoot := false
	for _, d := range e.snap.DeclarationsOf(rootSym) {
		if d.Kind == sem.DeclClass {
			isClassRoot = true
			break
		}
	}

	// Class roots contribute both sides: the static type as-is, the instance
	// side flagged requiresNew. Non-class roots contribute the value's type.
	enqueue(rootSym.ValueTypeID, nil, false)
	if isClassRoot && rootSym.DeclaredTypeID != 0 {
		enqueue(rootSym.DeclaredTypeID, nil, true)
	}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if len(cur.steps) >= e.maxDepth {
			return ErrDepthExceeded
		}

		t := e.snap.Type(cur.typeID)
		if t == nil {
			continue
		}

		stepKind := StepStatic
		if cur.requiresNew {
			stepKind = StepInstance
		}

		for _, prop := range t.Properties {
			memberSym := e.resolveAlias(e.snap.Symbol(prop.SymbolID))
			if memberSym == nil {
				continue
			}
			memberType := e.snap.TypeOfSymbol(memberSym)
			memberSteps := append(append([]AccessStep{}, cur.steps...), AccessStep{Kind: stepKind, Member: prop.Name})

			callable := memberType != nil && len(memberType.CallSigs) > 0
			if callable {
				if e.sameTarget(memberSym, s.target, s.targetDecl) {
					s.emit(root, append(memberSteps, AccessStep{Kind: StepCall}), cur.requiresNew)
				}
				// Callables are terminal: their members are not traversed.
				continue
			}

			if e.sameTarget(memberSym, s.target, s.targetDecl) {
				s.emit(root, memberSteps, cur.requiresNew)
			}
			if memberType != nil {
				enqueue(memberType.ID, memberSteps, cur.requiresNew)
			}
		}

		// A constructable type exposes its instance side with unchanged steps.
		for _, sig := range t.ConstructSigs {
			enqueue(sig.ReturnTypeID, cur.steps, true)
		}
	}
	return nil
}

// emit records a path, deduplicating by (root module, root export name,
// pretty string).
func (s *pathSearch) emit(root ExportRecord, steps []AccessStep, requiresNew bool) {
	p := AccessPath{
		Root:        root,
		Steps:       steps,
		RequiresNew: requiresNew,
		Pretty:      prettyPath(root, steps, requiresNew),
	}
	key := root.File + "\x00" + root.Name + "\x00" + p.Pretty
	if s.dedup[key] {
		return
	}
	s.dedup[key] = true
	s.paths = append(s.paths, p)
}

// prettyPath renders a human-readable access chain, e.g.
// "new Client().files.upload(...)" or "foo.bar.create(...)".
func prettyPath(root ExportRecord, steps []AccessStep, requiresNew bool) string {
	var b strings.Builder
	if requiresNew {
		b.WriteString("new ")
	}
	b.WriteString(root.Name)
	if requiresNew {
		b.WriteString("()")
	}
	for _, step := range steps {
		switch step.Kind {
		case StepCall:
			b.WriteString("(...)")
		default:
			b.WriteByte('.')
			b.WriteString(step.Member)
		}
	}
	return b.String()
}
