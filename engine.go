package surface

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/jward/surface/internal/sem"
)

// ErrDepthExceeded signals that a walk hit the defensive recursion limit.
// It aborts only the call that tripped it; the snapshot and the Engine are
// left untouched.
var ErrDepthExceeded = errors.New("surface: max walk depth exceeded")

// Engine answers API-surface queries over one frozen semantic snapshot.
// The snapshot is never mutated; all per-call traversal state lives on the
// stack of the call that created it, so one Engine serves concurrent callers.
type Engine struct {
	snap *sem.Snapshot
	log  *slog.Logger

	packageName     string
	rootDir         string
	entrypoints     map[string]bool
	preferredNames  map[string]bool
	internalMembers map[string]bool
	maxDepth        int
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger used for non-fatal skips (not-found targets,
// ambient declarations). Defaults to a discarding logger.
func WithLogger(log *slog.Logger) Option {
	return func(e *Engine) { e.log = log }
}

// WithPackageName sets the published package name, used for package-relative
// import specifiers and as a ranking hint.
func WithPackageName(name string) Option {
	return func(e *Engine) { e.packageName = name }
}

// WithRootDir sets the configured root directory that import specifiers are
// computed against, ahead of the conventional source directory.
func WithRootDir(dir string) Option {
	return func(e *Engine) { e.rootDir = dir }
}

// WithEntrypoints marks files as package entrypoints for ranking.
func WithEntrypoints(files ...string) Option {
	return func(e *Engine) {
		for _, f := range files {
			e.entrypoints[f] = true
		}
	}
}

// WithPreferredNames adds export names favored by the ranker.
func WithPreferredNames(names ...string) Option {
	return func(e *Engine) {
		for _, n := range names {
			e.preferredNames[n] = true
		}
	}
}

// WithInternalMembers designates member names treated as internal-client hops
// and penalized by the ranker.
func WithInternalMembers(names ...string) Option {
	return func(e *Engine) {
		for _, n := range names {
			e.internalMembers[n] = true
		}
	}
}

// WithMaxDepth overrides the defensive recursion limit for deep walks.
func WithMaxDepth(depth int) Option {
	return func(e *Engine) {
		if depth > 0 {
			e.maxDepth = depth
		}
	}
}

// defaultMaxDepth bounds every recursive walk. Cycles are defused by visited
// sets; the depth guard only catches pathological snapshots, loudly.
const defaultMaxDepth = 64

// New creates an Engine over the given snapshot, freezing it if the caller
// has not already done so.
func New(snap *sem.Snapshot, opts ...Option) *Engine {
	snap.Freeze()
	e := &Engine{
		snap:            snap,
		log:             slog.New(slog.NewTextHandler(io.Discard, nil)),
		entrypoints:     make(map[string]bool),
		preferredNames:  map[string]bool{"default": true, "client": true, "create": true},
		internalMembers: map[string]bool{"_client": true},
		maxDepth:        defaultMaxDepth,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Snapshot returns the underlying semantic snapshot for direct access.
func (e *Engine) Snapshot() *sem.Snapshot { return e.snap }

// resolveAlias follows a symbol's alias chain one hop at a time until it
// reaches the underlying symbol. Its own visited set makes chains of any
// length terminate without requiring a true cycle; the depth guard catches
// corrupt snapshots.
func (e *Engine) resolveAlias(sym *sem.Symbol) *sem.Symbol {
	seen := make(map[int64]bool)
	for hops := 0; sym != nil && hops < e.maxDepth; hops++ {
		target := e.snap.AliasTarget(sym)
		if target == nil {
			return sym
		}
		if seen[target.ID] {
			e.log.Warn("alias chain cycle", "symbol", sym.Name, "id", sym.ID)
			return sym
		}
		seen[target.ID] = true
		sym = target
	}
	return sym
}

// sameTarget reports whether sym, after alias resolution, names the same
// declaration as target: either the symbols are identical or they share a
// declaration (overloads share one symbol).
func (e *Engine) sameTarget(sym *sem.Symbol, target *sem.Symbol, targetDecl *sem.Declaration) bool {
	if sym == nil || target == nil {
		return false
	}
	sym = e.resolveAlias(sym)
	if sym.ID == target.ID {
		return true
	}
	for _, id := range sym.DeclIDs {
		if targetDecl != nil && id == targetDecl.ID {
			return true
		}
	}
	return false
}

// EachDeclaration runs fn for every project-local declaration using a bounded
// worker pool. It is the hook for orchestrators that document many
// declarations concurrently; each fn invocation gets its own call-scoped
// engine state by construction. Errors on individual declarations are
// collected; processing continues unless ctx is cancelled.
func (e *Engine) EachDeclaration(ctx context.Context, concurrency int, fn func(*sem.Declaration) error) error {
	if concurrency < 1 {
		concurrency = 1
	}

	var decls []*sem.Declaration
	for _, f := range e.snap.Files() {
		if f.External {
			continue
		}
		decls = append(decls, e.snap.DeclarationsInFile(f.ID)...)
	}
	if len(decls) == 0 {
		return nil
	}
	if concurrency > len(decls) {
		concurrency = len(decls)
	}

	workCh := make(chan *sem.Declaration, len(decls))
	for _, d := range decls {
		workCh <- d
	}
	close(workCh)

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)
	for range concurrency {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for d := range workCh {
				if ctx.Err() != nil {
					return
				}
				if err := fn(d); err != nil {
					mu.Lock()
					errs = append(errs, fmt.Errorf("declaration %d: %w", d.ID, err))
					mu.Unlock()
				}
			}
		}()
	}
	wg.Wait()

	if len(errs) > 0 {
		return fmt.Errorf("each declaration had %d error(s): %w", len(errs), errs[0])
	}
	return ctx.Err()
}
