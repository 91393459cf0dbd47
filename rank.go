package surface

import (
	"path"
	"sort"
	"strings"

	"github.com/jward/surface/internal/sem"
)

// RankOptions tunes PathsToRanked for one call. Zero values fall back to the
// Engine's configured defaults.
type RankOptions struct {
	Entrypoints    []string // preferred entrypoint files, in addition to the Engine's
	PreferredNames []string // preferred root export names, in addition to the Engine's
	TypeOnly       *bool    // explicit type-target override; nil = derive from the target
}

// RankedPath is an access path with its usability score.
type RankedPath struct {
	Path  AccessPath `json:"path"`
	Score float64    `json:"score"`
}

// Scoring weights. Bonuses reward paths a human would reach for first;
// penalties push down deep, privacy-marked, or internal-plumbing chains.
const (
	scoreBase = 100.0

	bonusEntrypoint    = 50.0 // root file looks like the package entrypoint
	bonusPreferredName = 20.0
	bonusDefaultExport = 20.0
	bonusClassRoot     = 10.0

	penaltyPerStep        = 5.0  // each non-call step beyond direct access
	penaltyPrivateStep    = 25.0 // per privacy-marked member hop
	penaltyInternalMember = 40.0 // flat, for a designated internal-client hop
	penaltyPerDepthLevel  = 10.0 // root file nested below the package root
	penaltyNamespaceType  = 5.0  // namespace roots reaching a type-only target
)

// PathsToRanked finds the target's access paths and orders them best-first by
// the usability heuristics above. Ties break toward the shorter pretty string.
func (e *Engine) PathsToRanked(target *sem.Declaration, opts RankOptions) ([]RankedPath, error) {
	paths, err := e.PathsTo(target)
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, nil
	}

	typeOnly := false
	if opts.TypeOnly != nil {
		typeOnly = *opts.TypeOnly
	} else if sym := e.resolveAlias(e.snap.SymbolOf(target)); sym != nil {
		typeOnly = !e.symbolIsValue(sym)
	}

	entrypoints := make(map[string]bool, len(e.entrypoints)+len(opts.Entrypoints))
	for f := range e.entrypoints {
		entrypoints[f] = true
	}
	for _, f := range opts.Entrypoints {
		entrypoints[f] = true
	}
	preferred := make(map[string]bool, len(e.preferredNames)+len(opts.PreferredNames))
	for n := range e.preferredNames {
		preferred[n] = true
	}
	for _, n := range opts.PreferredNames {
		preferred[n] = true
	}

	ranked := make([]RankedPath, len(paths))
	for i, p := range paths {
		p.Score = e.scorePath(p, typeOnly, entrypoints, preferred)
		ranked[i] = RankedPath{Path: p, Score: p.Score}
	}

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		pi, pj := ranked[i].Path.Pretty, ranked[j].Path.Pretty
		if len(pi) != len(pj) {
			return len(pi) < len(pj)
		}
		return pi < pj
	})
	return ranked, nil
}

func (e *Engine) scorePath(p AccessPath, typeOnly bool, entrypoints, preferred map[string]bool) float64 {
	score := scoreBase

	if isEntrypointFile(p.Root.File, entrypoints) {
		score += bonusEntrypoint
		if typeOnly {
			// Type-only targets lean even harder on the entrypoint: there is
			// no runtime chain to fall back to.
			score += bonusEntrypoint
		}
	}
	if preferred[p.Root.Name] {
		score += bonusPreferredName
	}
	if p.Root.Kind == ImportDefault {
		score += bonusDefaultExport
	}
	if e.rootIsClass(p.Root) {
		score += bonusClassRoot
	}

	for _, step := range p.Steps {
		if step.Kind == StepCall {
			continue
		}
		score -= penaltyPerStep
		if privacyMarked(step.Member) {
			score -= penaltyPrivateStep
		}
		if e.internalMembers[step.Member] {
			score -= penaltyInternalMember
		}
	}

	if depth := fileDepth(p.Root.File); depth > 1 {
		levels := float64(depth - 1)
		score -= penaltyPerDepthLevel * levels
		if typeOnly {
			score -= penaltyPerDepthLevel * levels
		}
	}
	if typeOnly && p.Root.Kind == ImportNamespace {
		score -= penaltyNamespaceType
	}
	return score
}

func (e *Engine) rootIsClass(root ExportRecord) bool {
	sym := e.resolveAlias(e.snap.Symbol(root.SymbolID))
	for _, d := range e.snap.DeclarationsOf(sym) {
		if d.Kind == sem.DeclClass {
			return true
		}
	}
	return false
}

// isEntrypointFile reports whether a file is a configured entrypoint or looks
// like one: an index/main file at the package root or one level below it.
func isEntrypointFile(file string, entrypoints map[string]bool) bool {
	if entrypoints[file] {
		return true
	}
	base := strings.TrimSuffix(path.Base(file), path.Ext(path.Base(file)))
	if base != "index" && base != "main" {
		return false
	}
	return fileDepth(file) <= 1
}

// fileDepth counts directories between the package root and the file.
func fileDepth(file string) int {
	return strings.Count(path.Clean(file), "/")
}

// privacyMarked reports whether a member name carries a privacy convention.
func privacyMarked(name string) bool {
	return strings.HasPrefix(name, "_") || strings.HasPrefix(name, "#")
}
