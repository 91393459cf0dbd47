// Package surface maps the public API surface of a checked codebase. Given an
// immutable semantic snapshot produced by an external checker, it answers the
// questions a documentation or indexing pipeline asks about every declaration:
//
//   - [Engine.BuildStableID] / [Engine.ResolveStableID]: a content-derived,
//     formatting-resistant identity for a declaration, and the reverse lookup
//     that survives moved or renamed files.
//   - [Engine.ListExports]: every reachable export of every module, classified
//     by import kind and runtime-value-ness.
//   - [Engine.PathsTo]: how an external consumer reaches a declaration through
//     exported entry points, as member-access chains found by BFS.
//   - [Engine.PathsToRanked]: the same paths ordered by human-usability
//     heuristics.
//   - [Engine.Related]: the project-local types a declaration's public
//     signature depends on.
//   - [Engine.PrintPublicInterface]: a class-like declaration's public shape,
//     bodies and initializers stripped.
//   - [Engine.MakeImportStatement]: a valid import statement for an export
//     record.
//
// All operations are synchronous, in-memory walks over the frozen snapshot.
// Traversal state (visited sets, depth counters) is scoped to each call, so a
// single Engine may serve any number of concurrent callers.
//
//	snap, err := surface.LoadSnapshot("surface.db")
//	if err != nil { ... }
//	eng := surface.New(snap, surface.WithPackageName("mylib"))
//
//	decl := snap.DeclarationAt("src/client.ts", 42, 7)
//	paths, err := eng.PathsToRanked(decl, surface.RankOptions{})
package surface
