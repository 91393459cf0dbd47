package surface

import (
	"strings"
	"testing"

	"github.com/jward/surface/internal/sem"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// addFunction registers a function declaration whose span covers the whole
// content, with the body starting at the first top-level brace.
func addFunction(s *sem.Snapshot, fileID int64, name, content string) (declID, symID int64) {
	return declare(s, &sem.Declaration{
		FileID:    fileID,
		Kind:      sem.DeclFunction,
		Name:      name,
		Start:     0,
		End:       len(content),
		BodyStart: strings.Index(content, "{"),
	})
}

// =============================================================================
// BuildStableID
// =============================================================================

func TestBuildStableID_Fields(t *testing.T) {
	t.Parallel()
	snap := sem.NewSnapshot()
	content := "export function greet(name: string): string { return 'hi ' + name; }"
	fID := addFile(snap, "src/greet.ts", content)
	declID, symID := addFunction(snap, fID, "greet", content)
	snap.AddExport(sem.Export{FileID: fID, Name: "greet", SymbolID: symID})

	e := New(snap)
	id, err := e.BuildStableID(snap.Declaration(declID))
	require.NoError(t, err)
	require.NotNil(t, id)

	assert.Equal(t, "src/greet.ts", id.File)
	assert.Equal(t, sem.DeclFunction, id.Kind)
	assert.Equal(t, "greet", id.Name)
	assert.Empty(t, id.Containers)
	assert.NotEmpty(t, id.HeaderHash)
	assert.Equal(t, 0, id.OverloadIndex)
	assert.Equal(t, []ExportHint{{Module: "src/greet.ts", ExportName: "greet"}}, id.ExportHints)
}

func TestBuildStableID_HeaderSurvivesBodyAndFormattingEdits(t *testing.T) {
	t.Parallel()
	build := func(content string) *StableID {
		snap := sem.NewSnapshot()
		fID := addFile(snap, "src/greet.ts", content)
		declID, _ := addFunction(snap, fID, "greet", content)
		e := New(snap)
		id, err := e.BuildStableID(snap.Declaration(declID))
		require.NoError(t, err)
		require.NotNil(t, id)
		return id
	}

	a := build("export function greet(name: string): string { return 'hi'; }")
	b := build("export  function\n  greet(name: string): string { return 'HELLO, ' + name; }")
	c := build("export function greet(name: string): number { return 0; }")

	assert.Equal(t, a.HeaderHash, b.HeaderHash)
	assert.Equal(t, a.Hash(), b.Hash())
	assert.NotEqual(t, a.HeaderHash, c.HeaderHash)
}

func TestBuildStableID_UnaffectedBySiblingRename(t *testing.T) {
	t.Parallel()
	build := func(sibling string) *StableID {
		content := "class Api {\n  send(req: Request): void {}\n  " + sibling + "(): void {}\n}"
		snap := sem.NewSnapshot()
		fID := addFile(snap, "src/api.ts", content)
		classID, _ := declare(snap, &sem.Declaration{
			FileID: fID, Kind: sem.DeclClass, Name: "Api",
			Start: 0, End: len(content), BodyStart: strings.Index(content, "{"),
		})
		sendStart := strings.Index(content, "send")
		sendID, _ := declare(snap, &sem.Declaration{
			FileID: fID, Kind: sem.DeclMethod, Name: "send", ParentID: classID,
			Start: sendStart, End: sendStart + len("send(req: Request): void {}"),
			BodyStart: strings.Index(content, "void {}") + len("void "),
		})
		sibStart := strings.Index(content, sibling+"()")
		declare(snap, &sem.Declaration{
			FileID: fID, Kind: sem.DeclMethod, Name: sibling, ParentID: classID,
			Start: sibStart, End: sibStart + len(sibling+"(): void {}"),
			BodyStart: strings.LastIndex(content, "{}"),
		})
		id, err := New(snap).BuildStableID(snap.Declaration(sendID))
		require.NoError(t, err)
		require.NotNil(t, id)
		return id
	}

	a := build("ping")
	b := build("pong")
	assert.Equal(t, a.Hash(), b.Hash())
}

func TestBuildStableID_HeaderIgnoresComments(t *testing.T) {
	t.Parallel()
	build := func(content string) *StableID {
		snap := sem.NewSnapshot()
		fID := addFile(snap, "src/greet.ts", content)
		declID, _ := addFunction(snap, fID, "greet", content)
		id, err := New(snap).BuildStableID(snap.Declaration(declID))
		require.NoError(t, err)
		return id
	}

	plain := build("function greet(name: string): string { return name; }")
	commented := build("function greet(/* the name */ name: string): string { return name; }")
	assert.Equal(t, plain.HeaderHash, commented.HeaderHash)
}

func TestBuildStableID_ContainerChain(t *testing.T) {
	t.Parallel()
	snap := sem.NewSnapshot()
	content := "namespace Api { class Client { send(): void {} } }"
	fID := addFile(snap, "src/api.ts", content)

	modID, _ := declare(snap, &sem.Declaration{
		FileID: fID, Kind: sem.DeclModule, Name: "Api",
		Start: 0, End: len(content), BodyStart: strings.Index(content, "{"),
	})
	classStart := strings.Index(content, "class")
	classID, _ := declare(snap, &sem.Declaration{
		FileID: fID, Kind: sem.DeclClass, Name: "Client", ParentID: modID,
		Start: classStart, End: len(content) - 2, BodyStart: strings.Index(content, "{ send"),
	})
	methodStart := strings.Index(content, "send")
	methodID, _ := declare(snap, &sem.Declaration{
		FileID: fID, Kind: sem.DeclMethod, Name: "send", ParentID: classID,
		Start: methodStart, End: len(content) - 4, BodyStart: strings.Index(content, "{}"),
	})

	e := New(snap)
	id, err := e.BuildStableID(snap.Declaration(methodID))
	require.NoError(t, err)
	require.NotNil(t, id)

	assert.Equal(t, []ContainerLink{
		{Kind: sem.DeclModule, Name: "Api"},
		{Kind: sem.DeclClass, Name: "Client"},
	}, id.Containers)
}

func TestBuildStableID_NilWithoutSymbol(t *testing.T) {
	t.Parallel()
	snap := sem.NewSnapshot()
	fID := addFile(snap, "src/a.ts", "function f() {}")
	declID := snap.AddDeclaration(&sem.Declaration{
		FileID: fID, Kind: sem.DeclFunction, Name: "f", Start: 0, End: 15, BodyStart: 13,
	})

	e := New(snap)
	id, err := e.BuildStableID(snap.Declaration(declID))
	require.NoError(t, err)
	assert.Nil(t, id)

	id, err = e.BuildStableID(nil)
	require.NoError(t, err)
	assert.Nil(t, id)
}

func TestStableID_HashExcludesExportHints(t *testing.T) {
	t.Parallel()
	id := StableID{
		File: "src/a.ts", Kind: sem.DeclFunction, Name: "f",
		HeaderHash: "abc", OverloadIndex: 1,
	}
	withHints := id
	withHints.ExportHints = []ExportHint{{Module: "src/index.ts", ExportName: "f"}}
	assert.Equal(t, id.Hash(), withHints.Hash())

	moved := id
	moved.File = "src/b.ts"
	assert.NotEqual(t, id.Hash(), moved.Hash())
}

// =============================================================================
// Overloads
// =============================================================================

func TestBuildStableID_OverloadsDisambiguated(t *testing.T) {
	t.Parallel()
	snap := sem.NewSnapshot()
	content := "class Store {\n  load(id: string): Item;\n  load(ids: string[]): Item[];\n}"
	fID := addFile(snap, "src/store.ts", content)

	classID, _ := declare(snap, &sem.Declaration{
		FileID: fID, Kind: sem.DeclClass, Name: "Store",
		Start: 0, End: len(content), BodyStart: strings.Index(content, "{"),
	})

	// Overload heads share one symbol and have no body.
	sym := snap.AddSymbol(&sem.Symbol{Name: "load"})
	first := strings.Index(content, "load(id:")
	second := strings.Index(content, "load(ids:")
	d1 := snap.AddDeclaration(&sem.Declaration{
		FileID: fID, Kind: sem.DeclMethod, Name: "load", ParentID: classID,
		Start: first, End: first + len("load(id: string): Item;"), BodyStart: -1,
	})
	d2 := snap.AddDeclaration(&sem.Declaration{
		FileID: fID, Kind: sem.DeclMethod, Name: "load", ParentID: classID,
		Start: second, End: second + len("load(ids: string[]): Item[];"), BodyStart: -1,
	})
	snap.Bind(d1, sym)
	snap.Bind(d2, sym)

	e := New(snap)
	id1, err := e.BuildStableID(snap.Declaration(d1))
	require.NoError(t, err)
	id2, err := e.BuildStableID(snap.Declaration(d2))
	require.NoError(t, err)

	assert.NotEqual(t, id1.OverloadIndex, id2.OverloadIndex)
	assert.NotEqual(t, id1.Hash(), id2.Hash())

	got1, _, err := e.ResolveStableID(id1)
	require.NoError(t, err)
	require.NotNil(t, got1)
	assert.Equal(t, d1, got1.ID)

	got2, _, err := e.ResolveStableID(id2)
	require.NoError(t, err)
	require.NotNil(t, got2)
	assert.Equal(t, d2, got2.ID)
}

// =============================================================================
// ResolveStableID
// =============================================================================

func TestResolveStableID_RoundTrip(t *testing.T) {
	t.Parallel()
	snap := sem.NewSnapshot()
	content := "export function greet(name: string): string { return name; }"
	fID := addFile(snap, "src/greet.ts", content)
	declID, symID := addFunction(snap, fID, "greet", content)

	e := New(snap)
	id, err := e.BuildStableID(snap.Declaration(declID))
	require.NoError(t, err)

	d, sym, err := e.ResolveStableID(id)
	require.NoError(t, err)
	require.NotNil(t, d)
	assert.Equal(t, declID, d.ID)
	assert.Equal(t, symID, sym.ID)
}

func TestResolveStableID_SurvivesFileMove(t *testing.T) {
	t.Parallel()
	content := "export function greet(name: string): string { return name; }"

	before := sem.NewSnapshot()
	bf := addFile(before, "src/greet.ts", content)
	bd, _ := addFunction(before, bf, "greet", content)
	id, err := New(before).BuildStableID(before.Declaration(bd))
	require.NoError(t, err)

	// Same declaration, different file path.
	after := sem.NewSnapshot()
	af := addFile(after, "src/core/greeting.ts", content)
	ad, _ := addFunction(after, af, "greet", content)

	d, _, err := New(after).ResolveStableID(id)
	require.NoError(t, err)
	require.NotNil(t, d)
	assert.Equal(t, ad, d.ID)
}

func TestResolveStableID_NoMatch(t *testing.T) {
	t.Parallel()
	snap := sem.NewSnapshot()
	content := "function f() {}"
	fID := addFile(snap, "src/a.ts", content)
	addFunction(snap, fID, "f", content)

	e := New(snap)
	d, sym, err := e.ResolveStableID(&StableID{
		File: "src/a.ts", Kind: sem.DeclFunction, Name: "f", HeaderHash: "bogus",
	})
	require.NoError(t, err)
	assert.Nil(t, d)
	assert.Nil(t, sym)

	d, sym, err = e.ResolveStableID(nil)
	require.NoError(t, err)
	assert.Nil(t, d)
	assert.Nil(t, sym)
}

// =============================================================================
// Header normalization
// =============================================================================

func TestNormalizedHeader_TypeAlias(t *testing.T) {
	t.Parallel()
	snap := sem.NewSnapshot()

	structural := "export type Opts = { retries: number }"
	f1 := addFile(snap, "src/opts.ts", structural)
	d1, _ := declare(snap, &sem.Declaration{
		FileID: f1, Kind: sem.DeclTypeAlias, Name: "Opts",
		Start: 0, End: len(structural), BodyStart: strings.Index(structural, "{"),
	})

	simple := "export type ID = string"
	f2 := addFile(snap, "src/id.ts", simple)
	d2, _ := declare(snap, &sem.Declaration{
		FileID: f2, Kind: sem.DeclTypeAlias, Name: "ID",
		Start: 0, End: len(simple), BodyStart: -1,
	})

	generic := "type Pair<A = string, B = number> = [A, B]"
	f3 := addFile(snap, "src/pair.ts", generic)
	d3, _ := declare(snap, &sem.Declaration{
		FileID: f3, Kind: sem.DeclTypeAlias, Name: "Pair",
		Start: 0, End: len(generic), BodyStart: -1,
	})

	e := New(snap)
	assert.Equal(t, "export type Opts =", e.normalizedHeader(snap.Declaration(d1)))
	assert.Equal(t, "export type ID =", e.normalizedHeader(snap.Declaration(d2)))
	// Parameter defaults inside <> are not the top-level "=".
	assert.Equal(t, "type Pair<A = string, B = number> =", e.normalizedHeader(snap.Declaration(d3)))
}

func TestNormalizedHeader_BodylessKeepsFullText(t *testing.T) {
	t.Parallel()
	snap := sem.NewSnapshot()
	content := "declare function parse(input: string): Config;"
	fID := addFile(snap, "src/parse.d.ts", content)
	declID, _ := declare(snap, &sem.Declaration{
		FileID: fID, Kind: sem.DeclFunction, Name: "parse",
		Start: 0, End: len(content), BodyStart: -1,
	})

	e := New(snap)
	assert.Equal(t, content, e.normalizedHeader(snap.Declaration(declID)))
}

func TestCollapseWhitespace(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "a b c", collapseWhitespace("  a\n\tb   c  "))
	assert.Equal(t, "", collapseWhitespace("   "))
}

func TestStripComments_KeepsStringContents(t *testing.T) {
	t.Parallel()
	got := stripComments(`const url = "http://example.com"; // trailing`)
	assert.Equal(t, `const url = "http://example.com";  `, got)

	got = stripComments("a /* gone */ b")
	assert.Equal(t, "a   b", got)
}
