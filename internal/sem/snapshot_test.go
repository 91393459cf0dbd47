package sem

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshot_BuildBindFreeze(t *testing.T) {
	t.Parallel()
	s := NewSnapshot()
	fID := s.AddFile(&File{Path: "src/a.ts", Content: "function f() {}"})
	dID := s.AddDeclaration(&Declaration{FileID: fID, Kind: DeclFunction, Name: "f", Start: 0, End: 15})
	symID := s.AddSymbol(&Symbol{Name: "f"})
	s.Bind(dID, symID)

	assert.False(t, s.Frozen())
	s.Freeze()
	assert.True(t, s.Frozen())
	s.Freeze() // idempotent

	d := s.Declaration(dID)
	require.NotNil(t, d)
	assert.Equal(t, symID, d.SymbolID)
	sym := s.SymbolOf(d)
	require.NotNil(t, sym)
	assert.Equal(t, []int64{dID}, sym.DeclIDs)

	assert.Panics(t, func() { s.AddFile(&File{Path: "src/b.ts"}) })
	assert.Panics(t, func() { s.AddDeclaration(&Declaration{FileID: fID}) })
	assert.Panics(t, func() { s.AddSymbol(&Symbol{Name: "g"}) })
}

func TestSnapshot_AssignedAndExplicitIDs(t *testing.T) {
	t.Parallel()
	s := NewSnapshot()
	first := s.AddFile(&File{Path: "src/a.ts"})
	assert.Equal(t, int64(1), first)

	// Explicit IDs (as the SQLite loader supplies) advance the counter.
	s.AddSymbol(&Symbol{ID: 40, Name: "x"})
	next := s.AddSymbol(&Symbol{Name: "y"})
	assert.Equal(t, int64(41), next)
}

func TestSnapshot_FileByPathNormalizes(t *testing.T) {
	t.Parallel()
	s := NewSnapshot()
	s.AddFile(&File{Path: `./src\deep\a.ts`})
	require.NotNil(t, s.FileByPath("src/deep/a.ts"))
	require.NotNil(t, s.FileByPath(`src\deep\a.ts`))
	assert.Nil(t, s.FileByPath("src/missing.ts"))
}

func TestSnapshot_PositionAndOffset(t *testing.T) {
	t.Parallel()
	s := NewSnapshot()
	fID := s.AddFile(&File{Path: "src/a.ts", Content: "ab\ncd\nef"})
	s.Freeze()

	line, col := s.Position(fID, 0)
	assert.Equal(t, [2]int{1, 1}, [2]int{line, col})
	line, col = s.Position(fID, 4)
	assert.Equal(t, [2]int{2, 2}, [2]int{line, col})
	line, col = s.Position(fID, 6)
	assert.Equal(t, [2]int{3, 1}, [2]int{line, col})

	assert.Equal(t, 0, s.Offset(fID, 1, 1))
	assert.Equal(t, 4, s.Offset(fID, 2, 2))
	assert.Equal(t, -1, s.Offset(fID, 9, 1))
	assert.Equal(t, -1, s.Offset(fID, 0, 1))

	// Round trip.
	for _, off := range []int{0, 3, 5, 7} {
		l, c := s.Position(fID, off)
		assert.Equal(t, off, s.Offset(fID, l, c))
	}
}

func TestSnapshot_DeclarationAtPicksNarrowest(t *testing.T) {
	t.Parallel()
	s := NewSnapshot()
	content := "class C {\n  send() { go(); }\n}"
	fID := s.AddFile(&File{Path: "src/c.ts", Content: content})
	outer := s.AddDeclaration(&Declaration{FileID: fID, Kind: DeclClass, Name: "C", Start: 0, End: len(content)})
	inner := s.AddDeclaration(&Declaration{FileID: fID, Kind: DeclMethod, Name: "send", ParentID: outer, Start: 12, End: 28})
	s.Freeze()

	d := s.DeclarationAt("src/c.ts", 2, 4)
	require.NotNil(t, d)
	assert.Equal(t, inner, d.ID)

	d = s.DeclarationAt("src/c.ts", 1, 2)
	require.NotNil(t, d)
	assert.Equal(t, outer, d.ID)

	assert.Nil(t, s.DeclarationAt("src/missing.ts", 1, 1))
	assert.Nil(t, s.DeclarationAt("src/c.ts", 99, 1))
}

func TestSnapshot_DeclarationsInFileSorted(t *testing.T) {
	t.Parallel()
	s := NewSnapshot()
	fID := s.AddFile(&File{Path: "src/a.ts", Content: "aaaa bbbb cccc"})
	s.AddDeclaration(&Declaration{FileID: fID, Kind: DeclVariable, Name: "c", Start: 10, End: 14})
	s.AddDeclaration(&Declaration{FileID: fID, Kind: DeclVariable, Name: "a", Start: 0, End: 4})
	s.AddDeclaration(&Declaration{FileID: fID, Kind: DeclVariable, Name: "b", Start: 5, End: 9})
	s.Freeze()

	decls := s.DeclarationsInFile(fID)
	require.Len(t, decls, 3)
	assert.Equal(t, []string{"a", "b", "c"}, []string{decls[0].Name, decls[1].Name, decls[2].Name})
}

func TestSnapshot_ChildrenInSourceOrder(t *testing.T) {
	t.Parallel()
	s := NewSnapshot()
	fID := s.AddFile(&File{Path: "src/a.ts", Content: "class C { b() {} a() {} }"})
	classID := s.AddDeclaration(&Declaration{FileID: fID, Kind: DeclClass, Name: "C", Start: 0, End: 25})
	s.AddDeclaration(&Declaration{FileID: fID, Kind: DeclMethod, Name: "b", ParentID: classID, Start: 10, End: 16})
	s.AddDeclaration(&Declaration{FileID: fID, Kind: DeclMethod, Name: "a", ParentID: classID, Start: 17, End: 23})
	s.Freeze()

	kids := s.Children(s.Declaration(classID))
	require.Len(t, kids, 2)
	assert.Equal(t, "b", kids[0].Name)
	assert.Equal(t, "a", kids[1].Name)
	assert.Nil(t, s.Children(nil))
}

func TestSnapshot_TextBounds(t *testing.T) {
	t.Parallel()
	s := NewSnapshot()
	fID := s.AddFile(&File{Path: "src/a.ts", Content: "hello"})
	ok := s.AddDeclaration(&Declaration{FileID: fID, Start: 0, End: 5})
	bad := s.AddDeclaration(&Declaration{FileID: fID, Start: 2, End: 99})
	s.Freeze()

	assert.Equal(t, "hello", s.Text(s.Declaration(ok)))
	assert.Equal(t, "", s.Text(s.Declaration(bad)))
}

func TestSnapshot_AliasTargetSingleHop(t *testing.T) {
	t.Parallel()
	s := NewSnapshot()
	a := s.AddSymbol(&Symbol{Name: "a"})
	b := s.AddSymbol(&Symbol{Name: "b", AliasTargetID: a})
	c := s.AddSymbol(&Symbol{Name: "c", AliasTargetID: b})
	s.Freeze()

	got := s.AliasTarget(s.Symbol(c))
	require.NotNil(t, got)
	assert.Equal(t, b, got.ID) // one hop only

	assert.Nil(t, s.AliasTarget(s.Symbol(a)))
	assert.Nil(t, s.AliasTarget(nil))
}

func TestDeclaration_HasModifier(t *testing.T) {
	t.Parallel()
	d := &Declaration{Modifiers: []string{"export", "static"}}
	assert.True(t, d.HasModifier("static"))
	assert.False(t, d.HasModifier("private"))
}
