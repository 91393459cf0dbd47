package sem

// Semantic model domain types. A Snapshot holds one fully-checked view of a
// project: files, declarations, symbols, checker types, syntactic type
// expressions, value expressions, and per-module export tables. The checker
// that produces this data is external; everything here is read-only once the
// snapshot is frozen.

// DeclKind tags the syntactic form of a declaration.
type DeclKind string

const (
	DeclClass              DeclKind = "class"
	DeclInterface          DeclKind = "interface"
	DeclFunction           DeclKind = "function"
	DeclMethod             DeclKind = "method"
	DeclProperty           DeclKind = "property"
	DeclAccessor           DeclKind = "accessor"
	DeclTypeAlias          DeclKind = "type-alias"
	DeclEnum               DeclKind = "enum"
	DeclEnumMember         DeclKind = "enum-member"
	DeclVariable           DeclKind = "variable"
	DeclModule             DeclKind = "module"
	DeclConstructor        DeclKind = "constructor"
	DeclCallSignature      DeclKind = "call-signature"
	DeclConstructSignature DeclKind = "construct-signature"
	DeclIndexSignature     DeclKind = "index-signature"
	DeclTypeParam          DeclKind = "type-parameter"
)

// File is one source file of the checked project. Content is the full source
// text; declaration spans index into it as byte offsets.
type File struct {
	ID       int64
	Path     string // project-relative, forward slashes
	Content  string
	External bool // vendored, ambient, or standard-library file

	lineStarts []int // computed at Freeze
}

// Declaration is a named syntactic construct. Start/End delimit the full raw
// text span; BodyStart is the offset where the body, member list, initializer,
// or arrow token begins, or -1 when the declaration has no such part
// (signatures, ambient declarations, overload heads).
type Declaration struct {
	ID        int64
	FileID    int64
	Kind      DeclKind
	Name      string // empty for constructors and call/construct/index signatures
	Start     int
	End       int
	BodyStart int
	ParentID  int64 // enclosing declaration; 0 = file level
	SymbolID  int64
	Modifiers []string

	Params           []Param // function-likes, constructors, index signatures
	ReturnTypeNodeID int64   // syntactic return annotation; 0 = inferred
	TypeNodeID       int64   // property/variable/alias type annotation or alias RHS; 0 = none
	HeritageNodeIDs  []int64 // class/interface extends+implements clauses
	InitExprID       int64   // variable/property initializer expression; 0 = none
}

// Param is one parameter of a function-like declaration.
type Param struct {
	Name       string
	Ordinal    int
	TypeNodeID int64 // syntactic annotation; 0 = inferred
}

// Symbol is the semantic identity binding one or more declarations.
// AliasTargetID points one hop toward the underlying symbol; chains are
// resolved by applying the hop repeatedly.
type Symbol struct {
	ID             int64
	Name           string
	DeclIDs        []int64
	AliasTargetID  int64 // 0 = not an alias
	ValueTypeID    int64 // type of the symbol used as a value (class static side); 0 = none
	DeclaredTypeID int64 // type when referenced in type position (class instance side); 0 = none
}

// TypeKind tags a checker type.
type TypeKind string

const (
	TypeObject       TypeKind = "object"
	TypePrimitive    TypeKind = "primitive"
	TypeUnion        TypeKind = "union"
	TypeIntersection TypeKind = "intersection"
	TypeFunction     TypeKind = "function"
)

// Type is a checker-computed type. Display is the checker's rendering of the
// type, used when a signature has no syntactic annotation.
type Type struct {
	ID            int64
	Kind          TypeKind
	Display       string
	SymbolID      int64 // nominal symbol (class/interface/enum); 0 = anonymous
	AliasSymbolID int64 // alias name the type was referenced through; 0 = none
	TypeArgs      []int64
	Members       []int64 // union/intersection constituents
	Properties    []Property
	CallSigs      []Signature
	ConstructSigs []Signature
}

// Property is one named member of a type.
type Property struct {
	Name     string
	SymbolID int64
}

// Signature is a call or construct signature of a type. For construct
// signatures ReturnTypeID is the instance type.
type Signature struct {
	ParamTypeIDs []int64
	ReturnTypeID int64
}

// TypeNodeKind tags a syntactic type expression.
type TypeNodeKind string

const (
	NodeRef          TypeNodeKind = "ref"          // Foo, Foo<T> — RefSymbolID + Children as type args
	NodeArray        TypeNodeKind = "array"        // T[]
	NodeTuple        TypeNodeKind = "tuple"        // [A, B]
	NodeUnion        TypeNodeKind = "union"        // A | B
	NodeIntersection TypeNodeKind = "intersection" // A & B
	NodeParen        TypeNodeKind = "paren"        // (T)
	NodeLiteral      TypeNodeKind = "literal"      // inline structural { ... }
	NodeFunc         TypeNodeKind = "func"         // (a: A) => B
	NodeCtor         TypeNodeKind = "ctor"         // new (a: A) => B
	NodeMapped       TypeNodeKind = "mapped"       // { [K in Keys]: V }
	NodeIndexed      TypeNodeKind = "indexed"      // T[K]
	NodeOperator     TypeNodeKind = "operator"     // keyof/readonly/unique T
	NodeConditional  TypeNodeKind = "conditional"  // A extends B ? C : D
	NodeQuery        TypeNodeKind = "query"        // typeof x — RefSymbolID is a value symbol
	NodePredicate    TypeNodeKind = "predicate"    // x is T
	NodeKeyword      TypeNodeKind = "keyword"      // string, number, void, ...
)

// TypeNode is a node in a syntactic type expression. Children holds every
// nested type node a deep walk must visit: generic arguments, constituents,
// member/parameter/return types, operand types.
type TypeNode struct {
	ID          int64
	Kind        TypeNodeKind
	RefSymbolID int64 // resolved reference for NodeRef/NodeQuery; 0 otherwise
	Children    []int64
}

// ExprKind tags a value expression.
type ExprKind string

const (
	ExprIdent          ExprKind = "ident"
	ExprPropertyAccess ExprKind = "property-access"
	ExprElementAccess  ExprKind = "element-access"
	ExprCall           ExprKind = "call"
	ExprNew            ExprKind = "new"
	ExprLogical        ExprKind = "logical" // &&, ||, ??
	ExprClass          ExprKind = "class"   // class expression; DeclID is the class declaration
	ExprFunc           ExprKind = "func"    // function/arrow expression; DeclID set when named
	ExprLiteral        ExprKind = "literal"
	ExprOther          ExprKind = "other"
)

// Expr is a value expression. The checker resolves identifier and member
// references into RefSymbolID and records the expression's computed type.
type Expr struct {
	ID          int64
	Kind        ExprKind
	RefSymbolID int64   // resolved symbol for ident/property/element access; 0 = unresolved
	ObjectID    int64   // receiver for accesses, callee for call/new
	Key         string  // property name or literal element key
	KeyExprID   int64   // element access with a non-literal key
	Operands    []int64 // logical branches
	TypeID      int64   // checker type of this expression; 0 = unknown
	DeclID      int64   // class/function expressions: the underlying declaration
}

// Export is one entry of a module's export table.
type Export struct {
	FileID     int64
	Name       string
	SymbolID   int64
	Wildcard   bool  // declared via a wildcard re-export (export * as ns)
	Equals     bool  // legacy single-value export (export =)
	FromFileID int64 // re-export provenance; 0 = declared locally
}
