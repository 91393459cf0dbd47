package surface

import "github.com/jward/surface/internal/sem"

// Public type aliases for internal sem types used throughout the Engine API.
// These are Go type aliases (=) — identical to the internal types at compile
// time. External consumers use these names; no conversion is needed.

type Snapshot = sem.Snapshot

// NewSnapshot returns an empty, unfrozen snapshot for programmatic builds.
func NewSnapshot() *Snapshot { return sem.NewSnapshot() }

// LoadSnapshot reads a serialized semantic snapshot from a SQLite database
// and returns it frozen.
func LoadSnapshot(dbPath string) (*Snapshot, error) { return sem.Load(dbPath) }

// SaveSnapshot serializes a snapshot into a SQLite database at dbPath.
func SaveSnapshot(s *Snapshot, dbPath string) error { return sem.Save(s, dbPath) }

type File = sem.File
type Declaration = sem.Declaration
type Symbol = sem.Symbol
type Type = sem.Type
type TypeNode = sem.TypeNode
type Expr = sem.Expr
type DeclKind = sem.DeclKind
