package sem

import (
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// SQLite interchange format for semantic snapshots. The external checker
// toolchain serializes its model into this schema; Load reads the whole
// database into an in-memory Snapshot up front so that no query performed
// by the engine ever touches I/O.

const schemaDDL = `
CREATE TABLE IF NOT EXISTS metadata (
  key             TEXT PRIMARY KEY,
  value           TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS files (
  id              INTEGER PRIMARY KEY,
  path            TEXT NOT NULL UNIQUE,
  content         TEXT NOT NULL,
  external        INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS declarations (
  id              INTEGER PRIMARY KEY,
  file_id         INTEGER NOT NULL REFERENCES files(id),
  kind            TEXT NOT NULL,
  name            TEXT NOT NULL DEFAULT '',
  start_offset    INTEGER NOT NULL,
  end_offset      INTEGER NOT NULL,
  body_start      INTEGER NOT NULL DEFAULT -1,
  parent_id       INTEGER NOT NULL DEFAULT 0,
  symbol_id       INTEGER NOT NULL DEFAULT 0,
  modifiers       TEXT NOT NULL DEFAULT '[]',
  params          TEXT NOT NULL DEFAULT '[]',
  return_node_id  INTEGER NOT NULL DEFAULT 0,
  type_node_id    INTEGER NOT NULL DEFAULT 0,
  heritage        TEXT NOT NULL DEFAULT '[]',
  init_expr_id    INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_declarations_file ON declarations(file_id);

CREATE TABLE IF NOT EXISTS symbols (
  id               INTEGER PRIMARY KEY,
  name             TEXT NOT NULL,
  decl_ids         TEXT NOT NULL DEFAULT '[]',
  alias_target_id  INTEGER NOT NULL DEFAULT 0,
  value_type_id    INTEGER NOT NULL DEFAULT 0,
  declared_type_id INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS types (
  id              INTEGER PRIMARY KEY,
  kind            TEXT NOT NULL,
  display         TEXT NOT NULL DEFAULT '',
  symbol_id       INTEGER NOT NULL DEFAULT 0,
  alias_symbol_id INTEGER NOT NULL DEFAULT 0,
  type_args       TEXT NOT NULL DEFAULT '[]',
  members         TEXT NOT NULL DEFAULT '[]',
  properties      TEXT NOT NULL DEFAULT '[]',
  call_sigs       TEXT NOT NULL DEFAULT '[]',
  construct_sigs  TEXT NOT NULL DEFAULT '[]'
);

CREATE TABLE IF NOT EXISTS type_nodes (
  id              INTEGER PRIMARY KEY,
  kind            TEXT NOT NULL,
  ref_symbol_id   INTEGER NOT NULL DEFAULT 0,
  children        TEXT NOT NULL DEFAULT '[]'
);

CREATE TABLE IF NOT EXISTS exprs (
  id              INTEGER PRIMARY KEY,
  kind            TEXT NOT NULL,
  ref_symbol_id   INTEGER NOT NULL DEFAULT 0,
  object_id       INTEGER NOT NULL DEFAULT 0,
  key             TEXT NOT NULL DEFAULT '',
  key_expr_id     INTEGER NOT NULL DEFAULT 0,
  operands        TEXT NOT NULL DEFAULT '[]',
  type_id         INTEGER NOT NULL DEFAULT 0,
  decl_id         INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS exports (
  file_id         INTEGER NOT NULL REFERENCES files(id),
  name            TEXT NOT NULL,
  symbol_id       INTEGER NOT NULL,
  wildcard        INTEGER NOT NULL DEFAULT 0,
  equals          INTEGER NOT NULL DEFAULT 0,
  from_file_id    INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_exports_file ON exports(file_id);
`

func marshalJSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return "[]"
	}
	return string(b)
}

func unmarshalIDs(s string) []int64 {
	var out []int64
	if err := json.Unmarshal([]byte(s), &out); err != nil {
		return nil
	}
	return out
}

func unmarshalStrings(s string) []string {
	var out []string
	if err := json.Unmarshal([]byte(s), &out); err != nil {
		return nil
	}
	return out
}

// Load reads a serialized snapshot from a SQLite database and returns it
// frozen. The database is opened read-only and closed before returning.
func Load(dbPath string) (*Snapshot, error) {
	db, err := sql.Open("sqlite3", dbPath+"?mode=ro&_busy_timeout=30000")
	if err != nil {
		return nil, fmt.Errorf("open snapshot: %w", err)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping snapshot: %w", err)
	}

	s := NewSnapshot()

	if err := loadFiles(db, s); err != nil {
		return nil, err
	}
	if err := loadDeclarations(db, s); err != nil {
		return nil, err
	}
	if err := loadSymbols(db, s); err != nil {
		return nil, err
	}
	if err := loadTypes(db, s); err != nil {
		return nil, err
	}
	if err := loadTypeNodes(db, s); err != nil {
		return nil, err
	}
	if err := loadExprs(db, s); err != nil {
		return nil, err
	}
	if err := loadExports(db, s); err != nil {
		return nil, err
	}

	s.Freeze()
	return s, nil
}

func loadFiles(db *sql.DB, s *Snapshot) error {
	rows, err := db.Query("SELECT id, path, content, external FROM files")
	if err != nil {
		return fmt.Errorf("load files: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		f := &File{}
		var external int
		if err := rows.Scan(&f.ID, &f.Path, &f.Content, &external); err != nil {
			return fmt.Errorf("load files: scan: %w", err)
		}
		f.External = external != 0
		s.AddFile(f)
	}
	return rows.Err()
}

func loadDeclarations(db *sql.DB, s *Snapshot) error {
	rows, err := db.Query(
		`SELECT id, file_id, kind, name, start_offset, end_offset, body_start, parent_id, symbol_id,
		        modifiers, params, return_node_id, type_node_id, heritage, init_expr_id
		 FROM declarations`)
	if err != nil {
		return fmt.Errorf("load declarations: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		d := &Declaration{}
		var mods, params, heritage string
		if err := rows.Scan(&d.ID, &d.FileID, &d.Kind, &d.Name, &d.Start, &d.End,
			&d.BodyStart, &d.ParentID, &d.SymbolID, &mods, &params,
			&d.ReturnTypeNodeID, &d.TypeNodeID, &heritage, &d.InitExprID); err != nil {
			return fmt.Errorf("load declarations: scan: %w", err)
		}
		d.Modifiers = unmarshalStrings(mods)
		if err := json.Unmarshal([]byte(params), &d.Params); err != nil {
			return fmt.Errorf("load declarations: params: %w", err)
		}
		d.HeritageNodeIDs = unmarshalIDs(heritage)
		s.AddDeclaration(d)
	}
	return rows.Err()
}

func loadSymbols(db *sql.DB, s *Snapshot) error {
	rows, err := db.Query(
		"SELECT id, name, decl_ids, alias_target_id, value_type_id, declared_type_id FROM symbols")
	if err != nil {
		return fmt.Errorf("load symbols: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		sym := &Symbol{}
		var declIDs string
		if err := rows.Scan(&sym.ID, &sym.Name, &declIDs, &sym.AliasTargetID,
			&sym.ValueTypeID, &sym.DeclaredTypeID); err != nil {
			return fmt.Errorf("load symbols: scan: %w", err)
		}
		sym.DeclIDs = unmarshalIDs(declIDs)
		s.AddSymbol(sym)
	}
	return rows.Err()
}

func loadTypes(db *sql.DB, s *Snapshot) error {
	rows, err := db.Query(
		`SELECT id, kind, display, symbol_id, alias_symbol_id, type_args, members,
		        properties, call_sigs, construct_sigs
		 FROM types`)
	if err != nil {
		return fmt.Errorf("load types: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		t := &Type{}
		var args, members, props, callSigs, ctorSigs string
		if err := rows.Scan(&t.ID, &t.Kind, &t.Display, &t.SymbolID, &t.AliasSymbolID,
			&args, &members, &props, &callSigs, &ctorSigs); err != nil {
			return fmt.Errorf("load types: scan: %w", err)
		}
		t.TypeArgs = unmarshalIDs(args)
		t.Members = unmarshalIDs(members)
		if err := json.Unmarshal([]byte(props), &t.Properties); err != nil {
			return fmt.Errorf("load types: properties: %w", err)
		}
		if err := json.Unmarshal([]byte(callSigs), &t.CallSigs); err != nil {
			return fmt.Errorf("load types: call_sigs: %w", err)
		}
		if err := json.Unmarshal([]byte(ctorSigs), &t.ConstructSigs); err != nil {
			return fmt.Errorf("load types: construct_sigs: %w", err)
		}
		s.AddType(t)
	}
	return rows.Err()
}

func loadTypeNodes(db *sql.DB, s *Snapshot) error {
	rows, err := db.Query("SELECT id, kind, ref_symbol_id, children FROM type_nodes")
	if err != nil {
		return fmt.Errorf("load type_nodes: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		n := &TypeNode{}
		var children string
		if err := rows.Scan(&n.ID, &n.Kind, &n.RefSymbolID, &children); err != nil {
			return fmt.Errorf("load type_nodes: scan: %w", err)
		}
		n.Children = unmarshalIDs(children)
		s.AddTypeNode(n)
	}
	return rows.Err()
}

func loadExprs(db *sql.DB, s *Snapshot) error {
	rows, err := db.Query(
		`SELECT id, kind, ref_symbol_id, object_id, key, key_expr_id, operands, type_id, decl_id
		 FROM exprs`)
	if err != nil {
		return fmt.Errorf("load exprs: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		x := &Expr{}
		var operands string
		if err := rows.Scan(&x.ID, &x.Kind, &x.RefSymbolID, &x.ObjectID, &x.Key,
			&x.KeyExprID, &operands, &x.TypeID, &x.DeclID); err != nil {
			return fmt.Errorf("load exprs: scan: %w", err)
		}
		x.Operands = unmarshalIDs(operands)
		s.AddExpr(x)
	}
	return rows.Err()
}

func loadExports(db *sql.DB, s *Snapshot) error {
	rows, err := db.Query(
		"SELECT file_id, name, symbol_id, wildcard, equals, from_file_id FROM exports")
	if err != nil {
		return fmt.Errorf("load exports: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var e Export
		var wildcard, equals int
		if err := rows.Scan(&e.FileID, &e.Name, &e.SymbolID, &wildcard, &equals, &e.FromFileID); err != nil {
			return fmt.Errorf("load exports: scan: %w", err)
		}
		e.Wildcard = wildcard != 0
		e.Equals = equals != 0
		s.AddExport(e)
	}
	return rows.Err()
}

// Save serializes a snapshot into a SQLite database at dbPath, creating the
// schema if needed and replacing any rows from a previous save. Everything
// is written in one transaction.
func Save(s *Snapshot, dbPath string) error {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=30000")
	if err != nil {
		return fmt.Errorf("open snapshot: %w", err)
	}
	defer db.Close()

	if _, err := db.Exec(schemaDDL); err != nil {
		return fmt.Errorf("migrate snapshot: %w", err)
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	// Referencing tables first so the wipe is safe under foreign keys.
	for _, table := range []string{"exports", "exprs", "type_nodes", "types", "symbols", "declarations", "files"} {
		if _, err := tx.Exec("DELETE FROM " + table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	for _, f := range s.Files() {
		external := 0
		if f.External {
			external = 1
		}
		if _, err := tx.Exec("INSERT INTO files (id, path, content, external) VALUES (?, ?, ?, ?)",
			f.ID, f.Path, f.Content, external); err != nil {
			return fmt.Errorf("insert file %s: %w", f.Path, err)
		}
	}
	for _, d := range s.decls {
		if _, err := tx.Exec(
			`INSERT INTO declarations (id, file_id, kind, name, start_offset, end_offset, body_start, parent_id,
			   symbol_id, modifiers, params, return_node_id, type_node_id, heritage, init_expr_id)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			d.ID, d.FileID, d.Kind, d.Name, d.Start, d.End, d.BodyStart, d.ParentID,
			d.SymbolID, marshalJSON(d.Modifiers), marshalJSON(d.Params),
			d.ReturnTypeNodeID, d.TypeNodeID, marshalJSON(d.HeritageNodeIDs), d.InitExprID); err != nil {
			return fmt.Errorf("insert declaration %d: %w", d.ID, err)
		}
	}
	for _, sym := range s.symbols {
		if _, err := tx.Exec(
			`INSERT INTO symbols (id, name, decl_ids, alias_target_id, value_type_id, declared_type_id)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			sym.ID, sym.Name, marshalJSON(sym.DeclIDs), sym.AliasTargetID,
			sym.ValueTypeID, sym.DeclaredTypeID); err != nil {
			return fmt.Errorf("insert symbol %d: %w", sym.ID, err)
		}
	}
	for _, t := range s.types {
		if _, err := tx.Exec(
			`INSERT INTO types (id, kind, display, symbol_id, alias_symbol_id, type_args,
			   members, properties, call_sigs, construct_sigs)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			t.ID, t.Kind, t.Display, t.SymbolID, t.AliasSymbolID, marshalJSON(t.TypeArgs),
			marshalJSON(t.Members), marshalJSON(t.Properties),
			marshalJSON(t.CallSigs), marshalJSON(t.ConstructSigs)); err != nil {
			return fmt.Errorf("insert type %d: %w", t.ID, err)
		}
	}
	for _, n := range s.typeNodes {
		if _, err := tx.Exec(
			"INSERT INTO type_nodes (id, kind, ref_symbol_id, children) VALUES (?, ?, ?, ?)",
			n.ID, n.Kind, n.RefSymbolID, marshalJSON(n.Children)); err != nil {
			return fmt.Errorf("insert type node %d: %w", n.ID, err)
		}
	}
	for _, x := range s.exprs {
		if _, err := tx.Exec(
			`INSERT INTO exprs (id, kind, ref_symbol_id, object_id, key, key_expr_id, operands, type_id, decl_id)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			x.ID, x.Kind, x.RefSymbolID, x.ObjectID, x.Key, x.KeyExprID,
			marshalJSON(x.Operands), x.TypeID, x.DeclID); err != nil {
			return fmt.Errorf("insert expr %d: %w", x.ID, err)
		}
	}
	for fileID, list := range s.exports {
		for _, e := range list {
			wildcard, equals := 0, 0
			if e.Wildcard {
				wildcard = 1
			}
			if e.Equals {
				equals = 1
			}
			if _, err := tx.Exec(
				`INSERT INTO exports (file_id, name, symbol_id, wildcard, equals, from_file_id)
				 VALUES (?, ?, ?, ?, ?, ?)`,
				fileID, e.Name, e.SymbolID, wildcard, equals, e.FromFileID); err != nil {
				return fmt.Errorf("insert export %s: %w", e.Name, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
