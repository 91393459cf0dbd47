package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/jward/surface"
	"github.com/spf13/cobra"
)

var exportsCmd = &cobra.Command{
	Use:   "exports",
	Short: "List every reachable export of every module",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, err := loadEngine()
		if err != nil {
			return err
		}
		recs := eng.ListExports()
		if flagFormat == "json" {
			return writeJSON(os.Stdout, recs)
		}
		formatExportsText(os.Stdout, recs)
		return nil
	},
}

var flagRanked bool

var pathsCmd = &cobra.Command{
	Use:   "paths <file> <line> <col>",
	Short: "Find access paths from export roots to a declaration",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, err := loadEngine()
		if err != nil {
			return err
		}
		d, err := declArg(eng, args)
		if err != nil {
			return err
		}
		if flagRanked {
			ranked, err := eng.PathsToRanked(d, surface.RankOptions{})
			if err != nil {
				return err
			}
			if flagFormat == "json" {
				return writeJSON(os.Stdout, ranked)
			}
			formatRankedText(os.Stdout, ranked)
			return nil
		}
		paths, err := eng.PathsTo(d)
		if err != nil {
			return err
		}
		if flagFormat == "json" {
			return writeJSON(os.Stdout, paths)
		}
		formatPathsText(os.Stdout, paths)
		return nil
	},
}

var relatedCmd = &cobra.Command{
	Use:   "related <file> <line> <col>",
	Short: "Collect the project-local types a declaration's signature depends on",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, err := loadEngine()
		if err != nil {
			return err
		}
		d, err := declArg(eng, args)
		if err != nil {
			return err
		}
		items, err := eng.Related(d)
		if err != nil {
			return err
		}
		if flagFormat == "json" {
			return writeJSON(os.Stdout, items)
		}
		formatRelatedText(os.Stdout, items)
		return nil
	},
}

var idCmd = &cobra.Command{
	Use:   "id",
	Short: "Build or resolve stable declaration identities",
}

var idBuildCmd = &cobra.Command{
	Use:   "build <file> <line> <col>",
	Short: "Build the stable identity of the declaration at a position",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, err := loadEngine()
		if err != nil {
			return err
		}
		d, err := declArg(eng, args)
		if err != nil {
			return err
		}
		id, err := eng.BuildStableID(d)
		if err != nil {
			return err
		}
		if id == nil {
			return fmt.Errorf("no identity derivable for declaration at %s:%s:%s", args[0], args[1], args[2])
		}
		if flagFormat == "json" {
			return writeJSON(os.Stdout, id)
		}
		formatIDText(os.Stdout, id)
		return nil
	},
}

var idResolveCmd = &cobra.Command{
	Use:   "resolve <id-json>",
	Short: "Resolve a stable identity back to its declaration",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, err := loadEngine()
		if err != nil {
			return err
		}
		var id surface.StableID
		if err := json.Unmarshal([]byte(args[0]), &id); err != nil {
			return fmt.Errorf("parse id: %w", err)
		}
		d, sym, err := eng.ResolveStableID(&id)
		if err != nil {
			return err
		}
		if d == nil {
			return fmt.Errorf("identity does not resolve to any declaration")
		}
		f := eng.Snapshot().File(d.FileID)
		line, col := eng.Snapshot().Position(d.FileID, d.Start)
		if flagFormat == "json" {
			return writeJSON(os.Stdout, map[string]any{
				"file": f.Path, "line": line, "col": col,
				"kind": d.Kind, "name": d.Name, "symbol": sym.Name,
			})
		}
		fmt.Fprintf(os.Stdout, "%s:%d:%d %s %s\n", f.Path, line, col, d.Kind, sym.Name)
		return nil
	},
}

var (
	flagNoStatic      bool
	flagNoConstructor bool
)

var printCmd = &cobra.Command{
	Use:   "print <file> <line> <col>",
	Short: "Print a class-like declaration's public interface",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, err := loadEngine()
		if err != nil {
			return err
		}
		d, err := declArg(eng, args)
		if err != nil {
			return err
		}
		opts := surface.DefaultPrintOptions()
		opts.IncludeStatic = !flagNoStatic
		opts.IncludeConstructor = !flagNoConstructor
		out, err := eng.PrintPublicInterface(d, opts)
		if err != nil {
			return err
		}
		if out == "" {
			return fmt.Errorf("declaration at %s:%s:%s is not class-like", args[0], args[1], args[2])
		}
		fmt.Fprintln(os.Stdout, out)
		return nil
	},
}

var flagPackage string

var importCmd = &cobra.Command{
	Use:   "import <module-file> <export-name>",
	Short: "Render an import statement for an export",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, err := loadEngine()
		if err != nil {
			return err
		}
		for _, rec := range eng.ListExports() {
			if rec.File == args[0] && rec.Name == args[1] {
				fmt.Fprintln(os.Stdout, eng.MakeImportStatement(rec, flagPackage))
				return nil
			}
		}
		return fmt.Errorf("no export %q in module %s", args[1], args[0])
	},
}

func init() {
	pathsCmd.Flags().BoolVar(&flagRanked, "ranked", false, "order paths by usability score")
	printCmd.Flags().BoolVar(&flagNoStatic, "no-static", false, "exclude static members")
	printCmd.Flags().BoolVar(&flagNoConstructor, "no-constructor", false, "exclude the constructor")
	importCmd.Flags().StringVar(&flagPackage, "package", "", "package name for a package-relative specifier")

	idCmd.AddCommand(idBuildCmd)
	idCmd.AddCommand(idResolveCmd)
}
