package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/jward/surface"
)

// writeJSON emits indented JSON, the machine-facing output format.
func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// formatExportsText formats export records as aligned columns.
func formatExportsText(w io.Writer, recs []surface.ExportRecord) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "MODULE\tNAME\tKIND\tVALUE\tVIA")
	for _, r := range recs {
		value := "type-only"
		if r.IsValue {
			value = "value"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", r.File, r.Name, r.Kind, value, r.ViaFile)
	}
	tw.Flush()
}

// formatPathsText formats access paths one per line.
func formatPathsText(w io.Writer, paths []surface.AccessPath) {
	for _, p := range paths {
		fmt.Fprintf(w, "%s\t(root %s:%s)\n", p.Pretty, p.Root.File, p.Root.Name)
	}
}

// formatRankedText formats ranked paths with their scores.
func formatRankedText(w io.Writer, ranked []surface.RankedPath) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "SCORE\tPATH\tROOT")
	for _, r := range ranked {
		fmt.Fprintf(tw, "%.0f\t%s\t%s:%s\n", r.Score, r.Path.Pretty, r.Path.Root.File, r.Path.Root.Name)
	}
	tw.Flush()
}

// formatRelatedText formats related items as "name file:line:col" lines.
func formatRelatedText(w io.Writer, items []surface.RelatedItem) {
	for _, it := range items {
		fmt.Fprintf(w, "%s\t%s:%d:%d\n", it.Name, it.File, it.Line, it.Column)
	}
}

// formatIDText formats a stable identity as readable key/value lines.
func formatIDText(w io.Writer, id *surface.StableID) {
	fmt.Fprintf(w, "file:       %s\n", id.File)
	fmt.Fprintf(w, "kind:       %s\n", id.Kind)
	fmt.Fprintf(w, "name:       %s\n", id.Name)
	for _, c := range id.Containers {
		fmt.Fprintf(w, "container:  %s %s\n", c.Kind, c.Name)
	}
	fmt.Fprintf(w, "header:     %s\n", id.HeaderHash)
	fmt.Fprintf(w, "overload:   %d\n", id.OverloadIndex)
	fmt.Fprintf(w, "hash:       %s\n", id.Hash())
	for _, h := range id.ExportHints {
		fmt.Fprintf(w, "export:     %s from %s\n", h.ExportName, h.Module)
	}
}
