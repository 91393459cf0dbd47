package surface

import (
	"fmt"
	"strings"

	"github.com/jward/surface/internal/sem"
)

// PrintOptions controls which members PrintPublicInterface includes.
type PrintOptions struct {
	IncludeStatic      bool
	IncludeConstructor bool
}

// DefaultPrintOptions returns the options PrintPublicInterface uses when the
// caller has no preference: statics and constructors included.
func DefaultPrintOptions() PrintOptions {
	return PrintOptions{IncludeStatic: true, IncludeConstructor: true}
}

// PrintPublicInterface renders a class-like declaration's public shape:
// the header up to the member list, then each public member signature-only —
// bodies and initializers stripped, property types synthesized from the
// checker when unannotated. Accepts a class declaration or a variable bound
// to an anonymous class expression; in the latter case the binding supplies
// the rendered name and the export prefix. Returns ("", nil) when the target
// is not class-like.
func (e *Engine) PrintPublicInterface(d *sem.Declaration, opts PrintOptions) (string, error) {
	if d == nil {
		return "", nil
	}

	class := d
	binding := (*sem.Declaration)(nil)
	if d.Kind == sem.DeclVariable && d.InitExprID != 0 {
		if x := e.snap.Expr(d.InitExprID); x != nil && x.Kind == sem.ExprClass {
			if cd := e.snap.Declaration(x.DeclID); cd != nil {
				binding = d
				class = cd
			}
		}
	}
	if class.Kind != sem.DeclClass {
		e.log.Debug("print: not a class-like declaration", "decl", d.ID, "kind", d.Kind)
		return "", nil
	}

	header := e.classHeader(class, binding)

	var b strings.Builder
	b.WriteString(header)
	b.WriteString(" {\n")
	for _, m := range e.snap.Children(class) {
		if !e.printableMember(m, opts) {
			continue
		}
		line := e.memberSignature(m)
		if line == "" {
			continue
		}
		b.WriteString("  ")
		b.WriteString(line)
		b.WriteByte('\n')
	}
	b.WriteString("}")
	return b.String(), nil
}

// classHeader slices the class text up to the member list. For an anonymous
// class expression assigned to a named binding, the binding's name is
// substituted and its export modifiers decide the prefix.
func (e *Engine) classHeader(class, binding *sem.Declaration) string {
	text := e.snap.Text(class)
	cut := len(text)
	if class.BodyStart >= class.Start && class.BodyStart-class.Start < cut {
		cut = class.BodyStart - class.Start
	}
	header := strings.TrimSpace(text[:cut])

	if binding == nil || class.Name != "" {
		return header
	}

	// Insert the binding's name after the class keyword. The keyword is not
	// necessarily at offset 0 (a parenthesis or comment may precede it);
	// whatever comes before it is trivia and is dropped.
	if at := strings.Index(header, "class"); at >= 0 {
		header = "class " + binding.Name + header[at+len("class"):]
	}

	switch {
	case binding.HasModifier("export") && binding.HasModifier("default"):
		header = "export default " + header
	case binding.HasModifier("export"):
		header = "export " + header
	}
	return header
}

// printableMember applies the public-surface and option filters.
func (e *Engine) printableMember(m *sem.Declaration, opts PrintOptions) bool {
	if m.HasModifier("private") || m.HasModifier("protected") || privacyMarked(m.Name) {
		return false
	}
	if !opts.IncludeStatic && m.HasModifier("static") {
		return false
	}
	if !opts.IncludeConstructor && m.Kind == sem.DeclConstructor {
		return false
	}
	switch m.Kind {
	case sem.DeclMethod, sem.DeclConstructor, sem.DeclAccessor,
		sem.DeclProperty, sem.DeclIndexSignature:
		return true
	}
	return false
}

// memberSignature renders one member signature-only with a trailing
// terminator.
func (e *Engine) memberSignature(m *sem.Declaration) string {
	text := e.snap.Text(m)

	switch m.Kind {
	case sem.DeclMethod, sem.DeclConstructor, sem.DeclAccessor:
		// Slice up to the body; ambient/overload members keep their full text.
		if m.BodyStart >= m.Start && m.BodyStart-m.Start <= len(text) {
			text = text[:m.BodyStart-m.Start]
		}
		return terminate(strings.TrimSpace(text))

	case sem.DeclProperty:
		if m.TypeNodeID != 0 {
			// Explicit annotation: keep the declared text, initializer dropped.
			if m.BodyStart >= m.Start && m.BodyStart-m.Start <= len(text) {
				text = text[:m.BodyStart-m.Start]
			}
			return terminate(strings.TrimRight(strings.TrimSpace(text), "= \t"))
		}
		// No annotation: synthesize the inferred type.
		display := "any"
		if t := e.snap.TypeOfSymbol(e.snap.SymbolOf(m)); t != nil && t.Display != "" {
			display = t.Display
		}
		prefix := ""
		if m.HasModifier("static") {
			prefix = "static "
		}
		if m.HasModifier("readonly") {
			prefix += "readonly "
		}
		return fmt.Sprintf("%s%s: %s;", prefix, m.Name, display)

	case sem.DeclIndexSignature:
		return terminate(strings.TrimSpace(text))
	}
	return ""
}

func terminate(sig string) string {
	if sig == "" || strings.HasSuffix(sig, ";") {
		return sig
	}
	return sig + ";"
}
