package generator

import (
	"strconv"
	"strings"

	"github.com/seitarof/gen-priv/internal/cdecl"
	"github.com/seitarof/gen-priv/internal/project"
	"github.com/seitarof/gen-priv/internal/version"
)

const (
	assertVersionValid   = "gtk_priv_assert_gtk_version_valid"
	warnMayBeUnsupported = "gtk_priv_warn_gtk_version_may_be_unsupported"
)

// emitter renders the C functions of one struct.
type emitter struct {
	pr cdecl.Printer
	s  *project.Struct
}

type cArg struct {
	typ  cdecl.Type
	name string
}

func (e emitter) selfArg() cArg {
	return cArg{typ: &cdecl.PtrType{Inner: cdecl.NewCustomType(e.s.Typedef)}, name: "self"}
}

func (e emitter) versionIDFuncName() string {
	return e.s.FuncPrefix() + "get_version_id"
}

// definition renders a layout as a standalone C struct.
func (e emitter) definition(sv *project.StructVersion) string {
	var b strings.Builder
	b.WriteString("// Valid for GTK " + sv.RangeString() + "\n")
	b.WriteString("struct " + sv.Name() + "\n{")
	b.WriteString("\n" + cdecl.Indent + strings.Join(cdecl.SplitLines(e.pr.Node(sv.AST)), "\n"+cdecl.Indent) + "\n")
	b.WriteString("};\n")
	return b.String()
}

func (e emitter) fnName(action, id, suffix string) string {
	name := e.s.FuncPrefix() + action + "_" + id
	if suffix != "" {
		name += "_" + suffix
	}
	return name
}

// cFunction renders a function definition. Each line of body is indented once.
func (e emitter) cFunction(ret cdecl.Type, name string, args []cArg, body string) string {
	var b strings.Builder
	b.WriteString(e.pr.Left(ret, false) + " " + name + "(")
	parts := make([]string, 0, len(args))
	for _, a := range args {
		parts = append(parts, e.pr.Left(a.typ, false)+" "+a.name+e.pr.Right(a.typ, false))
	}
	b.WriteString(strings.Join(parts, ", "))
	b.WriteString(")" + e.pr.Right(ret, false) + " {\n")
	for _, line := range cdecl.SplitLines(strings.TrimSpace(body)) {
		b.WriteString(cdecl.Indent + line + "\n")
	}
	b.WriteString("}\n")
	return b.String()
}

// versionIDFunc maps the running library version to a layout ID once and
// caches it. Unknown released versions only warn.
func (e emitter) versionIDFunc() string {
	in := cdecl.Indent
	var b strings.Builder
	b.WriteString("static int version_id = -1;\n\n")
	b.WriteString("if (version_id == -1) {\n")
	b.WriteString(in + assertVersionValid + "();\n")
	b.WriteString(in + "int combo = gtk_get_minor_version() * " + strconv.Itoa(version.ComboFactor) + " + gtk_get_micro_version();\n\n")
	b.WriteString(in + "switch (combo) {\n")
	for _, v := range e.s.Ingested {
		if v.Released() {
			b.WriteString(in + in + "case " + strconv.Itoa(v.Combo()) + ":\n")
		}
	}
	b.WriteString(in + in + in + "break;\n\n")
	b.WriteString(in + in + "default:\n")
	b.WriteString(in + in + in + warnMayBeUnsupported + "();\n")
	b.WriteString(in + "}\n\n")
	b.WriteString(in)
	for i := len(e.s.Versions) - 1; i >= 0; i-- {
		if i > 0 {
			b.WriteString("if (combo >= " + strconv.Itoa(e.s.Versions[i].First.Combo()) + ") ")
		}
		b.WriteString("{\n" + in + in + "version_id = " + strconv.Itoa(i) + ";\n" + in + "}")
		if i > 0 {
			b.WriteString(" else ")
		}
	}
	b.WriteString("\n}\n\nreturn version_id;\n")
	return e.cFunction(cdecl.NewStdType("int"), e.versionIDFuncName(), nil, b.String())
}

// versionSwitch dispatches on the layout ID. typeName is the versioned struct
// type of the case.
func (e emitter) versionSwitch(p *project.Property, onSupported, onUnsupported func(typeName string) string) string {
	var b strings.Builder
	b.WriteString("switch (" + e.versionIDFuncName() + "()) {\n")
	for i, ok := range p.Supported {
		typeName := "struct " + e.s.Versions[i].Name()
		b.WriteString(cdecl.Indent + "case " + strconv.Itoa(i) + ": ")
		if ok {
			b.WriteString(onSupported(typeName))
		} else {
			b.WriteString(onUnsupported(typeName))
		}
		b.WriteString("\n")
	}
	b.WriteString(cdecl.Indent + `default: g_error("Invalid version ID"); g_abort();` + "\n")
	b.WriteString("}")
	return b.String()
}

func (e emitter) propertyFunctions(p *project.Property) string {
	var b strings.Builder
	b.WriteString("// " + e.s.Typedef + "::" + p.Name + "\n\n")
	if !p.AllSupported() {
		b.WriteString(e.supportedQuery(p))
		b.WriteString("\n")
	}
	switch p.Type.(type) {
	case *cdecl.CustomType, *cdecl.ArrayType:
		b.WriteString(e.ptrGetter(p))
	default:
		b.WriteString(e.getter(p))
		b.WriteString("\n")
		b.WriteString(e.setter(p))
	}
	return b.String()
}

func (e emitter) unsupported(p *project.Property) func(string) string {
	return func(string) string {
		return `g_error("` + e.s.Typedef + "::" + p.Name + ` not supported on this GTK"); g_abort();`
	}
}

func (e emitter) ptrGetter(p *project.Property) string {
	ret := &cdecl.PtrType{Inner: p.Type}
	suffix := "ptr"
	if !p.AllSupported() {
		suffix = "ptr_or_null"
	}
	retName := e.pr.Type(ret)
	body := e.versionSwitch(p,
		func(typeName string) string {
			return "return (" + retName + ")&((" + typeName + "*)self)->" + p.Name + ";"
		},
		func(string) string { return "return NULL;" })
	return e.cFunction(ret, e.fnName("get", p.IDName(), suffix), []cArg{e.selfArg()}, body)
}

func (e emitter) supportedQuery(p *project.Property) string {
	body := e.versionSwitch(p,
		func(string) string { return "return TRUE;" },
		func(string) string { return "return FALSE;" })
	return e.cFunction(cdecl.NewStdType("gboolean"), e.fnName("get", p.IDName(), "supported"), nil, body)
}

func (e emitter) getter(p *project.Property) string {
	suffix := ""
	if !p.AllSupported() {
		suffix = "or_abort"
	}
	body := e.versionSwitch(p,
		func(typeName string) string {
			return "return ((" + typeName + "*)self)->" + p.Name + ";"
		},
		e.unsupported(p))
	return e.cFunction(p.Type, e.fnName("get", p.IDName(), suffix), []cArg{e.selfArg()}, body)
}

func (e emitter) setter(p *project.Property) string {
	suffix := ""
	if !p.AllSupported() {
		suffix = "or_abort"
	}
	id := p.IDName()
	body := e.versionSwitch(p,
		func(typeName string) string {
			return "((" + typeName + "*)self)->" + p.Name + " = " + id + "; break;"
		},
		e.unsupported(p))
	args := []cArg{e.selfArg(), {typ: p.Type, name: id}}
	return e.cFunction(cdecl.NewStdType("void"), e.fnName("set", id, suffix), args, body)
}
