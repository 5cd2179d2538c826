package facade

import (
	"errors"
	"fmt"
	"strings"

	"cbridge/internal/decl"
	"cbridge/internal/diag"
	"cbridge/internal/marshal"
)

// EmitMember adds the façade of one wrapped member. n must already have
// its flat wrapper generated: WrapName and the wrapper parameter list are
// read from n.Gen.
func (c *Class) EmitMember(n *decl.Node) {
	if !c.Active() {
		return
	}
	// inherited members come through real inheritance
	if n.Gen.InheritedFrom != nil || n.IsFriend() {
		return
	}

	isCtor := n.Kind == decl.KindConstructor
	isDtor := n.Kind == decl.KindDestructor
	isStatic := n.IsMember && n.StaticBase

	rtype := marshal.Void
	if !isCtor && !isDtor && !n.Ty().IsVoid() {
		var err error
		rtype, err = c.env.Types.FacadeReturn(n)
		if err != nil {
			c.reportType(n, err, fmt.Sprintf("the return type %q of %s", n.Ty().Str(""), n.Gen.WrapName))
			return
		}
	}

	parms := n.Gen.Parms
	if len(parms) > 0 && n.IsMember && !isCtor && !isStatic {
		if parms[0].Self {
			parms = parms[1:]
		} else {
			diag.ReportWarning(c.env.Reporter, diag.GenUnsupportedNode, n.Pos(),
				fmt.Sprintf("Unexpected first parameter %q in %s", parms[0].Name, n.Gen.WrapName)).Emit()
		}
	}

	var parmsCxx, parmsCall []string
	for _, p := range parms {
		if p.Gen.Skip || p.Ty().IsVoid() {
			continue
		}
		name := parmName(p)
		pd, err := c.env.Types.FacadeParm(p)
		if err != nil {
			c.reportType(n, err, fmt.Sprintf("the parameter %q of %s", name, n.Gen.WrapName))
			return
		}
		parmsCxx = append(parmsCxx, pd.Type+" "+name)
		parmsCall = append(parmsCall, pd.Wrap(name))
	}
	cxxList := strings.Join(parmsCxx, ", ")
	callList := strings.Join(parmsCall, ", ")

	checks := c.env.Checks
	if checks.Enabled() && (n.NoExcept || n.ThrowsEmpty) {
		checks = Checks{}
	}
	if cls := n.Class(); cls != nil && cls.Name == ExceptionClass {
		checks = Checks{}
	}

	name := memberName(n)
	wname := n.Gen.WrapName
	decls := &c.env.Sections.Decls
	impls := &c.env.Sections.Impls

	switch {
	case n.Role != decl.RoleNone:
		c.emitAccessor(n, name, rtype, cxxList, callList)

	case isCtor:
		fmt.Fprintf(decls, "%s%s(%s);\n", Indent, c.name, cxxList)
		fmt.Fprintf(impls, "inline %s::%s(%s) : %s{%s%s(%s)%s} {}\n",
			c.name, c.name, cxxList, c.name, checks.Start, wname, callList, checks.End)
		if n.CopyConstructor {
			c.hasCopyCtor = true
		}

	case isDtor:
		virtual := virtualPrefix(n)
		if c.first != nil {
			// clear the flag so the base does not release the object again
			fmt.Fprintf(decls, "%s%s~%s() {\n", Indent, virtual, c.name)
			fmt.Fprintf(decls, "%s%sif (swig_owns_self_) {\n", Indent, Indent)
			fmt.Fprintf(decls, "%s%s%s%s(swig_self());\n", Indent, Indent, Indent, wname)
			fmt.Fprintf(decls, "%s%s%sswig_owns_self_ = false;\n", Indent, Indent, Indent)
			fmt.Fprintf(decls, "%s%s}\n", Indent, Indent)
			fmt.Fprintf(decls, "%s}\n", Indent)
		} else {
			fmt.Fprintf(decls, "%s%s~%s() {\n", Indent, virtual, c.name)
			fmt.Fprintf(decls, "%s%sif (swig_owns_self_)\n", Indent, Indent)
			fmt.Fprintf(decls, "%s%s%s%s(swig_self_);\n", Indent, Indent, Indent, wname)
			fmt.Fprintf(decls, "%s}\n", Indent)
		}

	case n.IsMember:
		var wparms []string
		if !isStatic {
			wparms = append(wparms, "swig_self()")
		}
		if callList != "" {
			wparms = append(wparms, callList)
		}
		call := wname + "(" + strings.Join(wparms, ", ") + ")"

		prefix := virtualPrefix(n)
		if isStatic {
			prefix = "static "
		}
		suffix := constSuffix(n)
		fmt.Fprintf(decls, "%s%s%s %s(%s)%s;\n", Indent, prefix, rtype.Type, name, cxxList, suffix)
		fmt.Fprintf(impls, "inline %s %s::%s(%s)%s { ", rtype.Type, c.name, name, cxxList, suffix)
		if rtype.IsVoid() {
			impls.WriteString(call)
			if checks.Enabled() {
				impls.WriteString("; " + checks.Start + checks.End)
			}
		} else {
			impls.WriteString("return " + rtype.Wrap(checks.Start+call+checks.End))
		}
		impls.WriteString("; }\n")

	default:
		diag.ReportWarning(c.env.Reporter, diag.GenUnsupportedNode, n.Pos(),
			"Not generating C++ wrappers for "+wname).Emit()
	}
}

func (c *Class) emitAccessor(n *decl.Node, name string, rtype marshal.Descriptor, cxxList, callList string) {
	decls := &c.env.Sections.Decls
	wname := n.Gen.WrapName
	switch n.Role {
	case decl.RoleMemberGet:
		fmt.Fprintf(decls, "%s%s %s() const { return %s; }\n", Indent, rtype.Type, name, rtype.Wrap(wname+"(swig_self())"))
	case decl.RoleMemberSet:
		fmt.Fprintf(decls, "%svoid %s(%s) { %s(swig_self(), %s); }\n", Indent, name, cxxList, wname, callList)
	case decl.RoleVarGet:
		fmt.Fprintf(decls, "%sstatic %s %s() { return %s; }\n", Indent, rtype.Type, name, rtype.Wrap(wname+"()"))
	case decl.RoleVarSet:
		fmt.Fprintf(decls, "%sstatic void %s(%s) { %s(%s); }\n", Indent, name, cxxList, wname, callList)
	default:
		diag.ReportWarning(c.env.Reporter, diag.GenUnsupportedNode, n.Pos(),
			"Not generating C++ wrappers for variable "+wname).Emit()
	}
}

func (c *Class) reportType(n *decl.Node, err error, what string) {
	switch {
	case errors.Is(err, marshal.ErrNoCType):
		diag.ReportWarning(c.env.Reporter, diag.TmpMissing, n.Pos(),
			"No ctype typemap defined for "+what).Emit()
	default:
		diag.ReportError(c.env.Reporter, diag.GenUnresolvedType, n.Pos(), err.Error()).
			WithNote(n.Pos(), "in "+what).
			Emit()
	}
}

// memberName is the C++ name of the member: accessors are named after
// their variable.
func memberName(n *decl.Node) string {
	name := n.Name
	if n.Role != decl.RoleNone && n.Gen.Variable != nil {
		name = n.Gen.Variable.Name
	}
	if i := strings.LastIndex(name, "::"); i >= 0 {
		return name[i+2:]
	}
	return name
}

func parmName(p *decl.Parm) string {
	name := p.Name
	if name == "" {
		return p.Gen.LName
	}
	if i := strings.LastIndex(name, "::"); i >= 0 {
		return name[i+2:]
	}
	return name
}

func virtualPrefix(n *decl.Node) string {
	if n.IsVirtual() {
		return "virtual "
	}
	return ""
}

func constSuffix(n *decl.Node) string {
	if n.IsConstMethod() {
		return " const"
	}
	return ""
}
