package flat

import (
	"errors"
	"fmt"
	"strings"

	"cbridge/internal/decl"
	"cbridge/internal/diag"
	"cbridge/internal/marshal"
	"cbridge/internal/source"
	"cbridge/internal/symbols"
	"cbridge/internal/typemap"
)

// Function generates the wrapper of a function-like node: free and member
// functions, constructors, destructors and variable accessors. Problems
// specific to the declaration are reported and the declaration is skipped;
// the returned error is reserved for conditions that invalidate the whole
// module.
func (e *Emitter) Function(sc Scope, n *decl.Node) error {
	if n.Gen.Done {
		return nil
	}
	n.Gen.Done = true
	if n.Kind == decl.KindConstructor {
		if cls := n.Class(); cls != nil && cls.Abstract {
			return nil
		}
		// an extending constructor would clash with the generated <Class>_new
		if n.HasFeature("extend") {
			n.Overloaded = true
		}
	}

	parms := e.wrapperParms(n)
	wname := e.res.FunctionName(n, parms)

	if err := e.syms.Add(wname, n); err != nil {
		var dup *symbols.DuplicateError
		if errors.As(err, &dup) && (n.IsOverloaded() || n.Role.IsAccessor()) {
			e.skip(n, diag.GenDuplicateSymbol, fmt.Sprintf("wrapper %s clashes with %s", wname, describe(dup.Previous)))
			return nil
		}
		diag.ReportError(e.rep, diag.GenDuplicateSymbol, n.Pos(), err.Error()).
			WithNote(dupPos(err), "previously defined here").
			Emit()
		return err
	}

	if !e.opts.CPlusPlus {
		if !e.functionC(n, parms, wname) {
			e.syms.Release(wname, n)
		}
		return nil
	}
	if !e.functionCxx(n, parms, wname) {
		e.syms.Release(wname, n)
		return nil
	}
	e.wrappers++
	if sc.Facade.Active() && sc.Class != nil {
		sc.Facade.EmitMember(n)
	}
	return nil
}

// functionCxx emits a wrapper calling C++ code and its declaration. It
// reports false when the declaration had to be skipped.
func (e *Emitter) functionCxx(n *decl.Node, parms []*decl.Parm, wname string) bool {
	t := n.Ty()
	isVoid := t.IsVoid() || n.Kind == decl.KindDestructor

	var retDef, retDecl, retTm string
	if !isVoid {
		var err error
		retTm, err = e.ctypes.Template(t, n.SymName)
		if err != nil {
			e.skip(n, diag.TmpMissing, fmt.Sprintf("No ctype typemap defined for %s", t.Str("")))
			return false
		}
		// result is assigned after declaration: top-level const must go
		rt := t.StripTopQualifiers()
		retDef = e.sub.ReturnType(retTm, rt, marshal.Definitions)
		retDecl = e.sub.ReturnType(retTm, rt, marshal.Declarations)
	} else {
		retDef, retDecl = "void", "void"
	}

	var input strings.Builder
	protoDef, err := e.proto(n, parms, &input)
	if err != nil {
		e.reportProto(n, err)
		return false
	}
	protoDecl, err := e.proto(n, parms, nil)
	if err != nil {
		e.reportProto(n, err)
		return false
	}

	var w strings.Builder
	fmt.Fprintf(&w, "SWIGEXPORTC %s %s%s {\n", retDef, wname, protoDef)
	if !isVoid {
		local := marshal.LocalType(t, e.rawCType(n))
		fmt.Fprintf(&w, "%s%s;\n", indent, local.Str("cppresult"))
	}
	e.localDecls(&w, parms)
	if !isVoid {
		fmt.Fprintf(&w, "%s%s result;\n", indent, retDef)
	}
	w.WriteByte('\n')
	w.WriteString(input.String())

	name := n.SymName
	e.eachParmTemplate(typemap.KindCheck, parms, func(tm typemap.Template, covered []*decl.Parm) {
		code := typemap.Expand(tm.Code, typemap.Vars{"$target": covered[0].Gen.LName, "$name": name})
		writeCode(&w, e.expandParms(code, covered, "c"+covered[0].Gen.LName))
	})

	writeCode(&w, e.guard(n, e.action(n, parms, isVoid)))

	if !isVoid {
		if tm, ok := e.lookup.ForNode(typemap.KindOut, n); ok {
			writeCode(&w, e.expandOut(n, tm.Code, retDef, retTm))
		} else {
			e.warn(n, diag.TmpMissing, fmt.Sprintf("Unable to use return type %s in function %s.", t.Str(""), n.Name))
		}
	}

	e.eachParmTemplate(typemap.KindFreeArg, parms, func(tm typemap.Template, covered []*decl.Parm) {
		code := typemap.Expand(tm.Code, typemap.Vars{"$source": covered[0].Gen.LName})
		writeCode(&w, e.expandParms(code, covered, "c"+covered[0].Gen.LName))
	})

	body := w.String()
	if isVoid {
		body = strings.ReplaceAll(body, "$null", "")
	} else {
		body = strings.ReplaceAll(body, "$null", "0")
		body += indent + "return result;\n"
	}
	body += "}\n\n"
	e.sec.Wrappers.WriteString(body)

	fmt.Fprintf(&e.sec.Decls, "SWIGIMPORT %s %s%s;\n\n", retDecl, wname, protoDecl)
	return true
}

// functionC emits a pass-through wrapper for plain C input. No typemaps
// are applied to arguments or results.
func (e *Emitter) functionC(n *decl.Node, parms []*decl.Parm, wname string) bool {
	t := n.Ty()
	isVoid := t.IsVoid()
	ret := t.Str("")

	var protoList, args []string
	for _, p := range parms {
		pt := p.Ty()
		if pt.IsVoid() {
			continue
		}
		if pt.IsVarargs() {
			e.skip(n, diag.GenVarargs, fmt.Sprintf("Vararg function %s not supported.", n.Name))
			return false
		}
		protoList = append(protoList, pt.Str(p.Gen.LName))
		args = append(args, p.Gen.LName)
	}
	protoDecl, err := e.proto(n, parms, nil)
	if err != nil {
		e.reportProto(n, err)
		return false
	}

	var w strings.Builder
	fmt.Fprintf(&w, "%s %s(%s) {\n", ret, wname, strings.Join(protoList, ", "))
	name := n.SymName
	e.eachParmTemplate(typemap.KindCheck, parms, func(tm typemap.Template, covered []*decl.Parm) {
		code := typemap.Expand(tm.Code, typemap.Vars{"$target": covered[0].Gen.LName, "$name": name})
		writeCode(&w, e.expandParms(code, covered, ""))
	})
	writeCode(&w, bareFeature(n, "prepend"))
	call := n.Name + "(" + strings.Join(args, ", ") + ");"
	if isVoid {
		writeCode(&w, call)
	} else {
		writeCode(&w, t.StripTopQualifiers().Str("result")+";\nresult = "+call)
	}
	writeCode(&w, bareFeature(n, "append"))
	if !isVoid {
		writeCode(&w, "return result;")
	}
	w.WriteString("}\n\n")
	e.sec.Wrappers.WriteString(w.String())

	// the declaration goes through the ctype typemaps like C++ wrappers
	retDecl := "void"
	if !isVoid {
		tm, err := e.ctypes.Template(t, n.SymName)
		if err != nil {
			e.warn(n, diag.TmpMissing, fmt.Sprintf("No ctype typemap defined for %s", t.Str("")))
			retDecl = ret
		} else {
			retDecl = e.sub.ReturnType(tm, t, marshal.Declarations)
		}
	}
	fmt.Fprintf(&e.sec.Decls, "SWIGIMPORT %s %s%s;\n\n", retDecl, wname, protoDecl)
	e.wrappers++
	return true
}

// bareFeature returns a code feature with one level of braces removed.
func bareFeature(n *decl.Node, name string) string {
	code := n.Feature(name)
	if strings.HasPrefix(code, "{") && strings.HasSuffix(code, "}") {
		code = code[1 : len(code)-1]
	}
	return strings.TrimSpace(code)
}

func (e *Emitter) reportProto(n *decl.Node, err error) {
	switch {
	case errors.Is(err, errVarargs):
		e.skip(n, diag.GenVarargs, fmt.Sprintf("Vararg function %s not supported.", n.Name))
	case errors.Is(err, marshal.ErrNoCType):
		e.skip(n, diag.TmpMissing, err.Error())
	default:
		e.skip(n, diag.GenUnresolvedType, err.Error())
	}
}

func (e *Emitter) rawCType(n *decl.Node) string {
	tm, ok := e.lookup.ForNode(typemap.KindCType, n)
	if !ok {
		return ""
	}
	return tm.Code
}

// expandOut fills in the out template. The C return type differs from the
// C++ one, so the assignment to $result gets an explicit cast.
func (e *Emitter) expandOut(n *decl.Node, code, retDef, retTm string) string {
	const assign = "$result = "
	if i := strings.Index(code, assign); i == 0 || (i > 0 && code[i-1] == ' ') {
		at := i + len(assign)
		code = code[:at] + "(" + retDef + ")" + code[at:]
	}
	vars := marshal.TypeVars("1", n.Ty(), retTm)
	vars["$1"] = "cppresult"
	vars["$result"] = "result"
	vars["$owner"] = "0"
	if n.HasFeature("new") {
		vars["$owner"] = "1"
	}
	return typemap.Expand(code, vars)
}

// action returns the statement calling the wrapped entity, storing its
// value in cppresult.
func (e *Emitter) action(n *decl.Node, parms []*decl.Parm, isVoid bool) string {
	action := n.Action
	if action == "" {
		action = e.synthesize(n, parms, isVoid)
	}
	if base := n.Gen.InheritedFrom; base != nil {
		action = strings.ReplaceAll(action, "arg1)->", "("+base.Name+"*)arg1)->")
		if n.Gen.BaseName != "" {
			action = strings.ReplaceAll(action, symbols.ScopeLast(n.Name), n.Gen.BaseName)
		}
	}
	return strings.ReplaceAll(action, "result =", "cppresult =")
}

// synthesize builds the call for nodes without an explicit action.
func (e *Emitter) synthesize(n *decl.Node, parms []*decl.Parm, isVoid bool) string {
	args := e.callArgs(parms)
	t := n.Ty()
	local := marshal.LocalType(t, e.rawCType(n)).Str("")
	member := symbols.ScopeLast(n.Name)

	switch n.Role {
	case decl.RoleMemberGet, decl.RoleVarGet:
		v := e.variableExpr(n)
		if t.IsReference() {
			return fmt.Sprintf("result = (%s) &%s;", local, v)
		}
		return fmt.Sprintf("result = (%s)(%s);", local, v)
	case decl.RoleMemberSet, decl.RoleVarSet:
		v := e.variableExpr(n)
		value := parms[len(parms)-1]
		rhs := value.Gen.LName
		if k := marshal.Classify(e.ctypeOf(value)); k == marshal.KindObj || k == marshal.KindRef {
			rhs = "*" + rhs
		}
		if n.Role == decl.RoleMemberSet {
			return fmt.Sprintf("if (arg1) %s = %s;", v, rhs)
		}
		return fmt.Sprintf("%s = %s;", v, rhs)
	}

	var call string
	switch {
	case n.Kind == decl.KindConstructor:
		cls := n.Class()
		return fmt.Sprintf("result = (%s *)new %s(%s);", cls.Name, cls.Name, args)
	case n.Kind == decl.KindDestructor:
		return "delete arg1;"
	case n.IsMember && n.StaticBase:
		call = fmt.Sprintf("%s::%s(%s)", n.Class().Name, member, args)
	case n.IsMember && !n.IsFriend():
		call = fmt.Sprintf("(arg1)->%s(%s)", member, args)
	default:
		call = fmt.Sprintf("%s(%s)", n.Name, args)
	}

	switch {
	case isVoid:
		return call + ";"
	case t.IsReference():
		return fmt.Sprintf("result = (%s) &%s;", local, call)
	case marshal.Classify(e.rawCType(n)) == marshal.KindObj:
		// returned objects are copied to the heap and owned by the caller
		value := t.StripQualifiers()
		return fmt.Sprintf("result = (%s)new %s(%s);", local, value.Str(""), call)
	}
	return fmt.Sprintf("result = (%s)%s;", local, call)
}

// variableExpr spells the variable an accessor reads or writes.
func (e *Emitter) variableExpr(n *decl.Node) string {
	v := n.Gen.Variable
	if v == nil {
		return n.Name
	}
	if n.Role == decl.RoleMemberGet || n.Role == decl.RoleMemberSet {
		return "(arg1)->" + symbols.ScopeLast(v.Name)
	}
	return v.Name
}

// guard wraps the action in the handlers turning C++ exceptions into
// pending C exceptions.
func (e *Emitter) guard(n *decl.Node, action string) string {
	if !e.opts.Exceptions || n.NoExcept || n.ThrowsEmpty {
		return action
	}
	if cls := n.Class(); cls != nil && cls.Name == ExceptionClass {
		return action
	}
	var b strings.Builder
	b.WriteString("try {\n")
	writeCode(&b, action)
	b.WriteString("} catch (std::exception const& e) {\n")
	b.WriteString(indent + "SWIG_CException_Raise(0, e.what());\n")
	b.WriteString(indent + "return $null;\n")
	b.WriteString("} catch (...) {\n")
	b.WriteString(indent + "SWIG_CException_Raise(-1, \"unknown C++ exception\");\n")
	b.WriteString(indent + "return $null;\n")
	b.WriteString("}")
	return b.String()
}

func dupPos(err error) (pos source.Pos) {
	var dup *symbols.DuplicateError
	if errors.As(err, &dup) && dup.Previous != nil {
		return dup.Previous.Pos()
	}
	return pos
}
