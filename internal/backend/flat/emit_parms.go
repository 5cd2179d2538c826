package flat

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"cbridge/internal/decl"
	"cbridge/internal/diag"
	"cbridge/internal/marshal"
	"cbridge/internal/typemap"
)

var errVarargs = errors.New("varargs")

// wrapperParms returns the wrapper parameter list of n, building and
// memoising it on first use: members get the object pointer in front and
// every parameter gets its local name.
func (e *Emitter) wrapperParms(n *decl.Node) []*decl.Parm {
	if n.Gen.Parms != nil {
		return n.Gen.Parms
	}
	parms := make([]*decl.Parm, 0, len(n.Parms)+1)
	if self := e.selfParm(n); self != nil {
		parms = append(parms, self)
	}
	parms = append(parms, n.Parms...)
	for i, p := range parms {
		if p.Gen.LName == "" {
			p.Gen.LName = "arg" + strconv.Itoa(i+1)
		}
	}
	n.Gen.Parms = parms
	return parms
}

// selfParm builds the object parameter of non-static members.
func (e *Emitter) selfParm(n *decl.Node) *decl.Parm {
	if !n.IsMember && n.Kind != decl.KindDestructor {
		return nil
	}
	if n.StaticBase || n.Kind == decl.KindConstructor {
		return nil
	}
	cls := n.Class()
	if cls == nil {
		return nil
	}
	typ := "p." + cls.Name
	if n.IsConstMethod() {
		typ = "p.q(const)." + cls.Name
	}
	return &decl.Parm{Name: "self", Type: typ, Self: true}
}

// proto renders the parenthesised wrapper parameter list. With a non-nil
// body the input conversions are appended to it and the parameters are
// spelled for the wrapper definition; otherwise for the declaration.
func (e *Emitter) proto(n *decl.Node, parms []*decl.Parm, body *strings.Builder) (string, error) {
	out := marshal.Declarations
	if body != nil {
		out = marshal.Definitions
	}
	var list []string
	for i := 0; i < len(parms); {
		p := parms[i]
		if p.Ty().IsVarargs() {
			return "", fmt.Errorf("%w: vararg function %s not supported", errVarargs, n.Name)
		}
		in, hasIn := e.lookup.ForParms(typemap.KindIn, parms, i)

		if hasIn && in.NumInputs == 0 {
			// not exposed, but the local still needs its value
			covered := span(in, parms, i)
			for _, q := range covered {
				q.Gen.Skip = true
			}
			if body != nil {
				writeCode(body, e.expandParms(in.Code, covered, ""))
			}
			i += len(covered)
			continue
		}

		t := p.Ty()
		if t.IsVoid() {
			i++
			continue
		}

		arg := "c" + p.Gen.LName
		tm, err := e.ctypes.Template(t, p.Name)
		if err != nil {
			return "", err
		}
		list = append(list, e.sub.ParmType(tm, t, out)+" "+arg)

		if !hasIn {
			e.warn(n, diag.TmpMissing, fmt.Sprintf("Unable to use type %s as a function argument.", t.Str("")))
			i++
			continue
		}
		covered := span(in, parms, i)
		if body != nil {
			p.Gen.EmitInput = arg
			writeCode(body, e.expandParms(in.Code, covered, arg))
		}
		i += len(covered)
	}
	return "(" + strings.Join(list, ", ") + ")", nil
}

// span returns the parameters a template covers starting at i.
func span(tm typemap.Template, parms []*decl.Parm, i int) []*decl.Parm {
	n := max(tm.Arity, 1)
	if i+n > len(parms) {
		n = len(parms) - i
	}
	return parms[i : i+n]
}

// expandParms substitutes the placeholders of a parameter template: $1,
// $2 ... name the locals of the covered parameters.
func (e *Emitter) expandParms(code string, covered []*decl.Parm, input string) string {
	vars := typemap.Vars{}
	for j, q := range covered {
		num := strconv.Itoa(j + 1)
		for k, v := range marshal.TypeVars(num, q.Ty(), e.ctypeOf(q)) {
			vars[k] = v
		}
		vars["$"+num] = q.Gen.LName
		vars["$"+num+"_name"] = q.Name
	}
	if input != "" {
		vars["$input"] = input
	}
	return typemap.Expand(code, vars)
}

// ctypeOf returns the unexpanded ctype template of a parameter, or "".
func (e *Emitter) ctypeOf(p *decl.Parm) string {
	tm, ok := e.lookup.ForType(typemap.KindCType, p.Ty(), p.Name)
	if !ok {
		return ""
	}
	return tm.Code
}

// localDecls declares one local per parameter.
func (e *Emitter) localDecls(body *strings.Builder, parms []*decl.Parm) {
	for _, p := range parms {
		t := p.Ty()
		if t.IsVoid() || t.IsVarargs() {
			continue
		}
		lt := marshal.LocalType(t, e.ctypeOf(p))
		fmt.Fprintf(body, "%s%s;\n", indent, lt.Str(p.Gen.LName))
	}
}

// eachParmTemplate runs fn for every parameter with a template of kind,
// following multi-parameter templates.
func (e *Emitter) eachParmTemplate(kind typemap.Kind, parms []*decl.Parm, fn func(tm typemap.Template, covered []*decl.Parm)) {
	for i := 0; i < len(parms); {
		tm, ok := e.lookup.ForParms(kind, parms, i)
		if !ok {
			i++
			continue
		}
		covered := span(tm, parms, i)
		fn(tm, covered)
		i += len(covered)
	}
}

// callArgs returns the arguments of the call to the wrapped entity.
// Objects held by pointer are dereferenced.
func (e *Emitter) callArgs(parms []*decl.Parm) string {
	var args []string
	for _, p := range parms {
		if p.Self {
			continue
		}
		t := p.Ty()
		if t.IsVoid() || t.IsVarargs() {
			continue
		}
		switch marshal.Classify(e.ctypeOf(p)) {
		case marshal.KindRef, marshal.KindObj:
			if t.IsRvalueReference() {
				args = append(args, "std::move(*"+p.Gen.LName+")")
				continue
			}
			args = append(args, "*"+p.Gen.LName)
		default:
			if t.IsReference() || t.IsRvalueReference() {
				// builtin references are held by pointer too
				args = append(args, "*"+p.Gen.LName)
				continue
			}
			args = append(args, p.Gen.LName)
		}
	}
	return strings.Join(args, ", ")
}
