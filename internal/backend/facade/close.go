package facade

import "fmt"

// Close finishes the class body: the constructor from an opaque pointer,
// the copy and move operations, swig_self() and the fields. Closing twice
// or closing a disabled class does nothing.
func (c *Class) Close() {
	if !c.Active() {
		return
	}
	c.state = stateClosed

	decls := &c.env.Sections.Decls
	self := c.selfPtr(c.node)
	name := c.name

	fmt.Fprintf(decls, "\n%sexplicit %s(%s swig_self, bool swig_owns_self = true) noexcept : ", Indent, name, self)
	if c.first != nil {
		// opaque pointer types are unrelated, hence the cast
		fmt.Fprintf(decls, "%s{(%s)swig_self, swig_owns_self}", className(c.first), c.selfPtr(c.first))
	} else {
		decls.WriteString("swig_self_{swig_self}, swig_owns_self_{swig_owns_self}")
	}
	decls.WriteString(" {}\n")

	// the implicit copy would release the same object twice
	if !c.hasCopyCtor {
		fmt.Fprintf(decls, "%s%s(%s const&) = delete;\n", Indent, name, name)
	}
	fmt.Fprintf(decls, "%s%s& operator=(%s const&) = delete;\n", Indent, name, name)

	if c.first != nil {
		fmt.Fprintf(decls, "%s%s(%s&& obj) = default;\n", Indent, name, name)
		fmt.Fprintf(decls, "%s%s& operator=(%s&& obj) = default;\n", Indent, name, name)
	} else {
		fmt.Fprintf(decls, "%s%s(%s&& obj) noexcept : swig_self_{obj.swig_self_}, swig_owns_self_{obj.swig_owns_self_} { obj.swig_owns_self_ = false; }\n",
			Indent, name, name)
		fmt.Fprintf(decls, "%s%s& operator=(%s&& obj) noexcept { swig_self_ = obj.swig_self_; swig_owns_self_ = obj.swig_owns_self_; obj.swig_owns_self_ = false; return *this; }\n",
			Indent, name, name)
	}

	fmt.Fprintf(decls, "%s%s swig_self() const noexcept ", Indent, self)
	if c.first != nil {
		fmt.Fprintf(decls, "{ return (%s)%s::swig_self(); }\n", self, className(c.first))
	} else {
		decls.WriteString("{ return swig_self_; }\n")
		fmt.Fprintf(decls, "%s%s swig_self_;\n", Indent, self)
		fmt.Fprintf(decls, "%sbool swig_owns_self_;\n", Indent)
	}
	decls.WriteString("};\n\n")
}
