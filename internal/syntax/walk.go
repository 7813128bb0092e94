package syntax

// Walk traverses e depth-first in source order. fn is called for each node
// before its children; returning false skips the children.
func Walk(e Expr, fn func(Expr) bool) {
	if e == nil || !fn(e) {
		return
	}
	switch n := e.(type) {
	case *Apply:
		Walk(n.Head, fn)
		for _, arg := range n.Args {
			Walk(arg, fn)
		}
	case *Attribute:
		Walk(n.Body, fn)
	}
}

// HeadName returns the identifier or operator name in head position of an
// application.
func HeadName(e Expr) (string, bool) {
	app, ok := e.(*Apply)
	if !ok {
		return "", false
	}
	return NameOf(app.Head)
}
