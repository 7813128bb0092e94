package ir

import (
	"fmt"
	"strconv"
	"strings"
)

func (v ValueID) String() string { return "%" + strconv.Itoa(int(v)) }
func (b BlockID) String() string { return "bb" + strconv.Itoa(int(b)) }

func (c Constant) String() string {
	switch c.Kind {
	case ConstBool:
		return strconv.FormatBool(c.Bool)
	case ConstInt:
		return strconv.FormatInt(c.Int, 10)
	case ConstFloat:
		return strconv.FormatFloat(c.Float, 'g', -1, 64)
	case ConstString:
		return strconv.Quote(c.Str)
	default:
		return "nil"
	}
}

func (c Const) String() string {
	return fmt.Sprintf("%s: %s = const %s", c.Dst, c.Type, c.Value)
}

func (b BinOp) String() string {
	return fmt.Sprintf("%s: %s = %s %s, %s", b.Dst, b.Type, b.Op, b.LHS, b.RHS)
}

func (u UnOp) String() string {
	return fmt.Sprintf("%s: %s = %s %s", u.Dst, u.Type, u.Op, u.Operand)
}

func (c Call) String() string {
	args := idList(c.Args)
	if !c.HasResult {
		return fmt.Sprintf("call %s(%s)", c.Callee, args)
	}
	return fmt.Sprintf("%s: %s = call %s(%s)", c.Dst, c.Type, c.Callee, args)
}

func (f Field) String() string {
	return fmt.Sprintf("%s: %s = field %s.%s", f.Dst, f.Type, f.Base, f.Name)
}

func (r Record) String() string {
	parts := make([]string, len(r.Fields))
	for i, f := range r.Fields {
		parts[i] = fmt.Sprintf("%s = %s", f.Name, f.Value)
	}
	return fmt.Sprintf("%s: %s = record {%s}", r.Dst, r.Type, strings.Join(parts, ", "))
}

func (t Tuple) String() string {
	return fmt.Sprintf("%s: %s = tuple (%s)", t.Dst, t.Type, idList(t.Elems))
}

func (p Phi) String() string {
	parts := make([]string, len(p.Incoming))
	for i, inc := range p.Incoming {
		parts[i] = fmt.Sprintf("[%s, %s]", inc.Block, inc.Value)
	}
	return fmt.Sprintf("%s: %s = phi %s", p.Dst, p.Type, strings.Join(parts, ", "))
}

func (r Return) String() string {
	if !r.HasValue {
		return "ret"
	}
	return "ret " + r.Value.String()
}

func (b Branch) String() string {
	return fmt.Sprintf("br %s, %s, %s", b.Cond, b.Then, b.Else)
}

func (j Jump) String() string { return "jmp " + j.Target.String() }

func idList(ids []ValueID) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = id.String()
	}
	return strings.Join(parts, ", ")
}

func (m *Module) String() string {
	if m == nil {
		return "<nil-ir-module>"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "module %s\n", m.Name)
	if len(m.Exports) > 0 {
		fmt.Fprintf(&b, "exports %s\n", strings.Join(m.Exports, ", "))
	}
	for _, f := range m.Functions {
		b.WriteByte('\n')
		b.WriteString(f.String())
	}
	return b.String()
}

func (f *Function) String() string {
	if f == nil {
		return "<nil-func>"
	}
	var b strings.Builder
	if f.Exported {
		b.WriteString("export ")
	}
	fmt.Fprintf(&b, "fn %s(", f.Name)
	for i, p := range f.Params {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%s %s: %s", ValueID(i), p.Name, p.Type)
	}
	fmt.Fprintf(&b, ") -> %s {\n", f.Return)
	for _, bb := range f.Blocks {
		b.WriteString(bb.String())
	}
	b.WriteString("}\n")
	return b.String()
}

func (bb *Block) String() string {
	if bb == nil {
		return ""
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s:\n", bb.ID)
	for _, in := range bb.Instrs {
		fmt.Fprintf(&b, "  %s\n", in)
	}
	if bb.Term != nil {
		fmt.Fprintf(&b, "  %s\n", bb.Term)
	} else {
		b.WriteString("  <unterminated>\n")
	}
	return b.String()
}
