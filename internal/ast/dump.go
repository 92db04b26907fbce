package ast

import (
	"fmt"
	"io"
	"strings"
)

// Dump writes an indented textual rendering of the sibling chain starting
// at n to w, matching original_source/src/ast.c's dump_node/dump family.
func Dump(w io.Writer, n *Node, depth int) {
	for cur := n; cur != nil; cur = cur.Next {
		dumpNode(w, cur, depth)
	}
}

func indent(w io.Writer, depth int) {
	fmt.Fprint(w, strings.Repeat("  ", depth))
}

func dumpNode(w io.Writer, n *Node, depth int) {
	indent(w, depth)
	switch n.Kind {
	case FuncDecl:
		fmt.Fprintf(w, "FuncDecl %s -> %s\n", n.Name, typeName(n.RetType))
		for _, p := range n.Params {
			indent(w, depth+1)
			fmt.Fprintf(w, "Param %s: %s\n", p.Name, typeName(p.Type))
		}
		Dump(w, n.Body, depth+1)
	case VarDecl:
		fmt.Fprintf(w, "VarDecl %s: %s\n", n.Name, typeName(n.VarType))
		if n.Init != nil {
			Dump(w, n.Init, depth+1)
		}
	case ReturnStmt:
		fmt.Fprintln(w, "Return")
		if n.RetValue != nil {
			Dump(w, n.RetValue, depth+1)
		}
	case CondStmt:
		if n.Cond != nil {
			fmt.Fprintln(w, "If")
			Dump(w, n.Cond, depth+1)
		} else {
			fmt.Fprintln(w, "Else")
		}
		Dump(w, n.Body, depth+1)
	case AssignStmt:
		fmt.Fprintf(w, "Assign %s\n", n.Target)
		Dump(w, n.Value, depth+1)
	case UnaryExpr:
		fmt.Fprintf(w, "Unary %s\n", n.Op)
		Dump(w, n.Lhs, depth+1)
	case BinaryExpr:
		fmt.Fprintf(w, "Binary %s\n", n.Op)
		Dump(w, n.Lhs, depth+1)
		Dump(w, n.Rhs, depth+1)
	case CallExpr:
		fmt.Fprintf(w, "Call %s\n", n.Callee)
		Dump(w, n.Args, depth+1)
	case ValueExpr:
		fmt.Fprintf(w, "Value %s\n", dumpValue(n.Lit))
	case RefExpr:
		fmt.Fprintf(w, "Ref %s\n", n.Ref)
	case Noop:
		fmt.Fprintln(w, "Noop")
	default:
		fmt.Fprintln(w, "Unknown")
	}
}

func typeName(t interface{ String() string }) string {
	if t == nil {
		return "<none>"
	}
	return t.String()
}

func dumpValue(v Value) string {
	switch v.Kind {
	case VInt:
		return fmt.Sprintf("%d", v.I)
	case VUint:
		return fmt.Sprintf("%d", v.U)
	case VFloat:
		return fmt.Sprintf("%f", v.F)
	case VDouble:
		return fmt.Sprintf("%g", v.D)
	case VChar:
		return fmt.Sprintf("%c", v.C)
	case VBool:
		return fmt.Sprintf("%t", v.B)
	case VString:
		return v.S
	default:
		return "?"
	}
}

// WarnUnused walks the sibling chain and calls warn for every top-level
// FuncDecl/VarDecl node that was never visited during IR lowering,
// matching original_source's warn_unused (called from main() after
// lower_to_ir, over the *whole* AST, not just the entry function).
func WarnUnused(n *Node, warn func(name string, span Span)) {
	for cur := n; cur != nil; cur = cur.Next {
		if (cur.Kind == FuncDecl || cur.Kind == VarDecl) && !cur.Visited {
			warn(cur.Name, cur.Span)
		}
	}
}
