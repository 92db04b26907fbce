// Package optimize implements Neo's single AST optimization pass:
// constant folding and self-assignment elimination.
//
// Grounded on original_source/src/optimize.c's fold_constants family,
// which this is a direct, bottom-up-per-node port of (§4.2).
package optimize

import "neo/internal/ast"

// Warnf is called for non-fatal diagnostics raised during folding
// (currently only "folding unsupported for kind"). Callers may leave it
// nil to discard warnings.
type Warnf func(format string, args ...interface{})

// FoldConstants walks the sibling chain starting at n, folding constant
// expressions and eliminating self-assignments in place. The pass is
// idempotent: folding an already-folded tree is a no-op.
func FoldConstants(n *ast.Node, warn Warnf) {
	if warn == nil {
		warn = func(string, ...interface{}) {}
	}
	for cur := n; cur != nil; cur = cur.Next {
		foldNode(cur, warn)
	}
}

func foldNode(n *ast.Node, warn Warnf) {
	switch n.Kind {
	case ast.FuncDecl:
		FoldConstants(n.Body, warn)
	case ast.VarDecl:
		if n.Init != nil {
			n.Init = foldExpr(n.Init, warn)
		}
	case ast.AssignStmt:
		if n.Value.Kind == ast.RefExpr && n.Value.Ref == n.Target {
			// Self-assignment: x = x; rewritten to NOOP, value released.
			n.Kind = ast.Noop
			n.Value = nil
			return
		}
		n.Value = foldExpr(n.Value, warn)
	case ast.ReturnStmt:
		if n.RetValue != nil {
			n.RetValue = foldExpr(n.RetValue, warn)
		}
	case ast.CondStmt:
		if n.Cond != nil {
			n.Cond = foldExpr(n.Cond, warn)
		}
		FoldConstants(n.Body, warn)
	}
}

// foldExpr folds n (if it is a unary/binary compound expression) and
// returns the replacement node — a value-expr if folding succeeded, or n
// itself otherwise. n's Next is preserved across rewriting.
func foldExpr(n *ast.Node, warn Warnf) *ast.Node {
	if n == nil {
		return nil
	}
	switch n.Kind {
	case ast.UnaryExpr:
		n.Lhs = foldExpr(n.Lhs, warn)
		if n.Lhs.IsLiteral() {
			if folded, ok := foldUnary(n.Op, n.Lhs.Lit); ok {
				return rewriteToValue(n, folded)
			}
			warn("constant folding unsupported for kind %v", n.Lhs.Lit.Kind)
		}
		return n
	case ast.BinaryExpr:
		if n.Lhs.Kind == ast.UnaryExpr || n.Lhs.Kind == ast.BinaryExpr {
			n.Lhs = foldExpr(n.Lhs, warn)
		}
		if n.Rhs.Kind == ast.UnaryExpr || n.Rhs.Kind == ast.BinaryExpr {
			n.Rhs = foldExpr(n.Rhs, warn)
		}
		if n.Lhs.IsLiteral() && n.Rhs.IsLiteral() && n.Lhs.Lit.Kind == n.Rhs.Lit.Kind {
			if folded, ok := foldBinary(n.Op, n.Lhs.Lit, n.Rhs.Lit); ok {
				return rewriteToValue(n, folded)
			}
			warn("constant folding unsupported for kind %v", n.Lhs.Lit.Kind)
		}
		return n
	default:
		return n
	}
}

func rewriteToValue(n *ast.Node, v ast.Value) *ast.Node {
	n.Kind = ast.ValueExpr
	n.Lit = v
	n.Lhs, n.Rhs = nil, nil
	return n
}

// foldUnary folds a unary operator over an integer literal. Only NEG and
// NOT are folded; non-integer kinds are left unfolded (ok=false).
func foldUnary(op ast.Operator, v ast.Value) (ast.Value, bool) {
	if v.Kind != ast.VInt {
		return ast.Value{}, false
	}
	switch op {
	case ast.Neg:
		return ast.Value{Kind: ast.VInt, I: -v.I}, true
	case ast.Not:
		b := int32(0)
		if v.I == 0 {
			b = 1
		}
		return ast.Value{Kind: ast.VInt, I: b}, true
	default:
		return ast.Value{}, false
	}
}

// foldBinary folds a binary operator over two integer literals of the same
// kind, using 32-bit signed host arithmetic — overflow wraps, and division
// by zero is not guarded (matches §4.2 exactly: "the pass does not guard").
func foldBinary(op ast.Operator, lhs, rhs ast.Value) (ast.Value, bool) {
	if lhs.Kind != ast.VInt {
		return ast.Value{}, false
	}
	a, b := lhs.I, rhs.I
	asBool := func(cond bool) ast.Value {
		if cond {
			return ast.Value{Kind: ast.VInt, I: 1}
		}
		return ast.Value{Kind: ast.VInt, I: 0}
	}
	switch op {
	case ast.Add:
		return ast.Value{Kind: ast.VInt, I: a + b}, true
	case ast.Sub:
		return ast.Value{Kind: ast.VInt, I: a - b}, true
	case ast.Mul:
		return ast.Value{Kind: ast.VInt, I: a * b}, true
	case ast.Div:
		return ast.Value{Kind: ast.VInt, I: a / b}, true
	case ast.Cmp:
		return asBool(a == b), true
	case ast.CmpNot:
		return asBool(a != b), true
	case ast.CmpLt:
		return asBool(a < b), true
	case ast.CmpGt:
		return asBool(a > b), true
	case ast.CmpLtEq:
		return asBool(a <= b), true
	case ast.CmpGtEq:
		return asBool(a >= b), true
	default:
		return ast.Value{}, false
	}
}
