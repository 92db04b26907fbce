package parser

import (
	"testing"

	"neo/internal/ast"
	"neo/internal/lexer"
	"neo/internal/symtab"
	"neo/internal/types"
)

func newGlobal() *symtab.Scope {
	g := symtab.New("__SYMTAB__")
	for i := range types.Primitives {
		p := &types.Primitives[i]
		g.Add(&symtab.Symbol{Kind: symtab.TypeSym, Name: p.Name, Type: p})
	}
	return g
}

func parseSource(t *testing.T, src string) (*ast.Node, error) {
	t.Helper()
	toks := lexer.NewScanner(src).ScanTokens()
	return New(toks, "test.neo", src, newGlobal()).Parse()
}

func TestParsesMainWithFold(t *testing.T) {
	n, err := parseSource(t, `func main() { var x: int = 1 + 2; }`)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if n == nil || n.Kind != ast.FuncDecl || n.Name != "main" {
		t.Fatalf("expected a FuncDecl named main, got %+v", n)
	}
	if n.Body == nil || n.Body.Kind != ast.VarDecl {
		t.Fatalf("expected body to start with a VarDecl, got %+v", n.Body)
	}
}

func TestRedeclarationIsFatal(t *testing.T) {
	_, err := parseSource(t, `func main() { var x: int; var x: int; }`)
	if err == nil {
		t.Fatalf("expected a redeclaration error")
	}
}

func TestUnknownVariableIsFatal(t *testing.T) {
	_, err := parseSource(t, `func main() { return y; }`)
	if err == nil {
		t.Fatalf("expected an unknown-variable error")
	}
}

func TestSelfReferenceEnablesRecursion(t *testing.T) {
	_, err := parseSource(t, `func fact(n: int) -> int { return fact(n); }`)
	if err != nil {
		t.Fatalf("expected recursive call to resolve, got: %v", err)
	}
}

func TestIfElseChain(t *testing.T) {
	n, err := parseSource(t, `func main() { if (1 == 1) { var x: int = 1; } else { var y: int = 2; } }`)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	ifNode := n.Body
	if ifNode.Kind != ast.CondStmt || ifNode.Cond == nil {
		t.Fatalf("expected an if CondStmt with a condition")
	}
	elseNode := ifNode.Next
	if elseNode == nil || elseNode.Kind != ast.CondStmt || elseNode.Cond != nil {
		t.Fatalf("expected a chained else CondStmt with nil condition")
	}
}
