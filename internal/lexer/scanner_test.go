package lexer

import "testing"

func tokenTypes(toks []Token) []TokenType {
	var out []TokenType
	for _, t := range toks {
		out = append(out, t.Type)
	}
	return out
}

func TestScansFunctionSkeleton(t *testing.T) {
	src := `func main() { var x: int = 1 + 2; return x; }`
	toks := NewScanner(src).ScanTokens()
	want := []TokenType{
		TokenFunc, TokenIdent, TokenLParen, TokenRParen, TokenLBrace,
		TokenVar, TokenIdent, TokenColon, TokenIdent, TokenEqual, TokenInt, TokenPlus, TokenInt, TokenSemi,
		TokenReturn, TokenIdent, TokenSemi, TokenRBrace, TokenEOF,
	}
	got := tokenTypes(toks)
	if len(got) != len(want) {
		t.Fatalf("token count = %d, want %d\n got: %v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("token[%d] = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestArrowAndComparisonOperators(t *testing.T) {
	src := `func f() -> int { return 1 <= 2; }`
	toks := NewScanner(src).ScanTokens()
	found := map[TokenType]bool{}
	for _, tok := range toks {
		found[tok.Type] = true
	}
	if !found[TokenArrow] || !found[TokenLE] {
		t.Fatalf("expected -> and <= tokens, got %v", tokenTypes(toks))
	}
}

func TestLineAndColumnTracking(t *testing.T) {
	src := "func f() {\n  return 1;\n}"
	toks := NewScanner(src).ScanTokens()
	for _, tok := range toks {
		if tok.Type == TokenReturn {
			if tok.Line != 2 {
				t.Fatalf("return keyword line = %d, want 2", tok.Line)
			}
			return
		}
	}
	t.Fatalf("did not find return token")
}
