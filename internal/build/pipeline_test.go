package build

import (
	"strings"
	"testing"
)

func TestEndToEndConstantFoldAndCSE(t *testing.T) {
	p := NewPipeline()
	res, err := p.Compile("main.neo", `func main() { var x: int = 1 + 2; var y: int = 1 + 2; }`, true)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if res.Asm == "" {
		t.Fatalf("expected non-empty assembly output")
	}
	if !strings.Contains(res.Asm, "section .text") || !strings.Contains(res.Asm, "_start:") {
		t.Fatalf("assembly missing expected sections:\n%s", res.Asm)
	}
}

func TestMissingMainIsFatal(t *testing.T) {
	p := NewPipeline()
	_, err := p.Compile("main.neo", `func helper() {}`, true)
	if err == nil {
		t.Fatalf("expected an error when 'main' is missing")
	}
}

func TestUnusedFunctionWarning(t *testing.T) {
	p := NewPipeline()
	_, err := p.Compile("main.neo", `func foo() {} func main() {}`, true)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if p.Bag.Len() == 0 {
		t.Fatalf("expected a warning for unused function 'foo'")
	}
}

func TestConditionalLoweringStillFatal(t *testing.T) {
	p := NewPipeline()
	_, err := p.Compile("main.neo", `func main() { if (true) { var x: int = 1; } }`, true)
	if err == nil {
		t.Fatalf("expected conditional lowering to remain fatal per the unimplemented-path contract")
	}
}
