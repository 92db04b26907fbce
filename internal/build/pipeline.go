// Package build drives the full Neo pipeline — lex, parse, fold, lower to
// IR, warn on unused declarations, emit NASM — and spawns the external
// assembler and linker.
//
// Grounded on the teacher's internal/build package (project-level build
// orchestration: NewBuilder-style constructor, a single Build() entry
// point) generalized from "bundle a Sentra project" to "compile one Neo
// source file", and on original_source/src/main.c's pipeline sequencing
// and its assemble_target/link_target subprocess spawning (§6's
// "Generated assembly" contract).
package build

import (
	"fmt"
	"os"
	"os/exec"

	"neo/internal/ast"
	"neo/internal/codegen"
	"neo/internal/diagnostics"
	"neo/internal/ir"
	"neo/internal/lexer"
	"neo/internal/optimize"
	"neo/internal/parser"
	"neo/internal/symtab"
	"neo/internal/types"
)

// BuildArtifact is the temporary assembly file the pipeline writes before
// assembling, matching original_source's BUILD_ARTIFACT constant.
const BuildArtifact = "/tmp/neo-build-artifact"

// Pipeline holds the process-wide global scope (§3.3's SYMTAB) and the
// warning bag accumulated across phases. One Pipeline compiles one source
// file; per §5, state is not reused across runs — callers construct a
// fresh Pipeline per compilation.
type Pipeline struct {
	Global *symtab.Scope
	Bag    *diagnostics.Bag
}

// NewPipeline creates a Pipeline whose global scope is pre-seeded with the
// primitive types, matching original_source's init_globals.
func NewPipeline() *Pipeline {
	global := symtab.New("__SYMTAB__")
	for i := range types.Primitives {
		t := &types.Primitives[i]
		global.Add(&symtab.Symbol{Kind: symtab.TypeSym, Name: t.Name, Type: t})
	}
	return &Pipeline{Global: global, Bag: &diagnostics.Bag{}}
}

// Result carries every intermediate artifact the dump flags can print.
type Result struct {
	Tokens []lexer.Token
	AST    *ast.Node
	IR     *ir.Program
	Asm    string
}

// Compile runs the pipeline through codegen for file/source and returns
// every intermediate artifact. fold toggles the constant-folding feature
// flag (§6's `-f no-fold`, inverted: fold=true is the default per
// DEFAULT_FEATURES in original_source/src/main.c).
func (p *Pipeline) Compile(file, source string, fold bool) (*Result, error) {
	res := &Result{}

	res.Tokens = lexer.NewScanner(source).ScanTokens()

	par := parser.New(res.Tokens, file, source, p.Global)
	root, err := par.Parse()
	if err != nil {
		return res, err
	}
	res.AST = root

	if fold {
		optimize.FoldConstants(root, p.Bag.Warnf)
	}

	entry := symtab.Find(p.Global, "main")
	if entry == nil {
		return res, fmt.Errorf("function 'main' is missing")
	}
	if entry.Kind != symtab.Func {
		return res, fmt.Errorf("symbol 'main' is not a function")
	}

	prog, err := ir.LowerToIR(entry.Node.(*ast.Node))
	if err != nil {
		return res, err
	}
	res.IR = prog

	markMainVisited(root, entry.Node.(*ast.Node))
	ast.WarnUnused(root, func(name string, span ast.Span) {
		p.Bag.Warnf("unused declaration '%s' at line %d, col %d", name, span.Line, span.Col)
	})

	asm, err := codegen.Generate(prog, p.Global, p.Bag.Warnf)
	if err != nil {
		return res, err
	}
	res.Asm = asm
	return res, nil
}

// markMainVisited flags main (and nothing else) as visited before the
// unused-declaration walk, matching original_source's lowering-from-main
// semantics: only main is ever an IR lowering entry point today, so any
// other declaration is, by construction, unreferenced by the lowered
// program and fair game for the warning.
func markMainVisited(root, main *ast.Node) {
	for cur := root; cur != nil; cur = cur.Next {
		if cur == main {
			cur.Visited = true
		}
	}
}

// WriteArtifact writes asm to BuildArtifact, matching original_source's
// fwrite into the temp file before invoking nasm.
func WriteArtifact(asm string) error {
	return os.WriteFile(BuildArtifact, []byte(asm), 0644)
}

// Assemble spawns `nasm -felf64 -o objPath BuildArtifact`.
func Assemble(objPath string) error {
	cmd := exec.Command("nasm", "-felf64", "-o", objPath, BuildArtifact)
	cmd.Stdout, cmd.Stderr = os.Stdout, os.Stderr
	return cmd.Run()
}

// Link spawns `ld -o outPath objPath`.
func Link(objPath, outPath string) error {
	cmd := exec.Command("ld", "-o", outPath, objPath)
	cmd.Stdout, cmd.Stderr = os.Stdout, os.Stderr
	return cmd.Run()
}

// Cleanup removes the temporary assembly artifact.
func Cleanup() error {
	return os.Remove(BuildArtifact)
}
