package ir

import (
	"neo/internal/ast"
	"testing"
)

func mainWithBody(body *ast.Node) *ast.Node {
	return &ast.Node{Kind: ast.FuncDecl, Name: "main", Body: body}
}

func TestCSECollapsesIdenticalExpressions(t *testing.T) {
	// var x = 1 + 2; var y = 1 + 2; return y;
	// (y is returned so that liveness keeps its assignment instead of
	// rewriting it to DEAD.)
	x := &ast.Node{Kind: ast.VarDecl, Name: "x", Init: &ast.Node{
		Kind: ast.BinaryExpr, Op: ast.Add,
		Lhs: &ast.Node{Kind: ast.ValueExpr, Lit: ast.Value{Kind: ast.VInt, I: 1}},
		Rhs: &ast.Node{Kind: ast.ValueExpr, Lit: ast.Value{Kind: ast.VInt, I: 2}},
	}}
	y := &ast.Node{Kind: ast.VarDecl, Name: "y", Init: &ast.Node{
		Kind: ast.BinaryExpr, Op: ast.Add,
		Lhs: &ast.Node{Kind: ast.ValueExpr, Lit: ast.Value{Kind: ast.VInt, I: 1}},
		Rhs: &ast.Node{Kind: ast.ValueExpr, Lit: ast.Value{Kind: ast.VInt, I: 2}},
	}}
	x.Next = y
	y.Next = &ast.Node{Kind: ast.ReturnStmt, RetValue: &ast.Node{Kind: ast.RefExpr, Ref: "y"}}

	prog, err := LowerToIR(mainWithBody(x))
	if err != nil {
		t.Fatalf("LowerToIR: %v", err)
	}

	var insts []*Instruction
	for b := prog.Head; b != nil; b = b.Next {
		for i := b.Head; i != nil; i = i.Next {
			insts = append(insts, i)
		}
	}
	// DEF main, ASSIGN x <- (1 add 2 collapses into single survivor)
	var assigns []*Instruction
	for _, inst := range insts {
		if inst.Assignee == "x" || inst.Assignee == "y" {
			assigns = append(assigns, inst)
		}
	}
	if len(assigns) != 2 {
		t.Fatalf("expected 2 assign instructions, got %d", len(assigns))
	}
	// The second ADD's own content hash already matches the first's, so it
	// collapses to ASSIGN $t1 <- $t0 (its assignee stays $t1 — CSE never
	// renames an assignee, only rewrites its producing instruction); y's
	// own assignment then reads that surviving temporary, not x directly.
	if assigns[1].Opcode != Assign || assigns[1].Operands[0].Name != "$t1" {
		t.Fatalf("expected y's assignment to be rewritten to ASSIGN y <- $t1, got opcode=%v operand=%v",
			assigns[1].Opcode, assigns[1].Operands)
	}
}

func TestLivenessMarksDeadTemporary(t *testing.T) {
	// var x = 1; var y = x + 2; (y never used)
	body := &ast.Node{Kind: ast.VarDecl, Name: "x", Init: &ast.Node{
		Kind: ast.ValueExpr, Lit: ast.Value{Kind: ast.VInt, I: 1},
	}}
	yDecl := &ast.Node{Kind: ast.VarDecl, Name: "y", Init: &ast.Node{
		Kind: ast.BinaryExpr, Op: ast.Add,
		Lhs: &ast.Node{Kind: ast.RefExpr, Ref: "x"},
		Rhs: &ast.Node{Kind: ast.ValueExpr, Lit: ast.Value{Kind: ast.VInt, I: 2}},
	}}
	body.Next = yDecl

	prog, err := LowerToIR(mainWithBody(body))
	if err != nil {
		t.Fatalf("LowerToIR: %v", err)
	}

	var yAssign, tempInst *Instruction
	for b := prog.Head; b != nil; b = b.Next {
		for i := b.Head; i != nil; i = i.Next {
			if i.Assignee == "y" {
				yAssign = i
			}
			if i.Assignee == "$t0" {
				tempInst = i
			}
		}
	}
	if yAssign == nil {
		t.Fatalf("expected to find y's assignment")
	}
	if yAssign.Opcode != Dead {
		t.Fatalf("expected y's unused assignment to be marked DEAD, got %v", yAssign.Opcode)
	}
	if tempInst == nil {
		t.Fatalf("expected to find the $t0 temporary holding x + 2")
	}
	if tempInst.Opcode != Dead {
		t.Fatalf("expected the unused temporary $t0 to be marked DEAD, got %v", tempInst.Opcode)
	}
}

func TestConditionalLoweringIsFatal(t *testing.T) {
	body := &ast.Node{Kind: ast.CondStmt, Cond: &ast.Node{Kind: ast.ValueExpr, Lit: ast.Value{Kind: ast.VBool, B: true}}}
	_, err := LowerToIR(mainWithBody(body))
	if err == nil {
		t.Fatalf("expected fatal error lowering a conditional")
	}
}

func TestLivenessStartLessEqualEnd(t *testing.T) {
	body := &ast.Node{Kind: ast.VarDecl, Name: "x", Init: &ast.Node{
		Kind: ast.ValueExpr, Lit: ast.Value{Kind: ast.VInt, I: 1},
	}}
	ret := &ast.Node{Kind: ast.ReturnStmt, RetValue: &ast.Node{Kind: ast.RefExpr, Ref: "x"}}
	body.Next = ret

	prog, err := LowerToIR(mainWithBody(body))
	if err != nil {
		t.Fatalf("LowerToIR: %v", err)
	}
	for b := prog.Head; b != nil; b = b.Next {
		for i := b.Head; i != nil; i = i.Next {
			if i.Opcode != Dead && i.Assignee != "" && i.Start > i.End {
				t.Fatalf("instruction %+v violates start <= end", i)
			}
		}
	}
}
