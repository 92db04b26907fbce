package codegen

import (
	"strings"
	"testing"

	"neo/internal/ir"
)

func noopWarn(string, ...interface{}) {}

func block(insts ...*ir.Instruction) *ir.BasicBlock {
	b := &ir.BasicBlock{Tag: "main"}
	for _, i := range insts {
		if b.Tail == nil {
			b.Head, b.Tail = i, i
		} else {
			i.Prev = b.Tail
			b.Tail.Next = i
			b.Tail = i
		}
	}
	return b
}

func TestRegisterReuseOnAdd(t *testing.T) {
	// a + b where dest holds neither: mov dst, reg(a) ; add dst, reg(b)
	a := NewAllocator()
	movA := &ir.Instruction{Opcode: ir.Assign, Assignee: "a", Operands: []ir.Operand{{Kind: ir.OValue}}}
	movB := &ir.Instruction{Opcode: ir.Assign, Assignee: "b", Operands: []ir.Operand{{Kind: ir.OValue}}}
	addInst := &ir.Instruction{Opcode: ir.Add, Assignee: "sum", Operands: []ir.Operand{
		{Kind: ir.OVariable, Name: "a"},
		{Kind: ir.OVariable, Name: "b"},
	}}
	b := block(movA, movB, addInst)
	if err := a.compileBlock(b, noopWarn); err != nil {
		t.Fatalf("compileBlock: %v", err)
	}
	out := a.out.String()
	if !strings.Contains(out, "mov ") || !strings.Contains(out, "add ") {
		t.Fatalf("expected a mov then add, got:\n%s", out)
	}
}

func TestRegisterNeverDoubleOccupied(t *testing.T) {
	a := NewAllocator()
	for i := 0; i < int(NumRegisters); i++ {
		a.registers[i].active = true
		a.registers[i].data = &registerData{end: i}
	}
	r := a.findAvailable()
	// one register must have been evicted (the one with the largest end)
	count := 0
	for i := range a.registers {
		if a.registers[i].active && a.registers[i].id == r.id {
			count++
		}
	}
	if count != 1 {
		t.Fatalf("register %v should be active exactly once, found %d", r.id, count)
	}
}

func TestBssDirectiveSelection(t *testing.T) {
	cases := []struct {
		size      int
		directive string
	}{
		{8, "resq"},
		{4, "resd"},
		{1, "resb"},
		{3, "resb"},
	}
	for _, c := range cases {
		d, _ := directiveFor(c.size)
		if d != c.directive {
			t.Errorf("directiveFor(%d) = %s, want %s", c.size, d, c.directive)
		}
	}
}

func TestDeadInstructionIgnored(t *testing.T) {
	a := NewAllocator()
	var warned bool
	warn := func(string, ...interface{}) { warned = true }
	inst := &ir.Instruction{Opcode: ir.Dead, Assignee: "$t0"}
	if err := a.compileInstruction(inst, warn); err != nil {
		t.Fatalf("compileInstruction: %v", err)
	}
	if !warned {
		t.Fatalf("expected a warning for a DEAD instruction")
	}
}
