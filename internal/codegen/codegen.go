// Package codegen implements the linear-scan register allocator and the
// x86-64 NASM (Linux) text emitter.
//
// Grounded on original_source/src/nasm_x86_64_codegen.c. The growable text
// buffer the C original hand-rolls (_write/_writeln over a doubling
// realloc) is replaced by strings.Builder, the idiomatic Go rendition of
// the same "append text, grow as needed" concern — see other_examples'
// smasonuk-sicpu codegen.go, which does the same substitution for a
// comparable code generator.
package codegen

import (
	"fmt"
	"strings"

	"neo/internal/ast"
	"neo/internal/ir"
	"neo/internal/symtab"
	"neo/internal/types"
)

// RegisterID names one of the sixteen integer registers.
type RegisterID int

const (
	RAX RegisterID = iota
	RBX
	RCX
	RDX
	RSP
	RBP
	RSI
	RDI
	R8
	R9
	R10
	R11
	R12
	R13
	R14
	R15
	NumRegisters
)

var regNames = [NumRegisters]string{
	RAX: "rax", RBX: "rbx", RCX: "rcx", RDX: "rdx",
	RSP: "rsp", RBP: "rbp", RSI: "rsi", RDI: "rdi",
	R8: "r8", R9: "r9", R10: "r10", R11: "r11",
	R12: "r12", R13: "r13", R14: "r14", R15: "r15",
}

func (r RegisterID) String() string { return regNames[r] }

// mustPreserve reports whether r is in the callee-saved set
// {rbx, rsp, rbp, r12..r15}.
func mustPreserve(r RegisterID) bool {
	return r == RBX || r == RSP || r == RBP || (r >= R12 && r <= R15)
}

// registerData is the payload a live register carries: its liveness
// window, the variable it holds, and that variable's type.
type registerData struct {
	start, end int
	variable   string
	typ        *types.Type
}

type register struct {
	id     RegisterID
	active bool
	data   *registerData
}

// Allocator is the linear-scan register allocator plus NASM emitter. One
// Allocator compiles exactly one program; state does not carry across
// Generate calls (§5: re-initialise between runs).
type Allocator struct {
	registers [NumRegisters]register
	stack     []*registerData
	out       strings.Builder
}

// NewAllocator returns a freshly initialized allocator.
func NewAllocator() *Allocator {
	a := &Allocator{}
	for i := range a.registers {
		a.registers[i].id = RegisterID(i)
	}
	return a
}

func (a *Allocator) writeln(format string, args ...interface{}) {
	fmt.Fprintf(&a.out, format+"\n", args...)
}

func (a *Allocator) saveRegister(r *register) {
	a.writeln("push %s", r.id)
	if r.data != nil {
		a.stack = append([]*registerData{r.data}, a.stack...)
	}
}

func (a *Allocator) restoreRegister(r *register) {
	a.writeln("pop %s", r.id)
}

// findAvailable implements §4.4's allocation policy: the lowest-indexed
// inactive register, or — if all are active — the register whose data has
// the largest End (latest-death eviction), saving it first if it is
// callee-saved.
func (a *Allocator) findAvailable() *register {
	var oldest *register
	for i := range a.registers {
		r := &a.registers[i]
		if !r.active {
			oldest = nil
			r.active = true
			return r
		}
		if oldest == nil || r.data.end > oldest.data.end {
			oldest = r
		}
	}
	if mustPreserve(oldest.id) {
		a.saveRegister(oldest)
	}
	oldest.active = true
	return oldest
}

func (a *Allocator) releaseRegister(r *register) {
	r.active = false
	r.data = nil
}

func (a *Allocator) findByVariable(name string) *register {
	for i := range a.registers {
		if a.registers[i].data != nil && a.registers[i].data.variable == name {
			return &a.registers[i]
		}
	}
	return nil
}

func (a *Allocator) putVariableInRegister(inst *ir.Instruction) *register {
	r := a.findAvailable()
	r.data = &registerData{start: inst.Start, end: inst.End, variable: inst.Assignee}
	return r
}

func (a *Allocator) writeValue(v ast.Value) {
	switch v.Kind {
	case ast.VInt:
		fmt.Fprintf(&a.out, "%d", v.I)
	case ast.VUint:
		fmt.Fprintf(&a.out, "%d", v.U)
	case ast.VFloat:
		fmt.Fprintf(&a.out, "%f", v.F)
	case ast.VDouble:
		fmt.Fprintf(&a.out, "%g", v.D)
	case ast.VChar:
		fmt.Fprintf(&a.out, "%d", v.C)
	case ast.VBool:
		b := 0
		if v.B {
			b = 1
		}
		fmt.Fprintf(&a.out, "%d", b)
	case ast.VString:
		fmt.Fprintf(&a.out, "%s", v.S)
	}
}

func (a *Allocator) compileAssign(inst *ir.Instruction) (*register, error) {
	if len(inst.Operands) != 1 {
		return nil, fmt.Errorf("internal: ASSIGN expects exactly one operand, got %d", len(inst.Operands))
	}
	op := inst.Operands[0]
	if op.Kind == ir.OLabel {
		return nil, fmt.Errorf("internal: ASSIGN cannot take a label operand")
	}

	dest := a.findByVariable(inst.Assignee)
	if dest == nil {
		dest = a.putVariableInRegister(inst)
	}

	fmt.Fprintf(&a.out, "mov %s, ", dest.id)
	switch op.Kind {
	case ir.OValue:
		a.writeValue(op.Value)
		a.out.WriteByte('\n')
	case ir.OVariable:
		src := a.findByVariable(op.Name)
		if src == nil {
			return nil, fmt.Errorf("operand '%s' is not in any register", op.Name)
		}
		fmt.Fprintf(&a.out, "%s\n", src.id)
	}
	return dest, nil
}

func (a *Allocator) compileAdd(inst *ir.Instruction) (*register, error) {
	if len(inst.Operands) != 2 {
		return nil, fmt.Errorf("internal: ADD expects exactly two operands, got %d", len(inst.Operands))
	}
	dest := a.findByVariable(inst.Assignee)
	if dest == nil {
		dest = a.putVariableInRegister(inst)
	}

	a0, a1 := inst.Operands[0], inst.Operands[1]
	opIdx := 0
	switch {
	case a0.Kind == ir.OVariable && a0.Name == dest.data.variable:
		fmt.Fprintf(&a.out, "add %s, ", dest.id)
		opIdx = 1
	case a1.Kind == ir.OVariable && a1.Name == dest.data.variable:
		fmt.Fprintf(&a.out, "add %s, ", dest.id)
		opIdx = 0
	default:
		synthetic := &ir.Instruction{Opcode: ir.Assign, Operands: []ir.Operand{a0}, Assignee: inst.Assignee, Start: inst.Start, End: inst.End}
		temp, err := a.compileAssign(synthetic)
		if err != nil {
			return nil, err
		}
		fmt.Fprintf(&a.out, "add %s, ", temp.id)
		opIdx = 1
	}

	op := inst.Operands[opIdx]
	switch op.Kind {
	case ir.OValue:
		a.writeValue(op.Value)
	case ir.OVariable:
		src := a.findByVariable(op.Name)
		if src == nil {
			return nil, fmt.Errorf("operand '%s' is not in any register", op.Name)
		}
		fmt.Fprintf(&a.out, "%s", src.id)
	}
	a.out.WriteByte('\n')
	return dest, nil
}

func (a *Allocator) compileReturn(*ir.Instruction) {
	// Reserved: matches original_source's compile_return, a no-op today.
}

func (a *Allocator) compileInstruction(inst *ir.Instruction, warn func(string, ...interface{})) error {
	switch inst.Opcode {
	case ir.Def:
		return nil
	case ir.Assign:
		_, err := a.compileAssign(inst)
		return err
	case ir.Add:
		_, err := a.compileAdd(inst)
		return err
	case ir.Ret:
		a.compileReturn(inst)
		warn("ignoring return at line %d, col %d: RET is not compiled", inst.Span.Line, inst.Span.Col)
		return nil
	case ir.Dead:
		warn("ignoring dead variable '%s' at line %d, col %d", inst.Assignee, inst.Span.Line, inst.Span.Col)
		return nil
	default:
		return fmt.Errorf("compilation not supported for opcode: %v", inst.Opcode)
	}
}

func (a *Allocator) compileBlock(b *ir.BasicBlock, warn func(string, ...interface{})) error {
	for cur := b; cur != nil; cur = cur.Next {
		for inst := cur.Head; inst != nil; inst = inst.Next {
			if err := a.compileInstruction(inst, warn); err != nil {
				return err
			}
		}
	}
	return nil
}

// bss reservation directive widths, in bytes.
const (
	resb = 1
	resd = 4
	resq = 8
)

func directiveFor(size int) (name string, count int) {
	switch {
	case size%resq == 0:
		return "resq", size / resq
	case size%resd == 0:
		return "resd", size / resd
	default:
		return "resb", size / resb
	}
}

func (a *Allocator) allocGlobalSymbols(global *symtab.Scope) {
	a.writeln("section .bss")
	global.Symbols.ForEach(func(name string, value interface{}) {
		sym := value.(*symtab.Symbol)
		if sym.Kind != symtab.Var {
			return
		}
		ty, _ := sym.Type.(*types.Type)
		if ty == nil {
			return
		}
		directive, count := directiveFor(ty.Size)
		a.writeln("%s: %s %d", sym.Name, directive, count)
	})
}

// Generate compiles prog to NASM x86-64 Linux assembly text: .bss
// reservations for every variable symbol in global, then .text/_start,
// the compiled blocks, then the exit(0) epilogue. warn receives non-fatal
// diagnostics (dead assignments, reserved no-ops).
func Generate(prog *ir.Program, global *symtab.Scope, warn func(string, ...interface{})) (string, error) {
	a := NewAllocator()
	a.allocGlobalSymbols(global)

	a.writeln("section .text")
	a.writeln("global _start")
	a.writeln("_start:")

	if err := a.compileBlock(prog.Head, warn); err != nil {
		return "", err
	}

	a.writeln("mov rdi, 0")
	a.writeln("mov rax, 0x3c")
	a.writeln("syscall")

	return a.out.String(), nil
}
