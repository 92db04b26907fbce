// Package ir lowers Neo's AST to a doubly linked list of basic blocks,
// each holding a doubly linked list of three-address instructions. It
// performs IR-level common-subexpression elimination on emit and a
// backward liveness analysis once lowering completes.
//
// Grounded on original_source/src/ir.c and include/ir.h (IREmitter,
// BasicBlock, Instruction, encode_instruction, calculate_live_intervals).
package ir

import (
	"encoding/binary"
	"fmt"
	"hash/fnv"

	"neo/internal/ast"
)

// Opcode is the IR's instruction tag. The first fourteen values equal
// ast.Operator's values exactly, so an ast.Operator casts directly to an
// Opcode (§3.5, §9 "shared operator enum").
type Opcode int

const (
	OpUnknown Opcode = iota
	Neg
	Not
	Deref
	Addr
	Add
	Sub
	Mul
	Div
	Cmp
	CmpNot
	CmpLt
	CmpGt
	CmpLtEq
	CmpGtEq
	Def
	Assign
	Jmp
	Br
	Ret
	Dead
)

func (op Opcode) String() string {
	names := map[Opcode]string{
		Neg: "NEG", Not: "NOT", Deref: "DEREF", Addr: "ADDR",
		Add: "ADD", Sub: "SUB", Mul: "MUL", Div: "DIV",
		Cmp: "CMP", CmpNot: "CMP_NOT", CmpLt: "CMP_LT", CmpGt: "CMP_GT",
		CmpLtEq: "CMP_LT_EQ", CmpGtEq: "CMP_GT_EQ",
		Def: "DEF", Assign: "ASSIGN", Jmp: "JMP", Br: "BR", Ret: "RET", Dead: "DEAD",
	}
	if s, ok := names[op]; ok {
		return s
	}
	return "UNKNOWN"
}

// OperandKind tags an Operand's payload.
type OperandKind int

const (
	OUnknown OperandKind = iota
	OValue
	OVariable
	OLabel
)

// Operand is a tagged union of a literal value, a variable name, or a
// label name.
type Operand struct {
	Kind  OperandKind
	Value ast.Value
	Name  string // variable or label
}

// MaxOperands bounds Instruction.Operands, matching original_source's
// fixed-size operand array (binary ops use both slots).
const MaxOperands = 2

// Instruction is one three-address instruction.
type Instruction struct {
	Opcode   Opcode
	Operands []Operand // len 0, 1 or 2
	Assignee string    // "" if none
	Span     ast.Span
	Start    int
	End      int

	Prev, Next *Instruction
}

// BasicBlock is a maximal straight-line instruction sequence.
type BasicBlock struct {
	ID   int
	Tag  string
	Head *Instruction
	Tail *Instruction

	Pred, Succ []*BasicBlock
	Prev, Next *BasicBlock
}

func (b *BasicBlock) append(inst *Instruction) {
	if b.Tail == nil {
		b.Head, b.Tail = inst, inst
		return
	}
	inst.Prev = b.Tail
	b.Tail.Next = inst
	b.Tail = inst
}

// Program is the doubly linked list of basic blocks produced by lowering.
type Program struct {
	Head, Tail *BasicBlock
}

func (p *Program) appendBlock(b *BasicBlock) {
	if p.Tail == nil {
		p.Head, p.Tail = b, b
		return
	}
	b.Prev = p.Tail
	p.Tail.Next = b
	p.Tail = b
}

// Emitter drives AST-to-IR lowering: a program counter, temporary/block
// counters, the program built so far, and the expression-hash map used
// for IR-level CSE.
type Emitter struct {
	pc        int
	tempCount int
	blockCount int
	prog      *Program
	cur       *BasicBlock
	exprs     map[uint64]string // content hash -> assignee
}

// NewEmitter creates an emitter with an empty program.
func NewEmitter() *Emitter {
	return &Emitter{prog: &Program{}, exprs: make(map[uint64]string)}
}

func (e *Emitter) newTemp() string {
	name := fmt.Sprintf("$t%d", e.tempCount)
	e.tempCount++
	return name
}

func (e *Emitter) newBlock(tag string) *BasicBlock {
	b := &BasicBlock{ID: e.blockCount, Tag: tag}
	e.blockCount++
	e.prog.appendBlock(b)
	e.cur = b
	return b
}

// Fatal is the error type returned for unimplemented paths and internal
// invariant violations (§7.2, §7.3) — both are fatal and non-recoverable,
// they are distinguished only for diagnostic wording.
type Fatal struct {
	Message string
}

func (f *Fatal) Error() string { return f.Message }

func fatalf(format string, args ...interface{}) error {
	return &Fatal{Message: fmt.Sprintf(format, args...)}
}

// encodeInstruction packs an instruction's opcode and operands into a byte
// image and returns its FNV-1a 64-bit hash — the exact CSE key from
// original_source's encode_instruction.
func encodeInstruction(opcode Opcode, operands []Operand) uint64 {
	h := fnv.New64a()
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(opcode))
	h.Write(buf[:])
	for _, o := range operands {
		binary.LittleEndian.PutUint64(buf[:], uint64(o.Kind))
		h.Write(buf[:])
		switch o.Kind {
		case OValue:
			h.Write([]byte(fmt.Sprintf("%v", o.Value)))
		case OVariable, OLabel:
			h.Write([]byte(o.Name))
		}
	}
	return h.Sum64()
}

// addInstruction appends inst to the current block, performing CSE: if an
// instruction with an identical content hash was already emitted, inst is
// rewritten to ASSIGN assignee ← previous-assignee instead of being
// inserted as-is.
func (e *Emitter) addInstruction(inst *Instruction) {
	if inst.Assignee != "" {
		hash := encodeInstruction(inst.Opcode, inst.Operands)
		if prev, ok := e.exprs[hash]; ok {
			inst.Opcode = Assign
			inst.Operands = []Operand{{Kind: OVariable, Name: prev}}
		} else {
			e.exprs[hash] = inst.Assignee
		}
	}
	e.cur.append(inst)
	e.pc++
}

// operandFromNode implements the expression protocol (§4.3):
//  1. a value literal becomes a value operand;
//  2. a reference becomes a variable operand;
//  3. anything else is lowered recursively, and the operand is the
//     assignee of the last-emitted instruction in the current block.
//
// Operand appends must be issued in source argument order, since this
// reads the *current* block tail at the moment it's called.
func (e *Emitter) operandFromNode(n *ast.Node) (Operand, error) {
	switch n.Kind {
	case ast.ValueExpr:
		return Operand{Kind: OValue, Value: n.Lit}, nil
	case ast.RefExpr:
		return Operand{Kind: OVariable, Name: n.Ref}, nil
	default:
		if err := e.emit(n); err != nil {
			return Operand{}, err
		}
		if e.cur.Tail == nil {
			return Operand{}, fatalf("internal: expression produced no instruction")
		}
		return Operand{Kind: OVariable, Name: e.cur.Tail.Assignee}, nil
	}
}

// emit lowers a single statement/expression node, appending instructions
// to the current block.
func (e *Emitter) emit(n *ast.Node) error {
	switch n.Kind {
	case ast.FuncDecl:
		return e.emitFunction(n)
	case ast.VarDecl:
		return e.emitVariable(n)
	case ast.AssignStmt:
		return e.emitAssignment(n)
	case ast.ReturnStmt:
		return e.emitReturn(n)
	case ast.CondStmt:
		return e.emitConditional(n)
	case ast.CallExpr:
		return e.emitCall(n)
	case ast.UnaryExpr:
		return e.emitUnary(n)
	case ast.BinaryExpr:
		return e.emitBinary(n)
	case ast.Noop:
		return nil
	default:
		return fatalf("internal: emit called on unsupported node kind %v", n.Kind)
	}
}

func (e *Emitter) emitFunction(n *ast.Node) error {
	e.newBlock(n.Name)
	e.addInstruction(&Instruction{
		Opcode:   Def,
		Operands: []Operand{{Kind: OLabel, Name: n.Name}},
		Span:     n.Span,
	})
	for cur := n.Body; cur != nil; cur = cur.Next {
		if err := e.emit(cur); err != nil {
			return err
		}
	}
	return nil
}

func (e *Emitter) emitVariable(n *ast.Node) error {
	if n.Init == nil {
		return nil
	}
	operand, err := e.operandFromNode(n.Init)
	if err != nil {
		return err
	}
	e.addInstruction(&Instruction{
		Opcode:   Assign,
		Operands: []Operand{operand},
		Assignee: n.Name,
		Span:     n.Span,
	})
	return nil
}

func (e *Emitter) emitAssignment(n *ast.Node) error {
	operand, err := e.operandFromNode(n.Value)
	if err != nil {
		return err
	}
	e.addInstruction(&Instruction{
		Opcode:   Assign,
		Operands: []Operand{operand},
		Assignee: n.Target,
		Span:     n.Span,
	})
	return nil
}

func (e *Emitter) emitReturn(n *ast.Node) error {
	if n.RetValue == nil {
		return nil
	}
	operand, err := e.operandFromNode(n.RetValue)
	if err != nil {
		return err
	}
	e.addInstruction(&Instruction{
		Opcode:   Ret,
		Operands: []Operand{operand},
		Span:     n.Span,
	})
	return nil
}

// emitConditional is out of scope for IR lowering (§4.3, §9 open
// question): the parser and AST fully support if/else chains, but
// lowering them is unimplemented and fatal.
func (e *Emitter) emitConditional(n *ast.Node) error {
	return fatalf("IR lowering not implemented for conditionals (line %d, col %d)", n.Span.Line, n.Span.Col)
}

// emitCall is out of scope for IR lowering, for the same reason as
// emitConditional: no call ABI is defined (§9 open question).
func (e *Emitter) emitCall(n *ast.Node) error {
	return fatalf("IR lowering not implemented for calls (line %d, col %d)", n.Span.Line, n.Span.Col)
}

func (e *Emitter) emitUnary(n *ast.Node) error {
	operand, err := e.operandFromNode(n.Lhs)
	if err != nil {
		return err
	}
	e.addInstruction(&Instruction{
		Opcode:   Opcode(n.Op),
		Operands: []Operand{operand},
		Assignee: e.newTemp(),
		Span:     n.Span,
	})
	return nil
}

func (e *Emitter) emitBinary(n *ast.Node) error {
	lhs, err := e.operandFromNode(n.Lhs)
	if err != nil {
		return err
	}
	rhs, err := e.operandFromNode(n.Rhs)
	if err != nil {
		return err
	}
	e.addInstruction(&Instruction{
		Opcode:   Opcode(n.Op),
		Operands: []Operand{lhs, rhs},
		Assignee: e.newTemp(),
		Span:     n.Span,
	})
	return nil
}

// LowerToIR lowers the declaration entry (expected to be a FuncDecl,
// typically main's symbol node) to a Program: a leading $entry block, the
// lowered function body, a trailing $exit block, followed by backward
// liveness analysis. Matches original_source's lower_to_ir.
func LowerToIR(entry *ast.Node) (*Program, error) {
	e := NewEmitter()
	e.newBlock("$entry")
	if err := e.emit(entry); err != nil {
		return nil, err
	}
	e.newBlock("$exit")
	calculateLiveIntervals(e.prog, e.pc)
	return e.prog, nil
}

// calculateLiveIntervals performs the backward liveness walk described in
// §4.3: visiting blocks tail-to-head, instructions tail-to-head,
// decrementing pc at each step starting from the total instruction count,
// matching original_source/src/ir.c's emitter_add_instruction incrementing
// e->pc on every emit so calculate_live_intervals starts from that count
// and walks the positive range N-1..0. Instructions whose assignee is
// never read downstream are rewritten to DEAD.
func calculateLiveIntervals(prog *Program, count int) {
	live := make(map[string]int) // variable -> last-use pc
	pc := count
	for b := prog.Tail; b != nil; b = b.Prev {
		for inst := b.Tail; inst != nil; inst = inst.Prev {
			pc--
			if inst.Assignee != "" {
				end, ok := live[inst.Assignee]
				if !ok {
					end = 0
				}
				if pc > end {
					inst.Opcode = Dead
					continue
				}
				inst.Start, inst.End = pc, end
			}
			for _, op := range inst.Operands {
				if op.Kind != OVariable {
					continue
				}
				if _, ok := live[op.Name]; !ok {
					live[op.Name] = pc
				}
			}
		}
	}
}
