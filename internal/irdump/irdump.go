// Package irdump renders a lowered ir.Program as textual LLVM IR, for the
// optional `-d llvm` dump flag (an alternate view of the same linked list
// the NASM backend walks — it does not replace codegen).
//
// Grounded on github.com/mewmew/x's disassembler manifest, which pairs
// github.com/llir/llvm's ir.Module/ir.Func construction with
// github.com/llir/ll's llvm assembly grammar; here the construction side of
// that pair renders Neo's own three-address form instead of parsing x86.
package irdump

import (
	"fmt"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/types"

	neoir "neo/internal/ir"
)

// RenderLLVM builds a single-function LLVM module mirroring prog's basic
// blocks and returns its textual IR. Each Neo temp/variable becomes an i32
// alloca; ADD/SUB/MUL/DIV map onto the matching LLVM instruction; DEAD
// instructions are skipped entirely, same as codegen's compileInstruction.
func RenderLLVM(prog *neoir.Program) (string, error) {
	m := ir.NewModule()
	fn := m.NewFunc("main", types.I32)

	blocks := make(map[*neoir.BasicBlock]*ir.Block, 8)
	for b := prog.Head; b != nil; b = b.Next {
		blocks[b] = fn.NewBlock(blockLabel(b))
	}

	allocas := make(map[string]*ir.InstAlloca)
	alloca := func(blk *ir.Block, name string) *ir.InstAlloca {
		if a, ok := allocas[name]; ok {
			return a
		}
		a := blk.NewAlloca(types.I32)
		a.LocalName = name
		allocas[name] = a
		return a
	}

	operandValue := func(blk *ir.Block, op neoir.Operand) (constant.Constant, *ir.InstAlloca) {
		switch op.Kind {
		case neoir.OValue:
			return constant.NewInt(types.I32, int64(op.Value.I)), nil
		case neoir.OVariable:
			return nil, alloca(blk, op.Name)
		default:
			return constant.NewInt(types.I32, 0), nil
		}
	}

	load := func(blk *ir.Block, op neoir.Operand) ir.Value {
		c, a := operandValue(blk, op)
		if a != nil {
			return blk.NewLoad(types.I32, a)
		}
		return c
	}

	for b := prog.Head; b != nil; b = b.Next {
		blk := blocks[b]
		for inst := b.Head; inst != nil; inst = inst.Next {
			if err := renderInstruction(blk, inst, alloca, load); err != nil {
				return "", err
			}
		}
		if blk.Term == nil {
			if next := b.Next; next != nil {
				blk.NewBr(blocks[next])
			} else {
				blk.NewRet(constant.NewInt(types.I32, 0))
			}
		}
	}

	return m.String(), nil
}

func blockLabel(b *neoir.BasicBlock) string {
	if b.Tag != "" {
		return fmt.Sprintf("%s_%d", b.Tag, b.ID)
	}
	return fmt.Sprintf("block_%d", b.ID)
}

func renderInstruction(
	blk *ir.Block,
	inst *neoir.Instruction,
	alloca func(*ir.Block, string) *ir.InstAlloca,
	load func(*ir.Block, neoir.Operand) ir.Value,
) error {
	switch inst.Opcode {
	case neoir.Dead, neoir.Def:
		return nil
	case neoir.Assign:
		dst := alloca(blk, inst.Assignee)
		blk.NewStore(load(blk, inst.Operands[0]), dst)
		return nil
	case neoir.Add, neoir.Sub, neoir.Mul, neoir.Div:
		lhs := load(blk, inst.Operands[0])
		rhs := load(blk, inst.Operands[1])
		dst := alloca(blk, inst.Assignee)
		var result ir.Value
		switch inst.Opcode {
		case neoir.Add:
			result = blk.NewAdd(lhs, rhs)
		case neoir.Sub:
			result = blk.NewSub(lhs, rhs)
		case neoir.Mul:
			result = blk.NewMul(lhs, rhs)
		case neoir.Div:
			result = blk.NewSDiv(lhs, rhs)
		}
		blk.NewStore(result, dst)
		return nil
	case neoir.Ret:
		if len(inst.Operands) == 0 {
			blk.NewRet(nil)
			return nil
		}
		blk.NewRet(load(blk, inst.Operands[0]))
		return nil
	default:
		// Every other opcode (NEG, NOT, DEREF, ADDR, the comparisons, JMP,
		// BR) is not rendered and ends the dump with an error.
		return fmt.Errorf("irdump: unsupported opcode %v", inst.Opcode)
	}
}
