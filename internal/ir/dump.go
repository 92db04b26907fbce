package ir

import (
	"fmt"
	"io"
)

// DumpOperand writes a single operand's textual form.
func DumpOperand(w io.Writer, o Operand) {
	switch o.Kind {
	case OValue:
		fmt.Fprintf(w, "%v", o.Value)
	case OVariable, OLabel:
		fmt.Fprint(w, o.Name)
	default:
		fmt.Fprint(w, "?")
	}
}

// DumpInstruction writes one instruction: assignee, opcode, operands and
// its liveness window, matching original_source's dump_instruction.
func DumpInstruction(w io.Writer, inst *Instruction) {
	if inst.Assignee != "" {
		fmt.Fprintf(w, "%s <- ", inst.Assignee)
	}
	fmt.Fprintf(w, "%s", inst.Opcode)
	for i, o := range inst.Operands {
		if i > 0 {
			fmt.Fprint(w, ",")
		}
		fmt.Fprint(w, " ")
		DumpOperand(w, o)
	}
	fmt.Fprintf(w, "  [%d,%d]\n", inst.Start, inst.End)
}

// DumpIR writes the whole program: one [BasicBlock tag#id] header per
// block followed by its instructions, program-counter-numbered.
func DumpIR(w io.Writer, prog *Program) {
	pc := 0
	for b := prog.Head; b != nil; b = b.Next {
		fmt.Fprintf(w, "[BasicBlock %s#%d]\n", b.Tag, b.ID)
		for inst := b.Head; inst != nil; inst = inst.Next {
			fmt.Fprintf(w, " %d | ", pc)
			pc++
			DumpInstruction(w, inst)
		}
	}
}
