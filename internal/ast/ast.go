// Package ast defines Neo's abstract syntax tree: a singly linked list of
// heterogeneous sibling nodes, each carrying a discriminant, a payload, a
// source span, a non-owning type reference and a visited flag.
//
// Grounded on original_source/include/ast.h and src/ast.c. The teacher
// (sentra) models its own AST as a family of interfaces under a visitor
// pattern (internal/parser/ast.go, stmt.go); Neo's AST is not a family of
// types dispatched through Accept, it is one Node struct carrying a
// discriminant and the payload fields the active Kind uses, matching the
// tagged union the original C struct is. Span and Operator below are
// lifted directly from the teacher's and the original's conventions.
package ast

import "neo/internal/types"

// Kind discriminates a Node's payload.
type Kind int

const (
	Unknown Kind = iota
	Noop
	FuncDecl
	VarDecl
	ReturnStmt
	CondStmt
	CallExpr
	AssignStmt
	UnaryExpr
	BinaryExpr
	ValueExpr
	RefExpr
)

func (k Kind) String() string {
	switch k {
	case Noop:
		return "NOOP"
	case FuncDecl:
		return "FUNC_DECL"
	case VarDecl:
		return "VAR_DECL"
	case ReturnStmt:
		return "RET_STMT"
	case CondStmt:
		return "COND_STMT"
	case CallExpr:
		return "CALL_EXPR"
	case AssignStmt:
		return "ASSIGN_STMT"
	case UnaryExpr:
		return "UNARY_EXPR"
	case BinaryExpr:
		return "BINARY_EXPR"
	case ValueExpr:
		return "VALUE_EXPR"
	case RefExpr:
		return "REF_EXPR"
	default:
		return "UNKNOWN"
	}
}

// Operator is shared between AST unary/binary tags and IR opcodes: the
// first fourteen values of ir.Opcode alias Operator exactly, so an
// Operator can be cast directly to an ir.Opcode (see internal/ir).
type Operator int

const (
	OpUnknown Operator = iota
	// Unary
	Neg
	Not
	Deref
	Addr
	// Binary
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
)

var unaryNames = map[Operator]string{Neg: "-", Not: "!", Deref: "*", Addr: "&"}
var binaryNames = map[Operator]string{
	Add: "+", Sub: "-", Mul: "*", Div: "/",
	Cmp: "==", CmpNot: "!=", CmpLt: "<", CmpGt: ">", CmpLtEq: "<=", CmpGtEq: ">=",
}

func (o Operator) String() string {
	if s, ok := unaryNames[o]; ok {
		return s
	}
	if s, ok := binaryNames[o]; ok {
		return s
	}
	return "?"
}

// ValueKind tags the literal carried by a Value payload.
type ValueKind int

const (
	VInt ValueKind = iota
	VUint
	VFloat
	VDouble
	VChar
	VBool
	VString
)

// Value is a literal: exactly one of the typed fields is meaningful,
// selected by Kind. Mirrors original_source's tagged Value union.
type Value struct {
	Kind ValueKind
	I    int32
	U    uint32
	F    float32
	D    float64
	C    byte
	B    bool
	S    string
}

// Span is a source position triple: line, column, file id.
type Span struct {
	Line, Col, FileID int
}

// Param is a single function parameter: name and declared type.
type Param struct {
	Name string
	Type *types.Type
}

// Node is one entry in the AST's sibling list. Only the fields used by the
// active Kind are populated; the rest are zero. This mirrors the C union
// payload without actually unioning memory, since Go has no safe untagged
// union — the cost is a handful of unused pointer-sized fields per node,
// which is the idiomatic Go rendition of a tagged union (same tradeoff
// other_examples' codegen ASTs make).
type Node struct {
	Kind    Kind
	Span    Span
	Type    *types.Type
	Visited bool
	Next    *Node

	// Function
	Name       string
	RetType    *types.Type
	Params     []Param
	Body       *Node

	// Variable
	VarType *types.Type
	Init    *Node

	// Assignment
	Target string
	Value  *Node

	// Return
	RetValue *Node

	// Conditional: Cond == nil marks an else branch.
	Cond *Node

	// Unary / Binary
	Op  Operator
	Lhs *Node
	Rhs *Node

	// Call
	Callee string
	Args   *Node

	// Value literal
	Lit Value

	// Reference
	Ref string
}

// New allocates a bare node of the given kind at span, defaulting Type to
// void (matching original_source's node_new, which defaults
// type = &PRIMITIVES[TY_VOID]).
func New(kind Kind, span Span) *Node {
	return &Node{Kind: kind, Span: span, Type: &types.Primitives[types.Void]}
}

// IsLiteral reports whether n is a value-expr node.
func (n *Node) IsLiteral() bool { return n != nil && n.Kind == ValueExpr }

// Last returns the final node in n's sibling chain.
func Last(n *Node) *Node {
	if n == nil {
		return nil
	}
	for n.Next != nil {
		n = n.Next
	}
	return n
}

// Append walks to the end of head's sibling chain and attaches tail,
// returning head (or tail if head is nil).
func Append(head, tail *Node) *Node {
	if head == nil {
		return tail
	}
	Last(head).Next = tail
	return head
}
