// debug_trace.go: debugging-only helpers for the SECD pipeline.
//
//   - DebuggingMode is read from LISPKIT_DEBUG at process start. Hosts and
//     tests may also set it directly. When true, sessions trace every machine
//     step to stderr and verify compiled code before running it.
//   - VerifyControl checks the block structure of a control list: every
//     opcode is known, inline operands are present and shaped correctly, SEL
//     branches end in JOIN, and LDF bodies end in RTN.
package lispkit

import (
	"fmt"
	"os"
)

var DebuggingMode = os.Getenv("LISPKIT_DEBUG") != ""

// VerifyControl walks code and reports the first structural defect.
func VerifyControl(code Node) error {
	return verifyBlock(code, "")
}

func verifyBlock(code Node, want string) error {
	if !code.IsList() {
		return corrupt("VERIFY", "control %s is not a list", FormatNodeDepth(code, ErrorExprDepth))
	}
	items := code.Items()
	if want != "" && (len(items) == 0 || !items[len(items)-1].IsSym(want)) {
		return corrupt("VERIFY", "block %s does not end in %s", FormatNodeDepth(code, ErrorExprDepth), want)
	}
	for i := 0; i < len(items); i++ {
		op := items[i]
		if !op.IsSymbol() {
			return corrupt("VERIFY", "position %d: %s is not an opcode", i, FormatNodeDepth(op, ErrorExprDepth))
		}
		need := 0
		switch op.Text() {
		case opLDC, opLD, opLDF:
			need = 1
		case opSEL:
			need = 2
		case opSTOP, opJOIN, opAP, opRTN, opDUM, opRAP:
		default:
			if primitiveOf(op.Text()) == NotBuiltin {
				return corrupt("VERIFY", "position %d: unknown opcode %s", i, op.Text())
			}
		}
		if i+need >= len(items) {
			return corrupt("VERIFY", "position %d: %s is missing its operand", i, op.Text())
		}
		switch op.Text() {
		case opLD:
			a := items[i+1]
			if !a.IsList() || a.Len() != 2 || !a.Head().IsNumber() || !a.Tail().Head().IsNumber() {
				return corrupt("VERIFY", "position %d: LD operand %s is not (i j)", i, a)
			}
		case opLDF:
			if err := verifyBlock(items[i+1], opRTN); err != nil {
				return err
			}
		case opSEL:
			for _, br := range items[i+1 : i+3] {
				if err := verifyBlock(br, opJOIN); err != nil {
					return err
				}
			}
		}
		i += need
	}
	return nil
}

func debugf(format string, args ...interface{}) {
	if DebuggingMode {
		fmt.Fprintf(os.Stderr, "[lispkit] "+format+"\n", args...)
	}
}
