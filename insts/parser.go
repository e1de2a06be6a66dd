package insts

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// ParseOp resolves an opcode class name as used in kernel stream files.
func ParseOp(name string) (Op, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for op, n := range opNames {
		if n == name && op != OpUnknown {
			return op, nil
		}
	}
	return OpUnknown, errors.Errorf("unknown opcode class %q", name)
}

// ParseRegister parses an assembler register operand.
//
// Accepted forms: v4, a12, s0, v[0:3], a[0:15], s[2:3], vcc, exec, m0.
func ParseRegister(text string) (Register, error) {
	text = strings.ToLower(strings.TrimSpace(text))

	switch text {
	case "vcc":
		return VCC, nil
	case "exec":
		return EXEC, nil
	case "m0":
		return M0, nil
	case "":
		return Register{}, errors.New("empty register operand")
	}

	var kind RegisterKind
	switch text[0] {
	case 'v':
		kind = KindVGPR
	case 'a':
		kind = KindAGPR
	case 's':
		kind = KindSGPR
	default:
		return Register{}, errors.Errorf("unknown register file in %q", text)
	}

	body := text[1:]
	if !strings.HasPrefix(body, "[") {
		index, err := strconv.Atoi(body)
		if err != nil || index < 0 {
			return Register{}, errors.Errorf("malformed register %q", text)
		}
		return Register{Kind: kind, Index: index, Count: 1}, nil
	}

	if !strings.HasSuffix(body, "]") {
		return Register{}, errors.Errorf("malformed register range %q", text)
	}
	lo, hi, found := strings.Cut(body[1:len(body)-1], ":")
	if !found {
		return Register{}, errors.Errorf("malformed register range %q", text)
	}

	first, err := strconv.Atoi(lo)
	if err != nil {
		return Register{}, errors.Wrapf(err, "malformed register range %q", text)
	}
	last, err := strconv.Atoi(hi)
	if err != nil {
		return Register{}, errors.Wrapf(err, "malformed register range %q", text)
	}
	if first < 0 || last < first {
		return Register{}, errors.Errorf("empty register range %q", text)
	}

	return Register{Kind: kind, Index: first, Count: last - first + 1}, nil
}

// ParseRegisters parses a list of register operands.
func ParseRegisters(texts []string) ([]Register, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	regs := make([]Register, 0, len(texts))
	for _, t := range texts {
		r, err := ParseRegister(t)
		if err != nil {
			return nil, err
		}
		regs = append(regs, r)
	}
	return regs, nil
}
