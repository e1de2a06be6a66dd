// Package loader reads kernel instruction streams from YAML files.
//
// A kernel file lists already-lowered instructions together with the
// registers they read and write:
//
//	name: gemm_tile
//	target: gfx942
//	instructions:
//	  - {op: mfma, name: v_mfma_f32_32x32x8f16, passes: 16, dst: ["a[0:15]"], src: ["v[0:1]", "v[2:3]", "a[0:15]"]}
//	  - {op: accvgpr_read, dst: [v4], src: [a3]}
package loader

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/sarchlab/waitstate/arch"
	"github.com/sarchlab/waitstate/insts"
)

// Kernel is one instruction stream read from a kernel file.
type Kernel struct {
	// Name identifies the kernel in listings and logs.
	Name string
	// Target is the architecture named in the file. Empty if the file does
	// not name one.
	Target string
	// Instructions in program order.
	Instructions []insts.Instruction
}

type kernelDoc struct {
	Name         string           `yaml:"name"`
	Target       string           `yaml:"target,omitempty"`
	Instructions []instructionDoc `yaml:"instructions"`
}

type instructionDoc struct {
	Op      string   `yaml:"op"`
	Name    string   `yaml:"name,omitempty"`
	Dst     []string `yaml:"dst,omitempty,flow"`
	Src     []string `yaml:"src,omitempty,flow"`
	Passes  int      `yaml:"passes,omitempty"`
	Count   int      `yaml:"count,omitempty"`
	Comment string   `yaml:"comment,omitempty"`
	Padding bool     `yaml:"padding,omitempty"`
}

// Load reads a kernel file. A kernel without a name is named after the
// file.
func Load(path string) (*Kernel, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read kernel file")
	}

	k, err := Parse(data)
	if err != nil {
		return nil, errors.Wrapf(err, "%s", path)
	}

	if k.Name == "" {
		base := filepath.Base(path)
		k.Name = strings.TrimSuffix(base, filepath.Ext(base))
	}
	return k, nil
}

// Parse decodes a kernel document. Unknown fields, unknown opcode classes
// and malformed registers are errors that name the offending instruction.
func Parse(data []byte) (*Kernel, error) {
	var doc kernelDoc
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("empty kernel file")
		}
		return nil, errors.Wrap(err, "failed to parse kernel YAML")
	}

	if doc.Target != "" {
		if _, err := arch.Parse(doc.Target); err != nil {
			return nil, err
		}
	}

	k := &Kernel{
		Name:         doc.Name,
		Target:       doc.Target,
		Instructions: make([]insts.Instruction, 0, len(doc.Instructions)),
	}
	for i, d := range doc.Instructions {
		inst, err := d.instruction()
		if err != nil {
			return nil, errors.Wrapf(err, "instruction %d", i)
		}
		k.Instructions = append(k.Instructions, inst)
	}
	return k, nil
}

func (d instructionDoc) instruction() (insts.Instruction, error) {
	op, err := insts.ParseOp(d.Op)
	if err != nil {
		return insts.Instruction{}, err
	}
	dst, err := insts.ParseRegisters(d.Dst)
	if err != nil {
		return insts.Instruction{}, errors.Wrap(err, "dst")
	}
	src, err := insts.ParseRegisters(d.Src)
	if err != nil {
		return insts.Instruction{}, errors.Wrap(err, "src")
	}

	inst := insts.New(op, d.Name, dst, src)
	inst.Passes = d.Passes
	inst.Count = d.Count
	inst.Comment = d.Comment
	inst.Padding = d.Padding

	if err := inst.Validate(); err != nil {
		return insts.Instruction{}, err
	}
	return inst, nil
}

// Marshal encodes a kernel in the format Parse reads. Scheduled streams
// round-trip, padding included.
func Marshal(k *Kernel) ([]byte, error) {
	doc := kernelDoc{
		Name:         k.Name,
		Target:       k.Target,
		Instructions: make([]instructionDoc, len(k.Instructions)),
	}
	for i, inst := range k.Instructions {
		doc.Instructions[i] = instructionDoc{
			Op:      inst.Op.String(),
			Name:    inst.Name,
			Dst:     registerNames(inst.Dst),
			Src:     registerNames(inst.Src),
			Passes:  inst.Passes,
			Count:   inst.Count,
			Comment: inst.Comment,
			Padding: inst.Padding,
		}
	}

	var buf bytes.Buffer
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)
	if err := encoder.Encode(doc); err != nil {
		return nil, errors.Wrap(err, "failed to encode kernel")
	}
	if err := encoder.Close(); err != nil {
		return nil, errors.Wrap(err, "failed to encode kernel")
	}
	return buf.Bytes(), nil
}

// Save writes a kernel file.
func Save(path string, k *Kernel) error {
	data, err := Marshal(k)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.Wrap(err, "failed to write kernel file")
	}
	return nil
}

func registerNames(regs []insts.Register) []string {
	if len(regs) == 0 {
		return nil
	}
	names := make([]string, len(regs))
	for i, r := range regs {
		names[i] = r.String()
	}
	return names
}
