package shaders

import (
	_ "embed"
	"encoding/binary"
	"errors"
	"fmt"
	"strings"

	"github.com/gogpu/bedrock/gpucore"
	"github.com/gogpu/naga"
)

//go:embed bedrock.wgsl
var builtinWGSL string

// SPIRVMagic is the first word of every SPIR-V module.
const SPIRVMagic = 0x07230203

// ErrInvalidSPIRV is returned by Load for data that is not a SPIR-V module.
var ErrInvalidSPIRV = errors.New("shaders: invalid SPIR-V binary")

// Kind names used in entry points.
const (
	KindQuad   = "quad"
	KindGlyph  = "glyph"
	KindPath   = "path"
	KindSprite = "sprite"
)

// Stage is a programmable pipeline stage.
type Stage uint8

// Stages.
const (
	StageVertex Stage = iota
	StageFragment
)

// String returns "vertex" or "fragment".
func (s Stage) String() string {
	if s == StageFragment {
		return "fragment"
	}
	return "vertex"
}

// Naming is an entry-point naming convention.
type Naming uint8

const (
	// NamingUnderscore names entry points "<kind>_<stage>", as WGSL requires.
	NamingUnderscore Naming = iota

	// NamingScoped names entry points "<kind>::<stage>".
	NamingScoped
)

func (n Naming) separator() string {
	if n == NamingScoped {
		return "::"
	}
	return "_"
}

// Program is a shader module together with its entry-point naming.
type Program struct {
	label  string
	source gpucore.ShaderSource
	naming Naming
}

// Builtin returns the embedded WGSL program.
func Builtin() *Program {
	return &Program{
		label:  "bedrock.wgsl",
		source: gpucore.ShaderSource{WGSL: builtinWGSL},
		naming: NamingUnderscore,
	}
}

// Load wraps a precompiled little-endian SPIR-V binary whose entry points
// use the "<kind>::<stage>" convention.
func Load(spirv []byte) (*Program, error) {
	if len(spirv) < 20 || len(spirv)%4 != 0 {
		return nil, fmt.Errorf("%w: %d bytes", ErrInvalidSPIRV, len(spirv))
	}
	words := bytesToWords(spirv)
	if words[0] != SPIRVMagic {
		return nil, fmt.Errorf("%w: magic 0x%08X", ErrInvalidSPIRV, words[0])
	}
	return &Program{
		label:  "bedrock.spv",
		source: gpucore.ShaderSource{SPIRV: words},
		naming: NamingScoped,
	}, nil
}

// Label returns a debug label for the module.
func (p *Program) Label() string { return p.label }

// Naming returns the entry-point convention of the program.
func (p *Program) Naming() Naming { return p.naming }

// Source returns the program source as provided.
func (p *Program) Source() gpucore.ShaderSource { return p.source }

// EntryPoint returns the entry-point name for a kind and stage.
func (p *Program) EntryPoint(kind string, stage Stage) string {
	return kind + p.naming.separator() + stage.String()
}

// SPIRV returns the program as SPIR-V words, compiling WGSL when needed.
func (p *Program) SPIRV() ([]uint32, error) {
	if p.source.SPIRV != nil {
		return p.source.SPIRV, nil
	}
	return Compile(p.source.WGSL)
}

// Compile compiles WGSL source to SPIR-V words.
func Compile(wgsl string) ([]uint32, error) {
	spirvBytes, err := naga.Compile(wgsl)
	if err != nil {
		return nil, fmt.Errorf("shaders: compile: %w", err)
	}
	return bytesToWords(spirvBytes), nil
}

// ParseEntryPoint splits an entry-point name of either convention into its
// kind and stage.
func ParseEntryPoint(name string) (kind string, stage Stage, ok bool) {
	for _, sep := range []string{"::", "_"} {
		i := strings.LastIndex(name, sep)
		if i <= 0 {
			continue
		}
		switch name[i+len(sep):] {
		case "vertex":
			return name[:i], StageVertex, true
		case "fragment":
			return name[:i], StageFragment, true
		}
	}
	return "", 0, false
}

func bytesToWords(b []byte) []uint32 {
	words := make([]uint32, len(b)/4)
	for i := range words {
		words[i] = binary.LittleEndian.Uint32(b[i*4:])
	}
	return words
}
