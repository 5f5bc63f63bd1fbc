package translator

import (
	"context"
	"fmt"

	"hackvm/pkg/asm"
	"hackvm/pkg/utils"
)

// Output is the result of translating and assembling one input path.
type Output struct {
	Assembly  string
	Machine   []uint16
	SourceMap map[uint16]int // ROM address -> line of Assembly
	AsmPath   string         // where the .asm belongs
	HackPath  string         // where the .hack belongs
	Units     []string
}

// Compile loads path (a .vm file or a directory of them), translates it and
// assembles the result. When only assembly fails, the returned Output still
// carries the generated text for inspection.
func Compile(ctx context.Context, path string, mode BootstrapMode, opts Options) (*Output, error) {
	units, isDir, err := LoadUnits(path)
	if err != nil {
		return nil, err
	}
	opts.Bootstrap = mode.Enabled(isDir)

	assembly, err := Translate(ctx, units, opts)
	if err != nil {
		return nil, err
	}

	out := &Output{
		Assembly: assembly,
		AsmPath:  utils.OutputPath(path, isDir, ".asm"),
		HackPath: utils.OutputPath(path, isDir, ".hack"),
	}
	for _, u := range units {
		out.Units = append(out.Units, u.Name)
	}

	out.Machine, out.SourceMap, err = asm.Assemble(assembly)
	if err != nil {
		return out, fmt.Errorf("assembly error: %w", err)
	}
	return out, nil
}
