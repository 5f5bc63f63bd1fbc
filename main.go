//go:build !js

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"hackvm/pkg/asm"
	"hackvm/pkg/config"
	"hackvm/pkg/cpu"
	"hackvm/pkg/translator"
)

func main() {
	if err := config.LoadEnv(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	cfg, err := config.Parse(os.Args[0], os.Args[1:], os.Stderr)
	if errors.Is(err, flag.ErrHelp) {
		os.Exit(0)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	if cfg.Snapshot != "" && !cfg.Run {
		fmt.Fprintln(os.Stderr, "-snapshot needs -run")
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	opts := cfg.Options()
	if cfg.Verbose {
		opts.Logger = log.New(os.Stderr, "hackvm: ", 0)
	}

	out, err := translator.Compile(ctx, cfg.In, cfg.Bootstrap, opts)
	if err != nil {
		var terr *translator.Error
		if errors.As(err, &terr) {
			fmt.Fprintf(os.Stderr, "translation failed: %v\n", err)
		} else {
			fmt.Fprintf(os.Stderr, "%v\n", err)
		}
		os.Exit(1)
	}

	asmPath := cfg.Out
	if asmPath == "" {
		asmPath = out.AsmPath
	}
	if err := os.WriteFile(asmPath, []byte(out.Assembly), 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "failed to write assembly file %q: %v\n", asmPath, err)
		os.Exit(1)
	}
	fmt.Printf("translated %d unit(s) -> %s\n", len(out.Units), asmPath)

	if cfg.Hack {
		hackPath := out.HackPath
		if cfg.Out != "" {
			hackPath = machinePath(cfg.Out)
		}
		if err := os.WriteFile(hackPath, []byte(asm.Format(out.Machine)), 0o644); err != nil {
			fmt.Fprintf(os.Stderr, "failed to write machine code file %q: %v\n", hackPath, err)
			os.Exit(1)
		}
		fmt.Printf("assembled %d words -> %s\n", len(out.Machine), hackPath)
	}

	if cfg.Run {
		if err := runProgram(out.Machine, cfg.Steps, cfg.Screenshot, cfg.Snapshot); err != nil {
			fmt.Fprintf(os.Stderr, "run failed: %v\n", err)
			os.Exit(1)
		}
	}
}

// machinePath places the .hack file next to the chosen .asm path.
func machinePath(asmPath string) string {
	return strings.TrimSuffix(asmPath, filepath.Ext(asmPath)) + ".hack"
}

func runProgram(program []uint16, steps uint64, screenshot, snapshot string) error {
	vm := cpu.NewCPU()
	if err := vm.Load(program); err != nil {
		return err
	}
	halted := vm.RunFor(steps)

	state := "budget exhausted"
	if halted {
		state = "halted"
	}
	fmt.Printf(
		"run complete (%s after %d steps): PC=%d SP=%d LCL=%d ARG=%d THIS=%d THAT=%d top=%d\n",
		state,
		vm.Steps,
		vm.PC,
		vm.RAM[cpu.SP],
		vm.RAM[cpu.LCL],
		vm.RAM[cpu.ARG],
		vm.RAM[cpu.THIS],
		vm.RAM[cpu.THAT],
		vm.StackTop(),
	)

	if screenshot != "" {
		if err := vm.SaveScreenshot(screenshot); err != nil {
			return err
		}
		fmt.Printf("screen saved -> %s\n", screenshot)
	}
	if snapshot != "" {
		if err := vm.HibernateToFile(snapshot); err != nil {
			return err
		}
		fmt.Printf("machine saved -> %s\n", snapshot)
	}
	return nil
}
