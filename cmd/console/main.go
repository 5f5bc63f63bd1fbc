package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"golang.org/x/term"

	"hackvm/pkg/config"
	"hackvm/pkg/cpu"
	"hackvm/pkg/translator"
	"hackvm/pkg/utils"
)

const (
	stepsPerPoll = 20_000 // instructions between keyboard polls
	holdPolls    = 4      // polls a key stays down after its byte arrives
	ctrlC        = 0x03
)

// terminal feeds raw stdin bytes to the emulated keyboard.
type terminal struct {
	fd    int
	state *term.State
	keys  chan []byte
}

func openTerminal() *terminal {
	t := &terminal{fd: int(os.Stdin.Fd()), keys: make(chan []byte, 16)}
	if !term.IsTerminal(t.fd) {
		return nil
	}
	state, err := term.MakeRaw(t.fd)
	if err != nil {
		log.Printf("keyboard disabled: %v", err)
		return nil
	}
	t.state = state

	go func() {
		buf := make([]byte, 16)
		for {
			n, err := os.Stdin.Read(buf)
			if n > 0 {
				chunk := make([]byte, n)
				copy(chunk, buf[:n])
				t.keys <- chunk
			}
			if err != nil {
				close(t.keys)
				return
			}
		}
	}()
	return t
}

func (t *terminal) restore() {
	if t != nil && t.state != nil {
		_ = term.Restore(t.fd, t.state)
	}
}

// run steps vm until it halts, the budget runs out, or the user presses
// Ctrl-C. It reports whether the user interrupted.
func run(vm *cpu.CPU, budget uint64, t *terminal) bool {
	var keys <-chan []byte
	if t != nil {
		keys = t.keys
	}
	hold := 0
	for vm.Steps < budget && !vm.Halted {
		select {
		case chunk, ok := <-keys:
			if !ok {
				keys = nil
				break
			}
			for len(chunk) > 0 {
				if chunk[0] == ctrlC {
					return true
				}
				code, n := cpu.TerminalKey(chunk)
				chunk = chunk[n:]
				if code != 0 {
					vm.SetKey(code)
					hold = holdPolls
				}
			}
		default:
			if hold > 0 {
				hold--
				if hold == 0 {
					vm.SetKey(0)
				}
			}
		}
		vm.RunFor(min(stepsPerPoll, budget-vm.Steps))
	}
	return false
}

func main() {
	if err := config.LoadEnv(); err != nil {
		log.Fatal(err)
	}
	cfg, err := config.Parse("console", os.Args[1:], os.Stderr)
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		log.Fatalf("Bad arguments: %v", err)
	}

	vm, err := loadMachine(cfg)
	if err != nil {
		log.Fatalf("Load failed: %v", err)
	}
	// The budget counts from where a resumed machine left off.
	budget := vm.Steps + cfg.Steps

	fullPath, _, err := utils.GetPathInfo(cfg.In)
	if err != nil {
		fullPath = cfg.In
	}
	fmt.Printf("Running %s (%d words, budget %d steps, Ctrl-C to stop)\r\n", fullPath, len(vm.ROM), cfg.Steps)
	t := openTerminal()
	interrupted := run(vm, budget, t)
	t.restore()

	switch {
	case interrupted:
		fmt.Println("interrupted")
	case vm.Halted:
		fmt.Println("halted")
	default:
		fmt.Println("step budget exhausted")
	}
	fmt.Printf("steps=%d PC=%d A=%d D=%d SP=%d LCL=%d ARG=%d THIS=%d THAT=%d top=%d\n",
		vm.Steps, vm.PC, vm.A, int16(vm.D),
		vm.RAM[cpu.SP], vm.RAM[cpu.LCL], vm.RAM[cpu.ARG], vm.RAM[cpu.THIS], vm.RAM[cpu.THAT],
		vm.StackTop())

	if cfg.Screenshot != "" {
		if err := vm.SaveScreenshot(cfg.Screenshot); err != nil {
			log.Fatalf("Screenshot failed: %v", err)
		}
	}
	if cfg.Snapshot != "" {
		if err := vm.HibernateToFile(cfg.Snapshot); err != nil {
			log.Fatalf("Snapshot failed: %v", err)
		}
		fmt.Printf("machine saved -> %s\n", cfg.Snapshot)
	}
}

// loadMachine resumes a .zip snapshot, or translates and loads VM sources.
func loadMachine(cfg *config.Config) (*cpu.CPU, error) {
	vm := cpu.NewCPU()
	if filepath.Ext(cfg.In) == ".zip" {
		return vm, vm.RestoreFromFile(cfg.In)
	}

	out, err := translator.Compile(context.Background(), cfg.In, cfg.Bootstrap, cfg.Options())
	if err != nil {
		if out != nil {
			log.Print(out.Assembly)
		}
		return nil, fmt.Errorf("compilation failed: %w", err)
	}
	return vm, vm.Load(out.Machine)
}
