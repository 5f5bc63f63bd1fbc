// Package config gathers command-line settings for the hackvm tools.
//
// Defaults come from HACKVM_* environment variables, which may be set in a
// .env file in the working directory; flags override both.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"
	"runtime"
	"strconv"

	"github.com/joho/godotenv"

	"hackvm/pkg/translator"
)

const envPrefix = "HACKVM_"

// Config holds the settings shared by the CLI and the runners.
type Config struct {
	In        string
	Out       string // .asm path; derived from In when empty
	Hack      bool   // also write the assembled .hack file
	Run       bool   // execute the result on the emulator
	Steps     uint64 // instruction budget for Run
	Bootstrap translator.BootstrapMode
	Entry     string
	Workers   int
	Verbose   bool

	// Screenshot, when set, is a PNG path the screen is saved to after a run.
	Screenshot string
	// Snapshot, when set, is where the runners hibernate the machine on exit.
	Snapshot string
}

// LoadEnv reads .env style files into the process environment without
// overriding variables that are already set. Missing files are skipped.
func LoadEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

// Defaults returns the configuration implied by the environment alone.
func Defaults() (*Config, error) {
	c := &Config{
		Steps:   10_000_000,
		Entry:   translator.DefaultEntry,
		Workers: runtime.NumCPU(),
	}

	var err error
	if v, ok := lookup("BOOTSTRAP"); ok {
		if c.Bootstrap, err = translator.ParseBootstrapMode(v); err != nil {
			return nil, fmt.Errorf("%sBOOTSTRAP: %w", envPrefix, err)
		}
	}
	if v, ok := lookup("SCREENSHOT"); ok {
		c.Screenshot = v
	}
	if v, ok := lookup("ENTRY"); ok {
		c.Entry = v
	}
	if v, ok := lookup("WORKERS"); ok {
		if c.Workers, err = strconv.Atoi(v); err != nil {
			return nil, fmt.Errorf("%sWORKERS: %w", envPrefix, err)
		}
	}
	if v, ok := lookup("STEPS"); ok {
		if c.Steps, err = strconv.ParseUint(v, 10, 64); err != nil {
			return nil, fmt.Errorf("%sSTEPS: %w", envPrefix, err)
		}
	}
	if v, ok := lookup("HACK"); ok {
		if c.Hack, err = strconv.ParseBool(v); err != nil {
			return nil, fmt.Errorf("%sHACK: %w", envPrefix, err)
		}
	}
	if v, ok := lookup("VERBOSE"); ok {
		if c.Verbose, err = strconv.ParseBool(v); err != nil {
			return nil, fmt.Errorf("%sVERBOSE: %w", envPrefix, err)
		}
	}
	return c, nil
}

func lookup(key string) (string, bool) {
	v, ok := os.LookupEnv(envPrefix + key)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

// Parse builds a Config from the environment and then args. A positional
// argument is accepted in place of -in.
func Parse(name string, args []string, output io.Writer) (*Config, error) {
	c, err := Defaults()
	if err != nil {
		return nil, err
	}

	flags := flag.NewFlagSet(name, flag.ContinueOnError)
	if output != nil {
		flags.SetOutput(output)
	}
	flags.StringVar(&c.In, "in", "", "input .vm file or directory of .vm files")
	flags.StringVar(&c.Out, "out", "", "output assembly path (default: derived from -in)")
	flags.BoolVar(&c.Hack, "hack", c.Hack, "also assemble to a .hack file")
	flags.BoolVar(&c.Run, "run", false, "run the result on the emulator")
	flags.Uint64Var(&c.Steps, "steps", c.Steps, "instruction budget for -run")
	flags.StringVar(&c.Entry, "entry", c.Entry, "function called by the bootstrap sequence")
	flags.IntVar(&c.Workers, "workers", c.Workers, "units translated concurrently")
	flags.BoolVar(&c.Verbose, "v", c.Verbose, "log per-unit progress")
	flags.StringVar(&c.Screenshot, "screenshot", c.Screenshot, "save the screen as PNG after -run")
	flags.StringVar(&c.Snapshot, "snapshot", "", "save the machine state to this .zip on exit")
	bootstrap := flags.String("bootstrap", c.Bootstrap.String(), "bootstrap sequence: auto, always or never")

	if err := flags.Parse(args); err != nil {
		return nil, err
	}
	if c.In == "" && flags.NArg() > 0 {
		c.In = flags.Arg(0)
	}
	if c.Bootstrap, err = translator.ParseBootstrapMode(*bootstrap); err != nil {
		return nil, err
	}
	return c, c.Validate()
}

// Validate rejects settings no tool can act on.
func (c *Config) Validate() error {
	if c.In == "" {
		return errors.New("no input: pass -in <file.vm|dir>")
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", c.Workers)
	}
	if c.Entry == "" {
		return errors.New("entry function name must not be empty")
	}
	if c.Run && c.Steps == 0 {
		return errors.New("-run needs a non-zero -steps budget")
	}
	return nil
}

// Options converts the settings into translator options.
func (c *Config) Options() translator.Options {
	return translator.Options{
		Entry:   c.Entry,
		Workers: c.Workers,
	}
}
