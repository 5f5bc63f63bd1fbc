package config

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"hackvm/pkg/translator"
)

func clearEnv(t *testing.T) {
	for _, k := range []string{"BOOTSTRAP", "ENTRY", "WORKERS", "STEPS", "HACK", "VERBOSE", "SCREENSHOT"} {
		t.Setenv(envPrefix+k, "")
	}
}

func TestParseDefaults(t *testing.T) {
	clearEnv(t)

	c, err := Parse("test", []string{"prog.vm"}, io.Discard)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if c.In != "prog.vm" {
		t.Errorf("In: expected prog.vm, got %q", c.In)
	}
	if c.Bootstrap != translator.BootstrapAuto {
		t.Errorf("Bootstrap: expected auto, got %v", c.Bootstrap)
	}
	if c.Entry != translator.DefaultEntry {
		t.Errorf("Entry: expected %s, got %q", translator.DefaultEntry, c.Entry)
	}
	if c.Workers < 1 {
		t.Errorf("Workers: expected at least 1, got %d", c.Workers)
	}
}

func TestParseFlags(t *testing.T) {
	clearEnv(t)

	args := []string{"-in", "dir", "-bootstrap", "never", "-entry", "Main.main", "-workers", "3", "-hack", "-run", "-steps", "99"}
	c, err := Parse("test", args, io.Discard)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if c.In != "dir" || c.Bootstrap != translator.BootstrapNever || c.Entry != "Main.main" ||
		c.Workers != 3 || !c.Hack || !c.Run || c.Steps != 99 {
		t.Errorf("unexpected config: %+v", c)
	}

	opts := c.Options()
	if opts.Entry != "Main.main" || opts.Workers != 3 {
		t.Errorf("unexpected options: %+v", opts)
	}
}

func TestEnvironmentDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("HACKVM_BOOTSTRAP", "always")
	t.Setenv("HACKVM_WORKERS", "2")
	t.Setenv("HACKVM_STEPS", "500")
	t.Setenv("HACKVM_HACK", "true")

	c, err := Parse("test", []string{"x.vm"}, io.Discard)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if c.Bootstrap != translator.BootstrapAlways || c.Workers != 2 || c.Steps != 500 || !c.Hack {
		t.Errorf("unexpected config: %+v", c)
	}

	// Flags still win.
	c, err = Parse("test", []string{"-workers", "5", "x.vm"}, io.Discard)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if c.Workers != 5 {
		t.Errorf("Workers: expected 5, got %d", c.Workers)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		args []string
	}{
		{"no input", nil, nil},
		{"bad bootstrap flag", nil, []string{"-bootstrap", "sometimes", "x.vm"}},
		{"bad bootstrap env", map[string]string{"HACKVM_BOOTSTRAP": "maybe"}, []string{"x.vm"}},
		{"bad workers env", map[string]string{"HACKVM_WORKERS": "many"}, []string{"x.vm"}},
		{"zero workers", nil, []string{"-workers", "0", "x.vm"}},
		{"empty entry", nil, []string{"-entry", "", "x.vm"}},
		{"run without budget", nil, []string{"-run", "-steps", "0", "x.vm"}},
		{"unknown flag", nil, []string{"-frobnicate", "x.vm"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			if _, err := Parse("test", tt.args, io.Discard); err == nil {
				t.Errorf("expected an error")
			}
		})
	}
}

func TestLoadEnv(t *testing.T) {
	clearEnv(t)
	os.Unsetenv("HACKVM_ENTRY")

	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	if err := os.WriteFile(path, []byte("HACKVM_ENTRY=Main.start\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := LoadEnv(path, filepath.Join(dir, "missing.env")); err != nil {
		t.Fatalf("LoadEnv: %v", err)
	}
	t.Cleanup(func() { os.Unsetenv("HACKVM_ENTRY") })

	c, err := Defaults()
	if err != nil {
		t.Fatalf("Defaults: %v", err)
	}
	if c.Entry != "Main.start" {
		t.Errorf("Entry: expected Main.start, got %q", c.Entry)
	}
}
