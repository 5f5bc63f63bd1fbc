package translator

import (
	"context"
	"fmt"
	"log"
	"strings"

	"golang.org/x/sync/errgroup"
)

// DefaultEntry is the function the bootstrap sequence calls.
const DefaultEntry = "Sys.init"

// Unit is one VM source listing. Name is the static-variable namespace,
// normally the file name without its extension.
type Unit struct {
	Name   string
	Source string
}

// Options controls a translation run.
type Options struct {
	Bootstrap bool   // emit SP=256 and a call to Entry before the first unit
	Entry     string // defaults to DefaultEntry
	Workers   int    // units translated concurrently; <= 1 means sequential
	Logger    *log.Logger
}

func (o Options) entry() string {
	if o.Entry == "" {
		return DefaultEntry
	}
	return o.Entry
}

func (o Options) logf(format string, args ...any) {
	if o.Logger != nil {
		o.Logger.Printf(format, args...)
	}
}

// TranslateUnit lexes u and dispatches it into em under u's namespace.
func TranslateUnit(em *Emitter, u Unit) error {
	em.SetFileName(u.Name)
	return NewParser(Lex(u.Source), em).Run()
}

// Translate runs units through the pipeline in order and returns the whole
// assembly stream. On error nothing is returned: partial output is never
// exposed.
func Translate(ctx context.Context, units []Unit, opts Options) (string, error) {
	if opts.Workers > 1 && len(units) > 1 {
		return translateParallel(ctx, units, opts)
	}

	em := NewEmitter()
	if opts.Bootstrap {
		em.Bootstrap(opts.entry())
	}
	for _, u := range units {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		before := em.Len()
		if err := TranslateUnit(em, u); err != nil {
			return "", err
		}
		opts.logf("translated %s (%d bytes)", u.Name, em.Len()-before)
	}
	return em.String(), nil
}

// translateParallel gives every unit a private Emitter. Counters are seeded
// from the number of comparisons and calls in the units before it, which
// makes the result byte-identical to a sequential run.
func translateParallel(ctx context.Context, units []Unit, opts Options) (string, error) {
	tokens := make([][]Token, len(units))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Workers)
	for i, u := range units {
		i, u := i, u
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			tokens[i] = Lex(u.Source)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return "", err
	}

	boot := NewEmitter()
	if opts.Bootstrap {
		boot.Bootstrap(opts.entry())
	}
	bases := make([]Counters, len(units))
	next := boot.Counters()
	for i := range units {
		bases[i] = next
		cmp, calls := countLabels(tokens[i])
		next.Bool += cmp
		next.Return += calls
	}

	// Unit failures are kept per index and never cancel the others, so the
	// reported error is the first failing unit, as in a sequential run.
	outs := make([]string, len(units))
	errs := make([]error, len(units))
	var wg errgroup.Group
	wg.SetLimit(opts.Workers)
	for i, u := range units {
		i, u := i, u
		wg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			em := NewEmitterAt(bases[i])
			em.SetFileName(u.Name)
			if errs[i] = NewParser(tokens[i], em).Run(); errs[i] != nil {
				return nil
			}
			outs[i] = em.String()
			opts.logf("translated %s (%d bytes)", u.Name, em.Len())
			return nil
		})
	}
	if err := wg.Wait(); err != nil {
		return "", err
	}
	for _, err := range errs {
		if err != nil {
			return "", err
		}
	}

	var b strings.Builder
	b.WriteString(boot.String())
	for _, out := range outs {
		b.WriteString(out)
	}
	return b.String(), nil
}

// countLabels returns how many comparison and call commands a token stream
// holds. In a stream that parses, each such keyword is exactly one command.
func countLabels(tokens []Token) (cmp, calls uint64) {
	for _, t := range tokens {
		switch t.Type {
		case EQ, GT, LT:
			cmp++
		case CALL:
			calls++
		}
	}
	return cmp, calls
}

// BootstrapMode selects when the bootstrap sequence is emitted.
type BootstrapMode int

const (
	BootstrapAuto   BootstrapMode = iota // directories only
	BootstrapAlways                      // every run
	BootstrapNever                       // no run
)

var bootstrapModeNames = [...]string{
	BootstrapAuto:   "auto",
	BootstrapAlways: "always",
	BootstrapNever:  "never",
}

func (m BootstrapMode) String() string {
	if int(m) >= 0 && int(m) < len(bootstrapModeNames) {
		return bootstrapModeNames[m]
	}
	return fmt.Sprintf("BootstrapMode(%d)", int(m))
}

// ParseBootstrapMode parses "auto", "always" or "never".
func ParseBootstrapMode(s string) (BootstrapMode, error) {
	for i, name := range bootstrapModeNames {
		if strings.EqualFold(s, name) {
			return BootstrapMode(i), nil
		}
	}
	return 0, fmt.Errorf("unknown bootstrap mode %q (want auto, always or never)", s)
}

// Enabled resolves the mode for an input that is (or is not) a directory.
func (m BootstrapMode) Enabled(dir bool) bool {
	switch m {
	case BootstrapAlways:
		return true
	case BootstrapNever:
		return false
	}
	return dir
}
