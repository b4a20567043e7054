package analysis

import (
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"dict2file/internal/dictionary"
	"dict2file/internal/ir"
)

// Options configure a run. They are read-only once the run starts.
type Options struct {
	Bounds Bounds
	// Debug traces every classification and resolution.
	Debug bool
	// Quiet suppresses the per-entry diagnostic line.
	Quiet  bool
	Ignore IgnoreList
	Logger *log.Logger
	// Highlight renders IR text for debug traces; nil leaves it plain.
	Highlight func(string) string
	// Observe, when set, is called once for every classified comparison.
	Observe func(Site)
}

// Analyzer scans modules for dictionary entries.
type Analyzer struct {
	opts Options
	log  *log.Logger
}

// New returns an analyzer. Zero bounds are replaced by DefaultBounds.
func New(opts Options) *Analyzer {
	if opts.Bounds == (Bounds{}) {
		opts.Bounds = DefaultBounds()
	}
	lg := opts.Logger
	if lg == nil {
		lg = log.New(io.Discard)
	}
	return &Analyzer{opts: opts, log: lg}
}

// run holds the state of a single pass over one module.
type run struct {
	*Analyzer
	resolver *Resolver
	sink     Sink
	result   Result
}

// Run walks every defined function of m in order and emits the entries it
// finds to sink. The binding table spans the whole module. The first sink
// error stops the walk and is returned with the partial result.
func (a *Analyzer) Run(m *ir.Module, sink Sink) (Result, error) {
	r := &run{
		Analyzer: a,
		resolver: NewResolver(NewBindings()),
		sink:     sink,
	}

	for _, fn := range m.Functions {
		if fn.Decl || len(fn.Blocks) == 0 {
			continue
		}
		if a.opts.Ignore.Ignored(fn.Name) {
			r.result.Ignored++
			if a.opts.Debug {
				a.log.Debug("Skipping function", "function", CachedDemangle(fn.Name))
			}
			continue
		}
		r.result.Functions++

		for _, blk := range fn.Blocks {
			for _, in := range blk.Insts {
				if in.Call == nil {
					continue
				}
				if err := r.visit(fn, in.Call); err != nil {
					return r.result, err
				}
			}
		}
	}
	return r.result, nil
}

func (r *run) visit(fn *ir.Function, call *ir.Call) error {
	kind, ok := Classify(call)
	if !ok {
		return nil
	}

	if kind.IsCopy() {
		r.result.Copies++
		c := copyOf(call)
		if content, ok := r.resolver.Bind(c); ok && r.opts.Debug {
			r.log.Debug("Saved binding",
				"value", c.Dst,
				"content", dictionary.Render(content),
				"function", CachedDemangle(fn.Name))
		}
		return nil
	}

	r.result.Comparisons++
	cmp := comparisonOf(kind, call)
	ra := r.resolver.Resolve(cmp.A)
	rb := r.resolver.Resolve(cmp.B)

	if r.opts.Debug {
		r.trace(fn, call, cmp, ra, rb)
	}

	// Exactly one side must be known; with both known there is no way to
	// tell which one is the input.
	site := Site{Function: fn.Name, Kind: kind, Text: call.Text, A: ra, B: rb}
	if r.opts.Observe != nil {
		defer func() { r.opts.Observe(site) }()
	}

	if ra.Known() == rb.Known() {
		r.result.Ambiguous++
		return nil
	}
	known := ra
	if !known.Known() {
		known = rb
	}

	entry, ok := Reconcile(kind, known.Bytes, cmp.Len, r.opts.Bounds)
	site.Entry = &entry
	if !r.opts.Quiet {
		r.log.Info(fmt.Sprintf("%s: length %d/%d %s",
			kind, entry.Effective, len(entry.Content), dictionary.Render(entry.Content)))
	}
	if !ok {
		r.result.OutOfBounds++
		return nil
	}

	written, err := r.sink.Emit(entry.Content)
	if err != nil {
		return fmt.Errorf("emit entry from %s: %w", fn.Name, err)
	}
	site.Written = written
	if written {
		r.result.Entries++
	} else {
		r.result.OutOfBounds++
	}
	return nil
}

func (r *run) trace(fn *ir.Function, call *ir.Call, cmp Comparison, ra, rb Resolution) {
	text := call.Text
	if r.opts.Highlight != nil {
		text = r.opts.Highlight(text)
	}
	r.log.Debug("Comparison site",
		"function", CachedDemangle(fn.Name),
		"kind", cmp.Kind,
		"call", text)
	for i, side := range []struct {
		v   *ir.Value
		res Resolution
	}{{cmp.A, ra}, {cmp.B, rb}} {
		if side.res.Known() {
			r.log.Debug("Resolved operand",
				"arg", i,
				"value", side.v,
				"source", side.res.Source,
				"content", dictionary.Render(side.res.Bytes))
		} else {
			r.log.Debug("Unresolved operand", "arg", i, "value", side.v)
		}
	}
}
