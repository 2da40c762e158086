package compiler

import (
	"fmt"

	"github.com/vledicfranco/constellation-compiler/internal/cerrors"
	"github.com/vledicfranco/constellation-compiler/internal/dag"
	"github.com/vledicfranco/constellation-compiler/internal/ir"
	"github.com/vledicfranco/constellation-compiler/internal/optimizer"
	"github.com/vledicfranco/constellation-compiler/internal/parser"
	"github.com/vledicfranco/constellation-compiler/internal/registry"
	"github.com/vledicfranco/constellation-compiler/internal/typecheck"
)

// Compiler orchestrates the full parse -> type-check -> IR-build ->
// optimize -> DAG-build pipeline against one function registry, with an
// optional compilation cache (spec.md §4, §6).
type Compiler struct {
	functions *registry.Registry
	modules   map[string]dag.UninitializedModule
	optimize  optimizer.Config
	cache     *Cache // nil when caching is disabled
}

// Builder constructs a Compiler via a fluent chain, mirroring the
// teacher's functional-options style for assembling long-lived,
// reusable configuration objects.
type Builder struct {
	c Compiler
}

// NewBuilder starts a Builder with an empty registry, the default
// optimizer config, and no cache.
func NewBuilder() *Builder {
	return &Builder{c: Compiler{
		functions: registry.New(),
		modules:   map[string]dag.UninitializedModule{},
		optimize:  optimizer.Default,
	}}
}

// WithFunction registers a single callable signature, returning the
// Builder for chaining.
func (b *Builder) WithFunction(sig registry.Signature) *Builder {
	b.c.functions.Register(sig)
	return b
}

// WithFunctions registers many signatures at once.
func (b *Builder) WithFunctions(sigs []registry.Signature) *Builder {
	for _, s := range sigs {
		b.c.functions.Register(s)
	}
	return b
}

// WithModule registers the shape of a module the DAG builder may wire a
// ModuleCall against (spec.md §4.7's `modules` map).
func (b *Builder) WithModule(m dag.UninitializedModule) *Builder {
	b.c.modules[m.Name] = m
	return b
}

// WithOptimizer overrides the optimizer configuration; the zero Config
// disables optimization entirely.
func (b *Builder) WithOptimizer(cfg optimizer.Config) *Builder {
	b.c.optimize = cfg
	return b
}

// WithCaching enables a compilation cache with the given bounds. A nil
// cfg selects DefaultCacheConfig.
func (b *Builder) WithCaching(cfg *CacheConfig) *Builder {
	if cfg == nil {
		c := DefaultCacheConfig
		cfg = &c
	}
	b.c.cache = NewCache(*cfg)
	return b
}

// WithoutCaching disables the compilation cache.
func (b *Builder) WithoutCaching() *Builder {
	b.c.cache = nil
	return b
}

// Build finalizes the Compiler.
func (b *Builder) Build() *Compiler {
	c := b.c
	return &c
}

// FunctionRegistry returns the registry backing this compiler, so a
// caller can register additional modules after construction.
func (c *Compiler) FunctionRegistry() *registry.Registry { return c.functions }

// CompileError is any error a failed compile can surface: a wrapped
// syntax error from the parser, or a structured *cerrors.Report from a
// later phase. Every CompileError satisfies the error interface.
type CompileError interface {
	error
}

// wrappedParseError carries a *parser.ParseError as a CompileError; its
// Error() is the parse error's own message. It is not a cerrors.Report
// and carries no category or code.
type wrappedParseError struct {
	inner *parser.ParseError
}

func (w *wrappedParseError) Error() string { return w.inner.Error() }

func wrapParseErrors(errs []*parser.ParseError) []CompileError {
	out := make([]CompileError, len(errs))
	for i, e := range errs {
		out[i] = &wrappedParseError{inner: e}
	}
	return out
}

func reportsToErrors(reports []*cerrors.Report) []CompileError {
	out := make([]CompileError, len(reports))
	for i, r := range reports {
		out[i] = r
	}
	return out
}

// CompileToIR runs parse, type-check, and IR-build, stopping short of
// optimization and DAG-build. Used by callers that want the raw
// compiled graph — for instance an optimizer benchmark or a tool that
// inspects IR shape directly (spec.md §6).
func (c *Compiler) CompileToIR(source string) (*ir.Pipeline, []CompileError) {
	p := parser.NewFromSource(source)
	astPipeline, parseErrs := p.Parse()
	if len(parseErrs) > 0 {
		return nil, wrapParseErrors(parseErrs)
	}

	checker := typecheck.New(c.functions, source)
	typed := checker.Check(astPipeline)
	if errs := checker.Errors(); len(errs) > 0 {
		return nil, reportsToErrors(errs)
	}

	pipeline, err := ir.Build(typed)
	if err != nil {
		r := cerrors.New(cerrors.Runtime, cerrors.IR007InternalBuildFailure, "ir-build", err.Error(), nil, source)
		return nil, []CompileError{r}
	}
	return pipeline, nil
}

// Compile runs the full pipeline: parse, type-check, IR-build, optimize,
// DAG-build, consulting and populating the cache (if any) keyed by
// (dagName, source, registry contents) (spec.md §4.10).
func (c *Compiler) Compile(source, dagName string) (*CompilationOutput, []CompileError) {
	regHash := registryHash(c.functions)
	srcHash := sourceHash(source)

	if c.cache != nil {
		if hit, ok := c.cache.Get(dagName, srcHash, regHash); ok {
			return hit, nil
		}
	}

	p := parser.NewFromSource(source)
	astPipeline, parseErrs := p.Parse()
	if len(parseErrs) > 0 {
		return nil, wrapParseErrors(parseErrs)
	}

	checker := typecheck.New(c.functions, source)
	typed := checker.Check(astPipeline)
	if errs := checker.Errors(); len(errs) > 0 {
		return nil, reportsToErrors(errs)
	}

	pipeline, err := ir.Build(typed)
	if err != nil {
		r := cerrors.New(cerrors.Runtime, cerrors.IR007InternalBuildFailure, "ir-build", err.Error(), nil, source)
		return nil, []CompileError{r}
	}

	optimizer.Run(pipeline, c.optimize)

	result, err := dag.Build(pipeline, dagName, c.modules)
	if err != nil {
		r := cerrors.New(cerrors.Runtime, cerrors.DAG001BuildFailed, "dag-build", fmt.Sprintf("%v", err), nil, source)
		return nil, []CompileError{r}
	}

	image := PipelineImage{
		DagSpec:        result.Spec,
		ModuleOptions:  result.ModuleOptions,
		StructuralHash: structuralHash(result.Spec),
		SyntacticHash:  syntacticHash(source),
		SourceHash:     srcHash,
	}
	output := &CompilationOutput{
		Pipeline:         LoadedPipeline{Image: image},
		SyntheticModules: result.SyntheticModules,
		Warnings:         checker.Warnings(),
	}

	if c.cache != nil {
		c.cache.Put(dagName, srcHash, regHash, output)
	}

	return output, nil
}
