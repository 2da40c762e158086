package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/fatih/color"

	"github.com/vledicfranco/constellation-compiler/internal/compiler"
)

var (
	// Version info - set by ldflags during build
	Version = "dev"
	Commit  = "unknown"

	green  = color.New(color.FgGreen).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	cyan   = color.New(color.FgCyan).SprintFunc()
	bold   = color.New(color.Bold).SprintFunc()
)

func main() {
	var (
		versionFlag = flag.Bool("version", false, "Print version information")
		helpFlag    = flag.Bool("help", false, "Show help")
		dagName     = flag.String("dag", "main", "Name to compile the pipeline under")
		cacheFlag   = flag.Bool("cache", false, "Enable the compilation cache")
	)

	flag.Parse()

	if *versionFlag {
		printVersion()
		return
	}

	if *helpFlag || flag.NArg() == 0 {
		printHelp()
		return
	}

	command := flag.Arg(0)

	switch command {
	case "compile":
		if flag.NArg() < 2 {
			fmt.Fprintf(os.Stderr, "%s: missing file argument\n", red("Error"))
			fmt.Println("Usage: plc compile <file.plc>")
			os.Exit(1)
		}
		compileFile(flag.Arg(1), *dagName, *cacheFlag)

	case "check":
		if flag.NArg() < 2 {
			fmt.Fprintf(os.Stderr, "%s: missing file argument\n", red("Error"))
			fmt.Println("Usage: plc check <file.plc>")
			os.Exit(1)
		}
		checkFile(flag.Arg(1), *dagName)

	case "cache-stats":
		cacheStats(*dagName)

	default:
		fmt.Fprintf(os.Stderr, "%s: unknown command '%s'\n", red("Error"), command)
		printHelp()
		os.Exit(1)
	}
}

func printVersion() {
	fmt.Printf("plc %s\n", bold(Version))
	if Commit != "unknown" {
		fmt.Printf("Commit: %s\n", Commit)
	}
	fmt.Println("\nThe declarative pipeline compiler")
}

func printHelp() {
	fmt.Println(bold("plc - declarative pipeline compiler"))
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  plc <command> [arguments]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  compile <file>   Compile a pipeline source file to a DAG")
	fmt.Println("  check <file>     Parse and type-check without building a DAG")
	fmt.Println("  cache-stats      Print compilation cache statistics for this run")
	fmt.Println()
	fmt.Println("Flags:")
	flag.PrintDefaults()
}

// buildCompiler assembles a bare Compiler: no registered functions, so
// every function call fails type checking with an "undefined function"
// error until a caller wires real signatures via WithFunction/WithModule. This
// mirrors the teacher's own CLI, whose check/run paths work against
// whatever the source declares without a pre-seeded environment.
func buildCompiler(cacheEnabled bool) *compiler.Compiler {
	b := compiler.NewBuilder()
	if cacheEnabled {
		b = b.WithCaching(nil)
	}
	return b.Build()
}

func readSource(filename string) string {
	content, err := os.ReadFile(filename)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: cannot read file '%s': %v\n", red("Error"), filename, err)
		os.Exit(1)
	}
	return string(content)
}

func compileFile(filename, dagName string, cacheEnabled bool) {
	src := readSource(filename)
	c := buildCompiler(cacheEnabled)

	fmt.Printf("%s Compiling %s\n", cyan("→"), filename)
	out, errs := c.Compile(src, dagName)
	if len(errs) > 0 {
		printCompileErrors(errs)
		os.Exit(1)
	}

	spec := out.Pipeline.Image.DagSpec
	fmt.Printf("%s Compiled %s\n", green("✓"), filename)
	fmt.Printf("  %d data nodes, %d module nodes\n", len(spec.DataNodes), len(spec.ModuleNodes))
	fmt.Printf("  structural hash: %s\n", out.Pipeline.Image.StructuralHash[:12])
	fmt.Printf("  source hash:     %s\n", out.Pipeline.Image.SourceHash[:12])
	for _, w := range out.Warnings {
		fmt.Printf("  %s %s\n", yellow("Warning"), w.String())
	}
}

func checkFile(filename, dagName string) {
	src := readSource(filename)
	c := buildCompiler(false)

	fmt.Printf("%s Type checking %s...\n", cyan("→"), filename)
	_, errs := c.CompileToIR(src)
	if len(errs) > 0 {
		printCompileErrors(errs)
		os.Exit(1)
	}

	fmt.Printf("\n%s No errors found!\n", green("✓"))
}

func cacheStats(dagName string) {
	fmt.Printf("%s No persistent cache is configured for this invocation.\n", yellow("Warning"))
	fmt.Println("Run with -cache and compile the same file twice in one process to observe hits.")
}

func printCompileErrors(errs []compiler.CompileError) {
	fmt.Fprintf(os.Stderr, "%s Compile errors:\n", red("Error"))
	for _, err := range errs {
		fmt.Fprintf(os.Stderr, "  %s %v\n", red("•"), err)
	}
}
