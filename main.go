package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/c8tools/c8asm/assembler"
	"github.com/c8tools/c8asm/config"
	"github.com/c8tools/c8asm/loader"
	"github.com/c8tools/c8asm/tools"
)

// Version information - can be overridden at build time with:
// go build -ldflags "-X main.Version=v1.2.3"
var (
	Version = "dev"     // Version number (set by git tag at build time)
	Commit  = "unknown" // Git commit hash
	Date    = "unknown" // Build date
)

func main() {
	os.Exit(run())
}

func run() int {
	var (
		showVersion = flag.Bool("version", false, "Show version information")
		showHelp    = flag.Bool("help", false, "Show help information")
		outputFile  = flag.String("output", "", "Output file name")
		strictMode  = flag.Bool("strict", false, "Reject db values that do not fit in a byte")
		verboseMode = flag.Bool("verbose", false, "Verbose output")
		listingFile = flag.String("listing", "", "Write an assembly listing to this file")
		xrefFile    = flag.String("xref", "", "Write a label cross-reference to this file")
		dumpSymbols = flag.Bool("dump-symbols", false, "Dump the symbol table to stdout")
	)
	flag.StringVar(outputFile, "o", "", "Output file name (shorthand)")
	flag.Parse()

	if *showVersion {
		fmt.Printf("c8asm %s\n", Version)
		if Commit != "unknown" {
			fmt.Printf("Commit: %s\n", Commit)
		}
		if Date != "unknown" {
			fmt.Printf("Built: %s\n", Date)
		}
		return 0
	}

	if *showHelp {
		printHelp()
		return 0
	}

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: c8asm [options] <input file>")
		fmt.Fprintln(os.Stderr, "run 'c8asm -help' for details")
		return 1
	}
	inputPath := flag.Arg(0)

	cfg, err := config.LoadDefault()
	if err != nil {
		fmt.Fprintf(os.Stderr, "c8asm: %v\n", err)
		return 1
	}

	// Flags override config
	strict := cfg.Assembler.StrictByteRange || *strictMode
	verbose := cfg.Assembler.Verbose || *verboseMode
	output := *outputFile
	if output == "" {
		output = cfg.Output.DefaultName
	}
	if output == "" {
		output = loader.DefaultOutputName
	}

	src, err := loader.ReadSource(inputPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "c8asm: %v\n", err)
		return 1
	}

	if verbose {
		fmt.Printf("assembling %s (%d bytes)\n", inputPath, len(src))
	}

	result, err := assembler.Assemble(src, assembler.Options{
		Filename:        inputPath,
		StrictByteRange: strict,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return 1
	}

	for _, warn := range result.Warnings {
		fmt.Fprintln(os.Stderr, warn)
	}

	if err := loader.WriteImage(output, result.Image); err != nil {
		fmt.Fprintf(os.Stderr, "c8asm: %v\n", err)
		return 1
	}

	if verbose {
		fmt.Printf("wrote %s (%d bytes, %d symbols)\n",
			output, len(result.Image), result.Symbols.Len())
	}

	if *dumpSymbols {
		fmt.Print(tools.FormatSymbols(result.Symbols))
	}

	if *listingFile != "" {
		opts := &tools.ListingOptions{
			AddressWidth: cfg.Listing.AddressWidth,
			BytesColumn:  cfg.Listing.BytesColumn,
			SourceColumn: cfg.Listing.SourceColumn,
		}
		listing := tools.GenerateListing(result.SourceMap, opts)
		if err := os.WriteFile(*listingFile, []byte(listing), 0o644); err != nil {
			fmt.Fprintf(os.Stderr, "c8asm: writing listing: %v\n", err)
			return 1
		}
	}

	if *xrefFile != "" {
		xref := tools.FormatXref(tools.BuildXref(result.Expressions, result.Symbols))
		if err := os.WriteFile(*xrefFile, []byte(xref), 0o644); err != nil {
			fmt.Fprintf(os.Stderr, "c8asm: writing cross-reference: %v\n", err)
			return 1
		}
	}

	return 0
}

func printHelp() {
	fmt.Println("c8asm - CHIP-8 assembler")
	fmt.Println()
	fmt.Println("Usage: c8asm [options] <input file>")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  -o, -output <file>   Output file name (default: output.c8)")
	fmt.Println("  -strict              Reject db values that do not fit in a byte")
	fmt.Println("  -listing <file>      Write an assembly listing")
	fmt.Println("  -xref <file>         Write a label cross-reference")
	fmt.Println("  -dump-symbols        Dump the symbol table to stdout")
	fmt.Println("  -verbose             Verbose output")
	fmt.Println("  -version             Show version information")
	fmt.Println("  -help                Show this help")
	fmt.Println()
	fmt.Println("Configuration is read from " + config.GetConfigPath())
}
