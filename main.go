package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"sync"
	"syscall"
	"time"

	"github.com/sh4emu/sh4-emulator/api"
	"github.com/sh4emu/sh4-emulator/config"
	"github.com/sh4emu/sh4-emulator/debugger"
	"github.com/sh4emu/sh4-emulator/loader"
	"github.com/sh4emu/sh4-emulator/parser"
	"github.com/sh4emu/sh4-emulator/vm"
)

// Version information - can be overridden at build time with:
// go build -ldflags "-X main.Version=v1.2.3"
var (
	Version = "dev"     // Version number (set by git tag at build time)
	Commit  = "unknown" // Git commit hash
	Date    = "unknown" // Build date
)

func main() {
	defaults := config.DefaultConfig()

	var (
		showVersion = flag.Bool("version", false, "Show version information")
		showHelp    = flag.Bool("help", false, "Show help information")
		debugMode   = flag.Bool("debug", false, "Start in debugger mode")
		tuiMode     = flag.Bool("tui", false, "Use TUI (Text User Interface) debugger")
		apiServer   = flag.Bool("api-server", false, "Start HTTP API server mode")
		apiPort     = flag.Int("port", 8080, "API server port (used with -api-server)")
		maxCycles   = flag.Uint64("max-cycles", defaults.Execution.MaxCycles, "Maximum Step calls before halt")
		stackSize   = flag.Uint("stack-size", defaults.Execution.StackSize, "Stack size in bytes")
		ramSize     = flag.Uint("ram-size", 16*1024*1024, "External RAM size in bytes")
		entryPoint  = flag.String("entry", defaults.Execution.DefaultEntry, "Entry point address (hex or decimal)")
		verboseMode = flag.Bool("verbose", false, "Verbose output")

		// Cache control register toggles (CCR bits): operand/instruction
		// cache enable, write-back vs write-through policy, and the
		// index-enable selectors.
		cacheOCE = flag.Bool("oce", defaults.Cache.OCE, "Enable the operand cache")
		cacheICE = flag.Bool("ice", defaults.Cache.ICE, "Enable the instruction cache")
		cacheCB  = flag.Bool("cb", defaults.Cache.CB, "P1 write-back (copy-back) area")
		cacheWT  = flag.Bool("wt", defaults.Cache.WT, "Write-through for P0/P3/U0 areas")
		cacheRAM = flag.Bool("cache-ram", defaults.Cache.ORA, "Use the operand cache as addressable RAM (ORA)")
		cacheOIX = flag.Bool("oix", defaults.Cache.OIX, "Operand cache index enable bit")
		cacheIIX = flag.Bool("iix", defaults.Cache.IIX, "Instruction cache index enable bit")

		enableFlagTrace = flag.Bool("flag-trace", false, "Enable SR flag change tracing")
		flagTraceFile   = flag.String("flag-trace-file", "", "Flag trace output file (default: flag_trace.txt or .json in the log directory)")
		flagTraceFormat = flag.String("flag-trace-format", "text", "Flag trace format (text, json)")

		dumpSymbols = flag.Bool("dump-symbols", false, "Dump symbol table and exit")
		symbolsFile = flag.String("symbols-file", "", "Symbol dump output file (default: stdout)")
	)

	flag.Parse()

	if *showVersion {
		fmt.Printf("sh4-emulator %s\n", Version)
		if Commit != "unknown" {
			fmt.Printf("Commit: %s\n", Commit)
		}
		if Date != "unknown" {
			fmt.Printf("Built: %s\n", Date)
		}
		os.Exit(0)
	}

	if *showHelp {
		printHelp()
		os.Exit(0)
	}

	if *apiServer {
		server := api.NewServerWithVersion(*apiPort, Version, Commit, Date)

		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

		var shutdownOnce sync.Once
		performShutdown := func() {
			shutdownOnce.Do(func() {
				fmt.Println("\nShutting down API server...")

				ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()

				if err := server.Shutdown(ctx); err != nil {
					fmt.Fprintf(os.Stderr, "Error during shutdown: %v\n", err)
					os.Exit(1)
				}

				fmt.Println("API server stopped")
				os.Exit(0)
			})
		}

		monitor := api.NewProcessMonitor(performShutdown)
		monitor.Start()

		go func() {
			if err := server.Start(); err != nil && err != http.ErrServerClosed {
				fmt.Fprintf(os.Stderr, "API server error: %v\n", err)
				os.Exit(1)
			}
		}()

		<-sigChan
		performShutdown()
		return
	}

	if flag.NArg() == 0 {
		printHelp()
		os.Exit(0)
	}

	asmFile := flag.Arg(0)
	if _, err := os.Stat(asmFile); os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "Error: File not found: %s\n", asmFile)
		os.Exit(1)
	}

	if *verboseMode {
		fmt.Printf("Loading and parsing assembly file: %s\n", asmFile)
	}

	program, _, err := parser.ParseFileSimple(asmFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Parse error:\n%v\n", err)
		os.Exit(1)
	}

	if *verboseMode {
		fmt.Printf("Parsed %d instructions, %d directives\n",
			len(program.Instructions), len(program.Directives))
	}

	machine := vm.NewVM(uint32(*ramSize)) // #nosec G115 -- ram-size is operator-supplied, not attacker input

	machine.Mem.CCR.SetUint32(ccrBits(*cacheOCE, *cacheICE, *cacheCB, *cacheWT, *cacheRAM, *cacheOIX, *cacheIIX))

	const maxStackSize = 0x10000000 // 256MB reasonable maximum
	if *stackSize > maxStackSize {
		fmt.Fprintf(os.Stderr, "Error: stack size %d exceeds maximum allowed %d\n", *stackSize, maxStackSize)
		os.Exit(1)
	}
	stackTop := vm.StackSegmentStart + uint32(*stackSize) // #nosec G115 -- validated against maxStackSize above
	if err := machine.CPU.SetSP(stackTop); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing stack: %v\n", err)
		os.Exit(1)
	}

	var entryAddr uint32
	if startSym, exists := program.SymbolTable.Lookup("_start"); exists && startSym.Defined {
		entryAddr = startSym.Value
		if *verboseMode {
			fmt.Printf("Using _start symbol address: 0x%08X\n", entryAddr)
		}
	} else if *entryPoint == defaults.Execution.DefaultEntry && program.OriginSet {
		entryAddr = program.Origin
		if *verboseMode {
			fmt.Printf("Using .org directive address: 0x%08X\n", entryAddr)
		}
	} else {
		if _, err := fmt.Sscanf(*entryPoint, "0x%x", &entryAddr); err != nil {
			if _, err := fmt.Sscanf(*entryPoint, "%d", &entryAddr); err != nil {
				fmt.Fprintf(os.Stderr, "Invalid entry point: %s\n", *entryPoint)
				os.Exit(1)
			}
		}
	}

	if *verboseMode {
		fmt.Println("Loading program into memory...")
	}

	if err := loader.LoadProgramIntoVM(machine, program, entryAddr); err != nil {
		fmt.Fprintf(os.Stderr, "Error loading program: %v\n", err)
		os.Exit(1)
	}

	symbols := make(map[string]uint32)
	sourceMap := make(map[uint32]string)

	for name, symbol := range program.SymbolTable.GetAllSymbols() {
		if symbol.Type == parser.SymbolLabel {
			symbols[name] = symbol.Value
		}
	}

	for _, inst := range program.Instructions {
		sourceMap[inst.Address] = inst.RawLine
	}
	for _, dir := range program.Directives {
		if dir.Name == ".word" || dir.Name == ".byte" || dir.Name == ".ascii" ||
			dir.Name == ".asciz" || dir.Name == ".space" {
			sourceMap[dir.Address] = "[DATA]" + dir.RawLine
		}
	}

	if *verboseMode {
		fmt.Printf("Entry point: 0x%08X\n", entryAddr)
		fmt.Printf("Stack: 0x%08X - 0x%08X (%d bytes)\n", vm.StackSegmentStart, stackTop, *stackSize)
		fmt.Printf("Symbols: %d labels defined\n", len(symbols))
	}

	if *dumpSymbols {
		if err := dumpSymbolTable(program.SymbolTable, *symbolsFile); err != nil {
			fmt.Fprintf(os.Stderr, "Error dumping symbols: %v\n", err)
			os.Exit(1)
		}
		os.Exit(0)
	}

	if *enableFlagTrace {
		ftPath := *flagTraceFile
		if ftPath == "" {
			ext := "txt"
			if *flagTraceFormat == "json" {
				ext = "json"
			}
			ftPath = filepath.Join(config.GetLogPath(), "flag_trace."+ext)
		}

		ftWriter, err := os.Create(ftPath) // #nosec G304 -- user-specified flag trace output path
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating flag trace file: %v\n", err)
			os.Exit(1)
		}
		defer func() {
			if err := ftWriter.Close(); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: failed to close flag trace file: %v\n", err)
			}
		}()

		machine.FlagTrace = vm.NewFlagTrace(ftWriter)
		machine.FlagTrace.LoadSymbols(symbols)
		machine.FlagTrace.Start(machine.CPU.SR)

		if *verboseMode {
			fmt.Printf("Flag trace enabled: %s\n", ftPath)
		}
	}

	if *debugMode || *tuiMode {
		dbg := debugger.NewDebugger(machine)
		dbg.LoadSymbols(symbols)
		dbg.LoadSourceMap(sourceMap)

		if *tuiMode {
			if err := debugger.RunTUI(dbg); err != nil {
				fmt.Fprintf(os.Stderr, "TUI error: %v\n", err)
				os.Exit(1)
			}
		} else {
			fmt.Println("SH-4 Debugger - Type 'help' for commands")
			fmt.Printf("Program loaded: %s\n", asmFile)
			fmt.Println()

			if err := debugger.RunCLI(dbg); err != nil {
				fmt.Fprintf(os.Stderr, "Debugger error: %v\n", err)
				os.Exit(1)
			}
		}
		return
	}

	if *verboseMode {
		fmt.Println("\nStarting execution...")
		fmt.Println("----------------------------------------")
	}

	machine.State = vm.StateRunning
	for i := uint64(0); i < *maxCycles; i++ {
		if machine.CPU.Halted {
			break
		}
		if err := machine.Step(); err != nil {
			fmt.Fprintf(os.Stderr, "\nRuntime error at PC=0x%08X: %v\n", machine.CPU.PC, err)
			os.Exit(1)
		}
	}
	machine.State = vm.StateHalted

	if *verboseMode {
		fmt.Println("\n----------------------------------------")
		fmt.Println("Execution complete")
		fmt.Printf("Steps executed: %d\n", machine.StepCount)
	}

	if machine.FlagTrace != nil {
		var flushErr error
		if *flagTraceFormat == "json" {
			flushErr = machine.FlagTrace.ExportJSON(machine.FlagTrace.Writer)
		} else {
			flushErr = machine.FlagTrace.Flush()
		}
		if flushErr != nil {
			fmt.Fprintf(os.Stderr, "Error flushing flag trace: %v\n", flushErr)
		}
		if *verboseMode {
			fmt.Printf("Flag trace written (%d entries)\n", len(machine.FlagTrace.GetEntries()))
		}
	}
}

// ccrBits assembles a CCR value from individually-named toggles, matching
// the bit layout DecodeAddress/Memory consult (vm/constants.go CCRBit*).
func ccrBits(oce, ice, cb, wt, ora, oix, iix bool) uint32 {
	var v uint32
	set := func(cond bool, bit uint) {
		if cond {
			v |= 1 << bit
		}
	}
	set(oce, vm.CCRBitOCE)
	set(ice, vm.CCRBitICE)
	set(cb, vm.CCRBitCB)
	set(wt, vm.CCRBitWT)
	set(ora, vm.CCRBitORA)
	set(oix, vm.CCRBitOIX)
	set(iix, vm.CCRBitIIX)
	return v
}

func printHelp() {
	fmt.Printf(`sh4-emulator %s

Usage: sh4-emulator [options] <assembly-file>
       sh4-emulator -api-server [-port N]

Options:
  -help              Show this help message
  -version           Show version information
  -api-server        Start HTTP API server mode (no assembly file required)
  -port N            API server port (default: 8080, used with -api-server)
  -debug             Start in debugger mode (CLI)
  -tui               Start in TUI debugger mode
  -max-cycles N      Set maximum Step calls before halt (default: 1000000)
  -stack-size N      Set stack size in bytes (default: %d)
  -ram-size N        Set external RAM size in bytes (default: 16MB)
  -entry ADDR        Set entry point address (default: %s)
  -verbose           Enable verbose output

Cache Options (CCR):
  -oce               Enable the operand cache (default: true)
  -ice               Enable the instruction cache (default: true)
  -cb                P1 write-back area (default: true)
  -wt                Write-through for P0/P3/U0 areas (default: false)
  -cache-ram         Use the operand cache as addressable RAM / ORA (default: false)
  -oix               Operand cache index enable bit (default: false)
  -iix               Instruction cache index enable bit (default: false)

Symbol Options:
  -dump-symbols      Dump symbol table and exit
  -symbols-file FILE Symbol dump output file (default: stdout)

Tracing:
  -flag-trace        Enable SR flag (T/S/Q/M) change tracing
  -flag-trace-file   Flag trace file (default: flag_trace.txt or .json in the log directory)
  -flag-trace-format Flag trace format: text, json (default: text)

Examples:
  # Start API server for frontends
  sh4-emulator -api-server
  sh4-emulator -api-server -port 3000

  # Run a program directly
  sh4-emulator examples/hello.s

  # Run with debugger
  sh4-emulator -debug examples/fibonacci.s

  # Run with TUI debugger
  sh4-emulator -tui examples/bubble_sort.s

  # Run with the operand cache disabled
  sh4-emulator -oce=false program.s

  # Run with flag trace to debug conditional logic
  sh4-emulator -flag-trace program.s

  # Dump symbol table
  sh4-emulator -dump-symbols program.s
  sh4-emulator -dump-symbols -symbols-file symbols.txt program.s

Debugger Commands (when in -debug mode):
  run, r             Start/restart program execution
  continue, c        Continue execution
  step, s            Execute single instruction
  next, n            Step over function calls
  break ADDR         Set breakpoint at address/label
  info registers     Show all registers
  print EXPR         Evaluate and print expression
  help               Show debugger help

For more information, see DESIGN.md.
`, Version, defaults.Execution.StackSize, defaults.Execution.DefaultEntry)
}

// dumpSymbolTable outputs the symbol table in a readable format
func dumpSymbolTable(st *parser.SymbolTable, filename string) error {
	var writer *os.File
	var err error

	if filename == "" {
		writer = os.Stdout
	} else {
		writer, err = os.Create(filename) // #nosec G304 -- user-specified symbol output path
		if err != nil {
			return fmt.Errorf("failed to create symbol file: %w", err)
		}
		defer func() {
			if cerr := writer.Close(); cerr != nil {
				fmt.Fprintf(os.Stderr, "Warning: failed to close symbol file: %v\n", cerr)
			}
		}()
	}

	allSymbols := st.GetAllSymbols()
	if len(allSymbols) == 0 {
		_, _ = fmt.Fprintln(writer, "No symbols defined")
		return nil
	}

	_, _ = fmt.Fprintln(writer, "Symbol Table")
	_, _ = fmt.Fprintln(writer, "============")
	_, _ = fmt.Fprintln(writer)
	_, _ = fmt.Fprintf(writer, "%-30s %-12s %-10s %s\n", "Name", "Type", "Address", "Status")
	_, _ = fmt.Fprintln(writer, "--------------------------------------------------------------------------------")

	type symbolEntry struct {
		name   string
		symbol *parser.Symbol
	}
	entries := make([]symbolEntry, 0, len(allSymbols))
	for name, sym := range allSymbols {
		entries = append(entries, symbolEntry{name, sym})
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].symbol.Value < entries[j].symbol.Value
	})

	for _, entry := range entries {
		name := entry.name
		sym := entry.symbol

		var symType string
		switch sym.Type {
		case parser.SymbolLabel:
			symType = "Label"
		case parser.SymbolConstant:
			symType = "Constant"
		case parser.SymbolVariable:
			symType = "Variable"
		default:
			symType = "Unknown"
		}

		status := "Defined"
		if !sym.Defined {
			status = "Undefined"
		}

		_, _ = fmt.Fprintf(writer, "%-30s %-12s 0x%08X %s\n", name, symType, sym.Value, status)
	}

	_, _ = fmt.Fprintln(writer)
	_, _ = fmt.Fprintf(writer, "Total symbols: %d\n", len(allSymbols))

	return nil
}
