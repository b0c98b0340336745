// Command picosim assembles and runs PicoBlaze assembly, the way the
// teacher's arm-emulator command assembles and runs ARM assembly: a plain
// run mode, a CLI debugger mode, and an HTTP API server mode, all behind
// the standard library's flag package.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/lookbusy1344/picosim/api"
	"github.com/lookbusy1344/picosim/assemble"
	"github.com/lookbusy1344/picosim/config"
	"github.com/lookbusy1344/picosim/debugger"
	"github.com/lookbusy1344/picosim/loader"
	"github.com/lookbusy1344/picosim/machine"
	"github.com/lookbusy1344/picosim/tools"
)

// Version information, overridable at build time with:
// go build -ldflags "-X main.Version=v1.2.3"
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

func main() {
	var (
		showVersion = flag.Bool("version", false, "Show version information")
		showHelp    = flag.Bool("help", false, "Show help information")
		debugMode   = flag.Bool("debug", false, "Start in CLI debugger mode")
		dumpSymbols = flag.Bool("dump-symbols", false, "Print the label/constant table and a disassembly listing, then exit")
		apiServer   = flag.Bool("api-server", false, "Start HTTP API server mode")
		apiPort     = flag.Int("port", 8080, "API server port (used with -api-server)")
		buildSig    = flag.Int("build-sig", 0, "Value HWBUILD reads back (0-255)")
		configFile  = flag.String("config", "", "Load settings from this TOML file instead of the default path")
		verboseMode = flag.Bool("verbose", false, "Verbose output")
	)

	flag.Parse()

	if *showVersion {
		fmt.Printf("picosim %s\n", Version)
		if Commit != "unknown" {
			fmt.Printf("commit: %s\n", Commit)
		}
		if Date != "unknown" {
			fmt.Printf("built: %s\n", Date)
		}
		os.Exit(0)
	}

	if *showHelp {
		printHelp()
		os.Exit(0)
	}

	cfg, err := loadConfig(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error loading config: %v\n", err)
		os.Exit(1)
	}

	if *apiServer {
		runAPIServer(*apiPort)
		return
	}

	if flag.NArg() == 0 {
		printHelp()
		os.Exit(0)
	}

	asmFile := flag.Arg(0)
	source, err := os.ReadFile(asmFile) // #nosec G304 -- user-specified assembly file
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: cannot read %s: %v\n", asmFile, err)
		os.Exit(1)
	}

	if *verboseMode {
		fmt.Printf("assembling %s\n", asmFile)
	}

	sig := byte(*buildSig)
	if cfg.Execution.BuildSig != 0 && *buildSig == 0 {
		sig = byte(cfg.Execution.BuildSig)
	}

	prog, errs := assemble.Assemble(string(source))
	if errs.HasErrors() {
		fmt.Fprintf(os.Stderr, "assembly failed:\n%v", errs)
		os.Exit(1)
	}

	if *dumpSymbols {
		fmt.Print(tools.FormatSymbolTable(prog))
		fmt.Println()
		fmt.Print(tools.FormatListing(prog, nil))
		os.Exit(0)
	}

	m := loader.Load(prog, sig, nil)

	if *debugMode {
		runDebugger(m, prog, cfg)
		return
	}

	runToHalt(m, cfg.Execution.MaxSteps, *verboseMode)
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFrom(path)
	}
	return config.Load()
}

// runToHalt steps m until it halts, faults, or maxSteps is exhausted.
func runToHalt(m *machine.MachineState, maxSteps uint64, verbose bool) {
	var executed uint64
	for maxSteps == 0 || executed < maxSteps {
		halted, fault := m.Step()
		executed++
		if fault != nil {
			fmt.Fprintf(os.Stderr, "%v\n", fault)
			os.Exit(1)
		}
		if halted {
			if verbose {
				fmt.Printf("halted after %d instructions at PC=0x%03X\n", executed, m.PC)
			}
			return
		}
	}
	fmt.Fprintf(os.Stderr, "step limit (%d) exceeded without halting\n", maxSteps)
	os.Exit(1)
}

func runDebugger(m *machine.MachineState, prog *assemble.Program, cfg *config.Config) {
	dbg := debugger.NewDebugger(m)
	dbg.LoadSymbols(prog.Labels())
	dbg.History = debugger.NewCommandHistoryWithSize(cfg.Debugger.HistorySize)
	if err := debugger.RunCLI(dbg); err != nil {
		fmt.Fprintf(os.Stderr, "debugger error: %v\n", err)
		os.Exit(1)
	}
}

func runAPIServer(port int) {
	server := api.NewServer(port)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	var shutdownOnce sync.Once
	performShutdown := func() {
		shutdownOnce.Do(func() {
			fmt.Println("\nshutting down API server...")
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := server.Shutdown(ctx); err != nil {
				fmt.Fprintf(os.Stderr, "error during shutdown: %v\n", err)
				os.Exit(1)
			}
			fmt.Println("API server stopped")
			os.Exit(0)
		})
	}

	monitor := api.NewProcessMonitor(performShutdown)
	monitor.Start()

	go func() {
		if err := server.Start(); err != nil {
			fmt.Fprintf(os.Stderr, "API server error: %v\n", err)
			os.Exit(1)
		}
	}()

	<-sigChan
	performShutdown()
}

func printHelp() {
	fmt.Printf(`picosim %s

Usage: picosim [options] <assembly-file>
       picosim -api-server [-port N]

Options:
  -help              Show this help message
  -version           Show version information
  -api-server        Start HTTP API server mode (no assembly file required)
  -port N            API server port (default: 8080, used with -api-server)
  -debug             Start in CLI debugger mode
  -dump-symbols      Print labels, constants, and a disassembly listing, then exit
  -build-sig N       Value HWBUILD reads back (default: 0)
  -config FILE       Load settings from FILE instead of the default path
  -verbose           Enable verbose output
`, Version)
}
