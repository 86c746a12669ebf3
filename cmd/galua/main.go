package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/zboralski/galua/internal/builtin"
	_ "github.com/zboralski/galua/internal/builtin/base"
	"github.com/zboralski/galua/internal/chunk"
	"github.com/zboralski/galua/internal/dump"
	glog "github.com/zboralski/galua/internal/log"
	"github.com/zboralski/galua/internal/trace"
	"github.com/zboralski/galua/internal/ui/colorize"
	"github.com/zboralski/galua/internal/vm"
)

var (
	dumpMode  bool
	execMode  bool
	debugMode bool
	verbose   bool
)

// config is the optional YAML configuration loaded from galua.yaml in the
// working directory or ~/.galua.yaml. A key set to true turns its mode on
// alongside the flags.
type config struct {
	Debug   bool `yaml:"debug"`
	NoColor bool `yaml:"no_color"`
	Verbose bool `yaml:"verbose"`
}

func loadConfig() config {
	var cfg config
	candidates := []string{"galua.yaml"}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, ".galua.yaml"))
	}
	for _, path := range candidates {
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		if err := yaml.Unmarshal(data, &cfg); err == nil {
			return cfg
		}
	}
	return cfg
}

func main() {
	rootCmd := &cobra.Command{
		Use:   "galua [chunk.luac...]",
		Short: "Run precompiled Lua 5.3 chunks",
		Long: `Galua loads precompiled Lua 5.3 binary chunks and executes them on a
register VM. Only the 64-bit little-endian chunk format is accepted.

Examples:
  galua script.luac            # Execute a chunk
  galua --dump script.luac     # Disassemble without executing
  galua --debug script.luac    # Print each opcode as it executes`,
		Args:                  cobra.ArbitraryArgs,
		DisableFlagsInUseLine: true,
		RunE:                  run,
	}

	rootCmd.Flags().BoolVar(&dumpMode, "dump", false, "disassemble chunks instead of executing")
	rootCmd.Flags().BoolVar(&execMode, "exec", false, "execute chunks (the default)")
	rootCmd.Flags().BoolVar(&debugMode, "debug", false, "print each opcode as it executes, indented by call depth")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "verbose debug output")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return cmd.Help()
	}

	cfg := loadConfig()
	if cfg.NoColor {
		os.Setenv("GALUA_NO_COLOR", "1")
	}
	if cfg.Debug {
		debugMode = true
	}
	if verbose || cfg.Verbose {
		glog.Init(true)
		builtin.Debug = true
	} else {
		glog.Init(false)
	}

	for _, path := range args {
		fmt.Println(colorize.FuncName(path))
		if dumpMode && !execMode {
			if err := dumpFile(path); err != nil {
				return err
			}
			continue
		}
		if err := execFile(path); err != nil {
			return err
		}
	}
	return nil
}

func dumpFile(path string) error {
	ch, err := chunk.FromFile(path)
	if err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	dump.Chunk(os.Stdout, ch)
	return nil
}

func execFile(path string) error {
	ch, err := chunk.FromFile(path)
	if err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}

	st := vm.New().WithOptions(vm.Options{ShowIns: debugMode})
	installed := builtin.Install(st)

	var events []*trace.Event
	insnCount := 0
	st.OnInstruction = func(depth, pc int, op string) {
		insnCount++
	}
	builtin.DefaultRegistry.OnCall = func(category, name, detail string) {
		e := trace.NewEvent(st.PC(), st.Depth(), category, name, detail)
		trace.DefaultEnricher(e)
		events = append(events, e)
	}

	st.LoadChunk(ch)
	callErr := st.Call(0, 0)

	if debugMode {
		printStats(insnCount, installed, events, callErr)
	}
	if callErr != nil {
		return fmt.Errorf("run %s: %w", path, callErr)
	}
	return nil
}

func printStats(insnCount, installed int, events []*trace.Event, err error) {
	fmt.Println()
	fmt.Print(colorize.Border("───────────────────────────────────────── "))
	fmt.Printf("%s insn  %s builtins  %s calls",
		colorize.FuncName(fmt.Sprintf("%d", insnCount)),
		colorize.FuncName(fmt.Sprintf("%d", installed)),
		colorize.FuncName(fmt.Sprintf("%d", len(events))))
	ioCalls := 0
	for _, e := range events {
		if e.Tags.Has(trace.IO) {
			ioCalls++
		}
	}
	if ioCalls > 0 {
		fmt.Printf("  %d %s", ioCalls, colorize.Tag("#io"))
	}
	if err != nil {
		fmt.Printf("  %s", colorize.Error(err.Error()))
	}
	fmt.Println()
}
