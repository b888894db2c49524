package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"github.com/rv32i-emu/rv32i-emu/asm"
	"github.com/rv32i-emu/rv32i-emu/config"
	"github.com/rv32i-emu/rv32i-emu/debugger"
	"github.com/rv32i-emu/rv32i-emu/loader"
	"github.com/rv32i-emu/rv32i-emu/telemetry"
	"github.com/rv32i-emu/rv32i-emu/vm"
)

// Version information, overridable at build time with:
// go build -ldflags "-X main.Version=v1.2.3"
var (
	Version = "dev"
	Commit  = "unknown"
)

var (
	flagMem       uint32
	flagLogLevel  string
	flagLogFormat string
	flagConfig    string
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:     "rv32i",
		Short:   "RV32I emulator, assembler, and debugger",
		Version: fmt.Sprintf("%s (%s)", Version, Commit),
	}

	root.PersistentFlags().Uint32Var(&flagMem, "mem", 0, "machine memory size in bytes (default from config)")
	root.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "log level: trace, debug, info, warn, error (default from config)")
	root.PersistentFlags().StringVar(&flagLogFormat, "log-format", "", "log format: text, json (default from config)")
	root.PersistentFlags().StringVar(&flagConfig, "config", "", "path to a TOML config file (default: "+config.GetConfigPath()+")")

	root.AddCommand(newRunCmd())
	root.AddCommand(newTestCmd())
	root.AddCommand(newDebugCmd())
	root.AddCommand(newAsmCmd())

	return root
}

// resolveConfig loads the base config, then overlays whichever global
// flags the user actually set.
func resolveConfig() (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if flagConfig != "" {
		cfg, err = config.LoadFrom(flagConfig)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}

	if flagMem != 0 {
		cfg.Execution.MemSize = flagMem
	}
	if flagLogLevel != "" {
		cfg.Logging.Level = flagLogLevel
	}
	if flagLogFormat != "" {
		cfg.Logging.Format = flagLogFormat
	}
	return cfg, nil
}

func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run <image>",
		Short: "Load a raw RV32I image at address 0 and run it to termination",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig()
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			log, err := telemetry.New(cfg)
			if err != nil {
				return fmt.Errorf("configuring logger: %w", err)
			}

			machine, err := loader.LoadFile(args[0], cfg.Execution.MemSize)
			if err != nil {
				return fmt.Errorf("loading image: %w", err)
			}
			machine.Log = log

			runErr := machine.Run()
			regs, pc := dumpRegisters(machine)
			printRegisters(cmd, regs, pc)

			if runErr == vm.ErrSuspend {
				gp, _ := machine.CPU.GetRegister(3)
				a0, _ := machine.CPU.GetRegister(10)
				a7, _ := machine.CPU.GetRegister(17)
				if gp != 1 || a0 != 0 || a7 != 93 {
					return fmt.Errorf("program exited with gp=%d a0=%d a7=%d", gp, a0, a7)
				}
				return nil
			}
			return fmt.Errorf("run halted abnormally: %w", runErr)
		},
	}
}

func newTestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "test <dir>",
		Short: "Run the rv32ui-p-* compliance suite in a directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig()
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			results, err := loader.RunCompliance(args[0], cfg.Execution.MemSize)
			if err != nil {
				return fmt.Errorf("running compliance suite: %w", err)
			}

			sort.Slice(results, func(i, j int) bool { return results[i].Name < results[j].Name })

			failed := 0
			for _, r := range results {
				status := "PASS"
				if !r.Passed {
					status = "FAIL"
					failed++
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%-4s %s (gp=%d a0=%d a7=%d)\n", status, r.Name, r.GP, r.A0, r.A7)
				if r.Err != nil {
					fmt.Fprintf(cmd.OutOrStdout(), "     error: %v\n", r.Err)
				}
			}

			fmt.Fprintf(cmd.OutOrStdout(), "\n%d/%d passed\n", len(results)-failed, len(results))
			if failed > 0 {
				return fmt.Errorf("%d test(s) failed", failed)
			}
			return nil
		},
	}
}

func newDebugCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "debug <image>",
		Short: "Launch the interactive TUI debugger on an image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig()
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			machine, err := loader.LoadFile(args[0], cfg.Execution.MemSize)
			if err != nil {
				return fmt.Errorf("loading image: %w", err)
			}

			dbg := debugger.New(machine, cfg)
			tui := debugger.NewTUI(dbg)
			return tui.Run()
		},
	}
}

func newAsmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "asm <in.s> <out.bin>",
		Short: "Assemble RV32I text to a raw binary image",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			source, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("reading source: %w", err)
			}

			image, err := asm.Assemble(string(source), filepath.Base(args[0]))
			if err != nil {
				return fmt.Errorf("assembling: %w", err)
			}

			if err := os.WriteFile(args[1], image, 0644); err != nil {
				return fmt.Errorf("writing image: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d bytes to %s\n", len(image), args[1])
			return nil
		},
	}
}

func dumpRegisters(machine *vm.Machine) ([32]uint32, uint32) {
	var regs [32]uint32
	for i := uint8(0); i < 32; i++ {
		regs[i], _ = machine.CPU.GetRegister(i)
	}
	return regs, machine.CPU.PC()
}

func printRegisters(cmd *cobra.Command, regs [32]uint32, pc uint32) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "pc  = %#08x\n", pc)
	for i, v := range regs {
		fmt.Fprintf(out, "x%-2d = %#08x", i, v)
		if i%4 == 3 {
			fmt.Fprintln(out)
		} else {
			fmt.Fprint(out, "  ")
		}
	}
}
