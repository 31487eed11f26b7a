// Package cmd implements the gohex CLI command tree.
package cmd

import (
	"fmt"

	"github.com/mbrukner/gohex/pkg/config"
	"github.com/mbrukner/gohex/pkg/ihex"
	"github.com/mbrukner/gohex/pkg/ihexfile"
	"github.com/spf13/cobra"
)

var (
	// cfg holds the loaded gohex.ini defaults, merged with CLI flags.
	cfg *config.Config

	// Global flags
	fileFlag   string
	targetFlag string
	quietFlag  bool
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "gohex",
	Short: "gohex - read, write, and transfer Intel HEX files",
	Long: `gohex is a command-line tool for inspecting and editing Intel HEX
files (I8HEX, I16HEX, I32HEX) and for pushing a loaded image at a device
over a serial or TCP debug-port connection.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}

		if targetFlag != "" {
			cfg.Port = targetFlag
		}

		return nil
	},
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main(). It only needs to happen
// once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&fileFlag, "file", "", "path to the hex image (required by most commands)")
	rootCmd.PersistentFlags().StringVar(&targetFlag, "target", "", "serial port or TCP address to upload to (e.g., /dev/ttyUSB0, 192.168.1.114:2560)")
	rootCmd.PersistentFlags().BoolVar(&quietFlag, "quiet", false, "suppress informational output")

	rootCmd.CompletionOptions.DisableDefaultCmd = true
}

// requireFile validates that --file was given, since every command but
// list-ports needs a hex image to operate on.
func requireFile() error {
	if fileFlag == "" {
		return fmt.Errorf("no hex file specified (use --file)")
	}
	return nil
}

// requireTarget validates that a transfer target is configured, either via
// --target or gohex.ini's port setting.
func requireTarget() error {
	if cfg.Port == "" {
		return fmt.Errorf("no target specified (use --target or set port in gohex.ini)")
	}
	return nil
}

// loadOptions builds the ihexfile.Options a load should use for this
// invocation, from the resolved gohex.ini / default tolerance settings.
func loadOptions() ihexfile.Options {
	return ihexfile.Options{
		ThrowOnInvalidRecord:    cfg.ThrowOnInvalidRecord,
		ThrowOnChecksumMismatch: cfg.ThrowOnChecksumMismatch,
	}
}

// loadGroup loads path with the resolved tolerance options and applies the
// configured unused-fill byte to the resulting group.
func loadGroup(path string) (*ihex.Group, bool, error) {
	group, clean, err := ihexfile.LoadFile(path, loadOptions())
	if err != nil {
		return nil, false, err
	}
	group.SetUnusedFillValue(cfg.FillByte)
	return group, clean, nil
}

// printInfo prints to stdout unless --quiet was given.
func printInfo(format string, args ...interface{}) {
	if !quietFlag {
		fmt.Printf(format, args...)
	}
}
