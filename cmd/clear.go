package cmd

import (
	"fmt"

	"github.com/mbrukner/gohex/pkg/ihexfile"
	"github.com/mbrukner/gohex/pkg/util"
	"github.com/spf13/cobra"
)

var (
	clearAddress string
	clearLength  string
)

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove a range of bytes from a hex file and re-save",
	Long: `clear loads --file, removes --length bytes starting at --address
from whichever sections cover them (splitting, shrinking, or deleting
records as needed), and saves the result.

Example:
  gohex --file firmware.hex clear --address 8000 --length 100`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runClear()
	},
}

func init() {
	clearCmd.Flags().StringVar(&clearAddress, "address", "", "absolute start address (hex, required)")
	clearCmd.Flags().StringVar(&clearLength, "length", "", "number of bytes to clear (hex, required)")
	rootCmd.AddCommand(clearCmd)
}

func runClear() error {
	if err := requireFile(); err != nil {
		return err
	}
	if clearAddress == "" || clearLength == "" {
		return fmt.Errorf("--address and --length are required")
	}

	addr, err := util.ParseHexAddress(clearAddress)
	if err != nil {
		return err
	}
	length, err := util.ParseHexLength(clearLength)
	if err != nil {
		return err
	}

	group, _, err := loadGroup(fileFlag)
	if err != nil {
		return fmt.Errorf("loading %s: %w", fileFlag, err)
	}

	removed, err := group.Clear(addr, int(length))
	if err != nil {
		return fmt.Errorf("clearing 0x%X+%d: %w", addr, length, err)
	}

	if err := ihexfile.SaveFile(fileFlag, group); err != nil {
		return fmt.Errorf("saving %s: %w", fileFlag, err)
	}

	printInfo("cleared %d of %d requested bytes at 0x%X\n", removed, length, addr)
	return nil
}
