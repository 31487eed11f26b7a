package cmd

import (
	"fmt"

	"github.com/mbrukner/gohex/pkg/ihexfile"
	"github.com/mbrukner/gohex/pkg/util"
	"github.com/spf13/cobra"
)

var (
	setAddress string
	setValue   string
)

var setCmd = &cobra.Command{
	Use:   "set",
	Short: "Write one byte at an absolute address and re-save the file",
	Long: `set loads --file, writes --value at --address (creating a section
to cover it if none exists yet), and saves the result back to --file.

Example:
  gohex --file firmware.hex set --address 100 --value FF`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSet()
	},
}

func init() {
	setCmd.Flags().StringVar(&setAddress, "address", "", "absolute address to write (hex, required)")
	setCmd.Flags().StringVar(&setValue, "value", "", "byte value to write (hex, required)")
	rootCmd.AddCommand(setCmd)
}

func runSet() error {
	if err := requireFile(); err != nil {
		return err
	}
	if setAddress == "" || setValue == "" {
		return fmt.Errorf("--address and --value are required")
	}

	addr, err := util.ParseHexAddress(setAddress)
	if err != nil {
		return err
	}
	value, err := util.ParseHexSize(setValue)
	if err != nil {
		return err
	}
	if value > 0xFF {
		return fmt.Errorf("--value 0x%X does not fit in one byte", value)
	}

	group, _, err := loadGroup(fileFlag)
	if err != nil {
		return fmt.Errorf("loading %s: %w", fileFlag, err)
	}

	if err := group.Set(addr, byte(value)); err != nil {
		return fmt.Errorf("setting 0x%X: %w", addr, err)
	}

	if err := ihexfile.SaveFile(fileFlag, group); err != nil {
		return fmt.Errorf("saving %s: %w", fileFlag, err)
	}

	printInfo("wrote 0x%02X at 0x%X\n", value, addr)
	return nil
}
