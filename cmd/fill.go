package cmd

import (
	"fmt"

	"github.com/mbrukner/gohex/pkg/ihexfile"
	"github.com/mbrukner/gohex/pkg/util"
	"github.com/spf13/cobra"
)

var (
	fillAddress string
	fillLength  string
	fillValue   string
)

var fillCmd = &cobra.Command{
	Use:   "fill",
	Short: "Fill a range of addresses with a constant byte and re-save",
	Long: `fill loads --file, writes --length copies of --value starting at
--address (creating sections as needed), and saves the result.

Example:
  gohex --file firmware.hex fill --address 8000 --length 100 --value 00`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runFill()
	},
}

func init() {
	fillCmd.Flags().StringVar(&fillAddress, "address", "", "absolute start address (hex, required)")
	fillCmd.Flags().StringVar(&fillLength, "length", "", "number of bytes to fill (hex, required)")
	fillCmd.Flags().StringVar(&fillValue, "value", "", "byte value to fill with (hex, required)")
	rootCmd.AddCommand(fillCmd)
}

func runFill() error {
	if err := requireFile(); err != nil {
		return err
	}
	if fillAddress == "" || fillLength == "" || fillValue == "" {
		return fmt.Errorf("--address, --length, and --value are required")
	}

	addr, err := util.ParseHexAddress(fillAddress)
	if err != nil {
		return err
	}
	length, err := util.ParseHexLength(fillLength)
	if err != nil {
		return err
	}
	value, err := util.ParseHexSize(fillValue)
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

	if err := group.Fill(addr, int(length), byte(value)); err != nil {
		return fmt.Errorf("filling 0x%X+%d: %w", addr, length, err)
	}

	if err := ihexfile.SaveFile(fileFlag, group); err != nil {
		return fmt.Errorf("saving %s: %w", fileFlag, err)
	}

	printInfo("filled %d bytes with 0x%02X at 0x%X\n", length, value, addr)
	return nil
}
