package cmd

import (
	"fmt"

	"github.com/mbrukner/gohex/pkg/util"
	"github.com/spf13/cobra"
)

var getAddress string

var getCmd = &cobra.Command{
	Use:   "get",
	Short: "Print the byte at an absolute address",
	Long: `get loads --file and prints the byte at --address, or the group's
unused-fill byte if the address is not covered by any record.

Example:
  gohex --file firmware.hex get --address 100`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runGet()
	},
}

func init() {
	getCmd.Flags().StringVar(&getAddress, "address", "", "absolute address to read (hex, required)")
	rootCmd.AddCommand(getCmd)
}

func runGet() error {
	if err := requireFile(); err != nil {
		return err
	}
	if getAddress == "" {
		return fmt.Errorf("--address is required")
	}

	addr, err := util.ParseHexAddress(getAddress)
	if err != nil {
		return err
	}

	group, _, err := loadGroup(fileFlag)
	if err != nil {
		return fmt.Errorf("loading %s: %w", fileFlag, err)
	}

	fmt.Printf("0x%02X\n", group.Get(addr))
	return nil
}
