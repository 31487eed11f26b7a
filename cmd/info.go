package cmd

import (
	"fmt"

	"github.com/mbrukner/gohex/pkg/ihex"
	"github.com/spf13/cobra"
)

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Print the variant, section layout, and address map of a hex file",
	Long: `info loads --file and reports its address variant, the number and
kind of sections it contains, the compacted address map, and the
start-address registers if the file carries one.

Example:
  gohex --file firmware.hex info`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runInfo()
	},
}

func init() {
	rootCmd.AddCommand(infoCmd)
}

func runInfo() error {
	if err := requireFile(); err != nil {
		return err
	}

	group, clean, err := loadGroup(fileFlag)
	if err != nil {
		return fmt.Errorf("loading %s: %w", fileFlag, err)
	}
	if !clean {
		fmt.Printf("warning: one or more records were skipped while loading\n")
	}

	fmt.Printf("variant: %s\n", group.Variant())
	fmt.Printf("sections: %d\n", len(group.Sections()))
	for i, s := range group.Sections() {
		fmt.Printf("  [%d] %s", i, s.Kind())
		if s.Kind() == ihex.SectionExtendedSegmentAddress || s.Kind() == ihex.SectionExtendedLinearAddress {
			fmt.Printf(" base=0x%04X", s.Base())
		}
		fmt.Printf("\n")
	}

	fmt.Printf("address map:\n")
	for _, r := range group.DataMap() {
		fmt.Printf("  0x%08X - 0x%08X (%d bytes)\n", r.Start, r.End, r.End-r.Start+1)
	}

	switch group.Variant() {
	case ihex.I16HEX:
		if cs, ip, err := group.StartSegmentAddress(); err == nil {
			fmt.Printf("start address: CS=0x%04X IP=0x%04X\n", cs, ip)
		}
	case ihex.I32HEX:
		if eip, err := group.StartLinearAddress(); err == nil {
			fmt.Printf("start address: EIP=0x%08X\n", eip)
		}
	}

	return nil
}
