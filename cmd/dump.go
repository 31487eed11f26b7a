package cmd

import (
	"fmt"

	"github.com/mbrukner/gohex/pkg/util"
	"github.com/spf13/cobra"
)

var (
	dumpAddress string
	dumpLength  string
)

var dumpCmd = &cobra.Command{
	Use:   "dump",
	Short: "Hex-dump a window of a hex file's data, or its whole data map",
	Long: `dump loads --file and prints a hex/ASCII dump. With --address and
--length, it dumps exactly that window (reading gaps as the group's
unused-fill byte). Without them, it dumps every region in the file's
compacted data map in turn.

Example:
  gohex --file firmware.hex dump --address 100 --length 40`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDump()
	},
}

func init() {
	dumpCmd.Flags().StringVar(&dumpAddress, "address", "", "absolute address to start the dump at (hex)")
	dumpCmd.Flags().StringVar(&dumpLength, "length", "", "number of bytes to dump (hex)")
	rootCmd.AddCommand(dumpCmd)
}

func runDump() error {
	if err := requireFile(); err != nil {
		return err
	}

	group, _, err := loadGroup(fileFlag)
	if err != nil {
		return fmt.Errorf("loading %s: %w", fileFlag, err)
	}

	if dumpAddress != "" {
		addr, err := util.ParseHexAddress(dumpAddress)
		if err != nil {
			return err
		}
		length, err := util.ParseHexLength(dumpLength)
		if err != nil {
			return err
		}
		data := make([]byte, length)
		for i := range data {
			data[i] = group.Get(addr + uint32(i))
		}
		util.HexDump(data, addr)
		return nil
	}

	for _, r := range group.DataMap() {
		length := r.End - r.Start + 1
		data := make([]byte, length)
		for i := range data {
			data[i] = group.Get(r.Start + uint32(i))
		}
		util.HexDump(data, r.Start)
	}
	return nil
}
