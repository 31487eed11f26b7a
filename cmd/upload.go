package cmd

import (
	"fmt"

	"github.com/mbrukner/gohex/pkg/connection"
	"github.com/mbrukner/gohex/pkg/protocol"
	"github.com/spf13/cobra"
)

var uploadCmd = &cobra.Command{
	Use:   "upload",
	Short: "Stream a hex file's data map at --target",
	Long: `upload loads --file and walks its compacted data map in
gohex.ini's chunk_size windows (default 4096 bytes), writing each window
to --target over a serial or TCP connection using the framed block-write
protocol.

Example:
  gohex --file firmware.hex --target /dev/ttyUSB0 upload`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runUpload()
	},
}

func init() {
	rootCmd.AddCommand(uploadCmd)
}

func runUpload() error {
	if err := requireFile(); err != nil {
		return err
	}
	if err := requireTarget(); err != nil {
		return err
	}

	group, _, err := loadGroup(fileFlag)
	if err != nil {
		return fmt.Errorf("loading %s: %w", fileFlag, err)
	}

	if err := connection.ValidatePort(cfg.Port); err != nil {
		return err
	}
	conn := connection.NewConnection(cfg, cfg.Port)
	if err := conn.Open(cfg.Port); err != nil {
		return fmt.Errorf("opening %s: %w", cfg.Port, err)
	}
	defer conn.Close()

	pusher := protocol.NewPusher(conn)
	chunkSize := cfg.ChunkSize
	if chunkSize <= 0 {
		chunkSize = 4096
	}

	var total int
	for _, r := range group.DataMap() {
		addr := r.Start
		for addr <= r.End {
			span := r.End - addr + 1
			if span > uint32(chunkSize) {
				span = uint32(chunkSize)
			}
			data := make([]byte, span)
			for i := range data {
				data[i] = group.Get(addr + uint32(i))
			}
			if err := pusher.WriteBlock(addr, data); err != nil {
				return fmt.Errorf("writing block at 0x%X: %w", addr, err)
			}
			total += len(data)
			addr += span
		}
	}

	printInfo("uploaded %d bytes to %s\n", total, cfg.Port)
	return nil
}
