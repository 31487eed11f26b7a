package cmd

import (
	"fmt"

	"github.com/mbrukner/gohex/pkg/ihexfile"
	"github.com/spf13/cobra"
)

var mergeCmd = &cobra.Command{
	Use:   "merge <file1> <file2> [file3 ...]",
	Short: "Merge several hex files' sections into one and save to --file",
	Long: `merge loads each argument in order. The first file's group supplies
the base variant; every section from the remaining files is pushed onto
it with PushSection. A section whose window overlaps the window of a
section already present is a hard error, matching the library's push
semantics. This applies even when the two sections' data do not
overlap: two sections with the same base, or two I8HEX files, are not
merged.
The combined group is saved to --file.

Example:
  gohex --file combined.hex merge bootloader.hex app.hex`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMerge(args)
	},
}

func init() {
	rootCmd.AddCommand(mergeCmd)
}

func runMerge(paths []string) error {
	if err := requireFile(); err != nil {
		return err
	}

	base, _, err := loadGroup(paths[0])
	if err != nil {
		return fmt.Errorf("loading %s: %w", paths[0], err)
	}

	for _, path := range paths[1:] {
		other, _, err := loadGroup(path)
		if err != nil {
			return fmt.Errorf("loading %s: %w", path, err)
		}
		for _, s := range other.Sections() {
			if err := base.PushSection(s); err != nil {
				return fmt.Errorf("merging %s: %w", path, err)
			}
		}
	}

	if err := ihexfile.SaveFile(fileFlag, base); err != nil {
		return fmt.Errorf("saving %s: %w", fileFlag, err)
	}

	printInfo("merged %d files into %s\n", len(paths), fileFlag)
	return nil
}
