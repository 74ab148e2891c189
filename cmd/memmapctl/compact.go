package main

import (
	"fmt"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"github.com/vkngwrapper/memfix/memmap"
)

func newCompactCmd(options *globalOptions) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "compact <dump>",
		Short: "Join adjacent free descriptors",
		Long: `The compact command joins adjacent descriptors of mergeable memory types
with identical attributes, exactly as the boot-time shim does before handing the
map to the kernel. The compacted dump keeps the original stride.

Example:
  memmapctl compact memmap.bin
  memmapctl compact memmap.bin -o memmap-compact.bin --stride 48`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			snapshot, err := options.load(args[0])
			if err != nil {
				return err
			}

			before := snapshot.Len()
			_, err = memmap.Compact(snapshot)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Compacted %d descriptors into %d\n", before, snapshot.Len())

			if output == "" {
				return nil
			}

			err = os.WriteFile(output, snapshot.Bytes(), 0o644)
			if err != nil {
				return errors.Wrapf(err, "failed to write %s", output)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Write the compacted dump to this file")
	return cmd
}
