package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/vkngwrapper/memfix/bootmem"
	"github.com/vkngwrapper/memfix/firmware/sim"
	"github.com/vkngwrapper/memfix/memmap"
	"github.com/vkngwrapper/memfix/memutils"
)

func newPlanCmd(options *globalOptions) *cobra.Command {
	var pages uint64
	var ceiling uint64
	var avoid bootmem.Window

	cmd := &cobra.Command{
		Use:   "plan <dump>",
		Short: "Show where a top-down allocation would be placed",
		Long: `The plan command replays the dump in a simulated firmware and performs a
top-down allocation against it, reporting the address the boot-time shim would
choose. The simulated firmware accounts for the memory used to snapshot the map.

Example:
  memmapctl plan memmap.bin --pages 16
  memmapctl plan memmap.bin --pages 16 --ceiling 0x80000000 --avoid-low 0x100000 --avoid-length 0x2000000`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			snapshot, err := options.load(args[0])
			if err != nil {
				return err
			}

			fw, err := sim.New(snapshot.Descriptors(), sim.Options{DescriptorSize: snapshot.DescriptorSize})
			if err != nil {
				return err
			}

			allocator, err := bootmem.New(options.logger(cmd), fw, fw, bootmem.CreateOptions{})
			if err != nil {
				return err
			}

			var window *bootmem.Window
			if avoid.Length > 0 {
				window = &avoid
			}

			address, err := allocator.AllocateBelow(memmap.LoaderData, pages, ceiling, window)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "0x%010X-0x%010X (%d pages)\n", address, address+memutils.PagesToSize(pages)-1, pages)
			return nil
		},
	}

	cmd.Flags().Uint64Var(&pages, "pages", 1, "Number of pages to allocate")
	cmd.Flags().Uint64Var(&ceiling, "ceiling", 0, "Allocation ceiling, 0 for 4GB")
	cmd.Flags().Uint64Var(&avoid.Low, "avoid-low", 0, "Start of a range the allocation must not overlap")
	cmd.Flags().Uint64Var(&avoid.Length, "avoid-length", 0, "Length of the range the allocation must not overlap")
	return cmd
}
