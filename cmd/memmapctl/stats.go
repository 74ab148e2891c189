package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
	"github.com/spf13/cobra"
	"github.com/vkngwrapper/memfix/memmap"
	"github.com/vkngwrapper/memfix/memutils"
)

func typeName(memoryType uint32) string {
	return memmap.MemoryType(memoryType).String()
}

func newStatsCmd(options *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats <dump>",
		Short: "Summarize regions by memory type",
		Long: `The stats command counts regions and pages per memory type.

Example:
  memmapctl stats memmap.bin
  memmapctl stats memmap.bin --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			snapshot, err := options.load(args[0])
			if err != nil {
				return err
			}

			stats := memutils.NewMapStatistics()
			snapshot.AddStatistics(stats)

			out := cmd.OutOrStdout()
			if options.jsonOut {
				writer := jwriter.NewWriter()
				stats.WriteJSON(&writer, typeName)
				if err := writer.Error(); err != nil {
					return err
				}
				_, err = fmt.Fprintln(out, string(writer.Bytes()))
				return err
			}

			table := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(table, "TYPE\tREGIONS\tPAGES\tMIN\tMAX")
			for _, memoryType := range stats.Types() {
				typeStats, _ := stats.Type(memoryType)
				fmt.Fprintf(table, "%s\t%d\t%d\t%d\t%d\n", typeName(memoryType), typeStats.RegionCount,
					typeStats.PageCount, typeStats.RegionPagesMin, typeStats.RegionPagesMax)
			}
			fmt.Fprintf(table, "Total\t%d\t%d\t%d\t%d\n", stats.Total.RegionCount, stats.Total.PageCount,
				stats.Total.RegionPagesMin, stats.Total.RegionPagesMax)
			return table.Flush()
		},
	}

	return cmd
}
