package main

import (
	"fmt"
	"path/filepath"

	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
	"github.com/spf13/cobra"
	"github.com/vkngwrapper/memfix/memmap"
	"golang.org/x/exp/slog"
)

func newDumpCmd(options *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dump <dump>",
		Short: "Print every descriptor",
		Long: `The dump command prints every descriptor in the same format the boot-time
shim uses on the firmware console, without the reading pauses.

Example:
  memmapctl dump memmap.bin
  memmapctl dump memmap.bin --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			snapshot, err := options.load(args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if options.jsonOut {
				writer := jwriter.NewWriter()
				snapshot.WriteJSON(&writer)
				if err := writer.Error(); err != nil {
					return err
				}
				_, err = fmt.Fprintln(out, string(writer.Bytes()))
				return err
			}

			logger := slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{
				ReplaceAttr: func(groups []string, attr slog.Attr) slog.Attr {
					if len(groups) == 0 && attr.Key == slog.TimeKey {
						return slog.Attr{}
					}
					return attr
				},
			}))

			memmap.Print(logger, nil, filepath.Base(args[0]), snapshot, memmap.PrintOptions{
				PageStall: -1,
				EndStall:  -1,
			})
			return nil
		},
	}

	return cmd
}
