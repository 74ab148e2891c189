package main

import (
	"io"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"github.com/vkngwrapper/memfix/memmap"
	"golang.org/x/exp/slog"
)

type globalOptions struct {
	stride  int
	verbose bool
	jsonOut bool
}

func newRootCmd() *cobra.Command {
	options := &globalOptions{}

	cmd := &cobra.Command{
		Use:   "memmapctl",
		Short: "Inspect raw firmware memory map dumps",
		Long: `memmapctl works on raw memory map dumps, the byte-for-byte contents of the
buffer filled by GetMemoryMap. Records are read at the stride given by --stride,
which must match the descriptor size reported by the firmware that produced the dump.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().IntVar(&options.stride, "stride", memmap.DescriptorSize, "Descriptor stride of the dump in bytes")
	cmd.PersistentFlags().BoolVarP(&options.verbose, "verbose", "v", false, "Enable debug logging")
	cmd.PersistentFlags().BoolVar(&options.jsonOut, "json", false, "Output in JSON format")

	cmd.AddCommand(
		newCompactCmd(options),
		newStatsCmd(options),
		newDumpCmd(options),
		newPlanCmd(options),
	)

	return cmd
}

// logger returns a logger writing to the command's error stream
func (o *globalOptions) logger(cmd *cobra.Command) *slog.Logger {
	level := slog.LevelWarn
	if o.verbose {
		level = slog.LevelDebug
	}

	return slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
}

func (o *globalOptions) load(path string) (*memmap.Snapshot, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open %s", path)
	}
	defer file.Close()

	return loadSnapshot(file, o.stride)
}

func loadSnapshot(reader io.Reader, stride int) (*memmap.Snapshot, error) {
	snapshot, err := memmap.Load(reader, stride)
	if err != nil {
		return nil, err
	}
	if snapshot.Len() == 0 {
		return nil, errors.New("memory map dump is empty")
	}
	return snapshot, nil
}
