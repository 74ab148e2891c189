package memmap

import (
	"context"
	"time"

	"golang.org/x/exp/slog"
)

// Staller busy-waits for the given number of microseconds. Firmware boot services satisfy this interface.
type Staller interface {
	Stall(microseconds uint64)
}

const (
	defaultPageLines = 16
	defaultPageStall = 5 * time.Second
	defaultEndStall  = 5 * time.Second
)

// PrintOptions controls the pacing of Print. Zero values select the defaults (a five second stall
// after every sixteen descriptors and at the end of the dump); negative durations disable a stall.
type PrintOptions struct {
	// PageLines is the number of descriptors printed between stalls
	PageLines int
	// PageStall is the stall performed after every PageLines descriptors
	PageStall time.Duration
	// EndStall is the stall performed after the whole map has been printed
	EndStall time.Duration
}

func (o PrintOptions) withDefaults() PrintOptions {
	if o.PageLines <= 0 {
		o.PageLines = defaultPageLines
	}
	if o.PageStall == 0 {
		o.PageStall = defaultPageStall
	}
	if o.EndStall == 0 {
		o.EndStall = defaultEndStall
	}
	return o
}

func stall(staller Staller, duration time.Duration) {
	if staller == nil || duration < 0 {
		return
	}
	staller.Stall(uint64(duration / time.Microsecond))
}

// Print writes every descriptor of the snapshot to the logger, pausing periodically so that a person
// watching a firmware console has time to read it. The stalls cannot be interrupted.
func Print(logger *slog.Logger, staller Staller, name string, snapshot *Snapshot, options PrintOptions) {
	options = options.withDefaults()
	ctx := context.Background()

	logger.LogAttrs(ctx, slog.LevelInfo, "--- Dump Memory Map start ---",
		slog.String("name", name),
		slog.Int("size", snapshot.Size),
		slog.Int("descriptorSize", snapshot.DescriptorSize),
		slog.Uint64("mapKey", snapshot.MapKey),
	)

	count := snapshot.Len()
	for index := 0; index < count; index++ {
		d := snapshot.Descriptor(index)
		logger.LogAttrs(ctx, slog.LevelInfo, "MEMMAP",
			slog.String("type", d.Type.String()),
			slog.String("start", hexString(d.PhysicalStart)),
			slog.String("end", hexString(d.PhysicalEnd()-1)),
			slog.String("virtual", hexString(d.VirtualStart)),
			slog.Uint64("pages", d.NumberOfPages),
			slog.String("attributes", d.Attribute.String()),
		)

		if (index+1)%options.PageLines == 0 {
			stall(staller, options.PageStall)
		}
	}

	logger.LogAttrs(ctx, slog.LevelInfo, "--- Dump Memory Map end ---", slog.String("name", name))
	stall(staller, options.EndStall)
}
