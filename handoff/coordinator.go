// Package handoff finalizes the transfer of machine ownership from firmware to the operating system.
//
// Exiting boot services requires the key of the current memory map, and any allocation made after
// that key was obtained invalidates it. Firmware drivers reacting to the exit notification are
// notorious for doing exactly that, so the first attempt may fail through no fault of the caller.
// Coordinator retries once with a fresh key, and leaves a durable marker behind so the condition
// can be diagnosed from the next boot.
package handoff

import (
	"context"
	"io"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/vkngwrapper/memfix/firmware"
	"github.com/vkngwrapper/memfix/memmap"
	"github.com/vkngwrapper/memfix/memutils"
	"golang.org/x/exp/slog"
)

const (
	defaultVariableName    = "memfix-exitbs"
	defaultDiagnosticDelay = 10 * time.Second
)

// failureMarker is the payload of the variable written when the first exit attempt fails
var failureMarker = []byte("fail")

// ExitFunc performs the actual exit from boot services, normally firmware.BootServices.ExitBootServices
// or a wrapper that forwards to it
type ExitFunc func(image firmware.Handle, mapKey uint64) error

// MapSource provides the key of the live memory map. *bootmem.Allocator satisfies this interface.
type MapSource interface {
	CurrentMapKey() (uint64, error)
}

// State is the lifecycle state of a Coordinator
type State uint32

const (
	// StatePending means Finalize has not run yet
	StatePending State = iota
	// StateDone means Finalize has run, successfully or not. Boot services must be assumed gone.
	StateDone
)

var stateMapping = map[State]string{
	StatePending: "Pending",
	StateDone:    "Done",
}

func (s State) String() string {
	return stateMapping[s]
}

// CreateOptions contains optional settings when creating a Coordinator
type CreateOptions struct {
	// VariableName is the name of the variable written when the first exit attempt fails.
	// Defaults to "memfix-exitbs".
	VariableName string
	// VariableVendor is the vendor GUID of the failure variable. Defaults to
	// firmware.AppleBootVariableGUID.
	VariableVendor uuid.UUID
	// DiagnosticDelay is how long to stall after the second exit attempt fails, giving whoever is
	// watching the console time to read the log. Defaults to 10 seconds. Negative disables the stall.
	DiagnosticDelay time.Duration
}

// Coordinator performs the exit from boot services with a single retry
type Coordinator struct {
	logger  *slog.Logger
	maps    MapSource
	staller memmap.Staller
	runtime firmware.RuntimeServices

	variableName    firmware.VariableName
	variableVendor  uuid.UUID
	diagnosticDelay time.Duration

	state    State
	attempts int
}

// New creates a new Coordinator
//
// logger - Receives the progress of the hand-off. May be nil.
//
// maps - Provides fresh map keys for the retry
//
// staller - Used for the diagnostic delay after a failed hand-off, normally the boot services
//
// runtime - Used to write the failure variable. May be nil, in which case no variable is written.
//
// options - Optional parameters: it is valid to leave all the fields blank
func New(logger *slog.Logger, maps MapSource, staller memmap.Staller, runtime firmware.RuntimeServices, options CreateOptions) (*Coordinator, error) {
	if maps == nil {
		return nil, errors.Wrap(memutils.ErrInvalidArgument, "a map source is required")
	}
	if staller == nil {
		return nil, errors.Wrap(memutils.ErrInvalidArgument, "a staller is required")
	}

	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	name := options.VariableName
	if name == "" {
		name = defaultVariableName
	}
	variableName, err := firmware.NewVariableName(name)
	if err != nil {
		return nil, errors.Mark(err, memutils.ErrInvalidArgument)
	}

	coordinator := &Coordinator{
		logger:          logger,
		maps:            maps,
		staller:         staller,
		runtime:         runtime,
		variableName:    variableName,
		variableVendor:  options.VariableVendor,
		diagnosticDelay: options.DiagnosticDelay,
	}

	if coordinator.variableVendor == uuid.Nil {
		coordinator.variableVendor = firmware.AppleBootVariableGUID
	}
	if coordinator.diagnosticDelay == 0 {
		coordinator.diagnosticDelay = defaultDiagnosticDelay
	}

	return coordinator, nil
}

// State returns the current lifecycle state
func (c *Coordinator) State() State {
	return c.state
}

// Attempts returns the number of times the exit function has been called
func (c *Coordinator) Attempts() int {
	return c.attempts
}

// Finalize exits boot services with mapKey. If that fails, a failure variable is written, a fresh
// map key is obtained, and the exit is attempted once more. If the second attempt fails as well,
// Finalize stalls for the diagnostic delay and returns an error matching memutils.ErrHandoffFailed.
//
// Finalize may only be called once. Whatever its outcome, boot services must not be relied upon
// afterwards.
func (c *Coordinator) Finalize(exit ExitFunc, image firmware.Handle, mapKey uint64) error {
	if c.state == StateDone {
		return errors.Wrap(memutils.ErrInvalidArgument, "hand-off has already been finalized")
	}
	if exit == nil {
		return errors.Wrap(memutils.ErrInvalidArgument, "exit function cannot be nil")
	}

	err := c.exit(exit, image, mapKey)
	if err == nil {
		return nil
	}

	c.logger.Warn("ExitBootServices failed, retrying with a fresh map key", slog.Any("error", err))
	c.writeFailureMarker()

	freshKey, err := c.maps.CurrentMapKey()
	if err != nil {
		return c.fail(errors.Wrap(err, "failed to obtain a fresh map key"))
	}

	err = c.exit(exit, image, freshKey)
	if err == nil {
		return nil
	}

	return c.fail(err)
}

func (c *Coordinator) exit(exit ExitFunc, image firmware.Handle, mapKey uint64) error {
	c.attempts++
	c.logger.LogAttrs(context.Background(), slog.LevelDebug, "exiting boot services",
		slog.Int("attempt", c.attempts),
		slog.Uint64("mapKey", mapKey),
	)

	err := exit(image, mapKey)
	if err != nil {
		return err
	}

	c.state = StateDone
	return nil
}

func (c *Coordinator) writeFailureMarker() {
	if c.runtime == nil {
		return
	}

	attributes := firmware.VariableBootServiceAccess | firmware.VariableRuntimeAccess
	err := c.runtime.SetVariable(c.variableName, c.variableVendor, attributes, failureMarker)
	if err != nil {
		c.logger.LogAttrs(context.Background(), slog.LevelWarn, "failed to record hand-off failure",
			slog.String("variable", c.variableName.String()),
			slog.String("vendor", firmware.GUIDName(c.variableVendor)),
			slog.Any("error", err),
		)
	}
}

func (c *Coordinator) fail(cause error) error {
	c.state = StateDone

	c.logger.Error("ExitBootServices failed twice", slog.Any("error", cause))
	c.logger.Error("waiting before continuing so the failure can be read",
		slog.Duration("delay", c.diagnosticDelay),
	)

	if c.diagnosticDelay > 0 {
		c.staller.Stall(uint64(c.diagnosticDelay / time.Microsecond))
	}

	return errors.Mark(errors.Wrap(cause, "hand-off failed"), memutils.ErrHandoffFailed)
}
