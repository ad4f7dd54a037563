package main

import (
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"time"

	"github.com/fatih/color"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/go-pathlock/pathlock"
	"github.com/go-pathlock/pathlock/internal/config"
	"github.com/go-pathlock/pathlock/registry"
)

// exitLocked is the exit status when the lock is busy,
// EX_TEMPFAIL from sysexits.h.
const exitLocked = 75

var (
	configPath   string
	maxWait      time.Duration
	pollInterval time.Duration
	detach       bool
	holdFor      time.Duration
)

var errHeld = errors.New("lock is held")

// loadOptions merges the config file with the flags
// that were given explicitly.
func loadOptions(cmd *cobra.Command) (*pathlock.Options, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	opts := cfg.Options()
	if cmd.Flags().Changed("wait") {
		opts.MaxWait = maxWait
	}
	if cmd.Flags().Changed("poll") {
		opts.PollInterval = pollInterval
	}
	return opts, nil
}

var rootCmd = &cobra.Command{
	Use:           "pathlock",
	Short:         "Guard critical sections with path based locks",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var runCmd = &cobra.Command{
	Use:   "run PATH -- COMMAND [ARGS...]",
	Short: "Run a command while holding the lock at PATH",
	Long: "Run a command while holding the lock at PATH.\n\n" +
		"The command shares the lock, so with --detach it keeps\n" +
		"holding it after pathlock has exited.",
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := loadOptions(cmd)
		if err != nil {
			return err
		}
		path := args[0]
		return pathlock.Do(path, opts, func(h *pathlock.Handle) error {
			child := exec.Command(args[1], args[2:]...)
			child.Stdin = os.Stdin
			child.Stdout = os.Stdout
			child.Stderr = os.Stderr
			if err := h.Transfer(child); err != nil {
				if detach || !errors.Is(err, pathlock.ErrTransferUnsupported) {
					return err
				}
			}
			if err := child.Start(); err != nil {
				return errors.Wrapf(err, "start %q", args[1])
			}
			if detach {
				fmt.Fprintf(os.Stderr, "%s %q handed to pid %d\n",
					color.GreenString("locked"), path, child.Process.Pid)
				return child.Process.Release()
			}
			return child.Wait()
		})
	},
}

var probeCmd = &cobra.Command{
	Use:   "probe PATH",
	Short: "Report whether the lock at PATH is held",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := loadOptions(cmd)
		if err != nil {
			return err
		}
		opts.MaxWait = 0
		h := pathlock.New(args[0], opts)
		locked, err := h.Lock()
		if err != nil {
			return err
		}
		if !locked {
			fmt.Printf("%s %s\n", color.YellowString("held"), args[0])
			return errHeld
		}
		h.Unlock()
		fmt.Printf("%s %s\n", color.GreenString("free"), args[0])
		return nil
	},
}

var holdCmd = &cobra.Command{
	Use:   "hold PATH",
	Short: "Hold the lock at PATH until interrupted",
	Long: "Hold the lock at PATH until interrupted.\n\n" +
		"When started by \"pathlock run\" for the same PATH, the\n" +
		"lock handed over by the parent is held instead.",
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := loadOptions(cmd)
		if err != nil {
			return err
		}
		path := args[0]
		h, err := pathlock.Inherit(opts)
		switch {
		case err == nil:
			if registry.Clean(h.Path()) != registry.Clean(path) {
				h.Unlock()
				return errors.Errorf("inherited lock %q, expected %q", h.Path(), path)
			}
		case errors.Is(err, pathlock.ErrNotInherited):
			h = pathlock.New(path, opts)
			locked, err := h.Lock()
			if err != nil {
				return err
			}
			if !locked {
				return errors.Wrapf(pathlock.ErrLocked, "lock %q", path)
			}
		default:
			return err
		}
		defer h.Unlock()
		fmt.Fprintf(os.Stderr, "%s %q as %s\n", color.GreenString("holding"), path, h.Owner())

		// Keep holding until the user interrupt.
		ch := make(chan os.Signal, 1)
		signal.Notify(ch, os.Interrupt)
		defer signal.Stop(ch)
		var timeout <-chan time.Time
		if holdFor > 0 {
			timeout = time.After(holdFor)
		}
		select {
		case <-ch:
		case <-timeout:
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(
		&configPath, "config", "c", configPath,
		"TOML file with defaults for the flags below",
	)
	rootCmd.PersistentFlags().DurationVarP(
		&maxWait, "wait", "w", pathlock.DefaultMaxWait,
		"How long to wait for a busy lock, 0 to fail at once",
	)
	rootCmd.PersistentFlags().DurationVar(
		&pollInterval, "poll", pathlock.DefaultPollInterval,
		"Pause between two acquisition attempts",
	)
	runCmd.Flags().BoolVarP(
		&detach, "detach", "d", false,
		"Leave the lock to the command and exit at once",
	)
	holdCmd.Flags().DurationVar(
		&holdFor, "for", 0,
		"Release the lock after this long instead of waiting for an interrupt",
	)
	rootCmd.AddCommand(runCmd, probeCmd, holdCmd)
}

// exitCode maps the outcome of a command to the process
// exit status.
func exitCode(err error) int {
	var exitErr *exec.ExitError
	switch {
	case err == nil:
		return 0
	case errors.As(err, &exitErr):
		return exitErr.ExitCode()
	case errors.Is(err, errHeld):
		return 1
	case errors.Is(err, pathlock.ErrLocked):
		return exitLocked
	}
	return 1
}

func main() {
	err := rootCmd.Execute()
	if err != nil && !errors.Is(err, errHeld) {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			fmt.Fprintf(os.Stderr, "%s %v\n", color.RedString("error:"), err)
		}
	}
	os.Exit(exitCode(err))
}
