package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	var opts options

	rootCmd := &cobra.Command{
		Use:   "quadsim",
		Short: "Headless flight core simulator",
		Long: `Runs the quadcopter flight core against the simulated airframe.

Boots the core through its power-on self test, then runs the control
loop against the rigid body estimator for a fixed number of ticks while
the serial console streams to stdout. Trim keystrokes typed on stdin
reach the core the same way they would over the UART. Self-test
failures can be injected to exercise the halt path.

Example usage:
  quadsim --ticks 500 --throttle 64
  quadsim --fail revision`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(opts)
		},
	}

	rootCmd.Flags().StringVarP(&opts.ConfigPath, "config", "c", "", "YAML configuration file (built-in defaults when empty)")
	rootCmd.Flags().IntVarP(&opts.Ticks, "ticks", "t", defaultTicks, "control ticks to run after boot (0 runs until interrupted)")
	rootCmd.Flags().Uint8Var(&opts.Throttle, "throttle", 0, "throttle raised once the loop is armed (0-255)")
	rootCmd.Flags().StringVar(&opts.Fail, "fail", "", "inject a self-test failure: revision, gyro, mag, accel or throttle")
	rootCmd.Flags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose logging")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
