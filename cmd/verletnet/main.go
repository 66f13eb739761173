// Command verletnet runs a hanging net of Verlet particles.
//
// Usage
//
// The verletnet command takes one optional argument:
//  verletnet [config_file]
// It is the path to a TOML config file.
// If no config file is specified, or if it has no Output,
// an interactive simulation runs in an OpenGL window.
// Otherwise the trajectory is recorded into the Output HDF5 file.
//
// Subcommands
//
//  verletnet term [config_file]             interactive simulation in the terminal
//  verletnet settle [config_file]           run headless until the net comes to rest
//  verletnet replay file.h5 [config_file]   replay a recording in an OpenGL window
//
// Interactive mode
//
// Dragging with the left mouse button pulls the net, the right button cuts it.
// Space pauses (p in the terminal) and right arrow steps while paused (n in the terminal).
// R rebuilds the net. Pressing Esc or closing the window will quit.
package main

import (
	"fmt"
	"log"
	"os"
	"runtime"

	"github.com/PrincetonUniversity/verletnet"
	"github.com/PrincetonUniversity/verletnet/hdf5"
	"github.com/PrincetonUniversity/verletnet/opengl"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "verletnet [config_file]",
	Short: "Simulate a hanging net of Verlet particles",
	Long: `The first argument is optional and is the path to a TOML config file.
If no config file is specified, an interactive simulation
with default parameters will run in an OpenGL window.
If the config has an Output, the simulation is recorded to that HDF5 file instead.`,
	Args:          cobra.MaximumNArgs(1),
	SilenceErrors: true,
	SilenceUsage:  true,
	RunE: func(cmd *cobra.Command, args []string) error {
		conf, err := loadConfig(args)
		if err != nil {
			return err
		}
		if conf.Output == "" {
			return RunOpenGL(conf, setup(conf))
		}
		return RunHDF5(conf, setup(conf))
	},
}

func init() {
	// Most OpenGL functions have to run from the main thread.
	// This is needed to arrange that main() runs on main thread.
	// See https://github.com/golang/go/wiki/LockOSThread for more info.
	runtime.LockOSThread()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		Fatal(err)
	}
}

// Fatal prints an error on the standard output and exits with a non-zero status.
func Fatal(err error) {
	fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	os.Exit(1)
}

// loadConfig returns the default config or the one in the file named by args.
func loadConfig(args []string) (*Config, error) {
	if len(args) == 0 {
		conf := *DefaultConf
		return &conf, nil
	}
	return ParseConfig(args[0])
}

// setup builds the net described by conf.
func setup(conf *Config) *verletnet.Net {
	n := verletnet.NewNet(conf.Params())
	n.Logger = log.Default()
	return n
}

// RunOpenGL runs an interactive simulation in a window.
func RunOpenGL(conf *Config, n *verletnet.Net) error {
	return opengl.Run(n, &opengl.Config{
		Width:  conf.Width,
		Height: conf.Height,
		Title:  "verletnet",
		Step: func(in verletnet.Input, e verletnet.LineEmitter) {
			n.Step(verletnet.Delta, in, e)
		},
		Reset: n.Reset,
	})
}

// RunHDF5 runs a headless simulation and records it.
func RunHDF5(conf *Config, n *verletnet.Net) error {
	return hdf5.Run(n, &hdf5.Config{
		Output: conf.Output,
		Steps:  conf.Steps,
		Step: func() {
			n.Step(verletnet.Delta, verletnet.Input{}, verletnet.Discard)
		},
		Datasets: []*hdf5.Dataset{
			hdf5.PositionsDataset(n),
			hdf5.MotionDataset(),
		},
		Attrs:    conf,
		Progress: os.Stdout,
	})
}
