package main

import (
	"fmt"
	"log"

	"github.com/PrincetonUniversity/verletnet"
	"github.com/PrincetonUniversity/verletnet/hdf5"
	"github.com/PrincetonUniversity/verletnet/opengl"
	"github.com/spf13/cobra"
)

var replayCmd = &cobra.Command{
	Use:   "replay file.h5 [config_file]",
	Short: "Replay a recorded simulation in an OpenGL window",
	Long: `Replays the points dataset of an HDF5 file written by verletnet.
The config file must describe the same net as the recording.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		conf, err := loadConfig(args[1:])
		if err != nil {
			return err
		}
		return RunReplay(conf, setup(conf), args[0])
	},
}

func init() {
	rootCmd.AddCommand(replayCmd)
}

// RunReplay draws the recorded steps of path in a window.
func RunReplay(conf *Config, n *verletnet.Net, path string) (err error) {
	l, err := hdf5.NewLoader(path, "points")
	if err != nil {
		return err
	}
	defer func() {
		if cerr := l.Close(); err == nil {
			err = cerr
		}
	}()
	if l.Points() != len(n.Points) {
		return fmt.Errorf("replay: %s has %d points per step, the net has %d", path, l.Points(), len(n.Points))
	}

	return opengl.Run(n, &opengl.Config{
		Width:  conf.Width,
		Height: conf.Height,
		Title:  "verletnet replay of " + path,
		Step: func(in verletnet.Input, e verletnet.LineEmitter) {
			if err := l.Load(n); err != nil {
				log.Printf("replay: %v", err)
			}
			n.Draw(e)
		},
	})
}
