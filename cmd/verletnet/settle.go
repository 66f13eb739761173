package main

import (
	"fmt"
	"io"
	"math"
	"os"

	"github.com/PrincetonUniversity/verletnet"
	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"
)

var settleCmd = &cobra.Command{
	Use:   "settle [config_file]",
	Short: "Run headless until the net comes to rest",
	Long: `Steps the net without any pointer input until the largest
displacement of a point during one frame drops below epsilon,
then plots the displacement history.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		conf, err := loadConfig(args)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("epsilon") {
			conf.Epsilon = epsilon
		}
		return RunSettle(conf, setup(conf), os.Stdout)
	},
}

var epsilon float64

func init() {
	rootCmd.AddCommand(settleCmd)
	settleCmd.Flags().Float64VarP(&epsilon, "epsilon", "e", DefaultConf.Epsilon, "largest displacement per frame of a net at rest")
}

// settle steps n at most steps times and returns the frame at which
// its motion first dropped below eps, or -1, along with the motion history.
func settle(n *verletnet.Net, steps int, eps float64) (frame int, hist []float64) {
	frame = -1
	for k := 0; k < steps; k++ {
		n.Step(verletnet.Delta, verletnet.Input{}, verletnet.Discard)
		m := n.Motion()
		hist = append(hist, m)
		if m < eps {
			frame = n.Frame
			break
		}
	}
	return frame, hist
}

// RunSettle settles n and reports the outcome to w.
func RunSettle(conf *Config, n *verletnet.Net, w io.Writer) error {
	frame, hist := settle(n, conf.Steps, conf.Epsilon)
	if len(hist) == 0 {
		return fmt.Errorf("settle: need at least one step, got %d", conf.Steps)
	}

	// motion decays exponentially
	logs := make([]float64, len(hist))
	for i, m := range hist {
		logs[i] = math.Log10(math.Max(m, 1e-12))
	}
	fmt.Fprintln(w, asciigraph.Plot(logs,
		asciigraph.Height(10),
		asciigraph.Width(70),
		asciigraph.Caption("log10 of the largest displacement per frame")))

	if frame < 0 {
		return fmt.Errorf("settle: motion still %g after %d frames, want below %g", hist[len(hist)-1], conf.Steps, conf.Epsilon)
	}
	fmt.Fprintf(w, "at rest after %d frames (%.2fs simulated)\n", frame, float64(frame)*verletnet.Delta)
	return nil
}
