package main

import (
	"github.com/PrincetonUniversity/verletnet"
	"github.com/PrincetonUniversity/verletnet/terminal"
	"github.com/gdamore/tcell/v2"
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/spatial/r2"
)

var termCmd = &cobra.Command{
	Use:   "term [config_file]",
	Short: "Run an interactive simulation in the terminal",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		conf, err := loadConfig(args)
		if err != nil {
			return err
		}
		s, err := tcell.NewScreen()
		if err != nil {
			return err
		}
		if err := s.Init(); err != nil {
			return err
		}
		defer s.Fini()
		return RunTerminal(conf, setup(conf), s)
	},
}

func init() {
	rootCmd.AddCommand(termCmd)
}

// RunTerminal runs an interactive simulation on s.
func RunTerminal(conf *Config, n *verletnet.Net, s tcell.Screen) error {
	return terminal.Run(n, s, &terminal.Config{
		Scale: r2.Vec{X: conf.CellWidth, Y: conf.CellHeight},
		Step: func(in verletnet.Input, e verletnet.LineEmitter) {
			n.Step(verletnet.Delta, in, e)
		},
		Reset: n.Reset,
		Style: tcell.StyleDefault.Foreground(tcell.ColorYellow),
	})
}
