//go:build nogl
// +build nogl

package opengl

import (
	"fmt"
	"os"

	"github.com/PrincetonUniversity/verletnet"
)

// Config holds the parameters of the OpenGL driver.
type Config struct {
	Width  int
	Height int
	Title  string

	Step  func(in verletnet.Input, e verletnet.LineEmitter)
	Reset func()

	ForcePause  bool
	MaxSegments int
}

// Run returns an error explaining that OpenGL support is disabled.
func Run(n *verletnet.Net, conf *Config) error {
	return fmt.Errorf("%s was built without OpenGL support", os.Args[0])
}
