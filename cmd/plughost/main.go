// Command plughost loads one plugin from a bundle and runs it on an audio
// engine until interrupted.
//
//	plughost <bundle-path> [plugin-index]
package main

import (
	"os"
)

func main() {
	a := &app{stdout: os.Stdout, stderr: os.Stderr, exit: os.Exit}
	if err := newRootCmd(a).Execute(); err != nil {
		os.Exit(1)
	}
}
