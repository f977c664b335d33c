package main

import (
	cmd "github.com/cozy-creator/ondevice/cmd/ondevice"

	// Engine backends
	_ "github.com/cozy-creator/ondevice/internal/shotclassification/tensorflow"
)

func main() {
	cmd.Execute()
}
