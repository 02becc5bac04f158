package main

import (
	"github.com/croswell/sctl/pkg/cli"
)

func main() {
	cli.Execute()
}
