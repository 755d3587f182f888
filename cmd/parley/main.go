package main

import (
	"github.com/parley-app/parley/internal/cli"
	"github.com/parley-app/parley/internal/logging"
)

func main() {
	logging.Init()
	cli.Execute()
}
