package main

import (
	"os"

	"github.com/firefly-engineering/firefly-forage/packages/forage-runtime/cmd"
	"github.com/firefly-engineering/firefly-forage/packages/forage-runtime/internal/errors"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(errors.GetExitCode(err))
	}
}
