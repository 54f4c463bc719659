package main

import (
	"go.uber.org/zap"

	"github.com/harrynew/workflowbot/cmd"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	zap.ReplaceGlobals(logger)
	defer func() { _ = logger.Sync() }()

	cmd.Execute()
}
