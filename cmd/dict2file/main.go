package main

import (
	"log/slog"

	"dict2file/internal/dict2file/cmd"
	"dict2file/internal/dict2file/log"
)

func main() {
	defer log.RecoverPanic("main", func() {
		slog.Error("Application terminated due to unhandled panic")
	})

	cmd.Execute()
}
