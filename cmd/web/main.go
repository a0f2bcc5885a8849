package main

import (
	"log/slog"
	"os"

	"demandcli/internal/app"
)

func main() {
	if err := run(); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run() error {
	application, err := app.NewApplication()
	if err != nil {
		return err
	}
	return application.Run()
}
