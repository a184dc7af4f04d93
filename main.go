package main

import (
	"os"

	"fjacquet/ar-clearing/cmd/calendar"
	"fjacquet/ar-clearing/cmd/entities"
	"fjacquet/ar-clearing/cmd/paths"
	"fjacquet/ar-clearing/cmd/root"
	"fjacquet/ar-clearing/cmd/validate"
	"fjacquet/ar-clearing/internal/config"
)

func init() {
	// .env must be read before the flags take their defaults from it
	config.LoadEnv("")
	root.Log = config.ConfigureLogging()

	root.Init()

	root.Cmd.AddCommand(validate.Cmd)
	root.Cmd.AddCommand(entities.Cmd)
	root.Cmd.AddCommand(paths.Cmd)
	root.Cmd.AddCommand(calendar.Cmd)
}

func main() {
	if err := root.Cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
