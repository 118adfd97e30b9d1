package main

import (
	"fmt"
	"os"

	"fjacquet/paycycle/cmd/anomalies"
	"fjacquet/paycycle/cmd/bnpl"
	"fjacquet/paycycle/cmd/importcmd"
	"fjacquet/paycycle/cmd/root"
	"fjacquet/paycycle/cmd/safetospend"
	"fjacquet/paycycle/cmd/serve"
	"fjacquet/paycycle/cmd/snapshot"
	"fjacquet/paycycle/internal/config"
)

func init() {
	// .env first so LOG_LEVEL from it applies before any logger is built
	config.LoadEnv()
	config.ConfigureLogging()

	root.Init()
	root.Cmd.AddCommand(
		safetospend.Cmd,
		bnpl.Cmd,
		anomalies.Cmd,
		importcmd.Cmd,
		snapshot.Cmd,
		serve.Cmd,
	)
}

func main() {
	if err := root.Cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
