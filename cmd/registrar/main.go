package main

import (
	"log"
	"os"

	"github.com/spf13/afero"

	"github.com/coursereg/registrar/cmd/registrar/commands"
)

func main() {
	rootCmd := commands.NewRootCommand(afero.NewOsFs())

	if err := rootCmd.Execute(); err != nil {
		log.Printf("Command execution failed: %v", err)
		os.Exit(1)
	}
}
