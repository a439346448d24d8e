package main

import (
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/tasknest/core/cmd/api/commands"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "tasknest",
		Short: "TaskNest API Server",
		Long:  `TaskNest is a multi-tenant task management backend with per-user groups, owner-scoped tasks and a suggestion engine.`,
	}

	rootCmd.AddCommand(commands.NewServeCommand())
	rootCmd.AddCommand(commands.NewMigrateCommand())
	rootCmd.AddCommand(commands.NewSeedCommand())
	rootCmd.AddCommand(commands.NewCleanupCommand())
	rootCmd.AddCommand(commands.NewVersionCommand())

	if err := rootCmd.Execute(); err != nil {
		log.Printf("Command execution failed: %v", err)
		os.Exit(1)
	}
}
