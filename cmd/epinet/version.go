package main

import (
	"fmt"

	"github.com/aretw0/epinet"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of epinet",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "epinet version %s\n", epinet.Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
