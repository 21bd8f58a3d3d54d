package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the corelsp version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("corelsp version %s\n", version)
	},
}
