package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kardex/kardex"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of kardex",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("kardex version %s\n", strings.TrimSpace(kardex.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
