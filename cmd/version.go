package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the cine version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("cine %s\n", Version)
	},
}
