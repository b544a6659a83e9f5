// Version command for the groomcrm CLI.
package main

import (
	"fmt"

	"github.com/groomcrm/groomcrm/pkg/groom"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the groomcrm version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(groom.AppName, groom.Version)
	},
}
