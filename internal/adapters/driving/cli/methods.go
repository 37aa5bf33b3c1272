package cli

import (
	"github.com/spf13/cobra"
)

var methodsCmd = &cobra.Command{
	Use:   "methods",
	Short: "List the available chunking methods",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if pipelineService == nil {
			return errNotConfigured
		}
		for _, m := range pipelineService.Methods() {
			if m == appConfig.Chunking.Method {
				cmd.Printf("%s (default)\n", m)
				continue
			}
			cmd.Println(m)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(methodsCmd)
}
