package cmd

import (
	"fmt"
	"os"

	"ekiroute/pkg/table"

	"github.com/spf13/cobra"
)

var templateCmd = &cobra.Command{
	Use:   "template",
	Short: "Write a starter input CSV",
	RunE: func(cmd *cobra.Command, args []string) error {
		output, _ := cmd.Flags().GetString("output")
		if output == "-" {
			return table.WriteTemplate(os.Stdout)
		}

		if err := writeFile(output, func(f *os.File) error { return table.WriteTemplate(f) }); err != nil {
			return err
		}
		fmt.Printf("✨ Template written to: %s\n", output)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(templateCmd)
	templateCmd.Flags().StringP("output", "o", "ekispert_template.csv", "Where to write the template (- for stdout)")
}
