package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/atelierlog/reportcard/internal/config"
	"github.com/atelierlog/reportcard/internal/layout"
)

var templatesCmd = &cobra.Command{
	Use:   "templates",
	Short: "List the available template kinds",
	Run:   runTemplates,
}

func init() {
	rootCmd.AddCommand(templatesCmd)
}

func runTemplates(cmd *cobra.Command, args []string) {
	cfg := config.Load()

	fmt.Printf("%-16s %-8s %s\n", "TEMPLATE", "WIDTH", "HEIGHT")
	for _, kind := range layout.Kinds() {
		spec, ok := cfg.Canvas(string(kind))
		if !ok {
			continue
		}
		height := ""
		switch {
		case spec.HeaderHeight > 0 && spec.RowHeight > 0:
			height = fmt.Sprintf("%d + rows x %d + %d", spec.HeaderHeight, spec.RowHeight, spec.FooterHeight)
		case spec.FixedHeight > 0:
			height = fmt.Sprintf("%d", spec.FixedHeight)
		default:
			height = fmt.Sprintf("%d (square) / %d (4:5)", spec.SquareHeight, spec.PortraitHeight)
		}
		fmt.Printf("%-16s %-8d %s\n", kind, spec.Width, height)
	}
}
