package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "reportcard",
	Short: "Compose shareable report cards from gallery artwork",
	Long: `Report Card turns dated artwork records into fixed-resolution PNG
report cards: calendar recaps, progress timelines and before/after
comparisons, styled by the artist and exported pixel-perfect.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
}

func initConfig() {
	// .env file is optional, don't fail if not found
	_ = godotenv.Load()
}
