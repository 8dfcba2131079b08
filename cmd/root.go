// Package cmd assembles the platewatch command line interface.
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/platewatch/platewatch-go/cmd/benchmark"
	"github.com/platewatch/platewatch-go/cmd/config"
	"github.com/platewatch/platewatch-go/cmd/file"
	"github.com/platewatch/platewatch-go/cmd/realtime"
	"github.com/platewatch/platewatch-go/internal/conf"
)

// RootCommand creates and returns the root command
func RootCommand(settings *conf.Settings) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "platewatch",
		Short: "PlateWatch CLI",
		Long:  "License plate recognition for live video feeds and image files.",
	}

	if err := setupFlags(rootCmd, settings); err != nil {
		panic(err)
	}

	rootCmd.AddCommand(
		realtime.Command(settings),
		file.Command(settings),
		benchmark.Command(settings),
		config.Command(settings),
	)

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		// Flags may have overridden loaded settings; re-check the invariants
		// before any component is constructed.
		return settings.Validate()
	}

	return rootCmd
}

// setupFlags defines the global command line flags.
func setupFlags(rootCmd *cobra.Command, settings *conf.Settings) error {
	rootCmd.PersistentFlags().BoolVarP(&settings.Debug, "debug", "d", viper.GetBool("debug"), "Enable debug output")
	rootCmd.PersistentFlags().StringVar(&settings.PlateNet.PlateModelPath, "platemodel", viper.GetString("platenet.platemodelpath"), "Path to the plate detection model")
	rootCmd.PersistentFlags().StringVar(&settings.PlateNet.CharModelPath, "charmodel", viper.GetString("platenet.charmodelpath"), "Path to the character classification model")
	rootCmd.PersistentFlags().IntVar(&settings.PlateNet.Threads, "threads", viper.GetInt("platenet.threads"), "Interpreter thread count, 0 for CPU count")

	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		return fmt.Errorf("error binding flags: %v", err)
	}
	return nil
}
