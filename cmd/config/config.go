// Package config writes the active configuration to a file.
package config

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/platewatch/platewatch-go/internal/conf"
)

// Command creates the config export command.
func Command(settings *conf.Settings) *cobra.Command {
	return &cobra.Command{
		Use:   "config [path]",
		Short: "Write the active configuration to a YAML file",
		Long:  "Write the active configuration, defaults and flag overrides included, to a YAML file for editing. Without a path the file goes to the user config directory.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := targetPath(args)
			if err != nil {
				return err
			}
			if err := settings.SaveAs(path); err != nil {
				return err
			}
			fmt.Printf("configuration written to %s\n", path)
			return nil
		},
	}
}

// targetPath resolves the output file: an explicit argument wins, otherwise
// the last default config search path (the user config directory).
func targetPath(args []string) (string, error) {
	if len(args) == 1 {
		return args[0], nil
	}
	paths, err := conf.GetDefaultConfigPaths()
	if err != nil {
		return "", fmt.Errorf("config: cannot determine config path: %w", err)
	}
	return filepath.Join(paths[len(paths)-1], "config.yaml"), nil
}
