// Package realtime starts the live plate scanning mode.
package realtime

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/platewatch/platewatch-go/internal/analysis"
	"github.com/platewatch/platewatch-go/internal/conf"
	"github.com/platewatch/platewatch-go/internal/frame"
)

var (
	replayDir  string
	replayRate time.Duration
	replayLoop bool
)

// Command creates the realtime analysis command.
func Command(settings *conf.Settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "realtime",
		Short: "Analyze a video feed in realtime mode",
		Long:  "Start scanning incoming frames in real-time looking for license plates.",
		RunE: func(cmd *cobra.Command, args []string) error {
			source, err := frame.NewReplaySource(replayDir, replayRate, replayLoop)
			if err != nil {
				return err
			}
			return analysis.RealtimeAnalysis(settings, source)
		},
	}

	if err := setupFlags(cmd, settings); err != nil {
		fmt.Printf("error setting up flags: %v\n", err)
		os.Exit(1)
	}
	return cmd
}

// setupFlags configures flags specific to the realtime command.
func setupFlags(cmd *cobra.Command, settings *conf.Settings) error {
	cmd.Flags().StringVar(&replayDir, "source", ".", "Directory of frames to replay as the camera feed")
	cmd.Flags().DurationVar(&replayRate, "framerate", 33*time.Millisecond, "Replay interval between frames")
	cmd.Flags().BoolVar(&replayLoop, "loop", true, "Restart the replay from the first frame at the end")
	cmd.Flags().DurationVar(&settings.Realtime.MinInterval, "mininterval", viper.GetDuration("realtime.mininterval"), "Minimum pause between admitted frames")
	cmd.Flags().DurationVar(&settings.Realtime.RetentionWindow, "retention", viper.GetDuration("realtime.retentionwindow"), "How long a stale result may be re-reported")
	cmd.Flags().BoolVar(&settings.Realtime.ProcessingTime, "processingtime", viper.GetBool("realtime.processingtime"), "Report processing time for each frame")
	cmd.Flags().BoolVar(&settings.Realtime.Telemetry.Enabled, "telemetry", viper.GetBool("realtime.telemetry.enabled"), "Enable Prometheus telemetry endpoint")
	cmd.Flags().StringVar(&settings.Realtime.Telemetry.Listen, "listen", viper.GetString("realtime.telemetry.listen"), "Listen address and port of telemetry endpoint")

	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return fmt.Errorf("error binding flags: %v", err)
	}
	return nil
}
