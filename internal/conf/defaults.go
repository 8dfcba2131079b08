package conf

import (
	"time"

	"github.com/spf13/viper"
)

// setDefaultConfig sets the default values in viper. Any value may be
// overridden by the config file, environment, or command line flags.
func setDefaultConfig() {
	viper.SetDefault("debug", false)

	viper.SetDefault("main.name", "PlateWatch")
	viper.SetDefault("main.log.enabled", true)
	viper.SetDefault("main.log.path", "platewatch.log")
	viper.SetDefault("main.log.level", "info")

	viper.SetDefault("platenet.platemodelpath", "model/plate_detect_fp32.tflite")
	viper.SetDefault("platenet.charmodelpath", "model/char_classify_fp32.tflite")
	viper.SetDefault("platenet.threads", 0)
	viper.SetDefault("platenet.usexnnpack", true)
	viper.SetDefault("platenet.thresholds.file", 0.25)
	viper.SetDefault("platenet.thresholds.video", 0.50)
	viper.SetDefault("platenet.thresholds.capture", 0.60)
	viper.SetDefault("platenet.ocrthreshold", 0.40)
	viper.SetDefault("platenet.iouthreshold", 0.45)
	viper.SetDefault("platenet.croppadding", 0.05)
	viper.SetDefault("platenet.gapratio", 1.8)

	viper.SetDefault("realtime.mininterval", 100*time.Millisecond)
	viper.SetDefault("realtime.retentionwindow", 800*time.Millisecond)
	viper.SetDefault("realtime.processingtime", false)

	viper.SetDefault("realtime.capture.minconfidence", 0.65)
	viper.SetDefault("realtime.capture.minplateareafraction", 0.02)
	viper.SetDefault("realtime.capture.maxcentremovefraction", 0.08)
	viper.SetDefault("realtime.capture.maxareachangefraction", 0.25)
	viper.SetDefault("realtime.capture.requiredstableframes", 3)

	viper.SetDefault("realtime.stabilizer.confirmationthreshold", 3)

	viper.SetDefault("realtime.telemetry.enabled", false)
	viper.SetDefault("realtime.telemetry.listen", "0.0.0.0:8090")

	viper.SetDefault("sentry.enabled", false)
	viper.SetDefault("sentry.dsn", "")
}
