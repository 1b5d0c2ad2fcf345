package conf

import (
	"crypto/rand"
	"encoding/base64"
	"time"

	"github.com/spf13/viper"
)

// setDefaultConfig registers the default value for every configuration key.
func setDefaultConfig() {
	viper.SetDefault("debug", false)

	// Main
	viper.SetDefault("main.name", "SoundGuard-Go")
	viper.SetDefault("main.basepath", ".")

	// ML inference service
	viper.SetDefault("ml.url", "http://localhost:5000")
	viper.SetDefault("ml.timeout", 15*time.Second)
	viper.SetDefault("ml.maxretries", 3)

	// Analysis pipeline
	viper.SetDefault("analysis.defaultzone", "A동 1층")
	viper.SetDefault("analysis.defaultarea", "프레스 구역")
	viper.SetDefault("analysis.fanoutworkers", 8)
	viper.SetDefault("analysis.defaultsamplerate", 16000)

	// Web server
	viper.SetDefault("webserver.enabled", true)
	viper.SetDefault("webserver.port", "8080")
	viper.SetDefault("webserver.debug", false)

	// Security
	viper.SetDefault("security.tokenexpiry", 24*time.Hour)

	// Database output
	viper.SetDefault("output.sqlite.enabled", true)
	viper.SetDefault("output.sqlite.path", "soundguard.db")
	viper.SetDefault("output.mysql.enabled", false)
	viper.SetDefault("output.mysql.username", "soundguard")
	viper.SetDefault("output.mysql.password", "soundguard")
	viper.SetDefault("output.mysql.database", "soundguard")
	viper.SetDefault("output.mysql.host", "localhost")
	viper.SetDefault("output.mysql.port", "3306")

	// MQTT side channel
	viper.SetDefault("realtime.mqtt.enabled", false)
	viper.SetDefault("realtime.mqtt.broker", "tcp://localhost:1883")
	viper.SetDefault("realtime.mqtt.topic", "soundguard/events")
	viper.SetDefault("realtime.mqtt.retain", false)

	// Telemetry
	viper.SetDefault("realtime.telemetry.enabled", true)

	// Notifications
	viper.SetDefault("notification.debug", false)
	viper.SetDefault("notification.pushurls", []string{})

	// Storage
	viper.SetDefault("storage.uploadpath", "clips")
}

// GenerateRandomSecret returns a URL-safe random string suitable for use as
// a JWT signing secret.
func GenerateRandomSecret() string {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		// rand.Read only fails when the OS entropy source is broken, in
		// which case the process cannot do anything security related.
		panic("failed to generate random secret: " + err.Error())
	}
	return base64.RawURLEncoding.EncodeToString(bytes)
}
