// Package serve implements the serve subcommand.
package serve

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/soundguard/soundguard-go/internal/conf"
	"github.com/soundguard/soundguard-go/internal/server"
)

// Command creates the serve command, which runs the monitoring service.
func Command(settings *conf.Settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the safety monitoring service",
		Long:  "Start the HTTP API, the analysis pipeline and the alert fan-out, and block until interrupted.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return server.Run(settings)
		},
	}

	if err := setupFlags(cmd, settings); err != nil {
		fmt.Printf("error setting up flags: %v\n", err)
		os.Exit(1)
	}

	return cmd
}

// setupFlags configures flags specific to the serve command.
func setupFlags(cmd *cobra.Command, settings *conf.Settings) error {
	cmd.Flags().StringVar(&settings.WebServer.Port, "port", viper.GetString("webserver.port"), "Port for the HTTP API")
	cmd.Flags().StringVar(&settings.ML.URL, "mlurl", viper.GetString("ml.url"), "Base URL of the ML classification service")
	cmd.Flags().BoolVar(&settings.Realtime.Telemetry.Enabled, "telemetry", viper.GetBool("realtime.telemetry.enabled"), "Expose the Prometheus metrics endpoint")
	cmd.Flags().BoolVar(&settings.Realtime.MQTT.Enabled, "mqtt", viper.GetBool("realtime.mqtt.enabled"), "Publish danger events to MQTT")
	cmd.Flags().StringVar(&settings.Storage.UploadPath, "uploadpath", viper.GetString("storage.uploadpath"), "Directory for uploaded audio clips")

	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return fmt.Errorf("error binding flags: %v", err)
	}

	return nil
}
