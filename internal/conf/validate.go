package conf

import (
	"strconv"
	"strings"

	"github.com/soundguard/soundguard-go/internal/errors"
)

// ValidateSettings checks the loaded configuration for values that would
// prevent the application from starting.
func ValidateSettings(settings *Settings) error {
	if err := validateMLConfig(&settings.ML); err != nil {
		return err
	}
	if err := validateWebServer(settings); err != nil {
		return err
	}
	if err := validateOutput(settings); err != nil {
		return err
	}
	if settings.Analysis.FanoutWorkers < 1 {
		settings.Analysis.FanoutWorkers = 1
	}
	if settings.Analysis.DefaultSampleRate <= 0 {
		settings.Analysis.DefaultSampleRate = 16000
	}
	return nil
}

func validateMLConfig(ml *MLConfig) error {
	if ml.URL == "" {
		return errors.Newf("ml.url must not be empty").
			Component("conf").
			Category(errors.CategoryConfiguration).
			Build()
	}
	if !strings.HasPrefix(ml.URL, "http://") && !strings.HasPrefix(ml.URL, "https://") {
		return errors.Newf("ml.url must be an http or https URL, got %q", ml.URL).
			Component("conf").
			Category(errors.CategoryConfiguration).
			Build()
	}
	if ml.MaxRetries < 1 {
		ml.MaxRetries = 1
	}
	return nil
}

func validateWebServer(settings *Settings) error {
	if !settings.WebServer.Enabled {
		return nil
	}
	port, err := strconv.Atoi(settings.WebServer.Port)
	if err != nil || port < 1 || port > 65535 {
		return errors.Newf("webserver.port must be a valid port number, got %q", settings.WebServer.Port).
			Component("conf").
			Category(errors.CategoryConfiguration).
			Build()
	}
	return nil
}

func validateOutput(settings *Settings) error {
	if settings.Output.SQLite.Enabled && settings.Output.MySQL.Enabled {
		return errors.Newf("only one database output can be enabled at a time").
			Component("conf").
			Category(errors.CategoryConfiguration).
			Build()
	}
	if !settings.Output.SQLite.Enabled && !settings.Output.MySQL.Enabled {
		return errors.Newf("one of output.sqlite or output.mysql must be enabled").
			Component("conf").
			Category(errors.CategoryConfiguration).
			Build()
	}
	if settings.Output.SQLite.Enabled && settings.Output.SQLite.Path == "" {
		return errors.Newf("output.sqlite.path must not be empty").
			Component("conf").
			Category(errors.CategoryConfiguration).
			Build()
	}
	return nil
}
