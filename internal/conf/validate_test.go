package conf

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validSettings() *Settings {
	s := &Settings{}
	s.ML = MLConfig{URL: "http://localhost:5000", Timeout: 15 * time.Second, MaxRetries: 3}
	s.WebServer.Enabled = true
	s.WebServer.Port = "8080"
	s.Output.SQLite.Enabled = true
	s.Output.SQLite.Path = "soundguard.db"
	s.Analysis.FanoutWorkers = 8
	s.Analysis.DefaultSampleRate = 16000
	return s
}

func TestValidateSettings_Valid(t *testing.T) {
	require.NoError(t, ValidateSettings(validSettings()))
}

func TestValidateSettings_MLURL(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		wantErr bool
	}{
		{"http", "http://ml:5000", false},
		{"https", "https://ml.example.com", false},
		{"empty", "", true},
		{"no_scheme", "ml:5000", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := validSettings()
			s.ML.URL = tt.url
			err := ValidateSettings(s)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateSettings_WebServerPort(t *testing.T) {
	s := validSettings()
	s.WebServer.Port = "not-a-port"
	assert.Error(t, ValidateSettings(s))

	s.WebServer.Port = "70000"
	assert.Error(t, ValidateSettings(s))

	// Port is not validated when the web server is disabled
	s.WebServer.Enabled = false
	assert.NoError(t, ValidateSettings(s))
}

func TestValidateSettings_DatabaseSelection(t *testing.T) {
	s := validSettings()
	s.Output.MySQL.Enabled = true
	assert.Error(t, ValidateSettings(s), "both databases enabled")

	s.Output.SQLite.Enabled = false
	assert.NoError(t, ValidateSettings(s), "mysql only")

	s.Output.MySQL.Enabled = false
	assert.Error(t, ValidateSettings(s), "no database enabled")
}

func TestValidateSettings_Fixups(t *testing.T) {
	s := validSettings()
	s.Analysis.FanoutWorkers = 0
	s.Analysis.DefaultSampleRate = -1
	s.ML.MaxRetries = 0

	require.NoError(t, ValidateSettings(s))
	assert.Equal(t, 1, s.Analysis.FanoutWorkers)
	assert.Equal(t, 16000, s.Analysis.DefaultSampleRate)
	assert.Equal(t, 1, s.ML.MaxRetries)
}

func TestGenerateRandomSecret(t *testing.T) {
	a := GenerateRandomSecret()
	b := GenerateRandomSecret()
	assert.NotEmpty(t, a)
	assert.NotEqual(t, a, b)
}
