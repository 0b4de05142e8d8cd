package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/knaughts/internal/flagx"
	"github.com/dmitrijs2005/knaughts/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Absent fields
// leave the corresponding Config value untouched.
type JsonConfig struct {
	BaseURL         string         `json:"base_url"`
	Identity        string         `json:"identity"`
	AuthCollection  string         `json:"auth_collection"`
	RefreshInterval timex.Duration `json:"refresh_interval"`
	RequestTimeout  timex.Duration `json:"request_timeout"`
	SessionTimeout  timex.Duration `json:"session_timeout"`
	HealthAddr      *string        `json:"health_addr"`
	LogFormat       string         `json:"log_format"`
	Debug           *bool          `json:"debug"`
	KeySalt         string         `json:"key_salt"`
	ButtonNamespace string         `json:"button_namespace"`
	ImageLogo       string         `json:"image_logo"`
	ImageQuestion   string         `json:"image_question"`
	ImageSad        string         `json:"image_sad"`
}

// parseJson overlays Config with values loaded from the JSON file given via
// -c or -config. Panics on read or unmarshal errors.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	overlay(&cfg.BaseURL, jc.BaseURL)
	overlay(&cfg.Identity, jc.Identity)
	overlay(&cfg.AuthCollection, jc.AuthCollection)
	overlay(&cfg.LogFormat, jc.LogFormat)
	overlay(&cfg.KeySalt, jc.KeySalt)
	overlay(&cfg.ButtonNamespace, jc.ButtonNamespace)
	overlay(&cfg.ImageLogo, jc.ImageLogo)
	overlay(&cfg.ImageQuestion, jc.ImageQuestion)
	overlay(&cfg.ImageSad, jc.ImageSad)

	if jc.RefreshInterval.Duration != 0 {
		cfg.RefreshInterval = jc.RefreshInterval.Duration
	}
	if jc.RequestTimeout.Duration != 0 {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
	if jc.SessionTimeout.Duration != 0 {
		cfg.SessionTimeout = jc.SessionTimeout.Duration
	}
	// an explicit "" disables the health endpoint
	if jc.HealthAddr != nil {
		cfg.HealthAddr = *jc.HealthAddr
	}
	if jc.Debug != nil {
		cfg.Debug = *jc.Debug
	}
}

func overlay(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
