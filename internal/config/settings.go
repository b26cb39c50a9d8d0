package config

import (
	_ "embed"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/charmbracelet/log"

	"whitegate/internal/support"
)

type Config struct {
	Paths struct {
		// AllowList is the generated human-readable whitelist file.
		AllowList string `json:"allow_list"`
		// LookupMap is the generated `<address> 1;` map fragment included by
		// the gateway's address lookup table.
		LookupMap string `json:"lookup_map"`
		// AccessLog is the gateway's append-only stream access log.
		AccessLog string `json:"access_log"`
		Database  string `json:"database"`
	} `json:"paths"`

	Reload struct {
		HelperPath     string `json:"helper_path"`
		TimeoutSeconds uint32 `json:"timeout_seconds"`
	} `json:"reload"`

	Auth struct {
		TokenTTLHours uint32 `json:"token_ttl_hours"`
	} `json:"auth"`

	Monitor struct {
		RefreshTimer Timer `json:"refresh_timer"`
	} `json:"monitor"`
}

type Timer struct {
	Days    uint32 `json:"days"`
	Hours   uint32 `json:"hours"`
	Minutes uint32 `json:"minutes"`
	Seconds uint32 `json:"seconds"`
}

const settingsFilePath = "data/settings.json"

var (
	//go:embed default_settings.json
	defaultConfig []byte

	configValue atomic.Value
	configMu    sync.Mutex
)

func init() {
	configValue.Store(Config{})
}

func ReadSettings() {
	data, err := os.ReadFile(settingsFilePath)
	if err != nil {
		if os.IsNotExist(err) {
			log.Warn("Settings file not found, creating with default configuration")

			if err := os.MkdirAll(filepath.Dir(settingsFilePath), os.ModePerm); err != nil {
				log.Error("Error creating directory for settings file:", err)
				return
			}

			if err := os.WriteFile(settingsFilePath, defaultConfig, os.ModePerm); err != nil {
				log.Error("Error writing default settings file:", err)
				return
			}

			data = defaultConfig
		} else {
			log.Error("Error reading settings file:", err)
			return
		}
	}

	var newConfig Config
	if err := json.Unmarshal(data, &newConfig); err != nil {
		log.Error("Error unmarshalling settings file:", err)
		return
	}

	applyEnvOverrides(&newConfig)
	applyConfigUpdate(newConfig, false)

	log.Debug("Settings file loaded successfully")
}

func SetConfig(newConfig Config) {
	applyConfigUpdate(newConfig, true)
	log.Debug("Configuration updated and written to file successfully")
}

func applyConfigUpdate(newConfig Config, persistToFile bool) {
	configMu.Lock()
	defer configMu.Unlock()

	configValue.Store(newConfig)
	SetRefreshInterval()

	if persistToFile {
		data, err := json.MarshalIndent(newConfig, "", "  ")
		if err != nil {
			log.Error("Error marshalling new configuration:", err)
			return
		}
		if err := os.WriteFile(settingsFilePath, data, os.ModePerm); err != nil {
			log.Error("Error writing new configuration to file:", err)
		}
	}
}

// applyEnvOverrides lets container deployments relocate the generated files
// and the access log without editing the settings file.
func applyEnvOverrides(cfg *Config) {
	cfg.Paths.AllowList = support.GetEnv("WHITELIST_PATH", cfg.Paths.AllowList)
	cfg.Paths.LookupMap = support.GetEnv("WHITELIST_MAP_PATH", cfg.Paths.LookupMap)
	cfg.Paths.AccessLog = support.GetEnv("ACCESS_LOG_PATH", cfg.Paths.AccessLog)
	cfg.Paths.Database = support.GetEnv("DB_PATH", cfg.Paths.Database)
	cfg.Reload.HelperPath = support.GetEnv("RELOAD_HELPER_PATH", cfg.Reload.HelperPath)

	if hours := support.GetEnvInt("JWT_EXPIRATION_HOURS", int(cfg.Auth.TokenTTLHours)); hours > 0 {
		cfg.Auth.TokenTTLHours = uint32(hours)
	}
}

func GetConfig() Config {
	return configValue.Load().(Config)
}
