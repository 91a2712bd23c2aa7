package configuration

import (
	"os"
	"time"

	"github.com/markusressel/pidctl/internal/ui"
	"github.com/mitchellh/go-homedir"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

type Configuration struct {
	DbPath string `json:"dbPath"`

	// PlantTickRate is the interval at which simulated plants are advanced
	PlantTickRate time.Duration `json:"plantTickRate"`
	// LoopTickRate is the default interval between two updates of a control loop
	LoopTickRate time.Duration `json:"loopTickRate"`

	// TraceSize is the maximum number of samples recorded per loop
	TraceSize int `json:"traceSize"`
	// ErrorWindowSize is the number of samples used for error statistics
	ErrorWindowSize int `json:"errorWindowSize"`

	Statistics StatisticsConfig `json:"statistics"`
	Api        ApiConfig        `json:"api"`
	Profiling  ProfilingConfig  `json:"profiling"`

	Plants []PlantConfig `json:"plants"`
	Loops  []LoopConfig  `json:"loops"`
}

var CurrentConfig Configuration

// InitConfig reads in config file and ENV variables if set.
func InitConfig(cfgFile string) {
	viper.SetConfigName("pidctl")

	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := homedir.Dir()
		if err != nil {
			ui.Error("Couldn't detect home directory: %v", err)
			os.Exit(1)
		}

		viper.AddConfigPath(".")
		viper.AddConfigPath(home)
		viper.AddConfigPath("/etc/pidctl/")
	}

	viper.AutomaticEnv() // read in environment variables that match

	setDefaultValues()
}

func setDefaultValues() {
	viper.SetDefault("dbpath", "/etc/pidctl/pidctl.db")
	viper.SetDefault("PlantTickRate", 10*time.Millisecond)
	viper.SetDefault("LoopTickRate", 20*time.Millisecond)
	viper.SetDefault("TraceSize", 500)
	viper.SetDefault("ErrorWindowSize", 50)

	viper.SetDefault("statistics.enabled", false)
	viper.SetDefault("statistics.port", 9000)

	viper.SetDefault("api.enabled", false)
	viper.SetDefault("api.host", "localhost")
	viper.SetDefault("api.port", 9001)

	viper.SetDefault("profiling.enabled", false)
	viper.SetDefault("profiling.host", "localhost")
	viper.SetDefault("profiling.port", 6060)

	viper.SetDefault("plants", []PlantConfig{})
	viper.SetDefault("loops", []LoopConfig{})
}

// DetectAndReadConfigFile reads the configuration file and returns its path
func DetectAndReadConfigFile() string {
	if err := viper.ReadInConfig(); err != nil {
		// config file is required, so we fail here
		ui.Fatal("Error reading config file, %s", err)
	}
	// this is only populated _after_ ReadInConfig()
	return viper.ConfigFileUsed()
}

// LoadConfig decodes the current viper state into CurrentConfig
func LoadConfig() {
	err := viper.Unmarshal(&CurrentConfig, viper.DecodeHook(decodeHooks()))
	if err != nil {
		ui.Fatal("unable to decode into struct, %v", err)
	}
}

func decodeHooks() mapstructure.DecodeHookFunc {
	return mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
		OptionalFloatHookFunc(),
		DefaultTrueBoolHookFunc(),
	)
}
