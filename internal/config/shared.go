package config

import (
	"log"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Server struct {
		Addr        string `mapstructure:"addr"`
		MetricsAddr string `mapstructure:"metrics_addr"`
		LogLevel    string `mapstructure:"log_level"`
	} `mapstructure:"server"`
	Store struct {
		DataFile string `mapstructure:"data_file"`
		SeedFile string `mapstructure:"seed_file"`
	} `mapstructure:"store"`
	Uploads struct {
		// Provider selects the upload backend: "local" or "s3".
		Provider string `mapstructure:"provider"`
		LocalDir string `mapstructure:"local_dir"`
		Bucket   string `mapstructure:"bucket"`
		Endpoint string `mapstructure:"endpoint"`
		Region   string `mapstructure:"region"`
		KeyID    string `mapstructure:"key_id"`
		AppKey   string `mapstructure:"app_key"`
	} `mapstructure:"uploads"`
}

func Load() *Config {
	viper.SetEnvPrefix("NOTES")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Register keys
	viper.BindEnv("server.addr")
	viper.BindEnv("server.metrics_addr")
	viper.BindEnv("server.log_level")
	viper.BindEnv("store.data_file")
	viper.BindEnv("store.seed_file")
	viper.BindEnv("uploads.provider")
	viper.BindEnv("uploads.local_dir")
	viper.BindEnv("uploads.bucket")
	viper.BindEnv("uploads.endpoint")
	viper.BindEnv("uploads.region")
	viper.BindEnv("uploads.key_id")
	viper.BindEnv("uploads.app_key")

	// Defaults
	viper.SetDefault("server.addr", ":8080")
	viper.SetDefault("server.metrics_addr", ":9091")
	viper.SetDefault("server.log_level", "info")
	viper.SetDefault("store.data_file", "./data/notes.json")
	viper.SetDefault("uploads.provider", "local")
	viper.SetDefault("uploads.local_dir", "./data/uploads")

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("../")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Printf("Warning: Config error: %s", err)
		} else {
			log.Println("Info: config.yaml not found, using Environment Variables only.")
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		log.Fatalf("Unable to decode config: %v", err)
	}

	if cfg.Uploads.Provider == "s3" && cfg.Uploads.KeyID == "" {
		log.Fatal("Critical: S3 KeyID is missing (NOTES_UPLOADS_KEY_ID)")
	}

	return &cfg
}
