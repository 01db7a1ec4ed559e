package appconfig

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	StorageMongo  = "mongo"
	StorageMemory = "memory"
)

type AppConfig struct {
	HttpPort       string        `mapstructure:"http_port"`
	GrpcPort       string        `mapstructure:"grpc_port"`
	LogLevel       string        `mapstructure:"log_level"`
	AllowedOrigins []string      `mapstructure:"allowed_origins"`
	StorageType    string        `mapstructure:"storage_type"`
	MongoURI       string        `mapstructure:"mongo_uri"`
	MongoDatabase  string        `mapstructure:"mongo_database"`
	AdminPassword  string        `mapstructure:"admin_password"`
	AccessSecret   string        `mapstructure:"access_secret"`
	SessionTTL     time.Duration `mapstructure:"session_ttl"`

	ImageBucket        string `mapstructure:"image_bucket"`
	ImageRegion        string `mapstructure:"image_region"`
	ImageEndpoint      string `mapstructure:"image_endpoint"`
	ImageAccessKeyId   string `mapstructure:"image_access_key_id"`
	ImageSecretKey     string `mapstructure:"image_secret_key"`
	ImagePublicBaseURL string `mapstructure:"image_public_base_url"`
	AmqpURL            string `mapstructure:"amqp_url"`
	NotificationQueue  string `mapstructure:"notification_queue"`
}

var defaults = map[string]interface{}{
	"http_port":             ":8081",
	"grpc_port":             ":50051",
	"log_level":             "info",
	"allowed_origins":       "*",
	"storage_type":          StorageMongo,
	"mongo_uri":             "mongodb://localhost:27017",
	"mongo_database":        "summit",
	"admin_password":        "",
	"access_secret":         "",
	"session_ttl":           "12h",
	"image_bucket":          "",
	"image_region":          "us-east-1",
	"image_endpoint":        "",
	"image_access_key_id":   "",
	"image_secret_key":      "",
	"image_public_base_url": "",
	"amqp_url":              "",
	"notification_queue":    "summit-notifications",
}

// LoadAppConfig reads configuration from the environment. envFiles are loaded
// first when present; variables already set in the process win.
func LoadAppConfig(envFiles ...string) (*AppConfig, error) {
	for _, f := range envFiles {
		// missing .env files are fine, the process environment may carry everything.
		_ = godotenv.Load(f)
	}

	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	config := &AppConfig{}
	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("unable to decode into config struct: %w", err)
	}
	config.AllowedOrigins = splitOrigins(config.AllowedOrigins)

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func (c *AppConfig) Validate() error {
	switch c.StorageType {
	case StorageMongo, StorageMemory:
	default:
		return fmt.Errorf("unknown storage type %q", c.StorageType)
	}
	if strings.TrimSpace(c.AdminPassword) == "" {
		return fmt.Errorf("ADMIN_PASSWORD is required")
	}
	if len(c.AccessSecret) < 16 {
		return fmt.Errorf("ACCESS_SECRET must be at least 16 characters")
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive, got %s", c.SessionTTL)
	}
	return nil
}

func splitOrigins(raw []string) []string {
	origins := make([]string, 0, len(raw))
	for _, r := range raw {
		for _, o := range strings.Split(r, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
	}
	return origins
}
