package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

const envPrefix = "FEEDSYNC"

// Config holds all configuration for the application
type Config struct {
	Feed      FeedConfig      `mapstructure:"feed"`
	Transform TransformConfig `mapstructure:"transform"`
	Delivery  DeliveryConfig  `mapstructure:"delivery"`
	Fallback  FallbackConfig  `mapstructure:"fallback"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
	Log       LogConfig       `mapstructure:"log"`
}

// FeedConfig describes the source feed request
type FeedConfig struct {
	URL        string        `mapstructure:"url" validate:"required,url"`
	Timeout    time.Duration `mapstructure:"timeout" validate:"gt=0"`
	RetryCount int           `mapstructure:"retry_count" validate:"gte=0"`
	RetryWait  time.Duration `mapstructure:"retry_wait" validate:"gte=0"`
	UserAgent  string        `mapstructure:"user_agent"`
	Proxies    []string      `mapstructure:"proxies" validate:"dive,url"`
	CheckProxy bool          `mapstructure:"check_proxies"`
}

// TransformConfig tunes the output document
type TransformConfig struct {
	Indent       string `mapstructure:"indent"`
	VariantName1 string `mapstructure:"variant_name1" validate:"required"`
	VariantName2 string `mapstructure:"variant_name2" validate:"required"`
	SchemaPath   string `mapstructure:"schema_path"`
}

// DeliveryConfig is the FTP destination
type DeliveryConfig struct {
	Host       string        `mapstructure:"host" validate:"required"`
	Username   string        `mapstructure:"username" validate:"required"`
	Password   string        `mapstructure:"password" validate:"required"`
	RemotePath string        `mapstructure:"remote_path"`
	Filename   string        `mapstructure:"filename" validate:"required"`
	Timeout    time.Duration `mapstructure:"timeout" validate:"gt=0"`
	StagingDir string        `mapstructure:"staging_dir"`
}

// FallbackConfig is where the document goes when delivery fails.
// An empty Dir means the user's Desktop.
type FallbackConfig struct {
	Dir      string `mapstructure:"dir"`
	Filename string `mapstructure:"filename"`
}

// MetricsConfig enables pushing run metrics to a Prometheus Pushgateway
type MetricsConfig struct {
	PushgatewayURL string `mapstructure:"pushgateway_url" validate:"omitempty,url"`
	Job            string `mapstructure:"job" validate:"required"`
}

type LogConfig struct {
	Level  string `mapstructure:"level" validate:"oneof=trace debug info warn warning error fatal panic"`
	Format string `mapstructure:"format" validate:"oneof=text json"`
}

const (
	DefaultRemotePath = "/"
	DefaultFilename   = "products.xml"
)

// Load reads the YAML file at path, or config.yaml from the working
// directory when path is empty, with FEEDSYNC_* environment overrides.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
	}

	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	config.applyDerived()

	if err := Validate(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks a configuration struct, or any of its sections, against its tags.
func Validate(s any) error {
	if err := validate.Struct(s); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			msgs := make([]string, 0, len(fieldErrs))
			for _, fe := range fieldErrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("invalid configuration: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

func (c *Config) applyDerived() {
	if c.Delivery.RemotePath == "" {
		c.Delivery.RemotePath = DefaultRemotePath
	}
	if c.Fallback.Filename == "" {
		c.Fallback.Filename = c.Delivery.Filename
	}
}

func setDefaults(v *viper.Viper) {
	// Every key gets a default so AutomaticEnv can override it during Unmarshal.
	v.SetDefault("feed.url", "")
	v.SetDefault("feed.timeout", 60*time.Second)
	v.SetDefault("feed.retry_count", 0)
	v.SetDefault("feed.retry_wait", 2*time.Second)
	v.SetDefault("feed.user_agent", "feedsync/1.0")
	v.SetDefault("feed.proxies", []string{})
	v.SetDefault("feed.check_proxies", false)

	v.SetDefault("transform.indent", "")
	v.SetDefault("transform.variant_name1", "Renk")
	v.SetDefault("transform.variant_name2", "Beden")
	v.SetDefault("transform.schema_path", "")

	v.SetDefault("delivery.host", "")
	v.SetDefault("delivery.username", "")
	v.SetDefault("delivery.password", "")
	v.SetDefault("delivery.remote_path", DefaultRemotePath)
	v.SetDefault("delivery.filename", DefaultFilename)
	v.SetDefault("delivery.timeout", 30*time.Second)
	v.SetDefault("delivery.staging_dir", "")

	v.SetDefault("fallback.dir", "")
	v.SetDefault("fallback.filename", "")

	v.SetDefault("metrics.pushgateway_url", "")
	v.SetDefault("metrics.job", "feedsync")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}
