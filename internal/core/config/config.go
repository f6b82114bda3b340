package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/spf13/viper"
)

// AppConfig holds the configuration for the application.
// Tags used:
// - mapstructure: used by viper to unmarshal
// - default: default value to set if missing
// - required: if "true", error if missing
type AppConfig struct {
	// Environment specifies the runtime environment (e.g., development, production).
	Environment string `mapstructure:"APP_ENV" default:"development"`
	// LogLevel defines the logging verbosity (e.g., debug, info, error).
	LogLevel string `mapstructure:"LOG_LEVEL" default:"info"`
	// ServerPort is the port where the console API will listen.
	ServerPort int `mapstructure:"SERVER_PORT" default:"8080"`

	// OrdersAPI holds the upstream order REST API configuration.
	OrdersAPI OrdersAPIConfig `mapstructure:",squash"`

	// Push holds the push channel configuration.
	Push PushConfig `mapstructure:",squash"`

	// Redis holds the cache connection used for stock alerts.
	Redis RedisConfig `mapstructure:",squash"`

	// Kafka holds the ledger event stream configuration.
	Kafka KafkaConfig `mapstructure:",squash"`

	// Pricing holds the pricing engine defaults.
	Pricing PricingConfig `mapstructure:",squash"`

	// Stock holds the low-stock alert settings.
	Stock StockConfig `mapstructure:",squash"`
}

// OrdersAPIConfig holds the connection details of the upstream order API.
type OrdersAPIConfig struct {
	// URL is the base URL of the order API (e.g., https://api.example.com).
	URL string `mapstructure:"ORDERS_API_URL" required:"true"`
	// Token is the bearer token sent with every request.
	Token string `mapstructure:"ORDERS_API_TOKEN"`
	// TimeoutSeconds bounds a single round trip.
	TimeoutSeconds int `mapstructure:"ORDERS_API_TIMEOUT_SECONDS" default:"10"`
}

// PushConfig holds the push channel endpoint.
type PushConfig struct {
	// URL is the websocket endpoint delivering order events. Empty disables the channel.
	URL string `mapstructure:"PUSH_URL"`
	// ReconnectSeconds is the delay between reconnection attempts.
	ReconnectSeconds int `mapstructure:"PUSH_RECONNECT_SECONDS" default:"3"`
}

// RedisConfig holds the Redis connection URL.
type RedisConfig struct {
	// URL follows redis://[:password@]host[:port][/database].
	URL string `mapstructure:"REDIS_URL" default:"redis://localhost:6379/0"`
}

// KafkaConfig holds the broker list for ledger events.
type KafkaConfig struct {
	// Brokers is a comma separated broker list. Empty disables publishing.
	Brokers string `mapstructure:"KAFKA_BROKERS"`
	// LedgerTopic is the topic receiving payment and refund events.
	LedgerTopic string `mapstructure:"KAFKA_LEDGER_TOPIC" default:"ledger-events"`
}

// BrokerList splits Brokers into individual addresses.
func (k KafkaConfig) BrokerList() []string {
	var brokers []string
	for _, b := range strings.Split(k.Brokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}

// PricingConfig holds the defaults applied when an order is priced.
type PricingConfig struct {
	// GSTRate is the tax percentage applied to the discounted subtotal.
	GSTRate float64 `mapstructure:"GST_RATE" default:"18"`
	// DeliveryCharges is the base delivery fee.
	DeliveryCharges float64 `mapstructure:"DELIVERY_CHARGES" default:"30"`
	// SurgeCharges is the base surge fee used when surge is enabled.
	SurgeCharges float64 `mapstructure:"SURGE_CHARGES" default:"20"`
	// SurgeEnabled turns surge pricing on for new orders.
	SurgeEnabled bool `mapstructure:"SURGE_ENABLED"`
	// EliteFreeDeliveryThreshold is the subtotal from which elite members get free delivery.
	EliteFreeDeliveryThreshold float64 `mapstructure:"ELITE_FREE_DELIVERY_THRESHOLD" default:"349"`
}

// StockConfig holds the low-stock alert settings.
type StockConfig struct {
	// LowStockThreshold is the stock level at or below which an alert is raised.
	LowStockThreshold int `mapstructure:"LOW_STOCK_THRESHOLD" default:"5"`
	// AlertTTLSeconds expires alerts that are never cleared. 0 keeps them until cleared.
	AlertTTLSeconds int `mapstructure:"STOCK_ALERT_TTL_SECONDS" default:"86400"`
}

// IsProduction reports whether the application runs in production mode.
func (c *AppConfig) IsProduction() bool {
	return c.Environment == "production"
}

// Load loads configuration from .env files and environment variables.
func Load(path string) (*AppConfig, error) {
	v := viper.New()

	v.AutomaticEnv()

	v.AddConfigPath(path)
	v.SetConfigName(".env")
	v.SetConfigType("env")

	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config AppConfig

	if err := processTags(v, &config); err != nil {
		return nil, err
	}

	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}

	if err := validateRequired(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// processTags iterates over the struct fields and sets default values in Viper.
func processTags(v *viper.Viper, config interface{}) error {
	val := reflect.ValueOf(config)
	if val.Kind() == reflect.Ptr {
		val = val.Elem()
	}

	t := val.Type()

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)

		if field.Type.Kind() == reflect.Struct {
			if err := processTags(v, val.Field(i).Addr().Interface()); err != nil {
				return err
			}
			continue
		}

		key := field.Tag.Get("mapstructure")
		defaultValue := field.Tag.Get("default")

		if key != "" {
			if err := v.BindEnv(key); err != nil {
				return fmt.Errorf("failed to bind %s: %w", key, err)
			}
		}

		if key != "" && defaultValue != "" {
			v.SetDefault(key, defaultValue)
		}
	}
	return nil
}

// validateRequired checks if fields marked as required have non-zero values.
func validateRequired(config interface{}) error {
	val := reflect.ValueOf(config)
	if val.Kind() == reflect.Ptr {
		val = val.Elem()
	}

	t := val.Type()

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)

		if field.Type.Kind() == reflect.Struct {
			if err := validateRequired(val.Field(i).Addr().Interface()); err != nil {
				return err
			}
			continue
		}

		if field.Tag.Get("required") == "true" && isZero(val.Field(i)) {
			return fmt.Errorf("missing required configuration: %s", field.Tag.Get("mapstructure"))
		}
	}
	return nil
}

// isZero checks if a reflect.Value is the zero value for its type.
func isZero(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.String:
		return v.String() == ""
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int() == 0
	case reflect.Float32, reflect.Float64:
		return v.Float() == 0
	case reflect.Bool:
		return !v.Bool()
	default:
		return v.IsZero()
	}
}
