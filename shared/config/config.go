package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"
	StoragePebble   = "pebble"
)

type Config struct {
	Gateway        GatewayConfig
	Validator      ValidatorConfig
	Storage        StorageConfig
	Redis          RedisConfig
	Kafka          KafkaConfig
	CircuitBreaker CircuitBreakerConfig
	Tracing        TracingConfig
	Metrics        MetricsConfig
}

type GatewayConfig struct {
	Address                   string
	LogLevel                  string
	LogJSON                   bool
	ShutdownTimeout           time.Duration
	CheckRepositoryDuplicates bool
}

type ValidatorConfig struct {
	MaxOrderQty int64
	MaxPrice    decimal.Decimal
}

type StorageConfig struct {
	Driver     string
	DBURI      string
	DBMaxConns int32
	PebbleDir  string
}

type RedisConfig struct {
	Enabled           bool
	Address           string
	Password          string
	DB                int
	ConnectionTimeout time.Duration
	ClOrdIDTTL        time.Duration
}

type KafkaConfig struct {
	Enabled        bool
	Brokers        []string
	CommandTopic   string
	ResponseTopic  string
	ExecutionTopic string
	GroupID        string
}

type CircuitBreakerConfig struct {
	MaxRequests uint32
	Interval    time.Duration
	Timeout     time.Duration
	MaxFailures uint32
}

type TracingConfig struct {
	Enabled     bool
	Endpoint    string
	ServiceName string
	SampleRatio float64
}

type MetricsConfig struct {
	Address string
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("GATEWAY_ADDRESS", ":50051")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_JSON", true)
	v.SetDefault("SHUTDOWN_TIMEOUT", "10s")
	v.SetDefault("CHECK_REPOSITORY_DUPLICATES", true)

	v.SetDefault("VALIDATOR_MAX_ORDER_QTY", 999_999)
	v.SetDefault("VALIDATOR_MAX_PRICE", "999999.9999")

	v.SetDefault("STORAGE_DRIVER", StorageMemory)
	v.SetDefault("DB_MAX_CONNS", 10)
	v.SetDefault("PEBBLE_DIR", "./data/orders")

	v.SetDefault("REDIS_ENABLED", false)
	v.SetDefault("REDIS_ADDRESS", "localhost:6379")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("REDIS_CONNECTION_TIMEOUT", "500ms")
	v.SetDefault("REDIS_CLORDID_TTL", "24h")

	v.SetDefault("KAFKA_ENABLED", false)
	v.SetDefault("KAFKA_BROKERS", "localhost:9092")
	v.SetDefault("KAFKA_COMMAND_TOPIC", "order-gateway.commands")
	v.SetDefault("KAFKA_RESPONSE_TOPIC", "order-gateway.responses")
	v.SetDefault("KAFKA_EXECUTION_TOPIC", "order-gateway.executions")
	v.SetDefault("KAFKA_GROUP_ID", "order-gateway")

	v.SetDefault("CB_MAX_REQUESTS", 3)
	v.SetDefault("CB_INTERVAL", "10s")
	v.SetDefault("CB_TIMEOUT", "5s")
	v.SetDefault("CB_MAX_FAILURES", 5)

	v.SetDefault("TRACING_ENABLED", false)
	v.SetDefault("TRACING_ENDPOINT", "localhost:4317")
	v.SetDefault("TRACING_SERVICE_NAME", "order-gateway")
	v.SetDefault("TRACING_SAMPLE_RATIO", 1.0)

	v.SetDefault("METRICS_ADDRESS", ":9090")
}

// Load reads envPath as a dotenv file when it exists, then the process
// environment. Variables already set in the environment win.
func Load(envPath string) (*Config, error) {
	if envPath != "" {
		if err := godotenv.Load(envPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("godotenv.Load: %w", err)
		}
	}

	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)

	maxPrice, err := decimal.NewFromString(v.GetString("VALIDATOR_MAX_PRICE"))
	if err != nil {
		return nil, fmt.Errorf("VALIDATOR_MAX_PRICE: %w", err)
	}

	config := &Config{
		Gateway: GatewayConfig{
			Address:                   v.GetString("GATEWAY_ADDRESS"),
			LogLevel:                  v.GetString("LOG_LEVEL"),
			LogJSON:                   v.GetBool("LOG_JSON"),
			ShutdownTimeout:           v.GetDuration("SHUTDOWN_TIMEOUT"),
			CheckRepositoryDuplicates: v.GetBool("CHECK_REPOSITORY_DUPLICATES"),
		},
		Validator: ValidatorConfig{
			MaxOrderQty: v.GetInt64("VALIDATOR_MAX_ORDER_QTY"),
			MaxPrice:    maxPrice,
		},
		Storage: StorageConfig{
			Driver:     strings.ToLower(v.GetString("STORAGE_DRIVER")),
			DBURI:      v.GetString("DB_URI"),
			DBMaxConns: v.GetInt32("DB_MAX_CONNS"),
			PebbleDir:  v.GetString("PEBBLE_DIR"),
		},
		Redis: RedisConfig{
			Enabled:           v.GetBool("REDIS_ENABLED"),
			Address:           v.GetString("REDIS_ADDRESS"),
			Password:          v.GetString("REDIS_PASSWORD"),
			DB:                v.GetInt("REDIS_DB"),
			ConnectionTimeout: v.GetDuration("REDIS_CONNECTION_TIMEOUT"),
			ClOrdIDTTL:        v.GetDuration("REDIS_CLORDID_TTL"),
		},
		Kafka: KafkaConfig{
			Enabled:        v.GetBool("KAFKA_ENABLED"),
			Brokers:        splitList(v.GetString("KAFKA_BROKERS")),
			CommandTopic:   v.GetString("KAFKA_COMMAND_TOPIC"),
			ResponseTopic:  v.GetString("KAFKA_RESPONSE_TOPIC"),
			ExecutionTopic: v.GetString("KAFKA_EXECUTION_TOPIC"),
			GroupID:        v.GetString("KAFKA_GROUP_ID"),
		},
		CircuitBreaker: CircuitBreakerConfig{
			MaxRequests: v.GetUint32("CB_MAX_REQUESTS"),
			Interval:    v.GetDuration("CB_INTERVAL"),
			Timeout:     v.GetDuration("CB_TIMEOUT"),
			MaxFailures: v.GetUint32("CB_MAX_FAILURES"),
		},
		Tracing: TracingConfig{
			Enabled:     v.GetBool("TRACING_ENABLED"),
			Endpoint:    v.GetString("TRACING_ENDPOINT"),
			ServiceName: v.GetString("TRACING_SERVICE_NAME"),
			SampleRatio: v.GetFloat64("TRACING_SAMPLE_RATIO"),
		},
		Metrics: MetricsConfig{
			Address: v.GetString("METRICS_ADDRESS"),
		},
	}

	if err := config.validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func (c *Config) validate() error {
	switch c.Storage.Driver {
	case StorageMemory, StoragePebble:
	case StoragePostgres:
		if c.Storage.DBURI == "" {
			return errors.New("DB_URI is required for the postgres storage driver")
		}
	default:
		return fmt.Errorf("unknown STORAGE_DRIVER %q", c.Storage.Driver)
	}

	if c.Validator.MaxOrderQty < 1 {
		return fmt.Errorf("VALIDATOR_MAX_ORDER_QTY must be positive, got %d", c.Validator.MaxOrderQty)
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return errors.New("KAFKA_BROKERS is required when kafka is enabled")
	}

	return nil
}

func splitList(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
