package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Bus backends.
const (
	BusEventGrid = "eventgrid"
	BusKafka     = "kafka"
	BusMQTT      = "mqtt"
	BusLog       = "log"
)

// Warehouse position used when none is configured.
const (
	DefaultWarehouseLatitude  = 39.91344
	DefaultWarehouseLongitude = -8.43924
)

// Config is read from the environment and an optional .env file.
type Config struct {
	HTTPPort string
	LogLevel string

	BusBackend string
	// TopicPrefix is prepended to the logical topic names for Kafka and MQTT.
	TopicPrefix string
	// DeadLetterTopic enables dead-lettering. It is the physical topic name, or
	// the endpoint URL for Event Grid.
	DeadLetterTopic string

	EventGridOrdersEndpoint    string
	EventGridOrdersKey         string
	EventGridWarehouseEndpoint string
	EventGridWarehouseKey      string
	EventGridTrackingEndpoint  string
	EventGridTrackingKey       string
	EventGridDeadLetterKey     string

	KafkaHost          string
	KafkaConsumerGroup string
	// KafkaConsume subscribes the stages to Kafka next to the webhook.
	KafkaConsume bool

	MQTTBroker   string
	MQTTClientID string

	AzureMapsKey     string
	AzureMapsBaseURL string
	HTTPTimeout      time.Duration

	RedisAddr       string
	RedisPassword   string
	RedisDB         int
	GeocodeCacheTTL time.Duration

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSslMode  string

	// InventoryFile is the YAML stock seed. Empty uses the embedded default.
	InventoryFile string
	// InventoryRefreshSchedule is a six-field cron expression for reloading stock.
	InventoryRefreshSchedule string

	WarehouseLatitude  float64
	WarehouseLongitude float64
	// WaypointCount caps the sampled waypoints per delivery.
	WaypointCount int
	// PacingInterval is the wait between two tracking events.
	PacingInterval time.Duration
}

// DeadLetterEnabled reports whether failed stage events are republished.
func (c Config) DeadLetterEnabled() bool {
	return c.DeadLetterTopic != ""
}

// UsesDatabase reports whether stock lives in PostgreSQL.
func (c Config) UsesDatabase() bool {
	return c.DBHost != ""
}

// LoadConfig reads .env when present and then the environment.
func LoadConfig() (Config, error) {
	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	return configFromEnv()
}

func configFromEnv() (Config, error) {
	p := envParser{}

	cfg := Config{
		HTTPPort: p.str("HTTP_PORT", "8080"),
		LogLevel: p.str("LOG_LEVEL", "info"),

		BusBackend:      strings.ToLower(p.str("BUS_BACKEND", BusLog)),
		TopicPrefix:     p.str("TOPIC_PREFIX", "orderflow"),
		DeadLetterTopic: p.str("DEADLETTER_TOPIC", ""),

		EventGridOrdersEndpoint:    p.str("EVENTGRID_ORDERS_ENDPOINT", ""),
		EventGridOrdersKey:         p.str("EVENTGRID_ORDERS_KEY", ""),
		EventGridWarehouseEndpoint: p.str("EVENTGRID_WAREHOUSE_ENDPOINT", ""),
		EventGridWarehouseKey:      p.str("EVENTGRID_WAREHOUSE_KEY", ""),
		EventGridTrackingEndpoint:  p.str("EVENTGRID_TRACKING_ENDPOINT", ""),
		EventGridTrackingKey:       p.str("EVENTGRID_TRACKING_KEY", ""),
		EventGridDeadLetterKey:     p.str("EVENTGRID_DEADLETTER_KEY", ""),

		KafkaHost:          p.str("KAFKA_HOST", "localhost:9092"),
		KafkaConsumerGroup: p.str("KAFKA_CONSUMER_GROUP", "orderflow"),
		KafkaConsume:       p.boolean("KAFKA_CONSUME", false),

		MQTTBroker:   p.str("MQTT_BROKER", "tcp://localhost:1883"),
		MQTTClientID: p.str("MQTT_CLIENT_ID", "orderflow"),

		AzureMapsKey:     p.str("AZURE_MAPS_KEY", ""),
		AzureMapsBaseURL: p.str("AZURE_MAPS_BASE_URL", ""),
		HTTPTimeout:      p.duration("HTTP_CLIENT_TIMEOUT", 10*time.Second),

		RedisAddr:       p.str("REDIS_ADDR", ""),
		RedisPassword:   p.str("REDIS_PASSWORD", ""),
		RedisDB:         p.integer("REDIS_DB", 0),
		GeocodeCacheTTL: p.duration("GEOCODE_CACHE_TTL", 24*time.Hour),

		DBHost:     p.str("DB_HOST", ""),
		DBPort:     p.str("DB_PORT", "5432"),
		DBUser:     p.str("DB_USER", ""),
		DBPassword: p.str("DB_PASSWORD", ""),
		DBName:     p.str("DB_NAME", ""),
		DBSslMode:  p.str("DB_SSLMODE", "disable"),

		InventoryFile:            p.str("INVENTORY_FILE", ""),
		InventoryRefreshSchedule: p.str("INVENTORY_REFRESH_SCHEDULE", "0 */5 * * * *"),

		WarehouseLatitude:  p.float("WAREHOUSE_LATITUDE", DefaultWarehouseLatitude),
		WarehouseLongitude: p.float("WAREHOUSE_LONGITUDE", DefaultWarehouseLongitude),
		WaypointCount:      p.integer("WAYPOINT_COUNT", 9),
		PacingInterval:     p.duration("PACING_INTERVAL", 10*time.Second),
	}

	switch cfg.BusBackend {
	case BusLog, BusKafka, BusMQTT:
	case BusEventGrid:
		if cfg.EventGridOrdersEndpoint == "" || cfg.EventGridWarehouseEndpoint == "" ||
			cfg.EventGridTrackingEndpoint == "" {
			p.fail("EVENTGRID_*_ENDPOINT", errors.New("orders, warehouse and tracking endpoints are required"))
		}
	default:
		p.fail("BUS_BACKEND", fmt.Errorf("%q is not one of eventgrid, kafka, mqtt, log", cfg.BusBackend))
	}

	if err := p.err(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

type envParser struct {
	problems []error
}

func (p *envParser) fail(key string, err error) {
	p.problems = append(p.problems, fmt.Errorf("%s: %w", key, err))
}

func (p *envParser) err() error {
	return errors.Join(p.problems...)
}

func (p *envParser) str(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return fallback
}

func (p *envParser) integer(key string, fallback int) int {
	raw := p.str(key, "")
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		p.fail(key, err)
		return fallback
	}
	return v
}

func (p *envParser) float(key string, fallback float64) float64 {
	raw := p.str(key, "")
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		p.fail(key, err)
		return fallback
	}
	return v
}

func (p *envParser) boolean(key string, fallback bool) bool {
	raw := p.str(key, "")
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		p.fail(key, err)
		return fallback
	}
	return v
}

func (p *envParser) duration(key string, fallback time.Duration) time.Duration {
	raw := p.str(key, "")
	if raw == "" {
		return fallback
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		p.fail(key, err)
		return fallback
	}
	return v
}
