// internal/pkg/bootstrap/config.go
package bootstrap

import (
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	zlog "github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

// Config 是所有服务共享的配置结构，对应 YAML 配置文件。
type Config struct {
	App       AppConfig       `yaml:"app"`
	Infra     InfraConfig     `yaml:"infra"`
	Shipping  ShippingConfig  `yaml:"shipping"`
	Promotion PromotionConfig `yaml:"promotion"`
	Order     OrderConfig     `yaml:"order"`
}

type AppConfig struct {
	Name         string       `yaml:"name"`
	Port         int          `yaml:"port"`
	LogLevel     string       `yaml:"logLevel"`
	FeatureFlags FeatureFlags `yaml:"featureFlags"`
}

// FeatureFlags 运行时开关
type FeatureFlags struct {
	EnableRateCache       bool `yaml:"enableRateCache"`
	EnableBackOfficeRates bool `yaml:"enableBackOfficeRates"`
}

type InfraConfig struct {
	Jaeger    JaegerConfig    `yaml:"jaeger"`
	MySQL     MySQLConfig     `yaml:"mysql"`
	Redis     RedisConfig     `yaml:"redis"`
	Kafka     KafkaConfig     `yaml:"kafka"`
	Zookeeper ZookeeperConfig `yaml:"zookeeper"`
	Nacos     NacosConfig     `yaml:"nacos"`

	// Services 未启用 Nacos 时的静态服务地址，服务名 -> host:port
	Services map[string]string `yaml:"services"`
}

type JaegerConfig struct {
	Endpoint string `yaml:"endpoint"`
}

type MySQLConfig struct {
	Addr        string `yaml:"addr"`
	User        string `yaml:"user"`
	Password    string `yaml:"password"`
	Database    string `yaml:"database"`
	AutoMigrate bool   `yaml:"autoMigrate"`
}

type RedisConfig struct {
	Addrs string `yaml:"addrs"` // 逗号分隔，单节点或集群
}

type KafkaConfig struct {
	Brokers string `yaml:"brokers"`
}

// BrokerList 将逗号分隔的 broker 地址拆分为切片
func (k KafkaConfig) BrokerList() []string {
	return splitAndTrim(k.Brokers)
}

type ZookeeperConfig struct {
	Servers        string        `yaml:"servers"`
	SessionTimeout time.Duration `yaml:"sessionTimeout"`
}

// ServerList 将逗号分隔的 zk 地址拆分为切片
func (z ZookeeperConfig) ServerList() []string {
	return splitAndTrim(z.Servers)
}

type NacosConfig struct {
	Enabled     bool   `yaml:"enabled"`
	ServerAddrs string `yaml:"serverAddrs"`
	Namespace   string `yaml:"namespace"`
	Group       string `yaml:"group"`
}

type ShippingConfig struct {
	RateCacheTTL time.Duration `yaml:"rateCacheTTL"`
}

type PromotionConfig struct {
	LockTimeout  time.Duration `yaml:"lockTimeout"`
	EventsTopic  string        `yaml:"eventsTopic"`
	RequestTopic string        `yaml:"requestTopic"`
	DeadLetter   string        `yaml:"deadLetterTopic"`
	GroupID      string        `yaml:"groupID"`
}

// OrderConfig 结账流程配置
type OrderConfig struct {
	EventsTopic       string        `yaml:"eventsTopic"`
	ProcessingTimeout time.Duration `yaml:"processingTimeout"` // 单次结账的超时上限
}

var (
	currentConfig *Config
	configMu      sync.RWMutex
)

// DefaultConfig 返回本地开发使用的默认配置
func DefaultConfig() *Config {
	return &Config{
		App: AppConfig{
			LogLevel: "info",
			FeatureFlags: FeatureFlags{
				EnableRateCache:       true,
				EnableBackOfficeRates: true,
			},
		},
		Infra: InfraConfig{
			Jaeger:    JaegerConfig{Endpoint: "http://localhost:14268/api/traces"},
			MySQL:     MySQLConfig{Addr: "localhost:3306", User: "root", Database: "storefront"},
			Redis:     RedisConfig{Addrs: "localhost:6379"},
			Kafka:     KafkaConfig{Brokers: "localhost:9092"},
			Zookeeper: ZookeeperConfig{Servers: "localhost:2181", SessionTimeout: 10 * time.Second},
			Nacos:     NacosConfig{ServerAddrs: "localhost:8848", Group: "DEFAULT_GROUP"},
			Services: map[string]string{
				"shipping-service":  "localhost:8090",
				"promotion-service": "localhost:8091",
			},
		},
		Shipping: ShippingConfig{RateCacheTTL: 5 * time.Minute},
		Promotion: PromotionConfig{
			LockTimeout:  30 * time.Second,
			EventsTopic:  "promotion-events",
			RequestTopic: "promotion-apply-requests",
			DeadLetter:   "promotion-apply-requests.dlt",
			GroupID:      "promotion-apply-consumer-group",
		},
		Order: OrderConfig{
			EventsTopic:       "order-events",
			ProcessingTimeout: 30 * time.Second,
		},
	}
}

// Init 加载配置：先读取 CONFIG_FILE 指向的 YAML 文件，再用环境变量覆盖。
func Init() *Config {
	cfg, err := Load(getEnv("CONFIG_FILE", ""))
	if err != nil {
		zlog.Warn().Err(err).Msg("failed to load config file, falling back to defaults")
		cfg = DefaultConfig()
		applyEnv(cfg)
	}
	setCurrentConfig(cfg)
	return cfg
}

// Load 从指定路径加载配置；path 为空时只使用默认值和环境变量。
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrapf(err, "read config file %s", path)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, errors.Wrapf(err, "parse config file %s", path)
		}
	}
	applyEnv(cfg)
	return cfg, nil
}

// GetCurrentConfig 返回当前生效的配置
func GetCurrentConfig() *Config {
	configMu.RLock()
	defer configMu.RUnlock()
	if currentConfig == nil {
		return DefaultConfig()
	}
	return currentConfig
}

func setCurrentConfig(cfg *Config) {
	configMu.Lock()
	defer configMu.Unlock()
	currentConfig = cfg
}

// applyEnv 环境变量优先级高于配置文件
func applyEnv(cfg *Config) {
	cfg.App.LogLevel = getEnv("LOG_LEVEL", cfg.App.LogLevel)
	cfg.Infra.Jaeger.Endpoint = getEnv("JAEGER_ENDPOINT", cfg.Infra.Jaeger.Endpoint)
	cfg.Infra.MySQL.Addr = getEnv("MYSQL_ADDR", cfg.Infra.MySQL.Addr)
	cfg.Infra.MySQL.User = getEnv("MYSQL_USER", cfg.Infra.MySQL.User)
	cfg.Infra.MySQL.Password = getEnv("MYSQL_PASSWORD", cfg.Infra.MySQL.Password)
	cfg.Infra.MySQL.Database = getEnv("MYSQL_DATABASE", cfg.Infra.MySQL.Database)
	cfg.Infra.Redis.Addrs = getEnv("REDIS_ADDRS", cfg.Infra.Redis.Addrs)
	cfg.Infra.Kafka.Brokers = getEnv("KAFKA_BROKERS", cfg.Infra.Kafka.Brokers)
	cfg.Infra.Zookeeper.Servers = getEnv("ZOOKEEPER_SERVERS", cfg.Infra.Zookeeper.Servers)
	cfg.Infra.Nacos.ServerAddrs = getEnv("NACOS_SERVER_ADDRS", cfg.Infra.Nacos.ServerAddrs)
	cfg.Infra.Nacos.Namespace = getEnv("NACOS_NAMESPACE", cfg.Infra.Nacos.Namespace)
	cfg.Infra.Nacos.Group = getEnv("NACOS_GROUP", cfg.Infra.Nacos.Group)
	cfg.Infra.Nacos.Enabled = getEnvBool("NACOS_ENABLED", cfg.Infra.Nacos.Enabled)
	if cfg.Infra.Services == nil {
		cfg.Infra.Services = map[string]string{}
	}
	for name, key := range map[string]string{
		"shipping-service":  "SHIPPING_SERVICE_ADDR",
		"promotion-service": "PROMOTION_SERVICE_ADDR",
	} {
		if v, ok := os.LookupEnv(key); ok {
			cfg.Infra.Services[name] = v
		}
	}
	cfg.App.FeatureFlags.EnableRateCache = getEnvBool("FEATURE_RATE_CACHE", cfg.App.FeatureFlags.EnableRateCache)
	if v, ok := os.LookupEnv("SHIPPING_RATE_CACHE_TTL"); ok {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Shipping.RateCacheTTL = d
		}
	}
}

// getEnv 是一个内部辅助函数，从环境变量中读取配置。
func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

func splitAndTrim(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
