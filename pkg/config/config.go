package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix 环境变量前缀，PLUS_DATABASE_DSN 对应 database.dsn
const EnvPrefix = "PLUS"

// Config 应用配置
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	API      APIConfig      `mapstructure:"api"`
	Log      LogConfig      `mapstructure:"log"`
	Task     TaskConfig     `mapstructure:"task"`
}

// ServerConfig HTTP 服务配置
type ServerConfig struct {
	Port            string        `mapstructure:"port"`
	Mode            string        `mapstructure:"mode"`
	Swagger         bool          `mapstructure:"swagger"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	// 登录失败限流
	LoginMaxFailures int           `mapstructure:"login_max_failures"`
	LoginWindow      time.Duration `mapstructure:"login_window"`
	LoginCooldown    time.Duration `mapstructure:"login_cooldown"`
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver"` // mysql / postgres / sqlite
	DSN             string        `mapstructure:"dsn"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
	PingTimeout     time.Duration `mapstructure:"ping_timeout"`
	LogLevel        string        `mapstructure:"log_level"` // silent / error / warn / info
	AutoMigrate     bool          `mapstructure:"auto_migrate"`
}

// RedisConfig Redis 配置，URL 为空时使用内存 nonce 存储
type RedisConfig struct {
	URL    string `mapstructure:"url"`
	Prefix string `mapstructure:"prefix"`
}

// Enabled 是否启用 Redis
func (c RedisConfig) Enabled() bool {
	return c.URL != ""
}

// JWTConfig JWT 配置
type JWTConfig struct {
	Realm     string        `mapstructure:"realm"`
	SecretKey string        `mapstructure:"secret_key"`
	TTL       time.Duration `mapstructure:"ttl"`
	Leeway    time.Duration `mapstructure:"leeway"`
	Issuer    string        `mapstructure:"issuer"`
}

// APIConfig 接口签名配置
type APIConfig struct {
	Realm         string        `mapstructure:"realm"`
	RequestExpire time.Duration `mapstructure:"request_expire"`
	NonceExpire   time.Duration `mapstructure:"nonce_expire"`
	NoncePrefix   string        `mapstructure:"nonce_prefix"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level   string `mapstructure:"level"`
	Format  string `mapstructure:"format"` // json / console
	Service string `mapstructure:"service"`
}

// TaskConfig 定时任务配置
type TaskConfig struct {
	NonceSweepSpec string `mapstructure:"nonce_sweep_spec"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.swagger", true)
	v.SetDefault("server.shutdown_timeout", 30*time.Second)
	v.SetDefault("server.login_max_failures", 5)
	v.SetDefault("server.login_window", 10*time.Minute)
	v.SetDefault("server.login_cooldown", 15*time.Minute)

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "plus_admin.db")
	v.SetDefault("database.max_idle_conns", 10)
	v.SetDefault("database.max_open_conns", 100)
	v.SetDefault("database.conn_max_lifetime", time.Hour)
	v.SetDefault("database.conn_max_idle_time", 10*time.Minute)
	v.SetDefault("database.ping_timeout", 5*time.Second)
	v.SetDefault("database.log_level", "warn")
	v.SetDefault("database.auto_migrate", true)

	v.SetDefault("redis.url", "")
	v.SetDefault("redis.prefix", "")

	v.SetDefault("jwt.realm", "jwt")
	v.SetDefault("jwt.secret_key", "")
	v.SetDefault("jwt.ttl", 12*time.Hour)
	v.SetDefault("jwt.leeway", 10*time.Second)
	v.SetDefault("jwt.issuer", "plus_admin")

	v.SetDefault("api.realm", "api")
	v.SetDefault("api.request_expire", 600*time.Second)
	v.SetDefault("api.nonce_expire", 4*time.Second)
	v.SetDefault("api.nonce_prefix", "request_nonce")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("log.service", "plus_admin")

	v.SetDefault("task.nonce_sweep_spec", "@every 1m")
}

// Load 加载配置：默认值 -> 配置文件 -> 环境变量
// path 为空时依次查找 PLUS_CONFIG、./config.yaml、./conf/config.yaml
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path == "" {
		path = os.Getenv(EnvPrefix + "_CONFIG")
	}
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./conf")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("读取配置文件失败: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate 校验配置
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "mysql", "postgres", "sqlite":
	default:
		return fmt.Errorf("不支持的数据库驱动: %s", c.Database.Driver)
	}
	if c.Database.DSN == "" {
		return errors.New("database.dsn 不能为空")
	}
	if c.JWT.TTL <= 0 {
		return errors.New("jwt.ttl 必须大于 0")
	}
	return nil
}
