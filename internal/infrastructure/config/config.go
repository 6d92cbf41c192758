package config

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/spf13/viper"
)

// Config 全局配置结构
// 设计说明：使用Viper管理配置，支持YAML文件、环境变量覆盖、配置热重载
type Config struct {
	Server       ServerConfig       `mapstructure:"server"`
	Database     DatabaseConfig     `mapstructure:"database"`
	Redis        RedisConfig        `mapstructure:"redis"`
	JWT          JWTConfig          `mapstructure:"jwt"`
	Log          LogConfig          `mapstructure:"log"`
	Loan         LoanConfig         `mapstructure:"loan"`
	Reservation  ReservationConfig  `mapstructure:"reservation"`
	Sweep        SweepConfig        `mapstructure:"sweep"`
	Notification NotificationConfig `mapstructure:"notification"`
	Tracing      TracingConfig      `mapstructure:"tracing"`
}

type ServerConfig struct {
	Port         int           `mapstructure:"port"`
	Mode         string        `mapstructure:"mode"` // debug | release | test
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"dbname"`
	Charset         string        `mapstructure:"charset"`
	ParseTime       bool          `mapstructure:"parse_time"`
	Loc             string        `mapstructure:"loc"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// DSN 生成MySQL连接字符串
// 格式：user:password@tcp(host:port)/dbname?charset=utf8mb4&parseTime=True&loc=Local
// 注意：loc参数需要URL编码（Asia/Shanghai → Asia%2FShanghai）
func (d DatabaseConfig) DSN() string {
	// URL编码loc参数
	loc := url.QueryEscape(d.Loc)
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=%t&loc=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.Charset, d.ParseTime, loc)
}

type RedisConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	PoolSize     int           `mapstructure:"pool_size"`
	MinIdleConns int           `mapstructure:"min_idle_conns"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// Addr 返回Redis地址
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

type JWTConfig struct {
	Secret             string        `mapstructure:"secret"`
	AccessTokenExpire  time.Duration `mapstructure:"access_token_expire"`
	RefreshTokenExpire time.Duration `mapstructure:"refresh_token_expire"`
}

type LogConfig struct {
	Level        string `mapstructure:"level"`  // debug | info | warn | error
	Format       string `mapstructure:"format"` // console | json
	Output       string `mapstructure:"output"` // stdout | stderr | /path/to/file
	EnableCaller bool   `mapstructure:"enable_caller"`
}

// LoanConfig 借阅策略配置
// 业务规则的默认值来自图书馆管理规范：
// - 每人最多同时借5本
// - 每次借期14天
// - 每本最多续借2次
// - 逾期每天罚款1元（以分为单位存储）
type LoanConfig struct {
	MaxActiveLoans   int   `mapstructure:"max_active_loans"`
	MaxRenewals      int   `mapstructure:"max_renewals"`
	DurationDays     int   `mapstructure:"duration_days"`
	FineRateCents    int64 `mapstructure:"fine_rate_cents"`
}

// ReservationConfig 预约策略配置
type ReservationConfig struct {
	// ExpireAfter 预约有效期（超过后由清扫任务标记为EXPIRED）
	ExpireAfter time.Duration `mapstructure:"expire_after"`
}

// SweepConfig 后台清扫任务配置
type SweepConfig struct {
	// ExpiryInterval 过期预约清扫间隔
	ExpiryInterval time.Duration `mapstructure:"expiry_interval"`
	// NotifyInterval 到书通知清扫间隔
	NotifyInterval time.Duration `mapstructure:"notify_interval"`
}

// NotificationConfig 通知配置
type NotificationConfig struct {
	// Driver 通知驱动：log（仅记录日志）| amqp（发布到RabbitMQ）
	Driver string `mapstructure:"driver"`
	// AMQPURL RabbitMQ连接地址（driver=amqp时必填）
	AMQPURL string `mapstructure:"amqp_url"`
	// Exchange 事件交换机名称
	Exchange string `mapstructure:"exchange"`
}

// TracingConfig 分布式追踪配置
type TracingConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	ServiceName string `mapstructure:"service_name"`
	// Endpoint OTLP gRPC端点（如localhost:4317）
	Endpoint string `mapstructure:"endpoint"`
}

// Load 加载配置文件
// 支持：
// 1. 默认加载config/config.yaml
// 2. 通过环境变量LIBRARY_ENV指定环境（如config.prod.yaml）
// 3. 环境变量覆盖（如LIBRARY_DATABASE_PASSWORD）
// 4. 配置文件不存在时使用默认值（容器环境只用环境变量）
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	// 设置配置文件路径
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(".")

	// 环境特定配置（如config.prod.yaml）
	if env := viper.GetString("env"); env != "" {
		v.SetConfigName("config." + env)
	}

	// 读取配置文件（文件不存在时回退到默认值+环境变量）
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("读取配置文件失败: %w", err)
		}
	}

	// 环境变量绑定（自动转换，如LIBRARY_DATABASE_PASSWORD → database.password）
	v.SetEnvPrefix("LIBRARY")
	v.AutomaticEnv()

	// 解析到结构体
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}

	// 配置验证
	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// setDefaults 默认值
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.read_timeout", "10s")
	v.SetDefault("server.write_timeout", "10s")

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 3306)
	v.SetDefault("database.user", "root")
	v.SetDefault("database.dbname", "library")
	v.SetDefault("database.charset", "utf8mb4")
	v.SetDefault("database.parse_time", true)
	v.SetDefault("database.loc", "Local")
	v.SetDefault("database.max_open_conns", 100)
	v.SetDefault("database.max_idle_conns", 10)
	v.SetDefault("database.conn_max_lifetime", "1h")

	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.pool_size", 10)
	v.SetDefault("redis.min_idle_conns", 2)
	v.SetDefault("redis.dial_timeout", "5s")
	v.SetDefault("redis.read_timeout", "3s")
	v.SetDefault("redis.write_timeout", "3s")

	v.SetDefault("jwt.secret", "your-secret-key-change-in-production")
	v.SetDefault("jwt.access_token_expire", "2h")
	v.SetDefault("jwt.refresh_token_expire", "168h")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.output", "stdout")

	v.SetDefault("loan.max_active_loans", 5)
	v.SetDefault("loan.max_renewals", 2)
	v.SetDefault("loan.duration_days", 14)
	v.SetDefault("loan.fine_rate_cents", 100)

	v.SetDefault("reservation.expire_after", "48h")

	v.SetDefault("sweep.expiry_interval", "1h")
	v.SetDefault("sweep.notify_interval", "30m")

	v.SetDefault("notification.driver", "log")
	v.SetDefault("notification.exchange", "library.events")

	v.SetDefault("tracing.enabled", false)
	v.SetDefault("tracing.service_name", "library-api")
	v.SetDefault("tracing.endpoint", "localhost:4317")
}

// validate 配置校验
func validate(cfg *Config) error {
	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("无效的服务端口: %d", cfg.Server.Port)
	}

	if cfg.JWT.Secret == "your-secret-key-change-in-production" && cfg.Server.Mode == "release" {
		return fmt.Errorf("生产环境必须修改JWT密钥")
	}

	if cfg.Loan.MaxActiveLoans <= 0 {
		return fmt.Errorf("无效的借阅上限: %d", cfg.Loan.MaxActiveLoans)
	}
	if cfg.Loan.DurationDays <= 0 {
		return fmt.Errorf("无效的借期天数: %d", cfg.Loan.DurationDays)
	}
	if cfg.Loan.MaxRenewals < 0 {
		return fmt.Errorf("无效的续借上限: %d", cfg.Loan.MaxRenewals)
	}

	if cfg.Notification.Driver == "amqp" && cfg.Notification.AMQPURL == "" {
		return fmt.Errorf("通知驱动为amqp时必须配置amqp_url")
	}

	return nil
}
