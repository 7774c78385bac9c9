// Package config 字段长度校验的外部配置
//
// 通过 viper 读取 YAML/JSON/TOML 文件，并支持 FIELDLEN_ 前缀的环境变量覆盖：
//
//	shadow_policy: all
//	normalize: false
//	read_unexported: false
//	limits:
//	  - key: 配置字段
//	    max: 3
//	  - key: Title
//	    max: 64
//	log:
//	  level: info
//	  format: json
//
// limits 使用列表而非 map，viper 会把 map 的 key 转为小写，而候选 key 区分大小写。
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"katydid-common-excel/pkg/fieldlen"
	"katydid-common-excel/pkg/logger"
)

const (
	// EnvPrefix 环境变量前缀
	EnvPrefix = "FIELDLEN"
)

var (
	// ErrInvalidConfig 配置内容不合法
	ErrInvalidConfig = errors.New("fieldlen config: invalid")

	validate = validator.New()
)

// LimitEntry 单个外部长度限制
type LimitEntry struct {
	// Key 字段名、Label 或 Excel 表头
	Key string `mapstructure:"key" validate:"required"`
	// Max 最大长度，0 表示关闭该 key
	Max int `mapstructure:"max" validate:"gte=0"`
}

// Config 字段长度校验配置
type Config struct {
	// ShadowPolicy 同名字段策略：all、outer
	ShadowPolicy string `mapstructure:"shadow_policy" validate:"omitempty,oneof=all outer"`
	// Normalize 计数前是否做 NFC 规范化
	Normalize bool `mapstructure:"normalize"`
	// ReadUnexported 是否读取命中限制的未导出字段
	ReadUnexported bool `mapstructure:"read_unexported"`
	// Limits 外部长度限制
	Limits []LimitEntry `mapstructure:"limits" validate:"dive"`
	// Log 日志配置
	Log logger.Config `mapstructure:"log"`
}

// Load 从文件加载配置，path 为空时只使用默认值与环境变量
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}
	return decode(v)
}

// FromViper 从已有的 viper 实例（可为子树）解码配置
func FromViper(v *viper.Viper) (*Config, error) {
	if v == nil {
		return nil, fmt.Errorf("%w: viper instance is nil", ErrInvalidConfig)
	}
	setDefaults(v)
	return decode(v)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("shadow_policy", fieldlen.ShadowVisitAll.String())
	v.SetDefault("normalize", false)
	v.SetDefault("read_unexported", false)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", logger.FormatJSON)
	v.SetDefault("log.file", "")
	v.SetDefault("log.max_size_mb", 100)
	v.SetDefault("log.max_backups", 3)
	v.SetDefault("log.max_age_days", 7)
	v.SetDefault("log.compress", false)
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate 校验配置内容
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) && len(validationErrors) > 0 {
			fe := validationErrors[0]
			return fmt.Errorf("%w: %s failed on '%s'", ErrInvalidConfig, fe.Namespace(), fe.Tag())
		}
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// LimitMap 转换为校验器使用的外部配置，重复 key 以先出现的为准
func (c *Config) LimitMap() fieldlen.Limits {
	limits := make(fieldlen.Limits, len(c.Limits))
	for _, entry := range c.Limits {
		if _, ok := limits[entry.Key]; ok {
			continue
		}
		limits[entry.Key] = entry.Max
	}
	return limits
}

// Options 转换为校验器配置项
func (c *Config) Options(log *zap.Logger) []fieldlen.Option {
	policy, _ := fieldlen.ParseShadowPolicy(c.ShadowPolicy)
	opts := []fieldlen.Option{
		fieldlen.WithShadowPolicy(policy),
		fieldlen.WithNormalization(c.Normalize),
		fieldlen.WithLimits(c.LimitMap()),
	}
	if c.ReadUnexported {
		opts = append(opts, fieldlen.WithUnexportedFields(true))
	}
	if log != nil {
		opts = append(opts, fieldlen.WithLogger(log))
	}
	return opts
}

// NewValidator 按配置创建校验器与日志
func NewValidator(c *Config) (*fieldlen.Validator, *zap.Logger, error) {
	if c == nil {
		return nil, nil, fmt.Errorf("%w: config is nil", ErrInvalidConfig)
	}
	log, err := logger.New(c.Log)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return fieldlen.New(c.Options(log)...), log, nil
}
