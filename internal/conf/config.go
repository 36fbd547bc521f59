package conf

import (
	"fmt"
)

type Bootstrap struct {
	Server       *Server       `yaml:"server" json:"server"`
	Data         *Data         `yaml:"data" json:"data"`
	Subscription *Subscription `yaml:"subscription" json:"subscription"`
	Log          *Log          `yaml:"log" json:"log"`
}

type Server struct {
	Http struct {
		Addr    string `yaml:"addr" json:"addr"`
		Timeout string `yaml:"timeout" json:"timeout"`
	} `yaml:"http" json:"http"`
}

type Data struct {
	Database struct {
		Driver          string `yaml:"driver" json:"driver"`
		Source          string `yaml:"source" json:"source"`
		MaxIdleConns    int    `yaml:"max_idle_conns" json:"max_idle_conns"`
		MaxOpenConns    int    `yaml:"max_open_conns" json:"max_open_conns"`
		ConnMaxLifetime string `yaml:"conn_max_lifetime" json:"conn_max_lifetime"`
	} `yaml:"database" json:"database"`
	Redis struct {
		Addr         string `yaml:"addr" json:"addr"`
		Password     string `yaml:"password" json:"password"`
		Db           int32  `yaml:"db" json:"db"`
		ReadTimeout  string `yaml:"read_timeout" json:"read_timeout"`
		WriteTimeout string `yaml:"write_timeout" json:"write_timeout"`
		DialTimeout  string `yaml:"dial_timeout" json:"dial_timeout"`
		PoolSize     int32  `yaml:"pool_size" json:"pool_size"`
		MinIdleConns int32  `yaml:"min_idle_conns" json:"min_idle_conns"`
	} `yaml:"redis" json:"redis"`
}

// Subscription 会员生命周期相关配置
type Subscription struct {
	// DefaultGraceDays 套餐未配置宽限期时的默认宽限天数
	DefaultGraceDays int `yaml:"default_grace_days" json:"default_grace_days"`
	// RenewalDryRun 续费批处理是否只记录不执行
	RenewalDryRun bool `yaml:"renewal_dry_run" json:"renewal_dry_run"`
}

type Log struct {
	Level      string `yaml:"level" json:"level"`
	Format     string `yaml:"format" json:"format"`
	Output     string `yaml:"output" json:"output"`
	FilePath   string `yaml:"file_path" json:"file_path"`
	MaxSize    int    `yaml:"max_size" json:"max_size"`
	MaxAge     int    `yaml:"max_age" json:"max_age"`
	MaxBackups int    `yaml:"max_backups" json:"max_backups"`
	Compress   bool   `yaml:"compress" json:"compress"`
}

// Validate validates the configuration
func (b *Bootstrap) Validate() error {
	if b.Server == nil {
		return fmt.Errorf("server configuration is required")
	}
	if b.Server.Http.Addr == "" {
		return fmt.Errorf("server.http.addr is required")
	}
	if b.Data == nil {
		return fmt.Errorf("data configuration is required")
	}
	if b.Data.Database.Source == "" {
		return fmt.Errorf("data.database.source is required")
	}
	if b.Subscription == nil {
		return fmt.Errorf("subscription configuration is required")
	}
	if b.Subscription.DefaultGraceDays < 0 {
		return fmt.Errorf("subscription.default_grace_days must not be negative")
	}
	if b.Log == nil {
		return fmt.Errorf("log configuration is required")
	}
	return nil
}
