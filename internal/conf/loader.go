package conf

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultPath 默认配置文件位置
const DefaultPath = "configs/config.yaml"

// Load 读取并校验配置文件，path 为空时取默认位置
func Load(path string) (*Bootstrap, error) {
	if path == "" {
		path = DefaultPath
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var c Bootstrap
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config %s: %w", path, err)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}

	return &c, nil
}
