package config

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/hashicorp/consul/api"
)

// LoadConfigFromConsulKV 从 Consul KV 读取整份 JSON 配置。
//
// 部署约定：服务启动带 -config-kv <key> 时走这里，集中配置优先于本地
// 文件；value 必须是与 Config 同构的 JSON，缺省的段落落回 defaultConfig
// 的值（和文件加载路径同一套默认值）。只做一次性读取，动态 watch 由
// 上层按需实现。
func LoadConfigFromConsulKV(consulAddr, key string) (*Config, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, fmt.Errorf("consul kv key is empty")
	}

	c, err := api.NewClient(&api.Config{Address: consulAddr})
	if err != nil {
		return nil, fmt.Errorf("failed to create consul client: %w", err)
	}

	pair, _, err := c.KV().Get(key, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get consul kv key=%s: %w", key, err)
	}
	if pair == nil || len(pair.Value) == 0 {
		return nil, fmt.Errorf("consul kv key=%s is empty or not found", key)
	}

	cfg := defaultConfig()
	if err := json.Unmarshal(pair.Value, cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal consul kv json key=%s: %w", key, err)
	}
	return cfg, nil
}
