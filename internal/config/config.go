package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// AppConfig 应用配置
type AppConfig struct {
	Server ServerConfig `toml:"server"`
	Data   DataConfig   `toml:"data"`
	Export ExportConfig `toml:"export"`
	Remote RemoteConfig `toml:"remote"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Port    int  `toml:"port"`
	DevMode bool `toml:"dev_mode"`
}

// DataConfig 数据配置
type DataConfig struct {
	DataDir  string `toml:"data_dir"`
	Autosave bool   `toml:"autosave"` // 关闭后会话仅保存在内存
}

// ExportConfig 导出配置
type ExportConfig struct {
	DefaultFormat      string `toml:"default_format"`
	DownloadTTLSeconds int    `toml:"download_ttl_seconds"`
}

// RemoteConfig 远程幻灯片服务
type RemoteConfig struct {
	Endpoint       string `toml:"endpoint"`
	Token          string `toml:"token"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// LoadConfigInfo 配置加载元信息
type LoadConfigInfo struct {
	Path          string
	PortSpecified bool
}

// 环境变量
const (
	EnvRemoteEndpoint = "SLIDECRAFT_REMOTE_ENDPOINT"
	EnvRemoteToken    = "SLIDECRAFT_REMOTE_TOKEN"
)

// DefaultConfig 默认配置
func DefaultConfig() *AppConfig {
	return &AppConfig{
		Server: ServerConfig{
			Port:    20262,
			DevMode: false,
		},
		Data: DataConfig{
			DataDir:  "data",
			Autosave: true,
		},
		Export: ExportConfig{
			DefaultFormat:      "pptx",
			DownloadTTLSeconds: 600,
		},
		Remote: RemoteConfig{
			TimeoutSeconds: 30,
		},
	}
}

// DownloadTTL 下载令牌有效期
func (c *AppConfig) DownloadTTL() time.Duration {
	if c.Export.DownloadTTLSeconds <= 0 {
		return 10 * time.Minute
	}
	return time.Duration(c.Export.DownloadTTLSeconds) * time.Second
}

// RemoteTimeout 远程发布超时
func (c *AppConfig) RemoteTimeout() time.Duration {
	if c.Remote.TimeoutSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.Remote.TimeoutSeconds) * time.Second
}

func isPortSpecifiedInToml(data []byte) bool {
	var raw map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		return false
	}

	serverAny, ok := raw["server"]
	if !ok {
		return false
	}

	serverMap, ok := serverAny.(map[string]any)
	if !ok {
		return false
	}

	_, ok = serverMap["port"]
	return ok
}

// GetExeDir 获取可执行文件所在目录
func GetExeDir() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", err
	}
	return filepath.Dir(exe), nil
}

func exeDirOrDot() string {
	dir, err := GetExeDir()
	if err != nil || dir == "" {
		return "."
	}
	return dir
}

// LoadConfigWithInfo 从可执行文件同目录的 config.toml 加载配置并返回元信息
func LoadConfigWithInfo() (*AppConfig, LoadConfigInfo, error) {
	return LoadFile(filepath.Join(exeDirOrDot(), "config.toml"))
}

// LoadFile 从指定路径加载配置；文件不存在时使用默认配置
func LoadFile(path string) (*AppConfig, LoadConfigInfo, error) {
	info := LoadConfigInfo{Path: path}
	config := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, info, err
		}
	} else {
		info.PortSpecified = isPortSpecifiedInToml(data)
		if err := toml.Unmarshal(data, config); err != nil {
			return nil, info, err
		}
	}

	// 环境变量覆盖（令牌不必写进配置文件）
	if v := strings.TrimSpace(os.Getenv(EnvRemoteEndpoint)); v != "" {
		config.Remote.Endpoint = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvRemoteToken)); v != "" {
		config.Remote.Token = v
	}

	return config, info, nil
}

// LoadConfig 从 config.toml 加载配置
func LoadConfig() (*AppConfig, error) {
	config, _, err := LoadConfigWithInfo()
	return config, err
}

// SaveConfig 保存配置到 config.toml
func SaveConfig(config *AppConfig) error {
	return SaveFile(filepath.Join(exeDirOrDot(), "config.toml"), config)
}

// SaveFile 保存配置到指定路径
func SaveFile(path string, config *AppConfig) error {
	data, err := toml.Marshal(config)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ResolveDataDir 数据目录：绝对路径原样使用，相对路径基于可执行文件目录
func ResolveDataDir(config *AppConfig) string {
	if filepath.IsAbs(config.Data.DataDir) {
		return config.Data.DataDir
	}
	return filepath.Join(exeDirOrDot(), config.Data.DataDir)
}

// EnsureDataDir 确保数据目录及其子目录存在
func EnsureDataDir(config *AppConfig) (string, error) {
	dataDir := ResolveDataDir(config)

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return "", err
	}

	for _, subdir := range []string{"exports"} {
		if err := os.MkdirAll(filepath.Join(dataDir, subdir), 0755); err != nil {
			return "", err
		}
	}

	return dataDir, nil
}
