package configs

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// ModuleRecognizer is the selected_module key naming the active recognizer.
const ModuleRecognizer = "Recognizer"

// Config 主配置结构
type Config struct {
	Server struct {
		IP   string `yaml:"ip"`
		Port int    `yaml:"port"`
		Auth struct {
			Enabled bool   `yaml:"enabled"`
			Secret  string `yaml:"secret"`
		} `yaml:"auth"`
	} `yaml:"server"`

	Log LogConfig `yaml:"log"`

	Web struct {
		StaticDir string `yaml:"static_dir"`
	} `yaml:"web"`

	SelectedModule map[string]string `yaml:"selected_module"`

	Detection DetectionConfig `yaml:"detection"`

	Recognizer map[string]RecognizerConfig `yaml:"Recognizer"`
}

// LogConfig 日志配置
type LogConfig struct {
	LogLevel string `yaml:"log_level"`
	LogDir   string `yaml:"log_dir"`
	LogFile  string `yaml:"log_file"`
}

// DetectionConfig holds the knobs of the classification pipeline.
type DetectionConfig struct {
	MinImageBytes   int         `yaml:"min_image_bytes"`
	MaxRequestBytes int64       `yaml:"max_request_bytes"`
	MaxPixels       int64       `yaml:"max_pixels"`
	Timeout         string      `yaml:"timeout"`
	Keywords        []string    `yaml:"keywords"`
	Image           ImageConfig `yaml:"image"`
}

// ImageConfig controls how validated captures are prepared for a provider.
type ImageConfig struct {
	MaxSide     int `yaml:"max_side"`
	JPEGQuality int `yaml:"jpeg_quality"`
}

// RecognizerConfig 识别提供者配置
type RecognizerConfig struct {
	Type        string   `yaml:"type"`
	ModelName   string   `yaml:"model_name"`
	BaseURL     string   `yaml:"url"`
	APIKey      string   `yaml:"api_key"`
	APIKeyEnv   string   `yaml:"api_key_env"`
	Temperature float64  `yaml:"temperature"`
	MaxTokens   int      `yaml:"max_tokens"`
	Items       []string `yaml:"items"`
}

// ResolveAPIKey returns the inline key, or the value of the env var named by api_key_env.
func (c RecognizerConfig) ResolveAPIKey() string {
	if c.APIKey != "" {
		return c.APIKey
	}
	if c.APIKeyEnv != "" {
		return strings.TrimSpace(os.Getenv(c.APIKeyEnv))
	}
	return ""
}

const (
	DefaultMinImageBytes   = 4000
	DefaultMaxRequestBytes = 10 << 20
	DefaultMaxPixels       = 40_000_000
	DefaultTimeout         = 30 * time.Second
	DefaultMaxSide         = 1024
	DefaultJPEGQuality     = 85
	DefaultTemperature     = 0.2
)

// LoadConfig 从文件加载配置
func LoadConfig() (*Config, string, error) {
	// .env is optional; provider credentials usually live there
	_ = godotenv.Load()

	path := os.Getenv("EWASTE_CONFIG")
	if path == "" {
		path = ".config.yaml"
		if _, err := os.Stat(path); os.IsNotExist(err) {
			path = "config.yaml"
		}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, path, err
	}

	config, err := Parse(data)
	if err != nil {
		return nil, path, err
	}
	return config, path, nil
}

// Parse decodes YAML, applies defaults and env overrides, then validates.
func Parse(data []byte) (*Config, error) {
	config := &Config{}
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	config.applyDefaults()
	if err := config.applyEnv(); err != nil {
		return nil, err
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8000
	}
	if c.Log.LogLevel == "" {
		c.Log.LogLevel = "info"
	}
	if c.SelectedModule == nil {
		c.SelectedModule = map[string]string{}
	}
	d := &c.Detection
	if d.MinImageBytes == 0 {
		d.MinImageBytes = DefaultMinImageBytes
	}
	if d.MaxRequestBytes == 0 {
		d.MaxRequestBytes = DefaultMaxRequestBytes
	}
	if d.MaxPixels == 0 {
		d.MaxPixels = DefaultMaxPixels
	}
	if d.Timeout == "" {
		d.Timeout = DefaultTimeout.String()
	}
	if d.Image.MaxSide == 0 {
		d.Image.MaxSide = DefaultMaxSide
	}
	if d.Image.JPEGQuality == 0 {
		d.Image.JPEGQuality = DefaultJPEGQuality
	}
	for name, rc := range c.Recognizer {
		if rc.Type == "" {
			rc.Type = name
		}
		if rc.Temperature == 0 {
			rc.Temperature = DefaultTemperature
		}
		c.Recognizer[name] = rc
	}
}

func (c *Config) applyEnv() error {
	if v := strings.TrimSpace(os.Getenv("PORT")); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("env PORT=%q is not a number", v)
		}
		c.Server.Port = port
	}
	if v := strings.TrimSpace(os.Getenv("RECOGNIZER")); v != "" {
		c.SelectedModule[ModuleRecognizer] = v
	}
	if v := strings.TrimSpace(os.Getenv("MIN_IMAGE_BYTES")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("env MIN_IMAGE_BYTES=%q is not a number", v)
		}
		c.Detection.MinImageBytes = n
	}
	if v := strings.TrimSpace(os.Getenv("LOG_LEVEL")); v != "" {
		c.Log.LogLevel = v
	}
	if v := strings.TrimSpace(os.Getenv("AUTH_SECRET")); v != "" {
		c.Server.Auth.Secret = v
	}
	return nil
}

// Validate 校验配置
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Detection.MinImageBytes <= 0 {
		return fmt.Errorf("detection.min_image_bytes must be positive, got %d", c.Detection.MinImageBytes)
	}
	if _, err := time.ParseDuration(c.Detection.Timeout); err != nil {
		return fmt.Errorf("detection.timeout: %w", err)
	}
	selected := c.SelectedModule[ModuleRecognizer]
	if selected == "" {
		return fmt.Errorf("selected_module.%s is not set", ModuleRecognizer)
	}
	if _, ok := c.Recognizer[selected]; !ok {
		return fmt.Errorf("selected recognizer %q has no entry under Recognizer", selected)
	}
	if c.Server.Auth.Enabled && c.Server.Auth.Secret == "" {
		return fmt.Errorf("server.auth.enabled requires server.auth.secret")
	}
	return nil
}

// DetectionTimeout returns the parsed per-request provider timeout.
func (c *Config) DetectionTimeout() time.Duration {
	d, err := time.ParseDuration(c.Detection.Timeout)
	if err != nil || d <= 0 {
		return DefaultTimeout
	}
	return d
}

// SelectedRecognizer returns the name and config of the active recognizer.
func (c *Config) SelectedRecognizer() (string, RecognizerConfig) {
	name := c.SelectedModule[ModuleRecognizer]
	return name, c.Recognizer[name]
}
