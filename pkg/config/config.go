package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultConfigPath = "/etc/ztcore/config"
	ConfigFileName    = "ztcore.yml"
)

// ValidOperations is the list of operation names accepted in
// high_risk_operations.
var ValidOperations = []string{
	"read", "write", "delete", "export", "admin", "configure", "execute",
}

// Config holds all ztcore server settings.
type Config struct {
	// Port is the HTTP listen port
	Port int `yaml:"port" json:"port"`

	// BindAddress is the HTTP listen address
	BindAddress string `yaml:"bind_address" json:"bind_address"`

	// TrustTTL is the trust score validity window in seconds
	TrustTTL int `yaml:"trust_ttl" json:"trust_ttl"`

	// VerificationInterval is the continuous verification cadence in seconds
	VerificationInterval int `yaml:"verification_interval" json:"verification_interval"`

	// AnomalyTolerance is the behavioral deviation above which verification
	// raises an anomaly
	AnomalyTolerance float64 `yaml:"anomaly_tolerance" json:"anomaly_tolerance"`

	// RiskConfidence is the confidence attached to risk assessments
	RiskConfidence float64 `yaml:"risk_confidence" json:"risk_confidence"`

	// HighRiskOperations lists operations that add a fixed risk penalty
	HighRiskOperations []string `yaml:"high_risk_operations" json:"high_risk_operations"`

	// DecisionHistoryLimit is the per-entity decision retention count
	DecisionHistoryLimit int `yaml:"decision_history_limit" json:"decision_history_limit"`

	// DecisionRetention is the decision retention window in seconds
	DecisionRetention int `yaml:"decision_retention" json:"decision_retention"`

	// PolicyFile is the policy definitions file loaded at startup
	PolicyFile string `yaml:"policy_file" json:"policy_file"`

	// SegmentFile is the segment definitions file loaded at startup
	SegmentFile string `yaml:"segment_file" json:"segment_file"`

	// RateLimit is the evaluate endpoint rate limit in requests per second
	RateLimit float64 `yaml:"rate_limit" json:"rate_limit"`

	// RateBurst is the evaluate endpoint burst allowance
	RateBurst int `yaml:"rate_burst" json:"rate_burst"`

	// sources tracks where each value came from
	sources map[string]string

	// configFilePath is the path to the config file
	configFilePath string
}

// Attribute represents a configuration attribute with its value and source.
type Attribute struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Source string `json:"source"`
}

// Global singleton config
var (
	globalConfig *Config
	configMu     sync.RWMutex
)

// Get returns the global configuration, loading it if necessary.
func Get() *Config {
	configMu.RLock()
	if globalConfig != nil {
		configMu.RUnlock()
		return globalConfig
	}
	configMu.RUnlock()

	configMu.Lock()
	defer configMu.Unlock()

	if globalConfig == nil {
		cfg, err := Load()
		if err != nil {
			// Return defaults on error
			globalConfig = newDefault()
		} else {
			globalConfig = cfg
		}
	}
	return globalConfig
}

// Reload reloads the configuration from file and environment.
func Reload() error {
	cfg, err := Load()
	if err != nil {
		return err
	}

	configMu.Lock()
	globalConfig = cfg
	configMu.Unlock()
	return nil
}

// newDefault returns a config with default values.
func newDefault() *Config {
	return &Config{
		Port:                 8090,
		BindAddress:          "0.0.0.0",
		TrustTTL:             300,
		VerificationInterval: 60,
		AnomalyTolerance:     0.3,
		RiskConfidence:       0.8,
		HighRiskOperations:   []string{"delete", "export", "admin", "configure"},
		DecisionHistoryLimit: 100,
		DecisionRetention:    86400,
		PolicyFile:           "",
		SegmentFile:          "",
		RateLimit:            50,
		RateBurst:            100,
		sources:              make(map[string]string),
	}
}

// Load loads configuration from file and environment variables.
// Environment variables take precedence over file values.
func Load() (*Config, error) {
	config := newDefault()

	for _, name := range attributeNames() {
		config.sources[name] = "default"
	}

	configPath := os.Getenv("ZTCORE_CONFIG_PATH")
	if configPath == "" {
		configPath = DefaultConfigPath
	}
	config.configFilePath = filepath.Join(configPath, ConfigFileName)

	if data, err := os.ReadFile(config.configFilePath); err == nil {
		var fileConfig Config
		if err := yaml.Unmarshal(data, &fileConfig); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", config.configFilePath, err)
		}
		config.applyFileConfig(&fileConfig)
	}

	config.applyEnvConfig()

	return config, nil
}

func attributeNames() []string {
	return []string{
		"port", "bind_address", "trust_ttl", "verification_interval",
		"anomaly_tolerance", "risk_confidence", "high_risk_operations",
		"decision_history_limit", "decision_retention", "policy_file",
		"segment_file", "rate_limit", "rate_burst",
	}
}

func (c *Config) applyFileConfig(file *Config) {
	if file.Port != 0 {
		c.Port = file.Port
		c.sources["port"] = "file"
	}
	if file.BindAddress != "" {
		c.BindAddress = file.BindAddress
		c.sources["bind_address"] = "file"
	}
	if file.TrustTTL != 0 {
		c.TrustTTL = file.TrustTTL
		c.sources["trust_ttl"] = "file"
	}
	if file.VerificationInterval != 0 {
		c.VerificationInterval = file.VerificationInterval
		c.sources["verification_interval"] = "file"
	}
	if file.AnomalyTolerance != 0 {
		c.AnomalyTolerance = file.AnomalyTolerance
		c.sources["anomaly_tolerance"] = "file"
	}
	if file.RiskConfidence != 0 {
		c.RiskConfidence = file.RiskConfidence
		c.sources["risk_confidence"] = "file"
	}
	if len(file.HighRiskOperations) > 0 {
		c.HighRiskOperations = file.HighRiskOperations
		c.sources["high_risk_operations"] = "file"
	}
	if file.DecisionHistoryLimit != 0 {
		c.DecisionHistoryLimit = file.DecisionHistoryLimit
		c.sources["decision_history_limit"] = "file"
	}
	if file.DecisionRetention != 0 {
		c.DecisionRetention = file.DecisionRetention
		c.sources["decision_retention"] = "file"
	}
	if file.PolicyFile != "" {
		c.PolicyFile = file.PolicyFile
		c.sources["policy_file"] = "file"
	}
	if file.SegmentFile != "" {
		c.SegmentFile = file.SegmentFile
		c.sources["segment_file"] = "file"
	}
	if file.RateLimit != 0 {
		c.RateLimit = file.RateLimit
		c.sources["rate_limit"] = "file"
	}
	if file.RateBurst != 0 {
		c.RateBurst = file.RateBurst
		c.sources["rate_burst"] = "file"
	}
}

func (c *Config) applyEnvConfig() {
	if val := os.Getenv("PORT"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			c.Port = i
			c.sources["port"] = "environment"
		}
	}
	if val := os.Getenv("ZTCORE_BIND_ADDRESS"); val != "" {
		c.BindAddress = val
		c.sources["bind_address"] = "environment"
	}
	if val := os.Getenv("ZTCORE_TRUST_TTL"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			c.TrustTTL = i
			c.sources["trust_ttl"] = "environment"
		}
	}
	if val := os.Getenv("ZTCORE_VERIFICATION_INTERVAL"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			c.VerificationInterval = i
			c.sources["verification_interval"] = "environment"
		}
	}
	if val := os.Getenv("ZTCORE_ANOMALY_TOLERANCE"); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			c.AnomalyTolerance = f
			c.sources["anomaly_tolerance"] = "environment"
		}
	}
	if val := os.Getenv("ZTCORE_RISK_CONFIDENCE"); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			c.RiskConfidence = f
			c.sources["risk_confidence"] = "environment"
		}
	}
	if val := os.Getenv("ZTCORE_HIGH_RISK_OPERATIONS"); val != "" {
		c.HighRiskOperations = splitAndTrim(val)
		c.sources["high_risk_operations"] = "environment"
	}
	if val := os.Getenv("ZTCORE_DECISION_HISTORY_LIMIT"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			c.DecisionHistoryLimit = i
			c.sources["decision_history_limit"] = "environment"
		}
	}
	if val := os.Getenv("ZTCORE_DECISION_RETENTION"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			c.DecisionRetention = i
			c.sources["decision_retention"] = "environment"
		}
	}
	if val := os.Getenv("ZTCORE_POLICY_FILE"); val != "" {
		c.PolicyFile = val
		c.sources["policy_file"] = "environment"
	}
	if val := os.Getenv("ZTCORE_SEGMENT_FILE"); val != "" {
		c.SegmentFile = val
		c.sources["segment_file"] = "environment"
	}
	if val := os.Getenv("ZTCORE_RATE_LIMIT"); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			c.RateLimit = f
			c.sources["rate_limit"] = "environment"
		}
	}
	if val := os.Getenv("ZTCORE_RATE_BURST"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			c.RateBurst = i
			c.sources["rate_burst"] = "environment"
		}
	}
}

// ConfigFilePath returns the path to the config file.
func (c *Config) ConfigFilePath() string {
	return c.configFilePath
}

// Source returns the source of a configuration attribute.
func (c *Config) Source(name string) string {
	if c.sources == nil {
		return "default"
	}
	if s, ok := c.sources[name]; ok {
		return s
	}
	return "default"
}

// TrustTTLDuration returns the trust score validity window as a duration.
func (c *Config) TrustTTLDuration() time.Duration {
	return time.Duration(c.TrustTTL) * time.Second
}

// VerificationIntervalDuration returns the verification cadence as a duration.
func (c *Config) VerificationIntervalDuration() time.Duration {
	return time.Duration(c.VerificationInterval) * time.Second
}

// DecisionRetentionDuration returns the decision retention window as a duration.
func (c *Config) DecisionRetentionDuration() time.Duration {
	return time.Duration(c.DecisionRetention) * time.Second
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}
	if c.AnomalyTolerance < 0 || c.AnomalyTolerance > 1 {
		return fmt.Errorf("anomaly_tolerance must be within [0, 1], got %v", c.AnomalyTolerance)
	}
	if c.RiskConfidence < 0 || c.RiskConfidence > 1 {
		return fmt.Errorf("risk_confidence must be within [0, 1], got %v", c.RiskConfidence)
	}

	validOps := make(map[string]bool)
	for _, op := range ValidOperations {
		validOps[op] = true
	}
	for _, op := range c.HighRiskOperations {
		if !validOps[op] {
			return fmt.Errorf("invalid high-risk operation: %s", op)
		}
	}

	return nil
}

// Attributes returns all configuration attributes with their values and sources.
func (c *Config) Attributes() []Attribute {
	return []Attribute{
		{Name: "port", Value: strconv.Itoa(c.Port), Source: c.Source("port")},
		{Name: "bind_address", Value: c.BindAddress, Source: c.Source("bind_address")},
		{Name: "trust_ttl", Value: strconv.Itoa(c.TrustTTL), Source: c.Source("trust_ttl")},
		{Name: "verification_interval", Value: strconv.Itoa(c.VerificationInterval), Source: c.Source("verification_interval")},
		{Name: "anomaly_tolerance", Value: strconv.FormatFloat(c.AnomalyTolerance, 'g', -1, 64), Source: c.Source("anomaly_tolerance")},
		{Name: "risk_confidence", Value: strconv.FormatFloat(c.RiskConfidence, 'g', -1, 64), Source: c.Source("risk_confidence")},
		{Name: "high_risk_operations", Value: strings.Join(c.HighRiskOperations, ","), Source: c.Source("high_risk_operations")},
		{Name: "decision_history_limit", Value: strconv.Itoa(c.DecisionHistoryLimit), Source: c.Source("decision_history_limit")},
		{Name: "decision_retention", Value: strconv.Itoa(c.DecisionRetention), Source: c.Source("decision_retention")},
		{Name: "policy_file", Value: c.PolicyFile, Source: c.Source("policy_file")},
		{Name: "segment_file", Value: c.SegmentFile, Source: c.Source("segment_file")},
		{Name: "rate_limit", Value: strconv.FormatFloat(c.RateLimit, 'g', -1, 64), Source: c.Source("rate_limit")},
		{Name: "rate_burst", Value: strconv.Itoa(c.RateBurst), Source: c.Source("rate_burst")},
	}
}

// FormatText returns a text representation of the configuration.
func (c *Config) FormatText() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Config file: %s\n\n", c.configFilePath))
	sb.WriteString(fmt.Sprintf("%-30s %-30s %s\n", "NAME", "VALUE", "SOURCE"))
	sb.WriteString(fmt.Sprintf("%-30s %-30s %s\n", "----", "-----", "------"))

	for _, attr := range c.Attributes() {
		value := attr.Value
		if value == "" {
			value = "(not set)"
		}
		sb.WriteString(fmt.Sprintf("%-30s %-30s %s\n", attr.Name, value, attr.Source))
	}
	return sb.String()
}

// FormatJSON returns a JSON representation of the configuration.
func (c *Config) FormatJSON() (string, error) {
	result := map[string]interface{}{
		"config_file": c.configFilePath,
		"attributes":  c.Attributes(),
	}
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func splitAndTrim(s string) []string {
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}
