package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Network string

const (
	Network_Mainnet Network = "mainnet"
	Network_Testnet Network = "testnet"
)

func (n Network) String() string {
	return string(n)
}

func ParseNetwork(name string) (Network, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "mainnet":
		return Network_Mainnet, nil
	case "testnet":
		return Network_Testnet, nil
	case "":
		return "", fmt.Errorf("network not provided")
	default:
		return "", fmt.Errorf("unsupported network %s", name)
	}
}

type Config struct {
	Network Network
	NodeEnv string
	Debug   bool

	ApiConfig        ApiConfig
	RpcConfig        RpcConfig
	HttpConfig       HttpConfig
	MetadataConfig   MetadataConfig
	ReceiptsConfig   ReceiptsConfig
	PrometheusConfig PrometheusConfig
	DataDogConfig    DataDogConfig
}

type ApiConfig struct {
	Url       string
	AccessKey string
	Timeout   time.Duration
	Retries   int
}

type RpcConfig struct {
	Urls    []string
	Timeout time.Duration
}

type HttpConfig struct {
	Port           int
	AllowedOrigins []string
}

type MetadataConfig struct {
	Concurrency int
}

type ReceiptsConfig struct {
	MaxDepth int
}

type PrometheusConfig struct {
	Enabled bool
	Port    int
}

type DataDogConfig struct {
	StatsdConfig  StatsdConfig
	TracingConfig TracingConfig
}

type StatsdConfig struct {
	Enabled bool
	Url     string
}

type TracingConfig struct {
	Enabled bool
}

const ENV_PREFIX = ""

var (
	NetworkKey = "network"
	NodeEnv    = "node-env"
	Debug      = "debug"

	ApiUrl       = "api.url"
	ApiAccessKey = "api.access-key"
	ApiTimeout   = "api.timeout"
	ApiRetries   = "api.retries"

	RpcUrls    = "rpc.urls"
	RpcTimeout = "rpc.timeout"

	HttpPort           = "http.port"
	HttpAllowedOrigins = "http.allowed-origins"

	MetadataConcurrency = "metadata.concurrency"
	ReceiptsMaxDepth    = "receipts.max-depth"

	PrometheusEnabled = "prometheus.enabled"
	PrometheusPort    = "prometheus.port"

	DataDogStatsdEnabled  = "datadog.statsd.enabled"
	DataDogStatsdUrl      = "datadog.statsd.url"
	DataDogTracingEnabled = "datadog.tracing.enabled"
)

func NewConfig() *Config {
	network, err := ParseNetwork(viper.GetString(normalizeFlagName(NetworkKey)))
	if err != nil {
		network = Network_Mainnet
	}

	cfg := &Config{
		Network: network,
		NodeEnv: viper.GetString(normalizeFlagName(NodeEnv)),
		Debug:   viper.GetBool(normalizeFlagName(Debug)),

		ApiConfig: ApiConfig{
			Url:       viper.GetString(normalizeFlagName(ApiUrl)),
			AccessKey: viper.GetString(normalizeFlagName(ApiAccessKey)),
			Timeout:   viper.GetDuration(normalizeFlagName(ApiTimeout)),
			Retries:   viper.GetInt(normalizeFlagName(ApiRetries)),
		},

		RpcConfig: RpcConfig{
			Urls:    parseStringAsList(viper.GetString(normalizeFlagName(RpcUrls))),
			Timeout: viper.GetDuration(normalizeFlagName(RpcTimeout)),
		},

		HttpConfig: HttpConfig{
			Port:           viper.GetInt(normalizeFlagName(HttpPort)),
			AllowedOrigins: parseStringAsList(viper.GetString(normalizeFlagName(HttpAllowedOrigins))),
		},

		MetadataConfig: MetadataConfig{
			Concurrency: viper.GetInt(normalizeFlagName(MetadataConcurrency)),
		},

		ReceiptsConfig: ReceiptsConfig{
			MaxDepth: viper.GetInt(normalizeFlagName(ReceiptsMaxDepth)),
		},

		PrometheusConfig: PrometheusConfig{
			Enabled: viper.GetBool(normalizeFlagName(PrometheusEnabled)),
			Port:    viper.GetInt(normalizeFlagName(PrometheusPort)),
		},

		DataDogConfig: DataDogConfig{
			StatsdConfig: StatsdConfig{
				Enabled: viper.GetBool(normalizeFlagName(DataDogStatsdEnabled)),
				Url:     viper.GetString(normalizeFlagName(DataDogStatsdUrl)),
			},
			TracingConfig: TracingConfig{
				Enabled: viper.GetBool(normalizeFlagName(DataDogTracingEnabled)),
			},
		},
	}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.ApiConfig.Url == "" {
		c.ApiConfig.Url = c.GetDefaultApiUrl()
	}
	if !strings.HasSuffix(c.ApiConfig.Url, "/") {
		c.ApiConfig.Url += "/"
	}
	if c.ApiConfig.Timeout <= 0 {
		c.ApiConfig.Timeout = 10 * time.Second
	}
	if c.ApiConfig.Retries <= 0 {
		c.ApiConfig.Retries = 3
	}
	if len(c.RpcConfig.Urls) == 0 {
		c.RpcConfig.Urls = c.GetDefaultRpcUrls()
	}
	if c.RpcConfig.Timeout <= 0 {
		c.RpcConfig.Timeout = 10 * time.Second
	}
	if c.HttpConfig.Port <= 0 {
		c.HttpConfig.Port = 3001
	}
	if c.MetadataConfig.Concurrency <= 0 {
		c.MetadataConfig.Concurrency = 8
	}
	if c.ReceiptsConfig.MaxDepth <= 0 {
		c.ReceiptsConfig.MaxDepth = 512
	}
}

// Validate checks the values the service cannot start without.
func (c *Config) Validate() error {
	if _, err := ParseNetwork(viper.GetString(normalizeFlagName(NetworkKey))); err != nil {
		return fmt.Errorf("%s is required: %w", NetworkKey, err)
	}
	if c.ApiConfig.AccessKey == "" {
		return fmt.Errorf("%s is required", ApiAccessKey)
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.NodeEnv, "production")
}

func (c *Config) GetDefaultApiUrl() string {
	if c.Network == Network_Testnet {
		return "https://api-testnet.nearblocks.io/"
	}
	return "https://api.nearblocks.io/"
}

// GetDefaultRpcUrls returns the ordered failover list for the configured network.
func (c *Config) GetDefaultRpcUrls() []string {
	if c.Network == Network_Testnet {
		return []string{
			"https://rpc.testnet.near.org",
			"https://test.rpc.fastnear.com",
			"https://neart.lava.build",
		}
	}
	return []string{
		"https://rpc.mainnet.near.org",
		"https://free.rpc.fastnear.com",
		"https://near.lava.build",
	}
}

// ContractRegistry lists the well-known contracts whose freeform logs are parsed.
type ContractRegistry struct {
	Wrap   string
	Ref    []string
	Burrow string
}

func (c *Config) GetContractRegistry() *ContractRegistry {
	if c.Network == Network_Testnet {
		return &ContractRegistry{
			Wrap:   "wrap.testnet",
			Ref:    []string{"ref-finance-101.testnet", "exchange.ref-dev.testnet"},
			Burrow: "contract.1638481328.burrow.testnet",
		}
	}
	return &ContractRegistry{
		Wrap:   "wrap.near",
		Ref:    []string{"v2.ref-finance.near", "dclv2.ref-labs.near"},
		Burrow: "contract.main.burrow.near",
	}
}

// IsRefContract reports whether contract belongs to Ref Finance on this network.
func (r *ContractRegistry) IsRefContract(contract string) bool {
	for _, c := range r.Ref {
		if c == contract {
			return true
		}
	}
	return false
}

func parseStringAsList(envVar string) []string {
	if envVar == "" {
		return []string{}
	}
	// split on commas
	stringList := strings.Split(envVar, ",")

	l := make([]string, 0)
	for _, s := range stringList {
		s = strings.TrimSpace(s)
		if s != "" {
			l = append(l, s)
		}
	}
	return l
}

func KebabToSnakeCase(str string) string {
	return strings.ReplaceAll(str, "-", "_")
}

func normalizeFlagName(name string) string {
	return KebabToSnakeCase(name)
}
