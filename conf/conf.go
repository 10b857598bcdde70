package conf

import (
	"fmt"
	"time"

	"github.com/squareup/shardnode/errors"
)

const (
	DefaultWaitPollInterval  = 100 * time.Millisecond
	DefaultActivatorWakeup   = 1 * time.Second
	DefaultDefaultTableSpace = "default"
	DefaultMetricsListenAddr = "localhost:9102"
)

// Config holds the settings needed to start a single node's control plane:
// where it persists its Page Store/Durable Log, what tablespace it boots by
// default, and how the waitFor* loops are paced. ActivatorWakeupTimeout is
// validated but not read: the Activator waits for its wakeup signal with
// no timeout.
type Config struct {
	NodeID                 string        `json:"node_id,omitempty"`
	DataDir                string        `json:"data_dir,omitempty"`
	TestServer             bool          `json:"test_server,omitempty"`
	DefaultTableSpace      string        `json:"default_table_space,omitempty"`
	WaitPollInterval       time.Duration `json:"wait_poll_interval,omitempty"`
	ActivatorWakeupTimeout time.Duration `json:"activator_wakeup_timeout,omitempty"`
	Debug                  bool          `json:"debug,omitempty"`
	EnableMetrics          bool          `json:"enable_metrics,omitempty"`
	MetricsListenAddress   string        `json:"metrics_listen_address,omitempty"`
}

func (c *Config) Validate() error { //nolint:gocyclo
	if c.NodeID == "" {
		return errors.NewInvalidConfigurationError("NodeID must be specified")
	}
	if c.DefaultTableSpace == "" {
		return errors.NewInvalidConfigurationError("DefaultTableSpace must be specified")
	}
	if c.WaitPollInterval < time.Millisecond {
		return errors.NewInvalidConfigurationError(fmt.Sprintf("WaitPollInterval must be >= %d", time.Millisecond))
	}
	if c.ActivatorWakeupTimeout < time.Millisecond {
		return errors.NewInvalidConfigurationError(fmt.Sprintf("ActivatorWakeupTimeout must be >= %d", time.Millisecond))
	}
	if c.EnableMetrics && c.MetricsListenAddress == "" {
		return errors.NewInvalidConfigurationError("MetricsListenAddress must be specified when EnableMetrics is true")
	}
	if !c.TestServer && c.DataDir == "" {
		return errors.NewInvalidConfigurationError("DataDir must be specified")
	}
	return nil
}

func NewDefaultConfig() *Config {
	return &Config{
		DefaultTableSpace:      DefaultDefaultTableSpace,
		WaitPollInterval:       DefaultWaitPollInterval,
		ActivatorWakeupTimeout: DefaultActivatorWakeup,
		MetricsListenAddress:   DefaultMetricsListenAddr,
	}
}

func NewTestConfig(nodeID string) *Config {
	return &Config{
		NodeID:                 nodeID,
		TestServer:             true,
		DefaultTableSpace:      DefaultDefaultTableSpace,
		WaitPollInterval:       time.Millisecond,
		ActivatorWakeupTimeout: 10 * time.Millisecond,
	}
}
