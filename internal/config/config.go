// Package config loads runtime configuration via viper, which merges cobra
// flag defaults, bound flags, and BROWSE_* environment variables, grounded
// on joestump-claude-ops's internal/config/cmd/claudeops split (flags and
// env binding live in cmd/, this package only reads the merged result).
package config

import "github.com/spf13/viper"

// Config holds every runtime setting for the daemon and operator CLI.
type Config struct {
	MCPListenAddr  string
	RESTListenAddr string
	EventBusAddr   string

	StreamStorePath string
	StreamMaxLen    int
	StreamIdleTTLMs int
	DedupTTLMs      int

	KnowledgeDSN string

	TemporalHostPort string
	TemporalTaskQueue string

	ActionDefaultTimeoutMs int

	VerifyEnabled bool

	UploadDir          string
	UploadDenyPatterns []string
}

// Load reads configuration from viper. Callers bind flags and env vars
// (cmd/browseagentd, cmd/browseagentctl) before calling Load.
func Load() Config {
	return Config{
		MCPListenAddr:  viper.GetString("mcp_listen_addr"),
		RESTListenAddr: viper.GetString("rest_listen_addr"),
		EventBusAddr:   viper.GetString("eventbus_listen_addr"),

		StreamStorePath: viper.GetString("stream_store_path"),
		StreamMaxLen:    viper.GetInt("stream_max_len"),
		StreamIdleTTLMs: viper.GetInt("stream_idle_ttl_ms"),
		DedupTTLMs:      viper.GetInt("dedup_ttl_ms"),

		KnowledgeDSN: viper.GetString("knowledge_dsn"),

		TemporalHostPort:  viper.GetString("temporal_host_port"),
		TemporalTaskQueue: viper.GetString("temporal_task_queue"),

		ActionDefaultTimeoutMs: viper.GetInt("action_default_timeout_ms"),

		VerifyEnabled: viper.GetBool("verify_enabled"),

		UploadDir:          viper.GetString("upload_dir"),
		UploadDenyPatterns: viper.GetStringSlice("upload_deny_pattern"),
	}
}
