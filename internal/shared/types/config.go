package types

import "time"

const (
	DefaultAPIURL    = "http://backend.finly.click"
	DefaultStateDB   = "finly.db"
	DefaultTimeout   = 15
	DefaultNoticeTTL = 5
	DefaultPageSize  = 5
)

// Config represents the application configuration that can be loaded from a file.
type Config struct {
	APIURL           string `json:"api_url" yaml:"api_url" toml:"api_url"`
	StateDB          string `json:"state_db" yaml:"state_db" toml:"state_db"`
	SendUserIDHeader bool   `json:"send_user_id_header" yaml:"send_user_id_header" toml:"send_user_id_header"`
	TimeoutSeconds   int    `json:"timeout_seconds" yaml:"timeout_seconds" toml:"timeout_seconds"`
	// NoticeTTLSeconds 0 desliga a expiração dos avisos; nil usa o padrão.
	NoticeTTLSeconds *int   `json:"notice_ttl_seconds" yaml:"notice_ttl_seconds" toml:"notice_ttl_seconds"`
	PageSize         int    `json:"page_size" yaml:"page_size" toml:"page_size"`
	ReportDir        string `json:"report_dir" yaml:"report_dir" toml:"report_dir"`
	// ReleaseURL aponta para o documento da última release; vazio desliga a verificação.
	ReleaseURL       string `json:"release_url" yaml:"release_url" toml:"release_url"`
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() *Config {
	ttl := DefaultNoticeTTL
	return &Config{
		APIURL:           DefaultAPIURL,
		StateDB:          DefaultStateDB,
		TimeoutSeconds:   DefaultTimeout,
		NoticeTTLSeconds: &ttl,
		PageSize:         DefaultPageSize,
	}
}

// Merge copies every non-zero field of other into c. NoticeTTLSeconds is
// copied whenever it was set, zero included.
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}
	if other.APIURL != "" {
		c.APIURL = other.APIURL
	}
	if other.StateDB != "" {
		c.StateDB = other.StateDB
	}
	if other.SendUserIDHeader {
		c.SendUserIDHeader = true
	}
	if other.TimeoutSeconds > 0 {
		c.TimeoutSeconds = other.TimeoutSeconds
	}
	if other.NoticeTTLSeconds != nil {
		ttl := *other.NoticeTTLSeconds
		c.NoticeTTLSeconds = &ttl
	}
	if other.PageSize > 0 {
		c.PageSize = other.PageSize
	}
	if other.ReportDir != "" {
		c.ReportDir = other.ReportDir
	}
	if other.ReleaseURL != "" {
		c.ReleaseURL = other.ReleaseURL
	}
}

func (c *Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// NoticeTTL devolve zero quando os avisos não expiram.
func (c *Config) NoticeTTL() time.Duration {
	if c.NoticeTTLSeconds == nil {
		return DefaultNoticeTTL * time.Second
	}
	if *c.NoticeTTLSeconds <= 0 {
		return 0
	}
	return time.Duration(*c.NoticeTTLSeconds) * time.Second
}
