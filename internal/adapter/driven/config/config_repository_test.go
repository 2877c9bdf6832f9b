package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/diillson/finly-dashboard-go/internal/shared/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadConfigFileFormats(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{"toml", "finly.toml", "api_url = \"http://localhost:8080\"\nsend_user_id_header = true\npage_size = 10\n"},
		{"yaml", "finly.yaml", "api_url: http://localhost:8080\nsend_user_id_header: true\npage_size: 10\n"},
		{"yml", "finly.yml", "api_url: http://localhost:8080\nsend_user_id_header: true\npage_size: 10\n"},
		{"json", "finly.json", `{"api_url": "http://localhost:8080", "send_user_id_header": true, "page_size": 10}`},
	}

	repo := NewConfigRepository()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := repo.LoadConfigFile(writeFile(t, tt.file, tt.content))
			require.NoError(t, err)
			assert.Equal(t, "http://localhost:8080", cfg.APIURL)
			assert.True(t, cfg.SendUserIDHeader)
			assert.Equal(t, 10, cfg.PageSize)
		})
	}
}

func TestLoadConfigFileErrors(t *testing.T) {
	repo := NewConfigRepository()

	_, err := repo.LoadConfigFile(filepath.Join(t.TempDir(), "missing.toml"))
	assert.ErrorContains(t, err, "error accessing config file")

	_, err = repo.LoadConfigFile(t.TempDir())
	assert.ErrorContains(t, err, "is a directory")

	_, err = repo.LoadConfigFile(writeFile(t, "finly.ini", "x=1"))
	assert.ErrorContains(t, err, "unsupported config file format")
}

func TestApplyEnv(t *testing.T) {
	t.Setenv(EnvAPIURL, "http://env:9000")
	t.Setenv(EnvUserIDHeader, "true")
	t.Setenv(EnvNoticeTTL, "9")

	cfg := types.DefaultConfig()
	repo := NewConfigRepository(filepath.Join(t.TempDir(), "absent.env"))
	require.NoError(t, repo.ApplyEnv(cfg))

	assert.Equal(t, "http://env:9000", cfg.APIURL)
	assert.True(t, cfg.SendUserIDHeader)
	assert.Equal(t, 9*time.Second, cfg.NoticeTTL())
	assert.Equal(t, types.DefaultPageSize, cfg.PageSize)
}

func TestApplyEnvReadsDotEnvFile(t *testing.T) {
	// make sure the variable is unset for this test and restored afterwards
	t.Setenv(EnvStateDB, "")
	os.Unsetenv(EnvStateDB)

	envFile := writeFile(t, ".env", EnvStateDB+"=/tmp/finly-test.db\n")
	cfg := types.DefaultConfig()
	require.NoError(t, NewConfigRepository(envFile).ApplyEnv(cfg))
	assert.Equal(t, "/tmp/finly-test.db", cfg.StateDB)
	os.Unsetenv(EnvStateDB)
}

func TestApplyEnvRejectsBadNumbers(t *testing.T) {
	t.Setenv(EnvTimeout, "soon")
	err := NewConfigRepository(filepath.Join(t.TempDir(), "absent.env")).ApplyEnv(types.DefaultConfig())
	assert.ErrorContains(t, err, EnvTimeout)
}

func TestNoticeTTLZeroKeepsNotices(t *testing.T) {
	repo := NewConfigRepository(filepath.Join(t.TempDir(), "absent.env"))

	fileCfg, err := repo.LoadConfigFile(writeFile(t, "finly.toml", "notice_ttl_seconds = 0\n"))
	require.NoError(t, err)
	require.NotNil(t, fileCfg.NoticeTTLSeconds)

	cfg := types.DefaultConfig()
	assert.Equal(t, types.DefaultNoticeTTL*time.Second, cfg.NoticeTTL())
	cfg.Merge(fileCfg)
	assert.Equal(t, time.Duration(0), cfg.NoticeTTL())

	// um arquivo sem a chave não altera o padrão
	noTTL, err := repo.LoadConfigFile(writeFile(t, "other.toml", "page_size = 3\n"))
	require.NoError(t, err)
	cfg = types.DefaultConfig()
	cfg.Merge(noTTL)
	assert.Equal(t, types.DefaultNoticeTTL*time.Second, cfg.NoticeTTL())

	t.Setenv(EnvNoticeTTL, "0")
	cfg = types.DefaultConfig()
	require.NoError(t, repo.ApplyEnv(cfg))
	assert.Equal(t, time.Duration(0), cfg.NoticeTTL())

	t.Setenv(EnvNoticeTTL, "-1")
	assert.ErrorContains(t, repo.ApplyEnv(types.DefaultConfig()), EnvNoticeTTL)
}
