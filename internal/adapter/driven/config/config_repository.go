package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/diillson/finly-dashboard-go/internal/domain/repository"
	"github.com/diillson/finly-dashboard-go/internal/shared/types"
	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml"
	"gopkg.in/yaml.v3"
)

// Variáveis de ambiente reconhecidas
const (
	EnvAPIURL       = "FINLY_API_URL"
	EnvStateDB      = "FINLY_STATE_DB"
	EnvUserIDHeader = "FINLY_USER_ID_HEADER"
	EnvTimeout      = "FINLY_TIMEOUT"
	EnvNoticeTTL    = "FINLY_NOTICE_TTL"
	EnvPageSize     = "FINLY_PAGE_SIZE"
	EnvReleaseURL   = "FINLY_RELEASE_URL"
)

// ConfigRepositoryImpl implementa o ConfigRepository.
type ConfigRepositoryImpl struct {
	envFiles []string
}

// NewConfigRepository cria uma nova implementação do ConfigRepository.
// envFiles são carregados por godotenv antes de ler o ambiente; o padrão é ".env".
func NewConfigRepository(envFiles ...string) repository.ConfigRepository {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	return &ConfigRepositoryImpl{envFiles: envFiles}
}

// LoadConfigFile carrega um arquivo de configuração TOML, YAML ou JSON.
func (r *ConfigRepositoryImpl) LoadConfigFile(filePath string) (*types.Config, error) {
	fileExtension := filepath.Ext(filePath)
	fileExtension = strings.ToLower(fileExtension)

	// Verifica se o arquivo existe
	fileInfo, err := os.Stat(filePath)
	if err != nil {
		return nil, fmt.Errorf("error accessing config file: %w", err)
	}

	if fileInfo.IsDir() {
		return nil, fmt.Errorf("%s is a directory, not a file", filePath)
	}

	fileData, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	var config types.Config

	switch fileExtension {
	case ".toml":
		if err := toml.Unmarshal(fileData, &config); err != nil {
			return nil, fmt.Errorf("error parsing TOML file: %w", err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(fileData, &config); err != nil {
			return nil, fmt.Errorf("error parsing YAML file: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(fileData, &config); err != nil {
			return nil, fmt.Errorf("error parsing JSON file: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported config file format: %s", fileExtension)
	}

	return &config, nil
}

// ApplyEnv sobrescreve a configuração com variáveis de ambiente.
// Arquivos .env ausentes são ignorados; variáveis já definidas no processo têm precedência.
func (r *ConfigRepositoryImpl) ApplyEnv(cfg *types.Config) error {
	for _, file := range r.envFiles {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("error loading %s: %w", file, err)
		}
	}

	if v, ok := os.LookupEnv(EnvAPIURL); ok && v != "" {
		cfg.APIURL = v
	}
	if v, ok := os.LookupEnv(EnvStateDB); ok && v != "" {
		cfg.StateDB = v
	}
	if v, ok := os.LookupEnv(EnvReleaseURL); ok && v != "" {
		cfg.ReleaseURL = v
	}
	if v, ok := os.LookupEnv(EnvUserIDHeader); ok && v != "" {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvUserIDHeader, err)
		}
		cfg.SendUserIDHeader = enabled
	}

	ints := []struct {
		key string
		dst *int
	}{
		{EnvTimeout, &cfg.TimeoutSeconds},
		{EnvPageSize, &cfg.PageSize},
	}
	for _, item := range ints {
		v, ok := os.LookupEnv(item.key)
		if !ok || v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return fmt.Errorf("invalid %s: %q must be a positive integer", item.key, v)
		}
		*item.dst = n
	}

	// 0 desliga a expiração dos avisos
	if v, ok := os.LookupEnv(EnvNoticeTTL); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return fmt.Errorf("invalid %s: %q must be zero or a positive integer", EnvNoticeTTL, v)
		}
		cfg.NoticeTTLSeconds = &n
	}

	return nil
}
