// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads credentials from a directory of plain-text files, a
// dotenv file, and the process environment. Credentials never come from
// source code or the committed config file defaults.
//
// Supported key files: huggingface-api-token, patentsview-api-key.
package secrets

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// Key file names in the secrets directory.
const (
	HuggingFaceTokenFile = "huggingface-api-token"
	PatentsViewKeyFile   = "patentsview-api-key"
)

// Environment variable names, also accepted in the dotenv file.
var (
	huggingFaceEnv = []string{"HF_API_TOKEN", "HUGGINGFACE_API_TOKEN"}
	patentsViewEnv = []string{"PATENTSVIEW_API_KEY"}
)

// Load reads all files in dir and returns a map of filename to trimmed contents.
// A missing directory is not an error; Load returns an empty map.
// Unreadable files are logged and skipped.
func Load(dir string, log *zap.Logger) (map[string]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	secrets := make(map[string]string)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			log.Warn("could not read secret", zap.String("name", name), zap.Error(err))
			continue
		}

		value := strings.TrimSpace(string(data))
		if value != "" {
			secrets[name] = value
		}
	}

	return secrets, nil
}

// LoadEnvFile parses a dotenv file without touching the process
// environment. A missing file yields an empty map.
func LoadEnvFile(path string) (map[string]string, error) {
	vals, err := godotenv.Read(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("reading env file %s: %w", path, err)
	}
	return vals, nil
}

// Credentials are the secrets the pipeline stages use.
type Credentials struct {
	HuggingFaceToken string
	PatentsViewKey   string
}

// Collect resolves credentials. The process environment wins over the
// dotenv file, which wins over the secrets directory.
func Collect(dir, envFile string, log *zap.Logger) (Credentials, error) {
	files, err := Load(dir, log)
	if err != nil {
		return Credentials{}, err
	}
	dotenv, err := LoadEnvFile(envFile)
	if err != nil {
		return Credentials{}, err
	}

	return Credentials{
		HuggingFaceToken: resolve(HuggingFaceTokenFile, huggingFaceEnv, dotenv, files),
		PatentsViewKey:   resolve(PatentsViewKeyFile, patentsViewEnv, dotenv, files),
	}, nil
}

func resolve(file string, envNames []string, dotenv, files map[string]string) string {
	for _, name := range envNames {
		if v := strings.TrimSpace(os.Getenv(name)); v != "" {
			return v
		}
	}
	for _, name := range envNames {
		if v := strings.TrimSpace(dotenv[name]); v != "" {
			return v
		}
	}
	return files[file]
}
