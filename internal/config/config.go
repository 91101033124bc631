package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/lehmann314159/navigator/internal/models"
	"github.com/lehmann314159/navigator/internal/navigator"
)

type Config struct {
	Server    Server            `toml:"server"`
	Navigator Navigator         `toml:"navigator"`
	Tree      []models.TreeNode `toml:"tree"`
}

type Server struct {
	Addr    string `toml:"addr"`
	DataDir string `toml:"data_dir"`
}

type Navigator struct {
	FaviconService string `toml:"favicon_service"`
	Version        string `toml:"version"`
}

func Default() *Config {
	return &Config{
		Server: Server{
			Addr:    ":8080",
			DataDir: "./data",
		},
		Navigator: Navigator{
			FaviconService: navigator.DefaultFaviconService,
			Version:        "1.0",
		},
	}
}

// Load reads path over the defaults. An empty path or a missing file yields
// the defaults unchanged.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to load config %s: %w", path, err)
	}
	return cfg, nil
}

// ApplyEnv overrides settings from DATA_DIR and PORT.
func (c *Config) ApplyEnv() {
	if dir := os.Getenv("DATA_DIR"); dir != "" {
		c.Server.DataDir = dir
	}
	if port := os.Getenv("PORT"); port != "" {
		c.Server.Addr = ":" + port
	}
}

func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return errors.New("server address is required")
	}
	if c.Server.DataDir == "" {
		return errors.New("data directory is required")
	}
	if c.Navigator.FaviconService == "" {
		return errors.New("favicon service is required")
	}
	return ValidateTree(c.Tree)
}

// LoadTree reads a standalone canonical target tree file made of [[tree]]
// tables.
func LoadTree(path string) ([]models.TreeNode, error) {
	var file struct {
		Tree []models.TreeNode `toml:"tree"`
	}
	if _, err := toml.DecodeFile(path, &file); err != nil {
		return nil, fmt.Errorf("failed to load tree %s: %w", path, err)
	}
	if len(file.Tree) == 0 {
		return nil, fmt.Errorf("tree %s has no [[tree]] entries", path)
	}
	if err := ValidateTree(file.Tree); err != nil {
		return nil, fmt.Errorf("tree %s: %w", path, err)
	}
	return file.Tree, nil
}

// ValidateTree rejects unnamed entries and names repeated among siblings.
func ValidateTree(tree []models.TreeNode) error {
	tops := map[string]bool{}
	for i, node := range tree {
		if node.Name == "" {
			return fmt.Errorf("tree entry %d: name is required", i)
		}
		if tops[node.Name] {
			return fmt.Errorf("tree entry %q appears twice", node.Name)
		}
		tops[node.Name] = true

		children := map[string]bool{}
		for _, child := range node.Children {
			if child == "" {
				return fmt.Errorf("tree entry %q: child name is required", node.Name)
			}
			if children[child] {
				return fmt.Errorf("tree entry %q: child %q appears twice", node.Name, child)
			}
			children[child] = true
		}
	}
	return nil
}
