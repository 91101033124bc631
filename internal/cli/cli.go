// Package cli implements the navigator maintenance command line.
//
// The commands operate either on an exported JSON document (--file) or on
// the SQLite store the server uses (import, export). Every command that
// changes a document writes it back in place unless --out names another
// file, and reports the diagnostics the navigator core returned.
package cli

import (
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/lehmann314159/navigator/internal/config"
)

const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds the state shared by every command.
type CLI struct {
	Logger *log.Logger
	Config *config.Config
	Out    io.Writer
	Now    func() time.Time

	configPath string
}

// New creates a CLI that prints reports to out and logs to logw.
func New(out, logw io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(logw, level),
		Config: config.Default(),
		Out:    out,
		Now:    time.Now,
	}
}

func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          "navigator",
		Short:        "Maintain a site navigator's groups and sites",
		Long:         `navigator repairs, reorganizes and bulk-loads the groups and sites of a site navigator, working on exported JSON documents or on the server's SQLite store.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.loadConfig()
		},
	}

	root.PersistentFlags().StringVar(&c.configPath, "config", "navigator.toml", "configuration file")

	root.AddCommand(c.rebuildCommand())
	root.AddCommand(c.reparentCommand())
	root.AddCommand(c.promoteCommand())
	root.AddCommand(c.deleteCommand())
	root.AddCommand(c.insertCommand())
	root.AddCommand(c.verifyCommand())
	root.AddCommand(c.checkCommand())
	root.AddCommand(c.stampCommand())
	root.AddCommand(c.analyzeCommand())
	root.AddCommand(c.importCommand())
	root.AddCommand(c.exportCommand())

	return root
}

func (c *CLI) loadConfig() error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	cfg.ApplyEnv()
	if err := cfg.Validate(); err != nil {
		return err
	}
	c.Config = cfg
	c.Logger.Debug("config loaded", "path", c.configPath, "data_dir", cfg.Server.DataDir)
	return nil
}
