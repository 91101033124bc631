package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lehmann314159/navigator/internal/database"
	"github.com/lehmann314159/navigator/internal/document"
	"github.com/lehmann314159/navigator/internal/navigator"
	"github.com/lehmann314159/navigator/internal/repository"
)

// openRepository opens the SQLite store in dataDir, falling back to the
// configured data directory. The returned func closes it.
func (c *CLI) openRepository(dataDir string) (*repository.Repository, func(), error) {
	if dataDir == "" {
		dataDir = c.Config.Server.DataDir
	}
	db, err := database.New(dataDir)
	if err != nil {
		return nil, nil, err
	}
	c.Logger.Debug("store opened", "data_dir", dataDir)
	return repository.New(db), func() { db.Close() }, nil
}

func (c *CLI) importCommand() *cobra.Command {
	var dataDir string

	cmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Replace the store's contents with a document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := c.readDocument(args[0])
			if err != nil {
				return err
			}
			if n := c.printDiagnostics(navigator.Validate(doc.Groups, doc.Sites)); n > 0 {
				return fmt.Errorf("refusing to import %s: %d problems", args[0], n)
			}

			repo, closeRepo, err := c.openRepository(dataDir)
			if err != nil {
				return err
			}
			defer closeRepo()

			prog := newProgress(c.Logger)
			if err := repo.ReplaceDocument(doc); err != nil {
				return fmt.Errorf("import %s: %w", args[0], err)
			}
			prog.done("document imported")
			c.printSuccess("Imported %d groups, %d sites, %d configs", len(doc.Groups), len(doc.Sites), len(doc.Configs))
			return nil
		},
	}

	cmd.Flags().StringVar(&dataDir, "data-dir", "", "SQLite data directory (default from config)")
	return cmd
}

func (c *CLI) exportCommand() *cobra.Command {
	var dataDir, out string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the store's contents as a stamped document",
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, closeRepo, err := c.openRepository(dataDir)
			if err != nil {
				return err
			}
			defer closeRepo()

			doc, err := repo.LoadDocument()
			if err != nil {
				return err
			}
			document.Stamp(doc, c.Config.Navigator.Version, c.Now())

			if err := document.Write(out, doc); err != nil {
				return err
			}
			c.printSuccess("Exported %d groups, %d sites", len(doc.Groups), len(doc.Sites))
			c.printFile(out)
			return nil
		},
	}

	cmd.Flags().StringVar(&dataDir, "data-dir", "", "SQLite data directory (default from config)")
	cmd.Flags().StringVarP(&out, "out", "o", "navigator.json", "output document")
	return cmd
}
