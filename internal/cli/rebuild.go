package cli

import (
	"errors"
	"maps"
	"slices"

	"github.com/spf13/cobra"

	"github.com/lehmann314159/navigator/internal/config"
	"github.com/lehmann314159/navigator/internal/navigator"
)

func (c *CLI) rebuildCommand() *cobra.Command {
	var flags docFlags
	var treePath string

	cmd := &cobra.Command{
		Use:   "rebuild",
		Short: "Renumber groups to follow the canonical tree",
		Long: `Rebuild replaces the groups of a document with the ones named by the
canonical tree, numbering them from 1 in tree order, and moves every site to
its group's new id. Groups the tree does not name are dropped; their sites
keep the old group id and are reported one by one.

The tree comes from --tree, or from the [[tree]] entries of the config.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			tree := c.Config.Tree
			if treePath != "" {
				var err error
				if tree, err = config.LoadTree(treePath); err != nil {
					return err
				}
			}
			if len(tree) == 0 {
				return errors.New("no canonical tree: pass --tree or add [[tree]] entries to the config")
			}

			doc, err := c.readDocument(flags.file)
			if err != nil {
				return err
			}

			prog := newProgress(c.Logger)
			res := navigator.Rebuild(doc.Groups, doc.Sites, tree)
			prog.done("hierarchy rebuilt")

			for _, old := range slices.Sorted(maps.Keys(res.Mapping)) {
				c.Logger.Debug("group renumbered", "old", old, "new", res.Mapping[old])
			}
			c.printDiagnostics(res.Diagnostics)
			if dropped := len(doc.Groups) - len(res.Groups); dropped > 0 {
				c.printWarning("%d groups are not in the tree and were dropped", dropped)
			}

			doc.Groups, doc.Sites = res.Groups, res.Sites
			c.printSuccess("Rebuilt %d groups, %d sites", len(res.Groups), len(res.Sites))
			return c.writeDocument(&flags, doc)
		},
	}

	flags.register(cmd, true)
	cmd.Flags().StringVar(&treePath, "tree", "", "TOML file with the canonical [[tree]]")
	return cmd
}
