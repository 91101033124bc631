package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lehmann314159/navigator/internal/document"
	"github.com/lehmann314159/navigator/internal/navigator"
)

func (c *CLI) insertCommand() *cobra.Command {
	var flags docFlags
	var specs []string

	cmd := &cobra.Command{
		Use:   "insert",
		Short: "Append prepared site entries to groups",
		Long: `Insert appends sites prepared outside the navigator. Each --batch names a
target group id and a JSON file of {name, official_website, description}
entries. Ids and order numbers continue after the document's current maxima,
and every icon is derived from the site's hostname.`,
		Example: `  navigator insert -f navigator.json --batch 51=ai-office.json --batch 52=ai-common.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			batches := make([]navigator.Batch, 0, len(specs))
			for _, spec := range specs {
				b, err := parseBatch(spec)
				if err != nil {
					return err
				}
				batches = append(batches, b)
			}

			doc, err := c.readDocument(flags.file)
			if err != nil {
				return err
			}

			inserter := navigator.Inserter{FaviconService: c.Config.Navigator.FaviconService}
			res := inserter.InsertBatches(doc.Groups, doc.Sites, batches, c.Now())
			c.printDiagnostics(res.Diagnostics)
			for _, s := range res.Inserted {
				c.printDetail("%d %s %s", s.ID, s.Name, s.URL)
			}
			if len(res.Inserted) == 0 {
				c.printWarning("No sites inserted")
				return nil
			}

			doc.Sites = res.Sites
			c.printSuccess("Inserted %d sites", len(res.Inserted))
			return c.writeDocument(&flags, doc)
		},
	}

	flags.register(cmd, true)
	cmd.Flags().StringArrayVar(&specs, "batch", nil, "GROUP_ID=entries.json (repeatable)")
	cmd.MarkFlagRequired("batch")
	return cmd
}

func parseBatch(spec string) (navigator.Batch, error) {
	id, path, ok := strings.Cut(spec, "=")
	if !ok || path == "" {
		return navigator.Batch{}, fmt.Errorf("invalid batch %q: want GROUP_ID=file.json", spec)
	}
	groupID, err := parseIDArg(id)
	if err != nil {
		return navigator.Batch{}, fmt.Errorf("invalid batch %q: %w", spec, err)
	}
	entries, err := document.ReadEntries(path)
	if err != nil {
		return navigator.Batch{}, err
	}
	return navigator.Batch{GroupID: groupID, Entries: entries}, nil
}
