package cli

import (
	"github.com/spf13/cobra"

	"github.com/lehmann314159/navigator/internal/document"
	"github.com/lehmann314159/navigator/internal/models"
)

// docFlags are the --file/--out pair shared by commands that rewrite a
// document.
type docFlags struct {
	file   string
	out    string
	dryRun bool
}

func (f *docFlags) register(cmd *cobra.Command, writes bool) {
	cmd.Flags().StringVarP(&f.file, "file", "f", "", "navigator JSON document")
	cmd.MarkFlagRequired("file")
	if writes {
		cmd.Flags().StringVarP(&f.out, "out", "o", "", "write the result here instead of over --file")
		cmd.Flags().BoolVar(&f.dryRun, "dry-run", false, "report without writing")
	}
}

func (f *docFlags) target() string {
	if f.out != "" {
		return f.out
	}
	return f.file
}

func (c *CLI) readDocument(path string) (*models.Document, error) {
	doc, err := document.Read(path)
	if err != nil {
		return nil, err
	}
	c.Logger.Debug("document loaded", "path", path, "groups", len(doc.Groups), "sites", len(doc.Sites))
	return doc, nil
}

// writeDocument saves doc unless this is a dry run.
func (c *CLI) writeDocument(f *docFlags, doc *models.Document) error {
	if f.dryRun {
		c.printInfo("Dry run, nothing written")
		return nil
	}
	path := f.target()
	if err := document.Write(path, doc); err != nil {
		return err
	}
	c.printFile(path)
	return nil
}
