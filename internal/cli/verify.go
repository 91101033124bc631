package cli

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/lehmann314159/navigator/internal/document"
	"github.com/lehmann314159/navigator/internal/navigator"
)

func (c *CLI) verifyCommand() *cobra.Command {
	var flags docFlags

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Report hierarchy problems and per-group site counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := c.readDocument(flags.file)
			if err != nil {
				return err
			}

			c.printTitle("Groups")
			for _, top := range navigator.Project(doc.Groups, doc.Sites) {
				c.printInfo("%s (id %d): %d sites", top.Name, top.ID, len(top.Sites))
				for _, sub := range top.Subgroups {
					c.printDetail("%s (id %d): %d sites", sub.Name, sub.ID, len(sub.Sites))
				}
			}

			if n := c.printDiagnostics(navigator.Validate(doc.Groups, doc.Sites)); n > 0 {
				return fmt.Errorf("%d problems found", n)
			}
			c.printSuccess("%d groups, %d sites, no problems", len(doc.Groups), len(doc.Sites))
			return nil
		},
	}

	flags.register(cmd, false)
	return cmd
}

func (c *CLI) checkCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "check FILE",
		Short: "Check that a file has the shape an import expects",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}

			sum, problems := document.Check(raw)
			for _, p := range problems {
				c.printError("%s", p)
			}
			if len(problems) > 0 {
				return fmt.Errorf("%s is not importable: %d problems", args[0], len(problems))
			}

			c.printSuccess("%s is importable", args[0])
			c.printKeyValue("version", sum.Version)
			c.printKeyValue("exportDate", sum.ExportDate)
			c.printKeyValue("groups", strconv.Itoa(sum.Groups))
			c.printKeyValue("sites", strconv.Itoa(sum.Sites))
			c.printKeyValue("configs", strconv.Itoa(sum.Configs))
			return nil
		},
	}
}

func (c *CLI) stampCommand() *cobra.Command {
	var flags docFlags
	var version string

	cmd := &cobra.Command{
		Use:   "stamp",
		Short: "Set the document version and export date",
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := c.readDocument(flags.file)
			if err != nil {
				return err
			}
			if version == "" {
				version = c.Config.Navigator.Version
			}
			document.Stamp(doc, version, c.Now())
			c.printSuccess("Stamped version %s, exported %s", doc.Version, doc.ExportDate)
			return c.writeDocument(&flags, doc)
		},
	}

	flags.register(cmd, true)
	cmd.Flags().StringVar(&version, "version", "", "format version (default from config)")
	return cmd
}

func (c *CLI) analyzeCommand() *cobra.Command {
	var flags docFlags

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Suggest top-level groups that look like sub-groups",
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := c.readDocument(flags.file)
			if err != nil {
				return err
			}

			suggestions := navigator.SuggestParents(doc.Groups)
			if len(suggestions) == 0 {
				c.printSuccess("No nesting suggestions")
				return nil
			}
			c.printTitle("Suggested parents")
			for _, s := range suggestions {
				c.printInfo("%s (id %d) %s %s (id %d)", s.Child.Name, s.Child.ID, iconArrow, s.Parent.Name, s.Parent.ID)
			}
			c.printDetail("apply with: navigator reparent GROUP_ID PARENT_ID -f %s", flags.file)
			return nil
		},
	}

	flags.register(cmd, false)
	return cmd
}
