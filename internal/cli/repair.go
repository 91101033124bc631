package cli

import (
	"errors"
	"fmt"
	"slices"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/lehmann314159/navigator/internal/models"
	"github.com/lehmann314159/navigator/internal/navigator"
)

func (c *CLI) reparentCommand() *cobra.Command {
	var flags docFlags

	cmd := &cobra.Command{
		Use:   "reparent GROUP_ID PARENT_ID",
		Short: "Nest a group under a top-level group",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			groupID, err := parseIDArg(args[0])
			if err != nil {
				return err
			}
			parentID, err := parseIDArg(args[1])
			if err != nil {
				return err
			}

			doc, err := c.readDocument(flags.file)
			if err != nil {
				return err
			}
			changed, err := c.applyParent(doc, groupID, models.Int64(parentID))
			if err != nil || !changed {
				return err
			}
			c.printSuccess("Group %d now under %d", groupID, parentID)
			return c.writeDocument(&flags, doc)
		},
	}

	flags.register(cmd, true)
	return cmd
}

func (c *CLI) promoteCommand() *cobra.Command {
	var flags docFlags

	cmd := &cobra.Command{
		Use:   "promote GROUP_ID...",
		Short: "Make groups top-level",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := c.readDocument(flags.file)
			if err != nil {
				return err
			}

			promoted := 0
			for _, arg := range args {
				groupID, err := parseIDArg(arg)
				if err != nil {
					return err
				}
				changed, err := c.applyParent(doc, groupID, nil)
				if err != nil {
					return err
				}
				if changed {
					promoted++
				}
			}
			if promoted == 0 {
				return nil
			}
			c.printSuccess("Promoted %d groups to the top level", promoted)
			return c.writeDocument(&flags, doc)
		},
	}

	flags.register(cmd, true)
	return cmd
}

func (c *CLI) deleteCommand() *cobra.Command {
	var flags docFlags

	cmd := &cobra.Command{
		Use:   "delete GROUP_ID",
		Short: "Remove a group together with its sub-groups and their sites",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			groupID, err := parseIDArg(args[0])
			if err != nil {
				return err
			}

			doc, err := c.readDocument(flags.file)
			if err != nil {
				return err
			}
			node, found := navigator.Find(navigator.Project(doc.Groups, doc.Sites), groupID)

			groups, sites, ok := navigator.DeleteGroup(doc.Groups, doc.Sites, groupID)
			if !ok {
				c.printWarning("Group %d not found, nothing changed", groupID)
				return nil
			}
			if found {
				c.printInfo("%s (id %d): %d sites", node.Name, node.ID, len(node.Sites))
				for _, sub := range node.Subgroups {
					c.printDetail("%s (id %d): %d sites", sub.Name, sub.ID, len(sub.Sites))
				}
			}

			removedGroups, removedSites := len(doc.Groups)-len(groups), len(doc.Sites)-len(sites)
			doc.Groups, doc.Sites = groups, sites
			c.Logger.Debug("group deleted", "id", groupID, "groups", removedGroups, "sites", removedSites)
			c.printSuccess("Deleted %d groups, %d sites", removedGroups, removedSites)
			return c.writeDocument(&flags, doc)
		},
	}

	flags.register(cmd, true)
	return cmd
}

// applyParent reparents groupID inside doc and reports whether anything changed.
func (c *CLI) applyParent(doc *models.Document, groupID int64, parentID *int64) (bool, error) {
	groups, changed, err := navigator.Reparent(doc.Groups, groupID, parentID)
	var refused *navigator.Error
	if errors.As(err, &refused) {
		c.printError("%s", refused.Diagnostic())
	}
	if err != nil {
		return false, err
	}
	if !changed {
		if !slices.ContainsFunc(doc.Groups, func(g models.Group) bool { return g.ID == groupID }) {
			c.printWarning("Group %d not found, nothing changed", groupID)
		} else {
			c.printInfo("Group %d already in place", groupID)
		}
		return false, nil
	}
	doc.Groups = groups

	parent := "top level"
	if parentID != nil {
		parent = strconv.FormatInt(*parentID, 10)
	}
	c.Logger.Debug("group reparented", "id", groupID, "parent", parent)
	return true, nil
}

func parseIDArg(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid group id %q", s)
	}
	return id, nil
}
