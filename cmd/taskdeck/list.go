package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/Joseda-hg/taskdeck/internal/app"
	"github.com/Joseda-hg/taskdeck/internal/store"
)

var (
	listName  string
	listColor string
	listIcon  string
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Manage lists",
}

var listLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "Show lists with open task counts",
	RunE: withSession(func(ctx context.Context, session *app.Session) error {
		lists, err := session.Lists()
		if err != nil {
			return err
		}
		tasks, err := session.Tasks()
		if err != nil {
			return err
		}
		renderLists(lists, tasks)
		return nil
	}),
}

var listAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Create a list",
	Args:  cobra.ExactArgs(1),
	RunE: withSessionArgs(func(ctx context.Context, session *app.Session, args []string) error {
		list, err := session.CreateList(ctx, store.ListInput{Name: args[0], Color: listColor, Icon: listIcon})
		if err != nil {
			return err
		}
		successf("Created list %s (%s)", list.Name, list.ID)
		return nil
	}),
}

var listEditCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Rename or restyle a list",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		session, err := current.openSession(ctx)
		if err != nil {
			return err
		}
		var patch store.ListPatch
		if cmd.Flags().Changed("name") {
			patch.Name = &listName
		}
		if cmd.Flags().Changed("color") {
			patch.Color = &listColor
		}
		if cmd.Flags().Changed("icon") {
			patch.Icon = &listIcon
		}
		list, err := session.UpdateList(ctx, args[0], patch)
		if err != nil {
			return err
		}
		successf("Updated list %s", list.Name)
		return nil
	},
}

var listRemoveCmd = &cobra.Command{
	Use:   "rm <id>",
	Short: "Delete a list, moving its tasks to the inbox",
	Args:  cobra.ExactArgs(1),
	RunE: withSessionArgs(func(ctx context.Context, session *app.Session, args []string) error {
		moved, err := session.DeleteList(ctx, args[0])
		if err != nil {
			return err
		}
		successf("Deleted list %s, moved %d task(s) to the inbox", args[0], moved)
		return nil
	}),
}

func init() {
	listAddCmd.Flags().StringVar(&listColor, "color", "", "hex color")
	listAddCmd.Flags().StringVar(&listIcon, "icon", "", "icon name")
	listEditCmd.Flags().StringVar(&listName, "name", "", "new name")
	listEditCmd.Flags().StringVar(&listColor, "color", "", "hex color")
	listEditCmd.Flags().StringVar(&listIcon, "icon", "", "icon name")

	listCmd.AddCommand(listLsCmd, listAddCmd, listEditCmd, listRemoveCmd)
	rootCmd.AddCommand(listCmd)
}
