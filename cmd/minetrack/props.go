package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/orehub/minetrack/internal/model"
)

var propsCmd = &cobra.Command{
	Use:     "props",
	Short:   "Manage property definitions",
	GroupID: "properties",
}

var propsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List property definitions",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, cleanup, err := openEngine()
		if err != nil {
			return err
		}
		defer cleanup()

		defs, err := eng.ListPropertyDefinitions(context.Background(), workspace)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		if jsonOut {
			printJSON(defs)
		} else {
			printDefinitionListTable(defs)
		}
		return nil
	},
}

var propsAddCmd = &cobra.Command{
	Use:   "add <id>",
	Short: "Create a property definition",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name, _ := cmd.Flags().GetString("name")
		typeName, _ := cmd.Flags().GetString("type")
		options, _ := cmd.Flags().GetStringSlice("option")
		maxLength, _ := cmd.Flags().GetInt("max-length")
		maxSelections, _ := cmd.Flags().GetInt("max-selections")
		maxMiners, _ := cmd.Flags().GetInt("max-miners")
		nullable, _ := cmd.Flags().GetBool("nullable")

		def := &model.PropertyDefinition{
			ID:          args[0],
			WorkspaceID: workspace,
			Name:        name,
			Type:        model.PropertyType(typeName),
			Nullable:    nullable,
		}
		if name == "" {
			def.Name = def.ID
		}

		switch def.Type {
		case model.TypeText:
			def.Config = model.TextConfig{MaxLength: maxLength}
		case model.TypeRichText:
			def.Config = model.RichTextConfig{MaxLength: maxLength}
		case model.TypeSelect:
			def.Config = model.SelectConfig{Options: options}
		case model.TypeMultiSelect:
			def.Config = model.MultiSelectConfig{Options: options, MaxSelections: maxSelections}
		case model.TypeMiners:
			def.Config = model.MinersConfig{MaxMiners: maxMiners}
		case model.TypeUser:
			def.Config = model.UserConfig{}
		}

		eng, cleanup, err := openEngine()
		if err != nil {
			return err
		}
		defer cleanup()

		if err := eng.CreatePropertyDefinition(context.Background(), def); err != nil {
			fatalMessages(model.UserMessages(err))
		}

		if jsonOut {
			printJSON(def)
		} else {
			fmt.Printf("property %q created (%s)\n", def.ID, def.Type)
		}
		return nil
	},
}

var propsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a property definition",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, cleanup, err := openEngine()
		if err != nil {
			return err
		}
		defer cleanup()

		if err := eng.DeletePropertyDefinition(context.Background(), workspace, args[0]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("property %q deleted\n", args[0])
		return nil
	},
}

func init() {
	propsAddCmd.Flags().String("name", "", "display name (defaults to the id)")
	propsAddCmd.Flags().StringP("type", "t", "text", "property type (text, rich_text, select, multi_select, miners, user)")
	propsAddCmd.Flags().StringSlice("option", nil, "allowed option for select types (repeatable)")
	propsAddCmd.Flags().Int("max-length", 0, "maximum length for text types (0 = unlimited)")
	propsAddCmd.Flags().Int("max-selections", 0, "maximum selections for multi_select (0 = unlimited)")
	propsAddCmd.Flags().Int("max-miners", 0, "maximum entries for miners (0 = unlimited)")
	propsAddCmd.Flags().Bool("nullable", true, "whether the value can be removed")

	propsCmd.AddCommand(propsListCmd)
	propsCmd.AddCommand(propsAddCmd)
	propsCmd.AddCommand(propsDeleteCmd)
}
