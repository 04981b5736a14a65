package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jacentio/tasks/internal/bootstrap"
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Create or delete the search index",
}

var indexCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create the search index with its field mappings",
	Long: `Create the search index. Owner and item id are mapped as keywords,
title and description as analyzed text. Creating an existing index succeeds.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := loadEnv(cmd)
		if err != nil {
			return err
		}
		index, err := bootstrap.NewSearch(e.aws, e.cfg)
		if err != nil {
			return err
		}
		if err := index.CreateIndex(cmd.Context()); err != nil {
			return fmt.Errorf("create index %s: %w", index.Index(), err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "index %s ready\n", index.Index())
		return nil
	},
}

var indexDeleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Delete the search index and every document in it",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if yes, _ := cmd.Flags().GetBool("yes"); !yes {
			return fmt.Errorf("refusing to delete the index without --yes")
		}
		e, err := loadEnv(cmd)
		if err != nil {
			return err
		}
		index, err := bootstrap.NewSearch(e.aws, e.cfg)
		if err != nil {
			return err
		}
		if err := index.DeleteIndex(cmd.Context()); err != nil {
			return fmt.Errorf("delete index %s: %w", index.Index(), err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "index %s deleted\n", index.Index())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(indexCmd)
	indexCmd.AddCommand(indexCreateCmd, indexDeleteCmd)

	indexDeleteCmd.Flags().Bool("yes", false, "Confirm deletion")
}
