package main

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/jacentio/tasks/internal/bootstrap"
	"github.com/jacentio/tasks/query"
)

var searchCmd = &cobra.Command{
	Use:   "search <owner> [text]",
	Short: "List or search an owner's items",
	Long: `Print an owner's items as JSON. Without text the items are read from
the table; with text they are searched in the index.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := loadEnv(cmd)
		if err != nil {
			return err
		}
		items, err := bootstrap.NewStore(e.aws, e.cfg)
		if err != nil {
			return err
		}
		index, err := bootstrap.NewSearch(e.aws, e.cfg)
		if err != nil {
			return err
		}

		var text *string
		if len(args) == 2 {
			text = &args[1]
		}
		results, err := query.NewRouter(items, index).Handle(cmd.Context(), args[0], text)
		if err != nil {
			return err
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	},
}

func init() {
	rootCmd.AddCommand(searchCmd)
}
