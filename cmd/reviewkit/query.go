package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/rushteam/reviewkit/aggregate"
	"github.com/rushteam/reviewkit/core"
	"github.com/rushteam/reviewkit/recommend"
)

var (
	flagTopN    int
	flagExpr    string
	flagJSON    bool
	flagExplain bool
)

var recommendCmd = &cobra.Command{
	Use:   "recommend <user-id>",
	Short: "Print recommendations for a user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if flagTopN < 0 || flagTopN > recommend.MaxTopN {
			return fmt.Errorf("--top must be between 0 and %d", recommend.MaxTopN)
		}
		ctx := cmd.Context()
		holder, _, err := loadSnapshot(ctx, appConfig)
		if err != nil {
			return err
		}
		engine, err := newEngine(appConfig, nil)
		if err != nil {
			return err
		}

		snap := holder.Current()
		items, err := engine.RecommendItems(ctx, args[0], snap.ItemCatalog(), snap.NeighborIndex(), flagTopN)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if len(items) == 0 {
			fmt.Fprintln(out, "no recommendations available")
			return nil
		}
		if flagJSON {
			return printJSON(out, core.ItemIDs(items))
		}
		for i, it := range items {
			if flagExplain {
				fmt.Fprintf(out, "%d. %s\t%v\n", i+1, it.ID, it.Labels)
				continue
			}
			fmt.Fprintf(out, "%d. %s\n", i+1, it.ID)
		}
		return nil
	},
}

var itemsCmd = &cobra.Command{
	Use:   "items [term]",
	Short: "List items whose id contains term (case-insensitive)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		holder, _, err := loadSnapshot(cmd.Context(), appConfig)
		if err != nil {
			return err
		}
		term := ""
		if len(args) == 1 {
			term = args[0]
		}
		ids := holder.Current().Catalog.FilterByName(aggregate.NameContains(term))
		return printIDs(cmd.OutOrStdout(), ids)
	},
}

var itemCmd = &cobra.Command{
	Use:   "item <item-id>",
	Short: "Show the aggregated profile of an item",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		holder, _, err := loadSnapshot(cmd.Context(), appConfig)
		if err != nil {
			return err
		}
		catalog := holder.Current().Catalog
		agg, ok := catalog.Get(args[0])
		if !ok {
			return core.NewDomainError(core.ModuleAggregate, core.ErrorCodeNotFound, "item not found: "+args[0])
		}
		return printProfile(cmd.OutOrStdout(), catalog, agg)
	},
}

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Filter items with a CEL expression, e.g. --expr 'item.avg_positive > 0.6'",
	RunE: func(cmd *cobra.Command, _ []string) error {
		holder, _, err := loadSnapshot(cmd.Context(), appConfig)
		if err != nil {
			return err
		}
		ids, err := holder.Current().Catalog.FilterByExpr(flagExpr)
		if err != nil {
			return err
		}
		return printIDs(cmd.OutOrStdout(), ids)
	},
}

func init() {
	recommendCmd.Flags().IntVarP(&flagTopN, "top", "n", 0, "number of recommendations (default recommend.top_n)")
	recommendCmd.Flags().BoolVar(&flagExplain, "explain", false, "print recall labels")
	searchCmd.Flags().StringVar(&flagExpr, "expr", "", "CEL expression over item")
	for _, c := range []*cobra.Command{recommendCmd, itemsCmd, searchCmd} {
		c.Flags().BoolVar(&flagJSON, "json", false, "print JSON")
	}
}

func printIDs(w io.Writer, ids []string) error {
	if flagJSON {
		return printJSON(w, ids)
	}
	for _, id := range ids {
		fmt.Fprintln(w, id)
	}
	return nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printProfile(w io.Writer, catalog *aggregate.Store, agg *core.ItemAggregate) error {
	fmt.Fprintf(w, "item:      %s\n", agg.ItemID)
	fmt.Fprintf(w, "records:   %d\n", len(agg.Records))
	for _, sent := range core.Sentiments {
		fmt.Fprintf(w, "%-10s %d\n", sent.String()+":", agg.SentimentCounts[sent])
	}
	fmt.Fprintf(w, "positive:  %s%%\n", catalog.AveragePercent(agg.ItemID, core.ScorePositive))
	fmt.Fprintf(w, "negative:  %s%%\n", catalog.AveragePercent(agg.ItemID, core.ScoreNegative))
	fmt.Fprintf(w, "neutral:   %s%%\n", catalog.AveragePercent(agg.ItemID, core.ScoreNeutral))
	fmt.Fprintf(w, "keywords+: %v\n", agg.PositiveKeywords)
	fmt.Fprintf(w, "keywords-: %v\n", agg.NegativeKeywords)
	return nil
}
