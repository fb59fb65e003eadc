package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"stockroom/internal/client"
	"stockroom/internal/shared"
)

var (
	serverURL string
	apiKey    string
	output    string

	itemPrice   float64
	itemInStock bool
)

var rootCmd = &cobra.Command{
	Use:           "sr-client",
	Short:         "Command-line client for the stockroom API",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func newClient() *client.Client {
	return client.New(serverURL, apiKey)
}

func show(cmd *cobra.Command, v any) error {
	return client.Print(cmd.OutOrStdout(), output, v)
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("item id must be an integer: %q", s)
	}
	return id, nil
}

var itemsCmd = &cobra.Command{
	Use:   "items",
	Short: "Create, list, fetch and delete items",
}

var itemsCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create an item",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		in := shared.ItemCreate{Name: args[0], Price: itemPrice}
		if cmd.Flags().Changed("in-stock") {
			in.InStock = &itemInStock
		}
		item, err := newClient().CreateItem(cmd.Context(), in)
		if err != nil {
			return err
		}
		return show(cmd, item)
	},
}

var itemsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List items in creation order",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		items, err := newClient().ListItems(cmd.Context())
		if err != nil {
			return err
		}
		return show(cmd, items)
	},
}

var itemsGetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Fetch one item",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		item, err := newClient().GetItem(cmd.Context(), id)
		if err != nil {
			return err
		}
		return show(cmd, item)
	},
}

var itemsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete one item",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		if err := newClient().DeleteItem(cmd.Context(), id); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "deleted item %d\n", id)
		return nil
	},
}

var divideCmd = &cobra.Command{
	Use:   "divide <a> <b>",
	Short: "Divide a by b on the server",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := strconv.ParseFloat(args[0], 64)
		if err != nil {
			return fmt.Errorf("a: %w", err)
		}
		b, err := strconv.ParseFloat(args[1], 64)
		if err != nil {
			return fmt.Errorf("b: %w", err)
		}
		result, err := newClient().Divide(cmd.Context(), a, b)
		if err != nil {
			return err
		}
		return show(cmd, shared.DivideResponse{Result: result})
	},
}

var secureCmd = &cobra.Command{
	Use:   "secure",
	Short: "Call /secure-data with --api-key",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out, err := newClient().SecureData(cmd.Context())
		if err != nil {
			return err
		}
		return show(cmd, out)
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the server's public configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out, err := newClient().Config(cmd.Context())
		if err != nil {
			return err
		}
		return show(cmd, out)
	},
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check server health",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out, err := newClient().Health(cmd.Context())
		if err != nil {
			return err
		}
		return show(cmd, out)
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&serverURL, "server", envOr("SR_SERVER_URL", "http://127.0.0.1:8000"), "stockroom base URL")
	pf.StringVar(&apiKey, "api-key", os.Getenv("SR_API_KEY"), "value sent in "+shared.APIKeyHeader)
	pf.StringVarP(&output, "output", "o", client.OutputJSON, "output format: json or yaml")

	itemsCreateCmd.Flags().Float64Var(&itemPrice, "price", 0, "item price, must be > 0")
	itemsCreateCmd.Flags().BoolVar(&itemInStock, "in-stock", true, "whether the item is in stock")
	_ = itemsCreateCmd.MarkFlagRequired("price")

	itemsCmd.AddCommand(itemsCreateCmd, itemsListCmd, itemsGetCmd, itemsDeleteCmd)
	rootCmd.AddCommand(itemsCmd, divideCmd, secureCmd, configCmd, healthCmd)
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "sr-client:", err)
		os.Exit(1)
	}
}
