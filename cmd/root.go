package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/nearblocks/txns-action/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:   "txns-action",
	Short: "Turns NEAR transactions into ordered, human readable actions",
}

func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	initConfig(rootCmd)

	rootCmd.PersistentFlags().Bool(config.Debug, false, `"true" or "false"`)
	rootCmd.PersistentFlags().StringP(config.NetworkKey, "n", "", `The network to use (mainnet, testnet)`)
	rootCmd.PersistentFlags().String(config.NodeEnv, "development", `"production" switches to JSON logs`)

	rootCmd.PersistentFlags().String(config.ApiUrl, "", `Indexer API base url (defaults to the nearblocks API of the network)`)
	rootCmd.PersistentFlags().String(config.ApiAccessKey, "", `Bearer token for the indexer API`)
	rootCmd.PersistentFlags().Duration(config.ApiTimeout, 0, `Per-attempt timeout of indexer requests (default 10s)`)
	rootCmd.PersistentFlags().Int(config.ApiRetries, 0, `Attempts per indexer request (default 3)`)

	rootCmd.PersistentFlags().String(config.RpcUrls, "", `Comma separated RPC endpoints, in failover order (defaults to the network list)`)
	rootCmd.PersistentFlags().Duration(config.RpcTimeout, 0, `Per-provider RPC timeout (default 10s)`)

	rootCmd.PersistentFlags().Int(config.MetadataConcurrency, 0, `Parallel token metadata fetches (default 8)`)
	rootCmd.PersistentFlags().Int(config.ReceiptsMaxDepth, 0, `Maximum receipt tree depth (default 512)`)

	rootCmd.PersistentFlags().Bool(config.DataDogStatsdEnabled, false, `e.g. "true" or "false"`)
	rootCmd.PersistentFlags().String(config.DataDogStatsdUrl, "", `e.g. "localhost:8125"`)
	rootCmd.PersistentFlags().Bool(config.DataDogTracingEnabled, false, `e.g. "true" or "false"`)

	rootCmd.PersistentFlags().Bool(config.PrometheusEnabled, false, `e.g. "true" or "false"`)
	rootCmd.PersistentFlags().Int(config.PrometheusPort, 2112, `The port to run the prometheus server on`)

	// setup sub commands
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(parseCmd)
	rootCmd.AddCommand(versionCmd)

	// bind any subcommand flags
	serveCmd.PersistentFlags().Int(config.HttpPort, 3001, `http port`)
	serveCmd.PersistentFlags().String(config.HttpAllowedOrigins, "", `Comma separated CORS origins (default "*")`)

	parseCmd.Flags().String(parseFileFlag, "", `Path to an indexer transaction JSON file (required)`)
	parseCmd.Flags().String(parseReceiptsFileFlag, "", `Path to a receipts JSON file; fetched from the indexer when omitted`)
	parseCmd.Flags().String(parseFormatFlag, "json", `Output format (json, yaml, csv)`)
	parseCmd.Flags().Bool(parseReceiptsFlag, false, `Include the transformed receipt tree in the output`)

	rootCmd.PersistentFlags().VisitAll(func(f *pflag.Flag) {
		key := config.KebabToSnakeCase(f.Name)
		viper.BindPFlag(key, f) //nolint:errcheck
		viper.BindEnv(key)      //nolint:errcheck
	})
}

func initConfig(cmd *cobra.Command) {
	viper.SetEnvPrefix(config.ENV_PREFIX)

	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))

	viper.AutomaticEnv()
}

// bindSubcommandFlags binds the flags a subcommand declares on top of the
// persistent ones.
func bindSubcommandFlags(cmd *cobra.Command) {
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		key := config.KebabToSnakeCase(f.Name)
		if err := viper.BindPFlag(key, f); err != nil {
			fmt.Printf("Failed to bind flag '%s' - %+v\n", f.Name, err)
		}
		if err := viper.BindEnv(key); err != nil {
			fmt.Printf("Failed to bind env '%s' - %+v\n", f.Name, err)
		}
	})
}
