// Command seed pushes products, refund reasons and return reasons to the
// commerce admin API.
//
//	seed push-products [file]
//	seed push-refund-reasons
//	seed push-return-reasons
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/iflis7/iyuc-store/pkg/httpclient"
	"github.com/iflis7/iyuc-store/pkg/logger"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

type cli struct {
	envFile string
	client  *adminClient
}

func newRootCmd() *cobra.Command {
	c := &cli{}
	root := &cobra.Command{
		Use:               "seed",
		Short:             "Push seed data to the commerce admin API",
		SilenceUsage:      true,
		PersistentPreRunE: c.setup,
	}
	root.PersistentFlags().StringVar(&c.envFile, "env-file", ".env", "dotenv file read before the environment")

	root.AddCommand(
		&cobra.Command{
			Use:   "push-products [file]",
			Short: "Create the products listed in a JSON file",
			Args:  cobra.MaximumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				path := defaultProductsFile
				if len(args) == 1 {
					path = args[0]
				}
				products, err := loadProducts(path)
				if err != nil {
					return err
				}
				_, err = pushProducts(cmd.Context(), c.client, products)
				return err
			},
		},
		&cobra.Command{
			Use:   "push-refund-reasons",
			Short: "Create the default refund reasons",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				_, err := pushReasons(cmd.Context(), c.client, refundReasonSet, refundReasons)
				return err
			},
		},
		&cobra.Command{
			Use:   "push-return-reasons",
			Short: "Create the default return reasons",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				_, err := pushReasons(cmd.Context(), c.client, returnReasonSet, returnReasons)
				return err
			},
		},
	)
	return root
}

func (c *cli) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(c.envFile)
	if err != nil {
		return err
	}
	log := logger.NewWithWriter("seed", cfg.LogLevel, cmd.ErrOrStderr())

	httpCfg := httpclient.DefaultConfig()
	httpCfg.Timeout = cfg.Timeout
	c.client = newAdminClient(cfg, httpclient.New(httpCfg), log)
	return nil
}
