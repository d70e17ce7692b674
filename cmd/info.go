package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/postmood/postmood/pkg/store"
)

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show stored model statistics",
	Long:  `Load the stored model and print its classes, priors and most indicative terms`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		rt, err := newRuntime(cfg)
		if err != nil {
			return err
		}
		defer rt.close()

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		fmt.Printf("💾 Store: %s\n", describeStore(cfg.Store.Backend, rt.store))

		model, err := rt.store.Load(ctx)
		if err != nil {
			return fmt.Errorf("stored model is unusable: %w", err)
		}
		if model == nil {
			fmt.Printf("📭 No model stored yet, run 'postmood train' first\n")
			return nil
		}

		if rs, ok := rt.store.(*store.RedisStore); ok {
			if meta, err := rs.Meta(ctx); err == nil && meta["trained_at"] > 0 {
				fmt.Printf("🕒 Saved model trained at: %s\n",
					time.Unix(meta["trained_at"], 0).Format("2006-01-02 15:04:05"))
			}
		}

		fmt.Printf("\n")
		model.PrintStats(os.Stdout, rt.labels.Name)
		return nil
	},
}
