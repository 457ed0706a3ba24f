package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/stake-plus/castlotto/src/data"
	"github.com/stake-plus/castlotto/src/lottery"
	"github.com/stake-plus/castlotto/src/neynar"
	"go.uber.org/zap"
)

var snapshotPath string

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Resolve claims once and write the players snapshot",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return err
		}
		if snapshotPath != "" {
			cfg.SnapshotPath = snapshotPath
		}

		client := neynar.NewClient(cfg.NeynarOptions(logger))
		res, err := lottery.NewPipeline(client, logger).Run(cmd.Context())
		if err != nil {
			return err
		}

		store := data.NewSnapshotStore(cfg.SnapshotPath)
		players := res.Assignment.Claims()
		if err := store.Write(players); err != nil {
			return err
		}
		logger.Info("Snapshot written", zap.String("path", store.Path()), zap.Int("players", len(players)))
		fmt.Fprintf(cmd.OutOrStdout(), "%d players written to %s (%d replies, %d rejected)\n",
			len(players), store.Path(), res.TotalReplies, len(res.Rejected))
		return nil
	},
}

func init() {
	snapshotCmd.Flags().StringVar(&snapshotPath, "out", "", "snapshot path (default SNAPSHOT_PATH or players.json)")
}
