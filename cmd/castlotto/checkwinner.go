package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/stake-plus/castlotto/src/config"
	"github.com/stake-plus/castlotto/src/data"
	"github.com/stake-plus/castlotto/src/discord"
	"github.com/stake-plus/castlotto/src/lottery"
	"go.uber.org/zap"
)

var (
	checkPlayersPath string
	checkDrawPath    string
	checkNumbers     []string
	checkReward      string
	checkCurrency    string
	checkAnnounce    bool
)

var checkWinnerCmd = &cobra.Command{
	Use:   "check-winner",
	Short: "Check a players snapshot against the winning numbers",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		draw, err := resolveDraw()
		if err != nil {
			return err
		}

		path := checkPlayersPath
		if path == "" {
			path = cfg.SnapshotPath
		}
		players, err := data.NewSnapshotStore(path).Read()
		if err != nil {
			return err
		}

		winners := lottery.CheckWinners(players, draw)
		var report strings.Builder
		if err := lottery.FormatReport(&report, winners, draw); err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), report.String())
		logger.Info("Winners checked",
			zap.Strings("winning", draw.WinningNumbers),
			zap.Int("players", len(players)),
			zap.Int("winners", len(winners)))

		if !checkAnnounce || len(winners) == 0 {
			return nil
		}
		announcer, closeSession, err := discord.Open(cfg.DiscordToken, cfg.DiscordChannelID)
		if err != nil {
			return err
		}
		defer closeSession()
		return announcer.Announce(report.String())
	},
}

func resolveDraw() (lottery.Draw, error) {
	if checkDrawPath != "" {
		return config.LoadDraw(checkDrawPath)
	}
	return config.BuildDraw(checkNumbers, checkReward, checkCurrency)
}

func init() {
	f := checkWinnerCmd.Flags()
	f.StringVar(&checkPlayersPath, "players", "", "players snapshot to check")
	f.StringVar(&checkDrawPath, "draw", "", "YAML draw file (winning_numbers, unit_reward, currency)")
	f.StringSliceVar(&checkNumbers, "numbers", nil, "winning numbers, e.g. 05,17,22")
	f.StringVar(&checkReward, "unit-reward", "", "reward per hit (default 1.1)")
	f.StringVar(&checkCurrency, "currency", "", "reward currency (default USDC)")
	f.BoolVar(&checkAnnounce, "announce", false, "post the report to DISCORD_CHANNEL_ID")
}
