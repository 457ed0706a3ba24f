package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/stake-plus/castlotto/src/lottery"
	"gopkg.in/yaml.v3"
)

// drawFile is the on-disk shape of a draw result:
//
//	winning_numbers: ["05", "17", "22"]
//	unit_reward: "1.1"
//	currency: USDC
type drawFile struct {
	WinningNumbers []string `yaml:"winning_numbers"`
	UnitReward     string   `yaml:"unit_reward"`
	Currency       string   `yaml:"currency"`
}

// LoadDraw reads a YAML draw file. Missing reward and currency fall back to
// the default draw.
func LoadDraw(path string) (lottery.Draw, error) {
	body, err := os.ReadFile(path)
	if err != nil {
		return lottery.Draw{}, fmt.Errorf("read draw file: %w", err)
	}
	var f drawFile
	if err := yaml.Unmarshal(body, &f); err != nil {
		return lottery.Draw{}, fmt.Errorf("parse draw file %s: %w", path, err)
	}
	return BuildDraw(f.WinningNumbers, f.UnitReward, f.Currency)
}

// BuildDraw validates raw draw values, filling blanks from the default draw.
func BuildDraw(numbers []string, unitReward, currency string) (lottery.Draw, error) {
	draw := lottery.DefaultDraw()
	if len(numbers) > 0 {
		normalized, err := lottery.NormalizeWinningNumbers(numbers)
		if err != nil {
			return lottery.Draw{}, err
		}
		draw.WinningNumbers = normalized
	}
	if s := strings.TrimSpace(unitReward); s != "" {
		reward, err := decimal.NewFromString(s)
		if err != nil {
			return lottery.Draw{}, fmt.Errorf("invalid unit reward %q: %w", s, err)
		}
		if reward.IsNegative() {
			return lottery.Draw{}, fmt.Errorf("unit reward must not be negative")
		}
		draw.UnitReward = reward
	}
	if s := strings.TrimSpace(currency); s != "" {
		draw.Currency = s
	}
	return draw, nil
}
