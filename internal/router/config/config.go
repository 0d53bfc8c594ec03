package config

import (
	"strings"

	"github.com/senyabanana/banner-auction/internal/models"

	"github.com/spf13/viper"
)

// Config - структура для хранения конфигураций приложения
type Config struct {
	ServerAddress       string `mapstructure:"SERVER_ADDRESS"`
	DataDir             string `mapstructure:"DATA_DIR"`
	GithubToken         string `mapstructure:"GITHUB_TOKEN"`
	GithubOwner         string `mapstructure:"GITHUB_OWNER"`
	GithubRepo          string `mapstructure:"GITHUB_REPO"`
	StripeSecretKey     string `mapstructure:"STRIPE_SECRET_KEY"`
	MinimumBid          int64  `mapstructure:"MINIMUM_BID"`
	BidIncrement        int64  `mapstructure:"BID_INCREMENT"`
	ApprovalMode        string `mapstructure:"APPROVAL_MODE"`
	RequirePaymentLink  bool   `mapstructure:"REQUIRE_PAYMENT_LINK"`
	GraceHours          int    `mapstructure:"GRACE_HOURS"`
	OwnerUsername       string `mapstructure:"OWNER_USERNAME"`
	AllowedReactions    string `mapstructure:"ALLOWED_REACTIONS"`
	AuctionDurationDays int    `mapstructure:"AUCTION_DURATION_DAYS"`
	SweepCron           string `mapstructure:"SWEEP_CRON"`
	CloseCron           string `mapstructure:"CLOSE_CRON"`
}

// LoadConfig загружает конфигурацию из файла
func LoadConfig(path string) (cfg Config, err error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("app")
	viper.SetConfigType("env")

	viper.SetDefault("SERVER_ADDRESS", ":8080")
	viper.SetDefault("DATA_DIR", "data")
	viper.SetDefault("MINIMUM_BID", 50)
	viper.SetDefault("BID_INCREMENT", 5)
	viper.SetDefault("APPROVAL_MODE", "emoji")
	viper.SetDefault("REQUIRE_PAYMENT_LINK", false)
	viper.SetDefault("GRACE_HOURS", 24)
	viper.SetDefault("ALLOWED_REACTIONS", "+1")
	viper.SetDefault("AUCTION_DURATION_DAYS", 30)
	viper.SetDefault("SWEEP_CRON", "0 * * * *")

	err = viper.ReadInConfig()
	if err != nil {
		return
	}
	err = viper.Unmarshal(&cfg)
	return
}

// Policy собирает правила приёма заявок из загруженной конфигурации.
func (c Config) Policy() models.Policy {
	var reactions []string
	for _, r := range strings.Split(c.AllowedReactions, ",") {
		if r = strings.TrimSpace(r); r != "" {
			reactions = append(reactions, r)
		}
	}
	return models.Policy{
		MinimumBid:       c.MinimumBid,
		BidIncrement:     c.BidIncrement,
		ApprovalMode:     models.ApprovalMode(c.ApprovalMode),
		RequirePayment:   c.RequirePaymentLink,
		GraceHours:       c.GraceHours,
		OwnerUsername:    c.OwnerUsername,
		AllowedReactions: reactions,
	}
}
