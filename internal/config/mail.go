package config

import "strings"

// MailConfig holds SMTP settings for the notifier worker.
type MailConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	TLS      string // opportunistic, mandatory or none
}

// LoadMailConfig reads SMTP_* variables.  SMTP_HOST and SMTP_FROM are required.
func LoadMailConfig() MailConfig {
	cfg := MailConfig{
		Host:     must("SMTP_HOST"),
		Port:     envInt("SMTP_PORT", 587),
		Username: envStr("SMTP_USER", ""),
		Password: envStr("SMTP_PASSWORD", ""),
		From:     must("SMTP_FROM"),
		TLS:      strings.ToLower(envStr("SMTP_TLS", "opportunistic")),
	}
	switch cfg.TLS {
	case "opportunistic", "mandatory", "none":
	default:
		cfg.TLS = "opportunistic"
	}
	return cfg
}
