package email

// Config holds email delivery configuration. The Postmark tokens are
// optional: without them the application falls back to the dev sender so
// local environments never need real credentials.
type Config struct {
	PostmarkServerToken  string `env:"POSTMARK_SERVER_TOKEN"`
	PostmarkAccountToken string `env:"POSTMARK_ACCOUNT_TOKEN"`
	SenderEmail          string `env:"SENDER_EMAIL" envDefault:"noreply@slotlist.info"`
	ReplyToEmail         string `env:"REPLY_TO_EMAIL" envDefault:"support@slotlist.info"`
}

// Enabled reports whether real Postmark delivery is configured.
func (c Config) Enabled() bool {
	return c.PostmarkServerToken != "" && c.PostmarkAccountToken != ""
}
