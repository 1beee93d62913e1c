package model

// NotifyInput holds the positional arguments of a run
type NotifyInput struct {
	WebhookURL string
	TeamID     string
	ChannelID  string
	APIToken   string `masq:"secret"`
	Preset     PresetStatus
}
