package model

// Notification is the payload posted to the chat webhook
type Notification struct {
	TeamID    string `json:"teamId"`
	ChannelID string `json:"channelId"`
	Title     string `json:"title"`
	Message   string `json:"message"`
}
