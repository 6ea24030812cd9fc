package domain

// HostStatus is what /status reports about the machine running the bot.
type HostStatus struct {
	Hostname       string
	OS             string
	User           string
	Uptime         string
	Battery        string
	AvailableTools []string
}
