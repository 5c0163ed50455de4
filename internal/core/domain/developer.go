package domain

// Developer is an assignable profile from the marketplace roster.
type Developer struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Type      string `json:"type"`
	Available bool   `json:"available"`
}

// RosterEntry describes a developer seeded on first boot.
type RosterEntry struct {
	Name string
	Type string
}

// DefaultRoster is the initial developer directory.
var DefaultRoster = []RosterEntry{
	{Name: "Alex Johnson", Type: "Roblox Developer"},
	{Name: "Sarah Chen", Type: "Roblox Developer"},
	{Name: "Mike Rodriguez", Type: "Web Developer"},
	{Name: "Emily Davis", Type: "Web Developer"},
	{Name: "James Wilson", Type: "App Developer"},
	{Name: "Lisa Anderson", Type: "App Developer"},
	{Name: "David Kim", Type: "Full Stack Developer"},
	{Name: "Rachel Taylor", Type: "Game Developer"},
}
