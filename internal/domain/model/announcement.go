package model

// Button is one link button of an announcement keyboard.
type Button struct {
	Label string `json:"label"`
	URL   string `json:"url"`
}

// Announcement is the aggregate a user composes: a Markdown body plus an
// ordered grid of link buttons. Rows render as keyboard rows in the
// destination chat.
type Announcement struct {
	Body    string     `json:"body"`
	Buttons [][]Button `json:"buttons"`
}

// ButtonCount returns the total number of buttons across all rows.
func (a *Announcement) ButtonCount() int {
	n := 0
	for _, row := range a.Buttons {
		n += len(row)
	}
	return n
}
