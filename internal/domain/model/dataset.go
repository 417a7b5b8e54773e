package model

// Dataset is an immutable, in-memory table of events. It is built once and
// only read afterwards, so concurrent readers need no locking.
type Dataset struct {
	rows     []Event
	players  []string
	byPlayer map[string][]int
}

// NewDataset copies events into a new Dataset and indexes them by player.
func NewDataset(events []Event) *Dataset {
	d := &Dataset{
		rows:     make([]Event, len(events)),
		byPlayer: make(map[string][]int),
	}
	copy(d.rows, events)
	for i, e := range d.rows {
		if _, ok := d.byPlayer[e.PlayerName]; !ok {
			d.players = append(d.players, e.PlayerName)
		}
		d.byPlayer[e.PlayerName] = append(d.byPlayer[e.PlayerName], i)
	}
	return d
}

// Len returns the number of rows.
func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.rows)
}

// Players returns distinct player names in first-appearance order.
func (d *Dataset) Players() []string {
	if d == nil {
		return nil
	}
	out := make([]string, len(d.players))
	copy(out, d.players)
	return out
}

// Has reports whether the player has at least one row.
func (d *Dataset) Has(player string) bool {
	if d == nil {
		return false
	}
	_, ok := d.byPlayer[player]
	return ok
}

// Rows returns a copy of every row in load order.
func (d *Dataset) Rows() []Event {
	if d == nil {
		return nil
	}
	out := make([]Event, len(d.rows))
	copy(out, d.rows)
	return out
}

// Filter returns a fresh slice of the rows belonging to player, in load order.
// The result is empty when the player is unknown.
func (d *Dataset) Filter(player string) []Event {
	if d == nil {
		return nil
	}
	idx := d.byPlayer[player]
	out := make([]Event, 0, len(idx))
	for _, i := range idx {
		out = append(out, d.rows[i])
	}
	return out
}
