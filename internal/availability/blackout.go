package availability

// Blackout reports whether the whole date is closed for booking, either by
// exact-date membership or by falling inside a blackout range (inclusive on
// both ends). Blackout takes precedence over hours, jobs and "now".
func (c Config) Blackout(d Date) bool {
	key := d.Key()
	if _, ok := c.blackoutDates[key]; ok {
		return true
	}
	for _, r := range c.blackoutRanges {
		if key >= r[0] && key <= r[1] {
			return true
		}
	}
	return false
}
