package hub

// RateFromSeconds returns the frequency of an event occurring every s seconds
func RateFromSeconds(s float64) float64 {
	if s <= 0 {
		return 0
	}
	return 1 / s
}
