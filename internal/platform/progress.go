package platform

// Progress counts units by state. Submitted includes every other state plus
// units still waiting for their dependencies.
type Progress struct {
	Submitted int `json:"submitted"`
	Running   int `json:"running"`
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
	Skipped   int `json:"skipped"`
}

// Done returns the number of units in a terminal state.
func (p Progress) Done() int { return p.Succeeded + p.Failed + p.Skipped }

// Fraction returns Done over Submitted, or 0 before anything is submitted.
func (p Progress) Fraction() float64 {
	if p.Submitted == 0 {
		return 0
	}
	return float64(p.Done()) / float64(p.Submitted)
}
