package domain

// transitions is a generic legal-transition table. States absent from the
// table are terminal.
type transitions[S comparable] map[S][]S

func (t transitions[S]) allows(from, to S) bool {
	for _, s := range t[from] {
		if s == to {
			return true
		}
	}
	return false
}
