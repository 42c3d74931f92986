// Package ranking scores content records against an expanded term set and
// orders them for display.
package ranking

// Weights holds the points awarded per matching term.
type Weights struct {
	Blob    int `yaml:"blob_weight"`    // default: 1
	Title   int `yaml:"title_weight"`   // default: 10
	Subject int `yaml:"subject_weight"` // default: 5
}

// DefaultWeights returns the standard weights.
func DefaultWeights() Weights {
	return Weights{Blob: 1, Title: 10, Subject: 5}
}

// ApplyDefaults fills zero weights from DefaultWeights.
func (w *Weights) ApplyDefaults() {
	d := DefaultWeights()
	if w.Blob == 0 {
		w.Blob = d.Blob
	}
	if w.Title == 0 {
		w.Title = d.Title
	}
	if w.Subject == 0 {
		w.Subject = d.Subject
	}
}
