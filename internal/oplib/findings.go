package oplib

// Finding is one keyed message, such as a rename problem.
type Finding struct {
	Key  string `json:"key"`
	Text string `json:"text"`
}

// Findings keeps keyed messages in the order they were first added.
type Findings []Finding

// Add records text under key, replacing an earlier message with that key.
func (f *Findings) Add(key, text string) {
	for i := range *f {
		if (*f)[i].Key == key {
			(*f)[i].Text = text
			return
		}
	}
	*f = append(*f, Finding{Key: key, Text: text})
}

// Has reports whether key was added.
func (f Findings) Has(key string) bool {
	for _, x := range f {
		if x.Key == key {
			return true
		}
	}
	return false
}

// Get returns the message stored under key, or "".
func (f Findings) Get(key string) string {
	for _, x := range f {
		if x.Key == key {
			return x.Text
		}
	}
	return ""
}

// Texts returns the messages in order. The result is never nil.
func (f Findings) Texts() []string {
	out := make([]string, len(f))
	for i, x := range f {
		out[i] = x.Text
	}
	return out
}
