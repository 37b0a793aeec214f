package editor

// editLabel applies one key press to a label being edited. It reports
// done when the key commits the edit; the label is unchanged then.
func editLabel(label string, ev Event) (out string, done bool) {
	switch code := ev.KeyCode; {
	case code == KeyBackspace || code == KeyDelete:
		if r := []rune(label); len(r) > 0 {
			return string(r[:len(r)-1]), false
		}
		return label, false
	case code >= 48 && code <= 90, code >= 186 && code <= 222:
		return label + ev.Key, false
	case code == KeyEnter:
		return label, true
	case code == KeySpace:
		return label + " ", false
	}
	return label, false
}
