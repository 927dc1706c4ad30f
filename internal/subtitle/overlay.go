package subtitle

// SetTextWithOverlay is implemented by formats that need to keep markup
// around the original line, such as ASS override tags
type overlaySetter interface {
	SetTextWithOverlay(index int, text string) error
}

// Overlay wraps f so that SetText writes the translation above the
// original text of the cue instead of replacing it.
func Overlay(f File) File {
	return &overlayFile{File: f}
}

type overlayFile struct {
	File
}

func (o *overlayFile) SetText(index int, text string) error {
	if s, ok := o.File.(overlaySetter); ok {
		return s.SetTextWithOverlay(index, text)
	}
	original := o.File.Text(index)
	if original == "" {
		return o.File.SetText(index, text)
	}
	return o.File.SetText(index, text+"\n"+original)
}
