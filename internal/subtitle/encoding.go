package subtitle

import (
	"fmt"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/ianaindex"
)

const DefaultEncoding = "utf8"

// labels people pass on the command line that neither index knows
var encodingAliases = map[string]string{
	"latin-1":   "iso-8859-1",
	"latin_1":   "iso-8859-1",
	"utf_8":     "utf-8",
	"utf-8-sig": "utf-8",
	"utf8-sig":  "utf-8",
	"cp1252":    "windows-1252",
	"cp1251":    "windows-1251",
	"cp1250":    "windows-1250",
}

// text encoding used to read and write a subtitle file
type Encoding struct {
	Label string
	enc   encoding.Encoding
}

// resolves a user supplied encoding label such as "utf8", "latin-1" or "cp1252"
func LookupEncoding(label string) (Encoding, error) {
	name := strings.ToLower(strings.TrimSpace(label))
	if name == "" {
		name = DefaultEncoding
	}
	if alias, ok := encodingAliases[name]; ok {
		name = alias
	}

	if enc, err := ianaindex.IANA.Encoding(name); err == nil && enc != nil {
		return Encoding{Label: label, enc: enc}, nil
	}
	if enc, err := htmlindex.Get(name); err == nil {
		return Encoding{Label: label, enc: enc}, nil
	}

	return Encoding{}, fmt.Errorf("unsupported encoding %q", label)
}

// UTF-8, the default when no encoding was requested
func DefaultFileEncoding() Encoding {
	enc, _ := LookupEncoding(DefaultEncoding)
	return enc
}

func (e Encoding) String() string {
	if e.Label == "" {
		return DefaultEncoding
	}
	return e.Label
}

func (e Encoding) decode(data []byte) (string, error) {
	if e.enc == nil {
		return string(data), nil
	}
	out, err := e.enc.NewDecoder().Bytes(data)
	if err != nil {
		return "", fmt.Errorf("decode as %s: %w", e, err)
	}
	return string(out), nil
}

func (e Encoding) encode(text string) ([]byte, error) {
	if e.enc == nil {
		return []byte(text), nil
	}
	out, err := e.enc.NewEncoder().Bytes([]byte(text))
	if err != nil {
		return nil, fmt.Errorf("encode as %s: %w", e, err)
	}
	return out, nil
}
