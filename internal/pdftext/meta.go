package pdftext

import (
	"encoding/hex"
	"io"
	"os"
	"regexp"
	"strings"

	"golang.org/x/text/encoding/unicode"
)

// scanWindow is how much of each end of the file is searched for the
// Info dictionary. Most writers put it in the header or near the trailer.
const scanWindow = 16 << 10

// Metadata is the document's Info dictionary, best effort.
type Metadata struct {
	Title   string `json:"title,omitempty" yaml:"title,omitempty"`
	Author  string `json:"author,omitempty" yaml:"author,omitempty"`
	Subject string `json:"subject,omitempty" yaml:"subject,omitempty"`
}

// Empty reports whether no field was found.
func (m Metadata) Empty() bool {
	return m.Title == "" && m.Author == "" && m.Subject == ""
}

// ExtractMetadata scans the head and tail of the file for Info entries.
// Compressed object streams are not decoded, so fields stored there come
// back empty rather than as an error.
func ExtractMetadata(path string) (Metadata, error) {
	f, err := os.Open(path)
	if err != nil {
		return Metadata{}, err
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		return Metadata{}, err
	}

	head := make([]byte, min(st.Size(), scanWindow))
	if _, err := io.ReadFull(f, head); err != nil {
		return Metadata{}, err
	}
	text := string(head)
	if st.Size() > scanWindow {
		tail := make([]byte, min(st.Size()-scanWindow, scanWindow))
		if _, err := f.ReadAt(tail, st.Size()-int64(len(tail))); err != nil && err != io.EOF {
			return Metadata{}, err
		}
		text += "\n" + string(tail)
	}

	return Metadata{
		Title:   infoField(text, "Title"),
		Author:  infoField(text, "Author"),
		Subject: infoField(text, "Subject"),
	}, nil
}

var fieldPatterns = map[string][2]*regexp.Regexp{}

func init() {
	for _, name := range []string{"Title", "Author", "Subject"} {
		fieldPatterns[name] = [2]*regexp.Regexp{
			regexp.MustCompile(`/` + name + `\s*\(((?:\\.|[^\\)])*)\)`),
			regexp.MustCompile(`/` + name + `\s*<([0-9A-Fa-f\s]+)>`),
		}
	}
}

// infoField matches /Name (literal) first, then /Name <hex>.
func infoField(text, name string) string {
	pats := fieldPatterns[name]
	if m := pats[0].FindStringSubmatch(text); m != nil {
		return clean(unescapeLiteral(m[1]))
	}
	if m := pats[1].FindStringSubmatch(text); m != nil {
		return clean(decodeHex(m[1]))
	}
	return ""
}

var literalEscapes = strings.NewReplacer(
	`\n`, "\n",
	`\r`, "\r",
	`\t`, "\t",
	`\(`, "(",
	`\)`, ")",
	`\\`, `\`,
)

func unescapeLiteral(s string) string {
	return literalEscapes.Replace(s)
}

// decodeHex decodes a hex string, as UTF-16BE when it carries a BOM.
func decodeHex(s string) string {
	s = strings.Join(strings.Fields(s), "")
	if len(s)%2 == 1 {
		s += "0"
	}
	raw, err := hex.DecodeString(s)
	if err != nil {
		return ""
	}
	if len(raw) >= 2 && raw[0] == 0xFE && raw[1] == 0xFF {
		dec := unicode.UTF16(unicode.BigEndian, unicode.ExpectBOM).NewDecoder()
		out, err := dec.Bytes(raw)
		if err != nil {
			return ""
		}
		return string(out)
	}
	return string(raw)
}

func clean(s string) string {
	return strings.TrimSpace(strings.ReplaceAll(s, "\x00", ""))
}
