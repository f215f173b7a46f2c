package app

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/blackwell-systems/booklets/internal/catalog"
	"gopkg.in/yaml.v3"
)

// writeFormatted prints v as JSON or YAML. It reports false for an empty
// format so callers fall through to their table output.
func writeFormatted(format string, v any) (bool, error) {
	if format == "" {
		return false, nil
	}
	return true, encodeFormatted(os.Stdout, format, v)
}

func encodeFormatted(w io.Writer, format string, v any) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	}
	return fmt.Errorf("unknown format %q (want json or yaml)", format)
}

// entryView is an entry as shown to users. The catalog file format keeps
// local state out of YAML, so it is added back here. entryInfo carries
// the same two fields.
type entryView struct {
	catalog.Entry `yaml:",inline"`
	LocalState    string           `json:"-" yaml:"local_path,omitempty"`
	PreviewState  *catalog.Preview `json:"-" yaml:"preview,omitempty"`
}

func newEntryView(e catalog.Entry) entryView {
	return entryView{Entry: e, LocalState: e.LocalPath, PreviewState: e.Preview}
}

func entryViews(entries []catalog.Entry) []entryView {
	out := make([]entryView, len(entries))
	for i, e := range entries {
		out[i] = newEntryView(e)
	}
	return out
}
