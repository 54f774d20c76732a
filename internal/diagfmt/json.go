package diagfmt

import (
	"encoding/json"
	"io"

	"coral/internal/diag"
	"coral/internal/source"
)

type jsonNote struct {
	Span string `json:"span"`
	Msg  string `json:"msg"`
}

type jsonDiagnostic struct {
	Severity string     `json:"severity"`
	Code     string     `json:"code"`
	Message  string     `json:"message"`
	Pos      string     `json:"pos"`
	Notes    []jsonNote `json:"notes,omitempty"`
}

// JSON renders the bag as a JSON array, one object per diagnostic.
func JSON(w io.Writer, bag *diag.Bag, fs *source.FileSet) error {
	out := make([]jsonDiagnostic, 0, bag.Len())
	for _, d := range bag.Items() {
		jd := jsonDiagnostic{
			Severity: d.Severity.String(),
			Code:     d.Code.String(),
			Message:  d.Message,
			Pos:      position(fs, d.Primary),
		}
		for _, n := range d.Notes {
			jd.Notes = append(jd.Notes, jsonNote{Span: position(fs, n.Span), Msg: n.Msg})
		}
		out = append(out, jd)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
