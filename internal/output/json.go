package output

import (
	"encoding/json"
	"io"
)

// WriteJSON marshals v as indented JSON with a trailing newline, for the
// --json flag path of every list/show command.
func WriteJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
