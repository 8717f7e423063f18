package docindex

import (
	"bytes"
	"encoding/json"
)

// Wrapper around the JSON payload expected by the search widget.
const (
	jsPrefix = "Search.setIndex("
	jsSuffix = ")"
)

// MarshalJS encodes the index as a searchindex.js script.
//
// Output is deterministic: struct fields keep their declared order and map
// keys are sorted, so identical indexes always produce identical bytes.
func MarshalJS(idx *Index) ([]byte, error) {
	if idx == nil {
		return nil, Errorf(EINVALID, "index required")
	}
	idx.normalize()

	var buf bytes.Buffer
	buf.WriteString(jsPrefix)
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(idx); err != nil {
		return nil, err
	}
	// Encoder terminates with a newline; the widget expects the call to close immediately.
	buf.Truncate(buf.Len() - 1)
	buf.WriteString(jsSuffix)
	return buf.Bytes(), nil
}

// UnmarshalJS decodes a searchindex.js script. Bare JSON objects are also
// accepted. Missing collections are initialized to empty values.
func UnmarshalJS(data []byte) (*Index, error) {
	payload := bytes.TrimSpace(data)
	if bytes.HasPrefix(payload, []byte(jsPrefix)) {
		payload = bytes.TrimPrefix(payload, []byte(jsPrefix))
		payload = bytes.TrimRight(payload, "; \t\r\n")
		if !bytes.HasSuffix(payload, []byte(jsSuffix)) {
			return nil, Errorf(EINVALID, "search index script is not terminated")
		}
		payload = bytes.TrimSuffix(payload, []byte(jsSuffix))
	}
	if len(payload) == 0 || payload[0] != '{' {
		return nil, Errorf(EINVALID, "search index payload must be a JSON object")
	}

	idx := &Index{}
	if err := json.Unmarshal(payload, idx); err != nil {
		return nil, Errorf(EINVALID, "malformed search index: %v", err)
	}
	idx.normalize()
	return idx, nil
}
