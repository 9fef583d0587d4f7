package extract

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// idSynonyms are the field names services have used for the record id.
var idSynonyms = []string{"invoice_id", "invoiceID", "id"}

// normalizeResponse
// - unwraps a top-level "data" envelope
// - renames id synonyms to invoiceId
// - coerces a numeric id to its decimal string
// - trims the id
func normalizeResponse(raw []byte) ([]byte, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var m map[string]any
	if err := dec.Decode(&m); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	if m == nil {
		return nil, fmt.Errorf("decode: body is null")
	}

	if _, ok := m["invoiceId"]; !ok {
		if inner, ok := m["data"].(map[string]any); ok {
			m = inner
		}
	}

	if _, ok := m["invoiceId"]; !ok {
		for _, k := range idSynonyms {
			if v, ok := m[k]; ok {
				m["invoiceId"] = v
				delete(m, k)
				break
			}
		}
	}

	switch t := m["invoiceId"].(type) {
	case json.Number:
		m["invoiceId"] = t.String()
	case string:
		m["invoiceId"] = strings.TrimSpace(t)
	}

	out, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("encode: %w", err)
	}
	return out, nil
}

// serviceMessage pulls a human-readable error out of a non-2xx body.
// FastAPI-style {"detail": "..."} and {"detail": [{"msg": "..."}]} are both understood.
func serviceMessage(raw []byte) string {
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return strings.TrimSpace(plainText(raw))
	}
	for _, k := range []string{"message", "detail", "error"} {
		switch v := m[k].(type) {
		case string:
			if s := strings.TrimSpace(v); s != "" {
				return s
			}
		case []any:
			if len(v) > 0 {
				if first, ok := v[0].(map[string]any); ok {
					if s, ok := first["msg"].(string); ok && strings.TrimSpace(s) != "" {
						return strings.TrimSpace(s)
					}
				}
			}
		case map[string]any:
			if s, ok := v["message"].(string); ok && strings.TrimSpace(s) != "" {
				return strings.TrimSpace(s)
			}
		}
	}
	return ""
}

// plainText returns short non-HTML bodies as-is, anything else as "".
func plainText(raw []byte) string {
	s := strings.TrimSpace(string(raw))
	if len(s) == 0 || len(s) > 200 || strings.HasPrefix(s, "<") {
		return ""
	}
	return s
}
