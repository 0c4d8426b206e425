package locale

import (
	"encoding/json"
	"fmt"
)

// DefaultLocale is the locale used when a document carries no entry for the
// requested one. Matches the catalog's primary authoring language.
const DefaultLocale = "es"

// Text is display text that is either a per-locale map or a legacy plain
// string. Older catalog documents stored titles and descriptions as bare
// strings; the shape is decided once when the document is decoded, not
// re-sniffed on every read.
type Text struct {
	plain   string
	isPlain bool
	values  map[string]string
}

// New creates localized text from a locale -> string map.
func New(values map[string]string) Text {
	m := make(map[string]string, len(values))
	for k, v := range values {
		m[k] = v
	}
	return Text{values: m}
}

// Plain creates legacy single-string text. It resolves to the same string
// for every requested locale.
func Plain(s string) Text {
	return Text{plain: s, isPlain: true}
}

// Resolve returns the text for the requested locale, falling back to the
// fallback locale and finally to the empty string. A missing locale is an
// expected condition, not an error.
func (t Text) Resolve(requested, fallback string) string {
	if t.isPlain {
		return t.plain
	}
	if v, ok := t.values[requested]; ok {
		return v
	}
	return t.values[fallback]
}

// Locales returns the locale codes present in the text. Legacy plain text
// reports no locales.
func (t Text) Locales() []string {
	if t.isPlain {
		return nil
	}
	codes := make([]string, 0, len(t.values))
	for k := range t.values {
		codes = append(codes, k)
	}
	return codes
}

// IsZero reports whether no text is stored in any shape.
func (t Text) IsZero() bool {
	if t.isPlain {
		return t.plain == ""
	}
	return len(t.values) == 0
}

func (t Text) MarshalJSON() ([]byte, error) {
	if t.isPlain {
		return json.Marshal(t.plain)
	}
	if t.values == nil {
		return json.Marshal(map[string]string{})
	}
	return json.Marshal(t.values)
}

func (t *Text) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*t = Plain(s)
		return nil
	}
	var m map[string]string
	if err := json.Unmarshal(data, &m); err != nil {
		return fmt.Errorf("localized text is neither a string nor a locale map: %w", err)
	}
	*t = Text{values: m}
	return nil
}
