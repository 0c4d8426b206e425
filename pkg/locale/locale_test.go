package locale

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		name      string
		text      Text
		requested string
		fallback  string
		want      string
	}{
		{
			name:      "requested locale present",
			text:      New(map[string]string{"es": "Hola", "en": "Hi"}),
			requested: "en",
			fallback:  "es",
			want:      "Hi",
		},
		{
			name:      "missing requested falls back",
			text:      New(map[string]string{"es": "Hola", "en": "Hi"}),
			requested: "fr",
			fallback:  "es",
			want:      "Hola",
		},
		{
			name:      "empty map resolves to empty string",
			text:      New(map[string]string{}),
			requested: "en",
			fallback:  "es",
			want:      "",
		},
		{
			name:      "legacy plain string wins for any locale",
			text:      Plain("PlainString"),
			requested: "en",
			fallback:  "es",
			want:      "PlainString",
		},
		{
			name:      "zero value resolves to empty string",
			text:      Text{},
			requested: "en",
			fallback:  "es",
			want:      "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.text.Resolve(tt.requested, tt.fallback))
		})
	}
}

func TestUnmarshalLocaleMap(t *testing.T) {
	var text Text
	require.NoError(t, json.Unmarshal([]byte(`{"es":"Hola","en":"Hi"}`), &text))
	assert.Equal(t, "Hi", text.Resolve("en", "es"))
	assert.ElementsMatch(t, []string{"es", "en"}, text.Locales())
}

func TestUnmarshalLegacyString(t *testing.T) {
	var text Text
	require.NoError(t, json.Unmarshal([]byte(`"El Padrino"`), &text))
	assert.Equal(t, "El Padrino", text.Resolve("en", "es"))
	assert.Empty(t, text.Locales())
}

func TestUnmarshalRejectsOtherShapes(t *testing.T) {
	var text Text
	assert.Error(t, json.Unmarshal([]byte(`42`), &text))
}

func TestMarshalRoundTrip(t *testing.T) {
	localized := New(map[string]string{"es": "Hola"})
	data, err := json.Marshal(localized)
	require.NoError(t, err)
	assert.JSONEq(t, `{"es":"Hola"}`, string(data))

	plain := Plain("Hola")
	data, err = json.Marshal(plain)
	require.NoError(t, err)
	assert.Equal(t, `"Hola"`, string(data))

	var back Text
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, plain, back)
}

func TestIsZero(t *testing.T) {
	assert.True(t, Text{}.IsZero())
	assert.True(t, Plain("").IsZero())
	assert.False(t, Plain("x").IsZero())
	assert.False(t, New(map[string]string{"es": ""}).IsZero())
}
