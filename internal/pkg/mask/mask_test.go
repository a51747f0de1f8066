package mask

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type login struct {
	User     string `json:"user"`
	Password string `json:"password"`
}

func TestStringify(t *testing.T) {
	keywords := []string{"password", "Token"}

	tests := []struct {
		name string
		args []any
		want string
	}{
		{"no args", nil, ""},
		{"only nil", []any{nil, nil}, ""},
		{"single scalar", []any{42}, "42"},
		{"single struct", []any{login{User: "amy", Password: "hunter2"}}, `{"password":"***","user":"amy"}`},
		{"many args", []any{"id-1", map[string]any{"accessToken": "abc", "n": 1}}, `["id-1",{"accessToken":"***","n":1}]`},
		{"nested", []any{map[string]any{"form": map[string]any{"password": "x"}}}, `{"form":{"password":"***"}}`},
		{"unserializable", []any{make(chan int)}, unserializable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Stringify(keywords, Output, tt.args...))
		})
	}
}

func TestStringifyWithoutKeywords(t *testing.T) {
	got := Stringify(nil, Output, login{User: "amy", Password: "hunter2"})
	assert.Equal(t, `{"user":"amy","password":"hunter2"}`, got)
}
