package server

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateRoomCode_Format(t *testing.T) {
	for i := 0; i < 100; i++ {
		code := GenerateRoomCode()
		assert.Len(t, code, 4)
		for _, ch := range code {
			assert.True(t, ch >= 'A' && ch <= 'Z', "unexpected character %q in %q", ch, code)
		}
	}
}

func TestValidateRoomCode(t *testing.T) {
	cases := []struct {
		code    string
		wantErr bool
	}{
		{"ABCD", false},
		{"abcd", false}, // case handled by normalization
		{"ABC", true},
		{"ABCDE", true},
		{"AB1D", true},
		{"AB D", true},
		{"", true},
	}

	for _, tc := range cases {
		err := ValidateRoomCode(tc.code)
		if tc.wantErr {
			assert.Error(t, err, "code %q", tc.code)
		} else {
			assert.NoError(t, err, "code %q", tc.code)
		}
	}
}

func TestNormalizeRoomCode(t *testing.T) {
	assert.Equal(t, "ABCD", NormalizeRoomCode("abcd"))
	assert.Equal(t, "ABCD", NormalizeRoomCode("  AbCd \n"))
}
