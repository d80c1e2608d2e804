package shield

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMask(t *testing.T) {
	tests := []struct {
		name  string
		value string
		opts  Options
		want  string
	}{
		{
			name:  "keep two on both ends",
			value: "SensitiveData123",
			opts:  Options{MinLength: 6, KeepStart: true, KeepStartCount: 2, KeepEnd: true, KeepEndCount: 2, MaskToken: "*"},
			want:  "Se************23",
		},
		{
			name:  "shorter than min length passes through",
			value: "abcde",
			opts:  Options{MinLength: 6, KeepStart: true, KeepStartCount: 1, MaskToken: "*"},
			want:  "abcde",
		},
		{
			name:  "exactly min length is masked",
			value: "abcdef",
			opts:  Options{MinLength: 6, MaskToken: "*"},
			want:  "******",
		},
		{
			name:  "full mask",
			value: "secret123",
			opts:  Options{MinLength: 2, MaskToken: "*"},
			want:  "*********",
		},
		{
			name:  "keep start only",
			value: "password",
			opts:  Options{KeepStart: true, KeepStartCount: 3, MaskToken: "#"},
			want:  "pas#####",
		},
		{
			name:  "keep end only",
			value: "1234-5678-9012-3456",
			opts:  Options{KeepEnd: true, KeepEndCount: 4, MaskToken: "*"},
			want:  "***************3456",
		},
		{
			name:  "count ignored when flag is off",
			value: "abcdefgh",
			opts:  Options{KeepStart: false, KeepStartCount: 3, KeepEnd: true, KeepEndCount: 2, MaskToken: "*"},
			want:  "******gh",
		},
		{
			name:  "start count above length clamps",
			value: "abcd",
			opts:  Options{KeepStart: true, KeepStartCount: 10, MaskToken: "*"},
			want:  "abcd",
		},
		{
			name:  "overlap split evenly",
			value: "abcdef",
			opts:  Options{KeepStart: true, KeepStartCount: 4, KeepEnd: true, KeepEndCount: 4, MaskToken: "*"},
			want:  "abcdef",
		},
		{
			name:  "odd overlap taken from the end",
			value: "abcde",
			opts:  Options{KeepStart: true, KeepStartCount: 3, KeepEnd: true, KeepEndCount: 3, MaskToken: "*"},
			want:  "abcde",
		},
		{
			name:  "both counts clamp then overlap",
			value: "abc",
			opts:  Options{KeepStart: true, KeepStartCount: 10, KeepEnd: true, KeepEndCount: 10, MaskToken: "*"},
			want:  "abc",
		},
		{
			name:  "negative counts keep nothing",
			value: "abcdef",
			opts:  Options{KeepStart: true, KeepStartCount: -3, KeepEnd: true, KeepEndCount: -1, MaskToken: "*"},
			want:  "******",
		},
		{
			name:  "negative start with positive end",
			value: "abcdef",
			opts:  Options{KeepStart: true, KeepStartCount: -2, KeepEnd: true, KeepEndCount: 2, MaskToken: "*"},
			want:  "****ef",
		},
		{
			name:  "multi character token",
			value: "abcdef",
			opts:  Options{KeepStart: true, KeepStartCount: 1, KeepEnd: true, KeepEndCount: 1, MaskToken: "<>"},
			want:  "a<><><><>f",
		},
		{
			name:  "empty token removes the middle",
			value: "abcdef",
			opts:  Options{KeepStart: true, KeepStartCount: 1, KeepEnd: true, KeepEndCount: 1},
			want:  "af",
		},
		{
			name:  "empty value",
			value: "",
			opts:  Options{MaskToken: "*"},
			want:  "",
		},
		{
			name:  "multi-byte characters are not split",
			value: "비밀번호입니다",
			opts:  Options{KeepStart: true, KeepStartCount: 2, KeepEnd: true, KeepEndCount: 1, MaskToken: "*"},
			want:  "비밀****다",
		},
		{
			name:  "min length counts characters not bytes",
			value: "äöü",
			opts:  Options{MinLength: 4, MaskToken: "*"},
			want:  "äöü",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Mask(tt.value, tt.opts))
		})
	}
}

func TestMask_LengthPreservedForSingleRuneToken(t *testing.T) {
	opts := Options{MinLength: 1, KeepStart: true, KeepStartCount: 3, KeepEnd: true, KeepEndCount: 5, MaskToken: "*"}
	for _, v := range []string{"a", "ab", "abcdefg", "abcdefgh", "abcdefghijklmnop"} {
		got := Mask(v, opts)
		assert.Len(t, got, len(v), "value %q", v)
	}
}

func TestMask_LargeInput(t *testing.T) {
	value := strings.Repeat("x", 100000)
	got := Mask(value, Options{KeepEnd: true, KeepEndCount: 4, MaskToken: "*"})

	assert.Len(t, got, len(value))
	assert.True(t, strings.HasPrefix(got, "****"))
	assert.True(t, strings.HasSuffix(got, "*xxxx"))
}

func TestKeepCount(t *testing.T) {
	tests := []struct {
		keep   bool
		count  int
		length int
		want   int
	}{
		{true, 2, 10, 2},
		{true, 20, 10, 10},
		{true, -1, 10, 0},
		{false, 5, 10, 0},
		{true, 0, 10, 0},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, keepCount(tt.keep, tt.count, tt.length))
	}
}

func TestByteOffset(t *testing.T) {
	assert.Equal(t, 0, byteOffset("héllo", 0))
	assert.Equal(t, 1, byteOffset("héllo", 1))
	assert.Equal(t, 3, byteOffset("héllo", 2))
	assert.Equal(t, 6, byteOffset("héllo", 5))
}
