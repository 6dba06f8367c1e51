package channel

import (
	"bytes"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeCommand_Golden(t *testing.T) {
	tests := []struct {
		name string
		cmd  Command
	}{
		{name: "ping", cmd: NewCommand("PING")},
		{name: "set", cmd: NewCommand("SET", "key", "value")},
		{name: "lrange", cmd: NewCommand("LRANGE", "letters", 0, int64(-1), nil)},
		{name: "binary", cmd: NewCommand("HSET", []byte("h"), []byte{'f', 0, 'x'}, 1.5)},
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, EncodeCommand(&buf, tt.cmd))
			g.Assert(t, tt.name, buf.Bytes())
		})
	}
}

func TestNewCommand_Arguments(t *testing.T) {
	type custom struct{ A int }
	cmd := NewCommand("X", "s", []byte("b"), 7, int32(-2), uint64(9), 0.25, true, false, nil, custom{A: 1})

	want := []string{"s", "b", "7", "-2", "9", "0.25", "1", "0", "", "{1}"}
	require.Len(t, cmd.Args, len(want))
	for i, w := range want {
		assert.Equal(t, w, string(cmd.Args[i]), "arg %d", i)
	}
}

func TestCommand_StringTruncates(t *testing.T) {
	short := NewCommand("GET", "k")
	assert.Equal(t, "GET k", short.String())

	long := NewCommand("SET", "k", strings.Repeat("v", 300))
	s := long.String()
	assert.True(t, strings.HasSuffix(s, "..."))
	assert.Len(t, s, 103)
}
