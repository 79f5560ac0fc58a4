package client

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func Test_Parse_Command(t *testing.T) {
	req := require.New(t)

	tests := []struct {
		description string
		line        string
		want        Command
		wantErr     bool
	}{
		{"private message", "/msg bob hello there", MsgCommand{Target: "bob", Text: "hello there"}, false},
		{"msg missing text", "/msg bob", nil, true},
		{"join", "/join team", JoinCommand{Group: "team"}, false},
		{"join missing group", "/join", nil, true},
		{"group message", "/group team status?", GroupCommand{Group: "team", Text: "status?"}, false},
		{"group missing text", "/group team", nil, true},
		{"quit", "/quit", QuitCommand{}, false},
		{"unknown command", "/dance", nil, true},
		{"bare text", "hello", nil, true},
		{"empty line", "", nil, false},
	}
	for _, tt := range tests {
		got, err := ParseCommand(tt.line)
		if tt.wantErr {
			req.Error(err, tt.description)
			continue
		}
		req.NoError(err, tt.description)
		req.Equal(tt.want, got, tt.description)
	}
}

func Test_Parse_Command_Keeps_Spaces_In_Text(t *testing.T) {
	req := require.New(t)
	got, err := ParseCommand("/msg bob  two  spaces")
	req.NoError(err)
	req.Equal(MsgCommand{Target: "bob", Text: " two  spaces"}, got)
}
