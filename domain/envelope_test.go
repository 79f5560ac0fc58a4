package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func Test_Decode_Action_Closed_Set(t *testing.T) {
	req := require.New(t)

	tests := []struct {
		description string
		payload     string
		want        Action
	}{
		{
			"login",
			`{"action":"login","username":"alice","public_key":"PEM"}`,
			NewLogin("alice", "PEM"),
		},
		{
			"get_key",
			`{"action":"get_key","target":"bob"}`,
			NewGetKey("bob"),
		},
		{
			"private",
			`{"action":"private","target":"bob","content":"ct","encrypted_key":"wk"}`,
			NewPrivate("bob", "ct", "wk"),
		},
		{
			"join_group",
			`{"action":"join_group","group":"team"}`,
			NewJoinGroup("team"),
		},
		{
			"group",
			`{"action":"group","group":"team","content":"ct"}`,
			NewGroup("team", "ct"),
		},
	}
	for _, tt := range tests {
		got, err := DecodeAction([]byte(tt.payload))
		req.NoError(err, tt.description)
		req.Equal(tt.want, got, tt.description)
	}
}

func Test_Decode_Action_Rejects_Unknown_Tag(t *testing.T) {
	req := require.New(t)

	_, err := DecodeAction([]byte(`{"action":"shutdown"}`))
	req.Error(err)

	_, err = DecodeAction([]byte(`{"username":"alice"}`))
	req.Error(err)

	_, err = DecodeAction([]byte(`not json`))
	req.Error(err)
}

func Test_Decode_Server_Message_Status_Has_No_Type_Tag(t *testing.T) {
	req := require.New(t)

	msg, err := DecodeServerMessage([]byte(`{"status":"error","message":"Username already taken"}`))
	req.NoError(err)
	req.Equal(NewError("Username already taken"), msg)

	msg, err = DecodeServerMessage([]byte(`{"status":"success","message":"Welcome alice!","default_model":"claude-haiku-4.5"}`))
	req.NoError(err)
	status := msg.(StatusMessage)
	req.Equal("claude-haiku-4.5", status.DefaultModel)
}

func Test_Decode_Server_Message_Typed(t *testing.T) {
	req := require.New(t)

	msg, err := DecodeServerMessage([]byte(`{"type":"pub_key","username":"bob","key":"PEM"}`))
	req.NoError(err)
	req.Equal(NewPubKey("bob", "PEM"), msg)

	msg, err = DecodeServerMessage([]byte(`{"type":"private","from":"alice","content":"ct","encrypted_key":"wk"}`))
	req.NoError(err)
	req.Equal(NewPrivateRelay("alice", "ct", "wk"), msg)

	msg, err = DecodeServerMessage([]byte(`{"type":"group","group":"team","from":"alice","content":"ct"}`))
	req.NoError(err)
	req.Equal(NewGroupRelay("team", "alice", "ct"), msg)

	_, err = DecodeServerMessage([]byte(`{"type":"broadcast"}`))
	req.Error(err)
}

func Test_Status_Omits_Empty_Default_Model(t *testing.T) {
	req := require.New(t)

	data, err := json.Marshal(NewError("nope"))
	req.NoError(err)
	req.NotContains(string(data), "default_model")
}
