package domain

import (
	"encoding/json"
	"fmt"
)

// Action tags accepted from clients. The set is closed: anything else is
// rejected at decode time instead of being silently ignored.
const (
	ActionLogin     = "login"
	ActionGetKey    = "get_key"
	ActionPrivate   = "private"
	ActionJoinGroup = "join_group"
	ActionGroup     = "group"
)

// Type tags carried by server messages. Status replies carry no type tag,
// they are recognized by their "status" field (see DecodeServerMessage).
const (
	TypePubKey  = "pub_key"
	TypePrivate = "private"
	TypeGroup   = "group"
)

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Action is a client request envelope. Exactly one concrete type per
// action tag.
type Action interface {
	isAction()
}

type LoginAction struct {
	Action    string `json:"action"`
	Username  string `json:"username" validate:"required"`
	PublicKey string `json:"public_key"`
}

type GetKeyAction struct {
	Action string `json:"action"`
	Target string `json:"target" validate:"required"`
}

// PrivateAction carries an opaque ciphertext body plus the session key
// wrapped under the target's public key. The relay never inspects either.
type PrivateAction struct {
	Action       string `json:"action"`
	Target       string `json:"target" validate:"required"`
	Content      string `json:"content"`
	EncryptedKey string `json:"encrypted_key"`
}

type JoinGroupAction struct {
	Action string `json:"action"`
	Group  string `json:"group" validate:"required"`
}

type GroupAction struct {
	Action  string `json:"action"`
	Group   string `json:"group" validate:"required"`
	Content string `json:"content"`
}

func (LoginAction) isAction()     {}
func (GetKeyAction) isAction()    {}
func (PrivateAction) isAction()   {}
func (JoinGroupAction) isAction() {}
func (GroupAction) isAction()     {}

func NewLogin(username, publicKey string) LoginAction {
	return LoginAction{Action: ActionLogin, Username: username, PublicKey: publicKey}
}

func NewGetKey(target string) GetKeyAction {
	return GetKeyAction{Action: ActionGetKey, Target: target}
}

func NewPrivate(target, content, encryptedKey string) PrivateAction {
	return PrivateAction{Action: ActionPrivate, Target: target, Content: content, EncryptedKey: encryptedKey}
}

func NewJoinGroup(group string) JoinGroupAction {
	return JoinGroupAction{Action: ActionJoinGroup, Group: group}
}

func NewGroup(group, content string) GroupAction {
	return GroupAction{Action: ActionGroup, Group: group, Content: content}
}

// DecodeAction parses a client envelope into its concrete action type.
// Unknown or missing action tags are an error, never a no-op.
func DecodeAction(data []byte) (Action, error) {
	var probe struct {
		Action string `json:"action"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("malformed envelope: %w", err)
	}

	switch probe.Action {
	case ActionLogin:
		var a LoginAction
		return a, json.Unmarshal(data, &a)
	case ActionGetKey:
		var a GetKeyAction
		return a, json.Unmarshal(data, &a)
	case ActionPrivate:
		var a PrivateAction
		return a, json.Unmarshal(data, &a)
	case ActionJoinGroup:
		var a JoinGroupAction
		return a, json.Unmarshal(data, &a)
	case ActionGroup:
		var a GroupAction
		return a, json.Unmarshal(data, &a)
	default:
		return nil, fmt.Errorf("unknown action %q", probe.Action)
	}
}

// ServerMessage is a server reply or relay envelope.
type ServerMessage interface {
	isServerMessage()
}

// StatusMessage reports success or failure of an action back to its
// originator. DefaultModel is only populated on login success.
type StatusMessage struct {
	Status       string `json:"status"`
	Message      string `json:"message"`
	DefaultModel string `json:"default_model,omitempty"`
}

type PubKeyMessage struct {
	Type     string `json:"type"`
	Username string `json:"username"`
	Key      string `json:"key"`
}

type PrivateMessage struct {
	Type         string `json:"type"`
	From         string `json:"from"`
	Content      string `json:"content"`
	EncryptedKey string `json:"encrypted_key"`
}

type GroupMessage struct {
	Type    string `json:"type"`
	Group   string `json:"group"`
	From    string `json:"from"`
	Content string `json:"content"`
}

func (StatusMessage) isServerMessage()  {}
func (PubKeyMessage) isServerMessage()  {}
func (PrivateMessage) isServerMessage() {}
func (GroupMessage) isServerMessage()   {}

func NewSuccess(message string) StatusMessage {
	return StatusMessage{Status: StatusSuccess, Message: message}
}

func NewError(message string) StatusMessage {
	return StatusMessage{Status: StatusError, Message: message}
}

func NewPubKey(username, key string) PubKeyMessage {
	return PubKeyMessage{Type: TypePubKey, Username: username, Key: key}
}

func NewPrivateRelay(from, content, encryptedKey string) PrivateMessage {
	return PrivateMessage{Type: TypePrivate, From: from, Content: content, EncryptedKey: encryptedKey}
}

func NewGroupRelay(group, from, content string) GroupMessage {
	return GroupMessage{Type: TypeGroup, Group: group, From: from, Content: content}
}

// DecodeServerMessage parses a server envelope. Status replies have no
// type tag on the wire, so the "status" field is probed first.
func DecodeServerMessage(data []byte) (ServerMessage, error) {
	var probe struct {
		Status string `json:"status"`
		Type   string `json:"type"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("malformed envelope: %w", err)
	}

	if probe.Status != "" {
		var m StatusMessage
		return m, json.Unmarshal(data, &m)
	}

	switch probe.Type {
	case TypePubKey:
		var m PubKeyMessage
		return m, json.Unmarshal(data, &m)
	case TypePrivate:
		var m PrivateMessage
		return m, json.Unmarshal(data, &m)
	case TypeGroup:
		var m GroupMessage
		return m, json.Unmarshal(data, &m)
	default:
		return nil, fmt.Errorf("unknown message type %q", probe.Type)
	}
}
