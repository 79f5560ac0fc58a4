package relay

import (
	"fmt"
	"log/slog"

	"cipherchat/domain"
	"cipherchat/errors"
	"cipherchat/repositories"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// Session is the per-connection state machine. A session starts
// unauthenticated, becomes authenticated on a successful login, and is
// closed when its read loop ends. Identity stays empty until then; every
// privileged handler gates on it.
type Session struct {
	ID       string
	sink     Sink
	identity string
}

func NewSession(sink Sink) *Session {
	return &Session{ID: uuid.New().String(), sink: sink}
}

// Identity returns the logged-in username, or "" before login.
func (s *Session) Identity() string { return s.identity }

var validate = validator.New()

// statusError pairs a taxonomy sentinel with the exact reply text sent
// back to the client. Handlers classify failures via the sentinel;
// the protocol only ever sees the message.
type statusError struct {
	kind    error
	message string
}

func (e statusError) Error() string { return e.message }
func (e statusError) Unwrap() error { return e.kind }

func failWith(kind error, format string, args ...any) error {
	return statusError{kind: kind, message: fmt.Sprintf(format, args...)}
}

// Dispatcher routes decoded client actions to their handlers. Handlers
// read and mutate the registry and emit zero or more reply/relay
// envelopes; they never see plaintext, all message bodies stay opaque.
type Dispatcher struct {
	registry     *Registry
	users        repositories.IUserRepository
	groups       repositories.IGroupRepository
	defaultModel string
	log          *slog.Logger
}

func NewDispatcher(
	registry *Registry,
	users repositories.IUserRepository,
	groups repositories.IGroupRepository,
	defaultModel string,
	log *slog.Logger,
) *Dispatcher {
	return &Dispatcher{
		registry:     registry,
		users:        users,
		groups:       groups,
		defaultModel: defaultModel,
		log:          log,
	}
}

// Dispatch handles one action for one session. The switch is exhaustive
// over the closed action set; DecodeAction already rejected unknown
// tags. A handler error becomes a single error status reply.
func (d *Dispatcher) Dispatch(s *Session, action domain.Action) {
	var err error
	switch a := action.(type) {
	case domain.LoginAction:
		err = d.handleLogin(s, a)
	case domain.GetKeyAction:
		err = d.handleGetKey(s, a)
	case domain.PrivateAction:
		err = d.handlePrivate(s, a)
	case domain.JoinGroupAction:
		err = d.handleJoinGroup(s, a)
	case domain.GroupAction:
		err = d.handleGroup(s, a)
	default:
		err = fmt.Errorf("unsupported action %T", action)
	}
	if err != nil {
		d.reply(s, domain.NewError(err.Error()))
	}
}

// Disconnect evicts the session's identity from the connection registry.
// Group membership survives: this is the design choice that lets members
// reconnect without rejoining.
func (d *Dispatcher) Disconnect(s *Session) {
	if s.identity == "" {
		return
	}
	d.registry.Disconnect(s.identity)
	d.log.Info("User disconnected", "session", s.ID, "username", s.identity)
	s.identity = ""
}

// handleLogin claims the identity and registers the public key. A taken
// username is an error status, not a connection close: the client may
// retry with another name on the same connection.
func (d *Dispatcher) handleLogin(s *Session, a domain.LoginAction) error {
	if err := validate.Struct(a); err != nil {
		return fmt.Errorf("Invalid login request")
	}
	if !d.registry.Connect(a.Username, s.sink) {
		return failWith(errors.ErrUsernameTaken, "Username already taken")
	}
	s.identity = a.Username

	if a.PublicKey != "" {
		d.registry.SetKey(a.Username, a.PublicKey)
		if err := d.users.UpsertUser(a.Username, a.PublicKey); err != nil {
			// The in-memory directory is already updated; persistence
			// catches up on the next login.
			d.log.Error("Failed to persist public key", "username", a.Username, "error", err)
		}
	}

	d.log.Info("User logged in", "session", s.ID, "username", a.Username)
	d.reply(s, domain.StatusMessage{
		Status:       domain.StatusSuccess,
		Message:      fmt.Sprintf("Welcome %s!", a.Username),
		DefaultModel: d.defaultModel,
	})
	return nil
}

// handleGetKey serves the key directory. No authentication required: the
// lookup is read-only and the directory holds only public material.
func (d *Dispatcher) handleGetKey(s *Session, a domain.GetKeyAction) error {
	key, ok := d.registry.Key(a.Target)
	if !ok {
		return failWith(errors.ErrUserNotFound, "User %s not found or no key", a.Target)
	}
	d.reply(s, domain.NewPubKey(a.Target, key))
	return nil
}

// handlePrivate relays an opaque private envelope to the target's live
// connection. A write failure means the target's channel died under us:
// the entry is lazily evicted and the failure swallowed. The eviction
// only fires if the registry still holds the failed sink, so a target
// that reconnected mid-relay keeps its fresh connection. The sender only
// ever learns "not found" for targets absent from the registry upfront.
func (d *Dispatcher) handlePrivate(s *Session, a domain.PrivateAction) error {
	if s.identity == "" {
		return failWith(errors.ErrNotLoggedIn, "Not logged in")
	}
	target, ok := d.registry.Connection(a.Target)
	if !ok {
		return failWith(errors.ErrUserNotFound, "User %s not found", a.Target)
	}
	if err := target.Send(domain.NewPrivateRelay(s.identity, a.Content, a.EncryptedKey)); err != nil {
		if d.registry.DisconnectIf(a.Target, target) {
			d.log.Debug("Evicted dead connection during private relay", "target", a.Target, "error", err)
		}
	}
	return nil
}

func (d *Dispatcher) handleJoinGroup(s *Session, a domain.JoinGroupAction) error {
	if s.identity == "" {
		return failWith(errors.ErrNotLoggedIn, "Not logged in")
	}
	d.registry.JoinGroup(s.identity, a.Group)
	if err := d.groups.AddMembership(s.identity, a.Group); err != nil {
		d.log.Error("Failed to persist membership", "username", s.identity, "group", a.Group, "error", err)
	}
	d.log.Info("Joined group", "session", s.ID, "username", s.identity, "group", a.Group)
	d.reply(s, domain.NewSuccess(fmt.Sprintf("Joined group %s", a.Group)))
	return nil
}

// handleGroup fans the opaque ciphertext out to every other connected
// member. Best-effort: each delivery is attempted independently,
// per-recipient failures are swallowed, and the sender gets no delivery
// report. The sender is never echoed to.
func (d *Dispatcher) handleGroup(s *Session, a domain.GroupAction) error {
	if s.identity == "" {
		return failWith(errors.ErrNotLoggedIn, "Not logged in")
	}
	if !d.registry.IsMember(s.identity, a.Group) {
		return failWith(errors.ErrNotInGroup, "You are not in group %s", a.Group)
	}
	relayed := domain.NewGroupRelay(a.Group, s.identity, a.Content)
	for _, member := range d.registry.GroupRecipients(a.Group, s.identity) {
		if err := member.Sink.Send(relayed); err != nil {
			d.log.Debug("Group relay failed", "group", a.Group, "recipient", member.Identity, "error", err)
		}
	}
	return nil
}

// reply sends a response back to the acting session. A failed reply means
// the session's own channel is gone; its read loop will notice and tear
// the session down, so the error is only logged here.
func (d *Dispatcher) reply(s *Session, msg domain.ServerMessage) {
	if err := s.sink.Send(msg); err != nil {
		d.log.Debug("Reply failed", "session", s.ID, "error", err)
	}
}
