package client

import (
	"crypto/rsa"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"cipherchat/crypto"
	"cipherchat/domain"

	"github.com/gookit/color"
	"github.com/gorilla/websocket"
)

// KeyFetchTimeout bounds how long a private send waits for the target's
// public key. No other operation has a timeout.
const KeyFetchTimeout = 5 * time.Second

// Client is one end of the relay protocol: it owns the websocket, the
// private key, the keyring, and the group cipher. The relay only ever
// sees ciphertext; all encryption and decryption happens here.
type Client struct {
	conn        *websocket.Conn
	writeMu     sync.Mutex
	privateKey  *rsa.PrivateKey
	publicPEM   string
	keyring     *Keyring
	groupCipher *crypto.GroupCipher
	log         *slog.Logger
	out         io.Writer
}

func New(privateKey *rsa.PrivateKey, groupCipher *crypto.GroupCipher, out io.Writer, log *slog.Logger) (*Client, error) {
	publicPEM, err := crypto.EncodePublicKey(&privateKey.PublicKey)
	if err != nil {
		return nil, err
	}
	return &Client{
		privateKey:  privateKey,
		publicPEM:   publicPEM,
		keyring:     NewKeyring(KeyFetchTimeout),
		groupCipher: groupCipher,
		log:         log,
		out:         out,
	}, nil
}

// Dial opens the persistent duplex channel to the relay.
func (c *Client) Dial(serverURL string) error {
	conn, _, err := websocket.DefaultDialer.Dial(serverURL, nil)
	if err != nil {
		return fmt.Errorf("connect to %s: %w", serverURL, err)
	}
	c.conn = conn
	return nil
}

func (c *Client) Close() error {
	if c.conn == nil {
		return nil
	}
	return c.conn.Close()
}

// Login claims a username and publishes the public key. The status reply
// arrives asynchronously on the listen loop; a taken username can be
// retried on the same connection.
func (c *Client) Login(username string) error {
	return c.send(domain.NewLogin(username, c.publicPEM))
}

// SendPrivate runs the full private path: resolve the target's key
// (fetching it from the relay when not cached), hybrid-encrypt, send.
// A key-fetch timeout aborts the send with nothing transmitted; the user
// must re-issue the command to retry.
func (c *Client) SendPrivate(target, text string) error {
	pub, err := c.keyring.Resolve(target, func() error {
		c.printf("Fetching public key for %s...\n", target)
		return c.send(domain.NewGetKey(target))
	})
	if err != nil {
		return fmt.Errorf("could not retrieve public key for %s: %w", target, err)
	}
	content, encryptedKey, err := crypto.EncryptPrivate(pub, text)
	if err != nil {
		return err
	}
	return c.send(domain.NewPrivate(target, content, encryptedKey))
}

func (c *Client) JoinGroup(group string) error {
	return c.send(domain.NewJoinGroup(group))
}

// SendGroup encrypts under the shared group secret and sends. The relay
// checks membership and fans out; non-membership comes back as an error
// status on the listen loop.
func (c *Client) SendGroup(group, text string) error {
	content, err := c.groupCipher.Encrypt(text)
	if err != nil {
		return err
	}
	return c.send(domain.NewGroup(group, content))
}

// Listen runs the receive/decrypt loop until the connection closes.
// Decryption failures are reported per message and never end the loop.
func (c *Client) Listen() error {
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("disconnected from server: %w", err)
		}
		msg, err := domain.DecodeServerMessage(data)
		if err != nil {
			c.log.Warn("Dropped unreadable envelope", "error", err)
			continue
		}
		c.handle(msg)
	}
}

func (c *Client) handle(msg domain.ServerMessage) {
	switch m := msg.(type) {
	case domain.StatusMessage:
		c.printf("%s %s\n", color.New(color.FgYellow).Render("[Server]"), m.Message)
		if m.DefaultModel != "" {
			c.printf("%s Default model: %s\n", color.New(color.FgYellow).Render("[Server]"), m.DefaultModel)
		}
	case domain.PubKeyMessage:
		if err := c.keyring.Complete(m.Username, m.Key); err != nil {
			c.log.Warn("Discarded unparseable public key", "username", m.Username, "error", err)
		}
	case domain.PrivateMessage:
		header := color.New(color.FgCyan).Render(fmt.Sprintf("[Private from %s]", m.From))
		text, err := crypto.DecryptPrivate(c.privateKey, m.Content, m.EncryptedKey)
		if err != nil {
			c.printf("\n%s: <Decryption Error: %v>\n", header, err)
			return
		}
		c.printf("\n%s: %s\n", header, text)
	case domain.GroupMessage:
		header := color.New(color.FgGreen).Render(fmt.Sprintf("[Group %s - %s]", m.Group, m.From))
		text, err := c.groupCipher.Decrypt(m.Content)
		if err != nil {
			c.printf("\n%s: <Decryption Error: %v>\n", header, err)
			return
		}
		c.printf("\n%s: %s\n", header, text)
	}
}

func (c *Client) send(v any) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn.WriteJSON(v)
}

func (c *Client) printf(format string, args ...any) {
	fmt.Fprintf(c.out, format, args...)
}
