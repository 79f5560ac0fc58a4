//go:generate go run go.uber.org/mock/mockgen -source=sink.go -destination=../mocks/mock_sink.go -package=mocks
package relay

import "cipherchat/domain"

// Sink is the write side of one client connection. The dispatcher only
// ever talks to sinks, so its handlers stay transport-agnostic and tests
// run without sockets.
type Sink interface {
	Send(msg domain.ServerMessage) error
}
