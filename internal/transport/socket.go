// Package transport abstracts the messaging sockets the distributed
// coordinator uses to broadcast the distance matrix and reduce the
// per-rank results: spec.md §4.5's inter-worker collective operations.
//
// Two SocketFactory implementations exist: MemoryFactory, a pure-Go,
// in-process bus used by every test in this module and by single-rank
// runs, and the NNGFactory in nng.go, built only under the "nng" build
// tag, which backs the same interfaces with real
// go.nanomsg.org/mangos/v3 sockets for an actual multi-process run.
package transport

import (
	"errors"
	"io"
	"time"
)

// ErrTimeout is returned by Recv/Send when no peer responds within the
// configured deadline.
var ErrTimeout = errors.New("transport: deadline exceeded")

// ErrNotConnected is returned when Send/Recv is called before
// Listen/Dial.
var ErrNotConnected = errors.New("transport: socket not connected")

// Socket is a messaging endpoint. It abstracts the underlying transport
// (in-process channels, or real NNG sockets) behind one interface.
type Socket interface {
	io.Closer
	Send([]byte) error
	Recv() ([]byte, error)
	SetRecvDeadline(d time.Duration) error
	SetSendDeadline(d time.Duration) error
}

// ListenSocket binds to an address and accepts connections.
type ListenSocket interface {
	Socket
	Listen(addr string) error
}

// DialSocket connects to a remote address.
type DialSocket interface {
	Socket
	Dial(addr string) error
}

// SubscribeSocket is a SUB socket that joins a PUB's broadcast group.
type SubscribeSocket interface {
	DialSocket
	Subscribe(topic []byte) error
}

// SurveySocket is a SURVEYOR socket: it broadcasts a survey and collects
// RESPONDENT replies until SurveyTime elapses.
type SurveySocket interface {
	ListenSocket
	SetSurveyTime(d time.Duration) error
}

// SocketFactory creates the sockets the coordinator needs: one PUB/SUB
// pair to broadcast the distance matrix to every rank, and one
// SURVEYOR/RESPONDENT pair to gather each rank's local best tour into a
// global minimum.
type SocketFactory interface {
	NewPubSocket() (ListenSocket, error)
	NewSubSocket() (SubscribeSocket, error)

	NewSurveyorSocket() (SurveySocket, error)
	NewRespondentSocket() (DialSocket, error)
}

// Addresses names the two collective endpoints a distributed run binds:
// one for the matrix broadcast, one for the result survey.
type Addresses struct {
	MatrixAddr string
	ResultAddr string
}

// DefaultAddresses returns the addresses a single-process, single-rank
// run uses; they are never dialed over a real network unless the "nng"
// build tag is active.
func DefaultAddresses() Addresses {
	return Addresses{
		MatrixAddr: "tcp://127.0.0.1:9190",
		ResultAddr: "tcp://127.0.0.1:9191",
	}
}
