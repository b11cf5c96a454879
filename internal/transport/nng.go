//go:build nng
// +build nng

package transport

import (
	"time"

	"go.nanomsg.org/mangos/v3"
	"go.nanomsg.org/mangos/v3/protocol/pub"
	"go.nanomsg.org/mangos/v3/protocol/respondent"
	"go.nanomsg.org/mangos/v3/protocol/sub"
	"go.nanomsg.org/mangos/v3/protocol/surveyor"

	_ "go.nanomsg.org/mangos/v3/transport/all"
)

// NNGFactory builds real go.nanomsg.org/mangos/v3 sockets, for an actual
// multi-process distributed run. It is excluded from the default build
// so `go build`/`go test` never link mangos or need a running transport;
// enable it with -tags nng.
type NNGFactory struct{}

// NewNNGFactory returns a factory backed by real NNG sockets.
func NewNNGFactory() *NNGFactory { return &NNGFactory{} }

func (f *NNGFactory) NewPubSocket() (ListenSocket, error) {
	sock, err := pub.NewSocket()
	if err != nil {
		return nil, err
	}
	return &nngSocket{sock: sock}, nil
}

func (f *NNGFactory) NewSubSocket() (SubscribeSocket, error) {
	sock, err := sub.NewSocket()
	if err != nil {
		return nil, err
	}
	return &nngSubSocket{nngSocket{sock: sock}}, nil
}

func (f *NNGFactory) NewSurveyorSocket() (SurveySocket, error) {
	sock, err := surveyor.NewSocket()
	if err != nil {
		return nil, err
	}
	return &nngSurveySocket{nngSocket{sock: sock}}, nil
}

func (f *NNGFactory) NewRespondentSocket() (DialSocket, error) {
	sock, err := respondent.NewSocket()
	if err != nil {
		return nil, err
	}
	return &nngSocket{sock: sock}, nil
}

var _ SocketFactory = (*NNGFactory)(nil)

// nngSocket wraps a mangos.Socket to implement Socket.
type nngSocket struct {
	sock mangos.Socket
}

func (s *nngSocket) Send(data []byte) error { return s.sock.Send(data) }
func (s *nngSocket) Recv() ([]byte, error)  { return s.sock.Recv() }
func (s *nngSocket) Close() error           { return s.sock.Close() }

func (s *nngSocket) SetRecvDeadline(d time.Duration) error {
	return s.sock.SetOption(mangos.OptionRecvDeadline, d)
}

func (s *nngSocket) SetSendDeadline(d time.Duration) error {
	return s.sock.SetOption(mangos.OptionSendDeadline, d)
}

func (s *nngSocket) Listen(addr string) error { return s.sock.Listen(addr) }
func (s *nngSocket) Dial(addr string) error   { return s.sock.Dial(addr) }

type nngSubSocket struct{ nngSocket }

func (s *nngSubSocket) Subscribe(topic []byte) error {
	return s.sock.SetOption(mangos.OptionSubscribe, topic)
}

type nngSurveySocket struct{ nngSocket }

func (s *nngSurveySocket) SetSurveyTime(d time.Duration) error {
	return s.sock.SetOption(mangos.OptionSurveyTime, d)
}
