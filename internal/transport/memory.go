package transport

import (
	"io"
	"sync"
	"time"
)

// MemoryFactory builds sockets that share an in-process bus: Listen and
// Dial at the same address join the same group. It requires no cgo and
// no network, and is the transport every test and single-rank run uses.
type MemoryFactory struct {
	net *network
}

// NewMemoryFactory returns a factory with a fresh bus. Two factories
// never see each other's addresses.
func NewMemoryFactory() *MemoryFactory {
	return &MemoryFactory{net: newNetwork()}
}

func (f *MemoryFactory) NewPubSocket() (ListenSocket, error) {
	return &pubSocket{net: f.net}, nil
}

func (f *MemoryFactory) NewSubSocket() (SubscribeSocket, error) {
	return &subSocket{net: f.net}, nil
}

func (f *MemoryFactory) NewSurveyorSocket() (SurveySocket, error) {
	return &surveyorSocket{net: f.net, surveyTime: 2 * time.Second}, nil
}

func (f *MemoryFactory) NewRespondentSocket() (DialSocket, error) {
	return &respondentSocket{net: f.net}, nil
}

var _ SocketFactory = (*MemoryFactory)(nil)

// network is the shared state a MemoryFactory's sockets rendezvous
// through, keyed by the address string Listen/Dial are called with.
type network struct {
	mu         sync.Mutex
	pubHubs    map[string]*pubHub
	surveyHubs map[string]*surveyHub
}

func newNetwork() *network {
	return &network{
		pubHubs:    make(map[string]*pubHub),
		surveyHubs: make(map[string]*surveyHub),
	}
}

func (n *network) pubHubFor(addr string) *pubHub {
	n.mu.Lock()
	defer n.mu.Unlock()
	h, ok := n.pubHubs[addr]
	if !ok {
		h = &pubHub{}
		n.pubHubs[addr] = h
	}
	return h
}

func (n *network) surveyHubFor(addr string) *surveyHub {
	n.mu.Lock()
	defer n.mu.Unlock()
	h, ok := n.surveyHubs[addr]
	if !ok {
		h = &surveyHub{replies: make(chan []byte, 256)}
		n.surveyHubs[addr] = h
	}
	return h
}

// pubHub fans a PUB socket's sends out to every SUB currently joined.
// Delivery is best-effort: a slow subscriber with a full inbox misses a
// broadcast rather than stalling the publisher, matching real PUB/SUB
// semantics.
type pubHub struct {
	mu   sync.Mutex
	subs []chan []byte
}

func (h *pubHub) join() chan []byte {
	c := make(chan []byte, 8)
	h.mu.Lock()
	h.subs = append(h.subs, c)
	h.mu.Unlock()
	return c
}

func (h *pubHub) broadcast(data []byte) {
	h.mu.Lock()
	subs := append([]chan []byte(nil), h.subs...)
	h.mu.Unlock()
	for _, c := range subs {
		select {
		case c <- data:
		default:
		}
	}
}

// surveyHub fans a SURVEYOR's survey out to every dialed RESPONDENT and
// collects their replies onto one shared channel the surveyor drains.
type surveyHub struct {
	mu          sync.Mutex
	respondents []chan []byte
	replies     chan []byte
}

func (h *surveyHub) join() chan []byte {
	c := make(chan []byte, 4)
	h.mu.Lock()
	h.respondents = append(h.respondents, c)
	h.mu.Unlock()
	return c
}

func (h *surveyHub) broadcastSurvey(data []byte) {
	h.mu.Lock()
	rs := append([]chan []byte(nil), h.respondents...)
	h.mu.Unlock()
	for _, c := range rs {
		select {
		case c <- data:
		default:
		}
	}
}

type baseSocket struct {
	recvDeadline time.Duration
	sendDeadline time.Duration
}

func (s *baseSocket) SetRecvDeadline(d time.Duration) error {
	s.recvDeadline = d
	return nil
}

func (s *baseSocket) SetSendDeadline(d time.Duration) error {
	s.sendDeadline = d
	return nil
}

func recvFrom(c chan []byte, deadline time.Duration) ([]byte, error) {
	if c == nil {
		return nil, ErrNotConnected
	}
	if deadline <= 0 {
		data, ok := <-c
		if !ok {
			return nil, io.EOF
		}
		return data, nil
	}
	select {
	case data, ok := <-c:
		if !ok {
			return nil, io.EOF
		}
		return data, nil
	case <-time.After(deadline):
		return nil, ErrTimeout
	}
}

// pubSocket is a ListenSocket: binding creates (or joins) the addressed
// hub, and Send broadcasts to every subscriber joined to it.
type pubSocket struct {
	baseSocket
	net *network
	hub *pubHub
}

func (s *pubSocket) Listen(addr string) error {
	s.hub = s.net.pubHubFor(addr)
	return nil
}

func (s *pubSocket) Send(data []byte) error {
	if s.hub == nil {
		return ErrNotConnected
	}
	s.hub.broadcast(data)
	return nil
}

func (s *pubSocket) Recv() ([]byte, error) { return nil, ErrNotConnected }
func (s *pubSocket) Close() error          { return nil }

// subSocket is a SubscribeSocket: dialing joins the addressed hub's
// subscriber list.
type subSocket struct {
	baseSocket
	net   *network
	inbox chan []byte
}

func (s *subSocket) Dial(addr string) error {
	if s.net == nil {
		return ErrNotConnected
	}
	s.inbox = s.net.pubHubFor(addr).join()
	return nil
}

func (s *subSocket) Subscribe(topic []byte) error { return nil }
func (s *subSocket) Send([]byte) error            { return ErrNotConnected }
func (s *subSocket) Recv() ([]byte, error)        { return recvFrom(s.inbox, s.recvDeadline) }
func (s *subSocket) Close() error                 { return nil }

// surveyorSocket is a SurveySocket: binding creates the addressed
// survey hub, Send broadcasts the survey to every joined respondent,
// and Recv drains replies until SurveyTime elapses.
type surveyorSocket struct {
	baseSocket
	net        *network
	hub        *surveyHub
	surveyTime time.Duration
}

func (s *surveyorSocket) Listen(addr string) error {
	s.hub = s.net.surveyHubFor(addr)
	return nil
}

func (s *surveyorSocket) SetSurveyTime(d time.Duration) error {
	s.surveyTime = d
	return nil
}

func (s *surveyorSocket) Send(data []byte) error {
	if s.hub == nil {
		return ErrNotConnected
	}
	s.hub.broadcastSurvey(data)
	return nil
}

func (s *surveyorSocket) Recv() ([]byte, error) {
	if s.hub == nil {
		return nil, ErrNotConnected
	}
	return recvFrom(s.hub.replies, s.surveyTime)
}

func (s *surveyorSocket) Close() error { return nil }

// respondentSocket is a DialSocket: dialing joins the addressed survey
// hub's respondent list, Recv waits for the next survey, and Send
// delivers the reply back onto the hub's shared reply channel.
type respondentSocket struct {
	baseSocket
	net   *network
	hub   *surveyHub
	inbox chan []byte
}

func (s *respondentSocket) Dial(addr string) error {
	s.hub = s.net.surveyHubFor(addr)
	s.inbox = s.hub.join()
	return nil
}

func (s *respondentSocket) Recv() ([]byte, error) {
	return recvFrom(s.inbox, s.recvDeadline)
}

func (s *respondentSocket) Send(data []byte) error {
	if s.hub == nil {
		return ErrNotConnected
	}
	if s.sendDeadline <= 0 {
		s.hub.replies <- data
		return nil
	}
	select {
	case s.hub.replies <- data:
		return nil
	case <-time.After(s.sendDeadline):
		return ErrTimeout
	}
}

func (s *respondentSocket) Close() error { return nil }
