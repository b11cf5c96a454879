package coordinator

import (
	"fmt"
	"time"

	"github.com/tspbb/solver/internal/distance"
)

// The matrix broadcast retries on a short interval for a bounded
// settle window, the same periodic-retry shape as the teacher's health
// surveyor ticker loop, adapted from an unbounded heartbeat into a
// bounded startup handshake: a late-joining subscriber only has to be
// dialed sometime within the window, not before the first publish.
const (
	matrixBroadcastInterval = 5 * time.Millisecond
	matrixBroadcastWindow   = 250 * time.Millisecond
	matrixRecvPollInterval  = 5 * time.Millisecond
	matrixRecvTimeout       = 2 * time.Second
)

// obtainMatrix returns the matrix this rank will search over: rank 0
// uses the one it parsed from the distance file and broadcasts it for
// everyone else; every other rank subscribes and waits for it.
func (c *Coordinator) obtainMatrix(local *distance.Matrix) (*distance.Matrix, error) {
	if c.cfg.WorldSize <= 1 {
		if local == nil {
			return nil, fmt.Errorf("coordinator: rank 0 requires a parsed matrix")
		}
		return local, nil
	}

	if c.cfg.Rank == 0 {
		if local == nil {
			return nil, fmt.Errorf("coordinator: rank 0 requires a parsed matrix")
		}
		go c.broadcastMatrix(local)
		return local, nil
	}

	return c.receiveMatrix()
}

func (c *Coordinator) broadcastMatrix(mat *distance.Matrix) {
	pub, err := c.factory.NewPubSocket()
	if err != nil {
		return
	}
	defer pub.Close()
	if err := pub.Listen(c.cfg.MatrixAddr); err != nil {
		return
	}

	payload := mat.Encode()
	deadline := time.Now().Add(matrixBroadcastWindow)
	for {
		_ = pub.Send(payload)
		if time.Now().After(deadline) {
			return
		}
		time.Sleep(matrixBroadcastInterval)
	}
}

func (c *Coordinator) receiveMatrix() (*distance.Matrix, error) {
	sub, err := c.factory.NewSubSocket()
	if err != nil {
		return nil, err
	}
	defer sub.Close()
	if err := sub.Dial(c.cfg.MatrixAddr); err != nil {
		return nil, err
	}
	if err := sub.Subscribe(nil); err != nil {
		return nil, err
	}
	_ = sub.SetRecvDeadline(matrixRecvPollInterval)

	deadline := time.Now().Add(matrixRecvTimeout)
	for time.Now().Before(deadline) {
		data, err := sub.Recv()
		if err != nil {
			continue
		}
		return distance.DecodeMatrix(data)
	}
	return nil, fmt.Errorf("coordinator: rank %d timed out waiting for the matrix broadcast", c.cfg.Rank)
}
