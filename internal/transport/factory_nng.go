//go:build nng

package transport

// Default returns the real NNG transport, letting ranks span separate
// processes and hosts over tcp:// addresses.
func Default() SocketFactory {
	return NewNNGFactory()
}
