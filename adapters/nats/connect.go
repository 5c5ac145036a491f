package nats

import (
	"os"
	"sync"

	natsgo "github.com/nats-io/nats.go"
)

type closeFunc = func()

// Connector returns a connection and the func releasing it.
type Connector func() (nc *natsgo.Conn, close closeFunc, err error)

// ReuseConnection leases one shared connection to every caller. It is dialed
// on the first lease and closed when the last lease is released. Releasing
// the same lease twice has no effect.
func ReuseConnection(connect Connector) Connector {
	var (
		mu      sync.Mutex
		shared  *natsgo.Conn
		release closeFunc
		leases  int
	)
	return func() (*natsgo.Conn, closeFunc, error) {
		mu.Lock()
		defer mu.Unlock()

		if shared == nil {
			nc, closeConn, err := connect()
			if err != nil {
				return nil, nil, err
			}
			shared, release = nc, closeConn
		}
		leases++

		var once sync.Once
		return shared, func() {
			once.Do(func() {
				mu.Lock()
				defer mu.Unlock()
				if leases--; leases == 0 {
					release()
					shared, release = nil, nil
				}
			})
		}, nil
	}
}

// ConnectURL dials natsURL on every call. opts are appended to the
// defaults.
func ConnectURL(natsURL string, opts ...natsgo.Option) Connector {
	opts = append([]natsgo.Option{natsgo.Name("actr"), natsgo.MaxReconnects(3)}, opts...)
	return func() (*natsgo.Conn, closeFunc, error) {
		nc, err := natsgo.Connect(natsURL, opts...)
		if err != nil {
			return nil, nil, err
		}
		return nc, func() { nc.Close() }, nil
	}
}

func ConnectDefault() Connector {
	if natsURL := os.Getenv("NATS_URL"); natsURL != "" {
		return ConnectURL(natsURL)
	}
	return ConnectURL(natsgo.DefaultURL)
}
