package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	charmLog "github.com/charmbracelet/log"
)

// closeFlushTimeout bounds the final write performed by Store.Close.
const closeFlushTimeout = 5 * time.Second

// mirror writes the newest published state to the persister in the background.
// Bursts of mutations coalesce into one write; only versions newer than the last
// successful write are stored, so writes never go backwards.
type mirror struct {
	persister Persister
	key       string
	clock     Clock
	logger    *charmLog.Logger
	onWarn    func(error)

	mu            sync.Mutex
	latest        State
	latestVersion uint64

	writeMu sync.Mutex
	written uint64

	kick     chan struct{}
	stop     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

// newMirror constructs a mirror whose last written version is base.
func newMirror(persister Persister, key string, clock Clock, logger *charmLog.Logger, onWarn func(error), base uint64) *mirror {
	return &mirror{
		persister:     persister,
		key:           key,
		clock:         clock,
		logger:        logger,
		onWarn:        onWarn,
		latestVersion: base,
		written:       base,
		kick:          make(chan struct{}, 1),
		stop:          make(chan struct{}),
		done:          make(chan struct{}),
	}
}

// start launches the background writer.
func (m *mirror) start() {
	go m.run()
}

func (m *mirror) run() {
	defer close(m.done)
	for {
		select {
		case <-m.stop:
			return
		case <-m.kick:
			_ = m.write(context.Background())
		}
	}
}

// publish records st as the newest state and wakes the writer without blocking.
func (m *mirror) publish(st State) {
	m.mu.Lock()
	if st.Version > m.latestVersion {
		m.latest = st
		m.latestVersion = st.Version
	}
	m.mu.Unlock()

	select {
	case m.kick <- struct{}{}:
	default:
	}
}

// write stores the newest published state if it has not been stored yet.
// A failed write leaves the version pending so the next write retries it.
func (m *mirror) write(ctx context.Context) error {
	m.writeMu.Lock()
	defer m.writeMu.Unlock()

	m.mu.Lock()
	st, version := m.latest, m.latestVersion
	m.mu.Unlock()
	if version <= m.written {
		return nil
	}

	body, err := EncodeSnapshot(SnapshotFromState(st, m.clock()))
	if err == nil {
		err = m.persister.SaveDocument(ctx, m.key, body)
	}
	if err != nil {
		err = fmt.Errorf("persist state version %d: %w", version, err)
		m.logger.Warn("state mirror write failed", "key", m.key, "version", version, "err", err)
		if m.onWarn != nil {
			m.onWarn(err)
		}
		return err
	}
	m.written = version
	m.logger.Debug("state mirrored", "key", m.key, "version", version, "bytes", len(body))
	return nil
}

// shutdown stops the background writer and performs one final bounded write.
func (m *mirror) shutdown() error {
	m.stopOnce.Do(func() {
		close(m.stop)
	})
	<-m.done
	ctx, cancel := context.WithTimeout(context.Background(), closeFlushTimeout)
	defer cancel()
	return m.write(ctx)
}
