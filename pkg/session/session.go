// Package session keeps uploaded documents between HTTP requests.
//
// A [Session] holds the pristine source bytes of one upload and the current
// state of its records. The source is never changed: every layout or patch
// re-parses it with [Session.Document], and edits only touch the records in
// [Session.Graph].
//
// Three [Store] implementations exist:
//
//   - [MemoryStore]: bounded in-process map, evicting the least recently
//     used session when full
//   - [FileStore]: one JSON file per session, for single-instance servers
//     that should survive restarts
//   - [MongoStore]: a MongoDB collection with a TTL index, for servers
//     running several instances
//
// Expiry is sliding: every successful Get extends a session's lifetime by the
// store's TTL.
package session

import (
	"bytes"
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/relgraph/pkg/errors"
	"github.com/matzehuels/relgraph/pkg/graph"
	"github.com/matzehuels/relgraph/pkg/xmldoc"
)

// Defaults for stores built with zero limits.
const (
	DefaultTTL         = time.Hour
	DefaultMaxSessions = 100
)

// Session is one uploaded document and its edited records.
type Session struct {
	ID        string       `json:"id"`
	Source    []byte       `json:"source"`
	Encoding  string       `json:"encoding"`
	Graph     *graph.Graph `json:"graph"`
	CreatedAt time.Time    `json:"created_at"`
	ExpiresAt time.Time    `json:"expires_at"`
}

// New starts a session for doc and its extracted graph. The store sets the
// expiry when the session is first stored.
func New(doc *xmldoc.Document, g *graph.Graph) *Session {
	return &Session{
		ID:        uuid.NewString(),
		Source:    bytes.Clone(doc.Raw()),
		Encoding:  doc.Encoding,
		Graph:     g,
		CreatedAt: time.Now(),
	}
}

// Name returns the uploaded file name.
func (s *Session) Name() string {
	if s.Graph == nil {
		return ""
	}
	return s.Graph.Name
}

// IsExpired reports whether the session has expired at now.
func (s *Session) IsExpired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

// Document re-parses the pristine source.
func (s *Session) Document() (*xmldoc.Document, error) {
	doc, err := xmldoc.Parse(s.Source, s.Encoding)
	if err != nil {
		return nil, err
	}
	doc.Name = s.Name()
	return doc, nil
}

// Clone returns a deep copy. Stores hand out clones so callers never share
// records with the store.
func (s *Session) Clone() *Session {
	cp := *s
	cp.Source = bytes.Clone(s.Source)
	if s.Graph != nil {
		cp.Graph = s.Graph.Clone()
	}
	return &cp
}

// Store persists sessions.
type Store interface {
	// Get returns a copy of the session and extends its lifetime. Missing
	// and expired sessions fail with SESSION_NOT_FOUND.
	Get(ctx context.Context, id string) (*Session, error)

	// Put creates or replaces a session and sets its expiry.
	Put(ctx context.Context, s *Session) error

	// Delete removes a session. Unknown ids fail with SESSION_NOT_FOUND.
	Delete(ctx context.Context, id string) error

	// Cleanup removes expired sessions and returns how many were removed.
	Cleanup(ctx context.Context) (int, error)

	// Close releases the store's resources.
	Close(ctx context.Context) error
}

// IsNotFound reports whether err means an unknown or expired session.
func IsNotFound(err error) bool {
	return errors.Is(err, errors.ErrCodeSessionNotFound)
}

func notFound(id string) error {
	return errors.New(errors.ErrCodeSessionNotFound, "session %s not found", id)
}

func limits(maxSessions int, ttl time.Duration) (int, time.Duration) {
	if maxSessions <= 0 {
		maxSessions = DefaultMaxSessions
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return maxSessions, ttl
}

// RunCleanup calls store.Cleanup every interval until ctx is done. Failed
// sweeps are passed to onErr when it is not nil; removed counts to onSweep.
func RunCleanup(ctx context.Context, store Store, interval time.Duration, onSweep func(int), onErr func(error)) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			n, err := store.Cleanup(ctx)
			if err != nil {
				if onErr != nil {
					onErr(err)
				}
				continue
			}
			if n > 0 && onSweep != nil {
				onSweep(n)
			}
		}
	}
}
