package snapshot

import (
	"context"
	stderrors "errors"

	"github.com/vango-dev/vdiff/internal/errors"
	"github.com/vango-dev/vdiff/pkg/protocol"
	"github.com/vango-dev/vdiff/pkg/vdom"
)

// Store persists the last tree sent for each session. Implementations must
// be safe for concurrent use.
type Store interface {
	// Load returns the stored tree for id. A missing snapshot is an error
	// matching both ErrNotFound and code E500.
	Load(ctx context.Context, id string) (*vdom.Node, error)

	// Save stores node under id, replacing any previous snapshot.
	Save(ctx context.Context, id string, node *vdom.Node) error

	// Delete removes the snapshot for id. Deleting a missing snapshot is
	// not an error.
	Delete(ctx context.Context, id string) error

	// Close releases the store's resources.
	Close() error
}

var (
	// ErrNotFound is wrapped by Load when no snapshot exists.
	ErrNotFound = stderrors.New("snapshot not found")

	// ErrClosed is returned by every operation on a closed store.
	ErrClosed = stderrors.New("snapshot store is closed")
)

func notFound(id string) error {
	return errors.New(errors.CodeSnapshotNotFound).WithDetailf("session %q", id).Wrap(ErrNotFound)
}

func backendError(op, id string, err error) error {
	return errors.New(errors.CodeSnapshotBackend).WithDetailf("%s %q", op, id).Wrap(err)
}

// decode turns stored bytes back into a tree. Corrupt data is a backend
// failure, not a missing snapshot.
func decode(id string, data []byte) (*vdom.Node, error) {
	n, err := protocol.DecodeNode(data)
	if err != nil {
		return nil, backendError("decode", id, err)
	}
	return n, nil
}

func encode(n *vdom.Node) []byte {
	return protocol.EncodeNode(n)
}
