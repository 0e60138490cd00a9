package notes

import (
	"fmt"
	"sync"
	"time"

	"github.com/speps/go-hashids/v2"
)

// idGenerator encodes creation time as a short hashid. Equal or earlier instants are bumped
// so ids stay unique under a coarse or frozen clock.
type idGenerator struct {
	mu   sync.Mutex
	h    *hashids.HashID
	last int64
}

func newIDGenerator(salt string) (*idGenerator, error) {
	hd := hashids.NewData()
	hd.Salt = salt
	hd.MinLength = 8
	h, err := hashids.NewWithData(hd)
	if err != nil {
		return nil, fmt.Errorf("hashids: %w", err)
	}
	return &idGenerator{h: h}, nil
}

func (g *idGenerator) next(t time.Time) (string, error) {
	g.mu.Lock()
	n := t.UnixNano()
	if n <= g.last {
		n = g.last + 1
	}
	g.last = n
	g.mu.Unlock()

	return g.h.EncodeInt64([]int64{n})
}
