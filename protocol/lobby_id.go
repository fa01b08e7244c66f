package protocol

import (
	"strconv"
	"sync/atomic"
)

// LobbyID identifies a lobby for the lifetime of the process. Values are
// minted by an IDGenerator and are never reused.
type LobbyID uint64

// String renders the id in decimal, its wire form.
func (id LobbyID) String() string {
	return strconv.FormatUint(uint64(id), 10)
}

// MarshalJSON encodes the id as a bare JSON number.
func (id LobbyID) MarshalJSON() ([]byte, error) {
	return []byte(id.String()), nil
}

// UnmarshalJSON decodes a JSON number into a LobbyID.
func (id *LobbyID) UnmarshalJSON(data []byte) error {
	n, err := strconv.ParseUint(string(data), 10, 64)
	if err != nil {
		return err
	}
	*id = LobbyID(n)
	return nil
}

// IDGenerator mints strictly increasing LobbyIDs. The zero value is ready
// to use; the first id it produces is 1.
type IDGenerator struct {
	next atomic.Uint64
}

// Next returns the next unused LobbyID.
func (g *IDGenerator) Next() LobbyID {
	return LobbyID(g.next.Add(1))
}
