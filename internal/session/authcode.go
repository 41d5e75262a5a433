package session

import (
	"crypto/rand"
	"encoding/binary"
)

// Authcoder issues the per-user secret handed back on join. The engine
// re-checks it on every request, so codes must be unguessable in
// production; tests substitute a fixed sequence.
type Authcoder interface {
	Authcode() int64
}

type randomAuthcoder struct{}

// NewRandomAuthcoder returns an Authcoder backed by the OS entropy source.
func NewRandomAuthcoder() Authcoder {
	return randomAuthcoder{}
}

func (randomAuthcoder) Authcode() int64 {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		panic("session: entropy source unavailable: " + err.Error())
	}
	code := int64(binary.BigEndian.Uint64(buf[:]) &^ (1 << 63))
	if code == 0 {
		code = 1
	}
	return code
}

// AuthcoderFunc adapts a function to the Authcoder interface.
type AuthcoderFunc func() int64

// Authcode implements Authcoder.
func (f AuthcoderFunc) Authcode() int64 { return f() }
