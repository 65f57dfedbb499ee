/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package entropy provides the random bitstrings the ElGamal scheme draws its
// nonces from. Production code reads the operating system's CSPRNG; tests and
// reproducible batches use a fixed value or a seeded ChaCha20 keystream.
package entropy

import (
	"crypto/rand"
	"io"
	"math/big"
	"sync"

	"github.com/pkg/errors"
	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/chacha20"
)

// ErrRandomnessUnavailable is returned when a source cannot produce bits.
var ErrRandomnessUnavailable = errors.New("randomness unavailable")

// Source produces random bitstrings. Implementations must be safe for
// concurrent use.
type Source interface {
	// RandomBits returns ⌈n/8⌉ big-endian bytes holding n random bits. Bits
	// above n in the leading byte are zero.
	RandomBits(n int) ([]byte, error)
}

// ToInt interprets a RandomBits buffer as a non-negative integer.
func ToInt(bits []byte) *big.Int {
	return new(big.Int).SetBytes(bits)
}

func byteLen(n int) (int, error) {
	if n < 0 {
		return 0, errors.Errorf("cannot draw %d bits", n)
	}
	return (n + 7) / 8, nil
}

// clearExcess zeroes the bits of buf[0] above the requested width.
func clearExcess(buf []byte, n int) {
	if len(buf) == 0 {
		return
	}
	if excess := uint(len(buf)*8 - n); excess > 0 {
		buf[0] &= 0xFF >> excess
	}
}

type readerSource struct {
	mutex sync.Mutex
	r     io.Reader
}

// NewReaderSource draws bits from r. Reads are serialized.
func NewReaderSource(r io.Reader) Source {
	return &readerSource{r: r}
}

var osSource = NewReaderSource(rand.Reader)

// OS returns the source backed by crypto/rand.
func OS() Source {
	return osSource
}

func (s *readerSource) RandomBits(n int) ([]byte, error) {
	size, err := byteLen(n)
	if err != nil {
		return nil, err
	}

	buf := make([]byte, size)
	s.mutex.Lock()
	_, err = io.ReadFull(s.r, buf)
	s.mutex.Unlock()
	if err != nil {
		return nil, errors.Wrapf(ErrRandomnessUnavailable, "reading %d bytes: %s", size, err)
	}

	clearExcess(buf, n)
	return buf, nil
}

type fixedSource struct {
	v *big.Int
}

// NewFixedSource returns a source that always yields the low n bits of v.
// v must be non-negative.
func NewFixedSource(v *big.Int) Source {
	return &fixedSource{v: new(big.Int).Abs(v)}
}

func (s *fixedSource) RandomBits(n int) ([]byte, error) {
	size, err := byteLen(n)
	if err != nil {
		return nil, err
	}

	buf := make([]byte, size)
	raw := s.v.Bytes()
	if len(raw) > size {
		raw = raw[len(raw)-size:]
	}
	copy(buf[size-len(raw):], raw)

	clearExcess(buf, n)
	return buf, nil
}

type seededSource struct {
	mutex  sync.Mutex
	cipher *chacha20.Cipher
}

// NewSeededSource returns a deterministic source producing the ChaCha20
// keystream keyed by the BLAKE2b-256 digest of seed. Two sources built from
// the same seed yield the same sequence of draws.
func NewSeededSource(seed []byte) (Source, error) {
	key := blake2b.Sum256(seed)
	nonce := make([]byte, chacha20.NonceSize)
	c, err := chacha20.NewUnauthenticatedCipher(key[:], nonce)
	if err != nil {
		return nil, errors.Wrap(err, "failed initializing keystream")
	}
	return &seededSource{cipher: c}, nil
}

func (s *seededSource) RandomBits(n int) ([]byte, error) {
	size, err := byteLen(n)
	if err != nil {
		return nil, err
	}

	buf := make([]byte, size)
	s.mutex.Lock()
	s.cipher.XORKeyStream(buf, buf)
	s.mutex.Unlock()

	clearExcess(buf, n)
	return buf, nil
}
