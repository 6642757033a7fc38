// Package dna implements the immutable DNA sequence entity shared by
// reads and reference sequences (the original Dna/Exon hierarchy).
package dna

import "sync/atomic"

var nextID int64

// NewID returns a process-unique, monotonically increasing id. Every
// Sequence constructed in this process gets a distinct one (spec.md
// invariant 1).
func NewID() int64 {
	return atomic.AddInt64(&nextID, 1) - 1
}

// Sequence is an immutable, owned DNA byte string over the alphabet
// {a,t,g,c,n}. Bytes are normalized to lowercase with any non-ATGC
// character mapped to 'n' at construction time.
type Sequence struct {
	id    int64
	bytes []byte
}

// New constructs a Sequence from raw bytes, normalizing in place on a
// private copy.
func New(raw []byte) *Sequence {
	b := make([]byte, len(raw))
	copy(b, raw)
	Normalize(b)
	return &Sequence{id: NewID(), bytes: b}
}

// ID returns the sequence's process-unique integer id.
func (s *Sequence) ID() int64 { return s.id }

// Bytes returns the sequence's normalized bytes. Callers must not
// mutate the returned slice.
func (s *Sequence) Bytes() []byte { return s.bytes }

// Len returns the sequence length.
func (s *Sequence) Len() int { return len(s.bytes) }

// Named is a Sequence with a stable, unique-per-table name; used for
// reference sequences ("exons" in the domain's historical vocabulary).
type Named struct {
	Sequence
	name string
}

// NewNamed constructs a Named sequence. name must be non-empty; the
// table (reftable.Table) is responsible for enforcing uniqueness.
func NewNamed(name string, raw []byte) *Named {
	s := New(raw)
	return &Named{Sequence: *s, name: name}
}

// Name returns the sequence's name.
func (n *Named) Name() string { return n.name }

// Normalize lowercases b in place and maps any byte outside {a,t,g,c}
// to 'n'.
func Normalize(b []byte) {
	for i, c := range b {
		switch c {
		case 'A':
			c = 'a'
		case 'T':
			c = 't'
		case 'G':
			c = 'g'
		case 'C':
			c = 'c'
		case 'N':
			c = 'n'
		}
		switch c {
		case 'a', 't', 'g', 'c':
			b[i] = c
		default:
			b[i] = 'n'
		}
	}
}

var complement = [256]byte{}

func init() {
	for i := range complement {
		complement[i] = byte(i)
	}
	complement['a'] = 't'
	complement['t'] = 'a'
	complement['g'] = 'c'
	complement['c'] = 'g'
	complement['n'] = 'n'
}

// Complement returns the Watson-Crick complement of a normalized base.
func Complement(c byte) byte { return complement[c] }

// ReverseComplement reverses b and complements each base in place.
// Applying it twice restores the original bytes exactly (spec.md
// invariant 3).
func ReverseComplement(b []byte) {
	i, j := 0, len(b)-1
	for i < j {
		b[i], b[j] = complement[b[j]], complement[b[i]]
		i++
		j--
	}
	if i == j {
		b[i] = complement[b[i]]
	}
}

// Base2Bit maps a normalized base to its 2-bit code (a=0,t=1,g=2,c=3,
// n treated as a for hashing purposes, per spec.md §3/§4.F).
func Base2Bit(c byte) uint64 {
	switch c {
	case 'a', 'n':
		return 0
	case 't':
		return 1
	case 'g':
		return 2
	case 'c':
		return 3
	}
	return 0
}

// Bit2Base is the inverse of Base2Bit for the four packed codes.
func Bit2Base(v uint64) byte {
	switch v & 3 {
	case 0:
		return 'a'
	case 1:
		return 't'
	case 2:
		return 'g'
	default:
		return 'c'
	}
}
