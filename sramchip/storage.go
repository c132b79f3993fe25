package sramchip

import "errors"

// A Storage keeps the content of the memory array.
//
// The storage manages its content in units. Units that are never touched by
// a read or a write are not allocated, so a sparsely used large array stays
// cheap.
type Storage struct {
	unitSize uint64
	capacity uint64
	units    map[uint64][]byte
}

// NewStorage creates a storage object with the given capacity in bytes.
func NewStorage(capacity uint64) *Storage {
	s := new(Storage)
	s.unitSize = 4096
	s.capacity = capacity
	s.units = make(map[uint64][]byte)

	return s
}

// Capacity returns the capacity of the storage in bytes.
func (s *Storage) Capacity() uint64 {
	return s.capacity
}

func (s *Storage) unit(addr uint64) ([]byte, error) {
	if addr >= s.capacity {
		return nil, errors.New("accessing address beyond the storage capacity")
	}

	base := addr - addr%s.unitSize
	u, ok := s.units[base]
	if !ok {
		u = make([]byte, s.unitSize)
		s.units[base] = u
	}

	return u, nil
}

// ReadByte returns the byte stored at the given address.
func (s *Storage) ReadByte(addr uint64) (byte, error) {
	u, err := s.unit(addr)
	if err != nil {
		return 0, err
	}

	return u[addr%s.unitSize], nil
}

// WriteByte stores one byte at the given address.
func (s *Storage) WriteByte(addr uint64, b byte) error {
	u, err := s.unit(addr)
	if err != nil {
		return err
	}

	u[addr%s.unitSize] = b

	return nil
}
