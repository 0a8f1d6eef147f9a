package loopback

import (
	"encoding/binary"
	"fmt"

	"github.com/oklog/ulid/v2"
	"github.com/spaolacci/murmur3"

	"github.com/yndnr/fabmesh-go/internal/core/domain"
)

// Remote-key wire layout, little endian:
//
//	magic    uint32
//	base     uint64   synthetic base address of the region
//	length   uint64
//	id       16 bytes registration id (ULID)
//	checksum uint32   murmur3 over everything before it
const (
	rkeyMagic = 0x4c4f4f50 // "LOOP"
	rkeySize  = 4 + 8 + 8 + 16 + 4
)

// rkeyHandle is the unpacked form handed back through the opaque handle.
type rkeyHandle struct {
	base   uint64
	length uint64
	id     ulid.ULID
}

func packRkey(buf []byte, base, length uint64, id ulid.ULID) error {
	if len(buf) < rkeySize {
		return domain.ErrInvalidParam.WithDetails(
			fmt.Sprintf("rkey buffer is %d bytes, need %d", len(buf), rkeySize))
	}

	binary.LittleEndian.PutUint32(buf[0:4], rkeyMagic)
	binary.LittleEndian.PutUint64(buf[4:12], base)
	binary.LittleEndian.PutUint64(buf[12:20], length)
	copy(buf[20:36], id[:])
	binary.LittleEndian.PutUint32(buf[36:40], murmur3.Sum32(buf[:36]))
	return nil
}

func unpackRkey(buf []byte) (*rkeyHandle, error) {
	if len(buf) < rkeySize {
		return nil, domain.ErrInvalidParam.WithDetails(
			fmt.Sprintf("rkey payload is %d bytes, need %d", len(buf), rkeySize))
	}
	if magic := binary.LittleEndian.Uint32(buf[0:4]); magic != rkeyMagic {
		return nil, domain.ErrInvalidParam.WithDetails(
			fmt.Sprintf("bad rkey magic %#x", magic))
	}
	if sum := binary.LittleEndian.Uint32(buf[36:40]); sum != murmur3.Sum32(buf[:36]) {
		return nil, domain.ErrInvalidParam.WithDetails("rkey checksum mismatch")
	}

	h := &rkeyHandle{
		base:   binary.LittleEndian.Uint64(buf[4:12]),
		length: binary.LittleEndian.Uint64(buf[12:20]),
	}
	copy(h.id[:], buf[20:36])
	return h, nil
}
