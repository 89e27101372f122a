//go:build linux

package ppcfeatures

import (
	"encoding/binary"
	"fmt"
	"log/slog"
	"math/bits"
	"os"

	"golang.org/x/sys/unix"
)

// Auxiliary vector tags, see include/uapi/linux/auxvec.h.
const (
	atNull    = 0 // AT_NULL terminates the vector
	tagHWCAP  = 16
	tagHWCAP2 = 26
)

const auxvPath = "/proc/self/auxv"

// auxvSource describes one way of obtaining the auxiliary vector.
type auxvSource struct {
	name string
	read func() (StaticVector, error)
}

// SystemVector snapshots the auxiliary vector of the running process.
// It tries sources in priority order:
//  1. the vector the Go runtime received at startup (unix.Auxv)
//  2. /proc/self/auxv
//
// If neither is readable, or the architecture does not use the POWER HWCAP
// layout, the returned vector is unavailable.
func SystemVector() CapabilityVector {
	return systemVector(slog.New(slog.DiscardHandler))
}

func systemVector(logger *slog.Logger) CapabilityVector {
	if !powerHWCAP {
		return noVector{}
	}
	sources := []auxvSource{
		{name: "runtime", read: runtimeAuxv},
		{name: auxvPath, read: func() (StaticVector, error) { return readAuxvFile(auxvPath) }},
	}
	for _, src := range sources {
		v, err := src.read()
		if err == nil && len(v) > 0 {
			logger.Debug("loaded auxiliary vector", slog.String("source", src.name), slog.Int("entries", len(v)))
			return v
		}
		logger.Debug("auxiliary vector source unusable", slog.String("source", src.name), slog.Any("error", err))
	}
	return noVector{}
}

func runtimeAuxv() (StaticVector, error) {
	pairs, err := unix.Auxv()
	if err != nil {
		return nil, err
	}
	v := make(StaticVector, len(pairs))
	for _, p := range pairs {
		if p[0] == atNull {
			break
		}
		v[uint64(p[0])] = uint64(p[1])
	}
	return v, nil
}

// readAuxvFile reads and parses an auxiliary vector dump such as /proc/self/auxv.
func readAuxvFile(path string) (StaticVector, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return parseAuxv(data, bits.UintSize, binary.NativeEndian)
}

// parseAuxv decodes native word-sized tag/value pairs up to AT_NULL.
func parseAuxv(data []byte, wordBits int, bo binary.ByteOrder) (StaticVector, error) {
	var size int
	switch wordBits {
	case 32:
		size = 4
	case 64:
		size = 8
	default:
		return nil, fmt.Errorf("parse auxv: unsupported word size %d", wordBits)
	}
	if len(data)%(2*size) != 0 {
		return nil, fmt.Errorf("parse auxv: truncated vector (%d bytes)", len(data))
	}

	word := func(b []byte) uint64 {
		if size == 4 {
			return uint64(bo.Uint32(b))
		}
		return bo.Uint64(b)
	}

	v := make(StaticVector)
	for len(data) >= 2*size {
		tag := word(data)
		val := word(data[size:])
		data = data[2*size:]
		if tag == atNull {
			break
		}
		v[tag] = val
	}
	return v, nil
}
