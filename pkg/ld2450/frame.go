package ld2450

import (
	"encoding/binary"
	"errors"
)

const (
	TargetCount     = 3
	targetBlockSize = 8
	headerSize      = 4
	footerSize      = 2
	FrameSize       = headerSize + TargetCount*targetBlockSize + footerSize
)

var (
	frameHeader = [headerSize]byte{0xAA, 0xFF, 0x03, 0x00}
	frameFooter = [footerSize]byte{0x55, 0xCC}
)

var (
	ErrShortFrame    = errors.New("ld2450: short frame")
	ErrInvalidHeader = errors.New("ld2450: invalid frame header")
	ErrInvalidFooter = errors.New("ld2450: invalid frame footer")
)

// Target is one tracked target as reported by the radar.
// X, Y and Resolution are in millimeters, Speed in cm/s.
type Target struct {
	X          int
	Y          int
	Speed      int
	Resolution int
}

// Present reports whether the radar slot holds a tracked target.
// Empty slots are reported as all zeroes.
func (t Target) Present() bool {
	return t != Target{}
}

type Frame struct {
	Targets [TargetCount]Target
}

func DecodeFrame(data []byte) (Frame, error) {
	var frame Frame
	if len(data) < FrameSize {
		return frame, ErrShortFrame
	}
	if [headerSize]byte(data[:headerSize]) != frameHeader {
		return frame, ErrInvalidHeader
	}
	if [footerSize]byte(data[FrameSize-footerSize:FrameSize]) != frameFooter {
		return frame, ErrInvalidFooter
	}
	for i := 0; i < TargetCount; i++ {
		off := headerSize + i*targetBlockSize
		block := data[off : off+targetBlockSize]
		frame.Targets[i] = Target{
			X:          signedValue(binary.LittleEndian.Uint16(block[0:2])),
			Y:          signedValue(binary.LittleEndian.Uint16(block[2:4])),
			Speed:      signedValue(binary.LittleEndian.Uint16(block[4:6])),
			Resolution: int(binary.LittleEndian.Uint16(block[6:8])),
		}
	}
	return frame, nil
}

// EncodeFrame is the inverse of DecodeFrame. Used by the mocked reader.
func EncodeFrame(frame Frame) []byte {
	out := make([]byte, 0, FrameSize)
	out = append(out, frameHeader[:]...)
	for _, t := range frame.Targets {
		out = binary.LittleEndian.AppendUint16(out, unsignedValue(t.X))
		out = binary.LittleEndian.AppendUint16(out, unsignedValue(t.Y))
		out = binary.LittleEndian.AppendUint16(out, unsignedValue(t.Speed))
		out = binary.LittleEndian.AppendUint16(out, uint16(t.Resolution))
	}
	return append(out, frameFooter[:]...)
}

// bit 15 is the sign flag: set means positive
func signedValue(raw uint16) int {
	if raw&0x8000 != 0 {
		return int(raw & 0x7FFF)
	}
	return -int(raw)
}

func unsignedValue(v int) uint16 {
	if v >= 0 {
		return uint16(v) | 0x8000
	}
	return uint16(-v) & 0x7FFF
}
