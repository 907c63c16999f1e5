package catalog

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Star is one decoded catalog record.
type Star struct {
	RA       float64 // degrees, catalog epoch
	Dec      float64 // degrees, catalog epoch
	PMRA     float64 // milliarcseconds per year
	PMDec    float64 // milliarcseconds per year
	Parallax float64 // milliarcseconds
	HD       uint32
	Mag      float32
	BV       float32
	SpType   [2]byte
	Flags    uint8
}

// byteOrder is the pair of interfaces a codec needs from encoding/binary.
// binary.LittleEndian and binary.BigEndian satisfy it.
type byteOrder interface {
	binary.ByteOrder
	binary.AppendByteOrder
}

// Codec converts between fixed-size records and Stars.
type Codec interface {
	// Size returns the encoded record length in bytes.
	Size() int
	// Decode parses raw, which is at least Size bytes.
	Decode(order binary.ByteOrder, raw []byte) Star
	// Encode writes s into dst, which is at least Size bytes.
	Encode(order binary.ByteOrder, dst []byte, s Star)
}

// CodecFor returns the codec for a record size.
func CodecFor(size int) (Codec, error) {
	switch size {
	case ShallowRecordSize:
		return ShallowCodec{}, nil
	case DeepRecordSize:
		return DeepCodec{}, nil
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedRecordSize, size)
	}
}

const (
	// ShallowRecordSize is the length of a full record carrying HD number,
	// colour and spectral type.
	ShallowRecordSize = 32
	// DeepRecordSize is the length of a compact record with position, proper
	// motion and B/V magnitudes only.
	DeepRecordSize = 16

	// noMag marks a missing magnitude in deep records.
	noMag = 30000
)

// ShallowCodec encodes 32-byte records:
//
//	RA int32 (hours·1e6) | Dec int32 (deg·1e5) | pmRA, pmDec, parallax int32 (·10)
//	HD int32 | mag int16 (·100) | B-V int16 (·100) | spectral type [2]byte | flags | pad
type ShallowCodec struct{}

func (ShallowCodec) Size() int { return ShallowRecordSize }

func (ShallowCodec) Decode(o binary.ByteOrder, raw []byte) Star {
	_ = raw[ShallowRecordSize-1]
	return Star{
		RA:       float64(int32(o.Uint32(raw[0:]))) / 1e6 * 15,
		Dec:      float64(int32(o.Uint32(raw[4:]))) / 1e5,
		PMRA:     float64(int32(o.Uint32(raw[8:]))) / 10,
		PMDec:    float64(int32(o.Uint32(raw[12:]))) / 10,
		Parallax: float64(int32(o.Uint32(raw[16:]))) / 10,
		HD:       o.Uint32(raw[20:]),
		Mag:      float32(int16(o.Uint16(raw[24:]))) / 100,
		BV:       float32(int16(o.Uint16(raw[26:]))) / 100,
		SpType:   [2]byte{raw[28], raw[29]},
		Flags:    raw[30],
	}
}

func (ShallowCodec) Encode(o binary.ByteOrder, dst []byte, s Star) {
	_ = dst[ShallowRecordSize-1]
	o.PutUint32(dst[0:], uint32(int32(math.Round(s.RA/15*1e6))))
	o.PutUint32(dst[4:], uint32(int32(math.Round(s.Dec*1e5))))
	o.PutUint32(dst[8:], uint32(int32(math.Round(s.PMRA*10))))
	o.PutUint32(dst[12:], uint32(int32(math.Round(s.PMDec*10))))
	o.PutUint32(dst[16:], uint32(int32(math.Round(s.Parallax*10))))
	o.PutUint32(dst[20:], s.HD)
	o.PutUint16(dst[24:], uint16(int16(math.Round(float64(s.Mag)*100))))
	o.PutUint16(dst[26:], uint16(int16(math.Round(float64(s.BV)*100))))
	dst[28], dst[29] = s.SpType[0], s.SpType[1]
	dst[30] = s.Flags
	dst[31] = 0
}

// DeepCodec encodes 16-byte records:
//
//	RA int32 (hours·1e6) | Dec int32 (deg·1e5) | pmRA, pmDec int16 (·10) | B, V int16 (·1000)
//
// A V of 30000 means "no V"; the magnitude then comes from B.
type DeepCodec struct{}

func (DeepCodec) Size() int { return DeepRecordSize }

func (DeepCodec) Decode(o binary.ByteOrder, raw []byte) Star {
	_ = raw[DeepRecordSize-1]
	b := int16(o.Uint16(raw[12:]))
	v := int16(o.Uint16(raw[14:]))
	s := Star{
		RA:    float64(int32(o.Uint32(raw[0:]))) / 1e6 * 15,
		Dec:   float64(int32(o.Uint32(raw[4:]))) / 1e5,
		PMRA:  float64(int16(o.Uint16(raw[8:]))) / 10,
		PMDec: float64(int16(o.Uint16(raw[10:]))) / 10,
	}
	switch {
	case v != noMag:
		s.Mag = float32(v) / 1000
		if b != noMag {
			s.BV = float32(b-v) / 1000
		}
	default:
		s.Mag = float32(b) / 1000
	}
	return s
}

func (DeepCodec) Encode(o binary.ByteOrder, dst []byte, s Star) {
	_ = dst[DeepRecordSize-1]
	o.PutUint32(dst[0:], uint32(int32(math.Round(s.RA/15*1e6))))
	o.PutUint32(dst[4:], uint32(int32(math.Round(s.Dec*1e5))))
	o.PutUint16(dst[8:], uint16(int16(math.Round(s.PMRA*10))))
	o.PutUint16(dst[10:], uint16(int16(math.Round(s.PMDec*10))))
	o.PutUint16(dst[12:], uint16(int16(math.Round(float64(s.Mag+s.BV)*1000))))
	o.PutUint16(dst[14:], uint16(int16(math.Round(float64(s.Mag)*1000))))
}
