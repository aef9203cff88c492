// Copyright 2026 The flip-jump Authors
// This file is part of the flip-jump toolchain.
//
// flip-jump is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package fjm

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"hash/crc32"
	"io"
)

// Write encodes img as a .fjm byte stream (spec.md §6, byte-exact layout).
func Write(w io.Writer, img *Image, compress bool) error {
	var body bytes.Buffer

	var flags uint16
	if compress {
		flags |= FlagCompressed
	}

	header := make([]byte, headerSize)
	copy(header[0:4], magic)
	binary.LittleEndian.PutUint16(header[4:6], formatVersion)
	binary.LittleEndian.PutUint32(header[6:10], uint32(img.Width))
	binary.LittleEndian.PutUint16(header[10:12], flags)
	binary.LittleEndian.PutUint32(header[12:16], uint32(len(img.Segments)))
	// bytes 16:24 are reserved, left zero.
	body.Write(header)

	payloads := make([][]byte, len(img.Segments))
	for i, seg := range img.Segments {
		payload := seg.Data
		if compress {
			var cbuf bytes.Buffer
			zw := zlib.NewWriter(&cbuf)
			if _, err := zw.Write(seg.Data); err != nil {
				return err
			}
			if err := zw.Close(); err != nil {
				return err
			}
			payload = cbuf.Bytes()
		}
		payloads[i] = payload
	}

	var offset uint64
	for i, seg := range img.Segments {
		row := make([]byte, segTableRowLen)
		binary.LittleEndian.PutUint64(row[0:8], seg.StartBit)
		binary.LittleEndian.PutUint64(row[8:16], seg.LengthBits)
		binary.LittleEndian.PutUint64(row[16:24], offset)
		binary.LittleEndian.PutUint64(row[24:32], uint64(len(payloads[i])))
		body.Write(row)
		offset += uint64(len(payloads[i]))
	}

	for _, p := range payloads {
		body.Write(p)
	}

	sum := crc32.ChecksumIEEE(body.Bytes())
	trailer := make([]byte, 4)
	binary.LittleEndian.PutUint32(trailer, sum)
	body.Write(trailer)

	_, err := w.Write(body.Bytes())
	return err
}

// Read decodes a .fjm byte stream, validating magic, version and the CRC-32
// trailer.
func Read(r io.Reader) (*Image, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if len(raw) < headerSize+4 {
		return nil, errCorrupt("file too short (%d bytes)", len(raw))
	}

	trailerOff := len(raw) - 4
	wantCRC := binary.LittleEndian.Uint32(raw[trailerOff:])
	gotCRC := crc32.ChecksumIEEE(raw[:trailerOff])
	if wantCRC != gotCRC {
		return nil, errCorrupt("CRC mismatch: file says %08x, computed %08x", wantCRC, gotCRC)
	}
	raw = raw[:trailerOff]

	if string(raw[0:4]) != magic {
		return nil, errCorrupt("bad magic %q", raw[0:4])
	}
	version := int(binary.LittleEndian.Uint16(raw[4:6]))
	if version != formatVersion {
		return nil, &unsupportedVersionError{got: version}
	}
	width := int(binary.LittleEndian.Uint32(raw[6:10]))
	flags := binary.LittleEndian.Uint16(raw[10:12])
	n := int(binary.LittleEndian.Uint32(raw[12:16]))
	compressed := flags&FlagCompressed != 0

	tableStart := headerSize
	tableEnd := tableStart + n*segTableRowLen
	if tableEnd > len(raw) {
		return nil, errCorrupt("segment table truncated")
	}

	type row struct {
		startBit, lengthBits, dataOffset, dataLength uint64
	}
	rows := make([]row, n)
	for i := 0; i < n; i++ {
		off := tableStart + i*segTableRowLen
		rows[i] = row{
			startBit:   binary.LittleEndian.Uint64(raw[off : off+8]),
			lengthBits: binary.LittleEndian.Uint64(raw[off+8 : off+16]),
			dataOffset: binary.LittleEndian.Uint64(raw[off+16 : off+24]),
			dataLength: binary.LittleEndian.Uint64(raw[off+24 : off+32]),
		}
	}

	dataStart := tableEnd
	img := &Image{Width: width, Flags: flags}
	for _, r := range rows {
		start := dataStart + int(r.dataOffset)
		end := start + int(r.dataLength)
		if end > len(raw) {
			return nil, errCorrupt("segment data out of bounds")
		}
		payload := raw[start:end]
		data := payload
		if compressed {
			zr, err := zlib.NewReader(bytes.NewReader(payload))
			if err != nil {
				return nil, errCorrupt("zlib: %v", err)
			}
			decoded, err := io.ReadAll(zr)
			if err != nil {
				return nil, errCorrupt("zlib: %v", err)
			}
			data = decoded
		}
		img.Segments = append(img.Segments, Segment{
			StartBit:   r.startBit,
			LengthBits: r.lengthBits,
			Data:       data,
		})
	}
	return img, nil
}
