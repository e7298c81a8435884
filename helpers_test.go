package main

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"
)

// exifDateLen is the declared count of a date tag: 19 characters plus NUL.
const exifDateLen = 20

// testCameraMake is stored in IFD0 so tests can check untouched tags survive.
const testCameraMake = "Canon"

// testScanData stands in for everything after the Exif segment: a
// quantization table, the start of scan, entropy-coded bytes and EOI.
var testScanData = []byte{
	0xFF, 0xDB, 0x00, 0x04, 0x00, 0x01,
	0xFF, 0xDA, 0x00, 0x04, 0x01, 0x00,
	0x12, 0x34, 0x56, 0xFF, 0x00, 0x78, 0x9A,
	0xFF, 0xD9,
}

// exifASCII returns s as a NUL-padded date tag value of exifDateLen bytes.
func exifASCII(s string) []byte {
	return padASCII(s, exifDateLen)
}

func padASCII(s string, n int) []byte {
	b := make([]byte, n)
	copy(b, s)
	return b
}

// buildTIFF builds a little-endian TIFF structure with IFD0 (Make and an
// Exif IFD pointer) and an Exif IFD holding DateTimeOriginal and, unless
// digitized is empty, DateTimeDigitized.
func buildTIFF(original, digitized string) []byte {
	return buildTIFFWith(binary.LittleEndian, exifDateLen, original, digitized)
}

// buildTIFFWith is buildTIFF with a chosen byte order and declared date
// count. A dateLen of 19 leaves no room for the terminating NUL.
func buildTIFFWith(order binary.ByteOrder, dateLen int, original, digitized string) []byte {
	ids := []uint16{0x9003}
	values := [][]byte{padASCII(original, dateLen)}
	if digitized != "" {
		ids = append(ids, 0x9004)
		values = append(values, padASCII(digitized, dateLen))
	}
	maker := append([]byte(testCameraMake), 0)

	const ifd0Off = 8
	exifOff := ifd0Off + 2 + 2*12 + 4
	valOff := exifOff + 2 + len(ids)*12 + 4
	makerOff := valOff + len(ids)*dateLen

	buf := new(bytes.Buffer)
	w := func(v any) { _ = binary.Write(buf, order, v) }

	if order == binary.ByteOrder(binary.BigEndian) {
		buf.WriteString("MM")
	} else {
		buf.WriteString("II")
	}
	w(uint16(42))
	w(uint32(ifd0Off))

	// IFD0
	w(uint16(2))
	w(uint16(0x010F)) // Make
	w(uint16(2))
	w(uint32(len(maker)))
	w(uint32(makerOff))
	w(uint16(0x8769)) // ExifIFDPointer
	w(uint16(4))
	w(uint32(1))
	w(uint32(exifOff))
	w(uint32(0))

	// Exif IFD
	w(uint16(len(ids)))
	for i, id := range ids {
		w(id)
		w(uint16(2))
		w(uint32(dateLen))
		w(uint32(valOff + i*dateLen))
	}
	w(uint32(0))

	for _, v := range values {
		buf.Write(v)
	}
	buf.Write(maker)
	return buf.Bytes()
}

// buildJPEG wraps a TIFF structure in SOI, a JFIF APP0, an Exif APP1 and
// testScanData.
func buildJPEG(tiffData []byte) []byte {
	var b bytes.Buffer
	b.Write([]byte{0xFF, 0xD8})

	b.Write([]byte{0xFF, 0xE0, 0x00, 0x10})
	b.WriteString("JFIF\x00")
	b.Write([]byte{1, 1, 0, 0, 1, 0, 1, 0, 0})

	b.Write([]byte{0xFF, 0xE1})
	_ = binary.Write(&b, binary.BigEndian, uint16(2+len(exifHeader)+len(tiffData)))
	b.Write(exifHeader)
	b.Write(tiffData)

	b.Write(testScanData)
	return b.Bytes()
}

// photo builds a JPEG whose DateTimeOriginal and DateTimeDigitized are both date.
func photo(date string) []byte {
	return buildJPEG(buildTIFF(date, date))
}

func writeFile(t *testing.T, dir, name string, data []byte) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
		t.Fatalf("writing %s: %v", name, err)
	}
}

func readFile(t *testing.T, dir, name string) []byte {
	t.Helper()
	b, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		t.Fatalf("reading %s: %v", name, err)
	}
	return b
}
