package main

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/rwcarlsen/goexif/exif"
	"github.com/rwcarlsen/goexif/tiff"
)

// =============================================================================
// JPEG Segment Layout
// =============================================================================

// JPEG marker bytes (each follows a 0xFF prefix).
const (
	markerSOI  = 0xD8 // start of image
	markerEOI  = 0xD9 // end of image
	markerSOS  = 0xDA // start of scan; entropy-coded data follows
	markerAPP1 = 0xE1 // application segment 1, home of Exif
	markerTEM  = 0x01
	markerRST0 = 0xD0
	markerRST7 = 0xD7
)

// exifHeader prefixes the TIFF structure inside an Exif APP1 segment.
var exifHeader = []byte("Exif\x00\x00")

// findExifPayload walks the JPEG marker segments up to the start of scan and
// returns the byte range [start, end) of the TIFF payload inside the first
// Exif APP1 segment.
func findExifPayload(data []byte) (start, end int, err error) {
	if len(data) < 2 || data[0] != 0xFF || data[1] != markerSOI {
		return 0, 0, fmt.Errorf("%w: missing JPEG start-of-image marker", ErrMalformedImage)
	}

	pos := 2
	for pos+4 <= len(data) {
		if data[pos] != 0xFF {
			return 0, 0, fmt.Errorf("%w: expected marker at offset %d", ErrMalformedImage, pos)
		}
		marker := data[pos+1]
		switch {
		case marker == 0xFF:
			// Fill byte.
			pos++
			continue
		case marker == markerSOS || marker == markerEOI:
			return 0, 0, fmt.Errorf("%w: no Exif segment before image data", ErrMalformedImage)
		case marker == markerTEM || (marker >= markerRST0 && marker <= markerRST7):
			// Standalone markers carry no length field.
			pos += 2
			continue
		}

		segLen := int(binary.BigEndian.Uint16(data[pos+2 : pos+4]))
		segEnd := pos + 2 + segLen
		if segLen < 2 || segEnd > len(data) {
			return 0, 0, fmt.Errorf("%w: truncated segment 0x%02X at offset %d", ErrMalformedImage, marker, pos)
		}

		payload := data[pos+4 : segEnd]
		if marker == markerAPP1 && bytes.HasPrefix(payload, exifHeader) {
			return pos + 4 + len(exifHeader), segEnd, nil
		}
		pos = segEnd
	}

	return 0, 0, fmt.Errorf("%w: no Exif segment found", ErrMalformedImage)
}

// =============================================================================
// Exif Mapping
// =============================================================================

// ExifData is the decoded Exif segment of one JPEG, plus any pending tag
// updates to be spliced back in by encodeExif.
type ExifData struct {
	x *exif.Exif

	// Bounds of the TIFF payload within the JPEG the data was decoded from.
	// Tag value offsets are relative to start.
	start, end int

	updates map[exif.FieldName]string
	order   []exif.FieldName
}

// decodeExif locates and decodes the Exif segment of a JPEG held in memory.
// Non-critical decode problems (for example an unreadable GPS sub-IFD) are
// logged and tolerated; anything else is reported as ErrMalformedImage.
func decodeExif(data []byte) (*ExifData, error) {
	start, end, err := findExifPayload(data)
	if err != nil {
		return nil, err
	}

	x, err := exif.Decode(bytes.NewReader(data[start:end]))
	if err != nil {
		if x == nil || exif.IsCriticalError(err) {
			return nil, fmt.Errorf("%w: decoding exif: %v", ErrMalformedImage, err)
		}
		slog.Debug("Ignoring non-critical exif error", "error", err)
	}

	return &ExifData{
		x:       x,
		start:   start,
		end:     end,
		updates: make(map[exif.FieldName]string),
	}, nil
}

// String returns the text value of an ASCII tag, honoring pending updates.
// Returns ErrMalformedImage if the tag is absent or not text.
func (d *ExifData) String(name exif.FieldName) (string, error) {
	if v, ok := d.updates[name]; ok {
		return v, nil
	}

	tag, err := d.x.Get(name)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrMalformedImage, name, err)
	}
	v, err := tag.StringVal()
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrMalformedImage, name, err)
	}
	return strings.TrimRight(v, "\x00 "), nil
}

// Set records a new value for an ASCII tag. Nothing changes on disk or in
// memory until encodeExif is called.
func (d *ExifData) Set(name exif.FieldName, value string) {
	if _, ok := d.updates[name]; !ok {
		d.order = append(d.order, name)
	}
	d.updates[name] = value
}

// Modified reports whether any tag has a pending update.
func (d *ExifData) Modified() bool {
	return len(d.updates) > 0
}

// Walk calls fn for every decoded tag, across IFD0, the Exif sub-IFD, GPS,
// interop and thumbnail directories. Pending updates are not reflected.
func (d *ExifData) Walk(fn func(name exif.FieldName, tag *tiff.Tag) error) error {
	return d.x.Walk(walkFunc(fn))
}

// untouchedTags returns the names of decoded tags that have no pending update.
func (d *ExifData) untouchedTags() ([]string, error) {
	var names []string
	err := d.Walk(func(name exif.FieldName, _ *tiff.Tag) error {
		if _, ok := d.updates[name]; !ok {
			names = append(names, string(name))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(names)
	return names, nil
}

// walkFunc adapts a function to goexif's Walker interface.
type walkFunc func(name exif.FieldName, tag *tiff.Tag) error

func (f walkFunc) Walk(name exif.FieldName, tag *tiff.Tag) error {
	return f(name, tag)
}

// =============================================================================
// Splicing
// =============================================================================

// encodeExif returns a copy of original with every pending update written
// into its tag's existing value slot.
// Values are NUL-padded to the tag's declared count, so
// the segment length, every other tag, and all image data stay byte-identical.
// original must be the same bytes d was decoded from.
func encodeExif(original []byte, d *ExifData) ([]byte, error) {
	if d.start < len(exifHeader) || d.end > len(original) ||
		!bytes.Equal(original[d.start-len(exifHeader):d.start], exifHeader) {
		return nil, fmt.Errorf("%w: exif data does not belong to this image", ErrMalformedImage)
	}

	out := make([]byte, len(original))
	copy(out, original)
	if !d.Modified() {
		return out, nil
	}
	payload := out[d.start:d.end]

	for _, name := range d.order {
		value := d.updates[name]

		tag, err := d.x.Get(name)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrMalformedImage, name, err)
		}
		if tag.Type != tiff.DTAscii {
			return nil, fmt.Errorf("%w: %s is not an ASCII tag", ErrMalformedImage, name)
		}
		// Values of four bytes or fewer live inside the IFD entry and
		// ValOffset is zero; a date never fits there.
		if tag.ValOffset == 0 {
			return nil, fmt.Errorf("%w: %s has no value slot", ErrMalformedImage, name)
		}

		// Some cameras declare dates as exactly 19 characters with no
		// terminating NUL; the value may fill the slot completely.
		size := int(tag.Count)
		if len(value) > size {
			return nil, fmt.Errorf("%w: %s holds %d bytes, need %d", ErrMalformedImage, name, size, len(value))
		}
		off := int(tag.ValOffset)
		if off+size > len(payload) {
			return nil, fmt.Errorf("%w: %s value lies outside the Exif segment", ErrMalformedImage, name)
		}

		slot := payload[off : off+size]
		n := copy(slot, value)
		for i := n; i < size; i++ {
			slot[i] = 0
		}
	}

	return out, nil
}
