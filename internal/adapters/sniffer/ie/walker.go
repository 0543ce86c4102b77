// Package ie walks and interprets 802.11 tagged elements.
package ie

import "errors"

// Common IE Tags
const (
	TagSSID           = 0
	TagDSParameterSet = 3
	TagRSN            = 48
	TagVendorSpecific = 221 // 0xDD
	TagEnd            = 255
)

// ErrMalformedIE is returned by parsers whose element is too short for its
// mandatory fields.
var ErrMalformedIE = errors.New("malformed information element")

// Element is one tagged element. Value aliases the frame body.
type Element struct {
	ID     uint8
	Length uint8
	Value  []byte
}

// Walker yields elements from a body one at a time. It cannot be rewound;
// once it stops it keeps returning false.
type Walker struct {
	body []byte
	done bool
}

// NewWalker starts a walk at the beginning of body.
func NewWalker(body []byte) *Walker {
	return &Walker{body: body}
}

// Next returns the next element. The walk ends at the end marker, at a
// zero-length element other than SSID, at an element whose declared length
// runs past the body, or when the body is exhausted.
func (w *Walker) Next() (Element, bool) {
	if w.done {
		return Element{}, false
	}
	if len(w.body) < 2 {
		return w.stop()
	}
	id, n := w.body[0], int(w.body[1])
	if id == TagEnd {
		return w.stop()
	}
	if n == 0 && id != TagSSID {
		return w.stop()
	}
	if 2+n > len(w.body) {
		return w.stop()
	}
	e := Element{ID: id, Length: uint8(n), Value: w.body[2 : 2+n : 2+n]}
	w.body = w.body[2+n:]
	return e, true
}

func (w *Walker) stop() (Element, bool) {
	w.done = true
	w.body = nil
	return Element{}, false
}

// Walk calls fn for each element until fn returns false or the walk ends.
func Walk(body []byte, fn func(Element) bool) {
	w := NewWalker(body)
	for {
		e, ok := w.Next()
		if !ok || !fn(e) {
			return
		}
	}
}

// Find returns the first element with the given id.
func Find(body []byte, id uint8) (Element, bool) {
	var found Element
	var ok bool
	Walk(body, func(e Element) bool {
		if e.ID == id {
			found, ok = e, true
			return false
		}
		return true
	})
	return found, ok
}

// ParseChannel reads the DS Parameter Set channel, if present.
func ParseChannel(body []byte) (int, bool) {
	e, ok := Find(body, TagDSParameterSet)
	if !ok || len(e.Value) < 1 {
		return 0, false
	}
	return int(e.Value[0]), true
}

// Vendor is a parsed vendor-specific element.
type Vendor struct {
	OUI  [3]byte
	Type uint8
	Data []byte
}

// Vendor OUIs recognised by this package.
var (
	OUIMicrosoft = [3]byte{0x00, 0x50, 0xF2}
	OUIIEEE      = [3]byte{0x00, 0x0F, 0xAC}
	OUIWAPI      = [3]byte{0x00, 0x14, 0x72}
	OUIWFA       = [3]byte{0x00, 0x37, 0x2A}
)

// ParseVendor splits a vendor-specific element into OUI, type and payload.
func ParseVendor(e Element) (Vendor, bool) {
	if e.ID != TagVendorSpecific || len(e.Value) < 4 {
		return Vendor{}, false
	}
	var v Vendor
	copy(v.OUI[:], e.Value[:3])
	v.Type = e.Value[3]
	v.Data = e.Value[4:]
	return v, true
}

// cursor is a bounds-checked reader over a byte slice. Every read either
// succeeds in full or reports false and leaves the cursor exhausted.
type cursor struct {
	b []byte
}

func (c *cursor) take(n int) ([]byte, bool) {
	if n < 0 || n > len(c.b) {
		c.b = nil
		return nil, false
	}
	p := c.b[:n:n]
	c.b = c.b[n:]
	return p, true
}

func (c *cursor) u8() (uint8, bool) {
	p, ok := c.take(1)
	if !ok {
		return 0, false
	}
	return p[0], true
}

func (c *cursor) u16le() (uint16, bool) {
	p, ok := c.take(2)
	if !ok {
		return 0, false
	}
	return uint16(p[0]) | uint16(p[1])<<8, true
}

func (c *cursor) u16be() (uint16, bool) {
	p, ok := c.take(2)
	if !ok {
		return 0, false
	}
	return uint16(p[0])<<8 | uint16(p[1]), true
}

func (c *cursor) len() int { return len(c.b) }
