package dot11

import (
	"github.com/google/gopacket/layers"
	"github.com/lcalzada-xor/wreveal/internal/core/domain"
)

// Class is the decoded frame control field.
type Class struct {
	Type    layers.Dot11Type // main type: Dot11TypeMgmt, Dot11TypeCtrl or Dot11TypeData
	Subtype uint8
	Flags   layers.Dot11Flags
}

// Classify decodes the first two bytes of a frame. Input shorter than two
// bytes is treated as zero; the result is then meaningless but valid.
func Classify(fc []byte) Class {
	var b0, b1 byte
	if len(fc) > 0 {
		b0 = fc[0]
	}
	if len(fc) > 1 {
		b1 = fc[1]
	}
	return Class{
		Type:    layers.Dot11Type((b0 & 0x0C) >> 2),
		Subtype: (b0 & 0xF0) >> 4,
		Flags:   layers.Dot11Flags(b1),
	}
}

// Dot11Type returns the combined type/subtype as gopacket encodes it.
func (c Class) Dot11Type() layers.Dot11Type {
	return layers.Dot11Type(c.Subtype<<2) | c.Type
}

func (c Class) IsManagement() bool { return c.Type == layers.Dot11TypeMgmt }
func (c Class) IsControl() bool    { return c.Type == layers.Dot11TypeCtrl }
func (c Class) IsData() bool       { return c.Type == layers.Dot11TypeData }

func (c Class) IsBeacon() bool {
	return c.Dot11Type() == layers.Dot11TypeMgmtBeacon
}

func (c Class) IsProbeRequest() bool {
	return c.Dot11Type() == layers.Dot11TypeMgmtProbeReq
}

func (c Class) IsProbeResponse() bool {
	return c.Dot11Type() == layers.Dot11TypeMgmtProbeResp
}

// IsAssociation covers association and reassociation requests and responses.
func (c Class) IsAssociation() bool {
	switch c.Dot11Type() {
	case layers.Dot11TypeMgmtAssociationReq, layers.Dot11TypeMgmtAssociationResp,
		layers.Dot11TypeMgmtReassociationReq, layers.Dot11TypeMgmtReassociationResp:
		return true
	}
	return false
}

// IsDeauth covers deauthentication and disassociation.
func (c Class) IsDeauth() bool {
	t := c.Dot11Type()
	return t == layers.Dot11TypeMgmtDeauthentication || t == layers.Dot11TypeMgmtDisassociation
}

// Kind maps the class to the routing vocabulary of the core.
func (c Class) Kind() domain.FrameKind {
	switch c.Type {
	case layers.Dot11TypeCtrl:
		return domain.KindControl
	case layers.Dot11TypeData:
		return domain.KindData
	case layers.Dot11TypeMgmt:
	default:
		return domain.KindUnknown
	}

	switch c.Dot11Type() {
	case layers.Dot11TypeMgmtBeacon:
		return domain.KindBeacon
	case layers.Dot11TypeMgmtProbeReq:
		return domain.KindProbeRequest
	case layers.Dot11TypeMgmtProbeResp:
		return domain.KindProbeResponse
	case layers.Dot11TypeMgmtAssociationReq:
		return domain.KindAssocRequest
	case layers.Dot11TypeMgmtAssociationResp:
		return domain.KindAssocResponse
	case layers.Dot11TypeMgmtReassociationReq:
		return domain.KindReassocRequest
	case layers.Dot11TypeMgmtReassociationResp:
		return domain.KindReassocResponse
	case layers.Dot11TypeMgmtDisassociation:
		return domain.KindDisassoc
	case layers.Dot11TypeMgmtAuthentication:
		return domain.KindAuth
	case layers.Dot11TypeMgmtDeauthentication:
		return domain.KindDeauth
	}
	return domain.KindOtherManagement
}
