package psi

import (
	"encoding/binary"

	"github.com/snapetech/dvbsi/internal/dvbtext"
)

const (
	descriptorTagNetworkName  byte = 0x40
	descriptorTagServiceList  byte = 0x41
)

// decodeNITBody decodes EN 300 468 §5.2.1's two-loop NIT layout: a
// network-wide descriptor loop, then a transport_stream_loop where each
// entry carries its own descriptor loop. Each transport stream's service
// list is kept both individually (NITTransportStream.Services) and
// flattened across the whole table (NIT.Services).
func decodeNITBody(header SectionHeader, body []byte) (*NIT, int) {
	nit := &NIT{
		Header:    header,
		NetworkID: header.TableIDExtension,
		Services:  map[uint16]ServiceType{},
	}
	if len(body) < 2 {
		return nit, 0
	}
	overflows := 0
	networkDescLen := int(binary.BigEndian.Uint16(body[0:2]) & 0x0FFF)
	pos := 2
	overflows += walkDescriptors(body[pos:], networkDescLen, func(tag byte, b []byte) {
		if tag == descriptorTagNetworkName {
			if name, err := dvbtext.DecodeBytes(b, false); err == nil {
				nit.NetworkName = name
			}
		}
	})
	pos += networkDescLen
	if pos+2 > len(body) {
		return nit, overflows
	}
	tsLoopLen := int(binary.BigEndian.Uint16(body[pos:pos+2]) & 0x0FFF)
	pos += 2
	end := pos + tsLoopLen
	if end > len(body) {
		end = len(body)
	}
	for pos+6 <= end {
		tsID := binary.BigEndian.Uint16(body[pos : pos+2])
		onID := binary.BigEndian.Uint16(body[pos+2 : pos+4])
		tsDescLen := int(binary.BigEndian.Uint16(body[pos+4:pos+6]) & 0x0FFF)
		pos += 6

		ts := NITTransportStream{
			TransportStreamID: tsID,
			OriginalNetworkID: onID,
			Services:          map[uint16]ServiceType{},
		}
		overflows += walkDescriptors(body[pos:], tsDescLen, func(tag byte, b []byte) {
			if tag != descriptorTagServiceList {
				return
			}
			for i := 0; i+3 <= len(b); i += 3 {
				sid := binary.BigEndian.Uint16(b[i : i+2])
				stype := ServiceType(b[i+2])
				ts.Services[sid] = stype
				nit.Services[sid] = stype
			}
		})
		nit.TransportStreams = append(nit.TransportStreams, ts)
		pos += tsDescLen
	}
	return nit, overflows
}
