package psi

import (
	"encoding/binary"

	"github.com/snapetech/dvbsi/internal/dvbtext"
)

const (
	descriptorTagService         byte = 0x48
	descriptorTagParentalRating  byte = 0x55
	descriptorTagSubtitling      byte = 0x59
)

// decodeSDTBody decodes an SDT's full service loop, including the
// parental-rating and subtitling descriptors nested under each service
// entry.
func decodeSDTBody(header SectionHeader, body []byte) (*SDT, int) {
	sdt := &SDT{
		Header:            header,
		TransportStreamID: header.TableIDExtension,
	}
	if len(body) < 3 {
		return sdt, 0
	}
	sdt.OriginalNetworkID = binary.BigEndian.Uint16(body[0:2])
	pos := 3 // skip original_network_id(2) + reserved_future_use(1)
	overflows := 0

	for pos+5 <= len(body) {
		serviceID := binary.BigEndian.Uint16(body[pos : pos+2])
		flagsByte := body[pos+2]
		eitSchedule := flagsByte&0x02 != 0
		eitPresentFollowing := flagsByte&0x01 != 0
		lenField := binary.BigEndian.Uint16(body[pos+3 : pos+5])
		runningStatus := RunningStatus((lenField >> 13) & 0x07)
		freeCA := lenField&0x1000 != 0
		descLoopLen := int(lenField & 0x0FFF)
		pos += 5

		svc := Service{
			ServiceID:           serviceID,
			EITSchedule:         eitSchedule,
			EITPresentFollowing: eitPresentFollowing,
			RunningStatus:       runningStatus,
			FreeCA:              freeCA,
		}
		overflows += walkDescriptors(body[pos:], descLoopLen, func(tag byte, b []byte) {
			switch tag {
			case descriptorTagService:
				decodeServiceDescriptor(&svc, b)
			case descriptorTagParentalRating:
				svc.ParentalRatings = append(svc.ParentalRatings, decodeParentalRatings(b)...)
			case descriptorTagSubtitling:
				svc.Subtitling = append(svc.Subtitling, decodeSubtitling(b)...)
			default:
				svc.Other = append(svc.Other, RawDescriptor{Tag: tag, RawBody: append([]byte(nil), b...)})
			}
		})
		sdt.Services = append(sdt.Services, svc)
		pos += descLoopLen
	}
	return sdt, overflows
}

// decodeServiceDescriptor fills in ServiceType, ProviderName, and
// ServiceName from a service_descriptor body (EN 300 468 §6.2.33).
func decodeServiceDescriptor(svc *Service, b []byte) {
	if len(b) < 2 {
		return
	}
	svc.ServiceType = ServiceType(b[0])
	providerLen := int(b[1])
	pos := 2
	if pos+providerLen > len(b) {
		providerLen = len(b) - pos
	}
	if name, err := dvbtext.DecodeBytes(b[pos:pos+providerLen], false); err == nil {
		svc.ProviderName = name
	}
	pos += providerLen
	if pos >= len(b) {
		return
	}
	serviceLen := int(b[pos])
	pos++
	if pos+serviceLen > len(b) {
		serviceLen = len(b) - pos
	}
	if name, err := dvbtext.DecodeBytes(b[pos:pos+serviceLen], false); err == nil {
		svc.ServiceName = name
	}
}

// decodeParentalRatings decodes a parental_rating_descriptor body (EN
// 300 468 §6.2.28): a loop of 3-byte ISO 3166 country codes plus a
// 1-byte rating, where 0 means undefined and 1..0xFF means age = rating+3.
func decodeParentalRatings(b []byte) []ParentalRating {
	var out []ParentalRating
	for i := 0; i+4 <= len(b); i += 4 {
		country := string(b[i : i+3])
		rating := b[i+3]
		age := 0
		if rating >= 1 {
			age = int(rating) + 3
		}
		out = append(out, ParentalRating{CountryCode: country, Age: age})
	}
	return out
}

// decodeSubtitling decodes a subtitling_descriptor body (EN 300 468
// §6.2.41): a loop of 8-byte entries.
func decodeSubtitling(b []byte) []SubtitlingEntry {
	var out []SubtitlingEntry
	for i := 0; i+8 <= len(b); i += 8 {
		out = append(out, SubtitlingEntry{
			LanguageCode:      string(b[i : i+3]),
			SubtitlingType:    b[i+3],
			CompositionPageID: binary.BigEndian.Uint16(b[i+4 : i+6]),
			AncillaryPageID:   binary.BigEndian.Uint16(b[i+6 : i+8]),
		})
	}
	return out
}
