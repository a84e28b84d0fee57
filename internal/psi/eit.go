package psi

import (
	"encoding/binary"
	"sort"

	"github.com/snapetech/dvbsi/internal/dvbtext"
)

const (
	descriptorTagShortEvent    byte = 0x4D
	descriptorTagExtendedEvent byte = 0x4E
	descriptorTagContent       byte = 0x54
)

// decodeEITBody decodes an EIT's full event loop, converting each event's
// MJD/BCD start time and duration and concatenating extended-event text
// fragments in descriptor_number order.
func decodeEITBody(header SectionHeader, body []byte) (*EIT, int) {
	eit := &EIT{
		Header:            header,
		ServiceID:         header.TableIDExtension,
		TransportStreamID: 0,
	}
	if len(body) < 6 {
		return eit, 0
	}
	eit.TransportStreamID = binary.BigEndian.Uint16(body[0:2])
	eit.OriginalNetworkID = binary.BigEndian.Uint16(body[2:4])
	eit.SegmentLastSectionNumber = body[4]
	eit.LastTableID = body[5]

	overflows := 0
	pos := 6
	for pos+12 <= len(body) {
		eventID := binary.BigEndian.Uint16(body[pos : pos+2])
		startTime, _ := parseDVBTime(body[pos+2 : pos+7])
		duration := parseDVBDuration(body[pos+7 : pos+10])
		lenField := binary.BigEndian.Uint16(body[pos+10 : pos+12])
		runningStatus := RunningStatus((lenField >> 13) & 0x07)
		freeCA := lenField&0x1000 != 0
		descLoopLen := int(lenField & 0x0FFF)
		pos += 12

		item, itemOverflows := decodeEventDescriptors(body[pos:], descLoopLen)
		overflows += itemOverflows
		item.EventID = eventID
		item.StartTime = startTime
		item.Duration = duration
		if !startTime.IsZero() {
			item.FinishTime = startTime.Add(duration)
		}
		item.RunningStatus = runningStatus
		item.FreeCA = freeCA

		// An event with no short-event descriptor carries no name or text
		// worth surfacing, so it is dropped here rather than appended.
		if item.ShortEvent != nil {
			eit.Events = append(eit.Events, item)
		}
		pos += descLoopLen
	}
	return eit, overflows
}

type extendedFragment struct {
	number int
	text   string
	lang   string
}

func decodeEventDescriptors(data []byte, loopLen int) (EventItem, int) {
	var item EventItem
	var fragments []extendedFragment
	var nibbles []ContentNibble

	overflows := walkDescriptors(data, loopLen, func(tag byte, b []byte) {
		switch tag {
		case descriptorTagShortEvent:
			item.ShortEvent = decodeShortEvent(b)
		case descriptorTagExtendedEvent:
			if frag, ok := decodeExtendedEvent(b); ok {
				fragments = append(fragments, frag)
			}
		case descriptorTagContent:
			nibbles = append(nibbles, decodeContentNibbles(b)...)
		case descriptorTagParentalRating:
			item.ParentalRatings = append(item.ParentalRatings, decodeParentalRatings(b)...)
		case descriptorTagSubtitling:
			item.Subtitling = append(item.Subtitling, decodeSubtitling(b)...)
		default:
			item.Other = append(item.Other, RawDescriptor{Tag: tag, RawBody: append([]byte(nil), b...)})
		}
	})

	if len(fragments) > 0 {
		sort.Slice(fragments, func(i, j int) bool { return fragments[i].number < fragments[j].number })
		item.ExtendedEventLanguage = fragments[0].lang
		for _, f := range fragments {
			item.ExtendedEventText += f.text
		}
	}
	if len(nibbles) > 0 {
		item.Content = &ContentNibbles{Nibbles: nibbles}
	}
	return item, overflows
}

// normalizeLanguage treats an empty (or all-zero) ISO 639 language code as
// "und" (undetermined) rather than surfacing it as a blank string.
func normalizeLanguage(lang string) string {
	blank := true
	for _, c := range lang {
		if c != 0x00 && c != ' ' {
			blank = false
			break
		}
	}
	if blank {
		return "und"
	}
	return lang
}

// decodeShortEvent decodes a short_event_descriptor body (EN 300 468
// §6.2.37).
func decodeShortEvent(b []byte) *ShortEvent {
	if len(b) < 4 {
		return nil
	}
	lang := normalizeLanguage(string(b[0:3]))
	nameLen := int(b[3])
	pos := 4
	if pos+nameLen > len(b) {
		nameLen = len(b) - pos
	}
	name, _ := dvbtext.DecodeBytes(b[pos:pos+nameLen], false)
	pos += nameLen
	text := ""
	if pos < len(b) {
		textLen := int(b[pos])
		pos++
		if pos+textLen > len(b) {
			textLen = len(b) - pos
		}
		text, _ = dvbtext.DecodeBytes(b[pos:pos+textLen], false)
	}
	return &ShortEvent{Language: lang, EventName: name, Text: text}
}

// decodeExtendedEvent decodes an extended_event_descriptor body (EN 300 468
// §6.2.15), skipping the item loop entirely (item descriptions are not
// surfaced, only the free text) and returning the descriptor_number-tagged
// text fragment.
func decodeExtendedEvent(b []byte) (extendedFragment, bool) {
	if len(b) < 5 {
		return extendedFragment{}, false
	}
	number := int(b[0]>>4) & 0x0F
	lang := normalizeLanguage(string(b[1:4]))
	itemsLen := int(b[4])
	pos := 5
	end := pos + itemsLen
	if end > len(b) {
		end = len(b)
	}
	pos = end // item loop skipped entirely
	if pos >= len(b) {
		return extendedFragment{number: number, lang: lang, text: ""}, true
	}
	textLen := int(b[pos])
	pos++
	if pos+textLen > len(b) {
		textLen = len(b) - pos
	}
	text, _ := dvbtext.DecodeBytes(b[pos:pos+textLen], false)
	return extendedFragment{number: number, lang: lang, text: text}, true
}

// decodeContentNibbles decodes a content_descriptor body (EN 300 468
// §6.2.9): a loop of 2-byte content_nibble entries.
func decodeContentNibbles(b []byte) []ContentNibble {
	var out []ContentNibble
	for i := 0; i+2 <= len(b); i += 2 {
		out = append(out, ContentNibble{
			Level1: b[i] >> 4,
			Level2: b[i] & 0x0F,
			User1:  b[i+1] >> 4,
			User2:  b[i+1] & 0x0F,
		})
	}
	return out
}
