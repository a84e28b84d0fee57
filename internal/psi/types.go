// Package psi parses DVB section headers, dispatches by table ID, decodes
// PAT/NIT/SDT/EIT bodies and their descriptors, and validates the MPEG-2
// CRC32 trailer against a freshly computed one (internal/crc) rather than
// assuming the section is valid.
//
// Table is a tagged variant over the four table kinds: they share a common
// SectionHeader field but carry exactly one populated body, rather than
// being modeled as a base-class hierarchy.
package psi

import "time"

// TableKind distinguishes which of the four table bodies a decoded Table
// carries.
type TableKind int

const (
	KindPAT TableKind = iota
	KindNIT
	KindSDT
	KindEIT
)

func (k TableKind) String() string {
	switch k {
	case KindPAT:
		return "PAT"
	case KindNIT:
		return "NIT"
	case KindSDT:
		return "SDT"
	case KindEIT:
		return "EIT"
	default:
		return "unknown"
	}
}

// PIDClass is the expected table family for a given PID, used to validate
// the decoded table_id.
type PIDClass int

const (
	ClassPAT PIDClass = iota
	ClassNIT
	ClassSDT
	ClassEIT
)

// Well-known table_id values.
const (
	TableIDPAT       byte = 0x00
	TableIDNITActual byte = 0x40
	TableIDNITOther  byte = 0x41
	TableIDSDTActual byte = 0x42
	TableIDSDTOther  byte = 0x46
	TableIDEITPFActual byte = 0x4E
	TableIDEITPFOther  byte = 0x4F
	// EIT schedule tables occupy 0x50..0x5F (actual TS) and 0x60..0x6F (other TS).
	TableIDEITScheduleActualLo byte = 0x50
	TableIDEITScheduleActualHi byte = 0x5F
	TableIDEITScheduleOtherLo  byte = 0x60
	TableIDEITScheduleOtherHi  byte = 0x6F
)

// ExpectedTableIDs lists the table_id values valid for a PID class.
func ExpectedTableIDs(class PIDClass) []byte {
	switch class {
	case ClassPAT:
		return []byte{TableIDPAT}
	case ClassNIT:
		return []byte{TableIDNITActual, TableIDNITOther}
	case ClassSDT:
		return []byte{TableIDSDTActual, TableIDSDTOther}
	case ClassEIT:
		ids := []byte{TableIDEITPFActual, TableIDEITPFOther}
		for id := TableIDEITScheduleActualLo; id <= TableIDEITScheduleActualHi; id++ {
			ids = append(ids, id)
		}
		for id := TableIDEITScheduleOtherLo; id <= TableIDEITScheduleOtherHi; id++ {
			ids = append(ids, id)
		}
		return ids
	default:
		return nil
	}
}

func tableIDAllowed(class PIDClass, id byte) bool {
	for _, want := range ExpectedTableIDs(class) {
		if want == id {
			return true
		}
	}
	return false
}

// SectionHeader holds the fields common to every PSI/SI section, factored
// out as the shared field the tagged Table variant keeps across table
// kinds.
type SectionHeader struct {
	PointerField           byte
	TableID                byte
	SectionSyntaxIndicator bool
	Private                bool
	SectionLength          int
	TableIDExtension       uint16
	Version                byte
	CurrentIndicator       bool
	SectionNumber          byte
	LastSectionNumber      byte

	// CRC32Valid reports whether the MPEG-2 CRC32 over the section body
	// matched the stored trailing CRC. A mismatch is reported here rather
	// than failing the decode outright.
	CRC32Valid  bool
	StoredCRC32 uint32
	ComputedCRC32 uint32

	// DescriptorOverflows counts descriptor loops in this section whose
	// declared length ran past their enclosing loop and were clipped,
	// rather than failing the decode.
	DescriptorOverflows int
}

// RunningStatus is the DVB running_status enumeration (EN 300 468 table 6),
// present on both SDT service entries and EIT event entries.
type RunningStatus byte

const (
	RunningStatusUndefined           RunningStatus = 0
	RunningStatusNotRunning          RunningStatus = 1
	RunningStatusStartsInFewSeconds  RunningStatus = 2
	RunningStatusPausing             RunningStatus = 3
	RunningStatusRunning             RunningStatus = 4
	RunningStatusServiceOffAir       RunningStatus = 5
)

func (r RunningStatus) String() string {
	switch r {
	case RunningStatusUndefined:
		return "undefined"
	case RunningStatusNotRunning:
		return "not-running"
	case RunningStatusStartsInFewSeconds:
		return "starts-in-a-few-seconds"
	case RunningStatusPausing:
		return "pausing"
	case RunningStatusRunning:
		return "running"
	case RunningStatusServiceOffAir:
		return "service-off-air"
	default:
		return "reserved"
	}
}

// ServiceType is the 1-byte DVB service_type enumeration (EN 300 468
// table 81), covering the television, radio, and teletext service kinds
// an SDT or NIT entry can name.
type ServiceType byte

const (
	DigitalTelevisionService     ServiceType = 0x01
	DigitalRadioSoundService     ServiceType = 0x02
	TeletextService              ServiceType = 0x03
	AdvancedCodecDigitalRadio    ServiceType = 0x0A
	MPEG2HDDigitalTelevisionService ServiceType = 0x11
	AdvancedCodecSDDigitalTelevisionService ServiceType = 0x16
	AdvancedCodecSDNVODTimeShifted ServiceType = 0x17
	AdvancedCodecHDDigitalTelevisionService ServiceType = 0x19
	HEVCDigitalTelevisionService ServiceType = 0x1F
)

func (s ServiceType) String() string {
	switch s {
	case DigitalTelevisionService:
		return "digital-television"
	case DigitalRadioSoundService:
		return "digital-radio-sound"
	case TeletextService:
		return "teletext"
	case AdvancedCodecDigitalRadio:
		return "advanced-codec-digital-radio"
	case MPEG2HDDigitalTelevisionService:
		return "mpeg2-hd-television"
	case AdvancedCodecSDDigitalTelevisionService:
		return "advanced-codec-sd-television"
	case AdvancedCodecSDNVODTimeShifted:
		return "advanced-codec-sd-nvod-time-shifted"
	case AdvancedCodecHDDigitalTelevisionService:
		return "advanced-codec-hd-television"
	case HEVCDigitalTelevisionService:
		return "hevc-television"
	default:
		return "unknown"
	}
}

// ── PAT ──────────────────────────────────────────────────────────────────────

// ProgramAssociation is one PAT entry.
type ProgramAssociation struct {
	ProgramNumber uint16
	PID           uint16
}

// PAT is the decoded Program Association Table.
type PAT struct {
	Header            SectionHeader
	TransportStreamID uint16 // table_id_extension
	Programs          []ProgramAssociation

	nitPID    uint16
	hasNITPID bool
}

// NITPID returns the PID associated with program_number 0, if present.
// Program number 0 is reserved to mean the NIT PID rather than a program.
func (p *PAT) NITPID() (uint16, bool) {
	return p.nitPID, p.hasNITPID
}

// ── NIT ──────────────────────────────────────────────────────────────────────

// NITTransportStream is one transport-stream entry in a NIT's
// transport_stream_loop, carrying its own service list: the
// service-list descriptor is per transport-stream on the wire, not per
// network.
type NITTransportStream struct {
	TransportStreamID uint16
	OriginalNetworkID uint16
	Services          map[uint16]ServiceType
}

// NIT is the decoded Network Information Table.
type NIT struct {
	Header            SectionHeader
	NetworkID         uint16 // table_id_extension
	NetworkName       string
	Services          map[uint16]ServiceType // flattened join across all transport streams
	TransportStreams  []NITTransportStream
}

// ── SDT ──────────────────────────────────────────────────────────────────────

// Service is one SDT service entry.
type Service struct {
	ServiceID           uint16
	ServiceType         ServiceType
	ProviderName        string
	ServiceName         string
	EITSchedule         bool
	EITPresentFollowing bool
	RunningStatus       RunningStatus
	FreeCA              bool

	ParentalRatings []ParentalRating
	Subtitling      []SubtitlingEntry
	Other           []RawDescriptor
}

// SDT is the decoded Service Description Table.
type SDT struct {
	Header            SectionHeader
	TransportStreamID uint16 // table_id_extension
	OriginalNetworkID uint16
	Services          []Service
}

// ── EIT ──────────────────────────────────────────────────────────────────────

// ShortEvent is the decoded short_event_descriptor (tag 0x4D).
type ShortEvent struct {
	Language  string
	EventName string
	Text      string
}

// ContentNibble is one content_nibble pair of a content_descriptor (tag
// 0x54).
type ContentNibble struct {
	Level1 byte
	Level2 byte
	User1  byte
	User2  byte
}

// ContentGenreLabel returns a human-readable label for a content_nibble's
// level-1 genre, or "" if unrecognized (EN 300 468 table 28).
func ContentGenreLabel(level1 byte) string {
	switch level1 {
	case 0x01:
		return "Movie/Drama"
	case 0x02:
		return "News/Current Affairs"
	case 0x03:
		return "Show/Game Show"
	case 0x04:
		return "Sports"
	case 0x05:
		return "Children/Youth"
	case 0x06:
		return "Music/Ballet/Dance"
	case 0x07:
		return "Arts/Culture"
	case 0x08:
		return "Social/Political/Economics"
	case 0x09:
		return "Education/Science/Factual"
	case 0x0A:
		return "Leisure/Hobbies"
	case 0x0B:
		return "Special Characteristics"
	default:
		return ""
	}
}

// ParentalRating is the decoded parental_rating_descriptor (tag 0x55) body.
type ParentalRating struct {
	CountryCode string
	// Age is the minimum recommended age, or 0 if "not defined" (EN 300 468
	// table 15: rating byte 0 means undefined; rating N in 1..0xFF means
	// N+3 years, e.g. 0x10 -> 19 years).
	Age int
}

// SubtitlingEntry is one entry of the decoded subtitling_descriptor (tag
// 0x59).
type SubtitlingEntry struct {
	LanguageCode       string
	SubtitlingType     byte
	CompositionPageID  uint16
	AncillaryPageID    uint16
}

// RawDescriptor carries a descriptor this package recognizes by tag but
// does not decode the body of (e.g. component, PDC), or a genuinely
// unknown tag.
type RawDescriptor struct {
	Tag     byte
	RawBody []byte
}

// EventItem is one EIT event entry, emitted only when a short-event
// descriptor was present for it.
type EventItem struct {
	EventID    uint16
	StartTime  time.Time
	Duration   time.Duration
	FinishTime time.Time

	RunningStatus RunningStatus
	FreeCA        bool

	ShortEvent *ShortEvent

	// ExtendedEventText is the concatenation, in ascending descriptor_number
	// order, of every extended_event_descriptor's text field for this
	// event.
	ExtendedEventText     string
	ExtendedEventLanguage string

	Content *ContentNibbles

	ParentalRatings []ParentalRating
	Subtitling      []SubtitlingEntry
	Other           []RawDescriptor
}

// ContentNibbles is the decoded content_descriptor (tag 0x54): a sequence
// of content_nibble pairs.
type ContentNibbles struct {
	Nibbles []ContentNibble
}

// EIT is the decoded Event Information Table, keyed by (service_id,
// transport_stream_id, original_network_id).
type EIT struct {
	Header            SectionHeader
	ServiceID         uint16 // table_id_extension
	TransportStreamID uint16
	OriginalNetworkID uint16

	SegmentLastSectionNumber byte
	LastTableID              byte

	Events []EventItem
}

// Table is the tagged variant over PAT/NIT/SDT/EIT, carrying the shared
// SectionHeader plus exactly one populated body pointer matching Kind.
type Table struct {
	Kind   TableKind
	Header SectionHeader

	PAT *PAT
	NIT *NIT
	SDT *SDT
	EIT *EIT
}
