package wave

import "fmt"

var (
	// See http://bwfmetaedit.sourceforge.net/listinfo.html
	markerIART    = [4]byte{'I', 'A', 'R', 'T'}
	markerISFT    = [4]byte{'I', 'S', 'F', 'T'}
	markerICRD    = [4]byte{'I', 'C', 'R', 'D'}
	markerICOP    = [4]byte{'I', 'C', 'O', 'P'}
	markerIARL    = [4]byte{'I', 'A', 'R', 'L'}
	markerINAM    = [4]byte{'I', 'N', 'A', 'M'}
	markerIENG    = [4]byte{'I', 'E', 'N', 'G'}
	markerIGNR    = [4]byte{'I', 'G', 'N', 'R'}
	markerIPRD    = [4]byte{'I', 'P', 'R', 'D'}
	markerISRC    = [4]byte{'I', 'S', 'R', 'C'}
	markerISBJ    = [4]byte{'I', 'S', 'B', 'J'}
	markerICMT    = [4]byte{'I', 'C', 'M', 'T'}
	markerITRK    = [4]byte{'I', 'T', 'R', 'K'}
	markerITRKBug = [4]byte{'i', 't', 'r', 'k'}
	markerITCH    = [4]byte{'I', 'T', 'C', 'H'}
	markerIKEY    = [4]byte{'I', 'K', 'E', 'Y'}
	markerIMED    = [4]byte{'I', 'M', 'E', 'D'}
)

func (m *Metadata) infoField(id [4]byte) *string {
	switch id {
	case markerIARL:
		return &m.Location
	case markerIART:
		return &m.Artist
	case markerISFT:
		return &m.Software
	case markerICRD:
		return &m.CreationDate
	case markerICOP:
		return &m.Copyright
	case markerINAM:
		return &m.Title
	case markerIENG:
		return &m.Engineer
	case markerIGNR:
		return &m.Genre
	case markerIPRD:
		return &m.Product
	case markerISRC:
		return &m.Source
	case markerISBJ:
		return &m.Subject
	case markerICMT:
		return &m.Comments
	case markerITRK, markerITRKBug:
		return &m.TrackNbr
	case markerITCH:
		return &m.Technician
	case markerIKEY:
		return &m.Keywords
	case markerIMED:
		return &m.Medium
	default:
		return nil
	}
}

// decodeInfoList reads the entries following the INFO list type. Unknown
// entries are skipped; an entry running past the payload fails with
// ErrMissingData.
func decodeInfoList(m *Metadata, payload []byte) error {
	if len(payload) < 4 {
		return fmt.Errorf("LIST chunk of %d bytes: %w", len(payload), ErrMissingData)
	}

	rest := payload[4:]
	// a single remaining byte is word alignment
	for len(rest) > 1 {
		if len(rest) < 8 {
			return fmt.Errorf("INFO entry header of %d bytes: %w", len(rest), ErrMissingData)
		}

		var id [4]byte
		copy(id[:], rest[:4])
		size := DecodeUint(rest[4:8], LittleEndian)
		rest = rest[8:]

		if uint64(size) > uint64(len(rest)) {
			return fmt.Errorf("INFO entry %q of %d bytes with %d left: %w", id[:], size, len(rest), ErrMissingData)
		}

		if field := m.infoField(id); field != nil {
			*field = nullTermStr(rest[:size])
		}

		rest = rest[size:]
		if size&1 == 1 && len(rest) > 0 {
			rest = rest[1:]
		}
	}

	return nil
}
