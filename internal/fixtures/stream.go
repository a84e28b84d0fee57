package fixtures

import (
	"context"

	"golang.org/x/time/rate"

	"github.com/snapetech/dvbsi/internal/tspacket"
)

// StreamPackets feeds packets to fn one at a time, waiting on limiter before
// each delivery. This models reading a live multiplex off a slow tuner
// device rather than decoding an in-memory buffer all at once.
func StreamPackets(ctx context.Context, packets []tspacket.TransportPacket, limiter *rate.Limiter, fn func(tspacket.TransportPacket) error) error {
	for _, pkt := range packets {
		if err := limiter.Wait(ctx); err != nil {
			return err
		}
		if err := fn(pkt); err != nil {
			return err
		}
	}
	return nil
}
