package itinerary

import (
	"context"
	"sync"

	"github.com/samber/lo"
	"go.uber.org/zap"
)

// CarrierDirectory resolves IATA carrier codes to presentation metadata.
type CarrierDirectory interface {
	AirlineNames(ctx context.Context, codes []string) (map[string]string, error)
	CheckInURL(ctx context.Context, code string) (string, error)
}

// MergeOffers folds externally fetched hotel and flight offers into the
// itinerary. The hotel list is stored verbatim for later re-selection. When
// the flight offer carries carrier codes not yet resolved, the name and
// check-in-URL lookups run once per distinct code; individual failures are
// logged and swallowed, never surfacing past the merge.
func MergeOffers(ctx context.Context, it CanonicalItinerary, hotels *HotelBlock, flight *FlightOffer, dir CarrierDirectory, log *zap.SugaredLogger) CanonicalItinerary {
	if hotels != nil {
		it.AvailableHotels = derivePerNight(hotels)
	}
	if flight == nil {
		return it
	}

	offer := *flight
	if offer.AirlineNames == nil {
		offer.AirlineNames = map[string]string{}
	}
	if offer.CheckInURLs == nil {
		offer.CheckInURLs = map[string]string{}
	}

	if dir != nil {
		resolveCarriers(ctx, &offer, dir, log)
	}
	it.SelectedFlightOffer = &offer
	return it
}

func resolveCarriers(ctx context.Context, offer *FlightOffer, dir CarrierDirectory, log *zap.SugaredLogger) {
	missingNames := lo.Filter(offer.CarrierCodes(), func(c string, _ int) bool {
		_, have := offer.AirlineNames[c]
		return !have
	})
	missingURLs := lo.Filter(offer.CarrierCodes(), func(c string, _ int) bool {
		_, have := offer.CheckInURLs[c]
		return !have
	})

	var mu sync.Mutex
	var wg sync.WaitGroup

	if len(missingNames) > 0 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			names, err := dir.AirlineNames(ctx, missingNames)
			if err != nil {
				if log != nil {
					log.Warnw("airline name lookup failed", "codes", missingNames, "error", err)
				}
				return
			}
			mu.Lock()
			for code, name := range names {
				offer.AirlineNames[code] = name
			}
			mu.Unlock()
		}()
	}

	// Check-in URLs are independent per carrier; issue them concurrently.
	for _, code := range missingURLs {
		wg.Add(1)
		go func(code string) {
			defer wg.Done()
			url, err := dir.CheckInURL(ctx, code)
			if err != nil || url == "" {
				if err != nil && log != nil {
					log.Warnw("check-in URL lookup failed", "carrier", code, "error", err)
				}
				return
			}
			mu.Lock()
			offer.CheckInURLs[code] = url
			mu.Unlock()
		}(code)
	}

	wg.Wait()
}

// derivePerNight fills each candidate's per-night price from its stay total
// and the check-in/check-out window. The list itself is not re-validated.
func derivePerNight(block *HotelBlock) *HotelBlock {
	nights := nightsBetween(block.CheckIn, block.CheckOut)
	if nights < 1 {
		return block
	}
	out := *block
	out.Hotels = make([]HotelCandidate, len(block.Hotels))
	copy(out.Hotels, block.Hotels)
	for i := range out.Hotels {
		if out.Hotels[i].PricePerNight == 0 && out.Hotels[i].PriceTotal > 0 {
			out.Hotels[i].PricePerNight = out.Hotels[i].PriceTotal / float64(nights)
		}
	}
	return &out
}

func nightsBetween(checkIn, checkOut string) int {
	in, err1 := parseDate(checkIn)
	out, err2 := parseDate(checkOut)
	if err1 != nil || err2 != nil {
		return 0
	}
	return int(out.Sub(in).Hours() / 24)
}
