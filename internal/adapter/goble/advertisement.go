package goble

import (
	"github.com/go-ble/ble"
	"github.com/srg/ccrtble/internal/adapter"
)

// bleAdvertisement wraps ble.Advertisement to implement adapter.Advertisement
type bleAdvertisement struct {
	adv ble.Advertisement
}

func newAdvertisement(adv ble.Advertisement) adapter.Advertisement {
	return &bleAdvertisement{adv: adv}
}

func (a *bleAdvertisement) Addr() string      { return a.adv.Addr().String() }
func (a *bleAdvertisement) LocalName() string { return a.adv.LocalName() }
func (a *bleAdvertisement) RSSI() int         { return a.adv.RSSI() }
func (a *bleAdvertisement) Connectable() bool { return a.adv.Connectable() }

func (a *bleAdvertisement) Services() []string {
	bleServices := a.adv.Services()
	result := make([]string, len(bleServices))
	for i, svc := range bleServices {
		result[i] = normalizeUUID(svc.String())
	}
	return result
}
