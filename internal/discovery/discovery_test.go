package discovery_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/srg/ccrtble/internal/adaptertest"
	"github.com/srg/ccrtble/internal/discovery"
	"github.com/srg/ccrtble/internal/protocol"
	"github.com/srg/ccrtble/internal/thermostat"
	"github.com/stretchr/testify/suite"
)

func thermostatAdv(addr, name string, rssi int) adaptertest.Advertisement {
	return adaptertest.Advertisement{
		Address:      addr,
		Name:         name,
		Rssi:         rssi,
		ServiceUUIDs: []string{protocol.ServiceUUID},
	}
}

type DiscoveryTestSuite struct {
	suite.Suite

	adapter *adaptertest.Adapter
	engine  *discovery.Engine
}

func (suite *DiscoveryTestSuite) SetupTest() {
	suite.adapter = adaptertest.New()

	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	suite.engine = discovery.New(suite.adapter, logger)
}

// addresses flattens a result map into its arrival-ordered keys.
func addresses(sessions *discovery.Sessions) []string {
	var out []string
	for pair := sessions.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, pair.Key)
	}
	return out
}

func (suite *DiscoveryTestSuite) TestOptionValidation() {
	// GOAL: Verify invalid options fail fast, before any radio activity
	//
	// TEST SCENARIO: Each invalid option → ConfigError naming the option →
	// no scan happens

	suite.Run("negative duration", func() {
		_, err := suite.engine.Discover(context.Background(), &discovery.Options{
			Duration: -time.Second,
		})
		suite.Assert().ErrorIs(err, discovery.ErrConfig, "MUST be a configuration error")
		suite.Assert().ErrorIs(err, &discovery.ConfigError{Option: "Duration"}, "error MUST name the option")
	})

	suite.Run("malformed address", func() {
		_, err := suite.engine.Discover(context.Background(), &discovery.Options{
			Addresses: []string{"not an address"},
		})
		suite.Assert().ErrorIs(err, &discovery.ConfigError{Option: "Addresses"})
	})

}

func (suite *DiscoveryTestSuite) TestIgnoreUnknownWithoutAllowList() {
	// GOAL: Verify IgnoreUnknown with an empty allow-list is valid and skips
	// everything
	//
	// TEST SCENARIO: A thermostat advertises, IgnoreUnknown is set with no
	// addresses → no address matches the empty allow-list → scan completes
	// with an empty result, no error

	suite.adapter.AddAdvertisement(thermostatAdv("00:1a:22:00:00:01", "CC-RT-BLE", -60))

	sessions, err := suite.engine.Discover(context.Background(), &discovery.Options{
		Duration:      100 * time.Millisecond,
		IgnoreUnknown: true,
	})
	suite.Require().NoError(err, "empty allow-list with IgnoreUnknown MUST be accepted")
	suite.Assert().Equal(0, sessions.Len(), "every advertisement MUST be skipped")
}

func (suite *DiscoveryTestSuite) TestDiscoverDoesNotMutateOptions() {
	// GOAL: Verify Discover leaves the caller's options untouched
	//
	// TEST SCENARIO: Options with a zero duration → Discover applies the
	// default internally → the caller's struct still reads zero afterwards

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	opts := &discovery.Options{}
	_, err := suite.engine.Discover(ctx, opts)
	suite.Require().NoError(err)
	suite.Assert().Equal(time.Duration(0), opts.Duration, "caller's options MUST not be rewritten")
}

func (suite *DiscoveryTestSuite) TestServiceSignatureFilter() {
	// GOAL: Verify only devices advertising the thermostat service are
	// recorded
	//
	// TEST SCENARIO: One thermostat and one unrelated device advertise →
	// only the thermostat gets a session

	suite.adapter.
		AddAdvertisement(thermostatAdv("00:1a:22:00:00:01", "CC-RT-BLE", -60)).
		AddAdvertisement(adaptertest.Advertisement{
			Address:      "00:1a:22:00:00:02",
			Name:         "HeartRateMonitor",
			Rssi:         -50,
			ServiceUUIDs: []string{"180d"},
		})

	sessions, err := suite.engine.Discover(context.Background(), &discovery.Options{
		Duration: 100 * time.Millisecond,
	})
	suite.Require().NoError(err)
	suite.Assert().Equal([]string{"00:1a:22:00:00:01"}, addresses(sessions),
		"only the device with the thermostat service MUST be recorded")
}

func (suite *DiscoveryTestSuite) TestAllowListEarlyStop() {
	// GOAL: Verify the scan stops as soon as every allow-listed address is
	// found
	//
	// TEST SCENARIO: Three thermostats advertise, two are allow-listed with
	// IgnoreUnknown → result holds exactly the allow-listed pair in arrival
	// order → the scan finishes far before the configured duration

	suite.adapter.
		AddAdvertisement(thermostatAdv("00:1a:22:00:00:03", "CC-RT-BLE", -70)).
		AddAdvertisement(thermostatAdv("00:1a:22:00:00:01", "CC-RT-BLE", -60)).
		AddAdvertisement(thermostatAdv("00:1a:22:00:00:02", "CC-RT-BLE", -65))

	start := time.Now()
	sessions, err := suite.engine.Discover(context.Background(), &discovery.Options{
		Duration:      10 * time.Second,
		Addresses:     []string{"00:1A:22:00:00:02", "00-1a-22-00-00-01"},
		IgnoreUnknown: true,
	})
	elapsed := time.Since(start)

	suite.Require().NoError(err)
	suite.Assert().Equal([]string{"00:1a:22:00:00:01", "00:1a:22:00:00:02"}, addresses(sessions),
		"result MUST hold the allow-listed devices in arrival order")
	suite.Assert().Less(elapsed, 2*time.Second, "scan MUST stop early once all addresses are found")
}

func (suite *DiscoveryTestSuite) TestAllowListRecordsUnknown() {
	// GOAL: Verify an allow-list without IgnoreUnknown still records bystander
	// thermostats
	//
	// TEST SCENARIO: Unknown thermostat advertises before the allow-listed
	// one → both get sessions, unknown first → scan still stops once the
	// allow-list is satisfied

	suite.adapter.
		AddAdvertisement(thermostatAdv("00:1a:22:00:00:09", "CC-RT-BLE", -80)).
		AddAdvertisement(thermostatAdv("00:1a:22:00:00:01", "CC-RT-BLE", -60))

	start := time.Now()
	sessions, err := suite.engine.Discover(context.Background(), &discovery.Options{
		Duration:  10 * time.Second,
		Addresses: []string{"00:1a:22:00:00:01"},
	})
	elapsed := time.Since(start)

	suite.Require().NoError(err)
	suite.Assert().Equal([]string{"00:1a:22:00:00:09", "00:1a:22:00:00:01"}, addresses(sessions))
	suite.Assert().Less(elapsed, 2*time.Second)
}

func (suite *DiscoveryTestSuite) TestDedup() {
	// GOAL: Verify repeated advertisements from one device yield one session
	//
	// TEST SCENARIO: Same address advertises twice with differing RSSI → one
	// session, carrying the first advertisement's metadata

	suite.adapter.
		AddAdvertisement(thermostatAdv("00:1a:22:00:00:01", "CC-RT-BLE", -60)).
		AddAdvertisement(thermostatAdv("00:1A:22:00:00:01", "CC-RT-BLE", -55))

	sessions, err := suite.engine.Discover(context.Background(), &discovery.Options{
		Duration: 100 * time.Millisecond,
	})
	suite.Require().NoError(err)
	suite.Require().Equal(1, sessions.Len(), "duplicate advertisements MUST collapse to one session")

	session, ok := sessions.Get("00:1a:22:00:00:01")
	suite.Require().True(ok)
	suite.Assert().Equal(-60, session.RSSI(), "first advertisement MUST win")
}

func (suite *DiscoveryTestSuite) TestSessionMetadata() {
	// GOAL: Verify discovered sessions carry the advertisement metadata
	//
	// TEST SCENARIO: Thermostat advertises with a name and RSSI → the session
	// reports them along with the normalized address

	suite.adapter.AddAdvertisement(thermostatAdv("00-1A-22-00-00-01", "CC-RT-BLE", -67))

	sessions, err := suite.engine.Discover(context.Background(), &discovery.Options{
		Duration: 100 * time.Millisecond,
	})
	suite.Require().NoError(err)

	session, ok := sessions.Get("00:1a:22:00:00:01")
	suite.Require().True(ok, "session MUST be keyed by normalized address")
	suite.Assert().Equal("00:1a:22:00:00:01", session.Address())
	suite.Assert().Equal("CC-RT-BLE", session.Name())
	suite.Assert().Equal(-67, session.RSSI())
	suite.Assert().Equal(thermostat.StateDisconnected, session.State(),
		"discovery MUST NOT connect")
}

func (suite *DiscoveryTestSuite) TestPowerOnFailure() {
	// GOAL: Verify a radio that never powers on fails discovery
	//
	// TEST SCENARIO: WaitPoweredOn fails → Discover returns the adapter error

	powerErr := errors.New("bluetooth unavailable")
	suite.adapter.PowerOnErr = powerErr

	_, err := suite.engine.Discover(context.Background(), &discovery.Options{
		Duration: 100 * time.Millisecond,
	})
	suite.Assert().ErrorIs(err, powerErr)
}

func (suite *DiscoveryTestSuite) TestNilOptionsUseDefaults() {
	// GOAL: Verify nil options scan with defaults instead of failing
	//
	// TEST SCENARIO: Discover(nil) with a cancelled-soon context → no error,
	// empty result

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	sessions, err := suite.engine.Discover(ctx, nil)
	suite.Require().NoError(err)
	suite.Assert().Equal(0, sessions.Len())
}

func TestDiscoveryTestSuite(t *testing.T) {
	suite.Run(t, new(DiscoveryTestSuite))
}
