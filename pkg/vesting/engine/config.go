package engine

import (
	"github.com/elasticvest/vesting-server/pkg/config"
	"github.com/elasticvest/vesting-server/pkg/config/env"
	"github.com/elasticvest/vesting-server/pkg/config/memory"
	"github.com/elasticvest/vesting-server/pkg/config/wrapper"
)

const (
	envConfigPrefix = "VESTING_ENGINE_"

	DisableVestingConfigEnvName = envConfigPrefix + "DISABLE_VESTING"
	defaultDisableVesting       = false

	TreasuryAddressConfigEnvName = envConfigPrefix + "TREASURY_ADDRESS"
	defaultTreasuryAddress       = "" // falls back to the controller
)

type conf struct {
	disableVesting  config.Bool
	treasuryAddress config.String
}

// ConfigProvider defines how config values are pulled
type ConfigProvider func() *conf

// WithEnvConfigs returns configuration pulled from environment variables
func WithEnvConfigs() ConfigProvider {
	return func() *conf {
		return &conf{
			disableVesting:  env.NewBoolConfig(DisableVestingConfigEnvName, defaultDisableVesting),
			treasuryAddress: env.NewStringConfig(TreasuryAddressConfigEnvName, defaultTreasuryAddress),
		}
	}
}

type testOverrides struct {
	disableVesting  bool
	treasuryAddress string
}

func withManualTestOverrides(overrides *testOverrides) ConfigProvider {
	return func() *conf {
		return &conf{
			disableVesting:  wrapper.NewBoolConfig(memory.NewConfig(overrides.disableVesting), defaultDisableVesting),
			treasuryAddress: wrapper.NewStringConfig(memory.NewConfig(overrides.treasuryAddress), defaultTreasuryAddress),
		}
	}
}
