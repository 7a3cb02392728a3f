package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gopkg.in/yaml.v2"

	"github.com/tsinghua-fib-lab/microroad-sim-oss/utils/config"
)

func TestRuntimeConfigDefaults(t *testing.T) {
	rc := config.NewRuntimeConfig(config.Config{})
	assert.Equal(t, 1.0/60.0, rc.C.Step.Interval)
	assert.Equal(t, uint64(1), rc.C.Seed)
	assert.Equal(t, 2.0, rc.T.CarSpawnMin)
	assert.Equal(t, 3.5, rc.T.CarSpawnMax)
	assert.Equal(t, 5.0, rc.T.LightCycle)
	assert.Equal(t, 0.02, rc.AccidentP)
}

func TestAccidentPExplicitZeroDisables(t *testing.T) {
	zero := 0.0
	rc := config.NewRuntimeConfig(config.Config{
		Traffic: config.Traffic{AccidentP: &zero},
	})
	assert.Equal(t, 0.0, rc.AccidentP)
}

func TestSpawnBoundsClamped(t *testing.T) {
	rc := config.NewRuntimeConfig(config.Config{
		Traffic: config.Traffic{CarSpawnMin: 4.0, CarSpawnMax: 3.0},
	})
	assert.Equal(t, 4.0, rc.T.CarSpawnMin)
	assert.Equal(t, 4.0, rc.T.CarSpawnMax)
}

func TestYAMLRoundTrip(t *testing.T) {
	data := `
control:
  step:
    start: 0
    total: 3600
  seed: 42
traffic:
  light_cycle: 4
  accident_p: 0.01
events:
  - step: 60
    type: ambulance
`
	var c config.Config
	assert.NoError(t, yaml.UnmarshalStrict([]byte(data), &c))
	rc := config.NewRuntimeConfig(c)
	assert.Equal(t, uint64(42), rc.C.Seed)
	assert.Equal(t, 4.0, rc.T.LightCycle)
	assert.Equal(t, 0.01, rc.AccidentP)
	assert.Len(t, c.Events, 1)
	assert.Equal(t, "ambulance", c.Events[0].Type)
}
