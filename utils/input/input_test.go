package input_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tsinghua-fib-lab/microroad-sim-oss/utils/config"
	"github.com/tsinghua-fib-lab/microroad-sim-oss/utils/input"
)

func TestScriptedEventsByStep(t *testing.T) {
	s := input.New([]config.Event{
		{Step: 0, Type: "accident"},
		{Step: 10, Type: "ambulance"},
		{Step: 10, Type: "tow"},
	})
	assert.Equal(t, []input.EventType{input.EventAccident}, s.PopFrame(0))
	assert.Empty(t, s.PopFrame(1))
	assert.ElementsMatch(t,
		[]input.EventType{input.EventAmbulance, input.EventTowTruck},
		s.PopFrame(10))
	// 事件只交付一次
	assert.Empty(t, s.PopFrame(10))
}

func TestDedupPerFrame(t *testing.T) {
	s := input.New([]config.Event{
		{Step: 5, Type: "ambulance"},
		{Step: 5, Type: "ambulance"},
	})
	assert.Equal(t, []input.EventType{input.EventAmbulance}, s.PopFrame(5))
}

func TestPushFrame(t *testing.T) {
	s := input.New(nil)
	s.PushFrame(input.EventTowTruck)
	assert.Equal(t, []input.EventType{input.EventTowTruck}, s.PopFrame(3))
	assert.Empty(t, s.PopFrame(4))
}

func TestUnknownTypeIgnored(t *testing.T) {
	s := input.New([]config.Event{{Step: 0, Type: "horn"}})
	assert.Empty(t, s.PopFrame(0))
}
