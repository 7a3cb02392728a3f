package vehicle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tsinghua-fib-lab/microroad-sim-oss/clock"
	"github.com/tsinghua-fib-lab/microroad-sim-oss/entity"
	"github.com/tsinghua-fib-lab/microroad-sim-oss/entity/road"
	"github.com/tsinghua-fib-lab/microroad-sim-oss/entity/trafficlight"
	"github.com/tsinghua-fib-lab/microroad-sim-oss/utils/config"
	"github.com/tsinghua-fib-lab/microroad-sim-oss/utils/container"
	"github.com/tsinghua-fib-lab/microroad-sim-oss/utils/randengine"
)

const dt = 1.0 / 60.0

// testCtx 测试用任务上下文，仅提供车辆模块依赖的静态环境
type testCtx struct {
	clk *clock.Clock
	rc  *config.RuntimeConfig
	rng *randengine.Engine
	rm  *road.Manager
	tlm *trafficlight.Manager
}

func newTestCtx() *testCtx {
	noAccident := 0.0
	c := config.Config{
		Control: config.Control{Step: config.ControlStep{Total: 100000}, Seed: 7},
		Traffic: config.Traffic{AccidentP: &noAccident},
	}
	rc := config.NewRuntimeConfig(c)
	return &testCtx{
		clk: clock.New(rc.C.Step),
		rc:  rc,
		rng: randengine.New(rc.C.Seed),
		rm:  road.NewManager(),
		tlm: trafficlight.NewManager(rc.T.LightCycle),
	}
}

func (c *testCtx) Clock() *clock.Clock { return c.clk }

func (c *testCtx) RuntimeConfig() *config.RuntimeConfig { return c.rc }

func (c *testCtx) Rand() *randengine.Engine { return c.rng }

func (c *testCtx) RoadManager() entity.IRoadManager { return c.rm }

func (c *testCtx) TrafficLightManager() entity.ITrafficLightManager { return c.tlm }

func TestUpdateMotion(t *testing.T) {
	m := NewManager(newTestCtx())
	v := m.SpawnCarAt(entity.SideTop, 0, 100)
	x0 := v.X()
	v.Update(dt, false)
	assert.InDelta(t, x0+v.V()*dt, v.X(), 1e-9)
	x1 := v.X()
	v.Update(dt, true)
	assert.Equal(t, x1, v.X())
}

func TestRecklessIgnoresStop(t *testing.T) {
	m := NewManager(newTestCtx())
	v := m.SpawnCarAt(entity.SideBottom, 1, 800)
	v0 := v.V()
	v.MarkReckless()
	assert.InDelta(t, v0*RecklessFactor, v.V(), 1e-9)
	assert.True(t, v.Reckless())
	x0 := v.X()
	v.Update(dt, true)
	assert.Less(t, v.X(), x0)
}

func TestLaneSmoothingConvergesAndSnaps(t *testing.T) {
	m := NewManager(newTestCtx())
	r := m.ctx.RoadManager().Get(entity.SideTop)
	v := m.SpawnCarAt(entity.SideTop, 0, 100)
	v.switchLane(1, r.LaneY(1))
	prev := v.Y()
	for i := 0; i < 600; i++ {
		v.Update(dt, true)
		assert.GreaterOrEqual(t, v.Y(), prev)
		prev = v.Y()
	}
	assert.Equal(t, r.LaneY(1), v.Y())
	assert.Equal(t, 1, v.Lane())
}

func TestOffScreen(t *testing.T) {
	m := NewManager(newTestCtx())
	right := m.SpawnCarAt(entity.SideTop, 0, road.ScreenWidth+road.OffScreenMargin+1)
	left := m.SpawnCarAt(entity.SideBottom, 0, -road.OffScreenMargin-1)
	assert.True(t, right.OffScreen())
	assert.True(t, left.OffScreen())
	mid := m.SpawnCarAt(entity.SideTop, 0, road.ScreenWidth/2)
	assert.False(t, mid.OffScreen())
}

func TestAmbulanceArrivalSnapAndWaits(t *testing.T) {
	m := NewManager(newTestCtx())
	amb := m.SpawnAmbulance()
	amb.Dispatch(500, amb.Y())
	require.Equal(t, entity.AmbulanceToAccident, amb.AmbulanceState())

	stopX := 500 + AmbulanceAccidentStandoff
	for i := 0; i < 600 && amb.AmbulanceState() == entity.AmbulanceToAccident; i++ {
		amb.UpdateAmbulance(dt)
	}
	require.Equal(t, entity.AmbulanceWaitAtAccident, amb.AmbulanceState())
	assert.Equal(t, stopX, amb.X())
	assert.Equal(t, 0.0, amb.AmbulanceTimer())

	for i := 0; i < 301; i++ {
		amb.UpdateAmbulance(dt)
	}
	require.Equal(t, entity.AmbulanceToHospital, amb.AmbulanceState())

	for i := 0; i < 600 && amb.AmbulanceState() == entity.AmbulanceToHospital; i++ {
		amb.UpdateAmbulance(dt)
	}
	require.Equal(t, entity.AmbulanceWaitAtHospital, amb.AmbulanceState())
	assert.LessOrEqual(t, amb.X(), road.HospitalX)

	for i := 0; i < 301; i++ {
		amb.UpdateAmbulance(dt)
	}
	require.Equal(t, entity.AmbulanceLeaving, amb.AmbulanceState())
	x0 := amb.X()
	amb.UpdateAmbulance(dt)
	assert.InDelta(t, AmbulanceSpeed*AmbulanceLeavingFactor*dt, x0-amb.X(), 1e-9)
}

func TestTowTruckCycle(t *testing.T) {
	m := NewManager(newTestCtx())
	truck := m.SpawnTowTruck(entity.SideBottom, 0, 600)
	require.Equal(t, entity.TowMovingToTarget, truck.TowState())

	stopX := 600 + TowStandoff
	for i := 0; i < 600 && truck.TowState() == entity.TowMovingToTarget; i++ {
		truck.UpdateTowTruck(dt)
	}
	require.Equal(t, entity.TowWorking, truck.TowState())
	assert.Equal(t, stopX, truck.X())
	assert.False(t, truck.PickedUp())

	for i := 0; i < 121; i++ {
		truck.UpdateTowTruck(dt)
	}
	require.Equal(t, entity.TowLeaving, truck.TowState())
	assert.True(t, truck.PickedUp())

	x0 := truck.X()
	truck.UpdateTowTruck(dt)
	assert.Greater(t, truck.X(), x0)
}

func TestPruneInvalidatesHandle(t *testing.T) {
	m := NewManager(newTestCtx())
	v := m.SpawnCarAt(entity.SideTop, 0, road.ScreenWidth+road.OffScreenMargin+10)
	h := v.Handle()
	var removed int
	m.Prune(func(hh container.Handle) {
		removed++
		assert.Equal(t, h, hh)
	})
	assert.Equal(t, 1, removed)
	_, ok := m.Resolve(h)
	assert.False(t, ok)
	assert.Equal(t, 0, m.Len())
}

func TestPruneExemptsAccidentVehicles(t *testing.T) {
	m := NewManager(newTestCtx())
	v := m.SpawnCarAt(entity.SideTop, 0, road.ScreenWidth+road.OffScreenMargin+10)
	v.MarkAccidentTarget()
	m.Prune(nil)
	_, ok := m.Resolve(v.Handle())
	assert.True(t, ok)
}

func TestSpacingForcesStop(t *testing.T) {
	m := NewManager(newTestCtx())
	leader := m.SpawnCarAt(entity.SideTop, 1, 300)
	follower := m.SpawnCarAt(entity.SideTop, 1, 200)
	x0 := follower.X()
	m.UpdateTraffic(dt, entity.AccidentInfo{})
	assert.Equal(t, x0, follower.X())
	assert.True(t, follower.ForcedStop())
	assert.Greater(t, leader.X(), 300.0)
}

func TestYieldToEmergencyVehicle(t *testing.T) {
	m := NewManager(newTestCtx())
	r := m.ctx.RoadManager().Get(entity.SideBottom)
	amb := m.SpawnAmbulance()
	amb.x = 1300
	amb.y = r.LaneY(1)
	amb.targetY = amb.y
	car := m.SpawnCarAt(entity.SideBottom, 1, 1000)
	m.UpdateTraffic(dt, entity.AccidentInfo{})
	assert.Equal(t, 2, car.Lane())
	assert.True(t, car.changedLane)
}

func TestAvoidActiveAccident(t *testing.T) {
	m := NewManager(newTestCtx())
	car := m.SpawnCarAt(entity.SideTop, 0, 500)
	acc := entity.AccidentInfo{
		State: entity.AccidentActive,
		X:     700,
		Side:  entity.SideTop,
		Lane:  0,
	}
	m.UpdateTraffic(dt, acc)
	assert.Equal(t, 1, car.Lane())
}

func TestRedLightStop(t *testing.T) {
	ctx := newTestCtx()
	m := NewManager(ctx)
	ctx.tlm.Update(5.01) // 红灯
	light := ctx.tlm.Get(entity.SideBottom)
	require.True(t, light.IsRed())
	stopLine := light.StopLineX(true)
	// 停在灯箱处的车辆也位于停止区内，红灯不得通过
	atBox := m.SpawnCarAt(entity.SideBottom, 0, light.X())
	past := m.SpawnCarAt(entity.SideBottom, 1, stopLine-trafficlight.StopRadius-10)
	m.UpdateTraffic(dt, entity.AccidentInfo{})
	assert.Equal(t, light.X(), atBox.X())
	assert.True(t, atBox.ForcedStop())
	assert.Less(t, past.X(), stopLine-trafficlight.StopRadius-10)
	assert.False(t, past.ForcedStop())
}

func TestOrphanedTowCleanup(t *testing.T) {
	m := NewManager(newTestCtx())
	v := m.SpawnCarAt(entity.SideTop, 0, 800)
	v.AttachTow(TowOffsetFirst)
	m.ReleaseOrphanedTows()
	assert.True(t, v.ToBeRemoved())
	m.Prune(nil)
	_, ok := m.Resolve(v.Handle())
	assert.False(t, ok)
}
