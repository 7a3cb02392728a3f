package accident

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tsinghua-fib-lab/microroad-sim-oss/clock"
	"github.com/tsinghua-fib-lab/microroad-sim-oss/entity"
	"github.com/tsinghua-fib-lab/microroad-sim-oss/entity/road"
	"github.com/tsinghua-fib-lab/microroad-sim-oss/entity/trafficlight"
	"github.com/tsinghua-fib-lab/microroad-sim-oss/entity/vehicle"
	"github.com/tsinghua-fib-lab/microroad-sim-oss/utils/config"
	"github.com/tsinghua-fib-lab/microroad-sim-oss/utils/randengine"
)

const dt = 1.0 / 60.0

// testCtx 测试用任务上下文
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

// newPendingPair 在下方道路布置一对满足触发窗口的车辆并触发事故
func newPendingPair(t *testing.T) (*Tracker, *vehicle.Manager, *vehicle.Vehicle, *vehicle.Vehicle) {
	t.Helper()
	ctx := newTestCtx()
	vm := vehicle.NewManager(ctx)
	tracker := NewTracker(ctx, vm)
	// 下方道路向左行驶，前车在x较小一侧，间距150落入(110,400)
	front := vm.SpawnCarAt(entity.SideBottom, 1, 600)
	rear := vm.SpawnCarAt(entity.SideBottom, 1, 750)
	require.True(t, tracker.TriggerRandom())
	require.Equal(t, entity.AccidentPending, tracker.State())
	return tracker, vm, front, rear
}

// advanceToActive 直接把后车推进到碰撞窗口内并执行碰撞判定
func advanceToActive(t *testing.T, tracker *Tracker, vm *vehicle.Manager) {
	t.Helper()
	front, ok := vm.Resolve(tracker.Front())
	require.True(t, ok)
	rear, ok := vm.Resolve(tracker.Rear())
	require.True(t, ok)
	// 后车逼近至前车沿行驶方向后方(车长-15)以内，落入碰撞窗口
	for rear.X() >= front.X()+(road.VehicleWidth-15) {
		rear.Update(dt, false)
		front.Update(dt, true)
	}
	tracker.ResolveCollision()
	require.Equal(t, entity.AccidentActive, tracker.State())
}

func TestTriggerMarksPairAndSpeeds(t *testing.T) {
	ctx := newTestCtx()
	vm := vehicle.NewManager(ctx)
	tracker := NewTracker(ctx, vm)
	front := vm.SpawnCarAt(entity.SideBottom, 1, 600)
	rear := vm.SpawnCarAt(entity.SideBottom, 1, 750)
	frontV, rearV := front.V(), rear.V()

	require.True(t, tracker.TriggerRandom())
	assert.Equal(t, entity.AccidentPending, tracker.State())
	assert.True(t, rear.Reckless())
	assert.True(t, front.AccidentTarget())
	assert.InDelta(t, rearV*vehicle.RecklessFactor, rear.V(), 1e-9)
	assert.InDelta(t, frontV*vehicle.TargetFactor, front.V(), 1e-9)
}

func TestTriggerNoQualifyingPair(t *testing.T) {
	ctx := newTestCtx()
	vm := vehicle.NewManager(ctx)
	tracker := NewTracker(ctx, vm)
	// 间距100，低于触发窗口下界
	vm.SpawnCarAt(entity.SideBottom, 1, 600)
	vm.SpawnCarAt(entity.SideBottom, 1, 700)
	// 间距150但不同车道
	vm.SpawnCarAt(entity.SideTop, 0, 400)
	vm.SpawnCarAt(entity.SideTop, 1, 250)
	assert.False(t, tracker.TriggerRandom())
	assert.Equal(t, entity.AccidentNone, tracker.State())
}

func TestTriggerNoopWhileOutstanding(t *testing.T) {
	tracker, vm, _, _ := newPendingPair(t)
	vm.SpawnCarAt(entity.SideTop, 0, 400)
	vm.SpawnCarAt(entity.SideTop, 0, 250)
	assert.False(t, tracker.TriggerRandom())
	assert.Equal(t, entity.AccidentPending, tracker.State())
}

func TestPendingToActive(t *testing.T) {
	tracker, vm, front, rear := newPendingPair(t)
	fy := front.Y()

	// 间距尚在碰撞窗口外时不得转为active
	tracker.ResolveCollision()
	require.Equal(t, entity.AccidentPending, tracker.State())

	advanceToActive(t, tracker, vm)
	assert.True(t, front.Crashed())
	assert.True(t, rear.Crashed())
	assert.False(t, rear.Reckless())
	info := tracker.Info()
	assert.Equal(t, front.X(), info.X)
	assert.Equal(t, fy, info.Y)

	// 碰撞后两车静止
	x1, x2 := front.X(), rear.X()
	front.Update(dt, false)
	rear.Update(dt, false)
	assert.Equal(t, x1, front.X())
	assert.Equal(t, x2, rear.X())
}

func TestCollisionWindowFollowsTravelDirection(t *testing.T) {
	ctx := newTestCtx()
	vm := vehicle.NewManager(ctx)
	tracker := NewTracker(ctx, vm)
	// 上方道路向右行驶，前车在x较大一侧
	front := vm.SpawnCarAt(entity.SideTop, 1, 750)
	rear := vm.SpawnCarAt(entity.SideTop, 1, 600)
	require.True(t, tracker.TriggerRandom())

	// 原始X差为负时窗口下界按行驶方向镜像，后车追至前车后方(车长-5)以内
	for rear.X() < front.X()-(road.VehicleWidth-5) {
		rear.Update(dt, false)
		front.Update(dt, true)
	}
	tracker.ResolveCollision()
	assert.Equal(t, entity.AccidentActive, tracker.State())
	assert.True(t, front.Crashed())
	assert.True(t, rear.Crashed())
	assert.Less(t, rear.X(), front.X())
}

func TestCallTowWithoutAccidentNoop(t *testing.T) {
	ctx := newTestCtx()
	vm := vehicle.NewManager(ctx)
	tracker := NewTracker(ctx, vm)
	assert.Nil(t, tracker.CallTowTruck())
	assert.Equal(t, 0, vm.Len())
}

func TestPickupClearsAccident(t *testing.T) {
	tracker, vm, front, rear := newPendingPair(t)
	advanceToActive(t, tracker, vm)

	truck := tracker.CallTowTruck()
	require.NotNil(t, truck)
	for i := 0; i < 3000 && !truck.PickedUp(); i++ {
		truck.UpdateTowTruck(dt)
	}
	require.True(t, truck.PickedUp())

	tracker.UpdateTowing()
	assert.Equal(t, entity.AccidentNone, tracker.State())
	assert.True(t, front.Towed())
	assert.True(t, rear.Towed())
	assert.False(t, front.Crashed())
	assert.False(t, rear.Crashed())
	assert.Equal(t, vehicle.TowOffsetFirst, front.TowOffset())
	assert.Equal(t, vehicle.TowOffsetSecond, rear.TowOffset())

	// 拖挂车辆位置由拖车驱动
	vm.DragTowed()
	assert.Equal(t, truck.X()+vehicle.TowOffsetFirst, front.X())
	assert.Equal(t, truck.X()+vehicle.TowOffsetSecond, rear.X())
}

func TestCallAmbulanceTriggersWhenIdle(t *testing.T) {
	ctx := newTestCtx()
	vm := vehicle.NewManager(ctx)
	tracker := NewTracker(ctx, vm)
	vm.SpawnCarAt(entity.SideBottom, 1, 600)
	vm.SpawnCarAt(entity.SideBottom, 1, 750)

	amb := tracker.CallAmbulance()
	require.NotNil(t, amb)
	assert.Equal(t, entity.AccidentPending, tracker.State())
	assert.Equal(t, entity.AmbulancePatrol, amb.AmbulanceState())
}

func TestCallAmbulanceDispatchesWhenActive(t *testing.T) {
	tracker, vm, _, _ := newPendingPair(t)
	advanceToActive(t, tracker, vm)
	amb := tracker.CallAmbulance()
	require.NotNil(t, amb)
	assert.Equal(t, entity.AmbulanceToAccident, amb.AmbulanceState())
}

func TestRemovedParticipantResetsAccident(t *testing.T) {
	tracker, vm, front, rear := newPendingPair(t)
	rearHandle := rear.Handle()
	rear.MarkRemoved()
	vm.Prune(tracker.OnVehicleRemoved)

	assert.Equal(t, entity.AccidentNone, tracker.State())
	_, ok := vm.Resolve(rearHandle)
	assert.False(t, ok)
	// 幸存一方解除事故标志，恢复正常行驶
	assert.False(t, front.AccidentTarget())

	// 复位后句柄已置空，后续帧不会再解析到被移除车辆
	tracker.ResolveCollision()
	assert.Equal(t, entity.AccidentNone, tracker.State())
}
