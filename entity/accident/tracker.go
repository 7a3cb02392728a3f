package accident

import (
	"git.fiblab.net/general/common/v2/geometry"

	"github.com/tsinghua-fib-lab/microroad-sim-oss/entity"
	"github.com/tsinghua-fib-lab/microroad-sim-oss/entity/road"
	"github.com/tsinghua-fib-lab/microroad-sim-oss/entity/vehicle"
	"github.com/tsinghua-fib-lab/microroad-sim-oss/utils/container"
)

// 事故触发与碰撞判定窗口
const (
	TriggerGapMin = 110.0 // 触发时前后车间距下界
	TriggerGapMax = 400.0 // 触发时前后车间距上界

	// 碰撞判定：后车减前车的沿行驶方向间距落入(-车长, 车长-10)时视为追尾
	// 说明：间距沿行驶方向取向，不对称的窗口边界在下方道路按原始X差镜像
	collisionGapMin = -road.VehicleWidth
	collisionGapMax = road.VehicleWidth - 10
)

// Tracker 事故生命周期跟踪器
// 功能：维护全局至多一个事故的none/pending/active状态机，
// 负责事故触发、碰撞判定、救援车辆派遣与拖离后的清场
// 说明：对参与车辆只保存稳定句柄（弱引用），在使用点解析；
// 所有者移除车辆时通过OnVehicleRemoved在同帧内完成自愈复位
type Tracker struct {
	ctx entity.ITaskContext
	vm  *vehicle.Manager

	state entity.AccidentState
	front container.Handle // 前车（受害方）
	rear  container.Handle // 后车（肇事方）
	pos   geometry.Point   // 碰撞点坐标，active时有效
	side  entity.RoadSide  // 事故所在道路
	lane  int              // 事故所在车道
}

// NewTracker 创建事故跟踪器
// 参数：ctx-任务上下文，vm-车辆管理器（车辆的独占所有者）
func NewTracker(ctx entity.ITaskContext, vm *vehicle.Manager) *Tracker {
	return &Tracker{
		ctx: ctx,
		vm:  vm,
	}
}

// State 获取当前事故状态
func (t *Tracker) State() entity.AccidentState {
	return t.state
}

// Front 获取前车句柄
func (t *Tracker) Front() container.Handle {
	return t.front
}

// Rear 获取后车句柄
func (t *Tracker) Rear() container.Handle {
	return t.rear
}

// Info 获取事故状态快照
// 返回：交通规则与输出层使用的只读视图
func (t *Tracker) Info() entity.AccidentInfo {
	return entity.AccidentInfo{
		State: t.state,
		X:     t.pos.X,
		Y:     t.pos.Y,
		Side:  t.side,
		Lane:  t.lane,
	}
}

// TriggerRandom 尝试触发一起事故
// 功能：扫描同道路同车道的车辆对，选取沿行驶方向间距落入触发窗口的首个配对，
// 后车提速为肇事方、前车减速为受害方，事故进入pending
// 返回：是否成功触发
// 算法说明：
// 1. 已有事故未了结时为静默空操作
// 2. 候选车辆须为画面内、未被拖挂且未碰撞的普通车辆
// 3. 配对按集合遍历顺序取首个满足条件者，无最近优先保证
// 4. 两车同时锁定车道，避免在追尾前避让走位
func (t *Tracker) TriggerRandom() bool {
	if t.state != entity.AccidentNone {
		log.Debug("accident already outstanding, trigger ignored")
		return false
	}
	for _, side := range entity.Sides {
		r := t.ctx.RoadManager().Get(side)
		vs := t.vm.VehiclesOn(side)
		for _, front := range vs {
			if !front.AccidentCandidate() {
				continue
			}
			for _, rear := range vs {
				if rear == front || !rear.AccidentCandidate() || rear.Lane() != front.Lane() {
					continue
				}
				gap := (front.X() - rear.X()) * r.Dir()
				if gap <= TriggerGapMin || gap >= TriggerGapMax {
					continue
				}
				rear.MarkReckless()
				front.MarkAccidentTarget()
				t.front = front.Handle()
				t.rear = rear.Handle()
				t.side = side
				t.lane = front.Lane()
				t.state = entity.AccidentPending
				log.Infof("accident pending: rear %d chasing front %d, gap %.1f", rear.ID(), front.ID(), gap)
				return true
			}
		}
	}
	log.Debug("no qualifying vehicle pair for accident")
	return false
}

// ResolveCollision 碰撞判定
// 功能：pending期间逐帧检查两车间距，进入碰撞窗口时转为active
// 算法说明：
//  1. 解析两侧句柄，任一失效则立即复位（自愈，不应在正常清理顺序下发生）
//  2. 后车减前车的沿行驶方向间距落入碰撞窗口时：两车置为已碰撞并静止，
//     后车肇事标志清除，碰撞点取前车当前位置
//  3. 转为active的同帧内，重派所有可接受派遣的救护车
func (t *Tracker) ResolveCollision() {
	if t.state != entity.AccidentPending {
		return
	}
	front, okF := t.vm.Resolve(t.front)
	rear, okR := t.vm.Resolve(t.rear)
	if !okF || !okR {
		log.Warn("pending accident lost a participant, reset")
		t.reset()
		return
	}
	gap := (rear.X() - front.X()) * front.Dir()
	if gap <= collisionGapMin || gap >= collisionGapMax {
		return
	}
	t.pos = geometry.Point{X: front.X(), Y: front.Y()}
	front.MarkCrashed()
	rear.MarkCrashed()
	t.state = entity.AccidentActive
	t.vm.DispatchAmbulances(t.pos.X, t.pos.Y)
	log.Infof("accident active at (%.1f, %.1f), gap %.1f", t.pos.X, t.pos.Y, gap)
}

// CallAmbulance 呼叫救护车
// 功能：没有事故时先尝试触发一起，随后生成救护车；
// 事故已经发生时救护车立即获得碰撞点派遣
// 返回：生成的救护车
func (t *Tracker) CallAmbulance() *vehicle.Vehicle {
	if t.state == entity.AccidentNone {
		t.TriggerRandom()
	}
	amb := t.vm.SpawnAmbulance()
	if t.state == entity.AccidentActive {
		amb.Dispatch(t.pos.X, t.pos.Y)
	}
	return amb
}

// CallTowTruck 呼叫拖车
// 功能：事故已经发生时生成拖车并指向碰撞点
// 返回：生成的拖车；没有已发生的事故时为静默空操作，返回nil
func (t *Tracker) CallTowTruck() *vehicle.Vehicle {
	if t.state != entity.AccidentActive {
		log.Debug("no active accident, tow call ignored")
		return nil
	}
	return t.vm.SpawnTowTruck(t.side, t.lane, t.pos.X)
}

// UpdateTowing 拖挂交接
// 功能：拖车完成起吊后，把两辆事故车挂上拖车并了结事故
// 说明：挂载后车辆位置由车辆管理器逐帧驱动，事故复位为none
func (t *Tracker) UpdateTowing() {
	if t.state != entity.AccidentActive {
		return
	}
	truck := t.vm.FirstTowTruck()
	if truck == nil || !truck.PickedUp() {
		return
	}
	if front, ok := t.vm.Resolve(t.front); ok {
		front.AttachTow(vehicle.TowOffsetFirst)
	}
	if rear, ok := t.vm.Resolve(t.rear); ok {
		rear.AttachTow(vehicle.TowOffsetSecond)
	}
	t.reset()
	log.Infof("accident towed away by truck %d", truck.ID())
}

// OnVehicleRemoved 车辆移除回调
// 功能：被引用的参与车辆从所有者集合中移除时，在同帧内置空弱引用并复位事故，
// 幸存一方解除事故相关标志
// 参数：h-被移除车辆的句柄
func (t *Tracker) OnVehicleRemoved(h container.Handle) {
	if t.state == entity.AccidentNone {
		return
	}
	if h != t.front && h != t.rear {
		return
	}
	other := t.front
	if h == t.front {
		other = t.rear
	}
	if v, ok := t.vm.Resolve(other); ok {
		v.ReleaseAccident()
	}
	log.Warn("accident participant removed, reset")
	t.reset()
}

// reset 复位事故状态并置空全部弱引用
func (t *Tracker) reset() {
	t.state = entity.AccidentNone
	t.front = container.Handle{}
	t.rear = container.Handle{}
}
