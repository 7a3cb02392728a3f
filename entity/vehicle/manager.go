package vehicle

import (
	"github.com/samber/lo"

	"github.com/tsinghua-fib-lab/microroad-sim-oss/entity"
	"github.com/tsinghua-fib-lab/microroad-sim-oss/entity/road"
	"github.com/tsinghua-fib-lab/microroad-sim-oss/utils/container"
)

// 初始车辆投放参数
const (
	initCarsPerRoad = 3     // 初始化时每条道路的车辆数
	initCarSpacing  = 300.0 // 初始车辆沿行驶方向的间隔
)

// Manager 车辆管理器
// 功能：独占持有全部车辆，维护两条道路各自的有序集合，
// 提供生成、查找、清理、拖挂驱动与逐帧交通规则推进
// 说明：车辆存储在带代数校验的槽位数组中，事故模块只保存句柄，
// 删除车辆后旧句柄解析失败而不会悬垂
type Manager struct {
	ctx entity.ITaskContext

	arena *container.Slots[*Vehicle]
	roads [2][]container.Handle // 每条道路的车辆句柄，按插入顺序

	spawnTimer    [2]float64 // 每条道路距下次生成的剩余时间
	nextVehicleID int32
}

// NewManager 创建车辆管理器实例
// 参数：ctx-任务上下文
// 返回：新创建的车辆管理器实例
func NewManager(ctx entity.ITaskContext) *Manager {
	m := &Manager{
		ctx:           ctx,
		arena:         container.NewSlots[*Vehicle](),
		nextVehicleID: 1,
	}
	for _, side := range entity.Sides {
		m.roads[side] = make([]container.Handle, 0)
		m.spawnTimer[side] = m.nextSpawnInterval()
	}
	return m
}

// Init 初始车辆投放
// 功能：在每条道路上沿行驶方向交错投放若干车辆
// 说明：从生成边缘向画面外依次排开，进入画面时保持序列间隔
func (m *Manager) Init() {
	for _, r := range m.ctx.RoadManager().Roads() {
		for i := 0; i < initCarsPerRoad; i++ {
			lane := i % r.LaneCount()
			x := r.SpawnX() - r.Dir()*float64(i)*initCarSpacing
			m.SpawnCarAt(r.Side(), lane, x)
		}
	}
	log.Infof("init: %d vehicles seeded", m.arena.Len())
}

// nextSpawnInterval 采样下一次车辆生成间隔
func (m *Manager) nextSpawnInterval() float64 {
	t := m.ctx.RuntimeConfig().T
	return m.ctx.Rand().UniformF(t.CarSpawnMin, t.CarSpawnMax)
}

// insert 将车辆放入所属道路的集合
// 返回：车辆的稳定句柄
func (m *Manager) insert(v *Vehicle) container.Handle {
	h := m.arena.Insert(v)
	v.handle = h
	m.roads[v.side] = append(m.roads[v.side], h)
	return h
}

// Resolve 解析车辆句柄
// 功能：返回句柄指向的车辆
// 返回：车辆与是否存活；车辆已被移除时返回(nil, false)
func (m *Manager) Resolve(h container.Handle) (*Vehicle, bool) {
	return m.arena.Get(h)
}

// Len 获取存活车辆总数
func (m *Manager) Len() int {
	return m.arena.Len()
}

// VehiclesOn 获取指定道路上的全部车辆，按集合顺序
func (m *Manager) VehiclesOn(side entity.RoadSide) []*Vehicle {
	vs := make([]*Vehicle, 0, len(m.roads[side]))
	for _, h := range m.roads[side] {
		if v, ok := m.arena.Get(h); ok {
			vs = append(vs, v)
		}
	}
	return vs
}

// All 获取全部车辆，按上、下道路顺序
func (m *Manager) All() []*Vehicle {
	return append(m.VehiclesOn(entity.SideTop), m.VehiclesOn(entity.SideBottom)...)
}

// randomLane 按等权离散分布随机选择一个车道下标
func (m *Manager) randomLane(r entity.IRoad) int {
	weights := make([]float64, r.LaneCount())
	for i := range weights {
		weights[i] = 1
	}
	return int(m.ctx.Rand().DiscreteDistribution(weights))
}

// SpawnCar 在指定道路生成一辆普通车辆
// 功能：随机选择车道与车速，从生成边缘驶入
func (m *Manager) SpawnCar(side entity.RoadSide) *Vehicle {
	r := m.ctx.RoadManager().Get(side)
	return m.SpawnCarAt(side, m.randomLane(r), r.SpawnX())
}

// SpawnCarAt 在指定道路的指定车道与位置生成一辆普通车辆
// 参数：side-道路标识，lane-车道下标，x-初始X坐标
// 返回：生成的车辆
func (m *Manager) SpawnCarAt(side entity.RoadSide, lane int, x float64) *Vehicle {
	r := m.ctx.RoadManager().Get(side)
	v := &Vehicle{
		id:      m.nextVehicleID,
		kind:    entity.KindCar,
		side:    side,
		x:       x,
		y:       r.LaneY(lane),
		targetY: r.LaneY(lane),
		lane:    lane,
		v:       m.ctx.Rand().UniformF(CarSpeedMin, CarSpeedMax),
		dir:     r.Dir(),
		moving:  true,
	}
	m.nextVehicleID++
	m.insert(v)
	return v
}

// SpawnAmbulance 生成一辆救护车
// 功能：在下方道路（医院所在道路）的生成边缘投放，初始为巡逻状态
// 返回：生成的救护车
func (m *Manager) SpawnAmbulance() *Vehicle {
	side := entity.SideBottom
	r := m.ctx.RoadManager().Get(side)
	lane := m.randomLane(r)
	v := &Vehicle{
		id:       m.nextVehicleID,
		kind:     entity.KindAmbulance,
		side:     side,
		x:        r.SpawnX(),
		y:        r.LaneY(lane),
		targetY:  r.LaneY(lane),
		lane:     lane,
		v:        AmbulanceSpeed,
		dir:      r.Dir(),
		moving:   true,
		ambState: entity.AmbulancePatrol,
	}
	m.nextVehicleID++
	m.insert(v)
	log.Infof("spawn ambulance %d", v.id)
	return v
}

// SpawnTowTruck 生成一辆拖车
// 功能：在事故所在道路的右侧画面外投放，驶向事故点
// 参数：side-事故所在道路，lane-事故所在车道，targetX-事故点X坐标
// 返回：生成的拖车
// 说明：拖车始终向x减小方向接近事故点，完成拖挂后反向驶离
func (m *Manager) SpawnTowTruck(side entity.RoadSide, lane int, targetX float64) *Vehicle {
	r := m.ctx.RoadManager().Get(side)
	v := &Vehicle{
		id:         m.nextVehicleID,
		kind:       entity.KindTowTruck,
		side:       side,
		x:          road.ScreenWidth + road.OffScreenMargin,
		y:          r.LaneY(lane),
		targetY:    r.LaneY(lane),
		lane:       lane,
		v:          TowTruckSpeed,
		dir:        r.Dir(),
		moving:     true,
		towState:   entity.TowMovingToTarget,
		towTargetX: targetX,
	}
	m.nextVehicleID++
	m.insert(v)
	log.Infof("spawn towtruck %d target x=%.1f", v.id, targetX)
	return v
}

// UpdateSpawning 推进车辆生成计时
// 功能：每条道路按独立的随机间隔生成普通车辆
// 参数：dt-时间步长（秒）
func (m *Manager) UpdateSpawning(dt float64) {
	for _, side := range entity.Sides {
		m.spawnTimer[side] -= dt
		if m.spawnTimer[side] <= 0 {
			m.SpawnCar(side)
			m.spawnTimer[side] = m.nextSpawnInterval()
		}
	}
}

// Prune 清理出界与待删除车辆
// 功能：从各道路集合中移除出界或已标记删除的车辆并释放槽位
// 参数：onRemoved-每移除一辆车时回调其句柄，供事故模块在同帧内置空弱引用
// 说明：处于事故流程中的车辆豁免普通出界清理，直到被显式释放；
// 拖车驶离方向与生成方向相反，使用单独的出界判定
func (m *Manager) Prune(onRemoved func(h container.Handle)) {
	for _, side := range entity.Sides {
		kept := m.roads[side][:0]
		for _, h := range m.roads[side] {
			v, ok := m.arena.Get(h)
			if !ok {
				continue
			}
			remove := v.toBeRemoved ||
				(!v.inAccident() && (v.OffScreen() || v.towOffScreen()))
			if !remove {
				kept = append(kept, h)
				continue
			}
			m.arena.Free(h)
			if onRemoved != nil {
				onRemoved(h)
			}
			log.Debugf("prune %s %d", v.kind, v.id)
		}
		m.roads[side] = kept
	}
}

// FirstTowTruck 获取第一辆拖车
// 返回：拖车，不存在时为nil
func (m *Manager) FirstTowTruck() *Vehicle {
	t, _ := lo.Find(m.All(), func(v *Vehicle) bool {
		return v.kind == entity.KindTowTruck
	})
	return t
}

// ReleaseOrphanedTows 孤儿拖挂清理
// 功能：当画面上没有拖车、或拖车已驶出画面时，把仍挂着拖挂标记的车辆标记删除
// 说明：防止拖车消失后挂载车辆永远滞留在画面外
func (m *Manager) ReleaseOrphanedTows() {
	truck := m.FirstTowTruck()
	if truck != nil && !truck.towOffScreen() {
		return
	}
	for _, v := range m.All() {
		if v.towed {
			v.MarkRemoved()
			log.Debugf("orphaned towed vehicle %d marked for removal", v.id)
		}
	}
}

// DragTowed 驱动拖挂车辆位置
// 功能：把所有被拖挂车辆的位置对齐到拖车位置加各自偏移
func (m *Manager) DragTowed() {
	truck := m.FirstTowTruck()
	if truck == nil {
		return
	}
	for _, v := range m.All() {
		if v.towed {
			v.x = truck.x + v.towOffset
			v.y = truck.y
			v.targetY = truck.y
		}
	}
}

// DispatchAmbulances 派遣所有可接受派遣的救护车
// 参数：x,y-碰撞点坐标
func (m *Manager) DispatchAmbulances(x, y float64) {
	for _, v := range m.All() {
		if v.dispatchEligible() {
			v.Dispatch(x, y)
		}
	}
}

// SteerAmbulances 按状态引导救护车的目标车道
// 功能：在途时指向事故所在车道，处理完毕后指向医院车道
func (m *Manager) SteerAmbulances() {
	r := m.ctx.RoadManager().Get(entity.SideBottom)
	hospitalY := r.LaneY(road.HospitalLaneIndex)
	for _, v := range m.All() {
		if v.kind != entity.KindAmbulance {
			continue
		}
		switch v.ambState {
		case entity.AmbulanceToAccident:
			v.targetY = v.ambTargetY
		case entity.AmbulanceToHospital, entity.AmbulanceWaitAtHospital, entity.AmbulanceLeaving:
			v.targetY = hospitalY
		}
	}
}

// HasAmbulanceOnScreen 判断画面上是否存在救护车
func (m *Manager) HasAmbulanceOnScreen() bool {
	return lo.SomeBy(m.All(), func(v *Vehicle) bool {
		return v.kind == entity.KindAmbulance && v.onScreen()
	})
}
