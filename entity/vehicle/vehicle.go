package vehicle

import (
	"math"

	"github.com/tsinghua-fib-lab/microroad-sim-oss/entity"
	"github.com/tsinghua-fib-lab/microroad-sim-oss/entity/road"
	"github.com/tsinghua-fib-lab/microroad-sim-oss/utils/container"
)

// 车辆运动与事故参数，速度单位为距离单位/秒
const (
	CarSpeedMin    = 120.0 // 普通车辆速度下限
	CarSpeedMax    = 150.0 // 普通车辆速度上限
	AmbulanceSpeed = 270.0 // 救护车速度
	TowTruckSpeed  = 240.0 // 拖车速度

	RecklessFactor = 2.8 // 事故后车（肇事方）速度倍率
	TargetFactor   = 0.4 // 事故前车（受害方）速度倍率

	laneSmoothRate  = 5.0 // 变道平滑速率，60帧下约等价于每帧0.08的比例步进
	laneSnapEpsilon = 0.5 // 变道吸附阈值
)

// Vehicle 车辆实体
// 功能：表示模拟系统中的所有车辆，普通车辆、救护车与拖车共用同一运动模型，
// 救护车与拖车叠加各自的状态机字段
// 说明：车辆由所在道路的集合独占所有，事故与拖挂通过句柄保存弱引用
type Vehicle struct {
	id     int32
	handle container.Handle // 所有者集合中的稳定句柄，插入时填写
	kind   entity.VehicleKind
	side   entity.RoadSide

	x, y    float64
	targetY float64
	lane    int
	v       float64 // 速度（单位/秒）
	dir     float64 // 行驶方向，+1向右，-1向左

	moving      bool
	forcedStop  bool
	changedLane bool // 本次避让已变道，不再重复变道
	laneLock    bool // 禁止参与变道逻辑

	// 事故相关标志
	reckless       bool    // 肇事方，无视停车与避让规则
	accidentTarget bool    // 受害方
	crashed        bool    // 已碰撞，静止且不再自主运动
	towed          bool    // 被拖挂，位置由拖车驱动
	towOffset      float64 // 拖挂时相对拖车的X偏移
	toBeRemoved    bool    // 延迟删除标记

	// 救护车状态机
	ambState   entity.AmbulanceState
	ambTimer   float64
	ambTargetX float64 // 事故点X坐标
	ambTargetY float64 // 事故点Y坐标

	// 拖车状态机
	towState   entity.TowState
	towTimer   float64
	towTargetX float64 // 事故点X坐标
	pickedUp   bool
}

// Update 推进车辆基础运动
// 功能：按停车标志与时间步长推进位置，并执行变道平滑
// 参数：dt-时间步长（秒），stop-本帧是否要求停车
// 算法说明：
// 1. 已碰撞或被拖挂的车辆不自主运动（拖挂车辆位置由拖车驱动）
// 2. 肇事车辆无视任何停车要求
// 3. 运动中且未停车时沿行驶方向位移v*dt
// 4. Y坐标向目标车道指数平滑，进入吸附阈值后对齐
func (v *Vehicle) Update(dt float64, stop bool) {
	if v.crashed || v.towed {
		return
	}
	if v.reckless {
		stop = false
	}
	v.forcedStop = stop
	if v.moving && !stop {
		v.x += v.dir * v.v * dt
	}
	v.smoothLane(dt)
}

// smoothLane 变道平滑
// 说明：步进比例1-exp(-rate*dt)与帧率无关，60帧下每帧约前进剩余距离的8%
func (v *Vehicle) smoothLane(dt float64) {
	d := v.targetY - v.y
	if math.Abs(d) <= laneSnapEpsilon {
		v.y = v.targetY
		return
	}
	v.y += d * (1 - math.Exp(-laneSmoothRate*dt))
}

// switchLane 切换目标车道
// 参数：lane-目标车道下标，laneY-目标车道中心Y坐标
func (v *Vehicle) switchLane(lane int, laneY float64) {
	v.lane = lane
	v.targetY = laneY
	v.changedLane = true
}

// OffScreen 判断车辆是否已驶出画面
// 说明：越过行驶方向前方画面边缘外的固定余量
func (v *Vehicle) OffScreen() bool {
	if v.dir > 0 {
		return v.x > road.ScreenWidth+road.OffScreenMargin
	}
	return v.x < -road.OffScreenMargin
}

// onScreen 判断车辆是否在画面范围内（事故触发筛选用）
func (v *Vehicle) onScreen() bool {
	return v.x >= 0 && v.x <= road.ScreenWidth
}

// MarkReckless 标记为事故肇事车辆
// 功能：提速并锁定车道，此后无视停车与避让规则
func (v *Vehicle) MarkReckless() {
	v.reckless = true
	v.laneLock = true
	v.v *= RecklessFactor
}

// MarkAccidentTarget 标记为事故受害车辆
// 功能：减速并锁定车道，等待后车追尾
func (v *Vehicle) MarkAccidentTarget() {
	v.accidentTarget = true
	v.laneLock = true
	v.v *= TargetFactor
}

// MarkCrashed 标记为已碰撞
// 说明：碰撞后车辆静止，肇事标志同时清除
func (v *Vehicle) MarkCrashed() {
	v.crashed = true
	v.reckless = false
}

// AttachTow 挂上拖车
// 参数：offset-相对拖车的X偏移
func (v *Vehicle) AttachTow(offset float64) {
	v.towed = true
	v.crashed = false
	v.towOffset = offset
}

// ReleaseAccident 解除事故相关标志
// 说明：事故引用失效时的自愈处理，车速不回退
func (v *Vehicle) ReleaseAccident() {
	v.reckless = false
	v.accidentTarget = false
	v.laneLock = false
}

// MarkRemoved 标记为待删除，下一次清理时移除
func (v *Vehicle) MarkRemoved() {
	v.toBeRemoved = true
}

// ID 获取车辆ID
func (v *Vehicle) ID() int32 {
	return v.id
}

// Handle 获取车辆在所有者集合中的稳定句柄
func (v *Vehicle) Handle() container.Handle {
	return v.handle
}

// Kind 获取车辆类型
func (v *Vehicle) Kind() entity.VehicleKind {
	return v.kind
}

// Side 获取所在道路标识
func (v *Vehicle) Side() entity.RoadSide {
	return v.side
}

// X 获取X坐标
func (v *Vehicle) X() float64 {
	return v.x
}

// Y 获取Y坐标
func (v *Vehicle) Y() float64 {
	return v.y
}

// TargetY 获取目标车道Y坐标
func (v *Vehicle) TargetY() float64 {
	return v.targetY
}

// Lane 获取当前车道下标
func (v *Vehicle) Lane() int {
	return v.lane
}

// V 获取速度（单位/秒）
func (v *Vehicle) V() float64 {
	return v.v
}

// Dir 获取行驶方向
func (v *Vehicle) Dir() float64 {
	return v.dir
}

// ForcedStop 获取本帧是否处于强制停车
func (v *Vehicle) ForcedStop() bool {
	return v.forcedStop
}

// Reckless 获取是否为肇事车辆
func (v *Vehicle) Reckless() bool {
	return v.reckless
}

// AccidentTarget 获取是否为事故受害车辆
func (v *Vehicle) AccidentTarget() bool {
	return v.accidentTarget
}

// Crashed 获取是否已碰撞
func (v *Vehicle) Crashed() bool {
	return v.crashed
}

// Towed 获取是否被拖挂
func (v *Vehicle) Towed() bool {
	return v.towed
}

// TowOffset 获取拖挂偏移
func (v *Vehicle) TowOffset() float64 {
	return v.towOffset
}

// ToBeRemoved 获取是否已标记待删除
func (v *Vehicle) ToBeRemoved() bool {
	return v.toBeRemoved
}

// AccidentCandidate 判断车辆是否可被选为事故参与方
// 说明：仅限画面内、未被拖挂且未碰撞的普通车辆
func (v *Vehicle) AccidentCandidate() bool {
	return v.kind == entity.KindCar && !v.towed && !v.crashed && !v.toBeRemoved && v.onScreen()
}

// inAccident 判断车辆是否处于事故流程中（出界清理豁免）
func (v *Vehicle) inAccident() bool {
	return v.reckless || v.accidentTarget || v.crashed || v.towed
}
