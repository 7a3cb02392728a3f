package entity

// 道路方位常量
const (
	SideTop    RoadSide = 0 // 上方道路，行驶方向向右（x增大）
	SideBottom RoadSide = 1 // 下方道路，行驶方向向左（x减小）
)

// RoadSide 道路标识
type RoadSide int32

// Sides 全部道路，按固定遍历顺序排列
var Sides = [2]RoadSide{SideTop, SideBottom}

// VehicleKind 车辆类型（封闭集合）
type VehicleKind int32

const (
	KindCar       VehicleKind = iota // 普通社会车辆
	KindAmbulance                    // 救护车
	KindTowTruck                     // 拖车
)

// String 获取车辆类型的字符串表示
func (k VehicleKind) String() string {
	switch k {
	case KindCar:
		return "car"
	case KindAmbulance:
		return "ambulance"
	case KindTowTruck:
		return "towtruck"
	default:
		return "unknown"
	}
}

// AmbulanceState 救护车状态机状态
type AmbulanceState int32

const (
	AmbulancePatrol         AmbulanceState = iota // 巡逻，与普通车辆一致的运动
	AmbulanceToAccident                           // 驶向事故点（始终向x减小方向）
	AmbulanceWaitAtAccident                       // 在事故点停留
	AmbulanceToHospital                           // 驶向医院
	AmbulanceWaitAtHospital                       // 在医院停留
	AmbulanceLeaving                              // 驶离画面（终态，由出界清理移除）
)

// TowState 拖车状态机状态
type TowState int32

const (
	TowMovingToTarget TowState = iota // 驶向事故点
	TowWorking                        // 在事故点作业
	TowLeaving                        // 已完成拖挂，反向驶离
)

// AccidentState 事故生命周期状态
type AccidentState int32

const (
	AccidentNone    AccidentState = iota // 无事故
	AccidentPending                      // 已触发，后车正在逼近前车
	AccidentActive                       // 已碰撞，两车停驶待拖离
)

// AccidentInfo 事故状态快照
// 功能：向交通规则与输出层暴露事故的只读视图，不携带车辆引用
type AccidentInfo struct {
	State AccidentState // 当前状态
	X, Y  float64       // 碰撞点坐标（active时有效）
	Side  RoadSide      // 事故所在道路
	Lane  int           // 事故所在车道下标
}

// entity/road/road.go的依赖倒置
type IRoad interface {
	Side() RoadSide            // 获取道路标识
	Dir() float64              // 获取行驶方向，+1向右，-1向左
	LaneCount() int            // 获取车道数
	LaneY(i int) float64       // 获取车道中心Y坐标
	LaneIndexOf(y float64) int // 获取Y坐标最接近的车道下标
	NextLane(i int) int        // 轮转获取下一条车道下标（变道目标选择）
	SpawnX() float64           // 获取车辆生成的X坐标（画面外）
}

// entity/trafficlight/trafficlight.go的依赖倒置
type ITrafficLight interface {
	IsRed() bool                                 // 获取当前是否为红灯
	StopLineX(approachingFromRight bool) float64 // 获取停止线X坐标，按接近方向取偏移
	X() float64                                  // 获取灯箱X坐标
	Y() float64                                  // 获取灯箱Y坐标
	Timer() float64                              // 获取当前相位已累积时间
	CycleTime() float64                          // 获取红绿切换周期
	Update(dt float64)                           // 推进计时，到达周期时翻转红绿
}
