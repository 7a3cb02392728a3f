package road

import (
	"math"

	"github.com/tsinghua-fib-lab/microroad-sim-oss/entity"
)

// 画面与道路几何常量，道路几何在模拟全程保持不变
const (
	ScreenWidth  = 1600 // 画面宽度
	ScreenHeight = 700  // 画面高度
	RoadHeight   = 140  // 单条道路高度
	LaneHeight   = 45   // 单条车道高度
	LaneCount    = 3    // 每条道路的车道数
	RoadYTop     = 110  // 上方道路的Y坐标
	RoadYBottom  = 280  // 下方道路的Y坐标

	VehicleWidth  = 90.0 // 车辆长度（沿行驶方向）
	VehicleHeight = 40.0 // 车辆宽度
	SafeDistance  = 45.0 // 安全车距：后车车头到前车车尾的最小间隔

	OffScreenMargin = 200.0 // 出界判定：越过画面边缘该距离后移除

	HospitalX         = 80.0 // 医院判定X坐标（下方道路左端）
	HospitalLaneIndex = 2    // 医院所在车道下标
)

// Road 道路实体
// 功能：描述一条道路的静态几何（车道Y坐标、行驶方向、生成位置）
// 说明：车道集合固定为3条，Y坐标在构造时一次性计算
type Road struct {
	side  entity.RoadSide
	dir   float64 // +1向右，-1向左
	laneY [LaneCount]float64
}

// New 创建道路实体
// 功能：根据道路标识计算车道几何
// 参数：side-道路标识
// 返回：初始化完成的道路实体
func New(side entity.RoadSide) *Road {
	roadY := float64(RoadYTop)
	dir := 1.0
	if side == entity.SideBottom {
		roadY = float64(RoadYBottom)
		dir = -1.0
	}
	r := &Road{side: side, dir: dir}
	for i := 0; i < LaneCount; i++ {
		r.laneY[i] = roadY + 10 + float64(i)*LaneHeight
	}
	return r
}

// Side 获取道路标识
func (r *Road) Side() entity.RoadSide {
	return r.side
}

// Dir 获取行驶方向，+1向右，-1向左
func (r *Road) Dir() float64 {
	return r.dir
}

// LaneCount 获取车道数
func (r *Road) LaneCount() int {
	return LaneCount
}

// LaneY 获取车道中心Y坐标
func (r *Road) LaneY(i int) float64 {
	return r.laneY[i]
}

// LaneIndexOf 获取Y坐标最接近的车道下标
// 功能：将连续的Y坐标（包括变道中的中间位置）归并到最近车道
func (r *Road) LaneIndexOf(y float64) int {
	best := 0
	bestD := math.Abs(y - r.laneY[0])
	for i := 1; i < LaneCount; i++ {
		if d := math.Abs(y - r.laneY[i]); d < bestD {
			bestD = d
			best = i
		}
	}
	return best
}

// NextLane 轮转获取下一条车道下标
// 说明：避让变道的目标车道选择策略，三条车道间轮转
func (r *Road) NextLane(i int) int {
	return (i + 1) % LaneCount
}

// SpawnX 获取车辆生成的X坐标
// 说明：在行驶方向起点一侧的画面外
func (r *Road) SpawnX() float64 {
	if r.dir > 0 {
		return -OffScreenMargin
	}
	return ScreenWidth + OffScreenMargin
}
