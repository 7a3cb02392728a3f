package trafficlight

import (
	"github.com/tsinghua-fib-lab/microroad-sim-oss/entity"
	"github.com/tsinghua-fib-lab/microroad-sim-oss/entity/road"
)

// 信号灯几何常量
const (
	BoxWidth  = 20.0 // 灯箱宽度
	BoxHeight = 60.0 // 灯箱高度

	StopLineOffset = 40.0 // 停止线相对灯箱的偏移
	StopRadius     = 50.0 // 停车判定半径：红灯时位于停止线两侧该范围内的车辆停车
)

// TrafficLight 信号灯实体
// 功能：维护单条道路的红绿灯状态，按固定周期在红绿间切换
// 说明：计时器累计帧时间，达到周期时长即翻转相位并清零，初始为绿灯
type TrafficLight struct {
	side      entity.RoadSide
	x, y      float64
	timer     float64
	red       bool
	cycleTime float64
}

// New 创建信号灯实体
// 参数：side-所属道路标识，cycleTime-单相位时长（秒）
func New(side entity.RoadSide, cycleTime float64) *TrafficLight {
	t := &TrafficLight{side: side, cycleTime: cycleTime}
	if side == entity.SideTop {
		t.x = road.ScreenWidth/2 - 80
		t.y = road.RoadYTop - BoxHeight - 10
	} else {
		t.x = road.ScreenWidth/2 - 150
		t.y = road.RoadYBottom + road.RoadHeight + 10
	}
	return t
}

// Update 推进信号灯计时
// 功能：累计帧时间，满一个相位时长即翻转红绿状态
// 参数：dt-时间步长（秒）
func (t *TrafficLight) Update(dt float64) {
	t.timer += dt
	for t.timer >= t.cycleTime {
		t.timer -= t.cycleTime
		t.red = !t.red
	}
}

// IsRed 获取当前是否为红灯
func (t *TrafficLight) IsRed() bool {
	return t.red
}

// StopLineX 获取停止线X坐标
// 功能：按车辆接近方向返回灯箱下游一侧的停止线位置
// 参数：approachingFromRight-车辆是否自右侧接近（向x减小方向行驶）
func (t *TrafficLight) StopLineX(approachingFromRight bool) float64 {
	if approachingFromRight {
		return t.x - StopLineOffset
	}
	return t.x + BoxWidth + StopLineOffset
}

// X 获取灯箱左上角X坐标
func (t *TrafficLight) X() float64 {
	return t.x
}

// Y 获取灯箱左上角Y坐标
func (t *TrafficLight) Y() float64 {
	return t.y
}

// Timer 获取当前相位内已经过的时间（秒）
func (t *TrafficLight) Timer() float64 {
	return t.timer
}

// CycleTime 获取单相位时长（秒）
func (t *TrafficLight) CycleTime() float64 {
	return t.cycleTime
}
