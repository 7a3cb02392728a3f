package task

import (
	"github.com/tsinghua-fib-lab/microroad-sim-oss/entity"
)

// SoundCue 一次性音效提示
type SoundCue string

// SoundSiren 救护车警笛音效，呼叫救护车时触发
const SoundSiren SoundCue = "siren"

// VehicleView 车辆的逐帧输出视图
// 说明：渲染层据此绘制车辆，已碰撞车辆以异色渲染
type VehicleView struct {
	ID       int32              // 车辆ID
	Kind     entity.VehicleKind // 车辆类型
	Side     entity.RoadSide    // 所在道路
	X, Y     float64            // 位置
	Lane     int                // 当前车道下标
	Crashed  bool               // 是否已碰撞
	Towed    bool               // 是否被拖挂
	Reckless bool               // 是否为肇事车辆
}

// LightView 信号灯的逐帧输出视图
type LightView struct {
	Side entity.RoadSide // 所属道路
	Red  bool            // 是否为红灯
	X, Y float64         // 灯箱位置
}

// FrameOutput 单帧输出
// 功能：一帧推进后的全部可渲染状态与音效提示，表现层只读消费
// 说明：警报闪烁等表现状态由此对象逐帧携带，仿真内部不提供全局标志
type FrameOutput struct {
	Step int32   // 本帧步数
	T    float64 // 本帧结束时的仿真时间（秒）

	Vehicles []VehicleView       // 全部车辆
	Lights   []LightView         // 全部信号灯
	Accident entity.AccidentInfo // 事故状态快照

	AmbulanceActive bool // 画面上是否有救护车
	AlertFlash      bool // 警报边条是否点亮

	Sounds []SoundCue // 本帧触发的一次性音效
}

// RenderSink 渲染出口
// 说明：表现层协作方契约，每帧推进完成后以只读方式消费单帧输出
type RenderSink interface {
	Render(out *FrameOutput)
}

// SoundTrigger 音效出口
// 说明：一次性触发，不关心播放结果
type SoundTrigger interface {
	Play(cue SoundCue)
}
