package task

import (
	"sync/atomic"

	"github.com/tsinghua-fib-lab/microroad-sim-oss/clock"
	"github.com/tsinghua-fib-lab/microroad-sim-oss/entity"
	"github.com/tsinghua-fib-lab/microroad-sim-oss/entity/accident"
	"github.com/tsinghua-fib-lab/microroad-sim-oss/entity/road"
	"github.com/tsinghua-fib-lab/microroad-sim-oss/entity/trafficlight"
	"github.com/tsinghua-fib-lab/microroad-sim-oss/entity/vehicle"
	"github.com/tsinghua-fib-lab/microroad-sim-oss/utils/config"
	"github.com/tsinghua-fib-lab/microroad-sim-oss/utils/input"
	"github.com/tsinghua-fib-lab/microroad-sim-oss/utils/randengine"
)

// Context 仿真任务上下文
// 功能：包含一次仿真任务的所有变量和状态，替代全局变量
// 说明：持有时钟、各管理器、事故跟踪器与输入事件源；
// 道路与信号灯通过entity接口下发给车辆模块，车辆与事故管理器由task直接持有
type Context struct {
	// 关闭指令
	closed atomic.Bool

	// 时钟
	clock *clock.Clock
	// 运行时配置文件
	runtimeConfig *config.RuntimeConfig
	// 随机数引擎
	rand *randengine.Engine

	// Road管理器
	roadManager *road.Manager
	// TrafficLight管理器
	trafficLightManager *trafficlight.Manager
	// Vehicle管理器
	vehicleManager *vehicle.Manager
	// 事故跟踪器
	tracker *accident.Tracker

	// 脚本化输入事件源
	events *input.Source

	// 警报闪烁状态，画面上有救护车时以固定周期翻转
	alertTimer float64
	alertOn    bool

	// 表现层出口
	renderSink   RenderSink
	soundTrigger SoundTrigger
}

// NewContext 创建新的仿真任务上下文
// 功能：初始化仿真系统的所有组件和配置
// 参数：c-配置对象
// 返回：初始化完成的Context实例
// 算法说明：
// 1. 创建运行时配置并补全缺省项，时钟由补全后的配置建立
// 2. 以配置种子创建随机数引擎
// 3. 创建道路、信号灯管理器（静态环境）
// 4. 创建车辆管理器与事故跟踪器
// 5. 根据配置构建脚本化输入事件源
func NewContext(c config.Config) *Context {
	ctx := &Context{}
	ctx.runtimeConfig = config.NewRuntimeConfig(c)
	ctx.clock = clock.New(ctx.runtimeConfig.C.Step)
	ctx.rand = randengine.New(ctx.runtimeConfig.C.Seed)

	ctx.roadManager = road.NewManager()
	ctx.trafficLightManager = trafficlight.NewManager(ctx.runtimeConfig.T.LightCycle)
	ctx.vehicleManager = vehicle.NewManager(ctx)
	ctx.tracker = accident.NewTracker(ctx, ctx.vehicleManager)

	ctx.events = input.New(c.Events)
	return ctx
}

// Clock 获取时钟
func (ctx *Context) Clock() *clock.Clock {
	return ctx.clock
}

// RuntimeConfig 获取运行时配置
func (ctx *Context) RuntimeConfig() *config.RuntimeConfig {
	return ctx.runtimeConfig
}

// Rand 获取随机数引擎
func (ctx *Context) Rand() *randengine.Engine {
	return ctx.rand
}

// RoadManager 获取道路管理器
func (ctx *Context) RoadManager() entity.IRoadManager {
	return ctx.roadManager
}

// TrafficLightManager 获取信号灯管理器
func (ctx *Context) TrafficLightManager() entity.ITrafficLightManager {
	return ctx.trafficLightManager
}

// VehicleManager 获取车辆管理器
func (ctx *Context) VehicleManager() *vehicle.Manager {
	return ctx.vehicleManager
}

// Accident 获取事故跟踪器
func (ctx *Context) Accident() *accident.Tracker {
	return ctx.tracker
}

// Input 获取输入事件源
func (ctx *Context) Input() *input.Source {
	return ctx.events
}

// SetRenderSink 安装渲染出口
func (ctx *Context) SetRenderSink(s RenderSink) {
	ctx.renderSink = s
}

// SetSoundTrigger 安装音效出口
func (ctx *Context) SetSoundTrigger(s SoundTrigger) {
	ctx.soundTrigger = s
}

// Init 初始化仿真状态
// 功能：重置时钟并完成初始车辆投放
func (ctx *Context) Init() {
	ctx.clock.Init()
	ctx.vehicleManager.Init()
}

// Close 发出关闭指令，Run循环在当前帧结束后退出
func (ctx *Context) Close() {
	ctx.closed.Store(true)
}
