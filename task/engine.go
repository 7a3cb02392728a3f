package task

import (
	"flag"

	"github.com/samber/lo"

	"github.com/tsinghua-fib-lab/microroad-sim-oss/entity"
	"github.com/tsinghua-fib-lab/microroad-sim-oss/entity/vehicle"
	"github.com/tsinghua-fib-lab/microroad-sim-oss/utils/input"
)

// AlertFlashPeriod 警报边条的翻转周期（秒）
const AlertFlashPeriod = 0.5

var (
	heartBeatInterval = flag.Int("log.heartbeat_interval", 600, "心跳日志间隔步数")
)

// Step 推进一帧
// 功能：取出当前步的输入事件并执行一次完整的帧推进
// 参数：dt-本帧时间间隔（秒），由外部帧钟提供，无头运行时取时钟默认值
// 返回：本帧输出
func (ctx *Context) Step(dt float64) *FrameOutput {
	events := ctx.events.PopFrame(ctx.clock.InternalStep)
	return ctx.step(dt, events)
}

// step 单帧推进
// 功能：按固定阶段顺序完成一帧内的全部状态变更并产出单帧输出
// 参数：dt-本帧时间间隔（秒），events-本帧交付的离散输入事件
// 算法说明：
// 0. 输入事件：呼叫救护车/拖车、触发事故，每种每帧至多一次
// 1. 孤儿拖挂清理：拖车缺失或已驶离时标记滞留的拖挂车辆
// 2. 生成：各道路按随机间隔生成车辆，并按概率随机触发事故
// 3. 推进信号灯计时
// 4. 清理出界与待删除车辆，移除即回调事故跟踪器置空弱引用
// 5. 碰撞判定：pending事故检查两车间距
// 6. 拖挂交接与拖挂车辆位置驱动
// 7. 按状态引导救护车目标车道
// 8. 交通规则推进：让行、避让、红灯、跟车与逐车位移
// 9. 警报闪烁状态更新
// 说明：单线程顺序执行，阶段顺序即并发契约，后续阶段只会通过失效句柄
// 观察到先前阶段移除的车辆
func (ctx *Context) step(dt float64, events []input.EventType) *FrameOutput {
	if ctx.clock.InternalStep%int32(*heartBeatInterval) == 0 {
		hour, minute, second := ctx.clock.GetHourMinuteSecond()
		log.Infof(
			"STEP: %d(%d:%d:%.2f) vehicles: %d",
			ctx.clock.InternalStep,
			hour, minute, second,
			ctx.vehicleManager.Len(),
		)
	}
	out := &FrameOutput{Step: ctx.clock.InternalStep}

	for _, e := range events {
		switch e {
		case input.EventAmbulance:
			ctx.tracker.CallAmbulance()
			out.Sounds = append(out.Sounds, SoundSiren)
		case input.EventTowTruck:
			ctx.tracker.CallTowTruck()
		case input.EventAccident:
			ctx.tracker.TriggerRandom()
		}
	}

	ctx.vehicleManager.ReleaseOrphanedTows()

	ctx.vehicleManager.UpdateSpawning(dt)
	if p := ctx.runtimeConfig.AccidentP; p > 0 && ctx.rand.PTrue(p*dt) {
		ctx.tracker.TriggerRandom()
	}

	ctx.trafficLightManager.Update(dt)

	ctx.vehicleManager.Prune(ctx.tracker.OnVehicleRemoved)

	ctx.tracker.ResolveCollision()

	ctx.tracker.UpdateTowing()
	ctx.vehicleManager.DragTowed()

	ctx.vehicleManager.SteerAmbulances()

	ctx.vehicleManager.UpdateTraffic(dt, ctx.tracker.Info())

	ctx.updateAlert(dt)

	ctx.clock.Advance(dt)
	ctx.fillOutput(out)
	return out
}

// updateAlert 警报闪烁状态更新
// 功能：画面上有救护车时按固定周期翻转警报状态，否则熄灭并清零计时
func (ctx *Context) updateAlert(dt float64) {
	if !ctx.vehicleManager.HasAmbulanceOnScreen() {
		ctx.alertTimer = 0
		ctx.alertOn = false
		return
	}
	ctx.alertTimer += dt
	for ctx.alertTimer >= AlertFlashPeriod {
		ctx.alertTimer -= AlertFlashPeriod
		ctx.alertOn = !ctx.alertOn
	}
}

// fillOutput 填充单帧输出
func (ctx *Context) fillOutput(out *FrameOutput) {
	out.T = ctx.clock.T
	out.Vehicles = lo.Map(ctx.vehicleManager.All(), func(v *vehicle.Vehicle, _ int) VehicleView {
		return VehicleView{
			ID:       v.ID(),
			Kind:     v.Kind(),
			Side:     v.Side(),
			X:        v.X(),
			Y:        v.Y(),
			Lane:     v.Lane(),
			Crashed:  v.Crashed(),
			Towed:    v.Towed(),
			Reckless: v.Reckless(),
		}
	})
	for _, side := range entity.Sides {
		l := ctx.trafficLightManager.Get(side)
		out.Lights = append(out.Lights, LightView{
			Side: side,
			Red:  l.IsRed(),
			X:    l.X(),
			Y:    l.Y(),
		})
	}
	out.Accident = ctx.tracker.Info()
	out.AmbulanceActive = ctx.vehicleManager.HasAmbulanceOnScreen()
	out.AlertFlash = ctx.alertOn
}

// Run 运行
// 功能：无头运行主循环，按时钟默认帧间隔推进到结束步
// 说明：每帧推进后依次交付渲染出口与音效出口
func (ctx *Context) Run() {
	ctx.Init()
	for ctx.clock.InternalStep < ctx.clock.END_STEP {
		out := ctx.Step(ctx.clock.DT)
		if ctx.renderSink != nil {
			ctx.renderSink.Render(out)
		}
		if ctx.soundTrigger != nil {
			for _, cue := range out.Sounds {
				ctx.soundTrigger.Play(cue)
			}
		}
		if ctx.closed.Load() {
			break
		}
	}
	log.Infof("engine complete")
}
