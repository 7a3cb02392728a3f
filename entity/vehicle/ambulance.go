package vehicle

import (
	"github.com/tsinghua-fib-lab/microroad-sim-oss/entity"
	"github.com/tsinghua-fib-lab/microroad-sim-oss/entity/road"
)

// 救护车状态机参数
const (
	AmbulanceAccidentStandoff = 160.0 // 到达事故点的停靠偏移
	AmbulanceWaitTime         = 5.0   // 事故点与医院的停留时长（秒）
	AmbulanceLeavingFactor    = 2.5   // 离开医院后的速度倍率
)

// UpdateAmbulance 推进救护车状态机
// 功能：按当前状态推进位置与计时，处理全部状态转移
// 参数：dt-时间步长（秒）
// 算法说明：
// 1. Patrol：与普通车辆一致的运动，等待外部派遣
// 2. ToAccident：向x减小方向全速行驶，到达事故点前方停靠偏移处吸附并转入等待
// 3. WaitAtAccident：静止计时，满时长后转入驶向医院
// 4. ToHospital：继续向x减小方向行驶，越过医院判定线后转入等待
// 5. WaitAtHospital：静止计时，满时长后转入离开
// 6. Leaving：以放大倍率的速度驶离，由出界清理移除
// 说明：派遣行驶始终向x减小方向，各状态均保留变道平滑
func (v *Vehicle) UpdateAmbulance(dt float64) {
	switch v.ambState {
	case entity.AmbulancePatrol:
		v.Update(dt, false)
	case entity.AmbulanceToAccident:
		v.x -= v.v * dt
		stopX := v.ambTargetX + AmbulanceAccidentStandoff
		if v.x <= stopX {
			v.x = stopX
			v.ambState = entity.AmbulanceWaitAtAccident
			v.ambTimer = 0
			log.Debugf("ambulance %d arrived at accident x=%.1f", v.id, stopX)
		}
		v.smoothLane(dt)
	case entity.AmbulanceWaitAtAccident:
		v.ambTimer += dt
		if v.ambTimer >= AmbulanceWaitTime {
			v.ambState = entity.AmbulanceToHospital
			v.ambTimer = 0
		}
		v.smoothLane(dt)
	case entity.AmbulanceToHospital:
		v.x -= v.v * dt
		if v.x <= road.HospitalX {
			v.ambState = entity.AmbulanceWaitAtHospital
			v.ambTimer = 0
			log.Debugf("ambulance %d reached hospital", v.id)
		}
		v.smoothLane(dt)
	case entity.AmbulanceWaitAtHospital:
		v.ambTimer += dt
		if v.ambTimer >= AmbulanceWaitTime {
			v.ambState = entity.AmbulanceLeaving
		}
		v.smoothLane(dt)
	case entity.AmbulanceLeaving:
		v.x -= v.v * AmbulanceLeavingFactor * dt
		v.smoothLane(dt)
	}
}

// Dispatch 派遣救护车前往事故点
// 功能：记录事故坐标并转入驶向事故点状态
// 参数：x,y-碰撞点坐标
// 说明：仅巡逻或已在途的救护车可被派遣（可重定向），其余状态为静默空操作
func (v *Vehicle) Dispatch(x, y float64) {
	if v.ambState != entity.AmbulancePatrol && v.ambState != entity.AmbulanceToAccident {
		return
	}
	v.ambTargetX = x
	v.ambTargetY = y
	v.ambState = entity.AmbulanceToAccident
	log.Debugf("ambulance %d dispatched to (%.1f, %.1f)", v.id, x, y)
}

// AmbulanceState 获取救护车状态
func (v *Vehicle) AmbulanceState() entity.AmbulanceState {
	return v.ambState
}

// AmbulanceTimer 获取救护车当前状态内的计时（秒）
func (v *Vehicle) AmbulanceTimer() float64 {
	return v.ambTimer
}

// dispatchEligible 判断救护车是否可接受派遣
func (v *Vehicle) dispatchEligible() bool {
	return v.kind == entity.KindAmbulance &&
		(v.ambState == entity.AmbulancePatrol || v.ambState == entity.AmbulanceToAccident)
}
