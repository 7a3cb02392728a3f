package vehicle

import (
	"github.com/tsinghua-fib-lab/microroad-sim-oss/entity"
	"github.com/tsinghua-fib-lab/microroad-sim-oss/entity/road"
)

// 拖车状态机参数
const (
	TowStandoff = 180.0 // 停靠在事故点前方的偏移
	TowWorkTime = 2.0   // 作业时长（秒）

	TowOffsetFirst  = -120.0 // 第一辆事故车相对拖车的挂载偏移
	TowOffsetSecond = -230.0 // 第二辆事故车相对拖车的挂载偏移
)

// UpdateTowTruck 推进拖车状态机
// 功能：驶向事故点、停靠作业、完成拖挂后反向驶离
// 参数：dt-时间步长（秒）
// 算法说明：
// 1. MovingToTarget：向x减小方向行驶，到达事故点前方停靠偏移处吸附并开始作业
// 2. Working：静止计时，满作业时长后置起吊完成标志并转入离开
// 3. Leaving：反向（x增大）驶回生成边缘，挂载车辆位置由管理器逐帧驱动
func (v *Vehicle) UpdateTowTruck(dt float64) {
	switch v.towState {
	case entity.TowMovingToTarget:
		v.x -= v.v * dt
		stopX := v.towTargetX + TowStandoff
		if v.x <= stopX {
			v.x = stopX
			v.towState = entity.TowWorking
			v.towTimer = 0
			log.Debugf("towtruck %d working at x=%.1f", v.id, stopX)
		}
		v.smoothLane(dt)
	case entity.TowWorking:
		v.towTimer += dt
		if v.towTimer >= TowWorkTime {
			v.pickedUp = true
			v.towState = entity.TowLeaving
			log.Debugf("towtruck %d picked up", v.id)
		}
	case entity.TowLeaving:
		v.x += v.v * dt
		v.smoothLane(dt)
	}
}

// TowState 获取拖车状态
func (v *Vehicle) TowState() entity.TowState {
	return v.towState
}

// PickedUp 获取拖车是否已完成起吊
func (v *Vehicle) PickedUp() bool {
	return v.pickedUp
}

// towOffScreen 判断拖车是否已驶离画面（孤儿拖挂清理用）
// 说明：拖车离开时向x增大方向行驶，与生成方向相反，不能用基础出界判定
func (v *Vehicle) towOffScreen() bool {
	return v.towState == entity.TowLeaving && v.x > road.ScreenWidth+road.OffScreenMargin
}
