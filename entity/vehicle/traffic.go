package vehicle

import (
	"math"

	"git.fiblab.net/general/common/v2/mathutil"

	"github.com/tsinghua-fib-lab/microroad-sim-oss/entity"
	"github.com/tsinghua-fib-lab/microroad-sim-oss/entity/road"
	"github.com/tsinghua-fib-lab/microroad-sim-oss/entity/trafficlight"
)

// 交通规则距离参数
const (
	YieldDistance = 350.0 // 后方应急车辆触发让行变道的距离
	AvoidDistance = 300.0 // 前方事故点触发避让变道的距离
)

// UpdateTraffic 逐帧交通规则推进
// 功能：对两条道路按集合顺序执行让行、避让、红灯与跟车判定，并推进每辆车
// 参数：dt-时间步长（秒），acc-事故状态快照
// 算法说明：
// 1. 已碰撞或被拖挂的车辆不参与（位置由外部驱动或保持静止）
// 2. 救护车与拖车各自推进状态机，不受通用交通规则约束
// 3. 让行判定：同车道后方指定距离内有应急车辆时轮转切换到下一车道
// 4. 避让判定：前方指定距离内有事故点且在同一车道时同样切换车道
// 5. 红灯判定：红灯且车头位于停止线两侧指定半径内时停车
// 6. 跟车判定：与同车道前车车尾的间隔小于安全距离时停车，肇事车辆跳过
func (m *Manager) UpdateTraffic(dt float64, acc entity.AccidentInfo) {
	for _, side := range entity.Sides {
		r := m.ctx.RoadManager().Get(side)
		light := m.ctx.TrafficLightManager().Get(side)
		vs := m.VehiclesOn(side)
		for _, v := range vs {
			if v.crashed || v.towed {
				continue
			}
			switch v.kind {
			case entity.KindAmbulance:
				v.UpdateAmbulance(dt)
				continue
			case entity.KindTowTruck:
				v.UpdateTowTruck(dt)
				continue
			}
			m.checkYield(v, r, vs)
			m.checkAvoidAccident(v, r, acc)
			stop := m.checkRedLight(v, r, light) || m.checkSpacing(v, vs)
			v.Update(dt, stop)
		}
	}
}

// checkYield 应急车辆让行判定
// 功能：同车道后方有接近中的救护车或拖车时切换到下一车道
// 说明：肇事、锁道或已变道的车辆不再让行
func (m *Manager) checkYield(v *Vehicle, r entity.IRoad, vs []*Vehicle) {
	if v.reckless || v.laneLock || v.changedLane {
		return
	}
	for _, e := range vs {
		if e == v || (e.kind != entity.KindAmbulance && e.kind != entity.KindTowTruck) {
			continue
		}
		if r.LaneIndexOf(e.y) != v.lane {
			continue
		}
		gap := (v.x - e.x) * v.dir
		if gap > 0 && gap < YieldDistance {
			next := r.NextLane(v.lane)
			v.switchLane(next, r.LaneY(next))
			log.Debugf("car %d yields to %s %d, lane %d", v.id, e.kind, e.id, next)
			return
		}
	}
}

// checkAvoidAccident 事故避让判定
// 功能：沿行驶方向接近事故点且在同一车道时切换到下一车道
func (m *Manager) checkAvoidAccident(v *Vehicle, r entity.IRoad, acc entity.AccidentInfo) {
	if acc.State != entity.AccidentActive || acc.Side != v.side {
		return
	}
	if v.laneLock || v.changedLane || acc.Lane != v.lane {
		return
	}
	gap := (acc.X - v.x) * v.dir
	if gap > 0 && gap < AvoidDistance {
		next := r.NextLane(v.lane)
		v.switchLane(next, r.LaneY(next))
		log.Debugf("car %d avoids accident, lane %d", v.id, next)
	}
}

// checkRedLight 红灯停车判定
// 说明：停车区以停止线为中心向两侧展开，停在灯箱处的车辆同样不得通过
// 返回：本帧是否需要停车
func (m *Manager) checkRedLight(v *Vehicle, r entity.IRoad, light entity.ITrafficLight) bool {
	if !light.IsRed() {
		return false
	}
	return math.Abs(light.StopLineX(r.Dir() < 0)-v.x) < trafficlight.StopRadius
}

// checkSpacing 跟车安全距离判定
// 功能：检查与同车道最近前车车尾的间隔
// 返回：本帧是否需要停车
// 说明：间隔为沿行驶方向的前车位置减后车位置再减去车长，肇事车辆不受约束
func (m *Manager) checkSpacing(v *Vehicle, vs []*Vehicle) bool {
	if v.reckless {
		return false
	}
	nearest := mathutil.INF
	for _, u := range vs {
		if u == v || u.lane != v.lane {
			continue
		}
		ahead := (u.x - v.x) * v.dir
		if ahead > 0 && ahead < nearest {
			nearest = ahead
		}
	}
	return nearest-road.VehicleWidth < road.SafeDistance
}
