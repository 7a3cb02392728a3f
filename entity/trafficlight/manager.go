package trafficlight

import (
	"github.com/tsinghua-fib-lab/microroad-sim-oss/entity"
)

// Manager 信号灯管理器
type Manager struct {
	lights [2]*TrafficLight
}

// NewManager 创建信号灯管理器
// 参数：cycleTime-单相位时长（秒）
func NewManager(cycleTime float64) *Manager {
	m := &Manager{}
	for _, side := range entity.Sides {
		m.lights[side] = New(side, cycleTime)
	}
	return m
}

// Get 获取指定道路的信号灯
func (m *Manager) Get(side entity.RoadSide) entity.ITrafficLight {
	return m.lights[side]
}

// Update 推进全部信号灯计时
func (m *Manager) Update(dt float64) {
	for _, l := range m.lights {
		l.Update(dt)
	}
}
