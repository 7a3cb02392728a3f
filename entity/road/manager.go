package road

import (
	"github.com/tsinghua-fib-lab/microroad-sim-oss/entity"
)

// Manager 道路管理器
type Manager struct {
	roads [2]*Road
	all   []entity.IRoad
}

// NewManager 创建道路管理器
// 功能：构造上下两条道路
func NewManager() *Manager {
	m := &Manager{}
	for _, side := range entity.Sides {
		m.roads[side] = New(side)
		m.all = append(m.all, m.roads[side])
	}
	return m
}

// Get 获取指定标识的道路
func (m *Manager) Get(side entity.RoadSide) entity.IRoad {
	return m.roads[side]
}

// Roads 获取全部道路，按上、下顺序
func (m *Manager) Roads() []entity.IRoad {
	return m.all
}
