package entity

// Manager依赖倒置

// entity/road/manager.go的依赖倒置
type IRoadManager interface {
	// 输入道路标识，查找道路，道路在初始化时静态建立，不存在则panic
	Get(side RoadSide) IRoad
	// 获取全部道路，按Sides顺序排列
	Roads() []IRoad
}

// entity/trafficlight/manager.go的依赖倒置
type ITrafficLightManager interface {
	// 输入道路标识，查找该道路的信号灯
	Get(side RoadSide) ITrafficLight

	Update(dt float64) // 更新阶段：推进所有信号灯计时
}
