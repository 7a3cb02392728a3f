package entity

import (
	"github.com/tsinghua-fib-lab/microroad-sim-oss/clock"
	"github.com/tsinghua-fib-lab/microroad-sim-oss/utils/config"
	"github.com/tsinghua-fib-lab/microroad-sim-oss/utils/randengine"
)

// ITaskContext 仿真任务上下文接口
// 说明：实体模块通过该接口访问时钟、配置、随机数引擎与静态环境，
// 车辆与事故管理器由task直接持有，不经过上下文回查
type ITaskContext interface {
	Clock() *clock.Clock
	RuntimeConfig() *config.RuntimeConfig
	Rand() *randengine.Engine
	RoadManager() IRoadManager
	TrafficLightManager() ITrafficLightManager
}
