package config

// 默认参数，车辆生成间隔与事故概率来自实测的画面密度
const (
	defaultInterval    = 1.0 / 60.0
	defaultSeed        = 1
	defaultCarSpawnMin = 2.0
	defaultCarSpawnMax = 3.5
	defaultLightCycle  = 5.0
	defaultAccidentP   = 0.02
)

// RuntimeConfig 运行时配置
// 功能：存储仿真运行时的配置信息，补全所有缺省项
// 说明：将YAML配置转换为运行时可用的配置对象
type RuntimeConfig struct {
	All Config  // 全部配置
	C   Control // 全局控制配置
	T   Traffic // 交通行为配置

	AccidentP float64 // 每秒随机触发事故的概率（已解析默认值）
}

// NewRuntimeConfig 根据配置初始化运行时配置
// 功能：创建运行时配置对象，进行配置验证和默认值填充
// 参数：config-原始配置对象
// 返回：初始化的运行时配置指针
func NewRuntimeConfig(config Config) *RuntimeConfig {
	rc := &RuntimeConfig{}

	rc.All = config
	rc.C = config.Control
	rc.T = config.Traffic

	if rc.C.Step.Interval <= 0 {
		rc.C.Step.Interval = defaultInterval
	}
	if rc.C.Seed == 0 {
		rc.C.Seed = defaultSeed
	}
	if rc.T.CarSpawnMin <= 0 {
		rc.T.CarSpawnMin = defaultCarSpawnMin
	}
	if rc.T.CarSpawnMax <= 0 {
		rc.T.CarSpawnMax = defaultCarSpawnMax
	}
	if rc.T.CarSpawnMax < rc.T.CarSpawnMin {
		rc.T.CarSpawnMax = rc.T.CarSpawnMin
	}
	if rc.T.LightCycle <= 0 {
		rc.T.LightCycle = defaultLightCycle
	}
	if rc.T.AccidentP != nil {
		rc.AccidentP = *rc.T.AccidentP
	} else {
		rc.AccidentP = defaultAccidentP
	}

	return rc
}
