package config

// ControlStep 指定模拟器模拟时间范围和间隔的配置项
// 功能：定义仿真时间控制参数
// 说明：控制仿真的时间范围、步长（每帧时间）和精度
type ControlStep struct {
	Start    int32   `yaml:"start"`    // 开始步数
	Total    int32   `yaml:"total"`    // 总步数
	Interval float64 `yaml:"interval"` // 每步的时间间隔（秒），为0时取1/60
}

// Control 模拟器控制配置
// 功能：定义仿真系统的核心控制参数
type Control struct {
	Step ControlStep `yaml:"step"`
	Seed uint64      `yaml:"seed,omitempty"` // 随机数种子，为0时取1
}

// Traffic 交通行为配置
// 功能：定义车辆生成与事故触发的可调参数
// 说明：均为可选项，为0时采用默认值
type Traffic struct {
	CarSpawnMin float64  `yaml:"car_spawn_min,omitempty"` // 车辆生成间隔下界（秒）
	CarSpawnMax float64  `yaml:"car_spawn_max,omitempty"` // 车辆生成间隔上界（秒）
	LightCycle  float64  `yaml:"light_cycle,omitempty"`   // 信号灯红绿切换周期（秒）
	AccidentP   *float64 `yaml:"accident_p,omitempty"`    // 每秒随机触发事故的概率，nil取默认值，0禁用
}

// Event 脚本化输入事件
// 功能：描述在指定步数注入的一次离散按键事件
// 说明：type取值为ambulance/tow/accident，对应三种触发操作
type Event struct {
	Step int32  `yaml:"step"` // 注入事件的步数
	Type string `yaml:"type"` // 事件类型
}

// Config YAML配置文件的根结构
// 功能：定义整个仿真系统的配置结构
type Config struct {
	Control Control `yaml:"control"`          // 模拟过程控制
	Traffic Traffic `yaml:"traffic"`          // 交通行为参数
	Events  []Event `yaml:"events,omitempty"` // 脚本化输入事件
}
