// 脚本化输入源，向模拟核心提供离散的按键事件
package input

import (
	"github.com/sirupsen/logrus"

	"github.com/tsinghua-fib-lab/microroad-sim-oss/utils/config"
)

var log = logrus.WithField("module", "input")

// EventType 离散输入事件类型
type EventType string

const (
	EventAmbulance EventType = "ambulance" // 呼叫救护车
	EventTowTruck  EventType = "tow"       // 呼叫拖车
	EventAccident  EventType = "accident"  // 触发事故
)

// Source 输入事件源
// 功能：按步数分发脚本化的按键事件，交互式前端可用PushFrame注入实时事件
// 说明：每帧每种事件至多交付一次，帧与帧之间注入，帧内不再变化
type Source struct {
	byStep  map[int32][]EventType // 脚本化事件（步数 -> 事件列表）
	pending []EventType           // 交互注入的待交付事件
}

// New 创建输入事件源
// 功能：根据配置中的脚本化事件构建事件源
// 参数：events-配置中的事件列表
// 返回：初始化完成的事件源
// 说明：未知的事件类型记入警告日志并忽略
func New(events []config.Event) *Source {
	s := &Source{
		byStep: make(map[int32][]EventType),
	}
	for _, e := range events {
		t := EventType(e.Type)
		switch t {
		case EventAmbulance, EventTowTruck, EventAccident:
			s.byStep[e.Step] = append(s.byStep[e.Step], t)
		default:
			log.Warnf("unknown event type %q at step %d, ignored", e.Type, e.Step)
		}
	}
	return s
}

// PushFrame 注入交互式事件
// 功能：将一个实时按键事件加入待交付队列，下一帧交付
func (s *Source) PushFrame(t EventType) {
	s.pending = append(s.pending, t)
}

// PopFrame 取出当前帧的事件
// 功能：合并脚本化事件与交互注入事件，按类型去重后交付
// 参数：step-当前步数
// 返回：本帧需要处理的事件列表（每种类型至多一个）
func (s *Source) PopFrame(step int32) []EventType {
	var out []EventType
	seen := map[EventType]bool{}
	for _, t := range append(s.byStep[step], s.pending...) {
		if !seen[t] {
			seen[t] = true
			out = append(out, t)
		}
	}
	delete(s.byStep, step)
	s.pending = nil
	return out
}
