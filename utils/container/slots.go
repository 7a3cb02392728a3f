package container

// Handle 稳定句柄
// 功能：以（下标，代数）二元组指向槽位数组中的一个元素
// 说明：元素被删除后代数递增，旧句柄解析时代数不匹配而失效，
// 持有者据此判断被引用对象是否已被所有者移除（弱引用语义）
type Handle struct {
	index int32  // 槽位下标
	gen   uint32 // 分配代数，0表示空句柄
}

// Valid 判断句柄是否为空句柄
// 说明：仅区分零值，不保证指向的元素仍然存活，存活性由Get判断
func (h Handle) Valid() bool {
	return h.gen != 0
}

// slot 单个槽位
type slot[T any] struct {
	value    T
	gen      uint32 // 当前代数，删除时递增
	occupied bool
}

// Slots 带代数校验的槽位数组
// 功能：为元素提供稳定句柄的容器，删除与复用槽位不会使存活元素的句柄失效
// 说明：所有者持有Slots本体，其他模块只保存Handle并在使用点解析，
// 避免在元素删除后出现悬垂引用
type Slots[T any] struct {
	slots []slot[T]
	free  []int32 // 可复用的空槽位下标
	count int
}

// NewSlots 创建槽位数组
func NewSlots[T any]() *Slots[T] {
	return &Slots[T]{
		slots: make([]slot[T], 0),
		free:  make([]int32, 0),
	}
}

// Len 获取存活元素数量
func (s *Slots[T]) Len() int {
	return s.count
}

// Insert 插入元素
// 功能：将元素放入一个空槽位（优先复用已释放的槽位）
// 参数：value-要插入的元素
// 返回：指向该元素的句柄
// 算法说明：
// 1. 如果存在空闲槽位，弹出复用；槽位代数在释放时已递增，直接沿用
// 2. 否则追加新槽位，代数从1开始
func (s *Slots[T]) Insert(value T) Handle {
	s.count++
	if n := len(s.free); n > 0 {
		index := s.free[n-1]
		s.free = s.free[:n-1]
		sl := &s.slots[index]
		sl.value = value
		sl.occupied = true
		return Handle{index: index, gen: sl.gen}
	}
	s.slots = append(s.slots, slot[T]{value: value, gen: 1, occupied: true})
	return Handle{index: int32(len(s.slots) - 1), gen: 1}
}

// Get 解析句柄
// 功能：返回句柄指向的元素
// 返回：元素与是否存活；元素已被移除或句柄为空时返回(零值, false)
func (s *Slots[T]) Get(h Handle) (T, bool) {
	if h.gen == 0 || h.index < 0 || int(h.index) >= len(s.slots) {
		var zero T
		return zero, false
	}
	sl := &s.slots[h.index]
	if !sl.occupied || sl.gen != h.gen {
		var zero T
		return zero, false
	}
	return sl.value, true
}

// Free 移除元素
// 功能：释放句柄指向的槽位并使所有指向它的句柄失效
// 返回：是否实际执行了移除（句柄已失效时为false）
// 说明：代数在此处递增，保证已发出的句柄在槽位复用后仍然解析失败
func (s *Slots[T]) Free(h Handle) bool {
	if _, ok := s.Get(h); !ok {
		return false
	}
	sl := &s.slots[h.index]
	var zero T
	sl.value = zero
	sl.occupied = false
	sl.gen++
	s.free = append(s.free, h.index)
	s.count--
	return true
}
