package events

import "sync"

// Topic 标识一个具名通知通道。
type Topic string

// Event 是发布到 Bus 的一次通知。
type Event struct {
	Topic   Topic
	Payload any
}

// Handler 在 Publish 调用方的 goroutine 上同步执行，返回后 Publish 才会返回。
type Handler func(Event)

// Bus 是同步的主题订阅总线：Publish 按订阅顺序依次调用处理器。
// 处理器内部可以再次 Publish 或取消订阅。
type Bus struct {
	mu     sync.Mutex
	nextID uint64
	subs   map[Topic][]subscriber
	closed bool
}

type subscriber struct {
	id uint64
	fn Handler
}

// Subscription 是一次订阅的句柄。
type Subscription struct {
	bus   *Bus
	topic Topic
	id    uint64
	once  sync.Once
}

func NewBus() *Bus {
	return &Bus{subs: map[Topic][]subscriber{}}
}

// Subscribe 为 topic 注册处理器。总线关闭后返回的句柄不会收到任何事件。
func (b *Bus) Subscribe(topic Topic, fn Handler) *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed || fn == nil {
		return &Subscription{}
	}
	b.nextID++
	id := b.nextID
	b.subs[topic] = append(b.subs[topic], subscriber{id: id, fn: fn})
	return &Subscription{bus: b, topic: topic, id: id}
}

// Publish 同步通知 topic 的全部订阅者。
func (b *Bus) Publish(topic Topic, payload any) {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	handlers := append([]subscriber(nil), b.subs[topic]...)
	b.mu.Unlock()

	if len(handlers) > 0 {
		log.WithField("topic", topic).Debugf("dispatching to %d subscribers", len(handlers))
	}
	evt := Event{Topic: topic, Payload: payload}
	for _, h := range handlers {
		if !b.active(topic, h.id) {
			continue
		}
		h.fn(evt)
	}
}

// Subscribers 返回 topic 当前的订阅数。
func (b *Bus) Subscribers(topic Topic) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs[topic])
}

// Close 丢弃全部订阅，之后的 Publish 不再分发。
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.subs = map[Topic][]subscriber{}
	b.closed = true
}

// active 判断分发快照中的处理器是否仍在订阅中，
// 使前序处理器发起的 Unsubscribe 立即生效。
func (b *Bus) active(topic Topic, id uint64) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, s := range b.subs[topic] {
		if s.id == id {
			return true
		}
	}
	return false
}

func (b *Bus) remove(topic Topic, id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	list := b.subs[topic]
	for i, s := range list {
		if s.id == id {
			b.subs[topic] = append(list[:i:i], list[i+1:]...)
			break
		}
	}
	if len(b.subs[topic]) == 0 {
		delete(b.subs, topic)
	}
}

// Unsubscribe 取消订阅；重复调用是安全的空操作。
func (s *Subscription) Unsubscribe() {
	if s == nil || s.bus == nil {
		return
	}
	s.once.Do(func() {
		s.bus.remove(s.topic, s.id)
	})
}

// 树数据源与布局核心共享的主题。
const (
	TopicRoots          Topic = "tree.roots"
	TopicExpanded       Topic = "tree.expanded"
	TopicHidden         Topic = "tree.hidden"
	TopicChildrenLoaded Topic = "tree.children_loaded"
	TopicScrollChanged  Topic = "scroll.changed"
)

// StructuralTopics 列出触发节点位置重算的主题。
var StructuralTopics = []Topic{TopicRoots, TopicExpanded, TopicHidden, TopicChildrenLoaded}
