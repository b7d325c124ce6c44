package events

type noopPublisher struct{}

// NewNoopPublisher: Redis yapılandırılmadığında ve testlerde kullanılır.
func NewNoopPublisher() Publisher {
	return noopPublisher{}
}

func (noopPublisher) Publish(event string, payload any) {}
func (noopPublisher) Close() error                      { return nil }
