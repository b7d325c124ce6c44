package events

// Üretim çekirdeğinin bildiği tek şey "yayınla ve unut". Taşıma katmanı
// (Redis, websocket köprüsü vs.) bu arayüzün arkasında kalır; yayın hatası
// hiçbir zaman çağırana dönmez.
const (
	EventApprovalUpdated    = "approval:updated"
	EventBatchStatusUpdated = "batch:status_updated"
	EventBoxUpdated         = "box:updated"
)

type Publisher interface {
	Publish(event string, payload any)
	Close() error
}
