package conversation

import "github.com/lojasmm/tilebot/internal/estimate"

// Reply is the controller's answer to one processed input.
type Reply struct {
	Messages []string
	// QuickReplies and Progress are only meaningful when Advanced is set;
	// otherwise the surface keeps what it already shows.
	QuickReplies []string
	Progress     int
	Advanced     bool
	// Estimate is set once per cycle, when the tile size step completes.
	Estimate *estimate.Result
}

// ModalChange tells the surface what to do with the email form.
type ModalChange int

const (
	ModalUnchanged ModalChange = iota
	ModalOpened
	ModalClosed
)

// DeliveryRequest asks the email collaborator to send an estimate.
type DeliveryRequest struct {
	Name      string
	Recipient string
	Estimate  *estimate.Result
	TileType  TileType
	TileSize  string
}

// ExportRequest asks the document collaborator for a downloadable estimate.
type ExportRequest struct {
	Estimate *estimate.Result
}

// Outcome is everything one input produced. The zero value means the input
// was ignored.
type Outcome struct {
	Echo     string
	Reply    *Reply
	Alert    string
	Modal    ModalChange
	Delivery *DeliveryRequest
	Export   *ExportRequest
}

// Ignored reports whether the input had no visible effect.
func (o Outcome) Ignored() bool {
	return o.Echo == "" && o.Reply == nil && o.Alert == "" && o.Modal == ModalUnchanged
}
