package conversation

import (
	"strings"
)

// Kind identifies what the visitor did.
type Kind string

const (
	KindText        Kind = "text"
	KindQuickReply  Kind = "quick_reply"
	KindEmailOpen   Kind = "email_open"
	KindEmailCancel Kind = "email_cancel"
	KindEmailSubmit Kind = "email_submit"
	KindExport      Kind = "export"
)

// Input is one visitor event, independent of the surface that produced it.
type Input struct {
	Kind      Kind
	Text      string
	Name      string
	Recipient string
}

// HandlerFunc applies one kind of input to a controller.
type HandlerFunc func(c *Controller, in Input) (Outcome, error)

// Dispatcher routes inputs to handlers by kind.
type Dispatcher struct {
	handlers map[Kind]HandlerFunc
}

// NewDispatcher returns a dispatcher wired with the default handlers.
func NewDispatcher() *Dispatcher {
	d := &Dispatcher{handlers: make(map[Kind]HandlerFunc)}
	d.Register(KindText, handleText)
	d.Register(KindQuickReply, handleQuickReply)
	d.Register(KindEmailOpen, handleEmailOpen)
	d.Register(KindEmailCancel, handleEmailCancel)
	d.Register(KindEmailSubmit, handleEmailSubmit)
	d.Register(KindExport, handleExport)
	return d
}

// Register installs or replaces the handler for k.
func (d *Dispatcher) Register(k Kind, fn HandlerFunc) {
	d.handlers[k] = fn
}

// Dispatch applies in to c.
func (d *Dispatcher) Dispatch(c *Controller, in Input) (Outcome, error) {
	fn, ok := d.handlers[in.Kind]
	if !ok {
		return Outcome{}, &InputError{
			Type:    ErrUnknownKind,
			Message: "Sorry, I didn't understand that action.",
			Value:   string(in.Kind),
		}
	}
	return fn(c, in)
}

// Kinds lists the registered input kinds.
func (d *Dispatcher) Kinds() []Kind {
	kinds := make([]Kind, 0, len(d.handlers))
	for k := range d.handlers {
		kinds = append(kinds, k)
	}
	return kinds
}

func handleText(c *Controller, in Input) (Outcome, error) {
	text := strings.TrimSpace(in.Text)
	if text == "" {
		return Outcome{}, nil
	}
	reply := c.Advance(text)
	return Outcome{Echo: text, Reply: &reply}, nil
}

func handleQuickReply(c *Controller, in Input) (Outcome, error) {
	if !c.state.offers(in.Text) {
		return Outcome{}, &InputError{
			Type:    ErrUnknownQuickReply,
			Message: "That option is no longer available. Please pick one of the current choices.",
			Value:   in.Text,
		}
	}
	reply := c.Advance(in.Text)
	return Outcome{Echo: in.Text, Reply: &reply}, nil
}

func handleEmailOpen(c *Controller, _ Input) (Outcome, error) {
	c.state.ModalOpen = true
	return Outcome{Modal: ModalOpened}, nil
}

func handleEmailCancel(c *Controller, _ Input) (Outcome, error) {
	c.state.ModalOpen = false
	return Outcome{Modal: ModalClosed}, nil
}

// handleEmailSubmit blocks until both fields are present; a rejected submit
// leaves the state, modal included, untouched.
func handleEmailSubmit(c *Controller, in Input) (Outcome, error) {
	name := strings.TrimSpace(in.Name)
	recipient := strings.TrimSpace(in.Recipient)
	if name == "" || recipient == "" {
		return Outcome{Alert: MsgMissingContact}, nil
	}

	c.state.ModalOpen = false
	st := c.State()
	return Outcome{
		Reply: &Reply{Messages: []string{emailSent(recipient)}},
		Modal: ModalClosed,
		Delivery: &DeliveryRequest{
			Name:      name,
			Recipient: recipient,
			Estimate:  st.LastEstimate,
			TileType:  st.TileType,
			TileSize:  st.TileSize,
		},
	}, nil
}

func handleExport(c *Controller, _ Input) (Outcome, error) {
	return Outcome{
		Reply:  &Reply{Messages: []string{msgExportStarted}},
		Export: &ExportRequest{Estimate: c.State().LastEstimate},
	}, nil
}
