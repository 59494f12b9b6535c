package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/lojasmm/tilebot/internal/config"
	"github.com/lojasmm/tilebot/internal/conversation"
	"github.com/lojasmm/tilebot/internal/estimate"
	"github.com/lojasmm/tilebot/internal/logging"
	"github.com/lojasmm/tilebot/internal/notify"
	"github.com/lojasmm/tilebot/internal/pacing"
	"github.com/lojasmm/tilebot/internal/store"
)

var flagFast bool

func newChatCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Run the estimate conversation in the terminal",
		Long: `Run the estimate conversation in the terminal.

Type an answer or the number of a suggested reply. Commands:
  /email <name> <address>  send the estimate by email
  /export                  request the estimate document
  /quit                    leave`,
		RunE: runChat,
	}
	cmd.Flags().BoolVar(&flagFast, "fast", false, "render replies without typing delays")
	return cmd
}

func runChat(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	level := cfg.LogLevel
	if flagLogLevel != "" {
		level = flagLogLevel
	}
	// stdout belongs to the conversation.
	logger := logging.NewWithWriter(os.Stderr, level)

	timings := timingsFrom(cfg)
	if flagFast {
		timings = pacing.Timings{}
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	t := &terminal{
		ctrl:       conversation.NewController(estimate.NewCalculator(nil, cfg.UnitPrice)),
		dispatcher: conversation.NewDispatcher(),
		timings:    timings,
		sender:     newSender(cfg, logger),
		out:        cmd.OutOrStdout(),
		logger:     logger,
	}
	return t.run(ctx, cmd.InOrStdin())
}

// terminal renders one conversation on a line-oriented console.
type terminal struct {
	ctrl       *conversation.Controller
	dispatcher *conversation.Dispatcher
	timings    pacing.Timings
	sender     notify.EmailSender
	out        io.Writer
	logger     *logging.Logger

	offered []string
}

func (t *terminal) run(ctx context.Context, in io.Reader) error {
	player := pacing.NewPlayer(t.render)
	<-player.Play(ctx, pacing.Greeting(t.ctrl.Greeting()))

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(t.out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(t.out)
			return scanner.Err()
		}
		inputs, quit := t.parse(scanner.Text())
		if quit {
			return nil
		}
		for _, input := range inputs {
			out, err := t.dispatcher.Dispatch(t.ctrl, input)
			if err != nil {
				msg := err.Error()
				if ie, ok := conversation.AsInputError(err); ok {
					msg = ie.Message
				}
				fmt.Fprintf(t.out, "! %s\n", msg)
				continue
			}
			if out.Delivery != nil {
				t.deliver(ctx, out.Delivery)
			}
			<-player.Play(ctx, t.timings.Script(out))
			if ctx.Err() != nil {
				return nil
			}
		}
	}
}

// parse turns a console line into inputs. A number picks the matching
// suggested reply.
func (t *terminal) parse(line string) (inputs []conversation.Input, quit bool) {
	line = strings.TrimSpace(line)
	fields := strings.Fields(line)

	switch {
	case line == "/quit":
		return nil, true
	case line == "/export":
		return []conversation.Input{{Kind: conversation.KindExport}}, false
	case len(fields) > 0 && fields[0] == "/email":
		submit := conversation.Input{Kind: conversation.KindEmailSubmit}
		rest := fields[1:]
		switch {
		case len(rest) == 1:
			submit.Name = rest[0]
		case len(rest) > 1:
			submit.Name = strings.Join(rest[:len(rest)-1], " ")
			submit.Recipient = rest[len(rest)-1]
		}
		return []conversation.Input{{Kind: conversation.KindEmailOpen}, submit}, false
	}

	if n, err := strconv.Atoi(line); err == nil && n >= 1 && n <= len(t.offered) {
		return []conversation.Input{{Kind: conversation.KindQuickReply, Text: t.offered[n-1]}}, false
	}
	return []conversation.Input{{Kind: conversation.KindText, Text: line}}, false
}

func (t *terminal) render(e pacing.Event) {
	switch e.Type {
	case pacing.EventMessage:
		if e.Role == pacing.RoleAssistant {
			fmt.Fprintf(t.out, "bot: %s\n", e.Text)
		}
	case pacing.EventQuickReplies:
		t.offered = append(t.offered[:0], e.Replies...)
		for i, r := range e.Replies {
			fmt.Fprintf(t.out, "  %d) %s\n", i+1, r)
		}
	case pacing.EventProgress:
		if e.Progress != nil {
			fmt.Fprintf(t.out, "  [%d%%]\n", *e.Progress)
		}
	case pacing.EventResult:
		if r := e.Result; r != nil {
			fmt.Fprintf(t.out, "  tiles: %d  boxes: %d  area: %s  cost: %s\n", r.TileCount, r.BoxCount, r.Area, r.CostText)
		}
	case pacing.EventAlert:
		fmt.Fprintf(t.out, "! %s\n", e.Text)
	}
}

// deliver sends the estimate email directly; the terminal has no outbox.
func (t *terminal) deliver(ctx context.Context, req *conversation.DeliveryRequest) {
	msg := notify.ComposeEstimate(store.Delivery{
		Name:      req.Name,
		Recipient: req.Recipient,
		TileType:  string(req.TileType),
		TileSize:  req.TileSize,
		Estimate:  req.Estimate,
	})
	if err := t.sender.Send(ctx, msg); err != nil {
		t.logger.Error("chat: email delivery failed", "to", req.Recipient, "error", err)
	}
}
