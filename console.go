package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/tanpawarit/product-return-agent/agent/agents/conversation"
	contractx "github.com/tanpawarit/product-return-agent/agent/contract"
	statex "github.com/tanpawarit/product-return-agent/agent/state"
)

const consoleHelp = `commands:
  test                      skip the upload and simulate a valid image
  label <label>             simulate a verdict (valid, ai-generated, photoshopped, invalid)
  upload <path>             validate a product photo
  product <title> | <reason>
  search                    look the product up on the marketplace
  reset                     start over
  end                       end the conversation
  help
  quit`

var errQuit = errors.New("quit")

type applier interface {
	Apply(ctx context.Context, s *statex.Session, ev conversation.Event) error
}

// parseCommand maps one console line to an event.
func parseCommand(line string) (conversation.Event, error) {
	verb, rest, _ := strings.Cut(strings.TrimSpace(line), " ")
	rest = strings.TrimSpace(rest)

	switch strings.ToLower(verb) {
	case "test":
		return conversation.RequestTestMode(), nil
	case "label":
		label, err := statex.ParseLabel(rest)
		if err != nil {
			return conversation.Event{}, err
		}
		return conversation.SelectTestLabel(label), nil
	case "upload":
		if rest == "" {
			return conversation.Event{}, errors.New("usage: upload <path>")
		}
		return conversation.SubmitImage(rest), nil
	case "product":
		title, reason, _ := strings.Cut(rest, "|")
		if strings.TrimSpace(title) == "" {
			return conversation.Event{}, errors.New("usage: product <title> | <reason>")
		}
		return conversation.SubmitProductInfo(title, reason), nil
	case "search":
		return conversation.SearchMarketplace(), nil
	case "reset":
		return conversation.Reset(), nil
	case "end":
		return conversation.EndConversation(), nil
	case "quit", "exit":
		return conversation.Event{}, errQuit
	default:
		return conversation.Event{}, fmt.Errorf("unknown command %q, type help", verb)
	}
}

// readLines feeds lines from in until it is exhausted or stop is closed.
// The final error (nil at EOF) is sent on errc.
func readLines(in io.Reader, lines chan<- string, errc chan<- error, stop <-chan struct{}) {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		select {
		case lines <- scanner.Text():
		case <-stop:
			return
		}
	}
	errc <- scanner.Err()
}

// runConsole returns when the input ends, on quit, or as soon as ctx is
// done, even while waiting for a line.
func runConsole(ctx context.Context, engine applier, in io.Reader, out io.Writer) error {
	session := statex.NewSession()

	lines := make(chan string)
	errc := make(chan error, 1)
	stop := make(chan struct{})
	defer close(stop)
	go readLines(in, lines, errc, stop)

	fmt.Fprintln(out, consoleHelp)
	fmt.Fprintf(out, "\n%s\n> ", conversation.StageHint(session))

	for {
		var line string
		select {
		case <-ctx.Done():
			return nil
		case err := <-errc:
			return err
		case line = <-lines:
		}

		line = strings.TrimSpace(line)
		if line == "" {
			fmt.Fprint(out, "> ")
			continue
		}
		if line == "help" {
			fmt.Fprintf(out, "%s\n> ", consoleHelp)
			continue
		}

		ev, err := parseCommand(line)
		if errors.Is(err, errQuit) {
			return nil
		}
		if err != nil {
			fmt.Fprintf(out, "! %v\n> ", err)
			continue
		}

		seen := len(session.Transcript)
		if err := engine.Apply(ctx, session, ev); err != nil {
			switch {
			case errors.Is(err, contractx.ErrInvalidTransition), errors.Is(err, contractx.ErrValidation):
				fmt.Fprintf(out, "! %v\n> ", err)
				continue
			case ctx.Err() != nil:
				return nil
			default:
				return err
			}
		}

		// Reset replaces the transcript, so everything left is new.
		if seen > len(session.Transcript) {
			seen = 0
		}
		for _, m := range session.Transcript[seen:] {
			fmt.Fprintf(out, "[%s] %s\n", m.Role, m.Content)
		}
		fmt.Fprintf(out, "\n(%s) %s\n> ", session.Stage, conversation.StageHint(session))
	}
}
