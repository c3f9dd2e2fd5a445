package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/progkeep/progkeep/internal/manager"
)

type promptKind int

const (
	promptDirectory promptKind = iota
	promptConfirm
	promptAsk
)

type promptReply struct {
	value string
	ok    bool
}

// promptRequestMsg asks the model to show a prompt. The model answers on
// reply exactly once.
type promptRequestMsg struct {
	kind    promptKind
	title   string
	message string
	initial string
	reply   chan promptReply
}

// PromptBridge implements manager.Prompter on top of the bubbletea loop.
// Service code blocks in a prompt call while the model renders the prompt
// and sends back the answer.
type PromptBridge struct {
	requests chan promptRequestMsg
}

var _ manager.Prompter = (*PromptBridge)(nil)

func NewPromptBridge() *PromptBridge {
	return &PromptBridge{requests: make(chan promptRequestMsg)}
}

// listen waits for the next prompt request.
func (b *PromptBridge) listen() tea.Cmd {
	return func() tea.Msg {
		return <-b.requests
	}
}

func (b *PromptBridge) ask(ctx context.Context, req promptRequestMsg) (promptReply, error) {
	req.reply = make(chan promptReply, 1)
	select {
	case b.requests <- req:
	case <-ctx.Done():
		return promptReply{}, ctx.Err()
	}
	select {
	case r := <-req.reply:
		return r, nil
	case <-ctx.Done():
		return promptReply{}, ctx.Err()
	}
}

func (b *PromptBridge) PickDirectory(ctx context.Context, initial string) (string, error) {
	r, err := b.ask(ctx, promptRequestMsg{kind: promptDirectory, title: "Select Directory", initial: initial})
	if err != nil {
		return "", err
	}
	if !r.ok || r.value == "" {
		return "", manager.ErrCancelled
	}
	return r.value, nil
}

func (b *PromptBridge) Confirm(ctx context.Context, title, message string) (bool, error) {
	r, err := b.ask(ctx, promptRequestMsg{kind: promptConfirm, title: title, message: message})
	if err != nil {
		return false, err
	}
	return r.ok, nil
}

func (b *PromptBridge) Ask(ctx context.Context, title, message, initial string) (string, bool, error) {
	r, err := b.ask(ctx, promptRequestMsg{kind: promptAsk, title: title, message: message, initial: initial})
	if err != nil {
		return "", false, err
	}
	return r.value, r.ok, nil
}
