package tui

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/tokensage/tokensage/pkg/models"
)

type fakeHandler struct {
	lastInput string
	resets    int
	result    *models.Result
}

func (f *fakeHandler) HandleQuery(_ context.Context, input string) *models.Result {
	f.lastInput = input
	if f.result != nil {
		return f.result
	}
	return models.NewResult(models.CategoryAnalysis, "ok", nil)
}

func (f *fakeHandler) Reset() { f.resets++ }

func newSizedChat(orch QueryHandler) *Chat {
	c := NewChat(orch)
	model, _ := c.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	return model.(*Chat)
}

func TestChatSubmitDispatchesQuery(t *testing.T) {
	orch := &fakeHandler{
		result: models.NewResult(models.CategoryMarket, "ETH is $2500", nil),
	}
	c := newSizedChat(orch)

	c.input.SetValue("price of eth")
	model, cmd := c.Update(tea.KeyMsg{Type: tea.KeyEnter})
	c = model.(*Chat)

	if cmd == nil {
		t.Fatal("enter should return a dispatch command")
	}
	if !c.waiting {
		t.Error("chat should be waiting after submit")
	}
	if len(c.messages) != 1 || !c.messages[0].user {
		t.Fatalf("messages = %+v, want one user entry", c.messages)
	}

	// Run the command and feed its message back, as the runtime would.
	msg := cmd()
	model, _ = c.Update(msg)
	c = model.(*Chat)

	if orch.lastInput != "price of eth" {
		t.Errorf("orchestrator received %q", orch.lastInput)
	}
	if c.waiting {
		t.Error("chat still waiting after result")
	}
	if len(c.messages) != 2 {
		t.Fatalf("messages = %d, want 2", len(c.messages))
	}
	if c.messages[1].category != models.CategoryMarket {
		t.Errorf("response category = %v, want market", c.messages[1].category)
	}
	if !strings.Contains(c.transcript(), "ETH is $2500") {
		t.Error("transcript missing response text")
	}
}

func TestChatIgnoresEmptySubmit(t *testing.T) {
	c := newSizedChat(&fakeHandler{})

	c.input.SetValue("   ")
	model, cmd := c.Update(tea.KeyMsg{Type: tea.KeyEnter})
	c = model.(*Chat)

	if cmd != nil {
		t.Error("blank submit should not dispatch")
	}
	if len(c.messages) != 0 {
		t.Errorf("messages = %d, want 0", len(c.messages))
	}
}

func TestChatErrorResultIsMarked(t *testing.T) {
	orch := &fakeHandler{
		result: models.NewErrorResult(models.CategoryMarket, "The market agent timed out."),
	}
	c := newSizedChat(orch)

	c.input.SetValue("eth price")
	model, cmd := c.Update(tea.KeyMsg{Type: tea.KeyEnter})
	c = model.(*Chat)
	model, _ = c.Update(cmd())
	c = model.(*Chat)

	if !c.messages[1].isError {
		t.Error("error result not marked in transcript")
	}
	if !strings.Contains(c.transcript(), "timed out") {
		t.Error("transcript missing error text")
	}
}

func TestChatResetClearsTranscript(t *testing.T) {
	orch := &fakeHandler{}
	c := newSizedChat(orch)

	c.messages = append(c.messages, chatMessage{user: true, text: "hi"})
	model, _ := c.Update(tea.KeyMsg{Type: tea.KeyCtrlR})
	c = model.(*Chat)

	if orch.resets != 1 {
		t.Errorf("resets = %d, want 1", orch.resets)
	}
	if len(c.messages) != 0 {
		t.Errorf("messages = %d, want 0 after reset", len(c.messages))
	}
}
