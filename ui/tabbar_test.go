package ui

import (
	"fmt"
	"testing"

	"github.com/gdamore/tcell/v2"
)

func TestTabBarRenderKeepsActiveTabVisible(t *testing.T) {
	tb := NewTabBar()
	for i := 0; i < 14; i++ {
		tb.AddTab(fmt.Sprintf("file-%d.txt", i))
	}
	tb.Active = len(tb.Tabs) - 1

	screen := tcell.NewSimulationScreen("UTF-8")
	if err := screen.Init(); err != nil {
		t.Fatalf("screen init failed: %v", err)
	}
	defer screen.Fini()

	tb.Render(screen, 0, 0, 32, 1)

	if tb.scrollOff <= 0 {
		t.Fatalf("expected tab bar to scroll for active off-screen tab, got scrollOff=%d", tb.scrollOff)
	}
	if tb.Active < tb.scrollOff {
		t.Fatalf("active tab should stay visible: active=%d scrollOff=%d", tb.Active, tb.scrollOff)
	}
}

func TestTabBarAddTabReusesPath(t *testing.T) {
	tb := NewTabBar()
	tb.AddTab("/tmp/a.go")
	tb.AddTab("/tmp/b.go")
	tb.AddTab("/tmp/a.go")

	if len(tb.Tabs) != 2 {
		t.Fatalf("expected 2 tabs, got %d", len(tb.Tabs))
	}
	if tb.Active != 0 {
		t.Fatalf("expected existing tab to become active, got %d", tb.Active)
	}
}

func TestTabBarClickSwitches(t *testing.T) {
	tb := NewTabBar()
	tb.AddTab("a.go")
	tb.AddTab("b.go")
	switched := -1
	tb.OnSwitch = func(i int) { switched = i }

	screen := tcell.NewSimulationScreen("UTF-8")
	if err := screen.Init(); err != nil {
		t.Fatalf("screen init failed: %v", err)
	}
	defer screen.Fini()
	tb.Render(screen, 0, 0, 40, 1)

	// " a.go │ b.go " : the second tab starts at column 7.
	tb.HandleMouse(tcell.NewEventMouse(8, 0, tcell.Button1, tcell.ModNone))
	if switched != 1 {
		t.Fatalf("expected switch to tab 1, got %d", switched)
	}
}

func TestTabBarRemoveTabClampsActive(t *testing.T) {
	tb := NewTabBar()
	tb.AddTab("a.go")
	tb.AddTab("b.go")
	tb.RemoveTab(1)
	if tb.Active != 0 || len(tb.Tabs) != 1 {
		t.Fatalf("unexpected state: active=%d tabs=%d", tb.Active, len(tb.Tabs))
	}
}
