package main

import (
	"context"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"

	"github.com/akozyrev/leadwell/cmd/tui/internal/view"
	"github.com/akozyrev/leadwell/internal/config"
	"github.com/akozyrev/leadwell/internal/conversion"
	"github.com/akozyrev/leadwell/internal/deal"
	dealStore "github.com/akozyrev/leadwell/internal/deal/store"
	"github.com/akozyrev/leadwell/internal/lead"
	leadStore "github.com/akozyrev/leadwell/internal/lead/store"
	"github.com/akozyrev/leadwell/internal/seed"
	userStore "github.com/akozyrev/leadwell/internal/user/store"
)

type model struct {
	leadService *lead.Service
	dealService *deal.Service
	converter   *conversion.Service

	currentView View

	leadsView view.LeadsModel
	dealsView view.DealsModel
}

type View int

const (
	ViewMenu  View = 0
	ViewLeads View = 1
	ViewDeals View = 2
)

func initialModel() model {
	_ = godotenv.Load()

	if _, err := config.Load(); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	leads := leadStore.New()
	deals := dealStore.New()
	users := userStore.New()

	seeded, err := seed.Load(context.Background(), users, leads)
	if err != nil {
		slog.Error("failed to seed demo data", "error", err)
		os.Exit(1)
	}

	leadSvc := lead.NewService(leads)
	dealSvc := deal.NewService(deals)
	converter := conversion.NewService(leads, deals)

	return model{
		leadService: leadSvc,
		dealService: dealSvc,
		converter:   converter,
		currentView: ViewMenu,
		leadsView:   view.NewLeadsModel(leadSvc, converter, seeded.Manager),
		dealsView:   view.NewDealsModel(dealSvc),
	}
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.currentView == ViewMenu {
			switch msg.String() {
			case "ctrl+c", "q":
				return m, tea.Quit
			case "1":
				m.currentView = ViewLeads
				return m, m.leadsView.Init()
			case "2":
				m.currentView = ViewDeals
				return m, m.dealsView.Init()
			}
		}
	case view.BackMsg:
		m.currentView = ViewMenu
		return m, nil
	}

	switch m.currentView {
	case ViewLeads:
		var newModel tea.Model
		newModel, cmd = m.leadsView.Update(msg)
		m.leadsView = newModel.(view.LeadsModel)
	case ViewDeals:
		var newModel tea.Model
		newModel, cmd = m.dealsView.Update(msg)
		m.dealsView = newModel.(view.DealsModel)
	}

	return m, cmd
}

func (m model) View() string {
	switch m.currentView {
	case ViewMenu:
		return lipgloss.NewStyle().Padding(2).Render(
			"Leadwell TUI\n\n" +
				"1. Leads\n" +
				"2. Deals\n\n" +
				"q. Quit",
		)
	case ViewLeads:
		return m.leadsView.View()
	case ViewDeals:
		return m.dealsView.View()
	}

	return "Unknown View"
}

func main() {
	p := tea.NewProgram(initialModel())
	if _, err := p.Run(); err != nil {
		slog.Error("failed to run TUI", "error", err)
		os.Exit(1)
	}
}
