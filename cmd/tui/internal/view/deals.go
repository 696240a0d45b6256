package view

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/akozyrev/leadwell/internal/deal"
)

type dealsState int

const (
	dealsStateBrowse dealsState = iota
	dealsStateStage
	dealsStateClose
)

type DealsModel struct {
	CommonModel
	dealService *deal.Service

	state dealsState
	table table.Model
	deals []*deal.Deal
	form  *huh.Form

	err    error
	status string

	// Form bindings
	formStage  string
	formWon    bool
	formReason string
}

func NewDealsModel(dealSvc *deal.Service) DealsModel {
	columns := []table.Column{
		{Title: "Title", Width: 36},
		{Title: "Amount", Width: 16},
		{Title: "Stage", Width: 14},
		{Title: "Prob", Width: 5},
		{Title: "Closed", Width: 10},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(15),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(false)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	return DealsModel{
		dealService: dealSvc,
		table:       t,
	}
}

func (m DealsModel) Title() string { return "Deals" }
func (m DealsModel) ShortHelp() string {
	if m.state != dealsStateBrowse {
		return "Navigate form | Esc: cancel"
	}
	return "Esc: back | g: stage | x: close | r: refresh"
}

func (m DealsModel) Init() tea.Cmd {
	return m.loadDealsCmd()
}

func (m DealsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadDealsMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.deals = msg.deals
		m.refreshTable()
		return m, nil

	case dealActionMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("Error: %v", msg.err)
		} else {
			m.status = msg.status
		}
		m.state = dealsStateBrowse
		m.form = nil
		m.table.Focus()
		return m, m.loadDealsCmd()

	case tea.WindowSizeMsg:
		m.table.SetHeight(msg.Height - 10)
		return m, nil
	}

	if m.state == dealsStateBrowse {
		return m.updateBrowse(msg)
	}

	return m.updateForm(msg)
}

func (m DealsModel) updateBrowse(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "esc":
			return m, Back
		case "r":
			return m, m.loadDealsCmd()
		case "g":
			return m.enterStageMode()
		case "x":
			return m.enterCloseMode()
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m DealsModel) enterStageMode() (tea.Model, tea.Cmd) {
	d := m.selected()
	if d == nil {
		return m, nil
	}

	if d.Closed {
		m.status = "Deal is closed"
		return m, nil
	}

	m.formStage = string(d.Stage)

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Key("stage").
				Title(fmt.Sprintf("New stage (currently %s)", d.Stage)).
				Options(
					huh.NewOption("Prospecting", string(deal.StageProspecting)),
					huh.NewOption("Qualification", string(deal.StageQualification)),
					huh.NewOption("Proposal", string(deal.StageProposal)),
					huh.NewOption("Negotiation", string(deal.StageNegotiation)),
				).
				Value(&m.formStage),
		),
	).WithWidth(45).WithShowHelp(false)

	m.state = dealsStateStage
	m.table.Blur()
	return m, m.form.Init()
}

func (m DealsModel) enterCloseMode() (tea.Model, tea.Cmd) {
	d := m.selected()
	if d == nil {
		return m, nil
	}

	m.formWon = true
	m.formReason = ""

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Key("won").
				Title("Won?").
				Affirmative("Won").
				Negative("Lost").
				Value(&m.formWon),

			huh.NewInput().
				Key("reason").
				Title("Reason").
				Placeholder("signed contract").
				Value(&m.formReason),
		),
	).WithWidth(45).WithShowHelp(false)

	m.state = dealsStateClose
	m.table.Blur()
	return m, m.form.Init()
}

func (m DealsModel) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		if keyMsg.Type == tea.KeyEsc {
			m.state = dealsStateBrowse
			m.form = nil
			m.table.Focus()
			return m, nil
		}
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	if m.state == dealsStateStage {
		return m, m.updateStageCmd()
	}

	return m, m.closeCmd()
}

func (m DealsModel) View() string {
	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(fmt.Sprintf("Error: %v", m.err))
	}

	tableView := lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		Render(m.table.View())

	content := tableView

	if m.form != nil {
		panelTitle := "Change Stage"
		if m.state == dealsStateClose {
			panelTitle = "Close Deal"
		}

		panel := lipgloss.NewStyle().
			Padding(1, 2).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Width(48).
			Render(panelTitle + "\n\n" + m.form.View())

		content = lipgloss.JoinHorizontal(lipgloss.Top, content, panel)
	}

	if m.status != "" {
		content = lipgloss.NewStyle().Faint(true).Render(m.status) + "\n" + content
	}

	return lipgloss.NewStyle().Padding(1).Render(content)
}

func (m *DealsModel) refreshTable() {
	rows := make([]table.Row, 0, len(m.deals))
	for _, d := range m.deals {
		closed := ""
		if d.Closed {
			closed = "lost"
			if d.Won {
				closed = "won"
			}
		}

		rows = append(rows, table.Row{
			d.Title,
			FormatMoney(d.Amount),
			string(d.Stage),
			strconv.Itoa(d.Probability),
			closed,
		})
	}
	m.table.SetRows(rows)
}

func (m DealsModel) selected() *deal.Deal {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.deals) {
		return nil
	}

	return m.deals[idx]
}

// Messages

type loadDealsMsg struct {
	deals []*deal.Deal
	err   error
}

func (m DealsModel) loadDealsCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := OpCtx()
		defer cancel()

		deals, err := m.dealService.List(ctx)
		return loadDealsMsg{deals: deals, err: err}
	}
}

type dealActionMsg struct {
	status string
	err    error
}

func (m DealsModel) updateStageCmd() tea.Cmd {
	d := m.selected()
	if d == nil {
		return nil
	}

	target := deal.Stage(m.formStage)

	return func() tea.Msg {
		ctx, cancel := OpCtx()
		defer cancel()

		updated, err := m.dealService.UpdateStage(ctx, d.ID, target)
		if err != nil {
			return dealActionMsg{err: err}
		}

		return dealActionMsg{status: fmt.Sprintf("Stage %s, probability %d%%", updated.Stage, updated.Probability)}
	}
}

func (m DealsModel) closeCmd() tea.Cmd {
	d := m.selected()
	if d == nil {
		return nil
	}

	won := m.formWon
	reason := m.formReason

	return func() tea.Msg {
		ctx, cancel := OpCtx()
		defer cancel()

		if _, err := m.dealService.Close(ctx, d.ID, won, reason); err != nil {
			return dealActionMsg{err: err}
		}

		outcome := "lost"
		if won {
			outcome = "won"
		}

		return dealActionMsg{status: "Deal closed as " + outcome}
	}
}
