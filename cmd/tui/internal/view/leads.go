package view

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/akozyrev/leadwell/internal/conversion"
	"github.com/akozyrev/leadwell/internal/lead"
	"github.com/akozyrev/leadwell/internal/money"
	"github.com/akozyrev/leadwell/internal/user"
)

type leadsState int

const (
	leadsStateBrowse leadsState = iota
	leadsStateNew
	leadsStateStatus
)

type LeadsModel struct {
	CommonModel
	leadService *lead.Service
	converter   *conversion.Service
	manager     *user.User

	state leadsState
	table table.Model
	leads []*lead.Lead
	form  *huh.Form

	err    error
	status string

	// Form bindings
	formTitle    string
	formName     string
	formEmail    string
	formValue    string
	formPriority string
	formStatus   string
}

func NewLeadsModel(leadSvc *lead.Service, converter *conversion.Service, manager *user.User) LeadsModel {
	columns := []table.Column{
		{Title: "Title", Width: 30},
		{Title: "Contact", Width: 20},
		{Title: "Status", Width: 12},
		{Title: "Priority", Width: 8},
		{Title: "Est. Value", Width: 14},
		{Title: "Assigned", Width: 8},
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

	return LeadsModel{
		leadService: leadSvc,
		converter:   converter,
		manager:     manager,
		table:       t,
	}
}

func (m LeadsModel) Title() string { return "Leads" }
func (m LeadsModel) ShortHelp() string {
	switch m.state {
	case leadsStateNew, leadsStateStatus:
		return "Navigate form | Esc: cancel"
	default:
		return "Esc: back | n: new | s: status | a: assign | c: convert | r: refresh"
	}
}

func (m LeadsModel) Init() tea.Cmd {
	return m.loadLeadsCmd()
}

func (m LeadsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadLeadsMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.leads = msg.leads
		m.refreshTable()
		return m, nil

	case leadActionMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("Error: %v", msg.err)
		} else {
			m.status = msg.status
		}
		m.state = leadsStateBrowse
		m.form = nil
		m.table.Focus()
		return m, m.loadLeadsCmd()

	case tea.WindowSizeMsg:
		m.table.SetHeight(msg.Height - 10)
		return m, nil
	}

	switch m.state {
	case leadsStateBrowse:
		return m.updateBrowse(msg)
	case leadsStateNew, leadsStateStatus:
		return m.updateForm(msg)
	}

	return m, nil
}

func (m LeadsModel) updateBrowse(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "esc":
			return m, Back
		case "r":
			return m, m.loadLeadsCmd()
		case "n":
			return m.enterNewMode()
		case "s":
			return m.enterStatusMode()
		case "a":
			return m, m.assignCmd()
		case "c":
			return m, m.convertCmd()
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m LeadsModel) enterNewMode() (tea.Model, tea.Cmd) {
	m.formTitle = ""
	m.formName = ""
	m.formEmail = ""
	m.formValue = ""
	m.formPriority = string(lead.PriorityMedium)

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("title").
				Title("Title").
				Value(&m.formTitle).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("title cannot be empty")
					}
					return nil
				}),

			huh.NewInput().
				Key("contact_name").
				Title("Contact Name").
				Value(&m.formName),

			huh.NewInput().
				Key("contact_email").
				Title("Contact Email").
				Placeholder("anna@client.ru").
				Value(&m.formEmail),

			huh.NewInput().
				Key("estimated_value").
				Title("Estimated Value (RUB)").
				Placeholder("150000").
				Value(&m.formValue),

			huh.NewSelect[string]().
				Key("priority").
				Title("Priority").
				Options(
					huh.NewOption("Low", string(lead.PriorityLow)),
					huh.NewOption("Medium", string(lead.PriorityMedium)),
					huh.NewOption("High", string(lead.PriorityHigh)),
					huh.NewOption("Critical", string(lead.PriorityCritical)),
				).
				Value(&m.formPriority),
		),
	).WithWidth(45).WithShowHelp(false)

	m.state = leadsStateNew
	m.table.Blur()
	return m, m.form.Init()
}

func (m LeadsModel) enterStatusMode() (tea.Model, tea.Cmd) {
	l := m.selected()
	if l == nil {
		return m, nil
	}

	options := make([]huh.Option[string], 0, 2)
	for _, s := range []lead.Status{
		lead.StatusInProgress, lead.StatusQualified,
		lead.StatusConverted, lead.StatusDisqualified,
	} {
		if l.Status.CanTransitionTo(s) {
			options = append(options, huh.NewOption(string(s), string(s)))
		}
	}

	if len(options) == 0 {
		m.status = fmt.Sprintf("%q is final, no transitions", l.Status)
		return m, nil
	}

	m.formStatus = options[0].Value

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Key("status").
				Title(fmt.Sprintf("New status (currently %s)", l.Status)).
				Options(options...).
				Value(&m.formStatus),
		),
	).WithWidth(45).WithShowHelp(false)

	m.state = leadsStateStatus
	m.table.Blur()
	return m, m.form.Init()
}

func (m LeadsModel) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		if keyMsg.Type == tea.KeyEsc {
			m.state = leadsStateBrowse
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

	if m.state == leadsStateNew {
		return m, m.createCmd()
	}

	return m, m.changeStatusCmd()
}

func (m LeadsModel) View() string {
	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(fmt.Sprintf("Error: %v", m.err))
	}

	tableView := lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		Render(m.table.View())

	content := tableView

	if m.form != nil {
		panelTitle := "New Lead"
		if m.state == leadsStateStatus {
			panelTitle = "Change Status"
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

func (m *LeadsModel) refreshTable() {
	rows := make([]table.Row, 0, len(m.leads))
	for _, l := range m.leads {
		value := ""
		if l.EstimatedValue != nil {
			value = FormatMoney(*l.EstimatedValue)
		}

		assigned := ""
		if l.AssignedTo != nil {
			assigned = "yes"
		}

		rows = append(rows, table.Row{
			l.Title,
			l.ContactName,
			string(l.Status),
			string(l.Priority),
			value,
			assigned,
		})
	}
	m.table.SetRows(rows)
}

func (m LeadsModel) selected() *lead.Lead {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.leads) {
		return nil
	}

	return m.leads[idx]
}

// Messages

type loadLeadsMsg struct {
	leads []*lead.Lead
	err   error
}

func (m LeadsModel) loadLeadsCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := OpCtx()
		defer cancel()

		leads, err := m.leadService.List(ctx)
		return loadLeadsMsg{leads: leads, err: err}
	}
}

type leadActionMsg struct {
	status string
	err    error
}

func (m LeadsModel) createCmd() tea.Cmd {
	title := m.formTitle
	name := m.formName
	email := m.formEmail
	rawValue := m.formValue
	priority := m.formPriority

	return func() tea.Msg {
		ctx, cancel := OpCtx()
		defer cancel()

		params := lead.CreateParams{
			Title:        title,
			ContactName:  name,
			ContactEmail: email,
			Priority:     lead.Priority(priority),
			Source:       lead.DirectSource(),
		}

		if rawValue != "" {
			value, err := money.Parse(rawValue, "RUB")
			if err != nil {
				return leadActionMsg{err: err}
			}
			params.EstimatedValue = &value
		}

		if _, err := m.leadService.Create(ctx, params); err != nil {
			return leadActionMsg{err: err}
		}

		return leadActionMsg{status: "Lead created"}
	}
}

func (m LeadsModel) changeStatusCmd() tea.Cmd {
	l := m.selected()
	if l == nil {
		return nil
	}

	target := lead.Status(m.formStatus)

	return func() tea.Msg {
		ctx, cancel := OpCtx()
		defer cancel()

		if _, err := m.leadService.ChangeStatus(ctx, l.ID, target); err != nil {
			return leadActionMsg{err: err}
		}

		return leadActionMsg{status: fmt.Sprintf("Status changed to %s", target)}
	}
}

func (m LeadsModel) assignCmd() tea.Cmd {
	l := m.selected()
	if l == nil {
		return nil
	}

	return func() tea.Msg {
		ctx, cancel := OpCtx()
		defer cancel()

		if _, err := m.leadService.Assign(ctx, l.ID, m.manager.ID, m.manager.FullName()); err != nil {
			return leadActionMsg{err: err}
		}

		return leadActionMsg{status: fmt.Sprintf("Assigned to %s", m.manager.FullName())}
	}
}

func (m LeadsModel) convertCmd() tea.Cmd {
	l := m.selected()
	if l == nil {
		return nil
	}

	return func() tea.Msg {
		ctx, cancel := OpCtx()
		defer cancel()

		d, err := m.converter.Convert(ctx, l.ID, conversion.Options{})
		if err != nil {
			return leadActionMsg{err: err}
		}

		return leadActionMsg{status: fmt.Sprintf("Converted into deal %q", d.Title)}
	}
}
