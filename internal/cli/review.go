package cli

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/aj2nd/Save2/internal/model"
	"github.com/aj2nd/Save2/internal/service"
)

// ReviewKeyMap defines the keyboard shortcuts for the review screen.
type ReviewKeyMap struct {
	Up      key.Binding
	Down    key.Binding
	Approve key.Binding
	Quit    key.Binding
}

// DefaultReviewKeyMap returns the default key bindings.
func DefaultReviewKeyMap() ReviewKeyMap {
	return ReviewKeyMap{
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("↓/j", "down"),
		),
		Approve: key.NewBinding(
			key.WithKeys("a", "enter"),
			key.WithHelp("a/enter", "approve"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "esc", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

type approveDoneMsg struct {
	err error
	id  string
}

// ReviewModel is the bubbletea model for reviewing low-confidence
// invoices. Approving an invoice clears its review flag.
type ReviewModel struct {
	ctx      context.Context
	storage  service.Storage
	invoices map[string]model.Invoice
	status   string
	table    table.Model
	keymap   ReviewKeyMap
	approved int
	quitting bool
}

// NewReviewModel builds the review screen over the given invoices.
func NewReviewModel(ctx context.Context, storage service.Storage, invoices []model.Invoice) ReviewModel {
	columns := []table.Column{
		{Title: "ID", Width: 8},
		{Title: "Vendor", Width: 24},
		{Title: "Amount", Width: 12},
		{Title: "Date", Width: 10},
		{Title: "Category", Width: 24},
		{Title: "Conf", Width: 5},
	}

	rows := make([]table.Row, len(invoices))
	byID := make(map[string]model.Invoice, len(invoices))
	for i, inv := range invoices {
		rows[i] = invoiceRow(inv)
		byID[inv.ID] = inv
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithFocused(true),
		table.WithHeight(12),
	)
	styles := table.DefaultStyles()
	styles.Header = styles.Header.Bold(true).Foreground(PrimaryColor)
	styles.Selected = styles.Selected.Foreground(lipgloss.Color("#FFFFFF")).Background(PrimaryColor)
	t.SetStyles(styles)

	return ReviewModel{
		ctx:      ctx,
		storage:  storage,
		invoices: byID,
		table:    t,
		keymap:   DefaultReviewKeyMap(),
	}
}

func invoiceRow(inv model.Invoice) table.Row {
	return table.Row{
		inv.ID,
		inv.VendorName,
		inv.Amount.StringFixed(2),
		inv.InvoiceDate.Format("2006-01-02"),
		string(inv.Category),
		fmt.Sprintf("%.0f%%", inv.Confidence*100),
	}
}

// Init implements tea.Model.
func (m ReviewModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m ReviewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keymap.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keymap.Approve):
			return m, m.approveSelected()
		}
	case approveDoneMsg:
		if msg.err != nil {
			m.status = FormatError(fmt.Sprintf("approve failed: %v", msg.err))
			return m, nil
		}
		m.removeRow(msg.id)
		m.approved++
		m.status = FormatSuccess("approved")
		if len(m.table.Rows()) == 0 {
			m.quitting = true
			return m, tea.Quit
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m *ReviewModel) approveSelected() tea.Cmd {
	row := m.table.SelectedRow()
	if row == nil {
		return nil
	}
	id := row[0]
	return func() tea.Msg {
		err := m.storage.ClearReviewFlag(m.ctx, id)
		return approveDoneMsg{id: id, err: err}
	}
}

func (m *ReviewModel) removeRow(id string) {
	rows := m.table.Rows()
	filtered := make([]table.Row, 0, len(rows))
	for _, row := range rows {
		if row[0] != id {
			filtered = append(filtered, row)
		}
	}
	m.table.SetRows(filtered)
	delete(m.invoices, id)
}

// View implements tea.Model.
func (m ReviewModel) View() string {
	if m.quitting {
		return ""
	}

	view := TitleStyle.Render("Invoices needing review") + "\n"
	view += m.table.View() + "\n"

	if row := m.table.SelectedRow(); row != nil {
		if inv, ok := m.invoices[row[0]]; ok && len(inv.Findings) > 0 {
			for _, finding := range inv.Findings {
				line := string(finding.Code)
				if finding.Detail != "" {
					line += ": " + finding.Detail
				}
				view += WarningStyle.Render(WarningIcon+" "+line) + "\n"
			}
		}
	}

	if m.status != "" {
		view += m.status + "\n"
	}
	view += SubtleStyle.Render("↑/↓ move · a approve · q quit")
	return view
}

// Approved reports how many invoices were approved during the session.
func (m ReviewModel) Approved() int {
	return m.approved
}

// RunReview loads an owner's needs-review invoices and runs the
// interactive review screen over them.
func RunReview(ctx context.Context, storage service.Storage, ownerID string) error {
	needsReview := true
	invoices, err := storage.GetInvoices(ctx, ownerID, service.InvoiceFilter{NeedsReview: &needsReview})
	if err != nil {
		return fmt.Errorf("failed to load invoices: %w", err)
	}
	if len(invoices) == 0 {
		fmt.Println(FormatSuccess("Nothing needs review."))
		return nil
	}

	final, err := tea.NewProgram(NewReviewModel(ctx, storage, invoices)).Run()
	if err != nil {
		return fmt.Errorf("review screen failed: %w", err)
	}
	if m, ok := final.(ReviewModel); ok && m.Approved() > 0 {
		fmt.Println(FormatSuccess(fmt.Sprintf("%d invoice(s) approved", m.Approved())))
	}
	return nil
}
