package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/aura-clinic/aura/internal/models"
	"github.com/aura-clinic/aura/internal/screens/home"
	"github.com/aura-clinic/aura/internal/screens/login"
)

const tagline = "Secure access to your appointments and clinic finances"

// View implements tea.Model.
func (model Model) View() string {
	var body string
	switch model.screen {
	case screenLogin:
		body = model.loginView()
	case screenForgot:
		body = model.forgotView()
	case screenCreate:
		body = model.createView()
	case screenHome:
		body = model.homeView()
	case screenFinance:
		body = model.financeView()
	case screenPassword:
		body = model.passwordView()
	}
	return lipgloss.NewStyle().Padding(1, 2).Render(body)
}

func (model Model) header(subtitle string) string {
	return lipgloss.JoinVertical(lipgloss.Left,
		model.styles.title.Render("AURA"),
		model.styles.subtitle.Render(subtitle),
		"",
	)
}

func (model Model) fields(labels ...string) string {
	var rows []string
	for i, label := range labels {
		if i >= len(model.inputs) {
			break
		}
		rows = append(rows, model.styles.label.Render(label), model.inputs[i].View())
	}
	return model.styles.card.Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

// status renders the busy spinner and the message lines under a form.
func (model Model) status(busyText, errText string, extra ...string) string {
	var lines []string
	if model.busy {
		lines = append(lines, model.spinner.View()+" "+busyText)
	}
	if errText != "" {
		lines = append(lines, model.styles.err.Render(errText))
	}
	for _, line := range extra {
		if line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}

func (model Model) loginView() string {
	k := model.keys
	notice := ""
	if model.notice != "" {
		notice = model.styles.success.Render(model.notice)
	}
	bio := ""
	if model.bioMessage != "" {
		bio = model.styles.warning.Render(model.bioMessage)
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		model.header(tagline),
		model.fields("Email", "Password"),
		model.status("Signing in...", model.form.Error, bio, notice),
		model.styles.help.Render(helpLine(k.Submit, k.NextField, k.Biometric, k.Forgot, k.Create)+" · ctrl+c quit"),
	)
}

func (model Model) forgotView() string {
	w := model.forgot
	var body, hint string
	switch w.Step {
	case login.StepEmail:
		hint = "Step 1 of 3: enter the email of your account."
		body = model.fields("Email")
	case login.StepCode:
		hint = "Step 2 of 3: enter the code sent to " + w.Email + "."
		body = model.fields("Code")
		if w.IssuedCode != "" {
			body = lipgloss.JoinVertical(lipgloss.Left, body,
				model.styles.faint.Render("Development code: "+w.IssuedCode))
		}
	case login.StepNewPassword:
		hint = "Step 3 of 3: choose a new password."
		body = model.fields("New password", "Confirm password")
	case login.StepDone:
		hint = "Done."
		body = model.styles.success.Render(fallback(w.Message, "Password updated.")) + "\n" +
			model.styles.faint.Render("Press enter to return to sign in.")
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		model.header("Recover password"),
		model.styles.faint.Render(hint),
		body,
		model.status("Please wait...", w.Error),
		model.styles.help.Render(helpLine(model.keys.Submit, model.keys.Cancel)),
	)
}

func (model Model) createView() string {
	return lipgloss.JoinVertical(lipgloss.Left,
		model.header("Create account"),
		model.fields("CRM", "Full name", "Email", "Phone", "Password", "Confirm password"),
		model.status("Creating account...", model.create.Error),
		model.styles.help.Render(helpLine(model.keys.Submit, model.keys.NextField, model.keys.Cancel)),
	)
}

func (model Model) homeView() string {
	k := model.keys
	snap := model.snapshot

	top := model.styles.faint.Render(strings.ToUpper(model.now().Format("2 January"))) + "\n" +
		model.styles.label.Render("Hello, "+model.doctorName())
	if snap.Offline {
		top = lipgloss.JoinVertical(lipgloss.Left, top, model.styles.badge.Render("OFFLINE - check the backend"))
	}
	if model.password.Message != "" {
		top = lipgloss.JoinVertical(lipgloss.Left, top, model.styles.success.Render(model.password.Message))
	}

	if !snap.Loaded {
		return lipgloss.JoinVertical(lipgloss.Left,
			model.header("Dashboard"),
			top,
			"",
			model.spinner.View()+" Syncing with Aura...",
		)
	}

	stats := home.ComputeStats(snap.Agenda)
	counters := lipgloss.JoinHorizontal(lipgloss.Top,
		model.styles.card.Render(fmt.Sprintf("%d\n%s", stats.Total, model.styles.faint.Render("PATIENTS"))),
		" ",
		model.styles.card.Render(model.styles.success.Render(fmt.Sprint(stats.Completed))+"\n"+model.styles.faint.Render("SEEN")),
	)

	next := model.styles.faint.Render("No pending appointments.")
	if appt, ok := home.NextPatient(snap.Agenda); ok {
		next = model.styles.card.Render(lipgloss.JoinVertical(lipgloss.Left,
			model.styles.accent.Render("UP NEXT")+"  "+appt.StartTime.Local().Format("15:04"),
			model.styles.label.Render(appt.Patient.Name),
			model.styles.faint.Render(appt.Type),
		))
	}

	refreshing := ""
	if model.busy {
		refreshing = model.spinner.View() + " refreshing"
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		model.header("Dashboard"),
		top,
		"",
		counters,
		next,
		"",
		model.styles.label.Render("Agenda")+" "+refreshing,
		model.agendaView(snap.Agenda),
		model.styles.help.Render(helpLine(k.Refresh, k.Finance, k.ChangePassword, k.Logout, k.Quit)),
	)
}

func (model Model) passwordView() string {
	return lipgloss.JoinVertical(lipgloss.Left,
		model.header("Change password"),
		model.fields("Current password", "New password", "Confirm password"),
		model.status("Saving...", model.password.Error),
		model.styles.help.Render(helpLine(model.keys.Submit, model.keys.NextField, model.keys.Cancel)),
	)
}

func (model Model) agendaView(agenda []models.Appointment) string {
	if len(agenda) == 0 {
		return model.styles.faint.Render("No appointments.")
	}
	var rows []string
	for _, a := range agenda {
		status := lipgloss.NewStyle().Foreground(model.theme.StatusColor(a.Status)).Render(string(a.Status))
		rows = append(rows, fmt.Sprintf("%s  %-24s %-14s %s",
			a.StartTime.Local().Format("15:04"), truncate(a.Patient.Name, 24), truncate(a.Type, 14), status))
	}
	return strings.Join(rows, "\n")
}

func (model Model) financeView() string {
	k := model.keys
	s := model.summary
	summary := lipgloss.JoinHorizontal(lipgloss.Top,
		model.styles.card.Render(model.styles.success.Render(money(s.Income))+"\n"+model.styles.faint.Render("INCOME")),
		" ",
		model.styles.card.Render(model.styles.err.Render(money(s.Expense))+"\n"+model.styles.faint.Render("EXPENSES")),
		" ",
		model.styles.card.Render(money(s.Balance)+"\n"+model.styles.faint.Render("BALANCE")),
		" ",
		model.styles.card.Render(model.styles.warning.Render(money(s.Pending))+"\n"+model.styles.faint.Render("TO RECEIVE")),
	)

	var rows []string
	if model.finance != nil {
		for _, tx := range model.finance.Transactions() {
			paid := model.styles.success.Render("paid")
			if !tx.Paid {
				paid = model.styles.warning.Render("pending")
			}
			value := money(tx.Value)
			if tx.Kind == models.KindExpense {
				value = "-" + value
			}
			rows = append(rows, fmt.Sprintf("%s  %-28s %-14s %12s  %s",
				tx.CompetencyDate.Local().Format("02/01"), truncate(tx.Description, 28), truncate(tx.Category, 14), value, paid))
		}
	}
	list := model.styles.faint.Render("No transactions.")
	if len(rows) > 0 {
		list = strings.Join(rows, "\n")
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		model.header("Finance"),
		summary,
		model.status("Loading...", model.financeErr),
		list,
		model.styles.help.Render(helpLine(k.Back, k.Refresh, k.Logout, k.Quit)),
	)
}

func money(v float64) string {
	return fmt.Sprintf("R$ %.2f", v)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func fallback(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
