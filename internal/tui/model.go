// Package tui is the terminal front end of the Aura client. The session
// router decides whether the login or the home screen is shown; every
// network call runs as a tea.Cmd so the interface stays responsive.
package tui

import (
	"context"
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/aura-clinic/aura/internal/client"
	"github.com/aura-clinic/aura/internal/screens/finance"
	"github.com/aura-clinic/aura/internal/screens/home"
	"github.com/aura-clinic/aura/internal/screens/login"
	"github.com/aura-clinic/aura/internal/session"
)

type screen int

const (
	screenLogin screen = iota
	screenForgot
	screenCreate
	screenHome
	screenFinance
	screenPassword
)

// Deps are the collaborators of the model.
type Deps struct {
	API        *client.Client
	Router     *session.Router
	Biometrics login.Biometrics
	Logger     *slog.Logger
}

type (
	sessionMsg struct{ state session.State }

	loginDoneMsg struct {
		form      login.Form
		biometric bool
		err       error
	}

	forgotDoneMsg struct {
		wizard login.ForgotPasswordWizard
		err    error
	}

	createDoneMsg struct {
		wizard login.CreateAccountWizard
		err    error
	}

	passwordDoneMsg struct {
		form login.ChangePasswordForm
		err  error
	}

	homeMsg struct {
		screen   *home.Screen
		snapshot home.Snapshot
	}

	financeMsg struct {
		screen  *finance.Screen
		summary finance.Summary
		err     error
	}
)

// Model is the root bubbletea model.
type Model struct {
	ctx    context.Context
	api    *client.Client
	router *session.Router
	bio    login.Biometrics
	logger *slog.Logger
	events chan session.State

	home    *home.Screen
	finance *finance.Screen

	keys    KeyMap
	theme   Theme
	styles  styles
	spinner spinner.Model
	now     func() time.Time

	screen screen
	busy   bool
	width  int
	height int

	form   login.Form
	forgot login.ForgotPasswordWizard
	create   login.CreateAccountWizard
	password login.ChangePasswordForm
	inputs   []textinput.Model
	focus  int

	notice     string
	bioMessage string

	snapshot   home.Snapshot
	summary    finance.Summary
	financeErr string
}

// New builds the model on the login screen. ctx bounds every request the
// model issues.
func New(ctx context.Context, deps Deps) Model {
	if deps.Biometrics == nil {
		deps.Biometrics = login.NoBiometrics{}
	}
	if deps.Logger == nil {
		deps.Logger = slog.New(slog.DiscardHandler)
	}

	events := make(chan session.State, 8)
	deps.Router.Subscribe(func(state session.State) {
		select {
		case events <- state:
		default:
		}
	})

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = newStyles(DefaultTheme).accent

	model := Model{
		ctx:     ctx,
		api:     deps.API,
		router:  deps.Router,
		bio:     deps.Biometrics,
		logger:  deps.Logger,
		events:  events,
		keys:    DefaultKeyMap,
		theme:   DefaultTheme,
		styles:  newStyles(DefaultTheme),
		spinner: sp,
		now:     time.Now,
		forgot:  *login.NewForgotPasswordWizard(deps.API),
		create:  *login.NewCreateAccountWizard(deps.API),
	}
	model.enterLogin()
	return model
}

// Init implements tea.Model.
func (model Model) Init() tea.Cmd {
	return listenForSession(model.events)
}

func listenForSession(events <-chan session.State) tea.Cmd {
	return func() tea.Msg {
		state, ok := <-events
		if !ok {
			return nil
		}
		return sessionMsg{state: state}
	}
}

// Update implements tea.Model.
func (model Model) Update(message tea.Msg) (tea.Model, tea.Cmd) {
	switch message := message.(type) {
	case tea.WindowSizeMsg:
		model.width, model.height = message.Width, message.Height
		return model, nil

	case sessionMsg:
		cmd := model.applySession(message.state)
		return model, tea.Batch(cmd, listenForSession(model.events))

	case spinner.TickMsg:
		if !model.busy {
			return model, nil
		}
		var cmd tea.Cmd
		model.spinner, cmd = model.spinner.Update(message)
		return model, cmd

	case loginDoneMsg:
		model.busy = false
		if message.biometric {
			model.bioMessage = login.BiometricMessage(message.err)
		} else {
			model.form.Error = message.form.Error
		}
		return model, model.applySession(model.router.State())

	case forgotDoneMsg:
		model.busy = false
		model.forgot = message.wizard
		model.enterForgot()
		return model, nil

	case createDoneMsg:
		model.busy = false
		model.create = message.wizard
		if message.err == nil && model.create.Created != nil {
			model.form.Email = model.create.Created.Email
			model.notice = "Account created. Sign in with your new password."
			model.create.Cancel()
			model.enterLogin()
			return model, nil
		}
		model.enterCreate()
		return model, nil

	case passwordDoneMsg:
		model.busy = false
		model.password = message.form
		if message.err == nil && model.screen == screenPassword {
			model.screen = screenHome
			model.inputs = nil
		} else if model.screen == screenPassword {
			model.enterPassword()
		}
		return model, model.applySession(model.router.State())

	case homeMsg:
		if message.screen != model.home {
			return model, nil
		}
		model.busy = false
		model.snapshot = message.snapshot
		return model, model.applySession(model.router.State())

	case financeMsg:
		if message.screen != model.finance {
			return model, nil
		}
		model.busy = false
		if message.err != nil {
			model.financeErr = client.UserMessage(message.err)
		} else {
			model.financeErr = ""
			model.summary = message.summary
		}
		return model, model.applySession(model.router.State())

	case tea.KeyMsg:
		return model.handleKey(message)
	}
	return model, nil
}

// applySession moves to the screen matching state. It is a no-op when
// the current screen already matches.
func (model *Model) applySession(state session.State) tea.Cmd {
	onLogin := model.screen == screenLogin || model.screen == screenForgot || model.screen == screenCreate
	switch {
	case state == session.Authenticated && onLogin:
		model.home = home.New(model.api, model.router, model.logger)
		model.finance = finance.New(model.api, model.router, model.logger)
		model.snapshot = home.Snapshot{}
		model.summary = finance.Summary{}
		model.financeErr = ""
		model.form.Password = ""
		model.form.Error = ""
		model.notice = ""
		model.bioMessage = ""
		model.inputs = nil
		model.screen = screenHome
		return model.refreshHome()
	case state == session.Unauthenticated && !onLogin:
		model.notice = "Your session ended. Sign in again."
		model.leaveSession()
	}
	return nil
}

func (model *Model) leaveSession() {
	model.busy = false
	model.home = nil
	model.finance = nil
	model.snapshot = home.Snapshot{}
	model.summary = finance.Summary{}
	model.password = login.ChangePasswordForm{}
	model.enterLogin()
}

func (model *Model) startBusy() tea.Cmd {
	model.busy = true
	return model.spinner.Tick
}

func (model *Model) refreshHome() tea.Cmd {
	dashboard, ctx := model.home, model.ctx
	return tea.Batch(model.startBusy(), func() tea.Msg {
		return homeMsg{screen: dashboard, snapshot: dashboard.Refresh(ctx)}
	})
}

func (model *Model) loadFinance() tea.Cmd {
	ledger, ctx := model.finance, model.ctx
	return tea.Batch(model.startBusy(), func() tea.Msg {
		summary, err := ledger.Load(ctx)
		return financeMsg{screen: ledger, summary: summary, err: err}
	})
}

func (model Model) handleKey(message tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(message, model.keys.ForceQuit) {
		return model, tea.Quit
	}
	switch model.screen {
	case screenLogin:
		return model.handleLoginKeys(message)
	case screenForgot:
		return model.handleForgotKeys(message)
	case screenCreate:
		return model.handleCreateKeys(message)
	case screenHome:
		return model.handleHomeKeys(message)
	case screenFinance:
		return model.handleFinanceKeys(message)
	case screenPassword:
		return model.handlePasswordKeys(message)
	}
	return model, nil
}

func (model Model) handleLoginKeys(message tea.KeyMsg) (tea.Model, tea.Cmd) {
	if model.busy {
		return model, nil
	}
	switch {
	case key.Matches(message, model.keys.Submit):
		model.form.Email = model.inputs[0].Value()
		model.form.Password = model.inputs[1].Value()
		model.form.Error, model.notice, model.bioMessage = "", "", ""
		form, router, ctx := model.form, model.router, model.ctx
		return model, tea.Batch(model.startBusy(), func() tea.Msg {
			_, err := form.Submit(ctx, router)
			return loginDoneMsg{form: form, err: err}
		})

	case key.Matches(message, model.keys.Biometric):
		model.form.Error, model.notice, model.bioMessage = "", "", ""
		bio, router, ctx := model.bio, model.router, model.ctx
		return model, tea.Batch(model.startBusy(), func() tea.Msg {
			_, err := login.BiometricLogin(ctx, bio, router.Vault(), router)
			return loginDoneMsg{biometric: true, err: err}
		})

	case key.Matches(message, model.keys.Forgot):
		model.forgot.Cancel()
		model.enterForgot()
		return model, nil

	case key.Matches(message, model.keys.Create):
		model.create.Cancel()
		model.enterCreate()
		return model, nil

	case key.Matches(message, model.keys.Cancel):
		model.form.Error, model.notice, model.bioMessage = "", "", ""
		return model, nil
	}
	return model.updateInputs(message)
}

func (model Model) handleForgotKeys(message tea.KeyMsg) (tea.Model, tea.Cmd) {
	if model.busy {
		return model, nil
	}
	switch {
	case key.Matches(message, model.keys.Cancel):
		model.forgot.Cancel()
		model.enterLogin()
		return model, nil

	case key.Matches(message, model.keys.Submit):
		model.syncForgot()
		wizard, ctx := model.forgot, model.ctx
		switch model.forgot.Step {
		case login.StepEmail:
			return model, tea.Batch(model.startBusy(), func() tea.Msg {
				err := wizard.RequestCode(ctx)
				return forgotDoneMsg{wizard: wizard, err: err}
			})
		case login.StepCode:
			if err := model.forgot.AcceptCode(); err != nil {
				return model, nil
			}
			model.enterForgot()
			return model, nil
		case login.StepNewPassword:
			return model, tea.Batch(model.startBusy(), func() tea.Msg {
				err := wizard.Reset(ctx)
				return forgotDoneMsg{wizard: wizard, err: err}
			})
		case login.StepDone:
			model.form.Email = model.forgot.Email
			model.forgot.Cancel()
			model.notice = "Password updated. Sign in with your new password."
			model.enterLogin()
			return model, nil
		}
	}
	return model.updateInputs(message)
}

func (model Model) handleCreateKeys(message tea.KeyMsg) (tea.Model, tea.Cmd) {
	if model.busy {
		return model, nil
	}
	switch {
	case key.Matches(message, model.keys.Cancel):
		model.create.Cancel()
		model.enterLogin()
		return model, nil

	case key.Matches(message, model.keys.Submit):
		model.syncCreate()
		wizard, ctx := model.create, model.ctx
		return model, tea.Batch(model.startBusy(), func() tea.Msg {
			_, err := wizard.Submit(ctx)
			return createDoneMsg{wizard: wizard, err: err}
		})
	}
	return model.updateInputs(message)
}

func (model Model) handleHomeKeys(message tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(message, model.keys.Quit):
		return model, tea.Quit
	case key.Matches(message, model.keys.Refresh):
		model.password.Message = ""
		return model, model.refreshHome()
	case key.Matches(message, model.keys.Finance):
		model.screen = screenFinance
		return model, model.loadFinance()
	case key.Matches(message, model.keys.ChangePassword):
		model.password = login.ChangePasswordForm{}
		model.enterPassword()
		return model, nil
	case key.Matches(message, model.keys.Logout):
		model.router.Logout()
		model.notice = ""
		model.leaveSession()
		return model, nil
	}
	return model, nil
}

func (model Model) handlePasswordKeys(message tea.KeyMsg) (tea.Model, tea.Cmd) {
	if model.busy {
		return model, nil
	}
	switch {
	case key.Matches(message, model.keys.Cancel):
		model.password = login.ChangePasswordForm{}
		model.screen = screenHome
		model.inputs = nil
		return model, nil

	case key.Matches(message, model.keys.Submit):
		model.password.Current = model.inputs[0].Value()
		model.password.Password = model.inputs[1].Value()
		model.password.Confirm = model.inputs[2].Value()
		form, router, ctx := model.password, model.router, model.ctx
		return model, tea.Batch(model.startBusy(), func() tea.Msg {
			err := form.Submit(ctx, router)
			return passwordDoneMsg{form: form, err: err}
		})
	}
	return model.updateInputs(message)
}

func (model Model) handleFinanceKeys(message tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(message, model.keys.Quit):
		return model, tea.Quit
	case key.Matches(message, model.keys.Back):
		model.screen = screenHome
		model.busy = false
		return model, nil
	case key.Matches(message, model.keys.Refresh):
		return model, model.loadFinance()
	case key.Matches(message, model.keys.Logout):
		model.router.Logout()
		model.notice = ""
		model.leaveSession()
		return model, nil
	}
	return model, nil
}

// updateInputs handles focus movement and forwards everything else to the
// focused input.
func (model Model) updateInputs(message tea.KeyMsg) (tea.Model, tea.Cmd) {
	if len(model.inputs) == 0 {
		return model, nil
	}
	switch {
	case key.Matches(message, model.keys.NextField):
		model.setFocus((model.focus + 1) % len(model.inputs))
		return model, nil
	case key.Matches(message, model.keys.PrevField):
		model.setFocus((model.focus - 1 + len(model.inputs)) % len(model.inputs))
		return model, nil
	}
	var cmd tea.Cmd
	model.inputs[model.focus], cmd = model.inputs[model.focus].Update(message)
	return model, cmd
}

func (model *Model) setFocus(index int) {
	model.focus = index
	for i := range model.inputs {
		if i == index {
			model.inputs[i].Focus()
		} else {
			model.inputs[i].Blur()
		}
	}
}

func newInput(placeholder, value string, secret bool) textinput.Model {
	input := textinput.New()
	input.Placeholder = placeholder
	input.Prompt = "> "
	input.CharLimit = 128
	input.Width = 40
	input.Cursor.SetMode(cursor.CursorStatic)
	if secret {
		input.EchoMode = textinput.EchoPassword
		input.EchoCharacter = '•'
	}
	input.SetValue(value)
	return input
}

func (model *Model) setInputs(inputs ...textinput.Model) {
	model.inputs = inputs
	model.setFocus(0)
}

func (model *Model) enterLogin() {
	model.screen = screenLogin
	model.setInputs(
		newInput("you@clinic.com", model.form.Email, false),
		newInput("password", "", true),
	)
	if model.form.Email != "" {
		model.setFocus(1)
	}
}

func (model *Model) enterForgot() {
	model.screen = screenForgot
	w := &model.forgot
	switch w.Step {
	case login.StepEmail:
		model.setInputs(newInput("you@clinic.com", w.Email, false))
	case login.StepCode:
		model.setInputs(newInput("6-digit code", w.Code, false))
	case login.StepNewPassword:
		model.setInputs(
			newInput("new password", w.Password, true),
			newInput("confirm password", w.Confirm, true),
		)
	default:
		model.inputs = nil
	}
}

func (model *Model) syncForgot() {
	w := &model.forgot
	switch w.Step {
	case login.StepEmail:
		w.Email = model.inputs[0].Value()
	case login.StepCode:
		w.Code = model.inputs[0].Value()
	case login.StepNewPassword:
		w.Password = model.inputs[0].Value()
		w.Confirm = model.inputs[1].Value()
	}
}

func (model *Model) enterPassword() {
	model.screen = screenPassword
	f := &model.password
	model.setInputs(
		newInput("current password", f.Current, true),
		newInput("new password", f.Password, true),
		newInput("confirm password", f.Confirm, true),
	)
}

func (model *Model) enterCreate() {
	model.screen = screenCreate
	w := &model.create
	model.setInputs(
		newInput("CRM", w.Document, false),
		newInput("full name", w.Name, false),
		newInput("you@clinic.com", w.Email, false),
		newInput("phone", w.Phone, false),
		newInput("password", w.Password, true),
		newInput("confirm password", w.Confirm, true),
	)
}

func (model *Model) syncCreate() {
	w := &model.create
	w.Document = model.inputs[0].Value()
	w.Name = model.inputs[1].Value()
	w.Email = model.inputs[2].Value()
	w.Phone = model.inputs[3].Value()
	w.Password = model.inputs[4].Value()
	w.Confirm = model.inputs[5].Value()
}

func (model Model) doctorName() string {
	if auth, ok := model.router.Auth(); ok && auth.User.Name != "" {
		return auth.User.Name
	}
	return "Doctor"
}
