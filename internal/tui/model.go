package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"photo-triage/internal/gesture"
	"photo-triage/internal/library"
	"photo-triage/internal/preview"
	"photo-triage/internal/resolver"
	"photo-triage/internal/trash"
	"photo-triage/internal/triage"
)

type status int

const (
	statusPermission status = iota
	statusScanning
	statusFilter
	statusLoading
	statusTriage
	statusTrash
	statusConfirm
	statusDeleting
	statusDeleted
)

const frameInterval = time.Second / 60

// Config wires the TUI to the application services.
type Config struct {
	Library  *library.SQLite
	Trash    *trash.Store
	Session  *triage.Session
	Resolver *resolver.Resolver
	Preview  *preview.Renderer
	ScanOpts library.ScanOptions
	Filter   triage.DateFilter
}

type model struct {
	cfg Config
	sp  spinner.Model
	st  status

	termW int
	termH int

	// indexing stream
	scanCh     chan tea.Msg
	scanCancel func()
	indexed    int
	scanErr    error

	// date filter
	filter      triage.DateFilter
	filterField int // 0 year, 1 month, 2 day

	// dismissible error banner (load/delete failures)
	errBanner string

	// triage
	card *card

	// trash view
	trashCursor int
	trashScroll int
	trashURI    string // resolved URI for the cursor item, "" while resolving

	// delete flow
	delCh         chan tea.Msg
	confirmResp   chan bool
	confirmPrompt string
	deletedCount  int

	// one animation tick chain at a time
	ticking bool
}

func newModel(cfg Config) model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	m := model{
		cfg:    cfg,
		sp:     sp,
		filter: cfg.Filter,
	}
	if m.filter.Year == 0 {
		m.filter.Year = time.Now().Year()
	}
	if err := cfg.Library.CheckPermission(); err != nil {
		m.st = statusPermission
	} else {
		m.startScan()
	}
	return m
}

// Run starts the interactive program. Mouse cell motion is enabled so card
// drags report movement while the button is held.
func Run(cfg Config) error {
	p := tea.NewProgram(newModel(cfg), tea.WithAltScreen(), tea.WithMouseCellMotion())
	_, err := p.Run()
	return err
}

// messages
type scanItemMsg struct{ asset library.Asset }
type scanCompleteMsg struct{ err error }

type loadDoneMsg struct {
	seq    uint64
	assets []library.Asset
	err    error
}

type resolvedMsg struct {
	assetID string
	uri     string
	trash   bool
}

type decisionMsg struct {
	assetID  string
	decision gesture.Decision
}

type frameMsg time.Time

type confirmRequestMsg struct{ prompt string }
type deleteDoneMsg struct{ err error }

// startScan begins the streaming library index, bridged over a channel the
// update loop polls.
func (m *model) startScan() {
	m.st = statusScanning
	ch := make(chan tea.Msg)
	m.scanCh = ch
	ctx, cancel := context.WithCancel(context.Background())
	m.scanCancel = cancel
	go func() {
		out, errCh := m.cfg.Library.ScanStream(ctx, m.cfg.ScanOpts)
		for a := range out {
			ch <- scanItemMsg{asset: a}
		}
		var err error
		if e, ok := <-errCh; ok {
			err = e
		}
		ch <- scanCompleteMsg{err: err}
		close(ch)
	}()
}

func (m *model) waitScanMsg() tea.Cmd {
	if m.scanCh == nil {
		return nil
	}
	return func() tea.Msg {
		msg, ok := <-m.scanCh
		if !ok {
			return nil
		}
		return msg
	}
}

func (m *model) loadCmd(seq uint64, f triage.DateFilter) tea.Cmd {
	return func() tea.Msg {
		assets, err := m.cfg.Session.Fetch(context.Background(), f)
		return loadDoneMsg{seq: seq, assets: assets, err: err}
	}
}

// resolveCmd resolves one asset's display URI off the update loop. The
// result is applied only if the asset is still the one on screen.
func (m *model) resolveCmd(a library.Asset, forTrash bool) tea.Cmd {
	return func() tea.Msg {
		uri := m.cfg.Resolver.Resolve(context.Background(), a)
		return resolvedMsg{assetID: a.ID, uri: uri, trash: forTrash}
	}
}

// waitDecisionCmd blocks on the card interpreter's decision channel. At most
// one decision ever arrives per card.
func waitDecisionCmd(c *card) tea.Cmd {
	return func() tea.Msg {
		d := <-c.interp.Decisions()
		return decisionMsg{assetID: c.asset.ID, decision: d}
	}
}

func frameTick() tea.Cmd {
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg { return frameMsg(t) })
}

func (m *model) waitDeleteMsg() tea.Cmd {
	if m.delCh == nil {
		return nil
	}
	return func() tea.Msg {
		msg, ok := <-m.delCh
		if !ok {
			return nil
		}
		return msg
	}
}

// startDelete runs the trash store's confirmed bulk delete on a background
// goroutine. The confirmation gate is bridged back into the UI: the store
// blocks until the user answers the y/N prompt.
func (m *model) startDelete() tea.Cmd {
	ch := make(chan tea.Msg)
	resp := make(chan bool, 1)
	m.delCh = ch
	m.confirmResp = resp
	m.deletedCount = m.cfg.Trash.Len()
	go func() {
		confirmer := trash.ConfirmerFunc(func(ctx context.Context, prompt string) (bool, error) {
			ch <- confirmRequestMsg{prompt: prompt}
			return <-resp, nil
		})
		err := m.cfg.Trash.CommitDelete(context.Background(), confirmer)
		ch <- deleteDoneMsg{err: err}
		close(ch)
	}()
	return m.waitDeleteMsg()
}

func (m model) Init() tea.Cmd {
	return tea.Batch(m.sp.Tick, m.waitScanMsg())
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.updateKey(msg)

	case tea.MouseMsg:
		return m.updateMouse(msg)

	case tea.WindowSizeMsg:
		m.termW, m.termH = msg.Width, msg.Height
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.sp, cmd = m.sp.Update(msg)
		return m, cmd

	case scanItemMsg:
		m.indexed++
		return m, m.waitScanMsg()

	case scanCompleteMsg:
		m.scanErr = msg.err
		if m.st == statusScanning {
			m.st = statusFilter
		}
		return m, nil

	case loadDoneMsg:
		return m.updateLoadDone(msg)

	case resolvedMsg:
		if msg.trash {
			if a, ok := m.trashAt(m.trashCursor); ok && a.ID == msg.assetID {
				m.trashURI = msg.uri
			}
			return m, nil
		}
		if m.card != nil && m.card.asset.ID == msg.assetID {
			m.card.uri = msg.uri
		}
		return m, nil

	case decisionMsg:
		return m.updateDecision(msg)

	case frameMsg:
		if m.card != nil && m.card.interp.Step() {
			return m, frameTick()
		}
		m.ticking = false
		return m, nil

	case confirmRequestMsg:
		m.st = statusConfirm
		m.confirmPrompt = msg.prompt
		return m, m.waitDeleteMsg()

	case deleteDoneMsg:
		return m.updateDeleteDone(msg)
	}
	return m, nil
}

func (m model) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	// The confirm gate takes over the keyboard entirely.
	if m.st == statusConfirm {
		switch key {
		case "y":
			m.confirmResp <- true
			m.st = statusDeleting
			return m, tea.Batch(m.sp.Tick, m.waitDeleteMsg())
		case "n", "esc", "q":
			m.confirmResp <- false
			return m, m.waitDeleteMsg()
		}
		return m, nil
	}

	switch key {
	case "ctrl+c":
		if m.scanCancel != nil {
			m.scanCancel()
		}
		return m, tea.Quit
	case "q":
		if m.st != statusDeleting {
			if m.scanCancel != nil {
				m.scanCancel()
			}
			return m, tea.Quit
		}
		return m, nil
	}

	if m.errBanner != "" {
		// Any other key dismisses the banner first.
		m.errBanner = ""
		return m, nil
	}

	switch m.st {
	case statusPermission:
		if key == "r" {
			if err := m.cfg.Library.RequestPermission(); err == nil {
				m.startScan()
				return m, tea.Batch(m.sp.Tick, m.waitScanMsg())
			}
		}
		return m, nil

	case statusFilter:
		return m.updateFilterKey(key)

	case statusTriage:
		return m.updateTriageKey(key)

	case statusTrash:
		return m.updateTrashKey(key)

	case statusDeleted:
		m.st = statusTrash
		m.trashCursor, m.trashScroll = 0, 0
		return m, nil
	}
	return m, nil
}

func (m model) updateFilterKey(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "tab", "right":
		m.filterField = (m.filterField + 1) % 3
	case "shift+tab", "left":
		m.filterField = (m.filterField + 2) % 3
	case "up", "k":
		m.adjustFilter(1)
	case "down", "j":
		m.adjustFilter(-1)
	case "t":
		return m.openTrash()
	case "enter":
		m.st = statusLoading
		seq := m.cfg.Session.BeginLoad()
		return m, tea.Batch(m.sp.Tick, m.loadCmd(seq, m.filter))
	}
	return m, nil
}

// adjustFilter moves the focused date field. Month and day cycle through
// nil ("all") below 1.
func (m *model) adjustFilter(delta int) {
	switch m.filterField {
	case 0:
		m.filter.Year += delta
	case 1:
		m.filter.Month = cycle(m.filter.Month, delta, 12)
		if m.filter.Month == nil {
			m.filter.Day = nil
		}
		m.clampDay()
	case 2:
		if m.filter.Month == nil {
			return // day needs a month
		}
		m.filter.Day = cycle(m.filter.Day, delta, daysIn(m.filter.Year, *m.filter.Month))
	}
}

func (m *model) clampDay() {
	if m.filter.Day == nil || m.filter.Month == nil {
		return
	}
	if max := daysIn(m.filter.Year, *m.filter.Month); *m.filter.Day > max {
		d := max
		m.filter.Day = &d
	}
}

func cycle(v *int, delta, max int) *int {
	if v == nil {
		if delta > 0 {
			n := 1
			return &n
		}
		return nil
	}
	n := *v + delta
	if n < 1 {
		return nil
	}
	if n > max {
		n = max
	}
	return &n
}

func daysIn(year, month int) int {
	return time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.Local).Day()
}

func (m model) updateLoadDone(msg loadDoneMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		// Queue unchanged; surface dismissibly and return to the filter.
		if m.st == statusLoading {
			m.st = statusFilter
		}
		m.errBanner = msg.err.Error()
		return m, nil
	}
	if !m.cfg.Session.Apply(msg.seq, msg.assets) {
		// A newer load is in flight; drop this stale result.
		return m, nil
	}
	m.st = statusTriage
	return m.mountCurrentCard()
}

// mountCurrentCard replaces the card with one for the session's current
// asset. The card is keyed by asset identity: a fresh interpreter per card
// means a settled gesture can never fire twice.
func (m model) mountCurrentCard() (tea.Model, tea.Cmd) {
	a, ok := m.cfg.Session.Current()
	if !ok {
		m.card = nil
		return m, nil
	}
	m.card = newCard(a, m.termW)
	return m, tea.Batch(m.resolveCmd(a, false), waitDecisionCmd(m.card))
}

func (m model) updateTriageKey(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "esc":
		m.st = statusFilter
		return m, nil
	case "t":
		return m.openTrash()
	case "left", "h":
		if m.card != nil {
			m.card.interp.Fling(gesture.OutcomeDiscard)
			return m.startTicks()
		}
	case "right", "l":
		if m.card != nil {
			m.card.interp.Fling(gesture.OutcomeKeep)
			return m.startTicks()
		}
	}
	return m, nil
}

// startTicks begins the frame loop unless one is already running.
func (m model) startTicks() (tea.Model, tea.Cmd) {
	if m.ticking {
		return m, nil
	}
	m.ticking = true
	return m, frameTick()
}

func (m model) updateMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if m.st != statusTriage || m.card == nil {
		return m, nil
	}
	in := m.card.interp
	x, y := float64(msg.X), float64(msg.Y)
	switch msg.Type {
	case tea.MouseLeft:
		if in.Dragging() {
			in.Move(x, y)
		} else {
			in.Begin(x, y)
		}
		return m.startTicks()
	case tea.MouseMotion:
		if in.Dragging() {
			in.Move(x, y)
		}
		return m, nil
	case tea.MouseRelease:
		if in.Dragging() {
			in.End()
			return m.startTicks()
		}
	}
	return m, nil
}

func (m model) updateDecision(msg decisionMsg) (tea.Model, tea.Cmd) {
	if m.card == nil || m.card.asset.ID != msg.assetID {
		return m, nil
	}
	switch msg.decision.Outcome {
	case gesture.OutcomeKeep:
		m.cfg.Session.CommitKeep()
	case gesture.OutcomeDiscard:
		m.cfg.Session.CommitDiscard(context.Background())
	}
	return m.mountCurrentCard()
}

func (m model) openTrash() (tea.Model, tea.Cmd) {
	m.st = statusTrash
	m.trashCursor, m.trashScroll = 0, 0
	m.trashURI = ""
	if a, ok := m.trashAt(0); ok {
		return m, m.resolveCmd(a, true)
	}
	return m, nil
}

func (m model) updateTrashKey(key string) (tea.Model, tea.Cmd) {
	n := m.cfg.Trash.Len()
	switch key {
	case "esc":
		if m.cfg.Session.Len() > 0 {
			m.st = statusTriage
		} else {
			m.st = statusFilter
		}
		return m, nil
	case "up", "k":
		if m.trashCursor > 0 {
			m.trashCursor--
			m.adjustTrashScroll()
			return m.resolveTrashCursor()
		}
	case "down", "j":
		if m.trashCursor < n-1 {
			m.trashCursor++
			m.adjustTrashScroll()
			return m.resolveTrashCursor()
		}
	case "c":
		if n > 0 {
			m.cfg.Trash.Clear(context.Background())
			m.trashCursor, m.trashScroll = 0, 0
			m.trashURI = ""
		}
		return m, nil
	case "d", "enter":
		if n > 0 {
			return m, m.startDelete()
		}
	}
	return m, nil
}

func (m model) resolveTrashCursor() (tea.Model, tea.Cmd) {
	m.trashURI = ""
	if a, ok := m.trashAt(m.trashCursor); ok {
		return m, m.resolveCmd(a, true)
	}
	return m, nil
}

func (m *model) trashAt(i int) (library.Asset, bool) {
	assets := m.cfg.Trash.Assets()
	if i < 0 || i >= len(assets) {
		return library.Asset{}, false
	}
	return assets[i], true
}

func (m model) updateDeleteDone(msg deleteDoneMsg) (tea.Model, tea.Cmd) {
	m.delCh = nil
	m.confirmResp = nil
	switch {
	case msg.err == nil:
		m.st = statusDeleted
		m.trashURI = ""
	case msg.err == trash.ErrCancelled:
		m.st = statusTrash
	default:
		// Staged set preserved; user may retry.
		m.st = statusTrash
		m.errBanner = msg.err.Error()
	}
	return m, nil
}
