package services

import (
	"bytes"
	"context"
	"errors"
	"image/color"
	"io"
	"sync"
	"testing"
	"time"

	"investigation-canvas/application/interaction"
	"investigation-canvas/application/ports"
	"investigation-canvas/application/render"
	"investigation-canvas/domain/core/aggregates"
	"investigation-canvas/domain/core/entities"
	"investigation-canvas/domain/core/valueobjects"
	domainServices "investigation-canvas/domain/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const waitFor = 2 * time.Second
const tick = 5 * time.Millisecond

type nullSurface struct {
	w, h int
}

func (s *nullSurface) Size() (float64, float64)                                         { return float64(s.w), float64(s.h) }
func (s *nullSurface) Clear(color.Color)                                                {}
func (s *nullSurface) FillRect(valueobjects.Rect, color.Color)                          {}
func (s *nullSurface) StrokeRect(valueobjects.Rect, render.Stroke)                      {}
func (s *nullSurface) Line(valueobjects.Position, valueobjects.Position, render.Stroke) {}
func (s *nullSurface) Text(string, valueobjects.Position, render.Font, color.Color)     {}
func (s *nullSurface) MeasureText(text string, _ render.Font) float64                   { return float64(len(text)) * 6 }
func (s *nullSurface) Resize(w, h int) error                                            { s.w, s.h = w, h; return nil }
func (s *nullSurface) EncodePNG(w io.Writer) error                                      { _, err := w.Write([]byte("frame")); return err }

func newNullSurface(w, h int) (Surface, error) {
	return &nullSurface{w: w, h: h}, nil
}

// fakeStore keeps deep copies of saved scenes
type fakeStore struct {
	mu     sync.Mutex
	scenes map[string]*aggregates.Scene
	saves  int
	err    error
}

func newFakeStore() *fakeStore {
	return &fakeStore{scenes: make(map[string]*aggregates.Scene)}
}

func (f *fakeStore) Save(_ context.Context, scene *aggregates.Scene) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saves++
	if f.err != nil {
		return f.err
	}
	f.scenes[scene.InvestigationID()] = scene.Clone()
	return nil
}

func (f *fakeStore) Load(_ context.Context, id string) (*aggregates.Scene, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if s, ok := f.scenes[id]; ok {
		return s.Clone(), nil
	}
	return nil, nil
}

func (f *fakeStore) saved(id string) *aggregates.Scene {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.scenes[id]
}

// scriptedEditor records requests and answers each with the same update
type scriptedEditor struct {
	requests chan ports.EditRequest
	update   entities.FieldUpdate
	err      error
}

func newScriptedEditor(update entities.FieldUpdate, err error) *scriptedEditor {
	return &scriptedEditor{requests: make(chan ports.EditRequest, 8), update: update, err: err}
}

func (e *scriptedEditor) RequestEdit(_ context.Context, req ports.EditRequest) (entities.FieldUpdate, error) {
	e.requests <- req
	return e.update, e.err
}

type recordingNotifier struct {
	mu      sync.Mutex
	notices []ports.Notice
}

func (n *recordingNotifier) Notify(_ context.Context, notice ports.Notice) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notices = append(n.notices, notice)
}

func (n *recordingNotifier) levels() []ports.NoticeLevel {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]ports.NoticeLevel, len(n.notices))
	for i, notice := range n.notices {
		out[i] = notice.Level
	}
	return out
}

func testSeed() domainServices.Seed {
	return domainServices.Seed{
		Events: []domainServices.EventRecord{
			{Source: entities.SourceGit, Type: "commit", Description: "bump deps"},
			{Source: entities.SourceCI, Type: "build", Description: "failed"},
			{Source: entities.SourceLogs, Type: "error", Description: "timeout"},
		},
		Annotations: []domainServices.AnnotationRecord{{Content: "check pool size", Author: "kai"}},
	}
}

func startSession(t *testing.T, deps SessionDeps) *Session {
	t.Helper()
	if deps.Store == nil {
		deps.Store = newFakeStore()
	}
	deps.NewSurface = newNullSurface

	s, err := NewSession(context.Background(), SessionOptions{InvestigationID: "inv-1", Seed: testSeed()}, deps)
	require.NoError(t, err)

	go func() { _ = s.Run(context.Background()) }()
	t.Cleanup(func() {
		s.Close()
		<-s.Done()
	})
	return s
}

func nodePositions(t *testing.T, s *Session) []valueobjects.Position {
	t.Helper()
	var out []valueobjects.Position
	require.NoError(t, s.Inspect(context.Background(), func(v View) {
		for _, n := range v.Scene.Nodes() {
			out = append(out, n.Position())
		}
	}))
	return out
}

func TestSession_SeedsInitialLayout(t *testing.T) {
	s := startSession(t, SessionDeps{})

	positions := nodePositions(t, s)
	require.Len(t, positions, 4)
	assert.True(t, positions[0].Equals(valueobjects.NewPosition(100, 100)))
	assert.True(t, positions[1].Equals(valueobjects.NewPosition(300, 100)))
	assert.True(t, positions[2].Equals(valueobjects.NewPosition(500, 100)))
	assert.True(t, positions[3].Equals(valueobjects.NewPosition(600, 100)))

	dirty, err := s.Dirty(context.Background())
	require.NoError(t, err)
	assert.False(t, dirty)
}

func TestSession_LoadsSavedSceneInsteadOfSeed(t *testing.T) {
	store := newFakeStore()
	saved, err := aggregates.NewScene("inv-1", nil)
	require.NoError(t, err)
	content, err := valueobjects.NewNodeContent("Saved", "", nil)
	require.NoError(t, err)
	_, err = saved.AddNode(entities.KindEvent, content, valueobjects.NewPosition(42, 42), entities.NodeAttributes{})
	require.NoError(t, err)
	store.scenes["inv-1"] = saved

	s := startSession(t, SessionDeps{Store: store})

	positions := nodePositions(t, s)
	require.Len(t, positions, 1)
	assert.True(t, positions[0].Equals(valueobjects.NewPosition(42, 42)))
}

func TestSession_DragThenSave(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	notifier := &recordingNotifier{}
	s := startSession(t, SessionDeps{Store: store, Notifier: notifier})

	_, err := s.Dispatch(ctx, interaction.Down(110, 110, false))
	require.NoError(t, err)
	out, err := s.Dispatch(ctx, interaction.Move(160, 130))
	require.NoError(t, err)
	assert.True(t, out.SceneChanged)
	_, err = s.Dispatch(ctx, interaction.Up(160, 130))
	require.NoError(t, err)

	dirty, err := s.Dirty(ctx)
	require.NoError(t, err)
	assert.True(t, dirty)

	require.NoError(t, <-s.Save(ctx))

	require.Eventually(t, func() bool {
		dirty, err := s.Dirty(ctx)
		return err == nil && !dirty
	}, waitFor, tick)
	assert.Equal(t, []ports.NoticeLevel{ports.NoticeInfo}, notifier.levels())

	// The store holds a copy: later drags do not leak into it
	_, err = s.Dispatch(ctx, interaction.Down(160, 130, false))
	require.NoError(t, err)
	_, err = s.Dispatch(ctx, interaction.Move(400, 400))
	require.NoError(t, err)

	stored := store.saved("inv-1")
	require.NotNil(t, stored)
	assert.True(t, stored.Nodes()[0].Position().Equals(valueobjects.NewPosition(150, 120)))
}

// gatedStore holds the first Save until release is closed and records how
// many saves ran at once
type gatedStore struct {
	*fakeStore
	entered chan struct{}
	release chan struct{}
	once    sync.Once

	mu        sync.Mutex
	active    int
	maxActive int
}

func newGatedStore() *gatedStore {
	return &gatedStore{fakeStore: newFakeStore(), entered: make(chan struct{}), release: make(chan struct{})}
}

func (g *gatedStore) Save(ctx context.Context, scene *aggregates.Scene) error {
	g.mu.Lock()
	g.active++
	g.maxActive = max(g.maxActive, g.active)
	g.mu.Unlock()
	defer func() {
		g.mu.Lock()
		g.active--
		g.mu.Unlock()
	}()

	first := false
	g.once.Do(func() { first = true })
	if first {
		close(g.entered)
		<-g.release
	}
	return g.fakeStore.Save(ctx, scene)
}

func (g *gatedStore) peak() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.maxActive
}

func TestSession_SavesRequestedDuringSaveWriteLatestScene(t *testing.T) {
	tests := []struct {
		name        string
		followUps   int
		dragBetween bool
		wantPos     valueobjects.Position
	}{
		{name: "edit then one save", followUps: 1, dragBetween: true, wantPos: valueobjects.NewPosition(190, 120)},
		{name: "edit then several saves", followUps: 3, dragBetween: true, wantPos: valueobjects.NewPosition(190, 120)},
		{name: "no edit between saves", followUps: 2, wantPos: valueobjects.NewPosition(150, 120)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			store := newGatedStore()
			s := startSession(t, SessionDeps{Store: store})

			drag := func(fromX, fromY, toX, toY float64) {
				_, err := s.Dispatch(ctx, interaction.Down(fromX, fromY, false))
				require.NoError(t, err)
				_, err = s.Dispatch(ctx, interaction.Move(toX, toY))
				require.NoError(t, err)
				_, err = s.Dispatch(ctx, interaction.Up(toX, toY))
				require.NoError(t, err)
			}

			drag(110, 110, 160, 130)
			first := s.Save(ctx)
			select {
			case <-store.entered:
			case <-time.After(waitFor):
				t.Fatal("first save never reached the store")
			}

			if tt.dragBetween {
				drag(160, 130, 200, 130)
			}
			var later []<-chan error
			for i := 0; i < tt.followUps; i++ {
				later = append(later, s.Save(ctx))
			}
			close(store.release)

			require.NoError(t, <-first)
			for _, ch := range later {
				require.NoError(t, <-ch)
			}
			require.NoError(t, s.Settle(ctx))

			stored := store.saved("inv-1")
			require.NotNil(t, stored)
			assert.True(t, stored.Nodes()[0].Position().Equals(tt.wantPos), "store holds %v", stored.Nodes()[0].Position())
			assert.True(t, nodePositions(t, s)[0].Equals(tt.wantPos))

			dirty, err := s.Dirty(ctx)
			require.NoError(t, err)
			assert.False(t, dirty)

			assert.Equal(t, 1, store.peak(), "saves never overlap")
			store.fakeStore.mu.Lock()
			defer store.fakeStore.mu.Unlock()
			assert.Equal(t, 2, store.fakeStore.saves, "queued requests share one follow-up save")
		})
	}
}

func TestSession_SaveFailureKeepsSceneDirty(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	store.err = errors.New("quota exceeded")
	notifier := &recordingNotifier{}
	s := startSession(t, SessionDeps{Store: store, Notifier: notifier})

	_, err := s.Dispatch(ctx, interaction.Down(110, 110, false))
	require.NoError(t, err)
	_, err = s.Dispatch(ctx, interaction.Move(120, 120))
	require.NoError(t, err)

	assert.Error(t, <-s.Save(ctx))
	require.Eventually(t, func() bool {
		return len(notifier.levels()) == 1
	}, waitFor, tick)
	assert.Equal(t, ports.NoticeError, notifier.levels()[0])

	dirty, err := s.Dirty(ctx)
	require.NoError(t, err)
	assert.True(t, dirty)
	assert.Equal(t, 4, len(nodePositions(t, s)), "in-memory scene untouched")
}

func TestSession_AddNodeOpensEditor(t *testing.T) {
	ctx := context.Background()
	title := "Rollback"
	editor := newScriptedEditor(entities.FieldUpdate{Title: &title}, nil)
	s := startSession(t, SessionDeps{Editor: editor})

	id, err := s.AddEventNode(ctx)
	require.NoError(t, err)

	select {
	case req := <-editor.requests:
		assert.True(t, req.Created)
		assert.Equal(t, id, req.NodeID)
		assert.Equal(t, "New Event", req.Fields.Title)
		assert.Equal(t, entities.SourceManual, req.Fields.Source)
	case <-time.After(waitFor):
		t.Fatal("editor was not opened")
	}

	require.Eventually(t, func() bool {
		var got string
		_ = s.Inspect(ctx, func(v View) {
			if n, ok := v.Scene.Node(id); ok {
				got = n.Title()
			}
		})
		return got == "Rollback"
	}, waitFor, tick)

	require.NoError(t, s.Inspect(ctx, func(v View) {
		assert.Equal(t, id, v.Snapshot.Selection.Node, "new node is selected")
		n, _ := v.Scene.Node(id)
		assert.True(t, n.Position().Equals(valueobjects.NewPosition(100, 100)))
	}))
}

func TestSession_CanceledEditLeavesDefaults(t *testing.T) {
	ctx := context.Background()
	editor := newScriptedEditor(entities.FieldUpdate{}, ports.ErrEditCanceled)
	s := startSession(t, SessionDeps{Editor: editor})

	id, err := s.AddAnnotationNode(ctx)
	require.NoError(t, err)
	<-editor.requests

	require.NoError(t, s.Inspect(ctx, func(v View) {
		n, ok := v.Scene.Node(id)
		require.True(t, ok)
		assert.Equal(t, "New Annotation", n.Title())
		assert.Equal(t, "Click to edit", n.Description())
		assert.Equal(t, "Current User", n.Author())
	}))
}

func TestSession_DoubleClickEditsExistingNode(t *testing.T) {
	ctx := context.Background()
	desc := "root cause"
	editor := newScriptedEditor(entities.FieldUpdate{Description: &desc}, nil)
	s := startSession(t, SessionDeps{Editor: editor})

	out, err := s.Dispatch(ctx, interaction.DoubleClickAt(320, 120))
	require.NoError(t, err)
	require.True(t, out.WantsEdit())

	req := <-editor.requests
	assert.False(t, req.Created)
	assert.Equal(t, "build", req.Fields.Title)

	require.Eventually(t, func() bool {
		var got string
		_ = s.Inspect(ctx, func(v View) {
			if n, ok := v.Scene.Node(out.EditNode); ok {
				got = n.Description()
			}
		})
		return got == desc
	}, waitFor, tick)
}

func TestSession_DeleteNeedsConfirmation(t *testing.T) {
	tests := []struct {
		name      string
		confirm   bool
		wantNodes int
		wantConns int
	}{
		{name: "declined", confirm: false, wantNodes: 4, wantConns: 2},
		{name: "confirmed", confirm: true, wantNodes: 3, wantConns: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			s := startSession(t, SessionDeps{Confirmer: ports.AutoConfirm(tt.confirm)})

			// Connect A->B and C->A
			for _, ev := range []interaction.PointerEvent{
				interaction.Down(110, 110, true), interaction.Down(310, 110, false),
				interaction.Down(510, 110, true), interaction.Down(110, 110, false),
			} {
				_, err := s.Dispatch(ctx, ev)
				require.NoError(t, err)
			}

			out, err := s.Dispatch(ctx, interaction.ContextClickAt(110, 110))
			require.NoError(t, err)
			require.True(t, out.WantsDelete())

			require.Eventually(t, func() bool {
				var nodes, conns int
				_ = s.Inspect(ctx, func(v View) {
					nodes, conns = v.Scene.NodeCount(), v.Scene.ConnectionCount()
				})
				return nodes == tt.wantNodes && conns == tt.wantConns
			}, waitFor, tick)
		})
	}
}

func TestSession_Clear(t *testing.T) {
	tests := []struct {
		name      string
		confirm   bool
		wantNodes int
	}{
		{name: "declined", confirm: false, wantNodes: 4},
		{name: "confirmed", confirm: true, wantNodes: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			s := startSession(t, SessionDeps{Confirmer: ports.AutoConfirm(tt.confirm)})

			assert.Equal(t, tt.confirm, <-s.Clear(ctx))

			var nodes int
			require.NoError(t, s.Inspect(ctx, func(v View) { nodes = v.Scene.NodeCount() }))
			assert.Equal(t, tt.wantNodes, nodes)
		})
	}
}

func TestSession_ResizeRerenders(t *testing.T) {
	ctx := context.Background()
	s := startSession(t, SessionDeps{})

	var before int
	require.NoError(t, s.Inspect(ctx, func(v View) { before = v.Frames }))

	require.NoError(t, s.Resize(ctx, 640, 480))
	assert.Error(t, s.Resize(ctx, 0, 480))

	require.NoError(t, s.Inspect(ctx, func(v View) {
		assert.Equal(t, before+1, v.Frames)
		assert.Equal(t, 640, v.Width)
		assert.Equal(t, 480, v.Height)
		assert.Equal(t, 4, v.Scene.NodeCount())
	}))

	var buf bytes.Buffer
	require.NoError(t, s.WriteFrame(ctx, &buf))
	assert.Equal(t, "frame", buf.String())
}

func TestSession_ClosedRejectsWork(t *testing.T) {
	s, err := NewSession(context.Background(), SessionOptions{InvestigationID: "inv-1"},
		SessionDeps{Store: newFakeStore(), NewSurface: newNullSurface})
	require.NoError(t, err)

	go func() { _ = s.Run(context.Background()) }()
	s.Close()
	<-s.Done()

	_, err = s.Dispatch(context.Background(), interaction.Down(0, 0, false))
	assert.ErrorIs(t, err, ports.ErrSessionClosed)
	assert.ErrorIs(t, <-s.Save(context.Background()), ports.ErrSessionClosed)
	assert.False(t, <-s.Clear(context.Background()))
}

func TestNewSession_Validation(t *testing.T) {
	tests := []struct {
		name string
		opts SessionOptions
		deps SessionDeps
	}{
		{name: "no store", opts: SessionOptions{InvestigationID: "x"}, deps: SessionDeps{NewSurface: newNullSurface}},
		{name: "no surface", opts: SessionOptions{InvestigationID: "x"}, deps: SessionDeps{Store: newFakeStore()}},
		{name: "no investigation", deps: SessionDeps{Store: newFakeStore(), NewSurface: newNullSurface}},
		{
			name: "event without source",
			opts: SessionOptions{InvestigationID: "x", Seed: domainServices.Seed{Events: []domainServices.EventRecord{{Type: "t"}}}},
			deps: SessionDeps{Store: newFakeStore(), NewSurface: newNullSurface},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewSession(context.Background(), tt.opts, tt.deps)
			assert.Error(t, err)
		})
	}
}

func TestSessionManager(t *testing.T) {
	ctx := context.Background()
	m := NewSessionManager(ctx, SessionDeps{Store: newFakeStore(), NewSurface: newNullSurface})

	a, created, err := m.Open(ctx, SessionOptions{InvestigationID: "inv-a", Seed: testSeed()})
	require.NoError(t, err)
	assert.True(t, created)

	again, created, err := m.Open(ctx, SessionOptions{InvestigationID: "inv-a"})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Same(t, a, again)

	_, _, err = m.Open(ctx, SessionOptions{InvestigationID: "inv-b"})
	require.NoError(t, err)
	assert.Equal(t, []string{"inv-a", "inv-b"}, m.IDs())

	assert.True(t, m.Close("inv-b"))
	require.Eventually(t, func() bool {
		_, ok := m.Get("inv-b")
		return !ok
	}, waitFor, tick)

	require.NoError(t, m.Shutdown())
	_, _, err = m.Open(ctx, SessionOptions{InvestigationID: "inv-c"})
	assert.ErrorIs(t, err, ports.ErrSessionClosed)
}

// slowLoadStore blocks loads of one investigation until release is closed
type slowLoadStore struct {
	*fakeStore
	slowID  string
	loading chan struct{}
	release chan struct{}
}

func newSlowLoadStore(slowID string) *slowLoadStore {
	return &slowLoadStore{
		fakeStore: newFakeStore(),
		slowID:    slowID,
		loading:   make(chan struct{}, 16),
		release:   make(chan struct{}),
	}
}

func (s *slowLoadStore) Load(ctx context.Context, id string) (*aggregates.Scene, error) {
	if id == s.slowID {
		s.loading <- struct{}{}
		<-s.release
	}
	return s.fakeStore.Load(ctx, id)
}

func TestSessionManager_OpenLoadsOutsideLock(t *testing.T) {
	tests := []struct {
		name    string
		openers int
	}{
		{name: "single opener", openers: 1},
		{name: "racing openers", openers: 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			store := newSlowLoadStore("inv-slow")
			m := NewSessionManager(ctx, SessionDeps{Store: store, NewSurface: newNullSurface})
			t.Cleanup(func() { _ = m.Shutdown() })

			type opened struct {
				session *Session
				created bool
				err     error
			}
			results := make(chan opened, tt.openers)
			for i := 0; i < tt.openers; i++ {
				go func() {
					s, created, err := m.Open(ctx, SessionOptions{InvestigationID: "inv-slow", Seed: testSeed()})
					results <- opened{s, created, err}
				}()
			}
			for i := 0; i < tt.openers; i++ {
				select {
				case <-store.loading:
				case <-time.After(waitFor):
					t.Fatal("slow load never started")
				}
			}

			fast := make(chan error, 1)
			go func() {
				_, _, err := m.Open(ctx, SessionOptions{InvestigationID: "inv-fast"})
				fast <- err
			}()
			select {
			case err := <-fast:
				require.NoError(t, err)
			case <-time.After(waitFor):
				t.Fatal("open of another investigation waited on the slow load")
			}
			_, ok := m.Get("inv-slow")
			assert.False(t, ok)
			assert.Equal(t, []string{"inv-fast"}, m.IDs())

			close(store.release)

			var sessions []*Session
			createdCount := 0
			for i := 0; i < tt.openers; i++ {
				r := <-results
				require.NoError(t, r.err)
				sessions = append(sessions, r.session)
				if r.created {
					createdCount++
				}
			}
			assert.Equal(t, 1, createdCount)
			running, ok := m.Get("inv-slow")
			require.True(t, ok)
			for _, s := range sessions {
				assert.Same(t, running, s)
			}
		})
	}
}

func TestSessionManager_OpenAfterShutdownDuringLoad(t *testing.T) {
	ctx := context.Background()
	store := newSlowLoadStore("inv-slow")
	m := NewSessionManager(ctx, SessionDeps{Store: store, NewSurface: newNullSurface})

	done := make(chan error, 1)
	go func() {
		_, _, err := m.Open(ctx, SessionOptions{InvestigationID: "inv-slow"})
		done <- err
	}()
	<-store.loading

	require.NoError(t, m.Shutdown())
	close(store.release)
	assert.ErrorIs(t, <-done, ports.ErrSessionClosed)
	assert.Empty(t, m.IDs())
}

func TestSession_SettleWaitsForAnswers(t *testing.T) {
	ctx := context.Background()
	title := "Rollback"
	editor := newScriptedEditor(entities.FieldUpdate{Title: &title}, nil)
	store := newFakeStore()
	s := startSession(t, SessionDeps{Editor: editor, Store: store})

	id, err := s.AddEventNode(ctx)
	require.NoError(t, err)
	saved := s.Save(ctx)

	require.NoError(t, s.Settle(ctx))
	require.NoError(t, s.Inspect(ctx, func(v View) {
		n, ok := v.Scene.Node(id)
		require.True(t, ok)
		assert.Equal(t, "Rollback", n.Title(), "edit applied before Settle returns")
	}))

	select {
	case err := <-saved:
		assert.NoError(t, err)
	default:
		t.Fatal("save result not delivered before Settle returned")
	}
}

func TestSession_SettleRespectsContext(t *testing.T) {
	blocked := make(chan struct{})
	defer close(blocked)
	s := startSession(t, SessionDeps{Confirmer: confirmFunc(func(ctx context.Context) (bool, error) {
		select {
		case <-blocked:
		case <-ctx.Done():
		}
		return false, nil
	})})

	_ = s.Clear(context.Background())

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, s.Settle(ctx), context.DeadlineExceeded)
}

type confirmFunc func(ctx context.Context) (bool, error)

func (f confirmFunc) Confirm(ctx context.Context, _ ports.Prompt) (bool, error) {
	return f(ctx)
}
