package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"investigation-canvas/application/interaction"
	"investigation-canvas/application/ports"
	"investigation-canvas/application/render"
	"investigation-canvas/domain/config"
	"investigation-canvas/domain/core/aggregates"
	"investigation-canvas/domain/core/entities"
	"investigation-canvas/domain/core/valueobjects"
	domainServices "investigation-canvas/domain/services"
	appErrors "investigation-canvas/pkg/errors"
	"investigation-canvas/pkg/utils"

	"go.uber.org/zap"
)

const (
	DefaultSurfaceWidth  = 1200
	DefaultSurfaceHeight = 800
)

// Surface is a render target the session can resize and export
type Surface interface {
	render.Surface
	Resize(width, height int) error
	EncodePNG(w io.Writer) error
}

// SurfaceFactory creates a surface of the given pixel size
type SurfaceFactory func(width, height int) (Surface, error)

// SessionDeps are the collaborators shared by every session
type SessionDeps struct {
	Config     *config.DomainConfig
	Store      ports.SceneStore
	Editor     ports.EditSession
	Confirmer  ports.Confirmer
	Notifier   ports.Notifier
	Telemetry  ports.Telemetry
	Renderer   *render.Renderer
	NewSurface SurfaceFactory
	Logger     *zap.Logger
	Now        func() time.Time
}

func (d SessionDeps) withDefaults() (SessionDeps, error) {
	if d.Store == nil {
		return d, appErrors.NewValidationError("scene store is required")
	}
	if d.NewSurface == nil {
		return d, appErrors.NewValidationError("surface factory is required")
	}
	if d.Config == nil {
		d.Config = config.DefaultDomainConfig()
	}
	if d.Editor == nil {
		d.Editor = ports.CancelEdits{}
	}
	if d.Confirmer == nil {
		d.Confirmer = ports.AutoConfirm(false)
	}
	if d.Telemetry == nil {
		d.Telemetry = ports.NopTelemetry{}
	}
	if d.Renderer == nil {
		d.Renderer = render.NewRenderer(render.DefaultTheme())
	}
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	return d, nil
}

// SessionOptions describe one editor instance
type SessionOptions struct {
	InvestigationID string
	Seed            domainServices.Seed
	Width           int
	Height          int
}

// View is a read-only look at the session taken on its loop.
// Scene must not be retained or mutated after the callback returns.
type View struct {
	Scene    *aggregates.Scene
	Snapshot interaction.Snapshot
	Dirty    bool
	Frames   int
	Width    int
	Height   int
}

// Session owns one investigation's scene, controller and surface.
// All of them are touched only by the goroutine running Run; other goroutines
// submit work through the session's methods.
type Session struct {
	investigationID string
	deps            SessionDeps
	logger          *zap.Logger

	scene        *aggregates.Scene
	controller   *interaction.Controller
	layout       *domainServices.SeedLayoutService
	surface      Surface
	width        int
	height       int
	savedVersion int
	frames       int

	// off-loop work whose continuation has not run yet, and Settle callers waiting for none
	inflight int
	settled  []chan struct{}

	// one save runs at a time; requests arriving meanwhile share the next one
	saving      bool
	queuedSaves []chan<- error

	inbox   chan func()
	closed  chan struct{}
	ctx     context.Context
	cancel  context.CancelFunc
	running atomic.Bool
	work    sync.WaitGroup
}

// NewSession loads the saved scene for the investigation, or builds one from
// the seed records when nothing usable is stored, and renders the first frame.
func NewSession(ctx context.Context, opts SessionOptions, deps SessionDeps) (*Session, error) {
	deps, err := deps.withDefaults()
	if err != nil {
		return nil, err
	}
	if opts.InvestigationID == "" {
		return nil, appErrors.NewValidationError("investigation ID is required")
	}
	if err := utils.ValidateStruct(opts.Seed); err != nil {
		return nil, appErrors.NewValidationError(err.Error())
	}
	if opts.Width <= 0 {
		opts.Width = DefaultSurfaceWidth
	}
	if opts.Height <= 0 {
		opts.Height = DefaultSurfaceHeight
	}

	logger := deps.Logger.With(zap.String("investigationID", opts.InvestigationID))
	s := &Session{
		investigationID: opts.InvestigationID,
		deps:            deps,
		logger:          logger,
		layout:          domainServices.NewSeedLayoutService(deps.Config),
		width:           opts.Width,
		height:          opts.Height,
		inbox:           make(chan func()),
		closed:          make(chan struct{}),
	}
	s.ctx, s.cancel = context.WithCancel(context.Background())

	scene, err := deps.Store.Load(ctx, opts.InvestigationID)
	if err != nil {
		logger.Warn("Failed to load saved canvas, using seed layout", zap.Error(err))
		s.notify(ports.NoticeError, "Could not load the saved diagram", err)
		scene = nil
	}
	if scene == nil {
		scene, err = aggregates.NewScene(opts.InvestigationID, deps.Config)
		if err != nil {
			return nil, err
		}
		if opts.Seed.IsEmpty() {
			logger.Info("Started empty canvas")
		} else {
			if err := s.layout.SeedScene(scene, opts.Seed); err != nil {
				return nil, err
			}
			logger.Info("Seeded canvas",
				zap.Int("events", len(opts.Seed.Events)),
				zap.Int("annotations", len(opts.Seed.Annotations)),
			)
		}
	} else {
		logger.Info("Loaded saved canvas",
			zap.Int("nodeCount", scene.NodeCount()),
			zap.Int("connectionCount", scene.ConnectionCount()),
		)
	}

	surface, err := deps.NewSurface(opts.Width, opts.Height)
	if err != nil {
		return nil, fmt.Errorf("failed to create surface: %w", err)
	}

	s.scene = scene
	s.surface = surface
	s.controller = interaction.NewController(scene, domainServices.NewHitTester(deps.Config))
	s.flushEvents()
	// A freshly seeded or loaded layout has nothing unsaved
	s.savedVersion = scene.Version()
	s.redraw()

	return s, nil
}

// InvestigationID returns the investigation the session edits
func (s *Session) InvestigationID() string {
	return s.investigationID
}

// Run processes submitted work until ctx is done or Close is called
func (s *Session) Run(ctx context.Context) error {
	if !s.running.CompareAndSwap(false, true) {
		return errors.New("session is already running")
	}
	defer func() {
		s.cancel()
		close(s.closed)
		s.work.Wait()
		s.logger.Debug("Editor session stopped")
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-s.ctx.Done():
			return nil
		case fn := <-s.inbox:
			fn()
		}
	}
}

// Close stops the session loop and cancels outstanding prompts
func (s *Session) Close() {
	s.cancel()
}

// Done is closed once the loop has stopped
func (s *Session) Done() <-chan struct{} {
	return s.closed
}

// call runs fn on the loop and waits for it
func (s *Session) call(ctx context.Context, fn func()) error {
	done := make(chan struct{})
	task := func() {
		defer close(done)
		fn()
	}

	select {
	case s.inbox <- task:
	case <-s.closed:
		return ports.ErrSessionClosed
	case <-ctx.Done():
		return ctx.Err()
	}
	<-done
	return nil
}

// post hands the result of off-loop work back to the loop.
// It reports false when the loop stopped and fn was dropped.
func (s *Session) post(fn func()) bool {
	select {
	case s.inbox <- fn:
		return true
	case <-s.closed:
		return false
	}
}

// goOffLoop runs blocking work outside the loop, then runs the continuation it
// returns on the loop. dropped, if set, runs instead when the loop stopped first.
// Must be called on the loop.
func (s *Session) goOffLoop(work func(ctx context.Context) func(), dropped func()) {
	s.inflight++
	s.work.Add(1)
	go func() {
		defer s.work.Done()
		then := work(s.ctx)
		posted := s.post(func() {
			s.inflight--
			if then != nil {
				then()
			}
			s.releaseSettled()
		})
		if !posted && dropped != nil {
			dropped()
		}
	}()
}

func (s *Session) releaseSettled() {
	if s.inflight > 0 {
		return
	}
	for _, ch := range s.settled {
		close(ch)
	}
	s.settled = nil
}

// Settle waits until every prompt and save started so far has been answered
// and its result applied to the scene
func (s *Session) Settle(ctx context.Context) error {
	wait := make(chan struct{})
	err := s.call(ctx, func() {
		s.settled = append(s.settled, wait)
		s.releaseSettled()
	})
	if err != nil {
		return err
	}

	select {
	case <-wait:
		return nil
	case <-s.closed:
		return ports.ErrSessionClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Dispatch applies a pointer event
func (s *Session) Dispatch(ctx context.Context, ev interaction.PointerEvent) (interaction.Outcome, error) {
	var out interaction.Outcome
	err := s.call(ctx, func() {
		s.deps.Telemetry.PointerEvent(ev.Kind.String())
		out = s.controller.Dispatch(ev)
		s.settle(out)

		switch {
		case out.WantsEdit():
			s.requestEdit(out.EditNode, false)
		case out.WantsDelete():
			s.requestDelete(out.DeleteNode)
		}
	})
	return out, err
}

// AddNode places a node with default content, selects it and opens the editor on it
func (s *Session) AddNode(ctx context.Context, kind entities.NodeKind) (valueobjects.NodeID, error) {
	var id valueobjects.NodeID
	var addErr error
	err := s.call(ctx, func() {
		content, pos, attrs, err := s.layout.NewNodeDefaults(kind, s.deps.Now())
		if err != nil {
			addErr = err
			return
		}
		node, err := s.scene.AddNode(kind, content, pos, attrs)
		if err != nil {
			addErr = err
			s.notify(ports.NoticeError, "Could not add node", err)
			return
		}
		id = node.ID()
		s.settle(s.controller.Select(id))
		s.requestEdit(id, true)
	})
	if err != nil {
		return valueobjects.NodeID{}, err
	}
	return id, addErr
}

// AddEventNode adds a manual event node
func (s *Session) AddEventNode(ctx context.Context) (valueobjects.NodeID, error) {
	return s.AddNode(ctx, entities.KindEvent)
}

// AddAnnotationNode adds an annotation node
func (s *Session) AddAnnotationNode(ctx context.Context) (valueobjects.NodeID, error) {
	return s.AddNode(ctx, entities.KindAnnotation)
}

// DeleteSelectedConnection removes the highlighted connection
func (s *Session) DeleteSelectedConnection(ctx context.Context) (bool, error) {
	var removed bool
	err := s.call(ctx, func() {
		out := s.controller.DeleteSelectedConnection()
		removed = out.SceneChanged
		s.settle(out)
	})
	return removed, err
}

// Clear asks for confirmation and then empties the scene.
// The channel reports whether the scene was cleared.
func (s *Session) Clear(ctx context.Context) <-chan bool {
	result := make(chan bool, 1)
	err := s.call(ctx, func() {
		prompt := ports.Prompt{
			InvestigationID: s.investigationID,
			Kind:            ports.PromptClearScene,
			Message:         "Clear all nodes and connections?",
		}
		s.confirm(prompt, func(ok bool) {
			if ok {
				s.scene.Clear()
				s.controller.Reset()
				s.settle(interaction.Outcome{SceneChanged: true, Redraw: true})
				s.logger.Info("Canvas cleared")
			}
			result <- ok
		}, func() { result <- false })
	})
	if err != nil {
		result <- false
	}
	return result
}

// Save persists a copy of the scene off the loop and reports the outcome.
// Saves never overlap: a request made while one is running is served by a
// follow-up save of the scene as it is when the running one finishes.
func (s *Session) Save(ctx context.Context) <-chan error {
	result := make(chan error, 1)
	err := s.call(ctx, func() {
		if s.saving {
			s.queuedSaves = append(s.queuedSaves, result)
			return
		}
		s.startSave([]chan<- error{result})
	})
	if err != nil {
		result <- err
	}
	return result
}

// startSave writes the current scene and answers waiters. Must be called on the loop.
func (s *Session) startSave(waiters []chan<- error) {
	s.saving = true
	snapshot := s.scene.Clone()
	version := s.scene.Version()

	reply := func(err error) {
		for _, w := range waiters {
			w <- err
		}
	}

	var saveErr error
	s.goOffLoop(func(loopCtx context.Context) func() {
		start := time.Now()
		saveErr = s.deps.Store.Save(loopCtx, snapshot)
		s.deps.Telemetry.SaveCompleted(time.Since(start), saveErr)

		return func() {
			s.saving = false
			if saveErr != nil {
				s.logger.Error("Failed to save canvas", zap.Error(saveErr))
				s.notify(ports.NoticeError, "Could not save the diagram", saveErr)
			} else {
				s.savedVersion = version
				s.logger.Info("Canvas saved", zap.Int("version", version))
				s.notify(ports.NoticeInfo, "Diagram saved", nil)
			}
			reply(saveErr)

			if queued := s.queuedSaves; len(queued) > 0 {
				s.queuedSaves = nil
				s.startSave(queued)
			}
		}
	}, func() {
		reply(saveErr)
		for _, w := range s.queuedSaves {
			w <- ports.ErrSessionClosed
		}
	})
}

// Resize re-renders at new surface dimensions; the scene is untouched
func (s *Session) Resize(ctx context.Context, width, height int) error {
	if width <= 0 || height <= 0 {
		return appErrors.NewValidationError("surface size must be positive")
	}
	var resizeErr error
	err := s.call(ctx, func() {
		if resizeErr = s.surface.Resize(width, height); resizeErr != nil {
			return
		}
		s.width, s.height = width, height
		s.redraw()
	})
	if err != nil {
		return err
	}
	return resizeErr
}

// Inspect runs fn on the loop with a read-only view
func (s *Session) Inspect(ctx context.Context, fn func(View)) error {
	return s.call(ctx, func() {
		fn(View{
			Scene:    s.scene,
			Snapshot: s.controller.Snapshot(),
			Dirty:    s.dirty(),
			Frames:   s.frames,
			Width:    s.width,
			Height:   s.height,
		})
	})
}

// Dirty reports whether the scene changed since it was loaded or last saved
func (s *Session) Dirty(ctx context.Context) (bool, error) {
	var dirty bool
	err := s.Inspect(ctx, func(v View) { dirty = v.Dirty })
	return dirty, err
}

// WriteFrame encodes the current frame as PNG
func (s *Session) WriteFrame(ctx context.Context, w io.Writer) error {
	var encodeErr error
	err := s.call(ctx, func() {
		encodeErr = s.surface.EncodePNG(w)
	})
	if err != nil {
		return err
	}
	return encodeErr
}

func (s *Session) dirty() bool {
	return s.scene.Version() != s.savedVersion
}

// settle finishes one step on the loop: drains domain events and redraws if needed
func (s *Session) settle(out interaction.Outcome) {
	if out.SceneChanged {
		s.flushEvents()
	}
	if out.Redraw || out.SceneChanged {
		s.redraw()
	}
}

func (s *Session) flushEvents() {
	evs := s.scene.PullEvents()
	if len(evs) == 0 {
		return
	}
	s.deps.Telemetry.DomainEvents(evs)
	if ce := s.logger.Check(zap.DebugLevel, "Scene changed"); ce != nil {
		types := make([]string, len(evs))
		for i, ev := range evs {
			types[i] = ev.GetEventType()
		}
		ce.Write(zap.Strings("events", types), zap.Int("version", s.scene.Version()))
	}
}

func (s *Session) redraw() {
	start := time.Now()
	s.deps.Renderer.Render(s.surface, s.scene, s.controller.Snapshot())
	s.frames++
	s.deps.Telemetry.FrameRendered(time.Since(start))
}

// requestEdit opens the editor off the loop and applies the answer on it
func (s *Session) requestEdit(id valueobjects.NodeID, created bool) {
	node, ok := s.scene.Node(id)
	if !ok {
		return
	}
	req := ports.EditRequest{
		InvestigationID: s.investigationID,
		NodeID:          id,
		Fields:          node.Fields(),
		Created:         created,
	}

	s.goOffLoop(func(ctx context.Context) func() {
		update, err := s.deps.Editor.RequestEdit(ctx, req)
		return func() {
			s.applyEdit(id, update, err)
		}
	}, nil)
}

func (s *Session) applyEdit(id valueobjects.NodeID, update entities.FieldUpdate, err error) {
	switch {
	case errors.Is(err, ports.ErrEditCanceled), errors.Is(err, context.Canceled):
		return
	case err != nil:
		s.logger.Warn("Edit session failed", zap.String("nodeID", id.String()), zap.Error(err))
		s.notify(ports.NoticeError, "Could not edit node", err)
		return
	case update.IsEmpty():
		return
	}

	if err := utils.ValidateStruct(update); err != nil {
		s.notify(ports.NoticeError, "Invalid node fields", err)
		return
	}
	if err := s.scene.UpdateNodeFields(id, update); err != nil {
		if appErrors.IsNotFound(err) {
			// Deleted while the editor was open
			return
		}
		s.notify(ports.NoticeError, "Invalid node fields", err)
		return
	}
	s.settle(interaction.Outcome{SceneChanged: true, Redraw: true})
}

// requestDelete asks for confirmation and deletes the node with its connections
func (s *Session) requestDelete(id valueobjects.NodeID) {
	node, ok := s.scene.Node(id)
	if !ok {
		return
	}
	title := node.Title()
	if title == "" {
		title = "this node"
	}
	prompt := ports.Prompt{
		InvestigationID: s.investigationID,
		Kind:            ports.PromptDeleteNode,
		NodeID:          id,
		Message:         fmt.Sprintf("Delete %q and its connections?", title),
	}
	s.confirm(prompt, func(ok bool) {
		if ok {
			s.settle(s.controller.ConfirmDelete(id))
		}
	}, nil)
}

// confirm asks the Confirmer off the loop and runs then on the loop with the answer.
// dropped, if set, runs instead when the loop stopped first.
func (s *Session) confirm(prompt ports.Prompt, then func(bool), dropped func()) {
	s.goOffLoop(func(ctx context.Context) func() {
		ok, err := s.deps.Confirmer.Confirm(ctx, prompt)
		if err != nil && !errors.Is(err, context.Canceled) {
			s.logger.Warn("Confirmation failed", zap.String("prompt", string(prompt.Kind)), zap.Error(err))
		}
		answered := ok && err == nil
		return func() { then(answered) }
	}, dropped)
}

func (s *Session) notify(level ports.NoticeLevel, message string, err error) {
	if s.deps.Notifier == nil {
		return
	}
	s.deps.Notifier.Notify(s.ctx, ports.Notice{
		InvestigationID: s.investigationID,
		Level:           level,
		Message:         message,
		Err:             err,
	})
}
