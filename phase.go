package s3load

// LoadPhase represents a stage in the lifetime of a Site.
// Phases execute in order: Configure → Load.  Registries can only be changed
// during Configure and are sealed once loading starts.
type LoadPhase int

const (
	// PhaseConfigure registers loaders and include paths
	PhaseConfigure LoadPhase = iota

	// PhaseLoad discovers and loads pages (possibly concurrently)
	PhaseLoad
)

func (p LoadPhase) String() string {
	switch p {
	case PhaseConfigure:
		return "Configure"
	case PhaseLoad:
		return "Load"
	default:
		return "Unknown"
	}
}

// LoadContext holds state that persists across a single LoadPages call.
type LoadContext struct {
	Site         *Site
	CurrentPhase LoadPhase

	// Pages loaded so far
	Pages []Page

	// Errors accumulated during the load (loading continues past failed pages)
	Errors []error
}

// AddError adds an error to the load context.
func (ctx *LoadContext) AddError(err error) {
	if err != nil {
		ctx.Errors = append(ctx.Errors, err)
	}
}

// HookRegistry manages lightweight hooks for observing loads.
// Phase and page hooks run on the goroutine calling LoadPages.  Include hooks run
// on whichever goroutine called Site.Include.
type HookRegistry struct {
	onPhaseStart    map[LoadPhase][]func(*LoadContext)
	onPhaseEnd      map[LoadPhase][]func(*LoadContext)
	onPageLoaded    []func(*LoadContext, Page)
	onIncludeLoaded []func(resolved string, from string)
	onChanged       []func(paths []string)
}

// NewHookRegistry creates a new hook registry.
func NewHookRegistry() *HookRegistry {
	return &HookRegistry{
		onPhaseStart: make(map[LoadPhase][]func(*LoadContext)),
		onPhaseEnd:   make(map[LoadPhase][]func(*LoadContext)),
	}
}

// OnPhaseStart registers a callback to run when a phase starts.
func (h *HookRegistry) OnPhaseStart(phase LoadPhase, fn func(*LoadContext)) {
	h.onPhaseStart[phase] = append(h.onPhaseStart[phase], fn)
}

// OnPhaseEnd registers a callback to run when a phase ends.
func (h *HookRegistry) OnPhaseEnd(phase LoadPhase, fn func(*LoadContext)) {
	h.onPhaseEnd[phase] = append(h.onPhaseEnd[phase], fn)
}

// OnPageLoaded registers a callback to run after each page is loaded successfully.
func (h *HookRegistry) OnPageLoaded(fn func(*LoadContext, Page)) {
	h.onPageLoaded = append(h.onPageLoaded, fn)
}

// OnIncludeLoaded registers a callback to run after an include is loaded through
// the Site.
func (h *HookRegistry) OnIncludeLoaded(fn func(resolved string, from string)) {
	h.onIncludeLoaded = append(h.onIncludeLoaded, fn)
}

// OnChanged registers a callback to run (in watch mode) with the source paths whose
// cached data was invalidated.
func (h *HookRegistry) OnChanged(fn func(paths []string)) {
	h.onChanged = append(h.onChanged, fn)
}

func (h *HookRegistry) emitPhaseStart(ctx *LoadContext) {
	if h == nil {
		return
	}
	for _, fn := range h.onPhaseStart[ctx.CurrentPhase] {
		fn(ctx)
	}
}

func (h *HookRegistry) emitPhaseEnd(ctx *LoadContext) {
	if h == nil {
		return
	}
	for _, fn := range h.onPhaseEnd[ctx.CurrentPhase] {
		fn(ctx)
	}
}

func (h *HookRegistry) emitPageLoaded(ctx *LoadContext, page Page) {
	if h == nil {
		return
	}
	for _, fn := range h.onPageLoaded {
		fn(ctx, page)
	}
}

func (h *HookRegistry) emitIncludeLoaded(resolved string, from string) {
	if h == nil {
		return
	}
	for _, fn := range h.onIncludeLoaded {
		fn(resolved, from)
	}
}

func (h *HookRegistry) emitChanged(paths []string) {
	if h == nil {
		return
	}
	for _, fn := range h.onChanged {
		fn(paths)
	}
}
