package birch

import (
	"time"

	"go.uber.org/zap"
)

// debugLogTick logs per-tick timing and tree size. Only called when debug
// mode is on.
func (a *App) debugLogTick(elapsed time.Duration) {
	a.log.Debug("tick",
		zap.Uint64("frame", a.frame),
		zap.Duration("update", elapsed),
		zap.Int("entities", a.arena.len()),
		zap.Int("renderers", a.renderer.Len()),
		zap.Float32("fps", a.fps),
	)
}

// debugLogRender logs per-frame draw stats.
func (a *App) debugLogRender(elapsed time.Duration, st RenderStats) {
	a.log.Debug("render",
		zap.Uint64("frame", a.frame),
		zap.Duration("draw", elapsed),
		zap.Int("groups", st.Groups),
		zap.Int("drawCalls", st.DrawCalls),
		zap.Int("opaque", st.OpaqueDraws),
		zap.Int("translucent", st.TranslucentDraws),
		zap.Int("skipped", st.SkippedGroups),
	)
}

// debugCheckTreeDepth warns if tree depth exceeds the threshold.
const debugMaxTreeDepth = 32

func (a *App) debugCheckTreeDepth(e *Entity) {
	depth := 0
	for p := e; p != nil; p = p.Parent() {
		depth++
	}
	if depth > debugMaxTreeDepth {
		a.log.Warn("tree depth exceeds threshold",
			zap.Int("depth", depth), zap.Int("threshold", debugMaxTreeDepth), zap.String("entity", e.Name))
	}
}

// debugCheckChildCount warns if an entity has more than 1000 children.
const debugMaxChildCount = 1000

func (a *App) debugCheckChildCount(e *Entity) {
	if len(e.children) > debugMaxChildCount {
		a.log.Warn("child count exceeds threshold",
			zap.String("entity", e.Name), zap.Int("children", len(e.children)), zap.Int("threshold", debugMaxChildCount))
	}
}
