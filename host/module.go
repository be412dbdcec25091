package host

import (
	"context"

	"github.com/tetratelabs/wazero/api"

	"github.com/wippyai/screeps-wasm/engine"
	"github.com/wippyai/screeps-wasm/errors"
	"github.com/wippyai/screeps-wasm/game"
	"github.com/wippyai/screeps-wasm/resource"
)

// ModuleName is the import namespace of the bridge.
const ModuleName = "screeps"

var errNoBridge = errors.NotInitialized(errors.PhaseBridge, "bridge in call context")

const (
	i32 = api.ValueTypeI32
	f32 = api.ValueTypeF32
)

func bridge(ctx context.Context) *Bridge {
	b := FromContext(ctx)
	if b == nil {
		// Aborts the guest call; wazero returns it as the call error.
		panic(errNoBridge)
	}
	return b
}

func status(stack []uint64, st game.Status) {
	stack[0] = api.EncodeI32(int32(st))
}

func u32(v uint64) uint32 {
	return api.DecodeU32(v)
}

func f(v uint64) float32 {
	return api.DecodeF32(v)
}

// HostFunctions returns the bridge as wazero host functions. Each resolves
// its Bridge from the call context, so one host module serves every guest
// instance of an engine.
func HostFunctions() []engine.HostFunc {
	return []engine.HostFunc{
		{
			Name:       "register_layout",
			ParamNames: []string{"kind", "size", "entries", "count"},
			Params:     []api.ValueType{i32, i32, i32, i32},
			Results:    []api.ValueType{i32},
			Fn: func(ctx context.Context, mod api.Module, stack []uint64) {
				st := bridge(ctx).RegisterLayout(engine.MemoryOf(mod), api.DecodeI32(stack[0]), u32(stack[1]), u32(stack[2]), u32(stack[3]))
				status(stack, st)
			},
		},
		{
			Name:       "set_arena",
			ParamNames: []string{"ptr", "cap"},
			Params:     []api.ValueType{i32, i32},
			Results:    []api.ValueType{i32},
			Fn: func(ctx context.Context, mod api.Module, stack []uint64) {
				status(stack, bridge(ctx).SetArena(engine.MemoryOf(mod), u32(stack[0]), u32(stack[1])))
			},
		},
		{
			Name:       "body_create",
			ParamNames: []string{"parts", "count"},
			Params:     []api.ValueType{i32, i32},
			Results:    []api.ValueType{i32},
			Fn: func(ctx context.Context, mod api.Module, stack []uint64) {
				h := bridge(ctx).BodyCreate(engine.MemoryOf(mod), u32(stack[0]), u32(stack[1]))
				stack[0] = api.EncodeU32(uint32(h))
			},
		},
		{
			Name:       "handle_release",
			ParamNames: []string{"handle"},
			Params:     []api.ValueType{i32},
			Results:    []api.ValueType{i32},
			Fn: func(ctx context.Context, _ api.Module, stack []uint64) {
				status(stack, bridge(ctx).HandleRelease(resource.Handle(u32(stack[0]))))
			},
		},
		{
			Name:       "spawn_creep",
			ParamNames: []string{"id", "body", "name", "name_len", "directions", "dry_run"},
			Params:     []api.ValueType{i32, i32, i32, i32, i32, i32},
			Results:    []api.ValueType{i32},
			Fn: func(ctx context.Context, mod api.Module, stack []uint64) {
				st := bridge(ctx).SpawnCreep(engine.MemoryOf(mod),
					u32(stack[0]), u32(stack[1]), u32(stack[2]), u32(stack[3]), u32(stack[4]), u32(stack[5]))
				status(stack, st)
			},
		},
		{
			Name:       "spawning_cancel",
			ParamNames: []string{"id"},
			Params:     []api.ValueType{i32},
			Results:    []api.ValueType{i32},
			Fn: func(ctx context.Context, mod api.Module, stack []uint64) {
				status(stack, bridge(ctx).SpawningCancel(engine.MemoryOf(mod), u32(stack[0])))
			},
		},
		{
			Name:       "spawning_set_directions",
			ParamNames: []string{"id", "directions"},
			Params:     []api.ValueType{i32, i32},
			Results:    []api.ValueType{i32},
			Fn: func(ctx context.Context, mod api.Module, stack []uint64) {
				status(stack, bridge(ctx).SpawningSetDirections(engine.MemoryOf(mod), u32(stack[0]), u32(stack[1])))
			},
		},
		{
			Name:       "draw_circle",
			ParamNames: []string{"room", "room_len", "x", "y", "radius", "fill", "opacity", "stroke", "stroke_width"},
			Params:     []api.ValueType{i32, i32, f32, f32, f32, i32, f32, i32, f32},
			Fn: func(ctx context.Context, mod api.Module, stack []uint64) {
				bridge(ctx).DrawCircle(engine.MemoryOf(mod), u32(stack[0]), u32(stack[1]),
					game.Point{X: f(stack[2]), Y: f(stack[3])},
					game.CircleStyle{
						Radius:      f(stack[4]),
						Fill:        game.Color(u32(stack[5])),
						Opacity:     f(stack[6]),
						Stroke:      game.Color(u32(stack[7])),
						StrokeWidth: f(stack[8]),
					})
			},
		},
		{
			Name:       "draw_line",
			ParamNames: []string{"room", "room_len", "x1", "y1", "x2", "y2", "width", "color", "opacity", "line_style"},
			Params:     []api.ValueType{i32, i32, f32, f32, f32, f32, f32, i32, f32, i32},
			Fn: func(ctx context.Context, mod api.Module, stack []uint64) {
				bridge(ctx).DrawLine(engine.MemoryOf(mod), u32(stack[0]), u32(stack[1]),
					game.Point{X: f(stack[2]), Y: f(stack[3])},
					game.Point{X: f(stack[4]), Y: f(stack[5])},
					game.LineStyleOptions{
						Width:     f(stack[6]),
						Color:     game.Color(u32(stack[7])),
						Opacity:   f(stack[8]),
						LineStyle: game.LineStyle(api.DecodeI32(stack[9])),
					})
			},
		},
		{
			Name:       "draw_poly",
			ParamNames: []string{"room", "room_len", "points", "count", "fill", "opacity", "stroke", "stroke_width", "line_style"},
			Params:     []api.ValueType{i32, i32, i32, i32, i32, f32, i32, f32, i32},
			Fn: func(ctx context.Context, mod api.Module, stack []uint64) {
				bridge(ctx).DrawPoly(engine.MemoryOf(mod), u32(stack[0]), u32(stack[1]), u32(stack[2]), u32(stack[3]),
					game.PolyStyle{
						Fill:        game.Color(u32(stack[4])),
						Opacity:     f(stack[5]),
						Stroke:      game.Color(u32(stack[6])),
						StrokeWidth: f(stack[7]),
						LineStyle:   game.LineStyle(api.DecodeI32(stack[8])),
					})
			},
		},
		{
			Name: "draw_text",
			ParamNames: []string{"room", "room_len", "x", "y", "text", "text_len", "color", "font", "font_len",
				"stroke", "stroke_width", "background", "background_padding", "align", "opacity"},
			Params: []api.ValueType{i32, i32, f32, f32, i32, i32, i32, i32, i32, i32, f32, i32, f32, i32, f32},
			Fn: func(ctx context.Context, mod api.Module, stack []uint64) {
				bridge(ctx).DrawText(engine.MemoryOf(mod), u32(stack[0]), u32(stack[1]),
					game.Point{X: f(stack[2]), Y: f(stack[3])},
					u32(stack[4]), u32(stack[5]), u32(stack[7]), u32(stack[8]),
					game.TextStyle{
						Color:             game.Color(u32(stack[6])),
						Stroke:            game.Color(u32(stack[9])),
						StrokeWidth:       f(stack[10]),
						Background:        game.Color(u32(stack[11])),
						BackgroundPadding: f(stack[12]),
						Align:             game.Align(api.DecodeI32(stack[13])),
						Opacity:           f(stack[14]),
					})
			},
		},
		{
			Name:       "log",
			ParamNames: []string{"level", "ptr", "len"},
			Params:     []api.ValueType{i32, i32, i32},
			Fn: func(ctx context.Context, mod api.Module, stack []uint64) {
				bridge(ctx).Log(engine.MemoryOf(mod), api.DecodeI32(stack[0]), u32(stack[1]), u32(stack[2]))
			},
		},
	}
}

// Define registers the bridge host module on e.
func Define(ctx context.Context, e *engine.Engine) error {
	return e.DefineHostModule(ctx, ModuleName, HostFunctions())
}
