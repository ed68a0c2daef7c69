// Package script runs user-supplied Lua hook handlers. A script defines a
// global on_hook(hook, param, buffer) function; the engine bridges buffer
// hook events into that function on a sandboxed interpreter.
package script

import (
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
	lua "github.com/yuin/gopher-lua"

	"github.com/asdlei99/kakoune/internal/hook"
)

// HandlerGlobal is the Lua global the engine dispatches hook events to.
const HandlerGlobal = "on_hook"

// bufferHooks lists every hook name Bind subscribes to.
var bufferHooks = []string{
	hook.BufOpenFifo,
	hook.BufReadFifo,
	hook.BufCloseFifo,
	hook.BufNewFile,
	hook.BufOpenFile,
	hook.BufReload,
	hook.BufFileChanged,
}

// Engine owns a sandboxed Lua state.
//
// gopher-lua's LState is not goroutine-safe; the mutex serializes access,
// but scripts themselves run single-threaded on the caller's goroutine.
type Engine struct {
	mu     sync.Mutex
	state  *lua.LState
	closed bool
	log    *log.Logger
}

// NewEngine creates an engine with only the safe Lua libraries opened.
func NewEngine(logger *log.Logger) *Engine {
	state := lua.NewState(lua.Options{SkipOpenLibs: true})

	lua.OpenBase(state)
	lua.OpenTable(state)
	lua.OpenString(state)
	lua.OpenMath(state)

	// io, os, debug and package stay closed; the file loaders let scripts
	// escape the state even with those libraries absent.
	for _, name := range []string{"dofile", "loadfile", "load", "loadstring"} {
		state.SetGlobal(name, lua.LNil)
	}

	return &Engine{state: state, log: logger}
}

// LoadString executes src, typically to define the handler global.
func (e *Engine) LoadString(src string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return ErrEngineClosed
	}
	if err := e.state.DoString(src); err != nil {
		return fmt.Errorf("script: %w", err)
	}
	return nil
}

// LoadFile executes the script at path.
func (e *Engine) LoadFile(path string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return ErrEngineClosed
	}
	if err := e.state.DoFile(path); err != nil {
		return fmt.Errorf("script %s: %w", path, err)
	}
	return nil
}

// Handler returns a hook handler that forwards events to the script's
// on_hook global. A missing global, a Lua error or a panic is logged and
// swallowed: a broken script must not take down the dispatching buffer.
func (e *Engine) Handler() hook.Func {
	return func(ev hook.Event) {
		e.mu.Lock()
		defer e.mu.Unlock()

		if e.closed {
			return
		}
		fn := e.state.GetGlobal(HandlerGlobal)
		if fn.Type() != lua.LTFunction {
			return
		}

		defer func() {
			if r := recover(); r != nil {
				e.log.Error("script handler panicked", "hook", ev.Hook, "panic", r)
			}
		}()

		err := e.state.CallByParam(lua.P{Fn: fn, NRet: 0, Protect: true},
			lua.LString(ev.Hook), lua.LString(ev.Param), lua.LString(ev.Buffer))
		if err != nil {
			e.log.Error("script handler failed", "hook", ev.Hook, "err", err)
		}
	}
}

// Bind subscribes the engine's handler to every buffer hook under the
// given handler name.
func (e *Engine) Bind(reg *hook.Registry, name string, priority int) {
	fn := e.Handler()
	for _, h := range bufferHooks {
		reg.Add(h, name, priority, fn)
	}
}

// Unbind removes a previous Bind registration.
func (e *Engine) Unbind(reg *hook.Registry, name string) {
	for _, h := range bufferHooks {
		reg.Remove(h, name)
	}
}

// Close shuts the interpreter down. Further loads fail and the handler
// becomes inert.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.closed {
		e.closed = true
		e.state.Close()
	}
}
