package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/go-drift/nativebridge/pkg/bridge"
	"github.com/go-drift/nativebridge/pkg/config"
	"github.com/go-drift/nativebridge/pkg/core"
	"github.com/go-drift/nativebridge/pkg/widgets"
)

func init() {
	RegisterCommand(&Command{
		Name:  "replay",
		Short: "Replay a scripted session",
		Long: `Replay a YAML session script against an in-memory native client and
print every flushed batch.

Settings are read from bridge.yaml next to the script and from NATIVEBRIDGE_*
environment variables. Hints and errors are written to stderr.

Script format:
  steps:
    - create: {id: b1, widget: button, props: {text: Go, style: outline}}
    - set: {id: b1, name: text, value: Stop}
    - call: {id: b1, name: animate, args: {duration: 200}}
    - listen: {id: b1, event: select}
    - notify: {id: b1, event: select}
    - dispose: {id: b1}
    - flush: true`,
		Usage: "bridgectl replay <script.yaml>",
		Run:   runReplay,
	})
}

// Script is a replayable session.
type Script struct {
	Steps []Step `yaml:"steps"`
}

// Step is one scripted action. Exactly one field should be set.
type Step struct {
	Create  *CreateStep `yaml:"create,omitempty"`
	Set     *SetStep    `yaml:"set,omitempty"`
	Call    *CallStep   `yaml:"call,omitempty"`
	Listen  *EventStep  `yaml:"listen,omitempty"`
	Notify  *EventStep  `yaml:"notify,omitempty"`
	Dispose *IDStep     `yaml:"dispose,omitempty"`
	Flush   bool        `yaml:"flush,omitempty"`
}

type CreateStep struct {
	ID     string         `yaml:"id"`
	Widget string         `yaml:"widget"`
	Parent string         `yaml:"parent,omitempty"`
	Props  map[string]any `yaml:"props,omitempty"`
}

type SetStep struct {
	ID    string `yaml:"id"`
	Name  string `yaml:"name"`
	Value any    `yaml:"value"`
}

type CallStep struct {
	ID   string         `yaml:"id"`
	Name string         `yaml:"name"`
	Args map[string]any `yaml:"args,omitempty"`
}

type EventStep struct {
	ID      string         `yaml:"id"`
	Event   string         `yaml:"event"`
	Payload map[string]any `yaml:"payload,omitempty"`
}

type IDStep struct {
	ID string `yaml:"id"`
}

// widgetFactories maps script widget names to constructors.
var widgetFactories = map[string]func(rt *core.Runtime, props map[string]any, opts ...core.ObjectOption) (*core.Object, error){
	"button": func(rt *core.Runtime, props map[string]any, opts ...core.ObjectOption) (*core.Object, error) {
		b, err := widgets.NewButton(rt, props, opts...)
		if err != nil {
			return nil, err
		}
		return b.Object, nil
	},
}

// LoadScript parses a session script.
func LoadScript(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read script: %w", err)
	}
	var script Script
	if err := yaml.Unmarshal(data, &script); err != nil {
		return nil, fmt.Errorf("failed to parse script: %w", err)
	}
	return &script, nil
}

func runReplay(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("script is required\n\nUsage: bridgectl replay <script.yaml>")
	}
	script, err := LoadScript(args[0])
	if err != nil {
		return err
	}
	cfg, err := config.Resolve(filepath.Dir(args[0]))
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	rt := cfg.Apply()

	batch := 0
	client := bridge.ClientFunc(func(data []byte) error {
		var ops []bridge.Operation
		if err := rt.Bridge().Codec().DecodeInto(data, &ops); err != nil {
			return err
		}
		batch++
		fmt.Fprintf(stdout, "batch %d:\n", batch)
		for _, op := range ops {
			fmt.Fprintf(stdout, "  %s\n", op)
		}
		return nil
	})
	if err := rt.Start(client, nil); err != nil {
		return err
	}
	if err := NewPlayer(rt).Play(script); err != nil {
		return err
	}
	return rt.Close()
}

// Player executes script steps against a runtime.
type Player struct {
	rt *core.Runtime
	// objects keeps scripted objects alive for the length of the session.
	objects map[string]*core.Object
}

// NewPlayer creates a player for rt.
func NewPlayer(rt *core.Runtime) *Player {
	return &Player{rt: rt, objects: make(map[string]*core.Object)}
}

// Play runs every step in order and stops at the first failure.
func (p *Player) Play(script *Script) error {
	for i, step := range script.Steps {
		if err := p.step(step); err != nil {
			return fmt.Errorf("step %d: %w", i+1, err)
		}
	}
	return nil
}

func (p *Player) step(s Step) error {
	switch {
	case s.Create != nil:
		return p.create(s.Create)
	case s.Set != nil:
		o, err := p.find(s.Set.ID)
		if err != nil {
			return err
		}
		return o.Set(s.Set.Name, s.Set.Value)
	case s.Call != nil:
		o, err := p.find(s.Call.ID)
		if err != nil {
			return err
		}
		return o.Call(s.Call.Name, s.Call.Args)
	case s.Listen != nil:
		o, err := p.find(s.Listen.ID)
		if err != nil {
			return err
		}
		o.On(s.Listen.Event, func(e *core.Event) error {
			fmt.Fprintf(stdout, "event %s on %s: %v\n", e.Type, e.Target.Cid(), e.Data)
			return nil
		})
		return nil
	case s.Notify != nil:
		p.rt.Notify(s.Notify.ID, s.Notify.Event, s.Notify.Payload)
		return nil
	case s.Dispose != nil:
		o, err := p.find(s.Dispose.ID)
		if err != nil {
			return err
		}
		o.Dispose()
		delete(p.objects, s.Dispose.ID)
		return nil
	case s.Flush:
		return p.rt.Flush()
	}
	return fmt.Errorf("empty step")
}

func (p *Player) create(s *CreateStep) error {
	factory, ok := widgetFactories[s.Widget]
	if !ok {
		return fmt.Errorf("unknown widget %q", s.Widget)
	}
	opts := []core.ObjectOption{core.WithID(s.ID)}
	if s.Parent != "" {
		parent, err := p.find(s.Parent)
		if err != nil {
			return err
		}
		opts = append(opts, core.WithParent(parent))
	}
	o, err := factory(p.rt, s.Props, opts...)
	if err != nil {
		return err
	}
	p.objects[s.ID] = o
	return nil
}

func (p *Player) find(id string) (*core.Object, error) {
	o := p.rt.Find(id)
	if o == nil {
		return nil, fmt.Errorf("no object %q", id)
	}
	return o, nil
}
