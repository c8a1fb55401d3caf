package core

import "github.com/go-drift/nativebridge/pkg/types"

// SetterHook replaces the default write path of a property. It receives the
// already encoded value and decides itself whether to forward it with
// NativeSet, remember it with StoreProperty, or drop it with a Hint.
type SetterHook func(o *Object, name string, encoded any)

// Property describes one declared property.
type Property struct {
	Name string
	Type types.TypeRef
	// Default is returned by Get while no value is cached.
	Default any
	// Const properties can only be set while the object is being created.
	Const bool
	// NoCache disables remembering the last value. Get then always
	// returns Default and every write reaches the native side.
	NoCache bool
	// NativeChange declares that the native side may change the value and
	// reports it with a "<name>Changed" event carrying a "value" entry.
	NativeChange bool
	// Local properties are stored but never sent to the native side.
	Local bool
	// Set is an optional custom setter.
	Set SetterHook
}

// ChangeEvent returns the name of the event fired when the property changes.
func (p Property) ChangeEvent() string {
	return p.Name + "Changed"
}

// EventType describes an event an object can emit.
type EventType struct {
	Name string
	// Native events are produced by the native side and must be enabled
	// with a listen operation.
	Native bool
	// Params declares the types used to decode the notification payload.
	Params map[string]types.TypeRef
}

// Method describes a native method and the types of its parameters.
type Method struct {
	Name   string
	Params map[string]types.TypeRef
}

// SchemaDef is the declaration a Schema is built from.
type SchemaDef struct {
	// Type is the native type tag sent with create.
	Type string
	// Base, when set, contributes its declarations; entries here override it.
	Base       *Schema
	Properties []Property
	Events     []EventType
	Methods    []Method
}

// Schema is the resolved, immutable property and event table of one
// object type.
type Schema struct {
	nativeType string
	order      []string
	props      map[string]Property
	events     map[string]EventType
	methods    map[string]Method
	// changes maps change event names to native-writable properties.
	changes map[string]string
}

// Define resolves def into a Schema, merging the base table with the
// overrides in def.
func Define(def SchemaDef) *Schema {
	s := &Schema{
		nativeType: def.Type,
		props:      make(map[string]Property),
		events:     make(map[string]EventType),
		methods:    make(map[string]Method),
		changes:    make(map[string]string),
	}
	if base := def.Base; base != nil {
		if s.nativeType == "" {
			s.nativeType = base.nativeType
		}
		for _, name := range base.order {
			s.addProperty(base.props[name])
		}
		for name, ev := range base.events {
			s.events[name] = ev
		}
		for name, m := range base.methods {
			s.methods[name] = m
		}
	}
	for _, p := range def.Properties {
		s.addProperty(p)
	}
	for _, ev := range def.Events {
		s.events[ev.Name] = ev
	}
	for _, m := range def.Methods {
		s.methods[m.Name] = m
	}
	for _, name := range s.order {
		p := s.props[name]
		if !p.NativeChange {
			continue
		}
		s.changes[p.ChangeEvent()] = name
		if _, declared := s.events[p.ChangeEvent()]; !declared {
			s.events[p.ChangeEvent()] = EventType{
				Name:   p.ChangeEvent(),
				Native: true,
				Params: map[string]types.TypeRef{"value": p.Type},
			}
		}
	}
	return s
}

func (s *Schema) addProperty(p Property) {
	if _, exists := s.props[p.Name]; !exists {
		s.order = append(s.order, p.Name)
	}
	s.props[p.Name] = p
}

// Type returns the native type tag.
func (s *Schema) Type() string {
	return s.nativeType
}

// Property returns the declaration of name.
func (s *Schema) Property(name string) (Property, bool) {
	p, ok := s.props[name]
	return p, ok
}

// Properties returns the declarations in declaration order.
func (s *Schema) Properties() []Property {
	out := make([]Property, len(s.order))
	for i, name := range s.order {
		out[i] = s.props[name]
	}
	return out
}

// Event returns the declaration of the named event.
func (s *Schema) Event(name string) (EventType, bool) {
	ev, ok := s.events[name]
	return ev, ok
}

// Method returns the declaration of the named method.
func (s *Schema) Method(name string) (Method, bool) {
	m, ok := s.methods[name]
	return m, ok
}

// changedProperty returns the property a change event reports on.
func (s *Schema) changedProperty(event string) (string, bool) {
	name, ok := s.changes[event]
	return name, ok
}
