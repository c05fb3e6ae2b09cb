// Package viewstate implements the versioned publish/subscribe mutation
// log shared across the engine facade, dynamic reflow responder, and
// persistence (spec §4.7). Every publish deep-clones the snapshot,
// increments a monotonic version counter, and emits a typed Mutation.
package viewstate

import (
	"sync"

	"github.com/phanxgames/canvaslayout/internal/graph"
)

// MutationType enumerates the mutation kinds defined in spec §4.7.
type MutationType string

const (
	MutationInitialize MutationType = "initialize"
	MutationReplace    MutationType = "replace"
	MutationPosition   MutationType = "position"
	MutationResize     MutationType = "resize"
	MutationCollapse   MutationType = "collapse"
	MutationLayout     MutationType = "layout"
	MutationCamera     MutationType = "camera"
)

// Source enumerates mutation origins (spec §4.7).
type Source string

const (
	SourceEngine   Source = "engine"
	SourceLayout   Source = "layout"
	SourceExternal Source = "external"
)

// Mutation is the event published on every state change.
type Mutation struct {
	Type      MutationType
	Source    Source
	NodeGUID  string
	Payload   any
	Version   uint64
}

// subscriber pairs a mutation channel with an originating-source filter
// used for loopback suppression (spec §5: "mutations published by a
// component are not re-observed by that component within the same
// publication turn").
type subscriber struct {
	id     uint64
	ch     chan Mutation
	origin Source // suppress mutations whose Source equals origin
}

// Service is a per-surface versioned publish/subscribe broker.
type Service struct {
	mu       sync.Mutex
	version  uint64
	snapshot *graph.CanvasData
	subs     []*subscriber
	nextSubID uint64
}

// New returns a service seeded with an empty canvas.
func New() *Service {
	return &Service{snapshot: graph.NewCanvasData()}
}

// Snapshot returns a deep clone of the current state (the service never
// hands out its internal pointer). Mutating the clone does not change the
// service's state; changes take effect only through Publish.
func (s *Service) Snapshot() *graph.CanvasData {
	s.mu.Lock()
	defer s.mu.Unlock()
	return graph.CloneCanvasData(s.snapshot)
}

// Version returns the current monotonic version counter.
func (s *Service) Version() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.version
}

// Subscribe registers a new subscriber. origin, when non-empty, is the
// subscriber's own Source: publications it originates are not delivered
// back to it within the same Publish call (loopback suppression).
// Buffer size 32 matches the modest per-surface mutation volume this
// service expects.
func (s *Service) Subscribe(origin Source) (<-chan Mutation, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextSubID++
	sub := &subscriber{id: s.nextSubID, ch: make(chan Mutation, 32), origin: origin}
	s.subs = append(s.subs, sub)
	unsubscribe := func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, sb := range s.subs {
			if sb.id == sub.id {
				s.subs = append(s.subs[:i], s.subs[i+1:]...)
				close(sb.ch)
				break
			}
		}
	}
	return sub.ch, unsubscribe
}

// Publish clones next, stores it as the current snapshot, increments the
// version, and emits the mutation to every subscriber except ones whose
// origin matches mutation.Source (spec §4.7, §5).
func (s *Service) Publish(next *graph.CanvasData, mutType MutationType, source Source, nodeGUID string, payload any) Mutation {
	s.mu.Lock()
	s.snapshot = graph.CloneCanvasData(next)
	s.version++
	m := Mutation{Type: mutType, Source: source, NodeGUID: nodeGUID, Payload: payload, Version: s.version}
	subs := append([]*subscriber(nil), s.subs...)
	s.mu.Unlock()

	for _, sub := range subs {
		if sub.origin != "" && sub.origin == source {
			continue
		}
		select {
		case sub.ch <- m:
		default:
			// Slow subscriber: drop rather than block the publisher.
		}
	}
	return m
}

// UpdateNodePosition clones the current state, locates the node by GUID,
// writes geometry, optionally marks it user-locked, and publishes
// (spec §4.7 "convenience").
func (s *Service) UpdateNodePosition(guid string, pos graph.Vec2, userLocked bool, source Source) (Mutation, bool) {
	current := s.Snapshot()
	node := graph.FindNode(current.Nodes, guid)
	if node == nil {
		return Mutation{}, false
	}
	node.X, node.Y = pos.X, pos.Y
	if userLocked {
		node.SetMeta(graph.MetaLockedPosition, pos)
		node.SetMeta(graph.MetaUserLocked, true)
	}
	graph.RecomputeWorldPositions(current.Nodes)
	m := s.Publish(current, MutationPosition, source, guid, pos)
	return m, true
}
