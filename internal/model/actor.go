package model

import (
	"fmt"
	"strings"
)

// ActorKind discriminates the closed set of actor variants.
type ActorKind string

const (
	// ActorHuman is an interactive user.
	ActorHuman ActorKind = "human"
	// ActorAgent is an autonomous agent acting on a document.
	ActorAgent ActorKind = "agent"
	// ActorSystem is the engine itself or an operator tool.
	ActorSystem ActorKind = "system"
)

// Actor identifies who proposed a command. The engine records the actor on
// every committed event and never branches on the kind - richer per-kind
// behavior belongs to the policy/identity layer outside the engine.
type Actor struct {
	Kind ActorKind `json:"kind"`
	ID   string    `json:"id"`
}

// Validate checks that the actor has a known kind and a non-empty ID.
func (a Actor) Validate() error {
	switch a.Kind {
	case ActorHuman, ActorAgent, ActorSystem:
	default:
		return fmt.Errorf("unknown actor kind %q", a.Kind)
	}
	if a.ID == "" {
		return fmt.Errorf("actor id is required")
	}
	return nil
}

// String returns "kind:id", the form used in logs and CLI output.
func (a Actor) String() string {
	return string(a.Kind) + ":" + a.ID
}

// ParseActor parses the "kind:id" form produced by String.
func ParseActor(s string) (Actor, error) {
	kind, id, ok := strings.Cut(s, ":")
	if !ok {
		return Actor{}, fmt.Errorf("actor %q must be kind:id", s)
	}
	actor := Actor{Kind: ActorKind(kind), ID: id}
	if err := actor.Validate(); err != nil {
		return Actor{}, err
	}
	return actor, nil
}
